// Package advisor orchestrates one advising turn: session lookup,
// programme detection, query routing, alias resolution, retrieval and
// session bookkeeping.
package advisor

import (
	"context"
	"strings"

	"github.com/hivelab/hive-advisor-go/internal/alias"
	"github.com/hivelab/hive-advisor-go/internal/catalog"
	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
	"github.com/hivelab/hive-advisor-go/internal/logger"
	"github.com/hivelab/hive-advisor-go/internal/metrics"
	"github.com/hivelab/hive-advisor-go/internal/programme"
	"github.com/hivelab/hive-advisor-go/internal/retrieval"
	"github.com/hivelab/hive-advisor-go/internal/router"
	"github.com/hivelab/hive-advisor-go/internal/session"
	"github.com/hivelab/hive-advisor-go/internal/stringutil"
)

// Request is one student turn.
type Request struct {
	UserID  string
	Message string

	// Transcript context for eligibility and planning questions,
	// supplied by the client per request.
	Passed []string
	Failed []string
}

// Outcome is everything one turn produced. The caller renders it into
// a reply; nothing here is phrased for the student.
type Outcome struct {
	Decision  router.Decision
	Detection programme.Result
	Programme string // effective programme after this turn
	Term      string // plan bucket parsed from the query, if any

	CourseCodes []string // detected plus alias-resolved codes
	Retrieved   retrieval.Retrieved

	Eligibility    *catalog.Eligibility
	Recommendation *catalog.Recommendation

	// NeedsClarification is set when the turn cannot be answered
	// without more input: unknown intent, or a details question whose
	// course could not be identified.
	NeedsClarification bool
}

// Engine wires the advising pipeline. Safe for concurrent use; all
// per-user state lives in the session store.
type Engine struct {
	sessions *session.Store
	detector *programme.Detector
	rules    *router.RuleSet
	router   *router.Router
	resolver *alias.Resolver
	facade   *retrieval.Facade
	catalog  *catalog.Catalog

	detectionThreshold float64
	metrics            *metrics.Metrics
	log                *logger.Logger
}

// Config collects the engine's collaborators. Catalog and Metrics are
// optional; everything else is required.
type Config struct {
	Sessions           *session.Store
	Rules              *router.RuleSet
	Resolver           *alias.Resolver
	Facade             *retrieval.Facade
	Catalog            *catalog.Catalog
	DetectionThreshold float64
	Metrics            *metrics.Metrics
	Logger             *logger.Logger
}

// New builds an engine.
func New(cfg Config) *Engine {
	return &Engine{
		sessions:           cfg.Sessions,
		detector:           programme.NewDetector(),
		rules:              cfg.Rules,
		router:             router.New(cfg.Rules, cfg.Resolver),
		resolver:           cfg.Resolver,
		facade:             cfg.Facade,
		catalog:            cfg.Catalog,
		detectionThreshold: cfg.DetectionThreshold,
		metrics:            cfg.Metrics,
		log:                cfg.Logger,
	}
}

// Process runs one advising turn.
func (e *Engine) Process(ctx context.Context, req Request) (Outcome, error) {
	userID := strings.TrimSpace(req.UserID)
	text := strings.TrimSpace(req.Message)
	if userID == "" || text == "" {
		return Outcome{}, domerrors.ErrInvalidInput
	}

	snap := e.sessions.Snapshot(userID)

	// Programme detection first: routing and filters depend on it.
	detection := e.detector.Detect(text, &programme.Context{
		Programme: snap.Programme,
		History:   snap.HistoryTexts(),
	})
	if e.metrics != nil {
		e.metrics.ProgrammeDetectionsTotal.WithLabelValues(detection.Source).Inc()
	}
	effectiveProgramme := snap.Programme
	if detection.Programme != "" && detection.Confidence >= e.detectionThreshold {
		effectiveProgramme = detection.Programme
		if detection.Programme != snap.Programme {
			e.sessions.SetProgramme(userID, detection.Programme)
		}
	}

	decision := e.router.Route(text, snap)
	if e.metrics != nil {
		e.metrics.RouteDecisionsTotal.WithLabelValues(string(decision.QueryType)).Inc()
	}

	codes := decision.DetectedCourseCodes
	if router.NeedsAliasResolution(decision) {
		matches := e.resolver.Resolve(text, effectiveProgramme)
		outcome := metrics.OutcomeNotFound
		if len(matches) > 0 {
			outcome = metrics.OutcomeResolved
			codes = alias.CourseCodes(matches)
			decision.DetectedCourseCodes = codes
		}
		if e.metrics != nil {
			e.metrics.AliasLookupsTotal.WithLabelValues(outcome).Inc()
		}
	}

	out := Outcome{
		Decision:    decision,
		Detection:   detection,
		Programme:   effectiveProgramme,
		Term:        catalog.ParseTrimester(text),
		CourseCodes: codes,
	}

	// The details store is never searched for a code-gated decision
	// that still has no course code. A mixed query degrades to its
	// structure half; a pure details query becomes a clarification.
	if decision.ShouldQueryDetails && decision.RequiresCourseCode && len(codes) == 0 {
		out.NeedsClarification = true
		decision.ShouldQueryDetails = false
		out.Decision.ShouldQueryDetails = false
	}

	if decision.ShouldQueryStructure || decision.ShouldQueryDetails {
		filters := retrieval.Filters{
			Programme:   effectiveProgramme,
			CourseCodes: codes,
			YearLevel:   catalog.ParseYearLevel(text),
		}
		retrieved, err := e.facade.Execute(ctx, decision, text, filters)
		if err != nil {
			return out, err
		}
		out.Retrieved = retrieved
	}

	if decision.QueryType == router.QueryUnknown {
		out.NeedsClarification = true
	}

	e.enrichFromCatalog(ctx, req, text, &out)
	e.updateSession(userID, text, out)

	if e.log != nil {
		e.log.WithFields(map[string]any{
			"user_id":    userID,
			"query_type": string(out.Decision.QueryType),
			"programme":  effectiveProgramme,
			"codes":      len(codes),
		}).Debug("turn processed")
	}
	return out, nil
}

// enrichFromCatalog adds eligibility and plan answers when the query
// asks for them and the catalog is wired.
func (e *Engine) enrichFromCatalog(ctx context.Context, req Request, text string, out *Outcome) {
	if e.catalog == nil {
		return
	}

	lower := stringutil.Normalize(text)
	if e.rules.MatchEligibility(lower) && len(out.CourseCodes) > 0 {
		// The last mentioned course is the one being asked about.
		code := out.CourseCodes[len(out.CourseCodes)-1]
		elig, err := e.catalog.CheckEligibility(ctx, code, req.Passed)
		if err == nil {
			out.Eligibility = &elig
		} else if !domerrors.Is(err, domerrors.ErrNotFound) && e.log != nil {
			e.log.WithError(err).Warn("eligibility check failed")
		}
	}

	if out.Term != "" && out.Programme != "" && out.Decision.ShouldQueryStructure {
		rec, err := e.catalog.RecommendForTrimester(ctx, out.Programme, out.Term, req.Passed, req.Failed)
		if err == nil {
			out.Recommendation = &rec
		} else if e.log != nil {
			e.log.WithError(err).Warn("trimester recommendation failed")
		}
	}
}

// updateSession persists what this turn taught us about the student.
func (e *Engine) updateSession(userID, text string, out Outcome) {
	e.sessions.AddToHistory(userID, session.RoleStudent, text)

	switch out.Decision.QueryType {
	case router.QueryStructureOnly:
		e.sessions.SetMode(userID, session.ModeStructure)
	case router.QueryDetailsOnly:
		e.sessions.SetMode(userID, session.ModeDetails)
	case router.QueryMixed:
		e.sessions.SetMode(userID, session.ModeMixed)
	}

	if len(out.CourseCodes) == 1 {
		e.sessions.SetSelectedCourse(userID, out.CourseCodes[0])
	}
	if out.Term != "" {
		e.sessions.SetCurrentTerm(userID, out.Term)
	}
}

// RecordReply appends the advisor's rendered reply to the history so
// the next turn's context includes it.
func (e *Engine) RecordReply(userID, reply string) {
	e.sessions.AddToHistory(userID, session.RoleAdvisor, reply)
}

// Reset clears the student's session.
func (e *Engine) Reset(userID string) {
	e.sessions.Reset(userID)
}
