// Package main provides the advisor server entry point.
package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hivelab/hive-advisor-go/internal/advisor"
	"github.com/hivelab/hive-advisor-go/internal/catalog"
	"github.com/hivelab/hive-advisor-go/internal/config"
	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
	"github.com/hivelab/hive-advisor-go/internal/logger"
	"github.com/hivelab/hive-advisor-go/internal/metrics"
	"github.com/hivelab/hive-advisor-go/internal/ratelimit"
	"github.com/hivelab/hive-advisor-go/internal/retrieval"
	"github.com/hivelab/hive-advisor-go/internal/router"
	"github.com/hivelab/hive-advisor-go/internal/sentry"
	"github.com/hivelab/hive-advisor-go/internal/session"
	"github.com/hivelab/hive-advisor-go/internal/storage"
	"github.com/hivelab/hive-advisor-go/pkg/replyutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type chatRequest struct {
	UserID  string   `json:"user_id"`
	Message string   `json:"message" binding:"required"`
	Passed  []string `json:"passed"`
	Failed  []string `json:"failed"`
}

type chatResponse struct {
	UserID             string             `json:"user_id"`
	Reply              string             `json:"reply"`
	QueryType          string             `json:"query_type"`
	TargetLayer        string             `json:"target_layer"`
	Programme          string             `json:"programme,omitempty"`
	Term               string             `json:"term,omitempty"`
	CourseCodes        []string           `json:"course_codes,omitempty"`
	NeedsClarification bool               `json:"needs_clarification"`
	Structure          []retrieval.Result `json:"structure,omitempty"`
	Details            []retrieval.Result `json:"details,omitempty"`
}

type resetRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// setupRoutes configures all HTTP routes
func setupRoutes(
	ginRouter *gin.Engine,
	cfg *config.Config,
	engine *advisor.Engine,
	limiter *ratelimit.PerKeyLimiter,
	db *storage.DB,
	structureStore, detailsStore *retrieval.KeywordStore,
	sessions *session.Store,
	m *metrics.Metrics,
	registry *prometheus.Registry,
	log *logger.Logger,
) {
	// Health check endpoints
	// Liveness probe: process is up, no dependency checks
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	ginRouter.GET("/healthz", healthHandler)
	ginRouter.HEAD("/healthz", healthHandler)

	// Readiness probe: database reachable and indexes populated
	readyHandler := func(c *gin.Context) {
		if err := db.Conn().PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		courseCount, _ := db.CountCourses(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"catalog": gin.H{
				"courses": courseCount,
			},
			"indexes": gin.H{
				"structure": structureStore.Count(),
				"details":   detailsStore.Count(),
			},
			"sessions": sessions.Count(),
		})
	}
	ginRouter.GET("/ready", readyHandler)
	ginRouter.HEAD("/ready", readyHandler)

	// Chat endpoints
	ginRouter.POST("/chat", chatHandler(engine, limiter, m, log))
	ginRouter.POST("/chat/reset", func(c *gin.Context) {
		var req resetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		engine.Reset(req.UserID)
		c.JSON(http.StatusOK, gin.H{"status": "reset"})
	})

	// Prometheus metrics endpoint, behind Basic Auth when configured
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := ginRouter.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		ginRouter.GET("/metrics", metricsHandler)
	}
}

// chatHandler runs one advising turn per request.
func chatHandler(engine *advisor.Engine, limiter *ratelimit.PerKeyLimiter, m *metrics.Metrics, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			m.ChatRequestsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}

		// Anonymous callers get a fresh session id; they are rate
		// limited by client address instead.
		rateKey := req.UserID
		if rateKey == "" {
			rateKey = c.ClientIP()
			req.UserID = uuid.NewString()
		}
		if !limiter.Allow(rateKey) {
			m.ChatRequestsTotal.WithLabelValues("rate_limited").Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		out, err := engine.Process(c.Request.Context(), advisor.Request{
			UserID:  req.UserID,
			Message: req.Message,
			Passed:  req.Passed,
			Failed:  req.Failed,
		})
		if err != nil {
			if domerrors.Is(err, domerrors.ErrInvalidInput) {
				m.ChatRequestsTotal.WithLabelValues("error").Inc()
				c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
				return
			}
			log.WithError(err).WithField("user_id", req.UserID).Error("Advising turn failed")
			sentry.CaptureError(err)
			m.ChatRequestsTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		reply := renderReply(out)
		engine.RecordReply(req.UserID, reply)

		status := "ok"
		if out.NeedsClarification {
			status = "clarification"
		}
		m.ChatRequestsTotal.WithLabelValues(status).Inc()
		m.ChatDurationSeconds.Observe(time.Since(start).Seconds())

		c.JSON(http.StatusOK, chatResponse{
			UserID:             req.UserID,
			Reply:              reply,
			QueryType:          string(out.Decision.QueryType),
			TargetLayer:        string(out.Decision.TargetLayer),
			Programme:          out.Programme,
			Term:               out.Term,
			CourseCodes:        out.CourseCodes,
			NeedsClarification: out.NeedsClarification,
			Structure:          out.Retrieved.Structure,
			Details:            out.Retrieved.Details,
		})
	}
}

// renderReply turns a turn outcome into advisor prose. Retrieved
// passages are echoed as supporting context; the structured fields in
// the response carry the same data for richer clients.
func renderReply(out advisor.Outcome) string {
	b := replyutil.New()

	if el := out.Eligibility; el != nil {
		if el.Eligible {
			b.Linef("You are eligible to take %s.", el.CourseCode)
		} else {
			b.Linef("You cannot take %s yet. Missing prerequisites: %s.",
				el.CourseCode, replyutil.JoinCodes(el.MissingPrereqs))
		}
	}

	if rec := out.Recommendation; rec != nil {
		label := catalog.TrimesterLabel(rec.Trimester)
		if len(rec.Recommended) > 0 {
			b.Linef("Recommended for %s: %s.", label, replyutil.JoinCodes(rec.Recommended))
		}
		if len(rec.Blocked) > 0 {
			b.Linef("Not yet available: %s.", replyutil.JoinCodes(rec.Blocked))
		}
		b.Lines(rec.Notes...)
	}

	b.Section("Programme structure:", resultTexts(out.Retrieved.Structure))
	b.Section("Course details:", resultTexts(out.Retrieved.Details))

	if out.NeedsClarification {
		if out.Decision.QueryType == router.QueryUnknown {
			b.Lines("I can help with programme structure, course content and eligibility questions. Could you rephrase your question?")
		} else {
			b.Lines("Which course do you mean? A course code or its full name helps me find it.")
		}
	}

	if b.Empty() {
		b.Lines("I could not find anything relevant. Try asking about a specific course or trimester.")
	}
	return b.String()
}

func resultTexts(results []retrieval.Result) []string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	return texts
}
