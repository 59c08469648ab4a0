package advisor

import (
	"context"
	"testing"

	"github.com/hivelab/hive-advisor-go/internal/alias"
	"github.com/hivelab/hive-advisor-go/internal/catalog"
	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
	"github.com/hivelab/hive-advisor-go/internal/retrieval"
	"github.com/hivelab/hive-advisor-go/internal/router"
	"github.com/hivelab/hive-advisor-go/internal/session"
	"github.com/hivelab/hive-advisor-go/internal/storage"
)

// recordingStore counts searches so tests can assert which layers ran.
type recordingStore struct {
	name  string
	calls int
}

func (r *recordingStore) Name() string { return r.name }

func (r *recordingStore) Search(_ context.Context, _ string, _ int) ([]retrieval.Result, error) {
	r.calls++
	return []retrieval.Result{{Text: r.name + " passage"}}, nil
}

type testEngine struct {
	engine    *Engine
	structure *recordingStore
	details   *recordingStore
	sessions  *session.Store
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	structure := &recordingStore{name: retrieval.StoreStructure}
	details := &recordingStore{name: retrieval.StoreDetails}
	sessions := session.NewStore(session.DefaultHistoryCap)

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	courses := []*storage.Course{
		{Code: "AMT6123", Name: "Engineering Mathematics 2", Prereq: []string{"AMT6113"}},
		{Code: "ACE6313", Name: "Machine Learning", Prereq: []string{"AMT6123"}},
		{Code: "ACE6283", Name: "Deep Learning", Prereq: []string{"ACE6313"}},
	}
	if err := db.SaveCoursesBatch(ctx, courses); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	plan := map[string][]string{"Year3_T1": {"ACE6313", "ACE6283"}}
	if err := db.SavePlan(ctx, "Applied AI", plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	engine := New(Config{
		Sessions:           sessions,
		Rules:              router.DefaultRuleSet(),
		Resolver:           alias.NewResolver(alias.DefaultTable()),
		Facade:             retrieval.NewFacade(structure, details, 5, nil, nil),
		Catalog:            catalog.New(db),
		DetectionThreshold: 0.7,
	})
	return &testEngine{engine: engine, structure: structure, details: details, sessions: sessions}
}

func TestProcessDetailsWithCode(t *testing.T) {
	te := newTestEngine(t)

	out, err := te.engine.Process(context.Background(), Request{UserID: "u1", Message: "Tell me about ACE6313"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if out.Decision.QueryType != router.QueryDetailsOnly {
		t.Errorf("QueryType = %q, want details_only", out.Decision.QueryType)
	}
	if te.details.calls != 1 {
		t.Errorf("details store calls = %d, want 1", te.details.calls)
	}
	if out.NeedsClarification {
		t.Error("NeedsClarification = true for a fully specified query")
	}
	// The code identifies the programme and is remembered.
	if out.Programme != "Applied AI" {
		t.Errorf("Programme = %q, want Applied AI", out.Programme)
	}
	snap := te.sessions.Snapshot("u1")
	if snap.SelectedCourseCode != "ACE6313" {
		t.Errorf("SelectedCourseCode = %q, want ACE6313", snap.SelectedCourseCode)
	}
	if snap.Programme != "Applied AI" {
		t.Errorf("session Programme = %q, want Applied AI", snap.Programme)
	}
}

func TestProcessAliasResolution(t *testing.T) {
	te := newTestEngine(t)

	out, err := te.engine.Process(context.Background(), Request{UserID: "u1", Message: "tell me about machine learning"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(out.CourseCodes) == 0 {
		t.Fatal("alias resolution produced no course codes")
	}
	if out.CourseCodes[0] != "ACE6313" {
		t.Errorf("CourseCodes[0] = %q, want ACE6313", out.CourseCodes[0])
	}
	if te.details.calls != 1 {
		t.Errorf("details store calls = %d, want 1", te.details.calls)
	}
}

func TestProcessDetailsNeverQueriedWithoutCode(t *testing.T) {
	te := newTestEngine(t)

	// Details phrasing with no code and no resolvable alias.
	out, err := te.engine.Process(context.Background(), Request{UserID: "u1", Message: "tell me about the pottery elective"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if te.details.calls != 0 {
		t.Errorf("details store calls = %d, want 0 when no code was identified", te.details.calls)
	}
	if !out.NeedsClarification {
		t.Error("NeedsClarification = false, want true")
	}
}

func TestProcessStructureOnly(t *testing.T) {
	te := newTestEngine(t)

	out, err := te.engine.Process(context.Background(), Request{UserID: "u1", Message: "What subjects are in Year 2 Trimester 1?"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if out.Decision.QueryType != router.QueryStructureOnly {
		t.Errorf("QueryType = %q, want structure_only", out.Decision.QueryType)
	}
	if te.structure.calls != 1 || te.details.calls != 0 {
		t.Errorf("store calls = (structure=%d, details=%d), want (1, 0)", te.structure.calls, te.details.calls)
	}
	if out.Term != "Year2_T1" {
		t.Errorf("Term = %q, want Year2_T1", out.Term)
	}
	snap := te.sessions.Snapshot("u1")
	if snap.CurrentTerm != "Year2_T1" {
		t.Errorf("session CurrentTerm = %q, want Year2_T1", snap.CurrentTerm)
	}
	if snap.Mode != session.ModeStructure {
		t.Errorf("session Mode = %q, want STRUCTURE", snap.Mode)
	}
}

func TestProcessUnknownNeedsClarification(t *testing.T) {
	te := newTestEngine(t)

	out, err := te.engine.Process(context.Background(), Request{UserID: "u1", Message: "hello there"})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if !out.NeedsClarification {
		t.Error("NeedsClarification = false, want true for an unclassifiable query")
	}
	if te.structure.calls != 0 || te.details.calls != 0 {
		t.Errorf("store calls = (structure=%d, details=%d), want none", te.structure.calls, te.details.calls)
	}
}

func TestProcessEligibilityAnswer(t *testing.T) {
	te := newTestEngine(t)

	out, err := te.engine.Process(context.Background(), Request{
		UserID:  "u1",
		Message: "Can I take ACE6313 next term?",
		Passed:  []string{"AMT6113"},
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if out.Eligibility == nil {
		t.Fatal("Eligibility = nil, want a prerequisite check")
	}
	if out.Eligibility.Eligible {
		t.Error("Eligible = true, want false with AMT6123 missing")
	}
	if len(out.Eligibility.MissingPrereqs) != 1 || out.Eligibility.MissingPrereqs[0] != "AMT6123" {
		t.Errorf("MissingPrereqs = %v, want [AMT6123]", out.Eligibility.MissingPrereqs)
	}
}

func TestProcessTrimesterRecommendation(t *testing.T) {
	te := newTestEngine(t)

	// Establish the programme first.
	if _, err := te.engine.Process(context.Background(), Request{UserID: "u1", Message: "I am in the Applied AI programme"}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	out, err := te.engine.Process(context.Background(), Request{
		UserID:  "u1",
		Message: "What should I take in year 3 sem 1?",
		Passed:  []string{"AMT6113", "AMT6123"},
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if out.Recommendation == nil {
		t.Fatal("Recommendation = nil, want a plan recommendation")
	}
	if len(out.Recommendation.Recommended) != 1 || out.Recommendation.Recommended[0] != "ACE6313" {
		t.Errorf("Recommended = %v, want [ACE6313]", out.Recommendation.Recommended)
	}
}

func TestProcessSessionFollowUp(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()

	if _, err := te.engine.Process(ctx, Request{UserID: "u1", Message: "Tell me about ACE6283"}); err != nil {
		t.Fatalf("first turn failed: %v", err)
	}

	// Follow-up with no code or details phrasing rides on the
	// session's selected course.
	out, err := te.engine.Process(ctx, Request{UserID: "u1", Message: "and how hard is it?"})
	if err != nil {
		t.Fatalf("second turn failed: %v", err)
	}

	if len(out.CourseCodes) != 1 || out.CourseCodes[0] != "ACE6283" {
		t.Errorf("CourseCodes = %v, want [ACE6283] from the session", out.CourseCodes)
	}
	if out.NeedsClarification {
		t.Error("NeedsClarification = true, want false")
	}
}

func TestProcessInvalidInput(t *testing.T) {
	te := newTestEngine(t)

	for _, req := range []Request{
		{UserID: "", Message: "hi"},
		{UserID: "u1", Message: "   "},
	} {
		if _, err := te.engine.Process(context.Background(), req); !domerrors.Is(err, domerrors.ErrInvalidInput) {
			t.Errorf("Process(%+v) error = %v, want ErrInvalidInput", req, err)
		}
	}
}

func TestProcessReset(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()

	if _, err := te.engine.Process(ctx, Request{UserID: "u1", Message: "Tell me about ACE6313"}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	te.engine.Reset("u1")

	snap := te.sessions.Snapshot("u1")
	if snap.Programme != "" || snap.SelectedCourseCode != "" || len(snap.History) != 0 {
		t.Errorf("session not cleared after reset: %+v", snap)
	}
}
