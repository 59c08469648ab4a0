// Package retrieval exposes the two knowledge stores backing the
// advising pipeline. The structure store holds programme plans and
// sequencing; the details store holds per-course content. Both are
// keyword indexes searched through a common facade.
package retrieval

import (
	"context"
	"time"

	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
	"github.com/hivelab/hive-advisor-go/internal/logger"
	"github.com/hivelab/hive-advisor-go/internal/metrics"
	"github.com/hivelab/hive-advisor-go/internal/router"
)

// Store names used in metrics labels and logs.
const (
	StoreStructure = "structure"
	StoreDetails   = "details"
)

// Result is one retrieved passage.
type Result struct {
	Text       string            `json:"text"`
	Score      float64           `json:"score"`
	Confidence float32           `json:"confidence"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Store is a searchable knowledge layer.
type Store interface {
	Name() string
	Search(ctx context.Context, query string, topN int) ([]Result, error)
}

// Facade routes retrieval calls to the configured stores per a
// routing decision and applies metadata filters to what comes back.
type Facade struct {
	structure Store
	details   Store
	topN      int
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// Retrieved bundles the per-store outcomes of one decision.
type Retrieved struct {
	Structure []Result
	Details   []Result
}

// NewFacade wires the two stores. Either store may be nil; searching
// a missing store yields ErrStoreNotConfigured. The metrics recorder
// is optional.
func NewFacade(structure, details Store, topN int, log *logger.Logger, m *metrics.Metrics) *Facade {
	return &Facade{structure: structure, details: details, topN: topN, log: log, metrics: m}
}

// Execute runs the store calls a routing decision asks for. Details
// access is refused with ErrMissingCourseCode when the decision is
// code-gated and the filters carry no course code: that gate is what
// keeps the pipeline from answering details questions about courses
// it never identified.
func (f *Facade) Execute(ctx context.Context, decision router.Decision, query string, filters Filters) (Retrieved, error) {
	var out Retrieved

	if decision.ShouldQueryStructure {
		results, err := f.search(ctx, f.structure, StoreStructure, query, filters)
		if err != nil {
			return out, err
		}
		out.Structure = results
	}

	if decision.ShouldQueryDetails {
		if decision.RequiresCourseCode && len(filters.CourseCodes) == 0 {
			return out, domerrors.ErrMissingCourseCode
		}
		results, err := f.search(ctx, f.details, StoreDetails, query, filters)
		if err != nil {
			return out, err
		}
		out.Details = results
	}

	return out, nil
}

func (f *Facade) search(ctx context.Context, store Store, name, query string, filters Filters) ([]Result, error) {
	if store == nil {
		return nil, domerrors.ErrStoreNotConfigured
	}

	start := time.Now()
	results, err := store.Search(ctx, query, f.topN)
	if err != nil {
		return nil, err
	}

	filtered := filters.Apply(results)
	if f.metrics != nil {
		f.metrics.RetrievalDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
		f.metrics.RetrievalResultsTotal.WithLabelValues(name).Add(float64(len(filtered)))
	}

	if f.log != nil {
		f.log.WithFields(map[string]any{
			"store":    name,
			"results":  len(results),
			"filtered": len(filtered),
		}).Debug("store searched")
	}
	return filtered, nil
}
