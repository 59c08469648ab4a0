// Package warmup builds the keyword search indexes from the catalog
// database. It runs once at startup and again whenever the catalog is
// reloaded, so retrieval always reflects the persisted knowledge base.
package warmup

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hivelab/hive-advisor-go/internal/catalog"
	"github.com/hivelab/hive-advisor-go/internal/logger"
	"github.com/hivelab/hive-advisor-go/internal/retrieval"
	"github.com/hivelab/hive-advisor-go/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Stats tracks index building statistics.
// All fields use atomic operations for concurrent access.
type Stats struct {
	StructureDocs atomic.Int64
	DetailsDocs   atomic.Int64
}

// Run builds both retrieval stores from the database. The structure
// and details corpora are assembled concurrently; each store is
// swapped in atomically by its Build call.
func Run(ctx context.Context, db *storage.DB, structure, details *retrieval.KeywordStore, log *logger.Logger) (*Stats, error) {
	stats := &Stats{}
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		docs, err := StructureDocuments(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to build structure corpus: %w", err)
		}
		if err := structure.Build(docs); err != nil {
			return fmt.Errorf("failed to index structure corpus: %w", err)
		}
		stats.StructureDocs.Store(int64(len(docs)))
		return nil
	})

	g.Go(func() error {
		docs, err := DetailsDocuments(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to build details corpus: %w", err)
		}
		if err := details.Build(docs); err != nil {
			return fmt.Errorf("failed to index details corpus: %w", err)
		}
		stats.DetailsDocs.Store(int64(len(docs)))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.WithField("structure_docs", stats.StructureDocs.Load()).
		WithField("details_docs", stats.DetailsDocs.Load()).
		WithField("duration_ms", time.Since(startTime).Milliseconds()).
		Info("Retrieval indexes built")

	return stats, nil
}

// RunInBackground builds the indexes asynchronously. Returns
// immediately without blocking; progress goes to the provided logger.
func RunInBackground(db *storage.DB, structure, details *retrieval.KeywordStore, log *logger.Logger) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in background index build")
			}
		}()

		if _, err := Run(context.Background(), db, structure, details, log); err != nil {
			log.WithError(err).Error("Background index build failed")
		}
	}()
}

// StructureDocuments assembles one passage per programme trimester,
// listing the plan bucket's courses by code and name.
func StructureDocuments(ctx context.Context, db *storage.DB) ([]retrieval.Document, error) {
	programmes, err := db.Programmes(ctx)
	if err != nil {
		return nil, err
	}

	names, err := courseNames(ctx, db)
	if err != nil {
		return nil, err
	}

	var docs []retrieval.Document
	for _, prog := range programmes {
		plan, err := db.PlanFor(ctx, prog)
		if err != nil {
			return nil, err
		}
		for trimester, codes := range plan {
			if len(codes) == 0 {
				continue
			}
			var entries []string
			for _, code := range codes {
				if name := names[code]; name != "" {
					entries = append(entries, code+" "+name)
				} else {
					entries = append(entries, code)
				}
			}

			metadata := map[string]string{
				retrieval.MetaProgramme: prog,
			}
			if level := catalog.TrimesterYearLevel(trimester); level != "" {
				metadata[retrieval.MetaYearLevel] = level
			}

			docs = append(docs, retrieval.Document{
				Text:     fmt.Sprintf("%s %s courses: %s", prog, catalog.TrimesterLabel(trimester), strings.Join(entries, ", ")),
				Metadata: metadata,
			})
		}
	}
	return docs, nil
}

// DetailsDocuments assembles one passage per catalog course: name,
// synopsis, credits and prerequisites. Programme and year labels come
// from the plan rows that reference the course.
func DetailsDocuments(ctx context.Context, db *storage.DB) ([]retrieval.Document, error) {
	courses, err := db.GetAllCourses(ctx)
	if err != nil {
		return nil, err
	}

	programmesOf, yearsOf, err := planLabels(ctx, db)
	if err != nil {
		return nil, err
	}

	var docs []retrieval.Document
	for _, course := range courses {
		var b strings.Builder
		b.WriteString(course.Code)
		b.WriteString(" ")
		b.WriteString(course.Name)
		b.WriteString(".")
		if course.Synopsis != "" {
			b.WriteString(" ")
			b.WriteString(course.Synopsis)
		}
		if course.Credits > 0 {
			fmt.Fprintf(&b, " Credits: %d.", course.Credits)
		}
		if len(course.Prereq) > 0 {
			fmt.Fprintf(&b, " Prerequisites: %s.", strings.Join(course.Prereq, ", "))
		}

		metadata := map[string]string{
			retrieval.MetaCourseCode: course.Code,
		}
		if progs := programmesOf[course.Code]; len(progs) > 0 {
			metadata[retrieval.MetaProgrammes] = strings.Join(progs, ",")
		}
		if years := yearsOf[course.Code]; len(years) > 0 {
			metadata[retrieval.MetaYearLevel] = strings.Join(years, ",")
		}

		docs = append(docs, retrieval.Document{
			Text:     b.String(),
			Metadata: metadata,
		})
	}
	return docs, nil
}

func courseNames(ctx context.Context, db *storage.DB) (map[string]string, error) {
	courses, err := db.GetAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(courses))
	for _, c := range courses {
		names[c.Code] = c.Name
	}
	return names, nil
}

// planLabels inverts the plan rows into per-course programme and
// year-level label lists.
func planLabels(ctx context.Context, db *storage.DB) (map[string][]string, map[string][]string, error) {
	programmes, err := db.Programmes(ctx)
	if err != nil {
		return nil, nil, err
	}

	programmesOf := make(map[string][]string)
	yearsOf := make(map[string][]string)
	for _, prog := range programmes {
		plan, err := db.PlanFor(ctx, prog)
		if err != nil {
			return nil, nil, err
		}
		for trimester, codes := range plan {
			level := catalog.TrimesterYearLevel(trimester)
			for _, code := range codes {
				if !slices.Contains(programmesOf[code], prog) {
					programmesOf[code] = append(programmesOf[code], prog)
				}
				if level != "" && !slices.Contains(yearsOf[code], level) {
					yearsOf[code] = append(yearsOf[code], level)
				}
			}
		}
	}
	return programmesOf, yearsOf, nil
}
