// Package catalog loads the knowledge-base course files into storage
// and answers eligibility and study-plan questions over them.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
	"github.com/hivelab/hive-advisor-go/internal/storage"
)

// courseEntry is the on-disk JSON shape of one catalog course.
type courseEntry struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	AltName  string   `json:"course_name"`
	Credits  int      `json:"credits"`
	Synopsis string   `json:"synopsis"`
	Prereq   []string `json:"prereq"`
}

func (e courseEntry) toCourse(fallbackCode string) *storage.Course {
	code := strings.ToUpper(strings.TrimSpace(e.Code))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(fallbackCode))
	}
	name := e.Name
	if name == "" {
		name = e.AltName
	}
	if code == "" || name == "" {
		return nil
	}
	return &storage.Course{
		Code:     code,
		Name:     name,
		Credits:  e.Credits,
		Synopsis: e.Synopsis,
		Prereq:   e.Prereq,
	}
}

// LoadCatalogFile parses a course catalog JSON file. Both shapes that
// appear in the knowledge base are accepted: an object keyed by course
// code and a flat list of course objects.
func LoadCatalogFile(path string) ([]*storage.Course, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domerrors.TableError{Path: path, Err: err}
	}

	var keyed map[string]courseEntry
	if err := json.Unmarshal(raw, &keyed); err == nil {
		courses := make([]*storage.Course, 0, len(keyed))
		for code, entry := range keyed {
			if c := entry.toCourse(code); c != nil {
				courses = append(courses, c)
			}
		}
		return courses, nil
	}

	var listed []courseEntry
	if err := json.Unmarshal(raw, &listed); err != nil {
		return nil, &domerrors.TableError{Path: path, Err: fmt.Errorf("unrecognized catalog shape: %w", err)}
	}
	courses := make([]*storage.Course, 0, len(listed))
	for _, entry := range listed {
		if c := entry.toCourse(""); c != nil {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

// LoadPlanFile parses a programme plan JSON file shaped as
// programme -> trimester key -> ordered course codes.
func LoadPlanFile(path string) (map[string]map[string][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domerrors.TableError{Path: path, Err: err}
	}

	var plan map[string]map[string][]string
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, &domerrors.TableError{Path: path, Err: err}
	}
	return plan, nil
}

// Ingest loads the catalog and plan files into storage. A missing plan
// file is tolerated; a missing catalog is not.
func Ingest(ctx context.Context, db *storage.DB, catalogPath, planPath string) error {
	courses, err := LoadCatalogFile(catalogPath)
	if err != nil {
		return err
	}
	if err := db.SaveCoursesBatch(ctx, courses); err != nil {
		return err
	}

	plans, err := LoadPlanFile(planPath)
	if err != nil {
		if domerrors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for programme, plan := range plans {
		if err := db.SavePlan(ctx, programme, plan); err != nil {
			return err
		}
	}
	return nil
}
