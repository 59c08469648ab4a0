package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
)

// SaveCourse inserts or updates one catalog entry, replacing its
// prerequisite rows.
func (db *DB) SaveCourse(ctx context.Context, course *Course) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return &domerrors.StorageError{Operation: "SaveCourse", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertCourse(ctx, tx, course, time.Now().Unix()); err != nil {
		return &domerrors.StorageError{Operation: "SaveCourse", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &domerrors.StorageError{Operation: "SaveCourse", Err: err}
	}
	return nil
}

// SaveCoursesBatch writes the whole catalog in one transaction. The
// loader calls this once at startup.
func (db *DB) SaveCoursesBatch(ctx context.Context, courses []*Course) error {
	if len(courses) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return &domerrors.StorageError{Operation: "SaveCoursesBatch", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	loadedAt := time.Now().Unix()
	for _, course := range courses {
		if err := upsertCourse(ctx, tx, course, loadedAt); err != nil {
			slog.ErrorContext(ctx, "failed to save course in batch",
				"course_code", course.Code,
				"error", err)
			return &domerrors.StorageError{Operation: "SaveCoursesBatch", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domerrors.StorageError{Operation: "SaveCoursesBatch", Err: err}
	}

	slog.DebugContext(ctx, "catalog batch saved",
		"count", len(courses),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func upsertCourse(ctx context.Context, tx *sql.Tx, course *Course, loadedAt int64) error {
	query := `
		INSERT INTO courses (code, name, credits, synopsis, loaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			credits = excluded.credits,
			synopsis = excluded.synopsis,
			loaded_at = excluded.loaded_at
	`
	if _, err := tx.ExecContext(ctx, query, course.Code, course.Name, course.Credits, course.Synopsis, loadedAt); err != nil {
		return fmt.Errorf("failed to save course %s: %w", course.Code, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM prereqs WHERE course_code = ?`, course.Code); err != nil {
		return fmt.Errorf("failed to clear prereqs for %s: %w", course.Code, err)
	}
	for _, prereq := range course.Prereq {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO prereqs (course_code, prereq_code) VALUES (?, ?)`,
			course.Code, strings.ToUpper(prereq)); err != nil {
			return fmt.Errorf("failed to save prereq %s -> %s: %w", course.Code, prereq, err)
		}
	}
	return nil
}

// GetCourseByCode retrieves one catalog entry with its prerequisites.
func (db *DB) GetCourseByCode(ctx context.Context, code string) (*Course, error) {
	query := `SELECT code, name, credits, synopsis FROM courses WHERE code = ?`

	var course Course
	var credits sql.NullInt64
	var synopsis sql.NullString
	err := db.conn.QueryRowContext(ctx, query, code).Scan(&course.Code, &course.Name, &credits, &synopsis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNotFound
	}
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "GetCourseByCode", Err: err}
	}
	course.Credits = int(credits.Int64)
	course.Synopsis = synopsis.String

	course.Prereq, err = db.prereqsOf(ctx, code)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (db *DB) prereqsOf(ctx context.Context, code string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT prereq_code FROM prereqs WHERE course_code = ? ORDER BY prereq_code`, code)
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "prereqsOf", Err: err}
	}
	defer rows.Close()

	var prereqs []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, &domerrors.StorageError{Operation: "prereqsOf", Err: err}
		}
		prereqs = append(prereqs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &domerrors.StorageError{Operation: "prereqsOf", Err: err}
	}
	return prereqs, nil
}

// SearchCoursesByName finds catalog entries whose name contains the
// given fragment, case-insensitively.
func (db *DB) SearchCoursesByName(ctx context.Context, name string) ([]Course, error) {
	query := `
		SELECT code, name, credits, synopsis FROM courses
		WHERE name LIKE ? COLLATE NOCASE
		ORDER BY code
	`
	rows, err := db.conn.QueryContext(ctx, query, "%"+name+"%")
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "SearchCoursesByName", Err: err}
	}
	defer rows.Close()
	return scanCourses(rows)
}

// GetAllCourses returns the full catalog ordered by code. Used to
// build the keyword search indexes at startup.
func (db *DB) GetAllCourses(ctx context.Context) ([]Course, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT code, name, credits, synopsis FROM courses ORDER BY code`)
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "GetAllCourses", Err: err}
	}
	defer rows.Close()

	courses, err := scanCourses(rows)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].Prereq, err = db.prereqsOf(ctx, courses[i].Code)
		if err != nil {
			return nil, err
		}
	}
	return courses, nil
}

// DependentsOf returns the courses that list code as a prerequisite.
func (db *DB) DependentsOf(ctx context.Context, code string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT course_code FROM prereqs WHERE prereq_code = ? ORDER BY course_code`, code)
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "DependentsOf", Err: err}
	}
	defer rows.Close()

	var dependents []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, &domerrors.StorageError{Operation: "DependentsOf", Err: err}
		}
		dependents = append(dependents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &domerrors.StorageError{Operation: "DependentsOf", Err: err}
	}
	return dependents, nil
}

// CountCourses returns the number of catalog entries.
func (db *DB) CountCourses(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	if err != nil {
		return 0, &domerrors.StorageError{Operation: "CountCourses", Err: err}
	}
	return count, nil
}

// SavePlan replaces the study-plan rows for one programme.
func (db *DB) SavePlan(ctx context.Context, programme string, plan map[string][]string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return &domerrors.StorageError{Operation: "SavePlan", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_entries WHERE programme = ?`, programme); err != nil {
		return &domerrors.StorageError{Operation: "SavePlan", Err: err}
	}

	for trimester, codes := range plan {
		for pos, code := range codes {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO plan_entries (programme, trimester, course_code, position) VALUES (?, ?, ?, ?)`,
				programme, trimester, strings.ToUpper(code), pos); err != nil {
				return &domerrors.StorageError{Operation: "SavePlan", Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domerrors.StorageError{Operation: "SavePlan", Err: err}
	}
	return nil
}

// PlanCourses returns the plan bucket for one programme trimester, in
// plan order. An unknown bucket yields an empty slice, not an error.
func (db *DB) PlanCourses(ctx context.Context, programme, trimester string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT course_code FROM plan_entries WHERE programme = ? AND trimester = ? ORDER BY position`,
		programme, trimester)
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "PlanCourses", Err: err}
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, &domerrors.StorageError{Operation: "PlanCourses", Err: err}
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &domerrors.StorageError{Operation: "PlanCourses", Err: err}
	}
	return codes, nil
}

// Trimesters lists the plan buckets recorded for a programme.
func (db *DB) Trimesters(ctx context.Context, programme string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT trimester FROM plan_entries WHERE programme = ? ORDER BY trimester`, programme)
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "Trimesters", Err: err}
	}
	defer rows.Close()

	var trimesters []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, &domerrors.StorageError{Operation: "Trimesters", Err: err}
		}
		trimesters = append(trimesters, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &domerrors.StorageError{Operation: "Trimesters", Err: err}
	}
	return trimesters, nil
}

// Programmes lists every programme that has plan rows.
func (db *DB) Programmes(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT programme FROM plan_entries ORDER BY programme`)
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "Programmes", Err: err}
	}
	defer rows.Close()

	var programmes []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, &domerrors.StorageError{Operation: "Programmes", Err: err}
		}
		programmes = append(programmes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &domerrors.StorageError{Operation: "Programmes", Err: err}
	}
	return programmes, nil
}

// PlanFor returns a programme's full study plan keyed by trimester,
// each bucket in plan order.
func (db *DB) PlanFor(ctx context.Context, programme string) (map[string][]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT trimester, course_code FROM plan_entries WHERE programme = ? ORDER BY trimester, position`,
		programme)
	if err != nil {
		return nil, &domerrors.StorageError{Operation: "PlanFor", Err: err}
	}
	defer rows.Close()

	plan := make(map[string][]string)
	for rows.Next() {
		var trimester, code string
		if err := rows.Scan(&trimester, &code); err != nil {
			return nil, &domerrors.StorageError{Operation: "PlanFor", Err: err}
		}
		plan[trimester] = append(plan[trimester], code)
	}
	if err := rows.Err(); err != nil {
		return nil, &domerrors.StorageError{Operation: "PlanFor", Err: err}
	}
	return plan, nil
}

func scanCourses(rows *sql.Rows) ([]Course, error) {
	var courses []Course
	for rows.Next() {
		var course Course
		var credits sql.NullInt64
		var synopsis sql.NullString
		if err := rows.Scan(&course.Code, &course.Name, &credits, &synopsis); err != nil {
			return nil, &domerrors.StorageError{Operation: "scanCourses", Err: err}
		}
		course.Credits = int(credits.Int64)
		course.Synopsis = synopsis.String
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, &domerrors.StorageError{Operation: "scanCourses", Err: err}
	}
	return courses, nil
}
