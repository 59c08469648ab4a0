package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates the catalog tables and indexes.
func InitSchema(db *sql.DB) error {
	if err := createCoursesTable(db); err != nil {
		return err
	}
	if err := createPrereqsTable(db); err != nil {
		return err
	}
	return createPlanTable(db)
}

func createCoursesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS courses (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		credits INTEGER,
		synopsis TEXT,
		loaded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_courses_name ON courses(name);
	`
	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create courses table: %w", err)
	}
	return nil
}

func createPrereqsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS prereqs (
		course_code TEXT NOT NULL REFERENCES courses(code) ON DELETE CASCADE,
		prereq_code TEXT NOT NULL,
		PRIMARY KEY (course_code, prereq_code)
	);
	CREATE INDEX IF NOT EXISTS idx_prereqs_prereq ON prereqs(prereq_code);
	`
	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create prereqs table: %w", err)
	}
	return nil
}

// Plan rows place a course into one trimester bucket of a programme's
// study plan.
func createPlanTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS plan_entries (
		programme TEXT NOT NULL,
		trimester TEXT NOT NULL,
		course_code TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (programme, trimester, course_code)
	);
	CREATE INDEX IF NOT EXISTS idx_plan_programme ON plan_entries(programme, trimester);
	`
	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create plan_entries table: %w", err)
	}
	return nil
}
