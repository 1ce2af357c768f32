// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the single point where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/flowboard/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative
// schema. MaxOpenConns is pinned to one connection so the in-memory
// database is shared across all statements.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err = testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupFileDB creates a file-backed database for tests that exercise
// concurrent access.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flowboard.db")
	testDB, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err = testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedIntake inserts a test intake record and returns its ID.
func seedIntake(t *testing.T, db *sql.DB, id, intakeType, token string) string {
	t.Helper()
	if id == "" {
		id = "REQ-001"
	}
	if intakeType == "" {
		intakeType = "feature-request"
	}
	_, err := db.Exec(
		"INSERT INTO intake_records (id, type, title, approval_token) VALUES (?, ?, 'Test Request', ?)",
		id, intakeType, token,
	)
	if err != nil {
		t.Fatalf("failed to seed intake record: %v", err)
	}
	return id
}

// seedWorkflowItem inserts a test work item and returns its ID.
func seedWorkflowItem(t *testing.T, db *sql.DB, id, status, reviewStatus string) string {
	t.Helper()
	if id == "" {
		id = "WF-001"
	}
	if status == "" {
		status = "Pending Approval"
	}
	var review any
	if reviewStatus != "" {
		review = reviewStatus
	}
	_, err := db.Exec(
		`INSERT INTO workflow_items (id, type, status, review_status, source_type, source_id, issue_number)
		 VALUES (?, 'feature', ?, ?, 'feature-request', ?, 101)`,
		id, status, review, "SRC-"+id,
	)
	if err != nil {
		t.Fatalf("failed to seed workflow item: %v", err)
	}
	return id
}
