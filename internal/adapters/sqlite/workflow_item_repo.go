// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	coreworkflow "github.com/example/flowboard/internal/core/workflow"
	"github.com/example/flowboard/internal/ports/secondary"
)

// WorkflowItemRepository implements secondary.WorkflowItemRepository
// with SQLite.
type WorkflowItemRepository struct {
	db *sql.DB
}

// NewWorkflowItemRepository creates a new SQLite workflow item repository.
func NewWorkflowItemRepository(db *sql.DB) *WorkflowItemRepository {
	return &WorkflowItemRepository{db: db}
}

const workflowItemColumns = "id, board_item_id, issue_number, issue_url, issue_title, type, status, review_status, implementation_phase, source_type, source_id, created_at, updated_at"

// Create persists a new work item.
// The record must have ID, Status, and source reference pre-populated
// by the service layer. The source reference is immutable after this.
func (r *WorkflowItemRepository) Create(ctx context.Context, item *secondary.WorkflowItemRecord) error {
	if item.ID == "" {
		return fmt.Errorf("workflow item ID must be pre-populated by service layer")
	}
	if item.Status == "" {
		return fmt.Errorf("workflow item Status must be pre-populated by service layer")
	}
	if item.SourceType == "" || item.SourceID == "" {
		return fmt.Errorf("workflow item source reference must be set at creation")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workflow_items (id, board_item_id, issue_number, issue_url, issue_title, type, status, review_status, implementation_phase, source_type, source_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		nullString(item.BoardItemID),
		nullInt(item.IssueNumber),
		nullString(item.IssueURL),
		nullString(item.IssueTitle),
		item.Type,
		item.Status,
		nullString(item.ReviewStatus),
		nullString(item.ImplementationPhase),
		item.SourceType,
		item.SourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to create workflow item: %w", err)
	}

	return nil
}

// GetByID retrieves a work item by its internal ID.
func (r *WorkflowItemRepository) GetByID(ctx context.Context, id string) (*secondary.WorkflowItemRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+workflowItemColumns+" FROM workflow_items WHERE id = ?", id)
	record, err := scanWorkflowItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow item %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow item: %w", err)
	}
	return record, nil
}

// GetBySource retrieves the work item spawned by an intake record.
func (r *WorkflowItemRepository) GetBySource(ctx context.Context, sourceType, sourceID string) (*secondary.WorkflowItemRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+workflowItemColumns+" FROM workflow_items WHERE source_type = ? AND source_id = ?",
		sourceType, sourceID)
	record, err := scanWorkflowItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow item for %s %s not found", sourceType, sourceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow item: %w", err)
	}
	return record, nil
}

// GetByIssueNumber retrieves the work item linked to an external issue.
func (r *WorkflowItemRepository) GetByIssueNumber(ctx context.Context, issueNumber int) (*secondary.WorkflowItemRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+workflowItemColumns+" FROM workflow_items WHERE issue_number = ?", issueNumber)
	record, err := scanWorkflowItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow item for issue #%d not found", issueNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow item: %w", err)
	}
	return record, nil
}

// List retrieves work items matching the given filters.
func (r *WorkflowItemRepository) List(ctx context.Context, filters secondary.WorkflowItemFilters) ([]*secondary.WorkflowItemRecord, error) {
	query := "SELECT " + workflowItemColumns + " FROM workflow_items WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.ReviewStatus != "" {
		query += " AND review_status = ?"
		args = append(args, filters.ReviewStatus)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow items: %w", err)
	}
	defer rows.Close()

	var items []*secondary.WorkflowItemRecord
	for rows.Next() {
		record, err := scanWorkflowItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow item: %w", err)
		}
		items = append(items, record)
	}

	return items, nil
}

// UpdateFields applies a three-way patch to the mutable workflow
// fields: untouched patches leave the column alone, cleared patches set
// it to NULL, set patches assign the value.
func (r *WorkflowItemRepository) UpdateFields(ctx context.Context, id string, patch secondary.WorkflowFieldsPatch) error {
	query := "UPDATE workflow_items SET updated_at = CURRENT_TIMESTAMP"
	args := []any{}

	apply := func(column string, p secondary.StringPatch) {
		if !p.Touched() {
			return
		}
		if p.Cleared() {
			query += ", " + column + " = NULL"
			return
		}
		query += ", " + column + " = ?"
		args = append(args, p.Value())
	}

	apply("status", patch.Status)
	apply("review_status", patch.ReviewStatus)
	apply("implementation_phase", patch.ImplementationPhase)

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update workflow item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("workflow item %s not found", id)
	}

	return nil
}

// UpdateIssueFields links a work item to its external issue and board
// item.
func (r *WorkflowItemRepository) UpdateIssueFields(ctx context.Context, id string, fields secondary.IssueFields) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workflow_items SET board_item_id = ?, issue_number = ?, issue_url = ?, issue_title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullString(fields.BoardItemID),
		nullInt(fields.IssueNumber),
		nullString(fields.IssueURL),
		nullString(fields.IssueTitle),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update issue fields: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("workflow item %s not found", id)
	}

	return nil
}

// Delete removes a work item from the mirror.
func (r *WorkflowItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflow_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("workflow item %s not found", id)
	}

	return nil
}

// GetNextID returns the next available work item ID.
// Uses the core function for the ID format to keep business logic in
// the functional core.
func (r *WorkflowItemRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 4) AS INTEGER)), 0) FROM workflow_items",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next workflow item ID: %w", err)
	}

	return coreworkflow.GenerateItemID(maxID), nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflowItem(s scanner) (*secondary.WorkflowItemRecord, error) {
	var (
		boardItemID sql.NullString
		issueNumber sql.NullInt64
		issueURL    sql.NullString
		issueTitle  sql.NullString
		review      sql.NullString
		implPhase   sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.WorkflowItemRecord{}
	err := s.Scan(
		&record.ID, &boardItemID, &issueNumber, &issueURL, &issueTitle,
		&record.Type, &record.Status, &review, &implPhase,
		&record.SourceType, &record.SourceID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.BoardItemID = boardItemID.String
	record.IssueNumber = int(issueNumber.Int64)
	record.IssueURL = issueURL.String
	record.IssueTitle = issueTitle.String
	record.ReviewStatus = review.String
	record.ImplementationPhase = implPhase.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// Ensure WorkflowItemRepository implements the interface
var _ secondary.WorkflowItemRepository = (*WorkflowItemRepository)(nil)
