package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	coreintake "github.com/example/flowboard/internal/core/intake"
	"github.com/example/flowboard/internal/ports/secondary"
)

// IntakeRepository implements secondary.IntakeRepository with SQLite.
type IntakeRepository struct {
	db *sql.DB
}

// NewIntakeRepository creates a new SQLite intake repository.
func NewIntakeRepository(db *sql.DB) *IntakeRepository {
	return &IntakeRepository{db: db}
}

const intakeColumns = "id, type, title, description, submitter, approval_token, issue_number, issue_url, created_at"

// Create persists a new intake record.
// ID and ApprovalToken must be pre-populated by the service layer.
func (r *IntakeRepository) Create(ctx context.Context, rec *secondary.IntakeRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("intake ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO intake_records (id, type, title, description, submitter, approval_token)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Type,
		rec.Title,
		nullString(rec.Description),
		nullString(rec.Submitter),
		nullString(rec.ApprovalToken),
	)
	if err != nil {
		return fmt.Errorf("failed to create intake record: %w", err)
	}

	return nil
}

// GetByID retrieves an intake record by its ID.
func (r *IntakeRepository) GetByID(ctx context.Context, id string) (*secondary.IntakeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+intakeColumns+" FROM intake_records WHERE id = ?", id)
	record, err := scanIntake(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("intake record %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intake record: %w", err)
	}
	return record, nil
}

// List retrieves intake records matching the given filters.
func (r *IntakeRepository) List(ctx context.Context, filters secondary.IntakeFilters) ([]*secondary.IntakeRecord, error) {
	query := "SELECT " + intakeColumns + " FROM intake_records WHERE 1=1"
	args := []any{}

	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}
	if filters.Pending {
		query += " AND approval_token IS NOT NULL AND approval_token != ''"
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake records: %w", err)
	}
	defer rows.Close()

	var records []*secondary.IntakeRecord
	for rows.Next() {
		record, err := scanIntake(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan intake record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

// ClaimApprovalToken atomically clears a live approval token and
// returns the pre-claim record. An unknown record reports no live
// token, same as a spent one.
//
// The claim is a read followed by a compare-and-swap UPDATE keyed on
// the token value just read. The UPDATE is a single atomic statement,
// so of any number of concurrent claims exactly one sees a row
// affected; the losers observe zero rows and report no live token.
// This closes the TOCTOU race where two near-simultaneous approval
// clicks would both pass a naive check-then-clear.
func (r *IntakeRepository) ClaimApprovalToken(ctx context.Context, id string) (*secondary.IntakeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+intakeColumns+" FROM intake_records WHERE id = ?", id)
	record, err := scanIntake(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim approval token: %w", err)
	}
	if record.ApprovalToken == "" {
		return nil, nil
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE intake_records SET approval_token = NULL WHERE id = ? AND approval_token = ?",
		id, record.ApprovalToken,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim approval token: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Lost the race: someone else claimed (or re-issued) between
		// our read and the swap.
		return nil, nil
	}

	return record, nil
}

// SetApprovalToken installs a token on a record. Used for best-effort
// restoration after a failed approval and for manual re-issue.
func (r *IntakeRepository) SetApprovalToken(ctx context.Context, id, token string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE intake_records SET approval_token = ? WHERE id = ?",
		nullString(token), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set approval token: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("intake record %s not found", id)
	}

	return nil
}

// UpdateIssueFields records the external issue created for an approved
// intake record.
func (r *IntakeRepository) UpdateIssueFields(ctx context.Context, id string, issueNumber int, issueURL string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE intake_records SET issue_number = ?, issue_url = ? WHERE id = ?",
		nullInt(issueNumber), nullString(issueURL), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update issue fields: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("intake record %s not found", id)
	}

	return nil
}

// Delete removes an intake record.
func (r *IntakeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM intake_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete intake record: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("intake record %s not found", id)
	}

	return nil
}

// GetNextID returns the next available intake ID for the given type.
func (r *IntakeRepository) GetNextID(ctx context.Context, intakeType string) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM intake_records WHERE type = ?",
		intakeType,
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next intake ID: %w", err)
	}

	return coreintake.GenerateID(coreintake.Type(intakeType), maxID), nil
}

func scanIntake(s scanner) (*secondary.IntakeRecord, error) {
	var (
		description sql.NullString
		submitter   sql.NullString
		token       sql.NullString
		issueNumber sql.NullInt64
		issueURL    sql.NullString
		createdAt   time.Time
	)

	record := &secondary.IntakeRecord{}
	err := s.Scan(
		&record.ID, &record.Type, &record.Title, &description, &submitter,
		&token, &issueNumber, &issueURL, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.Description = description.String
	record.Submitter = submitter.String
	record.ApprovalToken = token.String
	record.IssueNumber = int(issueNumber.Int64)
	record.IssueURL = issueURL.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// Ensure IntakeRepository implements the interface
var _ secondary.IntakeRepository = (*IntakeRepository)(nil)
