package app

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/example/flowboard/internal/core/intake"
	"github.com/example/flowboard/internal/ports/primary"
	"github.com/example/flowboard/internal/ports/secondary"
)

// IntakeServiceImpl implements the IntakeService interface.
type IntakeServiceImpl struct {
	intakeRepo secondary.IntakeRepository
	notifier   secondary.Notifier
	actionLog  secondary.ActionLogWriter

	// baseURL is the externally reachable server address approval links
	// are built against.
	baseURL string
}

// NewIntakeService creates a new IntakeService with injected
// dependencies.
func NewIntakeService(
	intakeRepo secondary.IntakeRepository,
	notifier secondary.Notifier,
	actionLog secondary.ActionLogWriter,
	baseURL string,
) *IntakeServiceImpl {
	return &IntakeServiceImpl{
		intakeRepo: intakeRepo,
		notifier:   notifier,
		actionLog:  actionLog,
		baseURL:    baseURL,
	}
}

// SubmitIntake files a new feature request or bug report and returns
// its one-time approval link.
func (s *IntakeServiceImpl) SubmitIntake(ctx context.Context, req primary.SubmitIntakeRequest) (*primary.SubmitIntakeResponse, error) {
	intakeType := intake.Type(req.Type)
	if !intake.ValidType(intakeType) {
		return nil, fmt.Errorf("invalid intake type %q", req.Type)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	id, err := s.intakeRepo.GetNextID(ctx, req.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to generate intake ID: %w", err)
	}

	token, err := intake.NewApprovalToken()
	if err != nil {
		return nil, err
	}

	rec := &secondary.IntakeRecord{
		ID:            id,
		Type:          req.Type,
		Title:         req.Title,
		Description:   req.Description,
		Submitter:     req.Submitter,
		ApprovalToken: token,
	}
	if err := s.intakeRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create intake record: %w", err)
	}

	approvalURL := s.approvalURL(id, token)

	if s.notifier != nil {
		msg := fmt.Sprintf("New %s %s: %s\nApprove: %s", req.Type, id, req.Title, approvalURL)
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Printf("warning: failed to send intake notification: %v", err)
		}
	}
	if s.actionLog != nil {
		if err := s.actionLog.LogAction(ctx, "intake", id, "submit", req.Title); err != nil {
			log.Printf("warning: failed to write action log: %v", err)
		}
	}

	return &primary.SubmitIntakeResponse{IntakeID: id, ApprovalURL: approvalURL}, nil
}

// GetIntake retrieves an intake record by ID.
func (s *IntakeServiceImpl) GetIntake(ctx context.Context, id string) (*primary.IntakeRecord, error) {
	rec, err := s.intakeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("intake record %s not found", id)
	}
	return recordToIntake(rec), nil
}

// ListIntakes lists intake records matching the filters.
func (s *IntakeServiceImpl) ListIntakes(ctx context.Context, filters primary.IntakeFilters) ([]*primary.IntakeRecord, error) {
	records, err := s.intakeRepo.List(ctx, secondary.IntakeFilters{
		Type:    filters.Type,
		Pending: filters.Pending,
		Limit:   filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*primary.IntakeRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, recordToIntake(rec))
	}
	return out, nil
}

// ReissueToken installs a fresh approval token on a record that lost
// its token without gaining an issue. Records that already spawned an
// issue can never get a new token.
func (s *IntakeServiceImpl) ReissueToken(ctx context.Context, id string) (*primary.SubmitIntakeResponse, error) {
	rec, err := s.intakeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("intake record %s not found", id)
	}
	if rec.IssueURL != "" {
		return nil, fmt.Errorf("intake record %s is already approved", id)
	}

	token, err := intake.NewApprovalToken()
	if err != nil {
		return nil, err
	}
	if err := s.intakeRepo.SetApprovalToken(ctx, id, token); err != nil {
		return nil, fmt.Errorf("failed to set approval token: %w", err)
	}

	if s.actionLog != nil {
		if err := s.actionLog.LogAction(ctx, "intake", id, "reissue-token", ""); err != nil {
			log.Printf("warning: failed to write action log: %v", err)
		}
	}

	return &primary.SubmitIntakeResponse{IntakeID: id, ApprovalURL: s.approvalURL(id, token)}, nil
}

// DeleteIntake removes an intake record.
func (s *IntakeServiceImpl) DeleteIntake(ctx context.Context, id string) error {
	if err := s.intakeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete intake record: %w", err)
	}
	if s.actionLog != nil {
		if err := s.actionLog.LogAction(ctx, "intake", id, "delete", ""); err != nil {
			log.Printf("warning: failed to write action log: %v", err)
		}
	}
	return nil
}

func (s *IntakeServiceImpl) approvalURL(id, token string) string {
	return fmt.Sprintf("%s/approve/%s?token=%s", s.baseURL, id, url.QueryEscape(token))
}

func recordToIntake(rec *secondary.IntakeRecord) *primary.IntakeRecord {
	return &primary.IntakeRecord{
		ID:          rec.ID,
		Type:        rec.Type,
		Title:       rec.Title,
		Description: rec.Description,
		Submitter:   rec.Submitter,
		HasToken:    rec.ApprovalToken != "",
		IssueNumber: rec.IssueNumber,
		IssueURL:    rec.IssueURL,
		CreatedAt:   rec.CreatedAt,
	}
}
