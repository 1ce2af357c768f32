package workflow

import (
	"testing"
	"time"
)

func TestWithinUndoWindow(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		originatedAt time.Time
		window       time.Duration
		want         bool
	}{
		{
			name:         "just inside default window",
			originatedAt: now.Add(-4 * time.Minute),
			window:       0,
			want:         true,
		},
		{
			name:         "exactly at default window boundary",
			originatedAt: now.Add(-5 * time.Minute),
			window:       0,
			want:         true,
		},
		{
			name:         "400 seconds is past the 300 second default",
			originatedAt: now.Add(-400 * time.Second),
			window:       0,
			want:         false,
		},
		{
			name:         "custom window honored",
			originatedAt: now.Add(-9 * time.Minute),
			window:       10 * time.Minute,
			want:         true,
		},
		{
			name:         "expired under custom window",
			originatedAt: now.Add(-11 * time.Minute),
			window:       10 * time.Minute,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinUndoWindow(tt.originatedAt, now, tt.window); got != tt.want {
				t.Errorf("WithinUndoWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUndoAlreadyApplied(t *testing.T) {
	prReview := StatusPRReview
	implementation := StatusImplementation
	cleared := ReviewNone
	approved := ReviewApproved

	tests := []struct {
		name        string
		current     Status
		currentGate ReviewStatus
		target      UndoTarget
		want        bool
	}{
		{
			name:        "status and cleared gate already restored",
			current:     StatusPRReview,
			currentGate: ReviewNone,
			target:      UndoTarget{Status: &prReview, ReviewStatus: &cleared},
			want:        true,
		},
		{
			name:        "status differs",
			current:     StatusImplementation,
			currentGate: ReviewNone,
			target:      UndoTarget{Status: &prReview, ReviewStatus: &cleared},
			want:        false,
		},
		{
			name:        "gate differs",
			current:     StatusImplementation,
			currentGate: ReviewApproved,
			target:      UndoTarget{Status: &implementation, ReviewStatus: &cleared},
			want:        false,
		},
		{
			name:        "untouched fields are ignored",
			current:     StatusImplementation,
			currentGate: ReviewApproved,
			target:      UndoTarget{Status: &implementation},
			want:        true,
		},
		{
			name:        "gate-only restore already applied",
			current:     StatusTechnicalDesign,
			currentGate: ReviewApproved,
			target:      UndoTarget{ReviewStatus: &approved},
			want:        true,
		},
		{
			name:        "empty target is trivially applied",
			current:     StatusDone,
			currentGate: ReviewNone,
			target:      UndoTarget{},
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UndoAlreadyApplied(tt.current, tt.currentGate, tt.target); got != tt.want {
				t.Errorf("UndoAlreadyApplied() = %v, want %v", got, tt.want)
			}
		})
	}
}
