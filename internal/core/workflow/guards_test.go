package workflow

import "testing"

func TestCanApplyGate(t *testing.T) {
	tests := []struct {
		name        string
		status      Status
		gate        ReviewStatus
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "can gate a design phase",
			status:      StatusTechnicalDesign,
			gate:        ReviewWaiting,
			wantAllowed: true,
		},
		{
			name:        "clearing a gate is always allowed",
			status:      StatusDone,
			gate:        ReviewNone,
			wantAllowed: true,
		},
		{
			name:        "cannot pair approved with done",
			status:      StatusDone,
			gate:        ReviewApproved,
			wantAllowed: false,
			wantReason:  `phase "Done" does not admit a review gate`,
		},
		{
			name:        "cannot pair a gate with rejected",
			status:      StatusRejected,
			gate:        ReviewWaiting,
			wantAllowed: false,
			wantReason:  `phase "Rejected" does not admit a review gate`,
		},
		{
			name:        "unknown gate is rejected",
			status:      StatusImplementation,
			gate:        ReviewStatus("On Hold"),
			wantAllowed: false,
			wantReason:  `unknown review status "On Hold"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanApplyGate(tt.status, tt.gate)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanSubmitCustomSelection(t *testing.T) {
	if result := CanSubmitCustomSelection(""); result.Allowed {
		t.Error("custom selection without solution text must be rejected")
	}
	if result := CanSubmitCustomSelection("rework the cache layer"); !result.Allowed {
		t.Errorf("custom selection with solution text rejected: %s", result.Reason)
	}
}

func TestGuardResultError(t *testing.T) {
	allowed := GuardResult{Allowed: true}
	if err := allowed.Error(); err != nil {
		t.Errorf("allowed guard returned error: %v", err)
	}

	denied := GuardResult{Allowed: false, Reason: "nope"}
	err := denied.Error()
	if err == nil {
		t.Fatal("denied guard returned nil error")
	}
	if err.Error() != "nope" {
		t.Errorf("error = %q, want %q", err.Error(), "nope")
	}
}
