package workflow

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanApplyGate evaluates whether the given review gate may be applied
// to an item in the given phase.
// Rules:
// - The gate must be in the gate catalog
// - A non-empty gate requires a phase that admits gates
func CanApplyGate(status Status, gate ReviewStatus) GuardResult {
	if !ValidReviewStatus(gate) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown review status %q", gate),
		}
	}

	if gate != ReviewNone && !AdmitsGate(status) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("phase %q does not admit a review gate", status),
		}
	}

	return GuardResult{Allowed: true}
}

// CanSetStatus evaluates whether a caller-supplied status is a legal
// target for the workflow status update operation.
// Rules:
// - The status must be in the phase catalog
func CanSetStatus(status Status) GuardResult {
	if !ValidStatus(status) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid status %q", status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanSubmitCustomSelection evaluates whether a free-text "custom"
// decision selection is acceptable.
// Rules:
// - A custom selection always requires a non-empty solution text
func CanSubmitCustomSelection(customSolution string) GuardResult {
	if customSolution == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "custom selection requires a solution description",
		}
	}
	return GuardResult{Allowed: true}
}
