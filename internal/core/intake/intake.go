// Package intake contains the pure business logic for intake records:
// the feature requests and bug reports that feed the workflow pipeline.
package intake

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/example/flowboard/internal/core/workflow"
)

// Type identifies the intake collection a record belongs to.
type Type string

const (
	TypeFeatureRequest Type = "feature-request"
	TypeBugReport      Type = "bug-report"
)

// ValidType reports whether t is a known intake collection.
func ValidType(t Type) bool {
	return t == TypeFeatureRequest || t == TypeBugReport
}

// ItemType maps an intake collection to the work item type it spawns.
func ItemType(t Type) workflow.ItemType {
	if t == TypeBugReport {
		return workflow.TypeBug
	}
	return workflow.TypeFeature
}

// GenerateID generates an intake record ID from the current max numeric
// ID. Feature requests get REQ-NNN, bug reports BUG-NNN.
func GenerateID(t Type, maxID int) string {
	prefix := "REQ"
	if t == TypeBugReport {
		prefix = "BUG"
	}
	return fmt.Sprintf("%s-%03d", prefix, maxID+1)
}

// NewApprovalToken generates a random opaque approval token. The token
// is single-use: it lives on the intake record until the atomic claim
// clears it.
func NewApprovalToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate approval token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
