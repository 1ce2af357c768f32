package workflow

import "fmt"

// GenerateItemID generates a work item ID from the current max numeric ID.
// Format: WF-NNN with zero padding (e.g. WF-001, WF-042).
func GenerateItemID(maxID int) string {
	return fmt.Sprintf("WF-%03d", maxID+1)
}
