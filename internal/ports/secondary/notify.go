package secondary

import "context"

// Notifier delivers human-readable notifications to the chat boundary.
// Message formatting beyond plain text is the adapter's concern.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
