// Package decision contains the pure business logic for human and agent
// decisions: payload parsing, option resolution against routing maps,
// and the stateless tokens embedded in decision links. No I/O.
package decision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload kinds. A generic decision routes per option metadata; a fix
// selection is the bug-fix specialization with a restricted set of
// destinations.
const (
	KindDecision     = "decision"
	KindFixSelection = "fix-selection"
)

// payloadMarker introduces a machine-readable decision payload inside
// an issue comment. The payload is an HTML comment so it stays
// invisible in rendered views.
const payloadMarker = "<!-- flowboard:decision"

const payloadEnd = "-->"

// Option is a single selectable choice in a decision payload.
type Option struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Recommended bool              `json:"recommended,omitempty"`
}

// Routing describes how a selection resolves to a destination phase.
// Either MetadataKey+StatusMap (look up option metadata in the map) or
// CustomDestinationStatusMap (look up a caller-supplied destination
// string for free-text custom selections). Map values are phase names.
type Routing struct {
	MetadataKey                string            `json:"metadataKey,omitempty"`
	StatusMap                  map[string]string `json:"statusMap,omitempty"`
	CustomDestinationStatusMap map[string]string `json:"customDestinationStatusMap,omitempty"`
}

// Payload is a pending decision attached to an issue as a comment.
type Payload struct {
	Kind        string   `json:"kind"`
	IssueNumber int      `json:"issueNumber,omitempty"`
	Prompt      string   `json:"prompt,omitempty"`
	Options     []Option `json:"options"`
	Routing     *Routing `json:"routing,omitempty"`
}

// Encode renders the payload as a comment body fragment: the prompt (if
// any) followed by the hidden machine-readable block. The inverse of
// ExtractPayload.
func Encode(p *Payload) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal decision payload: %w", err)
	}

	var b strings.Builder
	if p.Prompt != "" {
		b.WriteString(p.Prompt)
		b.WriteString("\n\n")
	}
	b.WriteString(payloadMarker)
	b.WriteString("\n")
	b.Write(data)
	b.WriteString("\n")
	b.WriteString(payloadEnd)
	return b.String(), nil
}

// ExtractPayload parses a decision payload out of a comment body.
// Returns nil with no error when the body carries no payload.
func ExtractPayload(body string) (*Payload, error) {
	start := strings.Index(body, payloadMarker)
	if start < 0 {
		return nil, nil
	}
	rest := body[start+len(payloadMarker):]
	end := strings.Index(rest, payloadEnd)
	if end < 0 {
		return nil, fmt.Errorf("unterminated decision payload block")
	}

	var p Payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &p); err != nil {
		return nil, fmt.Errorf("failed to parse decision payload: %w", err)
	}
	if len(p.Options) == 0 {
		return nil, fmt.Errorf("decision payload has no options")
	}
	return &p, nil
}

// LatestPayload scans comment bodies newest-first and returns the most
// recent payload of the given kind, or nil if none is pending.
// Malformed payloads are skipped; at most one pending decision is
// meaningful at a time.
func LatestPayload(newestFirst []string, kind string) *Payload {
	for _, body := range newestFirst {
		p, err := ExtractPayload(body)
		if err != nil || p == nil {
			continue
		}
		if p.Kind == kind || (kind == KindDecision && p.Kind == "") {
			return p
		}
	}
	return nil
}
