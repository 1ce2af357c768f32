package decision

import (
	"fmt"

	"github.com/example/flowboard/internal/core/workflow"
)

// CustomOptionID is the reserved option identifier for free-text
// selections.
const CustomOptionID = "custom"

// Selection is what the caller picked. Exactly one of OptionID,
// ChooseRecommended, or the custom pair is meaningful.
type Selection struct {
	OptionID          string
	ChooseRecommended bool
	CustomSolution    string
	CustomDestination string
}

// Resolution is the outcome of resolving a selection against a payload.
// Routed is false when no destination could be determined; in that case
// MissingMapping names the lookup key that had no entry, if any. A
// missing mapping is a configuration gap, not a caller error.
type Resolution struct {
	Option         *Option
	Custom         bool
	CustomSolution string
	Routed         bool
	RoutedTo       workflow.Status
	MissingMapping string
}

// Resolve determines the destination phase for a selection.
//
// For a normal option the destination is statusMap[metadata[metadataKey]];
// for a custom selection it is customDestinationStatusMap[customDestination].
// A lookup key without a mapping leaves the resolution unrouted rather
// than failing. A destination outside the phase catalog is treated the
// same way.
func Resolve(p *Payload, sel Selection) (*Resolution, error) {
	if p == nil {
		return nil, fmt.Errorf("no pending decision")
	}

	if sel.OptionID == CustomOptionID {
		return resolveCustom(p, sel)
	}

	opt, err := pickOption(p, sel)
	if err != nil {
		return nil, err
	}

	res := &Resolution{Option: opt}
	if p.Routing == nil || p.Routing.MetadataKey == "" || opt.Metadata == nil {
		return res, nil
	}

	key := opt.Metadata[p.Routing.MetadataKey]
	if key == "" {
		return res, nil
	}

	target, ok := p.Routing.StatusMap[key]
	if !ok || !workflow.ValidStatus(workflow.Status(target)) {
		res.MissingMapping = key
		return res, nil
	}

	res.Routed = true
	res.RoutedTo = workflow.Status(target)
	return res, nil
}

func resolveCustom(p *Payload, sel Selection) (*Resolution, error) {
	if guard := workflow.CanSubmitCustomSelection(sel.CustomSolution); !guard.Allowed {
		return nil, guard.Error()
	}

	res := &Resolution{Custom: true, CustomSolution: sel.CustomSolution}
	if p.Routing == nil || sel.CustomDestination == "" {
		return res, nil
	}

	target, ok := p.Routing.CustomDestinationStatusMap[sel.CustomDestination]
	if !ok || !workflow.ValidStatus(workflow.Status(target)) {
		res.MissingMapping = sel.CustomDestination
		return res, nil
	}

	res.Routed = true
	res.RoutedTo = workflow.Status(target)
	return res, nil
}

func pickOption(p *Payload, sel Selection) (*Option, error) {
	if sel.ChooseRecommended {
		for i := range p.Options {
			if p.Options[i].Recommended {
				return &p.Options[i], nil
			}
		}
		// No explicit recommendation: the first option is the default.
		return &p.Options[0], nil
	}

	if sel.OptionID == "" {
		return nil, fmt.Errorf("no option selected")
	}
	for i := range p.Options {
		if p.Options[i].ID == sel.OptionID {
			return &p.Options[i], nil
		}
	}
	return nil, fmt.Errorf("unknown option %q", sel.OptionID)
}
