package workflow

// RoutingTables are the immutable lookup tables injected into the
// routing engine at startup. They back decisions whose payloads rely on
// server-side configuration rather than carrying their own maps.
type RoutingTables struct {
	// NextPhase maps a design-phase key found in option metadata to
	// the phase it routes to.
	NextPhase map[string]Status

	// FixDestinations maps a bug-fix selection destination to the
	// phase it routes to. Fix selections are restricted to exactly
	// these destinations.
	FixDestinations map[string]Status
}

// DefaultRoutingTables returns the stock routing configuration.
// Bug items route product design to technical design and technical
// design to implementation; fix selections only ever route to
// implementation or back to technical design.
func DefaultRoutingTables() RoutingTables {
	return RoutingTables{
		NextPhase: map[string]Status{
			"product-development": StatusProductDesign,
			"product-design":      StatusTechnicalDesign,
			"tech-design":         StatusImplementation,
		},
		FixDestinations: map[string]Status{
			"implement":   StatusImplementation,
			"tech-design": StatusTechnicalDesign,
		},
	}
}
