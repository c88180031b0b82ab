package backbone

// Config selects which of Algorithm 3's pruning heuristics are applied
// while narrowing the candidate set down to the true backbone. Every
// subset of the five flags is a legal (if not always equally fast)
// configuration: disabling all of them still computes the correct
// backbone, just with one SAT call per relevant variable instead of
// fewer.
type Config struct {
	// InitialLBUPZero classifies a relevant variable as backbone
	// immediately, without a SAT call, when its value is already forced
	// by unit propagation at decision level 0 in the initial model.
	InitialLBUPZero bool

	// InitialUBRotatable drops a relevant variable from the candidate
	// set up front, without a SAT call, when its model-consistent
	// literal is rotatable (flippable without falsifying any clause,
	// which proves it is not a backbone literal).
	InitialUBRotatable bool

	// UPZero re-checks, after every SAT call that refines the model,
	// whether a remaining candidate has become a unit-propagated
	// decision-level-0 fact and promotes it to the backbone if so.
	UPZero bool

	// ComplementModel drops a remaining candidate when the most recent
	// model disagrees with it, proving it is not a backbone literal.
	ComplementModel bool

	// Rotatable drops a remaining candidate when it is rotatable in the
	// most recent model.
	Rotatable bool
}

// DefaultConfig enables every heuristic.
func DefaultConfig() Config {
	return Config{
		InitialLBUPZero:    true,
		InitialUBRotatable: true,
		UPZero:             true,
		ComplementModel:    true,
		Rotatable:          true,
	}
}
