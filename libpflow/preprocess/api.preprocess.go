package preprocess

import (
	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/libpflow/standardize"
	"github.com/2x3systems/pauliflow/pflow"
)

// Opts specifies how a pattern is preprocessed.
type Opts struct {
	Standardize  bool // standardize the input first (otherwise it must already be in N*, E*, M*, C* order)
	ShiftSignals bool // shift signals before eliminating, so fewer measurements wait on deferred outcomes
	MaxPasses    int  // 0 bounds the passes by the number of measurements
}

// DefaultOpts returns the recommended preprocessing options.
func DefaultOpts() Opts {
	return Opts{
		Standardize:  true,
		ShiftSignals: true,
	}
}

// Elimination records one Pauli measurement removed from the pattern.
type Elimination struct {
	Node   pflow.NodeID
	Basis  clifford.Pauli // the measured observable, before byproducts
	Pass   int            // one-based pass in which the node was eliminated
	Random bool           // outcome is a fair coin, supplied as a classical node of the output

	// Reconstruction gives a deterministic node's outcome over the classical outcomes of the output.
	// For a random node it is the node's own symbol.
	Reconstruction Affine
}

// Result is the outcome of preprocessing a pattern.
type Result struct {
	Pattern      *pattern.Pattern   // optimized pattern
	Eliminations []Elimination      // in the order performed
	Passes       int                // passes run until the fixed point
	Signals      standardize.Signals // signal shifting applied to the input, if any
}

// NumRandom returns the number of random eliminations.
// A branch of the optimized pattern has probability 2^NumRandom() times that of the matching input branch.
func (res *Result) NumRandom() int {
	n := 0
	for _, el := range res.Eliminations {
		if el.Random {
			n++
		}
	}
	return n
}

// ExpandOutcomes maps outcomes of the optimized pattern (its measurements and classical nodes)
// onto outcomes of every measured node of the input pattern.
func (res *Result) ExpandOutcomes(outcomes pflow.Outcomes) (pflow.Outcomes, error) {
	raw := outcomes.Clone()
	for _, el := range res.Eliminations {
		bit, err := el.Reconstruction.Eval(outcomes)
		if err != nil {
			return nil, err
		}
		raw[el.Node] = bit
	}
	if res.Signals == nil {
		return raw, nil
	}
	return res.Signals.Expand(raw)
}
