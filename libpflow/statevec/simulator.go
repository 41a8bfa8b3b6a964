package statevec

import (
	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
)

// Branch is the result of running a pattern for one fixed assignment of outcomes.
type Branch struct {
	State *StateVector // normalized output state; qubit k holds Outputs()[k]
	Prob  float64      // probability of observing the given outcomes (classical bits not counted)
}

// Backend evaluates the logical effect of a pattern for concrete measurement outcomes.
type Backend interface {
	Run(p *pattern.Pattern, outcomes pflow.Outcomes) (*Branch, error)
}

// Simulator is a dense statevector Backend that post-selects every measurement on the given outcome.
type Simulator struct{}

var _ Backend = Simulator{}

// Run executes p, taking each measurement's outcome (and every classical node's bit) from outcomes.
//
// A branch of probability zero yields Prob == 0 and a nil State.
func (Simulator) Run(p *pattern.Pattern, outcomes pflow.Outcomes) (*Branch, error) {
	s := NewStateVector(0)
	var slots []pflow.NodeID

	slotOf := func(id pflow.NodeID) (int, error) {
		for i, sid := range slots {
			if sid == id {
				return i, nil
			}
		}
		return -1, errors.Wrapf(pflow.ErrUnknownNode, "node %d not live", id)
	}

	for _, cmd := range p.All() {
		switch c := cmd.(type) {
		case pattern.N:
			slots = append(slots, c.Node)
			s.AddPlus()

		case pattern.E:
			qa, err := slotOf(c.A)
			if err != nil {
				return nil, err
			}
			qb, err := slotOf(c.B)
			if err != nil {
				return nil, err
			}
			s.ApplyCZ(qa, qb)

		case pattern.M:
			q, err := slotOf(c.Node)
			if err != nil {
				return nil, err
			}
			bit, ok := outcomes[c.Node]
			if !ok {
				return nil, errors.Wrapf(pflow.ErrMissingOutcome, "node %d", c.Node)
			}
			sBit, err := c.S.Parity(outcomes)
			if err != nil {
				return nil, err
			}
			tBit, err := c.T.Parity(outcomes)
			if err != nil {
				return nil, err
			}
			if sBit == 1 {
				s.ApplyPauli(q, clifford.AxisX)
			}
			if tBit == 1 {
				s.ApplyPauli(q, clifford.AxisZ)
			}
			A, B := c.Plane.Axes()
			s.Project(q, Eigenvector(A, B, c.Angle.Radians(), bit))
			slots = append(slots[:q], slots[q+1:]...)

		case pattern.Correction:
			q, err := slotOf(c.Node)
			if err != nil {
				return nil, err
			}
			bit, err := c.Domain.Parity(outcomes)
			if err != nil {
				return nil, err
			}
			if bit == 1 {
				s.ApplyPauli(q, c.Axis)
			}

		case pattern.C:
			q, err := slotOf(c.Node)
			if err != nil {
				return nil, err
			}
			s.Apply1(q, c.Clifford.Matrix())
		}
	}

	// Permute so that qubit k holds the k-th output.
	outputs := p.Outputs()
	perm := make([]int, len(outputs))
	for k, id := range outputs {
		q, err := slotOf(id)
		if err != nil {
			return nil, err
		}
		perm[k] = q
	}
	out := NewStateVector(len(outputs))
	for i := range out.Amps {
		src := 0
		for k, q := range perm {
			if i&(1<<k) != 0 {
				src |= 1 << q
			}
		}
		out.Amps[i] = s.Amps[src]
	}

	prob := out.Normalize()
	if prob < 1e-12 {
		return &Branch{Prob: 0}, nil
	}
	return &Branch{
		State: out,
		Prob:  prob,
	}, nil
}
