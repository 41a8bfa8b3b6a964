package pattern

import (
	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
)

type nodeState byte

const (
	nodeUnknown nodeState = iota
	nodeLive
	nodeMeasured
	nodeClassical
)

// Builder assembles a Pattern one command at a time, validating each command as it is appended.
//
// The first error encountered is sticky: every later call returns it and Build fails with it.
type Builder struct {
	cmds      []Command
	outputs   []pflow.NodeID
	classical []pflow.NodeID
	state     map[pflow.NodeID]nodeState
	err       error
}

func NewBuilder() *Builder {
	return &Builder{
		state: make(map[pflow.NodeID]nodeState),
	}
}

// Err returns the first validation error encountered, if any.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return b.err
}

// Classical declares nodes whose outcome bits are supplied classically.
// A classical node may appear in domains but is never prepared.
func (b *Builder) Classical(ids ...pflow.NodeID) error {
	if b.err != nil {
		return b.err
	}
	for _, id := range ids {
		if b.state[id] != nodeUnknown {
			return b.fail(errors.Wrapf(pflow.ErrMalformedPattern, "classical node %d already defined", id))
		}
		b.state[id] = nodeClassical
		b.classical = append(b.classical, id)
	}
	pflow.SortNodes(b.classical)
	return nil
}

// Outputs declares (in order) the nodes left unmeasured by the pattern.  Validated by Build.
func (b *Builder) Outputs(ids ...pflow.NodeID) error {
	if b.err != nil {
		return b.err
	}
	b.outputs = append(b.outputs, ids...)
	return nil
}

// Add validates and appends cmd.
func (b *Builder) Add(cmd Command) error {
	if b.err != nil {
		return b.err
	}

	var err error
	switch c := cmd.(type) {
	case N:
		if b.state[c.Node] != nodeUnknown {
			err = errors.Wrapf(pflow.ErrMalformedPattern, "node %d prepared twice", c.Node)
		} else {
			b.state[c.Node] = nodeLive
		}
	case E:
		switch {
		case c.A == c.B:
			err = errors.Wrapf(pflow.ErrMalformedPattern, "node %d entangled with itself", c.A)
		default:
			if err = b.requireLive(c.A, cmd); err == nil {
				err = b.requireLive(c.B, cmd)
			}
		}
	case M:
		if err = b.requireLive(c.Node, cmd); err != nil {
			break
		}
		if !c.Plane.Valid() {
			err = errors.Wrapf(pflow.ErrInvalidMeasurement, "node %d: plane %d", c.Node, c.Plane)
			break
		}
		if err = b.checkDomain(c.Node, c.S, cmd); err != nil {
			break
		}
		if err = b.checkDomain(c.Node, c.T, cmd); err != nil {
			break
		}
		b.state[c.Node] = nodeMeasured
	case Correction:
		if c.Axis != clifford.AxisX && c.Axis != clifford.AxisZ {
			err = errors.Wrapf(pflow.ErrMalformedPattern, "node %d: correction axis %v", c.Node, c.Axis)
			break
		}
		if err = b.requireLive(c.Node, cmd); err == nil {
			err = b.checkDomain(c.Node, c.Domain, cmd)
		}
	case C:
		if !c.Clifford.Valid() {
			err = errors.Wrapf(pflow.ErrMalformedPattern, "node %d: clifford code %d", c.Node, c.Clifford)
			break
		}
		err = b.requireLive(c.Node, cmd)
	default:
		err = errors.Wrapf(pflow.ErrMalformedPattern, "unsupported command %T", cmd)
	}

	if err != nil {
		return b.fail(err)
	}
	b.cmds = append(b.cmds, cmd)
	return nil
}

func (b *Builder) requireLive(id pflow.NodeID, cmd Command) error {
	switch b.state[id] {
	case nodeLive:
		return nil
	case nodeMeasured:
		return errors.Wrapf(pflow.ErrMalformedPattern, "%v: node %d already measured", cmd, id)
	case nodeClassical:
		return errors.Wrapf(pflow.ErrMalformedPattern, "%v: node %d is classical", cmd, id)
	}
	return errors.Wrapf(pflow.ErrMalformedPattern, "%v: node %d undefined", cmd, id)
}

// checkDomain requires every member of dom to be a measured (or classical) node other than self.
func (b *Builder) checkDomain(self pflow.NodeID, dom Domain, cmd Command) error {
	for _, id := range dom.Nodes() {
		if id == self {
			return errors.Wrapf(pflow.ErrMalformedPattern, "%v: domain references its own node", cmd)
		}
		switch b.state[id] {
		case nodeMeasured, nodeClassical:
		default:
			return errors.Wrapf(pflow.ErrMalformedPattern, "%v: domain references node %d before it is measured", cmd, id)
		}
	}
	return nil
}

// Prepare appends N(id).
func (b *Builder) Prepare(id pflow.NodeID) error {
	return b.Add(N{Node: id})
}

// Entangle appends E(a,b).
func (b *Builder) Entangle(a, c pflow.NodeID) error {
	return b.Add(E{A: a, B: c})
}

// Measure appends M(id, plane, angle, s, t).
func (b *Builder) Measure(id pflow.NodeID, plane Plane, angle Angle, s, t Domain) error {
	return b.Add(M{
		Node:        id,
		Measurement: Measurement{Plane: plane, Angle: angle},
		S:           s,
		T:           t,
	})
}

func (b *Builder) CorrectX(id pflow.NodeID, dom Domain) error {
	return b.Add(X(id, dom))
}

func (b *Builder) CorrectZ(id pflow.NodeID, dom Domain) error {
	return b.Add(Z(id, dom))
}

// Clifford appends C(id, op).
func (b *Builder) Clifford(id pflow.NodeID, op clifford.Clifford) error {
	return b.Add(C{Node: id, Clifford: op})
}

// Build validates the outputs and returns the finished Pattern.
//
// Every output must be live, no output may repeat, and every live node must be an output.
func (b *Builder) Build() (*Pattern, error) {
	if b.err != nil {
		return nil, b.err
	}

	isOutput := make(map[pflow.NodeID]bool, len(b.outputs))
	for _, id := range b.outputs {
		if isOutput[id] {
			return nil, b.fail(errors.Wrapf(pflow.ErrMalformedPattern, "output %d listed twice", id))
		}
		if b.state[id] != nodeLive {
			return nil, b.fail(errors.Wrapf(pflow.ErrMalformedPattern, "output %d is not a live node", id))
		}
		isOutput[id] = true
	}

	var stray []pflow.NodeID
	for id, st := range b.state {
		if st == nodeLive && !isOutput[id] {
			stray = append(stray, id)
		}
	}
	if len(stray) > 0 {
		return nil, b.fail(errors.Wrapf(pflow.ErrMalformedPattern, "nodes %v are neither measured nor outputs", pflow.SortNodes(stray)))
	}

	return &Pattern{
		cmds:      append([]Command(nil), b.cmds...),
		outputs:   append([]pflow.NodeID(nil), b.outputs...),
		classical: append([]pflow.NodeID(nil), b.classical...),
		isOutput:  isOutput,
	}, nil
}
