package preprocess

import (
	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/pflow"
)

// pauliClifford returns X^x · Z^z as a group element.
func pauliClifford(x, z bool) clifford.Clifford {
	switch {
	case x && z:
		return clifford.Y
	case x:
		return clifford.X
	case z:
		return clifford.Z
	}
	return clifford.I
}

// outputOp is the operator X^X · Z^Z · Clifford acting on an output node (Clifford applied first).
type outputOp struct {
	Clifford clifford.Clifford
	X, Z     pattern.Domain
}

// applyPauli left-multiplies the Pauli of the given axis, raised to the affine parity a.
func (op *outputOp) applyPauli(axis clifford.Axis, a Affine) {
	if a.Bit {
		op.Clifford = clifford.FromPauli(axis).Mul(op.Clifford)
	}
	if axis == clifford.AxisX {
		op.X = op.X.SymDiff(a.Domain)
	} else {
		op.Z = op.Z.SymDiff(a.Domain)
	}
}

// applyClifford left-multiplies c: c · X^x Z^z · K = (c X c†)^x (c Z c†)^z · c · K.
func (op *outputOp) applyClifford(c clifford.Clifford) {
	var xDom, zDom pattern.Domain
	for _, term := range []struct {
		axis clifford.Axis
		dom  pattern.Domain
	}{
		{clifford.AxisX, op.X},
		{clifford.AxisZ, op.Z},
	} {
		img := c.Conj(clifford.Pauli{Axis: term.axis})
		if img.HasX() {
			xDom = xDom.SymDiff(term.dom)
		}
		if img.HasZ() {
			zDom = zDom.SymDiff(term.dom)
		}
	}
	op.X, op.Z = xDom, zDom
	op.Clifford = c.Mul(op.Clifford)
}

// emit assembles the optimized pattern in standard form: surviving preparations, the rewritten graph's edges,
// deferred measurements pulled back through their node's byproducts and decoration, then each output's operator.
func (d *driver) emit() (*pattern.Pattern, error) {
	b := pattern.NewBuilder()

	classical := d.src.Classical()
	for _, el := range d.res.Eliminations {
		if el.Random {
			classical = append(classical, el.Node)
		}
	}
	b.Classical(pflow.SortNodes(classical)...)
	b.Outputs(d.src.Outputs()...)

	for _, id := range d.src.Nodes() {
		if d.g.HasNode(id) {
			b.Prepare(id)
		}
	}
	for _, e := range d.g.Edges() {
		b.Entangle(e[0], e[1])
	}

	for _, n := range d.order {
		if n.state != stateDeferred {
			continue
		}
		cmd, err := d.deferredCommand(n)
		if err != nil {
			return nil, err
		}
		b.Add(cmd)
	}

	ops := make(map[pflow.NodeID]*outputOp)
	for _, id := range d.src.Outputs() {
		vop, err := d.g.DecorationOf(id)
		if err != nil {
			return nil, err
		}
		bx, bz := d.bx[id], d.bz[id]
		ops[id] = &outputOp{
			Clifford: pauliClifford(bx.Bit, bz.Bit).Mul(vop),
			X:        bx.Domain,
			Z:        bz.Domain,
		}
	}
	for _, cmd := range d.src.All() {
		switch c := cmd.(type) {
		case pattern.Correction:
			ops[c.Node].applyPauli(c.Axis, d.resolve(c.Domain))
		case pattern.C:
			ops[c.Node].applyClifford(c.Clifford)
		}
	}
	for _, id := range d.src.Outputs() {
		op := ops[id]
		if op.Clifford != clifford.I {
			b.Clifford(id, op.Clifford)
		}
		if !op.X.IsEmpty() {
			b.CorrectX(id, op.X)
		}
		if !op.Z.IsEmpty() {
			b.CorrectZ(id, op.Z)
		}
	}

	return b.Build()
}

// deferredCommand returns the measurement of n acting directly on the graph state |G>.
func (d *driver) deferredCommand(n *measNode) (pattern.M, error) {
	xDom, zDom := d.byproductDomains(n)
	meas, err := n.cmd.ApplyByproduct(xDom.Bit, zDom.Bit)
	if err != nil {
		return pattern.M{}, err
	}
	cmd := pattern.M{
		Node:        n.cmd.Node,
		Measurement: meas,
		S:           xDom.Domain,
		T:           zDom.Domain,
	}
	vop, err := d.g.DecorationOf(n.cmd.Node)
	if err != nil {
		return pattern.M{}, err
	}
	return cmd.Pullback(vop)
}
