package standardize

import (
	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// byproduct is the operator accumulated on a live node since its preparation: Clifford · X^X · Z^Z,
// where the Pauli part is applied first.
type byproduct struct {
	Clifford clifford.Clifford
	X, Z     pattern.Domain
}

// addPauli left-multiplies the Pauli of the given axis, conditioned on dom, and pulls it through the Clifford.
func (bp *byproduct) addPauli(axis clifford.Axis, dom pattern.Domain) {
	if dom.IsEmpty() {
		return
	}
	p := bp.Clifford.Inv().Conj(clifford.Pauli{Axis: axis})
	if p.HasX() {
		bp.X = bp.X.SymDiff(dom)
	}
	if p.HasZ() {
		bp.Z = bp.Z.SymDiff(dom)
	}
}

// Standardize returns a pattern equivalent to p in N*, E*, M*, C* order.
//
// Corrections are pushed forward: through E(a,b) an X on a adds a Z on b, a measurement absorbs the
// byproducts of its node into its S and T domains, and a Clifford is folded into the next measurement of its node.
// A Clifford still pending on a node when that node is entangled yields ErrMalformedPattern.
// Byproducts left on outputs are emitted at the end as C, X and Z commands.
func Standardize(p *pattern.Pattern) (*pattern.Pattern, error) {
	var (
		preps []pattern.Command
		ents  []pattern.Command
		meas  []pattern.Command
	)
	pending := make(map[pflow.NodeID]*byproduct)

	for _, cmd := range p.All() {
		switch c := cmd.(type) {
		case pattern.N:
			pending[c.Node] = &byproduct{}
			preps = append(preps, c)

		case pattern.E:
			a, b := pending[c.A], pending[c.B]
			if a.Clifford != clifford.I || b.Clifford != clifford.I {
				return nil, errors.Wrapf(pflow.ErrMalformedPattern, "%v: local Clifford precedes entanglement", c)
			}
			// CZ·X_a = X_a·Z_b·CZ
			ax, bx := a.X, b.X
			a.Z = a.Z.SymDiff(bx)
			b.Z = b.Z.SymDiff(ax)
			ents = append(ents, c)

		case pattern.M:
			bp := pending[c.Node]
			m, err := c.Pullback(bp.Clifford)
			if err != nil {
				return nil, err
			}
			m.S = m.S.SymDiff(bp.X)
			m.T = m.T.SymDiff(bp.Z)
			delete(pending, c.Node)
			meas = append(meas, m)

		case pattern.Correction:
			pending[c.Node].addPauli(c.Axis, c.Domain)

		case pattern.C:
			bp := pending[c.Node]
			bp.Clifford = c.Clifford.Mul(bp.Clifford)
		}
	}

	b := pattern.NewBuilder()
	b.Classical(p.Classical()...)
	b.Outputs(p.Outputs()...)
	for _, group := range [][]pattern.Command{preps, ents, meas} {
		for _, cmd := range group {
			b.Add(cmd)
		}
	}
	for _, id := range p.Outputs() {
		emitByproduct(b, id, pending[id])
	}

	out, err := b.Build()
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("standardize: %v -> %v", p.Stats(), out.Stats())
	return out, nil
}

// emitByproduct appends C, X, Z commands equal to bp: Clifford · X^x · Z^z = (C X C†)^x · (C Z C†)^z · Clifford.
func emitByproduct(b *pattern.Builder, id pflow.NodeID, bp *byproduct) {
	if bp.Clifford != clifford.I {
		b.Clifford(id, bp.Clifford)
	}
	var xDom, zDom pattern.Domain
	for _, term := range []struct {
		axis clifford.Axis
		dom  pattern.Domain
	}{
		{clifford.AxisX, bp.X},
		{clifford.AxisZ, bp.Z},
	} {
		img := bp.Clifford.Conj(clifford.Pauli{Axis: term.axis})
		if img.HasX() {
			xDom = xDom.SymDiff(term.dom)
		}
		if img.HasZ() {
			zDom = zDom.SymDiff(term.dom)
		}
	}
	if !xDom.IsEmpty() {
		b.CorrectX(id, xDom)
	}
	if !zDom.IsEmpty() {
		b.CorrectZ(id, zDom)
	}
}

func phaseOf(cmd pattern.Command) int {
	switch cmd.Kind() {
	case pattern.KindN:
		return 0
	case pattern.KindE:
		return 1
	case pattern.KindM:
		return 2
	}
	return 3
}

// IsStandard reports if p is in N*, E*, M*, C* order.
func IsStandard(p *pattern.Pattern) bool {
	phase := 0
	for _, cmd := range p.All() {
		next := phaseOf(cmd)
		if next < phase {
			return false
		}
		phase = next
	}
	return true
}
