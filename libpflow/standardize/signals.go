package standardize

import (
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/plan-systems/klog"
)

// Signals maps a measured node to the domain whose parity flipped its outcome.
// The outcome of node v in the unshifted pattern is raw(v) ⊕ parity(Signals[v]) over the shifted pattern's raw outcomes.
type Signals map[pflow.NodeID]pattern.Domain

// Expand returns raw extended with the unshifted outcome of every node that has a signal.
func (sig Signals) Expand(raw pflow.Outcomes) (pflow.Outcomes, error) {
	out := raw.Clone()
	for id, dom := range sig {
		bit, err := dom.Parity(raw)
		if err != nil {
			return nil, err
		}
		if r, ok := raw[id]; ok {
			out[id] = r ^ bit
		}
	}
	return out, nil
}

// substitute rewrites dom over raw outcomes: each member v becomes v ⊕ sig[v].
func (sig Signals) substitute(dom pattern.Domain) pattern.Domain {
	out := dom
	for _, id := range dom.Nodes() {
		if s, ok := sig[id]; ok {
			out = out.SymDiff(s)
		}
	}
	return out
}

// ShiftSignals removes from every measurement the part of its domains that merely flips its outcome:
// T in the XY plane, S in the YZ plane and, in the XZ plane, T (with S ← S ⊕ T, since X·Z ∝ Y).
// Every later reference to a shifted node v is replaced by v ⊕ signal(v).
//
// The returned pattern is equivalent to p up to the outcome relabeling described by the returned Signals.
func ShiftSignals(p *pattern.Pattern) (*pattern.Pattern, Signals, error) {
	sig := make(Signals)

	b := pattern.NewBuilder()
	b.Classical(p.Classical()...)
	b.Outputs(p.Outputs()...)
	for _, cmd := range p.All() {
		switch c := cmd.(type) {
		case pattern.M:
			c.S = sig.substitute(c.S)
			c.T = sig.substitute(c.T)

			var flip pattern.Domain
			switch c.Plane {
			case pattern.PlaneXY:
				flip, c.T = c.T, pattern.Domain{}
			case pattern.PlaneYZ:
				flip, c.S = c.S, pattern.Domain{}
			case pattern.PlaneXZ:
				flip = c.T
				c.S = c.S.SymDiff(c.T)
				c.T = pattern.Domain{}
			}
			if !flip.IsEmpty() {
				sig[c.Node] = flip
			}
			cmd = c

		case pattern.Correction:
			c.Domain = sig.substitute(c.Domain)
			cmd = c
		}
		b.Add(cmd)
	}

	out, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	klog.V(2).Infof("shift signals: %d measurements shifted", len(sig))
	return out, sig, nil
}
