package preprocess

import (
	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// resolve rewrites dom over settled symbols, substituting the reconstruction of every deterministic elimination.
func (d *driver) resolve(dom pattern.Domain) Affine {
	var out Affine
	for _, id := range dom.Nodes() {
		if r, ok := d.recon[id]; ok {
			out = out.Xor(r)
		} else {
			out = out.Xor(Symbol(id))
		}
	}
	return out
}

// byproductDomains returns the total X and Z byproducts acting on n's node just before it is measured.
func (d *driver) byproductDomains(n *measNode) (xDom, zDom Affine) {
	id := n.cmd.Node
	xDom = d.resolve(n.cmd.S).Xor(d.bx[id])
	zDom = d.resolve(n.cmd.T).Xor(d.bz[id])
	return
}

// sign returns the parity by which byproducts flip the sign of n's observable.
func (d *driver) sign(n *measNode) Affine {
	xDom, zDom := d.byproductDomains(n)
	var sigma Affine
	if n.basis.Anticommutes(clifford.PauliX) {
		sigma = sigma.Xor(xDom)
	}
	if n.basis.Anticommutes(clifford.PauliZ) {
		sigma = sigma.Xor(zDom)
	}
	return sigma
}

// eliminate removes n's node from the graph by simulating its Pauli measurement.
//
// Measuring the observable O with outcome s on B·V·|G> is measuring the bare Pauli P = ±vop†·O·vop on |G>
// with outcome m = s ⊕ σ ⊕ [P negative], where σ is the sign flip due to B.
// Local complementation rotates P into Z (X → Y via a neighbor, Y → Z at the node itself).
// A bare Z outcome m leaves the neighbors with Z^m, i.e. the byproduct vop[b]·Z·vop[b]† conditioned on m.
// A bare X on an isolated node always yields m = 0.
func (d *driver) eliminate(n *measNode) error {
	v := n.cmd.Node
	sigma := d.sign(n)

	for step := 0; step < 3; step++ {
		vop, err := d.g.DecorationOf(v)
		if err != nil {
			return err
		}
		bare := vop.Inv().Conj(n.basis)
		nbrs, err := d.g.Neighbors(v)
		if err != nil {
			return err
		}

		switch bare.Axis {
		case clifford.AxisX:
			if len(nbrs) == 0 {
				recon := sigma.Xor(Const(bare.Neg))
				d.recon[v] = recon
				return d.finish(n, false, recon)
			}
			if err = d.localComplement(nbrs[0]); err != nil {
				return err
			}

		case clifford.AxisY:
			if err = d.localComplement(v); err != nil {
				return err
			}

		case clifford.AxisZ:
			m := Symbol(v).Xor(sigma).Xor(Const(bare.Neg))
			for _, b := range nbrs {
				vopB, err := d.g.DecorationOf(b)
				if err != nil {
					return err
				}
				P := vopB.Conj(clifford.PauliZ)
				if P.HasX() {
					d.bx[b] = d.bx[b].Xor(m)
				}
				if P.HasZ() {
					d.bz[b] = d.bz[b].Xor(m)
				}
				if err = d.g.ToggleEdge(v, b); err != nil {
					return err
				}
			}
			return d.finish(n, true, Symbol(v))
		}
	}

	return errors.Wrapf(pflow.ErrInvalidMeasurement, "node %d: bare Pauli did not reach Z", v)
}

func (d *driver) localComplement(v pflow.NodeID) error {
	LocalComplementsTotal.Inc()
	return d.g.LocalComplement(v)
}

func (d *driver) finish(n *measNode, random bool, recon Affine) error {
	v := n.cmd.Node
	if err := d.g.RemoveNode(v); err != nil {
		return err
	}
	delete(d.bx, v)
	delete(d.bz, v)

	n.state = stateEliminated
	n.elimPass = d.pass
	d.res.Eliminations = append(d.res.Eliminations, Elimination{
		Node:           v,
		Basis:          n.basis,
		Pass:           d.pass,
		Random:         random,
		Reconstruction: recon,
	})

	outcome := "deterministic"
	if random {
		outcome = "random"
	}
	EliminationsTotal.WithLabelValues(n.basis.Axis.String(), outcome).Inc()
	klog.V(3).Infof("preprocess: pass %d: eliminated node %d (%v, %s), outcome %v", d.pass, v, n.basis, outcome, recon)
	return nil
}
