package graphstate

import (
	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
)

// LocalComplement performs local complementation at v while preserving the represented state.
//
// Every edge between two distinct neighbors of v is toggled.  Since |τ_v(G)> = U|G> with
// U = √(-iX_v) ∏ √(+iZ_b) over the neighbors b, the decorations absorb U†:
//
//	vop[v] ← vop[v] · √(+iX)
//	vop[b] ← vop[b] · √(-iZ)
//
// An isolated v only has its own decoration changed.
func (X *GraphState) LocalComplement(v pflow.NodeID) error {
	nbrs, err := X.Neighbors(v)
	if err != nil {
		return errors.Wrapf(pflow.ErrUnknownNode, "local complement at %d", v)
	}

	for i, a := range nbrs {
		for _, b := range nbrs[i+1:] {
			if err := X.ToggleEdge(a, b); err != nil {
				return err
			}
		}
	}

	X.rightCompose(v, clifford.SqrtXdg)
	for _, b := range nbrs {
		X.rightCompose(b, clifford.S)
	}
	return nil
}
