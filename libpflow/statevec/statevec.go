package statevec

import (
	"math"
	"math/cmplx"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	graphstate "github.com/2x3systems/pauliflow/libpflow/graph-state"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
)

// StateVector holds the amplitudes of an (unnormalized) n-qubit state.
// Qubit k is bit k of the amplitude index.
type StateVector struct {
	Amps []complex128
}

func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amps: amps}
}

func (s *StateVector) NumQubits() int {
	n := 0
	for 1<<n < len(s.Amps) {
		n++
	}
	return n
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amps))
	copy(amps, s.Amps)
	return &StateVector{Amps: amps}
}

// Norm2 returns <ψ|ψ>.
func (s *StateVector) Norm2() float64 {
	sum := 0.0
	for _, a := range s.Amps {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return sum
}

// Normalize scales this state to unit norm and returns the prior squared norm.
func (s *StateVector) Normalize() float64 {
	n2 := s.Norm2()
	if n2 > 0 {
		scale := complex(1/math.Sqrt(n2), 0)
		for i := range s.Amps {
			s.Amps[i] *= scale
		}
	}
	return n2
}

// AddPlus appends a qubit in |+> as the new highest bit and returns its index.
func (s *StateVector) AddPlus() int {
	q := s.NumQubits()
	n := len(s.Amps)
	r := complex(1/math.Sqrt2, 0)
	amps := make([]complex128, 2*n)
	for i, a := range s.Amps {
		amps[i] = r * a
		amps[i+n] = r * a
	}
	s.Amps = amps
	return q
}

func (s *StateVector) ApplyCZ(a, b int) {
	mask := 1<<a | 1<<b
	for i := range s.Amps {
		if i&mask == mask {
			s.Amps[i] = -s.Amps[i]
		}
	}
}

// Apply1 applies the 2x2 matrix U to qubit q.
func (s *StateVector) Apply1(q int, U [2][2]complex128) {
	bit := 1 << q
	for i := range s.Amps {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amps[i], s.Amps[j]
			s.Amps[i] = U[0][0]*a0 + U[0][1]*a1
			s.Amps[j] = U[1][0]*a0 + U[1][1]*a1
		}
	}
}

func (s *StateVector) ApplyPauli(q int, axis clifford.Axis) {
	s.Apply1(q, pauliMatrices[axis])
}

// Project contracts qubit q with <bra| and removes it; higher qubits shift down by one.
// The result is unnormalized, so its squared norm carries the branch probability.
func (s *StateVector) Project(q int, bra [2]complex128) {
	bit := 1 << q
	low := bit - 1
	amps := make([]complex128, len(s.Amps)/2)
	for k := range amps {
		i := (k &^ low << 1) | (k & low)
		amps[k] = cmplx.Conj(bra[0])*s.Amps[i] + cmplx.Conj(bra[1])*s.Amps[i|bit]
	}
	s.Amps = amps
}

var pauliMatrices = [3][2][2]complex128{
	{{0, 1}, {1, 0}},
	{{0, -1i}, {1i, 0}},
	{{1, 0}, {0, -1}},
}

// Eigenvector returns the unit eigenvector of cos(θ)·A + sin(θ)·B for eigenvalue +1 (outcome 0) or -1 (outcome 1).
func Eigenvector(A, B clifford.Axis, theta float64, outcome uint8) [2]complex128 {
	sign := complex(1, 0)
	if outcome&1 == 1 {
		sign = -1
	}
	c, sn := complex(math.Cos(theta), 0), complex(math.Sin(theta), 0)
	var P [2][2]complex128 // (I ± O) / 2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			o := c*pauliMatrices[A][i][j] + sn*pauliMatrices[B][i][j]
			if i == j {
				P[i][j] = (1 + sign*o) / 2
			} else {
				P[i][j] = sign * o / 2
			}
		}
	}
	col := 0
	if cmplx.Abs(P[1][1]) > cmplx.Abs(P[0][0]) {
		col = 1
	}
	v := [2]complex128{P[0][col], P[1][col]}
	norm := math.Sqrt(real(v[0]*cmplx.Conj(v[0]) + v[1]*cmplx.Conj(v[1])))
	v[0] /= complex(norm, 0)
	v[1] /= complex(norm, 0)
	return v
}

// FromGraphState returns the amplitudes of g with qubit k holding order[k].
// order must list every node of g.
func FromGraphState(g *graphstate.GraphState, order []pflow.NodeID) (*StateVector, error) {
	if len(order) != g.NumNodes() {
		return nil, errors.Wrapf(pflow.ErrUnknownNode, "order lists %d nodes, graph has %d", len(order), g.NumNodes())
	}
	slot := make(map[pflow.NodeID]int, len(order))
	s := NewStateVector(0)
	for _, id := range order {
		if !g.HasNode(id) {
			return nil, errors.Wrapf(pflow.ErrUnknownNode, "node %d", id)
		}
		slot[id] = s.AddPlus()
	}
	for _, e := range g.Edges() {
		s.ApplyCZ(slot[e[0]], slot[e[1]])
	}
	for _, id := range order {
		vop, _ := g.DecorationOf(id)
		s.Apply1(slot[id], vop.Matrix())
	}
	return s, nil
}

// Fidelity returns |<a|b>|² / (<a|a><b|b>), which is 1 iff a and b are equal up to global phase and scale.
func Fidelity(a, b *StateVector) float64 {
	if len(a.Amps) != len(b.Amps) {
		return 0
	}
	var dot complex128
	for i := range a.Amps {
		dot += cmplx.Conj(a.Amps[i]) * b.Amps[i]
	}
	na, nb := a.Norm2(), b.Norm2()
	if na == 0 || nb == 0 {
		return 0
	}
	return real(dot*cmplx.Conj(dot)) / (na * nb)
}
