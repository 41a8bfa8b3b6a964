package statevec

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	graphstate "github.com/2x3systems/pauliflow/libpflow/graph-state"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEigenvector(t *testing.T) {
	for _, plane := range []pattern.Plane{pattern.PlaneXY, pattern.PlaneYZ, pattern.PlaneXZ} {
		A, B := plane.Axes()
		for _, theta := range []float64{0, 0.3, math.Pi / 2, 2.1, math.Pi} {
			for _, bit := range []uint8{0, 1} {
				v := Eigenvector(A, B, theta, bit)
				lambda := complex(1-2*float64(bit), 0)
				for i := 0; i < 2; i++ {
					var Ov complex128
					for j := 0; j < 2; j++ {
						o := complex(math.Cos(theta), 0)*pauliMatrices[A][i][j] + complex(math.Sin(theta), 0)*pauliMatrices[B][i][j]
						Ov += o * v[j]
					}
					require.InDelta(t, 0, cmplx.Abs(Ov-lambda*v[i]), 1e-9)
				}
			}
		}
	}
}

func TestTeleportJ(t *testing.T) {
	for _, angle := range []pattern.Angle{pattern.Angle0, pattern.AngleQuarter, pattern.NewAngle(2, 3), pattern.AngleHalf} {
		text := "out [1]\nN(0) N(1) E(0,1)\n" +
			pattern.M{Node: 0, Measurement: pattern.Measurement{Plane: pattern.PlaneXY, Angle: angle}}.String() +
			"\nX(1,[0])"
		p, err := pattern.Parse(text)
		require.NoError(t, err)

		// H · (|0> + e^{-iθ}|1>) / √2
		want := NewStateVector(1)
		want.Amps[0] = 1
		want.Amps[1] = cmplx.Exp(complex(0, -angle.Radians()))
		want.Apply1(0, clifford.H.Matrix())

		for _, bit := range []uint8{0, 1} {
			branch, err := Simulator{}.Run(p, pflow.Outcomes{0: bit})
			require.NoError(t, err)
			require.InDelta(t, 0.5, branch.Prob, 1e-9)
			require.InDelta(t, 1, Fidelity(want, branch.State), 1e-9)
		}
	}

	p, err := pattern.Parse("out [1] N(0) N(1) E(0,1) M(0, XY, 0)")
	require.NoError(t, err)
	_, err = Simulator{}.Run(p, pflow.Outcomes{})
	require.True(t, errors.Is(err, pflow.ErrMissingOutcome))
}

func TestFromGraphState(t *testing.T) {
	g := graphstate.New()
	for i := pflow.NodeID(0); i < 3; i++ {
		require.NoError(t, g.AddNode(i))
	}
	require.NoError(t, g.ToggleEdge(0, 1))
	require.NoError(t, g.ToggleEdge(1, 2))
	require.NoError(t, g.ApplyLocalClifford(2, clifford.H))

	order := []pflow.NodeID{2, 0, 1}
	s, err := FromGraphState(g, order)
	require.NoError(t, err)

	p, err := pattern.Parse("out [2,0,1] N(0) N(1) N(2) E(0,1) E(1,2) C(2, H)")
	require.NoError(t, err)
	branch, err := Simulator{}.Run(p, pflow.Outcomes{})
	require.NoError(t, err)
	require.InDelta(t, 1, branch.Prob, 1e-9)
	require.InDelta(t, 1, Fidelity(s, branch.State), 1e-9)

	_, err = FromGraphState(g, []pflow.NodeID{0, 1})
	require.True(t, errors.Is(err, pflow.ErrUnknownNode))
}

func TestProjectOrdering(t *testing.T) {
	// |q2 q1 q0> = |1 0 1>
	s := NewStateVector(3)
	s.Amps[0] = 0
	s.Amps[5] = 1
	s.Project(1, [2]complex128{1, 0})
	require.Len(t, s.Amps, 4)
	require.Equal(t, complex128(1), s.Amps[3])
	require.InDelta(t, 1, s.Norm2(), 1e-12)
}
