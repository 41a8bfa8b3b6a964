package pattern

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var pauliMatrices = [3][2][2]complex128{
	{{0, 1}, {1, 0}},
	{{0, -1i}, {1i, 0}},
	{{1, 0}, {0, -1}},
}

func observable(m Measurement) [2][2]complex128 {
	cos, sin := m.Plane.Axes()
	theta := m.Angle.Radians()
	A, B := pauliMatrices[cos], pauliMatrices[sin]
	var O [2][2]complex128
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			O[i][j] = complex(math.Cos(theta), 0)*A[i][j] + complex(math.Sin(theta), 0)*B[i][j]
		}
	}
	return O
}

func mul2(A, B [2][2]complex128) [2][2]complex128 {
	var C [2][2]complex128
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			C[i][j] = A[i][0]*B[0][j] + A[i][1]*B[1][j]
		}
	}
	return C
}

func adjoint(A [2][2]complex128) [2][2]complex128 {
	return [2][2]complex128{
		{cmplx.Conj(A[0][0]), cmplx.Conj(A[1][0])},
		{cmplx.Conj(A[0][1]), cmplx.Conj(A[1][1])},
	}
}

func TestAngle(t *testing.T) {
	require.Equal(t, NewAngle(1, 4), NewAngle(-7, 4))
	require.Equal(t, NewAngle(1, 2), NewAngle(2, 4))
	require.Equal(t, Angle0, NewAngle(4, 2))
	require.True(t, Angle{}.IsZero())
	require.Equal(t, AnglePi, AngleHalf.Add(AngleHalf))
	require.Equal(t, NewAngle(7, 4), AngleQuarter.Neg())
	require.Equal(t, "7/4", AngleQuarter.Neg().String())

	for str, want := range map[string]Angle{
		"1/4":  AngleQuarter,
		"-3/2": AngleHalf,
		"0.25": AngleQuarter,
		"3":    AnglePi,
		"0":    Angle0,
	} {
		got, err := ParseAngle(str)
		require.NoError(t, err, str)
		require.Equal(t, want, got, str)
	}
	_, err := ParseAngle("pi")
	require.True(t, errors.Is(err, pflow.ErrInvalidMeasurement))

	k, ok := NewAngle(3, 2).HalfTurns()
	require.True(t, ok)
	require.Equal(t, 3, k)
	_, ok = AngleQuarter.HalfTurns()
	require.False(t, ok)
}

func TestAngleLargeDenominators(t *testing.T) {
	require.Equal(t, AnglePi, NewAngle(math.MaxInt64, 1))
	require.Equal(t, Angle0, NewAngle(math.MinInt64, 1))
	num, den := NewAngle(1, math.MaxInt64).Rat()
	require.Equal(t, int64(1), num)
	require.Equal(t, int64(math.MaxInt64), den)

	_, err := ParseAngle("1/4611686018427387904")
	require.True(t, errors.Is(err, pflow.ErrInvalidMeasurement), "%v", err)
	_, err = Parse("out [1] N(0) N(1) E(0,1) M(0, XY, 1/4611686018427387904)")
	require.True(t, errors.Is(err, pflow.ErrInvalidMeasurement), "%v", err)

	fine, err := ParseAngle("1/1073741824")
	require.NoError(t, err)
	num, den = fine.Add(AngleHalf).Rat()
	require.Equal(t, int64(1<<29+1), num)
	require.Equal(t, int64(MaxAngleDenominator), den)
	num, den = fine.Neg().Rat()
	require.Equal(t, int64(2*MaxAngleDenominator-1), num)
	require.Equal(t, int64(MaxAngleDenominator), den)

	for _, plane := range []Plane{PlaneXY, PlaneYZ, PlaneXZ} {
		m := Measurement{Plane: plane, Angle: fine}
		for c := clifford.Clifford(0); c < clifford.NumElements; c++ {
			pulled, err := m.Pullback(c)
			require.NoError(t, err)
			num, den := pulled.Angle.Rat()
			require.Equal(t, int64(MaxAngleDenominator), den, "%v through %v", plane, c)
			require.True(t, num >= 0 && num < 2*den)
		}
	}
}

func TestDomainParity(t *testing.T) {
	d := NewDomain(3, 1, 2)
	require.Equal(t, []pflow.NodeID{1, 2, 3}, d.Nodes())
	require.True(t, d.SymDiff(d).IsEmpty())
	require.True(t, Domain{}.SymDiff(Domain{}).IsEmpty())

	e := NewDomain(2, 5)
	require.True(t, d.SymDiff(e).Equal(NewDomain(1, 3, 5)))
	require.True(t, d.SymDiff(e).SymDiff(e).Equal(d))
	require.True(t, d.Toggle(2).Equal(NewDomain(1, 3)))
	require.True(t, d.Toggle(7).Contains(7))
	require.False(t, d.Contains(7))
	require.Equal(t, "[1,2,3]", d.String())
	require.Equal(t, "[]", Domain{}.String())

	bit, err := d.Parity(pflow.Outcomes{1: 1, 2: 1, 3: 1})
	require.NoError(t, err)
	require.Equal(t, uint8(1), bit)
	_, err = d.Parity(pflow.Outcomes{1: 1})
	require.True(t, errors.Is(err, pflow.ErrMissingOutcome))
}

func TestMeasurementPauli(t *testing.T) {
	cases := []struct {
		m    Measurement
		want clifford.Pauli
	}{
		{Measurement{PlaneXY, Angle0}, clifford.PauliX},
		{Measurement{PlaneXY, AngleHalf}, clifford.PauliY},
		{Measurement{PlaneXY, AnglePi}, clifford.PauliX.Negate()},
		{Measurement{PlaneYZ, Angle0}, clifford.PauliZ},
		{Measurement{PlaneYZ, NewAngle(3, 2)}, clifford.PauliY.Negate()},
		{Measurement{PlaneXZ, AngleHalf}, clifford.PauliX},
		{Measurement{PlaneXZ, AnglePi}, clifford.PauliZ.Negate()},
	}
	for _, tc := range cases {
		p, ok, err := tc.m.Pauli()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, tc.want, p, "%v %v", tc.m.Plane, tc.m.Angle)
	}

	_, ok, err := Measurement{PlaneXY, AngleQuarter}.Pauli()
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = Measurement{Plane(7), Angle0}.Pauli()
	require.True(t, errors.Is(err, pflow.ErrInvalidMeasurement))
}

func TestMeasurementPullback(t *testing.T) {
	angles := []Angle{Angle0, AngleQuarter, NewAngle(1, 3), AngleHalf, NewAngle(5, 6), AnglePi, NewAngle(7, 4)}
	for _, plane := range []Plane{PlaneXY, PlaneYZ, PlaneXZ} {
		for _, angle := range angles {
			m := Measurement{Plane: plane, Angle: angle}
			for c := clifford.Clifford(0); c < clifford.NumElements; c++ {
				pulled, err := m.Pullback(c)
				require.NoError(t, err)

				C := c.Matrix()
				want := mul2(mul2(adjoint(C), observable(m)), C)
				got := observable(pulled)
				for i := 0; i < 2; i++ {
					for j := 0; j < 2; j++ {
						require.InDelta(t, 0, cmplx.Abs(want[i][j]-got[i][j]), 1e-9, "%v %v through %v", plane, angle, c)
					}
				}
			}
		}
	}

	// In the XY plane, X negates the angle and Z adds π.
	m := Measurement{PlaneXY, AngleQuarter}
	mx, _ := m.ApplyByproduct(true, false)
	require.Equal(t, Measurement{PlaneXY, NewAngle(7, 4)}, mx)
	mz, _ := m.ApplyByproduct(false, true)
	require.Equal(t, Measurement{PlaneXY, NewAngle(5, 4)}, mz)
}

func TestMPullbackDomains(t *testing.T) {
	cmd := M{
		Node:        5,
		Measurement: Measurement{PlaneXY, AngleQuarter},
		S:           NewDomain(1),
		T:           NewDomain(2),
	}

	// H swaps the roles of X and Z byproducts
	h, err := cmd.Pullback(clifford.H)
	require.NoError(t, err)
	require.True(t, h.S.Equal(NewDomain(2)))
	require.True(t, h.T.Equal(NewDomain(1)))
	require.Equal(t, PlaneYZ, h.Plane)

	// S† X S ∝ Y, so the X byproduct picks up a Z part.
	s, err := cmd.Pullback(clifford.S)
	require.NoError(t, err)
	require.True(t, s.S.Equal(NewDomain(1)))
	require.True(t, s.T.Equal(NewDomain(1, 2)))
}

func buildChain(t *testing.T) *Pattern {
	b := NewBuilder()
	require.NoError(t, b.Outputs(0, 2))
	for i := pflow.NodeID(0); i < 3; i++ {
		require.NoError(t, b.Prepare(i))
	}
	require.NoError(t, b.Entangle(0, 1))
	require.NoError(t, b.Entangle(1, 2))
	require.NoError(t, b.Measure(1, PlaneXY, Angle0, Domain{}, Domain{}))
	require.NoError(t, b.CorrectX(2, NewDomain(1)))
	require.NoError(t, b.Clifford(2, clifford.H))
	p, err := b.Build()
	require.NoError(t, err)
	return p
}

func TestBuilder(t *testing.T) {
	p := buildChain(t)
	require.Equal(t, 8, p.Len())
	require.Equal(t, []pflow.NodeID{0, 2}, p.Outputs())
	require.Equal(t, []pflow.NodeID{0, 1, 2}, p.Nodes())
	require.Len(t, p.Edges(), 2)
	require.Len(t, p.Measurements(), 1)
	require.True(t, p.IsOutput(2))
	require.False(t, p.IsOutput(1))

	st := p.Stats()
	require.Equal(t, 3, st.Nodes)
	require.Equal(t, 1, st.Pauli)
	require.Equal(t, 2, st.Corrections)

	// traversal is restartable and stops early on request
	for range 2 {
		count := 0
		for i, cmd := range p.All() {
			require.Equal(t, p.At(i), cmd)
			count++
		}
		require.Equal(t, p.Len(), count)
	}
	for i := range p.All() {
		if i == 1 {
			break
		}
	}
}

func TestBuilderRejects(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *Builder) error
		want  error
	}{
		{"undefined node", func(b *Builder) error {
			return b.Entangle(0, 1)
		}, pflow.ErrMalformedPattern},
		{"prepared twice", func(b *Builder) error {
			b.Prepare(0)
			return b.Prepare(0)
		}, pflow.ErrMalformedPattern},
		{"measured twice", func(b *Builder) error {
			b.Prepare(0)
			b.Measure(0, PlaneXY, Angle0, Domain{}, Domain{})
			return b.Measure(0, PlaneXY, Angle0, Domain{}, Domain{})
		}, pflow.ErrMalformedPattern},
		{"self entangle", func(b *Builder) error {
			b.Prepare(0)
			return b.Entangle(0, 0)
		}, pflow.ErrMalformedPattern},
		{"self domain", func(b *Builder) error {
			b.Prepare(0)
			return b.Measure(0, PlaneXY, Angle0, NewDomain(0), Domain{})
		}, pflow.ErrMalformedPattern},
		{"forward domain", func(b *Builder) error {
			b.Prepare(0)
			b.Prepare(1)
			return b.Measure(0, PlaneXY, Angle0, Domain{}, NewDomain(1))
		}, pflow.ErrMalformedPattern},
		{"bad plane", func(b *Builder) error {
			b.Prepare(0)
			return b.Measure(0, Plane(9), Angle0, Domain{}, Domain{})
		}, pflow.ErrInvalidMeasurement},
		{"classical prepared", func(b *Builder) error {
			b.Classical(3)
			return b.Prepare(3)
		}, pflow.ErrMalformedPattern},
		{"stray live node", func(b *Builder) error {
			b.Prepare(0)
			b.Prepare(1)
			b.Outputs(1)
			_, err := b.Build()
			return err
		}, pflow.ErrMalformedPattern},
		{"measured output", func(b *Builder) error {
			b.Prepare(0)
			b.Measure(0, PlaneXY, Angle0, Domain{}, Domain{})
			b.Outputs(0)
			_, err := b.Build()
			return err
		}, pflow.ErrMalformedPattern},
	}
	for _, tc := range cases {
		b := NewBuilder()
		err := tc.build(b)
		require.Error(t, err, tc.name)
		require.True(t, errors.Is(err, tc.want), "%s: %v", tc.name, err)
		require.Equal(t, err, b.Err(), tc.name)
	}

	// classical nodes may appear in domains
	b := NewBuilder()
	require.NoError(t, b.Classical(9))
	require.NoError(t, b.Prepare(0))
	require.NoError(t, b.CorrectZ(0, NewDomain(9)))
	require.NoError(t, b.Outputs(0))
	_, err := b.Build()
	require.NoError(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	p := buildChain(t)
	q, err := Parse(p.String())
	require.NoError(t, err)
	require.Equal(t, p.String(), q.String())

	text := `
		# teleport through a 3-chain
		classical [7]
		out [2]
		N(0) N(1) N(2)
		E(0,1) E(1,2)
		M(0, XY, -1/4, t=[7])
		M(1, yz, 1/2, s=[0], t=[0,7])
		X(2,[1]) Z(2,[0]) C(2, SDG) C(2, 7)
	`
	q, err = Parse(text)
	require.NoError(t, err)
	require.Equal(t, []pflow.NodeID{7}, q.Classical())
	meas := q.Measurements()
	require.Len(t, meas, 2)
	require.Equal(t, NewAngle(7, 4), meas[0].Angle)
	require.Equal(t, PlaneYZ, meas[1].Plane)
	require.True(t, meas[1].T.Equal(NewDomain(0, 7)))
	require.Equal(t, C{Node: 2, Clifford: clifford.Clifford(7)}, q.At(q.Len()-1))

	again, err := Parse(q.String())
	require.NoError(t, err)
	require.Equal(t, q.String(), again.String())

	_, err = Parse("out [0] N(0) E(0")
	require.True(t, errors.Is(err, pflow.ErrBadEncoding), "%v", err)

	_, err = Parse("out [0] N(0) Q(0)")
	require.True(t, errors.Is(err, pflow.ErrBadEncoding), "%v", err)

	_, err = Parse("out [0] N(0) N(1) M(1, XY, 0, s=[0])")
	require.True(t, errors.Is(err, pflow.ErrMalformedPattern), "%v", err)

	_, err = Parse("out [0] N(0) N(1) M(1, AB, 0)")
	require.True(t, errors.Is(err, pflow.ErrInvalidMeasurement), "%v", err)
}
