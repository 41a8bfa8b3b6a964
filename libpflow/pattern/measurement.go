package pattern

import (
	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
)

// Plane is the Bloch-sphere plane a measurement basis lies in.
type Plane byte

const (
	PlaneXY Plane = iota
	PlaneYZ
	PlaneXZ
)

func (p Plane) Valid() bool {
	return p <= PlaneXZ
}

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneYZ:
		return "YZ"
	case PlaneXZ:
		return "XZ"
	}
	return "??"
}

// Axes returns the Pauli axes weighted by cos(θ) and sin(θ) for a measurement at angle θ in this plane.
func (p Plane) Axes() (cos, sin clifford.Axis) {
	switch p {
	case PlaneYZ:
		return clifford.AxisZ, clifford.AxisY
	case PlaneXZ:
		return clifford.AxisZ, clifford.AxisX
	default:
		return clifford.AxisX, clifford.AxisY
	}
}

// PlaneOf returns the plane spanned by two distinct axes.
func PlaneOf(a, b clifford.Axis) (Plane, bool) {
	switch {
	case a == b:
		return PlaneXY, false
	case a != clifford.AxisZ && b != clifford.AxisZ:
		return PlaneXY, true
	case a != clifford.AxisX && b != clifford.AxisX:
		return PlaneYZ, true
	default:
		return PlaneXZ, true
	}
}

// ParsePlane reads "XY", "YZ" or "XZ".
func ParsePlane(str string) (Plane, error) {
	switch str {
	case "XY":
		return PlaneXY, nil
	case "YZ":
		return PlaneYZ, nil
	case "XZ":
		return PlaneXZ, nil
	}
	return PlaneXY, errors.Wrapf(pflow.ErrInvalidMeasurement, "unknown plane %q", str)
}

// Measurement is a single-qubit measurement basis: the ±1 eigenbasis of cos(θ)·A + sin(θ)·B,
// where (A, B) are the axes of Plane and θ is Angle.  Outcome 0 selects the +1 eigenvector.
type Measurement struct {
	Plane Plane
	Angle Angle
}

// Pauli classifies this measurement.
//
// If the angle is a multiple of π/2, the observable is a signed Pauli and isPauli is true.
// A malformed plane yields ErrInvalidMeasurement.
func (m Measurement) Pauli() (p clifford.Pauli, isPauli bool, err error) {
	if !m.Plane.Valid() {
		return p, false, errors.Wrapf(pflow.ErrInvalidMeasurement, "plane %d", m.Plane)
	}
	k, ok := m.Angle.HalfTurns()
	if !ok {
		return p, false, nil
	}
	cos, sin := m.Plane.Axes()
	switch k {
	case 0:
		p = clifford.Pauli{Axis: cos}
	case 1:
		p = clifford.Pauli{Axis: sin}
	case 2:
		p = clifford.Pauli{Axis: cos, Neg: true}
	default:
		p = clifford.Pauli{Axis: sin, Neg: true}
	}
	return p, true, nil
}

// Pullback returns the measurement m' such that measuring m on c|ψ> is the same as measuring m' on |ψ>,
// outcome for outcome.  That is, the observable of m' is c†·O·c.
func (m Measurement) Pullback(c clifford.Clifford) (Measurement, error) {
	if !m.Plane.Valid() {
		return m, errors.Wrapf(pflow.ErrInvalidMeasurement, "plane %d", m.Plane)
	}
	cinv := c.Inv()
	cos, sin := m.Plane.Axes()
	A := cinv.Conj(clifford.Pauli{Axis: cos})
	B := cinv.Conj(clifford.Pauli{Axis: sin})

	plane, ok := PlaneOf(A.Axis, B.Axis)
	if !ok {
		return m, errors.Wrapf(pflow.ErrInvalidMeasurement, "conjugation by %v collapsed plane %v", c, m.Plane)
	}
	newCos, _ := plane.Axes()
	theta := m.Angle

	var out Angle
	if A.Axis == newCos {
		// cos θ' = ±cos θ, sin θ' = ±sin θ
		switch {
		case !A.Neg && !B.Neg:
			out = theta
		case !A.Neg && B.Neg:
			out = theta.Neg()
		case A.Neg && !B.Neg:
			out = AnglePi.Sub(theta)
		default:
			out = theta.Add(AnglePi)
		}
	} else {
		// cos θ' = ±sin θ, sin θ' = ±cos θ
		switch {
		case !A.Neg && !B.Neg:
			out = AngleHalf.Sub(theta)
		case A.Neg && B.Neg:
			out = NewAngle(3, 2).Sub(theta)
		case A.Neg && !B.Neg:
			out = theta.Sub(AngleHalf)
		default:
			out = theta.Add(AngleHalf)
		}
	}

	return Measurement{
		Plane: plane,
		Angle: out,
	}, nil
}

// ApplyByproduct returns the measurement equivalent to first applying X^xBit·Z^zBit and then measuring m.
func (m Measurement) ApplyByproduct(xBit, zBit bool) (Measurement, error) {
	switch {
	case xBit && zBit:
		return m.Pullback(clifford.Y)
	case xBit:
		return m.Pullback(clifford.X)
	case zBit:
		return m.Pullback(clifford.Z)
	}
	return m, nil
}
