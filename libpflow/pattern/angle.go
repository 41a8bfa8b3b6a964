package pattern

import (
	"fmt"
	"math"
	"math/big"

	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
)

// Angle is an exact rational multiple of π, normalized into [0, 2).
//
// The zero Angle is 0.  Normalized Angles compare equal with ==.
type Angle struct {
	num  int64
	den1 int64 // denominator minus one, so that the zero value is 0/1
}

// MaxAngleDenominator bounds the denominator of a parsed angle.
// Sums of two such angles stay within int64.
const MaxAngleDenominator = 1 << 30

// NewAngle returns num/den (in units of π), reduced and normalized into [0, 2).
func NewAngle(num, den int64) Angle {
	if den == 0 {
		panic("pattern: zero angle denominator")
	}
	return angleOf(new(big.Rat).SetFrac64(num, den))
}

// angleOf normalizes r into [0, 2).  It panics if the result does not fit in int64.
func angleOf(r *big.Rat) Angle {
	den := r.Denom()
	period := new(big.Int).Lsh(den, 1)
	num := new(big.Int).Mod(r.Num(), period)
	if !num.IsInt64() || !den.IsInt64() {
		panic(fmt.Sprintf("pattern: angle %v exceeds int64", r))
	}
	return Angle{
		num:  num.Int64(),
		den1: den.Int64() - 1,
	}
}

func (a Angle) rat() *big.Rat {
	num, den := a.Rat()
	return new(big.Rat).SetFrac64(num, den)
}

// Common angles
var (
	Angle0       = NewAngle(0, 1)
	AngleHalf    = NewAngle(1, 2)
	AnglePi      = NewAngle(1, 1)
	AngleQuarter = NewAngle(1, 4)
)

// ParseAngle reads an angle (in units of π) such as "1/4", "-3/2", "0.25" or "1".
func ParseAngle(str string) (Angle, error) {
	var r big.Rat
	if _, ok := r.SetString(str); !ok {
		return Angle0, errors.Wrapf(pflow.ErrInvalidMeasurement, "bad angle %q", str)
	}
	if r.Denom().Cmp(big.NewInt(MaxAngleDenominator)) > 0 {
		return Angle0, errors.Wrapf(pflow.ErrInvalidMeasurement, "angle %q denominator exceeds %d", str, MaxAngleDenominator)
	}
	return angleOf(&r), nil
}

// Rat returns the reduced numerator and denominator of this angle (in units of π).
func (a Angle) Rat() (num, den int64) {
	return a.num, a.den1 + 1
}

func (a Angle) Add(b Angle) Angle {
	return angleOf(new(big.Rat).Add(a.rat(), b.rat()))
}

func (a Angle) Neg() Angle {
	return angleOf(new(big.Rat).Neg(a.rat()))
}

// Sub returns a - b.
func (a Angle) Sub(b Angle) Angle {
	return a.Add(b.Neg())
}

func (a Angle) IsZero() bool {
	return a.num == 0
}

// HalfTurns returns k such that a == k·π/2 (k in 0..3), or ok == false if a is not a multiple of π/2.
func (a Angle) HalfTurns() (k int, ok bool) {
	num, den := a.Rat()
	switch den {
	case 1:
		return int(2 * num), true
	case 2:
		return int(num), true
	}
	return 0, false
}

// Radians returns this angle as a float64 in radians.
func (a Angle) Radians() float64 {
	num, den := a.Rat()
	return math.Pi * float64(num) / float64(den)
}

func (a Angle) String() string {
	num, den := a.Rat()
	if den == 1 {
		return fmt.Sprintf("%d", num)
	}
	return fmt.Sprintf("%d/%d", num, den)
}

