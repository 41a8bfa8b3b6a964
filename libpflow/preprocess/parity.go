package preprocess

import (
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/pflow"
)

// Affine is a parity over outcome symbols plus a constant: parity(Domain) ⊕ Bit.
type Affine struct {
	Domain pattern.Domain
	Bit    bool
}

// Symbol returns the affine parity of a single outcome.
func Symbol(id pflow.NodeID) Affine {
	return Affine{Domain: pattern.NewDomain(id)}
}

// Const returns the constant parity bit.
func Const(bit bool) Affine {
	return Affine{Bit: bit}
}

func (a Affine) Xor(b Affine) Affine {
	return Affine{
		Domain: a.Domain.SymDiff(b.Domain),
		Bit:    a.Bit != b.Bit,
	}
}

func (a Affine) IsZero() bool {
	return !a.Bit && a.Domain.IsEmpty()
}

// Eval returns the value of this parity for the given outcomes.
func (a Affine) Eval(outcomes pflow.Outcomes) (uint8, error) {
	bit, err := a.Domain.Parity(outcomes)
	if err != nil {
		return 0, err
	}
	if a.Bit {
		bit ^= 1
	}
	return bit, nil
}

func (a Affine) String() string {
	if a.Bit {
		return a.Domain.String() + "+1"
	}
	return a.Domain.String()
}
