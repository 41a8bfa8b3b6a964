package clifford

import (
	"fmt"
	"strings"
)

// Axis is one of the three single-qubit Pauli directions.
type Axis byte

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return "?"
}

// Pauli is a signed single-qubit Pauli operator, e.g. -Y.
type Pauli struct {
	Axis Axis
	Neg  bool
}

var (
	PauliX = Pauli{Axis: AxisX}
	PauliY = Pauli{Axis: AxisY}
	PauliZ = Pauli{Axis: AxisZ}
)

func (p Pauli) Negate() Pauli {
	p.Neg = !p.Neg
	return p
}

// HasX reports if this Pauli has an X component (X or Y).
func (p Pauli) HasX() bool {
	return p.Axis != AxisZ
}

// HasZ reports if this Pauli has a Z component (Y or Z).
func (p Pauli) HasZ() bool {
	return p.Axis != AxisX
}

// Anticommutes reports if p and q anticommute (different axes).
func (p Pauli) Anticommutes(q Pauli) bool {
	return p.Axis != q.Axis
}

func (p Pauli) String() string {
	if p.Neg {
		return "-" + p.Axis.String()
	}
	return "+" + p.Axis.String()
}

// Clifford is an element of the 24-element single-qubit Clifford group, modulo global phase.
//
// An element is identified by where it sends X and Z under conjugation (C·P·C†).
// The code packs (image of X, image of Z) as:
//
//	code = 8*axis(C X C†) + 4*sign(C X C†) + 2*slot(C Z C†) + sign(C Z C†)
//
// where slot indexes the two axes other than axis(C X C†), listed from Z down to X.
// Composition, inversion and conjugation are table lookups.
type Clifford byte

const NumElements = 24

const (
	I       Clifford = 0  // X → +X, Z → +Z
	X       Clifford = 1  // X → +X, Z → -Z
	SqrtXdg Clifford = 2  // X → +X, Z → +Y   (∝ exp(+iπ/4 X))
	SqrtX   Clifford = 3  // X → +X, Z → -Y   (∝ exp(-iπ/4 X))
	Z       Clifford = 4  // X → -X, Z → +Z
	Y       Clifford = 5  // X → -X, Z → -Z
	S       Clifford = 8  // X → +Y, Z → +Z   (∝ exp(-iπ/4 Z))
	Sdg     Clifford = 12 // X → -Y, Z → +Z   (∝ exp(+iπ/4 Z))
	H       Clifford = 18 // X → +Z, Z → +X
)

var names = map[Clifford]string{
	I:       "I",
	X:       "X",
	Y:       "Y",
	Z:       "Z",
	H:       "H",
	S:       "S",
	Sdg:     "SDG",
	SqrtX:   "SX",
	SqrtXdg: "SXDG",
}

func (c Clifford) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("C%d", byte(c))
}

// ByName returns the element named by String(), case-insensitive.
func ByName(name string) (Clifford, bool) {
	name = strings.ToUpper(name)
	for c, str := range names {
		if str == name {
			return c, true
		}
	}
	if strings.HasPrefix(name, "C") {
		var code int
		if _, err := fmt.Sscanf(name[1:], "%d", &code); err == nil && code >= 0 && code < NumElements {
			return Clifford(code), true
		}
	}
	return I, false
}

// Valid reports if c is one of the 24 group elements.
func (c Clifford) Valid() bool {
	return c < NumElements
}

// Mul returns the product c·d (d is applied first).
func (c Clifford) Mul(d Clifford) Clifford {
	return gTables.mul[c][d]
}

// Inv returns the inverse of c.
func (c Clifford) Inv() Clifford {
	return gTables.inv[c]
}

// Conj returns c·p·c†.
func (c Clifford) Conj(p Pauli) Pauli {
	img := gTables.img[c][p.Axis]
	if p.Neg {
		img.Neg = !img.Neg
	}
	return img
}

// FromPauli returns the group element of the given Pauli axis.
func FromPauli(a Axis) Clifford {
	switch a {
	case AxisX:
		return X
	case AxisY:
		return Y
	default:
		return Z
	}
}

// FromImages returns the element sending X to xImg and Z to zImg.
//
// The images must be on different axes; otherwise ok is false.
func FromImages(xImg, zImg Pauli) (c Clifford, ok bool) {
	if xImg.Axis == zImg.Axis || xImg.Axis > AxisZ || zImg.Axis > AxisZ {
		return I, false
	}
	code := 8 * byte(xImg.Axis)
	if xImg.Neg {
		code += 4
	}
	if slot := otherAxes(xImg.Axis); slot[1] == zImg.Axis {
		code += 2
	}
	if zImg.Neg {
		code++
	}
	return Clifford(code), true
}

// Images returns c·X·c† and c·Z·c†.
func (c Clifford) Images() (xImg, zImg Pauli) {
	return gTables.img[c][AxisX], gTables.img[c][AxisZ]
}

// Gate is a generator used to decompose a Clifford element.
type Gate byte

const (
	GateH Gate = iota
	GateS
)

func (g Gate) String() string {
	if g == GateH {
		return "H"
	}
	return "S"
}

// Decompose returns a shortest word of H and S gates equal to c up to phase, in application order.
func (c Clifford) Decompose() []Gate {
	word := gTables.words[c]
	out := make([]Gate, len(word))
	copy(out, word)
	return out
}

// Matrix returns a 2x2 unitary representative of c.
func (c Clifford) Matrix() [2][2]complex128 {
	return gTables.matrices[c]
}

// otherAxes lists the two axes other than a, from Z down to X.
func otherAxes(a Axis) [2]Axis {
	switch a {
	case AxisX:
		return [2]Axis{AxisZ, AxisY}
	case AxisY:
		return [2]Axis{AxisZ, AxisX}
	default:
		return [2]Axis{AxisY, AxisX}
	}
}

// levi returns the Levi-Civita sign for the ordered axis pair (a, b), a != b.
func levi(a, b Axis) int {
	if (a+1)%3 == b {
		return 1
	}
	return -1
}
