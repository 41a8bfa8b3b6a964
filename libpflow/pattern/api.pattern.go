package pattern

import (
	"fmt"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/pflow"
)

// Kind identifies the variant of a Command.
type Kind byte

const (
	KindN Kind = iota // preparation in |+>
	KindE             // controlled-Z entanglement
	KindM             // measurement
	KindX             // conditional X correction
	KindZ             // conditional Z correction
	KindC             // local Clifford
)

func (k Kind) String() string {
	switch k {
	case KindN:
		return "N"
	case KindE:
		return "E"
	case KindM:
		return "M"
	case KindX:
		return "X"
	case KindZ:
		return "Z"
	case KindC:
		return "C"
	}
	return "?"
}

// Command is one step of a measurement pattern.
//
// The set of commands is closed: N, E, M, Correction and C are the only implementations.
type Command interface {
	Kind() Kind
	String() string

	isCommand()
}

// N prepares Node in |+>.
type N struct {
	Node pflow.NodeID
}

// E entangles A and B with a controlled-Z.
type E struct {
	A, B pflow.NodeID
}

// M measures Node.
//
// Immediately before measuring, X is applied to Node if the parity of S is odd and Z if the parity of T is odd.
// In the XY plane this means S negates the angle and T adds π.
type M struct {
	Node pflow.NodeID
	Measurement
	S Domain
	T Domain
}

// Correction applies the Pauli Axis (X or Z) to Node when the parity of Domain is odd.
type Correction struct {
	Node   pflow.NodeID
	Axis   clifford.Axis
	Domain Domain
}

// C applies a local Clifford to Node.
type C struct {
	Node     pflow.NodeID
	Clifford clifford.Clifford
}

func (N) Kind() Kind { return KindN }
func (E) Kind() Kind { return KindE }
func (M) Kind() Kind { return KindM }
func (C) Kind() Kind { return KindC }

func (cmd Correction) Kind() Kind {
	if cmd.Axis == clifford.AxisX {
		return KindX
	}
	return KindZ
}

func (N) isCommand()          {}
func (E) isCommand()          {}
func (M) isCommand()          {}
func (Correction) isCommand() {}
func (C) isCommand()          {}

func (cmd N) String() string {
	return fmt.Sprintf("N(%d)", cmd.Node)
}

func (cmd E) String() string {
	return fmt.Sprintf("E(%d,%d)", cmd.A, cmd.B)
}

func (cmd M) String() string {
	str := fmt.Sprintf("M(%d, %v, %v", cmd.Node, cmd.Plane, cmd.Angle)
	if !cmd.S.IsEmpty() {
		str += ", s=" + cmd.S.String()
	}
	if !cmd.T.IsEmpty() {
		str += ", t=" + cmd.T.String()
	}
	return str + ")"
}

func (cmd Correction) String() string {
	return fmt.Sprintf("%v(%d,%v)", cmd.Axis, cmd.Node, cmd.Domain)
}

func (cmd C) String() string {
	return fmt.Sprintf("C(%d, %v)", cmd.Node, cmd.Clifford)
}

// X returns a conditional X correction.
func X(node pflow.NodeID, dom Domain) Correction {
	return Correction{Node: node, Axis: clifford.AxisX, Domain: dom}
}

// Z returns a conditional Z correction.
func Z(node pflow.NodeID, dom Domain) Correction {
	return Correction{Node: node, Axis: clifford.AxisZ, Domain: dom}
}

// Pullback returns the measurement command equivalent to applying c to Node and then performing cmd.
//
// The plane and angle are pulled back through c, and S and T are mapped onto the byproducts c†·X·c and c†·Z·c.
func (cmd M) Pullback(c clifford.Clifford) (M, error) {
	meas, err := cmd.Measurement.Pullback(c)
	if err != nil {
		return cmd, err
	}

	// X^s Z^t then c equals c then (c† X c)^s (c† Z c)^t, up to phase
	cinv := c.Inv()
	xb := cinv.Conj(clifford.PauliX)
	zb := cinv.Conj(clifford.PauliZ)

	var S, T Domain
	if xb.HasX() {
		S = S.SymDiff(cmd.S)
	}
	if xb.HasZ() {
		T = T.SymDiff(cmd.S)
	}
	if zb.HasX() {
		S = S.SymDiff(cmd.T)
	}
	if zb.HasZ() {
		T = T.SymDiff(cmd.T)
	}

	return M{
		Node:        cmd.Node,
		Measurement: meas,
		S:           S,
		T:           T,
	}, nil
}

// Stats summarizes the size of a Pattern.
type Stats struct {
	Nodes        int // number of prepared nodes
	Edges        int // number of entangling commands
	Measurements int // number of measurement commands
	Pauli        int // measurements whose basis is statically Pauli
	Corrections  int // number of X, Z and C commands
	Outputs      int
	Classical    int
}

func (st Stats) String() string {
	return fmt.Sprintf("nodes=%d edges=%d meas=%d (pauli=%d) corr=%d out=%d classical=%d",
		st.Nodes, st.Edges, st.Measurements, st.Pauli, st.Corrections, st.Outputs, st.Classical)
}
