package pattern

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/2x3systems/pauliflow/pflow"
)

// Pattern is an immutable, validated measurement pattern: an ordered command sequence,
// the output nodes left unmeasured, and the classical nodes whose outcome bits are supplied at execution.
//
// A Pattern is only made by a Builder (or Parse), so every Pattern satisfies the Builder's validation rules.
type Pattern struct {
	cmds      []Command
	outputs   []pflow.NodeID
	classical []pflow.NodeID
	isOutput  map[pflow.NodeID]bool
}

// Len returns the number of commands.
func (p *Pattern) Len() int {
	return len(p.cmds)
}

// At returns the i-th command.
func (p *Pattern) At(i int) Command {
	return p.cmds[i]
}

// All returns a lazy, restartable traversal of this pattern's commands in order.
func (p *Pattern) All() iter.Seq2[int, Command] {
	return func(yield func(int, Command) bool) {
		for i, cmd := range p.cmds {
			if !yield(i, cmd) {
				return
			}
		}
	}
}

// Outputs returns the output nodes in their declared order.
func (p *Pattern) Outputs() []pflow.NodeID {
	return append([]pflow.NodeID(nil), p.outputs...)
}

// Classical returns the classical nodes, ascending.
func (p *Pattern) Classical() []pflow.NodeID {
	return append([]pflow.NodeID(nil), p.classical...)
}

func (p *Pattern) IsOutput(id pflow.NodeID) bool {
	return p.isOutput[id]
}

// Nodes returns the prepared nodes in order of preparation.
func (p *Pattern) Nodes() []pflow.NodeID {
	var ids []pflow.NodeID
	for _, cmd := range p.cmds {
		if n, ok := cmd.(N); ok {
			ids = append(ids, n.Node)
		}
	}
	return ids
}

// Edges returns the entangling commands in order.
func (p *Pattern) Edges() []E {
	var edges []E
	for _, cmd := range p.cmds {
		if e, ok := cmd.(E); ok {
			edges = append(edges, e)
		}
	}
	return edges
}

// Measurements returns the measurement commands in order.
func (p *Pattern) Measurements() []M {
	var meas []M
	for _, cmd := range p.cmds {
		if m, ok := cmd.(M); ok {
			meas = append(meas, m)
		}
	}
	return meas
}

func (p *Pattern) Stats() Stats {
	st := Stats{
		Outputs:   len(p.outputs),
		Classical: len(p.classical),
	}
	for _, cmd := range p.cmds {
		switch c := cmd.(type) {
		case N:
			st.Nodes++
		case E:
			st.Edges++
		case M:
			st.Measurements++
			if _, isPauli, _ := c.Pauli(); isPauli {
				st.Pauli++
			}
		case Correction, C:
			st.Corrections++
		}
	}
	return st
}

// WriteAsString writes this pattern in the text form read by Parse.
func (p *Pattern) WriteAsString(out io.Writer) {
	if len(p.classical) > 0 {
		fmt.Fprintf(out, "classical %v\n", NewDomain(p.classical...))
	}
	fmt.Fprint(out, "out [")
	for i, id := range p.outputs {
		if i > 0 {
			fmt.Fprint(out, ",")
		}
		fmt.Fprintf(out, "%d", id)
	}
	fmt.Fprint(out, "]\n")
	for _, cmd := range p.cmds {
		fmt.Fprintln(out, cmd.String())
	}
}

func (p *Pattern) String() string {
	buf := bytes.Buffer{}
	p.WriteAsString(&buf)
	return buf.String()
}
