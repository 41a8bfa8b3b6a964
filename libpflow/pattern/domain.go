package pattern

import (
	"strconv"
	"strings"

	"github.com/2x3systems/pauliflow/pflow"
	"github.com/emirpasic/gods/sets/treeset"
)

// Domain is a set of nodes whose outcome parity conditions a correction or a measurement.
//
// Domains are parity sets over GF(2): they merge by symmetric difference, never by concatenation.
// A Domain is immutable; every operation returns a new value.  The zero Domain is empty.
type Domain struct {
	set *treeset.Set
}

func NewDomain(ids ...pflow.NodeID) Domain {
	if len(ids) == 0 {
		return Domain{}
	}
	set := treeset.NewWith(pflow.NodeIDComparator)
	for _, id := range ids {
		set.Add(id)
	}
	return Domain{set: set}
}

func (d Domain) Len() int {
	if d.set == nil {
		return 0
	}
	return d.set.Size()
}

func (d Domain) IsEmpty() bool {
	return d.Len() == 0
}

func (d Domain) Contains(id pflow.NodeID) bool {
	return d.set != nil && d.set.Contains(id)
}

// Nodes returns the members of this domain in ascending order.
func (d Domain) Nodes() []pflow.NodeID {
	if d.set == nil {
		return nil
	}
	ids := make([]pflow.NodeID, 0, d.set.Size())
	it := d.set.Iterator()
	for it.Next() {
		ids = append(ids, it.Value().(pflow.NodeID))
	}
	return ids
}

// SymDiff returns d ⊕ other.  In particular d.SymDiff(d) is empty.
func (d Domain) SymDiff(other Domain) Domain {
	if other.Len() == 0 {
		return d
	}
	if d.Len() == 0 {
		return other
	}
	out := treeset.NewWith(pflow.NodeIDComparator)
	it := d.set.Iterator()
	for it.Next() {
		out.Add(it.Value())
	}
	it = other.set.Iterator()
	for it.Next() {
		v := it.Value()
		if out.Contains(v) {
			out.Remove(v)
		} else {
			out.Add(v)
		}
	}
	if out.Empty() {
		return Domain{}
	}
	return Domain{set: out}
}

// Toggle returns d ⊕ {id}.
func (d Domain) Toggle(id pflow.NodeID) Domain {
	return d.SymDiff(NewDomain(id))
}

func (d Domain) Equal(other Domain) bool {
	if d.Len() != other.Len() {
		return false
	}
	a, b := d.Nodes(), other.Nodes()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Parity returns the XOR of the outcomes of this domain's members.
func (d Domain) Parity(outcomes pflow.Outcomes) (uint8, error) {
	return outcomes.Parity(d.Nodes())
}

func (d Domain) String() string {
	b := strings.Builder{}
	b.WriteByte('[')
	for i, id := range d.Nodes() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
	b.WriteByte(']')
	return b.String()
}
