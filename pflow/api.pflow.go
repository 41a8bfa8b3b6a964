package pflow

import (
	"sort"

	"github.com/pkg/errors"
)

// NodeID identifies a qubit of a measurement pattern.
// A node is created by a preparation command and lives until it is measured or retained as an output.
type NodeID int

// NodeIDComparator orders NodeIDs ascending; its signature matches gods' utils.Comparator.
func NodeIDComparator(a, b interface{}) int {
	ai := a.(NodeID)
	bi := b.(NodeID)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

// SortNodes sorts ids ascending in place and returns them.
func SortNodes(ids []NodeID) []NodeID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Outcomes maps a measured (or classically supplied) node to its outcome bit.
// Outcome 0 denotes the +1 eigenvalue of the measured observable.
type Outcomes map[NodeID]uint8

// Parity returns the XOR of the outcomes of the given nodes.
//
// Every node must be present in the map or ErrMissingOutcome is returned.
func (out Outcomes) Parity(ids []NodeID) (uint8, error) {
	bit := uint8(0)
	for _, id := range ids {
		b, ok := out[id]
		if !ok {
			return 0, errors.Wrapf(ErrMissingOutcome, "node %d", id)
		}
		bit ^= b & 1
	}
	return bit, nil
}

// Clone returns a copy of this outcome map.
func (out Outcomes) Clone() Outcomes {
	dup := make(Outcomes, len(out))
	for id, b := range out {
		dup[id] = b
	}
	return dup
}
