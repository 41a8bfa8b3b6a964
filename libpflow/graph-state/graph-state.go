package graphstate

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
)

// Edge is an undirected edge, stored with A < B.
type Edge [2]pflow.NodeID

func MakeEdge(u, v pflow.NodeID) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{u, v}
}

type nodeSet map[pflow.NodeID]struct{}

// GraphState is a local-Clifford decorated graph state.
//
// It represents the stabilizer state ∏ vop[v] · |G>, where |G> is the graph state of the current edge set
// (every node prepared in |+> and every edge a controlled-Z) and vop[v] is the node's decoration.
// An undecorated node has decoration I.
//
// A GraphState is not safe for concurrent use.
type GraphState struct {
	adj      map[pflow.NodeID]nodeSet
	vop      map[pflow.NodeID]clifford.Clifford
	numEdges int
}

func New() *GraphState {
	return &GraphState{
		adj: make(map[pflow.NodeID]nodeSet),
		vop: make(map[pflow.NodeID]clifford.Clifford),
	}
}

// AddNode adds an isolated, undecorated node.
func (X *GraphState) AddNode(id pflow.NodeID) error {
	if _, exists := X.adj[id]; exists {
		return errors.Wrapf(pflow.ErrMalformedPattern, "node %d already in graph", id)
	}
	X.adj[id] = make(nodeSet)
	X.vop[id] = clifford.I
	return nil
}

// RemoveNode removes an isolated node.
//
// The caller must first clear the node's edges; removing an absent node or one with incident edges is an error.
func (X *GraphState) RemoveNode(id pflow.NodeID) error {
	nbrs, exists := X.adj[id]
	if !exists {
		return errors.Wrapf(pflow.ErrUnknownNode, "remove node %d", id)
	}
	if len(nbrs) > 0 {
		return errors.Wrapf(pflow.ErrUnknownNode, "remove node %d: %d incident edges remain", id, len(nbrs))
	}
	delete(X.adj, id)
	delete(X.vop, id)
	return nil
}

func (X *GraphState) HasNode(id pflow.NodeID) bool {
	_, exists := X.adj[id]
	return exists
}

// ToggleEdge adds edge {u,v} if absent and removes it otherwise.
func (X *GraphState) ToggleEdge(u, v pflow.NodeID) error {
	if u == v {
		return errors.Wrapf(pflow.ErrMalformedPattern, "self loop at node %d", u)
	}
	nu, okU := X.adj[u]
	nv, okV := X.adj[v]
	if !okU || !okV {
		return errors.Wrapf(pflow.ErrUnknownNode, "toggle edge {%d,%d}", u, v)
	}
	if _, has := nu[v]; has {
		delete(nu, v)
		delete(nv, u)
		X.numEdges--
	} else {
		nu[v] = struct{}{}
		nv[u] = struct{}{}
		X.numEdges++
	}
	return nil
}

func (X *GraphState) HasEdge(u, v pflow.NodeID) bool {
	_, has := X.adj[u][v]
	return has
}

// Neighbors returns the neighbors of id in ascending order.
func (X *GraphState) Neighbors(id pflow.NodeID) ([]pflow.NodeID, error) {
	nbrs, exists := X.adj[id]
	if !exists {
		return nil, errors.Wrapf(pflow.ErrUnknownNode, "neighbors of %d", id)
	}
	ids := make([]pflow.NodeID, 0, len(nbrs))
	for b := range nbrs {
		ids = append(ids, b)
	}
	return pflow.SortNodes(ids), nil
}

// Degree returns the number of neighbors of id (0 if id is absent).
func (X *GraphState) Degree(id pflow.NodeID) int {
	return len(X.adj[id])
}

// ApplyLocalClifford left-composes op onto the decoration of id: vop[id] ← op · vop[id].
func (X *GraphState) ApplyLocalClifford(id pflow.NodeID, op clifford.Clifford) error {
	vop, exists := X.vop[id]
	if !exists {
		return errors.Wrapf(pflow.ErrUnknownNode, "apply %v to node %d", op, id)
	}
	X.vop[id] = op.Mul(vop)
	return nil
}

// DecorationOf returns the local Clifford decoration of id.
func (X *GraphState) DecorationOf(id pflow.NodeID) (clifford.Clifford, error) {
	vop, exists := X.vop[id]
	if !exists {
		return clifford.I, errors.Wrapf(pflow.ErrUnknownNode, "decoration of %d", id)
	}
	return vop, nil
}

// rightCompose sets vop[id] ← vop[id] · op, leaving the represented state unchanged only when paired
// with the matching change of the underlying graph state.
func (X *GraphState) rightCompose(id pflow.NodeID, op clifford.Clifford) {
	X.vop[id] = X.vop[id].Mul(op)
}

// Nodes returns every node in ascending order.
func (X *GraphState) Nodes() []pflow.NodeID {
	ids := make([]pflow.NodeID, 0, len(X.adj))
	for id := range X.adj {
		ids = append(ids, id)
	}
	return pflow.SortNodes(ids)
}

// Edges returns every edge, sorted.
func (X *GraphState) Edges() []Edge {
	edges := make([]Edge, 0, X.numEdges)
	for u, nbrs := range X.adj {
		for v := range nbrs {
			if u < v {
				edges = append(edges, MakeEdge(u, v))
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

func (X *GraphState) NumNodes() int {
	return len(X.adj)
}

func (X *GraphState) NumEdges() int {
	return X.numEdges
}

// Isolated returns the nodes without neighbors, ascending.
func (X *GraphState) Isolated() []pflow.NodeID {
	var ids []pflow.NodeID
	for id, nbrs := range X.adj {
		if len(nbrs) == 0 {
			ids = append(ids, id)
		}
	}
	return pflow.SortNodes(ids)
}

// Clone returns a deep copy.
func (X *GraphState) Clone() *GraphState {
	dup := &GraphState{
		adj:      make(map[pflow.NodeID]nodeSet, len(X.adj)),
		vop:      make(map[pflow.NodeID]clifford.Clifford, len(X.vop)),
		numEdges: X.numEdges,
	}
	for id, nbrs := range X.adj {
		set := make(nodeSet, len(nbrs))
		for b := range nbrs {
			set[b] = struct{}{}
		}
		dup.adj[id] = set
	}
	for id, vop := range X.vop {
		dup.vop[id] = vop
	}
	return dup
}

// WriteAsString writes a node per line: the node, its decoration and its neighbors.
func (X *GraphState) WriteAsString(out io.Writer) {
	for _, id := range X.Nodes() {
		nbrs, _ := X.Neighbors(id)
		strs := make([]string, len(nbrs))
		for i, b := range nbrs {
			strs[i] = fmt.Sprint(b)
		}
		fmt.Fprintf(out, "%d: vop=%v nbrs=[%s]\n", id, X.vop[id], strings.Join(strs, ","))
	}
}

func (X *GraphState) String() string {
	b := strings.Builder{}
	X.WriteAsString(&b)
	return b.String()
}
