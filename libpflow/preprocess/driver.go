package preprocess

import (
	"time"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	graphstate "github.com/2x3systems/pauliflow/libpflow/graph-state"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/libpflow/standardize"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

type nodeState byte

const (
	stateUnmeasured nodeState = iota // not yet visited
	statePending                     // Pauli, waiting for its sign to be determined
	stateEliminated                  // removed from the graph
	stateDeferred                    // left for execution
)

// measNode tracks one measurement of the pattern being preprocessed.
type measNode struct {
	cmd      pattern.M
	basis    clifford.Pauli // observable measured, valid if isPauli
	isPauli  bool
	state    nodeState
	elimPass int
	inQueue  bool
	next     *measNode
}

// nodeQueue is a FIFO of measurements awaiting a visit.
type nodeQueue struct {
	head  *measNode
	tail  *measNode
	count int
}

func (queue *nodeQueue) enqueue(n *measNode) {
	n.next = nil
	n.inQueue = true
	if queue.tail != nil {
		queue.tail.next = n
	}
	queue.tail = n
	if queue.head == nil {
		queue.head = n
	}
	queue.count++
}

func (queue *nodeQueue) dequeue() *measNode {
	n := queue.head
	if n == nil {
		return nil
	}
	queue.head = n.next
	n.next = nil
	n.inQueue = false
	if queue.tail == n {
		queue.tail = nil
	}
	queue.count--
	return n
}

// driver owns the decorated graph state for the duration of one run.
//
// The state represented is B · ∏vop · |G>, where B is the Pauli byproduct X^bx Z^bz on each node,
// with bx and bz affine parities over settled outcome symbols.
type driver struct {
	src       *pattern.Pattern
	g         *graphstate.GraphState
	meas      map[pflow.NodeID]*measNode
	order     []*measNode
	classical map[pflow.NodeID]bool
	recon     map[pflow.NodeID]Affine // reconstructions of deterministic eliminations
	bx, bz    map[pflow.NodeID]Affine
	waiters   map[pflow.NodeID][]*measNode

	pass          int       // one-based pass being walked
	maxPasses     int       //
	walkingQueue  nodeQueue // queue to process for the current pass
	deferredQueue nodeQueue // queue to process for the next pass

	res Result
}

// Run eliminates every Pauli measurement of p whose outcome sign can be determined statically,
// and returns the optimized pattern together with the bookkeeping needed to recover the input's outcomes.
//
// Run is all-or-nothing: on error no partial result is returned.
func Run(p *pattern.Pattern, opts Opts) (*Result, error) {
	start := time.Now()
	res, err := run(p, opts)
	RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	RunsTotal.WithLabelValues("success").Inc()
	PassesPerRun.Observe(float64(res.Passes))
	return res, nil
}

func run(p *pattern.Pattern, opts Opts) (*Result, error) {
	var err error
	src := p
	if opts.Standardize {
		if src, err = standardize.Standardize(src); err != nil {
			return nil, err
		}
	} else if !standardize.IsStandard(src) {
		return nil, errors.Wrap(pflow.ErrMalformedPattern, "pattern is not in standard form")
	}

	var signals standardize.Signals
	if opts.ShiftSignals {
		if src, signals, err = standardize.ShiftSignals(src); err != nil {
			return nil, err
		}
	}

	d := &driver{
		src:       src,
		g:         graphstate.New(),
		meas:      make(map[pflow.NodeID]*measNode),
		classical: make(map[pflow.NodeID]bool),
		recon:     make(map[pflow.NodeID]Affine),
		bx:        make(map[pflow.NodeID]Affine),
		bz:        make(map[pflow.NodeID]Affine),
		waiters:   make(map[pflow.NodeID][]*measNode),
		maxPasses: opts.MaxPasses,
	}
	d.res.Signals = signals

	if err = d.load(); err != nil {
		return nil, err
	}
	if err = d.walk(); err != nil {
		return nil, err
	}
	if d.res.Pattern, err = d.emit(); err != nil {
		return nil, err
	}

	klog.V(2).Infof("preprocess: %v -> %v in %d passes", p.Stats(), d.res.Pattern.Stats(), d.res.Passes)
	return &d.res, nil
}

// load builds the graph from the preparations and entanglements of the source pattern and classifies every measurement.
func (d *driver) load() error {
	for _, id := range d.src.Classical() {
		d.classical[id] = true
	}
	for _, cmd := range d.src.All() {
		switch c := cmd.(type) {
		case pattern.N:
			if err := d.g.AddNode(c.Node); err != nil {
				return err
			}
		case pattern.E:
			if err := d.g.ToggleEdge(c.A, c.B); err != nil {
				return err
			}
		case pattern.M:
			basis, isPauli, err := c.Pauli()
			if err != nil {
				return errors.Wrapf(err, "node %d", c.Node)
			}
			n := &measNode{
				cmd:     c,
				basis:   basis,
				isPauli: isPauli,
			}
			d.meas[c.Node] = n
			d.order = append(d.order, n)
		}
	}
	if d.maxPasses <= 0 {
		d.maxPasses = len(d.order)
	}
	return nil
}

func (d *driver) dequeueNext() (*measNode, error) {
	if d.walkingQueue.count == 0 && d.deferredQueue.count > 0 {
		klog.V(2).Infof("preprocess: pass %d done, %d queued for next pass", d.pass, d.deferredQueue.count)
		d.pass++
		if d.pass > d.maxPasses {
			return nil, errors.Wrapf(pflow.ErrUnresolvedDependency, "exceeded %d passes", d.maxPasses)
		}
		d.deferredQueue, d.walkingQueue = d.walkingQueue, d.deferredQueue
	}
	return d.walkingQueue.dequeue(), nil
}

// walk runs passes until no measurement can be eliminated.
//
// Pass 1 visits every Pauli measurement in pattern order.  A measurement waits while its sign depends on an
// outcome not yet eliminated; once a dependency is eliminated, its waiters are queued for the next pass, so a
// measurement is never eliminated in the same pass as a measurement it depends on.
func (d *driver) walk() error {
	d.pass = 1
	for _, n := range d.order {
		if n.isPauli {
			n.state = statePending
			d.walkingQueue.enqueue(n)
		} else {
			d.deferNode(n)
		}
	}

	for {
		n, err := d.dequeueNext()
		if err != nil {
			return err
		}
		if n == nil {
			break
		}
		if n.state != statePending {
			continue
		}
		d.res.Passes = d.pass
		if err = d.visit(n); err != nil {
			return err
		}
	}

	return d.settleRemaining()
}

type depStatus byte

const (
	depSettled depStatus = iota
	depThisPass
	depPending
	depDeferred
)

// depStatusOf classifies an outcome symbol a measurement's sign depends on.
func (d *driver) depStatusOf(id pflow.NodeID) depStatus {
	if d.classical[id] {
		return depSettled
	}
	dep := d.meas[id]
	switch {
	case dep == nil:
		return depDeferred
	case dep.state == stateEliminated && dep.elimPass < d.pass:
		return depSettled
	case dep.state == stateEliminated:
		return depThisPass
	case dep.state == stateDeferred:
		return depDeferred
	}
	return depPending
}

// signDomain returns the part of n's domains that can flip the sign of its Pauli observable:
// S if an X byproduct anticommutes with it, T if a Z byproduct does.
func signDomain(n *measNode) pattern.Domain {
	var dom pattern.Domain
	if n.basis.Anticommutes(clifford.PauliX) {
		dom = dom.SymDiff(n.cmd.S)
	}
	if n.basis.Anticommutes(clifford.PauliZ) {
		dom = dom.SymDiff(n.cmd.T)
	}
	return dom
}

func (d *driver) visit(n *measNode) error {
	var thisPass, pending []pflow.NodeID
	for _, id := range signDomain(n).Nodes() {
		switch d.depStatusOf(id) {
		case depDeferred:
			klog.V(3).Infof("preprocess: node %d depends on deferred node %d", n.cmd.Node, id)
			d.deferNode(n)
			return nil
		case depThisPass:
			thisPass = append(thisPass, id)
		case depPending:
			pending = append(pending, id)
		}
	}

	switch {
	case len(pending) > 0:
		for _, id := range pending {
			d.waiters[id] = append(d.waiters[id], n)
		}
	case len(thisPass) > 0:
		d.deferredQueue.enqueue(n)
	default:
		if err := d.eliminate(n); err != nil {
			return err
		}
		for _, w := range d.waiters[n.cmd.Node] {
			if w.state == statePending && !w.inQueue {
				d.deferredQueue.enqueue(w)
			}
		}
		delete(d.waiters, n.cmd.Node)
	}
	return nil
}

func (d *driver) deferNode(n *measNode) {
	n.state = stateDeferred
	DeferredTotal.Inc()
}

// settleRemaining defers every measurement still waiting on a deferred one.
// Anything left waiting after that waits on itself, which is reported rather than looped on.
func (d *driver) settleRemaining() error {
	for changed := true; changed; {
		changed = false
		for _, n := range d.order {
			if n.state != statePending {
				continue
			}
			for _, id := range signDomain(n).Nodes() {
				if d.depStatusOf(id) == depDeferred {
					d.deferNode(n)
					changed = true
					break
				}
			}
		}
	}

	var stuck []pflow.NodeID
	for _, n := range d.order {
		if n.state == statePending {
			stuck = append(stuck, n.cmd.Node)
		}
	}
	if len(stuck) > 0 {
		klog.Warningf("preprocess: measurements %v wait on each other", stuck)
		return errors.Wrapf(pflow.ErrUnresolvedDependency, "cyclic dependency among nodes %v", stuck)
	}
	return nil
}
