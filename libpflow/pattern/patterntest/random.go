// Package patterntest generates random valid patterns for tests.
package patterntest

import (
	"math/rand"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/pflow"
)

type Opts struct {
	NumNodes    int     // total prepared nodes
	MaxOutputs  int     // outputs are drawn from the last nodes; at least one
	EdgeProb    float64 // probability of each forward edge
	PauliProb   float64 // probability a measurement angle is a multiple of π/2
	CorrProb    float64 // probability of a mid-pattern X/Z correction after each step
	CliffProb   float64 // probability of a local Clifford after each step
	DomainProb  float64 // probability each measured node joins a domain
	Standardize bool    // emit N*, E*, M*, C* order with no mid-pattern corrections
}

func DefaultOpts() Opts {
	return Opts{
		NumNodes:   5,
		MaxOutputs: 2,
		EdgeProb:   0.5,
		PauliProb:  0.7,
		CorrProb:   0.4,
		CliffProb:  0.3,
		DomainProb: 0.3,
	}
}

// Random returns a random valid pattern.
//
// Node k entangles only with later nodes, so once its step is done its edges are final and a Clifford may follow.
func Random(rng *rand.Rand, opts Opts) *pattern.Pattern {
	n := opts.NumNodes
	numOut := 1
	if opts.MaxOutputs > 1 {
		numOut += rng.Intn(opts.MaxOutputs)
	}
	if numOut > n {
		numOut = n
	}
	isOutput := func(id int) bool { return id >= n-numOut }

	var measured, live []pflow.NodeID
	randDomain := func(exclude pflow.NodeID) pattern.Domain {
		var ids []pflow.NodeID
		for _, id := range measured {
			if id != exclude && rng.Float64() < opts.DomainProb {
				ids = append(ids, id)
			}
		}
		return pattern.NewDomain(ids...)
	}
	randAngle := func() pattern.Angle {
		if rng.Float64() < opts.PauliProb {
			return pattern.NewAngle(int64(rng.Intn(4)), 2)
		}
		return pattern.NewAngle(int64(1+2*rng.Intn(4)), 4)
	}

	// In standard form each command goes to its group; otherwise all interleave in one stream.
	var stream, preps, ents, meas, corr []pattern.Command
	emit := func(cmd pattern.Command, group *[]pattern.Command) {
		if opts.Standardize {
			*group = append(*group, cmd)
		} else {
			stream = append(stream, cmd)
		}
	}

	b := pattern.NewBuilder()
	var outs []pflow.NodeID
	for i := 0; i < n; i++ {
		if isOutput(i) {
			outs = append(outs, pflow.NodeID(i))
		}
	}
	b.Outputs(outs...)

	// nodes are prepared lazily, just before first use
	prepared := make([]bool, n)
	prepare := func(i int) {
		if !prepared[i] {
			prepared[i] = true
			live = append(live, pflow.NodeID(i))
			emit(pattern.N{Node: pflow.NodeID(i)}, &preps)
		}
	}

	for k := 0; k < n; k++ {
		prepare(k)
		for j := k + 1; j < n; j++ {
			if rng.Float64() < opts.EdgeProb {
				prepare(j)
				emit(pattern.E{A: pflow.NodeID(k), B: pflow.NodeID(j)}, &ents)
			}
		}
		if !opts.Standardize && len(measured) > 0 && rng.Float64() < opts.CorrProb {
			target := live[rng.Intn(len(live))]
			dom := randDomain(target)
			if rng.Intn(2) == 0 {
				emit(pattern.X(target, dom), &corr)
			} else {
				emit(pattern.Z(target, dom), &corr)
			}
		}
		if !opts.Standardize && rng.Float64() < opts.CliffProb {
			emit(pattern.C{Node: pflow.NodeID(k), Clifford: clifford.Clifford(rng.Intn(clifford.NumElements))}, &corr)
		}
		if !isOutput(k) {
			id := pflow.NodeID(k)
			m := pattern.M{
				Node: id,
				Measurement: pattern.Measurement{
					Plane: pattern.Plane(rng.Intn(3)),
					Angle: randAngle(),
				},
				S: randDomain(id),
				T: randDomain(id),
			}
			emit(m, &meas)
			measured = append(measured, id)
			for li, lid := range live {
				if lid == id {
					live = append(live[:li], live[li+1:]...)
					break
				}
			}
		}
	}

	if opts.Standardize {
		for _, id := range outs {
			if len(measured) > 0 && rng.Float64() < opts.CorrProb {
				corr = append(corr, pattern.X(id, randDomain(id)), pattern.Z(id, randDomain(id)))
			}
		}
	}

	for _, group := range [][]pattern.Command{stream, preps, ents, meas, corr} {
		for _, cmd := range group {
			b.Add(cmd)
		}
	}
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

// Assignments returns every assignment of outcome bits to ids.
func Assignments(ids []pflow.NodeID) []pflow.Outcomes {
	all := make([]pflow.Outcomes, 0, 1<<len(ids))
	for bits := 0; bits < 1<<len(ids); bits++ {
		out := make(pflow.Outcomes, len(ids))
		for i, id := range ids {
			out[id] = uint8(bits>>i) & 1
		}
		all = append(all, out)
	}
	return all
}
