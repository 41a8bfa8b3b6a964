package standardize

import (
	"math/rand"
	"testing"

	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/libpflow/pattern/patterntest"
	"github.com/2x3systems/pauliflow/libpflow/statevec"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func measuredNodes(p *pattern.Pattern) []pflow.NodeID {
	var ids []pflow.NodeID
	for _, m := range p.Measurements() {
		ids = append(ids, m.Node)
	}
	return ids
}

// requireSameBranches checks that p and q agree (state and probability) on every outcome assignment,
// where q's outcomes are derived from p's by relabel.
func requireSameBranches(t *testing.T, p, q *pattern.Pattern, relabel func(pflow.Outcomes) pflow.Outcomes) {
	t.Helper()
	sim := statevec.Simulator{}
	for _, outcomes := range patterntest.Assignments(measuredNodes(q)) {
		want, err := sim.Run(p, relabel(outcomes))
		require.NoError(t, err)
		got, err := sim.Run(q, outcomes)
		require.NoError(t, err)
		require.InDelta(t, want.Prob, got.Prob, 1e-9, "outcomes %v\n%v\n%v", outcomes, p, q)
		if want.Prob > 1e-9 {
			require.InDelta(t, 1, statevec.Fidelity(want.State, got.State), 1e-9, "outcomes %v\n%v\n%v", outcomes, p, q)
		}
	}
}

func TestStandardizeOrder(t *testing.T) {
	p, err := pattern.Parse(`
		out [2]
		N(0) N(1) E(0,1) M(0, XY, 1/4)
		X(1,[0]) N(2) E(1,2) M(1, XY, 1/2, s=[0]) Z(2,[1]) X(2,[0])
	`)
	require.NoError(t, err)
	require.False(t, IsStandard(p))

	q, err := Standardize(p)
	require.NoError(t, err)
	require.True(t, IsStandard(q))
	require.Equal(t, p.Outputs(), q.Outputs())

	// the X on 1 passed through E(1,2) as a Z on 2 and merged into M(1)
	meas := q.Measurements()
	require.True(t, meas[1].S.Equal(pattern.Domain{}))
	requireSameBranches(t, p, q, func(o pflow.Outcomes) pflow.Outcomes { return o })
}

func TestStandardizeRejectsCliffordBeforeEntangle(t *testing.T) {
	p, err := pattern.Parse("out [0,1] N(0) N(1) C(0, H) E(0,1)")
	require.NoError(t, err)
	_, err = Standardize(p)
	require.True(t, errors.Is(err, pflow.ErrMalformedPattern))
}

func TestStandardizeRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	opts := patterntest.DefaultOpts()
	for trial := 0; trial < 40; trial++ {
		opts.NumNodes = 2 + rng.Intn(4)
		p := patterntest.Random(rng, opts)
		q, err := Standardize(p)
		require.NoError(t, err)
		require.True(t, IsStandard(q), "%v", q)
		requireSameBranches(t, p, q, func(o pflow.Outcomes) pflow.Outcomes { return o })
	}
}

func TestShiftSignals(t *testing.T) {
	p, err := pattern.Parse(`
		out [4]
		N(0) N(1) N(2) N(3) N(4) E(0,1) E(1,2) E(2,3) E(3,4)
		M(0, XY, 1/4)
		M(1, XY, 1/4, s=[0], t=[0])
		M(2, YZ, 1/4, s=[0], t=[1])
		M(3, XZ, 1/4, s=[1], t=[2])
		X(4,[3]) Z(4,[1,2])
	`)
	require.NoError(t, err)

	q, sig, err := ShiftSignals(p)
	require.NoError(t, err)

	meas := q.Measurements()
	require.True(t, meas[1].T.IsEmpty())
	require.True(t, sig[1].Equal(pattern.NewDomain(0)))
	require.True(t, meas[2].S.IsEmpty())
	require.True(t, sig[2].Equal(pattern.NewDomain(0)))
	require.True(t, meas[3].T.IsEmpty())

	requireSameBranches(t, p, q, func(raw pflow.Outcomes) pflow.Outcomes {
		orig, err := sig.Expand(raw)
		require.NoError(t, err)
		return orig
	})
}

func TestShiftSignalsRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	opts := patterntest.DefaultOpts()
	opts.Standardize = true
	opts.DomainProb = 0.5
	for trial := 0; trial < 40; trial++ {
		opts.NumNodes = 2 + rng.Intn(4)
		p := patterntest.Random(rng, opts)
		q, sig, err := ShiftSignals(p)
		require.NoError(t, err)
		require.True(t, IsStandard(q))
		requireSameBranches(t, p, q, func(raw pflow.Outcomes) pflow.Outcomes {
			orig, err := sig.Expand(raw)
			require.NoError(t, err)
			return orig
		})
	}
}
