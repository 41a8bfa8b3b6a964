package catalog_test

import (
	"path"
	"testing"

	"github.com/2x3systems/pauliflow/libpflow/catalog"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/libpflow/preprocess"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const chain = `
	out [3]
	N(0) N(1) N(2) N(3) E(0,1) E(1,2) E(2,3)
	M(0, XY, 1/2)
	M(1, XY, 1/2, s=[0])
	M(2, XY, 1/4, s=[1])
`

func mustParse(t *testing.T, text string) *pattern.Pattern {
	t.Helper()
	p, err := pattern.Parse(text)
	require.NoError(t, err)
	return p
}

func requireSameResult(t *testing.T, want, got *preprocess.Result) {
	t.Helper()
	require.Equal(t, want.Pattern.String(), got.Pattern.String())
	require.Equal(t, want.Passes, got.Passes)
	require.Len(t, got.Eliminations, len(want.Eliminations))
	for i, el := range want.Eliminations {
		g := got.Eliminations[i]
		require.Equal(t, el.Node, g.Node)
		require.Equal(t, el.Basis, g.Basis)
		require.Equal(t, el.Pass, g.Pass)
		require.Equal(t, el.Random, g.Random)
		require.Equal(t, el.Reconstruction.String(), g.Reconstruction.String())
	}
	require.Len(t, got.Signals, len(want.Signals))
	for id, dom := range want.Signals {
		require.True(t, dom.Equal(got.Signals[id]))
	}
}

func TestInMemory(t *testing.T) {
	cat, err := catalog.Open(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	p := mustParse(t, chain)
	popts := preprocess.DefaultOpts()

	_, found, err := cat.Lookup(p, popts)
	require.NoError(t, err)
	require.False(t, found)

	misses := testutil.ToFloat64(catalog.LookupsTotal.WithLabelValues("miss"))
	hits := testutil.ToFloat64(catalog.LookupsTotal.WithLabelValues("hit"))

	first, err := cat.Optimize(p, popts)
	require.NoError(t, err)
	require.EqualValues(t, 1, cat.NumEntries())

	again, err := cat.Optimize(p, popts)
	require.NoError(t, err)
	requireSameResult(t, first, again)
	require.Equal(t, misses+1, testutil.ToFloat64(catalog.LookupsTotal.WithLabelValues("miss")))
	require.Equal(t, hits+1, testutil.ToFloat64(catalog.LookupsTotal.WithLabelValues("hit")))

	// the stored bookkeeping still expands outcomes
	orig, err := again.ExpandOutcomes(pflow.Outcomes{0: 1, 1: 0, 2: 0})
	require.NoError(t, err)
	require.Len(t, orig, 3)

	// other options are catalogued separately
	_, found, err = cat.Lookup(p, preprocess.Opts{Standardize: true})
	require.NoError(t, err)
	require.False(t, found)

	added, err := cat.Store(p, popts, first)
	require.NoError(t, err)
	require.False(t, added)
	require.EqualValues(t, 1, cat.NumEntries())
}

func TestPersistent(t *testing.T) {
	dbPath := path.Join(t.TempDir(), "TestPersistent")
	p := mustParse(t, chain)
	popts := preprocess.DefaultOpts()

	cat, err := catalog.Open(catalog.Opts{DbPathName: dbPath})
	require.NoError(t, err)
	want, err := cat.Optimize(p, popts)
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	cat, err = catalog.Open(catalog.Opts{DbPathName: dbPath, ReadOnly: true})
	require.NoError(t, err)
	defer cat.Close()
	require.True(t, cat.IsReadOnly())
	require.EqualValues(t, 1, cat.NumEntries())

	got, found, err := cat.Lookup(p, popts)
	require.NoError(t, err)
	require.True(t, found)
	requireSameResult(t, want, got)

	_, err = cat.Store(p, popts, want)
	require.True(t, errors.Is(err, pflow.ErrBadCatalogParam), "%v", err)

	// a miss on a read-only catalog still optimizes
	q := mustParse(t, "out [1] N(0) N(1) E(0,1) M(0, XY, 0)")
	res, err := cat.Optimize(q, popts)
	require.NoError(t, err)
	require.Empty(t, res.Pattern.Measurements())
	require.EqualValues(t, 1, cat.NumEntries())
}

func TestBadParams(t *testing.T) {
	_, err := catalog.Open(catalog.Opts{ReadOnly: true})
	require.True(t, errors.Is(err, pflow.ErrBadCatalogParam), "%v", err)
}
