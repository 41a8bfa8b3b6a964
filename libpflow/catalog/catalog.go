package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"

	"github.com/2x3systems/pauliflow/libpflow/clifford"
	"github.com/2x3systems/pauliflow/libpflow/pattern"
	"github.com/2x3systems/pauliflow/libpflow/preprocess"
	"github.com/2x3systems/pauliflow/libpflow/standardize"
	"github.com/2x3systems/pauliflow/pflow"
	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => catalogState (json)

	gResultPrefix, Fingerprint, NUL, xxhash64(input text) (8 bytes, big endian)
		=> resultEntry (json): the input text, the optimized pattern text, and the elimination bookkeeping

The input text is stored in each entry so a hash collision reads as a miss.

*/

var (
	gCatalogStateKey = []byte{0, 0, 'S'}
	gResultPrefix    = []byte{'R', '/'}
)

const (
	catalogMajorVers = 2026
	catalogMinorVers = 1
)

// Opts specifies how a catalog is opened.
type Opts struct {
	DbPathName string // empty opens an in-memory catalog
	ReadOnly   bool   // requires DbPathName
}

type catalogState struct {
	MajorVers  int   `json:"major_vers"`
	MinorVers  int   `json:"minor_vers"`
	NumEntries int64 `json:"num_entries"`
}

// Catalog memoizes preprocessing results, keyed by the input pattern and the options it was preprocessed with.
// A Catalog is safe for concurrent use.
type Catalog struct {
	db       *badger.DB
	readOnly bool
	mu       sync.Mutex // guards state
	state    catalogState
}

func Open(opts Opts) (*Catalog, error) {
	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = klogAdapter{}
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(pflow.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	cat := &Catalog{
		readOnly: opts.ReadOnly,
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.state.MajorVers = catalogMajorVers
		cat.state.MinorVers = catalogMinorVers
		if !cat.readOnly {
			err = cat.flushState()
		}
	}
	if err == nil && (cat.state.MajorVers != catalogMajorVers || cat.state.MinorVers != catalogMinorVers) {
		err = errors.Wrapf(pflow.ErrBadCatalogParam, "catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(2).Infof("catalog: opened %q (%d entries, read-only=%v)", opts.DbPathName, cat.state.NumEntries, cat.readOnly)
	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *Catalog) flushState() error {
	return cat.db.Update(func(txn *badger.Txn) error {
		return cat.putState(txn)
	})
}

func (cat *Catalog) putState(txn *badger.Txn) error {
	buf, err := json.Marshal(&cat.state)
	if err != nil {
		return err
	}
	return txn.Set(gCatalogStateKey, buf)
}

func (cat *Catalog) Close() error {
	if cat.db == nil {
		return nil
	}
	err := cat.db.Close()
	cat.db = nil
	return err
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

// NumEntries returns the number of results stored.
func (cat *Catalog) NumEntries() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.state.NumEntries
}

// fingerprint identifies the options that affect a preprocessing result.
func fingerprint(popts preprocess.Opts) string {
	return fmt.Sprintf("std=%t,shift=%t,passes=%d", popts.Standardize, popts.ShiftSignals, popts.MaxPasses)
}

func formResultKey(input string, popts preprocess.Opts) []byte {
	key := make([]byte, 0, 64)
	key = append(key, gResultPrefix...)
	key = append(key, fingerprint(popts)...)
	key = append(key, 0)
	h := xxhash.Sum64String(input)
	for shift := 56; shift >= 0; shift -= 8 {
		key = append(key, byte(h>>uint(shift)))
	}
	return key
}

// Lookup returns the stored result of preprocessing p with popts, if present.
func (cat *Catalog) Lookup(p *pattern.Pattern, popts preprocess.Opts) (res *preprocess.Result, found bool, err error) {
	input := p.String()
	key := formResultKey(input, popts)

	var entry resultEntry
	err = cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err == badger.ErrKeyNotFound || (err == nil && entry.Input != input) {
		LookupsTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	res, err = entry.toResult()
	if err != nil {
		return nil, false, err
	}
	LookupsTotal.WithLabelValues("hit").Inc()
	return res, true, nil
}

// Store records res as the result of preprocessing p with popts.
// Returns true if no entry for p and popts was present before.
func (cat *Catalog) Store(p *pattern.Pattern, popts preprocess.Opts, res *preprocess.Result) (bool, error) {
	if cat.readOnly {
		return false, errors.Wrap(pflow.ErrBadCatalogParam, "catalog is read-only")
	}

	input := p.String()
	key := formResultKey(input, popts)
	buf, err := json.Marshal(newResultEntry(input, res))
	if err != nil {
		return false, err
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	added := false
	err = cat.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			same := false
			err = item.Value(func(val []byte) error {
				same = bytes.Equal(val, buf)
				return nil
			})
			if err != nil {
				return err
			}
			if same {
				return nil
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		} else {
			cat.state.NumEntries++
			added = true
		}
		if err = txn.Set(key, buf); err != nil {
			return err
		}
		return cat.putState(txn)
	})
	if err != nil {
		if added {
			cat.state.NumEntries--
		}
		return false, err
	}
	return added, nil
}

// Optimize returns the catalogued result for p, running and storing the preprocessing on a miss.
// A read-only catalog returns fresh results without storing them.
func (cat *Catalog) Optimize(p *pattern.Pattern, popts preprocess.Opts) (*preprocess.Result, error) {
	res, found, err := cat.Lookup(p, popts)
	if err != nil || found {
		return res, err
	}

	res, err = preprocess.Run(p, popts)
	if err != nil {
		return nil, err
	}
	if cat.readOnly {
		return res, nil
	}
	if _, err = cat.Store(p, popts, res); err != nil {
		return nil, err
	}
	klog.V(3).Infof("catalog: stored %v", res.Pattern.Stats())
	return res, nil
}

type eliminationEntry struct {
	Node   pflow.NodeID   `json:"node"`
	Axis   clifford.Axis  `json:"axis"`
	Neg    bool           `json:"neg,omitempty"`
	Pass   int            `json:"pass"`
	Random bool           `json:"random,omitempty"`
	Domain []pflow.NodeID `json:"domain,omitempty"`
	Bit    bool           `json:"bit,omitempty"`
}

type resultEntry struct {
	Input        string                          `json:"input"`
	Pattern      string                          `json:"pattern"`
	Passes       int                             `json:"passes"`
	Eliminations []eliminationEntry              `json:"eliminations,omitempty"`
	Signals      map[pflow.NodeID][]pflow.NodeID `json:"signals,omitempty"`
}

func newResultEntry(input string, res *preprocess.Result) *resultEntry {
	entry := &resultEntry{
		Input:   input,
		Pattern: res.Pattern.String(),
		Passes:  res.Passes,
	}
	for _, el := range res.Eliminations {
		entry.Eliminations = append(entry.Eliminations, eliminationEntry{
			Node:   el.Node,
			Axis:   el.Basis.Axis,
			Neg:    el.Basis.Neg,
			Pass:   el.Pass,
			Random: el.Random,
			Domain: el.Reconstruction.Domain.Nodes(),
			Bit:    el.Reconstruction.Bit,
		})
	}
	if len(res.Signals) > 0 {
		entry.Signals = make(map[pflow.NodeID][]pflow.NodeID, len(res.Signals))
		for id, dom := range res.Signals {
			entry.Signals[id] = dom.Nodes()
		}
	}
	return entry
}

func (entry *resultEntry) toResult() (*preprocess.Result, error) {
	p, err := pattern.Parse(entry.Pattern)
	if err != nil {
		return nil, errors.Wrap(err, "stored pattern")
	}
	res := &preprocess.Result{
		Pattern: p,
		Passes:  entry.Passes,
	}
	for _, el := range entry.Eliminations {
		res.Eliminations = append(res.Eliminations, preprocess.Elimination{
			Node:   el.Node,
			Basis:  clifford.Pauli{Axis: el.Axis, Neg: el.Neg},
			Pass:   el.Pass,
			Random: el.Random,
			Reconstruction: preprocess.Affine{
				Domain: pattern.NewDomain(el.Domain...),
				Bit:    el.Bit,
			},
		})
	}
	if entry.Signals != nil {
		res.Signals = make(standardize.Signals, len(entry.Signals))
		for id, ids := range entry.Signals {
			res.Signals[id] = pattern.NewDomain(ids...)
		}
	}
	return res, nil
}

// klogAdapter routes badger's log output to klog.
type klogAdapter struct{}

func (klogAdapter) Errorf(format string, args ...interface{}) {
	klog.Errorf("badger: "+format, args...)
}

func (klogAdapter) Warningf(format string, args ...interface{}) {
	klog.Warningf("badger: "+format, args...)
}

func (klogAdapter) Infof(format string, args ...interface{}) {
	klog.V(2).Infof("badger: "+format, args...)
}

func (klogAdapter) Debugf(format string, args ...interface{}) {
	klog.V(4).Infof("badger: "+format, args...)
}
