// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"sync"
	"time"

	"github.com/ross-weir/ergo/invalidation"
)

// DefaultMaxParentScanDepth is the default bound on update_family's
// recursion depth across a single put/remove call.
const DefaultMaxParentScanDepth = 500

// DefaultMaxParentScanTime is the default wall-clock budget for a single
// update_family call.
const DefaultMaxParentScanTime = 500 * time.Millisecond

// poolEntry is the payload shared, by pointer, across every index the
// pool maintains for a given transaction. registry, outputs, and inputs
// all point at the same poolEntry as the ordered index; mutating
// entry.key in place and re-sorting the ordered index (orderedSet.Rekey)
// is therefore sufficient to make the weight change visible everywhere
// at once, which is how this module satisfies spec.md invariant 5
// ("re-key atomically") without literally overwriting three separate
// maps.
type poolEntry struct {
	key WeightedTxId
	tx  UnconfirmedTransaction
}

// DefaultNodeSettings returns NodeSettings for a pool of the given
// capacity, with the default guard constants and invalidation-cache
// parameters (10000 entries, 2h expiration) filled in.
func DefaultNodeSettings(capacity uint32) NodeSettings {
	return NodeSettings{
		MempoolCapacity:                 capacity,
		InvalidModifiersCacheSize:       10000,
		InvalidModifiersCacheExpiration: 2 * time.Hour,
		MaxParentScanDepth:              DefaultMaxParentScanDepth,
		MaxParentScanTime:               DefaultMaxParentScanTime,
	}
}

// OrderedTxPool is the weighted transaction mempool: four coordinated
// indices (by id, by weight order, by produced output, by consumed
// input) plus a reference to the invalidation cache. It is safe for
// concurrent use: a single sync.RWMutex serializes writers while
// allowing concurrent readers, the same single-writer/multi-reader shape
// the teacher's own TxMempoolV2 uses.
type OrderedTxPool struct {
	mu sync.RWMutex

	orderedTransactions  *orderedSet
	transactionsRegistry map[TxID]*poolEntry
	outputs              map[OutputID]*poolEntry
	inputs               map[OutputID]*poolEntry

	invalidatedTxIds *invalidation.Cache

	monetary MonetarySettings
	settings NodeSettings

	// clock returns the current wall-clock time in milliseconds. Tests
	// may inject a fake to make update_family's time guard
	// deterministic.
	clock func() int64

	// lastUpdated tracks the last time a transaction was admitted or
	// removed, for callers that want to detect pool activity without
	// polling Size. Matches the teacher's lastUpdated convention
	// (TxMempoolV2.lastUpdated), though without the atomic since every
	// access here is already under mu.
	lastUpdated time.Time
}

// Empty constructs an empty pool. monetary supplies the fee-recipient
// proposition the weight function compares outputs against; settings
// supplies the capacity and invalidation-cache parameters.
func Empty(monetary MonetarySettings, settings NodeSettings) *OrderedTxPool {
	if settings.MaxParentScanDepth <= 0 {
		settings.MaxParentScanDepth = DefaultMaxParentScanDepth
	}
	if settings.MaxParentScanTime <= 0 {
		settings.MaxParentScanTime = DefaultMaxParentScanTime
	}

	return &OrderedTxPool{
		orderedTransactions:  newOrderedSet(int(settings.MempoolCapacity) + 1),
		transactionsRegistry: make(map[TxID]*poolEntry),
		outputs:              make(map[OutputID]*poolEntry),
		inputs:               make(map[OutputID]*poolEntry),
		invalidatedTxIds: invalidation.Empty(
			settings.InvalidModifiersCacheSize,
			settings.InvalidModifiersCacheExpiration,
		),
		monetary: monetary,
		settings: settings,
		clock:    nowMillis,
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// LastUpdated returns the last time a transaction was admitted to or
// removed from the pool, for callers (RPC handlers, mining code) that
// want to detect pool activity without polling Size.
func (p *OrderedTxPool) LastUpdated() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.lastUpdated
}

// Size returns the number of transactions currently in the pool.
func (p *OrderedTxPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.orderedTransactions.Len()
}

// Contains reports whether id is currently admitted to the pool.
func (p *OrderedTxPool) Contains(id TxID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.transactionsRegistry[id]
	return ok
}

// IsInvalidated reports whether id was recorded as invalidated and the
// record hasn't yet aged out of the invalidation cache's window. It does
// not imply id is absent from the pool; see spec.md §4.4.
func (p *OrderedTxPool) IsInvalidated(id TxID) bool {
	return p.invalidatedTxIds.MightContain(invalidation.ID(id))
}

// Get returns the admitted transaction for id, or (zero, false) if id is
// not present. If the registry and ordered index have drifted apart —
// an internal inconsistency that should never happen — Get logs a
// warning and reports absence rather than panicking.
func (p *OrderedTxPool) Get(id TxID) (UnconfirmedTransaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.transactionsRegistry[id]
	if !ok {
		return UnconfirmedTransaction{}, false
	}

	if _, found := p.orderedTransactions.search(entry.key); !found {
		log.Warnf("ergo: registry has %v but ordered index does not; "+
			"treating as absent", id)
		return UnconfirmedTransaction{}, false
	}

	return entry.tx, true
}

// CanAccept reports whether tx could be admitted right now: it is not
// already present, and the pool is not already over capacity. It does
// not consult IsInvalidated — callers that want to reject previously
// invalidated transactions must check that separately.
func (p *OrderedTxPool) CanAccept(tx Transaction) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, ok := p.transactionsRegistry[tx.ID]; ok {
		return false
	}
	return uint32(p.orderedTransactions.Len()) <= p.settings.MempoolCapacity
}
