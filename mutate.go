// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"time"

	"github.com/ross-weir/ergo/invalidation"
)

// Put admits tx to the pool under the given fee factor (tx's serialized
// size or execution cost — whatever the caller's fee model divides by).
//
// If tx.ID is already registered, only the stored UnconfirmedTransaction
// is replaced; the existing weight is left untouched and update_family is
// not re-run, since the transaction's input/output structure — and
// therefore its effect on ancestors — cannot have changed for the same
// id. Otherwise tx is inserted fresh, family weight is propagated to its
// mempool parents, and if the pool is now over capacity the
// lowest-priority entries are evicted until it isn't.
func (p *OrderedTxPool) Put(tx Transaction, meta any, feeFactor int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastUpdated = time.Now()

	if existing, ok := p.transactionsRegistry[tx.ID]; ok {
		existing.tx = UnconfirmedTransaction{Transaction: tx, Metadata: meta}
		return
	}

	key := weighted(tx, feeFactor, p.monetary, p.clock)
	entry := &poolEntry{
		key: key,
		tx:  UnconfirmedTransaction{Transaction: tx, Metadata: meta},
	}

	p.orderedTransactions.Insert(entry)
	p.transactionsRegistry[tx.ID] = entry
	for _, out := range tx.Outputs {
		p.outputs[out.ID] = entry
	}
	for _, in := range tx.Inputs {
		p.inputs[in.OutputID] = entry
	}

	p.updateFamily(tx, key.Weight, p.clock(), 0)

	for uint32(p.orderedTransactions.Len()) > p.settings.MempoolCapacity {
		victim, ok := p.orderedTransactions.Last()
		if !ok {
			break
		}
		p.removeEntryLocked(victim)
		metricEvictions.Inc()
	}

	metricPoolSize.Set(float64(p.orderedTransactions.Len()))
}

// Remove drops tx from the pool, propagating the reversal of its weight
// contribution to its mempool parents. Removing a transaction that isn't
// present is a no-op.
func (p *OrderedTxPool) Remove(tx Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.transactionsRegistry[tx.ID]
	if !ok {
		return
	}

	p.lastUpdated = time.Now()
	delta := entry.key.Weight
	p.removeEntryLocked(entry)
	p.updateFamily(tx, -delta, p.clock(), 0)

	metricPoolSize.Set(float64(p.orderedTransactions.Len()))
}

// RemoveMany removes each transaction in txs, in order. It is exactly a
// left fold of Remove over the sequence.
func (p *OrderedTxPool) RemoveMany(txs []Transaction) {
	for _, tx := range txs {
		p.Remove(tx)
	}
}

// removeEntryLocked purges entry from every index except the
// invalidation cache. Callers must hold p.mu and must not use entry
// afterwards.
func (p *OrderedTxPool) removeEntryLocked(entry *poolEntry) {
	p.orderedTransactions.Remove(entry.key)
	delete(p.transactionsRegistry, entry.tx.Transaction.ID)
	for _, out := range entry.tx.Transaction.Outputs {
		delete(p.outputs, out.ID)
	}
	for _, in := range entry.tx.Transaction.Inputs {
		delete(p.inputs, in.OutputID)
	}
}

// Invalidate removes tx from the pool (if present) and records its id in
// the invalidation cache so a future Put for the same id can be rejected
// by the caller. It implements all three cases from spec.md §4.4:
//
//  1. tx.ID is registered: behaves as Remove, plus recording the id.
//  2. tx.ID is absent from the registry but some entry in the ordered
//     index physically carries the same id (a stale-pointer state that
//     should never arise — see DESIGN.md Open Question 2): the stale
//     entry is purged from every index without running update_family,
//     and the id is recorded.
//  3. Neither: the id is simply recorded.
func (p *OrderedTxPool) Invalidate(tx Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.invalidatedTxIds.Put(invalidation.ID(tx.ID))

	if entry, ok := p.transactionsRegistry[tx.ID]; ok {
		p.lastUpdated = time.Now()
		delta := entry.key.Weight
		p.removeEntryLocked(entry)
		p.updateFamily(tx, -delta, p.clock(), 0)
		metricInvalidations.Inc()
		metricPoolSize.Set(float64(p.orderedTransactions.Len()))
		return
	}

	if stale := p.findStaleEntryLocked(tx.ID); stale != nil {
		log.Warnf("ergo: invalidating %v found only as a stale ordered-"+
			"index entry with no registry mapping; purging", tx.ID)
		p.orderedTransactions.Remove(stale.key)
		for _, out := range stale.tx.Transaction.Outputs {
			delete(p.outputs, out.ID)
		}
		for _, in := range stale.tx.Transaction.Inputs {
			delete(p.inputs, in.OutputID)
		}
		metricInvalidations.Inc()
		metricPoolSize.Set(float64(p.orderedTransactions.Len()))
	}
}

// findStaleEntryLocked scans the ordered index for an entry whose
// transaction id equals id despite no registry mapping existing for it.
// This should never happen in practice (see spec.md §4.4 case 2); when it
// does, a linear scan is an acceptable cost for an exceptional path.
func (p *OrderedTxPool) findStaleEntryLocked(id TxID) *poolEntry {
	for e := range p.orderedTransactions.Iterate() {
		if e.tx.Transaction.ID == id {
			return e
		}
	}
	return nil
}
