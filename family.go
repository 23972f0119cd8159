// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

// updateFamily raises (or, when called with a negative delta from
// Remove/Invalidate, lowers) the weight of every mempool parent of tx by
// delta, then recurses onto each parent's own parents. Parents are
// collected as a set deduplicated by id — a parent whose outputs tx
// spends through several inputs is adjusted once in the call, not once
// per input — so a diamond-shaped family has each ancestor's weight raised by the sum
// of its children's weights, once per child's updateFamily invocation,
// not once per spending edge. This is a deliberate simplification
// spec.md §4.5/§9 calls out explicitly and must be preserved.
//
// The recursion is bounded by both depth and wall-clock time so an
// adversarial or pathologically deep chain of transactions can't make a
// single Put/Remove call run unboundedly: once either bound trips, the
// call logs a warning identifying tx and returns, leaving the affected
// ancestors under-propagated. Every invariant except strict weight
// monotonicity (spec.md invariant 3) still holds when this happens — a
// budget failure, not a correctness failure. Grounded on the guarded,
// budget-bounded traversal the teacher's txgraph iterators use for
// ancestor/descendant walks.
//
// p.mu must be held for writing by the caller.
func (p *OrderedTxPool) updateFamily(tx Transaction, delta int64, startTime int64, depth int) {
	if depth > p.settings.MaxParentScanDepth {
		log.Warnf("ergo: update_family: max parent scan depth exceeded "+
			"for %v; weight propagation incomplete", tx.ID)
		metricFamilyGuardTrips.Inc()
		return
	}
	if p.clock()-startTime > p.settings.MaxParentScanTime.Milliseconds() {
		log.Warnf("ergo: update_family: max parent scan time exceeded "+
			"for %v; weight propagation incomplete", tx.ID)
		metricFamilyGuardTrips.Inc()
		return
	}

	parents := p.parentKeysLocked(tx)
	if len(parents) == 0 {
		return
	}

	for _, oldKey := range parents {
		parentEntry, ok := p.transactionsRegistry[oldKey.ID]
		if !ok {
			// The edge is stale: the output's owning transaction was
			// removed from the pool since it was recorded in outputs.
			continue
		}

		newKey := WeightedTxId{
			ID:           parentEntry.key.ID,
			Weight:       parentEntry.key.Weight + delta,
			FeePerFactor: parentEntry.key.FeePerFactor,
			CreatedAt:    parentEntry.key.CreatedAt,
		}

		p.orderedTransactions.Rekey(parentEntry, newKey)

		for _, out := range parentEntry.tx.Transaction.Outputs {
			p.outputs[out.ID] = parentEntry
		}
		for _, in := range parentEntry.tx.Transaction.Inputs {
			p.inputs[in.OutputID] = parentEntry
		}

		p.updateFamily(parentEntry.tx.Transaction, delta, startTime, depth+1)
	}
}

// parentKeysLocked collects the unique set of keys for every mempool
// transaction that produced an output tx consumes, deduplicated by id.
// p.mu must be held by the caller.
func (p *OrderedTxPool) parentKeysLocked(tx Transaction) []WeightedTxId {
	seen := make(map[TxID]struct{}, len(tx.Inputs))
	var parents []WeightedTxId

	for _, in := range tx.Inputs {
		entry, ok := p.outputs[in.OutputID]
		if !ok {
			continue
		}
		if _, dup := seen[entry.key.ID]; dup {
			continue
		}
		seen[entry.key.ID] = struct{}{}
		parents = append(parents, entry.key)
	}

	return parents
}
