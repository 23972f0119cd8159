// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genTxID draws a random 32-byte id, biased toward a small alphabet so
// that parent/child references and duplicate puts both occur often
// within a single check.
func genTxID(t *rapid.T, label string) TxID {
	n := rapid.IntRange(0, 255).Draw(t, label)
	var id TxID
	id[len(id)-1] = byte(n)
	return id
}

// Property-based tests using rapid.

// TestPropertyRegistryAndOrderedIndexAgree verifies that after any
// sequence of Put/Remove/Invalidate operations, the set of ids reachable
// through the registry is exactly the set of ids reachable by iterating
// the ordered index — spec.md invariant 1.
func TestPropertyRegistryAndOrderedIndexAgree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := newTestPool(8)

		ops := rapid.IntRange(10, 60).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				id := genTxID(t, "putID")
				weight := rapid.Uint64Range(0, 1000).Draw(t, "weight")
				tx := Transaction{ID: id, Outputs: []TxOutput{feeOutput(1, weight)}}
				p.Put(tx, nil, testFeeFactor)
			case 1:
				id := genTxID(t, "removeID")
				p.Remove(Transaction{ID: id})
			case 2:
				id := genTxID(t, "invalidateID")
				p.Invalidate(Transaction{ID: id})
			}
		}

		fromRegistry := make(map[TxID]struct{}, len(p.transactionsRegistry))
		for id := range p.transactionsRegistry {
			fromRegistry[id] = struct{}{}
		}

		fromOrdered := make(map[TxID]struct{})
		for e := range p.orderedTransactions.Iterate() {
			fromOrdered[e.tx.Transaction.ID] = struct{}{}
		}

		require.Equal(t, fromRegistry, fromOrdered)
		require.Equal(t, len(fromRegistry), p.Size())
	})
}

// TestPropertyCapacityNeverExceeded verifies spec.md invariant 4: after
// any Put, the pool never holds more than its configured capacity.
func TestPropertyCapacityNeverExceeded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.Uint32Range(1, 10).Draw(t, "capacity")
		p := newTestPool(capacity)

		puts := rapid.IntRange(1, 40).Draw(t, "puts")
		for i := 0; i < puts; i++ {
			id := genTxID(t, "id")
			weight := rapid.Uint64Range(0, 1000).Draw(t, "weight")
			tx := Transaction{ID: id, Outputs: []TxOutput{feeOutput(1, weight)}}
			p.Put(tx, nil, testFeeFactor)
			require.LessOrEqual(t, uint32(p.Size()), capacity)
		}
	})
}

// TestPropertyPutThenRemoveRestoresEmpty verifies that removing every
// transaction ever admitted brings the pool back to empty, regardless of
// the order transactions were admitted or removed in.
func TestPropertyPutThenRemoveRestoresEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := newTestPool(50)

		n := rapid.IntRange(1, 15).Draw(t, "n")
		var txs []Transaction
		for i := 0; i < n; i++ {
			var id TxID
			id[len(id)-1] = byte(i)
			weight := rapid.Uint64Range(0, 1000).Draw(t, "weight")
			tx := Transaction{ID: id, Outputs: []TxOutput{feeOutput(1, weight)}}
			p.Put(tx, nil, testFeeFactor)
			txs = append(txs, tx)
		}

		order := rapid.Permutation(txs).Draw(t, "removalOrder")
		for _, tx := range order {
			p.Remove(tx)
		}

		require.Equal(t, 0, p.Size())
		require.Empty(t, p.transactionsRegistry)
		require.Empty(t, p.outputs)
		require.Empty(t, p.inputs)
	})
}

// TestPropertyDuplicatePutNeverChangesWeight verifies spec.md scenario 6
// generalized: re-putting an already-admitted id under any fee factor
// and any metadata replaces only the stored UnconfirmedTransaction, never
// the key's weight.
func TestPropertyDuplicatePutNeverChangesWeight(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := newTestPool(20)

		id := genTxID(t, "id")
		firstWeight := rapid.Uint64Range(0, 1000).Draw(t, "firstWeight")
		tx := Transaction{ID: id, Outputs: []TxOutput{feeOutput(1, firstWeight)}}
		p.Put(tx, "initial", testFeeFactor)
		originalWeight := p.transactionsRegistry[id].key.Weight

		replays := rapid.IntRange(1, 10).Draw(t, "replays")
		for i := 0; i < replays; i++ {
			factor := rapid.Int64Range(1, 1<<20).Draw(t, "factor")
			meta := rapid.String().Draw(t, "meta")
			p.Put(tx, meta, factor)

			require.Equal(t, originalWeight, p.transactionsRegistry[id].key.Weight)
			got, ok := p.Get(id)
			require.True(t, ok)
			require.Equal(t, meta, got.Metadata)
		}
	})
}

// TestPropertyInvalidationIsSticky verifies spec.md's invalidation-window
// contract: immediately after Invalidate, is_invalidated is always true
// and the id is absent from the pool.
func TestPropertyInvalidationIsSticky(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := newTestPool(10)
		id := genTxID(t, "id")
		tx := Transaction{ID: id}

		if rapid.Bool().Draw(t, "admitFirst") {
			weight := rapid.Uint64Range(0, 1000).Draw(t, "weight")
			tx.Outputs = []TxOutput{feeOutput(1, weight)}
			p.Put(tx, nil, testFeeFactor)
		}

		p.Invalidate(tx)

		require.True(t, p.IsInvalidated(id))
		require.False(t, p.Contains(id))
	})
}

// TestPropertyFamilyPropagationNeverDuplicatesAncestors builds a random
// chain of transactions, each spending the previous one's sole output,
// so every Put after the first runs update_family against a real
// parent. Regression coverage for a bug where re-keying a parent during
// propagation inserted it into the ordered index a second time: the
// registry, the ordered index, and Size must agree at every step no
// matter how deep the chain gets.
func TestPropertyFamilyPropagationNeverDuplicatesAncestors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := newTestPool(100)

		chainLength := rapid.IntRange(1, 40).Draw(t, "chainLength")
		var prevOut OutputID
		for i := 0; i < chainLength; i++ {
			var id TxID
			id[len(id)-1] = byte(i)
			var out OutputID
			out[len(out)-1] = byte(i)

			weight := rapid.Uint64Range(0, 1000).Draw(t, "weight")
			tx := Transaction{
				ID:      id,
				Outputs: []TxOutput{feeOutput(1, weight)},
			}
			tx.Outputs[0].ID = out
			if i > 0 {
				tx.Inputs = []TxInput{{OutputID: prevOut}}
			}
			prevOut = out

			p.Put(tx, nil, testFeeFactor)

			var orderedCount int
			seen := make(map[TxID]struct{})
			for e := range p.orderedTransactions.Iterate() {
				require.NotContains(t, seen, e.tx.Transaction.ID,
					"ancestor duplicated in ordered index")
				seen[e.tx.Transaction.ID] = struct{}{}
				orderedCount++
			}

			require.Equal(t, len(p.transactionsRegistry), orderedCount)
			require.Equal(t, orderedCount, p.Size())
		}
	})
}
