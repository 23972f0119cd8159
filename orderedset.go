// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"iter"
	"sort"
)

// orderedSet is the pool's ordered_transactions index: a set of
// *poolEntry values kept sorted by the total order less (descending
// weight, ascending id), supporting O(log n) find-by-key and both-ends
// access. Its zero value is ready to use.
//
// Adapted from the generic PriorityQueue/heapImpl container shape found
// in the teacher's mempool/txgraph/collections.go (capacity-param
// constructor, iterator-style access), but backed by a sorted slice
// rather than a binary heap: eviction needs the *lowest*-weight entry
// (the last element in order) as cheaply as the highest-weight one, and
// a container/heap only ever gives O(log n) access to the root.
type orderedSet struct {
	items []*poolEntry
}

// newOrderedSet creates an empty ordered set with the given initial
// capacity hint.
func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{items: make([]*poolEntry, 0, capacity)}
}

// compareKeys returns -1, 0, or 1 as a sorts before, equals, or sorts
// after b under the pool's total order.
func compareKeys(a, b WeightedTxId) int {
	switch {
	case less(a, b):
		return -1
	case less(b, a):
		return 1
	default:
		return 0
	}
}

// search returns the index of the first item whose key is not ordered
// before key, and whether that item's key exactly equals key.
func (s *orderedSet) search(key WeightedTxId) (int, bool) {
	idx := sort.Search(len(s.items), func(i int) bool {
		return compareKeys(s.items[i].key, key) >= 0
	})
	found := idx < len(s.items) && compareKeys(s.items[idx].key, key) == 0
	return idx, found
}

// Len returns the number of entries in the set.
func (s *orderedSet) Len() int {
	return len(s.items)
}

// Insert adds e, keyed by e.key, to the set. e must not already be
// present under its current key.
func (s *orderedSet) Insert(e *poolEntry) {
	idx, _ := s.search(e.key)
	s.items = append(s.items, nil)
	copy(s.items[idx+1:], s.items[idx:])
	s.items[idx] = e
}

// Remove deletes the entry keyed by key, returning false if no such
// entry exists.
func (s *orderedSet) Remove(key WeightedTxId) bool {
	idx, found := s.search(key)
	if !found {
		return false
	}
	copy(s.items[idx:], s.items[idx+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return true
}

// Rekey changes e's key to newKey, re-sorting it within the set. e must
// currently be present under its existing key; Rekey locates it using
// that key *before* mutating it, then inserts it under newKey. This is
// the "remove then insert" re-keying spec.md's design notes require:
// equality is unchanged (same id) but the sort position generally is
// not. Callers must not mutate e.key themselves before calling Rekey —
// doing so would invalidate both the search for the old position and
// the sorted invariant the search relies on.
func (s *orderedSet) Rekey(e *poolEntry, newKey WeightedTxId) bool {
	if !s.Remove(e.key) {
		return false
	}
	e.key = newKey
	s.Insert(e)
	return true
}

// First returns the highest-priority entry (greatest weight, ties
// broken by smallest id), or false if the set is empty.
func (s *orderedSet) First() (*poolEntry, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[0], true
}

// Last returns the lowest-priority entry — the eviction victim — or
// false if the set is empty.
func (s *orderedSet) Last() (*poolEntry, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[len(s.items)-1], true
}

// Iterate yields entries from highest to lowest priority.
func (s *orderedSet) Iterate() iter.Seq[*poolEntry] {
	return func(yield func(*poolEntry) bool) {
		for _, e := range s.items {
			if !yield(e) {
				return
			}
		}
	}
}
