// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package invalidation implements the pool's approximate expiring cache: a
// size- and time-bounded set of transaction ids that were rejected as
// invalid, so the same id is not re-admitted. See spec.md §4.1.
package invalidation

import (
	"math"
	"sync"
	"time"

	"github.com/aead/siphash"
	"github.com/cespare/xxhash/v2"
	"github.com/decred/dcrd/lru"
)

// numGenerations is the number of rotating Bloom generations the
// expiration window is split across. A put always lands in the newest
// generation; might_contain probes every still-live one. Using several
// short-lived generations instead of one long-lived filter lets old
// entries actually leave the set once the window passes, rather than the
// filter monotonically filling up and never clearing.
const numGenerations = 4

// targetFalsePositiveRate mirrors the false-positive budget the
// teacher's own wire-protocol Bloom filter (bloom.Filter) is sized
// against.
const targetFalsePositiveRate = 0.01

// sipKey is a fixed 16-byte SipHash key. The cache's purpose is load
// shedding, not adversarial resistance to a party who already knows
// which ids it holds, so a fixed key (rather than one randomized per
// process) is sufficient and keeps cache behavior reproducible in tests.
var sipKey = [16]byte{0x65, 0x72, 0x67, 0x6f, 0x74, 0x78, 0x70, 0x6f, 0x6f, 0x6c, 0x69, 0x6e, 0x76, 0x61, 0x6c, 0x31}

// ID is the fixed-width identifier the cache tracks. Callers pass
// transaction ids in.
type ID [32]byte

// generation is one rotating Bloom filter: an m-bit array addressed by k
// independent hash functions.
type generation struct {
	bits      []byte
	m         uint32
	k         uint32
	createdAt time.Time
}

func newGeneration(elements uint32, createdAt time.Time) *generation {
	m, k := filterParams(elements, targetFalsePositiveRate)
	return &generation{
		bits:      make([]byte, (m+7)/8),
		m:         m,
		k:         k,
		createdAt: createdAt,
	}
}

// filterParams computes the Bloom filter bit-width m and hash-function
// count k for the given expected element count and false-positive rate,
// using the same sizing formulas the teacher's bloom.NewFilter uses:
// m = -(n*ln(p))/ln(2)^2, k = (m/n)*ln(2).
func filterParams(elements uint32, fprate float64) (m, k uint32) {
	if elements == 0 {
		elements = 1
	}
	if fprate > 1.0 {
		fprate = 1.0
	}
	if fprate < 1e-9 {
		fprate = 1e-9
	}

	const ln2Squared = math.Ln2 * math.Ln2

	mBits := uint32(-1 * float64(elements) * math.Log(fprate) / ln2Squared)
	if mBits < 8 {
		mBits = 8
	}

	kFuncs := uint32(float64(mBits) / float64(elements) * math.Ln2)
	if kFuncs < 1 {
		kFuncs = 1
	}
	if kFuncs > 32 {
		kFuncs = 32
	}

	return mBits, kFuncs
}

// positions returns the k bit positions id maps to in a filter of size m,
// using double hashing (Kirsch-Mitzenmacher): position_i = (h1 + i*h2)
// mod m, built from two independent hash families so the derived
// positions behave like k independent hash functions without computing k
// full hashes.
func positions(id ID, m, k uint32) []uint32 {
	h1 := siphash.Sum64(id[:], &sipKey)
	h2 := xxhash.Sum64(id[:])
	if h2 == 0 {
		// Guarantee the step is non-zero so every probe actually
		// advances.
		h2 = 1
	}

	out := make([]uint32, k)
	for i := uint32(0); i < k; i++ {
		out[i] = uint32((h1 + uint64(i)*h2) % uint64(m))
	}
	return out
}

func (g *generation) add(id ID) {
	for _, pos := range positions(id, g.m, g.k) {
		g.bits[pos/8] |= 1 << (pos % 8)
	}
}

func (g *generation) mightContain(id ID) bool {
	for _, pos := range positions(id, g.m, g.k) {
		if g.bits[pos/8]&(1<<(pos%8)) == 0 {
			return false
		}
	}
	return true
}

func (g *generation) expired(now time.Time, window time.Duration) bool {
	return now.Sub(g.createdAt) >= window
}

// Cache is the approximate expiring cache. Recently invalidated ids get
// exact, O(1) answers from an internal LRU layer; once an id ages out of
// that bounded layer the cache falls back to its rotating Bloom
// generations, which may answer true for an id never inserted (a false
// positive) but, within the configured expiration window, never answer
// false for an id that was. The zero value is not usable; construct with
// Empty.
type Cache struct {
	mu sync.Mutex

	recent lru.Cache

	generations []*generation
	genWindow   time.Duration
	fullWindow  time.Duration
	elemHint    uint32

	now func() time.Time
}

// Empty constructs a cache sized around sizeHint entries, each retained
// for at least expiration after insertion.
func Empty(sizeHint uint32, expiration time.Duration) *Cache {
	return newCache(sizeHint, expiration, time.Now)
}

// newCache is Empty with an injectable clock, for deterministic tests.
func newCache(sizeHint uint32, expiration time.Duration, now func() time.Time) *Cache {
	if sizeHint == 0 {
		sizeHint = 1000
	}
	if expiration <= 0 {
		expiration = time.Hour
	}

	perGen := sizeHint / numGenerations
	if perGen == 0 {
		perGen = 1
	}

	c := &Cache{
		recent:     lru.NewCache(uint(sizeHint)),
		genWindow:  expiration / numGenerations,
		fullWindow: expiration,
		elemHint:   perGen,
		now:        now,
	}
	if c.genWindow <= 0 {
		c.genWindow = expiration
	}
	c.generations = []*generation{newGeneration(c.elemHint, now())}
	return c
}

// Put records id as invalidated.
func (c *Cache) Put(id ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recent.Add(id)
	c.rotateLocked()
	c.generations[len(c.generations)-1].add(id)
}

// MightContain reports whether id may have been invalidated. It may
// return true for an id never put (a false positive), but is guaranteed
// to return true for any id put within the configured expiration window
// and not yet evicted by it.
func (c *Cache) MightContain(id ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.recent.Contains(id) {
		return true
	}

	c.rotateLocked()
	now := c.now()
	for _, g := range c.generations {
		if g.expired(now, c.retention()) {
			continue
		}
		if g.mightContain(id) {
			return true
		}
	}
	return false
}

// retention is how long a generation stays live after it is created. A
// generation takes puts for up to genWindow, so it is kept for fullWindow
// beyond that: every id put into it stays visible for at least fullWindow.
func (c *Cache) retention() time.Duration {
	return c.genWindow + c.fullWindow
}

// rotateLocked starts a new generation once the current one has been
// live for genWindow, and drops generations that have fully expired.
// Callers must hold c.mu.
func (c *Cache) rotateLocked() {
	now := c.now()

	newest := c.generations[len(c.generations)-1]
	if now.Sub(newest.createdAt) >= c.genWindow {
		c.generations = append(c.generations, newGeneration(c.elemHint, now))
	}

	live := c.generations[:0]
	for _, g := range c.generations {
		if !g.expired(now, c.retention()) {
			live = append(live, g)
		}
	}
	if len(live) == 0 {
		live = append(live, newGeneration(c.elemHint, now))
	}
	c.generations = live
}
