// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import "bytes"

// WeightedTxId is the key a transaction is tracked under inside the pool's
// weight-ordered index. Two keys are equal, and hash the same, iff their
// ids match — the weight, fee-per-factor, and creation time are carried
// along for ordering and bookkeeping but play no part in identity. This
// lets callers hold a WeightedTxId as an opaque token across a weight
// mutation: the registry always maps a transaction id to its current key,
// but two historical copies of that key with different weights still
// compare equal by id.
type WeightedTxId struct {
	// ID is the transaction id. Identity and hashing are by this field
	// alone.
	ID TxID

	// Weight is the current sort weight: the fee-per-factor at
	// admission, plus the weight contributed by every descendant
	// discovered since (see update_family).
	Weight int64

	// FeePerFactor is the weight this transaction contributed at
	// admission, before any family propagation. Unlike Weight, it never
	// changes after the key is created.
	FeePerFactor int64

	// CreatedAt is the wall-clock time, in milliseconds, the key was
	// created. Informational only; it plays no part in ordering or
	// equality.
	CreatedAt int64
}

// Equal reports whether two keys identify the same transaction. Weight,
// FeePerFactor, and CreatedAt are ignored.
func (k WeightedTxId) Equal(other WeightedTxId) bool {
	return k.ID == other.ID
}

// less implements the ordered index's total order: (-weight, id)
// ascending. A larger weight sorts earlier (higher priority); ties are
// broken by id in ascending byte order so the order is total even among
// same-weight transactions.
func less(a, b WeightedTxId) bool {
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
