// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"bytes"
	"math"
	"math/bits"
)

// feePerFactorMultiplier preserves precision for small fees when dividing
// by the fee factor; see weighted below.
const feePerFactorMultiplier = 1024

// weighted computes the initial WeightedTxId for tx given feeFactor, the
// transaction's cost metric (size in bytes or an execution-cost unit).
// feeFactor must be strictly positive; dividing by a caller-supplied zero
// is a programmer error this module asserts at the boundary rather than
// reporting through a return value, since callers must never construct a
// zero fee factor.
//
// The resulting weight equals fee-per-factor at admission time; afterwards
// update_family raises it as descendants arrive and lowers it again as
// they are removed or invalidated.
func weighted(tx Transaction, feeFactor int64, fee MonetarySettings, now func() int64) WeightedTxId {
	if feeFactor <= 0 {
		panic("ergo: fee factor must be strictly positive")
	}

	total := feeOf(tx, fee.FeePropositionBytes)
	fpf := feePerFactor(total, feeFactor)

	return WeightedTxId{
		ID:           tx.ID,
		Weight:       fpf,
		FeePerFactor: fpf,
		CreatedAt:    now(),
	}
}

// weightedUnconfirmed is the UnconfirmedTransaction-arity twin of
// weighted. The source material this spec was distilled from exposes
// both arities computing the identical value; no semantic difference is
// intended (see DESIGN.md Open Question 1).
func weightedUnconfirmed(u UnconfirmedTransaction, feeFactor int64, fee MonetarySettings, now func() int64) WeightedTxId {
	return weighted(u.Transaction, feeFactor, fee, now)
}

// feeOf sums the value of every output of tx whose proposition matches
// feeProposition exactly, saturating at math.MaxUint64 rather than
// wrapping on overflow.
func feeOf(tx Transaction, feeProposition []byte) uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		if !bytes.Equal(out.PropositionBytes, feeProposition) {
			continue
		}
		sum, carry := bits.Add64(total, out.Value, 0)
		if carry != 0 {
			return math.MaxUint64
		}
		total = sum
	}
	return total
}

// feePerFactor computes (fee * feePerFactorMultiplier) / feeFactor using
// a full 128-bit intermediate product so that large fees don't overflow
// before the division, saturating the int64 result if the quotient would
// not fit.
func feePerFactor(fee uint64, feeFactor int64) int64 {
	hi, lo := bits.Mul64(fee, feePerFactorMultiplier)
	divisor := uint64(feeFactor)

	if hi >= divisor {
		// The product doesn't fit when divided by divisor; the true
		// quotient exceeds what a 64-bit division can produce.
		return math.MaxInt64
	}

	q, _ := bits.Div64(hi, lo, divisor)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}
