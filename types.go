// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"encoding/hex"
	"time"
)

// idSize is the length in bytes of a transaction id or an output id.
const idSize = 32

// TxID uniquely identifies a Transaction. The pool never computes one
// itself; ids arrive pre-hashed from the caller.
type TxID [idSize]byte

// String returns the lowercase hex encoding of the id.
func (id TxID) String() string {
	return hex.EncodeToString(id[:])
}

// OutputID uniquely identifies an output produced by some transaction
// (elsewhere called a "box id").
type OutputID [idSize]byte

// String returns the lowercase hex encoding of the id.
func (id OutputID) String() string {
	return hex.EncodeToString(id[:])
}

// TxInput is a reference to a previously produced output that a
// transaction spends.
type TxInput struct {
	// OutputID is the id of the output being consumed.
	OutputID OutputID
}

// TxOutput is a value produced by a transaction.
type TxOutput struct {
	// ID is the id of this output, assigned by the caller.
	ID OutputID

	// Value is the amount carried by this output.
	Value uint64

	// PropositionBytes is the spending predicate (script/ErgoTree-style
	// byte string) attached to this output. The pool never interprets
	// it except to compare it against the configured fee proposition in
	// the weight function.
	PropositionBytes []byte
}

// Transaction is the external value object the pool indexes. It is never
// mutated once admitted; validation and signature checking happen
// entirely outside this module.
type Transaction struct {
	// ID is the transaction's id.
	ID TxID

	// Inputs is the ordered sequence of outputs this transaction spends.
	Inputs []TxInput

	// Outputs is the ordered sequence of outputs this transaction
	// produces.
	Outputs []TxOutput

	// SizeOrCost is the transaction's fee-factor metric: either its
	// serialized size in bytes or an execution-cost unit, depending on
	// what the caller's fee model wants to divide by.
	SizeOrCost uint32
}

// UnconfirmedTransaction wraps a Transaction together with opaque,
// caller-owned metadata (relay source, receive time, anything the node
// wants to carry alongside the transaction without this module knowing
// its shape).
type UnconfirmedTransaction struct {
	Transaction Transaction
	Metadata    any
}

// MonetarySettings exposes the subset of chain-wide monetary parameters
// the weight function needs.
type MonetarySettings struct {
	// FeePropositionBytes identifies outputs that pay the miner/validator
	// fee. The weight function sums the value of every output whose
	// PropositionBytes matches this exactly.
	FeePropositionBytes []byte
}

// NodeSettings exposes the mempool capacity and invalidation-cache
// parameters a node operator configures. Loading these from a
// configuration file or environment is the caller's responsibility.
type NodeSettings struct {
	// MempoolCapacity is the hard cap on the number of transactions the
	// pool will hold.
	MempoolCapacity uint32

	// InvalidModifiersCacheSize is the size hint for the invalidation
	// cache (see invalidation.Cache).
	InvalidModifiersCacheSize uint32

	// InvalidModifiersCacheExpiration is the per-entry retention window
	// for the invalidation cache.
	InvalidModifiersCacheExpiration time.Duration

	// MaxParentScanDepth bounds update_family's recursion depth. Zero
	// selects the default of 500.
	MaxParentScanDepth int

	// MaxParentScanTime bounds update_family's wall-clock budget. Zero
	// selects the default of 500ms.
	MaxParentScanTime time.Duration
}
