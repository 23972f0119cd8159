// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ergo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func idN(n byte) TxID {
	var id TxID
	id[len(id)-1] = n
	return id
}

func TestWeightedTxIdEqualityIgnoresWeight(t *testing.T) {
	a := WeightedTxId{ID: idN(1), Weight: 10, FeePerFactor: 10, CreatedAt: 1}
	b := WeightedTxId{ID: idN(1), Weight: 999, FeePerFactor: 10, CreatedAt: 2}

	require.True(t, a.Equal(b))
}

func TestWeightedTxIdInequalityByID(t *testing.T) {
	a := WeightedTxId{ID: idN(1), Weight: 10}
	b := WeightedTxId{ID: idN(2), Weight: 10}

	require.False(t, a.Equal(b))
}

func TestLessOrdersByWeightDescending(t *testing.T) {
	high := WeightedTxId{ID: idN(1), Weight: 20}
	low := WeightedTxId{ID: idN(2), Weight: 10}

	require.True(t, less(high, low))
	require.False(t, less(low, high))
}

func TestLessBreaksTiesByID(t *testing.T) {
	a := WeightedTxId{ID: idN(1), Weight: 10}
	b := WeightedTxId{ID: idN(2), Weight: 10}

	require.True(t, less(a, b))
	require.False(t, less(b, a))
}
