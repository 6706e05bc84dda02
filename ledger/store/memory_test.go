package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojmanoj143/assigment/ledger"
	"github.com/manojmanoj143/assigment/ledger/store"
)

func TestTxMemory_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A unit that adjusts and appends, then fails
	// WHEN: WithTx returns the error
	// THEN: Both the quantity and the log are restored

	mem := store.NewTxMemory()
	ctx := context.Background()

	boom := errors.New("boom")
	err := mem.WithTx(ctx, func(s ledger.Store) error {
		if _, err := s.Adjust(ctx, 1, 1, 10); err != nil {
			return err
		}
		if _, err := s.Append(ctx, ledger.Transaction{Kind: ledger.KindPurchase, AssetID: 1, Quantity: 10}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	qty, err := mem.Quantity(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)

	txs, err := mem.Query(ctx, ledger.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestTxMemory_WithTx_CommitsOnSuccess(t *testing.T) {
	mem := store.NewTxMemory()
	ctx := context.Background()

	err := mem.WithTx(ctx, func(s ledger.Store) error {
		_, err := s.Adjust(ctx, 1, 1, 7)
		return err
	})
	require.NoError(t, err)

	qty, err := mem.Quantity(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), qty)
}

func TestMemory_Levels_SkipsZeroRowsNever(t *testing.T) {
	// Levels reports every materialized row, zero or negative included;
	// callers that want to hide empties filter themselves.

	mem := store.NewTxMemory()
	ctx := context.Background()

	_, err := mem.Adjust(ctx, 1, 1, 5)
	require.NoError(t, err)
	_, err = mem.Adjust(ctx, 1, 1, -5)
	require.NoError(t, err)
	_, err = mem.Adjust(ctx, 2, 1, -3)
	require.NoError(t, err)

	levels, err := mem.Levels(ctx, ledger.StockFilter{})
	require.NoError(t, err)
	assert.Len(t, levels, 2)
}
