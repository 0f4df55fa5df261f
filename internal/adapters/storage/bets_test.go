package storage_test

import (
	"context"
	"testing"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBets_DuplicateRejected(t *testing.T) {
	db := initStore(t)
	bet := domain.Bet{Player: "alice", RoundID: 1, Amount: domain.NewAmount(10), Direction: domain.Bear}

	err := db.Atomically(context.Background(), func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.InsertBet(ctx, bet))
		return tx.InsertBet(ctx, bet)
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateBet)
}

func TestBets_ListPaginatesByRound(t *testing.T) {
	db := initStore(t)
	ctx := context.Background()

	err := db.Atomically(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		for _, id := range []uint64{5, 1, 3, 2, 4} {
			require.NoError(t, tx.InsertBet(ctx, domain.Bet{Player: "alice", RoundID: id, Amount: domain.NewAmount(id), Direction: domain.Bull}))
		}
		return tx.InsertBet(ctx, domain.Bet{Player: "bob", RoundID: 1, Amount: domain.NewAmount(9), Direction: domain.Bear})
	})
	require.NoError(t, err)

	err = db.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		page, err := tx.ListBets(ctx, "alice", nil, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, uint64(1), page[0].RoundID)
		assert.Equal(t, uint64(2), page[1].RoundID)

		cursor := page[1].RoundID
		page, err = tx.ListBets(ctx, "alice", &cursor, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, uint64(3), page[0].RoundID)
		assert.Equal(t, uint64(4), page[1].RoundID)

		all, err := tx.ListBets(ctx, "alice", nil, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)

		bob, err := tx.ListBets(ctx, "bob", nil, 0)
		require.NoError(t, err)
		require.Len(t, bob, 1)
		assert.Equal(t, domain.Bear, bob[0].Direction)
		assert.Equal(t, domain.NewAmount(9), bob[0].Amount)
		return nil
	})
	require.NoError(t, err)
}

func TestBets_DeleteIsTheClaimGuard(t *testing.T) {
	db := initStore(t)
	ctx := context.Background()

	err := db.Atomically(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.InsertBet(ctx, domain.Bet{Player: "alice", RoundID: 0, Amount: domain.NewAmount(1), Direction: domain.Bull}))
		require.NoError(t, tx.DeleteBet(ctx, 0, "alice"))
		bet, err := tx.GetBet(ctx, 0, "alice")
		require.NoError(t, err)
		assert.Nil(t, bet)
		return tx.DeleteBet(ctx, 0, "alice")
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
