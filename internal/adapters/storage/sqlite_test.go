package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/roundbet/internal/adapters/storage"
	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func marketConfig() domain.MarketConfig {
	return domain.MarketConfig{
		RoundDuration: 10 * time.Minute,
		OracleRef:     "BTCUSD",
		MinimumBet:    domain.NewAmount(1),
		BurnFeeBP:     100,
		GamingFeeBP:   200,
		TokenRef:      "hopers",
		Custody:       "market",
	}
}

func initStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	db := newStore(t)
	err := db.Atomically(context.Background(), func(ctx context.Context, tx ports.LedgerTx) error {
		return tx.InitState(ctx, marketConfig())
	})
	require.NoError(t, err)
	return db
}

func TestSQLiteStorage_ConfigRoundTrip(t *testing.T) {
	db := initStore(t)
	ctx := context.Background()

	err := db.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		cfg, err := tx.LoadConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, marketConfig(), cfg)

		paused, err := tx.Paused(ctx)
		require.NoError(t, err)
		assert.False(t, paused)

		id, err := tx.NextRoundID(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), id)

		fee, err := tx.AccumulatedFee(ctx)
		require.NoError(t, err)
		assert.True(t, fee.IsZero())
		return nil
	})
	require.NoError(t, err)
}

func TestSQLiteStorage_LoadConfigBeforeInit(t *testing.T) {
	db := newStore(t)
	err := db.View(context.Background(), func(ctx context.Context, tx ports.LedgerTx) error {
		_, err := tx.LoadConfig(ctx)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStorage_InitTwiceFails(t *testing.T) {
	db := initStore(t)
	err := db.Atomically(context.Background(), func(ctx context.Context, tx ports.LedgerTx) error {
		return tx.InitState(ctx, marketConfig())
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)
}

func TestSQLiteStorage_RollbackDiscardsEverything(t *testing.T) {
	db := initStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.Atomically(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.SetPaused(ctx, true))
		require.NoError(t, tx.SetNextRoundID(ctx, 9))
		require.NoError(t, tx.InsertBet(ctx, domain.Bet{Player: "a", RoundID: 0, Amount: domain.NewAmount(5), Direction: domain.Bull}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = db.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		paused, _ := tx.Paused(ctx)
		id, _ := tx.NextRoundID(ctx)
		bet, err := tx.GetBet(ctx, 0, "a")
		assert.False(t, paused)
		assert.Equal(t, uint64(0), id)
		assert.Nil(t, bet)
		return err
	})
	require.NoError(t, err)
}

func TestSQLiteStorage_RoundLifecycle(t *testing.T) {
	db := initStore(t)
	ctx := context.Background()
	now := time.Unix(1_000, 0).UTC()

	bidding := domain.NewBiddingRound(0, now, nil, time.Minute)
	_, err := bidding.AddBet(domain.Bull, domain.NewAmount(40))
	require.NoError(t, err)

	err = db.Atomically(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.PutRound(ctx, bidding))
		slots, err := tx.Slots(ctx)
		require.NoError(t, err)
		require.NotNil(t, slots.Bidding)
		assert.Nil(t, slots.Live)
		assert.Equal(t, bidding, *slots.Bidding)

		live := slots.Bidding.Promote(now.Add(time.Minute), domain.NewAmount(100), time.Minute)
		require.NoError(t, tx.PutRound(ctx, live))

		slots, err = tx.Slots(ctx)
		require.NoError(t, err)
		assert.Nil(t, slots.Bidding)
		require.NotNil(t, slots.Live)
		assert.Equal(t, live, *slots.Live)

		fin := live.Close(domain.NewAmount(100))
		require.NoError(t, tx.PutRound(ctx, fin))

		got, err := tx.FinishedRound(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, fin, got)
		assert.Equal(t, domain.NoWinner, got.Winner)

		slots, err = tx.Slots(ctx)
		require.NoError(t, err)
		assert.Nil(t, slots.Live)
		return nil
	})
	require.NoError(t, err)
}

func TestSQLiteStorage_AtMostOneBiddingAndOneLive(t *testing.T) {
	db := initStore(t)
	ctx := context.Background()
	now := time.Unix(0, 0).UTC()

	err := db.Atomically(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.PutRound(ctx, domain.NewBiddingRound(0, now, nil, time.Minute)))
		return tx.PutRound(ctx, domain.NewBiddingRound(1, now, nil, time.Minute))
	})
	assert.Error(t, err, "a second bidding round must be rejected")

	err = db.Atomically(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.PutRound(ctx, domain.LiveRound{ID: 0, OpenTime: now, CloseTime: now}))
		return tx.PutRound(ctx, domain.LiveRound{ID: 1, OpenTime: now, CloseTime: now})
	})
	assert.Error(t, err, "a second live round must be rejected")
}

func TestSQLiteStorage_FinishedRoundIsImmutable(t *testing.T) {
	db := initStore(t)
	ctx := context.Background()
	fin := domain.FinishedRound{ID: 3, Winner: domain.Bull, OpenPrice: domain.NewAmount(1), ClosePrice: domain.NewAmount(2)}

	err := db.Atomically(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.PutRound(ctx, fin))
		return tx.PutRound(ctx, domain.LiveRound{ID: 3})
	})
	assert.Error(t, err)
}

func TestSQLiteStorage_FinishedRoundNotFound(t *testing.T) {
	db := initStore(t)
	err := db.View(context.Background(), func(ctx context.Context, tx ports.LedgerTx) error {
		_, err := tx.FinishedRound(ctx, 42)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
