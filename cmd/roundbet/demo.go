package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/roundbet/internal/adapters/admin"
	"github.com/alejandrodnm/roundbet/internal/adapters/notify"
	"github.com/alejandrodnm/roundbet/internal/adapters/oracle"
	"github.com/alejandrodnm/roundbet/internal/adapters/storage"
	"github.com/alejandrodnm/roundbet/internal/adapters/token"
	"github.com/alejandrodnm/roundbet/internal/application/market"
	"github.com/alejandrodnm/roundbet/internal/domain"
)

// runDemo juega una ronda completa en memoria con un reloj simulado:
// alice apuesta 100 bull, bob 50 bear, el precio sube y alice cobra.
func runDemo(ctx context.Context, console *notify.Console) error {
	const (
		gov     domain.Address = "gov"
		custody domain.Address = "market"
		ref                    = "BTCUSD"
		tok                    = "hopers"
	)

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		return err
	}
	defer store.Close()

	feed := oracle.NewFeed(gov)
	tokens := token.NewLedger(tok)
	for _, p := range []domain.Address{"alice", "bob"} {
		if err := tokens.Mint(p, domain.NewAmount(1000)); err != nil {
			return err
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	m := market.New(store, feed, tokens, admin.NewStatic(gov),
		market.WithClock(func() time.Time { return now }),
		market.WithNotifier(console),
	)

	duration := 600 * time.Second
	steps := []func() error{
		func() error {
			_, err := m.Instantiate(ctx, gov, domain.MarketConfig{
				RoundDuration: duration,
				OracleRef:     ref,
				MinimumBet:    domain.NewAmount(1),
				TokenRef:      tok,
				Custody:       custody,
			})
			return err
		},
		func() error { _, err := m.AdvanceRound(ctx); return err },
		func() error { _, err := m.PlaceBet(ctx, "alice", 0, domain.Bull, domain.NewAmount(100)); return err },
		func() error { _, err := m.PlaceBet(ctx, "bob", 0, domain.Bear, domain.NewAmount(50)); return err },
		func() error {
			now = now.Add(duration)
			if err := feed.Update(gov, ref, domain.NewAmount(100)); err != nil {
				return err
			}
			_, err := m.AdvanceRound(ctx)
			return err
		},
		func() error {
			now = now.Add(duration)
			if err := feed.Update(gov, ref, domain.NewAmount(120)); err != nil {
				return err
			}
			_, err := m.AdvanceRound(ctx)
			return err
		},
		func() error {
			r, err := m.CollectWinnings(ctx, "alice")
			if err == nil {
				console.PrintTransfers(r.Transfers)
			}
			return err
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("demo step %d: %w", i+1, err)
		}
	}

	fin, err := m.FinishedRound(ctx, 0)
	if err != nil {
		return err
	}
	console.PrintRound(fin)
	st, err := m.Status(ctx)
	if err != nil {
		return err
	}
	console.PrintStatus(st)
	console.PrintAmount("alice balance", tokens.Balance("alice"))
	console.PrintAmount("bob balance", tokens.Balance("bob"))
	return nil
}
