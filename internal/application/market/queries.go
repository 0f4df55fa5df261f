package market

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// Config devuelve la config vigente.
func (m *Market) Config(ctx context.Context) (domain.MarketConfig, error) {
	var cfg domain.MarketConfig
	err := m.store.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		var err error
		cfg, err = tx.LoadConfig(ctx)
		return err
	})
	if err != nil {
		return domain.MarketConfig{}, fmt.Errorf("market.Config: %w", err)
	}
	return cfg, nil
}

// Status devuelve las rondas bidding y live actuales y el flag de pausa.
func (m *Market) Status(ctx context.Context) (domain.Status, error) {
	var st domain.Status
	err := m.store.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		var err error
		if st.Slots, err = tx.Slots(ctx); err != nil {
			return err
		}
		if st.Paused, err = tx.Paused(ctx); err != nil {
			return err
		}
		st.NextRoundID, err = tx.NextRoundID(ctx)
		return err
	})
	if err != nil {
		return domain.Status{}, fmt.Errorf("market.Status: %w", err)
	}
	return st, nil
}

// FinishedRound devuelve una ronda archivada; domain.ErrNotFound si no terminó.
func (m *Market) FinishedRound(ctx context.Context, id uint64) (domain.FinishedRound, error) {
	var fin domain.FinishedRound
	err := m.store.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		var err error
		fin, err = tx.FinishedRound(ctx, id)
		return err
	})
	if err != nil {
		return domain.FinishedRound{}, fmt.Errorf("market.FinishedRound: %w", err)
	}
	return fin, nil
}

// CurrentPosition devuelve las apuestas de player en la ronda bidding y en la live.
func (m *Market) CurrentPosition(ctx context.Context, player domain.Address) (domain.Position, error) {
	var pos domain.Position
	err := m.store.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		slots, err := tx.Slots(ctx)
		if err != nil {
			return err
		}
		if slots.Bidding != nil {
			if pos.Bidding, err = tx.GetBet(ctx, slots.Bidding.ID, player); err != nil {
				return err
			}
		}
		if slots.Live != nil {
			if pos.Live, err = tx.GetBet(ctx, slots.Live.ID, player); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Position{}, fmt.Errorf("market.CurrentPosition: %w", err)
	}
	return pos, nil
}

// BetHistory pagina las apuestas de player por round id ascendente.
// startAfter es el cursor (último round id visto); limit se acota a MaxPageSize.
func (m *Market) BetHistory(ctx context.Context, player domain.Address, startAfter *uint64, limit int) ([]domain.Bet, error) {
	var bets []domain.Bet
	err := m.store.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		var err error
		bets, err = tx.ListBets(ctx, player, startAfter, domain.PageLimit(limit))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("market.BetHistory: %w", err)
	}
	return bets, nil
}

// PendingReward es lo que CollectWinnings pagaría ahora, sin tocar nada.
func (m *Market) PendingReward(ctx context.Context, player domain.Address) (domain.Amount, error) {
	var total domain.Amount
	err := m.store.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		bets, err := tx.ListBets(ctx, player, nil, 0)
		if err != nil {
			return err
		}
		for _, bet := range bets {
			payout, ok, err := settle(ctx, tx, bet)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if total, err = domain.AddAmount(total, payout); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Amount{}, fmt.Errorf("market.PendingReward: %w", err)
	}
	return total, nil
}

// AccumulatedFee devuelve el gaming fee pendiente de distribuir.
func (m *Market) AccumulatedFee(ctx context.Context) (domain.Amount, error) {
	var fee domain.Amount
	err := m.store.View(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		var err error
		fee, err = tx.AccumulatedFee(ctx)
		return err
	})
	if err != nil {
		return domain.Amount{}, fmt.Errorf("market.AccumulatedFee: %w", err)
	}
	return fee, nil
}
