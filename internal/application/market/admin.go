package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// UpdateConfig aplica un update parcial. El resultado se valida completo antes
// de guardarse. Disponible también con el mercado pausado.
func (m *Market) UpdateConfig(ctx context.Context, caller domain.Address, p domain.PartialConfig) (domain.Receipt, error) {
	return m.execute(ctx, "UpdateConfig", func(ctx context.Context, tx ports.LedgerTx, r *domain.Receipt) error {
		if err := m.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if p.Empty() {
			return fmt.Errorf("empty update: %w", domain.ErrInvalidConfig)
		}
		current, err := tx.LoadConfig(ctx)
		if err != nil {
			return err
		}
		next := p.Apply(current)
		if err := next.Validate(); err != nil {
			return err
		}
		if err := tx.SaveConfig(ctx, next); err != nil {
			return err
		}
		r.Events = append(r.Events, configEvent(next))
		slog.Info("config updated", "caller", caller, "changes", changedFields(current, next))
		return nil
	})
}

func changedFields(a, b domain.MarketConfig) []string {
	var out []string
	if a.RoundDuration != b.RoundDuration {
		out = append(out, "round_duration="+b.RoundDuration.String())
	}
	if a.OracleRef != b.OracleRef {
		out = append(out, "oracle="+b.OracleRef)
	}
	if !a.MinimumBet.Eq(&b.MinimumBet) {
		out = append(out, "minimum_bet="+b.MinimumBet.Dec())
	}
	if a.BurnFeeBP != b.BurnFeeBP {
		out = append(out, fmt.Sprintf("burn_fee=%d", b.BurnFeeBP))
	}
	if a.GamingFeeBP != b.GamingFeeBP {
		out = append(out, fmt.Sprintf("gaming_fee=%d", b.GamingFeeBP))
	}
	if a.TokenRef != b.TokenRef {
		out = append(out, "token="+b.TokenRef)
	}
	if a.Custody != b.Custody {
		out = append(out, "custody="+string(b.Custody))
	}
	return out
}

// Pause bloquea PlaceBet y AdvanceRound.
func (m *Market) Pause(ctx context.Context, caller domain.Address) (domain.Receipt, error) {
	return m.setPaused(ctx, "Pause", caller, true)
}

// Resume vuelve a habilitar PlaceBet y AdvanceRound.
func (m *Market) Resume(ctx context.Context, caller domain.Address) (domain.Receipt, error) {
	return m.setPaused(ctx, "Resume", caller, false)
}

func (m *Market) setPaused(ctx context.Context, op string, caller domain.Address, paused bool) (domain.Receipt, error) {
	return m.execute(ctx, op, func(ctx context.Context, tx ports.LedgerTx, r *domain.Receipt) error {
		if err := m.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if err := tx.SetPaused(ctx, paused); err != nil {
			return err
		}
		kind := domain.EventResumed
		if paused {
			kind = domain.EventPaused
		}
		r.Events = append(r.Events, domain.NewEvent(kind, 0, "at", m.clock().Format(time.RFC3339)))
		slog.Info("market "+string(kind), "caller", caller)
		return nil
	})
}

// DistributeFund reparte el fee acumulado entre las dev wallets según sus
// ratios, que deben sumar exactamente 1. Cada parte es floor(fee * ratio); el
// total repartido se descuenta del acumulado y el resto queda para la próxima.
func (m *Market) DistributeFund(ctx context.Context, caller domain.Address, shares []domain.WalletShare) (domain.Receipt, error) {
	return m.execute(ctx, "DistributeFund", func(ctx context.Context, tx ports.LedgerTx, r *domain.Receipt) error {
		if err := m.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if err := domain.ValidateShares(shares); err != nil {
			return err
		}
		cfg, err := tx.LoadConfig(ctx)
		if err != nil {
			return err
		}
		fee, err := tx.AccumulatedFee(ctx)
		if err != nil {
			return err
		}

		var distributed domain.Amount
		for _, s := range shares {
			part, err := s.ShareOf(fee)
			if err != nil {
				return err
			}
			if part.IsZero() {
				continue
			}
			if distributed, err = domain.AddAmount(distributed, part); err != nil {
				return err
			}
			r.Transfers = append(r.Transfers,
				domain.NewTransfer(domain.TransferOut, cfg.TokenRef, cfg.Custody, s.Address, part))
		}

		remaining, err := domain.SubAmount(fee, distributed)
		if err != nil {
			return fmt.Errorf("distributed more than accrued: %w", err)
		}
		if err := tx.SetAccumulatedFee(ctx, remaining); err != nil {
			return err
		}

		r.Events = append(r.Events, domain.NewEvent(domain.EventFundDistributed, 0,
			"amount", distributed.Dec(),
			"wallets", fmt.Sprint(len(r.Transfers)),
			"remaining", remaining.Dec(),
		))
		slog.Info("fund distributed", "amount", distributed.Dec(), "wallets", len(r.Transfers), "remaining", remaining.Dec())
		return nil
	})
}
