package market

// advance.go: avance permissionless de rondas.
//
// Tres pasos independientes, cada uno solo actúa si su timer ya expiró:
//
//	close:     live && now >= close_time            → finished (archivada)
//	promote:   bidding && !live && now >= open_time → live + nueva bidding
//	bootstrap: !bidding                             → nueva bidding
//
// Llamar antes de tiempo es un no-op; llamar tarde cierra y promueve en la
// misma llamada.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// AdvanceRound reconcilia el round ledger con el reloj. Cualquiera puede llamarlo.
func (m *Market) AdvanceRound(ctx context.Context) (domain.Receipt, error) {
	return m.execute(ctx, "AdvanceRound", func(ctx context.Context, tx ports.LedgerTx, r *domain.Receipt) error {
		if err := requireRunning(ctx, tx); err != nil {
			return err
		}
		cfg, err := tx.LoadConfig(ctx)
		if err != nil {
			return err
		}
		slots, err := tx.Slots(ctx)
		if err != nil {
			return err
		}

		now := m.clock()
		price := m.sampler(cfg.OracleRef)

		if live := slots.Live; live != nil && live.ReadyToClose(now) {
			closePrice, err := price(ctx)
			if err != nil {
				return err
			}
			fin := live.Close(closePrice)
			if err := tx.PutRound(ctx, fin); err != nil {
				return err
			}
			slots.Live = nil
			r.Events = append(r.Events, domain.NewEvent(domain.EventRoundClosed, fin.ID,
				"close_price", fin.ClosePrice.Dec(),
				"winner", fin.Winner.Label(),
			))
			slog.Info("round closed", "round", fin.ID, "close_price", fin.ClosePrice.Dec(), "winner", fin.Winner.Label())
		}

		if bid := slots.Bidding; bid != nil && slots.Live == nil && bid.ReadyToOpen(now) {
			openPrice, err := price(ctx)
			if err != nil {
				return err
			}
			live := bid.Promote(now, openPrice, cfg.RoundDuration)
			if err := tx.PutRound(ctx, live); err != nil {
				return err
			}
			slots.Live, slots.Bidding = &live, nil
			r.Events = append(r.Events, domain.NewEvent(domain.EventRoundOpened, live.ID,
				"open_price", live.OpenPrice.Dec(),
				"bull_amount", live.Pools.Bull.Dec(),
				"bear_amount", live.Pools.Bear.Dec(),
			))
			slog.Info("round opened", "round", live.ID, "open_price", live.OpenPrice.Dec(), "close_time", live.CloseTime)
		}

		if slots.Bidding == nil {
			id, err := tx.NextRoundID(ctx)
			if err != nil {
				return err
			}
			bid := domain.NewBiddingRound(id, now, slots.Live, cfg.RoundDuration)
			if err := tx.PutRound(ctx, bid); err != nil {
				return err
			}
			if err := tx.SetNextRoundID(ctx, id+1); err != nil {
				return err
			}
			r.Events = append(r.Events, domain.NewEvent(domain.EventBiddingOpened, bid.ID))
			slog.Info("bidding opened", "round", bid.ID, "open_time", bid.OpenTime, "close_time", bid.CloseTime)
		}

		if len(r.Events) == 0 {
			slog.Debug("advance: nothing to do", "now", now)
		}
		return nil
	})
}

// sampler consulta el oráculo como mucho una vez por llamada: close y promote
// dentro del mismo avance ven el mismo precio.
func (m *Market) sampler(ref string) func(ctx context.Context) (domain.Amount, error) {
	var (
		sampled bool
		price   domain.Amount
	)
	return func(ctx context.Context) (domain.Amount, error) {
		if sampled {
			return price, nil
		}
		p, err := m.oracle.Price(ctx, ref)
		if err != nil {
			return domain.Amount{}, fmt.Errorf("oracle %s: %w", ref, err)
		}
		price, sampled = p, true
		return price, nil
	}
}
