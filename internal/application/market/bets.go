package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// PlaceBet registra la apuesta de player sobre la ronda bidding roundID.
//
// gross se reparte en burn (se destruye del balance del jugador), gaming (se
// acumula para las dev wallets) y net (entra al pool). A custodia solo va
// gross - burn.
func (m *Market) PlaceBet(ctx context.Context, player domain.Address, roundID uint64, dir domain.Direction, gross domain.Amount) (domain.Receipt, error) {
	return m.execute(ctx, "PlaceBet", func(ctx context.Context, tx ports.LedgerTx, r *domain.Receipt) error {
		if err := requireRunning(ctx, tx); err != nil {
			return err
		}
		if _, err := domain.ParseDirection(string(dir)); err != nil {
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

		bid := slots.Bidding
		if bid == nil || bid.ID != roundID {
			return fmt.Errorf("round %d is not the bidding round: %w", roundID, domain.ErrStaleOrWrongRound)
		}
		now := m.clock()
		if !bid.AcceptsBets(now) {
			return fmt.Errorf("round %d stopped taking bets at %s: %w",
				roundID, bid.OpenTime.Format("15:04:05"), domain.ErrStaleOrWrongRound)
		}
		if gross.Lt(&cfg.MinimumBet) {
			return fmt.Errorf("bet %s below minimum %s: %w", gross.Dec(), cfg.MinimumBet.Dec(), domain.ErrBelowMinimum)
		}

		existing, err := tx.GetBet(ctx, roundID, player)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("round %d player %s: %w", roundID, player, domain.ErrDuplicateBet)
		}

		fees, err := domain.ComputeFees(gross, cfg)
		if err != nil {
			return err
		}
		if fees.Net.IsZero() {
			return fmt.Errorf("bet %s leaves no stake after fees: %w", gross.Dec(), domain.ErrBelowMinimum)
		}

		accrued, err := tx.AccumulatedFee(ctx)
		if err != nil {
			return err
		}
		if accrued, err = domain.AddAmount(accrued, fees.Gaming); err != nil {
			return fmt.Errorf("accumulated fee: %w", err)
		}
		if err := tx.SetAccumulatedFee(ctx, accrued); err != nil {
			return err
		}

		sideTotal, err := bid.AddBet(dir, fees.Net)
		if err != nil {
			return err
		}
		if err := tx.PutRound(ctx, *bid); err != nil {
			return err
		}
		bet := domain.Bet{Player: player, RoundID: roundID, Amount: fees.Net, Direction: dir}
		if err := tx.InsertBet(ctx, bet); err != nil {
			return err
		}

		if !fees.Burn.IsZero() {
			r.Transfers = append(r.Transfers,
				domain.NewTransfer(domain.BurnFrom, cfg.TokenRef, player, "", fees.Burn))
		}
		custodied, err := fees.Custodied()
		if err != nil {
			return err
		}
		r.Transfers = append(r.Transfers,
			domain.NewTransfer(domain.TransferFrom, cfg.TokenRef, player, cfg.Custody, custodied))

		r.Events = append(r.Events, domain.NewEvent(domain.EventBetPlaced, roundID,
			"direction", string(dir),
			"amount", fees.Net.Dec(),
			"total", sideTotal.Dec(),
			"account", string(player),
		))
		slog.Info("bet placed",
			"round", roundID,
			"player", player,
			"direction", dir,
			"gross", gross.Dec(),
			"net", fees.Net.Dec(),
			"burn", fees.Burn.Dec(),
			"gaming", fees.Gaming.Dec(),
		)
		return nil
	})
}

// CollectWinnings liquida todas las apuestas de player en rondas terminadas y
// paga el agregado en una sola transferencia. Borrar la apuesta es lo que
// impide cobrarla dos veces. Las apuestas de rondas aún abiertas se conservan.
func (m *Market) CollectWinnings(ctx context.Context, player domain.Address) (domain.Receipt, error) {
	return m.execute(ctx, "CollectWinnings", func(ctx context.Context, tx ports.LedgerTx, r *domain.Receipt) error {
		cfg, err := tx.LoadConfig(ctx)
		if err != nil {
			return err
		}
		bets, err := tx.ListBets(ctx, player, nil, 0)
		if err != nil {
			return err
		}

		var (
			total   domain.Amount
			settled int
		)
		for _, bet := range bets {
			payout, ok, err := settle(ctx, tx, bet)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := tx.DeleteBet(ctx, bet.RoundID, player); err != nil {
				return err
			}
			settled++
			if payout.IsZero() {
				continue
			}
			if total, err = domain.AddAmount(total, payout); err != nil {
				return fmt.Errorf("aggregate payout: %w", err)
			}
			r.Events = append(r.Events, domain.NewEvent(domain.EventWinningsCollected, bet.RoundID,
				"amount", payout.Dec(),
				"account", string(player),
			))
		}

		if total.IsZero() {
			return fmt.Errorf("player %s: %w", player, domain.ErrNothingToClaim)
		}
		r.Transfers = append(r.Transfers,
			domain.NewTransfer(domain.TransferOut, cfg.TokenRef, cfg.Custody, player, total))

		slog.Info("winnings collected", "player", player, "amount", total.Dec(), "bets_settled", settled)
		return nil
	})
}

// settle liquida bet si su ronda ya terminó. ok es false si la ronda sigue en
// curso.
func settle(ctx context.Context, tx ports.LedgerTx, bet domain.Bet) (payout domain.Amount, ok bool, err error) {
	round, err := tx.FinishedRound(ctx, bet.RoundID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Amount{}, false, nil
	}
	if err != nil {
		return domain.Amount{}, false, err
	}
	payout, err = domain.SettleBet(round, bet)
	if err != nil {
		return domain.Amount{}, false, err
	}
	return payout, true, nil
}
