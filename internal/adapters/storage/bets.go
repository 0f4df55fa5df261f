package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

// GetBet devuelve la apuesta (roundID, player) o nil si no existe.
func (t *ledgerTx) GetBet(ctx context.Context, roundID uint64, player domain.Address) (*domain.Bet, error) {
	var amount, direction string
	err := t.tx.QueryRowContext(ctx,
		`SELECT amount, direction FROM bets WHERE round_id = ? AND player = ?`,
		int64(roundID), string(player),
	).Scan(&amount, &direction)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.GetBet: round %d player %s: %w", roundID, player, err)
	}

	bet, err := toBet(int64(roundID), string(player), amount, direction)
	if err != nil {
		return nil, fmt.Errorf("storage.GetBet: %w", err)
	}
	return &bet, nil
}

// InsertBet guarda una apuesta nueva. La PK impide una segunda apuesta del
// mismo jugador en la misma ronda.
func (t *ledgerTx) InsertBet(ctx context.Context, bet domain.Bet) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO bets (round_id, player, amount, direction) VALUES (?, ?, ?, ?)`,
		int64(bet.RoundID), string(bet.Player), bet.Amount.Dec(), string(bet.Direction),
	)
	if err != nil {
		return fmt.Errorf("storage.InsertBet: round %d player %s: %w", bet.RoundID, bet.Player, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.InsertBet: round %d player %s: %w", bet.RoundID, bet.Player, domain.ErrDuplicateBet)
	}
	return nil
}

// DeleteBet borra la apuesta una vez pagada.
func (t *ledgerTx) DeleteBet(ctx context.Context, roundID uint64, player domain.Address) error {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM bets WHERE round_id = ? AND player = ?`, int64(roundID), string(player))
	if err != nil {
		return fmt.Errorf("storage.DeleteBet: round %d player %s: %w", roundID, player, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.DeleteBet: round %d player %s: %w", roundID, player, domain.ErrNotFound)
	}
	return nil
}

// ListBets recorre el índice (player, round_id) en orden ascendente.
func (t *ledgerTx) ListBets(ctx context.Context, player domain.Address, startAfter *uint64, limit int) ([]domain.Bet, error) {
	query := `SELECT round_id, amount, direction FROM bets WHERE player = ?`
	args := []any{string(player)}
	if startAfter != nil {
		query += ` AND round_id > ?`
		args = append(args, int64(*startAfter))
	}
	query += ` ORDER BY round_id ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.ListBets: query: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		var (
			roundID           int64
			amount, direction string
		)
		if err := rows.Scan(&roundID, &amount, &direction); err != nil {
			return nil, fmt.Errorf("storage.ListBets: scan row: %w", err)
		}
		bet, err := toBet(roundID, string(player), amount, direction)
		if err != nil {
			return nil, fmt.Errorf("storage.ListBets: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

func toBet(roundID int64, player, amount, direction string) (domain.Bet, error) {
	amt, err := domain.ParseAmount(amount)
	if err != nil {
		return domain.Bet{}, err
	}
	dir, err := domain.ParseDirection(direction)
	if err != nil {
		return domain.Bet{}, err
	}
	return domain.Bet{
		Player:    domain.Address(player),
		RoundID:   uint64(roundID),
		Amount:    amt,
		Direction: dir,
	}, nil
}
