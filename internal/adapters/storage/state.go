package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

// LoadConfig lee la config del mercado; domain.ErrNotFound si no se inicializó.
func (t *ledgerTx) LoadConfig(ctx context.Context) (domain.MarketConfig, error) {
	var (
		cfg        domain.MarketConfig
		durationS  int64
		minimumBet string
		custody    string
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT round_duration_s, oracle_ref, minimum_bet, burn_fee_bp, gaming_fee_bp, token_ref, custody
		FROM market_state WHERE id = 1`,
	).Scan(&durationS, &cfg.OracleRef, &minimumBet, &cfg.BurnFeeBP, &cfg.GamingFeeBP, &cfg.TokenRef, &custody)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MarketConfig{}, fmt.Errorf("storage.LoadConfig: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.MarketConfig{}, fmt.Errorf("storage.LoadConfig: %w", err)
	}

	cfg.RoundDuration = time.Duration(durationS) * time.Second
	cfg.Custody = domain.Address(custody)
	if cfg.MinimumBet, err = domain.ParseAmount(minimumBet); err != nil {
		return domain.MarketConfig{}, fmt.Errorf("storage.LoadConfig: %w", err)
	}
	return cfg, nil
}

// InitState crea la fila única del mercado; falla si ya existe.
func (t *ledgerTx) InitState(ctx context.Context, cfg domain.MarketConfig) error {
	res, err := t.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO market_state
			(id, round_duration_s, oracle_ref, minimum_bet, burn_fee_bp, gaming_fee_bp, token_ref, custody,
			 next_round_id, accumulated_fee, paused)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, 0, '0', 0)`,
		durationSeconds(cfg.RoundDuration), cfg.OracleRef, cfg.MinimumBet.Dec(),
		cfg.BurnFeeBP, cfg.GamingFeeBP, cfg.TokenRef, string(cfg.Custody),
	)
	if err != nil {
		return fmt.Errorf("storage.InitState: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.InitState: %w", domain.ErrAlreadyInitialized)
	}
	return nil
}

// SaveConfig sobreescribe los parámetros económicos; no toca contadores.
func (t *ledgerTx) SaveConfig(ctx context.Context, cfg domain.MarketConfig) error {
	return t.updateState(ctx, "SaveConfig", `
		UPDATE market_state SET
			round_duration_s = ?, oracle_ref = ?, minimum_bet = ?,
			burn_fee_bp = ?, gaming_fee_bp = ?, token_ref = ?, custody = ?
		WHERE id = 1`,
		durationSeconds(cfg.RoundDuration), cfg.OracleRef, cfg.MinimumBet.Dec(),
		cfg.BurnFeeBP, cfg.GamingFeeBP, cfg.TokenRef, string(cfg.Custody),
	)
}

func (t *ledgerTx) Paused(ctx context.Context) (bool, error) {
	var paused int
	if err := t.scanState(ctx, "Paused", "paused", &paused); err != nil {
		return false, err
	}
	return paused == 1, nil
}

func (t *ledgerTx) SetPaused(ctx context.Context, paused bool) error {
	return t.updateState(ctx, "SetPaused", `UPDATE market_state SET paused = ? WHERE id = 1`, boolToInt(paused))
}

func (t *ledgerTx) NextRoundID(ctx context.Context) (uint64, error) {
	var id int64
	if err := t.scanState(ctx, "NextRoundID", "next_round_id", &id); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (t *ledgerTx) SetNextRoundID(ctx context.Context, id uint64) error {
	return t.updateState(ctx, "SetNextRoundID", `UPDATE market_state SET next_round_id = ? WHERE id = 1`, int64(id))
}

func (t *ledgerTx) AccumulatedFee(ctx context.Context) (domain.Amount, error) {
	var fee string
	if err := t.scanState(ctx, "AccumulatedFee", "accumulated_fee", &fee); err != nil {
		return domain.Amount{}, err
	}
	v, err := domain.ParseAmount(fee)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("storage.AccumulatedFee: %w", err)
	}
	return v, nil
}

func (t *ledgerTx) SetAccumulatedFee(ctx context.Context, fee domain.Amount) error {
	return t.updateState(ctx, "SetAccumulatedFee", `UPDATE market_state SET accumulated_fee = ? WHERE id = 1`, fee.Dec())
}

// --- helpers internos ---

func (t *ledgerTx) scanState(ctx context.Context, op, column string, dest any) error {
	err := t.tx.QueryRowContext(ctx, `SELECT `+column+` FROM market_state WHERE id = 1`).Scan(dest)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("storage.%s: %w", op, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("storage.%s: %w", op, err)
	}
	return nil
}

func (t *ledgerTx) updateState(ctx context.Context, op, query string, args ...any) error {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("storage.%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func durationSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
