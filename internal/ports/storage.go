package ports

import (
	"context"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

// LedgerStore persiste el estado completo del mercado. Cada operación corre
// dentro de una transacción: o se confirman todos sus cambios o ninguno.
type LedgerStore interface {
	// Atomically ejecuta fn en una transacción de escritura. Si fn devuelve
	// error se hace rollback de todo. El ctx que recibe fn transporta la
	// transacción para que otros adaptadores (outbox) escriban en ella.
	Atomically(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error

	// View ejecuta fn sobre un snapshot de solo lectura.
	View(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error

	Close() error
}

// LedgerTx es la vista transaccional del ledger.
type LedgerTx interface {
	// Market state (config, contadores, pausa)
	LoadConfig(ctx context.Context) (domain.MarketConfig, error) // domain.ErrNotFound si no se inicializó
	InitState(ctx context.Context, cfg domain.MarketConfig) error
	SaveConfig(ctx context.Context, cfg domain.MarketConfig) error
	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
	NextRoundID(ctx context.Context) (uint64, error)
	SetNextRoundID(ctx context.Context, id uint64) error
	AccumulatedFee(ctx context.Context) (domain.Amount, error)
	SetAccumulatedFee(ctx context.Context, fee domain.Amount) error

	// Rounds
	Slots(ctx context.Context) (domain.Slots, error)
	// PutRound inserta o reemplaza la ronda por ID con su nueva fase.
	PutRound(ctx context.Context, r domain.Round) error
	FinishedRound(ctx context.Context, id uint64) (domain.FinishedRound, error)

	// Bets
	GetBet(ctx context.Context, roundID uint64, player domain.Address) (*domain.Bet, error)
	InsertBet(ctx context.Context, bet domain.Bet) error
	DeleteBet(ctx context.Context, roundID uint64, player domain.Address) error
	// ListBets devuelve las apuestas del jugador ordenadas por round_id asc,
	// empezando después de startAfter. limit <= 0 devuelve todas.
	ListBets(ctx context.Context, player domain.Address, startAfter *uint64, limit int) ([]domain.Bet, error)
}
