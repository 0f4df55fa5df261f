package market

// market.go: fachada del mercado de rondas.
//
// Cada operación corre en una sola transacción del ledger:
//
//	Atomically ─► leer estado ─► validar ─► mutar ─► token.Execute ─► commit
//
// Cualquier error (validación, oráculo, token) descarta todos los cambios.
// Los eventos se publican solo después del commit.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// Market orquesta round ledger, bet ledger y settlement.
type Market struct {
	store    ports.LedgerStore
	oracle   ports.PriceOracle
	tokens   ports.TokenLedger
	admin    ports.AdminResolver
	notifier ports.Notifier
	now      func() time.Time
}

// Option configura un Market.
type Option func(*Market)

// WithClock reemplaza el reloj (tests, simulación).
func WithClock(now func() time.Time) Option {
	return func(m *Market) { m.now = now }
}

// WithNotifier publica los eventos de cada operación confirmada.
func WithNotifier(n ports.Notifier) Option {
	return func(m *Market) { m.notifier = n }
}

// New crea un Market con todas las dependencias inyectadas.
func New(
	store ports.LedgerStore,
	oracle ports.PriceOracle,
	tokens ports.TokenLedger,
	admin ports.AdminResolver,
	opts ...Option,
) *Market {
	m := &Market{
		store:  store,
		oracle: oracle,
		tokens: tokens,
		admin:  admin,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// clock devuelve now con la resolución que persiste el ledger (segundos, UTC).
func (m *Market) clock() time.Time {
	return m.now().UTC().Truncate(time.Second)
}

// execute corre fn en una transacción y publica el receipt tras el commit.
func (m *Market) execute(ctx context.Context, op string, fn func(ctx context.Context, tx ports.LedgerTx, r *domain.Receipt) error) (domain.Receipt, error) {
	var receipt domain.Receipt
	err := m.store.Atomically(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		receipt = domain.Receipt{}
		if err := fn(ctx, tx, &receipt); err != nil {
			return err
		}
		if len(receipt.Transfers) == 0 {
			return nil
		}
		if err := m.tokens.Execute(ctx, receipt.Transfers); err != nil {
			return fmt.Errorf("token transfers: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("market.%s: %w", op, err)
	}

	if m.notifier != nil && len(receipt.Events) > 0 {
		if err := m.notifier.Notify(ctx, receipt.Events); err != nil {
			slog.Warn("notifier error", "op", op, "err", err)
		}
	}
	return receipt, nil
}

// requireAdmin falla con ErrUnauthorized si caller no es el admin resuelto.
func (m *Market) requireAdmin(ctx context.Context, caller domain.Address) error {
	admin, err := m.admin.Admin(ctx)
	if err != nil {
		return fmt.Errorf("resolve admin: %w", err)
	}
	if caller != admin {
		return fmt.Errorf("%s is not the admin: %w", caller, domain.ErrUnauthorized)
	}
	return nil
}

func requireRunning(ctx context.Context, tx ports.LedgerTx) error {
	paused, err := tx.Paused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return domain.ErrPaused
	}
	return nil
}

// Instantiate inicializa el mercado: config, contador de rondas a 0, fee
// acumulado a 0 y sin pausa. Solo puede hacerse una vez.
func (m *Market) Instantiate(ctx context.Context, caller domain.Address, cfg domain.MarketConfig) (domain.Receipt, error) {
	return m.execute(ctx, "Instantiate", func(ctx context.Context, tx ports.LedgerTx, r *domain.Receipt) error {
		if err := m.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := tx.InitState(ctx, cfg); err != nil {
			return err
		}
		r.Events = append(r.Events, configEvent(cfg))
		slog.Info("market instantiated",
			"round_duration", cfg.RoundDuration,
			"oracle", cfg.OracleRef,
			"token", cfg.TokenRef,
		)
		return nil
	})
}

func configEvent(cfg domain.MarketConfig) domain.Event {
	return domain.NewEvent(domain.EventConfigUpdated, 0,
		"round_duration", fmt.Sprint(int64(cfg.RoundDuration/time.Second)),
		"oracle", cfg.OracleRef,
		"minimum_bet", cfg.MinimumBet.Dec(),
		"burn_fee", fmt.Sprint(cfg.BurnFeeBP),
		"gaming_fee", fmt.Sprint(cfg.GamingFeeBP),
		"token", cfg.TokenRef,
		"custody", string(cfg.Custody),
	)
}
