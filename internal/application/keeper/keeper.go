package keeper

// keeper.go: caller externo y periódico de AdvanceRound.
//
// El mercado no se programa a sí mismo: alguien tiene que llamar a
// AdvanceRound. El keeper lo hace en cada tick; llamar de más es un no-op.

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

// Advancer es la parte del mercado que el keeper necesita.
type Advancer interface {
	AdvanceRound(ctx context.Context) (domain.Receipt, error)
}

// Config contiene la configuración del keeper.
type Config struct {
	Interval time.Duration
	Once     bool // un solo avance y salir
}

// Keeper avanza rondas periódicamente.
type Keeper struct {
	cfg    Config
	market Advancer
}

// New crea un Keeper.
func New(cfg Config, market Advancer) *Keeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	return &Keeper{cfg: cfg, market: market}
}

// Run avanza hasta que el contexto se cancele. Con cfg.Once ejecuta un solo
// ciclo y devuelve su error.
func (k *Keeper) Run(ctx context.Context) error {
	slog.Info("keeper starting", "interval", k.cfg.Interval, "once", k.cfg.Once)

	if err := k.tick(ctx); err != nil {
		slog.Error("advance failed", "err", err)
		if k.cfg.Once {
			return err
		}
	}
	if k.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(k.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("keeper stopped")
			return nil
		case <-ticker.C:
			if err := k.tick(ctx); err != nil {
				slog.Error("advance failed", "err", err)
			}
		}
	}
}

// tick hace un avance. Un mercado pausado no es un fallo del keeper.
func (k *Keeper) tick(ctx context.Context) error {
	start := time.Now()
	r, err := k.market.AdvanceRound(ctx)
	if errors.Is(err, domain.ErrPaused) {
		slog.Debug("market paused, skipping advance")
		return nil
	}
	if err != nil {
		return err
	}
	if len(r.Events) > 0 {
		slog.Info("advance complete",
			"events", len(r.Events),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
	return nil
}
