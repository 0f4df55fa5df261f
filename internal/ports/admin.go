package ports

import (
	"context"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

// AdminResolver resuelve quién gobierna el mercado.
type AdminResolver interface {
	Admin(ctx context.Context) (domain.Address, error)
}
