package ports

import (
	"context"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

// TokenLedger ejecuta las intenciones de transferencia que construye el core.
// Un error aborta la operación que las originó.
type TokenLedger interface {
	Execute(ctx context.Context, transfers []domain.Transfer) error
}
