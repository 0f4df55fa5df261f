package ports

import (
	"context"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

// PriceOracle devuelve el precio de referencia en el momento de la llamada.
type PriceOracle interface {
	Price(ctx context.Context, ref string) (domain.Amount, error)
}
