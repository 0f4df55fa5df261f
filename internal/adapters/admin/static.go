package admin

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// Static resuelve siempre la misma dirección admin, fijada por config.
type Static struct {
	addr domain.Address
}

// NewStatic crea el resolver. Una dirección vacía deja el mercado sin admin:
// toda operación privilegiada falla.
func NewStatic(addr domain.Address) *Static {
	return &Static{addr: addr}
}

// Admin implementa ports.AdminResolver.
func (s *Static) Admin(context.Context) (domain.Address, error) {
	if s.addr == "" {
		return "", fmt.Errorf("admin.Static: no admin configured: %w", domain.ErrUnauthorized)
	}
	return s.addr, nil
}

var _ ports.AdminResolver = (*Static)(nil)
