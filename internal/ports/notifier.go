package ports

import (
	"context"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

// Notifier publica los eventos de una operación ya confirmada.
type Notifier interface {
	Notify(ctx context.Context, events []domain.Event) error
}
