package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// Feed es un oráculo en memoria cuyo precio publica un owner. Sirve para
// entornos locales y tests: el owner fija el precio y el mercado lo lee.
type Feed struct {
	mu     sync.RWMutex
	owner  domain.Address
	prices map[string]domain.Amount
}

// NewFeed crea un feed vacío gobernado por owner.
func NewFeed(owner domain.Address) *Feed {
	return &Feed{owner: owner, prices: make(map[string]domain.Amount)}
}

// Update publica price para ref. Solo el owner puede hacerlo.
func (f *Feed) Update(caller domain.Address, ref string, price domain.Amount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.owner {
		return fmt.Errorf("oracle.Feed.Update: %s: %w", caller, domain.ErrUnauthorized)
	}
	f.prices[ref] = price
	return nil
}

// SetOwner transfiere el control del feed.
func (f *Feed) SetOwner(caller, owner domain.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.owner {
		return fmt.Errorf("oracle.Feed.SetOwner: %s: %w", caller, domain.ErrUnauthorized)
	}
	f.owner = owner
	return nil
}

// Owner devuelve el owner actual.
func (f *Feed) Owner() domain.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.owner
}

// Price implementa ports.PriceOracle. Un feed sin precio publicado es un error.
func (f *Feed) Price(_ context.Context, ref string) (domain.Amount, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.prices[ref]
	if !ok {
		return domain.Amount{}, fmt.Errorf("oracle.Feed.Price %s: %w", ref, domain.ErrNotFound)
	}
	return p, nil
}

var _ ports.PriceOracle = (*Feed)(nil)
