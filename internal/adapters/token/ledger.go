package token

// ledger.go: token fungible en memoria.
//
// Ejecuta los transfers que construye el mercado sobre balances en memoria.
// Cada batch es atómico: si un transfer no tiene fondos, ninguno se aplica.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// ErrInsufficientBalance se devuelve cuando un transfer supera el balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger es un token en memoria identificado por Ref.
type Ledger struct {
	mu       sync.Mutex
	ref      string
	balances map[domain.Address]domain.Amount
	supply   domain.Amount
}

// NewLedger crea un token vacío.
func NewLedger(ref string) *Ledger {
	return &Ledger{ref: ref, balances: make(map[domain.Address]domain.Amount)}
}

// Mint crea amount tokens para to.
func (l *Ledger) Mint(to domain.Address, amount domain.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, err := domain.AddAmount(l.balances[to], amount)
	if err != nil {
		return fmt.Errorf("token.Mint %s: %w", to, err)
	}
	supply, err := domain.AddAmount(l.supply, amount)
	if err != nil {
		return fmt.Errorf("token.Mint supply: %w", err)
	}
	l.balances[to] = bal
	l.supply = supply
	return nil
}

// Balance devuelve el balance de addr.
func (l *Ledger) Balance(addr domain.Address) domain.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

// Supply devuelve el total en circulación.
func (l *Ledger) Supply() domain.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply
}

// Execute implementa ports.TokenLedger.
func (l *Ledger) Execute(_ context.Context, transfers []domain.Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Se trabaja sobre una copia de los balances tocados y se confirma al final.
	staged := make(map[domain.Address]domain.Amount)
	balance := func(a domain.Address) domain.Amount {
		if v, ok := staged[a]; ok {
			return v
		}
		return l.balances[a]
	}
	supply := l.supply

	for _, tr := range transfers {
		if tr.Token != l.ref {
			return fmt.Errorf("token.Execute %s: token %q is not %q", tr.ID, tr.Token, l.ref)
		}
		have := balance(tr.From)
		from, err := domain.SubAmount(have, tr.Amount)
		if err != nil {
			return fmt.Errorf("token.Execute %s: %s has %s, needs %s: %w",
				tr.ID, tr.From, have.Dec(), tr.Amount.Dec(), ErrInsufficientBalance)
		}
		staged[tr.From] = from

		switch tr.Kind {
		case domain.BurnFrom:
			if supply, err = domain.SubAmount(supply, tr.Amount); err != nil {
				return fmt.Errorf("token.Execute %s: %w", tr.ID, err)
			}
		case domain.TransferFrom, domain.TransferOut:
			to, err := domain.AddAmount(balance(tr.To), tr.Amount)
			if err != nil {
				return fmt.Errorf("token.Execute %s: %w", tr.ID, err)
			}
			staged[tr.To] = to
		default:
			return fmt.Errorf("token.Execute %s: unknown transfer kind %q", tr.ID, tr.Kind)
		}
	}

	for addr, v := range staged {
		l.balances[addr] = v
	}
	l.supply = supply
	return nil
}

var _ ports.TokenLedger = (*Ledger)(nil)
