package domain

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Amount es una cantidad de tokens sin signo. Toda la aritmética de custodia
// pasa por los helpers de abajo: un overflow es un error, nunca un wrap.
type Amount = uint256.Int

// NewAmount construye un Amount desde un uint64.
func NewAmount(v uint64) Amount {
	return *uint256.NewInt(v)
}

// ParseAmount lee un Amount en base decimal ("150", "0").
func ParseAmount(s string) (Amount, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return *v, nil
}

// AddAmount devuelve a+b o ErrOverflow.
func AddAmount(a, b Amount) (Amount, error) {
	var z Amount
	if _, overflow := z.AddOverflow(&a, &b); overflow {
		return Amount{}, fmt.Errorf("%s + %s: %w", a.Dec(), b.Dec(), ErrOverflow)
	}
	return z, nil
}

// SubAmount devuelve a-b o ErrOverflow si b > a.
func SubAmount(a, b Amount) (Amount, error) {
	var z Amount
	if _, underflow := z.SubOverflow(&a, &b); underflow {
		return Amount{}, fmt.Errorf("%s - %s: %w", a.Dec(), b.Dec(), ErrOverflow)
	}
	return z, nil
}

// MulDiv devuelve floor(x*y/d) con producto intermedio de 512 bits.
// d == 0 o un resultado que no cabe en 256 bits son errores.
func MulDiv(x, y, d Amount) (Amount, error) {
	if d.IsZero() {
		return Amount{}, fmt.Errorf("%s * %s / 0: %w", x.Dec(), y.Dec(), ErrOverflow)
	}
	var z Amount
	if _, overflow := z.MulDivOverflow(&x, &y, &d); overflow {
		return Amount{}, fmt.Errorf("%s * %s / %s: %w", x.Dec(), y.Dec(), d.Dec(), ErrOverflow)
	}
	return z, nil
}
