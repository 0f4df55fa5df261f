package domain

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// WalletShare es una dev wallet y la fracción del fee acumulado que recibe.
type WalletShare struct {
	Address Address
	Ratio   decimal.Decimal
}

// ValidateShares exige ratios no negativos que sumen exactamente 1.
func ValidateShares(shares []WalletShare) error {
	if len(shares) == 0 {
		return fmt.Errorf("empty wallet list: %w", ErrBadRatioSum)
	}
	sum := decimal.Zero
	for _, s := range shares {
		if s.Ratio.IsNegative() {
			return fmt.Errorf("wallet %s has negative ratio %s: %w", s.Address, s.Ratio, ErrBadRatioSum)
		}
		sum = sum.Add(s.Ratio)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("ratios sum to %s: %w", sum, ErrBadRatioSum)
	}
	return nil
}

// ShareOf devuelve floor(total * ratio).
func (s WalletShare) ShareOf(total Amount) (Amount, error) {
	part := decimal.NewFromBigInt(total.ToBig(), 0).Mul(s.Ratio).Floor()
	v, overflow := uint256.FromBig(part.BigInt())
	if overflow {
		return Amount{}, fmt.Errorf("share of %s for %s: %w", total.Dec(), s.Address, ErrOverflow)
	}
	return *v, nil
}
