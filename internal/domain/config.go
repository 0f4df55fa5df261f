package domain

import (
	"fmt"
	"time"
)

const (
	// FeePrecision escala las tasas: fee = gross * bp / (FeePrecision*100).
	FeePrecision = 100
	// FeeScale es el denominador completo; una tasa igual a FeeScale es el 100%.
	FeeScale = FeePrecision * 100
)

// MarketConfig son los parámetros económicos mutables del mercado.
type MarketConfig struct {
	RoundDuration time.Duration
	OracleRef     string
	MinimumBet    Amount
	BurnFeeBP     uint64
	GamingFeeBP   uint64
	TokenRef      string
	// Custody es la cuenta que custodia los stakes y paga premios y fees.
	Custody Address
}

// Validate rechaza configuraciones que romperían la contabilidad.
func (c MarketConfig) Validate() error {
	if c.RoundDuration < time.Second {
		return fmt.Errorf("round duration %s must be at least 1s: %w", c.RoundDuration, ErrInvalidConfig)
	}
	if c.BurnFeeBP > FeeScale || c.GamingFeeBP > FeeScale {
		return fmt.Errorf("fees burn=%d gaming=%d exceed scale %d: %w", c.BurnFeeBP, c.GamingFeeBP, FeeScale, ErrInvalidConfig)
	}
	if c.BurnFeeBP+c.GamingFeeBP > FeeScale {
		return fmt.Errorf("burn+gaming fee %d exceeds scale %d: %w", c.BurnFeeBP+c.GamingFeeBP, FeeScale, ErrInvalidConfig)
	}
	if c.OracleRef == "" || c.TokenRef == "" || c.Custody == "" {
		return fmt.Errorf("oracle, token and custody references are required: %w", ErrInvalidConfig)
	}
	return nil
}

// PartialConfig es un UpdateConfig parcial: los campos nil no cambian.
type PartialConfig struct {
	RoundDuration *time.Duration
	OracleRef     *string
	MinimumBet    *Amount
	BurnFeeBP     *uint64
	GamingFeeBP   *uint64
	TokenRef      *string
	Custody       *Address
}

// Apply devuelve c con los campos presentes en p sobreescritos.
func (p PartialConfig) Apply(c MarketConfig) MarketConfig {
	if p.RoundDuration != nil {
		c.RoundDuration = *p.RoundDuration
	}
	if p.OracleRef != nil {
		c.OracleRef = *p.OracleRef
	}
	if p.MinimumBet != nil {
		c.MinimumBet = *p.MinimumBet
	}
	if p.BurnFeeBP != nil {
		c.BurnFeeBP = *p.BurnFeeBP
	}
	if p.GamingFeeBP != nil {
		c.GamingFeeBP = *p.GamingFeeBP
	}
	if p.TokenRef != nil {
		c.TokenRef = *p.TokenRef
	}
	if p.Custody != nil {
		c.Custody = *p.Custody
	}
	return c
}

// Empty es true si el update no toca ningún campo.
func (p PartialConfig) Empty() bool {
	return p == PartialConfig{}
}
