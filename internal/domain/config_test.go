package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() MarketConfig {
	return MarketConfig{
		RoundDuration: 10 * time.Minute,
		OracleRef:     "BTCUSD",
		MinimumBet:    amt(1),
		BurnFeeBP:     100,
		GamingFeeBP:   200,
		TokenRef:      "hopers",
		Custody:       "market",
	}
}

func TestMarketConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(*MarketConfig){
		"zero duration":    func(c *MarketConfig) { c.RoundDuration = 0 },
		"burn above scale": func(c *MarketConfig) { c.BurnFeeBP = FeeScale + 1 },
		"sum above scale":  func(c *MarketConfig) { c.BurnFeeBP, c.GamingFeeBP = 6000, 5000 },
		"missing token":    func(c *MarketConfig) { c.TokenRef = "" },
		"missing custody":  func(c *MarketConfig) { c.Custody = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestPartialConfig_Apply(t *testing.T) {
	assert.True(t, PartialConfig{}.Empty())

	d := time.Minute
	fee := uint64(50)
	updated := PartialConfig{RoundDuration: &d, GamingFeeBP: &fee}.Apply(validConfig())

	assert.Equal(t, time.Minute, updated.RoundDuration)
	assert.Equal(t, uint64(50), updated.GamingFeeBP)
	assert.Equal(t, uint64(100), updated.BurnFeeBP, "untouched fields keep their value")
	assert.Equal(t, "BTCUSD", updated.OracleRef)
}

func TestValidateShares(t *testing.T) {
	half := decimal.RequireFromString("0.5")

	assert.NoError(t, ValidateShares([]WalletShare{{"a", half}, {"b", half}}))
	assert.ErrorIs(t, ValidateShares([]WalletShare{{"a", half}, {"b", decimal.RequireFromString("0.4")}}), ErrBadRatioSum)
	assert.ErrorIs(t, ValidateShares(nil), ErrBadRatioSum)
	assert.ErrorIs(t, ValidateShares([]WalletShare{
		{"a", decimal.RequireFromString("1.5")},
		{"b", decimal.RequireFromString("-0.5")},
	}), ErrBadRatioSum)
}

func TestWalletShare_ShareOfFloors(t *testing.T) {
	s := WalletShare{Address: "a", Ratio: decimal.RequireFromString("0.333")}
	v, err := s.ShareOf(amt(100))
	require.NoError(t, err)
	assert.Equal(t, amt(33), v)
}
