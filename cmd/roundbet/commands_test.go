package main

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShares(t *testing.T) {
	shares, err := parseShares([]string{"dev1=0.5", "dev2=0.25", "dev3=0.25"})
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assert.Equal(t, domain.Address("dev2"), shares[1].Address)
	assert.True(t, shares[1].Ratio.Equal(decimal.RequireFromString("0.25")))
	require.NoError(t, domain.ValidateShares(shares))

	_, err = parseShares([]string{"dev1"})
	assert.Error(t, err)
	_, err = parseShares([]string{"dev1=half"})
	assert.Error(t, err)
}

func TestParsePartialConfig_OnlyExplicitFlags(t *testing.T) {
	fs := flag.NewFlagSet("update-config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	p, err := parsePartialConfig(fs, []string{"-duration", "300", "-burn-fee", "0"})
	require.NoError(t, err)
	require.NotNil(t, p.RoundDuration)
	assert.Equal(t, 300*time.Second, *p.RoundDuration)
	require.NotNil(t, p.BurnFeeBP)
	assert.Equal(t, uint64(0), *p.BurnFeeBP)
	assert.Nil(t, p.GamingFeeBP)
	assert.Nil(t, p.MinimumBet)
	assert.Nil(t, p.Custody)
}

func TestParsePartialConfig_BadAmount(t *testing.T) {
	fs := flag.NewFlagSet("update-config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, err := parsePartialConfig(fs, []string{"-min-bet", "lots"})
	assert.Error(t, err)
}
