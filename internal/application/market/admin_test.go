package market_test

import (
	"testing"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shares(kv ...any) []domain.WalletShare {
	var out []domain.WalletShare
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, domain.WalletShare{
			Address: domain.Address(kv[i].(string)),
			Ratio:   decimal.RequireFromString(kv[i+1].(string)),
		})
	}
	return out
}

func TestInstantiate_OnlyOnceAndOnlyAdmin(t *testing.T) {
	h := newHarness(t, defaultConfig())

	_, err := h.m.Instantiate(h.ctx, gov, defaultConfig())
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)

	_, err = h.m.Instantiate(h.ctx, alice, defaultConfig())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestInstantiate_RejectsInvalidConfig(t *testing.T) {
	h := newHarness(t, defaultConfig())
	cfg := defaultConfig()
	cfg.BurnFeeBP = domain.FeeScale + 1

	// La validación corre antes de tocar el estado.
	_, err := h.m.Instantiate(h.ctx, gov, cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestPause_GatesBetsAndAdvance(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.at(0).advance()

	_, err := h.m.Pause(h.ctx, alice)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	r, err := h.m.Pause(h.ctx, gov)
	require.NoError(t, err)
	assert.Equal(t, []domain.EventKind{domain.EventPaused}, r.Kinds())
	assert.True(t, h.status().Paused)

	_, err = h.m.PlaceBet(h.ctx, alice, 0, domain.Bull, amt(10))
	assert.ErrorIs(t, err, domain.ErrPaused)
	_, err = h.at(600 * time.Second).m.AdvanceRound(h.ctx)
	assert.ErrorIs(t, err, domain.ErrPaused)

	// Config y distribución siguen disponibles en pausa.
	d := 300 * time.Second
	_, err = h.m.UpdateConfig(h.ctx, gov, domain.PartialConfig{RoundDuration: &d})
	require.NoError(t, err)
	_, err = h.m.DistributeFund(h.ctx, gov, shares("w1", "1"))
	require.NoError(t, err)

	_, err = h.m.Resume(h.ctx, gov)
	require.NoError(t, err)
	h.price(100)
	r = h.advance()
	assert.Equal(t, []domain.EventKind{domain.EventRoundOpened, domain.EventBiddingOpened}, r.Kinds())

	st := h.status()
	assert.Equal(t, st.Live.OpenTime.Add(d), st.Live.CloseTime, "new duration applies to rounds opened after the update")
}

func TestUpdateConfig(t *testing.T) {
	h := newHarness(t, defaultConfig())

	minBet := amt(25)
	gaming := uint64(150)
	r, err := h.m.UpdateConfig(h.ctx, gov, domain.PartialConfig{MinimumBet: &minBet, GamingFeeBP: &gaming})
	require.NoError(t, err)
	assert.Equal(t, "150", r.Events[0].Attr("gaming_fee"))

	cfg, err := h.m.Config(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, amt(25), cfg.MinimumBet)
	assert.Equal(t, uint64(150), cfg.GamingFeeBP)
	assert.Equal(t, feedRef, cfg.OracleRef, "untouched fields keep their value")

	_, err = h.m.UpdateConfig(h.ctx, bob, domain.PartialConfig{MinimumBet: &minBet})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	burn := uint64(domain.FeeScale)
	_, err = h.m.UpdateConfig(h.ctx, gov, domain.PartialConfig{BurnFeeBP: &burn})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = h.m.UpdateConfig(h.ctx, gov, domain.PartialConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	cfg, err = h.m.Config(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.BurnFeeBP)
}

func TestDistributeFund(t *testing.T) {
	cfg := defaultConfig()
	cfg.GamingFeeBP = 200
	h := newHarness(t, cfg)
	h.at(0).advance()
	h.bet(alice, 0, domain.Bull, 500)
	h.bet(bob, 0, domain.Bear, 501)

	fee, err := h.m.AccumulatedFee(h.ctx)
	require.NoError(t, err)
	require.Equal(t, amt(20), fee) // 10 + 10

	t.Run("ratios that do not sum to one", func(t *testing.T) {
		_, err := h.m.DistributeFund(h.ctx, gov, shares("w1", "0.5", "w2", "0.4"))
		assert.ErrorIs(t, err, domain.ErrBadRatioSum)
		fee, err := h.m.AccumulatedFee(h.ctx)
		require.NoError(t, err)
		assert.Equal(t, amt(20), fee)
		assert.Equal(t, amt(0), h.tokens.Balance("w1"))
	})

	t.Run("non admin", func(t *testing.T) {
		_, err := h.m.DistributeFund(h.ctx, alice, shares("alice", "1"))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("even split", func(t *testing.T) {
		r, err := h.m.DistributeFund(h.ctx, gov, shares("w1", "0.5", "w2", "0.5"))
		require.NoError(t, err)
		require.Len(t, r.Transfers, 2)
		assert.Equal(t, amt(10), h.tokens.Balance("w1"))
		assert.Equal(t, amt(10), h.tokens.Balance("w2"))
		assert.Equal(t, "20", r.Events[0].Attr("amount"))

		fee, err := h.m.AccumulatedFee(h.ctx)
		require.NoError(t, err)
		assert.True(t, fee.IsZero())
	})

	t.Run("repeat distributes nothing", func(t *testing.T) {
		r, err := h.m.DistributeFund(h.ctx, gov, shares("w1", "0.5", "w2", "0.5"))
		require.NoError(t, err)
		assert.Empty(t, r.Transfers)
		assert.Equal(t, amt(10), h.tokens.Balance("w1"))
	})
}

func TestDistributeFund_FloorDustStaysAccrued(t *testing.T) {
	cfg := defaultConfig()
	cfg.GamingFeeBP = 100
	h := newHarness(t, cfg)
	h.at(0).advance()
	h.bet(alice, 0, domain.Bull, 1000) // fee 10

	_, err := h.m.DistributeFund(h.ctx, gov, shares("w1", "0.333", "w2", "0.333", "w3", "0.334"))
	require.NoError(t, err)

	// floor(3.33) + floor(3.33) + floor(3.34) = 9
	fee, err := h.m.AccumulatedFee(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, amt(1), fee)
}
