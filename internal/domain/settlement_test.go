package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v uint64) Amount { return NewAmount(v) }

func finished(winner Direction, bull, bear uint64) FinishedRound {
	return FinishedRound{ID: 7, Winner: winner, Pools: Pools{Bull: amt(bull), Bear: amt(bear)}}
}

func TestComputeFees_Truncates(t *testing.T) {
	cfg := MarketConfig{BurnFeeBP: 100, GamingFeeBP: 200}

	fees, err := ComputeFees(amt(150), cfg)
	require.NoError(t, err)

	// 150*100/10000 = 1.5 → 1, 150*200/10000 = 3
	assert.Equal(t, amt(1), fees.Burn)
	assert.Equal(t, amt(3), fees.Gaming)
	assert.Equal(t, amt(146), fees.Net)

	custodied, err := fees.Custodied()
	require.NoError(t, err)
	assert.Equal(t, amt(149), custodied)
}

func TestComputeFees_ZeroRates(t *testing.T) {
	fees, err := ComputeFees(amt(100), MarketConfig{})
	require.NoError(t, err)
	assert.True(t, fees.Burn.IsZero())
	assert.True(t, fees.Gaming.IsZero())
	assert.Equal(t, amt(100), fees.Net)
}

func TestComputeFees_FullScaleLeavesNothing(t *testing.T) {
	fees, err := ComputeFees(amt(999), MarketConfig{BurnFeeBP: FeeScale})
	require.NoError(t, err)
	assert.Equal(t, amt(999), fees.Burn)
	assert.True(t, fees.Net.IsZero())
}

func TestComputeFees_FeesAboveGrossFail(t *testing.T) {
	// burn + gaming > 100% no pasa Validate, pero el motor tampoco debe saturar.
	_, err := ComputeFees(amt(100), MarketConfig{BurnFeeBP: FeeScale, GamingFeeBP: FeeScale})
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestDecideWinner(t *testing.T) {
	assert.Equal(t, Bull, DecideWinner(amt(100), amt(101)))
	assert.Equal(t, Bear, DecideWinner(amt(100), amt(99)))
	assert.Equal(t, NoWinner, DecideWinner(amt(100), amt(100)))
}

func TestSettleBet_BullWinnerTakesProRataOfPool(t *testing.T) {
	r := finished(Bull, 100, 50)

	payout, err := SettleBet(r, Bet{RoundID: 7, Amount: amt(100), Direction: Bull})
	require.NoError(t, err)
	assert.Equal(t, amt(150), payout)

	payout, err = SettleBet(r, Bet{RoundID: 7, Amount: amt(50), Direction: Bear})
	require.NoError(t, err)
	assert.True(t, payout.IsZero())
}

// La rama bear debe dividir por el total del lado ganador (bear), no por el
// lado contrario.
func TestSettleBet_BearWinnerUsesWinningSideTotal(t *testing.T) {
	r := finished(Bear, 300, 100)

	payout, err := SettleBet(r, Bet{RoundID: 7, Amount: amt(40), Direction: Bear})
	require.NoError(t, err)
	// floor(400*40/100) = 160; con el lado contrario serían floor(400*40/300) = 53
	assert.Equal(t, amt(160), payout)
}

func TestSettleBet_FloorRoundingNeverExceedsPool(t *testing.T) {
	r := finished(Bull, 3, 10) // pool 13, tres ganadores de 1
	total := Amount{}
	for range 3 {
		p, err := SettleBet(r, Bet{RoundID: 7, Amount: amt(1), Direction: Bull})
		require.NoError(t, err)
		assert.Equal(t, amt(4), p) // floor(13/3)
		total, err = AddAmount(total, p)
		require.NoError(t, err)
	}
	pool := amt(13)
	assert.LessOrEqual(t, total.Cmp(&pool), 0)
}

func TestSettleBet_OneSidedPoolIsPush(t *testing.T) {
	r := finished(Bear, 80, 0)

	payout, err := SettleBet(r, Bet{RoundID: 7, Amount: amt(80), Direction: Bull})
	require.NoError(t, err)
	assert.Equal(t, amt(80), payout, "losing side still refunded when nobody took the other side")
}

func TestSettleBet_TieRefundsEveryone(t *testing.T) {
	r := finished(NoWinner, 70, 30)

	for _, d := range []Direction{Bull, Bear} {
		payout, err := SettleBet(r, Bet{RoundID: 7, Amount: amt(30), Direction: d})
		require.NoError(t, err)
		assert.Equal(t, amt(30), payout)
	}
}

func TestSettleBet_WrongRound(t *testing.T) {
	_, err := SettleBet(finished(Bull, 1, 1), Bet{RoundID: 8, Amount: amt(1), Direction: Bull})
	assert.ErrorIs(t, err, ErrStaleOrWrongRound)
}

func TestSettleBet_HugePoolsDoNotWrap(t *testing.T) {
	big, err := ParseAmount("100000000000000000000000000000000000000") // 1e38
	require.NoError(t, err)
	r := FinishedRound{ID: 1, Winner: Bull, Pools: Pools{Bull: big, Bear: big}}

	payout, err := SettleBet(r, Bet{RoundID: 1, Amount: big, Direction: Bull})
	require.NoError(t, err)
	want, err := AddAmount(big, big)
	require.NoError(t, err)
	assert.Equal(t, want, payout)
}

func TestLiveRoundClose_SetsWinner(t *testing.T) {
	now := time.Unix(1_000, 0).UTC()
	live := LiveRound{ID: 3, OpenTime: now, CloseTime: now.Add(time.Minute), OpenPrice: amt(10)}

	assert.Equal(t, Bull, live.Close(amt(11)).Winner)
	assert.Equal(t, Bear, live.Close(amt(9)).Winner)

	fin := live.Close(amt(10))
	assert.Equal(t, NoWinner, fin.Winner)
	assert.Equal(t, "everybody", fin.Winner.Label())
	assert.Equal(t, amt(10), fin.ClosePrice)
	assert.Equal(t, live.CloseTime, fin.CloseTime)
}
