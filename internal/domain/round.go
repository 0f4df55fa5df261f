package domain

import (
	"fmt"
	"time"
)

// Stage identifica la fase de vida de una ronda.
type Stage string

const (
	StageBidding  Stage = "bidding"
	StageLive     Stage = "live"
	StageFinished Stage = "finished"
)

// Round is the lifecycle sum type. Only BiddingRound, LiveRound and
// FinishedRound implement it.
type Round interface {
	RoundID() uint64
	Stage() Stage
	isRound()
}

// Pools agrupa los totales netos apostados a cada lado.
type Pools struct {
	Bull Amount
	Bear Amount
}

// Total devuelve bull + bear.
func (p Pools) Total() (Amount, error) {
	return AddAmount(p.Bull, p.Bear)
}

// Side devuelve el total de un lado.
func (p Pools) Side(d Direction) Amount {
	if d == Bull {
		return p.Bull
	}
	return p.Bear
}

// OneSided es true si algún lado no tiene contraparte.
func (p Pools) OneSided() bool {
	return p.Bull.IsZero() || p.Bear.IsZero()
}

// add suma net al lado d y devuelve el nuevo total de ese lado.
func (p *Pools) add(d Direction, net Amount) (Amount, error) {
	side := &p.Bear
	if d == Bull {
		side = &p.Bull
	}
	sum, err := AddAmount(*side, net)
	if err != nil {
		return Amount{}, err
	}
	*side = sum
	return sum, nil
}

// BiddingRound acepta apuestas hasta OpenTime; el precio aún no se muestreó.
type BiddingRound struct {
	ID        uint64
	BidTime   time.Time
	OpenTime  time.Time
	CloseTime time.Time
	Pools     Pools
}

// LiveRound ya no acepta apuestas y espera a CloseTime para liquidarse.
type LiveRound struct {
	ID        uint64
	BidTime   time.Time
	OpenTime  time.Time
	CloseTime time.Time
	OpenPrice Amount
	Pools     Pools
}

// FinishedRound es inmutable una vez archivada.
type FinishedRound struct {
	ID         uint64
	BidTime    time.Time
	OpenTime   time.Time
	CloseTime  time.Time
	OpenPrice  Amount
	ClosePrice Amount
	Winner     Direction // NoWinner en empate
	Pools      Pools
}

func (r BiddingRound) RoundID() uint64  { return r.ID }
func (r LiveRound) RoundID() uint64     { return r.ID }
func (r FinishedRound) RoundID() uint64 { return r.ID }

func (BiddingRound) Stage() Stage  { return StageBidding }
func (LiveRound) Stage() Stage     { return StageLive }
func (FinishedRound) Stage() Stage { return StageFinished }

func (BiddingRound) isRound()  {}
func (LiveRound) isRound()     {}
func (FinishedRound) isRound() {}

// Slots es la vista del round ledger: como mucho una ronda en bidding y una live.
type Slots struct {
	Bidding *BiddingRound
	Live    *LiveRound
}

// NewBiddingRound crea la siguiente ronda abierta a apuestas. Si hay una ronda
// live, la ventana encadena con su CloseTime para que no haya solapes ni huecos;
// si no, abre dentro de un periodo completo a partir de now.
func NewBiddingRound(id uint64, now time.Time, live *LiveRound, duration time.Duration) BiddingRound {
	open := now.Add(duration)
	if live != nil {
		open = live.CloseTime
	}
	return BiddingRound{
		ID:        id,
		BidTime:   now,
		OpenTime:  open,
		CloseTime: open.Add(duration),
	}
}

// AcceptsBets indica si la ventana de apuestas sigue abierta en now.
func (r BiddingRound) AcceptsBets(now time.Time) bool {
	return !now.After(r.OpenTime)
}

// ReadyToOpen indica si la ronda ya puede pasar a live.
func (r BiddingRound) ReadyToOpen(now time.Time) bool {
	return !now.Before(r.OpenTime)
}

// AddBet suma el stake neto al pool y devuelve el nuevo total del lado.
func (r *BiddingRound) AddBet(d Direction, net Amount) (Amount, error) {
	total, err := r.Pools.add(d, net)
	if err != nil {
		return Amount{}, fmt.Errorf("round %d %s pool: %w", r.ID, d, err)
	}
	return total, nil
}

// Promote convierte la ronda en live. OpenTime pasa a ser el instante en que
// se muestreó el precio y CloseTime queda fijo a OpenTime + duration.
func (r BiddingRound) Promote(now time.Time, openPrice Amount, duration time.Duration) LiveRound {
	return LiveRound{
		ID:        r.ID,
		BidTime:   r.BidTime,
		OpenTime:  now,
		CloseTime: now.Add(duration),
		OpenPrice: openPrice,
		Pools:     r.Pools,
	}
}

// ReadyToClose indica si la ronda live ya expiró.
func (r LiveRound) ReadyToClose(now time.Time) bool {
	return !now.Before(r.CloseTime)
}

// Close liquida la ronda con el precio de cierre.
func (r LiveRound) Close(closePrice Amount) FinishedRound {
	return FinishedRound{
		ID:         r.ID,
		BidTime:    r.BidTime,
		OpenTime:   r.OpenTime,
		CloseTime:  r.CloseTime,
		OpenPrice:  r.OpenPrice,
		ClosePrice: closePrice,
		Winner:     DecideWinner(r.OpenPrice, closePrice),
		Pools:      r.Pools,
	}
}
