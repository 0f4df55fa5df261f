package domain

// settlement.go: motor de liquidación: funciones puras sin estado.
//
//   ComputeFees:  gross → burn + gaming + net (división entera truncada)
//   DecideWinner: open vs close price
//   SettleBet:    payout de una apuesta en una ronda terminada
//
// El payout de un ganador es floor(pool * stake / lado_ganador). El resto de
// la división queda sin reclamar en custodia.

import "fmt"

// Fees es el desglose de una apuesta bruta.
type Fees struct {
	Burn   Amount // se destruye directamente del balance del jugador
	Gaming Amount // se acumula para distribuir a las dev wallets
	Net    Amount // stake que entra al pool
}

// Custodied es lo que se transfiere a custodia: gross - burn.
func (f Fees) Custodied() (Amount, error) {
	return AddAmount(f.Gaming, f.Net)
}

// ComputeFees aplica las tasas de cfg a gross.
func ComputeFees(gross Amount, cfg MarketConfig) (Fees, error) {
	scale := NewAmount(FeeScale)
	burn, err := MulDiv(gross, NewAmount(cfg.BurnFeeBP), scale)
	if err != nil {
		return Fees{}, fmt.Errorf("burn fee: %w", err)
	}
	gaming, err := MulDiv(gross, NewAmount(cfg.GamingFeeBP), scale)
	if err != nil {
		return Fees{}, fmt.Errorf("gaming fee: %w", err)
	}
	net, err := SubAmount(gross, burn)
	if err != nil {
		return Fees{}, fmt.Errorf("net after burn: %w", err)
	}
	net, err = SubAmount(net, gaming)
	if err != nil {
		return Fees{}, fmt.Errorf("net after gaming: %w", err)
	}
	return Fees{Burn: burn, Gaming: gaming, Net: net}, nil
}

// DecideWinner: bull si el precio subió, bear si bajó, NoWinner si empató.
func DecideWinner(openPrice, closePrice Amount) Direction {
	switch closePrice.Cmp(&openPrice) {
	case 1:
		return Bull
	case -1:
		return Bear
	default:
		return NoWinner
	}
}

// SettleBet calcula lo que se le debe a bet en la ronda terminada r.
//   - pool de un solo lado: push, se devuelve el stake
//   - ganador: floor(pool * stake / total del lado ganador)
//   - perdedor: 0
//   - empate: se devuelve el stake
func SettleBet(r FinishedRound, bet Bet) (Amount, error) {
	if bet.RoundID != r.ID {
		return Amount{}, fmt.Errorf("bet for round %d settled against round %d: %w", bet.RoundID, r.ID, ErrStaleOrWrongRound)
	}
	if r.Pools.OneSided() || r.Winner == NoWinner {
		return bet.Amount, nil
	}
	if r.Winner != bet.Direction {
		return Amount{}, nil
	}
	pool, err := r.Pools.Total()
	if err != nil {
		return Amount{}, fmt.Errorf("round %d pool: %w", r.ID, err)
	}
	payout, err := MulDiv(pool, bet.Amount, r.Pools.Side(r.Winner))
	if err != nil {
		return Amount{}, fmt.Errorf("round %d payout: %w", r.ID, err)
	}
	return payout, nil
}
