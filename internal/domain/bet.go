package domain

// Address identifica a un participante, wallet o cuenta de custodia.
type Address string

// Bet es el registro de una apuesta. La clave es (RoundID, Player): una sola
// apuesta por jugador y ronda. Amount es neto de fees.
type Bet struct {
	Player    Address
	RoundID   uint64
	Amount    Amount
	Direction Direction
}

// Position resume las apuestas del jugador en las rondas bidding y live actuales.
type Position struct {
	Bidding *Bet
	Live    *Bet
}

// PageLimit normaliza el límite de paginación del historial de apuestas.
func PageLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return min(limit, MaxPageSize)
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 30
)
