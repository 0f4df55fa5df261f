package domain

import "fmt"

// Direction es el lado de una apuesta: el precio sube (bull) o baja (bear).
type Direction string

const (
	Bull Direction = "bull"
	Bear Direction = "bear"

	// NoWinner marca una ronda empatada (open_price == close_price).
	NoWinner Direction = ""
)

// ParseDirection valida un lado leído de la CLI o de la base de datos.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Bull, Bear:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q (want bull|bear)", s)
}

// Opposite devuelve el otro lado.
func (d Direction) Opposite() Direction {
	if d == Bull {
		return Bear
	}
	return Bull
}

// Label es el texto que se publica en eventos: un empate paga a "everybody".
func (d Direction) Label() string {
	if d == NoWinner {
		return "everybody"
	}
	return string(d)
}
