package domain

// Status es la foto pública del mercado: rondas en curso y flag de pausa.
type Status struct {
	Slots
	Paused      bool
	NextRoundID uint64
}
