package domain

// EventKind identifica un evento publicado por una operación.
type EventKind string

const (
	EventBetPlaced         EventKind = "bet_placed"
	EventRoundClosed       EventKind = "round_closed"
	EventRoundOpened       EventKind = "round_opened"
	EventBiddingOpened     EventKind = "bidding_opened"
	EventWinningsCollected EventKind = "winnings_collected"
	EventConfigUpdated     EventKind = "config_updated"
	EventPaused            EventKind = "paused"
	EventResumed           EventKind = "resumed"
	EventFundDistributed   EventKind = "fund_distributed"
)

// Attr es un par clave/valor de un evento, en el orden en que se emitió.
type Attr struct {
	Key   string
	Value string
}

// Event es lo que una operación deja observable además del cambio de estado.
type Event struct {
	Kind    EventKind
	RoundID uint64
	Attrs   []Attr
}

// NewEvent construye un evento a partir de pares clave, valor.
func NewEvent(kind EventKind, roundID uint64, kv ...string) Event {
	e := Event{Kind: kind, RoundID: roundID}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attrs = append(e.Attrs, Attr{Key: kv[i], Value: kv[i+1]})
	}
	return e
}

// Attr devuelve el valor de key, o "" si no existe.
func (e Event) Attr(key string) string {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// Receipt es el resultado observable de una operación confirmada.
type Receipt struct {
	Events    []Event
	Transfers []Transfer
}

// Kinds lista los tipos de evento en orden de emisión.
func (r Receipt) Kinds() []EventKind {
	kinds := make([]EventKind, 0, len(r.Events))
	for _, e := range r.Events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}
