package domain

import "github.com/google/uuid"

// TransferKind es el tipo de movimiento que se le pide al token ledger.
type TransferKind string

const (
	// TransferFrom debita From y acredita To (stake hacia custodia).
	TransferFrom TransferKind = "transfer_from"
	// BurnFrom destruye Amount del balance de From.
	BurnFrom TransferKind = "burn_from"
	// TransferOut paga desde custodia (premios, fees a dev wallets).
	TransferOut TransferKind = "transfer"
)

// Transfer es una intención de movimiento de valor. El core la construye;
// moverla es trabajo del token ledger.
type Transfer struct {
	ID     string
	Kind   TransferKind
	Token  string
	From   Address
	To     Address // vacío en BurnFrom
	Amount Amount
}

// NewTransfer asigna un ID único a la intención.
func NewTransfer(kind TransferKind, token string, from, to Address, amount Amount) Transfer {
	return Transfer{
		ID:     uuid.NewString(),
		Kind:   kind,
		Token:  token,
		From:   from,
		To:     to,
		Amount: amount,
	}
}
