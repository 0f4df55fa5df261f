package storage

// transfers.go: outbox de intenciones de transferencia.
//
// El mercado no mueve valor: construye transfers y se los pasa al token
// ledger. Outbox implementa ports.TokenLedger guardándolos en la misma
// transacción que el cambio de estado, para que un puente hacia el token real
// los entregue después y los marque como entregados.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
)

// Outbox implementa ports.TokenLedger sobre la tabla transfers.
type Outbox struct {
	s *SQLiteStorage
}

// NewOutbox crea el outbox sobre la misma base de datos del ledger.
func NewOutbox(s *SQLiteStorage) *Outbox {
	return &Outbox{s: s}
}

// Execute encola los transfers. Dentro de Atomically usa su transacción.
func (o *Outbox) Execute(ctx context.Context, transfers []domain.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	if tx, ok := txFrom(ctx); ok {
		return insertTransfers(ctx, tx, transfers)
	}

	tx, err := o.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.Outbox: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertTransfers(ctx, tx, transfers); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.Outbox: commit: %w", err)
	}
	return nil
}

// Pending devuelve los transfers no entregados en orden de encolado.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]domain.Transfer, error) {
	query := `SELECT id, kind, token, from_addr, to_addr, amount FROM transfers
		WHERE delivered_at IS NULL ORDER BY rowid ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := o.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.Outbox.Pending: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Transfer
	for rows.Next() {
		var (
			tr                   domain.Transfer
			kind, from, to, amtS string
		)
		if err := rows.Scan(&tr.ID, &kind, &tr.Token, &from, &to, &amtS); err != nil {
			return nil, fmt.Errorf("storage.Outbox.Pending: scan row: %w", err)
		}
		if tr.Amount, err = domain.ParseAmount(amtS); err != nil {
			return nil, fmt.Errorf("storage.Outbox.Pending: transfer %s: %w", tr.ID, err)
		}
		tr.Kind = domain.TransferKind(kind)
		tr.From = domain.Address(from)
		tr.To = domain.Address(to)
		out = append(out, tr)
	}
	return out, rows.Err()
}

// MarkDelivered marca transfers como entregados al token real.
func (o *Outbox) MarkDelivered(ctx context.Context, ids []string, at time.Time) error {
	for _, id := range ids {
		res, err := o.s.db.ExecContext(ctx,
			`UPDATE transfers SET delivered_at = ? WHERE id = ? AND delivered_at IS NULL`, at.Unix(), id)
		if err != nil {
			return fmt.Errorf("storage.Outbox.MarkDelivered: %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("storage.Outbox.MarkDelivered: %s: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}

func insertTransfers(ctx context.Context, tx *sql.Tx, transfers []domain.Transfer) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transfers (id, kind, token, from_addr, to_addr, amount)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.Outbox: prepare: %w", err)
	}
	defer stmt.Close()

	for _, tr := range transfers {
		if _, err := stmt.ExecContext(ctx,
			tr.ID, string(tr.Kind), tr.Token, string(tr.From), string(tr.To), tr.Amount.Dec(),
		); err != nil {
			return fmt.Errorf("storage.Outbox: insert %s: %w", tr.ID, err)
		}
	}
	return nil
}

var _ ports.TokenLedger = (*Outbox)(nil)
