package storage

// sqlite.go: ledger del mercado en SQLite (pure Go, sin CGo).
//
// Estrategia:
//   - `market_state`: una sola fila con config, contadores y flag de pausa.
//   - `rounds`: todas las rondas por id. Los índices únicos parciales sobre
//     `stage` garantizan como mucho una ronda bidding y una live; las
//     finished son el archivo inmutable.
//   - `bets`: PK (round_id, player) + índice (player, round_id) para el
//     historial paginado y el cobro.
//   - `transfers`: outbox de intenciones de transferencia, escrita en la
//     misma transacción que el cambio de estado que las origina.
//
// Cada operación del mercado es una transacción. La transacción viaja en el
// context para que el outbox escriba dentro de ella.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alejandrodnm/roundbet/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS market_state (
    id               INTEGER PRIMARY KEY CHECK (id = 1),
    round_duration_s INTEGER NOT NULL,
    oracle_ref       TEXT    NOT NULL,
    minimum_bet      TEXT    NOT NULL DEFAULT '0',
    burn_fee_bp      INTEGER NOT NULL DEFAULT 0,
    gaming_fee_bp    INTEGER NOT NULL DEFAULT 0,
    token_ref        TEXT    NOT NULL,
    custody          TEXT    NOT NULL,
    next_round_id    INTEGER NOT NULL DEFAULT 0,
    accumulated_fee  TEXT    NOT NULL DEFAULT '0',
    paused           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS rounds (
    id          INTEGER PRIMARY KEY,
    stage       TEXT    NOT NULL CHECK (stage IN ('bidding', 'live', 'finished')),
    bid_time    INTEGER NOT NULL,
    open_time   INTEGER NOT NULL,
    close_time  INTEGER NOT NULL,
    open_price  TEXT,
    close_price TEXT,
    winner      TEXT,
    bull_amount TEXT    NOT NULL DEFAULT '0',
    bear_amount TEXT    NOT NULL DEFAULT '0'
);

CREATE UNIQUE INDEX IF NOT EXISTS rounds_one_bidding ON rounds(stage) WHERE stage = 'bidding';
CREATE UNIQUE INDEX IF NOT EXISTS rounds_one_live    ON rounds(stage) WHERE stage = 'live';

CREATE TABLE IF NOT EXISTS bets (
    round_id  INTEGER NOT NULL,
    player    TEXT    NOT NULL,
    amount    TEXT    NOT NULL,
    direction TEXT    NOT NULL CHECK (direction IN ('bull', 'bear')),
    PRIMARY KEY (round_id, player)
);

CREATE INDEX IF NOT EXISTS bets_player ON bets(player, round_id);

CREATE TABLE IF NOT EXISTS transfers (
    id           TEXT    PRIMARY KEY,
    kind         TEXT    NOT NULL,
    token        TEXT    NOT NULL,
    from_addr    TEXT    NOT NULL,
    to_addr      TEXT    NOT NULL DEFAULT '',
    amount       TEXT    NOT NULL,
    delivered_at INTEGER
);

CREATE INDEX IF NOT EXISTS transfers_pending ON transfers(delivered_at);
`

// SQLiteStorage implementa ports.LedgerStore usando SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	// SQLite es single-writer; una sola conexión además serializa las
	// transacciones de llamadores concurrentes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

type txKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// Atomically ejecuta fn en una transacción y hace commit solo si fn no falla.
// Si ctx ya transporta una transacción, fn corre dentro de ella.
func (s *SQLiteStorage) Atomically(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	if tx, ok := txFrom(ctx); ok {
		return fn(ctx, &ledgerTx{tx: tx})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.Atomically: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(withTx(ctx, tx), &ledgerTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.Atomically: commit: %w", err)
	}
	return nil
}

// View ejecuta fn sobre una transacción que siempre se descarta.
func (s *SQLiteStorage) View(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	if tx, ok := txFrom(ctx); ok {
		return fn(ctx, &ledgerTx{tx: tx})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.View: begin tx: %w", err)
	}
	defer tx.Rollback()

	return fn(withTx(ctx, tx), &ledgerTx{tx: tx})
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// ledgerTx implementa ports.LedgerTx sobre una *sql.Tx.
type ledgerTx struct {
	tx *sql.Tx
}

var (
	_ ports.LedgerStore = (*SQLiteStorage)(nil)
	_ ports.LedgerTx    = (*ledgerTx)(nil)
)
