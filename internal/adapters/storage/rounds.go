package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
)

const roundColumns = `id, stage, bid_time, open_time, close_time, open_price, close_price, winner, bull_amount, bear_amount`

// roundRow es la forma plana de una ronda en la tabla rounds.
type roundRow struct {
	id         int64
	stage      string
	bidTime    int64
	openTime   int64
	closeTime  int64
	openPrice  sql.NullString
	closePrice sql.NullString
	winner     sql.NullString
	bull       string
	bear       string
}

func (r *roundRow) scan(s interface{ Scan(...any) error }) error {
	return s.Scan(&r.id, &r.stage, &r.bidTime, &r.openTime, &r.closeTime,
		&r.openPrice, &r.closePrice, &r.winner, &r.bull, &r.bear)
}

func (r roundRow) pools() (domain.Pools, error) {
	bull, err := domain.ParseAmount(r.bull)
	if err != nil {
		return domain.Pools{}, err
	}
	bear, err := domain.ParseAmount(r.bear)
	if err != nil {
		return domain.Pools{}, err
	}
	return domain.Pools{Bull: bull, Bear: bear}, nil
}

func (r roundRow) bidding() (domain.BiddingRound, error) {
	pools, err := r.pools()
	if err != nil {
		return domain.BiddingRound{}, err
	}
	return domain.BiddingRound{
		ID:        uint64(r.id),
		BidTime:   unixTime(r.bidTime),
		OpenTime:  unixTime(r.openTime),
		CloseTime: unixTime(r.closeTime),
		Pools:     pools,
	}, nil
}

func (r roundRow) live() (domain.LiveRound, error) {
	pools, err := r.pools()
	if err != nil {
		return domain.LiveRound{}, err
	}
	openPrice, err := domain.ParseAmount(r.openPrice.String)
	if err != nil {
		return domain.LiveRound{}, err
	}
	return domain.LiveRound{
		ID:        uint64(r.id),
		BidTime:   unixTime(r.bidTime),
		OpenTime:  unixTime(r.openTime),
		CloseTime: unixTime(r.closeTime),
		OpenPrice: openPrice,
		Pools:     pools,
	}, nil
}

func (r roundRow) finished() (domain.FinishedRound, error) {
	live, err := r.live()
	if err != nil {
		return domain.FinishedRound{}, err
	}
	closePrice, err := domain.ParseAmount(r.closePrice.String)
	if err != nil {
		return domain.FinishedRound{}, err
	}
	return domain.FinishedRound{
		ID:         live.ID,
		BidTime:    live.BidTime,
		OpenTime:   live.OpenTime,
		CloseTime:  live.CloseTime,
		OpenPrice:  live.OpenPrice,
		ClosePrice: closePrice,
		Winner:     domain.Direction(r.winner.String),
		Pools:      live.Pools,
	}, nil
}

// Slots devuelve la ronda bidding y la live actuales (nil si no existen).
func (t *ledgerTx) Slots(ctx context.Context) (domain.Slots, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE stage IN ('bidding', 'live')`)
	if err != nil {
		return domain.Slots{}, fmt.Errorf("storage.Slots: query: %w", err)
	}
	defer rows.Close()

	var slots domain.Slots
	for rows.Next() {
		var row roundRow
		if err := row.scan(rows); err != nil {
			return domain.Slots{}, fmt.Errorf("storage.Slots: scan row: %w", err)
		}
		switch domain.Stage(row.stage) {
		case domain.StageBidding:
			b, err := row.bidding()
			if err != nil {
				return domain.Slots{}, fmt.Errorf("storage.Slots: round %d: %w", row.id, err)
			}
			slots.Bidding = &b
		case domain.StageLive:
			l, err := row.live()
			if err != nil {
				return domain.Slots{}, fmt.Errorf("storage.Slots: round %d: %w", row.id, err)
			}
			slots.Live = &l
		}
	}
	return slots, rows.Err()
}

// PutRound guarda la ronda con su fase actual. Una ronda finished no se
// vuelve a escribir nunca.
func (t *ledgerTx) PutRound(ctx context.Context, r domain.Round) error {
	row, err := toRow(r)
	if err != nil {
		return fmt.Errorf("storage.PutRound: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO rounds (`+roundColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stage       = excluded.stage,
			bid_time    = excluded.bid_time,
			open_time   = excluded.open_time,
			close_time  = excluded.close_time,
			open_price  = excluded.open_price,
			close_price = excluded.close_price,
			winner      = excluded.winner,
			bull_amount = excluded.bull_amount,
			bear_amount = excluded.bear_amount
		WHERE rounds.stage != 'finished'`,
		row.id, row.stage, row.bidTime, row.openTime, row.closeTime,
		row.openPrice, row.closePrice, row.winner, row.bull, row.bear,
	)
	if err != nil {
		return fmt.Errorf("storage.PutRound: round %d (%s): %w", row.id, row.stage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.PutRound: round %d is already finished", row.id)
	}
	return nil
}

// FinishedRound lee una ronda archivada por id.
func (t *ledgerTx) FinishedRound(ctx context.Context, id uint64) (domain.FinishedRound, error) {
	var row roundRow
	err := row.scan(t.tx.QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE id = ? AND stage = 'finished'`, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FinishedRound{}, fmt.Errorf("storage.FinishedRound: round %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.FinishedRound{}, fmt.Errorf("storage.FinishedRound: round %d: %w", id, err)
	}
	fin, err := row.finished()
	if err != nil {
		return domain.FinishedRound{}, fmt.Errorf("storage.FinishedRound: round %d: %w", id, err)
	}
	return fin, nil
}

func toRow(r domain.Round) (roundRow, error) {
	switch v := r.(type) {
	case domain.BiddingRound:
		return roundRow{
			id:        int64(v.ID),
			stage:     string(domain.StageBidding),
			bidTime:   v.BidTime.Unix(),
			openTime:  v.OpenTime.Unix(),
			closeTime: v.CloseTime.Unix(),
			bull:      v.Pools.Bull.Dec(),
			bear:      v.Pools.Bear.Dec(),
		}, nil
	case domain.LiveRound:
		return roundRow{
			id:        int64(v.ID),
			stage:     string(domain.StageLive),
			bidTime:   v.BidTime.Unix(),
			openTime:  v.OpenTime.Unix(),
			closeTime: v.CloseTime.Unix(),
			openPrice: nullString(v.OpenPrice.Dec()),
			bull:      v.Pools.Bull.Dec(),
			bear:      v.Pools.Bear.Dec(),
		}, nil
	case domain.FinishedRound:
		return roundRow{
			id:         int64(v.ID),
			stage:      string(domain.StageFinished),
			bidTime:    v.BidTime.Unix(),
			openTime:   v.OpenTime.Unix(),
			closeTime:  v.CloseTime.Unix(),
			openPrice:  nullString(v.OpenPrice.Dec()),
			closePrice: nullString(v.ClosePrice.Dec()),
			winner:     sql.NullString{String: string(v.Winner), Valid: true},
			bull:       v.Pools.Bull.Dec(),
			bear:       v.Pools.Bear.Dec(),
		}, nil
	}
	return roundRow{}, fmt.Errorf("unknown round type %T", r)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
