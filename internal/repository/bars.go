package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type GetRecentBarsParams struct {
	Symbol   string
	Exchange string
	Limit    int32
}

type BarRow struct {
	Bucket time.Time
	Close  decimal.Decimal
}

// RecentCloses returns up to limit one-minute closes for the symbol,
// oldest first, ready to seed a price window.
func (db *Database) RecentCloses(ctx context.Context, symbol string, limit int) ([]decimal.Decimal, error) {
	rows, err := db.bars.GetRecentBars(ctx, GetRecentBarsParams{
		Symbol:   symbol,
		Exchange: db.exchange,
		Limit:    int32(limit),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoBars
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoBars
	}
	return closesAscending(rows), nil
}

// The query returns newest-first; the window wants oldest-first.
func closesAscending(rows []BarRow) []decimal.Decimal {
	closes := make([]decimal.Decimal, len(rows))
	for i, row := range rows {
		closes[len(rows)-1-i] = row.Close
	}
	return closes
}

type barQueries struct {
	conn *pgxpool.Pool
}

const getRecentBarsSQL = `
SELECT bucket, close
FROM bars
WHERE symbol = $1 AND exchange = $2
ORDER BY bucket DESC
LIMIT $3`

func (q barQueries) GetRecentBars(ctx context.Context, arg GetRecentBarsParams) ([]BarRow, error) {
	rows, err := q.conn.Query(ctx, getRecentBarsSQL, arg.Symbol, arg.Exchange, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BarRow
	for rows.Next() {
		var row BarRow
		if err := rows.Scan(&row.Bucket, &row.Close); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
