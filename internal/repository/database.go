package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrNoBars = errors.New("no bars found in datasource")
)

type barsRepository interface {
	GetRecentBars(ctx context.Context, arg GetRecentBarsParams) ([]BarRow, error)
}

// Database holds the connection pool and the bar queries. It serves as the
// history source for seeding price windows at startup.
type Database struct {
	bars     barsRepository
	exchange string
	conn     *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
// All queries are scoped to the given exchange.
func NewDatabase(dbURL, exchange string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}

	return Database{
		bars:     barQueries{conn: conn},
		exchange: exchange,
		conn:     conn,
	}, nil
}

// Close releases the connection pool.
func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
