package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/The-entrepreneur/reent/internal/config"
)

var (
	ErrNoRows = pgx.ErrNoRows
)

type Database struct {
	*pgxpool.Pool
}

func NewDatabase() *Database {
	return &Database{}
}

func (db *Database) Connect(ctx context.Context, cfg config.DatabaseConfig) error {
	pool, err := pgxpool.New(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return err
	}

	// Ping the database to ensure connection is valid
	if err := pool.Ping(ctx); err != nil {
		return err
	}

	db.Pool = pool
	return nil
}

func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}
