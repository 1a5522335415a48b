package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Postgres is the store of record: odds snapshot history, the alert audit
// trail and the user roster.
type Postgres struct {
	db *sql.DB
}

// Connect opens and pings a Postgres connection
func Connect(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Postgres{db: db}, nil
}

// NewWithDB wraps an existing connection. For tests.
func NewWithDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Ping checks connectivity
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the connection pool
func (p *Postgres) Close() error {
	return p.db.Close()
}
