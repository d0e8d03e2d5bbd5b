package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"brevity/internal/config"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	pingTimeout            = 5 * time.Second
)

// DB is a Postgres or SQLite connection with its repositories.
type DB struct {
	db        *sqlx.DB
	summaries SummaryRepository
}

// Open connects using the database config section and verifies the
// connection.
func Open(cfg config.Database) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required. Set DATABASE_URL or database.dsn in config file")
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	if cfg.Driver == "sqlite3" {
		// SQLite allows one writer at a time
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewDB(db), nil
}

// NewDB wraps an existing connection.
func NewDB(db *sqlx.DB) *DB {
	return &DB{db: db, summaries: NewSummaryRepository(db)}
}

func (d *DB) Summaries() SummaryRepository { return d.summaries }

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
