package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	price           INTEGER NOT NULL,
	size            TEXT NOT NULL DEFAULT '',
	seller_location TEXT NOT NULL DEFAULT '',
	stock           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS orders (
	order_id        TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	cart_id         TEXT NOT NULL DEFAULT '',
	items           JSONB NOT NULL,
	total_price     INTEGER NOT NULL,
	delivery_slot   TEXT NOT NULL,
	status          TEXT NOT NULL,
	payment_status  TEXT NOT NULL,
	delivery_status TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id);
`

// EnsureSchema creates the products and orders tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return errors.Wrap(err, "ensure schema")
}
