package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore persists collection snapshots as rows of a single table. Each
// collection maps to one row holding the full JSON document, so the
// gateway contract (atomic whole-collection replace) is kept regardless
// of the backing engine.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQL connects with the given driver ("postgres" or "sqlite") and
// verifies connectivity with a ping.
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// NewSQLStore wraps an existing connection.
func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

// EnsureTable creates the snapshots table if not exists (idempotent).
// The data column is TEXT so the same DDL works on Postgres and SQLite.
func (s *SQLStore) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS snapshots (
  collection TEXT PRIMARY KEY,
  data TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *SQLStore) Load(ctx context.Context, collection string, v any) error {
	q := s.db.Rebind(`SELECT data FROM snapshots WHERE collection = ?`)
	var raw string
	if err := s.db.GetContext(ctx, &raw, q, collection); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("read %s: %w", collection, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, collection string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	q := s.db.Rebind(`INSERT INTO snapshots (collection, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT (collection) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, q, collection, string(raw), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }
