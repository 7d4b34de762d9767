package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/ai-detector/internal/infra/db"
)

type dialect struct {
	schema string
	get    string
	upsert string
	remove string
}

var dialects = map[string]dialect{
	db.DriverSQLite: {
		schema: `CREATE TABLE IF NOT EXISTS client_storage (
  k          TEXT PRIMARY KEY,
  v          BLOB NOT NULL,
  updated_at TEXT NOT NULL
);`,
		get: `SELECT v FROM client_storage WHERE k = ?;`,
		upsert: `
INSERT INTO client_storage (k, v, updated_at) VALUES (?,?,?)
ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at;`,
		remove: `DELETE FROM client_storage WHERE k = ?;`,
	},
	db.DriverMySQL: {
		schema: `CREATE TABLE IF NOT EXISTS client_storage (
  k          VARCHAR(128) NOT NULL PRIMARY KEY,
  v          LONGBLOB NOT NULL,
  updated_at DATETIME(6) NOT NULL
);`,
		get: `SELECT v FROM client_storage WHERE k = ? LIMIT 1;`,
		upsert: `
INSERT INTO client_storage (k, v, updated_at) VALUES (?,?,?)
ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at);`,
		remove: `DELETE FROM client_storage WHERE k = ?;`,
	},
	db.DriverPostgres: {
		schema: `CREATE TABLE IF NOT EXISTS client_storage (
  k          TEXT PRIMARY KEY,
  v          BYTEA NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);`,
		get: `SELECT v FROM client_storage WHERE k = $1 LIMIT 1;`,
		upsert: `
INSERT INTO client_storage (k, v, updated_at) VALUES ($1,$2,$3)
ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = EXCLUDED.updated_at;`,
		remove: `DELETE FROM client_storage WHERE k = $1;`,
	},
}

// SQL keeps entries in a client_storage table on sqlite, mysql or postgres.
type SQL struct {
	db *sql.DB
	d  dialect
}

// OpenSQL connects, runs the schema migration and returns the store.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	conn, err := db.Connect(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if _, err := conn.ExecContext(ctx, d.schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQL{db: conn, d: d}, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, s.d.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, s.d.upsert, key, value, time.Now().UTC())
	return err
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.d.remove, key)
	return err
}

func (s *SQL) Close() error { return s.db.Close() }
