// Package sqlite implements the store driver on SQLite.
//
// SQLite is supported on a best-effort basis for development and testing.
// Vectors are stored as JSON-encoded float32 arrays and similarity search is
// computed in the application layer; production deployments should use the
// postgres driver with pgvector.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/artrec/hunterd/internal/profile"
	"github.com/artrec/hunterd/store"
)

//go:embed schema.sql
var schema string

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by the DSN in the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Connect with WAL journal mode and a busy timeout; each pragma must be
	// prefixed with `_pragma=` when using the `modernc.org/sqlite` driver.
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// SQLite: a single connection is optimal with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	driver := DB{db: sqliteDB, profile: profile}

	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type='table' AND name='user_item')").Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check if database is initialized")
	}
	return exists, nil
}

// Migrate applies the embedded schema (idempotent CREATE IF NOT EXISTS).
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}

// vectorToJSON serializes a vector for storage.
func vectorToJSON(vec []float32) (string, error) {
	raw, err := json.Marshal(vec)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal vector")
	}
	return string(raw), nil
}

// vectorFromJSON deserializes a stored vector.
func vectorFromJSON(raw string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal vector")
	}
	return vec, nil
}

// stringsToJSON serializes a string list for storage.
func stringsToJSON(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal string list")
	}
	return string(raw), nil
}

// stringsFromJSON deserializes a stored string list.
func stringsFromJSON(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal string list")
	}
	return list, nil
}
