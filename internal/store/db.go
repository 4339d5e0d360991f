package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// dbOps is the part of sqlx shared by *sqlx.DB and *sqlx.Tx.
type dbOps interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// DB is the process-wide handle to the forecast cache. Open it once and share it.
type DB struct {
	dbOps
	root    *sqlx.DB
	version int
}

// NewSQLiteDB opens or creates the cache at SchemaVersion.
func NewSQLiteDB(dsn string) (*DB, error) {
	return NewSQLiteDBWithVersion(dsn, SchemaVersion)
}

// NewSQLiteDBWithVersion opens or creates the cache at the given schema version.
// A store stamped with a different version is dropped and recreated empty.
func NewSQLiteDBWithVersion(dsn string, version int) (*DB, error) {
	if version < 1 {
		return nil, fmt.Errorf("invalid schema version %d", version)
	}

	root, err := sqlx.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// Every connection of an in-memory DSN is its own database.
	if isMemory(dsn) {
		root.SetMaxOpenConns(1)
		root.SetMaxIdleConns(1)
		root.SetConnMaxLifetime(0)
	}

	if err := root.Ping(); err != nil {
		_ = root.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	db := &DB{dbOps: root, root: root, version: version}
	if err := db.open(context.Background()); err != nil {
		_ = root.Close()
		return nil, err
	}
	return db, nil
}

// sqliteDSN appends the pragmas every pooled connection needs.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join([]string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(30000)",
		"_pragma=journal_mode(WAL)",
	}, "&")
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// Version is the schema version this handle was opened at.
func (db *DB) Version() int {
	return db.version
}

// StoredVersion reads the schema version persisted in the file.
func (db *DB) StoredVersion(ctx context.Context) (int, error) {
	var v int
	if err := db.root.GetContext(ctx, &v, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// RunInTx runs fn against a transaction-bound copy of db. fn must not call RunInTx again.
func (db *DB) RunInTx(ctx context.Context, fn func(txDB *DB) error) error {
	tx, err := db.root.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	txDB := &DB{
		dbOps:   tx,
		root:    db.root,
		version: db.version,
	}

	if err := fn(txDB); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) Close() error {
	return db.root.Close()
}
