package store

import (
	"context"
	"fmt"

	"github.com/cesargomez89/weathercache/internal/domain"
)

// SchemaVersion is the version new stores are stamped with. Bumping it wipes existing caches.
const SchemaVersion = 1

type schemaStmt struct {
	name string
	sql  string
}

// The (date, location_id) and location_setting conflict policies live in the insert statements.
var createStatements = []schemaStmt{
	{"create location table", `
CREATE TABLE IF NOT EXISTS location (
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	location_setting TEXT UNIQUE NOT NULL,
	city_name TEXT NOT NULL,
	coord_lat REAL NOT NULL,
	coord_long REAL NOT NULL
)`},
	{"create weather table", `
CREATE TABLE IF NOT EXISTS weather (
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	location_id INTEGER NOT NULL,
	date TEXT NOT NULL,
	short_desc TEXT NOT NULL,
	weather_id INTEGER NOT NULL,
	min REAL NOT NULL,
	max REAL NOT NULL,
	humidity REAL NOT NULL,
	pressure REAL NOT NULL,
	wind REAL NOT NULL,
	degrees REAL NOT NULL,
	FOREIGN KEY (location_id) REFERENCES location (_id),
	UNIQUE (date, location_id)
)`},
	{"create weather location index", `CREATE INDEX IF NOT EXISTS idx_weather_location_id ON weather(location_id)`},
}

// weather goes first: it references location.
var dropStatements = []schemaStmt{
	{"drop weather table", `DROP TABLE IF EXISTS weather`},
	{"drop location table", `DROP TABLE IF EXISTS location`},
}

func (db *DB) open(ctx context.Context) error {
	stored, err := db.StoredVersion(ctx)
	if err != nil {
		return &domain.StorageInitError{Stmt: "read schema version", Err: err}
	}
	if stored != 0 && stored != db.version {
		return db.Upgrade(ctx, stored, db.version)
	}
	return db.RunInTx(ctx, func(txDB *DB) error {
		if err := txDB.exec(ctx, createStatements); err != nil {
			return err
		}
		return txDB.stamp(ctx, db.version)
	})
}

// Upgrade drops both tables and recreates them empty when the versions differ.
// No rows are migrated: the store only caches remote data.
func (db *DB) Upgrade(ctx context.Context, oldVersion, newVersion int) error {
	if oldVersion == newVersion {
		return nil
	}
	err := db.RunInTx(ctx, func(txDB *DB) error {
		if err := txDB.exec(ctx, dropStatements); err != nil {
			return err
		}
		if err := txDB.exec(ctx, createStatements); err != nil {
			return err
		}
		return txDB.stamp(ctx, newVersion)
	})
	if err != nil {
		return err
	}
	db.version = newVersion
	return nil
}

func (db *DB) exec(ctx context.Context, stmts []schemaStmt) error {
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return &domain.StorageInitError{Stmt: s.name, Err: err}
		}
	}
	return nil
}

func (db *DB) stamp(ctx context.Context, version int) error {
	// PRAGMA arguments cannot be bound.
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return &domain.StorageInitError{Stmt: "write schema version", Err: err}
	}
	return nil
}
