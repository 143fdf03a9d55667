package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// ConnectSQLite opens an existing database read-only, as the server does.
func ConnectSQLite(path string) (*sql.DB, error) {
	return openSQLite(path + "?mode=ro")
}

// OpenSQLite opens (or creates) a writable database and applies the
// equipment schema.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := MigrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// MigrateSQLite creates the equipment tables if they are missing.
func MigrateSQLite(db *sql.DB) error {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS equipment (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			equipment_key TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'misc',
			bv INTEGER NOT NULL DEFAULT 0,
			heat INTEGER NOT NULL DEFAULT 0,
			tonnage REAL NOT NULL DEFAULT 0,
			slots INTEGER NOT NULL DEFAULT 0,
			tech_base TEXT NOT NULL DEFAULT 'IS',
			explosive TEXT NOT NULL DEFAULT '',
			ammo_for TEXT NOT NULL DEFAULT '',
			direct_fire BOOLEAN NOT NULL DEFAULT 0,
			defensive_bv INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS equipment_lookup (
			equipment_id INTEGER NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
			lookup_name TEXT PRIMARY KEY
		)`,
	} {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
