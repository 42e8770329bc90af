package database

import (
	"fmt"
	"log"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewSqliteDB opens (and creates if missing) the embedded database at path.
// The DSN pins the pragmas the repositories rely on: IMMEDIATE write
// transactions, foreign keys, a busy timeout instead of instant SQLITE_BUSY
// failures, and time.Time round-tripping for TIMESTAMP columns.
func NewSqliteDB(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}

	dsn := "file:" + path + "?" + url.Values{
		"_txlock":      {"immediate"},
		"_time_format": {"sqlite"},
		"_pragma": {
			"foreign_keys(1)",
			"busy_timeout(5000)",
			"journal_mode(WAL)",
		},
	}.Encode()

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single writer avoids database-locked errors under concurrent units.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	log.Println("Successfully opened sqlite database.")
	return db, nil
}

// CloseSqliteDB closes the embedded database handle.
func CloseSqliteDB(db *sqlx.DB) {
	if db != nil {
		_ = db.Close()
		log.Println("Sqlite database closed.")
	}
}
