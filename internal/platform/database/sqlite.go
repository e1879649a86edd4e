package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"grievance/internal/platform/config"
)

// Open connects to the SQLite store described by cfg. A "file:" prefix is
// accepted; ":memory:" opens a private in-memory database.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	path := strings.TrimPrefix(cfg.URL, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}

	if path != ":memory:" && path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxConnections
	if path == ":memory:" || maxConns <= 0 {
		// every new connection to :memory: is a separate database
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
