// Package bans adapts the host's ban table. The table belongs to the host's
// account system; this adapter only checks existence and inserts.
package bans

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteBans struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteBans, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Dev/test bootstrap only; on a real host these tables already exist.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			identity TEXT NOT NULL,
			name TEXT NOT NULL,
			reason TEXT,
			origin TEXT,
			start DATETIME NOT NULL,
			expiry DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			uuid TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &SQLiteBans{db: db}, nil
}

func (s *SQLiteBans) Close() error {
	return s.db.Close()
}

func (s *SQLiteBans) ExistingBan(username string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM bans WHERE name = ? LIMIT 1`, username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("bans: lookup %q: %w", username, err)
	}
	return true, nil
}

// LookupUser resolves a registered account by username. Returns ok=false
// when the username is unknown (anonymous connection).
func (s *SQLiteBans) LookupUser(username string) (id int, uuid string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT id, uuid FROM users WHERE username = ?`, username).Scan(&id, &uuid)
	if err == sql.ErrNoRows {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, fmt.Errorf("bans: user lookup %q: %w", username, err)
	}
	return id, uuid, true, nil
}

func (s *SQLiteBans) InsertBan(identity, username, reason, origin string, start, expiry time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO bans (identity, name, reason, origin, start, expiry) VALUES (?, ?, ?, ?, ?, ?)`,
		identity, username, reason, origin,
		start.UTC().Format(time.RFC3339), expiry.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("bans: insert %q: %w", username, err)
	}
	return nil
}
