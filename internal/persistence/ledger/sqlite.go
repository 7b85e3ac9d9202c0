// Package ledger is the append-only provenance store. Every legitimately
// created (item, stack) combination gets a row; the sweeper later checks
// inventory slots against those rows.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// ErrDegraded is returned once the store failed schema init. Callers must
// treat it as "inconclusive" and take no corrective action.
var ErrDegraded = errors.New("ledger: store degraded, schema unavailable")

// ProvenanceRecord is one append-only row of the provenance ledger. ID and
// CreatedAt are assigned by the store at insert time.
type ProvenanceRecord struct {
	UID    string
	ItemID int
	Stack  int
	Source string
}

type SQLiteLedger struct {
	db  *sql.DB
	log *log.Logger

	degraded atomic.Bool
}

func OpenSQLite(path string, logger *log.Logger) (*SQLiteLedger, error) {
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

	s := &SQLiteLedger{db: db, log: logger}

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		// Degraded mode: the host keeps running, provenance calls become
		// no-ops that report ErrDegraded instead of crashing the server.
		s.degraded.Store(true)
		if logger != nil {
			logger.Printf("ledger: schema init failed, store degraded: %v", err)
		}
	}
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-heavy recorder; the sweeper reads concurrently.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tracked_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			unique_identifier TEXT NOT NULL,
			item_id INTEGER NOT NULL,
			stack INTEGER,
			source TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tracked_items_item_stack ON tracked_items(item_id, stack);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}

func (s *SQLiteLedger) Degraded() bool {
	return s.degraded.Load()
}

// Record appends one provenance row. Rows are never updated or deleted here;
// retention belongs to the operator.
func (s *SQLiteLedger) Record(rec ProvenanceRecord) error {
	if s.degraded.Load() {
		return ErrDegraded
	}
	_, err := s.db.Exec(
		`INSERT INTO tracked_items (unique_identifier, item_id, stack, source) VALUES (?, ?, ?, ?)`,
		rec.UID, rec.ItemID, rec.Stack, rec.Source,
	)
	if err != nil {
		return fmt.Errorf("ledger: record (%d,%d): %w", rec.ItemID, rec.Stack, err)
	}
	return nil
}

// CountMatching reports whether an exact (item, stack) combination was ever
// recorded. The count is capped at 1; callers only test for zero.
func (s *SQLiteLedger) CountMatching(itemID, stack int) (int, error) {
	if s.degraded.Load() {
		return 0, ErrDegraded
	}
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM (SELECT 1 FROM tracked_items WHERE item_id = ? AND stack = ? LIMIT 1)`,
		itemID, stack,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ledger: count (%d,%d): %w", itemID, stack, err)
	}
	return n, nil
}
