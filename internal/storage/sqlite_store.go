package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const ledgerSchema = `CREATE TABLE IF NOT EXISTS deliveries (
	transaction_id TEXT NOT NULL,
	status         TEXT NOT NULL,
	expires_at     INTEGER NOT NULL,
	PRIMARY KEY (transaction_id, status)
);
CREATE INDEX IF NOT EXISTS deliveries_expires_at ON deliveries (expires_at);
CREATE TABLE IF NOT EXISTS last_status (
	transaction_id TEXT PRIMARY KEY,
	status         TEXT NOT NULL,
	expires_at     INTEGER NOT NULL
);`

type sqliteStore struct {
	db   *sql.DB
	ttl  time.Duration
	gate *sweepGate
	now  func() time.Time
}

func openSQLite(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(1000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	now := time.Now
	return &sqliteStore{
		db:   db,
		ttl:  opts.TTL,
		gate: newSweepGate(opts.CleanupInterval, now()),
		now:  now,
	}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Seen(transactionID, status string) (bool, error) {
	now := s.now()
	if err := s.gate.run(now, s.sweep); err != nil {
		return false, err
	}
	var expires int64
	err := s.db.QueryRow(
		"SELECT expires_at FROM deliveries WHERE transaction_id = ? AND status = ?",
		transactionID, normalizeStatus(status),
	).Scan(&expires)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("lookup delivery: %w", err)
	}
	return expires > now.Unix(), nil
}

func (s *sqliteStore) LastStatus(transactionID string) (string, error) {
	now := s.now()
	if err := s.gate.run(now, s.sweep); err != nil {
		return "", err
	}
	var status string
	err := s.db.QueryRow(
		"SELECT status FROM last_status WHERE transaction_id = ? AND expires_at > ?",
		transactionID, now.Unix(),
	).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("lookup last status: %w", err)
	}
	return status, nil
}

func (s *sqliteStore) Mark(transactionID, status string) error {
	now := s.now()
	if err := s.gate.run(now, s.sweep); err != nil {
		return err
	}
	status = normalizeStatus(status)
	expires := now.Add(s.ttl).Unix()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin mark: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO deliveries (transaction_id, status, expires_at) VALUES (?, ?, ?)",
		transactionID, status, expires,
	); err != nil {
		return fmt.Errorf("mark delivery: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO last_status (transaction_id, status, expires_at) VALUES (?, ?, ?)",
		transactionID, status, expires,
	); err != nil {
		return fmt.Errorf("record last status: %w", err)
	}
	return tx.Commit()
}

func (s *sqliteStore) sweep(now time.Time) error {
	for _, table := range []string{"deliveries", "last_status"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE expires_at <= ?", now.Unix()); err != nil {
			return fmt.Errorf("cleanup %s: %w", table, err)
		}
	}
	return nil
}

func (s *sqliteStore) count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM deliveries").Scan(&n)
	return n, err
}
