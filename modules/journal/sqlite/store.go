package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flemzord/relaybot/internal/journal"
)

// Store implements journal.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface guard.
var _ journal.Store = (*Store)(nil)

// Record appends an entry.
func (s *Store) Record(ctx context.Context, e journal.Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relay_journal (kind, chat_id, chat_name, text, at)
		VALUES (?, ?, ?, ?, ?)`,
		string(e.Kind), e.ChatID, e.ChatName, e.Text, e.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: record %s: %w", e.Kind, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, chat_id, chat_name, text, at
		FROM relay_journal
		ORDER BY at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []journal.Entry
	for rows.Next() {
		var (
			e    journal.Entry
			kind string
			at   int64
		)
		if err := rows.Scan(&e.ID, &kind, &e.ChatID, &e.ChatName, &e.Text, &at); err != nil {
			return nil, fmt.Errorf("sqlite: scan entry: %w", err)
		}
		e.Kind = journal.Kind(kind)
		e.At = time.Unix(0, at).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: recent rows: %w", err)
	}
	return entries, nil
}

// Prune deletes entries recorded before the given instant.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM relay_journal WHERE at < ?", before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune rows affected: %w", err)
	}
	return n, nil
}

// Len returns the number of stored entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM relay_journal").Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
