package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS funnel_slots (
	session_id TEXT NOT NULL,
	category   TEXT NOT NULL,
	record     BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (session_id, category)
)`

// SQLiteSlot keeps records in a local SQLite database.
type SQLiteSlot struct {
	db *sql.DB
}

// NewSQLiteSlot creates the slot table if needed.
func NewSQLiteSlot(ctx context.Context, db *sql.DB) (*SQLiteSlot, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create funnel_slots: %w", err)
	}
	return &SQLiteSlot{db: db}, nil
}

func (s *SQLiteSlot) Load(ctx context.Context, key SlotKey) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM funnel_slots WHERE session_id = ? AND category = ?`,
		key.SessionID, key.Category,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *SQLiteSlot) Save(ctx context.Context, key SlotKey, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO funnel_slots (session_id, category, record, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, category) DO UPDATE SET
			record = excluded.record,
			updated_at = excluded.updated_at`,
		key.SessionID, key.Category, data, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteSlot) Clear(ctx context.Context, key SlotKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM funnel_slots WHERE session_id = ? AND category = ?`,
		key.SessionID, key.Category,
	)
	return err
}
