// internal/common/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"provider-funnel/internal/common/config"

	_ "modernc.org/sqlite"
)

// SQLiteClient holds the local answer database used by the CLI.
type SQLiteClient struct {
	DB   *sql.DB
	Path string
}

// NewSQLite opens (and creates when missing) the database file at cfg.Path.
func NewSQLite(cfg config.SQLiteConfig) (*SQLiteClient, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join(".funnel", "answers.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLiteClient{DB: db, Path: path}, nil
}

// Ping tests the database connection
func (c *SQLiteClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
