package db

import (
	"context"
	"fmt"
)

const (
	defaultAPIHost = "0.0.0.0"
	defaultAPIPort = 8080
)

// Bootstrap seeds the default API server row on first run.
func (db *DB) Bootstrap(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO api_server (id, host, port)
		VALUES (1, ?, ?)
	`, defaultAPIHost, defaultAPIPort)
	if err != nil {
		return fmt.Errorf("failed to create default API server: %w", err)
	}
	return nil
}

// NeedsBootstrap reports whether the database still lacks its defaults.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_server`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
