package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

var ErrAPIServerNotFound = errors.New("api server config not found")

// APIServer is the control API listen configuration.
type APIServer struct {
	Host      string
	Port      int
	UpdatedAt time.Time
}

// Address returns the listen address (host:port).
func (a *APIServer) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// APIServerStore reads and writes the API server row.
type APIServerStore interface {
	Get(ctx context.Context) (*APIServer, error)
	Set(ctx context.Context, a *APIServer) error
}

// APIServer returns the APIServerStore for this database.
func (db *DB) APIServer() APIServerStore {
	return &apiServerStore{db: db}
}

type apiServerStore struct {
	db *DB
}

func (s *apiServerStore) Get(ctx context.Context) (*APIServer, error) {
	a := &APIServer{}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT host, port, updated_at FROM api_server WHERE id = 1
	`).Scan(&a.Host, &a.Port, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAPIServerNotFound
	}
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return a, nil
}

func (s *apiServerStore) Set(ctx context.Context, a *APIServer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_server (id, host, port, updated_at)
		VALUES (1, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			host = excluded.host,
			port = excluded.port,
			updated_at = excluded.updated_at
	`, a.Host, a.Port)
	if err != nil {
		return fmt.Errorf("failed to save API server config: %w", err)
	}
	return nil
}
