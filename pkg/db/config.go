package db

import (
	"context"
	"errors"
	"fmt"
)

// Config is the runtime configuration stored in the database.
type Config struct {
	APIServer *APIServer
}

// APIAddress returns the API server listen address.
func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return fmt.Sprintf("%s:%d", defaultAPIHost, defaultAPIPort)
	}
	return c.APIServer.Address()
}

// LoadConfig loads the stored runtime configuration.
func (db *DB) LoadConfig(ctx context.Context) (*Config, error) {
	apiServer, err := db.APIServer().Get(ctx)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}
	return &Config{APIServer: apiServer}, nil
}
