package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

var ErrAttemptNotFound = errors.New("attempt not found")

const (
	defaultAttemptLimit = 20

	// Fixed width so that timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// AttemptStore is the provisioning attempt journal.
type AttemptStore struct {
	db *DB
}

// Attempts returns the attempt journal for this database.
func (db *DB) Attempts() *AttemptStore {
	return &AttemptStore{db: db}
}

// StartAttempt records a newly accepted provision request.
func (s *AttemptStore) StartAttempt(ctx context.Context, a provisioning.Attempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, ssid, room, command_center_url, node_id, state, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.SSID, a.Room, a.CommandCenterURL, a.NodeID, string(a.State), formatTime(a.StartedAt))
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// FinishAttempt records the outcome of an attempt.
func (s *AttemptStore) FinishAttempt(ctx context.Context, id string, state provisioning.State, errDetail string, registered bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE attempts SET state = ?, error = ?, registered = ?, finished_at = ?
		WHERE id = ?
	`, string(state), errDetail, registered, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to finish attempt: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

// GetAttempt returns one attempt by id.
func (s *AttemptStore) GetAttempt(ctx context.Context, id string) (*provisioning.Attempt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ssid, room, command_center_url, node_id, state, error, registered, started_at, finished_at
		FROM attempts WHERE id = ?
	`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAttempts returns up to limit attempts, newest first.
func (s *AttemptStore) ListAttempts(ctx context.Context, limit int) ([]provisioning.Attempt, error) {
	if limit <= 0 {
		limit = defaultAttemptLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ssid, room, command_center_url, node_id, state, error, registered, started_at, finished_at
		FROM attempts ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	attempts := []provisioning.Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (*provisioning.Attempt, error) {
	a := &provisioning.Attempt{}
	var state, startedAt string
	var finishedAt sql.NullString
	err := row.Scan(&a.ID, &a.SSID, &a.Room, &a.CommandCenterURL, &a.NodeID,
		&state, &a.Error, &a.Registered, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	a.State = provisioning.State(state)
	a.StartedAt, _ = time.Parse(timeLayout, startedAt)
	if finishedAt.Valid {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err == nil {
			a.FinishedAt = &t
		}
	}
	return a, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
