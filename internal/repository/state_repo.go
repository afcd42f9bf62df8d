package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Fixed keys of the persisted client state
const (
	KeyAccessToken = "accessToken"
	KeyPersist     = "persist"
	KeyTheme       = "theme"
)

// DB is the subset of *pgxpool.Pool the repositories use
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StateRepository persists small string values across dashboard restarts
type StateRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type stateRepository struct {
	db DB
}

// NewStateRepository creates a StateRepository backed by the client_state table
func NewStateRepository(db DB) StateRepository {
	return &stateRepository{db: db}
}

// Get returns the stored value and whether the key exists
func (r *stateRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	sql := `SELECT value FROM client_state WHERE key = $1`
	err := r.db.QueryRow(ctx, sql, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read client state %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (r *stateRepository) Set(ctx context.Context, key, value string) error {
	sql := `INSERT INTO client_state (key, value, updated_at) VALUES ($1, $2, NOW())
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.Exec(ctx, sql, key, value); err != nil {
		return fmt.Errorf("failed to write client state %q: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (r *stateRepository) Delete(ctx context.Context, key string) error {
	sql := `DELETE FROM client_state WHERE key = $1`
	if _, err := r.db.Exec(ctx, sql, key); err != nil {
		return fmt.Errorf("failed to delete client state %q: %w", key, err)
	}
	return nil
}

type memoryStateRepository struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStateRepository keeps client state in process memory.
// Used when no database is configured and in tests.
func NewMemoryStateRepository() StateRepository {
	return &memoryStateRepository{values: make(map[string]string)}
}

func (r *memoryStateRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *memoryStateRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *memoryStateRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}
