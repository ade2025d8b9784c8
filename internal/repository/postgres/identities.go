package postgres

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/repository"
)

const createStateTable = `
	CREATE TABLE IF NOT EXISTS client_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)
`

type identityRepository struct {
	db     *sql.DB
	logger *zap.Logger

	once    sync.Once
	initErr error
}

// NewIdentityRepository creates a postgres-backed identity store
func NewIdentityRepository(db *sql.DB, logger *zap.Logger) *identityRepository {
	return &identityRepository{
		db:     db,
		logger: logger,
	}
}

// NewRepositories wires every postgres store
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Identity: NewIdentityRepository(db, logger),
	}
}

func (r *identityRepository) ensureTable(ctx context.Context) error {
	r.once.Do(func() {
		if _, err := r.db.ExecContext(ctx, createStateTable); err != nil {
			r.logger.Error("Failed to create client_state table", zap.Error(err))
			r.initErr = err
		}
	})
	return r.initErr
}

func (r *identityRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := r.ensureTable(ctx); err != nil {
		return "", false, err
	}

	query := `
		SELECT value
		FROM client_state
		WHERE key = $1
	`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Failed to get client state", zap.String("key", key), zap.Error(err))
		return "", false, err
	}

	return value, true, nil
}

func (r *identityRepository) Put(ctx context.Context, key, value string) error {
	if err := r.ensureTable(ctx); err != nil {
		return err
	}

	query := `
		INSERT INTO client_state (key, value, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, key, value, time.Now())
	if err != nil {
		r.logger.Error("Failed to put client state", zap.String("key", key), zap.Error(err))
		return err
	}

	return nil
}
