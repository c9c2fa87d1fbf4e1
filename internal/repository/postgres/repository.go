package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"valentinelink/internal/domain"
	"valentinelink/internal/repository"
)

// uniqueViolation is the Postgres error code for a primary key collision.
const uniqueViolation = "23505"

// Repository implements repository.LinkRepository using PostgreSQL, the
// backend the production deployment runs against.
type Repository struct {
	db *sql.DB
}

// New creates a new Postgres repository from a connection string
func New(connString string) (*Repository, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return repo, nil
}

// ensureSchema creates the links table if it does not exist
func (r *Repository) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS valentine_links (
            id VARCHAR(6) PRIMARY KEY,
            config JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            expires_at TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_valentine_links_expires_at ON valentine_links(expires_at);
    `)
	return err
}

// CreateLink persists a new short link record
func (r *Repository) CreateLink(ctx context.Context, id string, config json.RawMessage, createdAt, expiresAt time.Time) (*domain.ShortLinkRecord, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO valentine_links (id, config, created_at, expires_at) VALUES ($1, $2, $3, $4)",
		id, string(config), createdAt.UTC(), expiresAt.UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, repository.ErrDuplicateID
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return &domain.ShortLinkRecord{
		ID:        id,
		Config:    config,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// GetLink retrieves a record by its id. Expiry is not checked on reads.
func (r *Repository) GetLink(ctx context.Context, id string) (*domain.ShortLinkRecord, error) {
	record := &domain.ShortLinkRecord{}
	var config []byte

	err := r.db.QueryRowContext(ctx,
		"SELECT id, config, created_at, expires_at FROM valentine_links WHERE id = $1",
		id,
	).Scan(&record.ID, &config, &record.CreatedAt, &record.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	record.Config = json.RawMessage(config)
	return record, nil
}

// LinkExists checks whether an id is taken
func (r *Repository) LinkExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM valentine_links WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check link existence: %w", err)
	}
	return exists, nil
}

// DeleteLink removes a record by its id
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM valentine_links WHERE id = $1", id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// PurgeExpired deletes all records whose expiry has passed
func (r *Repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM valentine_links WHERE expires_at <= $1", now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired links: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return count, nil
}

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ensure Repository implements the interface
var _ repository.LinkRepository = (*Repository)(nil)
