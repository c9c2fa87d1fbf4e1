package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"valentinelink/internal/domain"
	"valentinelink/internal/repository"
)

// Repository implements repository.LinkRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(databasePath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better performance
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.runMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// CreateLink persists a new short link record
func (r *Repository) CreateLink(ctx context.Context, id string, config json.RawMessage, createdAt, expiresAt time.Time) (*domain.ShortLinkRecord, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO valentine_links (id, config, created_at, expires_at) VALUES (?, ?, ?, ?)",
		id, string(config), createdAt.UTC(), expiresAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
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

// GetLink retrieves a record by its id. Reads deliberately do not filter on
// expires_at: an expired record stays resolvable until a purge runs.
func (r *Repository) GetLink(ctx context.Context, id string) (*domain.ShortLinkRecord, error) {
	record := &domain.ShortLinkRecord{}
	var config string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, config, created_at, expires_at FROM valentine_links WHERE id = ?",
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
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM valentine_links WHERE id = ?", id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check link existence: %w", err)
	}
	return count > 0, nil
}

// DeleteLink removes a record by its id
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM valentine_links WHERE id = ?", id,
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
		"DELETE FROM valentine_links WHERE expires_at <= ?", now.UTC(),
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

// isUniqueViolation detects a primary key collision from the sqlite driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ensure Repository implements the interface
var _ repository.LinkRepository = (*Repository)(nil)
