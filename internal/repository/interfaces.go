package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"valentinelink/internal/domain"
)

// Sentinel errors shared by all repository implementations.
var (
	// ErrNotFound indicates no record exists for the requested id.
	ErrNotFound = errors.New("short link not found")

	// ErrDuplicateID indicates the generated id collided with an existing
	// record. Callers should regenerate and retry.
	ErrDuplicateID = errors.New("short link id already exists")
)

// LinkRepository defines the interface for short link persistence
type LinkRepository interface {
	// CreateLink persists a new record under the given id. Returns
	// ErrDuplicateID when the id is already taken.
	CreateLink(ctx context.Context, id string, config json.RawMessage, createdAt, expiresAt time.Time) (*domain.ShortLinkRecord, error)

	// GetLink retrieves a record by its id. Expired-but-unpurged records are
	// returned like any other; expiry is enforced only by PurgeExpired.
	GetLink(ctx context.Context, id string) (*domain.ShortLinkRecord, error)

	// LinkExists checks whether an id is taken
	LinkExists(ctx context.Context, id string) (bool, error)

	// DeleteLink removes a record by its id
	DeleteLink(ctx context.Context, id string) error

	// PurgeExpired deletes all records whose expiry has passed at the given
	// time and returns how many were removed. Idempotent.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// Close closes the repository connection
	Close() error
}
