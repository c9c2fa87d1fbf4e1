package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"valentinelink/internal/domain"
)

// LinkRepository is a mock implementation of repository.LinkRepository
type LinkRepository struct {
	mock.Mock
}

// CreateLink persists a new short link record
func (m *LinkRepository) CreateLink(ctx context.Context, id string, config json.RawMessage, createdAt, expiresAt time.Time) (*domain.ShortLinkRecord, error) {
	args := m.Called(ctx, id, config, createdAt, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLinkRecord), args.Error(1)
}

// GetLink retrieves a record by its id
func (m *LinkRepository) GetLink(ctx context.Context, id string) (*domain.ShortLinkRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLinkRecord), args.Error(1)
}

// LinkExists checks whether an id is taken
func (m *LinkRepository) LinkExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// DeleteLink removes a record by its id
func (m *LinkRepository) DeleteLink(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// PurgeExpired deletes all records whose expiry has passed
func (m *LinkRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// Close closes the repository connection
func (m *LinkRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
