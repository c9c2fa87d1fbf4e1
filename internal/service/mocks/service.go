package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"valentinelink/internal/domain"
)

// LinkService is a mock implementation of service.LinkService
type LinkService struct {
	mock.Mock
}

// CreateLink parses, validates and stores a configuration payload
func (m *LinkService) CreateLink(ctx context.Context, payload json.RawMessage) (*domain.CreateLinkResponse, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateLinkResponse), args.Error(1)
}

// ResolveLink resolves a short identifier back to its configuration
func (m *LinkService) ResolveLink(ctx context.Context, id string) (*domain.ValentineConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValentineConfig), args.Error(1)
}

// GetLinkRecord retrieves the full stored record for an id
func (m *LinkService) GetLinkRecord(ctx context.Context, id string) (*domain.ShortLinkRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortLinkRecord), args.Error(1)
}

// PurgeExpired removes all records past their TTL
func (m *LinkService) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Close closes the service and its dependencies
func (m *LinkService) Close() error {
	args := m.Called()
	return args.Error(0)
}
