package service

import (
	"context"
	"encoding/json"

	"valentinelink/internal/domain"
)

// LinkService defines the interface for short link operations
type LinkService interface {
	// CreateLink parses and validates a configuration payload, stores it and
	// returns the generated short identifier
	CreateLink(ctx context.Context, payload json.RawMessage) (*domain.CreateLinkResponse, error)

	// ResolveLink resolves a short identifier back to its configuration
	ResolveLink(ctx context.Context, id string) (*domain.ValentineConfig, error)

	// GetLinkRecord retrieves the full stored record for an id
	GetLinkRecord(ctx context.Context, id string) (*domain.ShortLinkRecord, error)

	// PurgeExpired removes all records past their TTL and reports how many
	PurgeExpired(ctx context.Context) (int64, error)

	// Close closes the service and its dependencies
	Close() error
}
