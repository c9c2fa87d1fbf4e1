package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"valentinelink/internal/domain"
	"valentinelink/internal/repository"
	"valentinelink/internal/shortener"
)

// Custom errors for the service layer
var (
	ErrInvalidConfig = errors.New("invalid configuration payload")
	ErrMissingID     = errors.New("missing id parameter")
	ErrNotFound      = errors.New("short link not found")
)

// maxIDAttempts bounds the collision-retry loop on id generation. With a
// 64^6 id space a single retry is already rare; exhausting five says the
// store is in trouble, not the generator.
const maxIDAttempts = 5

// linkService implements LinkService interface
type linkService struct {
	repo      repository.LinkRepository
	generator shortener.Generator
	now       func() time.Time
}

// NewLinkService creates a new short link service
func NewLinkService(repo repository.LinkRepository, generator shortener.Generator) LinkService {
	return &linkService{
		repo:      repo,
		generator: generator,
		now:       time.Now,
	}
}

// CreateLink parses the payload into a configuration, validates it and
// persists it under a freshly generated identifier.
func (s *linkService) CreateLink(ctx context.Context, payload json.RawMessage) (*domain.CreateLinkResponse, error) {
	var cfg domain.ValentineConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// Store the normalized form so resolution returns exactly what was
	// accepted, blank paragraphs and all defaults applied.
	config, err := json.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	createdAt := s.now()
	expiresAt := createdAt.Add(domain.LinkTTL)

	// Id collisions are improbable but possible; regenerate and retry
	// instead of failing the creation outright.
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.generator.GenerateID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate id: %w", err)
		}

		record, err := s.repo.CreateLink(ctx, id, config, createdAt, expiresAt)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateID) {
				continue
			}
			return nil, fmt.Errorf("failed to store link: %w", err)
		}

		return &domain.CreateLinkResponse{ID: record.ID}, nil
	}

	return nil, fmt.Errorf("failed to store link: exhausted %d id generation attempts", maxIDAttempts)
}

// ResolveLink resolves a short identifier back to its configuration. Expired
// records resolve like any other until a purge removes them.
func (s *linkService) ResolveLink(ctx context.Context, id string) (*domain.ValentineConfig, error) {
	record, err := s.GetLinkRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	var cfg domain.ValentineConfig
	if err := json.Unmarshal(record.Config, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse stored config for %s: %w", id, err)
	}

	return &cfg, nil
}

// GetLinkRecord retrieves the full stored record for an id
func (s *linkService) GetLinkRecord(ctx context.Context, id string) (*domain.ShortLinkRecord, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	record, err := s.repo.GetLink(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return record, nil
}

// PurgeExpired removes all records past their TTL
func (s *linkService) PurgeExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired links: %w", err)
	}
	return count, nil
}

// Close closes the service and its dependencies
func (s *linkService) Close() error {
	if err := s.generator.Close(); err != nil {
		return fmt.Errorf("failed to close generator: %w", err)
	}
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("failed to close repository: %w", err)
	}
	return nil
}

// Ensure linkService implements LinkService interface
var _ LinkService = (*linkService)(nil)
