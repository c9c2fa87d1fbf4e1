package shortener

import (
	"context"
)

// Generator defines the interface for generating short link identifiers
type Generator interface {
	// GenerateID generates a fresh short identifier. Generated ids are not
	// guaranteed unique across calls; callers must retry on storage-level
	// collision.
	GenerateID(ctx context.Context) (string, error)

	// Type returns the type identifier of the generator
	Type() string

	// Close performs cleanup when the generator is no longer needed
	Close() error
}

// Config holds configuration for id generators
type Config struct {
	Length int `json:"length"` // Number of characters in a generated id
}

// GeneratorType constants
const (
	TypeRandom = "random"
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Length: 6,
	}
}
