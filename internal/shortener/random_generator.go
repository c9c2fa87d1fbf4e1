package shortener

import (
	"context"
	"crypto/rand"
	"fmt"
)

// urlAlphabet is the 64-character URL-safe alphabet, matching the identifier
// space of the links this service replaces. 6 characters give 64^6 (~68
// billion) possible ids; collisions are improbable but handled by retry at
// the storage layer, never assumed impossible.
const urlAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// RandomGenerator produces fixed-length identifiers from crypto/rand.
// It is stateless and safe for concurrent use.
type RandomGenerator struct {
	length int
}

// NewRandomGenerator creates a random id generator producing ids of the
// configured length.
func NewRandomGenerator(config Config) (*RandomGenerator, error) {
	if config.Length <= 0 {
		return nil, fmt.Errorf("id length must be positive, got %d", config.Length)
	}
	return &RandomGenerator{length: config.Length}, nil
}

// GenerateID generates a fresh identifier.
func (g *RandomGenerator) GenerateID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	buf := make([]byte, g.length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	// The alphabet has exactly 64 entries, so masking the low 6 bits maps
	// each byte uniformly onto it.
	for i, b := range buf {
		buf[i] = urlAlphabet[b&0x3F]
	}

	return string(buf), nil
}

// Type returns the generator type
func (g *RandomGenerator) Type() string {
	return TypeRandom
}

// Close performs cleanup
func (g *RandomGenerator) Close() error {
	return nil
}

// Ensure RandomGenerator implements Generator interface
var _ Generator = (*RandomGenerator)(nil)
