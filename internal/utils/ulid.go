package utils

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator produces unique identifiers whose lexicographic order follows creation order.
type IDGenerator interface {
	NewID(at time.Time) (string, error)
}

// ULIDGenerator issues ULIDs from cryptographically secure, monotonic entropy.
// IDs generated within the same millisecond still sort in generation order.
// It is safe for concurrent use.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// NewID returns a ULID timestamped with at.
func (g *ULIDGenerator) NewID(at time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(at), g.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}
