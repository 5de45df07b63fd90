package repository

import (
	"context"

	"urlpeek/internal/domain"
)

// URLRepository is the persistence side of the mapping store.
// Implementations must enforce short id uniqueness on Create and apply
// IncrementClicks as one atomic store operation, never read-modify-write.
type URLRepository interface {
	// Create inserts a fully populated record.
	// Returns domain.ErrShortIDTaken if the short id already exists; nothing is written in that case.
	Create(ctx context.Context, url *domain.URL) error

	// IncrementClicks adds exactly one click and returns the original URL.
	// Returns domain.ErrURLNotFound if the short id doesn't exist.
	IncrementClicks(ctx context.Context, shortID string) (string, error)

	// FindByShortID retrieves a record without modifying it
	FindByShortID(ctx context.Context, shortID string) (*domain.URL, error)

	// Close releases the underlying connection
	Close() error
}
