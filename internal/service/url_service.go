package service

import (
	"context"

	"urlpeek/internal/domain"
)

// URLService defines the mapping store operations
type URLService interface {
	// Shorten creates a new record for originalURL with a unique short id
	Shorten(ctx context.Context, originalURL string) (*domain.URL, error)

	// ResolveAndCount counts one click and returns the original URL
	ResolveAndCount(ctx context.Context, shortID string) (string, error)

	// GetStats returns the record without modifying it
	GetStats(ctx context.Context, shortID string) (*domain.URL, error)
}
