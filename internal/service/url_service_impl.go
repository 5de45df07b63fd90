package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"urlpeek/internal/config"
	"urlpeek/internal/domain"
	"urlpeek/internal/repository"
	"urlpeek/pkg/logger"
)

// IDGenerator produces candidate short ids and recognizes their shape
type IDGenerator interface {
	Generate() (string, error)
	IsValid(id string) bool
}

// urlService implements the URLService interface
type urlService struct {
	repo        repository.URLRepository
	generator   IDGenerator
	baseURL     string
	maxAttempts int
	logger      *logger.Logger
	now         func() time.Time
}

// NewURLService creates a new URL service with dependencies injected
func NewURLService(
	repo repository.URLRepository,
	generator IDGenerator,
	cfg *config.Config,
	logger *logger.Logger,
) URLService {
	return &urlService{
		repo:        repo,
		generator:   generator,
		baseURL:     cfg.BaseURL,
		maxAttempts: cfg.MaxCreateAttempts,
		logger:      logger,
		now:         time.Now,
	}
}

// Shorten draws a short id and inserts the record, retrying on collision
// until maxAttempts ids have been rejected by the store
func (s *urlService) Shorten(ctx context.Context, originalURL string) (*domain.URL, error) {
	if originalURL == "" {
		return nil, domain.NewValidationError("URL is required")
	}

	// Millisecond precision round-trips through every store unchanged
	createdAt := s.now().UTC().Truncate(time.Millisecond)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		shortID, err := s.generator.Generate()
		if err != nil {
			return nil, domain.NewInternalError(err)
		}

		url := &domain.URL{
			ShortID:     shortID,
			OriginalURL: originalURL,
			ShortURL:    domain.ComposeShortURL(s.baseURL, shortID),
			Clicks:      0,
			CreatedAt:   createdAt,
		}

		err = s.repo.Create(ctx, url)
		if err == nil {
			s.logger.Info("URL shortened successfully",
				"short_id", shortID,
				"original_url", originalURL,
				"attempt", attempt,
			)
			return url, nil
		}

		if !errors.Is(err, domain.ErrShortIDTaken) {
			s.logger.Error("Failed to create URL", "error", err, "short_id", shortID)
			return nil, fmt.Errorf("create url: %w", err)
		}

		s.logger.Warn("Short id collision detected, retrying",
			"short_id", shortID,
			"attempt", attempt,
		)
	}

	return nil, fmt.Errorf("after %d attempts: %w", s.maxAttempts, domain.ErrGenerationExhausted)
}

// ResolveAndCount increments the click counter in the store and returns the target
func (s *urlService) ResolveAndCount(ctx context.Context, shortID string) (string, error) {
	if !s.generator.IsValid(shortID) {
		s.logger.Debug("Malformed short id", "short_id", shortID)
		return "", fmt.Errorf("resolve %s: %w", shortID, domain.ErrURLNotFound)
	}

	originalURL, err := s.repo.IncrementClicks(ctx, shortID)
	if err != nil {
		s.logLookupError("Failed to resolve URL", shortID, err)
		return "", fmt.Errorf("resolve %s: %w", shortID, err)
	}

	s.logger.Debug("URL accessed", "short_id", shortID)
	return originalURL, nil
}

// GetStats returns the stored record for shortID
func (s *urlService) GetStats(ctx context.Context, shortID string) (*domain.URL, error) {
	if !s.generator.IsValid(shortID) {
		s.logger.Debug("Malformed short id", "short_id", shortID)
		return nil, fmt.Errorf("stats %s: %w", shortID, domain.ErrURLNotFound)
	}

	url, err := s.repo.FindByShortID(ctx, shortID)
	if err != nil {
		s.logLookupError("Failed to read stats", shortID, err)
		return nil, fmt.Errorf("stats %s: %w", shortID, err)
	}

	return url, nil
}

func (s *urlService) logLookupError(msg, shortID string, err error) {
	if domain.IsInternal(err) {
		s.logger.Error(msg, "short_id", shortID, "error", err)
		return
	}
	if errors.Is(err, domain.ErrURLNotFound) {
		s.logger.Debug("Short id not found", "short_id", shortID)
	}
}
