package memory

import (
	"context"
	"errors"

	gocache "github.com/patrickmn/go-cache"

	"urlpeek/internal/domain"
	"urlpeek/internal/repository"
)

// urlRepository keeps records in process memory.
// Each short id owns two keys: "clicks:<id>" holding an int64 counter and
// "url:<id>" holding the immutable record fields. The counter key is added
// first, so any visible record already has a counter.
type urlRepository struct {
	items *gocache.Cache
}

// NewURLRepository creates an empty in-memory repository
func NewURLRepository() repository.URLRepository {
	return &urlRepository{
		items: gocache.New(gocache.NoExpiration, 0),
	}
}

func recordKey(shortID string) string  { return "url:" + shortID }
func counterKey(shortID string) string { return "clicks:" + shortID }

// Create stores a copy of url; Add fails if the short id is already taken
func (r *urlRepository) Create(ctx context.Context, url *domain.URL) error {
	if err := ctx.Err(); err != nil {
		return domain.NewInternalError(err)
	}

	if err := r.items.Add(counterKey(url.ShortID), int64(0), gocache.NoExpiration); err != nil {
		return domain.ErrShortIDTaken
	}

	if err := r.items.Add(recordKey(url.ShortID), *url, gocache.NoExpiration); err != nil {
		// unreachable while the counter key guards the record key
		return domain.NewInternalError(err)
	}

	return nil
}

// IncrementClicks bumps the counter under go-cache's lock and returns the original URL
func (r *urlRepository) IncrementClicks(ctx context.Context, shortID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewInternalError(err)
	}

	record, ok := r.record(shortID)
	if !ok {
		return "", domain.ErrURLNotFound
	}

	if _, err := r.items.IncrementInt64(counterKey(shortID), 1); err != nil {
		return "", domain.NewInternalError(err)
	}

	return record.OriginalURL, nil
}

// FindByShortID returns a copy of the record with the current click count
func (r *urlRepository) FindByShortID(ctx context.Context, shortID string) (*domain.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewInternalError(err)
	}

	record, ok := r.record(shortID)
	if !ok {
		return nil, domain.ErrURLNotFound
	}

	clicks, ok := r.items.Get(counterKey(shortID))
	if !ok {
		return nil, domain.NewInternalError(errors.New("click counter missing for " + shortID))
	}
	record.Clicks = clicks.(int64)

	return &record, nil
}

// Close drops every record
func (r *urlRepository) Close() error {
	r.items.Flush()
	return nil
}

func (r *urlRepository) record(shortID string) (domain.URL, bool) {
	value, ok := r.items.Get(recordKey(shortID))
	if !ok {
		return domain.URL{}, false
	}
	return value.(domain.URL), true
}
