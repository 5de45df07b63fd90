package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"urlpeek/internal/domain"
	"urlpeek/internal/repository"
)

// Hash fields of a record key
const (
	fieldShortID     = "short_id"
	fieldOriginalURL = "original_url"
	fieldShortURL    = "short_url"
	fieldClicks      = "clicks"
	fieldCreatedAt   = "created_at"
)

// createScript writes the whole hash only if the key is absent
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'short_id', ARGV[1], 'original_url', ARGV[2], 'short_url', ARGV[3], 'clicks', 0, 'created_at', ARGV[4])
return 1
`)

// incrementScript guards HINCRBY with EXISTS so unknown ids never get a partial hash
var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('HINCRBY', KEYS[1], 'clicks', 1)
return redis.call('HGET', KEYS[1], 'original_url')
`)

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// urlRepository implements the URLRepository interface using Redis hashes
type urlRepository struct {
	client *redis.Client
}

// NewURLRepository creates a new Redis-backed URL repository
// Returns error if connection fails
func NewURLRepository(ctx context.Context, opts Options) (repository.URLRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10, // Connection pool size
		MinIdleConns: 5,  // Minimum idle connections
	})

	// Test connection
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewURLRepositoryWithClient(client), nil
}

// NewURLRepositoryWithClient wraps an existing client
func NewURLRepositoryWithClient(client *redis.Client) repository.URLRepository {
	return &urlRepository{client: client}
}

// Create writes the record atomically; an existing key means the short id is taken
func (r *urlRepository) Create(ctx context.Context, url *domain.URL) error {
	created, err := createScript.Run(ctx, r.client,
		[]string{r.prefixKey(url.ShortID)},
		url.ShortID,
		url.OriginalURL,
		url.ShortURL,
		url.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("redis create failed: %w", err))
	}

	if created == 0 {
		return domain.ErrShortIDTaken
	}
	return nil
}

// IncrementClicks runs HINCRBY and HGET in one script call
func (r *urlRepository) IncrementClicks(ctx context.Context, shortID string) (string, error) {
	originalURL, err := incrementScript.Run(ctx, r.client, []string{r.prefixKey(shortID)}).Text()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrURLNotFound
	}
	if err != nil {
		return "", domain.NewInternalError(fmt.Errorf("redis increment failed: %w", err))
	}

	return originalURL, nil
}

// FindByShortID reads the whole hash
func (r *urlRepository) FindByShortID(ctx context.Context, shortID string) (*domain.URL, error) {
	fields, err := r.client.HGetAll(ctx, r.prefixKey(shortID)).Result()
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("redis hgetall failed: %w", err))
	}

	if len(fields) == 0 {
		return nil, domain.ErrURLNotFound
	}

	url, err := decodeURL(fields)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return url, nil
}

// Close closes the Redis connection
func (r *urlRepository) Close() error {
	return r.client.Close()
}

// prefixKey adds a namespace prefix to avoid key collisions
func (r *urlRepository) prefixKey(shortID string) string {
	return fmt.Sprintf("urlpeek:url:%s", shortID)
}

func decodeURL(fields map[string]string) (*domain.URL, error) {
	clicks, err := strconv.ParseInt(fields[fieldClicks], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode clicks: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}

	return &domain.URL{
		ShortID:     fields[fieldShortID],
		OriginalURL: fields[fieldOriginalURL],
		ShortURL:    fields[fieldShortURL],
		Clicks:      clicks,
		CreatedAt:   createdAt,
	}, nil
}
