package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urlpeek/internal/domain"
)

func newURL(shortID string) *domain.URL {
	return &domain.URL{
		ShortID:     shortID,
		OriginalURL: "https://example.com/" + shortID,
		ShortURL:    domain.ComposeShortURL("https://urlpeek.vercel.app", shortID),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestCreateAndFind(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	url := newURL("abc123")
	require.NoError(t, repo.Create(ctx, url))

	found, err := repo.FindByShortID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, url.OriginalURL, found.OriginalURL)
	assert.Equal(t, url.ShortURL, found.ShortURL)
	assert.Equal(t, int64(0), found.Clicks)
	assert.Equal(t, url.CreatedAt, found.CreatedAt)

	// the stored record is a copy
	found.OriginalURL = "https://mutated.example"
	again, err := repo.FindByShortID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/abc123", again.OriginalURL)
}

func TestCreate_DuplicateKeepsFirst(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newURL("abc123")))

	dup := newURL("abc123")
	dup.OriginalURL = "https://other.example"
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrShortIDTaken)

	found, err := repo.FindByShortID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/abc123", found.OriginalURL)
}

func TestCreate_ConcurrentSameIDExactlyOneWins(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	const n = 50
	var wins, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := newURL("same01")
			url.OriginalURL = fmt.Sprintf("https://example.com/%d", i)
			switch err := repo.Create(ctx, url); err {
			case nil:
				atomic.AddInt32(&wins, 1)
			case domain.ErrShortIDTaken:
				atomic.AddInt32(&conflicts, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(n-1), conflicts)
}

func TestIncrementClicks(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newURL("abc123")))

	for _, n := range []int{1, 10, 100} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			before, err := repo.FindByShortID(ctx, "abc123")
			require.NoError(t, err)

			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					originalURL, err := repo.IncrementClicks(ctx, "abc123")
					assert.NoError(t, err)
					assert.Equal(t, "https://example.com/abc123", originalURL)
				}()
			}
			wg.Wait()

			after, err := repo.FindByShortID(ctx, "abc123")
			require.NoError(t, err)
			assert.Equal(t, before.Clicks+int64(n), after.Clicks)
		})
	}
}

func TestUnknownShortID(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()

	_, err := repo.IncrementClicks(ctx, "unknown123")
	assert.ErrorIs(t, err, domain.ErrURLNotFound)

	_, err = repo.FindByShortID(ctx, "unknown123")
	assert.ErrorIs(t, err, domain.ErrURLNotFound)
}

func TestCanceledContext(t *testing.T) {
	repo := NewURLRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, newURL("abc123"))
	assert.True(t, domain.IsInternal(err))

	_, err = repo.FindByShortID(context.Background(), "abc123")
	assert.ErrorIs(t, err, domain.ErrURLNotFound)
}

func TestClose(t *testing.T) {
	repo := NewURLRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newURL("abc123")))

	require.NoError(t, repo.Close())

	_, err := repo.FindByShortID(ctx, "abc123")
	assert.ErrorIs(t, err, domain.ErrURLNotFound)
}
