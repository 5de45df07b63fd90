package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"urlpeek/internal/domain"
	"urlpeek/internal/repository"
)

func newMockRepository(t *testing.T) (repository.URLRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewURLRepository(db), mock
}

func newRecord() *domain.URL {
	return &domain.URL{
		ShortID:     "abc123",
		OriginalURL: "https://example.com",
		ShortURL:    "https://urlpeek.vercel.app/rupeek/abc123",
		CreatedAt:   time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO "urls"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	url := newRecord()
	err := repo.Create(context.Background(), url)

	require.NoError(t, err)
	assert.Equal(t, uint(1), url.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateShortID(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO "urls"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), newRecord())

	assert.ErrorIs(t, err, domain.ErrShortIDTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StoreFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO "urls"`).
		WillReturnError(errors.New("connection reset by peer"))

	err := repo.Create(context.Background(), newRecord())

	assert.True(t, domain.IsInternal(err))
	assert.NotErrorIs(t, err, domain.ErrShortIDTaken)
}

func TestIncrementClicks_Found(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`UPDATE "urls" SET "clicks"=clicks \+ \$1 WHERE short_id = \$2 RETURNING "original_url"`).
		WithArgs(1, "abc123").
		WillReturnRows(sqlmock.NewRows([]string{"original_url"}).AddRow("https://example.com"))

	originalURL, err := repo.IncrementClicks(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com", originalURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementClicks_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`UPDATE "urls" SET "clicks"`).
		WillReturnRows(sqlmock.NewRows([]string{"original_url"}))

	_, err := repo.IncrementClicks(context.Background(), "unknown123")

	assert.ErrorIs(t, err, domain.ErrURLNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementClicks_StoreFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`UPDATE "urls" SET "clicks"`).
		WillReturnError(errors.New("deadlock detected"))

	_, err := repo.IncrementClicks(context.Background(), "abc123")

	assert.True(t, domain.IsInternal(err))
}

func TestFindByShortID(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "urls" WHERE short_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "short_id", "original_url", "short_url", "clicks", "created_at"}).
			AddRow(1, "abc123", "https://example.com", "https://urlpeek.vercel.app/rupeek/abc123", 4, created))

	url, err := repo.FindByShortID(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, "abc123", url.ShortID)
	assert.Equal(t, "https://example.com", url.OriginalURL)
	assert.Equal(t, "https://urlpeek.vercel.app/rupeek/abc123", url.ShortURL)
	assert.Equal(t, int64(4), url.Clicks)
	assert.True(t, created.Equal(url.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByShortID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "urls"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "short_id", "original_url", "short_url", "clicks", "created_at"}))

	_, err := repo.FindByShortID(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, domain.ErrURLNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23502"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
