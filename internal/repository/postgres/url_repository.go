package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urlpeek/internal/domain"
	"urlpeek/internal/repository"
)

const uniqueViolationErrCode = "23505"

// urlRepository implements the URLRepository interface for PostgreSQL
type urlRepository struct {
	db *gorm.DB
}

// NewURLRepository creates a new PostgreSQL URL repository
func NewURLRepository(db *gorm.DB) repository.URLRepository {
	return &urlRepository{db: db}
}

// Create inserts a new URL record.
// The unique index on short_id rejects duplicates inside the INSERT itself.
func (r *urlRepository) Create(ctx context.Context, url *domain.URL) error {
	result := r.db.WithContext(ctx).Create(url)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.ErrShortIDTaken
		}
		return domain.NewInternalError(result.Error)
	}
	return nil
}

// IncrementClicks bumps the counter and reads the target in one statement:
// UPDATE urls SET clicks = clicks + 1 WHERE short_id = ? RETURNING original_url
func (r *urlRepository) IncrementClicks(ctx context.Context, shortID string) (string, error) {
	var url domain.URL

	result := r.db.WithContext(ctx).
		Model(&url).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "original_url"}}}).
		Where("short_id = ?", shortID).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))

	if result.Error != nil {
		return "", domain.NewInternalError(result.Error)
	}

	if result.RowsAffected == 0 {
		return "", domain.ErrURLNotFound
	}

	return url.OriginalURL, nil
}

// FindByShortID retrieves a URL by its short id
func (r *urlRepository) FindByShortID(ctx context.Context, shortID string) (*domain.URL, error) {
	var url domain.URL

	result := r.db.WithContext(ctx).
		Where("short_id = ?", shortID).
		Take(&url)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrURLNotFound
		}
		return nil, domain.NewInternalError(result.Error)
	}

	return &url, nil
}

// Close closes the underlying sql.DB
func (r *urlRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation covers both gorm's translated error and a raw pgx error
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErrCode
}
