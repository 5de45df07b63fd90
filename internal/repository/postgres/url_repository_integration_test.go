package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"urlpeek/internal/domain"
	"urlpeek/internal/repository"
	"urlpeek/pkg/logger"
)

type PostgresRepositoryTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	repo      repository.URLRepository
}

func TestPostgresRepositoryTestSuite(t *testing.T) {
	if testing.Short() || os.Getenv("URLPEEK_INTEGRATION") == "" {
		t.Skip("Skipping integration tests; set URLPEEK_INTEGRATION=1 to run")
	}
	suite.Run(t, new(PostgresRepositoryTestSuite))
}

func (s *PostgresRepositoryTestSuite) SetupSuite() {
	ctx := context.Background()
	log := logger.NewNop()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("urlpeek_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.Require().NoError(Migrate(dsn, log))

	s.db, err = Connect(ctx, dsn, ConnectOptions{MaxRetries: 3, RetryDelay: time.Second}, log)
	s.Require().NoError(err)
	s.repo = NewURLRepository(s.db)
}

func (s *PostgresRepositoryTestSuite) TearDownSuite() {
	if s.repo != nil {
		_ = s.repo.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM urls")
}

func (s *PostgresRepositoryTestSuite) create(shortID string) *domain.URL {
	url := &domain.URL{
		ShortID:     shortID,
		OriginalURL: "https://example.com/" + shortID,
		ShortURL:    domain.ComposeShortURL("http://localhost:3000", shortID),
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	s.Require().NoError(s.repo.Create(context.Background(), url))
	return url
}

func (s *PostgresRepositoryTestSuite) TestCreateAndFind() {
	created := s.create("pg0001")

	found, err := s.repo.FindByShortID(context.Background(), "pg0001")
	s.Require().NoError(err)

	s.Equal(created.OriginalURL, found.OriginalURL)
	s.Equal(created.ShortURL, found.ShortURL)
	s.Equal(int64(0), found.Clicks)
	s.True(created.CreatedAt.Equal(found.CreatedAt))
}

func (s *PostgresRepositoryTestSuite) TestCreate_DuplicateRejected() {
	s.create("pg0002")

	dup := &domain.URL{ShortID: "pg0002", OriginalURL: "https://other.example", ShortURL: "x", CreatedAt: time.Now()}
	err := s.repo.Create(context.Background(), dup)

	s.ErrorIs(err, domain.ErrShortIDTaken)

	found, err := s.repo.FindByShortID(context.Background(), "pg0002")
	s.Require().NoError(err)
	s.Equal("https://example.com/pg0002", found.OriginalURL)
}

func (s *PostgresRepositoryTestSuite) TestIncrementClicks_Concurrent() {
	s.create("pg0003")

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.IncrementClicks(context.Background(), "pg0003")
			assert.NoError(s.T(), err)
		}()
	}
	wg.Wait()

	found, err := s.repo.FindByShortID(context.Background(), "pg0003")
	require.NoError(s.T(), err)
	s.Equal(int64(n), found.Clicks)
}

func (s *PostgresRepositoryTestSuite) TestIncrementClicks_Unknown() {
	_, err := s.repo.IncrementClicks(context.Background(), "nope00")
	s.ErrorIs(err, domain.ErrURLNotFound)
}
