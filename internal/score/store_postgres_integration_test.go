//go:build integration

package score_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"healthcred/internal/score"
	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/sentinel"
	"healthcred/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *score.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = score.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "health_scores"))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	userID := id.NewUserID()
	seed := score.SeedSnapshot(userID)
	s.Require().NoError(s.store.Create(ctx, seed))

	found, err := s.store.Find(ctx, userID)
	s.Require().NoError(err)
	s.Equal(seed.Score, found.Score)
	s.Equal(seed.PreviousScore, found.PreviousScore)
	s.Equal(seed.Factors, found.Factors)
	s.Equal(seed.Version, found.Version)
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.Find(context.Background(), id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestStaleVersionConflicts() {
	ctx := context.Background()
	userID := id.NewUserID()
	seed := score.SeedSnapshot(userID)
	s.Require().NoError(s.store.Create(ctx, seed))

	next := seed.Clone()
	next.Score = 750
	next.Version = 2
	s.Require().NoError(s.store.Update(ctx, next, 1))

	stale := seed.Clone()
	stale.Score = 700
	stale.Version = 2
	s.ErrorIs(s.store.Update(ctx, stale, 1), sentinel.ErrConflict)
}

// TestConcurrentCASWrites verifies that the version column serializes writers:
// with N racing updates carrying the same expected version, exactly one wins.
func (s *PostgresStoreSuite) TestConcurrentCASWrites() {
	ctx := context.Background()
	userID := id.NewUserID()
	seed := score.SeedSnapshot(userID)
	s.Require().NoError(s.store.Create(ctx, seed))

	const goroutines = 20
	var wg sync.WaitGroup
	var wins atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := seed.Clone()
			next.Score = 743
			next.Version = 2
			if err := s.store.Update(ctx, next, 1); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}
