package score

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	audit "healthcred/pkg/platform/audit"
	"healthcred/pkg/platform/audit/publisher"
	memorystore "healthcred/pkg/platform/audit/store/memory"
)

type ScoreServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	userID  id.UserID
}

func TestScoreServiceSuite(t *testing.T) {
	suite.Run(t, new(ScoreServiceSuite))
}

func (s *ScoreServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.service = New(s.store)
	s.userID = id.NewUserID()
}

func (s *ScoreServiceSuite) TestCurrent() {
	ctx := context.Background()

	s.Run("seeds the starting profile on first access", func() {
		snapshot, err := s.service.Current(ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(742, snapshot.Score)
		s.Equal(698, snapshot.PreviousScore)
		s.Equal(92, snapshot.Factors[FactorPrescriptionAdherence])
	})

	s.Run("rejects nil user", func() {
		_, err := s.service.Current(ctx, id.UserID{})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ScoreServiceSuite) TestApplyDelta() {
	ctx := context.Background()

	s.Run("moves the score by exactly the delta", func() {
		snapshot, err := s.service.ApplyDelta(ctx, s.userID, 8, FactorMedicalExpenseTracking)
		s.Require().NoError(err)
		s.Equal(750, snapshot.Score)
		s.Equal(742, snapshot.PreviousScore)
	})

	s.Run("clamps at the upper bound", func() {
		userID := id.NewUserID()
		snapshot, err := s.service.ApplyDelta(ctx, userID, 500, "")
		s.Require().NoError(err)
		s.Equal(MaxScore, snapshot.Score)
	})

	s.Run("clamps at the lower bound", func() {
		userID := id.NewUserID()
		snapshot, err := s.service.ApplyDelta(ctx, userID, -800, "")
		s.Require().NoError(err)
		s.Equal(MinScore, snapshot.Score)
	})

	s.Run("rejects deltas outside the representable range", func() {
		_, err := s.service.ApplyDelta(ctx, s.userID, 851, "")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDelta))
	})

	s.Run("positive delta nudges the tied factor", func() {
		userID := id.NewUserID()
		before, err := s.service.Current(ctx, userID)
		s.Require().NoError(err)

		after, err := s.service.ApplyDelta(ctx, userID, 8, FactorPrescriptionAdherence)
		s.Require().NoError(err)
		s.Equal(before.Factors[FactorPrescriptionAdherence]+1, after.Factors[FactorPrescriptionAdherence])
	})

	s.Run("emits a categorized score_updated audit event", func() {
		store := memorystore.New()
		service := New(NewInMemoryStore(), WithAuditPublisher(publisher.NewStore(store)))
		userID := id.NewUserID()

		_, err := service.ApplyDelta(ctx, userID, 8, FactorMedicalExpenseTracking)
		s.Require().NoError(err)

		events, err := store.ListByUser(ctx, userID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal("score_updated", events[0].Action)
		s.Equal(audit.CategoryCompliance, events[0].Category)
	})

	s.Run("increments the version on every update", func() {
		userID := id.NewUserID()
		first, err := s.service.ApplyDelta(ctx, userID, 1, "")
		s.Require().NoError(err)
		second, err := s.service.ApplyDelta(ctx, userID, 1, "")
		s.Require().NoError(err)
		s.Equal(first.Version+1, second.Version)
	})
}

func (s *ScoreServiceSuite) TestConcurrentApplyDeltaSerializes() {
	ctx := context.Background()
	userID := id.NewUserID()
	_, err := s.service.Current(ctx, userID)
	s.Require().NoError(err)

	const writers = 8
	done := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			_, err := s.service.ApplyDelta(ctx, userID, 1, "")
			done <- err
		}()
	}

	applied := 0
	for i := 0; i < writers; i++ {
		if err := <-done; err == nil {
			applied++
		} else {
			// Losing the CAS race repeatedly is the only allowed failure.
			s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		}
	}

	snapshot, err := s.service.Current(ctx, userID)
	s.Require().NoError(err)
	s.Equal(742+applied, snapshot.Score)
}
