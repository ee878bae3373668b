package offers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"healthcred/internal/score"
	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	audit "healthcred/pkg/platform/audit"
	"healthcred/pkg/platform/audit/publisher"
	memorystore "healthcred/pkg/platform/audit/store/memory"
)

type OffersServiceSuite struct {
	suite.Suite
	scores  *score.Service
	auditMm *memorystore.Store
	service *Service
	userID  id.UserID
}

func TestOffersServiceSuite(t *testing.T) {
	suite.Run(t, new(OffersServiceSuite))
}

func (s *OffersServiceSuite) SetupTest() {
	s.scores = score.New(score.NewInMemoryStore())
	s.auditMm = memorystore.New()
	s.service = New(
		NewSeededStore(),
		s.scores,
		NewMatcher(DefaultPolicy()),
		WithAuditPublisher(publisher.NewStore(s.auditMm)),
	)
	s.userID = id.NewUserID()
}

func (s *OffersServiceSuite) TestMatchOffers() {
	ctx := context.Background()

	s.Run("rejects nil user", func() {
		_, err := s.service.MatchOffers(ctx, id.UserID{})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("seed profile qualifies for the full catalog", func() {
		result, err := s.service.MatchOffers(ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(742, result.Score)
		s.Len(result.Evaluations, 8)
		for _, eval := range result.Evaluations {
			s.Equal(StatusQualified, eval.Status)
		}
	})

	s.Run("evaluations come back in catalog order", func() {
		result, err := s.service.MatchOffers(ctx, s.userID)
		s.Require().NoError(err)
		catalog := SeedCatalog()
		for i := range catalog {
			s.Equal(catalog[i].ID, result.Evaluations[i].Offer.ID)
		}
	})

	s.Run("emits an offers_matched audit event", func() {
		_, err := s.service.MatchOffers(ctx, s.userID)
		s.Require().NoError(err)

		events, err := s.auditMm.ListByUser(ctx, s.userID)
		s.Require().NoError(err)
		s.NotEmpty(events)
		s.Equal("offers_matched", events[len(events)-1].Action)
		s.Equal(audit.CategoryOperations, events[len(events)-1].Category)
	})
}

func (s *OffersServiceSuite) TestEmptyCatalog() {
	ctx := context.Background()
	empty, err := NewInMemoryStore(nil)
	s.Require().NoError(err)

	s.Run("lenient mode returns an empty result", func() {
		service := New(empty, s.scores, NewMatcher(DefaultPolicy()))
		result, err := service.MatchOffers(ctx, s.userID)
		s.Require().NoError(err)
		s.Empty(result.Evaluations)
	})

	s.Run("strict mode returns not found", func() {
		service := New(empty, s.scores, NewMatcher(DefaultPolicy()), WithRequireOffers())
		_, err := service.MatchOffers(ctx, s.userID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
