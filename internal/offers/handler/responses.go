package handler

import (
	"time"

	"healthcred/internal/offers"
)

// MatchesResponse is the HTTP response for GET /offers/matches. Offers are
// grouped by category for display, preserving catalog order within each
// group.
type MatchesResponse struct {
	Score       int                           `json:"score"`
	Categories  map[string][]OfferEligibility `json:"categories"`
	EvaluatedAt time.Time                     `json:"evaluated_at"`
}

// OfferEligibility is one evaluated offer.
type OfferEligibility struct {
	ID            string       `json:"id"`
	Provider      string       `json:"provider"`
	Threshold     int          `json:"threshold"`
	Status        string       `json:"status"`
	ProgressRatio float64      `json:"progress_ratio"`
	Terms         offers.Terms `json:"terms"`
	Description   string       `json:"description"`
}

// FromResult converts a domain MatchResult to an HTTP response.
func FromResult(result *offers.MatchResult) *MatchesResponse {
	categories := make(map[string][]OfferEligibility, 3)
	for _, eval := range result.Evaluations {
		category := string(eval.Offer.Category)
		categories[category] = append(categories[category], OfferEligibility{
			ID:            string(eval.Offer.ID),
			Provider:      eval.Offer.Provider,
			Threshold:     eval.Offer.Threshold,
			Status:        string(eval.Status),
			ProgressRatio: eval.ProgressRatio,
			Terms:         eval.Offer.Terms,
			Description:   eval.Offer.Description,
		})
	}
	return &MatchesResponse{
		Score:       result.Score,
		Categories:  categories,
		EvaluatedAt: result.EvaluatedAt,
	}
}
