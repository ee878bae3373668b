package handler

import (
	"time"

	"healthcred/internal/score"
)

// ScoreResponse is the HTTP response for GET /score.
type ScoreResponse struct {
	Score         int            `json:"score"`
	PreviousScore int            `json:"previous_score"`
	Change        int            `json:"change"`
	Factors       map[string]int `json:"factors"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// FromSnapshot converts a domain Snapshot to an HTTP response.
func FromSnapshot(snapshot *score.Snapshot) *ScoreResponse {
	factors := make(map[string]int, len(snapshot.Factors))
	for name, pct := range snapshot.Factors {
		factors[string(name)] = pct
	}
	return &ScoreResponse{
		Score:         snapshot.Score,
		PreviousScore: snapshot.PreviousScore,
		Change:        snapshot.Score - snapshot.PreviousScore,
		Factors:       factors,
		UpdatedAt:     snapshot.UpdatedAt,
	}
}
