// Package score owns the HealthScore: a 0-850 integer derived from verified
// medical activity, with a factor breakdown explaining it. Only the intake
// pipeline mutates the score; the offer matcher and presentation layer read
// snapshots.
package score

import (
	"time"

	id "healthcred/pkg/domain"
)

// Score bounds. The scale mirrors consumer credit scoring.
const (
	MinScore = 0
	MaxScore = 850
)

// Factor names one component of the score breakdown. Values are percentages
// in [0,100].
type Factor string

const (
	FactorMedicalExpenseTracking Factor = "medical-expense-tracking"
	FactorPrescriptionAdherence  Factor = "prescription-adherence"
	FactorTrust                  Factor = "trust"
	FactorConsistency            Factor = "consistency"
)

// Factors lists every breakdown component in display order.
func Factors() []Factor {
	return []Factor{
		FactorMedicalExpenseTracking,
		FactorPrescriptionAdherence,
		FactorTrust,
		FactorConsistency,
	}
}

// Snapshot is one user's score state at a point in time. PreviousScore keeps
// the prior value for improvement reporting. Version serializes writers via
// compare-and-swap; concurrent updates to the same user never interleave.
type Snapshot struct {
	UserID        id.UserID
	Score         int
	PreviousScore int
	Factors       map[Factor]int
	Version       int64
	UpdatedAt     time.Time
}

// Clone returns a deep copy so callers can hand snapshots out without
// aliasing the factor map.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Factors = make(map[Factor]int, len(s.Factors))
	for k, v := range s.Factors {
		out.Factors[k] = v
	}
	return &out
}

// SeedSnapshot is the profile a user starts from. The values match the
// reference demo account: score 742 up from 698, with expense tracking 85,
// adherence 92, trust 78, consistency 88.
func SeedSnapshot(userID id.UserID) *Snapshot {
	return &Snapshot{
		UserID:        userID,
		Score:         742,
		PreviousScore: 698,
		Factors: map[Factor]int{
			FactorMedicalExpenseTracking: 85,
			FactorPrescriptionAdherence:  92,
			FactorTrust:                  78,
			FactorConsistency:            88,
		},
		Version:   1,
		UpdatedAt: time.Now(),
	}
}

func clampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
