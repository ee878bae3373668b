package offers

// Status is the derived eligibility of one offer for a given score.
type Status string

const (
	StatusQualified    Status = "qualified"
	StatusReview       Status = "review"
	StatusNotQualified Status = "not-qualified"
)

// Policy selects how the threshold comparison is applied.
//
// The reference UI marked every offer "qualified" regardless of threshold,
// which its own progress bar contradicted. Strict is the default here: the
// literal threshold test, with a review band below the threshold for the
// yellow "review" badge the UI defined but never reached. Permissive
// preserves the original always-qualified behavior for compatibility.
type Policy struct {
	// ReviewBand is how far below the threshold a score may sit and still
	// earn "review" instead of "not-qualified". Zero disables the band.
	ReviewBand int
	// Permissive marks every offer "qualified" regardless of threshold.
	Permissive bool
	// ClampProgress caps ProgressRatio at 1.0. Off by default: the
	// reference UI displays ratios above 100%.
	ClampProgress bool
}

// DefaultPolicy is the strict threshold test with the standard review band.
func DefaultPolicy() Policy {
	return Policy{ReviewBand: 50}
}

// Eligibility annotates one offer with its derived status and how close the
// score is to the threshold.
type Eligibility struct {
	Offer         Offer
	Status        Status
	ProgressRatio float64
}

// Matcher derives eligibility from (score, catalog). It holds no state
// beyond the policy and is safe for concurrent use.
type Matcher struct {
	policy Policy
}

// NewMatcher constructs a matcher with the given policy.
func NewMatcher(policy Policy) *Matcher {
	return &Matcher{policy: policy}
}

// Match evaluates every offer in catalog order. It is a pure function of its
// inputs: identical (score, catalog) always yields identical output, and the
// input slice is never mutated.
func (m *Matcher) Match(score int, catalog []Offer) []Eligibility {
	out := make([]Eligibility, 0, len(catalog))
	for _, offer := range catalog {
		out = append(out, Eligibility{
			Offer:         offer,
			Status:        m.status(score, offer.Threshold),
			ProgressRatio: m.progress(score, offer.Threshold),
		})
	}
	return out
}

func (m *Matcher) status(score, threshold int) Status {
	if m.policy.Permissive {
		return StatusQualified
	}
	if score >= threshold {
		return StatusQualified
	}
	if m.policy.ReviewBand > 0 && score >= threshold-m.policy.ReviewBand {
		return StatusReview
	}
	return StatusNotQualified
}

func (m *Matcher) progress(score, threshold int) float64 {
	if threshold <= 0 {
		return 1
	}
	ratio := float64(score) / float64(threshold)
	if m.policy.ClampProgress && ratio > 1 {
		return 1
	}
	return ratio
}
