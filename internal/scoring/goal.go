package scoring

import (
	"math"

	"github.com/jwaldner/callwriter/internal/models"
)

// Thresholds is a weekly/bi-weekly minimum-return gate pair, expressed as
// fractions of the spot price (0.0025 = 0.25%).
type Thresholds struct {
	Weekly   float64
	Biweekly float64
}

// The two deployed gate presets. Which pair applies is a product decision,
// so both ship and config picks one (see config.ScoringConfig.Profile).
var (
	StandardThresholds = Thresholds{Weekly: 0.001, Biweekly: 0.002}
	StrictThresholds   = Thresholds{Weekly: 0.0025, Biweekly: 0.005}
)

const (
	weeklyMaxDays   = 8
	biweeklyMaxDays = 16

	// Epsilon keeps the reward/risk ratio finite at zero probability.
	probabilityEpsilon = 0.001

	// Contracts likelier than this (percentage points) to be assigned get
	// their score halved.
	highProbabilityCutoff  = 30.0
	highProbabilityPenalty = 0.5
)

// Scorer computes the goal score: a dimensionless reward/risk ratio, higher
// is better, unbounded above. Contracts that miss their tenor's minimum
// return gate get models.DisqualifiedScore.
type Scorer struct {
	thresholds Thresholds
}

func NewScorer(t Thresholds) *Scorer {
	return &Scorer{thresholds: t}
}

// Thresholds returns the gate pair this scorer was built with.
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Classify buckets a contract by days to expiry.
func (s *Scorer) Classify(daysToExpiry int) models.TargetType {
	switch {
	case daysToExpiry <= weeklyMaxDays:
		return models.TargetWeekly
	case daysToExpiry <= biweeklyMaxDays:
		return models.TargetBiweekly
	default:
		return models.TargetNone
	}
}

// Score evaluates one contract. premium is in absolute currency units,
// assignmentProbability on a 0-100 scale. Returns the goal score (or
// models.DisqualifiedScore) and the tenor bucket. Non-finite inputs fail
// closed to disqualified.
func (s *Scorer) Score(premium, assignmentProbability, spot float64, daysToExpiry int) (float64, models.TargetType) {
	target := s.Classify(daysToExpiry)
	if target == models.TargetNone {
		return models.DisqualifiedScore, target
	}
	if spot <= 0 || !isFinite(premium) || !isFinite(assignmentProbability) {
		return models.DisqualifiedScore, target
	}

	returnPercent := premium / spot

	gate := s.thresholds.Weekly
	if target == models.TargetBiweekly {
		gate = s.thresholds.Biweekly
	}
	if returnPercent < gate {
		return models.DisqualifiedScore, target
	}

	baseScore := returnPercent / (assignmentProbability/100 + probabilityEpsilon)
	if assignmentProbability > highProbabilityCutoff {
		baseScore *= highProbabilityPenalty
	}
	if !isFinite(baseScore) {
		return models.DisqualifiedScore, target
	}
	return baseScore, target
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
