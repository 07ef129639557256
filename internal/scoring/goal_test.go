package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwaldner/callwriter/internal/models"
)

func TestClassify(t *testing.T) {
	s := NewScorer(StrictThresholds)

	assert.Equal(t, models.TargetWeekly, s.Classify(0))
	assert.Equal(t, models.TargetWeekly, s.Classify(5))
	assert.Equal(t, models.TargetWeekly, s.Classify(8))
	assert.Equal(t, models.TargetBiweekly, s.Classify(9))
	assert.Equal(t, models.TargetBiweekly, s.Classify(16))
	assert.Equal(t, models.TargetNone, s.Classify(17))
	assert.Equal(t, models.TargetNone, s.Classify(30))
}

func TestScore(t *testing.T) {
	s := NewScorer(StrictThresholds)

	t.Run("weekly contract above gate", func(t *testing.T) {
		// 0.30 premium on a 100 spot is 0.3%, above the 0.25% strict weekly
		// gate. Score = 0.003 / (0.08 + 0.001).
		score, target := s.Score(0.30, 8, 100, 5)
		assert.Equal(t, models.TargetWeekly, target)
		assert.InDelta(t, 0.003/0.081, score, 1e-9)
	})

	t.Run("weekly contract below gate disqualified", func(t *testing.T) {
		score, target := s.Score(0.20, 8, 100, 5)
		assert.Equal(t, models.TargetWeekly, target)
		assert.Equal(t, models.DisqualifiedScore, score)
	})

	t.Run("bi-weekly gate is higher", func(t *testing.T) {
		// 0.3% clears the weekly gate but not the 0.5% bi-weekly gate.
		score, target := s.Score(0.30, 8, 100, 12)
		assert.Equal(t, models.TargetBiweekly, target)
		assert.Equal(t, models.DisqualifiedScore, score)

		score, target = s.Score(0.60, 10, 100, 12)
		assert.Equal(t, models.TargetBiweekly, target)
		assert.InDelta(t, 0.006/0.101, score, 1e-9)
	})

	t.Run("beyond bi-weekly horizon", func(t *testing.T) {
		score, target := s.Score(5.00, 8, 100, 20)
		assert.Equal(t, models.TargetNone, target)
		assert.Equal(t, models.DisqualifiedScore, score)
	})

	t.Run("lower probability never scores worse", func(t *testing.T) {
		lowRisk, _ := s.Score(0.30, 5, 100, 5)
		highRisk, _ := s.Score(0.30, 10, 100, 5)
		assert.Greater(t, lowRisk, highRisk)
	})

	t.Run("high probability penalty", func(t *testing.T) {
		below, _ := s.Score(0.60, 30, 100, 5)
		above, _ := s.Score(0.60, 30.5, 100, 5)
		// Crossing the 30% cutoff halves the score, so the penalized score
		// is well under half the unpenalized one despite similar risk.
		assert.Less(t, above, below*0.51)
		expected := 0.006 / (0.305 + 0.001) * 0.5
		assert.InDelta(t, expected, above, 1e-9)
	})

	t.Run("zero probability bounded by epsilon", func(t *testing.T) {
		score, _ := s.Score(0.30, 0, 100, 5)
		assert.InDelta(t, 0.003/0.001, score, 1e-9)
	})

	t.Run("bad inputs fail closed", func(t *testing.T) {
		score, _ := s.Score(math.NaN(), 8, 100, 5)
		assert.Equal(t, models.DisqualifiedScore, score)

		score, _ = s.Score(0.30, math.Inf(1), 100, 5)
		assert.Equal(t, models.DisqualifiedScore, score)

		score, _ = s.Score(0.30, 8, 0, 5)
		assert.Equal(t, models.DisqualifiedScore, score)
	})
}

func TestScoreStandardProfile(t *testing.T) {
	s := NewScorer(StandardThresholds)

	// 0.15% passes the standard weekly gate but not the strict one.
	score, target := s.Score(0.15, 8, 100, 5)
	assert.Equal(t, models.TargetWeekly, target)
	assert.Greater(t, score, 0.0)

	strictScore, _ := NewScorer(StrictThresholds).Score(0.15, 8, 100, 5)
	assert.Equal(t, models.DisqualifiedScore, strictScore)
}
