package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jwaldner/callwriter/internal/models"
	"github.com/jwaldner/callwriter/internal/pricing"
	"github.com/jwaldner/callwriter/internal/scoring"
	"github.com/jwaldner/callwriter/internal/utils"
)

// SelectorConfig carries the tunable parts of chain selection. The gate
// thresholds live in the scorer; whether ranking uses the enhanced or the
// original probability is an unresolved product decision, so it is config
// here rather than a constant.
type SelectorConfig struct {
	OTMLowFactor      float64 // lower band bound as a spot multiple
	OTMHighFactor     float64 // upper band bound as a spot multiple
	DefaultVolatility float64 // fallback when a contract has no usable IV
	UseEnhanced       bool    // rank and gate on the refined probability
}

// DefaultSelectorConfig matches the deployed band: strictly above spot,
// capped at 10% above, ranking on the enhanced probability.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		OTMLowFactor:      1.001,
		OTMHighFactor:     1.10,
		DefaultVolatility: pricing.DefaultVolatility,
		UseEnhanced:       true,
	}
}

// Selector filters one expiration's raw chain to the out-of-the-money band,
// prices and scores every survivor, and picks the top-scoring qualifying
// contract as the expiration's recommendation.
type Selector struct {
	cfg    SelectorConfig
	scorer *scoring.Scorer
}

func NewSelector(cfg SelectorConfig, scorer *scoring.Scorer) *Selector {
	return &Selector{cfg: cfg, scorer: scorer}
}

// Band returns the OTM strike admission band for a spot price.
func (s *Selector) Band(spot float64) models.OTMRange {
	return models.OTMRange{
		Low:  spot * s.cfg.OTMLowFactor,
		High: spot * s.cfg.OTMHighFactor,
	}
}

// Analyze builds the ExpirationResult for one expiration's raw call chain.
// now is the single per-run timestamp so day counts stay consistent across
// every contract in the run. An empty or fully filtered chain yields an
// empty result, never an error.
func (s *Selector) Analyze(contracts []models.RawContract, spot float64, expiration, now time.Time, riskFreeRate float64) models.ExpirationResult {
	result := models.ExpirationResult{Expiration: expiration}

	band := s.Band(spot)
	timeToExpiry := utils.YearsUntil(expiration, now)
	daysToExpiry := utils.DaysUntil(expiration, now)

	for _, raw := range contracts {
		if raw.Strike < band.Low || raw.Strike > band.High {
			continue
		}
		result.Contracts = append(result.Contracts,
			s.score(raw, spot, timeToExpiry, daysToExpiry, riskFreeRate))
	}

	sort.Slice(result.Contracts, func(i, j int) bool {
		return result.Contracts[i].Strike < result.Contracts[j].Strike
	})

	best := -1
	for i, c := range result.Contracts {
		if !c.MeetsTarget || c.GoalScore < 0 {
			continue
		}
		result.HasQualifying = true
		if best < 0 || c.GoalScore > result.Contracts[best].GoalScore {
			best = i
		}
	}
	if best >= 0 {
		c := result.Contracts[best]
		result.BestContract = &c
		result.BestReason = bestReason(c)
	}
	return result
}

// score runs one contract through the pricing model, refiner and goal
// scorer, applying the documented fallbacks for absent fields.
func (s *Selector) score(raw models.RawContract, spot, timeToExpiry float64, daysToExpiry int, riskFreeRate float64) models.ScoredContract {
	volatility := raw.ImpliedVolatility
	if volatility <= 0 || math.IsNaN(volatility) {
		volatility = s.cfg.DefaultVolatility
	}

	premium := 0.0
	switch {
	case raw.Bid > 0 && raw.Ask > 0:
		premium = (raw.Bid + raw.Ask) / 2
	case raw.LastPrice > 0:
		premium = raw.LastPrice
	}
	if math.IsNaN(premium) || math.IsInf(premium, 0) {
		premium = 0
	}

	estimate := pricing.Estimate(spot, raw.Strike, timeToExpiry, riskFreeRate, volatility)
	delta := pricing.Delta(spot, raw.Strike, timeToExpiry, riskFreeRate, volatility, pricing.Call)

	originalPct := estimate.Original * 100
	enhancedPct := estimate.Enhanced * 100
	rankPct := originalPct
	if s.cfg.UseEnhanced {
		rankPct = enhancedPct
	}

	goalScore, target := s.scorer.Score(premium, rankPct, spot, daysToExpiry)

	returnPercent := 0.0
	if spot > 0 {
		returnPercent = premium / spot
	}

	thresholds := s.scorer.Thresholds()
	sc := models.ScoredContract{
		RawContract:                   raw,
		OTMPercent:                    (raw.Strike - spot) / spot * 100,
		AssignmentProbability:         originalPct,
		EnhancedAssignmentProbability: enhancedPct,
		Delta:                         delta,
		Premium:                       premium,
		ReturnPercent:                 returnPercent,
		GoalScore:                     goalScore,
		ReturnAssignmentRatio:         returnRatio(premium, returnPercent, originalPct),
		EnhancedReturnAssignmentRatio: returnRatio(premium, returnPercent, enhancedPct),
		MeetsWeeklyTarget:             target == models.TargetWeekly && returnPercent >= thresholds.Weekly,
		MeetsBiweeklyTarget:           target == models.TargetBiweekly && returnPercent >= thresholds.Biweekly,
		TargetType:                    target,
		DaysToExpiry:                  daysToExpiry,
	}
	sc.MeetsTarget = sc.MeetsWeeklyTarget || sc.MeetsBiweeklyTarget
	if sc.TargetType != models.TargetNone && !sc.MeetsTarget {
		// Gate failed; report the bucket it was tested against as none.
		sc.TargetType = models.TargetNone
	}
	return sc
}

// returnRatio is returnPercent over probability percent; zero premium or
// probability makes the ratio meaningless, reported as 0.
func returnRatio(premium, returnPercent, probabilityPct float64) float64 {
	if premium <= 0 || probabilityPct <= 0 {
		return 0
	}
	ratio := returnPercent / probabilityPct
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0
	}
	return ratio
}

func bestReason(c models.ScoredContract) string {
	return fmt.Sprintf("strike %.2f (%s) returns %.2f%% in %d days with %.1f%% assignment risk, score %.3f",
		c.Strike, c.TargetType, c.ReturnPercent*100, c.DaysToExpiry,
		c.EnhancedAssignmentProbability, c.GoalScore)
}
