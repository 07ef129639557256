package pricing

import "math"

// The refiner is a heuristic correction layer on top of the raw model
// probability, not a calibrated model. Adjustments are applied in a fixed
// order; only the final clamp keeps the result in [0, 1].
const (
	deltaBlendWeight = 0.3       // weight given to |delta| in the blend
	baselineVol      = 0.25      // volatility that scales to 1.0
	volScaleFloor    = 0.5       // clamp bounds for the volatility ratio
	volScaleCeil     = 2.0
	shortDatedWindow = 7.0 / 365 // boost kicks in under one week to expiry
	shortDatedBoost  = 0.10      // up to +10% as expiry approaches now
	deepMoneyRatio   = 1.05      // spot/strike above this gets the deep boost
	nearMoneyRatio   = 0.95      // (near, deep] gets the near-the-money boost
	deepMoneyBoost   = 1.10
	nearMoneyBoost   = 1.05
)

// ProbabilityEstimate pairs the raw Black-Scholes assignment probability
// with its refined counterpart. Both are in [0, 1]; enhanced may sit on
// either side of original.
type ProbabilityEstimate struct {
	Original float64 `json:"original"`
	Enhanced float64 `json:"enhanced"`
}

// Enhance derives the refined assignment probability from the raw model
// output. delta stands in for a market-observed delta. Steps, in order:
// delta blend, volatility-ratio scaling, short-dated boost, moneyness boost,
// final clamp. Non-finite intermediates fail closed to 0.
func Enhance(original, delta, volatility, timeToExpiry, spot, strike float64) float64 {
	enhanced := (1-deltaBlendWeight)*original + deltaBlendWeight*math.Abs(delta)

	enhanced *= clampRange(volatility/baselineVol, volScaleFloor, volScaleCeil)

	if timeToExpiry < shortDatedWindow {
		enhanced *= 1 + shortDatedBoost*(shortDatedWindow-timeToExpiry)/shortDatedWindow
	}

	moneyness := spot / strike
	if moneyness > deepMoneyRatio {
		enhanced *= deepMoneyBoost
	} else if moneyness > nearMoneyRatio {
		enhanced *= nearMoneyBoost
	}

	if math.IsNaN(enhanced) || math.IsInf(enhanced, 0) {
		return 0
	}
	return clamp01(enhanced)
}

// Estimate runs the full model for a call contract and returns both
// probability variants.
func Estimate(spot, strike, timeToExpiry, riskFreeRate, volatility float64) ProbabilityEstimate {
	original := AssignmentProbability(spot, strike, timeToExpiry, riskFreeRate, volatility)
	delta := Delta(spot, strike, timeToExpiry, riskFreeRate, volatility, Call)
	return ProbabilityEstimate{
		Original: original,
		Enhanced: Enhance(original, delta, volatility, timeToExpiry, spot, strike),
	}
}

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
