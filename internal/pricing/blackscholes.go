package pricing

import "math"

// OptionKind distinguishes calls from puts.
type OptionKind byte

const (
	Call OptionKind = 'C'
	Put  OptionKind = 'P'
)

// DefaultVolatility is the fallback when a contract carries no usable
// implied volatility.
const DefaultVolatility = 0.25

// DefaultRiskFreeRate approximates the short-term Treasury Bill rate and is
// used when no rate source is wired in.
const DefaultRiskFreeRate = 0.045

// d1 for the Black-Scholes model. Callers must have excluded the degenerate
// cases (timeToExpiry <= 0, volatility <= 0) first.
func d1(spot, strike, timeToExpiry, riskFreeRate, volatility float64) float64 {
	return (math.Log(spot/strike) + (riskFreeRate+0.5*volatility*volatility)*timeToExpiry) /
		(volatility * math.Sqrt(timeToExpiry))
}

// Delta returns the Black-Scholes delta: N(d1) for calls, N(d1)-1 for puts.
// An expired or zero-volatility contract degenerates to its intrinsic state:
// 1 (call) or -1 (put) when in the money, else 0.
func Delta(spot, strike, timeToExpiry, riskFreeRate, volatility float64, kind OptionKind) float64 {
	if spot <= 0 || strike <= 0 {
		return 0
	}
	if timeToExpiry <= 0 || volatility <= 0 {
		if kind == Put {
			if spot < strike {
				return -1
			}
			return 0
		}
		if spot > strike {
			return 1
		}
		return 0
	}
	d := d1(spot, strike, timeToExpiry, riskFreeRate, volatility)
	if kind == Put {
		return NormCDF(d) - 1
	}
	return NormCDF(d)
}

// AssignmentProbability returns the risk-neutral probability N(d2) that a
// call finishes in the money. An expired or zero-volatility contract is
// either assigned (strike <= spot) or not. The result is clamped to [0, 1]
// and non-finite inputs fail closed to 0.
func AssignmentProbability(spot, strike, timeToExpiry, riskFreeRate, volatility float64) float64 {
	if spot <= 0 || strike <= 0 || math.IsNaN(spot) || math.IsNaN(strike) {
		return 0
	}
	if timeToExpiry <= 0 || volatility <= 0 {
		if strike <= spot {
			return 1
		}
		return 0
	}
	d2 := d1(spot, strike, timeToExpiry, riskFreeRate, volatility) - volatility*math.Sqrt(timeToExpiry)
	p := NormCDF(d2)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return clamp01(p)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
