package models

import "time"

// Quote is a point-in-time spot price snapshot from the price provider.
// It is consumed once per analysis run and never mutated.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// RawContract is a single call contract as returned by the chain provider.
// Bid, Ask, LastPrice and ImpliedVolatility may be absent (zero) depending on
// the provider. Downstream fallback rules: premium = bid/ask midpoint when
// both are positive, else last price, else 0; volatility = implied volatility
// when positive, else the configured default.
type RawContract struct {
	ContractSymbol    string    `json:"contract_symbol"`
	Strike            float64   `json:"strike"`
	Bid               float64   `json:"bid"`
	Ask               float64   `json:"ask"`
	LastPrice         float64   `json:"last_price"`
	ImpliedVolatility float64   `json:"implied_volatility"`
	OpenInterest      int64     `json:"open_interest"`
	Volume            int64     `json:"volume"`
	InTheMoney        bool      `json:"in_the_money"`
	Expiration        time.Time `json:"expiration"`
}

// TargetType is the tenor bucket a contract falls into.
type TargetType string

const (
	TargetWeekly   TargetType = "weekly"
	TargetBiweekly TargetType = "bi-weekly"
	TargetNone     TargetType = "none"
)

// DisqualifiedScore marks a contract that failed its tenor's minimum-return
// gate (or has no tenor bucket at all). Qualifying scores are always >= 0.
const DisqualifiedScore = -1.0

// ScoredContract is a RawContract annotated with everything the pricing and
// scoring pipeline derived for it. Built once per contract per run, immutable
// after construction. Probabilities are on a 0-100 scale for presentation.
type ScoredContract struct {
	RawContract

	OTMPercent                    float64    `json:"otm_percent"`
	AssignmentProbability         float64    `json:"assignment_probability"`
	EnhancedAssignmentProbability float64    `json:"enhanced_assignment_probability"`
	Delta                         float64    `json:"delta"`
	Premium                       float64    `json:"premium"`
	ReturnPercent                 float64    `json:"return_percent"`
	GoalScore                     float64    `json:"goal_score"`
	ReturnAssignmentRatio         float64    `json:"return_assignment_ratio"`
	EnhancedReturnAssignmentRatio float64    `json:"enhanced_return_assignment_ratio"`
	MeetsWeeklyTarget             bool       `json:"meets_weekly_target"`
	MeetsBiweeklyTarget           bool       `json:"meets_biweekly_target"`
	MeetsTarget                   bool       `json:"meets_target"`
	TargetType                    TargetType `json:"target_type"`
	DaysToExpiry                  int        `json:"days_to_expiry"`
}

// ExpirationResult holds every scored contract for one target expiration,
// sorted ascending by strike, plus the selected best contract if any
// qualified.
type ExpirationResult struct {
	Expiration    time.Time        `json:"expiration"`
	Contracts     []ScoredContract `json:"contracts"`
	BestContract  *ScoredContract  `json:"best_contract,omitempty"`
	BestReason    string           `json:"best_reason,omitempty"`
	HasQualifying bool             `json:"has_qualifying"`
}

// OTMRange is the out-of-the-money strike admission band for a run.
type OTMRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// AnalysisResult is the complete output of one analysis run. Expirations are
// ordered by the scheduler's selected date order.
type AnalysisResult struct {
	Symbol      string             `json:"symbol"`
	RunID       string             `json:"run_id"`
	Quote       Quote              `json:"quote"`
	SpotPrice   float64            `json:"spot_price"`
	OTMRange    OTMRange           `json:"otm_range"`
	Expirations []ExpirationResult `json:"expirations"`
	GeneratedAt time.Time          `json:"generated_at"`
}
