package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// EligibilityCalculator – score-driven amount/rate/period derivation
// ---------------------------------------------------------------------------

// ScoreThreshold maps a minimum score to an eligible amount.
type ScoreThreshold struct {
	MinScore int
	Amount   decimal.Decimal
}

// RateTier maps a score ceiling to an annual-equivalent interest rate
// (expressed as a fraction, e.g. 0.15). Tiers are scanned ascending by
// MaxScore; the first tier the score fits under wins.
type RateTier struct {
	MaxScore int
	Rate     decimal.Decimal
}

// PeriodTier maps a score ceiling to a repayment period in days, scanned the
// same way as RateTier.
type PeriodTier struct {
	MaxScore int
	Days     int
}

// EligibilityConfig is an immutable snapshot of the eligibility model.
type EligibilityConfig struct {
	FirstTimeAmount decimal.Decimal
	ScoreThresholds []ScoreThreshold
	RateTiers       []RateTier
	MinRate         decimal.Decimal
	MaxRate         decimal.Decimal
	PeriodTiers     []PeriodTier
	MinPeriodDays   int
	MaxPeriodDays   int
}

// DefaultEligibilityConfig returns the model used when the configuration
// store has no eligibility tables.
func DefaultEligibilityConfig() EligibilityConfig {
	return EligibilityConfig{
		FirstTimeAmount: decimal.NewFromInt(1_000),
		ScoreThresholds: []ScoreThreshold{
			{MinScore: 0, Amount: decimal.NewFromInt(1_000)},
			{MinScore: 200, Amount: decimal.NewFromInt(5_000)},
			{MinScore: 400, Amount: decimal.NewFromInt(15_000)},
			{MinScore: 600, Amount: decimal.NewFromInt(30_000)},
			{MinScore: 800, Amount: decimal.NewFromInt(50_000)},
		},
		RateTiers: []RateTier{
			{MaxScore: 200, Rate: decimal.RequireFromString("0.15")},
			{MaxScore: 500, Rate: decimal.RequireFromString("0.12")},
			{MaxScore: 800, Rate: decimal.RequireFromString("0.10")},
			{MaxScore: 1000, Rate: decimal.RequireFromString("0.08")},
		},
		MinRate: decimal.RequireFromString("0.05"),
		MaxRate: decimal.RequireFromString("0.20"),
		PeriodTiers: []PeriodTier{
			{MaxScore: 200, Days: 14},
			{MaxScore: 500, Days: 30},
			{MaxScore: 800, Days: 60},
			{MaxScore: 1000, Days: 90},
		},
		MinPeriodDays: 7,
		MaxPeriodDays: 90,
	}
}

// Eligibility is the derived lending terms for a borrower.
type Eligibility struct {
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
	PeriodDays   int
}

// EligibilityCalculator derives a borrower's eligible amount, rate, and
// period from their score, history, and active debt. Pure; caching happens
// in the application layer.
type EligibilityCalculator struct{}

// NewEligibilityCalculator returns a new calculator instance.
func NewEligibilityCalculator() *EligibilityCalculator {
	return &EligibilityCalculator{}
}

// Calculate derives the full eligibility for a borrower given the sum of
// outstanding amounts across their non-terminal loans.
func (c *EligibilityCalculator) Calculate(
	borrower model.Borrower,
	activeOutstanding decimal.Decimal,
	cfg EligibilityConfig,
) Eligibility {
	return Eligibility{
		Amount:       c.EligibleAmount(borrower, activeOutstanding, cfg),
		InterestRate: c.InterestRate(borrower.Score(), cfg),
		PeriodDays:   c.RepaymentPeriod(borrower.Score(), cfg),
	}
}

// EligibleAmount derives the maximum a borrower may currently request.
// First-time borrowers get the configured starter amount regardless of
// score. Everyone else gets the highest threshold their score meets, capped
// at the static credit limit unless the limit auto-syncs, minus outstanding
// active debt, floored at zero.
func (c *EligibilityCalculator) EligibleAmount(
	borrower model.Borrower,
	activeOutstanding decimal.Decimal,
	cfg EligibilityConfig,
) decimal.Decimal {
	var amount decimal.Decimal
	if borrower.FirstTimeBorrower() {
		amount = cfg.FirstTimeAmount
	} else {
		amount = amountForScore(borrower.Score(), cfg.ScoreThresholds)
		if !borrower.AutoSyncLimit() && amount.GreaterThan(borrower.CreditLimit()) {
			amount = borrower.CreditLimit()
		}
	}

	amount = amount.Sub(activeOutstanding)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// InterestRate derives the rate for a score, clamped to [MinRate, MaxRate].
func (c *EligibilityCalculator) InterestRate(score int, cfg EligibilityConfig) decimal.Decimal {
	rate := cfg.MaxRate
	for _, t := range cfg.RateTiers {
		if score <= t.MaxScore {
			rate = t.Rate
			break
		}
	}
	if !cfg.MinRate.IsZero() && rate.LessThan(cfg.MinRate) {
		rate = cfg.MinRate
	}
	if !cfg.MaxRate.IsZero() && rate.GreaterThan(cfg.MaxRate) {
		rate = cfg.MaxRate
	}
	return rate
}

// RepaymentPeriod derives the period in days for a score, clamped to
// [MinPeriodDays, MaxPeriodDays].
func (c *EligibilityCalculator) RepaymentPeriod(score int, cfg EligibilityConfig) int {
	days := cfg.MinPeriodDays
	for _, t := range cfg.PeriodTiers {
		if score <= t.MaxScore {
			days = t.Days
			break
		}
	}
	if cfg.MinPeriodDays > 0 && days < cfg.MinPeriodDays {
		days = cfg.MinPeriodDays
	}
	if cfg.MaxPeriodDays > 0 && days > cfg.MaxPeriodDays {
		days = cfg.MaxPeriodDays
	}
	return days
}

// amountForScore finds the highest threshold the score meets or exceeds.
func amountForScore(score int, thresholds []ScoreThreshold) decimal.Decimal {
	if len(thresholds) == 0 {
		thresholds = DefaultEligibilityConfig().ScoreThresholds
	}
	sorted := make([]ScoreThreshold, len(thresholds))
	copy(sorted, thresholds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinScore > sorted[j].MinScore })

	for _, t := range sorted {
		if score >= t.MinScore {
			return t.Amount
		}
	}
	return decimal.Zero
}
