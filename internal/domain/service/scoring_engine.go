package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// ScoringEngine – pure domain service for tiered repayment scoring
// ---------------------------------------------------------------------------

// AmountTier maps a repayment-amount range to a multiplier. A zero Max marks
// an open-ended tier. Tiers are expected sorted ascending by Min.
type AmountTier struct {
	Min        decimal.Decimal
	Max        decimal.Decimal
	Multiplier decimal.Decimal
}

// Contains reports whether v falls in [Min, Max), with a zero Max meaning
// unbounded above.
func (t AmountTier) Contains(v decimal.Decimal) bool {
	if v.LessThan(t.Min) {
		return false
	}
	return t.Max.IsZero() || v.LessThan(t.Max)
}

// DurationTier maps an elapsed-days range to a multiplier. A zero MaxDays
// marks an open-ended tier. Tiers are expected sorted ascending by MinDays.
type DurationTier struct {
	MinDays    int
	MaxDays    int
	Multiplier decimal.Decimal
}

// Contains reports whether days falls in [MinDays, MaxDays), with a zero
// MaxDays meaning unbounded above.
func (t DurationTier) Contains(days int) bool {
	if days < t.MinDays {
		return false
	}
	return t.MaxDays == 0 || days < t.MaxDays
}

// ScoringConfig is an immutable snapshot of the scoring model. It is fetched
// fresh per calculation from the configuration store; the engine never caches
// it.
type ScoringConfig struct {
	BasePoints              decimal.Decimal
	AmountTiers             []AmountTier
	DurationTiers           []DurationTier
	MaxPoints               decimal.Decimal
	PartialRepaymentEnabled bool
	MinPartialPoints        decimal.Decimal
	FullRepaymentMultiplier decimal.Decimal // multiplicative bonus, applied first
	FullRepaymentBonus      decimal.Decimal // additive bonus, applied second
	MaxScore                int
}

// DefaultScoringConfig returns the model used when the configuration store
// has no scoring tables.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BasePoints: decimal.NewFromInt(50),
		AmountTiers: []AmountTier{
			{Min: decimal.Zero, Max: decimal.NewFromInt(5_000), Multiplier: decimal.NewFromInt(1)},
			{Min: decimal.NewFromInt(5_000), Max: decimal.NewFromInt(20_000), Multiplier: decimal.RequireFromString("1.5")},
			{Min: decimal.NewFromInt(20_000), Multiplier: decimal.NewFromInt(2)},
		},
		DurationTiers: []DurationTier{
			{MinDays: 0, MaxDays: 7, Multiplier: decimal.NewFromInt(2)},
			{MinDays: 7, MaxDays: 30, Multiplier: decimal.RequireFromString("1.5")},
			{MinDays: 30, Multiplier: decimal.NewFromInt(1)},
		},
		MaxPoints:               decimal.NewFromInt(500),
		PartialRepaymentEnabled: true,
		MinPartialPoints:        decimal.NewFromInt(5),
		FullRepaymentMultiplier: decimal.RequireFromString("1.2"),
		FullRepaymentBonus:      decimal.NewFromInt(25),
		MaxScore:                1000,
	}
}

// RepaymentEvent carries the facts about a single confirmed repayment.
type RepaymentEvent struct {
	Amount        decimal.Decimal
	LoanAmount    decimal.Decimal
	DisbursedAt   time.Time
	RepaidAt      time.Time
	FullRepayment bool
}

// ScoreAward is the outcome of scoring one repayment. Metadata carries the
// intermediates of the derivation for the score history ledger.
type ScoreAward struct {
	Points   int
	Reason   valueobject.AwardReason
	Metadata valueobject.AwardMetadata
}

// ScoringEngine turns repayment events into point awards. It is stateless
// and performs no I/O.
type ScoringEngine struct{}

// NewScoringEngine returns a new engine instance.
func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{}
}

// Award computes the points for a repayment under the given configuration.
//
//	points = base × amountMultiplier × durationMultiplier
//
// Partial repayments are scaled by amount/loanAmount and dropped below the
// configured floor. A full repayment gets the multiplicative bonus, then the
// additive bonus. The result is clamped to MaxPoints and rounded to the
// nearest integer.
func (e *ScoringEngine) Award(evt RepaymentEvent, cfg ScoringConfig) ScoreAward {
	if evt.Amount.LessThanOrEqual(decimal.Zero) {
		return ScoreAward{Points: 0, Reason: valueobject.AwardReasonInvalidAmount}
	}

	amountTier := MatchAmountTier(cfg.AmountTiers, evt.Amount)
	days := wholeDays(evt.DisbursedAt, evt.RepaidAt)
	durationTier := MatchDurationTier(cfg.DurationTiers, days)

	raw := cfg.BasePoints.Mul(amountTier.Multiplier).Mul(durationTier.Multiplier)

	meta := valueobject.AwardMetadata{
		BasePoints:         cfg.BasePoints,
		AmountMultiplier:   amountTier.Multiplier,
		DurationMultiplier: durationTier.Multiplier,
		DurationDays:       days,
		RawPoints:          raw,
		RepaymentRatio:     repaymentRatio(evt),
	}

	points := raw
	reason := valueobject.AwardReasonLoanCompleted

	if !evt.FullRepayment {
		reason = valueobject.AwardReasonPartialRepayment
		if !cfg.PartialRepaymentEnabled {
			meta.ScaledPoints = decimal.Zero
			return ScoreAward{Points: 0, Reason: valueobject.AwardReasonBelowMinimumThreshold, Metadata: meta}
		}
		points = raw.Mul(meta.RepaymentRatio)
		meta.ScaledPoints = points
		if points.LessThan(cfg.MinPartialPoints) {
			return ScoreAward{Points: 0, Reason: valueobject.AwardReasonBelowMinimumThreshold, Metadata: meta}
		}
	} else {
		meta.ScaledPoints = points
		if cfg.FullRepaymentMultiplier.IsPositive() {
			points = points.Mul(cfg.FullRepaymentMultiplier)
		}
		points = points.Add(cfg.FullRepaymentBonus)
	}

	if cfg.MaxPoints.IsPositive() && points.GreaterThan(cfg.MaxPoints) {
		points = cfg.MaxPoints
		meta.Capped = true
	}
	meta.FinalPoints = points

	return ScoreAward{
		Points:   int(points.Round(0).IntPart()),
		Reason:   reason,
		Metadata: meta,
	}
}

// MatchAmountTier picks the tier containing v, or falls back to the tier
// with the highest lower bound when no range contains it.
func MatchAmountTier(tiers []AmountTier, v decimal.Decimal) AmountTier {
	if len(tiers) == 0 {
		return AmountTier{Multiplier: decimal.NewFromInt(1)}
	}
	for _, t := range tiers {
		if t.Contains(v) {
			return t
		}
	}
	highest := tiers[0]
	for _, t := range tiers[1:] {
		if t.Min.GreaterThan(highest.Min) {
			highest = t
		}
	}
	return highest
}

// MatchDurationTier picks the tier containing days, or falls back to the tier
// with the highest lower bound when no range contains it.
func MatchDurationTier(tiers []DurationTier, days int) DurationTier {
	if len(tiers) == 0 {
		return DurationTier{Multiplier: decimal.NewFromInt(1)}
	}
	for _, t := range tiers {
		if t.Contains(days) {
			return t
		}
	}
	highest := tiers[0]
	for _, t := range tiers[1:] {
		if t.MinDays > highest.MinDays {
			highest = t
		}
	}
	return highest
}

// repaymentRatio is amount/loanAmount, defined as zero for a zero loan amount.
func repaymentRatio(evt RepaymentEvent) decimal.Decimal {
	if evt.LoanAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return evt.Amount.Div(evt.LoanAmount)
}

// wholeDays returns the whole elapsed days between two instants, never
// negative.
func wholeDays(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
