package valueobject

import "github.com/shopspring/decimal"

// AwardMetadata records every intermediate of a point-award derivation so a
// credit score history row can reproduce the award.
type AwardMetadata struct {
	BasePoints         decimal.Decimal `json:"base_points"`
	AmountMultiplier   decimal.Decimal `json:"amount_multiplier"`
	DurationMultiplier decimal.Decimal `json:"duration_multiplier"`
	DurationDays       int             `json:"duration_days"`
	RawPoints          decimal.Decimal `json:"raw_points"`
	RepaymentRatio     decimal.Decimal `json:"repayment_ratio"`
	ScaledPoints       decimal.Decimal `json:"scaled_points"`
	FinalPoints        decimal.Decimal `json:"final_points"`
	Capped             bool            `json:"capped"`
}
