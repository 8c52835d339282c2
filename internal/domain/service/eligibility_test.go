package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/service"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

func borrowerWith(score int, creditLimit int64, autoSync bool, loanCount int) model.Borrower {
	now := time.Now().UTC()
	return model.ReconstructBorrower(
		"borrower-001", "+254700000001", score,
		decimal.NewFromInt(creditLimit), autoSync,
		decimal.Zero, valueobject.RepaymentStatusPending, loanCount,
		1, now, now,
	)
}

func TestEligibleAmount_FirstTimeBorrower(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	// A high score changes nothing for a first-timer.
	amount := calc.EligibleAmount(borrowerWith(900, 50_000, false, 0), decimal.Zero, cfg)

	assert.True(t, decimal.NewFromInt(1_000).Equal(amount))
}

func TestEligibleAmount_ScoreThresholds(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	cases := []struct {
		score    int
		expected int64
	}{
		{score: 0, expected: 1_000},
		{score: 199, expected: 1_000},
		{score: 200, expected: 5_000},
		{score: 460, expected: 15_000},
		{score: 800, expected: 50_000},
	}
	for _, tc := range cases {
		amount := calc.EligibleAmount(borrowerWith(tc.score, 100_000, false, 3), decimal.Zero, cfg)
		assert.True(t, decimal.NewFromInt(tc.expected).Equal(amount),
			"score %d: expected %d, got %s", tc.score, tc.expected, amount)
	}
}

func TestEligibleAmount_StaticLimitCapsThreshold(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	// Score 460 would allow 15,000, but the static limit wins.
	amount := calc.EligibleAmount(borrowerWith(460, 2_000, false, 3), decimal.Zero, cfg)

	assert.True(t, decimal.NewFromInt(2_000).Equal(amount))
}

func TestEligibleAmount_AutoSyncIgnoresStaticLimit(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	amount := calc.EligibleAmount(borrowerWith(460, 2_000, true, 3), decimal.Zero, cfg)

	assert.True(t, decimal.NewFromInt(15_000).Equal(amount))
}

func TestEligibleAmount_OutstandingDebtReduces(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	amount := calc.EligibleAmount(borrowerWith(460, 100_000, false, 3), decimal.NewFromInt(6_000), cfg)

	assert.True(t, decimal.NewFromInt(9_000).Equal(amount))
}

func TestEligibleAmount_FlooredAtZero(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	amount := calc.EligibleAmount(borrowerWith(200, 100_000, false, 3), decimal.NewFromInt(8_000), cfg)

	assert.True(t, amount.IsZero())
}

func TestInterestRate_TierSelection(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	assert.True(t, decimal.RequireFromString("0.15").Equal(calc.InterestRate(100, cfg)))
	assert.True(t, decimal.RequireFromString("0.12").Equal(calc.InterestRate(300, cfg)))
	assert.True(t, decimal.RequireFromString("0.08").Equal(calc.InterestRate(1_000, cfg)))
}

func TestInterestRate_Clamped(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()
	cfg.RateTiers = []service.RateTier{
		{MaxScore: 1_000, Rate: decimal.RequireFromString("0.35")},
	}

	rate := calc.InterestRate(500, cfg)

	assert.True(t, cfg.MaxRate.Equal(rate))
}

func TestRepaymentPeriod_TierSelection(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	assert.Equal(t, 14, calc.RepaymentPeriod(100, cfg))
	assert.Equal(t, 30, calc.RepaymentPeriod(300, cfg))
	assert.Equal(t, 90, calc.RepaymentPeriod(1_000, cfg))
}

func TestRepaymentPeriod_Clamped(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()
	cfg.PeriodTiers = []service.PeriodTier{
		{MaxScore: 1_000, Days: 3},
	}

	assert.Equal(t, cfg.MinPeriodDays, calc.RepaymentPeriod(500, cfg))
}

func TestCalculate_CombinesAllTerms(t *testing.T) {
	calc := service.NewEligibilityCalculator()
	cfg := service.DefaultEligibilityConfig()

	elig := calc.Calculate(borrowerWith(300, 100_000, false, 3), decimal.Zero, cfg)

	assert.True(t, decimal.NewFromInt(5_000).Equal(elig.Amount))
	assert.True(t, decimal.RequireFromString("0.12").Equal(elig.InterestRate))
	assert.Equal(t, 30, elig.PeriodDays)
}
