package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

func testBorrower(score, loanCount int) model.Borrower {
	now := time.Now().UTC()
	return model.ReconstructBorrower(
		"borrower-001", "+254700000001", score,
		decimal.NewFromInt(10_000), false,
		decimal.Zero, valueobject.RepaymentStatusPending, loanCount,
		1, now, now,
	)
}

func TestBorrower_ApplyScorePoints(t *testing.T) {
	b := testBorrower(300, 3)
	now := time.Now().UTC()

	assert.Equal(t, 460, b.ApplyScorePoints(160, 1_000, now).Score())
	// Clamped at the configured ceiling.
	assert.Equal(t, 1_000, b.ApplyScorePoints(900, 1_000, now).Score())
	// Never below zero.
	assert.Equal(t, 0, b.ApplyScorePoints(-500, 1_000, now).Score())
	// The original is untouched.
	assert.Equal(t, 300, b.Score())
}

func TestBorrower_RecordRepayment(t *testing.T) {
	b := testBorrower(300, 3)
	now := time.Now().UTC()

	updated, err := b.RecordRepayment(decimal.NewFromInt(2_000), valueobject.RepaymentStatusPartial, now)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2_000).Equal(updated.TotalRepaid()))
	assert.True(t, updated.RepaymentStatus().Equal(valueobject.RepaymentStatusPartial))

	_, err = b.RecordRepayment(decimal.Zero, valueobject.RepaymentStatusPartial, now)
	assert.Error(t, err)
}

func TestBorrower_IncrementLoanCount(t *testing.T) {
	b := testBorrower(300, 0)

	assert.True(t, b.FirstTimeBorrower())
	incremented := b.IncrementLoanCount(time.Now().UTC())
	assert.Equal(t, 1, incremented.LoanCount())
	assert.False(t, incremented.FirstTimeBorrower())
}

func TestBorrower_ResyncCreditLimit(t *testing.T) {
	b := testBorrower(300, 3)

	resynced := b.ResyncCreditLimit(decimal.NewFromInt(15_000), time.Now().UTC())

	assert.True(t, decimal.NewFromInt(15_000).Equal(resynced.CreditLimit()))
	assert.True(t, decimal.NewFromInt(10_000).Equal(b.CreditLimit()))
}
