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

func newApprovedLoan(t *testing.T) model.Loan {
	t.Helper()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	loan, err := model.NewLoan(
		"borrower-001",
		decimal.NewFromInt(2_500), decimal.RequireFromString("0.12"), 30,
		"idem-key", "session-001", "mobile", now,
	)
	require.NoError(t, err)
	return loan
}

func TestNewLoan(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	loan, err := model.NewLoan(
		"borrower-001",
		decimal.NewFromInt(2_500), decimal.RequireFromString("0.12"), 30,
		"idem-key", "session-001", "mobile", now,
	)

	require.NoError(t, err)
	assert.NotEmpty(t, loan.ID())
	assert.True(t, loan.Status().Equal(valueobject.LoanStatusApproved))
	assert.True(t, decimal.NewFromInt(2_800).Equal(loan.AmountDue()))
	assert.True(t, loan.AmountPaid().IsZero())
	assert.Equal(t, now.AddDate(0, 0, 30), loan.DueDate())
	assert.Equal(t, "idem-key", loan.IdempotencyKey())
	assert.Equal(t, "session-001", loan.SessionKey())
	assert.True(t, loan.DisbursedAt().IsZero())

	require.Len(t, loan.DomainEvents(), 1)
	assert.Equal(t, "lending.loan.approved", loan.DomainEvents()[0].EventType())
}

func TestNewLoan_Validation(t *testing.T) {
	now := time.Now().UTC()
	rate := decimal.RequireFromString("0.12")

	_, err := model.NewLoan("", decimal.NewFromInt(100), rate, 30, "k", "s", "", now)
	assert.Contains(t, err.Error(), "borrower ID is required")

	_, err = model.NewLoan("b", decimal.Zero, rate, 30, "k", "s", "", now)
	assert.Contains(t, err.Error(), "amount must be positive")

	_, err = model.NewLoan("b", decimal.NewFromInt(100), decimal.NewFromInt(-1), 30, "k", "s", "", now)
	assert.Contains(t, err.Error(), "interest rate cannot be negative")

	_, err = model.NewLoan("b", decimal.NewFromInt(100), rate, 0, "k", "s", "", now)
	assert.Contains(t, err.Error(), "repayment period must be positive")

	_, err = model.NewLoan("b", decimal.NewFromInt(100), rate, 30, "", "s", "", now)
	assert.Contains(t, err.Error(), "idempotency key is required")
}

func TestLoan_MarkDisbursed(t *testing.T) {
	loan := newApprovedLoan(t)
	now := time.Now().UTC()

	disbursed, err := loan.MarkDisbursed(now)

	require.NoError(t, err)
	assert.True(t, disbursed.Status().Equal(valueobject.LoanStatusDisbursed))
	assert.Equal(t, now, disbursed.DisbursedAt())
	// The original copy is untouched.
	assert.True(t, loan.Status().Equal(valueobject.LoanStatusApproved))

	// A second call is an idempotent no-op.
	again, err := disbursed.MarkDisbursed(now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, now, again.DisbursedAt())
	assert.Equal(t, len(disbursed.DomainEvents()), len(again.DomainEvents()))
}

func TestLoan_MarkDisbursed_InvalidFrom(t *testing.T) {
	loan := newApprovedLoan(t)
	now := time.Now().UTC()

	disbursed, err := loan.MarkDisbursed(now)
	require.NoError(t, err)
	completed, err := disbursed.ApplyRepayment(disbursed.AmountDue(), now)
	require.NoError(t, err)

	_, err = completed.MarkDisbursed(now)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
}

func TestLoan_ApplyRepayment_Partial(t *testing.T) {
	loan := newApprovedLoan(t)
	now := time.Now().UTC()
	disbursed, err := loan.MarkDisbursed(now)
	require.NoError(t, err)

	repaying, err := disbursed.ApplyRepayment(decimal.NewFromInt(1_000), now)

	require.NoError(t, err)
	assert.True(t, repaying.Status().Equal(valueobject.LoanStatusRepaying))
	assert.True(t, decimal.NewFromInt(1_000).Equal(repaying.AmountPaid()))
	assert.True(t, decimal.NewFromInt(1_800).Equal(repaying.Outstanding()))
}

func TestLoan_ApplyRepayment_Completes(t *testing.T) {
	loan := newApprovedLoan(t)
	now := time.Now().UTC()
	disbursed, err := loan.MarkDisbursed(now)
	require.NoError(t, err)

	completed, err := disbursed.ApplyRepayment(decimal.NewFromInt(2_800), now)

	require.NoError(t, err)
	assert.True(t, completed.Status().Equal(valueobject.LoanStatusCompleted))
	assert.True(t, completed.Outstanding().IsZero())
	assert.Equal(t, "lending.loan.completed", completed.DomainEvents()[len(completed.DomainEvents())-1].EventType())
}

func newPendingLoan(t *testing.T) model.Loan {
	t.Helper()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return model.ReconstructLoan(
		"loan-001", "borrower-001",
		decimal.NewFromInt(2_500), decimal.NewFromInt(2_800), decimal.Zero, decimal.RequireFromString("0.12"),
		30, valueobject.LoanStatusPending,
		now.AddDate(0, 0, 30), nil,
		map[string]string{model.MetaIdempotencyKey: "idem-key", model.MetaSessionKey: "session-001"},
		1, now, now,
	)
}

func TestLoan_ApplyRepayment_PendingMovesToRepaying(t *testing.T) {
	loan := newPendingLoan(t)

	repaying, err := loan.ApplyRepayment(decimal.NewFromInt(2_000), time.Now().UTC())

	require.NoError(t, err)
	assert.True(t, repaying.Status().Equal(valueobject.LoanStatusRepaying))
	assert.True(t, decimal.NewFromInt(800).Equal(repaying.Outstanding()))
}

func TestLoan_ApplyRepayment_PendingCompletesInFull(t *testing.T) {
	loan := newPendingLoan(t)

	completed, err := loan.ApplyRepayment(decimal.NewFromInt(2_800), time.Now().UTC())

	require.NoError(t, err)
	assert.True(t, completed.Status().Equal(valueobject.LoanStatusCompleted))
	assert.True(t, completed.Outstanding().IsZero())
}

func TestLoan_ApplyRepayment_OverpaymentClamps(t *testing.T) {
	loan := newApprovedLoan(t)
	now := time.Now().UTC()
	disbursed, err := loan.MarkDisbursed(now)
	require.NoError(t, err)

	completed, err := disbursed.ApplyRepayment(decimal.NewFromInt(5_000), now)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2_800).Equal(completed.AmountPaid()))
	assert.True(t, completed.Status().Equal(valueobject.LoanStatusCompleted))
}

func TestLoan_ApplyRepayment_TerminalFails(t *testing.T) {
	loan := newApprovedLoan(t)
	now := time.Now().UTC()
	disbursed, err := loan.MarkDisbursed(now)
	require.NoError(t, err)
	completed, err := disbursed.ApplyRepayment(disbursed.AmountDue(), now)
	require.NoError(t, err)

	_, err = completed.ApplyRepayment(decimal.NewFromInt(100), now)

	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
}

func TestLoan_ApplyRepayment_NonPositiveFails(t *testing.T) {
	loan := newApprovedLoan(t)

	_, err := loan.ApplyRepayment(decimal.Zero, time.Now().UTC())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestLoan_MetadataIsCopied(t *testing.T) {
	loan := newApprovedLoan(t)

	meta := loan.Metadata()
	meta[model.MetaChannel] = "tampered"

	assert.Equal(t, "mobile", loan.Metadata()[model.MetaChannel])
}
