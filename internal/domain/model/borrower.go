package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Borrower aggregate root
// ---------------------------------------------------------------------------

// Borrower is an immutable aggregate. Mutations return a new copy. Borrowers
// are never deleted, only status-transitioned.
type Borrower struct {
	id              string
	phoneNumber     string
	score           int
	creditLimit     decimal.Decimal
	autoSyncLimit   bool
	totalRepaid     decimal.Decimal
	repaymentStatus valueobject.RepaymentStatus
	loanCount       int
	version         int
	createdAt       time.Time
	updatedAt       time.Time
}

// ReconstructBorrower rebuilds a Borrower aggregate from persistence.
func ReconstructBorrower(
	id, phoneNumber string,
	score int,
	creditLimit decimal.Decimal,
	autoSyncLimit bool,
	totalRepaid decimal.Decimal,
	repaymentStatus valueobject.RepaymentStatus,
	loanCount int,
	version int,
	createdAt, updatedAt time.Time,
) Borrower {
	return Borrower{
		id:              id,
		phoneNumber:     phoneNumber,
		score:           score,
		creditLimit:     creditLimit,
		autoSyncLimit:   autoSyncLimit,
		totalRepaid:     totalRepaid,
		repaymentStatus: repaymentStatus,
		loanCount:       loanCount,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// ApplyScorePoints adjusts the score by points (positive or negative),
// clamped into [0, maxScore].
func (b Borrower) ApplyScorePoints(points, maxScore int, now time.Time) Borrower {
	next := b
	score := b.score + points
	if score < 0 {
		score = 0
	}
	if maxScore > 0 && score > maxScore {
		score = maxScore
	}
	next.score = score
	next.updatedAt = now
	return next
}

// RecordRepayment adds amount to the borrower's lifetime total and updates
// the repayment status summary.
func (b Borrower) RecordRepayment(amount decimal.Decimal, status valueobject.RepaymentStatus, now time.Time) (Borrower, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return b, errors.New("repayment amount must be positive")
	}
	next := b
	next.totalRepaid = b.totalRepaid.Add(amount)
	next.repaymentStatus = status
	next.updatedAt = now
	return next, nil
}

// ResyncCreditLimit overwrites the credit limit from a freshly computed
// score-derived value. Only meaningful for auto-synced borrowers; the static
// cap does not apply here because the limit itself is being replaced.
func (b Borrower) ResyncCreditLimit(limit decimal.Decimal, now time.Time) Borrower {
	next := b
	next.creditLimit = limit
	next.updatedAt = now
	return next
}

// IncrementLoanCount bumps the number of loans ever issued to the borrower.
func (b Borrower) IncrementLoanCount(now time.Time) Borrower {
	next := b
	next.loanCount = b.loanCount + 1
	next.updatedAt = now
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (b Borrower) ID() string                                   { return b.id }
func (b Borrower) PhoneNumber() string                          { return b.phoneNumber }
func (b Borrower) Score() int                                   { return b.score }
func (b Borrower) CreditLimit() decimal.Decimal                 { return b.creditLimit }
func (b Borrower) AutoSyncLimit() bool                          { return b.autoSyncLimit }
func (b Borrower) TotalRepaid() decimal.Decimal                 { return b.totalRepaid }
func (b Borrower) RepaymentStatus() valueobject.RepaymentStatus { return b.repaymentStatus }
func (b Borrower) LoanCount() int                               { return b.loanCount }
func (b Borrower) Version() int                                 { return b.version }
func (b Borrower) CreatedAt() time.Time                         { return b.createdAt }
func (b Borrower) UpdatedAt() time.Time                         { return b.updatedAt }

// FirstTimeBorrower reports whether the borrower has never taken a loan.
func (b Borrower) FirstTimeBorrower() bool { return b.loanCount == 0 }
