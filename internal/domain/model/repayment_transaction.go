package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction status values as recorded by the payments collaborator.
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusFailed    = "FAILED"
)

// ---------------------------------------------------------------------------
// RepaymentTransaction – confirmed repayment from the payments collaborator
// ---------------------------------------------------------------------------

// RepaymentTransaction is the read model of a repayment. The scoring
// pipeline only reacts to COMPLETED transactions; the record itself is owned
// by the payments system and never mutated here.
type RepaymentTransaction struct {
	id          string
	loanID      string
	borrowerID  string
	amount      decimal.Decimal
	status      string
	channel     string
	completedAt time.Time
}

// ReconstructRepaymentTransaction rebuilds a transaction from persistence.
func ReconstructRepaymentTransaction(
	id, loanID, borrowerID string,
	amount decimal.Decimal,
	status, channel string,
	completedAt time.Time,
) RepaymentTransaction {
	return RepaymentTransaction{
		id:          id,
		loanID:      loanID,
		borrowerID:  borrowerID,
		amount:      amount,
		status:      status,
		channel:     channel,
		completedAt: completedAt,
	}
}

func (t RepaymentTransaction) ID() string              { return t.id }
func (t RepaymentTransaction) LoanID() string          { return t.loanID }
func (t RepaymentTransaction) BorrowerID() string      { return t.borrowerID }
func (t RepaymentTransaction) Amount() decimal.Decimal { return t.amount }
func (t RepaymentTransaction) Status() string          { return t.status }
func (t RepaymentTransaction) Channel() string         { return t.channel }
func (t RepaymentTransaction) CompletedAt() time.Time  { return t.completedAt }

// Completed reports whether the repayment is confirmed.
func (t RepaymentTransaction) Completed() bool {
	return t.status == TransactionStatusCompleted
}
