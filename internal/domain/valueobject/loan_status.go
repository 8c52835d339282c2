package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan. Transitions are
// forward-only; a loan never moves back to an earlier stage.
type LoanStatus struct {
	value string
}

const (
	loanStatusPending   = "PENDING"
	loanStatusApproved  = "APPROVED"
	loanStatusRejected  = "REJECTED"
	loanStatusDisbursed = "DISBURSED"
	loanStatusRepaying  = "REPAYING"
	loanStatusCompleted = "COMPLETED"
	loanStatusDefaulted = "DEFAULTED"
)

var (
	LoanStatusPending   = LoanStatus{value: loanStatusPending}
	LoanStatusApproved  = LoanStatus{value: loanStatusApproved}
	LoanStatusRejected  = LoanStatus{value: loanStatusRejected}
	LoanStatusDisbursed = LoanStatus{value: loanStatusDisbursed}
	LoanStatusRepaying  = LoanStatus{value: loanStatusRepaying}
	LoanStatusCompleted = LoanStatus{value: loanStatusCompleted}
	LoanStatusDefaulted = LoanStatus{value: loanStatusDefaulted}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusPending:   LoanStatusPending,
	loanStatusApproved:  LoanStatusApproved,
	loanStatusRejected:  LoanStatusRejected,
	loanStatusDisbursed: LoanStatusDisbursed,
	loanStatusRepaying:  LoanStatusRepaying,
	loanStatusCompleted: LoanStatusCompleted,
	loanStatusDefaulted: LoanStatusDefaulted,
}

// loanStatusTransitions encodes the forward-only state machine:
//
//	PENDING  -> APPROVED | REJECTED | REPAYING | COMPLETED | DEFAULTED
//	APPROVED -> DISBURSED | DEFAULTED
//	DISBURSED -> REPAYING | COMPLETED | DEFAULTED
//	REPAYING -> COMPLETED | DEFAULTED
//
// A repayment can land against a loan still marked PENDING, so PENDING
// moves straight to REPAYING or COMPLETED in that case.
// REJECTED, COMPLETED, DEFAULTED are terminal.
var loanStatusTransitions = map[string][]string{
	loanStatusPending:   {loanStatusApproved, loanStatusRejected, loanStatusRepaying, loanStatusCompleted, loanStatusDefaulted},
	loanStatusApproved:  {loanStatusDisbursed, loanStatusDefaulted},
	loanStatusDisbursed: {loanStatusRepaying, loanStatusCompleted, loanStatusDefaulted},
	loanStatusRepaying:  {loanStatusCompleted, loanStatusDefaulted},
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// CanTransitionTo reports whether moving to target is a legal forward step.
// Transitioning a status to itself is allowed as an idempotent no-op.
func (s LoanStatus) CanTransitionTo(target LoanStatus) bool {
	if s.Equal(target) {
		return true
	}
	for _, next := range loanStatusTransitions[s.value] {
		if next == target.value {
			return true
		}
	}
	return false
}

// CountsAgainstCredit reports whether a loan in this status contributes its
// outstanding amount to the borrower's used credit.
func (s LoanStatus) CountsAgainstCredit() bool {
	switch s.value {
	case loanStatusPending, loanStatusApproved, loanStatusDisbursed, loanStatusRepaying, loanStatusDefaulted:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s LoanStatus) Terminal() bool {
	switch s.value {
	case loanStatusRejected, loanStatusCompleted, loanStatusDefaulted:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// RepaymentStatus – borrower-level repayment summary
// ---------------------------------------------------------------------------

// RepaymentStatus summarises how a borrower is servicing their debt.
type RepaymentStatus struct {
	value string
}

const (
	repaymentStatusPending   = "PENDING"
	repaymentStatusPartial   = "PARTIAL"
	repaymentStatusCompleted = "COMPLETED"
	repaymentStatusOverdue   = "OVERDUE"
)

var (
	RepaymentStatusPending   = RepaymentStatus{value: repaymentStatusPending}
	RepaymentStatusPartial   = RepaymentStatus{value: repaymentStatusPartial}
	RepaymentStatusCompleted = RepaymentStatus{value: repaymentStatusCompleted}
	RepaymentStatusOverdue   = RepaymentStatus{value: repaymentStatusOverdue}
)

var validRepaymentStatuses = map[string]RepaymentStatus{
	repaymentStatusPending:   RepaymentStatusPending,
	repaymentStatusPartial:   RepaymentStatusPartial,
	repaymentStatusCompleted: RepaymentStatusCompleted,
	repaymentStatusOverdue:   RepaymentStatusOverdue,
}

// NewRepaymentStatus creates a RepaymentStatus from a raw string.
func NewRepaymentStatus(s string) (RepaymentStatus, error) {
	v, ok := validRepaymentStatuses[s]
	if !ok {
		return RepaymentStatus{}, fmt.Errorf("invalid repayment status: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (s RepaymentStatus) String() string { return s.value }

// IsZero returns true when not initialised.
func (s RepaymentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses match.
func (s RepaymentStatus) Equal(other RepaymentStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
