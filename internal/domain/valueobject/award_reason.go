package valueobject

// AwardReason classifies why points were (or were not) awarded for a
// repayment. The positive reasons are recorded verbatim in the credit score
// history ledger; the zero-award reasons never produce a ledger row.
type AwardReason string

const (
	// AwardReasonPartialRepayment marks points earned by a repayment that
	// leaves a balance outstanding.
	AwardReasonPartialRepayment AwardReason = "partial_repayment"
	// AwardReasonLoanCompleted marks points earned by the repayment that
	// closes the loan.
	AwardReasonLoanCompleted AwardReason = "loan_completed"
	// AwardReasonInvalidAmount marks a zero award for a non-positive
	// repayment amount.
	AwardReasonInvalidAmount AwardReason = "invalid_amount"
	// AwardReasonBelowMinimumThreshold marks a partial repayment whose
	// scaled points fell under the configured floor.
	AwardReasonBelowMinimumThreshold AwardReason = "below_minimum_threshold"
)

// Awardable reports whether the reason corresponds to a positive award that
// should be persisted to the ledger.
func (r AwardReason) Awardable() bool {
	return r == AwardReasonPartialRepayment || r == AwardReasonLoanCompleted
}

// String returns the string representation.
func (r AwardReason) String() string { return string(r) }
