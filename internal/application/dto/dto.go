package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ComputeOfferRequest asks for a fresh set of loan offers.
type ComputeOfferRequest struct {
	BorrowerID string `json:"borrower_id"`
	Channel    string `json:"channel"`
}

// AcceptOfferRequest carries a borrower's acceptance of one offer.
type AcceptOfferRequest struct {
	BorrowerID string          `json:"borrower_id"`
	SessionKey string          `json:"session_key"`
	Amount     decimal.Decimal `json:"amount"`
	Channel    string          `json:"channel"`
}

// RecordRepaymentRequest links a confirmed transaction to a loan.
type RecordRepaymentRequest struct {
	TransactionID string `json:"transaction_id"`
	LoanID        string `json:"loan_id"`
}

// GetLoanRequest identifies a loan to retrieve.
type GetLoanRequest struct {
	LoanID string `json:"loan_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// OfferResponse is one candidate loan offer.
type OfferResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	PeriodDays   int             `json:"period_days"`
}

// ComputeOfferResponse carries the offer session shown to the borrower.
type ComputeOfferResponse struct {
	SessionKey     string          `json:"session_key"`
	BorrowerID     string          `json:"borrower_id"`
	EligibleAmount decimal.Decimal `json:"eligible_amount"`
	Offers         []OfferResponse `json:"offers"`
	ExpiresAt      time.Time       `json:"expires_at"`
}

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID           string          `json:"id"`
	BorrowerID   string          `json:"borrower_id"`
	Amount       decimal.Decimal `json:"amount"`
	AmountDue    decimal.Decimal `json:"amount_due"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	PeriodDays   int             `json:"period_days"`
	Status       string          `json:"status"`
	DueDate      time.Time       `json:"due_date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AcceptOfferResponse reports the loan created (or found) for an acceptance.
type AcceptOfferResponse struct {
	Loan LoanResponse `json:"loan"`
	// Deduplicated is true when the request matched a previously created
	// loan instead of creating a new one.
	Deduplicated bool `json:"deduplicated"`
}

// RecordRepaymentResponse reports the scoring outcome of a repayment.
type RecordRepaymentResponse struct {
	PointsAwarded int    `json:"points_awarded"`
	NewScore      int    `json:"new_score"`
	Reason        string `json:"reason"`
	LoanStatus    string `json:"loan_status"`
	// AlreadyProcessed is true when the transaction had been scored before;
	// the recorded result is returned unchanged.
	AlreadyProcessed bool `json:"already_processed"`
}
