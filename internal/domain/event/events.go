package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DomainEvent is the interface all lending domain events implement.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent provides the common envelope for all events.
type BaseEvent struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"event_type"`
	Aggregate  string    `json:"aggregate_id"`
	RecordedAt time.Time `json:"occurred_at"`
}

// NewBaseEvent creates an envelope with a generated UUID and the current time.
func NewBaseEvent(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Aggregate:  aggregateID,
		RecordedAt: time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.RecordedAt }

// ---------------------------------------------------------------------------
// Offer events
// ---------------------------------------------------------------------------

// OfferComputed is raised when a set of loan offers is prepared for a borrower.
type OfferComputed struct {
	BaseEvent
	BorrowerID     string          `json:"borrower_id"`
	SessionKey     string          `json:"session_key"`
	EligibleAmount decimal.Decimal `json:"eligible_amount"`
	OfferCount     int             `json:"offer_count"`
}

func NewOfferComputed(borrowerID, sessionKey string, eligibleAmount decimal.Decimal, offerCount int) OfferComputed {
	return OfferComputed{
		BaseEvent:      NewBaseEvent("lending.offer.computed", borrowerID),
		BorrowerID:     borrowerID,
		SessionKey:     sessionKey,
		EligibleAmount: eligibleAmount,
		OfferCount:     offerCount,
	}
}

// ---------------------------------------------------------------------------
// Loan events
// ---------------------------------------------------------------------------

// LoanApproved is raised when a loan record is created from an accepted offer.
type LoanApproved struct {
	BaseEvent
	BorrowerID string          `json:"borrower_id"`
	Amount     decimal.Decimal `json:"amount"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	DueDate    time.Time       `json:"due_date"`
	Channel    string          `json:"channel"`
}

func NewLoanApproved(loanID, borrowerID string, amount, amountDue decimal.Decimal, dueDate time.Time, channel string) LoanApproved {
	return LoanApproved{
		BaseEvent:  NewBaseEvent("lending.loan.approved", loanID),
		BorrowerID: borrowerID,
		Amount:     amount,
		AmountDue:  amountDue,
		DueDate:    dueDate,
		Channel:    channel,
	}
}

// LoanDisbursed is raised when funds reach the borrower.
type LoanDisbursed struct {
	BaseEvent
	BorrowerID  string          `json:"borrower_id"`
	Amount      decimal.Decimal `json:"amount"`
	DisbursedAt time.Time       `json:"disbursed_at"`
}

func NewLoanDisbursed(loanID, borrowerID string, amount decimal.Decimal, disbursedAt time.Time) LoanDisbursed {
	return LoanDisbursed{
		BaseEvent:   NewBaseEvent("lending.loan.disbursed", loanID),
		BorrowerID:  borrowerID,
		Amount:      amount,
		DisbursedAt: disbursedAt,
	}
}

// LoanCompleted is raised when the outstanding amount reaches zero.
type LoanCompleted struct {
	BaseEvent
	BorrowerID string          `json:"borrower_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

func NewLoanCompleted(loanID, borrowerID string, amountPaid decimal.Decimal) LoanCompleted {
	return LoanCompleted{
		BaseEvent:  NewBaseEvent("lending.loan.completed", loanID),
		BorrowerID: borrowerID,
		AmountPaid: amountPaid,
	}
}

// RepaymentRecorded is raised when a completed repayment transaction is
// credited against a loan.
type RepaymentRecorded struct {
	BaseEvent
	BorrowerID    string          `json:"borrower_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	LoanStatus    string          `json:"loan_status"`
}

func NewRepaymentRecorded(loanID, borrowerID, transactionID string, amount, outstanding decimal.Decimal, loanStatus string) RepaymentRecorded {
	return RepaymentRecorded{
		BaseEvent:     NewBaseEvent("lending.repayment.recorded", loanID),
		BorrowerID:    borrowerID,
		TransactionID: transactionID,
		Amount:        amount,
		Outstanding:   outstanding,
		LoanStatus:    loanStatus,
	}
}

// ---------------------------------------------------------------------------
// Score events
// ---------------------------------------------------------------------------

// ScoreUpdated is raised after a repayment mutates the borrower's score.
type ScoreUpdated struct {
	BaseEvent
	BorrowerID    string `json:"borrower_id"`
	LoanID        string `json:"loan_id"`
	TransactionID string `json:"transaction_id"`
	PreviousScore int    `json:"previous_score"`
	NewScore      int    `json:"new_score"`
	PointsAwarded int    `json:"points_awarded"`
	Reason        string `json:"reason"`
}

func NewScoreUpdated(borrowerID, loanID, transactionID string, previousScore, newScore, points int, reason string) ScoreUpdated {
	return ScoreUpdated{
		BaseEvent:     NewBaseEvent("lending.score.updated", borrowerID),
		BorrowerID:    borrowerID,
		LoanID:        loanID,
		TransactionID: transactionID,
		PreviousScore: previousScore,
		NewScore:      newScore,
		PointsAwarded: points,
		Reason:        reason,
	}
}
