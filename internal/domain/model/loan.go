package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/event"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// Metadata keys stored on every loan for idempotency and session tracing.
const (
	MetaIdempotencyKey = "idempotency_key"
	MetaSessionKey     = "session_key"
	MetaChannel        = "channel"
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy. Status
// transitions are forward-only; amountPaid and outstanding are mutated only
// by the repayment pipeline.
type Loan struct {
	id           string
	borrowerID   string
	amount       decimal.Decimal // requested principal
	amountDue    decimal.Decimal // principal + simple interest
	amountPaid   decimal.Decimal
	interestRate decimal.Decimal // fraction applied once over the period
	periodDays   int
	status       valueobject.LoanStatus
	dueDate      time.Time
	disbursedAt  *time.Time
	metadata     map[string]string
	version      int
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan creates a loan from an accepted offer. The loan starts in APPROVED
// status (pre-disbursement); amountDue is principal plus simple interest and
// the due date is now plus the repayment period.
func NewLoan(
	borrowerID string,
	amount, interestRate decimal.Decimal,
	periodDays int,
	idempotencyKey, sessionKey, channel string,
	now time.Time,
) (Loan, error) {
	if borrowerID == "" {
		return Loan{}, errors.New("borrower ID is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Loan{}, errors.New("amount must be positive")
	}
	if interestRate.IsNegative() {
		return Loan{}, errors.New("interest rate cannot be negative")
	}
	if periodDays <= 0 {
		return Loan{}, errors.New("repayment period must be positive")
	}
	if idempotencyKey == "" {
		return Loan{}, errors.New("idempotency key is required")
	}

	id := uuid.New().String()
	amountDue := amount.Add(amount.Mul(interestRate)).Round(2)
	dueDate := now.AddDate(0, 0, periodDays)

	loan := Loan{
		id:           id,
		borrowerID:   borrowerID,
		amount:       amount,
		amountDue:    amountDue,
		amountPaid:   decimal.Zero,
		interestRate: interestRate,
		periodDays:   periodDays,
		status:       valueobject.LoanStatusApproved,
		dueDate:      dueDate,
		metadata: map[string]string{
			MetaIdempotencyKey: idempotencyKey,
			MetaSessionKey:     sessionKey,
			MetaChannel:        channel,
		},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanApproved(
		id, borrowerID, amount, amountDue, dueDate, channel,
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, borrowerID string,
	amount, amountDue, amountPaid, interestRate decimal.Decimal,
	periodDays int,
	status valueobject.LoanStatus,
	dueDate time.Time,
	disbursedAt *time.Time,
	metadata map[string]string,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return Loan{
		id:           id,
		borrowerID:   borrowerID,
		amount:       amount,
		amountDue:    amountDue,
		amountPaid:   amountPaid,
		interestRate: interestRate,
		periodDays:   periodDays,
		status:       status,
		dueDate:      dueDate,
		disbursedAt:  disbursedAt,
		metadata:     metadata,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// MarkDisbursed transitions APPROVED -> DISBURSED and records the timestamp.
// A loan that is already DISBURSED is returned unchanged: repeat deliveries
// of the disbursement job must be no-ops.
func (l Loan) MarkDisbursed(now time.Time) (Loan, error) {
	if l.status.Equal(valueobject.LoanStatusDisbursed) {
		return l, nil
	}
	if !l.status.Equal(valueobject.LoanStatusApproved) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l.copy()
	next.status = valueobject.LoanStatusDisbursed
	ts := now
	next.disbursedAt = &ts
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewLoanDisbursed(l.id, l.borrowerID, l.amount, now))
	return next, nil
}

// ApplyRepayment credits amount against the loan. amountPaid is clamped so
// it never exceeds amountDue; the status moves to REPAYING, or to COMPLETED
// once nothing remains outstanding.
func (l Loan) ApplyRepayment(amount decimal.Decimal, now time.Time) (Loan, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return l, errors.New("repayment amount must be positive")
	}
	if l.status.Terminal() {
		return l, valueobject.ErrInvalidStatusTransition
	}

	next := l.copy()
	paid := l.amountPaid.Add(amount)
	if paid.GreaterThan(l.amountDue) {
		paid = l.amountDue
	}
	next.amountPaid = paid
	next.updatedAt = now

	if next.Outstanding().IsZero() {
		if !l.status.CanTransitionTo(valueobject.LoanStatusCompleted) {
			return l, valueobject.ErrInvalidStatusTransition
		}
		next.status = valueobject.LoanStatusCompleted
		next.domainEvents = append(next.domainEvents, event.NewLoanCompleted(l.id, l.borrowerID, paid))
		return next, nil
	}

	if !l.status.Equal(valueobject.LoanStatusRepaying) {
		if !l.status.CanTransitionTo(valueobject.LoanStatusRepaying) {
			return l, valueobject.ErrInvalidStatusTransition
		}
		next.status = valueobject.LoanStatusRepaying
	}
	return next, nil
}

// Reject transitions PENDING -> REJECTED.
func (l Loan) Reject(now time.Time) (Loan, error) {
	if !l.status.CanTransitionTo(valueobject.LoanStatusRejected) || l.status.Equal(valueobject.LoanStatusRejected) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l.copy()
	next.status = valueobject.LoanStatusRejected
	next.updatedAt = now
	return next, nil
}

// MarkDefaulted transitions any pre-terminal status to DEFAULTED.
func (l Loan) MarkDefaulted(now time.Time) (Loan, error) {
	if l.status.Terminal() {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l.copy()
	next.status = valueobject.LoanStatusDefaulted
	next.updatedAt = now
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                       { return l.id }
func (l Loan) BorrowerID() string               { return l.borrowerID }
func (l Loan) Amount() decimal.Decimal          { return l.amount }
func (l Loan) AmountDue() decimal.Decimal       { return l.amountDue }
func (l Loan) AmountPaid() decimal.Decimal      { return l.amountPaid }
func (l Loan) InterestRate() decimal.Decimal    { return l.interestRate }
func (l Loan) PeriodDays() int                  { return l.periodDays }
func (l Loan) Status() valueobject.LoanStatus   { return l.status }
func (l Loan) DueDate() time.Time               { return l.dueDate }
func (l Loan) Version() int                     { return l.version }
func (l Loan) CreatedAt() time.Time             { return l.createdAt }
func (l Loan) UpdatedAt() time.Time             { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent { return l.domainEvents }

// DisbursedAt returns the disbursement timestamp, or zero time when the loan
// has not been disbursed.
func (l Loan) DisbursedAt() time.Time {
	if l.disbursedAt == nil {
		return time.Time{}
	}
	return *l.disbursedAt
}

// Outstanding is amountDue minus amountPaid, floored at zero.
func (l Loan) Outstanding() decimal.Decimal {
	out := l.amountDue.Sub(l.amountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Metadata returns a copy of the metadata bag.
func (l Loan) Metadata() map[string]string {
	out := make(map[string]string, len(l.metadata))
	for k, v := range l.metadata {
		out[k] = v
	}
	return out
}

// IdempotencyKey returns the idempotency key recorded at creation.
func (l Loan) IdempotencyKey() string { return l.metadata[MetaIdempotencyKey] }

// SessionKey returns the originating offer session key.
func (l Loan) SessionKey() string { return l.metadata[MetaSessionKey] }

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

// copy duplicates the loan with independent metadata and event slices.
func (l Loan) copy() Loan {
	next := l
	next.metadata = l.Metadata()
	next.domainEvents = copyEvents(l.domainEvents)
	return next
}

func copyEvents(events []event.DomainEvent) []event.DomainEvent {
	if events == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(events))
	copy(out, events)
	return out
}
