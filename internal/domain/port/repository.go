package port

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/model"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// BorrowerRepository persists and retrieves borrowers.
type BorrowerRepository interface {
	Save(ctx context.Context, b model.Borrower) error
	FindByID(ctx context.Context, id string) (model.Borrower, error)
	FindByPhoneNumber(ctx context.Context, phone string) (model.Borrower, error)
}

// LoanRepository persists and retrieves loans.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	// FindByIdempotencyKey looks up a loan by the idempotency key stored in
	// its metadata, scoped to the borrower. Returns ErrNotFound when absent.
	FindByIdempotencyKey(ctx context.Context, borrowerID, key string) (model.Loan, error)
	FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.Loan, error)
	// SumActiveOutstanding aggregates the outstanding amount over the
	// borrower's loans whose status counts against credit.
	SumActiveOutstanding(ctx context.Context, borrowerID string) (decimal.Decimal, error)
	// HasRecentActiveLoan reports whether any active loan for the phone
	// number was created after the cutoff. Used by the cooldown fraud check.
	HasRecentActiveLoan(ctx context.Context, phone string, since time.Time) (bool, error)
}

// ScoreHistoryRepository is the write-mostly port over the append-only
// credit score ledger. There is deliberately no update or delete: the ledger
// contract is enforced by the shape of this interface.
type ScoreHistoryRepository interface {
	Append(ctx context.Context, entry model.ScoreHistoryEntry) error
	FindByTransactionID(ctx context.Context, transactionID string) (model.ScoreHistoryEntry, error)
}

// TransactionRepository retrieves repayment transactions recorded by the
// payments collaborator.
type TransactionRepository interface {
	FindByID(ctx context.Context, id string) (model.RepaymentTransaction, error)
}
