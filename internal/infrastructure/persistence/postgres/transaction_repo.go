package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
)

// TransactionRepo implements port.TransactionRepository over the repayment
// transactions table maintained by the payments collaborator.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

// NewTransactionRepo creates a new PostgreSQL-backed transaction reader.
func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// FindByID retrieves a repayment transaction by ID.
func (r *TransactionRepo) FindByID(ctx context.Context, id string) (model.RepaymentTransaction, error) {
	query := `
		SELECT id, loan_id, borrower_id, amount, status, channel, completed_at
		FROM repayment_transactions
		WHERE id = $1
	`
	var (
		txID, loanID, borrowerID string
		amount                   decimal.Decimal
		status, channel          string
		completedAt              time.Time
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&txID, &loanID, &borrowerID, &amount, &status, &channel, &completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RepaymentTransaction{}, port.ErrNotFound
		}
		return model.RepaymentTransaction{}, fmt.Errorf("query repayment transaction: %w", err)
	}

	return model.ReconstructRepaymentTransaction(
		txID, loanID, borrowerID, amount, status, channel, completedAt,
	), nil
}
