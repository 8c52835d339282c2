package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

const loanColumns = `
	id, borrower_id, amount, amount_due, amount_paid, interest_rate,
	period_days, status, due_date, disbursed_at, metadata,
	version, created_at, updated_at
`

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Save persists a loan with optimistic locking on version. The metadata bag
// is stored as jsonb; a partial unique index on the idempotency key makes
// duplicate inserts fail even if every cache layer above missed.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	metadata, err := json.Marshal(loan.Metadata())
	if err != nil {
		return fmt.Errorf("marshal loan metadata: %w", err)
	}

	var disbursedAt *time.Time
	if ts := loan.DisbursedAt(); !ts.IsZero() {
		disbursedAt = &ts
	}

	query := `
		INSERT INTO loans (
			id, borrower_id, amount, amount_due, amount_paid, interest_rate,
			period_days, status, due_date, disbursed_at, metadata,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET
			amount_paid  = EXCLUDED.amount_paid,
			status       = EXCLUDED.status,
			disbursed_at = EXCLUDED.disbursed_at,
			version      = loans.version + 1,
			updated_at   = EXCLUDED.updated_at
		WHERE loans.version = $12
	`
	tag, err := r.pool.Exec(ctx, query,
		loan.ID(), loan.BorrowerID(), loan.Amount(), loan.AmountDue(), loan.AmountPaid(), loan.InterestRate(),
		loan.PeriodDays(), loan.Status().String(), loan.DueDate(), disbursedAt, metadata,
		loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("optimistic locking conflict on loan")
	}
	return nil
}

// FindByID retrieves a loan by ID.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return r.scanOneLoan(ctx, query, id)
}

// FindByIdempotencyKey retrieves the borrower's loan carrying the given
// idempotency key in its metadata.
func (r *LoanRepo) FindByIdempotencyKey(ctx context.Context, borrowerID, key string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
		WHERE borrower_id = $1 AND metadata->>'idempotency_key' = $2`
	return r.scanOneLoan(ctx, query, borrowerID, key)
}

// FindByBorrowerID retrieves all loans for a borrower, newest first.
func (r *LoanRepo) FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
		WHERE borrower_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// SumActiveOutstanding aggregates amount_due minus amount_paid over the
// borrower's loans in statuses that count against the credit limit.
func (r *LoanRepo) SumActiveOutstanding(ctx context.Context, borrowerID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_due - amount_paid), 0)
		FROM loans
		WHERE borrower_id = $1
		  AND status IN ('PENDING','APPROVED','DISBURSED','REPAYING','DEFAULTED')
	`
	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, borrowerID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum outstanding: %w", err)
	}
	if sum.IsNegative() {
		return decimal.Zero, nil
	}
	return sum, nil
}

// HasRecentActiveLoan reports whether any active loan exists for the phone
// number created after the cutoff.
func (r *LoanRepo) HasRecentActiveLoan(ctx context.Context, phone string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM loans l
			JOIN borrowers b ON b.id = l.borrower_id
			WHERE b.phone_number = $1
			  AND l.created_at > $2
			  AND l.status IN ('PENDING','APPROVED','DISBURSED','REPAYING','DEFAULTED')
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, phone, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("query recent loans: %w", err)
	}
	return exists, nil
}

func (r *LoanRepo) scanOneLoan(ctx context.Context, query string, args ...any) (model.Loan, error) {
	loan, err := scanLoanRow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, port.ErrNotFound
		}
		return model.Loan{}, err
	}
	return loan, nil
}

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, borrowerID       string
		amount, amountDue    decimal.Decimal
		amountPaid           decimal.Decimal
		interestRate         decimal.Decimal
		periodDays           int
		statusStr            string
		dueDate              time.Time
		disbursedAt          *time.Time
		metadataRaw          []byte
		version              int
		createdAt, updatedAt time.Time
	)

	err := s.Scan(
		&id, &borrowerID, &amount, &amountDue, &amountPaid, &interestRate,
		&periodDays, &statusStr, &dueDate, &disbursedAt, &metadataRaw,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, pgx.ErrNoRows
		}
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}

	metadata := map[string]string{}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
			return model.Loan{}, fmt.Errorf("unmarshal loan metadata: %w", err)
		}
	}

	return model.ReconstructLoan(
		id, borrowerID,
		amount, amountDue, amountPaid, interestRate,
		periodDays, status, dueDate, disbursedAt, metadata,
		version, createdAt, updatedAt,
	), nil
}
