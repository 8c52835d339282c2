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
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// BorrowerRepo implements port.BorrowerRepository.
type BorrowerRepo struct {
	pool *pgxpool.Pool
}

// NewBorrowerRepo creates a new PostgreSQL-backed borrower repository.
func NewBorrowerRepo(pool *pgxpool.Pool) *BorrowerRepo {
	return &BorrowerRepo{pool: pool}
}

// Save persists a borrower with optimistic locking on version.
func (r *BorrowerRepo) Save(ctx context.Context, b model.Borrower) error {
	query := `
		INSERT INTO borrowers (
			id, phone_number, score, credit_limit, auto_sync_limit,
			total_repaid, repayment_status, loan_count,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			score            = EXCLUDED.score,
			credit_limit     = EXCLUDED.credit_limit,
			auto_sync_limit  = EXCLUDED.auto_sync_limit,
			total_repaid     = EXCLUDED.total_repaid,
			repayment_status = EXCLUDED.repayment_status,
			loan_count       = EXCLUDED.loan_count,
			version          = borrowers.version + 1,
			updated_at       = EXCLUDED.updated_at
		WHERE borrowers.version = $9
	`
	tag, err := r.pool.Exec(ctx, query,
		b.ID(), b.PhoneNumber(), b.Score(), b.CreditLimit(), b.AutoSyncLimit(),
		b.TotalRepaid(), b.RepaymentStatus().String(), b.LoanCount(),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save borrower: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("optimistic locking conflict on borrower")
	}
	return nil
}

// FindByID retrieves a borrower by ID.
func (r *BorrowerRepo) FindByID(ctx context.Context, id string) (model.Borrower, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByPhoneNumber retrieves a borrower by phone number.
func (r *BorrowerRepo) FindByPhoneNumber(ctx context.Context, phone string) (model.Borrower, error) {
	return r.findOne(ctx, `WHERE phone_number = $1`, phone)
}

func (r *BorrowerRepo) findOne(ctx context.Context, where string, args ...any) (model.Borrower, error) {
	query := `
		SELECT id, phone_number, score, credit_limit, auto_sync_limit,
		       total_repaid, repayment_status, loan_count,
		       version, created_at, updated_at
		FROM borrowers ` + where

	var (
		id, phoneNumber      string
		score                int
		creditLimit          decimal.Decimal
		autoSyncLimit        bool
		totalRepaid          decimal.Decimal
		repaymentStatusStr   string
		loanCount, version   int
		createdAt, updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&id, &phoneNumber, &score, &creditLimit, &autoSyncLimit,
		&totalRepaid, &repaymentStatusStr, &loanCount,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Borrower{}, port.ErrNotFound
		}
		return model.Borrower{}, fmt.Errorf("query borrower: %w", err)
	}

	repaymentStatus, err := valueobject.NewRepaymentStatus(repaymentStatusStr)
	if err != nil {
		return model.Borrower{}, fmt.Errorf("parse repayment status: %w", err)
	}

	return model.ReconstructBorrower(
		id, phoneNumber, score, creditLimit, autoSyncLimit,
		totalRepaid, repaymentStatus, loanCount,
		version, createdAt, updatedAt,
	), nil
}
