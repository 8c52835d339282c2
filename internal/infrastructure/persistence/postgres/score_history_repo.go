package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// ScoreHistoryRepo implements port.ScoreHistoryRepository. The table is
// append-only; this repository intentionally has no update or delete.
type ScoreHistoryRepo struct {
	pool *pgxpool.Pool
}

// NewScoreHistoryRepo creates a new PostgreSQL-backed score ledger.
func NewScoreHistoryRepo(pool *pgxpool.Pool) *ScoreHistoryRepo {
	return &ScoreHistoryRepo{pool: pool}
}

// Append inserts a ledger row. The unique index on transaction_id rejects a
// second award for the same repayment.
func (r *ScoreHistoryRepo) Append(ctx context.Context, entry model.ScoreHistoryEntry) error {
	metadata, err := json.Marshal(entry.Metadata())
	if err != nil {
		return fmt.Errorf("marshal award metadata: %w", err)
	}

	query := `
		INSERT INTO score_history (
			id, borrower_id, loan_id, transaction_id,
			previous_score, new_score, points, reason, metadata, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err = r.pool.Exec(ctx, query,
		entry.ID(), entry.BorrowerID(), entry.LoanID(), entry.TransactionID(),
		entry.PreviousScore(), entry.NewScore(), entry.Points(), entry.Reason().String(), metadata, entry.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("append score history: %w", err)
	}
	return nil
}

// FindByTransactionID retrieves the ledger row for a repayment transaction.
func (r *ScoreHistoryRepo) FindByTransactionID(ctx context.Context, transactionID string) (model.ScoreHistoryEntry, error) {
	query := `
		SELECT id, borrower_id, loan_id, transaction_id,
		       previous_score, new_score, points, reason, metadata, created_at
		FROM score_history
		WHERE transaction_id = $1
	`
	var (
		id, borrowerID, loanID, txID    string
		previousScore, newScore, points int
		reasonStr                       string
		metadataRaw                     []byte
		createdAt                       time.Time
	)
	err := r.pool.QueryRow(ctx, query, transactionID).Scan(
		&id, &borrowerID, &loanID, &txID,
		&previousScore, &newScore, &points, &reasonStr, &metadataRaw, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ScoreHistoryEntry{}, port.ErrNotFound
		}
		return model.ScoreHistoryEntry{}, fmt.Errorf("query score history: %w", err)
	}

	var metadata valueobject.AwardMetadata
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
			return model.ScoreHistoryEntry{}, fmt.Errorf("unmarshal award metadata: %w", err)
		}
	}

	return model.ReconstructScoreHistoryEntry(
		id, borrowerID, loanID, txID,
		previousScore, newScore, points,
		valueobject.AwardReason(reasonStr), metadata, createdAt,
	), nil
}
