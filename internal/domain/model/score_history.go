package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// ScoreHistoryEntry – append-only credit score ledger row
// ---------------------------------------------------------------------------

// ScoreHistoryEntry records one score mutation. Entries are never updated or
// deleted after creation; the ledger is the audit trail the repayment
// pipeline consults to avoid double-awarding. The type deliberately exposes
// no mutators.
type ScoreHistoryEntry struct {
	id            string
	borrowerID    string
	loanID        string
	transactionID string
	previousScore int
	newScore      int
	points        int
	reason        valueobject.AwardReason
	metadata      valueobject.AwardMetadata
	createdAt     time.Time
}

// NewScoreHistoryEntry creates a ledger row for a positive award.
func NewScoreHistoryEntry(
	borrowerID, loanID, transactionID string,
	previousScore, newScore, points int,
	reason valueobject.AwardReason,
	metadata valueobject.AwardMetadata,
	now time.Time,
) (ScoreHistoryEntry, error) {
	if borrowerID == "" {
		return ScoreHistoryEntry{}, errors.New("borrower ID is required")
	}
	if transactionID == "" {
		return ScoreHistoryEntry{}, errors.New("transaction ID is required")
	}
	if !reason.Awardable() {
		return ScoreHistoryEntry{}, errors.New("only awardable reasons may be recorded")
	}
	return ScoreHistoryEntry{
		id:            uuid.New().String(),
		borrowerID:    borrowerID,
		loanID:        loanID,
		transactionID: transactionID,
		previousScore: previousScore,
		newScore:      newScore,
		points:        points,
		reason:        reason,
		metadata:      metadata,
		createdAt:     now,
	}, nil
}

// ReconstructScoreHistoryEntry rebuilds a ledger row from persistence.
func ReconstructScoreHistoryEntry(
	id, borrowerID, loanID, transactionID string,
	previousScore, newScore, points int,
	reason valueobject.AwardReason,
	metadata valueobject.AwardMetadata,
	createdAt time.Time,
) ScoreHistoryEntry {
	return ScoreHistoryEntry{
		id:            id,
		borrowerID:    borrowerID,
		loanID:        loanID,
		transactionID: transactionID,
		previousScore: previousScore,
		newScore:      newScore,
		points:        points,
		reason:        reason,
		metadata:      metadata,
		createdAt:     createdAt,
	}
}

func (e ScoreHistoryEntry) ID() string                      { return e.id }
func (e ScoreHistoryEntry) BorrowerID() string              { return e.borrowerID }
func (e ScoreHistoryEntry) LoanID() string                  { return e.loanID }
func (e ScoreHistoryEntry) TransactionID() string           { return e.transactionID }
func (e ScoreHistoryEntry) PreviousScore() int              { return e.previousScore }
func (e ScoreHistoryEntry) NewScore() int                   { return e.newScore }
func (e ScoreHistoryEntry) Points() int                     { return e.points }
func (e ScoreHistoryEntry) Reason() valueobject.AwardReason { return e.reason }
func (e ScoreHistoryEntry) Metadata() valueobject.AwardMetadata { return e.metadata }
func (e ScoreHistoryEntry) CreatedAt() time.Time            { return e.createdAt }
