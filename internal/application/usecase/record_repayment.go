package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/application/dto"
	"github.com/credimart/lending-service/internal/domain/event"
	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/internal/domain/service"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// RecordRepaymentUseCase is the score update pipeline: on a confirmed
// repayment it mutates the loan and borrower, awards points through the
// scoring engine, appends the ledger row, and invalidates caches. A
// transaction that was already scored returns the recorded result unchanged.
type RecordRepaymentUseCase struct {
	txRepo       port.TransactionRepository
	loanRepo     port.LoanRepository
	borrowerRepo port.BorrowerRepository
	historyRepo  port.ScoreHistoryRepository
	engine       *service.ScoringEngine
	calculator   *service.EligibilityCalculator
	configStore  port.ConfigStore
	cache        port.EligibilityCache
	publisher    port.EventPublisher
	logger       *slog.Logger
}

// NewRecordRepaymentUseCase wires dependencies.
func NewRecordRepaymentUseCase(
	txRepo port.TransactionRepository,
	loanRepo port.LoanRepository,
	borrowerRepo port.BorrowerRepository,
	historyRepo port.ScoreHistoryRepository,
	engine *service.ScoringEngine,
	calculator *service.EligibilityCalculator,
	configStore port.ConfigStore,
	cache port.EligibilityCache,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *RecordRepaymentUseCase {
	return &RecordRepaymentUseCase{
		txRepo:       txRepo,
		loanRepo:     loanRepo,
		borrowerRepo: borrowerRepo,
		historyRepo:  historyRepo,
		engine:       engine,
		calculator:   calculator,
		configStore:  configStore,
		cache:        cache,
		publisher:    publisher,
		logger:       logger,
	}
}

// Execute processes a confirmed repayment transaction.
func (uc *RecordRepaymentUseCase) Execute(ctx context.Context, req dto.RecordRepaymentRequest) (dto.RecordRepaymentResponse, error) {
	now := time.Now().UTC()

	// 1. Load and validate the transaction.
	tx, err := uc.txRepo.FindByID(ctx, req.TransactionID)
	if err != nil {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("find transaction: %w", err)
	}
	if !tx.Completed() {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("transaction %s is not completed", tx.ID())
	}

	// 2. Load the loan and verify the linkage.
	loanID := req.LoanID
	if loanID == "" {
		loanID = tx.LoanID()
	}
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}
	if tx.LoanID() != "" && tx.LoanID() != loan.ID() {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("transaction %s does not belong to loan %s", tx.ID(), loan.ID())
	}

	// 3. Idempotency guard: a ledger row referencing this transaction means
	// the repayment was already scored. Return the recorded result.
	if entry, err := uc.historyRepo.FindByTransactionID(ctx, tx.ID()); err == nil {
		return dto.RecordRepaymentResponse{
			PointsAwarded:    entry.Points(),
			NewScore:         entry.NewScore(),
			Reason:           entry.Reason().String(),
			LoanStatus:       loan.Status().String(),
			AlreadyProcessed: true,
		}, nil
	} else if !errors.Is(err, port.ErrNotFound) {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("check score history: %w", err)
	}

	// 4. Credit the repayment against the loan.
	loan, err = loan.ApplyRepayment(tx.Amount(), now)
	if err != nil {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("apply repayment: %w", err)
	}
	fullRepayment := loan.Status().Equal(valueobject.LoanStatusCompleted)
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 5. Update the borrower's repayment summary.
	borrower, err := uc.borrowerRepo.FindByID(ctx, loan.BorrowerID())
	if err != nil {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("find borrower: %w", err)
	}
	borrower, err = borrower.RecordRepayment(tx.Amount(), repaymentSummary(loan, fullRepayment, now), now)
	if err != nil {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("record repayment: %w", err)
	}

	// 6. Score the repayment.
	scoringCfg, err := uc.configStore.ScoringConfig(ctx)
	if err != nil {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("load scoring config: %w", err)
	}
	award := uc.engine.Award(service.RepaymentEvent{
		Amount:        tx.Amount(),
		LoanAmount:    loan.Amount(),
		DisbursedAt:   loan.DisbursedAt(),
		RepaidAt:      tx.CompletedAt(),
		FullRepayment: fullRepayment,
	}, scoringCfg)

	previousScore := borrower.Score()
	var entry model.ScoreHistoryEntry

	// 7. Apply awarded points. Zero-point awards mutate no score and write
	// no ledger row.
	if award.Points > 0 && award.Reason.Awardable() {
		borrower = borrower.ApplyScorePoints(award.Points, scoringCfg.MaxScore, now)
		if borrower.AutoSyncLimit() {
			borrower, err = uc.resyncCreditLimit(ctx, borrower, now)
			if err != nil {
				return dto.RecordRepaymentResponse{}, err
			}
		}
		entry, err = model.NewScoreHistoryEntry(
			borrower.ID(), loan.ID(), tx.ID(),
			previousScore, borrower.Score(), award.Points,
			award.Reason, award.Metadata, now,
		)
		if err != nil {
			return dto.RecordRepaymentResponse{}, fmt.Errorf("create history entry: %w", err)
		}
	}

	// 8. Persist the borrower, then the append-only ledger row.
	if err := uc.borrowerRepo.Save(ctx, borrower); err != nil {
		return dto.RecordRepaymentResponse{}, fmt.Errorf("save borrower: %w", err)
	}
	if entry.ID() != "" {
		if err := uc.historyRepo.Append(ctx, entry); err != nil {
			return dto.RecordRepaymentResponse{}, fmt.Errorf("append score history: %w", err)
		}
	}

	// 9. Invalidate every per-borrower cached value.
	if err := uc.cache.InvalidateBorrower(ctx, borrower.ID()); err != nil {
		uc.logger.WarnContext(ctx, "borrower cache invalidation failed", "borrower_id", borrower.ID(), "error", err)
	}

	// 10. Publish events; failures never fail the repayment.
	events := loan.DomainEvents()
	events = append(events, event.NewRepaymentRecorded(
		loan.ID(), borrower.ID(), tx.ID(),
		tx.Amount(), loan.Outstanding(), loan.Status().String(),
	))
	if entry.ID() != "" {
		events = append(events, event.NewScoreUpdated(
			borrower.ID(), loan.ID(), tx.ID(),
			previousScore, borrower.Score(), award.Points, award.Reason.String(),
		))
	}
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.WarnContext(ctx, "publish repayment events failed", "loan_id", loan.ID(), "error", err)
	}

	return dto.RecordRepaymentResponse{
		PointsAwarded: award.Points,
		NewScore:      borrower.Score(),
		Reason:        award.Reason.String(),
		LoanStatus:    loan.Status().String(),
	}, nil
}

// resyncCreditLimit overwrites an auto-synced borrower's credit limit from
// their new score. Isolated here so the main update path stays testable.
func (uc *RecordRepaymentUseCase) resyncCreditLimit(ctx context.Context, borrower model.Borrower, now time.Time) (model.Borrower, error) {
	cfg, err := uc.configStore.EligibilityConfig(ctx)
	if err != nil {
		return borrower, fmt.Errorf("load eligibility config: %w", err)
	}
	limit := uc.calculator.EligibleAmount(borrower, decimal.Zero, cfg)
	return borrower.ResyncCreditLimit(limit, now), nil
}

// repaymentSummary maps the loan state after a repayment onto the borrower's
// summary status.
func repaymentSummary(loan model.Loan, fullRepayment bool, now time.Time) valueobject.RepaymentStatus {
	switch {
	case fullRepayment:
		return valueobject.RepaymentStatusCompleted
	case now.After(loan.DueDate()):
		return valueobject.RepaymentStatusOverdue
	default:
		return valueobject.RepaymentStatusPartial
	}
}
