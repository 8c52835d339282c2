package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/credimart/lending-service/internal/application/dto"
	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// DisburseLoanUseCase performs the disbursement side effect for one queued
// job. It is idempotent against repeated delivery: an already-disbursed loan
// is treated as success with no side effects.
type DisburseLoanUseCase struct {
	loanRepo  port.LoanRepository
	sessions  port.OfferSessionStore
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewDisburseLoanUseCase wires dependencies.
func NewDisburseLoanUseCase(
	loanRepo port.LoanRepository,
	sessions port.OfferSessionStore,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *DisburseLoanUseCase {
	return &DisburseLoanUseCase{
		loanRepo:  loanRepo,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute disburses the loan referenced by the job. Errors returned here are
// retried by the queue's backoff policy.
func (uc *DisburseLoanUseCase) Execute(ctx context.Context, job port.DisbursementJob) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	// 1. Load the loan.
	loan, err := uc.loanRepo.FindByID(ctx, job.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Repeat delivery for a disbursed loan is a no-op success.
	if loan.Status().Equal(valueobject.LoanStatusDisbursed) {
		uc.logger.InfoContext(ctx, "loan already disbursed, skipping", "loan_id", loan.ID())
		return toLoanResponse(loan), nil
	}

	// 3. Transition APPROVED -> DISBURSED and persist.
	loan, err = loan.MarkDisbursed(now)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("mark disbursed: %w", err)
	}
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 4. Publish the disbursement event to downstream consumers.
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	// 5. Invalidate the originating offer session only after the
	// disbursement succeeded, so a failed attempt can retry against it.
	if sessionKey := loan.SessionKey(); sessionKey != "" {
		if err := uc.sessions.Delete(ctx, sessionKey); err != nil {
			uc.logger.WarnContext(ctx, "session invalidation failed", "session_key", sessionKey, "error", err)
		}
	}

	return toLoanResponse(loan), nil
}
