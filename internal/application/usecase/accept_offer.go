package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/application/dto"
	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/internal/domain/service"
)

// AcceptOfferConfig carries the tunables of the issuance path.
type AcceptOfferConfig struct {
	IdempotencyTTL time.Duration
	LockTTL        time.Duration
	CooldownWindow time.Duration
}

// DefaultAcceptOfferConfig returns the standard windows.
func DefaultAcceptOfferConfig() AcceptOfferConfig {
	return AcceptOfferConfig{
		IdempotencyTTL: 5 * time.Minute,
		LockTTL:        30 * time.Second,
		CooldownWindow: 2 * time.Hour,
	}
}

// AcceptOfferUseCase turns an accepted offer into exactly one loan, no
// matter how many times the acceptance is submitted concurrently. The
// protocol is: deterministic idempotency key, cache fast path, durable slow
// path, per-(borrower,session) lock, double-checked lookup, create, enqueue
// disbursement.
type AcceptOfferUseCase struct {
	borrowerRepo port.BorrowerRepository
	loanRepo     port.LoanRepository
	sessions     port.OfferSessionStore
	idemCache    port.IdempotencyCache
	eligCache    port.EligibilityCache
	locker       port.Locker
	queue        port.DisbursementQueue
	publisher    port.EventPublisher
	cfg          AcceptOfferConfig
	logger       *slog.Logger
}

// NewAcceptOfferUseCase wires dependencies.
func NewAcceptOfferUseCase(
	borrowerRepo port.BorrowerRepository,
	loanRepo port.LoanRepository,
	sessions port.OfferSessionStore,
	idemCache port.IdempotencyCache,
	eligCache port.EligibilityCache,
	locker port.Locker,
	queue port.DisbursementQueue,
	publisher port.EventPublisher,
	cfg AcceptOfferConfig,
	logger *slog.Logger,
) *AcceptOfferUseCase {
	return &AcceptOfferUseCase{
		borrowerRepo: borrowerRepo,
		loanRepo:     loanRepo,
		sessions:     sessions,
		idemCache:    idemCache,
		eligCache:    eligCache,
		locker:       locker,
		queue:        queue,
		publisher:    publisher,
		cfg:          cfg,
		logger:       logger,
	}
}

// Execute creates at most one loan for the (borrower, session, amount) key.
func (uc *AcceptOfferUseCase) Execute(ctx context.Context, req dto.AcceptOfferRequest) (dto.AcceptOfferResponse, error) {
	now := time.Now().UTC()

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return dto.AcceptOfferResponse{}, ErrInvalidAmount
	}
	if req.SessionKey == "" {
		return dto.AcceptOfferResponse{}, ErrSessionExpired
	}

	// 1. Load the borrower and derive the idempotency key.
	borrower, err := uc.borrowerRepo.FindByID(ctx, req.BorrowerID)
	if err != nil {
		return dto.AcceptOfferResponse{}, fmt.Errorf("find borrower: %w", err)
	}
	key := service.IdempotencyKey(borrower.ID(), req.SessionKey, req.Amount)

	// 2. Fast path: idempotency cache. No lock needed on a hit.
	if loan, ok := uc.cachedLoan(ctx, borrower.ID(), key); ok {
		return dto.AcceptOfferResponse{Loan: toLoanResponse(loan), Deduplicated: true}, nil
	}

	// 3. Slow path: durable lookup by metadata key, scoped to the borrower.
	if loan, err := uc.loanRepo.FindByIdempotencyKey(ctx, borrower.ID(), key); err == nil {
		return dto.AcceptOfferResponse{Loan: toLoanResponse(loan), Deduplicated: true}, nil
	} else if !errors.Is(err, port.ErrNotFound) {
		return dto.AcceptOfferResponse{}, fmt.Errorf("lookup idempotency key: %w", err)
	}

	// 4. Serialize concurrent acceptances for this borrower and session.
	release, err := uc.locker.Acquire(ctx, service.LockKey(borrower.ID(), req.SessionKey), uc.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, port.ErrLockNotAcquired) {
			return dto.AcceptOfferResponse{}, ErrRequestInProgress
		}
		return dto.AcceptOfferResponse{}, fmt.Errorf("acquire lock: %w", err)
	}
	defer release()

	// 5. Double-check: a concurrent holder may have created the loan
	// between the lookup and the lock.
	if loan, err := uc.loanRepo.FindByIdempotencyKey(ctx, borrower.ID(), key); err == nil {
		return dto.AcceptOfferResponse{Loan: toLoanResponse(loan), Deduplicated: true}, nil
	} else if !errors.Is(err, port.ErrNotFound) {
		return dto.AcceptOfferResponse{}, fmt.Errorf("recheck idempotency key: %w", err)
	}

	// 6. Validate the acceptance against the active offer session.
	offer, err := uc.validateSession(ctx, borrower, req, now)
	if err != nil {
		return dto.AcceptOfferResponse{}, err
	}

	// 7. Cooldown fraud control, independent of the idempotency key: a
	// borrower must not open a second loan on the same phone number inside
	// the window by switching sessions.
	recent, err := uc.loanRepo.HasRecentActiveLoan(ctx, borrower.PhoneNumber(), now.Add(-uc.cfg.CooldownWindow))
	if err != nil {
		return dto.AcceptOfferResponse{}, fmt.Errorf("cooldown check: %w", err)
	}
	if recent {
		return dto.AcceptOfferResponse{}, ErrCooldownActive
	}

	// 8. Credit-limit constraints.
	if err := uc.checkCreditLimit(ctx, borrower, req.Amount); err != nil {
		return dto.AcceptOfferResponse{}, err
	}

	// 9. Create the loan in APPROVED state with the keys in its metadata.
	loan, err := model.NewLoan(
		borrower.ID(), req.Amount, offer.InterestRate, offer.PeriodDays,
		key, req.SessionKey, req.Channel, now,
	)
	if err != nil {
		return dto.AcceptOfferResponse{}, fmt.Errorf("create loan: %w", err)
	}
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.AcceptOfferResponse{}, fmt.Errorf("save loan: %w", err)
	}
	if err := uc.borrowerRepo.Save(ctx, borrower.IncrementLoanCount(now)); err != nil {
		return dto.AcceptOfferResponse{}, fmt.Errorf("save borrower: %w", err)
	}

	// 10. Record the fast-path mapping; a failure only costs a cache hit.
	if err := uc.idemCache.SetLoanID(ctx, key, loan.ID(), uc.cfg.IdempotencyTTL); err != nil {
		uc.logger.WarnContext(ctx, "idempotency cache write failed", "loan_id", loan.ID(), "error", err)
	}

	// 11. Enqueue disbursement. Enqueue failures are logged, not fatal:
	// disbursement can be retried or triggered out of band.
	job := port.DisbursementJob{LoanID: loan.ID(), BorrowerID: borrower.ID()}
	if err := uc.queue.Enqueue(ctx, job); err != nil {
		uc.logger.ErrorContext(ctx, "enqueue disbursement failed", "loan_id", loan.ID(), "error", err)
	}

	// 12. The new loan consumes headroom; drop the cached eligibility.
	if err := uc.eligCache.InvalidateBorrower(ctx, borrower.ID()); err != nil {
		uc.logger.WarnContext(ctx, "eligibility invalidation failed", "borrower_id", borrower.ID(), "error", err)
	}

	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		uc.logger.WarnContext(ctx, "publish loan events failed", "loan_id", loan.ID(), "error", err)
	}

	return dto.AcceptOfferResponse{Loan: toLoanResponse(loan)}, nil
}

// cachedLoan resolves the fast-path mapping and verifies the loan belongs to
// the borrower. Cache failures degrade to the slow path.
func (uc *AcceptOfferUseCase) cachedLoan(ctx context.Context, borrowerID, key string) (model.Loan, bool) {
	loanID, err := uc.idemCache.GetLoanID(ctx, key)
	if err != nil {
		if !errors.Is(err, port.ErrCacheMiss) {
			uc.logger.WarnContext(ctx, "idempotency cache read failed", "error", err)
		}
		return model.Loan{}, false
	}
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		uc.logger.WarnContext(ctx, "cached loan lookup failed", "loan_id", loanID, "error", err)
		return model.Loan{}, false
	}
	if loan.BorrowerID() != borrowerID {
		return model.Loan{}, false
	}
	return loan, true
}

// validateSession checks the acceptance against the stored offer session.
func (uc *AcceptOfferUseCase) validateSession(
	ctx context.Context,
	borrower model.Borrower,
	req dto.AcceptOfferRequest,
	now time.Time,
) (model.Offer, error) {
	session, err := uc.sessions.Get(ctx, req.SessionKey)
	if err != nil {
		if errors.Is(err, port.ErrCacheMiss) {
			return model.Offer{}, ErrSessionExpired
		}
		return model.Offer{}, fmt.Errorf("load offer session: %w", err)
	}
	if !session.BelongsTo(borrower.ID()) || session.Expired(now) {
		return model.Offer{}, ErrSessionExpired
	}
	if req.Amount.GreaterThan(session.EligibleAmount) {
		return model.Offer{}, ErrInvalidSelection
	}
	offer, ok := session.FindOffer(req.Amount)
	if !ok {
		return model.Offer{}, ErrInvalidSelection
	}
	return offer, nil
}

// checkCreditLimit enforces the static limit and the headroom constraint
// over the borrower's other active loans.
func (uc *AcceptOfferUseCase) checkCreditLimit(ctx context.Context, borrower model.Borrower, amount decimal.Decimal) error {
	limit := borrower.CreditLimit()
	if amount.GreaterThan(limit) {
		return &CreditLimitError{Headroom: limit}
	}
	outstanding, err := uc.loanRepo.SumActiveOutstanding(ctx, borrower.ID())
	if err != nil {
		return fmt.Errorf("sum active outstanding: %w", err)
	}
	if outstanding.Add(amount).GreaterThan(limit) {
		headroom := limit.Sub(outstanding)
		if headroom.IsNegative() {
			headroom = decimal.Zero
		}
		return &CreditLimitError{Headroom: headroom}
	}
	return nil
}

func toLoanResponse(loan model.Loan) dto.LoanResponse {
	return dto.LoanResponse{
		ID:           loan.ID(),
		BorrowerID:   loan.BorrowerID(),
		Amount:       loan.Amount(),
		AmountDue:    loan.AmountDue(),
		AmountPaid:   loan.AmountPaid(),
		Outstanding:  loan.Outstanding(),
		InterestRate: loan.InterestRate(),
		PeriodDays:   loan.PeriodDays(),
		Status:       loan.Status().String(),
		DueDate:      loan.DueDate(),
		CreatedAt:    loan.CreatedAt(),
		UpdatedAt:    loan.UpdatedAt(),
	}
}
