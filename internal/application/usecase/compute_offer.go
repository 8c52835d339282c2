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
)

// offerFractions are the slices of the eligible amount presented as
// candidate offers, smallest first.
var offerFractions = []decimal.Decimal{
	decimal.RequireFromString("0.5"),
	decimal.RequireFromString("0.75"),
	decimal.NewFromInt(1),
}

// ComputeOfferConfig carries the tunables of the offer path.
type ComputeOfferConfig struct {
	SessionTTL     time.Duration
	EligibilityTTL time.Duration
}

// DefaultComputeOfferConfig returns the standard TTLs.
func DefaultComputeOfferConfig() ComputeOfferConfig {
	return ComputeOfferConfig{
		SessionTTL:     10 * time.Minute,
		EligibilityTTL: 5 * time.Minute,
	}
}

// ComputeOfferUseCase derives a borrower's eligibility and prepares an
// ephemeral offer session.
type ComputeOfferUseCase struct {
	borrowerRepo port.BorrowerRepository
	loanRepo     port.LoanRepository
	cache        port.EligibilityCache
	sessions     port.OfferSessionStore
	configStore  port.ConfigStore
	calculator   *service.EligibilityCalculator
	publisher    port.EventPublisher
	cfg          ComputeOfferConfig
	logger       *slog.Logger
}

// NewComputeOfferUseCase wires dependencies.
func NewComputeOfferUseCase(
	borrowerRepo port.BorrowerRepository,
	loanRepo port.LoanRepository,
	cache port.EligibilityCache,
	sessions port.OfferSessionStore,
	configStore port.ConfigStore,
	calculator *service.EligibilityCalculator,
	publisher port.EventPublisher,
	cfg ComputeOfferConfig,
	logger *slog.Logger,
) *ComputeOfferUseCase {
	return &ComputeOfferUseCase{
		borrowerRepo: borrowerRepo,
		loanRepo:     loanRepo,
		cache:        cache,
		sessions:     sessions,
		configStore:  configStore,
		calculator:   calculator,
		publisher:    publisher,
		cfg:          cfg,
		logger:       logger,
	}
}

// Execute computes offers for a borrower and stores the session.
func (uc *ComputeOfferUseCase) Execute(ctx context.Context, req dto.ComputeOfferRequest) (dto.ComputeOfferResponse, error) {
	now := time.Now().UTC()

	// 1. Load the borrower.
	borrower, err := uc.borrowerRepo.FindByID(ctx, req.BorrowerID)
	if err != nil {
		return dto.ComputeOfferResponse{}, fmt.Errorf("find borrower: %w", err)
	}

	// 2. Derive eligibility, preferring the cached value.
	elig, err := uc.eligibility(ctx, borrower)
	if err != nil {
		return dto.ComputeOfferResponse{}, err
	}
	if elig.Amount.LessThanOrEqual(decimal.Zero) {
		return dto.ComputeOfferResponse{}, ErrNoCreditAvailable
	}

	// 3. Build candidate offers from the eligible amount.
	offers := buildOffers(elig)
	if len(offers) == 0 {
		return dto.ComputeOfferResponse{}, ErrNoOffers
	}

	// 4. Store the ephemeral session.
	session := model.NewOfferSession(borrower.ID(), elig.Amount, offers, uc.cfg.SessionTTL, now)
	if err := uc.sessions.Put(ctx, session, uc.cfg.SessionTTL); err != nil {
		return dto.ComputeOfferResponse{}, fmt.Errorf("store offer session: %w", err)
	}

	// 5. Publish the offer event; failures here never fail the request.
	evt := event.NewOfferComputed(borrower.ID(), session.SessionKey, elig.Amount, len(offers))
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.logger.WarnContext(ctx, "publish offer event failed", "borrower_id", borrower.ID(), "error", err)
	}

	return toComputeOfferResponse(session), nil
}

// eligibility returns the cached eligibility when fresh, otherwise computes
// and caches it. Cache failures are logged and swallowed.
func (uc *ComputeOfferUseCase) eligibility(ctx context.Context, borrower model.Borrower) (service.Eligibility, error) {
	cached, err := uc.cache.GetAmount(ctx, borrower.ID())
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, port.ErrCacheMiss) {
		uc.logger.WarnContext(ctx, "eligibility cache read failed", "borrower_id", borrower.ID(), "error", err)
	}

	cfg, err := uc.configStore.EligibilityConfig(ctx)
	if err != nil {
		return service.Eligibility{}, fmt.Errorf("load eligibility config: %w", err)
	}

	outstanding, err := uc.loanRepo.SumActiveOutstanding(ctx, borrower.ID())
	if err != nil {
		return service.Eligibility{}, fmt.Errorf("sum active outstanding: %w", err)
	}

	elig := uc.calculator.Calculate(borrower, outstanding, cfg)

	if err := uc.cache.SetAmount(ctx, borrower.ID(), elig, uc.cfg.EligibilityTTL); err != nil {
		uc.logger.WarnContext(ctx, "eligibility cache write failed", "borrower_id", borrower.ID(), "error", err)
	}
	return elig, nil
}

// buildOffers slices the eligible amount into distinct candidate offers.
func buildOffers(elig service.Eligibility) []model.Offer {
	var offers []model.Offer
	for _, f := range offerFractions {
		amount := elig.Amount.Mul(f).Round(2)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if n := len(offers); n > 0 && offers[n-1].Amount.Equal(amount) {
			continue
		}
		offers = append(offers, model.Offer{
			Amount:       amount,
			InterestRate: elig.InterestRate,
			PeriodDays:   elig.PeriodDays,
		})
	}
	return offers
}

func toComputeOfferResponse(session model.OfferSession) dto.ComputeOfferResponse {
	offers := make([]dto.OfferResponse, len(session.Offers))
	for i, o := range session.Offers {
		offers[i] = dto.OfferResponse{
			Amount:       o.Amount,
			InterestRate: o.InterestRate,
			PeriodDays:   o.PeriodDays,
		}
	}
	return dto.ComputeOfferResponse{
		SessionKey:     session.SessionKey,
		BorrowerID:     session.BorrowerID,
		EligibleAmount: session.EligibleAmount,
		Offers:         offers,
		ExpiresAt:      session.ExpiresAt,
	}
}
