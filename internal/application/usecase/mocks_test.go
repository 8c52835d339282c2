package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/event"
	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/internal/domain/service"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockBorrowerRepository struct {
	saveFunc        func(ctx context.Context, b model.Borrower) error
	findByIDFunc    func(ctx context.Context, id string) (model.Borrower, error)
	findByPhoneFunc func(ctx context.Context, phone string) (model.Borrower, error)
	savedBorrowers  []model.Borrower
}

func (m *mockBorrowerRepository) Save(ctx context.Context, b model.Borrower) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, b)
	}
	m.savedBorrowers = append(m.savedBorrowers, b)
	return nil
}

func (m *mockBorrowerRepository) FindByID(ctx context.Context, id string) (model.Borrower, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Borrower{}, port.ErrNotFound
}

func (m *mockBorrowerRepository) FindByPhoneNumber(ctx context.Context, phone string) (model.Borrower, error) {
	if m.findByPhoneFunc != nil {
		return m.findByPhoneFunc(ctx, phone)
	}
	return model.Borrower{}, port.ErrNotFound
}

type mockLoanRepository struct {
	saveFunc                 func(ctx context.Context, loan model.Loan) error
	findByIDFunc             func(ctx context.Context, id string) (model.Loan, error)
	findByIdempotencyFunc    func(ctx context.Context, borrowerID, key string) (model.Loan, error)
	findByBorrowerIDFunc     func(ctx context.Context, borrowerID string) ([]model.Loan, error)
	sumActiveOutstandingFunc func(ctx context.Context, borrowerID string) (decimal.Decimal, error)
	hasRecentActiveLoanFunc  func(ctx context.Context, phone string, since time.Time) (bool, error)
	savedLoans               []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loan)
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, port.ErrNotFound
}

func (m *mockLoanRepository) FindByIdempotencyKey(ctx context.Context, borrowerID, key string) (model.Loan, error) {
	if m.findByIdempotencyFunc != nil {
		return m.findByIdempotencyFunc(ctx, borrowerID, key)
	}
	return model.Loan{}, port.ErrNotFound
}

func (m *mockLoanRepository) FindByBorrowerID(ctx context.Context, borrowerID string) ([]model.Loan, error) {
	if m.findByBorrowerIDFunc != nil {
		return m.findByBorrowerIDFunc(ctx, borrowerID)
	}
	return nil, nil
}

func (m *mockLoanRepository) SumActiveOutstanding(ctx context.Context, borrowerID string) (decimal.Decimal, error) {
	if m.sumActiveOutstandingFunc != nil {
		return m.sumActiveOutstandingFunc(ctx, borrowerID)
	}
	return decimal.Zero, nil
}

func (m *mockLoanRepository) HasRecentActiveLoan(ctx context.Context, phone string, since time.Time) (bool, error) {
	if m.hasRecentActiveLoanFunc != nil {
		return m.hasRecentActiveLoanFunc(ctx, phone, since)
	}
	return false, nil
}

type mockScoreHistoryRepository struct {
	appendFunc              func(ctx context.Context, entry model.ScoreHistoryEntry) error
	findByTransactionIDFunc func(ctx context.Context, transactionID string) (model.ScoreHistoryEntry, error)
	appended                []model.ScoreHistoryEntry
}

func (m *mockScoreHistoryRepository) Append(ctx context.Context, entry model.ScoreHistoryEntry) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, entry)
	}
	m.appended = append(m.appended, entry)
	return nil
}

func (m *mockScoreHistoryRepository) FindByTransactionID(ctx context.Context, transactionID string) (model.ScoreHistoryEntry, error) {
	if m.findByTransactionIDFunc != nil {
		return m.findByTransactionIDFunc(ctx, transactionID)
	}
	return model.ScoreHistoryEntry{}, port.ErrNotFound
}

type mockTransactionRepository struct {
	findByIDFunc func(ctx context.Context, id string) (model.RepaymentTransaction, error)
}

func (m *mockTransactionRepository) FindByID(ctx context.Context, id string) (model.RepaymentTransaction, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.RepaymentTransaction{}, port.ErrNotFound
}

type mockEligibilityCache struct {
	getAmountFunc func(ctx context.Context, borrowerID string) (service.Eligibility, error)
	setAmountFunc func(ctx context.Context, borrowerID string, elig service.Eligibility, ttl time.Duration) error
	invalidated   []string
}

func (m *mockEligibilityCache) GetAmount(ctx context.Context, borrowerID string) (service.Eligibility, error) {
	if m.getAmountFunc != nil {
		return m.getAmountFunc(ctx, borrowerID)
	}
	return service.Eligibility{}, port.ErrCacheMiss
}

func (m *mockEligibilityCache) SetAmount(ctx context.Context, borrowerID string, elig service.Eligibility, ttl time.Duration) error {
	if m.setAmountFunc != nil {
		return m.setAmountFunc(ctx, borrowerID, elig, ttl)
	}
	return nil
}

func (m *mockEligibilityCache) InvalidateBorrower(_ context.Context, borrowerID string) error {
	m.invalidated = append(m.invalidated, borrowerID)
	return nil
}

type mockOfferSessionStore struct {
	putFunc     func(ctx context.Context, session model.OfferSession, ttl time.Duration) error
	getFunc     func(ctx context.Context, sessionKey string) (model.OfferSession, error)
	stored      []model.OfferSession
	deletedKeys []string
}

func (m *mockOfferSessionStore) Put(ctx context.Context, session model.OfferSession, ttl time.Duration) error {
	if m.putFunc != nil {
		return m.putFunc(ctx, session, ttl)
	}
	m.stored = append(m.stored, session)
	return nil
}

func (m *mockOfferSessionStore) Get(ctx context.Context, sessionKey string) (model.OfferSession, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, sessionKey)
	}
	return model.OfferSession{}, port.ErrCacheMiss
}

func (m *mockOfferSessionStore) Delete(_ context.Context, sessionKey string) error {
	m.deletedKeys = append(m.deletedKeys, sessionKey)
	return nil
}

type mockIdempotencyCache struct {
	getLoanIDFunc func(ctx context.Context, key string) (string, error)
	setLoanIDFunc func(ctx context.Context, key, loanID string, ttl time.Duration) error
	setKeys       map[string]string
}

func (m *mockIdempotencyCache) GetLoanID(ctx context.Context, key string) (string, error) {
	if m.getLoanIDFunc != nil {
		return m.getLoanIDFunc(ctx, key)
	}
	return "", port.ErrCacheMiss
}

func (m *mockIdempotencyCache) SetLoanID(ctx context.Context, key, loanID string, ttl time.Duration) error {
	if m.setLoanIDFunc != nil {
		return m.setLoanIDFunc(ctx, key, loanID, ttl)
	}
	if m.setKeys == nil {
		m.setKeys = make(map[string]string)
	}
	m.setKeys[key] = loanID
	return nil
}

type mockLocker struct {
	acquireFunc func(ctx context.Context, name string, ttl time.Duration) (func(), error)
	acquired    []string
	released    int
}

func (m *mockLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, name, ttl)
	}
	m.acquired = append(m.acquired, name)
	return func() { m.released++ }, nil
}

type mockDisbursementQueue struct {
	enqueueFunc func(ctx context.Context, job port.DisbursementJob) error
	jobs        []port.DisbursementJob
}

func (m *mockDisbursementQueue) Enqueue(ctx context.Context, job port.DisbursementJob) error {
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type mockConfigStore struct {
	scoringFunc     func(ctx context.Context) (service.ScoringConfig, error)
	eligibilityFunc func(ctx context.Context) (service.EligibilityConfig, error)
}

func (m *mockConfigStore) ScoringConfig(ctx context.Context) (service.ScoringConfig, error) {
	if m.scoringFunc != nil {
		return m.scoringFunc(ctx)
	}
	return service.DefaultScoringConfig(), nil
}

func (m *mockConfigStore) EligibilityConfig(ctx context.Context) (service.EligibilityConfig, error) {
	if m.eligibilityFunc != nil {
		return m.eligibilityFunc(ctx)
	}
	return service.DefaultEligibilityConfig(), nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

// --- Fixtures ---

func testBorrower(score int, creditLimit int64, loanCount int) model.Borrower {
	now := time.Now().UTC()
	return model.ReconstructBorrower(
		"borrower-001", "+254700000001", score,
		decimal.NewFromInt(creditLimit), false,
		decimal.Zero, valueobject.RepaymentStatusPending, loanCount,
		1, now, now,
	)
}

func approvedLoan(id, borrowerID, idempotencyKey string, amount int64) model.Loan {
	now := time.Now().UTC()
	principal := decimal.NewFromInt(amount)
	return model.ReconstructLoan(
		id, borrowerID,
		principal, principal.Mul(decimal.RequireFromString("1.12")).Round(2), decimal.Zero,
		decimal.RequireFromString("0.12"),
		30, valueobject.LoanStatusApproved,
		now.AddDate(0, 0, 30), nil,
		map[string]string{
			model.MetaIdempotencyKey: idempotencyKey,
			model.MetaSessionKey:     "session-001",
		},
		1, now, now,
	)
}

func activeSession(borrowerID string, eligible int64, amounts ...int64) model.OfferSession {
	now := time.Now().UTC()
	offers := make([]model.Offer, 0, len(amounts))
	for _, a := range amounts {
		offers = append(offers, model.Offer{
			Amount:       decimal.NewFromInt(a),
			InterestRate: decimal.RequireFromString("0.12"),
			PeriodDays:   30,
		})
	}
	return model.OfferSession{
		SessionKey:     "session-001",
		BorrowerID:     borrowerID,
		EligibleAmount: decimal.NewFromInt(eligible),
		Offers:         offers,
		CreatedAt:      now,
		ExpiresAt:      now.Add(10 * time.Minute),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
