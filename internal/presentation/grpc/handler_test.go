package grpc

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/credimart/lending-service/internal/application/usecase"
	"github.com/credimart/lending-service/internal/domain/event"
	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/internal/domain/service"
	"github.com/credimart/lending-service/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockLoanRepo struct {
	findByIDFunc func(ctx context.Context, id string) (model.Loan, error)
}

func (m *mockLoanRepo) Save(_ context.Context, _ model.Loan) error { return nil }

func (m *mockLoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, port.ErrNotFound
}

func (m *mockLoanRepo) FindByIdempotencyKey(_ context.Context, _, _ string) (model.Loan, error) {
	return model.Loan{}, port.ErrNotFound
}

func (m *mockLoanRepo) FindByBorrowerID(_ context.Context, _ string) ([]model.Loan, error) {
	return nil, nil
}

func (m *mockLoanRepo) SumActiveOutstanding(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *mockLoanRepo) HasRecentActiveLoan(_ context.Context, _ string, _ time.Time) (bool, error) {
	return false, nil
}

type mockBorrowerRepo struct{}

func (m *mockBorrowerRepo) Save(_ context.Context, _ model.Borrower) error { return nil }

func (m *mockBorrowerRepo) FindByID(_ context.Context, _ string) (model.Borrower, error) {
	now := time.Now().UTC()
	return model.ReconstructBorrower(
		"borrower-001", "+254700000001", 300,
		decimal.NewFromInt(10_000), false,
		decimal.Zero, valueobject.RepaymentStatusPending, 3,
		1, now, now,
	), nil
}

func (m *mockBorrowerRepo) FindByPhoneNumber(_ context.Context, _ string) (model.Borrower, error) {
	return model.Borrower{}, port.ErrNotFound
}

type mockSessionStore struct{}

func (m *mockSessionStore) Put(_ context.Context, _ model.OfferSession, _ time.Duration) error {
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, _ string) (model.OfferSession, error) {
	return model.OfferSession{}, port.ErrCacheMiss
}

func (m *mockSessionStore) Delete(_ context.Context, _ string) error { return nil }

type mockIdemCache struct{}

func (m *mockIdemCache) GetLoanID(_ context.Context, _ string) (string, error) {
	return "", port.ErrCacheMiss
}

func (m *mockIdemCache) SetLoanID(_ context.Context, _, _ string, _ time.Duration) error {
	return nil
}

type mockEligCache struct{}

func (m *mockEligCache) GetAmount(_ context.Context, _ string) (service.Eligibility, error) {
	return service.Eligibility{}, port.ErrCacheMiss
}

func (m *mockEligCache) SetAmount(_ context.Context, _ string, _ service.Eligibility, _ time.Duration) error {
	return nil
}

func (m *mockEligCache) InvalidateBorrower(_ context.Context, _ string) error { return nil }

type mockLock struct {
	err error
}

func (m *mockLock) Acquire(_ context.Context, _ string, _ time.Duration) (func(), error) {
	if m.err != nil {
		return nil, m.err
	}
	return func() {}, nil
}

type mockQueue struct{}

func (m *mockQueue) Enqueue(_ context.Context, _ port.DisbursementJob) error { return nil }

type mockPublisher struct{}

func (m *mockPublisher) Publish(_ context.Context, _ ...event.DomainEvent) error { return nil }

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildTestHandler(loanRepo *mockLoanRepo, lock *mockLock) *LendingHandler {
	acceptOffer := usecase.NewAcceptOfferUseCase(
		&mockBorrowerRepo{}, loanRepo, &mockSessionStore{}, &mockIdemCache{},
		&mockEligCache{}, lock, &mockQueue{}, &mockPublisher{},
		usecase.DefaultAcceptOfferConfig(), testLogger(),
	)
	getLoan := usecase.NewGetLoanUseCase(loanRepo)
	return NewLendingHandler(nil, acceptOffer, nil, getLoan)
}

func testLoan(t *testing.T) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(
		"borrower-001",
		decimal.NewFromInt(2_500), decimal.RequireFromString("0.12"), 30,
		"idem-key", "session-001", "mobile", time.Now().UTC(),
	)
	require.NoError(t, err)
	return loan
}

func TestLendingHandler_GetLoan(t *testing.T) {
	loan := testLoan(t)
	handler := buildTestHandler(&mockLoanRepo{
		findByIDFunc: func(ctx context.Context, id string) (model.Loan, error) {
			return loan, nil
		},
	}, &mockLock{})

	resp, err := handler.GetLoan(context.Background(), &GetLoanRequest{LoanId: loan.ID()})

	require.NoError(t, err)
	assert.Equal(t, loan.ID(), resp.Loan.Id)
	assert.Equal(t, "2500.00", resp.Loan.Amount)
	assert.Equal(t, "2800.00", resp.Loan.AmountDue)
	assert.Equal(t, "APPROVED", resp.Loan.Status)
}

func TestLendingHandler_GetLoan_NotFound(t *testing.T) {
	handler := buildTestHandler(&mockLoanRepo{}, &mockLock{})

	_, err := handler.GetLoan(context.Background(), &GetLoanRequest{LoanId: "loan-404"})

	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestLendingHandler_AcceptOffer_BadAmount(t *testing.T) {
	handler := buildTestHandler(&mockLoanRepo{}, &mockLock{})

	_, err := handler.AcceptOffer(context.Background(), &AcceptOfferRequest{
		BorrowerId: "borrower-001",
		SessionKey: "session-001",
		Amount:     "not-a-number",
	})

	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLendingHandler_AcceptOffer_ExpiredSession(t *testing.T) {
	handler := buildTestHandler(&mockLoanRepo{}, &mockLock{})

	_, err := handler.AcceptOffer(context.Background(), &AcceptOfferRequest{
		BorrowerId: "borrower-001",
		SessionKey: "session-001",
		Amount:     "2500",
	})

	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestLendingHandler_AcceptOffer_LockContention(t *testing.T) {
	handler := buildTestHandler(&mockLoanRepo{}, &mockLock{err: port.ErrLockNotAcquired})

	_, err := handler.AcceptOffer(context.Background(), &AcceptOfferRequest{
		BorrowerId: "borrower-001",
		SessionKey: "session-001",
		Amount:     "2500",
	})

	require.Error(t, err)
	assert.Equal(t, codes.Aborted, status.Code(err))
}

func TestToStatus_CreditLimit(t *testing.T) {
	err := toStatus(&usecase.CreditLimitError{Headroom: decimal.NewFromInt(2_000)})

	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Contains(t, err.Error(), "2000.00 available")
}
