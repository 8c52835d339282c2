package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/credimart/lending-service/internal/application/dto"
	"github.com/credimart/lending-service/internal/application/usecase"
	"github.com/credimart/lending-service/internal/domain/port"
)

// LendingHandler is the gRPC handler for loan issuance and scoring.
type LendingHandler struct {
	UnimplementedLendingServiceServer

	computeOffer    *usecase.ComputeOfferUseCase
	acceptOffer     *usecase.AcceptOfferUseCase
	recordRepayment *usecase.RecordRepaymentUseCase
	getLoan         *usecase.GetLoanUseCase
}

// NewLendingHandler creates a new handler with all use-case dependencies.
func NewLendingHandler(
	computeOffer *usecase.ComputeOfferUseCase,
	acceptOffer *usecase.AcceptOfferUseCase,
	recordRepayment *usecase.RecordRepaymentUseCase,
	getLoan *usecase.GetLoanUseCase,
) *LendingHandler {
	return &LendingHandler{
		computeOffer:    computeOffer,
		acceptOffer:     acceptOffer,
		recordRepayment: recordRepayment,
		getLoan:         getLoan,
	}
}

// ComputeOffer computes a fresh offer session for a borrower.
func (h *LendingHandler) ComputeOffer(ctx context.Context, req *ComputeOfferRequest) (*ComputeOfferResponse, error) {
	resp, err := h.computeOffer.Execute(ctx, dto.ComputeOfferRequest{
		BorrowerID: req.BorrowerId,
		Channel:    req.Channel,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	offers := make([]Offer, 0, len(resp.Offers))
	for _, o := range resp.Offers {
		offers = append(offers, Offer{
			Amount:       o.Amount.StringFixed(2),
			InterestRate: o.InterestRate.String(),
			PeriodDays:   o.PeriodDays,
		})
	}
	return &ComputeOfferResponse{
		SessionKey:     resp.SessionKey,
		EligibleAmount: resp.EligibleAmount.StringFixed(2),
		Offers:         offers,
		ExpiresAt:      resp.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// AcceptOffer turns an accepted offer into a loan, idempotently.
func (h *LendingHandler) AcceptOffer(ctx context.Context, req *AcceptOfferRequest) (*AcceptOfferResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount: %v", err)
	}

	resp, err := h.acceptOffer.Execute(ctx, dto.AcceptOfferRequest{
		BorrowerID: req.BorrowerId,
		SessionKey: req.SessionKey,
		Amount:     amount,
		Channel:    req.Channel,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &AcceptOfferResponse{
		Loan:         toWireLoan(resp.Loan),
		Deduplicated: resp.Deduplicated,
	}, nil
}

// RecordRepayment scores a confirmed repayment transaction.
func (h *LendingHandler) RecordRepayment(ctx context.Context, req *RecordRepaymentRequest) (*RecordRepaymentResponse, error) {
	resp, err := h.recordRepayment.Execute(ctx, dto.RecordRepaymentRequest{
		TransactionID: req.TransactionId,
		LoanID:        req.LoanId,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &RecordRepaymentResponse{
		PointsAwarded:    resp.PointsAwarded,
		NewScore:         resp.NewScore,
		Reason:           resp.Reason,
		LoanStatus:       resp.LoanStatus,
		AlreadyProcessed: resp.AlreadyProcessed,
	}, nil
}

// GetLoan retrieves a loan by ID.
func (h *LendingHandler) GetLoan(ctx context.Context, req *GetLoanRequest) (*GetLoanResponse, error) {
	resp, err := h.getLoan.Execute(ctx, dto.GetLoanRequest{LoanID: req.LoanId})
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetLoanResponse{Loan: toWireLoan(resp)}, nil
}

func toWireLoan(l dto.LoanResponse) *Loan {
	return &Loan{
		Id:           l.ID,
		BorrowerId:   l.BorrowerID,
		Amount:       l.Amount.StringFixed(2),
		AmountDue:    l.AmountDue.StringFixed(2),
		AmountPaid:   l.AmountPaid.StringFixed(2),
		Outstanding:  l.Outstanding.StringFixed(2),
		InterestRate: l.InterestRate.String(),
		PeriodDays:   l.PeriodDays,
		Status:       l.Status,
		DueDate:      l.DueDate.Format(time.RFC3339),
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
	}
}

// toStatus maps application errors onto gRPC status codes.
func toStatus(err error) error {
	var limitErr *usecase.CreditLimitError
	switch {
	case errors.Is(err, port.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrInvalidSelection):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, usecase.ErrSessionExpired),
		errors.Is(err, usecase.ErrNoCreditAvailable),
		errors.Is(err, usecase.ErrNoOffers),
		errors.Is(err, usecase.ErrCooldownActive):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &limitErr):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, usecase.ErrRequestInProgress):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
