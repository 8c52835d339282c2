package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credimart/lending-service/internal/application/dto"
	"github.com/credimart/lending-service/internal/application/usecase"
	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
)

func TestGetLoan_Execute(t *testing.T) {
	t.Run("successfully retrieves a loan", func(t *testing.T) {
		loan := approvedLoan("loan-001", "borrower-001", "idem-key", 2_500)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.Loan, error) {
				assert.Equal(t, "loan-001", id)
				return loan, nil
			},
		}

		uc := usecase.NewGetLoanUseCase(loanRepo)

		resp, err := uc.Execute(context.Background(), dto.GetLoanRequest{LoanID: "loan-001"})

		require.NoError(t, err)
		assert.Equal(t, "loan-001", resp.ID)
		assert.True(t, decimal.NewFromInt(2_500).Equal(resp.Amount))
		assert.Equal(t, "APPROVED", resp.Status)
	})

	t.Run("fails when the loan does not exist", func(t *testing.T) {
		uc := usecase.NewGetLoanUseCase(&mockLoanRepository{})

		_, err := uc.Execute(context.Background(), dto.GetLoanRequest{LoanID: "loan-404"})

		assert.ErrorIs(t, err, port.ErrNotFound)
	})
}
