package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/credimart/lending-service/internal/domain/service"
)

func TestIdempotencyKey_Deterministic(t *testing.T) {
	a := service.IdempotencyKey("borrower-001", "session-001", decimal.NewFromInt(500))
	b := service.IdempotencyKey("borrower-001", "session-001", decimal.NewFromInt(500))

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestIdempotencyKey_NormalizesAmount(t *testing.T) {
	base := service.IdempotencyKey("borrower-001", "session-001", decimal.RequireFromString("500"))

	assert.Equal(t, base, service.IdempotencyKey("borrower-001", "session-001", decimal.RequireFromString("500.0")))
	assert.Equal(t, base, service.IdempotencyKey("borrower-001", "session-001", decimal.RequireFromString("500.00")))
	assert.NotEqual(t, base, service.IdempotencyKey("borrower-001", "session-001", decimal.RequireFromString("500.01")))
}

func TestIdempotencyKey_SensitiveToEveryPart(t *testing.T) {
	base := service.IdempotencyKey("borrower-001", "session-001", decimal.NewFromInt(500))

	assert.NotEqual(t, base, service.IdempotencyKey("borrower-002", "session-001", decimal.NewFromInt(500)))
	assert.NotEqual(t, base, service.IdempotencyKey("borrower-001", "session-002", decimal.NewFromInt(500)))
	assert.NotEqual(t, base, service.IdempotencyKey("borrower-001", "session-001", decimal.NewFromInt(501)))
}

func TestLockKey_ExcludesAmount(t *testing.T) {
	assert.Equal(t, "loan:issue:borrower-001:session-001", service.LockKey("borrower-001", "session-001"))
}
