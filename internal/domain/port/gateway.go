package port

import (
	"context"
	"errors"
	"time"

	"github.com/credimart/lending-service/internal/domain/event"
	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/service"
)

// ErrCacheMiss is returned by caches when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// ---------------------------------------------------------------------------
// Cache & session ports
// ---------------------------------------------------------------------------

// EligibilityCache caches the per-borrower eligible amount with a TTL. Any
// score, repayment, or credit-limit mutation must invalidate the entry.
type EligibilityCache interface {
	GetAmount(ctx context.Context, borrowerID string) (service.Eligibility, error)
	SetAmount(ctx context.Context, borrowerID string, elig service.Eligibility, ttl time.Duration) error
	// InvalidateBorrower removes every cached value derived from the
	// borrower's state (eligibility, stats, list caches).
	InvalidateBorrower(ctx context.Context, borrowerID string) error
}

// OfferSessionStore holds ephemeral offer sessions.
type OfferSessionStore interface {
	Put(ctx context.Context, session model.OfferSession, ttl time.Duration) error
	Get(ctx context.Context, sessionKey string) (model.OfferSession, error)
	Delete(ctx context.Context, sessionKey string) error
}

// IdempotencyCache is the fast-path idempotency-key -> loan-id mapping.
type IdempotencyCache interface {
	GetLoanID(ctx context.Context, key string) (string, error)
	SetLoanID(ctx context.Context, key, loanID string, ttl time.Duration) error
}

// ---------------------------------------------------------------------------
// Lock port
// ---------------------------------------------------------------------------

// ErrLockNotAcquired signals that another holder owns the lock. Callers
// surface this as a retryable condition, never as silent progress.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker is a distributed mutual-exclusion primitive built on an atomic
// set-if-absent-with-expiry operation.
type Locker interface {
	// Acquire takes the named lock for at most ttl. Returns a release
	// function on success, or ErrLockNotAcquired when held elsewhere.
	// Release is safe to call multiple times and never releases a lock
	// owned by someone else.
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), err error)
}

// ---------------------------------------------------------------------------
// Queue port
// ---------------------------------------------------------------------------

// DisbursementJob is the payload placed on the durable work queue.
type DisbursementJob struct {
	LoanID     string `json:"loan_id"`
	BorrowerID string `json:"borrower_id"`
	Attempt    int    `json:"attempt"`
}

// DisbursementQueue enqueues disbursement work. Delivery is at-least-once;
// the worker is idempotent against repeats.
type DisbursementQueue interface {
	Enqueue(ctx context.Context, job DisbursementJob) error
}

// ---------------------------------------------------------------------------
// Configuration store port
// ---------------------------------------------------------------------------

// ConfigStore supplies the scoring and eligibility models. Implementations
// return the provided defaults when a table is unconfigured; values are
// fetched fresh per calculation, never held as a global singleton here.
type ConfigStore interface {
	ScoringConfig(ctx context.Context) (service.ScoringConfig, error)
	EligibilityConfig(ctx context.Context) (service.EligibilityConfig, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
