package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/internal/domain/service"
	"github.com/credimart/lending-service/pkg/redis"
)

func eligibilityKey(borrowerID string) string {
	return fmt.Sprintf("lending:borrower:%s:eligibility", borrowerID)
}

func borrowerPattern(borrowerID string) string {
	return fmt.Sprintf("lending:borrower:%s:*", borrowerID)
}

func idempotencyCacheKey(key string) string {
	return fmt.Sprintf("lending:idem:%s", key)
}

// EligibilityCache implements port.EligibilityCache on Redis.
type EligibilityCache struct {
	client *redis.Client
}

// NewEligibilityCache creates a Redis-backed eligibility cache.
func NewEligibilityCache(client *redis.Client) *EligibilityCache {
	return &EligibilityCache{client: client}
}

// GetAmount returns the cached eligibility, or port.ErrCacheMiss.
func (c *EligibilityCache) GetAmount(ctx context.Context, borrowerID string) (service.Eligibility, error) {
	raw, err := c.client.Get(ctx, eligibilityKey(borrowerID))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return service.Eligibility{}, port.ErrCacheMiss
		}
		return service.Eligibility{}, err
	}

	var elig service.Eligibility
	if err := json.Unmarshal([]byte(raw), &elig); err != nil {
		return service.Eligibility{}, fmt.Errorf("unmarshal cached eligibility: %w", err)
	}
	return elig, nil
}

// SetAmount caches the eligibility for the TTL.
func (c *EligibilityCache) SetAmount(ctx context.Context, borrowerID string, elig service.Eligibility, ttl time.Duration) error {
	raw, err := json.Marshal(elig)
	if err != nil {
		return fmt.Errorf("marshal eligibility: %w", err)
	}
	return c.client.Set(ctx, eligibilityKey(borrowerID), string(raw), ttl)
}

// InvalidateBorrower removes every cached value derived from the borrower.
func (c *EligibilityCache) InvalidateBorrower(ctx context.Context, borrowerID string) error {
	return c.client.DeletePattern(ctx, borrowerPattern(borrowerID))
}

// IdempotencyCache implements port.IdempotencyCache on Redis.
type IdempotencyCache struct {
	client *redis.Client
}

// NewIdempotencyCache creates a Redis-backed idempotency cache.
func NewIdempotencyCache(client *redis.Client) *IdempotencyCache {
	return &IdempotencyCache{client: client}
}

// GetLoanID returns the loan already created for the key, or
// port.ErrCacheMiss.
func (c *IdempotencyCache) GetLoanID(ctx context.Context, key string) (string, error) {
	loanID, err := c.client.Get(ctx, idempotencyCacheKey(key))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return "", port.ErrCacheMiss
		}
		return "", err
	}
	return loanID, nil
}

// SetLoanID records the loan created for the key.
func (c *IdempotencyCache) SetLoanID(ctx context.Context, key, loanID string, ttl time.Duration) error {
	return c.client.Set(ctx, idempotencyCacheKey(key), loanID, ttl)
}
