package usecase

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Business errors surfaced to callers. Validation and eligibility errors are
// terminal outcomes; ErrRequestInProgress is the one retryable condition.
var (
	// ErrInvalidAmount rejects a non-positive or malformed amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidSelection rejects an amount that does not match any offer
	// in the active session.
	ErrInvalidSelection = errors.New("amount does not match an offered amount")
	// ErrSessionExpired rejects an acceptance against a missing, expired,
	// or mismatched offer session.
	ErrSessionExpired = errors.New("offer session expired or invalid")
	// ErrNoCreditAvailable signals that the borrower has no headroom left.
	ErrNoCreditAvailable = errors.New("no credit available")
	// ErrNoOffers signals that no valid offers could be computed.
	ErrNoOffers = errors.New("no offers available")
	// ErrRequestInProgress signals lock contention: a request for the same
	// borrower and session is already being processed. Retryable.
	ErrRequestInProgress = errors.New("a request is already being processed")
	// ErrCooldownActive rejects a new loan while a recent active loan for
	// the same phone number is inside the cooldown window.
	ErrCooldownActive = errors.New("an active loan was created too recently")
)

// CreditLimitError reports that an acceptance would exceed the borrower's
// credit limit, naming the available headroom.
type CreditLimitError struct {
	Headroom decimal.Decimal
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("requested amount exceeds credit limit: %s available", e.Headroom.StringFixed(2))
}
