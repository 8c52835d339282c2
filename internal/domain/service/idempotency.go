package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// IdempotencyKey derives the deterministic key that dedupes loan creation
// for a (borrower, session, amount) tuple. The amount is normalized to two
// decimal places so textual variants of the same value ("500", "500.0",
// "500.00") hash identically.
func IdempotencyKey(borrowerID, sessionKey string, amount decimal.Decimal) string {
	normalized := amount.Round(2).StringFixed(2)
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s", borrowerID, sessionKey, normalized)))
	return hex.EncodeToString(sum[:])
}

// LockKey names the mutual-exclusion lock scoped to (borrower, session).
// The amount is deliberately excluded: two concurrent accepts from the same
// session must serialize even when they pick different amounts.
func LockKey(borrowerID, sessionKey string) string {
	return fmt.Sprintf("loan:issue:%s:%s", borrowerID, sessionKey)
}
