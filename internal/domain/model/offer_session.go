package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// OfferSession – ephemeral pre-computed offers
// ---------------------------------------------------------------------------

// Offer is one candidate loan a borrower may accept.
type Offer struct {
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	PeriodDays   int             `json:"period_days"`
}

// OfferSession is the short-lived server-side record of the offers shown to
// a borrower. It lives in the cache and is recomputed when expired or when
// the borrower does not match.
type OfferSession struct {
	SessionKey     string          `json:"session_key"`
	BorrowerID     string          `json:"borrower_id"`
	EligibleAmount decimal.Decimal `json:"eligible_amount"`
	Offers         []Offer         `json:"offers"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at"`
}

// NewOfferSession creates a session with a generated key and the given TTL.
func NewOfferSession(borrowerID string, eligibleAmount decimal.Decimal, offers []Offer, ttl time.Duration, now time.Time) OfferSession {
	return OfferSession{
		SessionKey:     uuid.New().String(),
		BorrowerID:     borrowerID,
		EligibleAmount: eligibleAmount,
		Offers:         offers,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
}

// Expired reports whether the session is past its TTL.
func (s OfferSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// BelongsTo reports whether the session was computed for the borrower.
func (s OfferSession) BelongsTo(borrowerID string) bool {
	return s.BorrowerID == borrowerID
}

// FindOffer returns the offer matching the chosen amount. Acceptance is only
// valid for one of the pre-computed amounts, never an arbitrary value.
func (s OfferSession) FindOffer(amount decimal.Decimal) (Offer, bool) {
	for _, o := range s.Offers {
		if o.Amount.Equal(amount) {
			return o, true
		}
	}
	return Offer{}, false
}
