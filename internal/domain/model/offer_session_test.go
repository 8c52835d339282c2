package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credimart/lending-service/internal/domain/model"
)

func testSession(now time.Time) model.OfferSession {
	offers := []model.Offer{
		{Amount: decimal.NewFromInt(2_500), InterestRate: decimal.RequireFromString("0.12"), PeriodDays: 30},
		{Amount: decimal.NewFromInt(5_000), InterestRate: decimal.RequireFromString("0.12"), PeriodDays: 30},
	}
	return model.NewOfferSession("borrower-001", decimal.NewFromInt(5_000), offers, 10*time.Minute, now)
}

func TestNewOfferSession(t *testing.T) {
	now := time.Now().UTC()
	session := testSession(now)

	assert.NotEmpty(t, session.SessionKey)
	assert.Equal(t, "borrower-001", session.BorrowerID)
	assert.Equal(t, now.Add(10*time.Minute), session.ExpiresAt)
}

func TestOfferSession_Expired(t *testing.T) {
	now := time.Now().UTC()
	session := testSession(now)

	assert.False(t, session.Expired(now))
	assert.False(t, session.Expired(now.Add(10*time.Minute)))
	assert.True(t, session.Expired(now.Add(10*time.Minute+time.Second)))
}

func TestOfferSession_BelongsTo(t *testing.T) {
	session := testSession(time.Now().UTC())

	assert.True(t, session.BelongsTo("borrower-001"))
	assert.False(t, session.BelongsTo("borrower-002"))
}

func TestOfferSession_FindOffer(t *testing.T) {
	session := testSession(time.Now().UTC())

	offer, ok := session.FindOffer(decimal.NewFromInt(2_500))
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(2_500).Equal(offer.Amount))

	// Equal value in a different textual form still matches.
	_, ok = session.FindOffer(decimal.RequireFromString("2500.00"))
	assert.True(t, ok)

	// Anything not on the offer list does not.
	_, ok = session.FindOffer(decimal.NewFromInt(3_000))
	assert.False(t, ok)
}
