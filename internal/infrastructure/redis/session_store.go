package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/credimart/lending-service/internal/domain/model"
	"github.com/credimart/lending-service/internal/domain/port"
	"github.com/credimart/lending-service/pkg/redis"
)

func sessionKey(key string) string {
	return fmt.Sprintf("lending:session:%s", key)
}

// OfferSessionStore implements port.OfferSessionStore on Redis. Sessions
// expire by TTL; a missing key and an expired key look the same to callers.
type OfferSessionStore struct {
	client *redis.Client
}

// NewOfferSessionStore creates a Redis-backed offer session store.
func NewOfferSessionStore(client *redis.Client) *OfferSessionStore {
	return &OfferSessionStore{client: client}
}

// Put stores the session under its key for the TTL.
func (s *OfferSessionStore) Put(ctx context.Context, session model.OfferSession, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal offer session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(session.SessionKey), string(raw), ttl)
}

// Get returns the session, or port.ErrCacheMiss when absent or expired.
func (s *OfferSessionStore) Get(ctx context.Context, key string) (model.OfferSession, error) {
	raw, err := s.client.Get(ctx, sessionKey(key))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return model.OfferSession{}, port.ErrCacheMiss
		}
		return model.OfferSession{}, err
	}

	var session model.OfferSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return model.OfferSession{}, fmt.Errorf("unmarshal offer session: %w", err)
	}
	return session, nil
}

// Delete removes the session.
func (s *OfferSessionStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, sessionKey(key))
}
