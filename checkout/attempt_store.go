package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/tableside/store"
)

// Payment intents stay claimed well past any refund window.
const intentClaimTTL = 90 * 24 * time.Hour

type Persister interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	SetStringNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// AttemptStore keeps a browser's pending attempt between the request that
// begins checkout and the one that confirms payment.
type AttemptStore struct {
	store Persister
	ttl   time.Duration
}

func NewAttemptStore(s Persister, ttl time.Duration) *AttemptStore {
	return &AttemptStore{store: s, ttl: ttl}
}

func (s *AttemptStore) Save(ctx context.Context, a Attempt) error {
	if err := s.store.SetJSON(ctx, store.CheckoutKey(a.BrowserID), a, s.ttl); err != nil {
		return fmt.Errorf("save checkout attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) Load(ctx context.Context, browserID string) (Attempt, error) {
	var a Attempt
	err := s.store.GetJSON(ctx, store.CheckoutKey(browserID), &a)
	if errors.Is(err, store.ErrNotFound) {
		return Attempt{}, ErrNoAttempt
	}
	if err != nil {
		return Attempt{}, fmt.Errorf("load checkout attempt: %w", err)
	}
	return a, nil
}

func (s *AttemptStore) Delete(ctx context.Context, browserID string) error {
	if err := s.store.Delete(ctx, store.CheckoutKey(browserID)); err != nil {
		return fmt.Errorf("delete checkout attempt: %w", err)
	}
	return nil
}

// ClaimIntent ties a payment intent to one attempt. It reports false when
// the intent already settles a different attempt.
func (s *AttemptStore) ClaimIntent(ctx context.Context, intentID, attemptID string) (bool, error) {
	ok, err := s.store.SetStringNX(ctx, store.IntentKey(intentID), attemptID, intentClaimTTL)
	if err != nil {
		return false, fmt.Errorf("claim payment intent: %w", err)
	}
	if ok {
		return true, nil
	}
	owner, err := s.store.GetString(ctx, store.IntentKey(intentID))
	if err != nil {
		return false, fmt.Errorf("read payment intent claim: %w", err)
	}
	return owner == attemptID, nil
}
