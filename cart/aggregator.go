package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/tableside/models"
	"github.com/Kariqs/tableside/store"
	"github.com/shopspring/decimal"
)

type Persister interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service owns every browser's cart. It is safe for concurrent use; writes to
// the same browser's cart are applied one at a time.
type Service struct {
	store Persister
	ttl   time.Duration
	locks *keyedMutex
}

func NewService(s Persister, ttl time.Duration) *Service {
	return &Service{store: s, ttl: ttl, locks: newKeyedMutex()}
}

func (s *Service) For(browserID string) *Aggregator {
	return &Aggregator{svc: s, browserID: browserID}
}

// Aggregator is the cart of one browser.
type Aggregator struct {
	svc       *Service
	browserID string
}

func (a *Aggregator) AddOrIncrement(ctx context.Context, line models.CartLine) (Lines, error) {
	return a.mutate(ctx, func(ls Lines) (Lines, error) {
		return ls.AddOrIncrement(line)
	})
}

func (a *Aggregator) ChangeQuantity(ctx context.Context, dishID models.ID, size string, delta int) (Lines, error) {
	return a.mutate(ctx, func(ls Lines) (Lines, error) {
		return ls.ChangeQuantity(dishID, size, delta), nil
	})
}

func (a *Aggregator) RemoveLine(ctx context.Context, dishID models.ID, size string) (Lines, error) {
	return a.mutate(ctx, func(ls Lines) (Lines, error) {
		return ls.Remove(dishID, size), nil
	})
}

func (a *Aggregator) Snapshot(ctx context.Context) (Lines, error) {
	unlock := a.svc.locks.Lock(a.browserID)
	defer unlock()

	ls, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return ls.Clone(), nil
}

func (a *Aggregator) Total(ctx context.Context) (decimal.Decimal, error) {
	ls, err := a.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return ls.Total(), nil
}

func (a *Aggregator) Clear(ctx context.Context) error {
	unlock := a.svc.locks.Lock(a.browserID)
	defer unlock()

	if err := a.svc.store.Delete(ctx, store.CartKey(a.browserID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// RemovePaid drops the quantities of a placed order from the cart. Anything
// added after the order snapshot stays. An emptied cart is deleted.
func (a *Aggregator) RemovePaid(ctx context.Context, paid Lines) (Lines, error) {
	unlock := a.svc.locks.Lock(a.browserID)
	defer unlock()

	current, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	next := current.Subtract(paid)
	if len(next) == 0 {
		if err := a.svc.store.Delete(ctx, store.CartKey(a.browserID)); err != nil {
			return current.Clone(), fmt.Errorf("clear cart: %w", err)
		}
		return Lines{}, nil
	}
	if err := a.svc.store.SetJSON(ctx, store.CartKey(a.browserID), next, a.svc.ttl); err != nil {
		return current.Clone(), fmt.Errorf("persist cart: %w", err)
	}
	return next.Clone(), nil
}

func (a *Aggregator) mutate(ctx context.Context, fn func(Lines) (Lines, error)) (Lines, error) {
	unlock := a.svc.locks.Lock(a.browserID)
	defer unlock()

	current, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return current.Clone(), err
	}
	if err := a.svc.store.SetJSON(ctx, store.CartKey(a.browserID), next, a.svc.ttl); err != nil {
		return current.Clone(), fmt.Errorf("persist cart: %w", err)
	}
	return next.Clone(), nil
}

func (a *Aggregator) load(ctx context.Context) (Lines, error) {
	var raw []models.CartLine
	err := a.svc.store.GetJSON(ctx, store.CartKey(a.browserID), &raw)
	if errors.Is(err, store.ErrNotFound) {
		return Lines{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return Normalize(raw), nil
}
