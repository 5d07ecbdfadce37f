package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/tableside/store"
)

var (
	ErrNoSession      = errors.New("session: no table session bound")
	ErrInvalidSession = errors.New("session: table session rejected")
	ErrNoCartHandle   = errors.New("session: no server cart handle")
)

type Persister interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Validator checks a token with the backend. It returns an error wrapping
// ErrInvalidSession when the backend refuses the token.
type Validator interface {
	ValidateSession(ctx context.Context, token string) error
}

// Binder keeps the table session token and the server cart handle of each
// browser. Both live under the session TTL, which is shorter than the cart's.
type Binder struct {
	store     Persister
	ttl       time.Duration
	validator Validator
}

// NewBinder returns a Binder. A nil validator skips backend validation.
func NewBinder(s Persister, ttl time.Duration, v Validator) *Binder {
	return &Binder{store: s, ttl: ttl, validator: v}
}

// Bind stores token for the browser. It writes only when the token differs
// from the stored one and reports whether it did. A new token drops the cart
// handle of the previous table.
func (b *Binder) Bind(ctx context.Context, browserID, token string) (bool, error) {
	if token == "" {
		return false, ErrNoSession
	}

	current, err := b.store.GetString(ctx, store.SessionKey(browserID))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("read session: %w", err)
	}
	if current == token {
		return false, nil
	}

	if b.validator != nil {
		if err := b.validator.ValidateSession(ctx, token); err != nil {
			return false, err
		}
	}

	if err := b.store.SetString(ctx, store.SessionKey(browserID), token, b.ttl); err != nil {
		return false, fmt.Errorf("save session: %w", err)
	}
	if current != "" {
		if err := b.store.Delete(ctx, store.CartHandleKey(browserID)); err != nil {
			return true, fmt.Errorf("drop stale cart handle: %w", err)
		}
	}
	return true, nil
}

func (b *Binder) Token(ctx context.Context, browserID string) (string, error) {
	token, err := b.store.GetString(ctx, store.SessionKey(browserID))
	if errors.Is(err, store.ErrNotFound) || (err == nil && token == "") {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return token, nil
}

func (b *Binder) SetCartHandle(ctx context.Context, browserID, handle string) error {
	if err := b.store.SetString(ctx, store.CartHandleKey(browserID), handle, b.ttl); err != nil {
		return fmt.Errorf("save cart handle: %w", err)
	}
	return nil
}

func (b *Binder) CartHandle(ctx context.Context, browserID string) (string, error) {
	handle, err := b.store.GetString(ctx, store.CartHandleKey(browserID))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoCartHandle
	}
	if err != nil {
		return "", fmt.Errorf("read cart handle: %w", err)
	}
	return handle, nil
}

func (b *Binder) ClearCartHandle(ctx context.Context, browserID string) error {
	if err := b.store.Delete(ctx, store.CartHandleKey(browserID)); err != nil {
		return fmt.Errorf("clear cart handle: %w", err)
	}
	return nil
}

// Unbind forgets the table session and the cart handle.
func (b *Binder) Unbind(ctx context.Context, browserID string) error {
	if err := b.store.Delete(ctx, store.SessionKey(browserID), store.CartHandleKey(browserID)); err != nil {
		return fmt.Errorf("unbind session: %w", err)
	}
	return nil
}
