package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Kariqs/tableside/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	calls  int
	reject map[string]bool
	err    error
}

func (v *stubValidator) ValidateSession(_ context.Context, token string) error {
	v.calls++
	if v.err != nil {
		return v.err
	}
	if v.reject[token] {
		return fmt.Errorf("table %s: %w", token, ErrInvalidSession)
	}
	return nil
}

func setupBinder(t *testing.T, v Validator) (*Binder, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewBinder(store.NewRedisStore(client, ""), 2*time.Hour, v), mr
}

func TestTokenWithoutBindingIsNoSession(t *testing.T) {
	b, _ := setupBinder(t, nil)

	_, err := b.Token(context.Background(), "browser-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBindEmptyTokenIsNoSession(t *testing.T) {
	b, mr := setupBinder(t, nil)

	changed, err := b.Bind(context.Background(), "browser-1", "")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, changed)
	assert.False(t, mr.Exists(store.SessionKey("browser-1")))
}

func TestBindPersistsOncePerDistinctValue(t *testing.T) {
	v := &stubValidator{}
	b, mr := setupBinder(t, v)
	ctx := context.Background()

	changed, err := b.Bind(ctx, "browser-1", "enc-table-7")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2*time.Hour, mr.TTL(store.SessionKey("browser-1")))

	changed, err = b.Bind(ctx, "browser-1", "enc-table-7")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, v.calls, "same token must not be validated or written again")

	token, err := b.Token(ctx, "browser-1")
	require.NoError(t, err)
	assert.Equal(t, "enc-table-7", token)
}

func TestRescanOverwritesAndDropsCartHandle(t *testing.T) {
	b, _ := setupBinder(t, nil)
	ctx := context.Background()

	_, err := b.Bind(ctx, "browser-1", "table-a")
	require.NoError(t, err)
	require.NoError(t, b.SetCartHandle(ctx, "browser-1", "cart-1"))

	changed, err := b.Bind(ctx, "browser-1", "table-b")
	require.NoError(t, err)
	assert.True(t, changed)

	token, err := b.Token(ctx, "browser-1")
	require.NoError(t, err)
	assert.Equal(t, "table-b", token)

	_, err = b.CartHandle(ctx, "browser-1")
	assert.ErrorIs(t, err, ErrNoCartHandle)
}

func TestInvalidSessionIsDistinctFromNoSession(t *testing.T) {
	v := &stubValidator{reject: map[string]bool{"forged": true}}
	b, _ := setupBinder(t, v)
	ctx := context.Background()

	_, err := b.Bind(ctx, "browser-1", "real")
	require.NoError(t, err)

	changed, err := b.Bind(ctx, "browser-1", "forged")
	assert.False(t, changed)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.NotErrorIs(t, err, ErrNoSession)

	token, err := b.Token(ctx, "browser-1")
	require.NoError(t, err)
	assert.Equal(t, "real", token, "rejected token must not replace the bound one")
}

func TestValidatorTransportErrorIsNotInvalidSession(t *testing.T) {
	v := &stubValidator{err: errors.New("connection refused")}
	b, _ := setupBinder(t, v)

	_, err := b.Bind(context.Background(), "browser-1", "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSession)
}

func TestSessionExpires(t *testing.T) {
	b, mr := setupBinder(t, nil)
	ctx := context.Background()

	_, err := b.Bind(ctx, "browser-1", "tok")
	require.NoError(t, err)

	mr.FastForward(3 * time.Hour)
	_, err = b.Token(ctx, "browser-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCartHandleLifecycle(t *testing.T) {
	b, _ := setupBinder(t, nil)
	ctx := context.Background()

	require.NoError(t, b.SetCartHandle(ctx, "browser-1", "cart-9"))
	h, err := b.CartHandle(ctx, "browser-1")
	require.NoError(t, err)
	assert.Equal(t, "cart-9", h)

	require.NoError(t, b.ClearCartHandle(ctx, "browser-1"))
	_, err = b.CartHandle(ctx, "browser-1")
	assert.ErrorIs(t, err, ErrNoCartHandle)
}

func TestUnbind(t *testing.T) {
	b, _ := setupBinder(t, nil)
	ctx := context.Background()

	_, err := b.Bind(ctx, "browser-1", "tok")
	require.NoError(t, err)
	require.NoError(t, b.Unbind(ctx, "browser-1"))

	_, err = b.Token(ctx, "browser-1")
	assert.ErrorIs(t, err, ErrNoSession)
}
