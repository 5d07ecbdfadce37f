package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from      State
		succeeded bool
		want      State
	}{
		{StateIdle, true, StateCreatingCart},
		{StateIdle, false, StateFailed},
		{StateCreatingCart, true, StateUploadingLines},
		{StateCreatingCart, false, StateFailed},
		{StateUploadingLines, true, StateAwaitingPaymentSecret},
		{StateUploadingLines, false, StateFailed},
		{StateAwaitingPaymentSecret, true, StateSettling},
		{StateAwaitingPaymentSecret, false, StateFailed},
		{StateSettling, true, StateCompleted},
		{StateSettling, false, StateFailed},
	}

	for _, tt := range tests {
		got, err := Transition(tt.from, tt.succeeded)
		assert.NoError(t, err, "%s succeeded=%v", tt.from, tt.succeeded)
		assert.Equal(t, tt.want, got, "%s succeeded=%v", tt.from, tt.succeeded)
	}
}

func TestTerminalStatesAreNotReentered(t *testing.T) {
	for _, from := range []State{StateCompleted, StateFailed} {
		for _, ok := range []bool{true, false} {
			got, err := Transition(from, ok)
			assert.ErrorIs(t, err, ErrIllegalTransition)
			assert.Equal(t, from, got)
		}
	}
}

func TestUnknownState(t *testing.T) {
	_, err := Transition(State("paused"), true)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateSettling.IsTerminal())
	assert.False(t, StateIdle.IsTerminal())
}
