package checkout

import (
	"errors"
	"fmt"
)

type State string

const (
	StateIdle                  State = "idle"
	StateCreatingCart          State = "creating_cart"
	StateUploadingLines        State = "uploading_lines"
	StateAwaitingPaymentSecret State = "awaiting_payment_secret"
	StateSettling              State = "settling"
	StateCompleted             State = "completed"
	StateFailed                State = "failed"
)

var ErrIllegalTransition = errors.New("checkout: illegal state transition")

// successor is the happy path. Any non-terminal state may also fail.
var successor = map[State]State{
	StateIdle:                  StateCreatingCart,
	StateCreatingCart:          StateUploadingLines,
	StateUploadingLines:        StateAwaitingPaymentSecret,
	StateAwaitingPaymentSecret: StateSettling,
	StateSettling:              StateCompleted,
}

func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Transition returns the state that follows from when the current step
// succeeded or failed. Terminal states have no successor.
func Transition(from State, succeeded bool) (State, error) {
	if from.IsTerminal() {
		return from, fmt.Errorf("%w: %s is terminal", ErrIllegalTransition, from)
	}
	next, ok := successor[from]
	if !ok {
		return from, fmt.Errorf("%w: unknown state %q", ErrIllegalTransition, from)
	}
	if !succeeded {
		return StateFailed, nil
	}
	return next, nil
}
