package checkout

import (
	"errors"
	"fmt"

	"github.com/Kariqs/tableside/models"
)

// Reason names why an attempt failed. The values are part of the HTTP API.
type Reason string

const (
	ReasonNoSession               Reason = "no_session"
	ReasonEmptyCart               Reason = "empty_cart"
	ReasonCartCreationFailed      Reason = "cart_creation_failed"
	ReasonLineUploadFailed        Reason = "line_upload_failed"
	ReasonPaymentSecretFailed     Reason = "payment_secret_failed"
	ReasonPaymentDeclined         Reason = "payment_declined"
	ReasonPaymentMismatch         Reason = "payment_mismatch"
	ReasonOrderFinalizationFailed Reason = "order_finalization_failed"
)

var (
	ErrEmptyCart    = errors.New("checkout: cart is empty")
	ErrEmptySecret  = errors.New("checkout: payment secret is empty")
	ErrNoAttempt    = errors.New("checkout: no pending attempt")
	ErrNotResumable = errors.New("checkout: attempt is not waiting for payment")
)

// Error is a failed attempt.
type Error struct {
	Reason Reason
	Step   State
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("checkout %s during %s: %v", e.Reason, e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// RequiresFollowUp is true when money may have moved without an order.
func (e *Error) RequiresFollowUp() bool {
	return e.Reason == ReasonOrderFinalizationFailed
}

// ReasonOf returns the failure reason carried by err, or "".
func ReasonOf(err error) Reason {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Reason
	}
	return ""
}

// LineUploadError reports how far the line upload got before a line was
// refused. Uploaded lines stay on the server cart.
type LineUploadError struct {
	Uploaded int
	Total    int
	Line     models.CartLine
	Err      error
}

func (e *LineUploadError) Error() string {
	return fmt.Sprintf("line %d of %d (dish %s, %s) failed: %v", e.Uploaded+1, e.Total, e.Line.DishID, e.Line.Size, e.Err)
}

func (e *LineUploadError) Unwrap() error { return e.Err }

// Partial is true when at least one line reached the server cart.
func (e *LineUploadError) Partial() bool { return e.Uploaded > 0 }

// DeclinedError carries the processor status of a declined payment.
type DeclinedError struct {
	IntentID string
	Status   string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payment %s declined with status %q", e.IntentID, e.Status)
}

// MismatchError is a payment that does not pay for the attempt it was
// presented to.
type MismatchError struct {
	IntentID string
	Detail   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("payment %s does not match this checkout: %s", e.IntentID, e.Detail)
}
