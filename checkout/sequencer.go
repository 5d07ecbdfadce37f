package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kariqs/tableside/cart"
	"github.com/Kariqs/tableside/logger"
	"github.com/Kariqs/tableside/models"
	"github.com/Kariqs/tableside/payment"
	"github.com/Kariqs/tableside/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Backend interface {
	CreateCart(ctx context.Context, sessionToken string) (string, error)
	AddCartLine(ctx context.Context, cartHandle string, line models.CartLine) error
	CreatePaymentIntent(ctx context.Context, cartHandle, currency string) (string, error)
	PlaceOrder(ctx context.Context, req models.OrderRequest) (models.OrderAck, error)
}

type Sessions interface {
	Token(ctx context.Context, browserID string) (string, error)
	SetCartHandle(ctx context.Context, browserID, handle string) error
	ClearCartHandle(ctx context.Context, browserID string) error
}

type Cart interface {
	Snapshot(ctx context.Context) (cart.Lines, error)
	RemovePaid(ctx context.Context, paid cart.Lines) (cart.Lines, error)
}

// Recorder receives the attempt after every state change.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

// Notifier receives the attempt once it reaches a terminal state.
type Notifier interface {
	Notify(ctx context.Context, a Attempt) error
}

// IntentClaims remembers which attempt a payment intent settled.
type IntentClaims interface {
	ClaimIntent(ctx context.Context, intentID, attemptID string) (bool, error)
}

// Deps are the collaborators of one browser's checkout. Recorder, Notifier
// and Claims are optional.
type Deps struct {
	Backend  Backend
	Sessions Sessions
	Cart     Cart
	Recorder Recorder
	Notifier Notifier
	Claims   IntentClaims
	Log      *logger.Logger
}

// Attempt is the persisted view of one checkout attempt. It never holds the
// payment secret.
type Attempt struct {
	ID              string                `json:"id"`
	BrowserID       string                `json:"browserId"`
	State           State                 `json:"state"`
	Handle          string                `json:"handle,omitempty"`
	Lines           cart.Lines            `json:"lines"`
	Total           decimal.Decimal       `json:"total"`
	Currency        string                `json:"currency"`
	Uploaded        int                   `json:"uploaded"`
	Reason          Reason                `json:"reason,omitempty"`
	Detail          string                `json:"detail,omitempty"`
	PaymentIntentID string                `json:"paymentIntentId,omitempty"`
	Payer           models.PaymentContact `json:"payer"`
	OrderID         models.ID             `json:"orderId,omitempty"`
	StartedAt       time.Time             `json:"startedAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// PaymentIntent is what the browser needs to confirm the payment.
type PaymentIntent struct {
	AttemptID    string          `json:"attemptId"`
	CartHandle   string          `json:"cartId"`
	ClientSecret string          `json:"clientSecret"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
}

// Sequencer drives one checkout attempt from idle to completed or failed.
// A Sequencer is not safe for concurrent use.
type Sequencer struct {
	deps    Deps
	attempt Attempt
}

// New starts a fresh attempt in the idle state.
func New(deps Deps, browserID, currency string) *Sequencer {
	now := time.Now().UTC()
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	return &Sequencer{
		deps: deps,
		attempt: Attempt{
			ID:        uuid.NewString(),
			BrowserID: browserID,
			State:     StateIdle,
			Currency:  currency,
			StartedAt: now,
			UpdatedAt: now,
		},
	}
}

// Resume rebuilds the sequencer of an attempt that is waiting for payment.
func Resume(deps Deps, a Attempt) (*Sequencer, error) {
	if a.State != StateSettling {
		return nil, ErrNotResumable
	}
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	return &Sequencer{deps: deps, attempt: a}, nil
}

func (s *Sequencer) State() State { return s.attempt.State }

func (s *Sequencer) Attempt() Attempt {
	a := s.attempt
	a.Lines = a.Lines.Clone()
	return a
}

// Begin runs cart creation, line upload and payment intent creation. On
// success the attempt waits in the settling state for the payment outcome.
// Nothing created server-side is rolled back on failure.
func (s *Sequencer) Begin(ctx context.Context) (PaymentIntent, error) {
	if s.attempt.State != StateIdle {
		return PaymentIntent{}, ErrIllegalTransition
	}
	if err := s.advance(ctx); err != nil {
		return PaymentIntent{}, err
	}

	token, err := s.deps.Sessions.Token(ctx, s.attempt.BrowserID)
	if errors.Is(err, session.ErrNoSession) {
		return PaymentIntent{}, s.fail(ctx, ReasonNoSession, err)
	}
	if err != nil {
		return PaymentIntent{}, s.fail(ctx, ReasonCartCreationFailed, err)
	}

	lines, err := s.deps.Cart.Snapshot(ctx)
	if err != nil {
		return PaymentIntent{}, s.fail(ctx, ReasonCartCreationFailed, err)
	}
	if len(lines) == 0 {
		return PaymentIntent{}, s.fail(ctx, ReasonEmptyCart, ErrEmptyCart)
	}
	s.attempt.Lines = lines
	s.attempt.Total = lines.Total()

	handle, err := s.deps.Backend.CreateCart(ctx, token)
	if err != nil {
		return PaymentIntent{}, s.fail(ctx, ReasonCartCreationFailed, err)
	}
	s.attempt.Handle = handle
	if err := s.deps.Sessions.SetCartHandle(ctx, s.attempt.BrowserID, handle); err != nil {
		return PaymentIntent{}, s.fail(ctx, ReasonCartCreationFailed, err)
	}
	if err := s.advance(ctx); err != nil {
		return PaymentIntent{}, err
	}

	for i, line := range lines {
		if err := s.deps.Backend.AddCartLine(ctx, handle, line); err != nil {
			return PaymentIntent{}, s.fail(ctx, ReasonLineUploadFailed, &LineUploadError{
				Uploaded: i,
				Total:    len(lines),
				Line:     line,
				Err:      err,
			})
		}
		s.attempt.Uploaded = i + 1
	}
	if err := s.advance(ctx); err != nil {
		return PaymentIntent{}, err
	}

	secret, err := s.deps.Backend.CreatePaymentIntent(ctx, handle, s.attempt.Currency)
	if err != nil {
		return PaymentIntent{}, s.fail(ctx, ReasonPaymentSecretFailed, err)
	}
	if secret == "" {
		return PaymentIntent{}, s.fail(ctx, ReasonPaymentSecretFailed, ErrEmptySecret)
	}
	s.attempt.PaymentIntentID = payment.IntentIDFromSecret(secret)
	if err := s.advance(ctx); err != nil {
		return PaymentIntent{}, err
	}

	return PaymentIntent{
		AttemptID:    s.attempt.ID,
		CartHandle:   handle,
		ClientSecret: secret,
		Total:        s.attempt.Total,
		Currency:     s.attempt.Currency,
	}, nil
}

// Settle finalizes the order once the payment processor has answered. The
// payment must be the intent created for this attempt and charge exactly the
// attempt total. Only a created order takes its lines out of the cart.
//
// An error that is not a *Error leaves the attempt settling.
func (s *Sequencer) Settle(ctx context.Context, conf payment.Confirmation, payer models.PaymentContact) (models.OrderAck, error) {
	if s.attempt.State != StateSettling {
		return models.OrderAck{}, ErrIllegalTransition
	}
	s.attempt.Payer = payer

	if bound := s.attempt.PaymentIntentID; bound != "" && conf.IntentID != bound {
		return models.OrderAck{}, s.fail(ctx, ReasonPaymentMismatch, &MismatchError{
			IntentID: conf.IntentID,
			Detail:   "checkout was started with intent " + bound,
		})
	}
	s.attempt.PaymentIntentID = conf.IntentID

	if !conf.Succeeded {
		return models.OrderAck{}, s.fail(ctx, ReasonPaymentDeclined, &DeclinedError{IntentID: conf.IntentID, Status: conf.Status})
	}
	if !conf.Matches(s.attempt.Total, s.attempt.Currency) {
		return models.OrderAck{}, s.fail(ctx, ReasonPaymentMismatch, &MismatchError{
			IntentID: conf.IntentID,
			Detail: fmt.Sprintf("charged %d %s, expected %d %s", conf.Amount, conf.Currency,
				payment.MinorUnits(s.attempt.Total, s.attempt.Currency), s.attempt.Currency),
		})
	}
	if s.deps.Claims != nil {
		ok, err := s.deps.Claims.ClaimIntent(ctx, conf.IntentID, s.attempt.ID)
		if err != nil {
			return models.OrderAck{}, err
		}
		if !ok {
			return models.OrderAck{}, s.fail(ctx, ReasonPaymentMismatch, &MismatchError{
				IntentID: conf.IntentID,
				Detail:   "payment already settled another checkout",
			})
		}
	}

	ack, err := s.deps.Backend.PlaceOrder(ctx, models.OrderRequest{
		CartID:     s.attempt.Handle,
		TotalPrice: s.attempt.Total,
		Payment:    payer,
	})
	if err != nil {
		return models.OrderAck{}, s.fail(ctx, ReasonOrderFinalizationFailed, err)
	}
	s.attempt.OrderID = ack.OrderID

	if _, err := s.deps.Cart.RemovePaid(ctx, s.attempt.Lines); err != nil {
		s.deps.Log.Error(ctx, "checkout_cart_clear_failed", "order placed but its lines were not removed from the cart", err,
			slog.String("attempt_id", s.attempt.ID))
	}
	if err := s.deps.Sessions.ClearCartHandle(ctx, s.attempt.BrowserID); err != nil {
		s.deps.Log.Error(ctx, "checkout_handle_clear_failed", "order placed but cart handle was not cleared", err,
			slog.String("attempt_id", s.attempt.ID))
	}

	if err := s.advance(ctx); err != nil {
		return models.OrderAck{}, err
	}
	s.notify(ctx)
	s.deps.Log.Info(ctx, "checkout_completed", "order placed",
		slog.String("attempt_id", s.attempt.ID),
		slog.String("order_id", ack.OrderID.String()),
		slog.String("total", s.attempt.Total.String()))
	return ack, nil
}

func (s *Sequencer) advance(ctx context.Context) error {
	next, err := Transition(s.attempt.State, true)
	if err != nil {
		return err
	}
	s.enter(ctx, next)
	return nil
}

func (s *Sequencer) fail(ctx context.Context, reason Reason, cause error) error {
	failure := &Error{Reason: reason, Step: s.attempt.State, Err: cause}
	next, err := Transition(s.attempt.State, false)
	if err != nil {
		return err
	}
	s.attempt.Reason = reason
	s.attempt.Detail = failure.Error()
	s.enter(ctx, next)
	s.notify(ctx)

	s.deps.Log.Error(ctx, "checkout_failed", "checkout attempt failed", cause,
		slog.String("attempt_id", s.attempt.ID),
		slog.String("reason", string(reason)),
		slog.String("step", string(failure.Step)),
		slog.Bool("follow_up", failure.RequiresFollowUp()))
	return failure
}

func (s *Sequencer) enter(ctx context.Context, next State) {
	s.attempt.State = next
	s.attempt.UpdatedAt = time.Now().UTC()
	if s.deps.Recorder == nil {
		return
	}
	if err := s.deps.Recorder.Record(ctx, s.Attempt()); err != nil {
		s.deps.Log.Error(ctx, "checkout_record_failed", "could not record checkout attempt", err,
			slog.String("attempt_id", s.attempt.ID),
			slog.String("state", string(next)))
	}
}

func (s *Sequencer) notify(ctx context.Context) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.Notify(ctx, s.Attempt()); err != nil {
		s.deps.Log.Error(ctx, "checkout_notify_failed", "could not publish checkout outcome", err,
			slog.String("attempt_id", s.attempt.ID))
	}
}
