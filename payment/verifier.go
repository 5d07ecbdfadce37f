package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured = errors.New("payment: verifier not configured")
	ErrMissingIntent = errors.New("payment: payment intent id is required")
)

// Confirmation is the payment processor's verdict on one payment intent.
type Confirmation struct {
	IntentID  string `json:"intentId"`
	Status    string `json:"status"`
	Succeeded bool   `json:"succeeded"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// Verifier looks up the outcome of a payment the browser confirmed with the
// processor. A returned error means the outcome is unknown, not declined.
type Verifier interface {
	Verify(ctx context.Context, intentID string) (Confirmation, error)
}

// StripeVerifier reads payment intents from the Stripe REST API.
type StripeVerifier struct {
	client *resty.Client
}

func NewStripeVerifier(baseURL, secretKey string, timeout time.Duration) *StripeVerifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(secretKey).
		SetHeader("Accept", "application/json")
	return &StripeVerifier{client: client}
}

func (v *StripeVerifier) Verify(ctx context.Context, intentID string) (Confirmation, error) {
	if intentID == "" {
		return Confirmation{}, ErrMissingIntent
	}

	resp, err := v.client.R().
		SetContext(ctx).
		Get("/v1/payment_intents/" + url.PathEscape(intentID))
	if err != nil {
		return Confirmation{}, fmt.Errorf("payment intent lookup failed: %w", err)
	}
	if resp.IsError() {
		return Confirmation{}, fmt.Errorf("payment intent lookup failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var intent struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(resp.Body(), &intent); err != nil {
		return Confirmation{}, fmt.Errorf("failed to parse payment intent: %w", err)
	}
	if intent.ID == "" || intent.Status == "" {
		return Confirmation{}, fmt.Errorf("incomplete payment intent response: %s", string(resp.Body()))
	}

	return Confirmation{
		IntentID:  intent.ID,
		Status:    intent.Status,
		Succeeded: intent.Status == "succeeded",
		Amount:    intent.Amount,
		Currency:  intent.Currency,
	}, nil
}

// Unconfigured is used when no processor credentials are set.
type Unconfigured struct{}

func (Unconfigured) Verify(context.Context, string) (Confirmation, error) {
	return Confirmation{}, ErrNotConfigured
}
