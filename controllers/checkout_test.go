package controllers_test

import (
	"net/http"
	"testing"

	"github.com/Kariqs/tableside/backend/backendtest"
	"github.com/Kariqs/tableside/checkout"
	"github.com/Kariqs/tableside/payment"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payer = gin.H{"customer_name": "Ada", "customer_email": "ada@example.com"}

func confirmBody(intent string) gin.H {
	return gin.H{"payment_intent_id": intent, "payment": payer}
}

func (h *harness) readyToPay(browser string) map[string]any {
	h.t.Helper()
	h.bind(browser)
	require.Equal(h.t, http.StatusCreated, h.add(browser, 11, "medium", 2).Code)
	require.Equal(h.t, http.StatusCreated, h.add(browser, 21, "regular", 1).Code)

	w := h.post("/checkout", browser, nil)
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	intent := decode(h.t, w)
	h.verifier.expect(decimal.RequireFromString(intent["total"].(string)), intent["currency"].(string))
	return intent
}

// intentOf is the payment intent id the browser confirms for a checkout.
func intentOf(intent map[string]any) string {
	return payment.IntentIDFromSecret(intent["clientSecret"].(string))
}

func TestCheckoutWithoutSession(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusCreated, h.add(browserA, 11, "medium", 1).Code)
	before := len(h.srv.Calls())

	w := h.post("/checkout", browserA, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(checkout.ReasonNoSession), decode(t, w)["reason"])
	assert.Len(t, h.srv.Calls(), before, "no backend call after the menu lookup")
}

func TestCheckoutEmptyCart(t *testing.T) {
	h := newHarness(t)
	h.bind(browserA)

	w := h.post("/checkout", browserA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(checkout.ReasonEmptyCart), decode(t, w)["reason"])
	assert.Zero(t, h.srv.CallCount("POST /carts/table"))
}

func TestCheckoutHappyPath(t *testing.T) {
	h := newHarness(t)
	intent := h.readyToPay(browserA)

	assert.NotEmpty(t, intent["clientSecret"])
	assert.NotEmpty(t, intent["cartId"])
	assert.Equal(t, "usd", intent["currency"])
	assert.Equal(t, "202.5", intent["total"])

	w := h.get("/checkout", browserA)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode(t, w)
	assert.Equal(t, string(checkout.StateSettling), pending["state"])
	assert.NotContains(t, w.Body.String(), intent["clientSecret"], "the payment secret is never persisted")
	assert.Equal(t, true, decode(t, h.get("/session", browserA))["hasCartHandle"])

	assert.Equal(t, intentOf(intent), pending["paymentIntentId"])

	w = h.post("/checkout/confirm", browserA, confirmBody(intentOf(intent)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["order_id"])

	assert.Empty(t, decode(t, h.get("/cart", browserA))["items"])
	assert.Equal(t, http.StatusNotFound, h.get("/checkout", browserA).Code)
	assert.Equal(t, false, decode(t, h.get("/session", browserA))["hasCartHandle"])

	placed := h.srv.PlacedOrders()
	require.Len(t, placed, 1)
	assert.Equal(t, intent["cartId"], placed[0].CartID)
	assert.Equal(t, "ada@example.com", placed[0].Payment.CustomerEmail)
	assert.Len(t, h.srv.CartItems(placed[0].CartID), 2)

	w = h.post("/checkout/confirm", browserA, confirmBody(intentOf(intent)))
	assert.Equal(t, http.StatusConflict, w.Code, "a settled attempt cannot be confirmed twice")
	assert.Len(t, h.srv.PlacedOrders(), 1)
}

func TestCheckoutPartialLineUpload(t *testing.T) {
	h := newHarness(t)
	h.bind(browserA)
	require.Equal(t, http.StatusCreated, h.add(browserA, 11, "medium", 2).Code)
	require.Equal(t, http.StatusCreated, h.add(browserA, 12, "medium", 1).Code)
	require.Equal(t, http.StatusCreated, h.add(browserA, 21, "regular", 1).Code)
	h.srv.SetFaults(backendtest.Faults{FailLineAt: 2})

	w := h.post("/checkout", browserA, nil)

	require.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Equal(t, string(checkout.ReasonLineUploadFailed), body["reason"])
	assert.Equal(t, true, body["partial"])
	assert.EqualValues(t, 1, body["uploaded"])
	assert.EqualValues(t, 3, body["total"])

	assert.Len(t, decode(t, h.get("/cart", browserA))["items"], 3)
	assert.Empty(t, h.srv.PaymentIntents())
	assert.Equal(t, http.StatusNotFound, h.get("/checkout", browserA).Code)
}

func TestCheckoutPaymentSecretFailure(t *testing.T) {
	h := newHarness(t)
	h.bind(browserA)
	require.Equal(t, http.StatusCreated, h.add(browserA, 11, "medium", 1).Code)
	h.srv.SetFaults(backendtest.Faults{EmptySecret: true})

	w := h.post("/checkout", browserA, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, string(checkout.ReasonPaymentSecretFailed), decode(t, w)["reason"])
}

func TestCheckoutDeclinedKeepsCart(t *testing.T) {
	h := newHarness(t)
	first := h.readyToPay(browserA)
	h.verifier.set(payment.Confirmation{Status: "requires_payment_method"}, nil)

	w := h.post("/checkout/confirm", browserA, confirmBody(intentOf(first)))

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, string(checkout.ReasonPaymentDeclined), decode(t, w)["reason"])
	assert.Len(t, decode(t, h.get("/cart", browserA))["items"], 2)
	assert.Empty(t, h.srv.PlacedOrders())

	w = h.post("/checkout", browserA, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEqual(t, first["cartId"], decode(t, w)["cartId"], "a retry starts a fresh server cart")
}

func TestCheckoutVerificationErrorCanBeRetried(t *testing.T) {
	h := newHarness(t)
	intent := h.readyToPay(browserA)
	h.verifier.set(payment.Confirmation{}, errProcessorDown)

	w := h.post("/checkout/confirm", browserA, confirmBody(intentOf(intent)))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, http.StatusOK, h.get("/checkout", browserA).Code)

	h.verifier.set(payment.Confirmation{Status: "succeeded", Succeeded: true}, nil)
	w = h.post("/checkout/confirm", browserA, confirmBody(intentOf(intent)))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCheckoutFinalizationFailureNeedsFollowUp(t *testing.T) {
	h := newHarness(t)
	intent := h.readyToPay(browserA)
	h.srv.SetFaults(backendtest.Faults{FailOrder: true})

	w := h.post("/checkout/confirm", browserA, confirmBody(intentOf(intent)))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, string(checkout.ReasonOrderFinalizationFailed), body["reason"])
	assert.Equal(t, true, body["follow_up"])
	assert.Len(t, decode(t, h.get("/cart", browserA))["items"], 2)

	admin := h.loginAdmin()
	w = h.do(request{method: http.MethodGet, path: "/admin/checkout-attempts", admin: admin})
	require.Equal(t, http.StatusOK, w.Code)
	attempts := decode(t, w)["attempts"].([]any)
	require.Len(t, attempts, 1)
	row := attempts[0].(map[string]any)
	assert.Equal(t, "ada@example.com", row["payerEmail"])
	assert.Equal(t, intentOf(intent), row["paymentIntentId"])
	attemptID := row["attemptId"].(string)

	w = h.do(request{method: http.MethodPatch, path: "/admin/checkout-attempts/" + attemptID + "/resolve", admin: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["resolvedAt"])

	w = h.do(request{method: http.MethodGet, path: "/admin/checkout-attempts", admin: admin})
	assert.Empty(t, decode(t, w)["attempts"])

	w = h.do(request{method: http.MethodPatch, path: "/admin/checkout-attempts/missing/resolve", admin: admin})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmWithoutPendingCheckout(t *testing.T) {
	h := newHarness(t)
	w := h.post("/checkout/confirm", browserA, confirmBody("pi_1"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.post("/checkout/confirm", browserA, gin.H{"payment_intent_id": "pi_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLedgerRecordsEveryAttempt(t *testing.T) {
	h := newHarness(t)
	intent := h.readyToPay(browserA)
	require.Equal(t, http.StatusCreated, h.post("/checkout/confirm", browserA, confirmBody(intentOf(intent))).Code)

	admin := h.loginAdmin()
	w := h.do(request{method: http.MethodGet, path: "/admin/checkout-attempts?reason=all&unresolved=false", admin: admin})
	require.Equal(t, http.StatusOK, w.Code)
	attempts := decode(t, w)["attempts"].([]any)
	require.Len(t, attempts, 1)
	assert.Equal(t, string(checkout.StateCompleted), attempts[0].(map[string]any)["state"])
}

func TestConfirmRejectsPaymentThatDoesNotMatch(t *testing.T) {
	cases := map[string]struct {
		conf   payment.Confirmation
		intent func(map[string]any) string
	}{
		"underpaid":      {payment.Confirmation{Status: "succeeded", Succeeded: true, Amount: 1, Currency: "usd"}, intentOf},
		"wrong currency": {payment.Confirmation{Status: "succeeded", Succeeded: true, Amount: 20250, Currency: "eur"}, intentOf},
		"foreign intent": {payment.Confirmation{Status: "succeeded", Succeeded: true}, func(map[string]any) string { return "pi_elsewhere" }},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			intent := h.readyToPay(browserA)
			h.verifier.set(tc.conf, nil)

			w := h.post("/checkout/confirm", browserA, confirmBody(tc.intent(intent)))

			require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
			assert.Equal(t, string(checkout.ReasonPaymentMismatch), decode(t, w)["reason"])
			assert.Empty(t, h.srv.PlacedOrders())
			assert.Len(t, decode(t, h.get("/cart", browserA))["items"], 2)
			assert.Equal(t, http.StatusNotFound, h.get("/checkout", browserA).Code)
		})
	}
}

func TestEarlierPaymentCannotSettleNewCheckout(t *testing.T) {
	h := newHarness(t)
	first := h.readyToPay(browserA)
	require.Equal(t, http.StatusCreated, h.post("/checkout/confirm", browserA, confirmBody(intentOf(first))).Code)

	h.readyToPay(browserA)
	w := h.post("/checkout/confirm", browserA, confirmBody(intentOf(first)))

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(checkout.ReasonPaymentMismatch), decode(t, w)["reason"])
	assert.Len(t, h.srv.PlacedOrders(), 1)
}
