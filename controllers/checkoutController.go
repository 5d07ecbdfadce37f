package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Kariqs/tableside/checkout"
	"github.com/Kariqs/tableside/middlewares"
	"github.com/Kariqs/tableside/models"
	"github.com/Kariqs/tableside/payment"
	"github.com/gin-gonic/gin"
)

type ConfirmCheckoutRequest struct {
	PaymentIntentID string                `json:"payment_intent_id" binding:"required"`
	Payment         models.PaymentContact `json:"payment" binding:"required"`
}

var checkoutStatus = map[checkout.Reason]int{
	checkout.ReasonNoSession:               http.StatusUnauthorized,
	checkout.ReasonEmptyCart:               http.StatusBadRequest,
	checkout.ReasonCartCreationFailed:      http.StatusBadGateway,
	checkout.ReasonLineUploadFailed:        http.StatusBadGateway,
	checkout.ReasonPaymentSecretFailed:     http.StatusBadGateway,
	checkout.ReasonPaymentDeclined:         http.StatusPaymentRequired,
	checkout.ReasonPaymentMismatch:         http.StatusConflict,
	checkout.ReasonOrderFinalizationFailed: http.StatusInternalServerError,
}

var checkoutMessage = map[checkout.Reason]string{
	checkout.ReasonNoSession:               "Please scan the QR code on your table before checking out.",
	checkout.ReasonEmptyCart:               "Your cart is empty.",
	checkout.ReasonCartCreationFailed:      "We could not start your order. Please try again.",
	checkout.ReasonLineUploadFailed:        "We could not send your items to the restaurant. Please try again.",
	checkout.ReasonPaymentSecretFailed:     "We could not start the payment. Please try again.",
	checkout.ReasonPaymentDeclined:         "Your payment was not accepted.",
	checkout.ReasonPaymentMismatch:         "This payment does not match your order. Please start checkout again.",
	checkout.ReasonOrderFinalizationFailed: "Your payment went through but the order could not be placed. Staff have been notified.",
}

func respondCheckoutError(ctx *gin.Context, err error) {
	var cerr *checkout.Error
	if !errors.As(err, &cerr) {
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	body := gin.H{
		"message": checkoutMessage[cerr.Reason],
		"reason":  cerr.Reason,
		"step":    cerr.Step,
	}
	if cerr.RequiresFollowUp() {
		body["follow_up"] = true
	}
	var lineErr *checkout.LineUploadError
	if errors.As(err, &lineErr) {
		body["partial"] = lineErr.Partial()
		body["uploaded"] = lineErr.Uploaded
		body["total"] = lineErr.Total
	}
	sendJSONResponse(ctx, checkoutStatus[cerr.Reason], body)
}

// BeginCheckout runs the sequencer up to the payment step and returns the
// client secret. Double submits from one browser share a single attempt.
func (c *Controller) BeginCheckout(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	browserID := middlewares.BrowserID(ctx)

	v, err, _ := c.checkouts.Do("begin:"+browserID, func() (any, error) {
		seq := checkout.New(c.checkoutDeps(browserID), browserID, c.currency)
		intent, err := seq.Begin(reqCtx)
		if err != nil {
			return nil, err
		}
		if err := c.attempts.Save(reqCtx, seq.Attempt()); err != nil {
			return nil, err
		}
		return intent, nil
	})
	if err != nil {
		if checkout.ReasonOf(err) == "" {
			c.log.Error(reqCtx, "checkout_begin_failed", "could not begin checkout", err)
		}
		respondCheckoutError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, v.(checkout.PaymentIntent))
}

func (c *Controller) GetCheckout(ctx *gin.Context) {
	attempt, err := c.attempts.Load(ctx.Request.Context(), middlewares.BrowserID(ctx))
	if errors.Is(err, checkout.ErrNoAttempt) {
		sendErrorResponse(ctx, http.StatusNotFound, "No checkout in progress.")
		return
	}
	if err != nil {
		c.log.Error(ctx.Request.Context(), "checkout_read_failed", "could not load pending checkout", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// ConfirmCheckout settles the pending attempt once the browser has confirmed
// the payment with the processor. When the processor cannot be reached the
// attempt stays pending and the call may be repeated.
func (c *Controller) ConfirmCheckout(ctx *gin.Context) {
	var req ConfirmCheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	reqCtx := ctx.Request.Context()
	browserID := middlewares.BrowserID(ctx)

	v, err, _ := c.checkouts.Do("confirm:"+browserID, func() (any, error) {
		attempt, err := c.attempts.Load(reqCtx, browserID)
		if err != nil {
			return nil, err
		}
		conf, err := c.verifier.Verify(reqCtx, req.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		seq, err := checkout.Resume(c.checkoutDeps(browserID), attempt)
		if err != nil {
			return nil, err
		}

		ack, settleErr := seq.Settle(reqCtx, conf, req.Payment)
		if seq.State().IsTerminal() {
			if err := c.attempts.Delete(reqCtx, browserID); err != nil {
				c.log.Error(reqCtx, "checkout_cleanup_failed", "could not drop settled attempt", err,
					slog.String("attempt_id", attempt.ID))
			}
		}
		if settleErr != nil {
			return nil, settleErr
		}
		return gin.H{
			"message":      "Order placed",
			"attemptId":    attempt.ID,
			"order_id":     ack.OrderID,
			"order_status": ack.Status,
		}, nil
	})

	switch {
	case err == nil:
		ctx.JSON(http.StatusCreated, v)
	case errors.Is(err, checkout.ErrNoAttempt), errors.Is(err, checkout.ErrNotResumable):
		sendErrorResponse(ctx, http.StatusConflict, "No checkout is waiting for payment.")
	case errors.Is(err, payment.ErrNotConfigured):
		sendErrorResponse(ctx, http.StatusServiceUnavailable, "Payments are not configured.")
	case errors.Is(err, payment.ErrMissingIntent):
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
	case checkout.ReasonOf(err) != "":
		respondCheckoutError(ctx, err)
	default:
		c.log.Error(reqCtx, "payment_verification_failed", "could not verify payment", err)
		sendErrorResponse(ctx, http.StatusBadGateway, "We could not verify your payment yet. Please try again.")
	}
}
