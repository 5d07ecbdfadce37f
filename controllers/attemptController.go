package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Kariqs/tableside/checkout"
	"github.com/Kariqs/tableside/repository"
	"github.com/gin-gonic/gin"
)

const msgLedgerDisabled = "The checkout ledger is not configured."

// GetCheckoutAttempts lists ledger rows. By default it shows the unresolved
// follow-up queue: paid attempts whose order could not be created.
func (c *Controller) GetCheckoutAttempts(ctx *gin.Context) {
	if c.ledger == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, msgLedgerDisabled)
		return
	}

	reason := ctx.DefaultQuery("reason", string(checkout.ReasonOrderFinalizationFailed))
	if reason == "all" {
		reason = ""
	}
	unresolved, _ := strconv.ParseBool(ctx.DefaultQuery("unresolved", "true"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	attempts, total, err := c.ledger.ListByReason(ctx.Request.Context(), reason, unresolved, page, limit)
	if err != nil {
		c.log.Error(ctx.Request.Context(), "list_attempts_failed", "could not read checkout ledger", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch checkout attempts", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"metadata": gin.H{
			"total":      total,
			"page":       page,
			"limit":      limit,
			"totalPages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func (c *Controller) ResolveCheckoutAttempt(ctx *gin.Context) {
	if c.ledger == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, msgLedgerDisabled)
		return
	}

	attempt, err := c.ledger.MarkResolved(ctx.Request.Context(), ctx.Param("attemptId"), time.Now())
	if errors.Is(err, repository.ErrAttemptNotFound) {
		sendErrorResponse(ctx, http.StatusNotFound, "Checkout attempt not found")
		return
	}
	if err != nil {
		c.log.Error(ctx.Request.Context(), "resolve_attempt_failed", "could not resolve checkout attempt", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to resolve checkout attempt", nil)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}
