package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/tableside/cart"
	"github.com/Kariqs/tableside/menu"
	"github.com/Kariqs/tableside/middlewares"
	"github.com/Kariqs/tableside/models"
	"github.com/gin-gonic/gin"
)

const (
	msgFailedToReadCart   = "Unable to read cart."
	msgFailedToUpdateCart = "Unable to update cart."
)

func cartResponse(lines cart.Lines) gin.H {
	if lines == nil {
		lines = cart.Lines{}
	}
	return gin.H{
		"items": lines,
		"count": lines.Count(),
		"total": lines.Total(),
	}
}

func (c *Controller) GetCart(ctx *gin.Context) {
	lines, err := c.carts.For(middlewares.BrowserID(ctx)).Snapshot(ctx.Request.Context())
	if err != nil {
		c.log.Error(ctx.Request.Context(), "cart_read_failed", "could not load cart", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToReadCart)
		return
	}
	ctx.JSON(http.StatusOK, cartResponse(lines))
}

// AddCartItem adds a dish at the price the menu currently lists for the
// requested size. A line for the same dish and size is incremented.
func (c *Controller) AddCartItem(ctx *gin.Context) {
	var req models.AddCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	reqCtx := ctx.Request.Context()
	dish, price, err := c.menu.PriceFor(reqCtx, req.DishID, req.Size)
	switch {
	case errors.Is(err, menu.ErrUnknownSize):
		sendErrorResponse(ctx, http.StatusBadRequest, "This size is not offered for the dish.")
		return
	case errors.Is(err, menu.ErrDishUnavailable):
		sendErrorResponse(ctx, http.StatusConflict, "This dish is currently unavailable.")
		return
	case err != nil:
		c.respondMenuError(ctx, "cart_price_lookup_failed", err)
		return
	}

	lines, err := c.carts.For(middlewares.BrowserID(ctx)).AddOrIncrement(reqCtx, models.CartLine{
		DishID:    dish.DishID,
		DishName:  dish.Name,
		Size:      req.Size,
		Quantity:  req.Quantity,
		UnitPrice: price,
		ImageURL:  dish.ImageURL,
	})
	if err != nil {
		c.respondCartError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, cartResponse(lines))
}

func (c *Controller) ChangeCartItem(ctx *gin.Context) {
	var req models.ChangeCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
		return
	}

	lines, err := c.carts.For(middlewares.BrowserID(ctx)).ChangeQuantity(ctx.Request.Context(), req.DishID, req.Size, req.Delta)
	if err != nil {
		c.respondCartError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, cartResponse(lines))
}

func (c *Controller) RemoveCartItem(ctx *gin.Context) {
	lines, err := c.carts.For(middlewares.BrowserID(ctx)).RemoveLine(ctx.Request.Context(), models.ID(ctx.Param("dishId")), ctx.Param("size"))
	if err != nil {
		c.respondCartError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, cartResponse(lines))
}

func (c *Controller) ClearCart(ctx *gin.Context) {
	if err := c.carts.For(middlewares.BrowserID(ctx)).Clear(ctx.Request.Context()); err != nil {
		c.respondCartError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, cartResponse(nil))
}

func (c *Controller) respondCartError(ctx *gin.Context, err error) {
	if errors.Is(err, cart.ErrRejectedQuantity) || errors.Is(err, cart.ErrQuantityLimit) ||
		errors.Is(err, cart.ErrRejectedPrice) || errors.Is(err, cart.ErrMissingDish) {
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}
	c.log.Error(ctx.Request.Context(), "cart_update_failed", "could not persist cart", err)
	sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToUpdateCart)
}
