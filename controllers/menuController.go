package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/tableside/menu"
	"github.com/Kariqs/tableside/models"
	"github.com/gin-gonic/gin"
)

const msgMenuUnavailable = "The menu is temporarily unavailable. Try again shortly."

func (c *Controller) respondMenuError(ctx *gin.Context, action string, err error) {
	if errors.Is(err, menu.ErrUnavailable) {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, msgMenuUnavailable)
		return
	}
	c.respondBackendError(ctx, action, err)
}

func (c *Controller) GetCategories(ctx *gin.Context) {
	categories, err := c.menu.Categories(ctx.Request.Context())
	if err != nil {
		c.respondMenuError(ctx, "list_categories_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, categories)
}

func (c *Controller) GetCategory(ctx *gin.Context) {
	category, err := c.menu.Category(ctx.Request.Context(), models.ID(ctx.Param("id")))
	if err != nil {
		c.respondMenuError(ctx, "get_category_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

func (c *Controller) GetDishes(ctx *gin.Context) {
	dishes, err := c.menu.Dishes(ctx.Request.Context())
	if err != nil {
		c.respondMenuError(ctx, "list_dishes_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, dishes)
}

func (c *Controller) GetDish(ctx *gin.Context) {
	dish, err := c.menu.Dish(ctx.Request.Context(), models.ID(ctx.Param("id")))
	if err != nil {
		c.respondMenuError(ctx, "get_dish_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, dish)
}

func (c *Controller) GetDishesByCategory(ctx *gin.Context) {
	dishes, err := c.menu.DishesByCategory(ctx.Request.Context(), models.ID(ctx.Param("id")))
	if err != nil {
		c.respondMenuError(ctx, "list_category_dishes_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, dishes)
}
