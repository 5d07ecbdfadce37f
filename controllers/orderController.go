package controllers

import (
	"math"
	"net/http"
	"sort"
	"strconv"

	"github.com/Kariqs/tableside/models"
	"github.com/gin-gonic/gin"
)

func (c *Controller) GetDashboard(ctx *gin.Context) {
	stats, err := c.backend.DashboardStats(upstreamContext(ctx))
	if err != nil {
		c.respondBackendError(ctx, "dashboard_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// GetOrders lists orders newest first, optionally filtered by status.
func (c *Controller) GetOrders(ctx *gin.Context) {
	orders, err := c.backend.GetOrders(upstreamContext(ctx))
	if err != nil {
		c.respondBackendError(ctx, "list_orders_failed", err)
		return
	}

	if status := ctx.Query("status"); status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].OrderTime > orders[j].OrderTime })

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	total := len(orders)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders[start:end],
		"metadata": gin.H{
			"total":      total,
			"page":       page,
			"limit":      limit,
			"totalPages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func (c *Controller) GetOrder(ctx *gin.Context) {
	order, err := c.backend.GetOrder(upstreamContext(ctx), models.ID(ctx.Param("orderId")))
	if err != nil {
		c.respondBackendError(ctx, "get_order_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

func (c *Controller) UpdateOrderStatus(ctx *gin.Context) {
	var input models.OrderStatusInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "order_status must be Pending or Complete")
		return
	}

	id := models.ID(ctx.Param("orderId"))
	if err := c.backend.UpdateOrderStatus(upstreamContext(ctx), id, input.Status); err != nil {
		c.respondBackendError(ctx, "update_order_status_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order_id": id, "order_status": input.Status})
}
