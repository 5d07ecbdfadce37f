package routes

import (
	"github.com/Kariqs/tableside/controllers"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(admin gin.IRouter, c *controllers.Controller) {
	admin.GET("/dashboard", c.GetDashboard)
	admin.GET("/orders", c.GetOrders)
	admin.GET("/orders/:orderId", c.GetOrder)
	admin.PATCH("/orders/:orderId/status", c.UpdateOrderStatus)
}

func AttemptRoutes(admin gin.IRouter, c *controllers.Controller) {
	admin.GET("/checkout-attempts", c.GetCheckoutAttempts)
	admin.PATCH("/checkout-attempts/:attemptId/resolve", c.ResolveCheckoutAttempt)
}
