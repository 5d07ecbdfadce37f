package routes

import (
	"github.com/Kariqs/tableside/controllers"
	"github.com/gin-gonic/gin"
)

func SessionRoutes(r gin.IRouter, c *controllers.Controller) {
	r.GET("/t/:sessionToken", c.BindSession)
	r.GET("/session", c.GetSession)
}

func CartRoutes(r gin.IRouter, c *controllers.Controller) {
	r.GET("/cart", c.GetCart)
	r.DELETE("/cart", c.ClearCart)
	r.POST("/cart/items", c.AddCartItem)
	r.PATCH("/cart/items", c.ChangeCartItem)
	r.DELETE("/cart/items/:dishId/:size", c.RemoveCartItem)
}

func CheckoutRoutes(r gin.IRouter, c *controllers.Controller) {
	r.POST("/checkout", c.BeginCheckout)
	r.GET("/checkout", c.GetCheckout)
	r.POST("/checkout/confirm", c.ConfirmCheckout)
}
