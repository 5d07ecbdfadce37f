package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (c *Controller) GetHome(ctx *gin.Context) {
	message := `Welcome to the Tableside API. Scan the QR code on your table to start ordering.

MENU
- GET "/category" - List categories
- GET "/category/:id" - Get category by ID
- GET "/dish" - List dishes
- GET "/dish/:id" - Get dish by ID
- GET "/dish/category/:id" - List dishes of a category

TABLE SESSION
- GET "/t/:sessionToken" - Link this browser to a table
- GET "/session" - Show the table link of this browser

CART
- GET "/cart" - Show the cart
- POST "/cart/items" - Add a dish, merging with an existing line
- PATCH "/cart/items" - Change the quantity of a line
- DELETE "/cart/items/:dishId/:size" - Remove a line
- DELETE "/cart" - Empty the cart

CHECKOUT
- POST "/checkout" - Create the server cart and the payment intent
- GET "/checkout" - Show the pending checkout
- POST "/checkout/confirm" - Place the order after payment

ADMIN
- POST "/admin/login", POST "/admin/logout", GET "/admin/me"
- GET "/admin/dashboard", GET "/admin/orders", PATCH "/admin/orders/:orderId/status"
- POST|PATCH|DELETE "/admin/dish", "/admin/category", "/admin/table"
- POST "/admin/images"
- GET "/admin/checkout-attempts", PATCH "/admin/checkout-attempts/:attemptId/resolve"`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
