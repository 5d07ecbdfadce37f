package routes

import (
	"github.com/Kariqs/tableside/controllers"
	"github.com/Kariqs/tableside/middlewares"
	"github.com/gin-gonic/gin"
)

// Register mounts every route. Customer routes identify the browser by
// cookie; admin routes need an admin token.
func Register(server *gin.Engine, c *controllers.Controller, cookieSecure bool, jwtSecret []byte) {
	DefaultRoutes(server, c)
	MenuRoutes(server, c)

	customer := server.Group("/", middlewares.BrowserSession(cookieSecure))
	SessionRoutes(customer, c)
	CartRoutes(customer, c)
	CheckoutRoutes(customer, c)

	AuthRoutes(server, c, jwtSecret)

	admin := server.Group("/admin", middlewares.RequireAuth(jwtSecret), middlewares.RequireAdmin())
	OrderRoutes(admin, c)
	ProductRoutes(admin, c)
	AttemptRoutes(admin, c)
}
