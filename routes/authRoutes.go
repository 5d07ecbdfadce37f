package routes

import (
	"github.com/Kariqs/tableside/controllers"
	"github.com/Kariqs/tableside/middlewares"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, c *controllers.Controller, jwtSecret []byte) {
	auth := server.Group("/admin")
	{
		auth.POST("/login", c.AdminLogin)
		auth.POST("/logout", middlewares.RequireAuth(jwtSecret), c.AdminLogout)
		auth.GET("/me", middlewares.RequireAuth(jwtSecret), middlewares.RequireAdmin(), c.AdminMe)
	}
}
