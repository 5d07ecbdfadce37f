package routes

import (
	"github.com/Kariqs/tableside/controllers"
	"github.com/gin-gonic/gin"
)

func MenuRoutes(server *gin.Engine, c *controllers.Controller) {
	server.GET("/category", c.GetCategories)
	server.GET("/category/:id", c.GetCategory)
	server.GET("/dish", c.GetDishes)
	server.GET("/dish/:id", c.GetDish)
	server.GET("/dish/category/:id", c.GetDishesByCategory)
}
