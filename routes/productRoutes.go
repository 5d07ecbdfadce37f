package routes

import (
	"github.com/Kariqs/tableside/controllers"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(admin gin.IRouter, c *controllers.Controller) {
	admin.POST("/dish", c.CreateDish)
	admin.PATCH("/dish/:id", c.UpdateDish)
	admin.DELETE("/dish/:id", c.DeleteDish)
	admin.POST("/dish/:id/availability", c.ToggleDishAvailability)

	admin.POST("/category", c.CreateCategory)
	admin.PATCH("/category/:id", c.UpdateCategory)
	admin.DELETE("/category/:id", c.DeleteCategory)

	admin.GET("/table", c.GetTables)
	admin.POST("/table", c.CreateTable)
	admin.PATCH("/table/:id", c.UpdateTable)
	admin.DELETE("/table/:id", c.DeleteTable)

	admin.POST("/images", c.UploadImage)
}
