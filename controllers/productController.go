package controllers

import (
	"net/http"
	"strings"

	"github.com/Kariqs/tableside/models"
	"github.com/Kariqs/tableside/utils"
	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

var imageFolders = map[string]bool{"dishes": true, "categories": true}

// Common error response helper
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

// Dish handlers
func (c *Controller) CreateDish(ctx *gin.Context) {
	var input models.DishInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if utils.ContainsScriptOrEvent(input.Name, input.Description, input.ImageURL) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUnsafeInput)
		return
	}

	dish, err := c.backend.CreateDish(upstreamContext(ctx), input)
	if err != nil {
		c.respondBackendError(ctx, "create_dish_failed", err)
		return
	}
	ctx.JSON(http.StatusCreated, dish)
}

func (c *Controller) UpdateDish(ctx *gin.Context) {
	var input models.DishInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if utils.ContainsScriptOrEvent(input.Name, input.Description, input.ImageURL) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUnsafeInput)
		return
	}

	dish, err := c.backend.UpdateDish(upstreamContext(ctx), models.ID(ctx.Param("id")), input)
	if err != nil {
		c.respondBackendError(ctx, "update_dish_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, dish)
}

func (c *Controller) DeleteDish(ctx *gin.Context) {
	if err := c.backend.DeleteDish(upstreamContext(ctx), models.ID(ctx.Param("id"))); err != nil {
		c.respondBackendError(ctx, "delete_dish_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Dish deleted"})
}

func (c *Controller) ToggleDishAvailability(ctx *gin.Context) {
	var input struct {
		IsAvailable *bool `json:"isAvailable" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := models.ID(ctx.Param("id"))
	if err := c.backend.ToggleDishAvailability(upstreamContext(ctx), id, *input.IsAvailable); err != nil {
		c.respondBackendError(ctx, "toggle_dish_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Dish availability updated", "dish_id": id, "isAvailable": *input.IsAvailable})
}

// Category handlers
func (c *Controller) CreateCategory(ctx *gin.Context) {
	var input models.CategoryInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if utils.ContainsScriptOrEvent(input.Name, input.Description, input.ImageURL) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUnsafeInput)
		return
	}

	category, err := c.backend.CreateCategory(upstreamContext(ctx), input)
	if err != nil {
		c.respondBackendError(ctx, "create_category_failed", err)
		return
	}
	ctx.JSON(http.StatusCreated, category)
}

func (c *Controller) UpdateCategory(ctx *gin.Context) {
	var input models.CategoryInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if utils.ContainsScriptOrEvent(input.Name, input.Description, input.ImageURL) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUnsafeInput)
		return
	}

	category, err := c.backend.UpdateCategory(upstreamContext(ctx), models.ID(ctx.Param("id")), input)
	if err != nil {
		c.respondBackendError(ctx, "update_category_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

func (c *Controller) DeleteCategory(ctx *gin.Context) {
	if err := c.backend.DeleteCategory(upstreamContext(ctx), models.ID(ctx.Param("id"))); err != nil {
		c.respondBackendError(ctx, "delete_category_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// Table handlers
func (c *Controller) GetTables(ctx *gin.Context) {
	tables, err := c.backend.GetTables(upstreamContext(ctx))
	if err != nil {
		c.respondBackendError(ctx, "list_tables_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, tables)
}

func (c *Controller) CreateTable(ctx *gin.Context) {
	var input models.TableInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if utils.ContainsScriptOrEvent(input.Name) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUnsafeInput)
		return
	}

	table, err := c.backend.CreateTable(upstreamContext(ctx), input)
	if err != nil {
		c.respondBackendError(ctx, "create_table_failed", err)
		return
	}
	ctx.JSON(http.StatusCreated, table)
}

func (c *Controller) UpdateTable(ctx *gin.Context) {
	var input models.TableInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if utils.ContainsScriptOrEvent(input.Name) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUnsafeInput)
		return
	}

	table, err := c.backend.UpdateTable(upstreamContext(ctx), models.ID(ctx.Param("id")), input)
	if err != nil {
		c.respondBackendError(ctx, "update_table_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, table)
}

func (c *Controller) DeleteTable(ctx *gin.Context) {
	if err := c.backend.DeleteTable(upstreamContext(ctx), models.ID(ctx.Param("id"))); err != nil {
		c.respondBackendError(ctx, "delete_table_failed", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Table deleted"})
}

// UploadImage stores a dish or category picture and returns its URL for use
// in a later create or update call.
func (c *Controller) UploadImage(ctx *gin.Context) {
	if c.uploader == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, "Image uploads are not configured.")
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	if file.Size > maxImageSize {
		sendErrorResponse(ctx, http.StatusRequestEntityTooLarge, "Images must be 5MB or smaller.")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		sendErrorResponse(ctx, http.StatusBadRequest, "Only image files can be uploaded.")
		return
	}
	folder := ctx.DefaultPostForm("folder", "dishes")
	if !imageFolders[folder] {
		sendErrorResponse(ctx, http.StatusBadRequest, "folder must be dishes or categories")
		return
	}

	f, err := file.Open()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Unable to read file", err)
		return
	}
	defer f.Close()

	url, err := c.uploader.Upload(ctx.Request.Context(), folder, file.Filename, contentType, f)
	if err != nil {
		c.log.Error(ctx.Request.Context(), "image_upload_failed", "could not upload image", err)
		respondWithError(ctx, http.StatusBadGateway, "Failed to upload image", nil)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "File uploaded", "url": url})
}
