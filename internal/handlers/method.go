package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
	"github.com/labebook/backend/pkg/response"
)

// MethodHandler serves the read-only protocol catalog.
type MethodHandler struct {
	db *gorm.DB
}

func NewMethodHandler(db *gorm.DB) *MethodHandler {
	return &MethodHandler{db: db}
}

// List returns the catalog, optionally filtered by category.
// GET /api/methods?category=...
func (h *MethodHandler) List(c *gin.Context) {
	query := h.db.Model(&models.Method{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var methods []models.Method
	if err := query.Order("name").Find(&methods).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, methods)
}

// GetByID returns one method with its steps and parameters.
// GET /api/methods/:id
func (h *MethodHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid method id")
		return
	}

	var method models.Method
	if err := h.db.
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Params").
		First(&method, id).Error; err != nil {
		response.NotFound(c, "method not found")
		return
	}
	response.Success(c, method)
}
