package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
	"github.com/labebook/backend/internal/services"
	"github.com/labebook/backend/pkg/response"
)

// UserHandler provides the user directory used by share pickers and
// invitation forms.
type UserHandler struct {
	db        *gorm.DB
	directory *services.DirectoryService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		db:        db,
		directory: services.NewDirectoryService(db),
	}
}

// List returns active users, optionally filtered by a name or email
// substring.
// GET /api/users?search=...
func (h *UserHandler) List(c *gin.Context) {
	query := h.db.Model(&models.User{}).Where("is_active = ?", true)
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR nickname LIKE ?", pattern, pattern, pattern)
	}

	var users []models.User
	if err := query.Order("username").Find(&users).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, users)
}

// GetByID returns one user.
// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.directory.GetUserByID(uint(id))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}
