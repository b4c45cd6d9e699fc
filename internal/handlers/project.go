package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/middleware"
	"github.com/labebook/backend/internal/models"
	"github.com/labebook/backend/internal/services"
	"github.com/labebook/backend/pkg/response"
)

type ProjectHandler struct {
	db          *gorm.DB
	permissions *services.PermissionService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		db:          db,
		permissions: services.NewPermissionService(db),
	}
}

type ProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	FolderID    *uint  `json:"folder_id"`
}

// List returns the active team's projects.
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !sess.HasTeam() {
		response.Success(c, []models.Project{})
		return
	}

	var projects []models.Project
	if err := h.db.Where("team_id = ?", sess.TeamID).Order("id").Find(&projects).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, projects)
}

// GetByID returns one project.
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var project models.Project
	if err := h.db.First(&project, id).Error; err != nil {
		response.NotFound(c, "project not found")
		return
	}
	response.Success(c, project)
}

// Create creates a project owned by the caller in the active team.
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !sess.HasTeam() {
		response.BadRequest(c, "no active team")
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		FolderID:    req.FolderID,
		TeamID:      sess.TeamID,
		OwnerID:     sess.UserID,
	}
	if err := h.db.Create(&project).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, project)
}

// Update edits a project. Allowed for its owner and PIs of the active
// team; plain collaborators cannot edit projects they do not own.
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanEdit(sess, services.ResourceProject, uint(id)) {
		response.Forbidden(c, "no edit permission for this project")
		return
	}

	updates := map[string]interface{}{
		"name":             req.Name,
		"description":      req.Description,
		"folder_id":        req.FolderID,
		"last_modified_by": sess.UserID,
	}
	if err := h.db.Model(&models.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}

	var project models.Project
	h.db.First(&project, id)
	response.Success(c, project)
}

// Delete removes a project. Same permission rule as Update.
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanEdit(sess, services.ResourceProject, uint(id)) {
		response.Forbidden(c, "no edit permission for this project")
		return
	}

	if err := h.db.Delete(&models.Project{}, id).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, nil)
}
