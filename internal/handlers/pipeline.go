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

// PipelineHandler provides CRUD and sharing endpoints for pipelines.
type PipelineHandler struct {
	db          *gorm.DB
	pipelines   *services.PipelineService
	permissions *services.PermissionService
}

func NewPipelineHandler(db *gorm.DB) *PipelineHandler {
	return &PipelineHandler{
		db:          db,
		pipelines:   services.NewPipelineService(db),
		permissions: services.NewPermissionService(db),
	}
}

type PipelineRequest struct {
	Name     string `json:"name" binding:"required"`
	Goal     string `json:"goal"`
	Context  string `json:"context"`
	IsReady  bool   `json:"is_ready"`
	FolderID *uint  `json:"folder_id"`
}

type SharePipelineRequest struct {
	UserIDs []uint `json:"user_ids"`
}

// List returns the session-scoped pipeline view. The filter query
// parameter selects mine (default), shared, or favourites.
// GET /api/pipelines?filter=mine|shared|favourites
func (h *PipelineHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)

	var (
		pipelines []models.Pipeline
		err       error
	)
	switch c.DefaultQuery("filter", "mine") {
	case "shared":
		pipelines, err = h.pipelines.GetSharedPipelines(sess)
	case "favourites":
		pipelines, err = h.pipelines.GetFavouritePipelines(sess)
	case "mine":
		pipelines, err = h.pipelines.GetMyPipelines(sess)
	default:
		response.BadRequest(c, "invalid filter, must be 'mine', 'shared' or 'favourites'")
		return
	}
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, pipelines)
}

// GetByID returns one pipeline.
// GET /api/pipelines/:id
func (h *PipelineHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid pipeline id")
		return
	}

	var pipeline models.Pipeline
	if err := h.db.Preload("SharedWith").First(&pipeline, id).Error; err != nil {
		response.NotFound(c, "pipeline not found")
		return
	}
	response.Success(c, pipeline)
}

// Create creates a pipeline owned by the caller in the active team.
// POST /api/pipelines
func (h *PipelineHandler) Create(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !sess.HasTeam() {
		response.BadRequest(c, "no active team")
		return
	}

	var req PipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pipeline := models.Pipeline{
		Name:     req.Name,
		Goal:     req.Goal,
		Context:  req.Context,
		IsReady:  req.IsReady,
		FolderID: req.FolderID,
		TeamID:   sess.TeamID,
		OwnerID:  sess.UserID,
	}
	if err := h.db.Create(&pipeline).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, pipeline)
}

// Update edits a pipeline. Allowed for its owner, users on its sharing
// list, and PIs of the active team.
// PUT /api/pipelines/:id
func (h *PipelineHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid pipeline id")
		return
	}

	var req PipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanEdit(sess, services.ResourcePipeline, uint(id)) {
		response.Forbidden(c, "no edit permission for this pipeline")
		return
	}

	updates := map[string]interface{}{
		"name":             req.Name,
		"goal":             req.Goal,
		"context":          req.Context,
		"is_ready":         req.IsReady,
		"folder_id":        req.FolderID,
		"last_modified_by": sess.UserID,
	}
	if err := h.db.Model(&models.Pipeline{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}

	var pipeline models.Pipeline
	h.db.Preload("SharedWith").First(&pipeline, id)
	response.Success(c, pipeline)
}

// Delete removes a pipeline. Same permission rule as Update.
// DELETE /api/pipelines/:id
func (h *PipelineHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid pipeline id")
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanEdit(sess, services.ResourcePipeline, uint(id)) {
		response.Forbidden(c, "no edit permission for this pipeline")
		return
	}

	if err := h.db.Delete(&models.Pipeline{}, id).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// Share replaces a pipeline's sharing list. Same permission rule as
// Update.
// PUT /api/pipelines/:id/share
func (h *PipelineHandler) Share(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid pipeline id")
		return
	}

	var req SharePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanEdit(sess, services.ResourcePipeline, uint(id)) {
		response.Forbidden(c, "no edit permission for this pipeline")
		return
	}

	if err := h.pipelines.Share(uint(id), req.UserIDs); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	var pipeline models.Pipeline
	h.db.Preload("SharedWith").First(&pipeline, id)
	response.Success(c, pipeline)
}
