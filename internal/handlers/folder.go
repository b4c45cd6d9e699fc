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

// FolderHandler serves both pipeline folders and project folders. The
// kind is fixed per route group so the same handler backs /api/folders
// (pipeline) and /api/project-folders (project).
type FolderHandler struct {
	db          *gorm.DB
	permissions *services.PermissionService
	kind        string
	resource    string
}

func NewPipelineFolderHandler(db *gorm.DB) *FolderHandler {
	return &FolderHandler{
		db:          db,
		permissions: services.NewPermissionService(db),
		kind:        models.FolderKindPipeline,
		resource:    services.ResourceFolder,
	}
}

func NewProjectFolderHandler(db *gorm.DB) *FolderHandler {
	return &FolderHandler{
		db:          db,
		permissions: services.NewPermissionService(db),
		kind:        models.FolderKindProject,
		resource:    services.ResourceProjectFolder,
	}
}

// FolderRequest carries create and update payloads. An omitted parent_id
// leaves the parent unchanged on update; parent_id 0 moves the folder to
// the top level.
type FolderRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type FolderPermissionsRequest struct {
	UserIDs []uint `json:"user_ids"`
}

// List returns the active team's folders of this handler's kind.
// GET /api/folders, GET /api/project-folders
func (h *FolderHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !sess.HasTeam() {
		response.Success(c, []models.Folder{})
		return
	}

	var folders []models.Folder
	if err := h.db.Preload("EditPermissions").
		Where("team_id = ? AND kind = ?", sess.TeamID, h.kind).
		Order("id").
		Find(&folders).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, folders)
}

// GetByID returns one folder of this handler's kind.
// GET /api/folders/:id, GET /api/project-folders/:id
func (h *FolderHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid folder id")
		return
	}

	var folder models.Folder
	if err := h.db.Preload("EditPermissions").
		Where("id = ? AND kind = ?", id, h.kind).
		First(&folder).Error; err != nil {
		response.NotFound(c, "folder not found")
		return
	}
	response.Success(c, folder)
}

// Create creates a folder in the active team. The creator gets no edit
// permission row; edit rights are granted explicitly or come with PI
// status.
// POST /api/folders, POST /api/project-folders
func (h *FolderHandler) Create(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !sess.HasTeam() {
		response.BadRequest(c, "no active team")
		return
	}

	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.ParentID != nil && *req.ParentID != 0 {
		if h.kind != models.FolderKindProject {
			response.BadRequest(c, "only project folders can be nested")
			return
		}
		if err := h.checkParent(*req.ParentID, sess.TeamID, 0); err != nil {
			response.Error(c, err)
			return
		}
	}

	folder := models.Folder{
		Name:      req.Name,
		Kind:      h.kind,
		TeamID:    sess.TeamID,
		CreatedBy: sess.UserID,
	}
	if req.ParentID != nil && *req.ParentID != 0 {
		folder.ParentID = req.ParentID
	}
	if err := h.db.Create(&folder).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, folder)
}

// Update renames or re-parents a folder. Allowed for users on the
// folder's permission list and PIs of the active team. A request without
// parent_id keeps the current parent.
// PUT /api/folders/:id, PUT /api/project-folders/:id
func (h *FolderHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid folder id")
		return
	}

	var req FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanEdit(sess, h.resource, uint(id)) {
		response.Forbidden(c, "no edit permission for this folder")
		return
	}

	var folder models.Folder
	if err := h.db.Where("id = ? AND kind = ?", id, h.kind).First(&folder).Error; err != nil {
		response.NotFound(c, "folder not found")
		return
	}

	updates := map[string]interface{}{
		"name":             req.Name,
		"last_modified_by": sess.UserID,
	}
	if req.ParentID != nil {
		if *req.ParentID == 0 {
			updates["parent_id"] = nil
		} else {
			if h.kind != models.FolderKindProject {
				response.BadRequest(c, "only project folders can be nested")
				return
			}
			if err := h.checkParent(*req.ParentID, folder.TeamID, folder.ID); err != nil {
				response.Error(c, err)
				return
			}
			updates["parent_id"] = *req.ParentID
		}
	}
	if err := h.db.Model(&folder).Updates(updates).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}

	h.db.Preload("EditPermissions").First(&folder, folder.ID)
	response.Success(c, folder)
}

// Delete removes a folder. Contained pipelines or projects keep their
// rows but lose the folder reference.
// DELETE /api/folders/:id, DELETE /api/project-folders/:id
func (h *FolderHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid folder id")
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanEdit(sess, h.resource, uint(id)) {
		response.Forbidden(c, "no edit permission for this folder")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if h.kind == models.FolderKindPipeline {
			if err := tx.Model(&models.Pipeline{}).
				Where("folder_id = ?", id).
				Update("folder_id", nil).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.Project{}).
				Where("folder_id = ?", id).
				Update("folder_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Folder{}).
				Where("parent_id = ?", id).
				Update("parent_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("folder_id = ?", id).Delete(&models.FolderPermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND kind = ?", id, h.kind).Delete(&models.Folder{}).Error
	})
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// SetPermissions replaces a folder's edit permission list. PI only.
// PUT /api/folders/:id/permissions, PUT /api/project-folders/:id/permissions
func (h *FolderHandler) SetPermissions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid folder id")
		return
	}

	var req FolderPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)

	var folder models.Folder
	if err := h.db.Where("id = ? AND kind = ?", id, h.kind).First(&folder).Error; err != nil {
		response.NotFound(c, "folder not found")
		return
	}

	if !h.permissions.CanAdmin(sess, folder.TeamID) {
		response.Forbidden(c, "PI role required")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id = ?", id).Delete(&models.FolderPermission{}).Error; err != nil {
			return err
		}
		for _, userID := range req.UserIDs {
			perm := models.FolderPermission{FolderID: uint(id), UserID: userID}
			if err := tx.Create(&perm).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	h.db.Preload("EditPermissions").First(&folder, id)
	response.Success(c, folder)
}

// checkParent validates a prospective parent: same kind, same team,
// not the folder itself.
func (h *FolderHandler) checkParent(parentID, teamID, selfID uint) error {
	if selfID != 0 && parentID == selfID {
		return response.NewBadRequest("folder cannot be its own parent")
	}
	var parent models.Folder
	if err := h.db.Where("id = ? AND kind = ?", parentID, h.kind).First(&parent).Error; err != nil {
		return response.NewBadRequest("parent folder not found")
	}
	if parent.TeamID != teamID {
		return response.NewBadRequest("parent folder belongs to a different team")
	}
	return nil
}
