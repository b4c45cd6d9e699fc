package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/middleware"
	"github.com/labebook/backend/internal/services"
	"github.com/labebook/backend/pkg/response"
)

// SystemLogHandler exposes the operation log. All endpoints require PI
// status in the active team.
type SystemLogHandler struct {
	logs        *services.SystemLogService
	permissions *services.PermissionService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{
		logs:        services.NewSystemLogService(db),
		permissions: services.NewPermissionService(db),
	}
}

type RetentionRequest struct {
	Days int `json:"days"`
}

// List returns paginated, filtered operation logs.
// GET /api/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !h.permissions.IsPI(sess, 0) {
		response.Forbidden(c, "PI role required")
		return
	}

	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logs.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// GetRetention returns the current retention setting.
// GET /api/system-logs/retention
func (h *SystemLogHandler) GetRetention(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !h.permissions.IsPI(sess, 0) {
		response.Forbidden(c, "PI role required")
		return
	}
	response.Success(c, gin.H{"days": h.logs.GetRetentionDays()})
}

// SetRetention updates the retention setting. Days <= 0 disables the
// nightly cleanup.
// PUT /api/system-logs/retention
func (h *SystemLogHandler) SetRetention(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !h.permissions.IsPI(sess, 0) {
		response.Forbidden(c, "PI role required")
		return
	}

	var req RetentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.logs.SetRetentionDays(req.Days)
	response.Success(c, gin.H{"days": h.logs.GetRetentionDays()})
}

// Cleanup deletes logs older than the current retention immediately.
// POST /api/system-logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !h.permissions.IsPI(sess, 0) {
		response.Forbidden(c, "PI role required")
		return
	}

	deleted, err := h.logs.CleanupOldLogs(h.logs.GetRetentionDays())
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
