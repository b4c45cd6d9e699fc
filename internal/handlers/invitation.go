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

// InvitationHandler exposes the invitation lifecycle.
type InvitationHandler struct {
	db          *gorm.DB
	invitations *services.InvitationService
	directory   *services.DirectoryService
	permissions *services.PermissionService
}

func NewInvitationHandler(db *gorm.DB, queue services.TaskQueue) *InvitationHandler {
	return &InvitationHandler{
		db:          db,
		invitations: services.NewInvitationService(db, queue),
		directory:   services.NewDirectoryService(db),
		permissions: services.NewPermissionService(db),
	}
}

type InviteMemberRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Role    string `json:"role" binding:"required"` // PI, Collaborator
	Message string `json:"message"`
}

// Invite sends a membership invitation. PI only.
// POST /api/teams/:id/invitations
func (h *InvitationHandler) Invite(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanAdmin(sess, uint(teamID)) {
		response.Forbidden(c, "PI role required")
		return
	}

	invitation, err := h.invitations.Invite(sess, uint(teamID), req.Email, req.Role, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo(models.LogModuleInvitation, "invite", "invitation sent", &sess.UserID, c.ClientIP(), c.Request.UserAgent(),
		gin.H{"team_id": teamID, "email": req.Email, "role": req.Role})
	response.Created(c, invitation)
}

// ListPending returns pending invitations addressed to the current user's
// email, across all teams.
// GET /api/invitations/pending
func (h *InvitationHandler) ListPending(c *gin.Context) {
	sess := middleware.GetSession(c)

	user, err := h.directory.GetUserByID(sess.UserID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	invitations, err := h.directory.GetUserPendingInvitations(user.Email)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, invitations)
}

// Accept accepts a pending invitation and joins the team.
// POST /api/invitations/:id/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}

	sess := middleware.GetSession(c)
	invitation, err := h.invitations.Accept(sess, uint(invitationID))
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo(models.LogModuleInvitation, "accept", "invitation accepted", &sess.UserID, c.ClientIP(), c.Request.UserAgent(),
		gin.H{"invitation_id": invitationID, "team_id": invitation.TeamID})
	response.Success(c, invitation)
}

// Decline declines a pending invitation.
// POST /api/invitations/:id/decline
func (h *InvitationHandler) Decline(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}

	sess := middleware.GetSession(c)
	invitation, err := h.invitations.Decline(sess, uint(invitationID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invitation)
}

// Cancel removes an invitation outright. PI of the owning team only.
// Cancelling an invitation that no longer exists succeeds.
// DELETE /api/invitations/:id
func (h *InvitationHandler) Cancel(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}

	sess := middleware.GetSession(c)

	var invitation models.TeamInvitation
	if err := h.db.First(&invitation, invitationID).Error; err == nil {
		if !h.permissions.CanAdmin(sess, invitation.TeamID) {
			response.Forbidden(c, "PI role required")
			return
		}
	}

	if err := h.invitations.Cancel(uint(invitationID)); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// Resend re-sends the invitation mail without touching its state. PI of
// the owning team only.
// POST /api/invitations/:id/resend
func (h *InvitationHandler) Resend(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}

	sess := middleware.GetSession(c)

	var invitation models.TeamInvitation
	if err := h.db.First(&invitation, invitationID).Error; err != nil {
		response.NotFound(c, "invitation not found")
		return
	}
	if !h.permissions.CanAdmin(sess, invitation.TeamID) {
		response.Forbidden(c, "PI role required")
		return
	}

	if err := h.invitations.Resend(uint(invitationID)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
