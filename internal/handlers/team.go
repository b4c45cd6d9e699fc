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

// TeamHandler provides endpoints for teams, membership and team switching.
type TeamHandler struct {
	teams       *services.TeamService
	directory   *services.DirectoryService
	permissions *services.PermissionService
}

func NewTeamHandler(db *gorm.DB, sessions *services.SessionStore) *TeamHandler {
	return &TeamHandler{
		teams:       services.NewTeamService(db, sessions),
		directory:   services.NewDirectoryService(db),
		permissions: services.NewPermissionService(db),
	}
}

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type RenameTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type SwitchTeamRequest struct {
	TeamID uint `json:"team_id"`
}

// List returns the teams the current user belongs to, plus the active one.
// GET /api/teams
func (h *TeamHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)

	teams, err := h.directory.GetUserTeams(sess.UserID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"teams":          teams,
		"active_team_id": sess.TeamID,
	})
}

// GetByID returns one team with members and invitations.
// GET /api/teams/:id
func (h *TeamHandler) GetByID(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	team, err := h.directory.GetTeamByID(uint(teamID))
	if err != nil {
		response.NotFound(c, "team not found")
		return
	}
	response.Success(c, team)
}

// Create creates a team with the caller as sole PI and switches to it.
// POST /api/teams
func (h *TeamHandler) Create(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)
	team, err := h.teams.CreateTeam(sess, req.Name, req.Description)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	services.LogInfo(models.LogModuleTeam, "create", "team created", &sess.UserID, c.ClientIP(), c.Request.UserAgent(),
		gin.H{"team_id": team.ID, "name": team.Name})
	response.Created(c, team)
}

// Rename renames a team. PI only.
// PUT /api/teams/:id
func (h *TeamHandler) Rename(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	var req RenameTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanAdmin(sess, uint(teamID)) {
		response.Forbidden(c, "PI role required")
		return
	}

	if err := h.teams.RenameTeam(uint(teamID), req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Delete removes a team. PI only.
// DELETE /api/teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanAdmin(sess, uint(teamID)) {
		response.Forbidden(c, "PI role required")
		return
	}

	if err := h.teams.DeleteTeam(sess, uint(teamID)); err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo(models.LogModuleTeam, "delete", "team deleted", &sess.UserID, c.ClientIP(), c.Request.UserAgent(),
		gin.H{"team_id": teamID})
	response.Success(c, gin.H{"active_team_id": sess.TeamID})
}

// Switch changes the active team. team_id 0 clears the selection. No
// membership check: the client only offers teams the user belongs to.
// POST /api/teams/switch
func (h *TeamHandler) Switch(c *gin.Context) {
	var req SwitchTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess := middleware.GetSession(c)
	if err := h.teams.SwitchTeam(sess, req.TeamID); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"active_team_id": sess.TeamID})
}

// ListMembers returns a team's membership records.
// GET /api/teams/:id/members
func (h *TeamHandler) ListMembers(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}

	members, err := h.teams.ListMembers(uint(teamID))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, members)
}

// RemoveMember removes a user from a team. PI only.
// DELETE /api/teams/:id/members/:user_id
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	sess := middleware.GetSession(c)
	if !h.permissions.CanAdmin(sess, uint(teamID)) {
		response.Forbidden(c, "PI role required")
		return
	}

	if err := h.teams.RemoveMember(uint(teamID), uint(userID)); err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo(models.LogModuleTeam, "remove_member", "member removed", &sess.UserID, c.ClientIP(), c.Request.UserAgent(),
		gin.H{"team_id": teamID, "user_id": userID})
	response.Success(c, nil)
}
