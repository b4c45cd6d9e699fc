package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
	"github.com/labebook/backend/pkg/logger"
	"github.com/labebook/backend/pkg/response"
)

// InvitationService drives the invitation lifecycle:
//
//	invite  -> pending
//	pending -> accepted (adds a membership record)
//	pending -> declined
//	pending -> removed  (cancel deletes the row outright)
//
// Accepted and declined are terminal; an invitation is never reopened.
// Resend leaves the state untouched and only re-sends the notification.
type InvitationService struct {
	db    *gorm.DB
	queue TaskQueue
}

func NewInvitationService(db *gorm.DB, queue TaskQueue) *InvitationService {
	return &InvitationService{db: db, queue: queue}
}

// Invite appends a pending invitation to the team and enqueues the
// notification mail. Duplicate outstanding invitations to the same email
// are allowed.
func (s *InvitationService) Invite(sess *Session, teamID uint, email, role, message string) (*models.TeamInvitation, error) {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		return nil, response.NewNotFound("team not found")
	}
	if !models.ValidRole(role) {
		return nil, response.NewBadRequest("invalid role, must be 'PI' or 'Collaborator'")
	}

	invitation := models.TeamInvitation{
		Token:        uuid.NewString(),
		TeamID:       teamID,
		InvitedEmail: email,
		InvitedBy:    sess.UserID,
		Role:         role,
		Status:       models.InvitationPending,
		Message:      message,
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		return nil, err
	}

	s.notify(&invitation, team.Name, false)
	return &invitation, nil
}

// Accept marks a pending invitation accepted and adds the session's user
// to the team with the invitation's role.
//
// The acceptor's email is deliberately NOT checked against InvitedEmail:
// any authenticated user may accept any pending invitation they can see.
// Kept as-is until product intent is clarified; an explicit test documents
// the behavior.
func (s *InvitationService) Accept(sess *Session, invitationID uint) (*models.TeamInvitation, error) {
	var invitation models.TeamInvitation
	if err := s.db.First(&invitation, invitationID).Error; err != nil {
		return nil, response.NewNotFound("invitation not found")
	}
	if invitation.Status != models.InvitationPending {
		return nil, response.NewConflict("invitation already resolved")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invitation).Update("status", models.InvitationAccepted).Error; err != nil {
			return err
		}

		// A team holds at most one membership record per user; accepting
		// a second invitation to the same team must not duplicate it.
		var existing models.TeamMember
		findErr := tx.Where("team_id = ? AND user_id = ?", invitation.TeamID, sess.UserID).
			First(&existing).Error
		if findErr == nil {
			return nil
		}

		member := models.TeamMember{
			TeamID:   invitation.TeamID,
			UserID:   sess.UserID,
			Role:     invitation.Role,
			JoinedAt: time.Now(),
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	invitation.Status = models.InvitationAccepted
	return &invitation, nil
}

// Decline marks a pending invitation declined. Membership is untouched.
func (s *InvitationService) Decline(sess *Session, invitationID uint) (*models.TeamInvitation, error) {
	var invitation models.TeamInvitation
	if err := s.db.First(&invitation, invitationID).Error; err != nil {
		return nil, response.NewNotFound("invitation not found")
	}
	if invitation.Status != models.InvitationPending {
		return nil, response.NewConflict("invitation already resolved")
	}

	if err := s.db.Model(&invitation).Update("status", models.InvitationDeclined).Error; err != nil {
		return nil, err
	}
	invitation.Status = models.InvitationDeclined
	return &invitation, nil
}

// Cancel removes an invitation entirely, regardless of its status. A
// missing invitation is an idempotent no-op.
func (s *InvitationService) Cancel(invitationID uint) error {
	return s.db.Delete(&models.TeamInvitation{}, invitationID).Error
}

// Resend re-enqueues the notification mail for a pending invitation. The
// invitation state is not modified.
func (s *InvitationService) Resend(invitationID uint) error {
	var invitation models.TeamInvitation
	if err := s.db.Preload("Team").First(&invitation, invitationID).Error; err != nil {
		return response.NewNotFound("invitation not found")
	}

	teamName := ""
	if invitation.Team != nil {
		teamName = invitation.Team.Name
	}
	s.notify(&invitation, teamName, true)
	return nil
}

func (s *InvitationService) notify(invitation *models.TeamInvitation, teamName string, resend bool) {
	if s.queue == nil {
		return
	}
	task := &InvitationEmailTask{
		InvitationID: invitation.ID,
		Token:        invitation.Token,
		TeamName:     teamName,
		InvitedEmail: invitation.InvitedEmail,
		Role:         invitation.Role,
		Message:      invitation.Message,
		Resend:       resend,
	}
	if err := s.queue.Enqueue(task); err != nil {
		logger.Warn().Err(err).Uint("invitation_id", invitation.ID).
			Msg("failed to enqueue invitation mail")
	}
}
