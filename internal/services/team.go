package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
	"github.com/labebook/backend/pkg/response"
)

// TeamService owns the team, membership and active-team lifecycle. It is
// the sole write path into the team collections. Permission guards
// (CanAdmin) live in the handlers; the service itself performs the
// transition unconditionally, mirroring the query/command split of the
// permission evaluator.
type TeamService struct {
	db       *gorm.DB
	sessions *SessionStore
}

func NewTeamService(db *gorm.DB, sessions *SessionStore) *TeamService {
	return &TeamService{db: db, sessions: sessions}
}

// SwitchTeam sets the session's active team. No membership check is
// performed; callers are expected to offer only teams the user belongs to.
func (s *TeamService) SwitchTeam(sess *Session, teamID uint) error {
	if err := s.sessions.SetActiveTeam(sess.UserID, teamID); err != nil {
		return err
	}
	sess.TeamID = teamID
	return nil
}

// CreateTeam creates a team with the caller as its sole PI member and
// switches the session to it. Name validation happens at the HTTP
// boundary; the service assumes a non-empty name.
func (s *TeamService) CreateTeam(sess *Session, name, description string) (*models.Team, error) {
	team := models.Team{
		Name:        name,
		Description: description,
		CreatedBy:   sess.UserID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		member := models.TeamMember{
			TeamID:   team.ID,
			UserID:   sess.UserID,
			Role:     models.RolePI,
			JoinedAt: time.Now(),
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.SwitchTeam(sess, team.ID); err != nil {
		return nil, err
	}
	return &team, nil
}

// RenameTeam renames a team in place. The CanAdmin guard is the caller's
// responsibility.
func (s *TeamService) RenameTeam(teamID uint, name string) error {
	result := s.db.Model(&models.Team{}).Where("id = ?", teamID).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("team not found")
	}
	return nil
}

// DeleteTeam removes a team together with its memberships and
// invitations. If the deleted team was the session's active team, the
// active team moves to the first remaining team the user belongs to, or
// to none if there is no such team.
func (s *TeamService) DeleteTeam(sess *Session, teamID uint) error {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		return response.NewNotFound("team not found")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamInvitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
	if err != nil {
		return err
	}

	if sess.TeamID != teamID {
		return nil
	}

	var next models.TeamMember
	findErr := s.db.Where("user_id = ?", sess.UserID).Order("team_id").First(&next).Error
	if findErr != nil {
		return s.SwitchTeam(sess, 0)
	}
	return s.SwitchTeam(sess, next.TeamID)
}

// ListMembers returns a team's membership records in join order.
func (s *TeamService) ListMembers(teamID uint) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := s.db.Where("team_id = ?", teamID).
		Preload("User").
		Order("id").
		Find(&members).Error
	return members, err
}

// RemoveMember deletes a membership record. There is no guard against
// removing the last PI; a team can end up without one.
func (s *TeamService) RemoveMember(teamID, userID uint) error {
	result := s.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("member not found")
	}
	return nil
}
