package services

import (
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
)

// DirectoryService provides read-only lookups over the canonical user and
// team collections. All methods are pure reads; missing entities surface
// as gorm.ErrRecordNotFound for single lookups and empty slices for lists.
type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

// GetUserByID returns the user with the given id.
func (s *DirectoryService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns the user with the given email, matched exactly.
func (s *DirectoryService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetTeamByID returns the team with its members and invitations loaded.
func (s *DirectoryService) GetTeamByID(id uint) (*models.Team, error) {
	var team models.Team
	err := s.db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("team_members.id") }).
		Preload("Members.User").
		Preload("Invitations", func(db *gorm.DB) *gorm.DB { return db.Order("team_invitations.id") }).
		First(&team, id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetUserTeams returns every team the user is a member of, in creation
// order.
func (s *DirectoryService) GetUserTeams(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.id").
		Find(&teams).Error
	return teams, err
}

// GetUserPendingInvitations returns all pending invitations addressed to
// the given email across every team, ordered by team then invitation.
// Matching is by exact email: the recipient does not need to be a
// registered user.
func (s *DirectoryService) GetUserPendingInvitations(email string) ([]models.TeamInvitation, error) {
	var invitations []models.TeamInvitation
	err := s.db.
		Where("invited_email = ? AND status = ?", email, models.InvitationPending).
		Order("team_id, id").
		Preload("Team").
		Find(&invitations).Error
	return invitations, err
}
