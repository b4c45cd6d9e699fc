package services

import (
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
)

// Session is the per-request session handle: the authenticated user plus
// their active team selection. It is built by middleware for every request
// and passed explicitly into the services that need it; there is no hidden
// process-global current user.
//
// TeamID == 0 means no team is selected.
type Session struct {
	UserID uint
	TeamID uint
}

// HasTeam reports whether a team is currently active.
func (s *Session) HasTeam() bool {
	return s != nil && s.TeamID != 0
}

// SessionStore persists the active-team selection per user so it survives
// across requests of the same login.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Load returns the session handle for a user, creating the backing row on
// first access. A user with no stored selection starts with no active team.
func (st *SessionStore) Load(userID uint) (*Session, error) {
	var row models.UserSession
	err := st.db.Where(models.UserSession{UserID: userID}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}
	return &Session{UserID: userID, TeamID: row.ActiveTeamID}, nil
}

// SetActiveTeam stores teamID as the user's active team. teamID 0 clears
// the selection.
func (st *SessionStore) SetActiveTeam(userID, teamID uint) error {
	var row models.UserSession
	if err := st.db.Where(models.UserSession{UserID: userID}).
		FirstOrCreate(&row).Error; err != nil {
		return err
	}
	return st.db.Model(&row).Update("active_team_id", teamID).Error
}
