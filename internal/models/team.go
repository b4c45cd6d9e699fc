package models

import (
	"time"

	"gorm.io/gorm"
)

// Team roles. A user's role is scoped per team: the same user can be PI in
// one team and Collaborator in another.
const (
	RolePI           = "PI"
	RoleCollaborator = "Collaborator"
)

// ValidRole reports whether role is one of the known team roles.
func ValidRole(role string) bool {
	return role == RolePI || role == RoleCollaborator
}

// Team represents a collaboration workspace owned by its members.
type Team struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"size:200;not null" json:"name"`
	Description string           `gorm:"size:1000" json:"description"`
	CreatedBy   uint             `gorm:"not null" json:"created_by"`
	Members     []TeamMember     `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Invitations []TeamInvitation `gorm:"foreignKey:TeamID" json:"invitations,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Team) TableName() string { return "teams" }

// TeamMember represents a user's membership and role within a team.
// The (team, user) pair is unique: a team holds at most one membership
// record per user.
type TeamMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"uniqueIndex:idx_team_user;not null" json:"team_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_team_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string    `gorm:"size:50;not null" json:"role"` // PI, Collaborator
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TeamMember) TableName() string { return "team_members" }
