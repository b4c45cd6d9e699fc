package models

import "time"

// Invitation statuses. Status is monotonic: once accepted or declined an
// invitation is never reopened. Cancelling removes the row outright.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// TeamInvitation is a pending grant of team membership addressed to an
// email address. The recipient is matched by email, not user id: the
// invited address may not belong to a registered user yet.
type TeamInvitation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Token        string    `gorm:"uniqueIndex;size:36;not null" json:"token"`
	TeamID       uint      `gorm:"index;not null" json:"team_id"`
	Team         *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	InvitedEmail string    `gorm:"index;size:255;not null" json:"invited_email"`
	InvitedBy    uint      `gorm:"not null" json:"invited_by"`
	Role         string    `gorm:"size:50;not null" json:"role"`
	Status       string    `gorm:"size:20;default:pending;index" json:"status"` // pending, accepted, declined
	Message      string    `gorm:"size:1000" json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (TeamInvitation) TableName() string { return "team_invitations" }
