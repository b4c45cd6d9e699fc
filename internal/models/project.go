package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents a research project inside a team. Only the owner
// (and the team's PIs) may edit it.
type Project struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"size:200;not null" json:"name"`
	Description    string         `gorm:"size:2000" json:"description"`
	FolderID       *uint          `gorm:"index" json:"folder_id"`
	TeamID         uint           `gorm:"index;not null" json:"team_id"`
	OwnerID        uint           `gorm:"index;not null" json:"owner_id"`
	LastModifiedBy *uint          `json:"last_modified_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
