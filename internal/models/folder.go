package models

import (
	"time"

	"gorm.io/gorm"
)

// Folder kinds, used to scope permission rows.
const (
	FolderKindPipeline = "pipeline"
	FolderKindProject  = "project"
)

// Folder groups pipelines or projects inside a team. Kind distinguishes
// pipeline folders from project folders; only project folders nest, via
// ParentID, and a parent must belong to the same team.
//
// CreatedBy is informational only: folder edit rights come from the
// FolderPermission rows (or PI status), never from having created the
// folder. Pipelines and projects grant their owner edit rights directly;
// folders deliberately do not.
type Folder struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	Name            string             `gorm:"size:200;not null" json:"name"`
	Kind            string             `gorm:"size:20;not null;index" json:"kind"` // pipeline, project
	TeamID          uint               `gorm:"index;not null" json:"team_id"`
	ParentID        *uint              `gorm:"index" json:"parent_id"` // project folders only
	CreatedBy       uint               `gorm:"not null" json:"created_by"`
	EditPermissions []FolderPermission `gorm:"foreignKey:FolderID" json:"edit_permissions,omitempty"`
	LastModifiedBy  *uint              `json:"last_modified_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (Folder) TableName() string { return "folders" }

// FolderPermission grants a single user edit access to a folder.
type FolderPermission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FolderID  uint      `gorm:"uniqueIndex:idx_folder_user;not null" json:"folder_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_folder_user;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (FolderPermission) TableName() string { return "folder_permissions" }
