package models

import (
	"time"

	"gorm.io/gorm"
)

// Pipeline represents a user-editable sequence of method steps. It is
// owned exclusively by OwnerID; SharedWith rows grant edit access to
// individual collaborators (PIs of the team have blanket access anyway).
type Pipeline struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	Goal           string          `gorm:"size:2000" json:"goal"`
	Context        string          `gorm:"size:2000" json:"context"`
	IsReady        bool            `gorm:"default:false" json:"is_ready"`
	Shared         bool            `gorm:"default:false" json:"shared"`
	ShareCount     int             `gorm:"default:0" json:"share_count"`
	Attachments    int             `gorm:"default:0" json:"attachments"`
	FolderID       *uint           `gorm:"index" json:"folder_id"`
	TeamID         uint            `gorm:"index;not null" json:"team_id"`
	OwnerID        uint            `gorm:"index;not null" json:"owner_id"`
	SharedWith     []PipelineShare `gorm:"foreignKey:PipelineID" json:"shared_with,omitempty"`
	LastModifiedBy *uint           `json:"last_modified_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Pipeline) TableName() string { return "pipelines" }

// PipelineShare grants a single collaborator edit access to a pipeline.
type PipelineShare struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PipelineID uint      `gorm:"uniqueIndex:idx_pipeline_user;not null" json:"pipeline_id"`
	UserID     uint      `gorm:"uniqueIndex:idx_pipeline_user;not null" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PipelineShare) TableName() string { return "pipeline_shares" }
