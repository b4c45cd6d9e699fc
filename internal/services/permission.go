package services

import (
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
)

// Resource types CanEdit knows about. The set is closed: any other tag is
// denied outright.
const (
	ResourcePipeline      = "pipeline"
	ResourceFolder        = "folder"
	ResourceProjectFolder = "projectFolder"
	ResourceProject       = "project"
)

// PermissionService answers "may this session edit that resource" and
// "is this user a PI of that team". All answers degrade to deny on missing
// data; permission checks never return errors.
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// IsPI reports whether the session's user holds the PI role in the given
// team. teamID 0 means the session's active team. No membership record
// means false.
func (s *PermissionService) IsPI(sess *Session, teamID uint) bool {
	if sess == nil {
		return false
	}
	if teamID == 0 {
		teamID = sess.TeamID
	}
	if teamID == 0 {
		return false
	}

	var member models.TeamMember
	err := s.db.Where("team_id = ? AND user_id = ?", teamID, sess.UserID).
		First(&member).Error
	if err != nil {
		return false
	}
	return member.Role == models.RolePI
}

// CanAdmin reports whether the session may administer the given team
// (rename, delete, invite, remove members). Defined as IsPI.
func (s *PermissionService) CanAdmin(sess *Session, teamID uint) bool {
	return s.IsPI(sess, teamID)
}

// CanEdit reports whether the session may edit the identified resource.
//
// With no active team everything is denied. A PI of the active team may
// edit every resource in it. Otherwise the rule depends on the resource
// type: pipelines are editable by their owner and anyone on the sharing
// list, projects by their owner only, and folders solely by users on the
// folder's permission list. Having created a folder grants nothing by
// itself; only the permission list (or PI status) does. That asymmetry
// with pipelines/projects is intentional.
func (s *PermissionService) CanEdit(sess *Session, resourceType string, resourceID uint) bool {
	if !sess.HasTeam() {
		return false
	}
	if s.IsPI(sess, sess.TeamID) {
		return true
	}

	switch resourceType {
	case ResourceFolder:
		return s.folderEditable(sess, resourceID, models.FolderKindPipeline)
	case ResourceProjectFolder:
		return s.folderEditable(sess, resourceID, models.FolderKindProject)
	case ResourcePipeline:
		var pipeline models.Pipeline
		if err := s.db.First(&pipeline, resourceID).Error; err != nil {
			return false
		}
		if pipeline.OwnerID == sess.UserID {
			return true
		}
		var count int64
		s.db.Model(&models.PipelineShare{}).
			Where("pipeline_id = ? AND user_id = ?", resourceID, sess.UserID).
			Count(&count)
		return count > 0
	case ResourceProject:
		var project models.Project
		if err := s.db.First(&project, resourceID).Error; err != nil {
			return false
		}
		return project.OwnerID == sess.UserID
	default:
		return false
	}
}

func (s *PermissionService) folderEditable(sess *Session, folderID uint, kind string) bool {
	var folder models.Folder
	if err := s.db.Where("kind = ?", kind).First(&folder, folderID).Error; err != nil {
		return false
	}
	var count int64
	s.db.Model(&models.FolderPermission{}).
		Where("folder_id = ? AND user_id = ?", folder.ID, sess.UserID).
		Count(&count)
	return count > 0
}
