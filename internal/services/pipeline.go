package services

import (
	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
)

// PipelineService provides the session-scoped pipeline views. All views
// are recomputed from the authoritative tables on every call; nothing is
// cached.
type PipelineService struct {
	db *gorm.DB
}

func NewPipelineService(db *gorm.DB) *PipelineService {
	return &PipelineService{db: db}
}

// GetMyPipelines returns the pipelines owned by the session's user inside
// the active team. Without an active team the view is empty.
func (s *PipelineService) GetMyPipelines(sess *Session) ([]models.Pipeline, error) {
	if !sess.HasTeam() {
		return []models.Pipeline{}, nil
	}
	var pipelines []models.Pipeline
	err := s.db.
		Where("team_id = ? AND owner_id = ?", sess.TeamID, sess.UserID).
		Preload("SharedWith").
		Order("id").
		Find(&pipelines).Error
	return pipelines, err
}

// GetSharedPipelines returns the active team's pipelines that were shared
// with the session's user by someone else.
func (s *PipelineService) GetSharedPipelines(sess *Session) ([]models.Pipeline, error) {
	if !sess.HasTeam() {
		return []models.Pipeline{}, nil
	}
	var pipelines []models.Pipeline
	err := s.db.
		Joins("JOIN pipeline_shares ON pipeline_shares.pipeline_id = pipelines.id").
		Where("pipelines.team_id = ? AND pipeline_shares.user_id = ?", sess.TeamID, sess.UserID).
		Preload("SharedWith").
		Order("pipelines.id").
		Find(&pipelines).Error
	return pipelines, err
}

// GetFavouritePipelines always returns an empty list. Favourites never
// shipped; the endpoint exists so clients keep working.
func (s *PipelineService) GetFavouritePipelines(sess *Session) ([]models.Pipeline, error) {
	return []models.Pipeline{}, nil
}

// Share puts the listed users on the pipeline's sharing list, replacing
// the previous list, and refreshes the share counters.
func (s *PipelineService) Share(pipelineID uint, userIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pipeline_id = ?", pipelineID).
			Delete(&models.PipelineShare{}).Error; err != nil {
			return err
		}
		for _, uid := range userIDs {
			share := models.PipelineShare{PipelineID: pipelineID, UserID: uid}
			if err := tx.Create(&share).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Pipeline{}).
			Where("id = ?", pipelineID).
			Updates(map[string]interface{}{
				"shared":      len(userIDs) > 0,
				"share_count": len(userIDs),
			}).Error
	})
}
