package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	ListByMember(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	DeleteCascade(ctx context.Context, projectID uuid.UUID) error

	// Generation-cycle flag management. BeginGeneration performs a persisted
	// compare-and-set so that concurrent callers cannot both start a cycle.
	BeginGeneration(ctx context.Context, projectID uuid.UUID) (bool, error)
	EndGeneration(ctx context.Context, projectID uuid.UUID) error
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

func (r *projectRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ?", userID).
		Order("projects.created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by member failed")
	}
	return out, nil
}

// DeleteCascade removes a project together with its messages, nodes and
// memberships in one transaction.
func (r *projectRepository) DeleteCascade(ctx context.Context, projectID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.MindMapNode{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Project{}, "id = ?", projectID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return appErr.New(appErr.CodeNotFound, "project not found")
	}
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete project failed")
	}
	return nil
}

// BeginGeneration flips is_generating to true only if it is currently false.
// Returns false without error when another cycle already holds the flag.
// The update is committed before returning, so a concurrent caller observes
// the conflict rather than racing into a duplicate cycle.
func (r *projectRepository) BeginGeneration(ctx context.Context, projectID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND is_generating = false", projectID).
		Update("is_generating", true)
	if res.Error != nil {
		return false, appErr.Wrap(res.Error, appErr.CodeInternal, "acquire generation flag failed")
	}
	return res.RowsAffected == 1, nil
}

func (r *projectRepository) EndGeneration(ctx context.Context, projectID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("is_generating", false)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "release generation flag failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "project not found")
	}
	return nil
}
