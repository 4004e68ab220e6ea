package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
	"gorm.io/gorm"
)

type NodeRepository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.MindMapNode, error)
	Get(ctx context.Context, projectID uuid.UUID, nodeID string, dest *models.MindMapNode) error
	UpdateFields(ctx context.Context, projectID uuid.UUID, nodeID string, fields map[string]any) error

	// ReplaceForProject atomically swaps the project's entire node set and
	// commits the cycle completion: delete-all, insert, watermark advance and
	// flag clear happen in one transaction, so a reader never observes a
	// half-applied map.
	ReplaceForProject(ctx context.Context, projectID uuid.UUID, nodes []models.MindMapNode, lastChatID int64) error
}

type nodeRepository struct {
	db *gorm.DB
}

func NewNodeRepository(db *gorm.DB) NodeRepository {
	return &nodeRepository{db: db}
}

func (r *nodeRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.MindMapNode, error) {
	var out []models.MindMapNode
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list mind map nodes failed")
	}
	return out, nil
}

func (r *nodeRepository) Get(ctx context.Context, projectID uuid.UUID, nodeID string, dest *models.MindMapNode) error {
	if err := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, nodeID).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "mind map node not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get mind map node failed")
	}
	return nil
}

func (r *nodeRepository) UpdateFields(ctx context.Context, projectID uuid.UUID, nodeID string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.MindMapNode{}).
		Where("project_id = ? AND id = ?", projectID, nodeID).
		Updates(fields)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update mind map node failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "mind map node not found")
	}
	return nil
}

func (r *nodeRepository) ReplaceForProject(ctx context.Context, projectID uuid.UUID, nodes []models.MindMapNode, lastChatID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.MindMapNode{}).Error; err != nil {
			return err
		}
		if len(nodes) > 0 {
			if err := tx.Create(&nodes).Error; err != nil {
				return err
			}
		}
		// The watermark guard keeps last_chat_id_processed monotonic even if
		// a stale completion races a newer one.
		res := tx.Model(&models.Project{}).
			Where("id = ? AND last_chat_id_processed <= ?", projectID, lastChatID).
			Updates(map[string]any{
				"last_chat_id_processed": lastChatID,
				"is_generating":          false,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return appErr.New(appErr.CodeNotFound, "project not found or watermark regressed")
	}
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "replace mind map nodes failed")
	}
	return nil
}
