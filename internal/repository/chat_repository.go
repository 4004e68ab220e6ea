package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
	"gorm.io/gorm"
)

type ChatRepository interface {
	BaseRepository[models.ChatMessage]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ChatMessage, error)
	ListAfter(ctx context.Context, projectID uuid.UUID, afterID int64) ([]models.ChatMessage, error)
	ListRecent(ctx context.Context, projectID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type chatRepository struct {
	BaseRepository[models.ChatMessage]
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{BaseRepository: NewBaseRepository[models.ChatMessage](db), db: db}
}

func (r *chatRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list chat messages failed")
	}
	return out, nil
}

// ListAfter returns the messages with id strictly greater than afterID,
// ordered by id. This is the "new since last generation" slice.
func (r *chatRepository) ListAfter(ctx context.Context, projectID uuid.UUID, afterID int64) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND id > ?", projectID, afterID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list new chat messages failed")
	}
	return out, nil
}

// ListRecent returns the last limit messages in chronological order.
func (r *chatRepository) ListRecent(ctx context.Context, projectID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list recent chat messages failed")
	}
	// reverse into ascending order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
