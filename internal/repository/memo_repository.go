package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
	"gorm.io/gorm"
)

type MemoRepository interface {
	BaseRepository[models.Memo]
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Memo, error)
}

type memoRepository struct {
	BaseRepository[models.Memo]
	db *gorm.DB
}

func NewMemoRepository(db *gorm.DB) MemoRepository {
	return &memoRepository{BaseRepository: NewBaseRepository[models.Memo](db), db: db}
}

func (r *memoRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Memo, error) {
	var out []models.Memo
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list memos failed")
	}
	return out, nil
}
