package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
	"gorm.io/gorm"
)

type FriendshipRepository interface {
	BaseRepository[models.Friendship]
	GetPair(ctx context.Context, userID, friendID uuid.UUID, dest *models.Friendship) error
	ListPendingFor(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error)
	ListAcceptedBy(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	DeletePair(ctx context.Context, userID, friendID uuid.UUID) error
}

type friendshipRepository struct {
	BaseRepository[models.Friendship]
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{BaseRepository: NewBaseRepository[models.Friendship](db), db: db}
}

func (r *friendshipRepository) GetPair(ctx context.Context, userID, friendID uuid.UUID, dest *models.Friendship) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND friend_id = ?", userID, friendID).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "friendship not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get friendship failed")
	}
	return nil
}

func (r *friendshipRepository) ListPendingFor(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	var out []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("friend_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list pending friend requests failed")
	}
	return out, nil
}

func (r *friendshipRepository) ListAcceptedBy(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	var out []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.FriendshipAccepted).
		Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list accepted friendships failed")
	}
	return out, nil
}

func (r *friendshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Friendship{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update friendship status failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "friendship not found")
	}
	return nil
}

// DeletePair removes both directions of a friendship.
func (r *friendshipRepository) DeletePair(ctx context.Context, userID, friendID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", userID, friendID, friendID, userID).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "delete friendship failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "friendship not found")
	}
	return nil
}

// Create overrides the base implementation to map the unique
// (user_id, friend_id) violation to a conflict.
func (r *friendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if isUniqueViolation(err) {
			return appErr.New(appErr.CodeConflict, "friendship already exists")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create friendship failed")
	}
	return nil
}
