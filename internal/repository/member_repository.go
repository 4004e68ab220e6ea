package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
	"gorm.io/gorm"
)

type MemberRepository interface {
	BaseRepository[models.ProjectMember]
	Get(ctx context.Context, projectID, userID uuid.UUID, dest *models.ProjectMember) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error)
}

type memberRepository struct {
	BaseRepository[models.ProjectMember]
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{BaseRepository: NewBaseRepository[models.ProjectMember](db), db: db}
}

func (r *memberRepository) Get(ctx context.Context, projectID, userID uuid.UUID, dest *models.ProjectMember) error {
	if err := r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "membership not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get membership failed")
	}
	return nil
}

func (r *memberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error) {
	var out []models.ProjectMember
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list members failed")
	}
	return out, nil
}

// Create overrides the base implementation to map the unique
// (project_id, user_id) violation to a conflict instead of an internal error.
func (r *memberRepository) Create(ctx context.Context, m *models.ProjectMember) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return appErr.New(appErr.CodeConflict, "member already exists")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create membership failed")
	}
	return nil
}

// isUniqueViolation matches both gorm's translated error and the raw
// postgres message, since error translation depends on driver configuration.
func isUniqueViolation(err error) bool {
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value")
}
