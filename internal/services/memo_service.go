package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/mindweave/engine/internal/models"
	"github.com/mindweave/engine/internal/repository"
	appErr "github.com/mindweave/engine/pkg/errors"
)

// MemoService manages a user's private notes.
type MemoService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*models.Memo, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Memo, error)
	Get(ctx context.Context, ownerID, memoID uuid.UUID) (*models.Memo, error)
	Update(ctx context.Context, ownerID, memoID uuid.UUID, title, content *string) (*models.Memo, error)
	Delete(ctx context.Context, ownerID, memoID uuid.UUID) error
}

type memoService struct {
	memos repository.MemoRepository
}

var _ MemoService = (*memoService)(nil)

func NewMemoService(memos repository.MemoRepository) MemoService {
	return &memoService{memos: memos}
}

func (s *memoService) Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*models.Memo, error) {
	memo := &models.Memo{OwnerID: ownerID, Title: title, Content: content}
	if err := s.memos.Create(ctx, memo); err != nil {
		return nil, err
	}
	return memo, nil
}

func (s *memoService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Memo, error) {
	return s.memos.ListByOwner(ctx, ownerID)
}

func (s *memoService) Get(ctx context.Context, ownerID, memoID uuid.UUID) (*models.Memo, error) {
	var memo models.Memo
	if err := s.memos.GetByID(ctx, memoID, &memo); err != nil {
		return nil, err
	}
	if memo.OwnerID != ownerID {
		return nil, appErr.New(appErr.CodeForbidden, "memo belongs to another user")
	}
	return &memo, nil
}

func (s *memoService) Update(ctx context.Context, ownerID, memoID uuid.UUID, title, content *string) (*models.Memo, error) {
	memo, err := s.Get(ctx, ownerID, memoID)
	if err != nil {
		return nil, err
	}
	if title != nil {
		if *title == "" {
			return nil, appErr.New(appErr.CodeInvalid, "memo title cannot be empty")
		}
		memo.Title = *title
	}
	if content != nil {
		memo.Content = *content
	}
	if err := s.memos.Update(ctx, memo); err != nil {
		return nil, err
	}
	return memo, nil
}

func (s *memoService) Delete(ctx context.Context, ownerID, memoID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, memoID); err != nil {
		return err
	}
	return s.memos.Delete(ctx, memoID)
}
