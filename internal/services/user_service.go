package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/mindweave/engine/internal/models"
	"github.com/mindweave/engine/internal/repository"
	"github.com/mindweave/engine/internal/storage"
	appErr "github.com/mindweave/engine/pkg/errors"
)

// UserService manages profile data outside of authentication.
type UserService interface {
	UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error)
	SetProfileImage(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*models.User, error)
	SetOnline(ctx context.Context, userID uuid.UUID, online bool) error
}

type userService struct {
	users  repository.UserRepository
	images storage.ImageStore
}

var _ UserService = (*userService)(nil)

func NewUserService(users repository.UserRepository, images storage.ImageStore) UserService {
	return &userService{users: users, images: images}
}

func (s *userService) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	if name == "" {
		return nil, appErr.New(appErr.CodeInvalid, "name cannot be empty")
	}
	var user models.User
	if err := s.users.GetByID(ctx, userID, &user); err != nil {
		return nil, err
	}
	user.Name = name
	if err := s.users.Update(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) SetProfileImage(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*models.User, error) {
	var user models.User
	if err := s.users.GetByID(ctx, userID, &user); err != nil {
		return nil, err
	}
	url, err := s.images.SaveProfileImage(ctx, userID, filename, r)
	if err != nil {
		return nil, err
	}
	user.ProfileImageURL = url
	if err := s.users.Update(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) SetOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	return s.users.SetOnline(ctx, userID, online)
}
