package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindweave/engine/internal/models"
	"github.com/mindweave/engine/internal/repository"
	appErr "github.com/mindweave/engine/pkg/errors"
	"github.com/mindweave/engine/pkg/utils"
)

const (
	tokenTTL             = 24 * time.Hour
	friendCodeMaxRetries = 5
)

// AuthService handles signup, login and token verification.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	VerifyToken(tokenString string) (uuid.UUID, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type authService struct {
	users     repository.UserRepository
	jwtSecret []byte
}

var _ AuthService = (*authService)(nil)

func NewAuthService(users repository.UserRepository, jwtSecret string) AuthService {
	return &authService{users: users, jwtSecret: []byte(jwtSecret)}
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	var existing models.User
	if err := s.users.GetByEmail(ctx, email, &existing); err == nil {
		return nil, appErr.New(appErr.CodeConflict, "email already registered")
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}

	// Friend codes are random and short, so a collision is possible; retry
	// with a fresh code a bounded number of times.
	var user *models.User
	for attempt := 0; attempt < friendCodeMaxRetries; attempt++ {
		u := &models.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         name,
			FriendCode:   utils.NewFriendCode(),
		}
		if err := s.users.Create(ctx, u); err != nil {
			if appErr.IsCode(err, appErr.CodeConflict) {
				continue
			}
			return nil, err
		}
		user = u
		break
	}
	if user == nil {
		return nil, appErr.New(appErr.CodeInternal, "could not allocate a unique friend code")
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.users.GetByEmail(ctx, email, &user); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid email or password")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthorized, "invalid email or password")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}
	return token, &user, nil
}

func (s *authService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErr.New(appErr.CodeUnauthorized, "unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, appErr.Wrap(err, appErr.CodeUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, appErr.New(appErr.CodeUnauthorized, "invalid token claims")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, appErr.New(appErr.CodeUnauthorized, "invalid token subject")
	}
	return userID, nil
}

func (s *authService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.users.GetByID(ctx, userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
