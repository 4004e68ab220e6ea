package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
	"github.com/mindweave/engine/pkg/utils"
)

const testJWTSecret = "unit-test-secret-0123456789"

func TestAuthService_RegisterAssignsFriendCode(t *testing.T) {
	users := &mockUserRepository{}
	svc := NewAuthService(users, testJWTSecret)

	users.On("GetByEmail", mock.Anything, "ann@example.com", &models.User{}).
		Return(appErr.New(appErr.CodeNotFound, "user not found"), nil).Once()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "ann@example.com" &&
			len(u.FriendCode) == utils.FriendCodeLength &&
			u.PasswordHash != "" && u.PasswordHash != "hunter2secret"
	})).Return(nil).Once()

	user, err := svc.Register(context.Background(), "ann@example.com", "hunter2secret", "Ann")
	require.NoError(t, err)
	require.Len(t, user.FriendCode, utils.FriendCodeLength)
	mock.AssertExpectationsForObjects(t, users)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	users := &mockUserRepository{}
	svc := NewAuthService(users, testJWTSecret)

	users.On("GetByEmail", mock.Anything, "ann@example.com", &models.User{}).
		Return(nil, &models.User{ID: uuid.New(), Email: "ann@example.com"}).Once()

	_, err := svc.Register(context.Background(), "ann@example.com", "hunter2secret", "Ann")
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterRetriesFriendCodeCollision(t *testing.T) {
	users := &mockUserRepository{}
	svc := NewAuthService(users, testJWTSecret)

	users.On("GetByEmail", mock.Anything, "bo@example.com", &models.User{}).
		Return(appErr.New(appErr.CodeNotFound, "user not found"), nil).Once()
	users.On("Create", mock.Anything, mock.Anything).
		Return(appErr.New(appErr.CodeConflict, "user already exists")).Once()
	users.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := svc.Register(context.Background(), "bo@example.com", "hunter2secret", "Bo")
	require.NoError(t, err)
	mock.AssertExpectationsForObjects(t, users)
}

func TestAuthService_LoginAndVerifyToken(t *testing.T) {
	users := &mockUserRepository{}
	svc := NewAuthService(users, testJWTSecret)

	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: userID, Email: "ann@example.com", PasswordHash: string(hash)}
	users.On("GetByEmail", mock.Anything, "ann@example.com", &models.User{}).Return(nil, stored).Once()

	token, user, err := svc.Login(context.Background(), "ann@example.com", "hunter2secret")
	require.NoError(t, err)
	require.Equal(t, userID, user.ID)

	got, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	users := &mockUserRepository{}
	svc := NewAuthService(users, testJWTSecret)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: uuid.New(), Email: "ann@example.com", PasswordHash: string(hash)}
	users.On("GetByEmail", mock.Anything, "ann@example.com", &models.User{}).Return(nil, stored).Once()

	_, _, err = svc.Login(context.Background(), "ann@example.com", "wrong-password")
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
}

func TestAuthService_VerifyTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockUserRepository{}, testJWTSecret)

	_, err := svc.VerifyToken("not.a.jwt")
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
}

func TestAuthService_VerifyTokenRejectsWrongSecret(t *testing.T) {
	users := &mockUserRepository{}
	issuer := NewAuthService(users, "another-secret-0123456789")
	verifier := NewAuthService(users, testJWTSecret)

	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByEmail", mock.Anything, "ann@example.com", &models.User{}).
		Return(nil, &models.User{ID: userID, Email: "ann@example.com", PasswordHash: string(hash)}).Once()

	token, _, err := issuer.Login(context.Background(), "ann@example.com", "hunter2secret")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
}
