package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
)

type mockFriendshipRepository struct {
	mock.Mock
}

func (m *mockFriendshipRepository) Create(ctx context.Context, obj *models.Friendship) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockFriendshipRepository) GetByID(ctx context.Context, id any, dest *models.Friendship) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Friendship)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockFriendshipRepository) Update(ctx context.Context, obj *models.Friendship) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockFriendshipRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockFriendshipRepository) GetPair(ctx context.Context, userID, friendID uuid.UUID, dest *models.Friendship) error {
	args := m.Called(ctx, userID, friendID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.Friendship)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockFriendshipRepository) ListPendingFor(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]models.Friendship), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFriendshipRepository) ListAcceptedBy(ctx context.Context, userID uuid.UUID) ([]models.Friendship, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]models.Friendship), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFriendshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockFriendshipRepository) DeletePair(ctx context.Context, userID, friendID uuid.UUID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func notFoundPair() error { return appErr.New(appErr.CodeNotFound, "friendship not found") }

func TestFriendService_SearchRejectsOwnCode(t *testing.T) {
	userID := uuid.New()
	users := &mockUserRepository{}
	friendships := &mockFriendshipRepository{}
	svc := NewFriendService(users, friendships)

	users.On("GetByFriendCode", mock.Anything, "AB12CD3", &models.User{}).
		Return(nil, &models.User{ID: userID, FriendCode: "AB12CD3"}).Once()

	_, err := svc.Search(context.Background(), userID, "AB12CD3")
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestFriendService_RequestCreatesPending(t *testing.T) {
	userID := uuid.New()
	targetID := uuid.New()
	users := &mockUserRepository{}
	friendships := &mockFriendshipRepository{}
	svc := NewFriendService(users, friendships)

	users.On("GetByFriendCode", mock.Anything, "XY99ZZ1", &models.User{}).
		Return(nil, &models.User{ID: targetID, FriendCode: "XY99ZZ1"}).Once()
	friendships.On("GetPair", mock.Anything, userID, targetID, &models.Friendship{}).
		Return(notFoundPair(), nil).Once()
	friendships.On("GetPair", mock.Anything, targetID, userID, &models.Friendship{}).
		Return(notFoundPair(), nil).Once()
	friendships.On("Create", mock.Anything, mock.MatchedBy(func(f *models.Friendship) bool {
		return f.UserID == userID && f.FriendID == targetID && f.Status == models.FriendshipPending
	})).Return(nil).Once()

	friendship, err := svc.Request(context.Background(), userID, "XY99ZZ1")
	require.NoError(t, err)
	require.Equal(t, models.FriendshipPending, friendship.Status)
	mock.AssertExpectationsForObjects(t, users, friendships)
}

func TestFriendService_RequestAgainIsConflict(t *testing.T) {
	userID := uuid.New()
	targetID := uuid.New()
	users := &mockUserRepository{}
	friendships := &mockFriendshipRepository{}
	svc := NewFriendService(users, friendships)

	users.On("GetByFriendCode", mock.Anything, "XY99ZZ1", &models.User{}).
		Return(nil, &models.User{ID: targetID}).Once()
	friendships.On("GetPair", mock.Anything, userID, targetID, &models.Friendship{}).
		Return(nil, &models.Friendship{UserID: userID, FriendID: targetID, Status: models.FriendshipPending}).Once()

	_, err := svc.Request(context.Background(), userID, "XY99ZZ1")
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func TestFriendService_CrossedRequestsAutoAccept(t *testing.T) {
	userID := uuid.New()
	targetID := uuid.New()
	inverseID := uuid.New()
	users := &mockUserRepository{}
	friendships := &mockFriendshipRepository{}
	svc := NewFriendService(users, friendships)

	users.On("GetByFriendCode", mock.Anything, "XY99ZZ1", &models.User{}).
		Return(nil, &models.User{ID: targetID}).Once()
	friendships.On("GetPair", mock.Anything, userID, targetID, &models.Friendship{}).
		Return(notFoundPair(), nil).Once()
	friendships.On("GetPair", mock.Anything, targetID, userID, &models.Friendship{}).
		Return(nil, &models.Friendship{ID: inverseID, UserID: targetID, FriendID: userID, Status: models.FriendshipPending}).Once()
	friendships.On("UpdateStatus", mock.Anything, inverseID, models.FriendshipAccepted).Return(nil).Once()
	friendships.On("Create", mock.Anything, mock.MatchedBy(func(f *models.Friendship) bool {
		return f.UserID == userID && f.FriendID == targetID && f.Status == models.FriendshipAccepted
	})).Return(nil).Once()

	friendship, err := svc.Request(context.Background(), userID, "XY99ZZ1")
	require.NoError(t, err)
	require.Equal(t, models.FriendshipAccepted, friendship.Status)
	mock.AssertExpectationsForObjects(t, users, friendships)
}

func TestFriendService_AcceptCreatesReverseRecord(t *testing.T) {
	userID := uuid.New()
	senderID := uuid.New()
	requestID := uuid.New()
	users := &mockUserRepository{}
	friendships := &mockFriendshipRepository{}
	svc := NewFriendService(users, friendships)

	friendships.On("GetByID", mock.Anything, requestID, &models.Friendship{}).
		Return(nil, &models.Friendship{ID: requestID, UserID: senderID, FriendID: userID, Status: models.FriendshipPending}).Once()
	friendships.On("UpdateStatus", mock.Anything, requestID, models.FriendshipAccepted).Return(nil).Once()
	friendships.On("Create", mock.Anything, mock.MatchedBy(func(f *models.Friendship) bool {
		return f.UserID == userID && f.FriendID == senderID && f.Status == models.FriendshipAccepted
	})).Return(nil).Once()

	err := svc.Respond(context.Background(), userID, requestID, true)
	require.NoError(t, err)
	mock.AssertExpectationsForObjects(t, friendships)
}

func TestFriendService_RespondToForeignRequestForbidden(t *testing.T) {
	userID := uuid.New()
	requestID := uuid.New()
	users := &mockUserRepository{}
	friendships := &mockFriendshipRepository{}
	svc := NewFriendService(users, friendships)

	friendships.On("GetByID", mock.Anything, requestID, &models.Friendship{}).
		Return(nil, &models.Friendship{ID: requestID, UserID: uuid.New(), FriendID: uuid.New(), Status: models.FriendshipPending}).Once()

	err := svc.Respond(context.Background(), userID, requestID, true)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	friendships.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
