package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/mindweave/engine/internal/models"
	"github.com/mindweave/engine/internal/repository"
	appErr "github.com/mindweave/engine/pkg/errors"
)

// FriendRequest is a pending request together with its sender.
type FriendRequest struct {
	ID     uuid.UUID    `json:"id"`
	Sender *models.User `json:"sender"`
}

// FriendService manages friend-code lookup and the friendship lifecycle.
// An accepted friendship is stored as two directed records so that listing
// a user's friends is a single indexed query.
type FriendService interface {
	Search(ctx context.Context, userID uuid.UUID, code string) (*models.User, error)
	Request(ctx context.Context, userID uuid.UUID, code string) (*models.Friendship, error)
	ListRequests(ctx context.Context, userID uuid.UUID) ([]FriendRequest, error)
	Respond(ctx context.Context, userID, requestID uuid.UUID, accept bool) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	Remove(ctx context.Context, userID, friendID uuid.UUID) error
}

type friendService struct {
	users       repository.UserRepository
	friendships repository.FriendshipRepository
}

var _ FriendService = (*friendService)(nil)

func NewFriendService(users repository.UserRepository, friendships repository.FriendshipRepository) FriendService {
	return &friendService{users: users, friendships: friendships}
}

func (s *friendService) Search(ctx context.Context, userID uuid.UUID, code string) (*models.User, error) {
	var user models.User
	if err := s.users.GetByFriendCode(ctx, code, &user); err != nil {
		return nil, err
	}
	if user.ID == userID {
		return nil, appErr.New(appErr.CodeInvalid, "that is your own friend code")
	}
	return &user, nil
}

func (s *friendService) Request(ctx context.Context, userID uuid.UUID, code string) (*models.Friendship, error) {
	target, err := s.Search(ctx, userID, code)
	if err != nil {
		return nil, err
	}

	var forward models.Friendship
	if err := s.friendships.GetPair(ctx, userID, target.ID, &forward); err == nil {
		switch forward.Status {
		case models.FriendshipAccepted:
			return nil, appErr.New(appErr.CodeConflict, "already friends")
		case models.FriendshipPending:
			return nil, appErr.New(appErr.CodeConflict, "friend request already sent")
		}
		// A previously rejected request may be re-sent.
		if err := s.friendships.UpdateStatus(ctx, forward.ID, models.FriendshipPending); err != nil {
			return nil, err
		}
		forward.Status = models.FriendshipPending
		return &forward, nil
	} else if !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	// If the target already asked us, requesting back completes the
	// handshake instead of creating a crossed pair of pending requests.
	var inverse models.Friendship
	if err := s.friendships.GetPair(ctx, target.ID, userID, &inverse); err == nil && inverse.Status == models.FriendshipPending {
		if err := s.friendships.UpdateStatus(ctx, inverse.ID, models.FriendshipAccepted); err != nil {
			return nil, err
		}
		accepted := &models.Friendship{UserID: userID, FriendID: target.ID, Status: models.FriendshipAccepted}
		if err := s.friendships.Create(ctx, accepted); err != nil {
			return nil, err
		}
		return accepted, nil
	} else if err != nil && !appErr.IsCode(err, appErr.CodeNotFound) {
		return nil, err
	}

	request := &models.Friendship{UserID: userID, FriendID: target.ID, Status: models.FriendshipPending}
	if err := s.friendships.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *friendService) ListRequests(ctx context.Context, userID uuid.UUID) ([]FriendRequest, error) {
	pending, err := s.friendships.ListPendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]FriendRequest, 0, len(pending))
	for _, f := range pending {
		var sender models.User
		if err := s.users.GetByID(ctx, f.UserID, &sender); err != nil {
			if appErr.IsCode(err, appErr.CodeNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, FriendRequest{ID: f.ID, Sender: &sender})
	}
	return out, nil
}

// Respond accepts or rejects a pending request addressed to userID.
// Accepting creates the reverse record so both directions exist.
func (s *friendService) Respond(ctx context.Context, userID, requestID uuid.UUID, accept bool) error {
	var request models.Friendship
	if err := s.friendships.GetByID(ctx, requestID, &request); err != nil {
		return err
	}
	if request.FriendID != userID {
		return appErr.New(appErr.CodeForbidden, "friend request is not addressed to you")
	}
	if request.Status != models.FriendshipPending {
		return appErr.New(appErr.CodeConflict, "friend request already handled")
	}

	if !accept {
		return s.friendships.UpdateStatus(ctx, request.ID, models.FriendshipRejected)
	}

	if err := s.friendships.UpdateStatus(ctx, request.ID, models.FriendshipAccepted); err != nil {
		return err
	}
	reverse := &models.Friendship{UserID: userID, FriendID: request.UserID, Status: models.FriendshipAccepted}
	if err := s.friendships.Create(ctx, reverse); err != nil && !appErr.IsCode(err, appErr.CodeConflict) {
		return err
	}
	return nil
}

func (s *friendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	accepted, err := s.friendships.ListAcceptedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(accepted))
	for _, f := range accepted {
		var friend models.User
		if err := s.users.GetByID(ctx, f.FriendID, &friend); err != nil {
			if appErr.IsCode(err, appErr.CodeNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, friend)
	}
	return out, nil
}

func (s *friendService) Remove(ctx context.Context, userID, friendID uuid.UUID) error {
	return s.friendships.DeletePair(ctx, userID, friendID)
}
