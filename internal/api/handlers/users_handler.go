package handlers

import (
	"net/http"

	"github.com/mindweave/engine/internal/api/types"
	"github.com/mindweave/engine/internal/api/validators"
	"github.com/mindweave/engine/internal/services"
	"github.com/mindweave/engine/internal/storage"
)

type UsersHandler struct {
	users   services.UserService
	friends services.FriendService
}

func NewUsersHandler(users services.UserService, friends services.FriendService) *UsersHandler {
	return &UsersHandler{users: users, friends: friends}
}

func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	var req types.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateName(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// UploadProfileImage godoc
// @Summary  Upload a profile image
// @Tags     users
// @Accept   mpfd
// @Produce  json
// @Security Bearer
// @Param    image formData file true "image file (max 5 MiB)"
// @Success  200 {object} types.APIResponse
// @Router   /api/v1/users/me/image [post]
func (h *UsersHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	user, err := h.users.SetProfileImage(r.Context(), userID, header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// SearchFriend godoc
// @Summary  Look a user up by friend code
// @Tags     friends
// @Produce  json
// @Security Bearer
// @Param    code query string true "7-character friend code"
// @Success  200 {object} types.APIResponse
// @Router   /api/v1/friends/search [get]
func (h *UsersHandler) SearchFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeErrorStr(w, http.StatusBadRequest, "missing friend code")
		return
	}

	user, err := h.friends.Search(r.Context(), userID, code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *UsersHandler) RequestFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	var req types.FriendRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	friendship, err := h.friends.Request(r.Context(), userID, req.FriendCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, friendship)
}

func (h *UsersHandler) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	requests, err := h.friends.ListRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, requests)
}

func (h *UsersHandler) RespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	requestID, ok := pathUUID(r, "id")
	if !ok {
		writeErrorStr(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req types.FriendRespondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.friends.Respond(r.Context(), userID, requestID, req.Action == "accept"); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": req.Action + "ed"})
}

func (h *UsersHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	friends, err := h.friends.ListFriends(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, friends)
}

func (h *UsersHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	friendID, ok := pathUUID(r, "id")
	if !ok {
		writeErrorStr(w, http.StatusBadRequest, "invalid friend id")
		return
	}
	if err := h.friends.Remove(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "removed"})
}
