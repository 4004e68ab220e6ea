package handlers

import (
	"net/http"

	"github.com/mindweave/engine/internal/api/types"
	"github.com/mindweave/engine/internal/api/validators"
	"github.com/mindweave/engine/internal/services"
)

type MemosHandler struct {
	memos services.MemoService
}

func NewMemosHandler(memos services.MemoService) *MemosHandler {
	return &MemosHandler{memos: memos}
}

func (h *MemosHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	memos, err := h.memos.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, memos)
}

func (h *MemosHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	var req types.MemoCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	memo, err := h.memos.Create(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, memo)
}

func (h *MemosHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	memoID, ok := pathUUID(r, "id")
	if !ok {
		writeErrorStr(w, http.StatusBadRequest, "invalid memo id")
		return
	}
	memo, err := h.memos.Get(r.Context(), userID, memoID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, memo)
}

func (h *MemosHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	memoID, ok := pathUUID(r, "id")
	if !ok {
		writeErrorStr(w, http.StatusBadRequest, "invalid memo id")
		return
	}
	var req types.MemoUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	memo, err := h.memos.Update(r.Context(), userID, memoID, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, memo)
}

func (h *MemosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	memoID, ok := pathUUID(r, "id")
	if !ok {
		writeErrorStr(w, http.StatusBadRequest, "invalid memo id")
		return
	}
	if err := h.memos.Delete(r.Context(), userID, memoID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
