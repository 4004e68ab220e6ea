package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/mindweave/engine/internal/api/types"
	"github.com/mindweave/engine/internal/api/validators"
	"github.com/mindweave/engine/internal/queue/tasks"
	"github.com/mindweave/engine/internal/services"
)

type ProjectsHandler struct {
	projects services.ProjectService
	sync     services.Synchronizer
	queue    *asynq.Client
}

func NewProjectsHandler(projects services.ProjectService, sync services.Synchronizer, queue *asynq.Client) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, sync: sync, queue: queue}
}

// List godoc
// @Summary  List the caller's projects
// @Tags     projects
// @Produce  json
// @Security Bearer
// @Success  200 {object} types.APIResponse
// @Router   /api/v1/projects [get]
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	items, err := h.projects.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items[start:end],
		Meta:    &types.Meta{Page: page, PageSize: size, Total: int64(len(items))},
	})
}

// Create godoc
// @Summary  Create a project
// @Tags     projects
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    request body types.ProjectCreateRequest true "project data"
// @Success  201 {object} types.APIResponse
// @Router   /api/v1/projects [post]
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return
	}
	var req types.ProjectCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projects.Create(r.Context(), userID, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, project)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	project, members, err := h.projects.Get(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"project": project, "members": members})
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req types.ProjectUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projects.UpdateTitle(r.Context(), projectID, userID, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, project)
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), projectID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddMember godoc
// @Summary  Add a user to a project
// @Tags     projects
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    id      path string                 true "project id"
// @Param    request body types.AddMemberRequest true "member data"
// @Success  201 {object} types.APIResponse
// @Router   /api/v1/projects/{id}/members [post]
func (h *ProjectsHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req types.AddMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	newUserID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid user id")
		return
	}

	member, err := h.projects.AddMember(r.Context(), projectID, userID, newUserID, req.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, member)
}

// PostChat godoc
// @Summary  Post a chat message
// @Tags     chat
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    id      path string                true "project id"
// @Param    request body types.PostChatRequest true "message"
// @Success  201 {object} types.APIResponse
// @Router   /api/v1/projects/{id}/chats [post]
func (h *ProjectsHandler) PostChat(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req types.PostChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.projects.PostChat(r.Context(), projectID, userID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, msg)
}

func (h *ProjectsHandler) ListChat(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	msgs, err := h.projects.ListChat(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, msgs)
}

// Generate godoc
// @Summary  Fold new chat into the mind map
// @Description Runs one synchronous generation cycle. Returns 409 while a
// @Description cycle is already in flight and 400 when there is no new chat.
// @Tags     mindmap
// @Produce  json
// @Security Bearer
// @Param    id path string true "project id"
// @Success  200 {object} types.APIResponse
// @Router   /api/v1/projects/{id}/generate [post]
func (h *ProjectsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	// Membership gate; generation itself is project-scoped.
	if _, _, err := h.projects.Get(r.Context(), projectID, userID); err != nil {
		writeError(w, err)
		return
	}

	// async=true enqueues the cycle for the worker instead of running it
	// inline; exclusivity is enforced by the persisted flag either way.
	if r.URL.Query().Get("async") == "true" && h.queue != nil {
		task, err := tasks.NewGenerateTask(projectID)
		if err != nil {
			writeError(w, err)
			return
		}
		info, err := h.queue.EnqueueContext(r.Context(), task, asynq.MaxRetry(5))
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusAccepted, map[string]string{"task_id": info.ID, "state": "queued"})
		return
	}

	result, err := h.sync.RequestGeneration(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (h *ProjectsHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	nodes, err := h.projects.ListNodes(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nodes)
}

// UpdateNode godoc
// @Summary  Edit a node's title or description
// @Description Rejected with 409 while a generation cycle is in flight.
// @Tags     mindmap
// @Accept   json
// @Produce  json
// @Security Bearer
// @Param    id      path string                  true "project id"
// @Param    nodeID  path string                  true "node id"
// @Param    request body types.UpdateNodeRequest true "fields to update"
// @Success  200 {object} types.APIResponse
// @Router   /api/v1/projects/{id}/nodes/{nodeID} [patch]
func (h *ProjectsHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	if nodeID == "" {
		writeErrorStr(w, http.StatusBadRequest, "missing node id")
		return
	}
	var req types.UpdateNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.projects.UpdateNode(r.Context(), projectID, userID, nodeID, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, node)
}

func (h *ProjectsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := h.ids(w, r)
	if !ok {
		return
	}
	text, err := h.projects.Recommend(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"recommendation": text})
}

func (h *ProjectsHandler) ids(w http.ResponseWriter, r *http.Request) (userID, projectID uuid.UUID, ok bool) {
	userID, ok = currentUserID(r)
	if !ok {
		writeErrorStr(w, http.StatusUnauthorized, "invalid session")
		return uuid.Nil, uuid.Nil, false
	}
	projectID, ok = pathUUID(r, "id")
	if !ok {
		writeErrorStr(w, http.StatusBadRequest, "invalid project id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, projectID, true
}
