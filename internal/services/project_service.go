package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mindweave/engine/internal/ai"
	"github.com/mindweave/engine/internal/models"
	"github.com/mindweave/engine/internal/repository"
	appErr "github.com/mindweave/engine/pkg/errors"
)

const recommendChatWindow = 20

// ProjectService manages projects, their members, chat and mind-map nodes.
// Every operation verifies the caller's membership; destructive operations
// additionally require admin.
type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, title string) (*models.Project, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	Get(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, []models.ProjectMember, error)
	UpdateTitle(ctx context.Context, projectID, userID uuid.UUID, title string) (*models.Project, error)
	Delete(ctx context.Context, projectID, userID uuid.UUID) error

	AddMember(ctx context.Context, projectID, actorID, newUserID uuid.UUID, isAdmin bool) (*models.ProjectMember, error)

	PostChat(ctx context.Context, projectID, userID uuid.UUID, content string) (*models.ChatMessage, error)
	ListChat(ctx context.Context, projectID, userID uuid.UUID) ([]models.ChatMessage, error)

	ListNodes(ctx context.Context, projectID, userID uuid.UUID) ([]models.MindMapNode, error)
	UpdateNode(ctx context.Context, projectID, userID uuid.UUID, nodeID string, title, description *string) (*models.MindMapNode, error)

	Recommend(ctx context.Context, projectID, userID uuid.UUID) (string, error)
}

type projectService struct {
	projects         repository.ProjectRepository
	members          repository.MemberRepository
	chats            repository.ChatRepository
	nodes            repository.NodeRepository
	users            repository.UserRepository
	gen              Generator
	recommendTimeout time.Duration
}

var _ ProjectService = (*projectService)(nil)

func NewProjectService(
	projects repository.ProjectRepository,
	members repository.MemberRepository,
	chats repository.ChatRepository,
	nodes repository.NodeRepository,
	users repository.UserRepository,
	gen Generator,
	recommendTimeout time.Duration,
) ProjectService {
	return &projectService{
		projects:         projects,
		members:          members,
		chats:            chats,
		nodes:            nodes,
		users:            users,
		gen:              gen,
		recommendTimeout: recommendTimeout,
	}
}

func (s *projectService) Create(ctx context.Context, userID uuid.UUID, title string) (*models.Project, error) {
	project := &models.Project{Title: title}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	member := &models.ProjectMember{ProjectID: project.ID, UserID: userID, IsAdmin: true}
	if err := s.members.Create(ctx, member); err != nil {
		// Roll the orphaned project back so the creator does not end up
		// locked out of it.
		_ = s.projects.Delete(ctx, project.ID)
		return nil, err
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return s.projects.ListByMember(ctx, userID)
}

func (s *projectService) Get(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, []models.ProjectMember, error) {
	if _, err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, nil, err
	}
	var project models.Project
	if err := s.projects.GetByID(ctx, projectID, &project); err != nil {
		return nil, nil, err
	}
	members, err := s.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return &project, members, nil
}

func (s *projectService) UpdateTitle(ctx context.Context, projectID, userID uuid.UUID, title string) (*models.Project, error) {
	if _, err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.projects.GetByID(ctx, projectID, &project); err != nil {
		return nil, err
	}
	project.Title = title
	if err := s.projects.Update(ctx, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *projectService) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	member, err := s.requireMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !member.IsAdmin {
		return appErr.New(appErr.CodeForbidden, "only project admins can delete a project")
	}
	return s.projects.DeleteCascade(ctx, projectID)
}

func (s *projectService) AddMember(ctx context.Context, projectID, actorID, newUserID uuid.UUID, isAdmin bool) (*models.ProjectMember, error) {
	if _, err := s.requireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.users.GetByID(ctx, newUserID, &user); err != nil {
		return nil, err
	}
	member := &models.ProjectMember{ProjectID: projectID, UserID: newUserID, IsAdmin: isAdmin}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *projectService) PostChat(ctx context.Context, projectID, userID uuid.UUID, content string) (*models.ChatMessage, error) {
	if _, err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	msg := &models.ChatMessage{ProjectID: projectID, UserID: userID, Content: content}
	if err := s.chats.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *projectService) ListChat(ctx context.Context, projectID, userID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.chats.ListByProject(ctx, projectID)
}

func (s *projectService) ListNodes(ctx context.Context, projectID, userID uuid.UUID) ([]models.MindMapNode, error) {
	if _, err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.nodes.ListByProject(ctx, projectID)
}

// UpdateNode edits a node's title or description in place. Edits are
// rejected while a generation cycle is in flight: the cycle replaces the
// whole node set, so an interleaved manual edit would be silently lost.
func (s *projectService) UpdateNode(ctx context.Context, projectID, userID uuid.UUID, nodeID string, title, description *string) (*models.MindMapNode, error) {
	if _, err := s.requireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.projects.GetByID(ctx, projectID, &project); err != nil {
		return nil, err
	}
	if project.IsGenerating {
		return nil, appErr.New(appErr.CodeConflict, "map generation in progress, node edits are locked")
	}

	fields := map[string]any{}
	if title != nil {
		if *title == "" {
			return nil, appErr.New(appErr.CodeInvalid, "node title cannot be empty")
		}
		fields["title"] = *title
	}
	if description != nil {
		fields["description"] = *description
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "nothing to update")
	}

	if err := s.nodes.UpdateFields(ctx, projectID, nodeID, fields); err != nil {
		return nil, err
	}
	var node models.MindMapNode
	if err := s.nodes.Get(ctx, projectID, nodeID, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// Recommend asks the model for improvement suggestions based on the current
// map and a recent chat window. It requires an existing map and never
// touches persisted state.
func (s *projectService) Recommend(ctx context.Context, projectID, userID uuid.UUID) (string, error) {
	if _, err := s.requireMember(ctx, projectID, userID); err != nil {
		return "", err
	}

	nodes, err := s.nodes.ListByProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", appErr.New(appErr.CodeInvalid, "no mind map to recommend on; generate one first")
	}

	msgs, err := s.chats.ListRecent(ctx, projectID, recommendChatWindow)
	if err != nil {
		return "", err
	}

	mapJSON, err := json.Marshal(nodes)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "encode mind map failed")
	}

	entries := make([]ai.ChatEntry, 0, len(msgs))
	names := make(map[uuid.UUID]string)
	for _, m := range msgs {
		name, ok := names[m.UserID]
		if !ok {
			var u models.User
			if err := s.users.GetByID(ctx, m.UserID, &u); err != nil {
				name = "(deleted user)"
			} else {
				name = u.Name
			}
			names[m.UserID] = name
		}
		entries = append(entries, ai.ChatEntry{ID: m.ID, Author: name, Content: m.Content, Timestamp: m.CreatedAt})
	}

	recCtx, cancel := context.WithTimeout(ctx, s.recommendTimeout)
	defer cancel()
	return s.gen.Recommend(recCtx, string(mapJSON), entries), nil
}

// requireMember returns the caller's membership or forbidden.
func (s *projectService) requireMember(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := s.members.Get(ctx, projectID, userID, &member); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeForbidden, "not a member of this project")
		}
		return nil, err
	}
	return &member, nil
}
