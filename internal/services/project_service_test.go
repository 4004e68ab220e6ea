package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mindweave/engine/internal/models"
	appErr "github.com/mindweave/engine/pkg/errors"
)

type mockMemberRepository struct {
	mock.Mock
}

func (m *mockMemberRepository) Create(ctx context.Context, obj *models.ProjectMember) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockMemberRepository) GetByID(ctx context.Context, id any, dest *models.ProjectMember) error {
	args := m.Called(ctx, id, dest)
	return args.Error(0)
}

func (m *mockMemberRepository) Update(ctx context.Context, obj *models.ProjectMember) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockMemberRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMemberRepository) Get(ctx context.Context, projectID, userID uuid.UUID, dest *models.ProjectMember) error {
	args := m.Called(ctx, projectID, userID, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.ProjectMember)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockMemberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.ProjectMember), args.Error(1)
	}
	return nil, args.Error(1)
}

type projectFixture struct {
	projects *mockProjectRepository
	members  *mockMemberRepository
	chats    *mockChatRepository
	nodes    *mockNodeRepository
	users    *mockUserRepository
	gen      *mockGenerator
	svc      ProjectService
}

func newProjectFixture() *projectFixture {
	f := &projectFixture{
		projects: &mockProjectRepository{},
		members:  &mockMemberRepository{},
		chats:    &mockChatRepository{},
		nodes:    &mockNodeRepository{},
		users:    &mockUserRepository{},
		gen:      &mockGenerator{},
	}
	f.svc = NewProjectService(f.projects, f.members, f.chats, f.nodes, f.users, f.gen, 5*time.Second)
	return f
}

func (f *projectFixture) expectMember(projectID, userID uuid.UUID, isAdmin bool) {
	f.members.On("Get", mock.Anything, projectID, userID, &models.ProjectMember{}).
		Return(nil, &models.ProjectMember{ProjectID: projectID, UserID: userID, IsAdmin: isAdmin}).Once()
}

func TestProjectService_CreateMakesCreatorAdmin(t *testing.T) {
	userID := uuid.New()
	f := newProjectFixture()

	f.projects.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Project) bool {
		return p.Title == "launch plan"
	})).Return(nil).Once()
	f.members.On("Create", mock.Anything, mock.MatchedBy(func(m *models.ProjectMember) bool {
		return m.UserID == userID && m.IsAdmin
	})).Return(nil).Once()

	project, err := f.svc.Create(context.Background(), userID, "launch plan")
	require.NoError(t, err)
	require.Equal(t, "launch plan", project.Title)
	mock.AssertExpectationsForObjects(t, f.projects, f.members)
}

func TestProjectService_NonMemberForbidden(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	f := newProjectFixture()

	f.members.On("Get", mock.Anything, projectID, userID, &models.ProjectMember{}).
		Return(appErr.New(appErr.CodeNotFound, "membership not found"), nil).Once()

	_, err := f.svc.ListNodes(context.Background(), projectID, userID)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
}

func TestProjectService_DeleteRequiresAdmin(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	f := newProjectFixture()

	f.expectMember(projectID, userID, false)

	err := f.svc.Delete(context.Background(), projectID, userID)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	f.projects.AssertNotCalled(t, "DeleteCascade", mock.Anything, mock.Anything)
}

func TestProjectService_UpdateNodeLockedDuringGeneration(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	f := newProjectFixture()

	f.expectMember(projectID, userID, false)
	f.projects.On("GetByID", mock.Anything, projectID, &models.Project{}).
		Return(nil, &models.Project{ID: projectID, IsGenerating: true}).Once()

	title := "new title"
	_, err := f.svc.UpdateNode(context.Background(), projectID, userID, "core-1", &title, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
	f.nodes.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_UpdateNodeSuccess(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	f := newProjectFixture()

	f.expectMember(projectID, userID, false)
	f.projects.On("GetByID", mock.Anything, projectID, &models.Project{}).
		Return(nil, &models.Project{ID: projectID}).Once()

	title := "refined"
	f.nodes.On("UpdateFields", mock.Anything, projectID, "core-1", map[string]any{"title": "refined"}).
		Return(nil).Once()
	f.nodes.On("Get", mock.Anything, projectID, "core-1", &models.MindMapNode{}).
		Return(nil, &models.MindMapNode{ID: "core-1", ProjectID: projectID, Title: "refined", NodeType: models.NodeTypeCore}).Once()

	node, err := f.svc.UpdateNode(context.Background(), projectID, userID, "core-1", &title, nil)
	require.NoError(t, err)
	require.Equal(t, "refined", node.Title)
	mock.AssertExpectationsForObjects(t, f.nodes)
}

func TestProjectService_RecommendRequiresMap(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	f := newProjectFixture()

	f.expectMember(projectID, userID, false)
	f.nodes.On("ListByProject", mock.Anything, projectID).Return([]models.MindMapNode{}, nil).Once()

	_, err := f.svc.Recommend(context.Background(), projectID, userID)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	f.gen.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_RecommendPassesRecentChat(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()
	f := newProjectFixture()

	f.expectMember(projectID, userID, false)
	nodes := []models.MindMapNode{{ID: "core-1", ProjectID: projectID, NodeType: models.NodeTypeCore, Title: "Launch"}}
	f.nodes.On("ListByProject", mock.Anything, projectID).Return(nodes, nil).Once()
	f.chats.On("ListRecent", mock.Anything, projectID, recommendChatWindow).
		Return([]models.ChatMessage{{ID: 4, ProjectID: projectID, UserID: userID, Content: "budget?"}}, nil).Once()
	f.users.On("GetByID", mock.Anything, userID, &models.User{}).
		Return(nil, &models.User{ID: userID, Name: "ann"}).Once()
	f.gen.On("Recommend", mock.Anything, mock.Anything, mock.Anything).
		Return("Add a budget node.").Once()

	text, err := f.svc.Recommend(context.Background(), projectID, userID)
	require.NoError(t, err)
	require.Equal(t, "Add a budget node.", text)
	mock.AssertExpectationsForObjects(t, f.gen, f.chats)
}
