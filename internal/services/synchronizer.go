package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mindweave/engine/internal/ai"
	"github.com/mindweave/engine/internal/models"
	"github.com/mindweave/engine/internal/repository"
	appErr "github.com/mindweave/engine/pkg/errors"
	"github.com/mindweave/engine/pkg/logger"
)

// Generator is the part of the ai client the synchronizer depends on.
type Generator interface {
	GenerateMindMap(ctx context.Context, existing []ai.NodeSnapshot, msgs []ai.ChatEntry) (*ai.MindMapPayload, error)
	Recommend(ctx context.Context, mapJSON string, recent []ai.ChatEntry) string
}

// AnalysisResult describes one completed generation cycle.
type AnalysisResult struct {
	ProjectID  uuid.UUID            `json:"project_id"`
	LastChatID int64                `json:"last_chat_id"`
	ChatCount  int                  `json:"chat_count"`
	Nodes      []models.MindMapNode `json:"nodes"`
}

// Synchronizer folds new chat messages into the project's mind map.
//
// A cycle is exclusive per project: the persisted is_generating flag is
// acquired with a compare-and-set before any work happens, and every exit
// path releases it, either as part of the committing transaction or through
// an explicit clear on failure. The last_chat_id_processed watermark only
// advances inside the committing transaction, so a failed cycle leaves the
// same messages "new" for the next attempt.
type Synchronizer interface {
	RequestGeneration(ctx context.Context, projectID uuid.UUID) (*AnalysisResult, error)
}

type synchronizer struct {
	projects repository.ProjectRepository
	chats    repository.ChatRepository
	nodes    repository.NodeRepository
	users    repository.UserRepository
	gen      Generator
	timeout  time.Duration
}

var _ Synchronizer = (*synchronizer)(nil)

func NewSynchronizer(
	projects repository.ProjectRepository,
	chats repository.ChatRepository,
	nodes repository.NodeRepository,
	users repository.UserRepository,
	gen Generator,
	timeout time.Duration,
) Synchronizer {
	return &synchronizer{
		projects: projects,
		chats:    chats,
		nodes:    nodes,
		users:    users,
		gen:      gen,
		timeout:  timeout,
	}
}

func (s *synchronizer) RequestGeneration(ctx context.Context, projectID uuid.UUID) (result *AnalysisResult, err error) {
	var project models.Project
	if err := s.projects.GetByID(ctx, projectID, &project); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "project not found")
		}
		return nil, err
	}

	acquired, err := s.projects.BeginGeneration(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, appErr.New(appErr.CodeConflict, "map generation already in progress")
	}

	// Past this point the flag is held. It is released either by the
	// committing transaction in ReplaceForProject or by this deferred clear;
	// the clear runs on a detached context so cancellation of the request
	// cannot strand the flag.
	committed := false
	defer func() {
		if committed {
			return
		}
		if endErr := s.projects.EndGeneration(context.WithoutCancel(ctx), projectID); endErr != nil {
			logger.L().Error("failed to release generation flag",
				zap.String("project_id", projectID.String()),
				zap.Error(endErr),
			)
		}
	}()

	msgs, err := s.chats.ListAfter(ctx, projectID, project.LastChatIDProcessed)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "no new chat messages to analyze").
			WithMeta("last_chat_id_processed", project.LastChatIDProcessed)
	}
	lastChatID := msgs[len(msgs)-1].ID

	existing, err := s.nodes.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	entries, err := s.chatEntries(ctx, msgs)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	payload, err := s.gen.GenerateMindMap(genCtx, snapshotNodes(existing), entries)
	if err != nil {
		logger.L().Warn("generation cycle failed",
			zap.String("project_id", projectID.String()),
			zap.Int64("last_chat_id", lastChatID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return nil, err
	}

	nodes, err := buildNodes(projectID, payload.Nodes)
	if err != nil {
		return nil, err
	}

	if err := s.nodes.ReplaceForProject(ctx, projectID, nodes, lastChatID); err != nil {
		return nil, err
	}
	committed = true

	logger.L().Info("generation cycle committed",
		zap.String("project_id", projectID.String()),
		zap.Int64("last_chat_id", lastChatID),
		zap.Int("chat_count", len(msgs)),
		zap.Int("node_count", len(nodes)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &AnalysisResult{
		ProjectID:  projectID,
		LastChatID: lastChatID,
		ChatCount:  len(msgs),
		Nodes:      nodes,
	}, nil
}

// chatEntries resolves author names for the prompt. Deleted authors keep
// their messages under a placeholder name.
func (s *synchronizer) chatEntries(ctx context.Context, msgs []models.ChatMessage) ([]ai.ChatEntry, error) {
	names := make(map[uuid.UUID]string)
	entries := make([]ai.ChatEntry, 0, len(msgs))
	for _, m := range msgs {
		name, ok := names[m.UserID]
		if !ok {
			var u models.User
			if err := s.users.GetByID(ctx, m.UserID, &u); err != nil {
				if !appErr.IsCode(err, appErr.CodeNotFound) {
					return nil, err
				}
				name = "(deleted user)"
			} else {
				name = u.Name
			}
			names[m.UserID] = name
		}
		entries = append(entries, ai.ChatEntry{
			ID:        m.ID,
			Author:    name,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	return entries, nil
}

func snapshotNodes(nodes []models.MindMapNode) []ai.NodeSnapshot {
	out := make([]ai.NodeSnapshot, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ai.NodeSnapshot{ID: n.ID, Title: n.Title, Description: n.Description})
	}
	return out
}

func buildNodes(projectID uuid.UUID, generated []ai.GeneratedNode) ([]models.MindMapNode, error) {
	nodes := make([]models.MindMapNode, 0, len(generated))
	for _, g := range generated {
		conns := g.Connections
		if conns == nil {
			conns = []models.NodeConnection{}
		}
		raw, err := json.Marshal(conns)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "encode node connections failed")
		}
		nodes = append(nodes, models.MindMapNode{
			ID:          g.ID,
			ProjectID:   projectID,
			NodeType:    g.NodeType,
			Title:       g.Title,
			Description: g.Description,
			Connections: datatypes.JSON(raw),
		})
	}
	return nodes, nil
}
