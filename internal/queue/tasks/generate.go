package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/mindweave/engine/internal/services"
	appErr "github.com/mindweave/engine/pkg/errors"
	"github.com/mindweave/engine/pkg/logger"
)

// TypeGenerateMindMap is the asynq task type for background map refreshes.
const TypeGenerateMindMap = "mindmap:generate"

// GeneratePayload is the task payload for mind-map generation tasks.
type GeneratePayload struct {
	ProjectID string `json:"project_id"`
}

// NewGenerateTask builds an enqueueable generation task for a project.
func NewGenerateTask(projectID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(GeneratePayload{ProjectID: projectID.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal generate payload: %w", err)
	}
	return asynq.NewTask(TypeGenerateMindMap, payload), nil
}

// GenerateTaskHandler runs generation cycles from the queue.
type GenerateTaskHandler struct {
	sync services.Synchronizer
}

func NewGenerateTaskHandler(sync services.Synchronizer) *GenerateTaskHandler {
	return &GenerateTaskHandler{sync: sync}
}

// HandleGenerate delegates to the synchronizer. Terminal outcomes (another
// cycle in flight, nothing new to analyze, malformed model output) are
// swallowed so asynq does not retry them; transient failures are returned
// and retried by the queue.
func (h *GenerateTaskHandler) HandleGenerate(ctx context.Context, t *asynq.Task) error {
	var p GeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid generate task payload", zap.Error(err))
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	projectID, err := uuid.Parse(p.ProjectID)
	if err != nil {
		logger.L().Error("invalid project id in generate task", zap.Error(err))
		return fmt.Errorf("parse project id: %v: %w", err, asynq.SkipRetry)
	}

	result, err := h.sync.RequestGeneration(ctx, projectID)
	if err != nil {
		switch {
		case appErr.IsCode(err, appErr.CodeConflict):
			logger.L().Info("generation already in progress, skipping task",
				zap.String("project_id", projectID.String()))
			return nil
		case appErr.IsCode(err, appErr.CodeInvalid):
			logger.L().Info("no new chat to analyze, skipping task",
				zap.String("project_id", projectID.String()))
			return nil
		case appErr.IsCode(err, appErr.CodeNotFound),
			appErr.IsCode(err, appErr.CodeUpstreamMalformed):
			logger.L().Warn("generation task failed terminally",
				zap.String("project_id", projectID.String()),
				zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		default:
			logger.L().Warn("generation task failed, will retry",
				zap.String("project_id", projectID.String()),
				zap.Error(err))
			return err
		}
	}

	logger.L().Info("generation task completed",
		zap.String("project_id", projectID.String()),
		zap.Int64("last_chat_id", result.LastChatID),
		zap.Int("node_count", len(result.Nodes)),
	)
	return nil
}
