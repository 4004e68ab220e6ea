package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mindweave/engine/internal/services"
	appErr "github.com/mindweave/engine/pkg/errors"
	"github.com/mindweave/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by tasks)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type mockSynchronizer struct {
	mock.Mock
}

func (m *mockSynchronizer) RequestGeneration(ctx context.Context, projectID uuid.UUID) (*services.AnalysisResult, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.(*services.AnalysisResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func newGenerateTask(t *testing.T, projectID uuid.UUID) *asynq.Task {
	t.Helper()
	task, err := NewGenerateTask(projectID)
	require.NoError(t, err)
	return task
}

func TestGenerateTaskHandler_HandleGenerate(t *testing.T) {
	projectID := uuid.New()

	t.Run("successful generation", func(t *testing.T) {
		sync := &mockSynchronizer{}
		handler := NewGenerateTaskHandler(sync)

		sync.On("RequestGeneration", mock.Anything, projectID).
			Return(&services.AnalysisResult{ProjectID: projectID, LastChatID: 12}, nil).Once()

		err := handler.HandleGenerate(context.Background(), newGenerateTask(t, projectID))
		require.NoError(t, err)
		mock.AssertExpectationsForObjects(t, sync)
	})

	t.Run("conflict is skipped without retry", func(t *testing.T) {
		sync := &mockSynchronizer{}
		handler := NewGenerateTaskHandler(sync)

		sync.On("RequestGeneration", mock.Anything, projectID).
			Return(nil, appErr.New(appErr.CodeConflict, "map generation already in progress")).Once()

		err := handler.HandleGenerate(context.Background(), newGenerateTask(t, projectID))
		require.NoError(t, err)
		mock.AssertExpectationsForObjects(t, sync)
	})

	t.Run("no new chat is skipped without retry", func(t *testing.T) {
		sync := &mockSynchronizer{}
		handler := NewGenerateTaskHandler(sync)

		sync.On("RequestGeneration", mock.Anything, projectID).
			Return(nil, appErr.New(appErr.CodeInvalid, "no new chat messages to analyze")).Once()

		err := handler.HandleGenerate(context.Background(), newGenerateTask(t, projectID))
		require.NoError(t, err)
		mock.AssertExpectationsForObjects(t, sync)
	})

	t.Run("malformed output fails terminally", func(t *testing.T) {
		sync := &mockSynchronizer{}
		handler := NewGenerateTaskHandler(sync)

		sync.On("RequestGeneration", mock.Anything, projectID).
			Return(nil, appErr.New(appErr.CodeUpstreamMalformed, "generation response is not valid JSON")).Once()

		err := handler.HandleGenerate(context.Background(), newGenerateTask(t, projectID))
		require.Error(t, err)
		require.ErrorIs(t, err, asynq.SkipRetry)
		mock.AssertExpectationsForObjects(t, sync)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		sync := &mockSynchronizer{}
		handler := NewGenerateTaskHandler(sync)

		upstream := appErr.New(appErr.CodeUpstreamUnavailable, "generation service unavailable")
		sync.On("RequestGeneration", mock.Anything, projectID).Return(nil, upstream).Once()

		err := handler.HandleGenerate(context.Background(), newGenerateTask(t, projectID))
		require.Error(t, err)
		require.False(t, errors.Is(err, asynq.SkipRetry))
		mock.AssertExpectationsForObjects(t, sync)
	})

	t.Run("invalid payload fails terminally", func(t *testing.T) {
		sync := &mockSynchronizer{}
		handler := NewGenerateTaskHandler(sync)

		payload, _ := json.Marshal(GeneratePayload{ProjectID: "not-a-uuid"})
		task := asynq.NewTask(TypeGenerateMindMap, payload)

		err := handler.HandleGenerate(context.Background(), task)
		require.Error(t, err)
		require.ErrorIs(t, err, asynq.SkipRetry)
		sync.AssertNotCalled(t, "RequestGeneration", mock.Anything, mock.Anything)
	})
}
