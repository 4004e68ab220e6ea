package ai

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	appErr "github.com/mindweave/engine/pkg/errors"
	"github.com/mindweave/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by the client)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// fakeModel returns canned responses or errors in sequence.
type fakeModel struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	content := ""
	if i < len(f.responses) {
		content = f.responses[i]
	}
	if content == "" {
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{}}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return resp.Choices[0].Content, nil
}

const validResponse = `{
	"nodes": [
		{"id": "core-1", "node_type": "core", "title": "Launch plan", "description": "Overall goal", "connections": [{"target_id": "major-1"}]},
		{"id": "major-1", "node_type": "major", "title": "Marketing", "description": "", "connections": []}
	],
	"links": []
}`

func TestGenerateMindMap_Success(t *testing.T) {
	c := newClientWithModel(&fakeModel{responses: []string{validResponse}}, "test-model")

	payload, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "let's plan"}})
	require.NoError(t, err)
	require.Len(t, payload.Nodes, 2)
	require.Equal(t, "core-1", payload.Nodes[0].ID)
	require.Equal(t, "major-1", payload.Nodes[0].Connections[0].TargetID)
}

func TestGenerateMindMap_StripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	c := newClientWithModel(&fakeModel{responses: []string{fenced}}, "test-model")

	payload, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "hi"}})
	require.NoError(t, err)
	require.Len(t, payload.Nodes, 2)
}

func TestGenerateMindMap_InvalidJSON(t *testing.T) {
	c := newClientWithModel(&fakeModel{responses: []string{"here is your mind map: sure!"}}, "test-model")

	_, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "hi"}})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstreamMalformed))
}

func TestGenerateMindMap_BadNodeType(t *testing.T) {
	bad := `{"nodes": [{"id": "n1", "node_type": "giant", "title": "x", "connections": []}], "links": []}`
	c := newClientWithModel(&fakeModel{responses: []string{bad}}, "test-model")

	_, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "hi"}})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstreamMalformed))
}

func TestGenerateMindMap_DanglingConnection(t *testing.T) {
	bad := `{"nodes": [{"id": "core-1", "node_type": "core", "title": "x", "connections": [{"target_id": "ghost"}]}], "links": []}`
	c := newClientWithModel(&fakeModel{responses: []string{bad}}, "test-model")

	_, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "hi"}})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstreamMalformed))
}

func TestGenerateMindMap_DuplicateNodeID(t *testing.T) {
	bad := `{"nodes": [
		{"id": "core-1", "node_type": "core", "title": "x", "connections": []},
		{"id": "core-1", "node_type": "major", "title": "y", "connections": []}
	], "links": []}`
	c := newClientWithModel(&fakeModel{responses: []string{bad}}, "test-model")

	_, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "hi"}})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstreamMalformed))
}

func TestGenerateMindMap_EmptyChoicesIsNotRetried(t *testing.T) {
	f := &fakeModel{responses: []string{""}}
	c := newClientWithModel(f, "test-model")

	_, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "hi"}})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstreamMalformed))
	require.Equal(t, 1, f.calls)
}

func TestGenerateMindMap_TransportErrorRetriesThenUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	f := &fakeModel{errs: []error{boom, boom, boom, boom}}
	c := newClientWithModel(f, "test-model")

	_, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "hi"}})
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeUpstreamUnavailable))
	require.Equal(t, maxTransportRetries+1, f.calls)
}

func TestGenerateMindMap_TransientErrorThenSuccess(t *testing.T) {
	f := &fakeModel{
		errs:      []error{errors.New("timeout"), nil},
		responses: []string{"", validResponse},
	}
	c := newClientWithModel(f, "test-model")

	payload, err := c.GenerateMindMap(context.Background(), nil, []ChatEntry{{ID: 1, Author: "ann", Content: "hi"}})
	require.NoError(t, err)
	require.Len(t, payload.Nodes, 2)
	require.Equal(t, 2, f.calls)
}

func TestRecommend_FallbackOnError(t *testing.T) {
	c := newClientWithModel(&fakeModel{errs: []error{errors.New("boom")}}, "test-model")

	got := c.Recommend(context.Background(), `[]`, nil)
	require.Equal(t, RecommendFallback, got)
}

func TestRecommend_ReturnsTrimmedText(t *testing.T) {
	c := newClientWithModel(&fakeModel{responses: []string{"  Add a node about budgets.\n"}}, "test-model")

	got := c.Recommend(context.Background(), `[]`, []ChatEntry{{ID: 9, Author: "bo", Content: "budget?"}})
	require.Equal(t, "Add a node about budgets.", got)
}
