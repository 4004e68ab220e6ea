package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mindweave/engine/pkg/config"
	appErr "github.com/mindweave/engine/pkg/errors"
	"github.com/mindweave/engine/pkg/logger"
	"go.uber.org/zap"
)

// RecommendFallback is returned when the recommendation call fails for any
// reason. Recommendations are best-effort and never propagate errors.
const RecommendFallback = "The analysis service is temporarily unavailable. Please try again in a moment."

// transient transport failures are retried this many times with
// exponential backoff; content failures are never retried.
const maxTransportRetries = 3

// Client wraps the external generation model. It is the only component that
// talks to the LLM; everything it returns has already been parsed and
// schema-validated.
type Client struct {
	llm       llms.Model
	modelName string
	validate  *validator.Validate
}

// NewClient creates a generation client for the configured provider.
func NewClient(cfg *config.Config) (*Client, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case "ollama":
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return newClientWithModel(model, cfg.LLMModel), nil
}

func newClientWithModel(model llms.Model, name string) *Client {
	return &Client{
		llm:       model,
		modelName: name,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// GenerateMindMap sends the existing node snapshot and the new chat window
// to the model and returns the validated replacement map.
//
// Transport errors (including timeouts) are retried a small bounded number
// of times and then surfaced as upstream_unavailable. Content that is empty,
// unparseable, or schema-invalid is surfaced as upstream_malformed without
// retrying: those failures are deterministic for the same input.
func (c *Client) GenerateMindMap(ctx context.Context, existing []NodeSnapshot, msgs []ChatEntry) (*MindMapPayload, error) {
	prompt := buildMindMapPrompt(existing, msgs)
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, mindMapSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	raw, err := c.generateWithRetry(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return nil, err
	}

	payload, err := parseMindMapResponse(raw, c.validate)
	if err != nil {
		logger.L().Warn("generation response rejected",
			zap.String("model", c.modelName),
			zap.Int("response_len", len(raw)),
			zap.Error(err),
		)
		return nil, err
	}
	return payload, nil
}

// Recommend produces free-text improvement suggestions from the current map
// and a recent chat window. It has no persisted side effects and degrades to
// a fixed message on any failure.
func (c *Client) Recommend(ctx context.Context, mapJSON string, recent []ChatEntry) string {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, recommendSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildRecommendPrompt(mapJSON, recent)),
	}

	resp, err := c.llm.GenerateContent(ctx, messages, llms.WithMaxTokens(1024))
	if err != nil {
		logger.L().Warn("recommendation call failed", zap.String("model", c.modelName), zap.Error(err))
		return RecommendFallback
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return RecommendFallback
	}
	return strings.TrimSpace(resp.Choices[0].Content)
}

func (c *Client) generateWithRetry(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	var content string

	op := func() error {
		resp, err := c.llm.GenerateContent(ctx, messages, opts...)
		if err != nil {
			// Context expiry is not going to recover within this cycle.
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			// Empty choice set means blocked or filtered output, not a
			// transport problem; retrying the same input will not help.
			return backoff.Permanent(errEmptyResponse)
		}
		content = resp.Choices[0].Content
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxTransportRetries),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		if errors.Is(err, errEmptyResponse) {
			return "", appErr.Wrap(err, appErr.CodeUpstreamMalformed, "generation service returned empty content")
		}
		return "", appErr.Wrap(err, appErr.CodeUpstreamUnavailable, "generation service unavailable")
	}
	if strings.TrimSpace(content) == "" {
		return "", appErr.New(appErr.CodeUpstreamMalformed, "generation service returned empty content")
	}
	return content, nil
}

var errEmptyResponse = errors.New("empty model response")

// parseMindMapResponse strips common wrapping artifacts, unmarshals the JSON
// payload and validates it against the node schema. It does not attempt any
// semantic repair of malformed content.
func parseMindMapResponse(raw string, validate *validator.Validate) (*MindMapPayload, error) {
	cleaned := stripCodeFences(raw)

	var payload MindMapPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUpstreamMalformed, "generation response is not valid JSON")
	}

	if err := validate.Struct(&payload); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUpstreamMalformed, "generation response failed schema validation")
	}
	for i := range payload.Nodes {
		if err := validate.Struct(&payload.Nodes[i]); err != nil {
			return nil, appErr.Wrap(err, appErr.CodeUpstreamMalformed, "generation response node failed schema validation")
		}
	}

	if err := checkConnections(payload.Nodes); err != nil {
		return nil, err
	}
	return &payload, nil
}

// checkConnections rejects duplicate node ids and connection targets that do
// not appear as node ids in the same response.
func checkConnections(nodes []GeneratedNode) error {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if ids[n.ID] {
			return appErr.New(appErr.CodeUpstreamMalformed, "generation response contains duplicate node id "+n.ID)
		}
		ids[n.ID] = true
	}
	for _, n := range nodes {
		for _, c := range n.Connections {
			if !ids[c.TargetID] {
				return appErr.New(appErr.CodeUpstreamMalformed,
					fmt.Sprintf("node %s references unknown target %s", n.ID, c.TargetID))
			}
		}
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
