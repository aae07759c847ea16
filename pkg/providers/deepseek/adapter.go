// Package deepseek generates replies through DeepSeek's OpenAI-compatible
// chat completions endpoint.
package deepseek

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/avaaz-ai/avaaz/pkg/errorsx"
	"github.com/avaaz-ai/avaaz/pkg/llm"
	"github.com/avaaz-ai/avaaz/pkg/logging"
	"github.com/avaaz-ai/avaaz/pkg/resilience"
)

const DefaultBaseURL = "https://api.deepseek.com/v1"

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

type Adapter struct {
	cfg    Config
	client openai.Client
	logger *slog.Logger
}

func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing deepseek api key")
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)
	return &Adapter{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(slog.Default(), "deepseek"),
	}, nil
}

func (a *Adapter) Name() string { return "deepseek" }

func (a *Adapter) Complete(ctx context.Context, req llm.Request) (llm.Reply, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserText),
		},
		Model:       openai.ChatModel(a.cfg.Model),
		Temperature: openai.Float(a.cfg.Temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			a.logger.Warn("rate limit exceeded", slog.String("model", a.cfg.Model))
			return llm.Reply{}, errorsx.Wrap(
				resilience.RateLimitError{Provider: "deepseek", Message: apiErr.Error()},
				errorsx.ReasonGenRateLimit)
		}
		return llm.Reply{}, errorsx.Wrap(err, errorsx.ReasonGeneration)
	}
	if len(resp.Choices) == 0 {
		return llm.Reply{}, errorsx.New(errorsx.ReasonGeneration, "no choices in response")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return llm.Reply{}, errorsx.New(errorsx.ReasonGeneration, "empty message content")
	}

	reply := llm.Reply{
		Text: content,
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	a.logger.Debug("completion received",
		slog.String("model", a.cfg.Model),
		slog.Int("total_tokens", reply.Usage.TotalTokens))
	return reply, nil
}

var _ llm.GenerationAdapter = (*Adapter)(nil)
