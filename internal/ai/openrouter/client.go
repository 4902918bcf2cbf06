package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/utils"
	"go.uber.org/zap"
)

const (
	ProviderName = "openrouter"

	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "meta-llama/llama-3.3-70b-instruct:free"

	defaultTitle        = "jobfit"
	defaultMaxLogLength = 200
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client implements ai.Completer against any OpenAI-compatible chat endpoint,
// OpenRouter by default.
type Client struct {
	chat      chatCompleter
	model     string
	retry     ai.RetryPolicy
	logger    *zap.Logger
	maxLogLen int
}

// Options tune a Client. Zero values fall back to the OpenRouter defaults.
type Options struct {
	BaseURL string
	Model   string
	// Referer and Title are sent as HTTP-Referer and X-Title, which OpenRouter
	// uses to attribute traffic.
	Referer      string
	Title        string
	Retry        ai.RetryPolicy
	MaxLogLength int
}

// New creates a Client for the configured endpoint.
func New(apiKey string, opts Options, log *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openrouter api key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = defaultTitle
	}
	cfg.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": strings.TrimSpace(opts.Referer),
				"X-Title":      title,
			},
		},
	}

	return newClient(openai.NewClientWithConfig(cfg), opts, log), nil
}

func newClient(chat chatCompleter, opts Options, log *zap.Logger) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Client{
		chat:      chat,
		model:     model,
		retry:     opts.Retry,
		logger:    logger.WithProvider(log, ProviderName, model),
		maxLogLen: maxLogLen,
	}
}

// Complete posts the chat and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []ai.Message, temperature float32, maxTokens int) (string, error) {
	if c == nil || c.chat == nil {
		return "", errors.New("openrouter client is not initialized")
	}

	if len(messages) == 0 {
		return "", errors.New("at least one message is required")
	}

	request := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(messages),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	c.logger.Debug("chat completion request",
		zap.Int("messages", len(messages)),
		zap.Float32("temperature", temperature),
		zap.Int("max_tokens", maxTokens),
	)

	return c.retry.Do(ctx, c.logger, func(ctx context.Context) (string, error) {
		resp, err := c.chat.CreateChatCompletion(ctx, request)
		if err != nil {
			return "", classify(err)
		}

		if len(resp.Choices) == 0 {
			return "", ai.ErrEmptyResponse
		}

		output := strings.TrimSpace(resp.Choices[0].Message.Content)
		if output == "" {
			return "", ai.ErrEmptyResponse
		}

		c.logger.Debug("chat completion response",
			zap.Int("response_length", utf8.RuneCountInString(output)),
			zap.String("response_preview", utils.TruncateForLog(output, c.maxLogLen)),
		)

		return output, nil
	})
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func toChatMessages(messages []ai.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case ai.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case ai.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return out
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("openrouter: %s: %w", apiErr.Message, ai.ErrTooManyRequests)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("openrouter: %w", ai.ErrTooManyRequests)
	}

	return fmt.Errorf("chat completion: %w", err)
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		if value == "" {
			continue
		}
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
