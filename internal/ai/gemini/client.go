package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	ProviderName = "gemini"

	defaultModel        = "gemini-2.5-flash"
	defaultMaxLogLength = 200
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements ai.Completer on top of the Google GenAI client.
type Generator struct {
	models    contentGenerator
	model     string
	retry     ai.RetryPolicy
	logger    *zap.Logger
	maxLogLen int
}

// Options tune a Generator. Zero values fall back to defaults.
type Options struct {
	Model        string
	Retry        ai.RetryPolicy
	MaxLogLength int
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string, opts Options, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, opts, log), nil
}

func newGenerator(models contentGenerator, opts Options, log *zap.Logger) *Generator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Generator{
		models:    models,
		model:     model,
		retry:     opts.Retry,
		logger:    logger.WithProvider(log, ProviderName, model),
		maxLogLen: maxLogLen,
	}
}

// Complete sends the chat to Gemini. System messages become the system
// instruction; assistant turns are sent with the model role.
func (g *Generator) Complete(ctx context.Context, messages []ai.Message, temperature float32, maxTokens int) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	contents, system := toContents(messages)
	if len(contents) == 0 {
		return "", errors.New("at least one user message is required")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("messages", len(contents)),
		zap.Float32("temperature", temperature),
		zap.Int("max_tokens", maxTokens),
	)

	return g.retry.Do(ctx, g.logger, func(ctx context.Context) (string, error) {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			return "", classify(err)
		}

		output := responseText(resp)
		if output == "" {
			return "", ai.ErrEmptyResponse
		}

		g.logger.Debug("gemini generate content response",
			zap.Int("response_length", utf8.RuneCountInString(output)),
			zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
		)

		return output, nil
	})
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func toContents(messages []ai.Message) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			continue
		}

		switch msg.Role {
		case ai.RoleSystem:
			system = append(system, text)
		case ai.RoleAssistant:
			contents = append(contents, &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{Text: text}}})
		default:
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{{Text: text}}})
		}
	}

	return contents, strings.Join(system, "\n\n")
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// only the first candidate with text is used
		if builder.Len() > 0 {
			break
		}
	}

	return strings.TrimSpace(builder.String())
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("gemini %s: %w", apiErr.Status, ai.ErrTooManyRequests)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("gemini %s: %w", apiErrPtr.Status, ai.ErrTooManyRequests)
	}

	return fmt.Errorf("generate content: %w", err)
}
