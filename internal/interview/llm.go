package interview

import (
	"context"
	"unicode/utf8"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// caller is embedded by every component that talks to the model.
type caller struct {
	llm       ai.Completer
	logger    *zap.Logger
	maxLogLen int
}

func newCaller(llm ai.Completer, logger *zap.Logger, maxLogLen int) caller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}
	return caller{llm: llm, logger: logger, maxLogLen: maxLogLen}
}

func (c caller) call(ctx context.Context, step, system, prompt string, temperature float32, maxTokens int) (string, error) {
	c.logger.Debug(step+" request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.llm.Complete(ctx, []ai.Message{ai.System(system), ai.User(prompt)}, temperature, maxTokens)
	if err != nil {
		return "", err
	}

	c.logger.Debug(step+" response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)
	return raw, nil
}
