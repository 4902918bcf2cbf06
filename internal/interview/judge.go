package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/jobfit/internal/ai"
	"go.uber.org/zap"
)

const (
	judgeTemperature = 0.1
	judgeMaxTokens   = 900
)

// Judge scores a full answer set against the rubric.
type Judge struct {
	caller
}

func NewJudge(llm ai.Completer, logger *zap.Logger, maxLogLen int) *Judge {
	return &Judge{caller: newCaller(llm, logger, maxLogLen)}
}

// Evaluate returns a complete Judgement. Unparsable model output degrades to
// the fallback judgement without an error; only transport failures are
// returned, together with the fallback so callers can still persist a result.
func (j *Judge) Evaluate(ctx context.Context, answers Answers) (Judgement, error) {
	if j.llm == nil {
		return FallbackJudgement(), errors.New("judge has no model configured")
	}

	prompt, err := buildJudgePrompt(answers)
	if err != nil {
		return FallbackJudgement(), err
	}

	raw, err := j.call(ctx, "judge", judgeSystemPrompt, prompt, judgeTemperature, judgeMaxTokens)
	if err != nil {
		return FallbackJudgement(), fmt.Errorf("evaluate answers: %w", err)
	}

	judgement, err := parseJudgement(raw)
	if err != nil {
		j.logger.Warn("judge response could not be parsed, scoring with fallback", zap.Error(err))
		return FallbackJudgement(), nil
	}

	j.logger.Info("answers scored", zap.Int("total", judgement.Total()))
	return judgement, nil
}
