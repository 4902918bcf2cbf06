package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/jobfit/internal/ai"
	"go.uber.org/zap"
)

const (
	questionsTemperature = 0.4
	questionsMaxTokens   = 600
	// mcq options make compiled slots longer than planned ones
	questionsTokensPerSlot = 120
)

// Compiler fills in question text for every slot of a plan in one model call.
type Compiler struct {
	caller
}

func NewCompiler(llm ai.Completer, logger *zap.Logger, maxLogLen int) *Compiler {
	return &Compiler{caller: newCaller(llm, logger, maxLogLen)}
}

// Compile returns a copy of plan with Question set on every slot. Only the
// question text is taken from the model; ids, types and focus stay as planned.
func (c *Compiler) Compile(ctx context.Context, plan Plan, role RoleProfile, prior Answers) (Plan, error) {
	if c.llm == nil {
		return nil, errors.New("compiler has no model configured")
	}
	if len(plan) == 0 {
		return nil, fmt.Errorf("%w: empty plan", ErrMalformedQuestionBatch)
	}

	prompt, err := buildQuestionsPrompt(plan, role, prior)
	if err != nil {
		return nil, err
	}

	maxTokens := questionsMaxTokens
	if want := len(plan) * questionsTokensPerSlot; want > maxTokens {
		maxTokens = want
	}

	raw, err := c.call(ctx, "questions", questionsSystemPrompt, prompt, questionsTemperature, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("compile questions: %w", err)
	}

	batch, err := ParseQuestionBatch(raw)
	if err != nil {
		return nil, err
	}

	return mergeQuestions(plan, batch)
}

func mergeQuestions(plan, batch Plan) (Plan, error) {
	if len(batch) != len(plan) {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", ErrMalformedQuestionBatch, len(plan), len(batch))
	}

	questions := make(map[int]string, len(batch))
	for _, slot := range batch {
		if _, dup := questions[slot.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformedQuestionBatch, slot.ID)
		}
		questions[slot.ID] = slot.Question
	}

	out := plan.Clone()
	for i, slot := range out {
		question, ok := questions[slot.ID]
		if !ok {
			return nil, fmt.Errorf("%w: missing id %d", ErrMalformedQuestionBatch, slot.ID)
		}
		if question == "" {
			return nil, fmt.Errorf("%w: empty question for id %d", ErrMalformedQuestionBatch, slot.ID)
		}
		out[i].Question = question
	}

	return out, nil
}
