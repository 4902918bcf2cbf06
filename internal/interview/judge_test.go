package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestJudgeEvaluate(t *testing.T) {
	llm := newFakeLLM().on(judgeSystemPrompt, validJudgeResponse, nil)
	judge := NewJudge(llm, zap.NewNop(), 0)

	j, err := judge.Evaluate(context.Background(), Answers{"ownership": "I led the migration."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if j.Total() != 60 {
		t.Fatalf("expected total 60, got %d", j.Total())
	}

	calls := llm.callsFor(judgeSystemPrompt)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}

	call := calls[0]
	if call.temperature != 0.1 || call.maxTokens != 900 {
		t.Fatalf("unexpected sampling params: %v / %d", call.temperature, call.maxTokens)
	}

	for _, c := range Criteria() {
		if !strings.Contains(call.prompt, c.String()+": "+c.Definition()) {
			t.Fatalf("prompt must define %s", c)
		}
	}

	for _, fragment := range []string{
		"0, 5, 10, 15, 20",
		"prefer 5 instead of 0",
		`"ownership": "I led the migration."`,
		`"Uniqueness signal": "short justification"`,
	} {
		if !strings.Contains(call.prompt, fragment) {
			t.Fatalf("prompt is missing %q:\n%s", fragment, call.prompt)
		}
	}
}

func TestJudgeMalformedResponse(t *testing.T) {
	llm := newFakeLLM().on(judgeSystemPrompt, "The candidate is great!", nil)
	judge := NewJudge(llm, zap.NewNop(), 0)

	j, err := judge.Evaluate(context.Background(), Answers{"a": "b"})
	if err != nil {
		t.Fatalf("parse failures must not surface, got %v", err)
	}

	if j != FallbackJudgement() {
		t.Fatalf("expected fallback judgement, got %+v", j)
	}
}

func TestJudgeTransportError(t *testing.T) {
	llm := newFakeLLM().on(judgeSystemPrompt, "", errTransport)
	judge := NewJudge(llm, zap.NewNop(), 0)

	j, err := judge.Evaluate(context.Background(), Answers{"a": "b"})
	if !errors.Is(err, errTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	if j != FallbackJudgement() {
		t.Fatalf("expected fallback judgement alongside the error")
	}
}
