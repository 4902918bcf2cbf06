package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spigell/jobfit/internal/ai"
)

type llmCall struct {
	system      string
	prompt      string
	temperature float32
	maxTokens   int
}

// fakeLLM answers by system prompt. Each queue is consumed in order.
type fakeLLM struct {
	mu        sync.Mutex
	calls     []llmCall
	responses map[string][]fakeReply
}

type fakeReply struct {
	text string
	err  error
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{responses: map[string][]fakeReply{}}
}

func (f *fakeLLM) on(system, text string, err error) *fakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[system] = append(f.responses[system], fakeReply{text: text, err: err})
	return f
}

func (f *fakeLLM) Complete(_ context.Context, messages []ai.Message, temperature float32, maxTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var call llmCall
	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleSystem:
			call.system = msg.Content
		case ai.RoleUser:
			call.prompt = msg.Content
		}
	}
	call.temperature = temperature
	call.maxTokens = maxTokens
	f.calls = append(f.calls, call)

	queue := f.responses[call.system]
	if len(queue) == 0 {
		return "", fmt.Errorf("unexpected call with system prompt %q", call.system)
	}
	f.responses[call.system] = queue[1:]
	return queue[0].text, queue[0].err
}

func (f *fakeLLM) callsFor(system string) []llmCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []llmCall
	for _, c := range f.calls {
		if c.system == system {
			out = append(out, c)
		}
	}
	return out
}

type memoryPlans struct {
	plans map[int64]Plan
	puts  int
	err   error
}

func newMemoryPlans() *memoryPlans {
	return &memoryPlans{plans: map[int64]Plan{}}
}

func (m *memoryPlans) GetPlan(_ context.Context, roleID int64) (Plan, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	plan, ok := m.plans[roleID]
	return plan.Clone(), ok, nil
}

func (m *memoryPlans) PutPlan(_ context.Context, roleID int64, plan Plan) error {
	if m.err != nil {
		return m.err
	}
	m.puts++
	m.plans[roleID] = plan.Clone()
	return nil
}

type memoryEvaluations struct {
	saved []*Evaluation
	err   error
}

func (m *memoryEvaluations) SaveEvaluation(_ context.Context, evaluation *Evaluation) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	copied := *evaluation
	m.saved = append(m.saved, &copied)
	return int64(len(m.saved)), nil
}

type recordingNotifier struct {
	events []*Evaluation
	err    error
}

func (r *recordingNotifier) EvaluationCreated(_ context.Context, evaluation *Evaluation) error {
	r.events = append(r.events, evaluation)
	return r.err
}

var errTransport = errors.New("connection reset")

func testRole(n int) RoleProfile {
	return RoleProfile{
		ID:           7,
		CompanyName:  "Acme",
		Title:        "Platform Engineer",
		Context:      "Small platform team running Kubernetes.",
		MinYearsExp:  3,
		RequiredTech: "Go, Kubernetes",
		Degree:       DegreeNone,
		NumQuestions: n,
	}
}

// batchFor answers a compile request for plan with one question per slot.
func batchFor(plan Plan) string {
	var b strings.Builder
	b.WriteString("[")
	for i, slot := range plan {
		if i > 0 {
			b.WriteString(",")
		}
		question := fmt.Sprintf("Question about %s?", slot.Focus)
		switch slot.Type {
		case SlotMCQ:
			question = "How do you handle an outage?\nA) Roll back\nB) Hotfix forward\nC) Wait"
		case SlotScale:
			question = "How comfortable are you with on-call (1 = not at all, 10 = fully)?"
		}
		fmt.Fprintf(&b, `{"id": %d, "type": %q, "focus": %q, "question": %q}`, slot.ID, slot.Type, slot.Focus, question)
	}
	b.WriteString("]")
	return b.String()
}

const validJudgeResponse = "```json\n" + `{
  "scores": {
    "Evidence density": 15,
    "Decision quality": 10,
    "Failure intelligence": 5,
    "Context translation": 20,
    "Uniqueness signal": 10
  },
  "reasons": {
    "Evidence density": "Concrete metrics.",
    "Decision quality": "Some trade-offs.",
    "Failure intelligence": "Brief reflection.",
    "Context translation": "Clear for non-technical readers.",
    "Uniqueness signal": "Recognisable style."
  },
  "summary": "Works from evidence. Explains decisions. Learns slowly from failure."
}` + "\n```"
