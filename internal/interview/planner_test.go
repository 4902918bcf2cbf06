package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPlannerSlicesCachedPlan(t *testing.T) {
	plans := newMemoryPlans()
	plans.plans[7] = Plan{
		{ID: 1, Type: SlotOpen, Focus: "a"},
		{ID: 2, Type: SlotMCQ, Focus: "b"},
		{ID: 3, Type: SlotScale, Focus: "c"},
		{ID: 4, Type: SlotOpen, Focus: "d"},
		{ID: 5, Type: SlotOpen, Focus: "e"},
	}
	llm := newFakeLLM()

	planner := NewPlanner(llm, plans, zap.NewNop(), 0)

	plan, err := planner.Generate(context.Background(), testRole(3), 3, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan) != 3 || plan[0].Focus != "a" || plan[2].Focus != "c" {
		t.Fatalf("expected first three cached slots, got %+v", plan)
	}

	if len(llm.calls) != 0 {
		t.Fatalf("expected no model calls, got %d", len(llm.calls))
	}
}

func TestPlannerSkeletonWithoutRoleID(t *testing.T) {
	role := testRole(5)
	role.ID = 0

	planner := NewPlanner(newFakeLLM(), newMemoryPlans(), zap.NewNop(), 0)

	plan, err := planner.Generate(context.Background(), role, 5, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(plan))
	}

	for i, slot := range plan {
		want := PlanSlot{ID: i + 1, Type: SlotOpen, Focus: fmt.Sprintf("generic_q%d", i+1)}
		if slot != want {
			t.Fatalf("slot %d: expected %+v, got %+v", i, want, slot)
		}
	}
}

func TestPlannerPadsShortCachedPlan(t *testing.T) {
	plans := newMemoryPlans()
	plans.plans[7] = Plan{{ID: 1, Type: SlotMCQ, Focus: "incidents"}}

	planner := NewPlanner(nil, plans, zap.NewNop(), 0)

	plan, err := planner.Generate(context.Background(), testRole(3), 3, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(plan))
	}
	if plan[0].Focus != "incidents" || plan[1].Focus != "generic_q2" || plan[2].Focus != "generic_q3" {
		t.Fatalf("unexpected padding: %+v", plan)
	}
}

func TestPlannerStoreErrorDegradesToSkeleton(t *testing.T) {
	plans := newMemoryPlans()
	plans.err = errors.New("database is down")

	core, observed := observer.New(zapcore.WarnLevel)
	planner := NewPlanner(nil, plans, zap.New(core), 0)

	plan, err := planner.Generate(context.Background(), testRole(2), 2, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan) != 2 || plan[0].Focus != "generic_q1" {
		t.Fatalf("expected skeleton plan, got %+v", plan)
	}

	if observed.Len() != 1 {
		t.Fatalf("expected one warning, got %d", observed.Len())
	}
}

func TestPlannerRejectsInvalidCount(t *testing.T) {
	planner := NewPlanner(nil, nil, zap.NewNop(), 0)

	for _, n := range []int{0, MaxQuestions + 1} {
		if _, err := planner.Generate(context.Background(), testRole(5), n, false); !errors.Is(err, ErrInvalidRole) {
			t.Fatalf("n=%d: expected ErrInvalidRole, got %v", n, err)
		}
	}
}

func TestPlannerModelPlanIsNormalizedAndCached(t *testing.T) {
	llm := newFakeLLM().on(planSystemPrompt,
		"```json\n[{\"id\": 4, \"type\": \"open\", \"focus\": \"ownership\"}, {\"id\": 9, \"type\": \"essay\", \"focus\": \"failure\"}, {\"id\": 2, \"type\": \"scale\", \"focus\": \"on_call\"}]\n```",
		nil)
	plans := newMemoryPlans()

	planner := NewPlanner(llm, plans, zap.NewNop(), 0)

	plan, err := planner.Generate(context.Background(), testRole(3), 3, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Plan{
		{ID: 1, Type: SlotOpen, Focus: "ownership"},
		{ID: 2, Type: SlotOpen, Focus: "failure"},
		{ID: 3, Type: SlotScale, Focus: "on_call"},
	}
	for i := range expected {
		if plan[i] != expected[i] {
			t.Fatalf("slot %d: expected %+v, got %+v", i, expected[i], plan[i])
		}
	}

	if plans.puts != 1 || len(plans.plans[7]) != 3 {
		t.Fatalf("expected plan to be cached once, puts=%d", plans.puts)
	}

	calls := llm.callsFor(planSystemPrompt)
	if len(calls) != 1 {
		t.Fatalf("expected 1 plan call, got %d", len(calls))
	}
	if calls[0].temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", calls[0].temperature)
	}
	if !strings.Contains(calls[0].prompt, "EXACTLY 3 objects") {
		t.Fatalf("prompt must demand the exact count: %s", calls[0].prompt)
	}
	if !strings.Contains(calls[0].prompt, `"company_name": "Acme"`) {
		t.Fatalf("prompt must embed the role profile: %s", calls[0].prompt)
	}
}

func TestPlannerModelPlanWrongLength(t *testing.T) {
	llm := newFakeLLM().on(planSystemPrompt, `[{"id": 1, "type": "open", "focus": "a"}]`, nil)
	plans := newMemoryPlans()

	planner := NewPlanner(llm, plans, zap.NewNop(), 0)

	_, err := planner.Generate(context.Background(), testRole(3), 3, true)
	if !errors.Is(err, ErrMalformedPlan) {
		t.Fatalf("expected ErrMalformedPlan, got %v", err)
	}

	if plans.puts != 0 {
		t.Fatalf("malformed plans must not be cached")
	}
}

func TestPlannerModelPlanUnsavedRole(t *testing.T) {
	llm := newFakeLLM().on(planSystemPrompt, `[{"id": 1, "type": "open", "focus": "a"}]`, nil)
	plans := newMemoryPlans()
	role := testRole(1)
	role.ID = 0

	planner := NewPlanner(llm, plans, zap.NewNop(), 0)

	if _, err := planner.Generate(context.Background(), role, 1, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plans.puts != 0 {
		t.Fatalf("plans for unsaved roles must not be cached")
	}
}

func TestPlannerModelTransportError(t *testing.T) {
	llm := newFakeLLM().on(planSystemPrompt, "", errTransport)

	planner := NewPlanner(llm, newMemoryPlans(), zap.NewNop(), 0)

	_, err := planner.Generate(context.Background(), testRole(2), 2, true)
	if !errors.Is(err, errTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
