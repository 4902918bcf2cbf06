package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/jobfit/internal/ai"
	"go.uber.org/zap"
)

const (
	planTemperature = 0.2
	planMaxTokens   = 200
	// each slot costs roughly this many tokens of JSON
	planTokensPerSlot = 40
)

// PlanStore keeps one plan per role. Writes replace the previous plan.
type PlanStore interface {
	GetPlan(ctx context.Context, roleID int64) (Plan, bool, error)
	PutPlan(ctx context.Context, roleID int64, plan Plan) error
}

// Planner produces the slot list for an interview.
type Planner struct {
	caller
	plans PlanStore
}

func NewPlanner(llm ai.Completer, plans PlanStore, logger *zap.Logger, maxLogLen int) *Planner {
	return &Planner{caller: newCaller(llm, logger, maxLogLen), plans: plans}
}

// Generate returns exactly n slots.
//
// Without the model it serves the cached plan for the role (truncated or
// padded to n), or n generic open slots when nothing is cached; this path
// never calls the model and never fails for a valid n.
//
// With the model it asks for a fresh plan, validates its shape and caches it
// for the role when the role has an id.
func (p *Planner) Generate(ctx context.Context, role RoleProfile, n int, useModel bool) (Plan, error) {
	if n < MinQuestions || n > MaxQuestions {
		return nil, fmt.Errorf("%w: number of questions must be between %d and %d, got %d", ErrInvalidRole, MinQuestions, MaxQuestions, n)
	}

	if !useModel {
		return p.fromCache(ctx, role.ID, n), nil
	}

	return p.fromModel(ctx, role, n)
}

func (p *Planner) fromCache(ctx context.Context, roleID int64, n int) Plan {
	if roleID == 0 || p.plans == nil {
		return SkeletonPlan(n)
	}

	cached, ok, err := p.plans.GetPlan(ctx, roleID)
	if err != nil {
		p.logger.Warn("reading cached plan failed, using generic plan", zap.Int64("role_id", roleID), zap.Error(err))
		return SkeletonPlan(n)
	}
	if !ok || len(cached) == 0 {
		return SkeletonPlan(n)
	}

	if len(cached) >= n {
		return cached[:n].Clone()
	}

	p.logger.Debug("cached plan shorter than requested, padding with generic slots",
		zap.Int64("role_id", roleID),
		zap.Int("cached", len(cached)),
		zap.Int("requested", n),
	)

	plan := make(Plan, 0, n)
	plan = append(plan, cached...)
	for i := len(cached) + 1; i <= n; i++ {
		plan = append(plan, genericSlot(i))
	}
	return plan
}

func (p *Planner) fromModel(ctx context.Context, role RoleProfile, n int) (Plan, error) {
	if p.llm == nil {
		return nil, errors.New("planner has no model configured")
	}

	prompt, err := buildPlanPrompt(role, n)
	if err != nil {
		return nil, err
	}

	maxTokens := planMaxTokens
	if want := n * planTokensPerSlot; want > maxTokens {
		maxTokens = want
	}

	raw, err := p.call(ctx, "plan", planSystemPrompt, prompt, planTemperature, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	plan, err := ParsePlan(raw)
	if err != nil {
		return nil, err
	}

	if len(plan) != n {
		return nil, fmt.Errorf("%w: expected %d slots, got %d", ErrMalformedPlan, n, len(plan))
	}

	plan = normalizePlan(plan)

	if role.ID != 0 && p.plans != nil {
		if err := p.plans.PutPlan(ctx, role.ID, plan); err != nil {
			return nil, fmt.Errorf("saving plan for role %d: %w", role.ID, err)
		}
	}

	p.logger.Info("interview plan generated", zap.Int64("role_id", role.ID), zap.Int("slots", len(plan)))
	return plan, nil
}

// SkeletonPlan returns n open slots with generic focus tags.
func SkeletonPlan(n int) Plan {
	plan := make(Plan, 0, n)
	for i := 1; i <= n; i++ {
		plan = append(plan, genericSlot(i))
	}
	return plan
}

func genericSlot(i int) PlanSlot {
	return PlanSlot{ID: i, Type: SlotOpen, Focus: fmt.Sprintf("generic_q%d", i)}
}

// normalizePlan renumbers ids in received order and coerces unknown types to open.
func normalizePlan(plan Plan) Plan {
	out := make(Plan, len(plan))
	for i, slot := range plan {
		slot.ID = i + 1
		if !slot.Type.Valid() {
			slot.Type = SlotOpen
		}
		if slot.Focus == "" {
			slot.Focus = fmt.Sprintf("generic_q%d", i+1)
		}
		slot.Question = ""
		out[i] = slot
	}
	return out
}
