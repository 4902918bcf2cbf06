// Package filtering narrows the evaluation history shown by report list.
package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/jobfit/internal/interview"
	"go.uber.org/zap"
)

// Filter is one step of the pipeline. Disabled steps stay in the pipeline so
// their status can still be reported.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool
	Status() Status

	Apply(ctx context.Context, deps Deps, items []interview.EvaluationSummary) ([]interview.EvaluationSummary, Step, error)
}

// RoleLister is used by steps that match on role attributes.
type RoleLister interface {
	ListRoles(ctx context.Context) ([]interview.RoleProfile, error)
}

type Deps struct {
	Logger *zap.Logger
	Roles  RoleLister
}

// Step counts the evaluations a filter saw and kept.
type Step struct {
	Before int
	After  int
}

func (s Step) Dropped() int { return s.Before - s.After }

type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// Run applies the enabled filters in order. Item order is preserved.
func Run(ctx context.Context, deps Deps, steps []Filter, items []interview.EvaluationSummary) ([]interview.EvaluationSummary, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for _, f := range steps {
		if !f.IsEnabled() {
			log.Debug("filter disabled", zap.String("name", f.Name()))
			continue
		}

		kept, step, err := f.Apply(ctx, deps, items)
		if err != nil {
			return nil, fmt.Errorf("%s filter: %w", f.Name(), err)
		}

		log.Debug("filter step",
			zap.String("name", f.Name()),
			zap.Int("before", step.Before),
			zap.Int("dropped", step.Dropped()),
			zap.Int("after", step.After),
		)
		items = kept
	}

	return items, nil
}

func Describe(steps []Filter) []Status {
	out := make([]Status, len(steps))
	for i, f := range steps {
		out[i] = f.Status()
	}
	return out
}

func disable(steps []Filter, name, reason string) {
	for _, f := range steps {
		if f.Name() == name {
			f.Disable(reason)
		}
	}
}

func keep(items []interview.EvaluationSummary, match func(interview.EvaluationSummary) bool) ([]interview.EvaluationSummary, Step) {
	out := make([]interview.EvaluationSummary, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out, Step{Before: len(items), After: len(out)}
}
