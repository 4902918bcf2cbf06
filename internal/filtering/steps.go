package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/jobfit/internal/interview"
	"go.uber.org/zap"
)

const notConfiguredMsg = "not configured"

// Config selects which evaluations to keep. Zero values disable a step.
type Config struct {
	RoleIDs   []int64
	Company   string
	MinScore  int
	Since     time.Duration
	Candidate string
}

// New builds every step from cfg. Steps without a value are kept in the
// list but disabled, so Describe can still report them.
func New(cfg Config) []Filter {
	steps := []Filter{
		NewRoles(cfg.RoleIDs),
		NewCompany(cfg.Company),
		NewMinScore(cfg.MinScore),
		NewSince(cfg.Since, time.Now),
		NewCandidate(cfg.Candidate),
	}

	if len(cfg.RoleIDs) == 0 {
		disable(steps, "roles", notConfiguredMsg)
	}
	if strings.TrimSpace(cfg.Company) == "" {
		disable(steps, "company", notConfiguredMsg)
	}
	if cfg.MinScore <= 0 {
		disable(steps, "min_score", notConfiguredMsg)
	}
	if cfg.Since <= 0 {
		disable(steps, "since", notConfiguredMsg)
	}
	if strings.TrimSpace(cfg.Candidate) == "" {
		disable(steps, "candidate", notConfiguredMsg)
	}
	return steps
}

// toggle is embedded by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type rolesFilter struct {
	toggle
	ids map[int64]struct{}
}

// NewRoles keeps evaluations of the given roles.
func NewRoles(ids []int64) Filter {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &rolesFilter{ids: set}
}

func (f *rolesFilter) Name() string { return "roles" }

func (f *rolesFilter) Apply(_ context.Context, _ Deps, items []interview.EvaluationSummary) ([]interview.EvaluationSummary, Step, error) {
	out, step := keep(items, func(s interview.EvaluationSummary) bool {
		_, ok := f.ids[s.RoleID]
		return ok
	})
	return out, step, nil
}

func (f *rolesFilter) Status() Status {
	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	details := map[string]string{}
	if len(ids) > 0 {
		details["role_ids"] = strings.Join(ids, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type companyFilter struct {
	toggle
	company string
}

// NewCompany keeps evaluations whose role belongs to company (case-insensitive).
// Evaluations of deleted roles are dropped.
func NewCompany(company string) Filter {
	return &companyFilter{company: strings.TrimSpace(company)}
}

func (f *companyFilter) Name() string { return "company" }

func (f *companyFilter) Apply(ctx context.Context, deps Deps, items []interview.EvaluationSummary) ([]interview.EvaluationSummary, Step, error) {
	if deps.Roles == nil {
		return items, Step{}, fmt.Errorf("role storage is required")
	}

	roles, err := deps.Roles.ListRoles(ctx)
	if err != nil {
		return items, Step{}, fmt.Errorf("listing roles: %w", err)
	}

	matching := make(map[int64]struct{})
	for _, role := range roles {
		if strings.EqualFold(strings.TrimSpace(role.CompanyName), f.company) {
			matching[role.ID] = struct{}{}
		}
	}

	if deps.Logger != nil {
		deps.Logger.Debug("roles matching company", zap.String("company", f.company), zap.Int("roles", len(matching)))
	}

	out, step := keep(items, func(s interview.EvaluationSummary) bool {
		_, ok := matching[s.RoleID]
		return ok
	})
	return out, step, nil
}

func (f *companyFilter) Status() Status {
	details := map[string]string{}
	if f.company != "" {
		details["company"] = f.company
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type minScoreFilter struct {
	toggle
	min int
}

// NewMinScore keeps evaluations with a total of at least score.
func NewMinScore(score int) Filter {
	return &minScoreFilter{min: score}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Apply(_ context.Context, _ Deps, items []interview.EvaluationSummary) ([]interview.EvaluationSummary, Step, error) {
	if f.min > interview.MaxTotalScore {
		return items, Step{}, fmt.Errorf("minimum score %d is above the maximum of %d", f.min, interview.MaxTotalScore)
	}

	out, step := keep(items, func(s interview.EvaluationSummary) bool {
		return s.Total >= f.min
	})
	return out, step, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.Itoa(f.min)},
	}
}

type sinceFilter struct {
	toggle
	window time.Duration
	now    func() time.Time
}

// NewSince keeps evaluations created within window before now.
func NewSince(window time.Duration, now func() time.Time) Filter {
	if now == nil {
		now = time.Now
	}
	return &sinceFilter{window: window, now: now}
}

func (f *sinceFilter) Name() string { return "since" }

func (f *sinceFilter) Apply(_ context.Context, _ Deps, items []interview.EvaluationSummary) ([]interview.EvaluationSummary, Step, error) {
	cutoff := f.now().Add(-f.window)
	out, step := keep(items, func(s interview.EvaluationSummary) bool {
		return !s.CreatedAt.Before(cutoff)
	})
	return out, step, nil
}

func (f *sinceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"window": f.window.String()},
	}
}

type candidateFilter struct {
	toggle
	query string
}

// NewCandidate keeps evaluations whose candidate name or email contains query.
func NewCandidate(query string) Filter {
	return &candidateFilter{query: strings.ToLower(strings.TrimSpace(query))}
}

func (f *candidateFilter) Name() string { return "candidate" }

func (f *candidateFilter) Apply(_ context.Context, _ Deps, items []interview.EvaluationSummary) ([]interview.EvaluationSummary, Step, error) {
	out, step := keep(items, func(s interview.EvaluationSummary) bool {
		return strings.Contains(strings.ToLower(s.CandidateName), f.query) ||
			strings.Contains(strings.ToLower(s.CandidateEmail), f.query)
	})
	return out, step, nil
}

func (f *candidateFilter) Status() Status {
	details := map[string]string{}
	if f.query != "" {
		details["query"] = f.query
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
