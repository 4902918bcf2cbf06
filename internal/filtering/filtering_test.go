package filtering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spigell/jobfit/internal/interview"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRoles struct {
	roles []interview.RoleProfile
	err   error
}

func (f fakeRoles) ListRoles(context.Context) ([]interview.RoleProfile, error) {
	return f.roles, f.err
}

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func history() []interview.EvaluationSummary {
	return []interview.EvaluationSummary{
		{ID: 5, RoleID: 1, CandidateName: "Ada Lovelace", CandidateEmail: "ada@example.com", Total: 80, CreatedAt: now.Add(-time.Hour)},
		{ID: 4, RoleID: 2, CandidateName: "Grace Hopper", CandidateEmail: "grace@navy.mil", Total: 55, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 3, RoleID: 1, CandidateName: "Linus", CandidateEmail: "linus@example.com", Total: 40, CreatedAt: now.Add(-72 * time.Hour)},
		{ID: 2, RoleID: 3, CandidateName: "", CandidateEmail: "", Total: 90, CreatedAt: now.Add(-240 * time.Hour)},
	}
}

func ids(items []interview.EvaluationSummary) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSteps(t *testing.T) {
	deps := Deps{
		Logger: zap.NewNop(),
		Roles: fakeRoles{roles: []interview.RoleProfile{
			{ID: 1, CompanyName: "Acme"},
			{ID: 2, CompanyName: "Globex"},
			{ID: 3, CompanyName: " acme "},
		}},
	}

	tests := []struct {
		name string
		step Filter
		want []int64
	}{
		{name: "roles", step: NewRoles([]int64{1, 3}), want: []int64{5, 3, 2}},
		{name: "company", step: NewCompany("ACME"), want: []int64{5, 3, 2}},
		{name: "min score", step: NewMinScore(55), want: []int64{5, 4, 2}},
		{name: "since", step: NewSince(72*time.Hour, func() time.Time { return now }), want: []int64{5, 4, 3}},
		{name: "candidate name", step: NewCandidate("hopper"), want: []int64{4}},
		{name: "candidate email", step: NewCandidate("@example.com"), want: []int64{5, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := history()
			got, step, err := tt.step.Apply(context.Background(), deps, items)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalIDs(ids(got), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, ids(got))
			}
			if step.Before != len(items) || step.After != len(tt.want) || step.Dropped() != len(items)-len(tt.want) {
				t.Fatalf("unexpected step counters: %+v", step)
			}
		})
	}
}

func TestRunChainsEnabledSteps(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	steps := New(Config{RoleIDs: []int64{1, 2}, MinScore: 50})

	got, err := Run(context.Background(), Deps{Logger: zap.New(core)}, steps, history())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalIDs(ids(got), []int64{5, 4}) {
		t.Fatalf("unexpected result %v", ids(got))
	}

	if n := observed.FilterMessage("filter step").Len(); n != 2 {
		t.Fatalf("expected 2 executed steps, got %d", n)
	}
	if n := observed.FilterMessage("filter disabled").Len(); n != 3 {
		t.Fatalf("expected 3 disabled steps, got %d", n)
	}
}

func TestRunWithoutFiltersKeepsEverything(t *testing.T) {
	got, err := Run(context.Background(), Deps{}, New(Config{}), history())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected all evaluations, got %d", len(got))
	}
}

func TestRunWrapsStepErrors(t *testing.T) {
	rolesErr := errors.New("db down")

	_, err := Run(context.Background(), Deps{Roles: fakeRoles{err: rolesErr}}, New(Config{Company: "Acme"}), history())
	if !errors.Is(err, rolesErr) {
		t.Fatalf("expected wrapped roles error, got %v", err)
	}

	_, err = Run(context.Background(), Deps{}, New(Config{Company: "Acme"}), history())
	if err == nil {
		t.Fatal("expected error without role storage")
	}

	_, err = Run(context.Background(), Deps{}, New(Config{MinScore: 101}), history())
	if err == nil {
		t.Fatal("expected error for unreachable minimum score")
	}
}

func TestDescribe(t *testing.T) {
	steps := New(Config{MinScore: 60, Candidate: "Ada"})
	statuses := Describe(steps)

	if len(statuses) != 5 {
		t.Fatalf("expected 5 statuses, got %d", len(statuses))
	}

	byName := map[string]Status{}
	for _, s := range statuses {
		byName[s.Name] = s
	}

	if s := byName["min_score"]; !s.Enabled || s.Details["min_score"] != "60" {
		t.Fatalf("unexpected min_score status: %+v", s)
	}
	if s := byName["candidate"]; !s.Enabled || s.Details["query"] != "ada" {
		t.Fatalf("unexpected candidate status: %+v", s)
	}
	if s := byName["roles"]; s.Enabled || s.Reason != notConfiguredMsg {
		t.Fatalf("unexpected roles status: %+v", s)
	}
}
