package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spigell/jobfit/internal/interview"
)

// Memory is a Gateway that keeps everything in process memory.
type Memory struct {
	mu          sync.RWMutex
	roles       map[int64]interview.RoleProfile
	plans       map[int64]interview.Plan
	evaluations map[int64]interview.Evaluation
	lastRole    int64
	lastEval    int64
	now         func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		roles:       map[int64]interview.RoleProfile{},
		plans:       map[int64]interview.Plan{},
		evaluations: map[int64]interview.Evaluation{},
		now:         time.Now,
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateRole(_ context.Context, role *interview.RoleProfile) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRole++
	role.ID = m.lastRole
	m.roles[role.ID] = *role
	return role.ID, nil
}

func (m *Memory) UpdateRole(_ context.Context, role interview.RoleProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.roles[role.ID]; !ok {
		return fmt.Errorf("role %d: %w", role.ID, ErrNotFound)
	}
	m.roles[role.ID] = role
	return nil
}

func (m *Memory) ListRoles(_ context.Context) ([]interview.RoleProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]interview.RoleProfile, 0, len(m.roles))
	for _, role := range m.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) GetRole(_ context.Context, id int64) (*interview.RoleProfile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.roles[id]
	if !ok {
		return nil, false, nil
	}
	return &role, true, nil
}

func (m *Memory) DeleteRole(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.plans, id)
	if _, ok := m.roles[id]; !ok {
		return fmt.Errorf("role %d: %w", id, ErrNotFound)
	}
	delete(m.roles, id)
	return nil
}

func (m *Memory) GetPlan(_ context.Context, roleID int64) (interview.Plan, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plan, ok := m.plans[roleID]
	if !ok || len(plan) == 0 {
		return nil, false, nil
	}
	return plan.Clone(), true, nil
}

func (m *Memory) PutPlan(_ context.Context, roleID int64, plan interview.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plans[roleID] = plan.Clone()
	return nil
}

func (m *Memory) SaveEvaluation(_ context.Context, evaluation *interview.Evaluation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastEval++
	stored := *evaluation
	stored.ID = m.lastEval
	stored.Answers = evaluation.Answers.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now().UTC()
	}
	m.evaluations[stored.ID] = stored
	return stored.ID, nil
}

func (m *Memory) ListEvaluations(_ context.Context) ([]interview.EvaluationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]interview.EvaluationSummary, 0, len(m.evaluations))
	for _, e := range m.evaluations {
		out = append(out, interview.EvaluationSummary{
			ID:             e.ID,
			RoleID:         e.RoleID,
			CandidateName:  e.Candidate.Name,
			CandidateEmail: e.Candidate.Email,
			CandidatePhone: e.Candidate.Phone,
			Total:          e.Total(),
			CreatedAt:      e.CreatedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) GetEvaluation(_ context.Context, id int64) (*interview.Evaluation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.evaluations[id]
	if !ok {
		return nil, false, nil
	}
	e.Answers = e.Answers.Clone()
	return &e, true, nil
}
