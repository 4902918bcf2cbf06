package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/jobfit/internal/interview"
	"github.com/spigell/jobfit/internal/logger"
	"go.uber.org/zap"
)

// ErrRoleNotFound is returned when a role id does not exist.
var ErrRoleNotFound = errors.New("role not found")

// Roles is the role storage used by the service.
type Roles interface {
	CreateRole(ctx context.Context, role *interview.RoleProfile) (int64, error)
	UpdateRole(ctx context.Context, role interview.RoleProfile) error
	GetRole(ctx context.Context, id int64) (*interview.RoleProfile, bool, error)
	DeleteRole(ctx context.Context, id int64) error
}

// PlanInvalidator drops any cached copy of a role's plan.
type PlanInvalidator interface {
	Invalidate(ctx context.Context, roleID int64)
}

// Service manages role profiles and keeps their interview plans current.
type Service struct {
	roles       Roles
	planner     *interview.Planner
	invalidator PlanInvalidator
	logger      *zap.Logger
}

func New(roles Roles, planner *interview.Planner, invalidator PlanInvalidator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{roles: roles, planner: planner, invalidator: invalidator, logger: log}
}

// SaveResult reports the outcome of SaveRole. The role is always persisted
// when SaveRole returns no error; PlanErr is a warning about the plan only.
type SaveResult struct {
	Role    interview.RoleProfile
	Created bool
	Plan    interview.Plan
	PlanErr error
}

// SaveRole creates the role when it has no id, updates it otherwise, and then
// asks the model for a fresh plan. A failed plan never rolls the role back.
func (s *Service) SaveRole(ctx context.Context, role interview.RoleProfile) (SaveResult, error) {
	role.Normalize()
	if err := role.Validate(); err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{}
	if role.ID == 0 {
		if _, err := s.roles.CreateRole(ctx, &role); err != nil {
			return SaveResult{}, err
		}
		result.Created = true
	} else if err := s.roles.UpdateRole(ctx, role); err != nil {
		return SaveResult{}, err
	}
	result.Role = role

	log := logger.With(s.logger, zap.Int64(logger.FieldRole, role.ID))
	log.Info("role saved", zap.String("role", role.DisplayName()), zap.Bool("created", result.Created))

	plan, err := s.planner.Generate(ctx, role, role.NumQuestions, true)
	if err != nil {
		log.Warn("role saved but plan generation failed, the interview will use generic questions", zap.Error(err))
		result.PlanErr = err
		return result, nil
	}

	result.Plan = plan
	return result, nil
}

// RegeneratePlan replaces the stored plan of an existing role.
func (s *Service) RegeneratePlan(ctx context.Context, id int64) (interview.Plan, error) {
	role, err := s.Role(ctx, id)
	if err != nil {
		return nil, err
	}

	plan, err := s.planner.Generate(ctx, *role, role.NumQuestions, true)
	if err != nil {
		return nil, fmt.Errorf("regenerating plan for role %d: %w", id, err)
	}
	return plan, nil
}

// Role loads a role by id.
func (s *Service) Role(ctx context.Context, id int64) (*interview.RoleProfile, error) {
	role, ok, err := s.roles.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoleNotFound, id)
	}
	return role, nil
}

// DeleteRole removes the role together with its stored and cached plan.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if err := s.roles.DeleteRole(ctx, id); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, id)
	}

	s.logger.Info("role deleted", zap.Int64(logger.FieldRole, id))
	return nil
}
