package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/spigell/jobfit/internal/interview"
	"go.uber.org/zap"
)

const DefaultPlanTTL = 24 * time.Hour

// Plans is a read-through cache in front of a plan store. The store stays the
// source of truth: cache failures are logged and never returned.
type Plans struct {
	store  interview.PlanStore
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewPlans(store interview.PlanStore, cache Cache, ttl time.Duration, log *zap.Logger) *Plans {
	if cache == nil {
		cache = Dummy{}
	}
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Plans{store: store, cache: cache, ttl: ttl, logger: log}
}

func planKey(roleID int64) string {
	return "plan:" + strconv.FormatInt(roleID, 10)
}

func (p *Plans) GetPlan(ctx context.Context, roleID int64) (interview.Plan, bool, error) {
	var cached interview.Plan
	hit, err := p.cache.GetJSON(ctx, planKey(roleID), &cached)
	if err != nil {
		p.logger.Warn("reading cached plan failed", zap.Int64("role_id", roleID), zap.Error(err))
	}
	if hit && len(cached) > 0 {
		p.logger.Debug("plan cache hit", zap.Int64("role_id", roleID))
		return cached, true, nil
	}

	plan, ok, err := p.store.GetPlan(ctx, roleID)
	if err != nil || !ok {
		return plan, ok, err
	}

	if err := p.cache.SetJSON(ctx, planKey(roleID), plan, p.ttl); err != nil {
		p.logger.Warn("caching plan failed", zap.Int64("role_id", roleID), zap.Error(err))
	}
	return plan, true, nil
}

// PutPlan writes the store first and then overwrites the cached copy.
func (p *Plans) PutPlan(ctx context.Context, roleID int64, plan interview.Plan) error {
	if err := p.store.PutPlan(ctx, roleID, plan); err != nil {
		return err
	}

	if err := p.cache.SetJSON(ctx, planKey(roleID), plan, p.ttl); err != nil {
		p.logger.Warn("caching plan failed, dropping cached copy", zap.Int64("role_id", roleID), zap.Error(err))
		p.Invalidate(ctx, roleID)
	}
	return nil
}

// Invalidate drops the cached plan of a role.
func (p *Plans) Invalidate(ctx context.Context, roleID int64) {
	if err := p.cache.Del(ctx, planKey(roleID)); err != nil {
		p.logger.Warn("dropping cached plan failed", zap.Int64("role_id", roleID), zap.Error(err))
	}
}
