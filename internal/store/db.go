package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/jobfit/internal/interview"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DB is the gorm backed Gateway used with mysql and postgres.
type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Migrate creates or updates the tables.
func (s *DB) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&roleRow{}, &planRow{}, &evaluationRow{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func (s *DB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *DB) CreateRole(ctx context.Context, role *interview.RoleProfile) (int64, error) {
	row := newRoleRow(*role)
	row.ID = 0

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("creating role: %w", err)
	}

	role.ID = row.ID
	return row.ID, nil
}

func (s *DB) UpdateRole(ctx context.Context, role interview.RoleProfile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing roleRow
		err := tx.Select("id").Take(&existing, role.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("role %d: %w", role.ID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		row := newRoleRow(role)
		return tx.Model(&roleRow{ID: role.ID}).
			Select("*").
			Omit("id", "created_at").
			Updates(&row).Error
	})
}

func (s *DB) ListRoles(ctx context.Context) ([]interview.RoleProfile, error) {
	var rows []roleRow
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}

	out := make([]interview.RoleProfile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.profile())
	}
	return out, nil
}

func (s *DB) GetRole(ctx context.Context, id int64) (*interview.RoleProfile, bool, error) {
	var row roleRow
	err := s.db.WithContext(ctx).Take(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading role %d: %w", id, err)
	}

	role := row.profile()
	return &role, true, nil
}

func (s *DB) DeleteRole(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&planRow{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&roleRow{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("role %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (s *DB) GetPlan(ctx context.Context, roleID int64) (interview.Plan, bool, error) {
	var row planRow
	err := s.db.WithContext(ctx).Where("role_id = ?", roleID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading plan for role %d: %w", roleID, err)
	}

	plan := row.Slots.Data()
	if len(plan) == 0 {
		return nil, false, nil
	}
	return plan.Clone(), true, nil
}

// PutPlan replaces the plan of a role. Concurrent writers: last one wins.
func (s *DB) PutPlan(ctx context.Context, roleID int64, plan interview.Plan) error {
	row := planRow{
		RoleID:    roleID,
		Slots:     datatypes.NewJSONType(plan.Clone()),
		UpdatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"slots", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving plan for role %d: %w", roleID, err)
	}
	return nil
}

func (s *DB) SaveEvaluation(ctx context.Context, evaluation *interview.Evaluation) (int64, error) {
	row := newEvaluationRow(evaluation)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("saving evaluation: %w", err)
	}
	return row.ID, nil
}

func (s *DB) ListEvaluations(ctx context.Context) ([]interview.EvaluationSummary, error) {
	var rows []evaluationSummaryRow
	err := s.db.WithContext(ctx).
		Model(&evaluationRow{}).
		Select("id", "role_id", "candidate_name", "candidate_email", "candidate_phone", "total_score", "created_at").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}

	out := make([]interview.EvaluationSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.summary())
	}
	return out, nil
}

func (s *DB) GetEvaluation(ctx context.Context, id int64) (*interview.Evaluation, bool, error) {
	var row evaluationRow
	err := s.db.WithContext(ctx).Take(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading evaluation %d: %w", id, err)
	}
	return row.evaluation(), true, nil
}
