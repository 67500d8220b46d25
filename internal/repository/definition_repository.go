package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"content-control/internal/model"
)

// DefinitionRepository handles CRUD for schedule definitions.
type DefinitionRepository struct {
	db *gorm.DB
}

func NewDefinitionRepository(db *gorm.DB) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

func (r *DefinitionRepository) FindByID(ctx context.Context, id uint) (*model.ScheduleDefinition, error) {
	var def model.ScheduleDefinition
	if err := r.db.WithContext(ctx).First(&def, id).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *DefinitionRepository) List(ctx context.Context) ([]model.ScheduleDefinition, error) {
	var defs []model.ScheduleDefinition
	if err := r.db.WithContext(ctx).Order("initial_due ASC, id ASC").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	return defs, nil
}

// CreateWithFirstOccurrence inserts a definition and its first occurrence in
// one transaction, so a definition never lands without its paired occurrence.
func (r *DefinitionRepository) CreateWithFirstOccurrence(ctx context.Context, def *model.ScheduleDefinition, occ *model.ScheduleOccurrence) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(def).Error; err != nil {
			return err
		}
		occ.DefinitionID = def.ID
		return tx.Create(occ).Error
	})
	if err != nil {
		return fmt.Errorf("create definition with occurrence: %w", err)
	}
	return nil
}

// CreateBatch inserts already-validated definitions in one multi-row insert.
func (r *DefinitionRepository) CreateBatch(ctx context.Context, defs []model.ScheduleDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&defs).Error; err != nil {
		return fmt.Errorf("create definitions: %w", err)
	}
	return nil
}

// ListWithoutOccurrences finds definitions whose first occurrence was never
// materialized (bulk import inserts definitions only; a failed paired write
// can also leave this state).
func (r *DefinitionRepository) ListWithoutOccurrences(ctx context.Context) ([]model.ScheduleDefinition, error) {
	var defs []model.ScheduleDefinition
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM schedule_occurrences o WHERE o.definition_id = schedule_definitions.id)").
		Find(&defs).Error
	if err != nil {
		return nil, fmt.Errorf("list definitions without occurrences: %w", err)
	}
	return defs, nil
}
