package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"content-control/internal/model"
)

// OccurrenceRepository handles CRUD and aggregates for schedule occurrences.
type OccurrenceRepository struct {
	db *gorm.DB
}

func NewOccurrenceRepository(db *gorm.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

// CreateBatch inserts occurrences in one multi-row insert.
func (r *OccurrenceRepository) CreateBatch(ctx context.Context, occs []model.ScheduleOccurrence) error {
	if len(occs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&occs).Error; err != nil {
		return fmt.Errorf("create occurrences: %w", err)
	}
	return nil
}

// MaxDue returns the latest due date among a definition's occurrences, or nil
// when none exist yet.
func (r *OccurrenceRepository) MaxDue(ctx context.Context, definitionID uint) (*time.Time, error) {
	var occ model.ScheduleOccurrence
	err := r.db.WithContext(ctx).
		Where("definition_id = ?", definitionID).
		Order("due DESC").
		First(&occ).Error
	switch {
	case err == nil:
		due := occ.Due
		return &due, nil
	case err == gorm.ErrRecordNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("max due: %w", err)
	}
}

func (r *OccurrenceRepository) ListByDefinition(ctx context.Context, definitionID uint) ([]model.ScheduleOccurrence, error) {
	var occs []model.ScheduleOccurrence
	if err := r.db.WithContext(ctx).
		Where("definition_id = ?", definitionID).
		Order("due ASC").
		Find(&occs).Error; err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	return occs, nil
}

func (r *OccurrenceRepository) FindByID(ctx context.Context, id uint) (*model.ScheduleOccurrence, error) {
	var occ model.ScheduleOccurrence
	if err := r.db.WithContext(ctx).First(&occ, id).Error; err != nil {
		return nil, err
	}
	return &occ, nil
}

// OccurrenceFilter narrows List; zero values mean "no filter".
type OccurrenceFilter struct {
	ProjectID  uint
	CategoryID uint
	Archived   *bool
	Read       *bool
}

func (r *OccurrenceRepository) List(ctx context.Context, filter OccurrenceFilter) ([]model.ScheduleOccurrence, error) {
	q := r.db.WithContext(ctx).Order("due ASC, id ASC")
	if filter.ProjectID != 0 {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Archived != nil {
		q = q.Where("archived = ?", *filter.Archived)
	}
	if filter.Read != nil {
		q = q.Where("read = ?", *filter.Read)
	}
	var occs []model.ScheduleOccurrence
	if err := q.Find(&occs).Error; err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	return occs, nil
}

// UpdateFlags mutates a restricted set of downstream state columns.
func (r *OccurrenceRepository) UpdateFlags(ctx context.Context, id uint, flags map[string]any) error {
	allowed := map[string]bool{"read": true, "important": true, "archived": true, "snoozed": true}
	updates := make(map[string]any, len(flags))
	for k, v := range flags {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.ScheduleOccurrence{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update occurrence flags: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OccurrenceRepository) ListPendingByIDs(ctx context.Context, ids []uint) ([]model.ScheduleOccurrence, error) {
	var occs []model.ScheduleOccurrence
	q := r.db.WithContext(ctx).Where("archived = ?", false)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("due ASC").Find(&occs).Error; err != nil {
		return nil, fmt.Errorf("list pending occurrences: %w", err)
	}
	return occs, nil
}

// KPICounts aggregates dashboard counters over occurrences.
type KPICounts struct {
	Total             int64
	Overdue           int64
	Read              int64
	Archived          int64
	ObligatoryPending int64
}

func (r *OccurrenceRepository) CountKPIs(ctx context.Context, now time.Time) (KPICounts, error) {
	var counts KPICounts
	db := r.db.WithContext(ctx).Model(&model.ScheduleOccurrence{})

	type query struct {
		dst  *int64
		cond *gorm.DB
	}
	base := func() *gorm.DB { return db.Session(&gorm.Session{}) }
	queries := []query{
		{&counts.Total, base()},
		{&counts.Overdue, base().Where("due < ? AND read = ? AND archived = ?", now, false, false)},
		{&counts.Read, base().Where("read = ?", true)},
		{&counts.Archived, base().Where("archived = ?", true)},
		{&counts.ObligatoryPending, base().Where("obligatory = ? AND read = ? AND archived = ?", true, false, false)},
	}
	for _, q := range queries {
		if err := q.cond.Count(q.dst).Error; err != nil {
			return counts, fmt.Errorf("count occurrences: %w", err)
		}
	}
	return counts, nil
}

// ProjectCount is one row of the per-project breakdown.
type ProjectCount struct {
	ProjectID uint
	Pending   int64
}

func (r *OccurrenceRepository) CountPendingByProject(ctx context.Context) ([]ProjectCount, error) {
	var rows []ProjectCount
	err := r.db.WithContext(ctx).Model(&model.ScheduleOccurrence{}).
		Select("project_id, COUNT(*) AS pending").
		Where("read = ? AND archived = ?", false, false).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count pending by project: %w", err)
	}
	return rows, nil
}
