package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-control/internal/apperr"
	"content-control/internal/model"
	"content-control/internal/repository"
)

// DefinitionInput carries the form data for a new schedule definition.
type DefinitionInput struct {
	ProjectID          uint
	CategoryID         uint
	Description        string
	InitialDue         time.Time
	RecurrenceUnit     string
	RecurrenceInterval int
	Repetitions        int
	Obligatory         bool
}

// RecurrenceService materializes dated occurrences from schedule definitions.
//
// Top-ups for the same definition are serialized through a per-definition
// mutex: two concurrent requests would otherwise read the same anchor date
// and insert colliding occurrence chains. The unique index on
// (definition_id, due) backs this up at the storage layer.
type RecurrenceService struct {
	defs *repository.DefinitionRepository
	occs *repository.OccurrenceRepository
	log  *zap.Logger

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewRecurrenceService(defs *repository.DefinitionRepository, occs *repository.OccurrenceRepository, log *zap.Logger) *RecurrenceService {
	return &RecurrenceService{
		defs:  defs,
		occs:  occs,
		log:   log,
		locks: make(map[uint]*sync.Mutex),
	}
}

func (s *RecurrenceService) lockDefinition(id uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// CreateDefinition validates input, stores the definition and its first
// occurrence (due = initial due date) in one transaction.
func (s *RecurrenceService) CreateDefinition(ctx context.Context, input DefinitionInput) (*model.ScheduleDefinition, error) {
	if input.ProjectID == 0 || input.CategoryID == 0 {
		return nil, apperr.InvalidArgument("project and category are required")
	}
	if input.InitialDue.IsZero() {
		return nil, apperr.InvalidArgument("initial due date is required")
	}

	unit := input.RecurrenceUnit
	if unit == "" {
		unit = model.UnitNone
	}
	switch unit {
	case model.UnitNone:
		// Interval and repetitions are meaningless without a recurrence rule.
		input.RecurrenceInterval = 0
		input.Repetitions = 0
	case model.UnitDay, model.UnitMonth, model.UnitYear:
		if input.RecurrenceInterval < 1 {
			return nil, apperr.InvalidArgument("recurrence interval must be a positive integer")
		}
	default:
		return nil, apperr.InvalidArgument("unknown recurrence unit %q", unit)
	}

	def := model.ScheduleDefinition{
		ProjectID:          input.ProjectID,
		CategoryID:         input.CategoryID,
		Description:        input.Description,
		InitialDue:         input.InitialDue,
		RecurrenceUnit:     unit,
		RecurrenceInterval: input.RecurrenceInterval,
		Repetitions:        input.Repetitions,
		Obligatory:         input.Obligatory,
	}
	occ := buildOccurrence(&def, input.InitialDue)

	if err := s.defs.CreateWithFirstOccurrence(ctx, &def, &occ); err != nil {
		return nil, apperr.External("persist definition", err)
	}

	s.log.Info("definition created",
		zap.Uint("definition_id", def.ID),
		zap.String("unit", def.RecurrenceUnit),
		zap.Time("initial_due", def.InitialDue))
	return &def, nil
}

// GenerateOccurrences appends count occurrences to a definition's chain.
// The anchor is the latest existing due date, falling back to the
// definition's initial due date on first materialization. Each generated
// date advances from the previous one, so due dates are strictly increasing
// regardless of how many are requested in one call.
func (s *RecurrenceService) GenerateOccurrences(ctx context.Context, definitionID uint, count int) ([]model.ScheduleOccurrence, error) {
	if count < 1 {
		return nil, apperr.InvalidArgument("count must be at least 1, got %d", count)
	}

	lock := s.lockDefinition(definitionID)
	lock.Lock()
	defer lock.Unlock()

	def, err := s.defs.FindByID(ctx, definitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("definition %d", definitionID)
		}
		return nil, apperr.External("load definition", err)
	}
	if !def.Recurring() {
		// A non-recurring definition would only yield identical-date
		// duplicates; the request is rejected instead.
		return nil, apperr.InvalidArgument("definition %d has no recurrence rule", definitionID)
	}

	anchor := def.InitialDue
	maxDue, err := s.occs.MaxDue(ctx, definitionID)
	if err != nil {
		return nil, apperr.External("find anchor date", err)
	}
	if maxDue != nil {
		anchor = *maxDue
	}

	occs := make([]model.ScheduleOccurrence, 0, count)
	for i := 0; i < count; i++ {
		anchor = advance(anchor, def.RecurrenceUnit, def.RecurrenceInterval)
		occs = append(occs, buildOccurrence(def, anchor))
	}

	if err := s.occs.CreateBatch(ctx, occs); err != nil {
		return nil, apperr.External("persist occurrences", err)
	}

	s.log.Info("occurrences generated",
		zap.Uint("definition_id", definitionID),
		zap.Int("count", count),
		zap.Time("last_due", anchor))
	return occs, nil
}

// ListDefinitions returns all schedule definitions.
func (s *RecurrenceService) ListDefinitions(ctx context.Context) ([]model.ScheduleDefinition, error) {
	return s.defs.List(ctx)
}

// ListOccurrences returns occurrences matching the filter.
func (s *RecurrenceService) ListOccurrences(ctx context.Context, filter repository.OccurrenceFilter) ([]model.ScheduleOccurrence, error) {
	return s.occs.List(ctx, filter)
}

// UpdateOccurrenceFlags mutates the downstream state flags of one occurrence.
func (s *RecurrenceService) UpdateOccurrenceFlags(ctx context.Context, id uint, flags map[string]any) error {
	err := s.occs.UpdateFlags(ctx, id, flags)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("occurrence %d", id)
	}
	return err
}

func buildOccurrence(def *model.ScheduleDefinition, due time.Time) model.ScheduleOccurrence {
	return model.ScheduleOccurrence{
		DefinitionID:       def.ID,
		ProjectID:          def.ProjectID,
		CategoryID:         def.CategoryID,
		Description:        def.Description,
		InitialDue:         def.InitialDue,
		Due:                due,
		RecurrenceUnit:     def.RecurrenceUnit,
		RecurrenceInterval: def.RecurrenceInterval,
		Obligatory:         def.Obligatory,
		HasAttachment:      false,
	}
}

// advance applies one recurrence step to the anchor date. Month and year
// steps clamp to the last day of a shorter target month; the next step then
// anchors off the clamped result, so a 31st can drift to the 28th/29th and
// stay there.
func advance(anchor time.Time, unit string, interval int) time.Time {
	switch unit {
	case model.UnitDay:
		return anchor.AddDate(0, 0, interval)
	case model.UnitMonth:
		return addMonthsClamped(anchor, interval)
	case model.UnitYear:
		return addYearsClamped(anchor, interval)
	default:
		return anchor
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)
	if max := daysInMonth(month, year); day > max {
		day = max
	}
	hour, minute, sec := t.Clock()
	return time.Date(year, month, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func addYearsClamped(t time.Time, years int) time.Time {
	year, month, day := t.Date()
	year += years
	if max := daysInMonth(month, year); day > max {
		day = max
	}
	hour, minute, sec := t.Clock()
	return time.Date(year, month, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)
	lastOfMonth := firstOfNextMonth.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}
