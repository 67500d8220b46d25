package service

import (
	"context"

	"go.uber.org/zap"

	"content-control/internal/apperr"
	"content-control/internal/model"
	"content-control/internal/repository"
)

// ReconcilerService repairs definitions left without their paired first
// occurrence. Bulk import inserts definitions only, and the sweep
// materializes their first occurrence (due = initial due date) afterwards.
type ReconcilerService struct {
	defs *repository.DefinitionRepository
	occs *repository.OccurrenceRepository
	log  *zap.Logger
}

func NewReconcilerService(defs *repository.DefinitionRepository, occs *repository.OccurrenceRepository, log *zap.Logger) *ReconcilerService {
	return &ReconcilerService{defs: defs, occs: occs, log: log}
}

// Run materializes first occurrences for all orphaned definitions and
// returns how many were created.
func (s *ReconcilerService) Run(ctx context.Context) (int, error) {
	orphans, err := s.defs.ListWithoutOccurrences(ctx)
	if err != nil {
		return 0, apperr.External("find orphaned definitions", err)
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	occs := make([]model.ScheduleOccurrence, 0, len(orphans))
	for i := range orphans {
		occs = append(occs, buildOccurrence(&orphans[i], orphans[i].InitialDue))
	}
	if err := s.occs.CreateBatch(ctx, occs); err != nil {
		return 0, apperr.External("materialize first occurrences", err)
	}

	s.log.Info("reconciled orphaned definitions", zap.Int("count", len(occs)))
	return len(occs), nil
}
