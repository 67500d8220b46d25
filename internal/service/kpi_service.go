package service

import (
	"context"
	"time"

	"content-control/internal/apperr"
	"content-control/internal/repository"
)

// ProjectKPI is the per-project slice of the dashboard counters.
type ProjectKPI struct {
	ProjectID uint   `json:"project_id"`
	Project   string `json:"project"`
	Pending   int64  `json:"pending"`
}

// KPIReport aggregates the dashboard counters at one point in time.
type KPIReport struct {
	Total             int64        `json:"total"`
	Overdue           int64        `json:"overdue"`
	Read              int64        `json:"read"`
	Archived          int64        `json:"archived"`
	ObligatoryPending int64        `json:"obligatory_pending"`
	ByProject         []ProjectKPI `json:"by_project"`
}

// KPIService computes aggregate counters over occurrences.
type KPIService struct {
	occs     *repository.OccurrenceRepository
	catalogs *repository.CatalogRepository
}

func NewKPIService(occs *repository.OccurrenceRepository, catalogs *repository.CatalogRepository) *KPIService {
	return &KPIService{occs: occs, catalogs: catalogs}
}

func (s *KPIService) Snapshot(ctx context.Context, now time.Time) (KPIReport, error) {
	var report KPIReport

	counts, err := s.occs.CountKPIs(ctx, now)
	if err != nil {
		return report, apperr.External("count kpis", err)
	}
	report.Total = counts.Total
	report.Overdue = counts.Overdue
	report.Read = counts.Read
	report.Archived = counts.Archived
	report.ObligatoryPending = counts.ObligatoryPending

	perProject, err := s.occs.CountPendingByProject(ctx)
	if err != nil {
		return report, apperr.External("count per project", err)
	}
	projects, err := s.catalogs.ListProjects(ctx)
	if err != nil {
		return report, apperr.External("load projects", err)
	}
	names := make(map[uint]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	for _, row := range perProject {
		report.ByProject = append(report.ByProject, ProjectKPI{
			ProjectID: row.ProjectID,
			Project:   names[row.ProjectID],
			Pending:   row.Pending,
		})
	}
	return report, nil
}
