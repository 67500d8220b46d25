package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-control/internal/model"
	"content-control/internal/repository"
)

func TestKPISnapshot(t *testing.T) {
	db := newTestDB(t)
	catalogs := repository.NewCatalogRepository(db)
	occs := repository.NewOccurrenceRepository(db)
	ctx := context.Background()

	alpha := model.Project{Name: "Projeto Alpha"}
	require.NoError(t, catalogs.CreateProject(ctx, &alpha))
	beta := model.Project{Name: "Projeto Beta"}
	require.NoError(t, catalogs.CreateProject(ctx, &beta))

	now := date(2024, time.June, 15)
	require.NoError(t, occs.CreateBatch(ctx, []model.ScheduleOccurrence{
		// overdue, obligatory, pending
		{DefinitionID: 1, ProjectID: alpha.ID, Description: "Atrasada", Due: date(2024, time.May, 1), Obligatory: true},
		// future, pending
		{DefinitionID: 2, ProjectID: alpha.ID, Description: "Futura", Due: date(2024, time.July, 1)},
		// overdue but already read: not counted as overdue
		{DefinitionID: 3, ProjectID: beta.ID, Description: "Lida", Due: date(2024, time.May, 10), Read: true},
		// archived
		{DefinitionID: 4, ProjectID: beta.ID, Description: "Arquivada", Due: date(2024, time.April, 1), Archived: true},
	}))

	svc := NewKPIService(occs, catalogs)
	report, err := svc.Snapshot(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, int64(4), report.Total)
	assert.Equal(t, int64(1), report.Overdue)
	assert.Equal(t, int64(1), report.Read)
	assert.Equal(t, int64(1), report.Archived)
	assert.Equal(t, int64(1), report.ObligatoryPending)

	byProject := make(map[string]int64, len(report.ByProject))
	for _, row := range report.ByProject {
		byProject[row.Project] = row.Pending
	}
	assert.Equal(t, int64(2), byProject["Projeto Alpha"])
	assert.NotContains(t, byProject, "Projeto Beta")
}

func TestKPISnapshotEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewKPIService(repository.NewOccurrenceRepository(db), repository.NewCatalogRepository(db))

	report, err := svc.Snapshot(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Empty(t, report.ByProject)
}
