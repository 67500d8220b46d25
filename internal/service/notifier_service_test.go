package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-control/internal/model"
	"content-control/internal/repository"
)

type fakeSender struct {
	failSubject string
	sent        []string // subjects
	recipients  [][]string
}

func (f *fakeSender) Send(to []string, subject, htmlBody string) error {
	if f.failSubject != "" && strings.Contains(subject, f.failSubject) {
		return errors.New("smtp: connection refused")
	}
	f.sent = append(f.sent, subject)
	f.recipients = append(f.recipients, to)
	return nil
}

func TestSendProjectDigestsIndependentGroups(t *testing.T) {
	db := newTestDB(t)
	catalogs := repository.NewCatalogRepository(db)
	occs := repository.NewOccurrenceRepository(db)
	ctx := context.Background()

	alpha := model.Project{Name: "Projeto Alpha"}
	require.NoError(t, catalogs.CreateProject(ctx, &alpha))
	beta := model.Project{Name: "Projeto Beta"}
	require.NoError(t, catalogs.CreateProject(ctx, &beta))

	user := model.User{Name: "João Silva", Email: "joao@example.com"}
	require.NoError(t, catalogs.CreateUser(ctx, &user))
	require.NoError(t, catalogs.AddProjectMembership(ctx, &model.ProjectMembership{ProjectID: alpha.ID, UserID: user.ID}))
	require.NoError(t, catalogs.AddProjectMembership(ctx, &model.ProjectMembership{ProjectID: beta.ID, UserID: user.ID}))

	require.NoError(t, occs.CreateBatch(ctx, []model.ScheduleOccurrence{
		{DefinitionID: 1, ProjectID: alpha.ID, Description: "Pendência Alpha", Due: date(2024, time.June, 1)},
		{DefinitionID: 2, ProjectID: beta.ID, Description: "Pendência Beta", Due: date(2024, time.June, 2)},
	}))

	sender := &fakeSender{failSubject: "Projeto Beta"}
	svc := NewNotifierService(occs, catalogs, sender, zap.NewNop())

	summary, err := svc.SendProjectDigests(ctx, nil)
	require.NoError(t, err)

	// One group's failure is a warning, not an abort.
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "Projeto Beta")

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Projeto Alpha")
	assert.Equal(t, []string{"joao@example.com"}, sender.recipients[0])
}

func TestSendProjectDigestsWarnsOnMissingRecipients(t *testing.T) {
	db := newTestDB(t)
	catalogs := repository.NewCatalogRepository(db)
	occs := repository.NewOccurrenceRepository(db)
	ctx := context.Background()

	project := model.Project{Name: "Projeto Sem Equipe"}
	require.NoError(t, catalogs.CreateProject(ctx, &project))
	require.NoError(t, occs.CreateBatch(ctx, []model.ScheduleOccurrence{
		{DefinitionID: 1, ProjectID: project.ID, Description: "Pendência", Due: date(2024, time.June, 1)},
	}))

	sender := &fakeSender{}
	svc := NewNotifierService(occs, catalogs, sender, zap.NewNop())

	summary, err := svc.SendProjectDigests(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	assert.Zero(t, summary.Failed)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "nenhum destinatário")
	assert.Empty(t, sender.sent)
}

func TestSendProjectDigestsSkipsArchived(t *testing.T) {
	db := newTestDB(t)
	catalogs := repository.NewCatalogRepository(db)
	occs := repository.NewOccurrenceRepository(db)
	ctx := context.Background()

	require.NoError(t, occs.CreateBatch(ctx, []model.ScheduleOccurrence{
		{DefinitionID: 1, ProjectID: 1, Description: "Arquivada", Due: date(2024, time.June, 1), Archived: true},
	}))

	sender := &fakeSender{}
	svc := NewNotifierService(occs, catalogs, sender, zap.NewNop())

	summary, err := svc.SendProjectDigests(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Sent)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "nenhuma pendência")
}

func TestBuildDigestBodyEscapesAndFlagsOverdue(t *testing.T) {
	body := buildDigestBody("P&D", []model.ScheduleOccurrence{
		{Description: "Relatório <anual>", Due: date(2020, time.January, 1), Obligatory: true},
	})
	assert.Contains(t, body, "P&amp;D")
	assert.Contains(t, body, "Relatório &lt;anual&gt;")
	assert.Contains(t, body, "atrasado")
	assert.Contains(t, body, "SIM")
}
