package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-control/internal/apperr"
	"content-control/internal/model"
	"content-control/internal/repository"
)

type importFixture struct {
	db       *gorm.DB
	svc      *ImportService
	defs     *repository.DefinitionRepository
	tasks    *repository.TaskRepository
	catalogs *repository.CatalogRepository

	projectID  uint
	categoryID uint
	listID     uint
	memberID   uint
	outsiderID uint
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	db := newTestDB(t)
	f := &importFixture{
		db:       db,
		defs:     repository.NewDefinitionRepository(db),
		tasks:    repository.NewTaskRepository(db),
		catalogs: repository.NewCatalogRepository(db),
	}
	f.svc = NewImportService(f.catalogs, f.defs, f.tasks, zap.NewNop())

	ctx := context.Background()
	project := model.Project{Name: "São Paulo"}
	require.NoError(t, f.catalogs.CreateProject(ctx, &project))
	f.projectID = project.ID

	category := model.Category{Name: "Licenças"}
	require.NoError(t, f.catalogs.CreateCategory(ctx, &category))
	f.categoryID = category.ID

	list := model.TaskList{ProjectID: project.ID, Name: "Lista de Desenvolvimento"}
	require.NoError(t, f.catalogs.CreateTaskList(ctx, &list))
	f.listID = list.ID

	member := model.User{Name: "João Silva", Email: "joao@example.com"}
	require.NoError(t, f.catalogs.CreateUser(ctx, &member))
	f.memberID = member.ID
	outsider := model.User{Name: "Maria Santos", Email: "maria@example.com"}
	require.NoError(t, f.catalogs.CreateUser(ctx, &outsider))
	f.outsiderID = outsider.ID

	require.NoError(t, f.catalogs.AddMembership(ctx, &model.ListMembership{TaskListID: list.ID, UserID: member.ID}))
	return f
}

func buildWorkbook(t *testing.T, sheet string, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

var defHeader = []any{"Projeto", "Categoria", "Descrição", "Prazo", "Recorrência", "Intervalo", "Repetições", "Obrigatório"}
var defInstruction = []any{"nome ou id", "nome ou id", "texto", "YYYY-MM-DD", "dia/mês/ano", "inteiro", "inteiro", "SIM/NÃO"}

func TestImportDefinitionsResolvesAccentInsensitive(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	file := buildWorkbook(t, "Template", [][]any{
		defHeader,
		defInstruction,
		{"sao paulo", "licencas", "Relatório anual", "2024-12-31", "mês", "1", "12", "SIM"},
		{"SAO  PAULO", "Licenças", "Alvará de funcionamento", "2025-06-30", "sem recorrência", "", "", "NÃO"},
		{"São Paulo", "licenças", "Auditoria", "2025-01-15", "ano", "2", "3", "true"},
	})

	inserted, err := f.svc.ImportDefinitions(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	defs, err := f.defs.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	for _, def := range defs {
		assert.Equal(t, f.projectID, def.ProjectID)
		assert.Equal(t, f.categoryID, def.CategoryID)
	}
	// List is ordered by initial due date, so the "ano" row sits in the middle.
	assert.Equal(t, model.UnitYear, defs[1].RecurrenceUnit)
	assert.Equal(t, 2, defs[1].RecurrenceInterval)
	assert.True(t, defs[1].Obligatory)
	assert.Equal(t, model.UnitNone, defs[2].RecurrenceUnit)
}

func TestImportDefinitionsAllOrNothing(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	file := buildWorkbook(t, "Template", [][]any{
		defHeader,
		defInstruction,
		{"São Paulo", "Licenças", "Item válido", "2024-12-31", "mês", "1", "12", "SIM"},
		{"Projeto Fantasma", "Licenças", "Item inválido", "2024-12-31", "dia", "1", "5", "NÃO"},
	})

	inserted, err := f.svc.ImportDefinitions(ctx, file)
	assert.Zero(t, inserted)
	verrs, ok := apperr.AsValidation(err)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Contains(t, verrs[0], "Linha 4")
	assert.Contains(t, verrs[0], `Projeto "Projeto Fantasma" não encontrado`)

	defs, err := f.defs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs, "commit gate must prevent all writes")
}

func TestImportDefinitionsAccumulatesAllErrors(t *testing.T) {
	f := newImportFixture(t)

	file := buildWorkbook(t, "Template", [][]any{
		defHeader,
		defInstruction,
		{"São Paulo", "Licenças", "", "not-a-date", "quinzenal", "", "", "talvez"},
		{"", "", "Sem referências", "2024-12-31", "mês", "0", "-1", "SIM"},
	})

	_, err := f.svc.ImportDefinitions(context.Background(), file)
	verrs, ok := apperr.AsValidation(err)
	require.True(t, ok)

	joined := verrs.Error()
	assert.Contains(t, joined, "Linha 3: Descrição é obrigatória")
	assert.Contains(t, joined, "Linha 3: Prazo deve estar no formato YYYY-MM-DD")
	assert.Contains(t, joined, "Linha 3: Recorrência inválida")
	assert.Contains(t, joined, "Linha 3: Obrigatório deve ser")
	assert.Contains(t, joined, "Linha 4: Projeto é obrigatório")
	assert.Contains(t, joined, "Linha 4: Categoria é obrigatória")
	assert.Contains(t, joined, "Linha 4: Intervalo e repetições")
}

func TestImportDefinitionsSkipsEmptyRows(t *testing.T) {
	f := newImportFixture(t)

	file := buildWorkbook(t, "Template", [][]any{
		defHeader,
		defInstruction,
		{"", "", "", "", "", "", "", ""},
		{"São Paulo", "Licenças", "Única linha real", "2024-12-31", "sem recorrência", "", "", "NÃO"},
	})

	inserted, err := f.svc.ImportDefinitions(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestImportTasksResolvesByIDAndName(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	file := buildWorkbook(t, sheetTasks, [][]any{
		{"Descrição", "Lista", "Responsável", "Data", "Status"},
		{"texto", "nome ou id", "nome ou id", "YYYY-MM-DD", "true/false"},
		{"Revisar documentação", f.listID, f.memberID, "2024-12-15", "concluída"},
		{"Implementar feature", "lista de desenvolvimento", "joão silva", "", "false"},
	})

	inserted, err := f.svc.ImportTasks(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	tasks, err := f.tasks.ListTasks(ctx, f.listID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, f.memberID, task.UserID)
	}
}

func TestImportTasksRejectsUnauthorizedAssignee(t *testing.T) {
	f := newImportFixture(t)

	file := buildWorkbook(t, sheetTasks, [][]any{
		{"Descrição", "Lista", "Responsável", "Data", "Status"},
		{"texto", "nome ou id", "nome ou id", "YYYY-MM-DD", "true/false"},
		{"Tarefa proibida", "Lista de Desenvolvimento", "Maria Santos", "2024-12-15", "false"},
	})

	_, err := f.svc.ImportTasks(context.Background(), file)
	verrs, ok := apperr.AsValidation(err)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Contains(t, verrs[0], "Maria Santos")
	assert.Contains(t, verrs[0], "Lista de Desenvolvimento")

	tasks, err := f.tasks.ListTasks(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestImportRoutinesValidation(t *testing.T) {
	f := newImportFixture(t)

	file := buildWorkbook(t, sheetRoutines, [][]any{
		{"Descrição", "Lista", "Responsável", "Tipo", "Intervalo", "Dias", "Início", "Fim"},
		{"texto", "nome ou id", "nome ou id", "daily/weekly/monthly/yearly", "inteiro", "0-6", "YYYY-MM-DD", "opcional"},
		{"Rotina quebrada", "Lista de Desenvolvimento", "João Silva", "biweekly", "1", "", "2024-01-01", ""},
		{"Rotina sem início", "Lista de Desenvolvimento", "João Silva", "weekly", "1", "1,9", "", ""},
	})

	_, err := f.svc.ImportRoutines(context.Background(), file)
	verrs, ok := apperr.AsValidation(err)
	require.True(t, ok)

	joined := verrs.Error()
	assert.Contains(t, joined, "Linha 3: Tipo de recorrência inválido")
	assert.Contains(t, joined, "Linha 4: Dias da semana")
	assert.Contains(t, joined, "Linha 4: Data de início é obrigatória")
}

func TestImportRoutinesSuccess(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	file := buildWorkbook(t, sheetRoutines, [][]any{
		{"Descrição", "Lista", "Responsável", "Tipo", "Intervalo", "Dias", "Início", "Fim"},
		{"texto", "nome ou id", "nome ou id", "tipo", "inteiro", "0-6", "YYYY-MM-DD", "opcional"},
		{"Reunião semanal", "Lista de Desenvolvimento", "João Silva", "weekly", "", "1, 3, 5", "2024-01-01", "2024-12-31"},
		{"Backup diário", "Lista de Desenvolvimento", "João Silva", "daily", "2", "", "2024-01-01", ""},
	})

	inserted, err := f.svc.ImportRoutines(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	routines, err := f.tasks.ListRoutines(ctx, f.listID)
	require.NoError(t, err)
	require.Len(t, routines, 2)
	assert.Equal(t, "1,3,5", routines[0].Weekdays)
	assert.Equal(t, 1, routines[0].RecurrenceInterval)
	assert.Equal(t, model.RoutineDaily, routines[1].RecurrenceType)
	assert.Equal(t, 2, routines[1].RecurrenceInterval)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "sao paulo", normalizeText("São Paulo"))
	assert.Equal(t, "sao paulo", normalizeText("  SAO   PAULO  "))
	assert.Equal(t, "licencas", normalizeText("Licenças"))
	assert.Equal(t, "ja", normalizeText("Já"))
}
