package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"content-control/internal/apperr"
)

const sheetInstructions = "INSTRUÇÕES"

// TemplateService produces pre-filled import spreadsheets. Pure function of
// the reference context: headers, one instruction row, example rows built
// from the first available catalog entries, plus an auxiliary sheet listing
// the valid reference values.
type TemplateService struct {
	imports *ImportService
	log     *zap.Logger
}

func NewTemplateService(imports *ImportService, log *zap.Logger) *TemplateService {
	return &TemplateService{imports: imports, log: log}
}

// DefinitionsTemplate builds the schedule-definition import template.
func (s *TemplateService) DefinitionsTemplate(ctx context.Context) ([]byte, error) {
	rc, err := s.imports.LoadReferenceContext(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Template"
	f.SetSheetName("Sheet1", sheet)

	headers := []any{"Projeto *", "Categoria *", "Descrição *", "Prazo de Entrega (YYYY-MM-DD) *",
		"Recorrência", "Intervalo", "Repetições", "Obrigatório"}
	instruction := []any{"Nome ou ID do projeto", "Nome ou ID da categoria", "Texto livre",
		"Ex: 2024-12-31", "dia, mês, ano ou sem recorrência", "Número inteiro", "Número inteiro", "SIM ou NÃO"}
	if err := writeHeader(f, sheet, headers, instruction); err != nil {
		return nil, err
	}

	projectName := firstCatalogName(rc.Projects)
	categoryName := firstCatalogName(rc.Categories)
	if projectName != "" && categoryName != "" {
		examples := [][]any{
			{projectName, categoryName, "Relatório mensal de atividades", "2024-12-31", "mês", 1, 12, "SIM"},
			{projectName, categoryName, "Renovação anual de licença", "2025-06-30", "ano", 1, 3, "NÃO"},
		}
		for i, row := range examples {
			cellRef, _ := excelize.CoordinatesToCellName(1, firstDataRow+i)
			if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
				return nil, fmt.Errorf("write example row: %w", err)
			}
		}
	}

	s.writeCatalogSheet(f, rc)
	return finishWorkbook(f)
}

// TasksTemplate builds the ad-hoc task import template.
func (s *TemplateService) TasksTemplate(ctx context.Context) ([]byte, error) {
	rc, err := s.imports.LoadReferenceContext(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetTasks)

	headers := []any{"Descrição da Tarefa *", "Lista (Nome ou ID) *", "Responsável (Nome ou ID) *",
		"Data Limite (YYYY-MM-DD)", "Status (true/false)"}
	instruction := []any{"Texto livre", "Nome ou ID da lista", "Nome ou ID do responsável",
		"Ex: 2024-12-31", "true para concluída, false para pendente"}
	if err := writeHeader(f, sheetTasks, headers, instruction); err != nil {
		return nil, err
	}

	if listName, userName, ok := s.exampleAssignment(rc); ok {
		example := []any{"Revisar documentação do projeto", listName, userName, "2024-12-31", "false"}
		cellRef, _ := excelize.CoordinatesToCellName(1, firstDataRow)
		if err := f.SetSheetRow(sheetTasks, cellRef, &example); err != nil {
			return nil, fmt.Errorf("write example row: %w", err)
		}
	}

	s.writeCatalogSheet(f, rc)
	return finishWorkbook(f)
}

// RoutinesTemplate builds the routine import template.
func (s *TemplateService) RoutinesTemplate(ctx context.Context) ([]byte, error) {
	rc, err := s.imports.LoadReferenceContext(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetRoutines)

	headers := []any{"Descrição da Rotina *", "Lista (Nome ou ID) *", "Responsável (Nome ou ID) *",
		"Tipo Recorrência *", "Intervalo", "Dias Semana (0-6)", "Data Início (YYYY-MM-DD) *", "Data Fim (YYYY-MM-DD)"}
	instruction := []any{"Texto livre", "Nome ou ID da lista", "Nome ou ID do responsável",
		"daily, weekly, monthly ou yearly", "Número inteiro (padrão 1)", "Para weekly: ex 1,2,3,4,5",
		"Ex: 2024-01-01", "Opcional"}
	if err := writeHeader(f, sheetRoutines, headers, instruction); err != nil {
		return nil, err
	}

	if listName, userName, ok := s.exampleAssignment(rc); ok {
		examples := [][]any{
			{"Backup diário do sistema", listName, userName, "daily", 1, "", "2024-01-01", ""},
			{"Reunião semanal da equipe", listName, userName, "weekly", 1, "1,2,3,4,5", "2024-01-01", "2024-12-31"},
		}
		for i, row := range examples {
			cellRef, _ := excelize.CoordinatesToCellName(1, firstDataRow+i)
			if err := f.SetSheetRow(sheetRoutines, cellRef, &row); err != nil {
				return nil, fmt.Errorf("write example row: %w", err)
			}
		}
	}

	s.writeCatalogSheet(f, rc)
	return finishWorkbook(f)
}

// exampleAssignment picks the first list that has an authorized member, so
// the template's example rows validate as-is.
func (s *TemplateService) exampleAssignment(rc *ReferenceContext) (string, string, bool) {
	listIDs := make([]uint, 0, len(rc.Lists))
	for id := range rc.Lists {
		listIDs = append(listIDs, id)
	}
	sort.Slice(listIDs, func(i, j int) bool { return listIDs[i] < listIDs[j] })
	for _, listID := range listIDs {
		members := rc.listMembers[listID]
		userIDs := make([]uint, 0, len(members))
		for id := range members {
			userIDs = append(userIDs, id)
		}
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
		for _, userID := range userIDs {
			if user, ok := rc.Users[userID]; ok {
				return rc.Lists[listID].Name, user.Name, true
			}
		}
	}
	return "", "", false
}

// writeCatalogSheet appends the auxiliary sheet enumerating valid references.
func (s *TemplateService) writeCatalogSheet(f *excelize.File, rc *ReferenceContext) {
	if _, err := f.NewSheet(sheetInstructions); err != nil {
		return
	}
	row := 1
	writeLine := func(text string) {
		cellRef, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellStr(sheetInstructions, cellRef, text)
		row++
	}

	writeLine("PROJETOS DISPONÍVEIS:")
	for _, id := range sortedKeys(rc.Projects) {
		writeLine(fmt.Sprintf("  ID %d: %s", id, rc.Projects[id]))
	}
	writeLine("")
	writeLine("CATEGORIAS DISPONÍVEIS:")
	for _, id := range sortedKeys(rc.Categories) {
		writeLine(fmt.Sprintf("  ID %d: %s", id, rc.Categories[id]))
	}
	writeLine("")
	writeLine("LISTAS DISPONÍVEIS:")
	listIDs := make([]uint, 0, len(rc.Lists))
	for id := range rc.Lists {
		listIDs = append(listIDs, id)
	}
	sort.Slice(listIDs, func(i, j int) bool { return listIDs[i] < listIDs[j] })
	for _, id := range listIDs {
		list := rc.Lists[id]
		writeLine(fmt.Sprintf("  ID %d: %s (%s)", id, list.Name, rc.Projects[list.ProjectID]))
	}
	writeLine("")
	writeLine("USUÁRIOS DISPONÍVEIS:")
	userIDs := make([]uint, 0, len(rc.Users))
	for id := range rc.Users {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
	for _, id := range userIDs {
		writeLine(fmt.Sprintf("  ID %d: %s", id, rc.Users[id].Name))
	}
	_ = f.SetColWidth(sheetInstructions, "A", "A", 80)
}

func writeHeader(f *excelize.File, sheet string, headers, instruction []any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &instruction); err != nil {
		return fmt.Errorf("write instruction row: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6F3FF"}},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, style)
	}
	return nil
}

func finishWorkbook(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperr.External("write workbook", err)
	}
	return buf.Bytes(), nil
}

func firstCatalogName(catalog map[uint]string) string {
	for _, id := range sortedKeys(catalog) {
		return catalog[id]
	}
	return ""
}

func sortedKeys(catalog map[uint]string) []uint {
	keys := make([]uint, 0, len(catalog))
	for id := range catalog {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
