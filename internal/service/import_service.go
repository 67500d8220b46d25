package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"context"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"content-control/internal/apperr"
	"content-control/internal/model"
	"content-control/internal/repository"
)

// Sheet names used by the task/routine templates.
const (
	sheetTasks    = "Tarefas"
	sheetRoutines = "Rotinas"
)

// The first two rows of every template are reserved: header plus one
// instruction row. Data starts at row 3 (1-based).
const firstDataRow = 3

// ReferenceContext holds the preloaded name/id catalogs an import run
// resolves against. Built once per request; never cached across requests.
type ReferenceContext struct {
	Projects   map[uint]string
	Categories map[uint]string
	Lists      map[uint]model.TaskList
	Users      map[uint]model.User

	projectByName  map[string]uint
	categoryByName map[string]uint
	listByName     map[string]uint
	userByName     map[string]uint

	// listMembers[listID] is the set of user ids authorized for that list.
	listMembers map[uint]map[uint]bool
}

// ImportService turns uploaded spreadsheets into validated rows and commits
// them only when the whole file is clean.
type ImportService struct {
	catalogs *repository.CatalogRepository
	defs     *repository.DefinitionRepository
	tasks    *repository.TaskRepository
	log      *zap.Logger
}

func NewImportService(catalogs *repository.CatalogRepository, defs *repository.DefinitionRepository, tasks *repository.TaskRepository, log *zap.Logger) *ImportService {
	return &ImportService{catalogs: catalogs, defs: defs, tasks: tasks, log: log}
}

// LoadReferenceContext fetches every catalog needed for resolution.
func (s *ImportService) LoadReferenceContext(ctx context.Context) (*ReferenceContext, error) {
	projects, err := s.catalogs.ListProjects(ctx)
	if err != nil {
		return nil, apperr.External("load projects", err)
	}
	categories, err := s.catalogs.ListCategories(ctx)
	if err != nil {
		return nil, apperr.External("load categories", err)
	}
	lists, err := s.catalogs.ListTaskLists(ctx)
	if err != nil {
		return nil, apperr.External("load task lists", err)
	}
	users, err := s.catalogs.ListUsers(ctx)
	if err != nil {
		return nil, apperr.External("load users", err)
	}
	memberships, err := s.catalogs.ListMemberships(ctx)
	if err != nil {
		return nil, apperr.External("load memberships", err)
	}

	rc := &ReferenceContext{
		Projects:       make(map[uint]string, len(projects)),
		Categories:     make(map[uint]string, len(categories)),
		Lists:          make(map[uint]model.TaskList, len(lists)),
		Users:          make(map[uint]model.User, len(users)),
		projectByName:  make(map[string]uint, len(projects)),
		categoryByName: make(map[string]uint, len(categories)),
		listByName:     make(map[string]uint, len(lists)),
		userByName:     make(map[string]uint, len(users)),
		listMembers:    make(map[uint]map[uint]bool),
	}
	for _, p := range projects {
		rc.Projects[p.ID] = p.Name
		rc.projectByName[normalizeText(p.Name)] = p.ID
	}
	for _, c := range categories {
		rc.Categories[c.ID] = c.Name
		rc.categoryByName[normalizeText(c.Name)] = c.ID
	}
	for _, l := range lists {
		rc.Lists[l.ID] = l
		rc.listByName[strings.ToLower(strings.TrimSpace(l.Name))] = l.ID
	}
	for _, u := range users {
		rc.Users[u.ID] = u
		rc.userByName[strings.ToLower(strings.TrimSpace(u.Name))] = u.ID
	}
	for _, m := range memberships {
		set, ok := rc.listMembers[m.TaskListID]
		if !ok {
			set = make(map[uint]bool)
			rc.listMembers[m.TaskListID] = set
		}
		set[m.UserID] = true
	}
	return rc, nil
}

// ImportDefinitions parses and validates a schedule-definition spreadsheet
// and, when the entire file is clean, inserts all rows in one batch.
// Occurrences are not materialized here; the reconciliation sweep pairs each
// imported definition with its first occurrence.
func (s *ImportService) ImportDefinitions(ctx context.Context, file io.Reader) (int, error) {
	rc, err := s.LoadReferenceContext(ctx)
	if err != nil {
		return 0, err
	}

	rows, err := readSheet(file, "")
	if err != nil {
		return 0, err
	}

	var defs []model.ScheduleDefinition
	var errs apperr.ValidationErrors
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < firstDataRow || rowEmpty(row) {
			continue
		}
		def, rowErrs := parseDefinitionRow(rowNum, row, rc)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		defs = append(defs, *def)
	}

	// Commit gate: any error anywhere in the file means zero writes.
	if len(errs) > 0 {
		return 0, errs
	}
	if err := s.defs.CreateBatch(ctx, defs); err != nil {
		return 0, apperr.External("insert definitions", err)
	}
	s.log.Info("definitions imported", zap.Int("rows", len(defs)))
	return len(defs), nil
}

// ImportTasks parses and validates an ad-hoc task spreadsheet.
func (s *ImportService) ImportTasks(ctx context.Context, file io.Reader) (int, error) {
	rc, err := s.LoadReferenceContext(ctx)
	if err != nil {
		return 0, err
	}

	rows, err := readSheet(file, sheetTasks)
	if err != nil {
		return 0, err
	}

	var tasks []model.Task
	var errs apperr.ValidationErrors
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < firstDataRow || rowEmpty(row) {
			continue
		}
		task, rowErrs := parseTaskRow(rowNum, row, rc)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		tasks = append(tasks, *task)
	}

	if len(errs) > 0 {
		return 0, errs
	}
	if err := s.tasks.CreateTasks(ctx, tasks); err != nil {
		return 0, apperr.External("insert tasks", err)
	}
	s.log.Info("tasks imported", zap.Int("rows", len(tasks)))
	return len(tasks), nil
}

// ImportRoutines parses and validates a routine spreadsheet.
func (s *ImportService) ImportRoutines(ctx context.Context, file io.Reader) (int, error) {
	rc, err := s.LoadReferenceContext(ctx)
	if err != nil {
		return 0, err
	}

	rows, err := readSheet(file, sheetRoutines)
	if err != nil {
		return 0, err
	}

	var routines []model.Routine
	var errs apperr.ValidationErrors
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < firstDataRow || rowEmpty(row) {
			continue
		}
		routine, rowErrs := parseRoutineRow(rowNum, row, rc)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		routines = append(routines, *routine)
	}

	if len(errs) > 0 {
		return 0, errs
	}
	if err := s.tasks.CreateRoutines(ctx, routines); err != nil {
		return 0, apperr.External("insert routines", err)
	}
	s.log.Info("routines imported", zap.Int("rows", len(routines)))
	return len(routines), nil
}

// readSheet opens the workbook and returns the rows of the named sheet, or
// of the first sheet when name is empty or absent.
func readSheet(file io.Reader, name string) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperr.InvalidArgument("ler planilha: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.InvalidArgument("a planilha não contém abas")
	}
	sheet := sheets[0]
	if name != "" {
		for _, s := range sheets {
			if s == name {
				sheet = s
				break
			}
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperr.InvalidArgument("ler aba %q: %v", sheet, err)
	}
	return rows, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cell returns a trimmed cell by zero-based column index; rows from excelize
// drop trailing empty cells, so out-of-range reads are empty strings.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// normalizeText strips accents, lowercases and collapses whitespace, so that
// "São Paulo", "sao paulo" and "SAO  PAULO" resolve to the same catalog entry.
func normalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// resolveRef resolves a raw cell first as a direct id, then by (normalized)
// name. Returns 0 when both paths fail.
func resolveRef(raw string, byID func(uint) bool, byName map[string]uint, normalize bool) uint {
	if id, err := strconv.ParseUint(raw, 10, 32); err == nil && byID(uint(id)) {
		return uint(id)
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	if normalize {
		key = normalizeText(raw)
	}
	return byName[key]
}

func rowErr(rowNum int, format string, args ...any) string {
	return fmt.Sprintf("Linha %d: %s", rowNum, fmt.Sprintf(format, args...))
}
