package service

import (
	"strconv"
	"strings"
	"time"

	"content-control/internal/model"
)

// Column layout of the definitions template.
const (
	colDefProject = iota
	colDefCategory
	colDefDescription
	colDefDue
	colDefUnit
	colDefInterval
	colDefRepetitions
	colDefObligatory
)

// Column layout of the tasks template.
const (
	colTaskContent = iota
	colTaskList
	colTaskUser
	colTaskDue
	colTaskStatus
)

// Column layout of the routines template.
const (
	colRoutineContent = iota
	colRoutineList
	colRoutineUser
	colRoutineType
	colRoutineInterval
	colRoutineWeekdays
	colRoutineStart
	colRoutineEnd
)

// Date layouts accepted in cells: the strict form the templates document,
// plus the short formats excelize renders native date cells with.
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "01-02-06", "02/01/2006"}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Recurrence-unit vocabulary of the definitions template. Portuguese literals
// are what the templates document; English is accepted for convenience.
var unitLiterals = map[string]string{
	"dia": model.UnitDay, "day": model.UnitDay,
	"mês": model.UnitMonth, "mes": model.UnitMonth, "month": model.UnitMonth,
	"ano": model.UnitYear, "year": model.UnitYear,
	"sem recorrência": model.UnitNone, "sem recorrencia": model.UnitNone,
	"none": model.UnitNone, "nenhuma": model.UnitNone, "": model.UnitNone,
}

func parseUnit(raw string) (string, bool) {
	unit, ok := unitLiterals[strings.ToLower(strings.TrimSpace(raw))]
	return unit, ok
}

// parseBool coerces the small boolean vocabulary the templates accept.
func parseBool(raw string, extraTrue ...string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", "false", "0", "não", "nao":
		return false, true
	case "true", "1", "sim":
		return true, true
	}
	for _, lit := range extraTrue {
		if v == lit {
			return true, true
		}
	}
	return false, false
}

func parseDefinitionRow(rowNum int, row []string, rc *ReferenceContext) (*model.ScheduleDefinition, []string) {
	var errs []string

	description := cell(row, colDefDescription)
	if description == "" {
		errs = append(errs, rowErr(rowNum, "Descrição é obrigatória"))
	}

	projectRaw := cell(row, colDefProject)
	var projectID uint
	if projectRaw == "" {
		errs = append(errs, rowErr(rowNum, "Projeto é obrigatório"))
	} else {
		projectID = resolveRef(projectRaw, func(id uint) bool { _, ok := rc.Projects[id]; return ok }, rc.projectByName, true)
		if projectID == 0 {
			errs = append(errs, rowErr(rowNum, "Projeto %q não encontrado", projectRaw))
		}
	}

	categoryRaw := cell(row, colDefCategory)
	var categoryID uint
	if categoryRaw == "" {
		errs = append(errs, rowErr(rowNum, "Categoria é obrigatória"))
	} else {
		categoryID = resolveRef(categoryRaw, func(id uint) bool { _, ok := rc.Categories[id]; return ok }, rc.categoryByName, true)
		if categoryID == 0 {
			errs = append(errs, rowErr(rowNum, "Categoria %q não encontrada", categoryRaw))
		}
	}

	dueRaw := cell(row, colDefDue)
	var due time.Time
	if dueRaw == "" {
		errs = append(errs, rowErr(rowNum, "Prazo de entrega é obrigatório"))
	} else if parsed, ok := parseDate(dueRaw); ok {
		due = parsed
	} else {
		errs = append(errs, rowErr(rowNum, "Prazo deve estar no formato YYYY-MM-DD"))
	}

	unit, ok := parseUnit(cell(row, colDefUnit))
	if !ok {
		errs = append(errs, rowErr(rowNum, "Recorrência inválida. Use: dia, mês, ano, sem recorrência"))
	}

	var interval, repetitions int
	if ok && unit != model.UnitNone {
		interval = parsePositiveInt(cell(row, colDefInterval))
		repetitions = parsePositiveInt(cell(row, colDefRepetitions))
		if interval == 0 || repetitions == 0 {
			errs = append(errs, rowErr(rowNum, "Intervalo e repetições devem ser inteiros positivos quando há recorrência"))
		}
	}

	obligatory, ok := parseBool(cell(row, colDefObligatory))
	if !ok {
		errs = append(errs, rowErr(rowNum, "Obrigatório deve ser SIM/NÃO ou true/false"))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &model.ScheduleDefinition{
		ProjectID:          projectID,
		CategoryID:         categoryID,
		Description:        description,
		InitialDue:         due,
		RecurrenceUnit:     unit,
		RecurrenceInterval: interval,
		Repetitions:        repetitions,
		Obligatory:         obligatory,
	}, nil
}

func parseTaskRow(rowNum int, row []string, rc *ReferenceContext) (*model.Task, []string) {
	var errs []string

	content := cell(row, colTaskContent)
	if content == "" {
		errs = append(errs, rowErr(rowNum, "Descrição é obrigatória"))
	}

	listID, userID, refErrs := resolveAssignment(rowNum, cell(row, colTaskList), cell(row, colTaskUser), rc)
	errs = append(errs, refErrs...)

	var due *time.Time
	if dueRaw := cell(row, colTaskDue); dueRaw != "" {
		if parsed, ok := parseDate(dueRaw); ok {
			due = &parsed
		} else {
			errs = append(errs, rowErr(rowNum, "Data deve estar no formato YYYY-MM-DD"))
		}
	}

	completed, ok := parseBool(cell(row, colTaskStatus), "concluída", "concluida")
	if !ok {
		errs = append(errs, rowErr(rowNum, "Status deve ser true/false"))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &model.Task{
		TaskListID: listID,
		UserID:     userID,
		Content:    content,
		Due:        due,
		Completed:  completed,
	}, nil
}

func parseRoutineRow(rowNum int, row []string, rc *ReferenceContext) (*model.Routine, []string) {
	var errs []string

	content := cell(row, colRoutineContent)
	if content == "" {
		errs = append(errs, rowErr(rowNum, "Descrição é obrigatória"))
	}

	listID, userID, refErrs := resolveAssignment(rowNum, cell(row, colRoutineList), cell(row, colRoutineUser), rc)
	errs = append(errs, refErrs...)

	recurrenceType := strings.ToLower(cell(row, colRoutineType))
	switch recurrenceType {
	case model.RoutineDaily, model.RoutineWeekly, model.RoutineMonthly, model.RoutineYearly:
	case "":
		errs = append(errs, rowErr(rowNum, "Tipo de recorrência é obrigatório"))
	default:
		errs = append(errs, rowErr(rowNum, "Tipo de recorrência inválido. Use: daily, weekly, monthly, yearly"))
	}

	interval := 1
	if raw := cell(row, colRoutineInterval); raw != "" {
		if interval = parsePositiveInt(raw); interval == 0 {
			errs = append(errs, rowErr(rowNum, "Intervalo de recorrência deve ser um inteiro positivo"))
		}
	}

	weekdays := ""
	if raw := cell(row, colRoutineWeekdays); raw != "" && recurrenceType == model.RoutineWeekly {
		days, ok := parseWeekdays(raw)
		if !ok {
			errs = append(errs, rowErr(rowNum, "Dias da semana devem ser valores 0-6 separados por vírgula"))
		}
		weekdays = days
	}

	var start time.Time
	if startRaw := cell(row, colRoutineStart); startRaw == "" {
		errs = append(errs, rowErr(rowNum, "Data de início é obrigatória"))
	} else if parsed, ok := parseDate(startRaw); ok {
		start = parsed
	} else {
		errs = append(errs, rowErr(rowNum, "Data de início deve estar no formato YYYY-MM-DD"))
	}

	var end *time.Time
	if endRaw := cell(row, colRoutineEnd); endRaw != "" {
		if parsed, ok := parseDate(endRaw); ok {
			end = &parsed
		} else {
			errs = append(errs, rowErr(rowNum, "Data de fim deve estar no formato YYYY-MM-DD"))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &model.Routine{
		TaskListID:         listID,
		UserID:             userID,
		Content:            content,
		RecurrenceType:     recurrenceType,
		RecurrenceInterval: interval,
		Weekdays:           weekdays,
		StartDate:          start,
		EndDate:            end,
	}, nil
}

// resolveAssignment resolves list and assignee references and checks that the
// assignee is authorized for the list.
func resolveAssignment(rowNum int, listRaw, userRaw string, rc *ReferenceContext) (uint, uint, []string) {
	var errs []string

	var listID uint
	if listRaw == "" {
		errs = append(errs, rowErr(rowNum, "Lista é obrigatória"))
	} else {
		listID = resolveRef(listRaw, func(id uint) bool { _, ok := rc.Lists[id]; return ok }, rc.listByName, false)
		if listID == 0 {
			errs = append(errs, rowErr(rowNum, "Lista %q não encontrada", listRaw))
		}
	}

	var userID uint
	if userRaw == "" {
		errs = append(errs, rowErr(rowNum, "Responsável é obrigatório"))
	} else {
		userID = resolveRef(userRaw, func(id uint) bool { _, ok := rc.Users[id]; return ok }, rc.userByName, false)
		if userID == 0 {
			errs = append(errs, rowErr(rowNum, "Usuário %q não encontrado", userRaw))
		}
	}

	if listID != 0 && userID != 0 && !rc.listMembers[listID][userID] {
		errs = append(errs, rowErr(rowNum, "Usuário %q não tem acesso à lista %q",
			rc.Users[userID].Name, rc.Lists[listID].Name))
	}
	return listID, userID, errs
}

func parsePositiveInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func parseWeekdays(raw string) (string, bool) {
	parts := strings.Split(raw, ",")
	days := make([]string, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			return "", false
		}
		days = append(days, strconv.Itoa(n))
	}
	return strings.Join(days, ","), true
}
