package model

import "time"

// Recurrence units accepted on a ScheduleDefinition.
const (
	UnitNone  = "none"
	UnitDay   = "day"
	UnitMonth = "month"
	UnitYear  = "year"
)

// ScheduleDefinition is the reusable template for a (possibly recurring)
// obligation. Occurrences are materialized from it, never the other way.
type ScheduleDefinition struct {
	ID                 uint `gorm:"primaryKey"`
	ProjectID          uint `gorm:"index"`
	CategoryID         uint `gorm:"index"`
	Description        string
	InitialDue         time.Time
	RecurrenceUnit     string `gorm:"default:none"`
	RecurrenceInterval int
	Repetitions        int
	Obligatory         bool
	HasAttachment      bool `gorm:"default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Recurring reports whether the definition carries a recurrence rule.
func (d ScheduleDefinition) Recurring() bool {
	return d.RecurrenceUnit != "" && d.RecurrenceUnit != UnitNone
}
