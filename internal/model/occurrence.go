package model

import "time"

// ScheduleOccurrence is one dated instance derived from a ScheduleDefinition.
// Project, category, description and the recurrence rule are copied at
// materialization time, not re-joined. The unique index on
// (definition_id, due) rejects duplicate dates produced by racing top-ups.
type ScheduleOccurrence struct {
	ID                 uint `gorm:"primaryKey"`
	DefinitionID       uint `gorm:"index;index:idx_definition_due,unique"`
	ProjectID          uint `gorm:"index"`
	CategoryID         uint `gorm:"index"`
	Description        string
	InitialDue         time.Time
	Due                time.Time `gorm:"index:idx_definition_due,unique"`
	RecurrenceUnit     string
	RecurrenceInterval int
	Obligatory         bool
	HasAttachment      bool `gorm:"default:false"`

	// Downstream state, mutated by UI flows after materialization.
	Read           bool `gorm:"default:false"`
	Important      bool `gorm:"default:false"`
	Archived       bool `gorm:"default:false"`
	Snoozed        bool `gorm:"default:false"`
	AnalysisResult string
	AttachedValue  *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
