package model

import "time"

// Task is an ad-hoc work item assigned to a user within a task list.
type Task struct {
	ID         uint `gorm:"primaryKey"`
	TaskListID uint `gorm:"index"`
	UserID     uint `gorm:"index"`
	Content    string
	Due        *time.Time
	Completed  bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Routine recurrence types (distinct vocabulary from schedule definitions).
const (
	RoutineDaily   = "daily"
	RoutineWeekly  = "weekly"
	RoutineMonthly = "monthly"
	RoutineYearly  = "yearly"
)

// Routine is a recurring work item. Weekdays holds a comma-separated list of
// 0-6 values and is only meaningful for weekly routines.
type Routine struct {
	ID                 uint `gorm:"primaryKey"`
	TaskListID         uint `gorm:"index"`
	UserID             uint `gorm:"index"`
	Content            string
	RecurrenceType     string
	RecurrenceInterval int `gorm:"default:1"`
	Weekdays           string
	StartDate          time.Time
	EndDate            *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
