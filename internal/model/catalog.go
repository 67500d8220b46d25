package model

import "time"

// Project is a flat name/id catalog entry referenced by definitions and lists.
type Project struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category classifies schedule definitions (licenças, relatórios, etc.).
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskList groups tasks and routines under a project.
type TaskList struct {
	ID        uint `gorm:"primaryKey"`
	ProjectID uint `gorm:"index"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is an assignee/recipient catalog entry.
type User struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Email     string `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListMembership authorizes a user to receive work from a task list.
type ListMembership struct {
	ID         uint `gorm:"primaryKey"`
	TaskListID uint `gorm:"index:idx_list_user,unique"`
	UserID     uint `gorm:"index:idx_list_user,unique"`
	CreatedAt  time.Time
}

// ProjectMembership links users to projects for digest mail delivery.
type ProjectMembership struct {
	ID        uint `gorm:"primaryKey"`
	ProjectID uint `gorm:"index:idx_project_user,unique"`
	UserID    uint `gorm:"index:idx_project_user,unique"`
	CreatedAt time.Time
}
