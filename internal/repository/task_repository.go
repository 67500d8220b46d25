package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"content-control/internal/model"
)

// TaskRepository handles CRUD for tasks and routines.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) CreateTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&tasks).Error; err != nil {
		return fmt.Errorf("create tasks: %w", err)
	}
	return nil
}

func (r *TaskRepository) CreateRoutines(ctx context.Context, routines []model.Routine) error {
	if len(routines) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&routines).Error; err != nil {
		return fmt.Errorf("create routines: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListTasks(ctx context.Context, listID uint) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Order("due ASC, id ASC")
	if listID != 0 {
		q = q.Where("task_list_id = ?", listID)
	}
	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListRoutines(ctx context.Context, listID uint) ([]model.Routine, error) {
	q := r.db.WithContext(ctx).Order("start_date ASC, id ASC")
	if listID != 0 {
		q = q.Where("task_list_id = ?", listID)
	}
	var routines []model.Routine
	if err := q.Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}
