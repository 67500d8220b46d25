package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"content-control/internal/model"
)

// CatalogRepository reads and writes the flat reference catalogs
// (projects, categories, task lists, users) and their memberships.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (r *CatalogRepository) CreateProject(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetProject(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListTaskLists(ctx context.Context) ([]model.TaskList, error) {
	var lists []model.TaskList
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("list task lists: %w", err)
	}
	return lists, nil
}

func (r *CatalogRepository) CreateTaskList(ctx context.Context, list *model.TaskList) error {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return fmt.Errorf("create task list: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *CatalogRepository) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListMemberships(ctx context.Context) ([]model.ListMembership, error) {
	var memberships []model.ListMembership
	if err := r.db.WithContext(ctx).Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return memberships, nil
}

func (r *CatalogRepository) AddMembership(ctx context.Context, m *model.ListMembership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

func (r *CatalogRepository) AddProjectMembership(ctx context.Context, m *model.ProjectMembership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("add project membership: %w", err)
	}
	return nil
}

// ProjectRecipients returns the users linked to a project, for digest mail.
func (r *CatalogRepository) ProjectRecipients(ctx context.Context, projectID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN project_memberships pm ON pm.user_id = users.id").
		Where("pm.project_id = ?", projectID).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("project recipients: %w", err)
	}
	return users, nil
}
