package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"content-control/internal/model"
)

// AnalysisRepository loads analysis inputs (documents, indicators, prompts)
// and records results.
type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) GetDocument(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *AnalysisRepository) CreateDocument(ctx context.Context, doc *model.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetIndicator(ctx context.Context, id uint) (*model.Indicator, error) {
	var ind model.Indicator
	if err := r.db.WithContext(ctx).Preload("Values", func(db *gorm.DB) *gorm.DB {
		return db.Order("period ASC")
	}).First(&ind, id).Error; err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *AnalysisRepository) CreateIndicator(ctx context.Context, ind *model.Indicator) error {
	if err := r.db.WithContext(ctx).Create(ind).Error; err != nil {
		return fmt.Errorf("create indicator: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetPrompt(ctx context.Context, id uint) (*model.Prompt, error) {
	var prompt model.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, id).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (r *AnalysisRepository) ListPrompts(ctx context.Context) ([]model.Prompt, error) {
	var prompts []model.Prompt
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&prompts).Error; err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, nil
}

func (r *AnalysisRepository) CreatePrompt(ctx context.Context, prompt *model.Prompt) error {
	if err := r.db.WithContext(ctx).Create(prompt).Error; err != nil {
		return fmt.Errorf("create prompt: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) CreateAnalysis(ctx context.Context, analysis *model.Analysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) ListAnalyses(ctx context.Context) ([]model.Analysis, error) {
	var analyses []model.Analysis
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return analyses, nil
}
