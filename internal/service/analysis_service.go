package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"content-control/internal/apperr"
	"content-control/internal/model"
	"content-control/internal/repository"
)

// TextGenerator is the black-box text-completion boundary.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return result.Text(), nil
}

// AnalysisService runs stored prompts over documents and indicator series
// and records the results. One blocking call per analysis, no retry.
type AnalysisService struct {
	repo *repository.AnalysisRepository
	gen  TextGenerator
	log  *zap.Logger
}

func NewAnalysisService(repo *repository.AnalysisRepository, gen TextGenerator, log *zap.Logger) *AnalysisService {
	return &AnalysisService{repo: repo, gen: gen, log: log}
}

// AnalyzeDocument feeds a document's text through a stored prompt.
func (s *AnalysisService) AnalyzeDocument(ctx context.Context, documentID, promptID uint) (*model.Analysis, error) {
	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("document %d", documentID)
		}
		return nil, apperr.External("load document", err)
	}
	prompt, err := s.repo.GetPrompt(ctx, promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("prompt %d", promptID)
		}
		return nil, apperr.External("load prompt", err)
	}

	result, err := s.gen.Generate(ctx, prompt.Text+"\n\n---\n\n"+doc.Text)
	if err != nil {
		return nil, apperr.External("gemini", err)
	}

	analysis := model.Analysis{DocumentID: &doc.ID, PromptID: prompt.ID, Result: result}
	if err := s.repo.CreateAnalysis(ctx, &analysis); err != nil {
		return nil, apperr.External("persist analysis", err)
	}
	s.log.Info("document analyzed", zap.Uint("document_id", doc.ID), zap.Uint("prompt_id", prompt.ID))
	return &analysis, nil
}

// AnalyzeIndicator renders an indicator's value series into the prompt.
func (s *AnalysisService) AnalyzeIndicator(ctx context.Context, indicatorID, promptID uint) (*model.Analysis, error) {
	ind, err := s.repo.GetIndicator(ctx, indicatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("indicator %d", indicatorID)
		}
		return nil, apperr.External("load indicator", err)
	}
	prompt, err := s.repo.GetPrompt(ctx, promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("prompt %d", promptID)
		}
		return nil, apperr.External("load prompt", err)
	}

	result, err := s.gen.Generate(ctx, prompt.Text+"\n\n---\n\n"+renderIndicator(ind))
	if err != nil {
		return nil, apperr.External("gemini", err)
	}

	analysis := model.Analysis{IndicatorID: &ind.ID, PromptID: prompt.ID, Result: result}
	if err := s.repo.CreateAnalysis(ctx, &analysis); err != nil {
		return nil, apperr.External("persist analysis", err)
	}
	s.log.Info("indicator analyzed", zap.Uint("indicator_id", ind.ID), zap.Uint("prompt_id", prompt.ID))
	return &analysis, nil
}

// History returns past analyses, newest first.
func (s *AnalysisService) History(ctx context.Context) ([]model.Analysis, error) {
	return s.repo.ListAnalyses(ctx)
}

func renderIndicator(ind *model.Indicator) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Indicador: %s\n", ind.Name))
	if ind.Description != "" {
		sb.WriteString(fmt.Sprintf("Descrição: %s\n", ind.Description))
	}
	sb.WriteString("Série de valores:\n")
	for _, v := range ind.Values {
		if ind.Unit != "" {
			sb.WriteString(fmt.Sprintf("  %s: %g %s\n", v.Period, v.Value, ind.Unit))
		} else {
			sb.WriteString(fmt.Sprintf("  %s: %g\n", v.Period, v.Value))
		}
	}
	return sb.String()
}
