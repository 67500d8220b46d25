package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-control/internal/apperr"
	"content-control/internal/model"
	"content-control/internal/repository"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestAnalyzeDocumentPersistsResult(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	ctx := context.Background()

	doc := model.Document{Name: "Relatório Anual", Text: "Conteúdo do relatório."}
	require.NoError(t, repo.CreateDocument(ctx, &doc))
	prompt := model.Prompt{Name: "Resumo", Text: "Resuma o documento a seguir."}
	require.NoError(t, repo.CreatePrompt(ctx, &prompt))

	gen := &fakeGenerator{reply: "Resumo gerado."}
	svc := NewAnalysisService(repo, gen, zap.NewNop())

	analysis, err := svc.AnalyzeDocument(ctx, doc.ID, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Resumo gerado.", analysis.Result)
	require.NotNil(t, analysis.DocumentID)
	assert.Equal(t, doc.ID, *analysis.DocumentID)
	assert.Nil(t, analysis.IndicatorID)

	require.Len(t, gen.prompts, 1)
	assert.True(t, strings.HasPrefix(gen.prompts[0], prompt.Text))
	assert.Contains(t, gen.prompts[0], doc.Text)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, analysis.ID, history[0].ID)
}

func TestAnalyzeDocumentMissingEntities(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	ctx := context.Background()

	svc := NewAnalysisService(repo, &fakeGenerator{}, zap.NewNop())

	_, err := svc.AnalyzeDocument(ctx, 99, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	doc := model.Document{Name: "Doc", Text: "texto"}
	require.NoError(t, repo.CreateDocument(ctx, &doc))
	_, err = svc.AnalyzeDocument(ctx, doc.ID, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAnalyzeDocumentGeneratorFailure(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	ctx := context.Background()

	doc := model.Document{Name: "Doc", Text: "texto"}
	require.NoError(t, repo.CreateDocument(ctx, &doc))
	prompt := model.Prompt{Name: "Resumo", Text: "Resuma."}
	require.NoError(t, repo.CreatePrompt(ctx, &prompt))

	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := NewAnalysisService(repo, gen, zap.NewNop())

	_, err := svc.AnalyzeDocument(ctx, doc.ID, prompt.ID)
	assert.True(t, apperr.IsExternal(err))

	// Failed runs leave no record behind.
	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAnalyzeIndicatorRendersSeries(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	ctx := context.Background()

	ind := model.Indicator{
		Name: "Publicações revisadas",
		Unit: "itens",
		Values: []model.IndicatorValue{
			{Period: "2024-01", Value: 12},
			{Period: "2024-02", Value: 17.5},
		},
	}
	require.NoError(t, repo.CreateIndicator(ctx, &ind))
	prompt := model.Prompt{Name: "Tendência", Text: "Analise a tendência."}
	require.NoError(t, repo.CreatePrompt(ctx, &prompt))

	gen := &fakeGenerator{reply: "Tendência de alta."}
	svc := NewAnalysisService(repo, gen, zap.NewNop())

	analysis, err := svc.AnalyzeIndicator(ctx, ind.ID, prompt.ID)
	require.NoError(t, err)
	require.NotNil(t, analysis.IndicatorID)
	assert.Equal(t, ind.ID, *analysis.IndicatorID)
	assert.Nil(t, analysis.DocumentID)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Publicações revisadas")
	assert.Contains(t, gen.prompts[0], "2024-01: 12 itens")
	assert.Contains(t, gen.prompts[0], "2024-02: 17.5 itens")
}

func TestAnalyzeIndicatorNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)

	svc := NewAnalysisService(repo, &fakeGenerator{}, zap.NewNop())

	_, err := svc.AnalyzeIndicator(context.Background(), 42, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
