package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/internal/scoring"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
)

type fakeNewsRepo struct {
	articles []entity.NewsArticle
}

func (f *fakeNewsRepo) CreateIgnoreConflict(ctx context.Context, article *entity.NewsArticle) (bool, error) {
	return true, nil
}

func (f *fakeNewsRepo) FindRecentByStock(ctx context.Context, stockID uint, since time.Time) ([]entity.NewsArticle, error) {
	return f.articles, nil
}

func (f *fakeNewsRepo) FindExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

type fakeAIRepo struct {
	agentScore float64
	declared   string
	confidence string
}

func (f *fakeAIRepo) AnalyzeAgent(ctx context.Context, agentName string, input *dto.AgentContext) (*dto.AgentAnalysisResult, error) {
	return &dto.AgentAnalysisResult{
		AgentName: agentName,
		Score:     f.agentScore,
		Reasoning: agentName + " reasoning",
	}, nil
}

func (f *fakeAIRepo) Synthesize(ctx context.Context, input *dto.AgentContext, agents []dto.AgentAnalysisResult, consensusScore float64) (*dto.SynthesisResult, error) {
	return &dto.SynthesisResult{
		Recommendation: f.declared,
		Confidence:     f.confidence,
		DebateSummary:  "agents debated",
		RiskFactors:    []string{"execution risk"},
	}, nil
}

func (f *fakeAIRepo) ClassifySentiment(ctx context.Context, headline, summary string) (string, error) {
	return "neutral", nil
}

type analysisFixture struct {
	service         FullAnalysisService
	predictionsRepo *fakePredictionsRepo
	historyRepo     *fakeHistoryRepo
}

func newAnalysisFixture(t *testing.T, prior *entity.Prediction, aiRepo *fakeAIRepo) *analysisFixture {
	t.Helper()

	log, err := logger.New("error", "json")
	require.NoError(t, err)

	predictions := map[uint]*entity.Prediction{}
	if prior != nil {
		predictions[prior.StockID] = prior
	}
	predictionsRepo := &fakePredictionsRepo{byStock: predictions}
	historyRepo := &fakeHistoryRepo{}
	cfg := &config.Config{Analyzer: config.Analyzer{NewsMaxAgeDays: 3, NewsMaxPerStock: 10}}

	svc := NewFullAnalysisService(cfg, log, nil,
		&fakeStocksRepo{stocks: map[uint]*entity.Stock{1: testStock(1, "ACME")}},
		predictionsRepo,
		&fakeNewsRepo{},
		historyRepo,
		&fakeQuoteRepo{price: 100},
		aiRepo,
		nil)

	return &analysisFixture{service: svc, predictionsRepo: predictionsRepo, historyRepo: historyRepo}
}

func TestAnalyzeStoresDeclaredRecommendation(t *testing.T) {
	// Consensus score 10 implies HOLD, but the synthesis declares SELL. The
	// declared call is what gets stored; the score only flags the deviation.
	f := newAnalysisFixture(t, nil, &fakeAIRepo{agentScore: 10, declared: "SELL", confidence: "HIGH"})

	result, err := f.service.Analyze(context.Background(), "ACME", "manual")
	require.NoError(t, err)

	assert.Equal(t, "SELL", result.Recommendation)

	stored := f.predictionsRepo.replaced
	require.NotNil(t, stored)
	assert.Equal(t, "SELL", stored.Recommendation)
	assert.InDelta(t, 10, stored.FinalScore, 0.0001)

	// The stored pair disagrees, so the dashboard's recomputed trust signal
	// actually fires.
	recon := scoring.ReconcileRecommendation(stored.FinalScore, scoring.Recommendation(stored.Recommendation))
	assert.True(t, recon.HasDeviation)
	assert.Equal(t, scoring.DeviationMinor, recon.DeviationSeverity)
	assert.Equal(t, scoring.RecommendationHold, recon.CalculatedRecommendation)

	require.Len(t, f.predictionsRepo.replacedScores, len(common.AgentNames))
	assert.InDelta(t, agentWeights["fundamental"], f.predictionsRepo.replacedScores[0].Weight, 0.0001)
}

func TestAnalyzeMatchingDeclarationHasNoDeviation(t *testing.T) {
	f := newAnalysisFixture(t, nil, &fakeAIRepo{agentScore: 45, declared: "BUY", confidence: "MEDIUM"})

	result, err := f.service.Analyze(context.Background(), "ACME", "manual")
	require.NoError(t, err)

	assert.Equal(t, "BUY", result.Recommendation)

	stored := f.predictionsRepo.replaced
	require.NotNil(t, stored)
	recon := scoring.ReconcileRecommendation(stored.FinalScore, scoring.Recommendation(stored.Recommendation))
	assert.False(t, recon.HasDeviation)
	assert.Equal(t, scoring.DeviationNone, recon.DeviationSeverity)
}

func TestAnalyzeRecordsChangeOnDeclaredFlip(t *testing.T) {
	prior := &entity.Prediction{
		ID:             5,
		StockID:        1,
		FinalScore:     40,
		Recommendation: "BUY",
		Confidence:     "HIGH",
		CreatedAt:      time.Now().UTC().Add(-48 * time.Hour),
	}
	f := newAnalysisFixture(t, prior, &fakeAIRepo{agentScore: 10, declared: "SELL", confidence: "HIGH"})

	_, err := f.service.Analyze(context.Background(), "ACME", "manual")
	require.NoError(t, err)

	// The change trail compares declared calls, not score-implied ones.
	require.Len(t, f.historyRepo.created, 1)
	assert.Equal(t, "BUY", f.historyRepo.created[0].PreviousRecommendation)
	assert.Equal(t, "SELL", f.historyRepo.created[0].NewRecommendation)
}
