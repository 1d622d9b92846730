package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/internal/checkpoint"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
)

type fakeStocksRepo struct {
	stocks map[uint]*entity.Stock
}

func (f *fakeStocksRepo) GetActiveStocks(ctx context.Context) ([]entity.Stock, error) {
	return nil, nil
}

func (f *fakeStocksRepo) FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error) {
	for _, stock := range f.stocks {
		if stock.Ticker == ticker {
			return stock, nil
		}
	}
	return nil, nil
}

func (f *fakeStocksRepo) FindByID(ctx context.Context, id uint) (*entity.Stock, error) {
	return f.stocks[id], nil
}

type fakePredictionsRepo struct {
	byStock        map[uint]*entity.Prediction
	replaced       *entity.Prediction
	replacedScores []entity.AgentScore
}

func (f *fakePredictionsRepo) FindByStockID(ctx context.Context, stockID uint) (*entity.Prediction, error) {
	return f.byStock[stockID], nil
}

func (f *fakePredictionsRepo) FindWithPendingCheckpoints(ctx context.Context) ([]entity.Prediction, error) {
	return nil, nil
}

func (f *fakePredictionsRepo) Replace(ctx context.Context, prediction *entity.Prediction, scores []entity.AgentScore) error {
	f.replaced = prediction
	f.replacedScores = scores
	return nil
}

func (f *fakePredictionsRepo) WriteCheckpoint(ctx context.Context, predictionID uint, checkpointType checkpoint.Type, result datatypes.JSON, mirror *entity.CheckpointResult) error {
	return nil
}

type markCall struct {
	eventIDs   []uint
	triggered  bool
	skipReason string
}

type fakeCatalystRepo struct {
	unprocessed []entity.CatalystEvent
	marks       []markCall
}

func (f *fakeCatalystRepo) CreateBatch(ctx context.Context, events []entity.CatalystEvent) error {
	return nil
}

func (f *fakeCatalystRepo) FindUnprocessed(ctx context.Context, lookback time.Duration) ([]entity.CatalystEvent, error) {
	return f.unprocessed, nil
}

func (f *fakeCatalystRepo) FindRecentByStock(ctx context.Context, stockID uint, since time.Time) ([]entity.CatalystEvent, error) {
	return nil, nil
}

func (f *fakeCatalystRepo) MarkProcessed(ctx context.Context, eventIDs []uint, triggered bool, skipReason string) error {
	f.marks = append(f.marks, markCall{eventIDs: eventIDs, triggered: triggered, skipReason: skipReason})
	return nil
}

type fakeHistoryRepo struct {
	catalystCount int
	created       []entity.RecommendationHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, history *entity.RecommendationHistory) error {
	f.created = append(f.created, *history)
	return nil
}

func (f *fakeHistoryRepo) CountCatalystTriggered(ctx context.Context, stockID uint, since time.Time) (int, error) {
	return f.catalystCount, nil
}

type analyzeCall struct {
	ticker string
	reason string
}

type fakeFullAnalysis struct {
	calls []analyzeCall
	err   error
}

func (f *fakeFullAnalysis) ProcessTask(ctx context.Context) {}

func (f *fakeFullAnalysis) Analyze(ctx context.Context, ticker string, reason string) (*dto.FullAnalysisResult, error) {
	f.calls = append(f.calls, analyzeCall{ticker: ticker, reason: reason})
	if f.err != nil {
		return nil, f.err
	}
	return &dto.FullAnalysisResult{Success: true, Recommendation: "BUY", Score: 40}, nil
}

type scanFixture struct {
	service      CatalystScanService
	catalystRepo *fakeCatalystRepo
	fullAnalysis *fakeFullAnalysis
}

func newScanFixture(t *testing.T, stocks []*entity.Stock, predictions map[uint]*entity.Prediction, events []entity.CatalystEvent, catalystCount int) *scanFixture {
	t.Helper()

	log, err := logger.New("error", "json")
	require.NoError(t, err)

	stockMap := make(map[uint]*entity.Stock)
	for _, stock := range stocks {
		stockMap[stock.ID] = stock
	}

	catalystRepo := &fakeCatalystRepo{unprocessed: events}
	fullAnalysis := &fakeFullAnalysis{}
	cfg := &config.Config{Analyzer: config.Analyzer{CatalystLookbackHours: 24}}

	svc := NewCatalystScanService(cfg, log, nil,
		&fakeStocksRepo{stocks: stockMap},
		&fakePredictionsRepo{byStock: predictions},
		catalystRepo,
		&fakeHistoryRepo{catalystCount: catalystCount},
		fullAnalysis)

	return &scanFixture{service: svc, catalystRepo: catalystRepo, fullAnalysis: fullAnalysis}
}

func testStock(id uint, ticker string) *entity.Stock {
	return &entity.Stock{ID: id, Ticker: ticker, Name: ticker + " Inc", IsActive: true}
}

func testEvent(id, stockID uint, eventType, urgency string) entity.CatalystEvent {
	return entity.CatalystEvent{
		ID:         id,
		StockID:    stockID,
		EventType:  eventType,
		Urgency:    urgency,
		DetectedAt: time.Now().UTC().Add(-time.Hour),
	}
}

func TestScanBootstrapTriggersWithoutPrediction(t *testing.T) {
	f := newScanFixture(t,
		[]*entity.Stock{testStock(1, "ACME")},
		map[uint]*entity.Prediction{},
		[]entity.CatalystEvent{testEvent(10, 1, "general_positive_news", "LOW")},
		0)

	summary, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.StocksEvaluated)
	assert.Equal(t, []string{"ACME"}, summary.Triggered)
	assert.Empty(t, summary.Skipped)

	require.Len(t, f.fullAnalysis.calls, 1)
	assert.Equal(t, "ACME", f.fullAnalysis.calls[0].ticker)
	assert.Equal(t, "catalyst:general_positive_news", f.fullAnalysis.calls[0].reason)

	require.Len(t, f.catalystRepo.marks, 1)
	assert.True(t, f.catalystRepo.marks[0].triggered)
	assert.Equal(t, []uint{10}, f.catalystRepo.marks[0].eventIDs)
}

func TestScanSkipsLowUrgencyWithPrediction(t *testing.T) {
	f := newScanFixture(t,
		[]*entity.Stock{testStock(1, "ACME")},
		map[uint]*entity.Prediction{1: {ID: 5, StockID: 1, FinalScore: 28, Recommendation: "HOLD", Confidence: "MEDIUM", CreatedAt: time.Now().UTC().Add(-12 * time.Hour)}},
		[]entity.CatalystEvent{testEvent(10, 1, "earnings_beat", "MEDIUM")},
		0)

	summary, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ACME"}, summary.Skipped)
	assert.Empty(t, summary.Triggered)
	assert.Empty(t, f.fullAnalysis.calls)
	assert.InDelta(t, common.CostPerAnalysisUSD, summary.CostAvoidedUSD, 0.0001)

	require.Len(t, f.catalystRepo.marks, 1)
	assert.False(t, f.catalystRepo.marks[0].triggered)
	assert.NotEmpty(t, f.catalystRepo.marks[0].skipReason)
}

func TestScanBatchSharesHighestUrgencyRepresentative(t *testing.T) {
	f := newScanFixture(t,
		[]*entity.Stock{testStock(1, "ACME")},
		map[uint]*entity.Prediction{},
		[]entity.CatalystEvent{
			testEvent(10, 1, "product_launch", "MEDIUM"),
			testEvent(11, 1, "fda_approval", "CRITICAL"),
		},
		0)

	summary, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.StocksEvaluated)
	require.Len(t, f.fullAnalysis.calls, 1)
	assert.Equal(t, "catalyst:fda_approval", f.fullAnalysis.calls[0].reason)

	// The whole batch shares the trigger disposition.
	require.Len(t, f.catalystRepo.marks, 1)
	assert.ElementsMatch(t, []uint{10, 11}, f.catalystRepo.marks[0].eventIDs)
	assert.True(t, f.catalystRepo.marks[0].triggered)
}

func TestScanHardCapHoldsAgainstCritical(t *testing.T) {
	f := newScanFixture(t,
		[]*entity.Stock{testStock(1, "ACME")},
		map[uint]*entity.Prediction{1: {ID: 5, StockID: 1, FinalScore: 28, Recommendation: "HOLD", Confidence: "MEDIUM", CreatedAt: time.Now().UTC().Add(-12 * time.Hour)}},
		[]entity.CatalystEvent{testEvent(10, 1, "fda_rejection", "CRITICAL")},
		3)

	summary, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ACME"}, summary.Skipped)
	assert.Empty(t, f.fullAnalysis.calls)
}

func TestScanAnalysisFailureLeavesEventsUnprocessed(t *testing.T) {
	f := newScanFixture(t,
		[]*entity.Stock{testStock(1, "ACME")},
		map[uint]*entity.Prediction{},
		[]entity.CatalystEvent{testEvent(10, 1, "merger_announcement", "HIGH")},
		0)
	f.fullAnalysis.err = errors.New("model unavailable")

	summary, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "ACME", summary.Failed[0].Ticker)
	assert.Empty(t, summary.Triggered)
	// Nothing marked: the next sweep retries the batch.
	assert.Empty(t, f.catalystRepo.marks)
}

func TestScanGroupsMultipleStocksIndependently(t *testing.T) {
	f := newScanFixture(t,
		[]*entity.Stock{testStock(1, "ACME"), testStock(2, "GLOBEX")},
		map[uint]*entity.Prediction{
			2: {ID: 6, StockID: 2, FinalScore: 50, Recommendation: "BUY", Confidence: "MEDIUM", CreatedAt: time.Now().UTC().Add(-12 * time.Hour)},
		},
		[]entity.CatalystEvent{
			testEvent(10, 1, "earnings_beat", "HIGH"),
			testEvent(11, 2, "earnings_beat", "HIGH"),
		},
		0)

	summary, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.StocksEvaluated)
	// Stock 1 bootstraps; stock 2 sits 20 points from the boundary and skips.
	assert.Equal(t, []string{"ACME"}, summary.Triggered)
	assert.Equal(t, []string{"GLOBEX"}, summary.Skipped)
}
