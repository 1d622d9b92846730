package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/checkpoint"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/pkg/logger"
)

type writeCall struct {
	predictionID   uint
	checkpointType checkpoint.Type
	result         entity.CheckpointResult
	mirror         *entity.CheckpointResult
}

type fakeCheckpointPredictionsRepo struct {
	pending []entity.Prediction
	writes  []writeCall
}

func (f *fakeCheckpointPredictionsRepo) FindByStockID(ctx context.Context, stockID uint) (*entity.Prediction, error) {
	for i := range f.pending {
		if f.pending[i].StockID == stockID {
			return &f.pending[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCheckpointPredictionsRepo) FindWithPendingCheckpoints(ctx context.Context) ([]entity.Prediction, error) {
	return f.pending, nil
}

func (f *fakeCheckpointPredictionsRepo) Replace(ctx context.Context, prediction *entity.Prediction, scores []entity.AgentScore) error {
	return nil
}

func (f *fakeCheckpointPredictionsRepo) WriteCheckpoint(ctx context.Context, predictionID uint, checkpointType checkpoint.Type, result datatypes.JSON, mirror *entity.CheckpointResult) error {
	var parsed entity.CheckpointResult
	if err := json.Unmarshal(result, &parsed); err != nil {
		return err
	}
	f.writes = append(f.writes, writeCall{
		predictionID:   predictionID,
		checkpointType: checkpointType,
		result:         parsed,
		mirror:         mirror,
	})
	return nil
}

type fakeQuoteRepo struct {
	price float64
	err   error
}

func (f *fakeQuoteRepo) GetPrice(ctx context.Context, ticker string) (float64, error) {
	return f.price, f.err
}

func newCheckpointFixture(t *testing.T, pending []entity.Prediction, price float64) (CheckpointService, *fakeCheckpointPredictionsRepo) {
	t.Helper()

	log, err := logger.New("error", "json")
	require.NoError(t, err)

	predictionsRepo := &fakeCheckpointPredictionsRepo{pending: pending}
	svc := NewCheckpointService(&config.Config{}, log, nil,
		&fakeStocksRepo{stocks: map[uint]*entity.Stock{1: testStock(1, "ACME")}},
		predictionsRepo,
		&fakeQuoteRepo{price: price},
		nil)
	return svc, predictionsRepo
}

func TestEvaluateDueWritesMaturedSlots(t *testing.T) {
	// An 11-day-old BUY prediction: 5d and 10d are due, 20d is not.
	prediction := entity.Prediction{
		ID:                7,
		StockID:           1,
		FinalScore:        45,
		Recommendation:    "BUY",
		Confidence:        "HIGH",
		PriceAtPrediction: 100,
		CreatedAt:         time.Now().UTC().Add(-11 * 24 * time.Hour),
	}

	svc, predictionsRepo := newCheckpointFixture(t, []entity.Prediction{prediction}, 104)

	summary, err := svc.EvaluateDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Evaluated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, predictionsRepo.writes, 2)
	assert.Equal(t, checkpoint.Type5D, predictionsRepo.writes[0].checkpointType)
	assert.Equal(t, checkpoint.Type10D, predictionsRepo.writes[1].checkpointType)

	tenDay := predictionsRepo.writes[1]
	assert.InDelta(t, 4.0, tenDay.result.ReturnPct, 0.0001)
	assert.Equal(t, "UP", tenDay.result.Direction)
	assert.True(t, tenDay.result.DirectionalAccuracy)

	// Only the primary checkpoint mirrors into queryable columns.
	assert.Nil(t, predictionsRepo.writes[0].mirror)
	require.NotNil(t, tenDay.mirror)
	assert.InDelta(t, 4.0, tenDay.mirror.ReturnPct, 0.0001)
}

func TestEvaluateDueSkipsFilledSlots(t *testing.T) {
	filled, err := json.Marshal(entity.CheckpointResult{Price: 101, ReturnPct: 1, Direction: "UP"})
	require.NoError(t, err)

	prediction := entity.Prediction{
		ID:                7,
		StockID:           1,
		FinalScore:        45,
		Recommendation:    "BUY",
		Confidence:        "HIGH",
		PriceAtPrediction: 100,
		Checkpoint5D:      datatypes.JSON(filled),
		CreatedAt:         time.Now().UTC().Add(-6 * 24 * time.Hour),
	}

	svc, predictionsRepo := newCheckpointFixture(t, []entity.Prediction{prediction}, 104)

	summary, err := svc.EvaluateDue(context.Background())
	require.NoError(t, err)

	// 5d already holds a result, 10d and 20d are not yet due.
	assert.Equal(t, 0, summary.Evaluated)
	assert.Equal(t, 3, summary.Skipped)
	assert.Empty(t, predictionsRepo.writes)
}

func TestEvaluateOneRejectsImmatureCheckpoint(t *testing.T) {
	prediction := entity.Prediction{
		ID:                7,
		StockID:           1,
		FinalScore:        45,
		Recommendation:    "BUY",
		Confidence:        "HIGH",
		PriceAtPrediction: 100,
		CreatedAt:         time.Now().UTC().Add(-2 * 24 * time.Hour),
	}

	svc, predictionsRepo := newCheckpointFixture(t, []entity.Prediction{prediction}, 104)

	result, err := svc.EvaluateOne(context.Background(), "ACME", checkpoint.Type20D)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "days remaining")
	assert.Empty(t, predictionsRepo.writes)
}
