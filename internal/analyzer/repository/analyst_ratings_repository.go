package repository

import (
	"context"
	"fmt"
	"time"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/pkg/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// AnalystRatingsRepository fetches rating changes from the provider feed and
// persists them for the classifier.
type AnalystRatingsRepository interface {
	FetchRecent(ctx context.Context, ticker string) ([]dto.RatingChangeRecord, error)
	UpsertBatch(ctx context.Context, stockID uint, records []dto.RatingChangeRecord) error
	FindRecent(ctx context.Context, stockID uint, since time.Time) ([]entity.AnalystRating, error)
}

type analystRatingsRepository struct {
	db             *gorm.DB
	log            *logger.Logger
	client         *resty.Client
	requestLimiter *rate.Limiter
}

// NewAnalystRatingsRepository creates a new AnalystRatingsRepository.
func NewAnalystRatingsRepository(db *gorm.DB, cfg *config.Config, log *logger.Logger) AnalystRatingsRepository {
	perMinute := cfg.RatingsFeed.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	client := resty.New().
		SetBaseURL(cfg.RatingsFeed.BaseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Authorization", "Bearer "+cfg.RatingsFeed.APIKey)

	return &analystRatingsRepository{
		db:             db,
		log:            log,
		client:         client,
		requestLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *analystRatingsRepository) FetchRecent(ctx context.Context, ticker string) ([]dto.RatingChangeRecord, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	var records []dto.RatingChangeRecord
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("ticker", ticker).
		SetResult(&records).
		Get("/v1/rating-changes")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rating changes: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rating feed returned status %d", resp.StatusCode())
	}
	return records, nil
}

func (r *analystRatingsRepository) UpsertBatch(ctx context.Context, stockID uint, records []dto.RatingChangeRecord) error {
	for _, record := range records {
		ratedAt, err := time.Parse("2006-01-02", record.Date)
		if err != nil {
			r.log.Warn("Skipping rating change with unparseable date",
				logger.StringField("date", record.Date),
				logger.Field("stock_id", stockID))
			continue
		}

		rating := entity.AnalystRating{
			StockID:    stockID,
			Action:     record.Action,
			FromRating: record.From,
			ToRating:   record.To,
			Firm:       record.Firm,
			RatedAt:    ratedAt,
		}

		err = r.db.WithContext(ctx).
			Where("stock_id = ? AND action = ? AND firm = ? AND rated_at = ?", stockID, record.Action, record.Firm, ratedAt).
			FirstOrCreate(&rating).Error
		if err != nil {
			return fmt.Errorf("failed to upsert analyst rating: %w", err)
		}
	}
	return nil
}

func (r *analystRatingsRepository) FindRecent(ctx context.Context, stockID uint, since time.Time) ([]entity.AnalystRating, error) {
	var ratings []entity.AnalystRating
	err := r.db.WithContext(ctx).
		Where("stock_id = ? AND rated_at >= ?", stockID, since).
		Order("rated_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
