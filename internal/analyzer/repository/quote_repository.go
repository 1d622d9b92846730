package repository

import (
	"context"
	"fmt"
	"time"

	"golang-stock-advisor/pkg/config"
	"golang-stock-advisor/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// QuoteRepository serves live market prices with a short TTL cache so a
// checkpoint sweep over many predictions doesn't hammer the provider.
type QuoteRepository interface {
	GetPrice(ctx context.Context, ticker string) (float64, error)
}

type quoteRepository struct {
	log            *logger.Logger
	priceCache     *cache.Cache
	requestLimiter *rate.Limiter
}

// NewQuoteRepository creates a new QuoteRepository.
func NewQuoteRepository(cfg config.Quotes, log *logger.Logger) QuoteRepository {
	ttl := 5 * time.Minute
	if parsed, err := time.ParseDuration(cfg.CacheTTL); err == nil && parsed > 0 {
		ttl = parsed
	}
	perMinute := cfg.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	return &quoteRepository{
		log:            log,
		priceCache:     cache.New(ttl, 2*ttl),
		requestLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *quoteRepository) GetPrice(ctx context.Context, ticker string) (float64, error) {
	if cached, found := r.priceCache.Get(ticker); found {
		return cached.(float64), nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	q, err := quote.Get(ticker)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
	}
	if q == nil || q.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("no usable quote for %s", ticker)
	}

	// Normalize provider float noise to four decimal places.
	price := decimal.NewFromFloat(q.RegularMarketPrice).Round(4).InexactFloat64()

	r.priceCache.Set(ticker, price, cache.DefaultExpiration)
	r.log.Debug("Fetched live quote", logger.StringField("ticker", ticker), logger.Float64Field("price", price))
	return price, nil
}
