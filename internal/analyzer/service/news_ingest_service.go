package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-advisor/internal/analyzer/config"
	"golang-stock-advisor/internal/analyzer/dto"
	"golang-stock-advisor/internal/analyzer/repository"
	"golang-stock-advisor/internal/catalyst"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/redis/go-redis/v9"
)

type NewsIngestService interface {
	ProcessTask(ctx context.Context)
	Ingest(ctx context.Context, stockID uint) error
}

type newsIngestService struct {
	cfg          *config.Config
	log          *logger.Logger
	redisClient  *redis.Client
	stocksRepo   repository.StocksRepository
	newsRepo     repository.NewsRepository
	ratingsRepo  repository.AnalystRatingsRepository
	catalystRepo repository.CatalystEventsRepository
	aiRepo       repository.AIRepository
	classifier   *catalyst.Classifier
	client       *http.Client
}

func NewNewsIngestService(cfg *config.Config, log *logger.Logger,
	redisClient *redis.Client,
	stocksRepo repository.StocksRepository,
	newsRepo repository.NewsRepository,
	ratingsRepo repository.AnalystRatingsRepository,
	catalystRepo repository.CatalystEventsRepository,
	aiRepo repository.AIRepository) NewsIngestService {
	return &newsIngestService{
		cfg:          cfg,
		log:          log,
		redisClient:  redisClient,
		stocksRepo:   stocksRepo,
		newsRepo:     newsRepo,
		ratingsRepo:  ratingsRepo,
		catalystRepo: catalystRepo,
		aiRepo:       aiRepo,
		classifier:   catalyst.NewClassifier(),
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// ProcessTask dequeues and runs a single news ingest task.
func (s *newsIngestService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamNewsIngest, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block for 2 seconds to allow graceful shutdown
	}).Result()
	if err != nil {
		// Ignore context cancellation and timeout errors, as they are expected during shutdown or idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]

	taskData, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		return
	}

	var task dto.NewsIngestTask
	if err := json.Unmarshal([]byte(taskData), &task); err != nil {
		s.log.Error("Failed to unmarshal task data", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	s.log.Debug("Processing news ingest task", logger.StringField("ticker", task.Ticker))

	if err := s.Ingest(ctx, task.StockID); err != nil {
		s.log.Error("Failed to ingest news", logger.ErrorField(err), logger.Field("message_id", message.ID), logger.StringField("ticker", task.Ticker))
		return
	}
	if err := ackNDel(ctx, s.redisClient, s.log, common.RedisStreamNewsIngest, message.ID); err != nil {
		s.log.Error("Failed to acknowledge and delete news ingest task", logger.ErrorField(err), logger.Field("message_id", message.ID))
		return
	}

	s.log.Debug("News ingest task processed successfully", logger.StringField("ticker", task.Ticker))
}

// Ingest pulls the RSS feed and the analyst rating feed for one stock,
// labels new articles, then runs the catalyst classifier over everything new
// and stores the detected events.
func (s *newsIngestService) Ingest(ctx context.Context, stockID uint) error {
	stock, err := s.stocksRepo.FindByID(ctx, stockID)
	if err != nil {
		return fmt.Errorf("failed to find stock %d: %w", stockID, err)
	}
	if stock == nil {
		return fmt.Errorf("stock %d not found", stockID)
	}

	articles, err := s.ingestFeed(ctx, stock)
	if err != nil {
		return err
	}

	ratings, err := s.ingestRatings(ctx, stock)
	if err != nil {
		s.log.Error("Failed to ingest analyst ratings", logger.ErrorField(err), logger.StringField("ticker", stock.Ticker))
		ratings = nil
	}

	if len(articles) == 0 && len(ratings) == 0 {
		return nil
	}

	now := utils.TimeNowUTC()
	recent, err := s.recentCatalysts(ctx, stock.ID, now)
	if err != nil {
		return err
	}

	detected := s.classifier.Classify(articles, ratings, recent, now)
	if len(detected) == 0 {
		return nil
	}

	events := make([]entity.CatalystEvent, 0, len(detected))
	for _, d := range detected {
		events = append(events, entity.CatalystEvent{
			StockID:       stock.ID,
			EventType:     string(d.EventType),
			Urgency:       string(d.Urgency),
			ImpactOnScore: d.ImpactScore,
			Description:   d.Description,
			SourceURL:     d.SourceURL,
			DetectedAt:    now,
		})
	}
	if err := s.catalystRepo.CreateBatch(ctx, events); err != nil {
		return fmt.Errorf("failed to store catalyst events: %w", err)
	}

	s.log.Info("Catalysts detected",
		logger.StringField("ticker", stock.Ticker),
		logger.IntField("articles", len(articles)),
		logger.IntField("ratings", len(ratings)),
		logger.IntField("events", len(events)),
	)
	return nil
}

func (s *newsIngestService) ingestFeed(ctx context.Context, stock *entity.Stock) ([]catalyst.Article, error) {
	feedURL := fmt.Sprintf("%s/search?q=%s", s.cfg.NewsFeed.BaseURL, url.QueryEscape(stock.Ticker+" stock"))
	s.log.Info("Processing RSS feed", logger.StringField("url", feedURL))

	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	// Sort items by published date descending
	sort.Slice(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	items, err := s.filterExistingItems(ctx, feed.Items)
	if err != nil {
		return nil, err
	}

	var articles []catalyst.Article
	for _, item := range items {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		if len(articles) >= s.cfg.Analyzer.NewsMaxPerStock {
			break
		}

		article, err := s.processFeedItem(ctx, stock, item)
		if err != nil {
			s.log.Error("Failed to process news item", logger.ErrorField(err), logger.StringField("title", item.Title))
			continue
		}
		if article != nil {
			articles = append(articles, *article)
		}
	}
	return articles, nil
}

// filterExistingItems drops feed items already ingested (by hash) or older
// than the configured maximum age.
func (s *newsIngestService) filterExistingItems(ctx context.Context, items []*gofeed.Item) ([]*gofeed.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	hashes := make([]string, 0, len(items))
	for _, item := range items {
		hashes = append(hashes, itemHash(item))
	}

	existing, err := s.newsRepo.FindExistingHashes(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing news hashes: %w", err)
	}

	cutoff := utils.TimeNowUTC().AddDate(0, 0, -s.cfg.Analyzer.NewsMaxAgeDays)

	var filtered []*gofeed.Item
	for _, item := range items {
		if existing[itemHash(item)] {
			continue
		}
		if item.PublishedParsed == nil {
			continue
		}
		if item.PublishedParsed.UTC().Before(cutoff) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

// processFeedItem stores one article and returns its classifier view, or
// (nil, nil) when it was skipped or lost a concurrent insert race.
func (s *newsIngestService) processFeedItem(ctx context.Context, stock *entity.Stock, item *gofeed.Item) (*catalyst.Article, error) {
	parsedURL, err := url.Parse(item.Link)
	if err != nil {
		return nil, fmt.Errorf("failed to parse article URL: %w", err)
	}
	if utils.ContainsString(s.cfg.NewsFeed.BlacklistedDomains, parsedURL.Hostname()) {
		s.log.Warn("Skip news from blacklisted domain", logger.StringField("domain", parsedURL.Hostname()))
		return nil, nil
	}

	summary := strings.TrimSpace(item.Description)
	if content, err := s.extractContent(ctx, item.Link); err == nil && content != "" {
		summary = content
	}
	if len(summary) > 1000 {
		summary = summary[:1000]
	}

	headline := utils.CleanToValidUTF8(item.Title)
	summary = utils.CleanToValidUTF8(summary)

	sentiment, err := s.aiRepo.ClassifySentiment(ctx, headline, summary)
	if err != nil {
		s.log.Error("Failed to classify sentiment, defaulting to neutral", logger.ErrorField(err), logger.StringField("title", headline))
		sentiment = string(catalyst.SentimentNeutral)
	}

	article := &entity.NewsArticle{
		StockID:        stock.ID,
		Headline:       headline,
		Summary:        summary,
		Sentiment:      sentiment,
		URL:            item.Link,
		Source:         parsedURL.Hostname(),
		HashIdentifier: itemHash(item),
		PublishedAt:    item.PublishedParsed,
	}

	inserted, err := s.newsRepo.CreateIgnoreConflict(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("failed to store article: %w", err)
	}
	if !inserted {
		return nil, nil
	}

	return &catalyst.Article{
		Headline:  headline,
		Summary:   summary,
		Sentiment: catalyst.ParseSentiment(sentiment),
		URL:       item.Link,
	}, nil
}

func (s *newsIngestService) extractContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for news item: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch news content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch news content, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse news content: %w", err)
	}
	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse news content: %w", err)
	}

	content := strings.TrimSpace(docHTML.Text())
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "\t", " ")
	content = strings.ReplaceAll(content, "\r", " ")
	return content, nil
}

func (s *newsIngestService) ingestRatings(ctx context.Context, stock *entity.Stock) ([]catalyst.RatingChange, error) {
	records, err := s.ratingsRepo.FetchRecent(ctx, stock.Ticker)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		if err := s.ratingsRepo.UpsertBatch(ctx, stock.ID, records); err != nil {
			return nil, err
		}
	}

	since := utils.TimeNowUTC().Add(-48 * time.Hour)
	stored, err := s.ratingsRepo.FindRecent(ctx, stock.ID, since)
	if err != nil {
		return nil, err
	}

	ratings := make([]catalyst.RatingChange, 0, len(stored))
	for _, rating := range stored {
		ratings = append(ratings, catalyst.RatingChange{
			Date:   rating.RatedAt,
			Action: rating.Action,
			From:   rating.FromRating,
			To:     rating.ToRating,
		})
	}
	return ratings, nil
}

func (s *newsIngestService) recentCatalysts(ctx context.Context, stockID uint, now time.Time) ([]catalyst.RecentCatalyst, error) {
	stored, err := s.catalystRepo.FindRecentByStock(ctx, stockID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent catalysts: %w", err)
	}

	recent := make([]catalyst.RecentCatalyst, 0, len(stored))
	for _, event := range stored {
		recent = append(recent, catalyst.RecentCatalyst{
			EventType:   catalyst.EventType(event.EventType),
			Description: event.Description,
			DetectedAt:  event.DetectedAt,
		})
	}
	return recent, nil
}

func itemHash(item *gofeed.Item) string {
	sum := md5.Sum([]byte(item.Link + "|" + item.Published))
	return hex.EncodeToString(sum[:])
}
