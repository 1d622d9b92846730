package catalyst

import (
	"strings"
	"time"

	"golang-stock-advisor/pkg/utils"
)

// Sentiment is the precomputed label attached to an article at ingestion.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment normalizes a stored sentiment string, degrading anything
// unrecognized to neutral.
func ParseSentiment(raw string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(raw))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Article is one ingested news item scoped to a stock.
type Article struct {
	Headline  string
	Summary   string
	Sentiment Sentiment
	URL       string
}

// RatingChange is one analyst rating action.
type RatingChange struct {
	Date   time.Time
	Action string
	From   string
	To     string
}

// DetectedCatalyst is a typed event emitted by the classifier, ready to be
// stored as a catalyst_events row.
type DetectedCatalyst struct {
	EventType   EventType
	Urgency     Urgency
	ImpactScore float64
	Description string
	SourceURL   string
}

// RecentCatalyst is the slice of stored state the deduplication heuristic
// needs: same-stock catalysts from the trailing window.
type RecentCatalyst struct {
	EventType   EventType
	Description string
	DetectedAt  time.Time
}

const (
	impactPerKeyword       = 10.0
	positiveSentimentBoost = 15.0
	// Negative news moves prices harder than positive news of the same size,
	// so it gets the bigger boost.
	negativeSentimentBoost = 20.0
	maxImpactScore         = 50.0
	escalationKeywordCount = 3

	dedupWindow        = 24 * time.Hour
	dedupPrefixLength  = 50
	ratingChangeMaxAge = 48 * time.Hour
)

// category is one fixed keyword bucket with its base urgency.
type category struct {
	name     string
	urgency  Urgency
	keywords []string
}

// categories are evaluated in a fixed order so ties and audit output are
// deterministic.
var categories = []category{
	{"earnings", UrgencyMedium, []string{"earnings", "revenue", "profit", "quarterly", "guidance", "eps", "outlook"}},
	{"analyst", UrgencyMedium, []string{"analyst", "upgrade", "downgrade", "price target", "rating", "initiated coverage"}},
	{"fda", UrgencyHigh, []string{"fda", "approval", "clinical", "trial", "phase 3", "drug"}},
	{"merger", UrgencyHigh, []string{"merger", "acquisition", "acquire", "takeover", "buyout"}},
	{"leadership", UrgencyMedium, []string{"ceo", "cfo", "executive", "resign", "appointed", "steps down"}},
	{"legal", UrgencyMedium, []string{"lawsuit", "investigation", "sec", "fraud", "settlement", "subpoena"}},
	{"product", UrgencyMedium, []string{"launch", "product", "recall", "partnership", "contract"}},
}

// categoryEventTypes maps (category, sentiment) to an event-type leaf.
var categoryEventTypes = map[string]map[Sentiment]EventType{
	"earnings":   {SentimentPositive: EventEarningsBeat, SentimentNegative: EventEarningsMiss, SentimentNeutral: EventEarningsReport},
	"analyst":    {SentimentPositive: EventAnalystUpgrade, SentimentNegative: EventAnalystDowngrade, SentimentNeutral: EventAnalystCoverage},
	"fda":        {SentimentPositive: EventFDAApproval, SentimentNegative: EventFDARejection, SentimentNeutral: EventFDAUpdate},
	"merger":     {SentimentPositive: EventMergerAnnouncement, SentimentNegative: EventMergerTerminated, SentimentNeutral: EventMergerUpdate},
	"leadership": {SentimentPositive: EventLeadershipAppointment, SentimentNegative: EventLeadershipDeparture, SentimentNeutral: EventLeadershipChange},
	"legal":      {SentimentPositive: EventLegalResolution, SentimentNegative: EventLegalAction, SentimentNeutral: EventLegalUpdate},
	"product":    {SentimentPositive: EventProductLaunch, SentimentNegative: EventProductRecall, SentimentNeutral: EventProductUpdate},
}

// Classifier converts raw articles and rating changes into typed catalysts.
// It is stateless; the caller supplies the recent catalysts the dedup
// heuristic compares against. Malformed input never errors, it just fails to
// match and emits nothing.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify runs the full pipeline for one stock: keyword classification of
// articles, conversion of fresh rating changes, then deduplication against
// recent catalysts.
func (c *Classifier) Classify(articles []Article, ratings []RatingChange, recent []RecentCatalyst, now time.Time) []DetectedCatalyst {
	var candidates []DetectedCatalyst

	for _, article := range articles {
		candidates = append(candidates, c.classifyArticle(article)...)
	}
	candidates = append(candidates, c.convertRatingChanges(ratings, now)...)

	var emitted []DetectedCatalyst
	for _, candidate := range candidates {
		if c.isDuplicate(candidate, recent, now) {
			continue
		}
		emitted = append(emitted, candidate)
	}
	return emitted
}

func (c *Classifier) classifyArticle(article Article) []DetectedCatalyst {
	text := strings.ToLower(article.Headline + " " + article.Summary)
	sentiment := ParseSentiment(string(article.Sentiment))

	var detected []DetectedCatalyst
	for _, cat := range categories {
		matches := 0
		for _, keyword := range cat.keywords {
			if strings.Contains(text, keyword) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		impact := float64(matches) * impactPerKeyword
		switch sentiment {
		case SentimentPositive:
			impact += positiveSentimentBoost
		case SentimentNegative:
			impact += negativeSentimentBoost
		}
		impact = utils.Clamp(impact, 0, maxImpactScore)
		if sentiment == SentimentNegative {
			impact = -impact
		}

		urgency := cat.urgency
		if matches >= escalationKeywordCount || (sentiment == SentimentNegative && cat.urgency == UrgencyMedium) {
			urgency = urgency.Escalate()
		}

		detected = append(detected, DetectedCatalyst{
			EventType:   categoryEventTypes[cat.name][sentiment],
			Urgency:     urgency,
			ImpactScore: impact,
			Description: article.Headline,
			SourceURL:   article.URL,
		})
	}

	if len(detected) > 0 {
		return detected
	}

	// No category matched: fall back to a generic bucket when the sentiment
	// carries signal, drop the article entirely when it does not.
	switch sentiment {
	case SentimentPositive:
		return []DetectedCatalyst{{
			EventType:   EventGeneralPositiveNews,
			Urgency:     UrgencyLow,
			ImpactScore: positiveSentimentBoost,
			Description: article.Headline,
			SourceURL:   article.URL,
		}}
	case SentimentNegative:
		return []DetectedCatalyst{{
			EventType:   EventGeneralNegativeNews,
			Urgency:     UrgencyMedium,
			ImpactScore: -negativeSentimentBoost,
			Description: article.Headline,
			SourceURL:   article.URL,
		}}
	default:
		return nil
	}
}

func (c *Classifier) convertRatingChanges(ratings []RatingChange, now time.Time) []DetectedCatalyst {
	var detected []DetectedCatalyst
	for _, rating := range ratings {
		if rating.Date.Before(now.Add(-ratingChangeMaxAge)) {
			continue
		}

		var eventType EventType
		var impact float64
		switch strings.ToLower(strings.TrimSpace(rating.Action)) {
		case "upgrade":
			eventType = EventAnalystUpgrade
			impact = 20
		case "downgrade":
			eventType = EventAnalystDowngrade
			impact = -20
		default:
			continue
		}

		description := "Analyst " + strings.ToLower(rating.Action)
		if rating.From != "" && rating.To != "" {
			description += ": " + rating.From + " -> " + rating.To
		}

		detected = append(detected, DetectedCatalyst{
			EventType:   eventType,
			Urgency:     UrgencyMedium,
			ImpactScore: impact,
			Description: description,
		})
	}
	return detected
}

// isDuplicate drops a candidate when a same-type catalyst from the last 24h
// textually overlaps it: either description's first 50 characters appearing
// inside the other, case-insensitive. A cheap heuristic tuned to absorb
// re-published wire stories.
func (c *Classifier) isDuplicate(candidate DetectedCatalyst, recent []RecentCatalyst, now time.Time) bool {
	candidateDesc := strings.ToLower(candidate.Description)
	for _, prior := range recent {
		if prior.EventType != candidate.EventType {
			continue
		}
		if prior.DetectedAt.Before(now.Add(-dedupWindow)) {
			continue
		}
		priorDesc := strings.ToLower(prior.Description)
		if strings.Contains(priorDesc, prefixOf(candidateDesc)) || strings.Contains(candidateDesc, prefixOf(priorDesc)) {
			return true
		}
	}
	return false
}

func prefixOf(s string) string {
	if len(s) > dedupPrefixLength {
		return s[:dedupPrefixLength]
	}
	return s
}
