package catalyst

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestClassifyEarningsBeat(t *testing.T) {
	c := NewClassifier()

	articles := []Article{{
		Headline:  "Quarterly earnings beat expectations on record revenue",
		Summary:   "The company reported profit above guidance.",
		Sentiment: SentimentPositive,
		URL:       "https://example.com/earnings",
	}}

	detected := c.Classify(articles, nil, nil, testNow)
	require.Len(t, detected, 1)

	event := detected[0]
	assert.Equal(t, EventEarningsBeat, event.EventType)
	// 5 keyword hits (earnings, revenue, profit, quarterly, guidance) gives
	// 50 + 15 positive boost, clamped to 50.
	assert.Equal(t, 50.0, event.ImpactScore)
	// >= 3 keyword matches escalates the MEDIUM base.
	assert.Equal(t, UrgencyHigh, event.Urgency)
	assert.Equal(t, "https://example.com/earnings", event.SourceURL)
}

func TestClassifyNegativeSentimentEscalatesAndSigns(t *testing.T) {
	c := NewClassifier()

	articles := []Article{{
		Headline:  "Company faces lawsuit over accounting",
		Sentiment: SentimentNegative,
	}}

	detected := c.Classify(articles, nil, nil, testNow)
	require.Len(t, detected, 1)

	event := detected[0]
	assert.Equal(t, EventLegalAction, event.EventType)
	// 1 hit * 10 + 20 negative boost, signed negative.
	assert.Equal(t, -30.0, event.ImpactScore)
	// Negative sentiment on a MEDIUM-base category escalates one level.
	assert.Equal(t, UrgencyHigh, event.Urgency)
}

func TestClassifyHighBaseCategoryKeepsUrgencyOnSingleHit(t *testing.T) {
	c := NewClassifier()

	articles := []Article{{
		Headline:  "FDA decision expected next month",
		Sentiment: SentimentNeutral,
	}}

	detected := c.Classify(articles, nil, nil, testNow)
	require.Len(t, detected, 1)
	assert.Equal(t, EventFDAUpdate, detected[0].EventType)
	assert.Equal(t, UrgencyHigh, detected[0].Urgency)
}

func TestClassifyFallbackBuckets(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name      string
		sentiment Sentiment
		wantType  EventType
		wantCount int
	}{
		{"positive unmatched", SentimentPositive, EventGeneralPositiveNews, 1},
		{"negative unmatched", SentimentNegative, EventGeneralNegativeNews, 1},
		{"neutral unmatched dropped", SentimentNeutral, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detected := c.Classify([]Article{{
				Headline:  "Completely unrelated story about the weather",
				Sentiment: tt.sentiment,
			}}, nil, nil, testNow)

			require.Len(t, detected, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantType, detected[0].EventType)
			}
		})
	}
}

func TestClassifyMalformedInputEmitsNothing(t *testing.T) {
	c := NewClassifier()

	detected := c.Classify([]Article{{}}, nil, nil, testNow)
	assert.Empty(t, detected)
}

func TestConvertRatingChanges(t *testing.T) {
	c := NewClassifier()

	ratings := []RatingChange{
		{Date: testNow.Add(-12 * time.Hour), Action: "upgrade", From: "Hold", To: "Buy"},
		{Date: testNow.Add(-24 * time.Hour), Action: "downgrade", From: "Buy", To: "Hold"},
		{Date: testNow.Add(-72 * time.Hour), Action: "upgrade"}, // too old
		{Date: testNow.Add(-1 * time.Hour), Action: "reiterated"},
	}

	detected := c.Classify(nil, ratings, nil, testNow)
	require.Len(t, detected, 2)

	assert.Equal(t, EventAnalystUpgrade, detected[0].EventType)
	assert.Equal(t, UrgencyMedium, detected[0].Urgency)
	assert.Equal(t, 20.0, detected[0].ImpactScore)

	assert.Equal(t, EventAnalystDowngrade, detected[1].EventType)
	assert.Equal(t, -20.0, detected[1].ImpactScore)
}

func TestDeduplication(t *testing.T) {
	c := NewClassifier()

	headline := "Acme Corp announces merger with Widget Industries in landmark deal"
	articles := []Article{{Headline: headline, Sentiment: SentimentPositive}}

	recent := []RecentCatalyst{{
		EventType:   EventMergerAnnouncement,
		Description: headline + " (syndicated)",
		DetectedAt:  testNow.Add(-6 * time.Hour),
	}}

	assert.Empty(t, c.Classify(articles, nil, recent, testNow))

	// Same description but outside the 24h window no longer suppresses.
	recent[0].DetectedAt = testNow.Add(-30 * time.Hour)
	assert.Len(t, c.Classify(articles, nil, recent, testNow), 1)

	// A different event type never suppresses.
	recent[0].DetectedAt = testNow.Add(-6 * time.Hour)
	recent[0].EventType = EventProductLaunch
	assert.Len(t, c.Classify(articles, nil, recent, testNow), 1)
}

func TestEstimateImpact(t *testing.T) {
	assert.Equal(t, -15.0, EstimateImpact(EventFDARejection, UrgencyHigh))
	assert.Equal(t, 10.0, EstimateImpact(EventEarningsBeat, UrgencyHigh))
	assert.Equal(t, 15.0, EstimateImpact(EventEarningsBeat, UrgencyCritical))
	assert.Equal(t, 7.0, EstimateImpact(EventEarningsBeat, UrgencyMedium))
	assert.Equal(t, 5.0, EstimateImpact(EventEarningsBeat, UrgencyLow))
}

func TestBaseImpactCoversAllEventTypes(t *testing.T) {
	// The taxonomy is closed: every leaf the classifier can emit must carry
	// a non-zero base impact.
	for _, eventType := range KnownEventTypes() {
		assert.NotZero(t, EstimateImpact(eventType, UrgencyHigh), "event type %s", eventType)
	}
}

func TestUrgencyEscalate(t *testing.T) {
	assert.Equal(t, UrgencyMedium, UrgencyLow.Escalate())
	assert.Equal(t, UrgencyHigh, UrgencyMedium.Escalate())
	assert.Equal(t, UrgencyCritical, UrgencyHigh.Escalate())
	assert.Equal(t, UrgencyCritical, UrgencyCritical.Escalate())
}
