package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/faithbridge/member-insights/internal/models"
)

// TestTrendClassification tests the paired-window comparison across
// the three directions.
func TestTrendClassification(t *testing.T) {
	classifier := NewTrendClassifier(DefaultConfig())

	cases := []struct {
		name     string
		summary  ActivitySummary
		expected Trend
	}{
		{"no activity", ActivitySummary{}, TrendStable},
		{"single record", ActivitySummary{Total: 1, RecentCount: 1}, TrendStable},
		{"clear growth", ActivitySummary{Total: 15, RecentCount: 10, PriorCount: 5}, TrendIncreasing},
		{"clear decline", ActivitySummary{Total: 14, RecentCount: 3, PriorCount: 11}, TrendDeclining},
		{"within band", ActivitySummary{Total: 19, RecentCount: 10, PriorCount: 9}, TrendStable},
		{"exactly at increase factor", ActivitySummary{Total: 22, RecentCount: 12, PriorCount: 10}, TrendStable},
		{"just above increase factor", ActivitySummary{Total: 23, RecentCount: 13, PriorCount: 10}, TrendIncreasing},
		{"exactly at decline factor", ActivitySummary{Total: 18, RecentCount: 8, PriorCount: 10}, TrendStable},
		{"just below decline factor", ActivitySummary{Total: 17, RecentCount: 7, PriorCount: 10}, TrendDeclining},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, classifier.Classify(tc.summary))
		})
	}
}

// TestTrendNewMemberBurst tests that all-recent activity with an empty
// prior window classifies as increasing.
func TestTrendNewMemberBurst(t *testing.T) {
	classifier := NewTrendClassifier(DefaultConfig())

	trend := classifier.Classify(ActivitySummary{Total: 4, RecentCount: 4, PriorCount: 0})
	assert.Equal(t, TrendIncreasing, trend)
}

// TestSummarizeWindows tests the recency bucketing and last-activity
// tracking.
func TestSummarizeWindows(t *testing.T) {
	aggregator := NewActivityAggregator(DefaultConfig())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []models.ActivityRecord{
		{ActivityType: "sermon_view", OccurredAt: now.AddDate(0, 0, -5)},
		{ActivityType: "event_rsvp", OccurredAt: now.AddDate(0, 0, -29)},
		{ActivityType: "sermon_view", OccurredAt: now.AddDate(0, 0, -35)},
		{ActivityType: "donation", OccurredAt: now.AddDate(0, 0, -59)},
		{ActivityType: "sermon_view", OccurredAt: now.AddDate(0, 0, -70)}, // outside both windows
		{ActivityType: "login"}, // zero timestamp, skipped
	}

	summary := aggregator.Summarize(records, now)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.RecentCount)
	assert.Equal(t, 2, summary.PriorCount)
	assert.Equal(t, 1, summary.Skipped)
	if assert.NotNil(t, summary.LastActivity) {
		assert.Equal(t, now.AddDate(0, 0, -5), *summary.LastActivity)
	}
}

// TestDaysInactive tests whole-day rounding and the join-date
// fallback.
func TestDaysInactive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	last := now.AddDate(0, 0, -40)
	summary := ActivitySummary{Total: 1, LastActivity: &last}
	assert.Equal(t, 40, DaysInactive(summary, now.AddDate(0, 0, -400), now))

	// No activity at all falls back to the join date.
	assert.Equal(t, 100, DaysInactive(ActivitySummary{}, now.AddDate(0, 0, -100), now))

	// A future join date clamps to zero rather than going negative.
	assert.Equal(t, 0, DaysInactive(ActivitySummary{}, now.AddDate(0, 0, 3), now))
}

// TestEngagementAreas tests count ordering with first-seen tie-breaks.
func TestEngagementAreas(t *testing.T) {
	records := []models.ActivityRecord{
		{ActivityType: "prayer_request"},
		{ActivityType: "sermon_view"},
		{ActivityType: "sermon_view"},
		{ActivityType: "event_rsvp"},
		{ActivityType: "sermon_view"},
		{ActivityType: "event_rsvp"},
		{ActivityType: ""},
	}

	areas := EngagementAreas(records, 5)
	assert.Equal(t, []string{"sermon_view", "event_rsvp", "prayer_request"}, areas)

	capped := EngagementAreas(records, 2)
	assert.Equal(t, []string{"sermon_view", "event_rsvp"}, capped)
}
