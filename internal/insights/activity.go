package insights

import (
	"time"

	"github.com/faithbridge/member-insights/internal/models"
)

// ActivityAggregator buckets a member's activity history by recency
// window. Pure: records in, counts out.
type ActivityAggregator struct {
	cfg Config
}

// NewActivityAggregator creates a new activity aggregator.
func NewActivityAggregator(cfg Config) *ActivityAggregator {
	return &ActivityAggregator{cfg: cfg}
}

// Summarize counts a member's activity in the recent and prior
// comparison windows and tracks the most recent event. Records with a
// zero timestamp are malformed upstream data; they are skipped and
// counted for diagnostics rather than treated as fatal.
func (a *ActivityAggregator) Summarize(records []models.ActivityRecord, now time.Time) ActivitySummary {
	window := time.Duration(a.cfg.TrendWindowDays) * 24 * time.Hour
	recentStart := now.Add(-window)
	priorStart := now.Add(-2 * window)

	var summary ActivitySummary
	for i := range records {
		occurred := records[i].OccurredAt
		if occurred.IsZero() {
			summary.Skipped++
			continue
		}
		summary.Total++
		if summary.LastActivity == nil || occurred.After(*summary.LastActivity) {
			t := occurred
			summary.LastActivity = &t
		}
		switch {
		case !occurred.Before(recentStart) && occurred.Before(now):
			summary.RecentCount++
		case !occurred.Before(priorStart) && occurred.Before(recentStart):
			summary.PriorCount++
		}
	}
	return summary
}

// DaysInactive returns whole days since the last recorded activity,
// falling back to days since the member joined when no activity
// exists.
func DaysInactive(summary ActivitySummary, joinedAt, now time.Time) int {
	ref := joinedAt
	if summary.LastActivity != nil {
		ref = *summary.LastActivity
	}
	days := int(now.Sub(ref).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// EngagementAreas returns the member's distinct activity types ordered
// by how often they occur, capped at limit.
func EngagementAreas(records []models.ActivityRecord, limit int) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for i := range records {
		t := records[i].ActivityType
		if t == "" {
			continue
		}
		if _, seen := counts[t]; !seen {
			order = append(order, t)
		}
		counts[t]++
	}

	// Selection by descending count, first-seen order on ties.
	areas := make([]string, 0, limit)
	used := make(map[string]bool)
	for len(areas) < limit && len(areas) < len(order) {
		best := ""
		bestCount := -1
		for _, t := range order {
			if used[t] {
				continue
			}
			if counts[t] > bestCount {
				best = t
				bestCount = counts[t]
			}
		}
		if best == "" {
			break
		}
		used[best] = true
		areas = append(areas, best)
	}
	return areas
}
