package insights

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/faithbridge/member-insights/internal/models"
)

// Revenue trend labels. Revenue uses "decreasing" rather than the
// activity trend's "declining"; the two vocabularies are reported
// as-is by the public API.
const (
	RevenueTrendIncreasing = "increasing"
	RevenueTrendDecreasing = "decreasing"
	RevenueTrendStable     = "stable"
)

// RevenueProjector computes month-over-month donation totals and
// projects next month with a damped linear extrapolation. The damping
// deliberately underweights the most recent delta so one volatile
// month does not swing the projection.
type RevenueProjector struct {
	cfg    Config
	logger *zap.Logger
}

// NewRevenueProjector creates a new revenue projector.
func NewRevenueProjector(cfg Config, logger *zap.Logger) *RevenueProjector {
	return &RevenueProjector{cfg: cfg, logger: logger}
}

// Project buckets the windowed donations by calendar month, compares
// the two most recent months present, and extrapolates. The recurring
// total sums active recurring pledges independent of the window.
func (p *RevenueProjector) Project(windowed, activeRecurring []models.DonationRecord) RevenueForecast {
	byMonth := make(map[string]float64)
	skipped := 0
	for i := range windowed {
		rec := windowed[i]
		if rec.OccurredAt.IsZero() || rec.Amount < 0 {
			skipped++
			continue
		}
		byMonth[rec.OccurredAt.Format("2006-01")] += rec.Amount
	}
	if skipped > 0 {
		p.logger.Warn("Skipped malformed donation records", zap.Int("skipped", skipped))
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	var last, prev float64
	if len(months) > 0 {
		last = byMonth[months[len(months)-1]]
	}
	if len(months) > 1 {
		prev = byMonth[months[len(months)-2]]
	}

	trend := RevenueTrendStable
	switch {
	case last > prev:
		trend = RevenueTrendIncreasing
	case last < prev:
		trend = RevenueTrendDecreasing
	}

	changeRate := 0.0
	if prev != 0 {
		changeRate = (last - prev) / prev
	}

	recurringTotal := 0.0
	for i := range activeRecurring {
		if activeRecurring[i].Amount > 0 {
			recurringTotal += activeRecurring[i].Amount
		}
	}

	return RevenueForecast{
		CurrentRecurringTotal: recurringTotal,
		LastMonthTotal:        last,
		ProjectedNextMonth:    math.Round(last * (1 + changeRate*p.cfg.RevenueDamping)),
		Trend:                 trend,
		ChangePercentage:      math.Round(changeRate*1000) / 10,
	}
}

// LookbackWindow returns the [from, to) range the projector reads
// donations from.
func (p *RevenueProjector) LookbackWindow(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -p.cfg.RevenueLookbackDays), now
}
