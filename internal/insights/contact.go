package insights

import (
	"fmt"
	"time"

	"github.com/faithbridge/member-insights/internal/models"
)

// ContactPredictor recommends an outreach slot from the historical
// shape of a member's activity.
type ContactPredictor struct {
	cfg Config
}

// NewContactPredictor creates a new contact-time predictor.
func NewContactPredictor(cfg Config) *ContactPredictor {
	return &ContactPredictor{cfg: cfg}
}

// Predict tallies activity by day-of-week and hour-of-day and returns
// the mode of each. Below the minimum signal threshold the fixed
// default slot is returned instead. Ties between equally common days
// or hours resolve by map iteration order; the ambiguity is bounded by
// the member's own data.
func (p *ContactPredictor) Predict(records []models.ActivityRecord) ContactWindow {
	if len(records) < p.cfg.MinContactSignal {
		return ContactWindow{
			DayOfWeek: p.cfg.DefaultContactDay,
			TimeOfDay: p.cfg.DefaultContactTime,
		}
	}

	dayCounts := make(map[time.Weekday]int)
	hourCounts := make(map[int]int)
	for i := range records {
		occurred := records[i].OccurredAt
		if occurred.IsZero() {
			continue
		}
		dayCounts[occurred.Weekday()]++
		hourCounts[occurred.Hour()]++
	}

	bestDay := time.Tuesday
	bestDayCount := -1
	for day, count := range dayCounts {
		if count > bestDayCount {
			bestDay = day
			bestDayCount = count
		}
	}

	bestHour := 10
	bestHourCount := -1
	for hour, count := range hourCounts {
		if count > bestHourCount {
			bestHour = hour
			bestHourCount = count
		}
	}

	return ContactWindow{
		DayOfWeek: bestDay.String(),
		TimeOfDay: formatHour(bestHour),
	}
}

// formatHour renders an hour-of-day on the 12-hour clock: 0 maps to
// 12 AM and 12 maps to 12 PM.
func formatHour(hour int) string {
	period := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		display = hour - 12
		period = "PM"
	}
	return fmt.Sprintf("%d:00 %s", display, period)
}
