package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/faithbridge/member-insights/internal/models"
)

func donation(amount float64, ts time.Time) models.DonationRecord {
	return models.DonationRecord{Amount: amount, OccurredAt: ts, Status: models.DonationStatusCompleted}
}

// TestRevenueProjectionDampedGrowth tests the damped extrapolation
// from two observed months.
func TestRevenueProjectionDampedGrowth(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	projector := NewRevenueProjector(DefaultConfig(), logger)

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	windowed := []models.DonationRecord{
		donation(500, jan),
		donation(300, jan.AddDate(0, 0, 5)),
		donation(600, feb),
		donation(400, feb.AddDate(0, 0, 3)),
	}

	forecast := projector.Project(windowed, nil)

	// 800 -> 1000 is +25%; the projection applies half the delta.
	assert.Equal(t, 1000.0, forecast.LastMonthTotal)
	assert.Equal(t, 1125.0, forecast.ProjectedNextMonth)
	assert.Equal(t, RevenueTrendIncreasing, forecast.Trend)
	assert.Equal(t, 25.0, forecast.ChangePercentage)
}

// TestRevenueProjectionDecline tests the decreasing label and the
// negative change rate.
func TestRevenueProjectionDecline(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	projector := NewRevenueProjector(DefaultConfig(), logger)

	windowed := []models.DonationRecord{
		donation(1000, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)),
		donation(500, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)),
	}

	forecast := projector.Project(windowed, nil)
	assert.Equal(t, RevenueTrendDecreasing, forecast.Trend)
	assert.Equal(t, -50.0, forecast.ChangePercentage)
	assert.Equal(t, 375.0, forecast.ProjectedNextMonth)
}

// TestRevenueProjectionSingleMonth tests that one observed month
// projects flat with a zero change rate.
func TestRevenueProjectionSingleMonth(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	projector := NewRevenueProjector(DefaultConfig(), logger)

	windowed := []models.DonationRecord{
		donation(750, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)),
	}

	forecast := projector.Project(windowed, nil)
	assert.Equal(t, RevenueTrendIncreasing, forecast.Trend)
	assert.Equal(t, 0.0, forecast.ChangePercentage)
	assert.Equal(t, 750.0, forecast.ProjectedNextMonth)
}

// TestRevenueProjectionEmptyWindow tests the all-zero forecast on no
// data.
func TestRevenueProjectionEmptyWindow(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	projector := NewRevenueProjector(DefaultConfig(), logger)

	forecast := projector.Project(nil, nil)
	assert.Equal(t, 0.0, forecast.LastMonthTotal)
	assert.Equal(t, 0.0, forecast.ProjectedNextMonth)
	assert.Equal(t, RevenueTrendStable, forecast.Trend)
}

// TestRevenueRecurringTotal tests that the recurring total sums active
// pledges independent of the monthly window.
func TestRevenueRecurringTotal(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	projector := NewRevenueProjector(DefaultConfig(), logger)

	recurring := []models.DonationRecord{
		{Amount: 100, IsRecurring: true, Status: models.DonationStatusActive, OccurredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: 50, IsRecurring: true, Status: models.DonationStatusActive, OccurredAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: -10, IsRecurring: true, Status: models.DonationStatusActive, OccurredAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
	}

	forecast := projector.Project(nil, recurring)
	assert.Equal(t, 150.0, forecast.CurrentRecurringTotal)
}

// TestRevenueSkipsMalformedDonations tests that zero timestamps and
// negative amounts never enter the monthly buckets.
func TestRevenueSkipsMalformedDonations(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	projector := NewRevenueProjector(DefaultConfig(), logger)

	windowed := []models.DonationRecord{
		{Amount: 500},
		donation(-200, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)),
		donation(300, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)),
	}

	forecast := projector.Project(windowed, nil)
	assert.Equal(t, 300.0, forecast.LastMonthTotal)
}
