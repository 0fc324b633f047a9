package insights

import "math"

// EngagementForecaster projects an engagement score forward by the
// fixed 30-day horizon from the trend classification and recent
// activity volume.
type EngagementForecaster struct {
	cfg Config
}

// NewEngagementForecaster creates a new engagement forecaster.
func NewEngagementForecaster(cfg Config) *EngagementForecaster {
	return &EngagementForecaster{cfg: cfg}
}

// Project returns the clamped projected score and the fixed per-trend
// confidence value.
func (f *EngagementForecaster) Project(currentScore float64, trend Trend, recentActivityCount int) (projected, confidence float64) {
	p := f.cfg.Forecast

	var delta float64
	switch trend {
	case TrendIncreasing:
		delta = math.Min(p.IncreasingMaxDelta, float64(recentActivityCount)*p.IncreasingPerActivity)
		confidence = p.ConfidenceIncreasing
	case TrendDeclining:
		delta = -math.Min(p.DecliningMaxDelta, p.DecliningBase-float64(recentActivityCount))
		confidence = p.ConfidenceDeclining
	default:
		delta = 0
		confidence = p.ConfidenceStable
	}

	projected = math.Min(100, math.Max(0, currentScore+delta))
	return projected, confidence
}

// EstimateEngagementScore derives a stand-in score from recent
// activity volume when no externally-maintained score exists.
func (f *EngagementForecaster) EstimateEngagementScore(recentActivityCount int) float64 {
	return math.Min(100, float64(recentActivityCount)*f.cfg.EstimatePerActivity)
}
