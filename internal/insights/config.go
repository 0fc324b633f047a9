package insights

// Config carries every tunable the prediction components use. The
// defaults reproduce the engine's documented behavior exactly;
// operators adjust sensitivity here rather than in code.
type Config struct {
	// Trend classification.
	TrendWindowDays     int     // length of each comparison window
	TrendIncreaseFactor float64 // recent > prior*factor => increasing
	TrendDeclineFactor  float64 // recent < prior*factor => declining

	// Churn scorecard. Points are on a 0-100 scale and divided by 100
	// to yield a probability.
	Churn ChurnWeights

	// Tier boundaries and the inclusion floor, as probabilities.
	TierHigh            float64
	TierMedium          float64
	ChurnInclusionFloor float64

	// Engagement forecaster.
	Forecast ForecastParams

	// Contact-time prediction.
	MinContactSignal   int // below this many records the default slot is returned
	DefaultContactDay  string
	DefaultContactTime string

	// Content-gap detection.
	GapMaxResults     int // a search "misses" when it returns fewer results than this
	GapMinOccurrences int
	MaxContentGaps    int

	// Revenue projection.
	RevenueLookbackDays int
	RevenueDamping      float64

	// Engagement score estimation when no external score exists.
	EstimatePerActivity float64
}

// ChurnWeights are the additive scorecard points. Recency bands are
// evaluated high to low; the first match wins.
type ChurnWeights struct {
	Inactive90 float64
	Inactive60 float64
	Inactive30 float64
	Inactive14 float64

	TrendDeclining float64
	TrendStable    float64

	EngagementUnder20 float64
	EngagementUnder40 float64
	EngagementUnder60 float64
	EngagementUnder80 float64

	DonorLapsed float64
	DonorNever  float64
}

// ForecastParams control the engagement forecaster deltas and its
// fixed per-trend confidence values. The confidences are self-assessed
// reliability constants, not statistically derived intervals.
type ForecastParams struct {
	IncreasingMaxDelta    float64
	IncreasingPerActivity float64
	DecliningMaxDelta     float64
	DecliningBase         float64
	ConfidenceIncreasing  float64
	ConfidenceDeclining   float64
	ConfidenceStable      float64
}

// DefaultConfig returns the documented default tuning.
func DefaultConfig() Config {
	return Config{
		TrendWindowDays:     30,
		TrendIncreaseFactor: 1.2,
		TrendDeclineFactor:  0.8,
		Churn: ChurnWeights{
			Inactive90:        40,
			Inactive60:        30,
			Inactive30:        20,
			Inactive14:        10,
			TrendDeclining:    25,
			TrendStable:       10,
			EngagementUnder20: 20,
			EngagementUnder40: 15,
			EngagementUnder60: 10,
			EngagementUnder80: 5,
			DonorLapsed:       15,
			DonorNever:        8,
		},
		TierHigh:            0.70,
		TierMedium:          0.50,
		ChurnInclusionFloor: 0.30,
		Forecast: ForecastParams{
			IncreasingMaxDelta:    30,
			IncreasingPerActivity: 2,
			DecliningMaxDelta:     25,
			DecliningBase:         30,
			ConfidenceIncreasing:  80,
			ConfidenceDeclining:   75,
			ConfidenceStable:      85,
		},
		MinContactSignal:    5,
		DefaultContactDay:   "Tuesday",
		DefaultContactTime:  "10:00 AM",
		GapMaxResults:       3,
		GapMinOccurrences:   2,
		MaxContentGaps:      10,
		RevenueLookbackDays: 90,
		RevenueDamping:      0.5,
		EstimatePerActivity: 5,
	}
}
