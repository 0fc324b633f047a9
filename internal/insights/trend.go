package insights

// TrendClassifier compares the two adjacent activity windows and
// labels the direction of change.
type TrendClassifier struct {
	cfg Config
}

// NewTrendClassifier creates a new trend classifier.
func NewTrendClassifier(cfg Config) *TrendClassifier {
	return &TrendClassifier{cfg: cfg}
}

// Classify returns the trend for an activity summary. Fewer than two
// total records is not enough signal to call a direction, so the
// result defaults to stable; classification is otherwise total.
func (t *TrendClassifier) Classify(summary ActivitySummary) Trend {
	if summary.Total < 2 {
		return TrendStable
	}

	recent := float64(summary.RecentCount)
	prior := float64(summary.PriorCount)

	switch {
	case recent > prior*t.cfg.TrendIncreaseFactor:
		return TrendIncreasing
	case recent < prior*t.cfg.TrendDeclineFactor:
		return TrendDeclining
	default:
		return TrendStable
	}
}
