package insights

import (
	"fmt"
	"math"
)

// ChurnScorer combines recency, trend, engagement and giving standing
// into a bounded churn probability. It is a transparent additive
// scorecard rather than a trained model, so every point shown to an
// operator is directly traceable to a factor.
type ChurnScorer struct {
	cfg Config
}

// NewChurnScorer creates a new churn scorer.
func NewChurnScorer(cfg Config) *ChurnScorer {
	return &ChurnScorer{cfg: cfg}
}

// Probability scores the factors on the 0-100 point scale, clamps, and
// scales to [0,1]. Recency bands are evaluated high to low; only the
// first match contributes.
func (s *ChurnScorer) Probability(f ChurnRiskFactors) float64 {
	w := s.cfg.Churn
	points := 0.0

	switch {
	case f.DaysInactive > 90:
		points += w.Inactive90
	case f.DaysInactive > 60:
		points += w.Inactive60
	case f.DaysInactive > 30:
		points += w.Inactive30
	case f.DaysInactive > 14:
		points += w.Inactive14
	}

	switch f.ActivityTrend {
	case TrendDeclining:
		points += w.TrendDeclining
	case TrendStable:
		points += w.TrendStable
	}

	switch {
	case f.EngagementScore < 20:
		points += w.EngagementUnder20
	case f.EngagementScore < 40:
		points += w.EngagementUnder40
	case f.EngagementScore < 60:
		points += w.EngagementUnder60
	case f.EngagementScore < 80:
		points += w.EngagementUnder80
	}

	switch f.DonationStanding {
	case DonationLapsed:
		points += w.DonorLapsed
	case DonationNever:
		points += w.DonorNever
	}

	points = math.Min(100, math.Max(0, points))
	return points / 100
}

// Tier maps a probability to its discrete risk tier.
func (s *ChurnScorer) Tier(probability float64) RiskTier {
	switch {
	case probability >= s.cfg.TierHigh:
		return RiskTierHigh
	case probability >= s.cfg.TierMedium:
		return RiskTierMedium
	default:
		return RiskTierLow
	}
}

// Material reports whether a probability clears the inclusion floor.
// Members below it are excluded from churn output entirely.
func (s *ChurnScorer) Material(probability float64) bool {
	return probability >= s.cfg.ChurnInclusionFloor
}

// RiskFactors assembles the operator-facing factor list. The order is
// fixed: inactivity, trend, engagement, giving.
func (s *ChurnScorer) RiskFactors(f ChurnRiskFactors) []string {
	factors := make([]string, 0, 4)
	if f.DaysInactive > 14 {
		factors = append(factors, fmt.Sprintf("%d days inactive", f.DaysInactive))
	}
	if f.ActivityTrend == TrendDeclining {
		factors = append(factors, "Declining engagement")
	}
	if f.EngagementScore < 40 {
		factors = append(factors, "Low engagement score")
	}
	if f.DonationStanding == DonationLapsed {
		factors = append(factors, "Lapsed donor")
	}
	return factors
}
