package insights

import (
	"time"

	"github.com/google/uuid"
)

// Trend classifies the direction of a member's (or cohort's) activity
// across the paired comparison windows. Classification is total: any
// activity history maps to exactly one of these values.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDeclining  Trend = "declining"
	TrendStable     Trend = "stable"
)

// RiskTier buckets a churn probability for operator triage.
type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

// DonationStanding summarizes a member's giving relationship for the
// churn scorecard.
type DonationStanding string

const (
	DonationActive DonationStanding = "active"
	DonationLapsed DonationStanding = "lapsed"
	DonationNever  DonationStanding = "never"
)

// ChurnRiskFactors holds the signals the scorer combines. Computed
// fresh on every pass and never persisted.
type ChurnRiskFactors struct {
	DaysInactive        int
	ActivityTrend       Trend
	EngagementScore     float64
	DonationStanding    DonationStanding
	LastInteractionDays int
}

// ContactWindow is a recommended outreach slot.
type ContactWindow struct {
	DayOfWeek string `json:"day_of_week"`
	TimeOfDay string `json:"time_of_day"`
}

// ChurnAssessment is the per-member churn output.
type ChurnAssessment struct {
	MemberID        uuid.UUID     `json:"member_id"`
	MemberName      string        `json:"member_name"`
	Probability     float64       `json:"probability"`
	RiskTier        RiskTier      `json:"risk_tier"`
	RiskFactors     []string      `json:"risk_factors"`
	DaysInactive    int           `json:"days_inactive"`
	EngagementScore float64       `json:"engagement_score"`
	OptimalContact  ContactWindow `json:"optimal_contact"`
}

// EngagementForecast projects a member's engagement score forward by
// the fixed 30-day horizon.
type EngagementForecast struct {
	MemberID       uuid.UUID `json:"member_id"`
	MemberName     string    `json:"member_name,omitempty"`
	CurrentScore   float64   `json:"current_score"`
	Trend          Trend     `json:"trend"`
	ProjectedScore float64   `json:"projected_score"`
	Confidence     float64   `json:"confidence"`
}

// ContentGap is a topic members keep searching for with few results.
type ContentGap struct {
	Topic       string  `json:"topic"`
	SearchCount int     `json:"search_count"`
	AvgResults  float64 `json:"avg_results"`
}

// RevenueForecast is the month-over-month donation projection.
type RevenueForecast struct {
	CurrentRecurringTotal float64 `json:"current_recurring_total"`
	LastMonthTotal        float64 `json:"last_month_total"`
	ProjectedNextMonth    float64 `json:"projected_next_month"`
	Trend                 string  `json:"trend"`
	ChangePercentage      float64 `json:"change_percentage"`
}

// ActivitySummary is the Activity Aggregator output: a member's
// bounded activity history bucketed by recency window.
type ActivitySummary struct {
	Total        int
	RecentCount  int // events in [now-window, now)
	PriorCount   int // events in [now-2*window, now-window)
	LastActivity *time.Time
	Skipped      int // malformed records dropped from the tally
}
