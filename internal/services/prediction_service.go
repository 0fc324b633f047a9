package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/faithbridge/member-insights/internal/config"
	"github.com/faithbridge/member-insights/internal/insights"
	"github.com/faithbridge/member-insights/internal/models"
	"github.com/faithbridge/member-insights/internal/narrative"
	"github.com/faithbridge/member-insights/internal/store"
)

// Report scopes. Unknown scopes are treated as ScopeAll.
const (
	ScopeAll             = "all"
	ScopeChurn           = "churn"
	ScopeEngagement      = "engagement"
	ScopeContent         = "content"
	ScopeRevenue         = "revenue"
	ScopeRecommendations = "recommendations"
)

// Report is the assembled prediction output. Each section is present
// only when the requested scope includes it; a section that failed is
// replaced by an entry in Errors.
type Report struct {
	Scope           string                     `json:"scope"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	Churn           *ChurnReport               `json:"churn,omitempty"`
	Engagement      *EngagementReport          `json:"engagement,omitempty"`
	Content         *ContentReport             `json:"content,omitempty"`
	Revenue         *insights.RevenueForecast  `json:"revenue,omitempty"`
	Recommendations []narrative.Recommendation `json:"recommendations,omitempty"`
	Errors          map[string]string          `json:"errors,omitempty"`
}

// ChurnReport ranks the at-risk members and counts tiers across every
// member above the inclusion floor.
type ChurnReport struct {
	AtRiskMembers []insights.ChurnAssessment `json:"at_risk_members"`
	TierCounts    map[string]int             `json:"tier_counts"`
}

// EngagementReport is the cohort engagement overview plus the members
// moving most in each direction.
type EngagementReport struct {
	Overview         CohortOverview                `json:"overview"`
	Growing          []insights.EngagementForecast `json:"growing"`
	NeedingAttention []insights.EngagementForecast `json:"needing_attention"`
}

// CohortOverview summarizes engagement across the population.
type CohortOverview struct {
	TotalMembers int            `json:"total_members"`
	AverageScore float64        `json:"average_score"`
	TrendCounts  map[string]int `json:"trend_counts"`
}

// ContentReport carries detected gaps and the top performing content
// pass-through.
type ContentReport struct {
	Gaps          []insights.ContentGap `json:"gaps"`
	TopPerforming []models.ContentItem  `json:"top_performing"`
}

// MemberRecommendation is the single-member analysis with a narrative
// outreach suggestion.
type MemberRecommendation struct {
	Member             MemberSummary          `json:"member"`
	Analysis           MemberAnalysis         `json:"analysis"`
	Recommendation     string                 `json:"recommendation"`
	OptimalContactTime insights.ContactWindow `json:"optimal_contact_time"`
}

// MemberSummary identifies the member under analysis.
type MemberSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Tier  string    `json:"tier"`
}

// MemberAnalysis is the structured half of a member recommendation.
type MemberAnalysis struct {
	DaysInactive    int      `json:"days_inactive"`
	ActivityCount   int      `json:"activity_count"`
	EngagementAreas []string `json:"engagement_areas"`
	RiskFactors     []string `json:"risk_factors"`
}

// PredictionService orchestrates the prediction components across the
// member population. Every call is stateless and idempotent given the
// same underlying data snapshot; reports are built from request-scoped
// accumulators only.
type PredictionService struct {
	store     store.Store
	narrative *narrative.Generator
	limits    config.EngineConfig
	logger    *zap.Logger
	tracer    trace.Tracer

	aggregator *insights.ActivityAggregator
	trends     *insights.TrendClassifier
	churn      *insights.ChurnScorer
	forecaster *insights.EngagementForecaster
	contact    *insights.ContactPredictor
	gaps       *insights.ContentGapDetector
	revenue    *insights.RevenueProjector
}

// NewPredictionService creates the orchestrator with its components
// wired from one insights configuration.
func NewPredictionService(st store.Store, gen *narrative.Generator, limits config.EngineConfig, logger *zap.Logger) *PredictionService {
	cfg := limits.InsightsConfig()
	return &PredictionService{
		store:      st,
		narrative:  gen,
		limits:     limits,
		logger:     logger,
		tracer:     otel.Tracer("member-insights"),
		aggregator: insights.NewActivityAggregator(cfg),
		trends:     insights.NewTrendClassifier(cfg),
		churn:      insights.NewChurnScorer(cfg),
		forecaster: insights.NewEngagementForecaster(cfg),
		contact:    insights.NewContactPredictor(cfg),
		gaps:       insights.NewContentGapDetector(cfg, logger),
		revenue:    insights.NewRevenueProjector(cfg, logger),
	}
}

// memberInsight is the per-member working set produced by the
// population scan.
type memberInsight struct {
	member     models.Member
	assessment insights.ChurnAssessment
	forecast   insights.EngagementForecast
	trend      insights.Trend
}

// GenerateReport evaluates the requested components across the member
// population. Components read disjoint data and run concurrently;
// sections that fail carry an error marker while the rest of the
// report is still returned. A single-section request that fails is a
// hard failure.
func (s *PredictionService) GenerateReport(ctx context.Context, scope string) (*Report, error) {
	scope = NormalizeScope(scope)
	ctx, span := s.tracer.Start(ctx, "GenerateReport",
		trace.WithAttributes(attribute.String("report.scope", scope)))
	defer span.End()

	now := time.Now().UTC()
	report := &Report{Scope: scope, GeneratedAt: now, Errors: map[string]string{}}

	wantChurn := scope == ScopeAll || scope == ScopeChurn
	wantEngagement := scope == ScopeAll || scope == ScopeEngagement
	wantContent := scope == ScopeAll || scope == ScopeContent
	wantRevenue := scope == ScopeAll || scope == ScopeRevenue
	wantRecs := scope == ScopeAll || scope == ScopeRecommendations

	// Recommendations are synthesized from the other components'
	// aggregates, so a recommendations-only request still computes
	// them internally.
	needMembers := wantChurn || wantEngagement || wantRecs
	needContent := wantContent || wantRecs
	needRevenue := wantRevenue || wantRecs

	var (
		wg sync.WaitGroup

		memberInsights []memberInsight
		membersErr     error

		contentReport *ContentReport
		contentErr    error

		revenueForecast *insights.RevenueForecast
		revenueErr      error
	)

	if needMembers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			memberInsights, membersErr = s.scanMembers(ctx, now)
		}()
	}
	if needContent {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contentReport, contentErr = s.buildContentReport(ctx, now)
		}()
	}
	if needRevenue {
		wg.Add(1)
		go func() {
			defer wg.Done()
			revenueForecast, revenueErr = s.buildRevenueForecast(ctx, now)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if wantChurn {
		if membersErr != nil {
			report.Errors[ScopeChurn] = membersErr.Error()
		} else {
			report.Churn = s.buildChurnReport(memberInsights)
		}
	}
	if wantEngagement {
		if membersErr != nil {
			report.Errors[ScopeEngagement] = membersErr.Error()
		} else {
			report.Engagement = s.buildEngagementReport(memberInsights)
		}
	}
	if wantContent {
		if contentErr != nil {
			report.Errors[ScopeContent] = contentErr.Error()
		} else {
			report.Content = contentReport
		}
	}
	if wantRevenue {
		if revenueErr != nil {
			report.Errors[ScopeRevenue] = revenueErr.Error()
		} else {
			report.Revenue = revenueForecast
		}
	}
	if wantRecs {
		if membersErr != nil || contentErr != nil || revenueErr != nil {
			report.Errors[ScopeRecommendations] = "insufficient data for recommendations"
		} else {
			stats := cohortStats(memberInsights, contentReport, revenueForecast, s.churn)
			report.Recommendations = s.narrative.StrategicRecommendations(ctx, stats)
		}
	}

	if len(report.Errors) == 0 {
		report.Errors = nil
	} else if scope != ScopeAll && len(report.Errors) == 1 {
		// Single-section request: surface the failure directly.
		for _, msg := range report.Errors {
			return nil, fmt.Errorf("report generation failed: %s", msg)
		}
	}

	s.logger.Info("Prediction report generated",
		zap.String("scope", scope),
		zap.Int("members_scanned", len(memberInsights)),
		zap.Int("section_errors", len(report.Errors)))

	return report, nil
}

// GenerateMemberRecommendation runs the per-member components for one
// member and attaches a narrative outreach suggestion. The narrative
// path never fails; a collaborator outage yields the deterministic
// fallback sentence.
func (s *PredictionService) GenerateMemberRecommendation(ctx context.Context, memberID uuid.UUID) (*MemberRecommendation, error) {
	ctx, span := s.tracer.Start(ctx, "GenerateMemberRecommendation",
		trace.WithAttributes(attribute.String("member.id", memberID.String())))
	defer span.End()

	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	activity, err := s.store.ListMemberActivity(ctx, memberID, s.limits.ActivityFetchLimit)
	if err != nil {
		return nil, err
	}
	donations, err := s.store.ListMemberDonations(ctx, memberID, s.limits.DonationFetchLimit)
	if err != nil {
		return nil, err
	}

	summary := s.aggregator.Summarize(activity, now)
	trend := s.trends.Classify(summary)
	score := s.engagementScore(member, summary)
	factors := insights.ChurnRiskFactors{
		DaysInactive:        insights.DaysInactive(summary, member.CreatedAt, now),
		ActivityTrend:       trend,
		EngagementScore:     score,
		DonationStanding:    donationStanding(donations),
		LastInteractionDays: insights.DaysInactive(summary, member.CreatedAt, now),
	}
	riskFactors := s.churn.RiskFactors(factors)

	history := fmt.Sprintf("%d activities in the last %d days, trend %s, engagement score %.0f",
		summary.RecentCount, 30, trend, score)
	note := s.narrative.RetentionNote(ctx, member.DisplayName(), riskFactors, history)

	return &MemberRecommendation{
		Member: MemberSummary{
			ID:    member.ID,
			Name:  member.DisplayName(),
			Email: member.Email,
			Tier:  member.Tier,
		},
		Analysis: MemberAnalysis{
			DaysInactive:    factors.DaysInactive,
			ActivityCount:   summary.Total,
			EngagementAreas: insights.EngagementAreas(activity, 5),
			RiskFactors:     riskFactors,
		},
		Recommendation:     note,
		OptimalContactTime: s.contact.Predict(activity),
	}, nil
}

// scanMembers fans the per-member evaluation out across a bounded
// worker pool. The first store failure cancels the remaining work;
// partial scans are never returned.
func (s *PredictionService) scanMembers(ctx context.Context, now time.Time) ([]memberInsight, error) {
	ctx, span := s.tracer.Start(ctx, "scanMembers")
	defer span.End()

	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	concurrency := s.limits.MaxConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		scanErr error
		results = make([]memberInsight, len(members))
		evalOK  = make([]bool, len(members))
	)

	for i := range members {
		if scanCtx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			insight, err := s.evaluateMember(scanCtx, members[i], now)
			if err != nil {
				errOnce.Do(func() {
					scanErr = err
					cancel()
				})
				return
			}
			results[i] = insight
			evalOK[i] = true
		}(i)
	}
	wg.Wait()

	if scanErr != nil {
		return nil, scanErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanned := make([]memberInsight, 0, len(members))
	for i := range results {
		if evalOK[i] {
			scanned = append(scanned, results[i])
		}
	}
	return scanned, nil
}

// evaluateMember computes one member's churn assessment and
// engagement forecast from fresh reads.
func (s *PredictionService) evaluateMember(ctx context.Context, member models.Member, now time.Time) (memberInsight, error) {
	activity, err := s.store.ListMemberActivity(ctx, member.ID, s.limits.ActivityFetchLimit)
	if err != nil {
		return memberInsight{}, err
	}
	donations, err := s.store.ListMemberDonations(ctx, member.ID, s.limits.DonationFetchLimit)
	if err != nil {
		return memberInsight{}, err
	}

	summary := s.aggregator.Summarize(activity, now)
	trend := s.trends.Classify(summary)
	score := s.engagementScore(&member, summary)
	daysInactive := insights.DaysInactive(summary, member.CreatedAt, now)

	factors := insights.ChurnRiskFactors{
		DaysInactive:        daysInactive,
		ActivityTrend:       trend,
		EngagementScore:     score,
		DonationStanding:    donationStanding(donations),
		LastInteractionDays: daysInactive,
	}
	probability := s.churn.Probability(factors)

	projected, confidence := s.forecaster.Project(score, trend, summary.RecentCount)

	return memberInsight{
		member: member,
		trend:  trend,
		assessment: insights.ChurnAssessment{
			MemberID:        member.ID,
			MemberName:      member.DisplayName(),
			Probability:     probability,
			RiskTier:        s.churn.Tier(probability),
			RiskFactors:     s.churn.RiskFactors(factors),
			DaysInactive:    daysInactive,
			EngagementScore: score,
			OptimalContact:  s.contact.Predict(activity),
		},
		forecast: insights.EngagementForecast{
			MemberID:       member.ID,
			MemberName:     member.DisplayName(),
			CurrentScore:   score,
			Trend:          trend,
			ProjectedScore: projected,
			Confidence:     confidence,
		},
	}, nil
}

func (s *PredictionService) buildChurnReport(scanned []memberInsight) *ChurnReport {
	atRisk := make([]insights.ChurnAssessment, 0)
	tierCounts := map[string]int{
		string(insights.RiskTierLow):    0,
		string(insights.RiskTierMedium): 0,
		string(insights.RiskTierHigh):   0,
	}
	for i := range scanned {
		a := scanned[i].assessment
		if !s.churn.Material(a.Probability) {
			continue
		}
		atRisk = append(atRisk, a)
		tierCounts[string(a.RiskTier)]++
	}

	// Descending probability; ties keep input order.
	sort.SliceStable(atRisk, func(i, j int) bool {
		return atRisk[i].Probability > atRisk[j].Probability
	})
	if len(atRisk) > s.limits.MaxAtRiskMembers {
		atRisk = atRisk[:s.limits.MaxAtRiskMembers]
	}
	return &ChurnReport{AtRiskMembers: atRisk, TierCounts: tierCounts}
}

func (s *PredictionService) buildEngagementReport(scanned []memberInsight) *EngagementReport {
	trendCounts := map[string]int{
		string(insights.TrendIncreasing): 0,
		string(insights.TrendDeclining):  0,
		string(insights.TrendStable):     0,
	}
	total := 0.0
	growing := make([]insights.EngagementForecast, 0)
	declining := make([]insights.EngagementForecast, 0)

	for i := range scanned {
		f := scanned[i].forecast
		trendCounts[string(f.Trend)]++
		total += f.CurrentScore
		switch f.Trend {
		case insights.TrendIncreasing:
			growing = append(growing, f)
		case insights.TrendDeclining:
			declining = append(declining, f)
		}
	}

	average := 0.0
	if len(scanned) > 0 {
		average = total / float64(len(scanned))
	}

	// Biggest projected gains first / biggest projected losses first.
	sort.SliceStable(growing, func(i, j int) bool {
		return growing[i].ProjectedScore-growing[i].CurrentScore >
			growing[j].ProjectedScore-growing[j].CurrentScore
	})
	sort.SliceStable(declining, func(i, j int) bool {
		return declining[i].ProjectedScore-declining[i].CurrentScore <
			declining[j].ProjectedScore-declining[j].CurrentScore
	})
	if len(growing) > s.limits.MaxTrendMembers {
		growing = growing[:s.limits.MaxTrendMembers]
	}
	if len(declining) > s.limits.MaxTrendMembers {
		declining = declining[:s.limits.MaxTrendMembers]
	}

	return &EngagementReport{
		Overview: CohortOverview{
			TotalMembers: len(scanned),
			AverageScore: average,
			TrendCounts:  trendCounts,
		},
		Growing:          growing,
		NeedingAttention: declining,
	}
}

func (s *PredictionService) buildContentReport(ctx context.Context, now time.Time) (*ContentReport, error) {
	ctx, span := s.tracer.Start(ctx, "buildContentReport")
	defer span.End()

	from := now.AddDate(0, 0, -30)
	logs, err := s.store.ListSearchLogsBetween(ctx, from, now)
	if err != nil {
		return nil, err
	}
	top, err := s.store.ListTopContent(ctx, s.limits.MaxTopContent)
	if err != nil {
		return nil, err
	}
	return &ContentReport{
		Gaps:          s.gaps.Detect(logs),
		TopPerforming: top,
	}, nil
}

func (s *PredictionService) buildRevenueForecast(ctx context.Context, now time.Time) (*insights.RevenueForecast, error) {
	ctx, span := s.tracer.Start(ctx, "buildRevenueForecast")
	defer span.End()

	from, to := s.revenue.LookbackWindow(now)
	windowed, err := s.store.ListDonationsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	recurring, err := s.store.ListActiveRecurringDonations(ctx)
	if err != nil {
		return nil, err
	}
	forecast := s.revenue.Project(windowed, recurring)
	return &forecast, nil
}

// engagementScore prefers the externally-maintained score and
// estimates one from recent activity volume when none exists.
func (s *PredictionService) engagementScore(member *models.Member, summary insights.ActivitySummary) float64 {
	if member.EngagementScore != nil {
		return *member.EngagementScore
	}
	return s.forecaster.EstimateEngagementScore(summary.RecentCount)
}

// donationStanding derives the scorecard giving signal: any active
// record means an active donor, any history without one means lapsed,
// and no history at all means the member has never given.
func donationStanding(donations []models.DonationRecord) insights.DonationStanding {
	if len(donations) == 0 {
		return insights.DonationNever
	}
	for i := range donations {
		if donations[i].Status == models.DonationStatusActive {
			return insights.DonationActive
		}
	}
	return insights.DonationLapsed
}

// cohortStats distills the computed sections into the aggregate counts
// the strategic recommendation prompt uses.
func cohortStats(scanned []memberInsight, content *ContentReport, revenue *insights.RevenueForecast, scorer *insights.ChurnScorer) narrative.CohortStats {
	highRisk := 0
	trendCounts := map[insights.Trend]int{}
	for i := range scanned {
		a := scanned[i].assessment
		if scorer.Material(a.Probability) && a.RiskTier == insights.RiskTierHigh {
			highRisk++
		}
		trendCounts[scanned[i].trend]++
	}

	// Majority direction, stable on ties.
	cohortTrend := insights.TrendStable
	if trendCounts[insights.TrendIncreasing] > trendCounts[insights.TrendDeclining] &&
		trendCounts[insights.TrendIncreasing] > trendCounts[insights.TrendStable] {
		cohortTrend = insights.TrendIncreasing
	} else if trendCounts[insights.TrendDeclining] > trendCounts[insights.TrendIncreasing] &&
		trendCounts[insights.TrendDeclining] > trendCounts[insights.TrendStable] {
		cohortTrend = insights.TrendDeclining
	}

	gapCount := 0
	if content != nil {
		gapCount = len(content.Gaps)
	}
	revenueTrend := insights.RevenueTrendStable
	if revenue != nil {
		revenueTrend = revenue.Trend
	}

	return narrative.CohortStats{
		HighRiskCount:   highRisk,
		EngagementTrend: string(cohortTrend),
		ContentGapCount: gapCount,
		RevenueTrend:    revenueTrend,
	}
}

// NormalizeScope maps unrecognized scope values to ScopeAll. Callers
// keying caches or logs by scope must normalize first so bogus values
// collapse onto one entry.
func NormalizeScope(scope string) string {
	switch scope {
	case ScopeChurn, ScopeEngagement, ScopeContent, ScopeRevenue, ScopeRecommendations:
		return scope
	default:
		return ScopeAll
	}
}
