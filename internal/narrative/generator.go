package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TextGenerator is the external language-model collaborator. It is the
// only slow, network-bound dependency of the engine and is always
// substitutable with the deterministic fallbacks below.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int, temperature float64) (string, error)
}

// Recommendation is one strategic suggestion for leadership.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CohortStats are the aggregate inputs to strategic recommendations.
type CohortStats struct {
	HighRiskCount   int
	EngagementTrend string
	ContentGapCount int
	RevenueTrend    string
}

// fallbackNote is returned whenever the collaborator cannot produce a
// member retention note. Callers of RetentionNote never see an error.
const fallbackNote = "Consider a personal phone call or email to check in on their spiritual journey."

// fallbackRecommendations cover the three standing priorities when the
// collaborator fails or returns unparseable output.
var fallbackRecommendations = []Recommendation{
	{
		Title:       "Reach out to at-risk members",
		Description: "Schedule personal check-ins with members showing declining engagement before they drift away.",
	},
	{
		Title:       "Create content for common searches",
		Description: "Publish teaching material on the topics members search for but rarely find results on.",
	},
	{
		Title:       "Grow small group participation",
		Description: "Invite less-connected members into small groups to deepen community ties.",
	},
}

// Generator turns structured prediction output into short
// natural-language recommendations.
type Generator struct {
	gen         TextGenerator
	limiter     *rate.Limiter
	timeout     time.Duration
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// NewGenerator creates a narrative generator. gen may be nil, in which
// case every call resolves to its deterministic fallback.
func NewGenerator(gen TextGenerator, timeout time.Duration, maxTokens int, temperature float64, rps float64, logger *zap.Logger) *Generator {
	if rps <= 0 {
		rps = 1
	}
	return &Generator{
		gen:         gen,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		timeout:     timeout,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// RetentionNote produces a 2-3 sentence pastoral outreach suggestion
// for one member. It never fails: any collaborator error resolves to
// the fixed fallback sentence.
func (g *Generator) RetentionNote(ctx context.Context, memberName string, riskFactors []string, historySummary string) string {
	if g.gen == nil {
		return fallbackNote
	}

	system := "You are a pastoral care assistant. Suggest warm, personal outreach. " +
		"Never sound like a sales pitch."
	prompt := fmt.Sprintf(
		"Member: %s\nRisk factors: %s\nEngagement history: %s\n\n"+
			"Write a 2-3 sentence suggestion for how to reconnect with this member.",
		memberName, strings.Join(riskFactors, "; "), historySummary)

	text, err := g.generate(ctx, system, prompt)
	if err != nil {
		g.logger.Warn("Retention note generation failed, using fallback",
			zap.String("member", memberName),
			zap.Error(err))
		return fallbackNote
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallbackNote
	}
	return text
}

// StrategicRecommendations produces 3-5 titled recommendations from
// cohort aggregates, falling back to the fixed list when the
// collaborator fails, its output contains no parseable array, or it
// yields fewer than three usable items.
func (g *Generator) StrategicRecommendations(ctx context.Context, stats CohortStats) []Recommendation {
	if g.gen == nil {
		return fallbackRecommendations
	}

	system := "You advise church leadership on member engagement strategy. " +
		"Respond with a JSON array of objects, each with \"title\" and \"description\" fields."
	prompt := fmt.Sprintf(
		"Current state:\n- %d high-risk members\n- engagement trend: %s\n"+
			"- %d content gaps identified\n- revenue trend: %s\n\n"+
			"Return 3 to 5 short strategic recommendations as a JSON array.",
		stats.HighRiskCount, stats.EngagementTrend, stats.ContentGapCount, stats.RevenueTrend)

	text, err := g.generate(ctx, system, prompt)
	if err != nil {
		g.logger.Warn("Strategic recommendation generation failed, using fallback", zap.Error(err))
		return fallbackRecommendations
	}

	recs, ok := extractRecommendations(text)
	if !ok {
		g.logger.Warn("Strategic recommendation output was unparseable, using fallback")
		return fallbackRecommendations
	}
	if len(recs) < 3 {
		g.logger.Warn("Strategic recommendation output below minimum, using fallback",
			zap.Int("parsed", len(recs)))
		return fallbackRecommendations
	}
	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

func (g *Generator) generate(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait aborted: %w", err)
	}
	return g.gen.Generate(ctx, system, prompt, g.maxTokens, g.temperature)
}
