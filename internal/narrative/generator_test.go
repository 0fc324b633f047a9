package narrative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGenerator is a canned TextGenerator for testing.
type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (s *stubGenerator) Generate(ctx context.Context, system, prompt string, maxTokens int, temperature float64) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestGenerator(stub TextGenerator) *Generator {
	logger, _ := zap.NewDevelopment()
	return NewGenerator(stub, 5*time.Second, 400, 0.7, 100, logger)
}

// TestRetentionNoteFallbackWithoutCollaborator tests that a nil
// collaborator always yields the fixed fallback sentence.
func TestRetentionNoteFallbackWithoutCollaborator(t *testing.T) {
	gen := newTestGenerator(nil)

	note := gen.RetentionNote(context.Background(), "Sarah Chen", []string{"45 days inactive"}, "no recent activity")
	assert.Equal(t, fallbackNote, note)
	assert.NotEmpty(t, note)
}

// TestRetentionNoteFallbackOnError tests that collaborator failures
// never surface to the caller.
func TestRetentionNoteFallbackOnError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("upstream timeout")}
	gen := newTestGenerator(stub)

	note := gen.RetentionNote(context.Background(), "Sarah Chen", nil, "")
	assert.Equal(t, fallbackNote, note)
	assert.Equal(t, 1, stub.calls)
}

// TestRetentionNoteTrimsOutput tests whitespace handling and the
// blank-response fallback.
func TestRetentionNoteTrimsOutput(t *testing.T) {
	stub := &stubGenerator{response: "  Give Sarah a call this week.  \n"}
	gen := newTestGenerator(stub)
	assert.Equal(t, "Give Sarah a call this week.", gen.RetentionNote(context.Background(), "Sarah Chen", nil, ""))

	blank := newTestGenerator(&stubGenerator{response: "   \n"})
	assert.Equal(t, fallbackNote, blank.RetentionNote(context.Background(), "Sarah Chen", nil, ""))
}

// TestStrategicRecommendationsParsesWrappedArray tests extraction of a
// JSON array wrapped in prose and markdown fences.
func TestStrategicRecommendationsParsesWrappedArray(t *testing.T) {
	stub := &stubGenerator{response: "Here are my suggestions:\n```json\n" +
		`[{"title":"Launch a grief support series","description":"Members search for it [often] and find nothing."},` +
		`{"title":"Call high-risk members","description":"Personal outreach first."},` +
		`{"title":"Revive the welcome team","description":"First impressions drive return visits."}]` +
		"\n```\nLet me know if you need more."}
	gen := newTestGenerator(stub)

	recs := gen.StrategicRecommendations(context.Background(), CohortStats{HighRiskCount: 4})
	require.Len(t, recs, 3)
	assert.Equal(t, "Launch a grief support series", recs[0].Title)
	assert.Equal(t, "Members search for it [often] and find nothing.", recs[0].Description)
}

// TestStrategicRecommendationsBelowMinimum tests that a parseable but
// too-short array falls back to the fixed list.
func TestStrategicRecommendationsBelowMinimum(t *testing.T) {
	stub := &stubGenerator{response: `[{"title":"One","description":"a"},{"title":"Two","description":"b"}]`}
	gen := newTestGenerator(stub)

	recs := gen.StrategicRecommendations(context.Background(), CohortStats{})
	assert.Equal(t, fallbackRecommendations, recs)
}

// TestStrategicRecommendationsFallbacks tests the three fallback
// paths: nil collaborator, failure, and unparseable output.
func TestStrategicRecommendationsFallbacks(t *testing.T) {
	stats := CohortStats{HighRiskCount: 2, EngagementTrend: "declining"}

	nilGen := newTestGenerator(nil)
	assert.Equal(t, fallbackRecommendations, nilGen.StrategicRecommendations(context.Background(), stats))

	failing := newTestGenerator(&stubGenerator{err: errors.New("rate limited")})
	assert.Equal(t, fallbackRecommendations, failing.StrategicRecommendations(context.Background(), stats))

	prose := newTestGenerator(&stubGenerator{response: "I recommend focusing on youth engagement."})
	assert.Equal(t, fallbackRecommendations, prose.StrategicRecommendations(context.Background(), stats))
}

// TestStrategicRecommendationsCapsAtFive tests the output cap.
func TestStrategicRecommendationsCapsAtFive(t *testing.T) {
	stub := &stubGenerator{response: `[
		{"title":"One","description":"a"},{"title":"Two","description":"b"},
		{"title":"Three","description":"c"},{"title":"Four","description":"d"},
		{"title":"Five","description":"e"},{"title":"Six","description":"f"}]`}
	gen := newTestGenerator(stub)

	recs := gen.StrategicRecommendations(context.Background(), CohortStats{})
	assert.Len(t, recs, 5)
}

// TestExtractRecommendationsDropsUntitled tests that entries without a
// title are dropped and an all-untitled array counts as unparseable.
func TestExtractRecommendationsDropsUntitled(t *testing.T) {
	recs, ok := extractRecommendations(`[{"title":"Keep","description":"x"},{"description":"orphan"}]`)
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, "Keep", recs[0].Title)

	_, ok = extractRecommendations(`[{"description":"orphan"}]`)
	assert.False(t, ok)
}

// TestFirstJSONArrayStringAwareness tests that brackets inside string
// values do not terminate the scan.
func TestFirstJSONArrayStringAwareness(t *testing.T) {
	raw, ok := firstJSONArray(`noise ["a ] b", "c \" d"] trailing`)
	require.True(t, ok)
	assert.Equal(t, `["a ] b", "c \" d"]`, raw)

	_, ok = firstJSONArray("no array here")
	assert.False(t, ok)

	_, ok = firstJSONArray("[unterminated")
	assert.False(t, ok)
}
