package insights

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/faithbridge/member-insights/internal/models"
)

// ContentGapDetector aggregates search logs to surface topics members
// keep looking for that the content library does not serve.
type ContentGapDetector struct {
	cfg    Config
	logger *zap.Logger
}

// NewContentGapDetector creates a new content-gap detector.
func NewContentGapDetector(cfg Config, logger *zap.Logger) *ContentGapDetector {
	return &ContentGapDetector{cfg: cfg, logger: logger}
}

// Detect groups logs by normalized query text, keeps low-result
// queries seen at least the minimum number of times, and reports the
// top gaps by search volume. A single low-result search is noise and
// is excluded.
func (d *ContentGapDetector) Detect(logs []models.SearchLogRecord) []ContentGap {
	type tally struct {
		count   int
		results int
	}
	tallies := make(map[string]*tally)
	skipped := 0

	for i := range logs {
		log := logs[i]
		if log.OccurredAt.IsZero() || log.ResultsCount < 0 {
			skipped++
			continue
		}
		if log.ResultsCount >= d.cfg.GapMaxResults {
			continue
		}
		topic := strings.ToLower(strings.TrimSpace(log.Query))
		if topic == "" {
			skipped++
			continue
		}
		t, ok := tallies[topic]
		if !ok {
			t = &tally{}
			tallies[topic] = t
		}
		t.count++
		t.results += log.ResultsCount
	}

	if skipped > 0 {
		d.logger.Warn("Skipped malformed search log records", zap.Int("skipped", skipped))
	}

	gaps := make([]ContentGap, 0, len(tallies))
	for topic, t := range tallies {
		if t.count < d.cfg.GapMinOccurrences {
			continue
		}
		avg := float64(t.results) / float64(t.count)
		gaps = append(gaps, ContentGap{
			Topic:       topic,
			SearchCount: t.count,
			AvgResults:  math.Round(avg*10) / 10,
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].SearchCount > gaps[j].SearchCount
	})
	if len(gaps) > d.cfg.MaxContentGaps {
		gaps = gaps[:d.cfg.MaxContentGaps]
	}
	return gaps
}
