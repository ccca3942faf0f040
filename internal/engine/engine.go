// Package engine generates typed, evidence-backed insights by comparing the
// current week's record against the archived history.
//
// Generate is a pure function of its inputs: no I/O, no shared state, and a
// deterministic tie-break everywhere ordering matters, so independent weekly
// runs (or a backfill over many weeks) can invoke it concurrently.
package engine

import (
	"math"
	"sort"

	"github.com/abelbrown/trendlens/internal/config"
	"github.com/abelbrown/trendlens/internal/model"
)

// Generate runs every detector over current against history and returns the
// insights in a fixed order: delta (by theme), rising, falling,
// concentration (by theme), anomaly (by theme).
//
// history must exclude current and be ordered oldest to newest. Absent
// history is not an error: the delta, rising/falling and anomaly detectors
// simply have nothing to compare against and only concentration can emit.
// Invalid thresholds abort before any record is touched.
func Generate(current model.WeeklyRecord, history model.HistorySeries, thresholds config.Thresholds) ([]model.Insight, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	var insights []model.Insight

	deltas := detectDeltas(current, history, thresholds)
	insights = append(insights, deltas...)
	insights = append(insights, rankExtremes(deltas)...)
	insights = append(insights, detectConcentration(current, thresholds)...)
	insights = append(insights, detectAnomalies(current, history, thresholds)...)

	return insights, nil
}

// detectDeltas compares each theme against the immediately preceding record.
// Results come back sorted by theme name.
func detectDeltas(current model.WeeklyRecord, history model.HistorySeries, thresholds config.Thresholds) []model.Insight {
	previous, ok := history.Latest()
	if !ok {
		return nil
	}

	var insights []model.Insight
	for _, theme := range current.Themes() { // already sorted
		if !previous.Has(theme) {
			continue
		}
		if current.Count(theme) < thresholds.MinCount {
			continue
		}

		delta := current.Score(theme) - previous.Score(theme)
		if math.Abs(delta) < thresholds.DeltaThreshold {
			continue
		}

		insights = append(insights, model.Insight{
			Type:       model.TypeDelta,
			Confidence: ratioConfidence(math.Abs(delta), thresholds.DeltaThreshold*2),
			Evidence: map[string]any{
				"theme":        theme,
				"previous":     previous.Score(theme),
				"current":      current.Score(theme),
				"delta":        delta,
				"previous_run": previous.RunID(),
			},
		})
	}
	return insights
}

// rankExtremes flags the single largest positive and single largest negative
// delta among the qualifying delta insights. These layer on top of the raw
// delta insights rather than replacing them. Ties go to the lexicographically
// smallest theme; deltas arrive sorted by theme, so a strict comparison is
// enough to keep the output reproducible.
func rankExtremes(deltas []model.Insight) []model.Insight {
	var rising, falling *model.Insight
	for i := range deltas {
		delta := deltas[i].Evidence["delta"].(float64)
		if delta > 0 && (rising == nil || delta > rising.Evidence["delta"].(float64)) {
			rising = &deltas[i]
		}
		if delta < 0 && (falling == nil || delta < falling.Evidence["delta"].(float64)) {
			falling = &deltas[i]
		}
	}

	var insights []model.Insight
	if rising != nil {
		insights = append(insights, extremeOf(*rising, model.TypeRisingTheme))
	}
	if falling != nil {
		insights = append(insights, extremeOf(*falling, model.TypeFallingTheme))
	}
	return insights
}

// extremeOf rebuilds a delta insight as a rising/falling one with fresh
// evidence, so the two never alias the same map.
func extremeOf(delta model.Insight, t model.InsightType) model.Insight {
	evidence := make(map[string]any, len(delta.Evidence))
	for k, v := range delta.Evidence {
		evidence[k] = v
	}
	return model.Insight{Type: t, Confidence: delta.Confidence, Evidence: evidence}
}

// detectConcentration flags themes holding an outsized share of the week's
// total score. A zero total emits nothing.
func detectConcentration(current model.WeeklyRecord, thresholds config.Thresholds) []model.Insight {
	totalScore := current.TotalScore()
	if totalScore == 0 {
		return nil
	}

	var insights []model.Insight
	for _, theme := range current.Themes() {
		if current.Count(theme) < thresholds.MinCount {
			continue
		}
		share := current.Score(theme) / totalScore
		if share < thresholds.ConcentrationThreshold {
			continue
		}

		insights = append(insights, model.Insight{
			Type:       model.TypeConcentration,
			Confidence: share, // already bounded [0,1] for well-formed input
			Evidence: map[string]any{
				"theme":       theme,
				"share":       share,
				"total_score": totalScore,
			},
		})
	}
	return insights
}

// detectAnomalies flags themes whose current score deviates from the
// historical mean by more than AnomalyMultiplier standard deviations. A
// theme needs at least MinCount historical appearances to be comparable,
// and its historical scores must actually vary: a zero deviation means no
// anomaly is possible.
func detectAnomalies(current model.WeeklyRecord, history model.HistorySeries, thresholds config.Thresholds) []model.Insight {
	var insights []model.Insight
	for _, theme := range current.Themes() {
		if current.Count(theme) < thresholds.MinCount {
			continue
		}

		samples := historicalScores(history, theme)
		if len(samples) < thresholds.MinCount {
			continue
		}

		mean, stddev := meanStddev(samples)
		if stddev == 0 {
			continue
		}

		deviation := math.Abs(current.Score(theme) - mean)
		if deviation < thresholds.AnomalyMultiplier*stddev {
			continue
		}

		insights = append(insights, model.Insight{
			Type:       model.TypeAnomaly,
			Confidence: ratioConfidence(deviation, thresholds.AnomalyMultiplier*stddev*2),
			Evidence: map[string]any{
				"theme":   theme,
				"mean":    mean,
				"stddev":  stddev,
				"current": current.Score(theme),
				"ratio":   deviation / stddev,
			},
		})
	}
	return insights
}

// historicalScores collects a theme's scores across the history series.
// Order does not matter to the caller; mean and deviation are symmetric.
func historicalScores(history model.HistorySeries, theme string) []float64 {
	var scores []float64
	for _, rec := range history {
		if rec.Has(theme) {
			scores = append(scores, rec.Score(theme))
		}
	}
	return scores
}

// meanStddev returns the mean and population standard deviation.
func meanStddev(samples []float64) (mean, stddev float64) {
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	return mean, math.Sqrt(variance)
}

// ratioConfidence maps a magnitude against a scale into [0,1]. A zero scale
// means the threshold itself is zero, so anything that fired is maximally
// confident.
func ratioConfidence(magnitude, scale float64) float64 {
	if scale == 0 {
		return 1.0
	}
	return math.Min(1.0, magnitude/scale)
}

// SortByTheme orders insights lexicographically by theme, preserving the
// caller's order between equal themes. Detector groups already come out
// sorted; this is for callers assembling ad-hoc subsets (reports, UI).
func SortByTheme(insights []model.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Theme() < insights[j].Theme()
	})
}
