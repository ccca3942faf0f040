// Package model defines the weekly record and insight types shared across
// the trendlens pipeline.
package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ThemeRow is one raw tabular input row (one theme) from a sheet export.
// Rows pass through NewWeeklyRecord before anything downstream sees them.
type ThemeRow struct {
	Theme string
	Score float64
	Count int
}

// ThemeScore is a named theme with its aggregate score and item count for
// one week.
type ThemeScore struct {
	Theme string
	Score float64
	Count int
}

// MalformedRecordError reports a bad input row during record construction.
// Construction of other records is unaffected.
type MalformedRecordError struct {
	RunID  string
	Row    int // zero-based index into the input rows
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %q: row %d: %s", e.RunID, e.Row, e.Reason)
}

// WeeklyRecord is one week's snapshot: a run identifier, a timestamp, and a
// set of theme scores keyed by theme name. Immutable once constructed.
type WeeklyRecord struct {
	runID     string
	timestamp time.Time
	scores    map[string]ThemeScore
}

// NewWeeklyRecord builds a record from raw tabular rows. It fails with a
// *MalformedRecordError on a missing theme name, a non-finite score, a
// negative count, or a duplicate theme name.
func NewWeeklyRecord(runID string, timestamp time.Time, rows []ThemeRow) (WeeklyRecord, error) {
	scores := make(map[string]ThemeScore, len(rows))
	for i, row := range rows {
		if row.Theme == "" {
			return WeeklyRecord{}, &MalformedRecordError{RunID: runID, Row: i, Reason: "missing theme name"}
		}
		if math.IsNaN(row.Score) || math.IsInf(row.Score, 0) {
			return WeeklyRecord{}, &MalformedRecordError{RunID: runID, Row: i, Reason: fmt.Sprintf("non-finite score for theme %q", row.Theme)}
		}
		if row.Count < 0 {
			return WeeklyRecord{}, &MalformedRecordError{RunID: runID, Row: i, Reason: fmt.Sprintf("negative count for theme %q", row.Theme)}
		}
		if _, exists := scores[row.Theme]; exists {
			return WeeklyRecord{}, &MalformedRecordError{RunID: runID, Row: i, Reason: fmt.Sprintf("duplicate theme %q", row.Theme)}
		}
		scores[row.Theme] = ThemeScore{Theme: row.Theme, Score: row.Score, Count: row.Count}
	}
	return WeeklyRecord{runID: runID, timestamp: timestamp, scores: scores}, nil
}

// RunID returns the opaque run identifier.
func (r WeeklyRecord) RunID() string { return r.runID }

// Timestamp returns when this record's run happened.
func (r WeeklyRecord) Timestamp() time.Time { return r.timestamp }

// Themes returns all theme names sorted lexicographically.
func (r WeeklyRecord) Themes() []string {
	themes := make([]string, 0, len(r.scores))
	for theme := range r.scores {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	return themes
}

// Has reports whether the record contains the given theme.
func (r WeeklyRecord) Has(theme string) bool {
	_, ok := r.scores[theme]
	return ok
}

// Score returns the aggregate score for a theme, or 0 if absent.
func (r WeeklyRecord) Score(theme string) float64 {
	return r.scores[theme].Score
}

// Count returns the item count for a theme, or 0 if absent.
func (r WeeklyRecord) Count(theme string) int {
	return r.scores[theme].Count
}

// Len returns the number of themes in the record.
func (r WeeklyRecord) Len() int { return len(r.scores) }

// TotalScore sums all theme scores. Computed on demand; records are small.
func (r WeeklyRecord) TotalScore() float64 {
	var total float64
	for _, ts := range r.scores {
		total += ts.Score
	}
	return total
}

// TotalCount sums all theme item counts.
func (r WeeklyRecord) TotalCount() int {
	var total int
	for _, ts := range r.scores {
		total += ts.Count
	}
	return total
}

// HistorySeries is an ordered sequence of weekly records, oldest first.
// The engine treats it as read-only.
type HistorySeries []WeeklyRecord

// Validate checks that records are strictly increasing by timestamp and
// carry no duplicate run identifiers.
func (h HistorySeries) Validate() error {
	seen := make(map[string]bool, len(h))
	for i, rec := range h {
		if seen[rec.RunID()] {
			return fmt.Errorf("history: duplicate run id %q", rec.RunID())
		}
		seen[rec.RunID()] = true
		if i > 0 && !h[i-1].Timestamp().Before(rec.Timestamp()) {
			return fmt.Errorf("history: run %q does not follow %q in time", rec.RunID(), h[i-1].RunID())
		}
	}
	return nil
}

// Latest returns the most recent record, if any.
func (h HistorySeries) Latest() (WeeklyRecord, bool) {
	if len(h) == 0 {
		return WeeklyRecord{}, false
	}
	return h[len(h)-1], true
}
