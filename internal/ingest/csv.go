// Package ingest turns weekly sheet exports into validated records.
//
// The upstream spreadsheet is reached only through its generic CSV export;
// which spreadsheet product serves it is not this package's business.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/trendlens/internal/model"
)

// Column names recognized in an export header row, case-insensitive.
const (
	colTheme = "theme"
	colScore = "score"
	colCount = "count"
)

// ParseRows reads theme rows from a CSV export. A header row naming the
// theme/score/count columns is honored in any order; without one the first
// three columns are taken positionally. Bad cells surface as
// *model.MalformedRecordError tagged with the given run identifier.
func ParseRows(runID string, r io.Reader) ([]model.ThemeRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged exports happen; validate per row
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	themeIdx, scoreIdx, countIdx := 0, 1, 2
	data := records
	if idx, ok := headerIndex(records[0]); ok {
		themeIdx, scoreIdx, countIdx = idx[colTheme], idx[colScore], idx[colCount]
		data = records[1:]
	}

	rows := make([]model.ThemeRow, 0, len(data))
	for i, record := range data {
		if isBlank(record) {
			continue
		}
		if len(record) <= themeIdx || len(record) <= scoreIdx || len(record) <= countIdx {
			return nil, &model.MalformedRecordError{RunID: runID, Row: i, Reason: fmt.Sprintf("expected at least %d columns, got %d", max3(themeIdx, scoreIdx, countIdx)+1, len(record))}
		}

		theme := strings.TrimSpace(record[themeIdx])
		if theme == "" {
			return nil, &model.MalformedRecordError{RunID: runID, Row: i, Reason: "missing theme name"}
		}

		score, err := strconv.ParseFloat(strings.TrimSpace(record[scoreIdx]), 64)
		if err != nil {
			return nil, &model.MalformedRecordError{RunID: runID, Row: i, Reason: fmt.Sprintf("non-numeric score %q for theme %q", record[scoreIdx], theme)}
		}

		count, err := strconv.Atoi(strings.TrimSpace(record[countIdx]))
		if err != nil {
			return nil, &model.MalformedRecordError{RunID: runID, Row: i, Reason: fmt.Sprintf("non-numeric count %q for theme %q", record[countIdx], theme)}
		}

		rows = append(rows, model.ThemeRow{Theme: theme, Score: score, Count: count})
	}
	return rows, nil
}

// BuildRecord parses an export and constructs the week's record in one step.
func BuildRecord(runID string, timestamp time.Time, r io.Reader) (model.WeeklyRecord, error) {
	rows, err := ParseRows(runID, r)
	if err != nil {
		return model.WeeklyRecord{}, err
	}
	return model.NewWeeklyRecord(runID, timestamp, rows)
}

// NewRunID generates a run identifier for exports that do not carry one:
// the run date plus a short random suffix, e.g. "20260827-1a2b3c4d".
func NewRunID(timestamp time.Time) string {
	return timestamp.UTC().Format("20060102") + "-" + uuid.NewString()[:8]
}

// headerIndex maps recognized column names to their positions if the row
// looks like a header (it names all three required columns).
func headerIndex(row []string) (map[string]int, bool) {
	idx := make(map[string]int, 3)
	for i, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case colTheme:
			idx[colTheme] = i
		case colScore:
			idx[colScore] = i
		case colCount, "item_count", "items":
			idx[colCount] = i
		}
	}
	if len(idx) == 3 {
		return idx, true
	}
	return nil, false
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
