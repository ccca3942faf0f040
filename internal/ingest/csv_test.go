package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/trendlens/internal/model"
)

func TestParseRowsWithHeader(t *testing.T) {
	csv := "theme,score,count\nAI agents,8.4,5\nFintech,65,5\n"

	rows, err := ParseRows("wk1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Theme != "AI agents" || rows[0].Score != 8.4 || rows[0].Count != 5 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
}

func TestParseRowsHeaderReordered(t *testing.T) {
	csv := "count,theme,score\n5,AI agents,8.4\n"

	rows, err := ParseRows("wk1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if rows[0].Theme != "AI agents" || rows[0].Score != 8.4 || rows[0].Count != 5 {
		t.Errorf("reordered header mismapped: %+v", rows[0])
	}
}

func TestParseRowsPositional(t *testing.T) {
	csv := "AI agents,8.4,5\nFintech,65,5\n"

	rows, err := ParseRows("wk1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
}

func TestParseRowsSkipsBlankLines(t *testing.T) {
	csv := "theme,score,count\nAI agents,8.4,5\n,,\n"

	rows, err := ParseRows("wk1", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("len = %d, want 1 (blank row skipped)", len(rows))
	}
}

func TestParseRowsErrors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"non-numeric score", "theme,score,count\nAI agents,high,5\n"},
		{"non-numeric count", "theme,score,count\nAI agents,8.4,many\n"},
		{"missing theme", "theme,score,count\n,8.4,5\n"},
		{"short row", "AI agents,8.4\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRows("wk1", strings.NewReader(tc.csv))
			if err == nil {
				t.Fatal("expected error")
			}
			var recErr *model.MalformedRecordError
			if !errors.As(err, &recErr) {
				t.Fatalf("error type = %T, want *model.MalformedRecordError", err)
			}
			if recErr.RunID != "wk1" {
				t.Errorf("error RunID = %q, want wk1", recErr.RunID)
			}
		})
	}
}

func TestBuildRecord(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	csv := "theme,score,count\nAI agents,8.4,5\n"

	rec, err := BuildRecord("wk1", ts, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("BuildRecord failed: %v", err)
	}
	if rec.RunID() != "wk1" || rec.Score("AI agents") != 8.4 {
		t.Errorf("record = %v / %v", rec.RunID(), rec.Score("AI agents"))
	}
}

func TestBuildRecordDuplicateTheme(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	csv := "theme,score,count\nAI agents,8.4,5\nAI agents,2.0,3\n"

	_, err := BuildRecord("wk1", ts, strings.NewReader(csv))
	var recErr *model.MalformedRecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("expected *model.MalformedRecordError for duplicate theme, got %T", err)
	}
}

func TestNewRunID(t *testing.T) {
	ts := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	id := NewRunID(ts)
	if !strings.HasPrefix(id, "20260827-") {
		t.Errorf("run id %q does not start with the run date", id)
	}
	if len(id) != len("20260827-")+8 {
		t.Errorf("run id %q has unexpected length", id)
	}
	if NewRunID(ts) == id {
		t.Error("run ids should not collide across calls")
	}
}
