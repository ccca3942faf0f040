// Package report serializes a run's insights into a markdown document.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/trendlens/internal/model"
)

// Markdown renders the full insights report for one run. Insights appear in
// the order given (the engine's emission order); evidence rows are sorted by
// key so the document is reproducible byte for byte.
func Markdown(runID string, generated time.Time, insights []model.Insight) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Automated Insights — %s\n\n", runID)
	if !generated.IsZero() {
		fmt.Fprintf(&b, "Generated UTC: %s\n\n", generated.UTC().Format(time.RFC3339))
	}

	if len(insights) == 0 {
		b.WriteString("No automated insights met thresholds for this run.\n")
		return b.String()
	}

	b.WriteString("## Findings\n\n")
	for i, in := range insights {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, heading(in))
		fmt.Fprintf(&b, "- **Type:** %s\n", in.Type)
		fmt.Fprintf(&b, "- **Confidence:** %.2f\n\n", in.Confidence)

		if in.Narrative != "" {
			b.WriteString(in.Narrative)
			b.WriteString("\n\n")
		}

		b.WriteString("| Metric | Value |\n| --- | --- |\n")
		for _, key := range sortedKeys(in.Evidence) {
			fmt.Fprintf(&b, "| %s | %s |\n", titleCase(key), cell(in.Evidence[key]))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// WriteFile writes the report to dir as insights-<runID>.md and returns the
// path written.
func WriteFile(dir, runID, markdown string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("insights-%s.md", runID))
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// heading summarizes an insight for its section title.
func heading(in model.Insight) string {
	theme := in.Theme()
	switch in.Type {
	case model.TypeDelta:
		return fmt.Sprintf("Week-over-week shift in %s", theme)
	case model.TypeRisingTheme:
		return fmt.Sprintf("Top rising theme: %s", theme)
	case model.TypeFallingTheme:
		return fmt.Sprintf("Top falling theme: %s", theme)
	case model.TypeConcentration:
		return fmt.Sprintf("Concentration risk in %s", theme)
	case model.TypeAnomaly:
		return fmt.Sprintf("Anomalous score for %s", theme)
	default:
		return string(in.Type)
	}
}

func sortedKeys(evidence map[string]any) []string {
	keys := make([]string, 0, len(evidence))
	for key := range evidence {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// titleCase turns an evidence key like "total_score" into "Total Score".
func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// cell renders an evidence value for the table. Floats use the shortest
// exact decimal form to keep reports deterministic.
func cell(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
