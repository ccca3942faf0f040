// Command trendlens is the unified CLI for the weekly insight pipeline.
//
// Usage:
//
//	trendlens                  Show help
//	trendlens ingest           Ingest a weekly sheet export and generate insights
//	trendlens report           Re-render the markdown report for an archived run
//	trendlens backfill         Recompute insights for every archived run
//	trendlens stats            Archive statistics
//	trendlens view             Interactive insight browser
package main

import (
	"fmt"
	"os"

	"github.com/abelbrown/trendlens/internal/logging"
)

const usage = `trendlens — weekly market-research insights

Usage:
  trendlens <command> [flags]

Commands:
  ingest      Ingest a weekly sheet export (CSV file or URL), archive it,
              run the insight engine and write the markdown report
  report      Re-render the report for an archived run
  backfill    Recompute insights for every archived run in order
  stats       Archive statistics (runs, themes, insights by type)
  view        Interactive terminal browser over a run's insights

Environment:
  TRENDLENS_MIN_COUNT                Minimum item count per theme (default 3)
  TRENDLENS_DELTA_THRESHOLD          Week-over-week delta threshold (default 2.0)
  TRENDLENS_CONCENTRATION_THRESHOLD  Concentration share threshold (default 0.6)
  TRENDLENS_ANOMALY_MULTIPLIER       Anomaly stddev multiplier (default 2.0)
  TRENDLENS_TEMPLATE_PATH            YAML narrative template overrides

Run 'trendlens <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "trendlens: logging init failed: %v\n", err)
	}
	defer logging.Close()

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "ingest":
		runIngest()
	case "report":
		runReport()
	case "backfill":
		runBackfill()
	case "stats":
		runStats()
	case "view":
		runView()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "trendlens: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
