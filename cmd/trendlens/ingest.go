package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/abelbrown/trendlens/internal/engine"
	"github.com/abelbrown/trendlens/internal/ingest"
	"github.com/abelbrown/trendlens/internal/logging"
	"github.com/abelbrown/trendlens/internal/report"
)

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	file := fs.String("file", "", "Path to a CSV export (use - for stdin)")
	url := fs.String("url", "", "URL of a published CSV export")
	runID := fs.String("run", "", "Run identifier (generated when empty)")
	date := fs.String("date", "", "Run date as YYYY-MM-DD (default: today)")
	outDir := fs.String("out", "reports", "Directory for the markdown report")
	db := fs.String("db", defaultDBPath(), "Archive database path")
	fs.Parse(os.Args[1:])

	if (*file == "") == (*url == "") {
		fmt.Fprintln(os.Stderr, "error: exactly one of -file or -url is required")
		os.Exit(1)
	}

	timestamp := time.Now().UTC()
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			log.Fatalf("invalid -date %q: %v", *date, err)
		}
		timestamp = parsed.UTC()
	}
	if *runID == "" {
		*runID = ingest.NewRunID(timestamp)
	}

	thresholds := loadThresholds()
	renderer := newRenderer(thresholds)

	body, err := readExport(*file, *url)
	if err != nil {
		log.Fatalf("failed to read export: %v", err)
	}

	rec, err := ingest.BuildRecord(*runID, timestamp, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("failed to build record: %v", err)
	}
	logging.Info("record built", "run", *runID, "themes", rec.Len(), "total_count", rec.TotalCount())

	st := openDB(*db)
	defer st.Close()

	history, err := st.History(rec.Timestamp())
	if err != nil {
		log.Fatalf("failed to load history: %v", err)
	}

	insights, err := engine.Generate(rec, history, thresholds)
	if err != nil {
		log.Fatalf("insight generation failed: %v", err)
	}

	// A failed narrative never drops its insight; the structured finding is
	// still archived and reported without prose.
	insights, renderErr := renderer.RenderAll(insights)
	if renderErr != nil {
		logging.Warn("some narratives failed to render", "error", renderErr)
		fmt.Fprintf(os.Stderr, "warning: %v\n", renderErr)
	}

	inserted, err := st.SaveRecord(rec)
	if err != nil {
		log.Fatalf("failed to archive record: %v", err)
	}
	if !inserted {
		fmt.Printf("Run %s already archived; insights recomputed.\n", *runID)
	}
	if err := st.ReplaceInsights(*runID, insights); err != nil {
		log.Fatalf("failed to store insights: %v", err)
	}

	md := report.Markdown(*runID, time.Now().UTC(), insights)
	path, err := report.WriteFile(*outDir, *runID, md)
	if err != nil {
		log.Fatalf("failed to write report: %v", err)
	}

	logging.Info("ingest complete", "run", *runID, "history", len(history), "insights", len(insights))
	fmt.Printf("Run:      %s\n", *runID)
	fmt.Printf("Themes:   %d\n", rec.Len())
	fmt.Printf("History:  %d prior runs\n", len(history))
	fmt.Printf("Insights: %d\n", len(insights))
	fmt.Printf("Report:   %s\n", path)
}

// readExport loads the CSV bytes from a file, stdin, or a URL.
func readExport(file, url string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	if file != "" {
		return os.ReadFile(file)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fetcher := ingest.NewFetcher(30 * time.Second)
	return fetcher.FetchCSV(ctx, url)
}
