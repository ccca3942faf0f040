package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abelbrown/trendlens/internal/report"
)

func runReport() {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	runID := fs.String("run", "", "Run identifier (default: latest archived run)")
	outDir := fs.String("out", "reports", "Directory for the markdown report")
	stdout := fs.Bool("stdout", false, "Print the report instead of writing a file")
	db := fs.String("db", defaultDBPath(), "Archive database path")
	fs.Parse(os.Args[1:])

	st := openDB(*db)
	defer st.Close()

	id := *runID
	if id == "" {
		rec, ok, err := st.LatestRecord()
		if err != nil {
			log.Fatalf("failed to load latest run: %v", err)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "error: archive is empty")
			os.Exit(1)
		}
		id = rec.RunID()
	} else if _, ok, err := st.GetRecord(id); err != nil {
		log.Fatalf("failed to load run %s: %v", id, err)
	} else if !ok {
		fmt.Fprintf(os.Stderr, "error: run %q is not archived\n", id)
		os.Exit(1)
	}

	insights, err := st.GetInsights(id)
	if err != nil {
		log.Fatalf("failed to load insights for %s: %v", id, err)
	}

	md := report.Markdown(id, time.Now().UTC(), insights)
	if *stdout {
		fmt.Print(md)
		return
	}

	path, err := report.WriteFile(*outDir, id, md)
	if err != nil {
		log.Fatalf("failed to write report: %v", err)
	}
	fmt.Printf("Wrote %s (%d insights)\n", path, len(insights))
}
