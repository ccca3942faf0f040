package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/trendlens/internal/ui"
)

func runView() {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	runID := fs.String("run", "", "Run identifier (default: latest archived run)")
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
	}

	insights, err := st.GetInsights(id)
	if err != nil {
		log.Fatalf("failed to load insights for %s: %v", id, err)
	}

	program := tea.NewProgram(ui.New(id, insights), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("view failed: %v", err)
	}
}
