package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/abelbrown/trendlens/internal/engine"
	"github.com/abelbrown/trendlens/internal/logging"
)

// runBackfill recomputes insights for every archived run, oldest first. Each
// run sees only the runs before it, so the result matches what a live weekly
// pipeline would have produced with the current thresholds and templates.
// The engine is side-effect-free, so interrupting and re-running is safe.
func runBackfill() {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	db := fs.String("db", defaultDBPath(), "Archive database path")
	fs.Parse(os.Args[1:])

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	thresholds := loadThresholds()
	renderer := newRenderer(thresholds)

	st := openDB(*db)
	defer st.Close()

	ids, err := st.RunIDs()
	if err != nil {
		log.Fatalf("failed to list runs: %v", err)
	}
	if len(ids) == 0 {
		fmt.Println("Archive is empty; nothing to backfill.")
		return
	}

	fmt.Printf("Recomputing insights for %d runs... (Ctrl+C to stop)\n", len(ids))

	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			fmt.Printf("\nInterrupted after %d/%d runs. Re-run to continue.\n", done, len(ids))
			return
		}

		rec, ok, err := st.GetRecord(id)
		if err != nil {
			log.Fatalf("failed to load run %s: %v", id, err)
		}
		if !ok {
			continue
		}

		history, err := st.History(rec.Timestamp())
		if err != nil {
			log.Fatalf("failed to load history for %s: %v", id, err)
		}

		insights, err := engine.Generate(rec, history, thresholds)
		if err != nil {
			log.Fatalf("insight generation failed for %s: %v", id, err)
		}

		insights, renderErr := renderer.RenderAll(insights)
		if renderErr != nil {
			logging.Warn("narrative render failed during backfill", "run", id, "error", renderErr)
		}

		if err := st.ReplaceInsights(id, insights); err != nil {
			log.Fatalf("failed to store insights for %s: %v", id, err)
		}

		done++
		fmt.Printf("  %s: %d insights (%d prior runs)\n", id, len(insights), len(history))
	}

	fmt.Printf("\nDone. Recomputed %d runs.\n", done)
}
