package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/trendlens/internal/model"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	db := fs.String("db", defaultDBPath(), "Archive database path")
	fs.Parse(os.Args[1:])

	st := openDB(*db)
	defer st.Close()

	stats, err := st.ArchiveStats()
	if err != nil {
		log.Fatalf("failed to read archive stats: %v", err)
	}

	fmt.Printf("Archived runs:    %d\n", stats.Runs)
	fmt.Printf("Distinct themes:  %d\n", stats.Themes)
	fmt.Printf("Stored insights:  %d\n", stats.Insights)

	if stats.Insights > 0 {
		fmt.Println("\nBy type:")
		for _, t := range model.InsightTypes() {
			if count := stats.InsightsByType[t]; count > 0 {
				fmt.Printf("  %-14s %d\n", t, count)
			}
		}
	}

	ids, err := st.RunIDs()
	if err != nil {
		log.Fatalf("failed to list runs: %v", err)
	}
	if len(ids) > 0 {
		fmt.Printf("\nOldest run: %s\n", ids[0])
		fmt.Printf("Latest run: %s\n", ids[len(ids)-1])
	}
}
