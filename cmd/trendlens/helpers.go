package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/abelbrown/trendlens/internal/config"
	"github.com/abelbrown/trendlens/internal/narrative"
	"github.com/abelbrown/trendlens/internal/store"
)

// dataDir returns ~/.trendlens/, creating it if needed.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("failed to get home directory: %v", err)
	}
	dir := filepath.Join(home, ".trendlens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// defaultDBPath returns the path to trendlens.db.
func defaultDBPath() string {
	return filepath.Join(dataDir(), "trendlens.db")
}

// openDB opens the archive or fatals.
func openDB(path string) *store.Store {
	st, err := store.Open(path)
	if err != nil {
		log.Fatalf("failed to open archive: %v", err)
	}
	return st
}

// loadThresholds resolves the threshold configuration or fatals. Validation
// happens here as well as in the engine so a bad value aborts before any
// I/O, matching the fail-fast policy for configuration.
func loadThresholds() config.Thresholds {
	thresholds, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := thresholds.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return thresholds
}

// newRenderer builds the narrative renderer, honoring template overrides.
func newRenderer(thresholds config.Thresholds) *narrative.Renderer {
	templates, err := narrative.LoadTemplates(thresholds.TemplatePath)
	if err != nil {
		log.Fatalf("failed to load narrative templates: %v", err)
	}
	return narrative.NewRenderer(templates)
}
