// Package config resolves the immutable threshold settings for one engine
// run. Settings come from defaults, overridden by the config file, overridden
// by environment variables; detectors never look anything up themselves.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Thresholds holds the per-run detector settings. Resolved once at engine
// invocation and passed by value; never mutated mid-run.
type Thresholds struct {
	// MinCount is the minimum item count for a theme to qualify for any
	// insight (and the minimum historical sample count for anomalies).
	MinCount int `json:"min_count"`

	// DeltaThreshold is the minimum absolute week-over-week score change
	// for a delta insight.
	DeltaThreshold float64 `json:"delta_threshold"`

	// ConcentrationThreshold is the minimum share of total score for a
	// concentration insight, in (0,1].
	ConcentrationThreshold float64 `json:"concentration_threshold"`

	// AnomalyMultiplier is the number of historical standard deviations a
	// score must move for an anomaly insight. Must exceed 1.
	AnomalyMultiplier float64 `json:"anomaly_multiplier"`

	// TemplatePath optionally points at a YAML file of narrative template
	// overrides. Empty means built-in templates only.
	TemplatePath string `json:"template_path,omitempty"`
}

// InvalidConfigurationError reports a threshold value outside its domain.
// It aborts the entire engine run before any detector executes.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Default returns the documented default thresholds.
func Default() Thresholds {
	return Thresholds{
		MinCount:               3,
		DeltaThreshold:         2.0,
		ConcentrationThreshold: 0.6,
		AnomalyMultiplier:      2.0,
	}
}

// Validate checks every threshold against its stated domain.
func (t Thresholds) Validate() error {
	if t.MinCount < 1 {
		return &InvalidConfigurationError{Field: "min_count", Reason: fmt.Sprintf("must be >= 1, got %d", t.MinCount)}
	}
	if t.DeltaThreshold < 0 {
		return &InvalidConfigurationError{Field: "delta_threshold", Reason: fmt.Sprintf("must be >= 0, got %g", t.DeltaThreshold)}
	}
	if t.ConcentrationThreshold <= 0 || t.ConcentrationThreshold > 1 {
		return &InvalidConfigurationError{Field: "concentration_threshold", Reason: fmt.Sprintf("must be in (0,1], got %g", t.ConcentrationThreshold)}
	}
	if t.AnomalyMultiplier <= 1 {
		return &InvalidConfigurationError{Field: "anomaly_multiplier", Reason: fmt.Sprintf("must be > 1, got %g", t.AnomalyMultiplier)}
	}
	return nil
}

// Path returns the location of the config file.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".trendlens", "config.json")
}

// Load reads thresholds from disk, falling back to defaults, then applies
// environment overrides. The result is not validated here; the engine
// validates before running so a broken file fails the run, not the load.
func Load() (Thresholds, error) {
	t := Default()

	data, err := os.ReadFile(Path())
	if err == nil {
		if err := json.Unmarshal(data, &t); err != nil {
			return Default(), fmt.Errorf("parse %s: %w", Path(), err)
		}
	} else if !os.IsNotExist(err) {
		return Default(), err
	}

	t.applyEnv()
	return t, nil
}

// Save writes thresholds to the config file.
func (t Thresholds) Save() error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnv overrides fields from TRENDLENS_* environment variables.
// Unparseable values are ignored rather than guessed at.
func (t *Thresholds) applyEnv() {
	if v := os.Getenv("TRENDLENS_MIN_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			t.MinCount = n
		}
	}
	if v := os.Getenv("TRENDLENS_DELTA_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			t.DeltaThreshold = f
		}
	}
	if v := os.Getenv("TRENDLENS_CONCENTRATION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			t.ConcentrationThreshold = f
		}
	}
	if v := os.Getenv("TRENDLENS_ANOMALY_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			t.AnomalyMultiplier = f
		}
	}
	if v := os.Getenv("TRENDLENS_TEMPLATE_PATH"); v != "" {
		t.TemplatePath = v
	}
}
