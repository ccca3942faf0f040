package config

import (
	"errors"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Default()
	if d.MinCount != 3 {
		t.Errorf("MinCount = %d, want 3", d.MinCount)
	}
	if d.DeltaThreshold != 2.0 {
		t.Errorf("DeltaThreshold = %v, want 2.0", d.DeltaThreshold)
	}
	if d.ConcentrationThreshold != 0.6 {
		t.Errorf("ConcentrationThreshold = %v, want 0.6", d.ConcentrationThreshold)
	}
	if d.AnomalyMultiplier != 2.0 {
		t.Errorf("AnomalyMultiplier = %v, want 2.0", d.AnomalyMultiplier)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestValidateRejectsBadDomains(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Thresholds)
		field  string
	}{
		{"zero min count", func(t *Thresholds) { t.MinCount = 0 }, "min_count"},
		{"negative delta", func(t *Thresholds) { t.DeltaThreshold = -1 }, "delta_threshold"},
		{"zero concentration", func(t *Thresholds) { t.ConcentrationThreshold = 0 }, "concentration_threshold"},
		{"concentration above one", func(t *Thresholds) { t.ConcentrationThreshold = 1.5 }, "concentration_threshold"},
		{"multiplier at one", func(t *Thresholds) { t.AnomalyMultiplier = 1.0 }, "anomaly_multiplier"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th := Default()
			tc.mutate(&th)
			err := th.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var cfgErr *InvalidConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want *InvalidConfigurationError", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("error field = %q, want %q", cfgErr.Field, tc.field)
			}
		})
	}
}

func TestValidateBoundaries(t *testing.T) {
	th := Default()
	th.DeltaThreshold = 0 // zero is allowed: every change qualifies
	th.ConcentrationThreshold = 1.0
	if err := th.Validate(); err != nil {
		t.Errorf("boundary values rejected: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TRENDLENS_MIN_COUNT", "7")
	t.Setenv("TRENDLENS_DELTA_THRESHOLD", "4.5")
	t.Setenv("TRENDLENS_CONCENTRATION_THRESHOLD", "0.8")
	t.Setenv("TRENDLENS_ANOMALY_MULTIPLIER", "3.0")
	t.Setenv("TRENDLENS_TEMPLATE_PATH", "/tmp/templates.yml")

	th := Default()
	th.applyEnv()

	if th.MinCount != 7 {
		t.Errorf("MinCount = %d, want 7", th.MinCount)
	}
	if th.DeltaThreshold != 4.5 {
		t.Errorf("DeltaThreshold = %v, want 4.5", th.DeltaThreshold)
	}
	if th.ConcentrationThreshold != 0.8 {
		t.Errorf("ConcentrationThreshold = %v, want 0.8", th.ConcentrationThreshold)
	}
	if th.AnomalyMultiplier != 3.0 {
		t.Errorf("AnomalyMultiplier = %v, want 3.0", th.AnomalyMultiplier)
	}
	if th.TemplatePath != "/tmp/templates.yml" {
		t.Errorf("TemplatePath = %q, want /tmp/templates.yml", th.TemplatePath)
	}
}

func TestApplyEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("TRENDLENS_MIN_COUNT", "lots")

	th := Default()
	th.applyEnv()
	if th.MinCount != 3 {
		t.Errorf("MinCount = %d, want default 3 for unparseable override", th.MinCount)
	}
}
