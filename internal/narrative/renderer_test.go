package narrative

import (
	"errors"
	"strings"
	"testing"

	"github.com/abelbrown/trendlens/internal/model"
)

func deltaInsight() model.Insight {
	return model.Insight{
		Type:       model.TypeDelta,
		Confidence: 0.85,
		Evidence: map[string]any{
			"theme":        "AI agents",
			"previous":     5.0,
			"current":      8.4,
			"delta":        3.4,
			"previous_run": "wk1",
		},
	}
}

func TestRenderDefaults(t *testing.T) {
	r := NewRenderer(Defaults())

	got, err := r.Render(deltaInsight())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := "AI agents moved from 5.0 to 8.4 (+3.4) since run wk1."
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderAllTypesCovered(t *testing.T) {
	r := NewRenderer(Defaults())

	evidence := map[model.InsightType]map[string]any{
		model.TypeDelta:         deltaInsight().Evidence,
		model.TypeRisingTheme:   deltaInsight().Evidence,
		model.TypeFallingTheme:  deltaInsight().Evidence,
		model.TypeConcentration: {"theme": "Fintech", "share": 0.65, "total_score": 100.0},
		model.TypeAnomaly:       {"theme": "Crypto", "mean": 2.0, "stddev": 0.8, "current": 5.0, "ratio": 3.7},
	}

	for _, typ := range model.InsightTypes() {
		got, err := r.Render(model.Insight{Type: typ, Evidence: evidence[typ]})
		if err != nil {
			t.Errorf("Render(%s) failed: %v", typ, err)
			continue
		}
		if strings.Contains(got, "{") {
			t.Errorf("Render(%s) left an unsubstituted placeholder: %q", typ, got)
		}
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	r := NewRenderer(Templates{}) // nothing registered

	_, err := r.Render(deltaInsight())
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	var tmplErr *MissingTemplateError
	if !errors.As(err, &tmplErr) {
		t.Fatalf("error type = %T, want *MissingTemplateError", err)
	}
	if tmplErr.Type != model.TypeDelta {
		t.Errorf("error type field = %s, want delta", tmplErr.Type)
	}
}

func TestRenderMissingEvidenceKey(t *testing.T) {
	r := NewRenderer(Templates{
		model.TypeDelta: "{theme} jumped by {momentum}.",
	})

	_, err := r.Render(deltaInsight())
	if err == nil {
		t.Fatal("expected error for missing evidence key")
	}
	var keyErr *MissingEvidenceKeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("error type = %T, want *MissingEvidenceKeyError", err)
	}
	if keyErr.Key != "momentum" {
		t.Errorf("error key = %q, want momentum", keyErr.Key)
	}
}

func TestRenderAllIsolatesFailures(t *testing.T) {
	// concentration template is broken; delta is fine
	r := NewRenderer(Templates{
		model.TypeDelta:         "{theme}: {delta}",
		model.TypeConcentration: "{theme} at {nonexistent}",
	})

	insights := []model.Insight{
		deltaInsight(),
		{Type: model.TypeConcentration, Evidence: map[string]any{"theme": "Fintech", "share": 0.65}},
	}

	out, err := r.RenderAll(insights)
	if err == nil {
		t.Fatal("expected a joined rendering error")
	}
	if len(out) != 2 {
		t.Fatalf("RenderAll dropped insights: got %d, want 2", len(out))
	}
	if out[0].Narrative != "AI agents: 3.4" {
		t.Errorf("healthy insight narrative = %q", out[0].Narrative)
	}
	if out[1].Narrative != "" {
		t.Errorf("failed insight should have empty narrative, got %q", out[1].Narrative)
	}
	var keyErr *MissingEvidenceKeyError
	if !errors.As(err, &keyErr) {
		t.Errorf("joined error does not expose *MissingEvidenceKeyError: %v", err)
	}
}

func TestRenderDeterministicFloatForm(t *testing.T) {
	r := NewRenderer(Templates{model.TypeDelta: "{delta}"})

	in := model.Insight{Type: model.TypeDelta, Evidence: map[string]any{"delta": 3.4}}
	first, err := r.Render(in)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	second, _ := r.Render(in)
	if first != second {
		t.Errorf("non-deterministic rendering: %q vs %q", first, second)
	}
	if first != "3.4" {
		t.Errorf("bare float rendered as %q, want shortest form 3.4", first)
	}
}
