package model

// InsightType is the closed set of finding kinds the engine can emit.
type InsightType string

const (
	TypeDelta         InsightType = "delta"
	TypeRisingTheme   InsightType = "rising_theme"
	TypeFallingTheme  InsightType = "falling_theme"
	TypeConcentration InsightType = "concentration"
	TypeAnomaly       InsightType = "anomaly"
)

// InsightTypes lists all types in the engine's emission order.
func InsightTypes() []InsightType {
	return []InsightType{TypeDelta, TypeRisingTheme, TypeFallingTheme, TypeConcentration, TypeAnomaly}
}

// Valid reports whether t is one of the known insight types.
func (t InsightType) Valid() bool {
	switch t {
	case TypeDelta, TypeRisingTheme, TypeFallingTheme, TypeConcentration, TypeAnomaly:
		return true
	}
	return false
}

// Insight is one structured, evidence-backed finding. Evidence values are
// numbers or strings only. Insights are immutable after emission; each run
// produces a fresh, disposable set.
type Insight struct {
	Type       InsightType
	Narrative  string
	Evidence   map[string]any
	Confidence float64 // [0,1]
}

// Theme returns the evidence "theme" value, or "" when absent. Every
// detector records the theme it fired on under this key.
func (in Insight) Theme() string {
	theme, _ := in.Evidence["theme"].(string)
	return theme
}
