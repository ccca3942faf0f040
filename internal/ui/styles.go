package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/trendlens/internal/model"
)

// Type colors for visual differentiation
var typeColors = map[model.InsightType]lipgloss.Color{
	model.TypeDelta:         lipgloss.Color("#58a6ff"), // blue
	model.TypeRisingTheme:   lipgloss.Color("#7ee787"), // green
	model.TypeFallingTheme:  lipgloss.Color("#f85149"), // red
	model.TypeConcentration: lipgloss.Color("#ffa657"), // orange
	model.TypeAnomaly:       lipgloss.Color("#d2a8ff"), // purple
}

// Short badges for the list column
var typeBadges = map[model.InsightType]string{
	model.TypeDelta:         "Δ DELTA",
	model.TypeRisingTheme:   "▲ RISING",
	model.TypeFallingTheme:  "▼ FALLING",
	model.TypeConcentration: "◉ CONC",
	model.TypeAnomaly:       "✱ ANOMALY",
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#c9d1d9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#c9d1d9")).
			Background(lipgloss.Color("#1f6feb"))

	detailBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363d")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#484f58"))
)

// badge renders the colored type tag for an insight.
func badge(t model.InsightType) string {
	color, ok := typeColors[t]
	if !ok {
		color = lipgloss.Color("#8b949e")
	}
	label, ok := typeBadges[t]
	if !ok {
		label = string(t)
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)
}
