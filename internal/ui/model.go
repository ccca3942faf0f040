// Package ui implements the interactive insight browser for `trendlens view`.
package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/trendlens/internal/model"
)

// Model is the bubbletea model for the insight browser: a selectable list on
// the left, evidence detail on the right. Read-only over the archive; all
// data is loaded before the program starts.
type Model struct {
	runID    string
	insights []model.Insight

	cursor   int
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// New creates a browser over one run's insights.
func New(runID string, insights []model.Insight) Model {
	return Model{runID: runID, insights: insights}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		detailWidth := m.width - m.listWidth() - 4
		detailHeight := m.height - 4
		if !m.ready {
			m.viewport = viewport.New(detailWidth, detailHeight)
			m.ready = true
		} else {
			m.viewport.Width = detailWidth
			m.viewport.Height = detailHeight
		}
		m.viewport.SetContent(m.detail())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.viewport.SetContent(m.detail())
				m.viewport.GotoTop()
			}
		case "down", "j":
			if m.cursor < len(m.insights)-1 {
				m.cursor++
				m.viewport.SetContent(m.detail())
				m.viewport.GotoTop()
			}
		case "g", "home":
			m.cursor = 0
			m.viewport.SetContent(m.detail())
			m.viewport.GotoTop()
		case "G", "end":
			if len(m.insights) > 0 {
				m.cursor = len(m.insights) - 1
				m.viewport.SetContent(m.detail())
				m.viewport.GotoTop()
			}
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := titleStyle.Render(fmt.Sprintf("Insights — %s", m.runID)) +
		dimStyle.Render(fmt.Sprintf("  (%d findings)", len(m.insights)))

	if len(m.insights) == 0 {
		return header + "\n\n" + dimStyle.Render("No insights met thresholds for this run.") +
			"\n\n" + helpStyle.Render("q quit")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.list(),
		detailBorder.Render(m.viewport.View()),
	)

	help := helpStyle.Render("j/k move · pgup/pgdn scroll detail · q quit")
	return header + "\n\n" + body + "\n" + help
}

// listWidth is the fixed width of the selection column.
func (m Model) listWidth() int { return 34 }

// list renders the selectable insight column.
func (m Model) list() string {
	var b strings.Builder
	for i, in := range m.insights {
		line := fmt.Sprintf("%-10s %s", typeBadges[in.Type], truncate(in.Theme(), 20))
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(m.listWidth()).Render(b.String())
}

// detail renders the evidence pane for the selected insight.
func (m Model) detail() string {
	if m.cursor >= len(m.insights) {
		return ""
	}
	in := m.insights[m.cursor]

	var b strings.Builder
	b.WriteString(badge(in.Type))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  confidence %.2f", in.Confidence)))
	b.WriteString("\n\n")

	if in.Narrative != "" {
		b.WriteString(in.Narrative)
		b.WriteString("\n\n")
	}

	keys := make([]string, 0, len(in.Evidence))
	for key := range in.Evidence {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-14s", key)))
		b.WriteString(" ")
		b.WriteString(evidenceValue(in.Evidence[key]))
		b.WriteString("\n")
	}
	return b.String()
}

func evidenceValue(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// truncate shortens a string to maxLen runes, adding "…" if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
