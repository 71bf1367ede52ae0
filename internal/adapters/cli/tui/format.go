package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/devbush/paralyze/internal/domain"
)

var (
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	zeroStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// FormatDuration renders short durations for progress lines
// Examples: 870ms -> "0.9s", 75s -> "1m15s"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// RenderReport formats a count report for a terminal: aligned terms,
// highlighted non-zero counts. The plain-text report stays the output
// format for files and pipes.
func RenderReport(report *domain.CountReport, terms *domain.TermSpec, model string) string {
	width := 0
	for _, t := range terms.Terms() {
		if w := lipgloss.Width(t.Display); w > width {
			width = w
		}
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(domain.ReportHeader(model)))
	sb.WriteString("\n")

	for _, t := range terms.Terms() {
		n := report.Get(t.Key)
		style := countStyle
		if n == 0 {
			style = zeroStyle
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(t.Display))
		sb.WriteString(fmt.Sprintf("  %s:%s %s\n", t.Display, pad, style.Render(fmt.Sprint(n))))
	}

	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Total parasite words: %d", report.Total())))
	return sb.String()
}
