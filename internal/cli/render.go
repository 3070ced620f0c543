package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"travelspend/internal/core"
	"travelspend/internal/report"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorWarn      = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorWarn)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// RightAlign marks columns rendered flush right, typically amounts.
	RightAlign map[int]bool
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. Widths are
// measured in terminal cells, so currency signs line up.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i := 0; i < numCols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if t.RightAlign[i] {
				cell = pad + cell
			} else {
				cell += pad
			}
			b.WriteString(style.Render(" " + cell + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// RenderHorizontalBar renders one bar of width percent of maxWidth cells.
func RenderHorizontalBar(percent, maxWidth int) string {
	n := percent * maxWidth / 100
	if percent > 0 && n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// RenderReport renders the terminal version of the dashboard.
func RenderReport(rep report.Report, source string, fallback bool) string {
	var b strings.Builder

	b.WriteString(RenderTitle("Travel Spend & Onboarding Intelligence"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  source: " + source))
	b.WriteString("\n")
	if fallback {
		b.WriteString(warnStyle.Render("  showing sample data: the configured dataset could not be read"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(RenderTable(Table{
		Rows: [][]string{
			{"Total Spend", rep.TotalSpendDisplay},
			{"Active Orgs", fmt.Sprintf("%d", rep.ActiveOrgs)},
		},
		RightAlign: map[int]bool{1: true},
	}))
	b.WriteString("\n")

	statusRows := make([][]string, 0, len(rep.ByStatus))
	for _, st := range rep.ByStatus {
		statusRows = append(statusRows, []string{st.Status, core.FormatSpend(st.Spend), fmt.Sprintf("%.1f%%", st.Percent)})
	}
	b.WriteString(RenderTable(Table{
		Title:      "Spend by Status",
		Headers:    []string{"Status", "Spend", "Share"},
		Rows:       statusRows,
		RightAlign: map[int]bool{1: true, 2: true},
	}))
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(headerStyle.Render("Top Unmanaged Spend"))
	b.WriteString("\n")
	if !rep.HasUnmanaged {
		b.WriteString(mutedStyle.Render("  No unmanaged data."))
		b.WriteString("\n")
	} else {
		bars := report.Bars(rep.TopUnmanaged)
		labelWidth := 0
		for _, bar := range bars {
			labelWidth = max(labelWidth, lipgloss.Width(bar.Label))
		}
		barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(report.ColorUnmanaged))
		for _, bar := range bars {
			fmt.Fprintf(&b, "  %-*s %s %s\n", labelWidth, bar.Label,
				barStyle.Render(RenderHorizontalBar(bar.Width, 30)), valueStyle.Render(bar.Amount))
		}
	}
	b.WriteString("\n")

	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, []string{r.Organisation, r.Month, core.FormatAmount(r.Spend), r.Status, r.OrgType})
	}
	b.WriteString(RenderTable(Table{
		Headers:    core.Columns,
		Rows:       rows,
		RightAlign: map[int]bool{2: true},
	}))
	return b.String()
}
