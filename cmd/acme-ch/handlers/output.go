package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
)

// styles groups the lipgloss styles used for tables. Plain styles are used
// when stdout is not a terminal.
type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
}

// isInteractiveTTY is a variable so tests can force plain output.
var isInteractiveTTY = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func newStyles() styles {
	if !isInteractiveTTY() {
		plain := lipgloss.NewStyle()
		return styles{title: plain, header: plain, dim: plain, success: plain, failure: plain, warning: plain}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
		header:  lipgloss.NewStyle().Bold(true),
		dim:     lipgloss.NewStyle().Foreground(colorDim),
		success: lipgloss.NewStyle().Foreground(colorGreen),
		failure: lipgloss.NewStyle().Bold(true).Foreground(colorRed),
		warning: lipgloss.NewStyle().Foreground(colorYellow),
	}
}

// table renders rows as padded columns. Widths are measured before styling.
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.headers))
	for i, h := range t.headers {
		w[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(w) && lipgloss.Width(cell) > w[i] {
				w[i] = lipgloss.Width(cell)
			}
		}
	}
	return w
}

// render writes the table. style, when set, picks a style per cell.
func (t *table) render(out io.Writer, st styles, style func(row, col int) lipgloss.Style) {
	w := t.widths()

	var header strings.Builder
	for i, h := range t.headers {
		header.WriteString(pad(h, w[i]))
	}
	fmt.Fprintln(out, "  "+st.header.Render(strings.TrimRight(header.String(), " ")))

	total := 0
	for _, n := range w {
		total += n + 2
	}
	fmt.Fprintln(out, "  "+st.dim.Render(strings.Repeat("─", total-2)))

	for r, row := range t.rows {
		var line strings.Builder
		for c, cell := range row {
			if c >= len(w) {
				break
			}
			text := pad(cell, w[c])
			if style != nil {
				text = style(r, c).Render(text)
			}
			line.WriteString(text)
		}
		fmt.Fprintln(out, "  "+strings.TrimRight(line.String(), " "))
	}
}

func pad(s string, width int) string {
	n := width - lipgloss.Width(s)
	if n < 0 {
		n = 0
	}
	return s + strings.Repeat(" ", n+2)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// Output formats accepted by the inspectors.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

func checkOutput(format string) error {
	switch format {
	case OutputTable, OutputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use %s or %s)", format, OutputTable, OutputJSON)
	}
}
