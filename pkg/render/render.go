// Package render turns a finished report table into text output.
// It is purely presentational: columns and rows arrive ordered, and
// absent markers render as empty cells.
package render

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/symexlab/statoor/pkg/stats"
)

// Recognized output formats.
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Formats lists the recognized output format names.
func Formats() []string {
	return []string{FormatText, FormatCSV, FormatMarkdown}
}

// ValidFormat reports whether name is a recognized format.
func ValidFormat(name string) bool {
	switch name {
	case FormatText, FormatCSV, FormatMarkdown:
		return true
	default:
		return false
	}
}

// Render formats a table in the named format.
func Render(t *stats.Table, format string) (string, error) {
	switch format {
	case FormatText:
		return Text(t), nil
	case FormatCSV:
		return CSV(t)
	case FormatMarkdown:
		return Markdown(t), nil
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

// Text renders a fixed-width table with a header separator. Numeric
// columns are right-aligned, the Path column left-aligned.
func Text(t *stats.Table) string {
	widths := columnWidths(t)

	var sb strings.Builder

	sb.Grow(1024)

	for i, col := range t.Columns {
		if i > 0 {
			sb.WriteString("  ")
		}

		pad(&sb, col, widths[i], i != 0)
	}

	sb.WriteByte('\n')

	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}

		sb.WriteString(strings.Repeat("-", w))
	}

	sb.WriteByte('\n')

	for _, row := range t.Rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}

			pad(&sb, cell.String(), widths[i], i != 0)
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

// CSV renders the table as comma-separated values with a header row.
func CSV(t *stats.Table) (string, error) {
	var sb strings.Builder

	w := csv.NewWriter(&sb)

	if err := w.Write(t.Columns); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}

	line := make([]string, len(t.Columns))

	for _, row := range t.Rows {
		for i, cell := range row {
			line[i] = cell.String()
		}

		if err := w.Write(line); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}

	return sb.String(), nil
}

// Markdown renders the table as a GitHub-style markdown table.
func Markdown(t *stats.Table) string {
	var sb strings.Builder

	sb.Grow(1024)

	sb.WriteString("| ")
	sb.WriteString(strings.Join(t.Columns, " | "))
	sb.WriteString(" |\n|")

	for range t.Columns {
		sb.WriteString("---|")
	}

	sb.WriteByte('\n')

	for _, row := range t.Rows {
		sb.WriteString("| ")

		for i, cell := range row {
			if i > 0 {
				sb.WriteString(" | ")
			}

			sb.WriteString(cell.String())
		}

		sb.WriteString(" |\n")
	}

	return sb.String()
}

// columnWidths returns the display width of each column.
func columnWidths(t *stats.Table) []int {
	widths := make([]int, len(t.Columns))

	for i, col := range t.Columns {
		widths[i] = len(col)
	}

	for _, row := range t.Rows {
		for i, cell := range row {
			if n := len(cell.String()); n > widths[i] {
				widths[i] = n
			}
		}
	}

	return widths
}

// pad writes s padded to width, right-aligned when rightAlign.
func pad(sb *strings.Builder, s string, width int, rightAlign bool) {
	gap := width - len(s)
	if gap < 0 {
		gap = 0
	}

	if rightAlign {
		sb.WriteString(strings.Repeat(" ", gap))
		sb.WriteString(s)

		return
	}

	sb.WriteString(s)
	sb.WriteString(strings.Repeat(" ", gap))
}
