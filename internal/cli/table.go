package cli

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiEscape matches SGR sequences, which take no columns on screen.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Table represents a simple table formatter with dynamic column widths.
// Widths are measured on visible text, so cells may carry colour escapes.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int // Maximum width per column index (0 = no limit)
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers:   headers,
		rows:      make([][]string, 0),
		padding:   2,
		maxWidths: make(map[int]int),
	}
}

// SetColumnMaxWidth sets a maximum width for a specific column.
// Text longer than this will be wrapped to multiple lines.
func (t *Table) SetColumnMaxWidth(colIndex int, maxWidth int) {
	t.maxWidths[colIndex] = maxWidth
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	wrapped := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		wrapped[r] = make([][]string, len(row))
		for c, cell := range row {
			if limit := t.maxWidths[c]; limit > 0 {
				wrapped[r][c] = wrapText(cell, limit)
			} else {
				wrapped[r][c] = []string{cell}
			}
		}
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range wrapped {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], visibleLen(line))
			}
		}
	}

	var b strings.Builder
	gap := strings.Repeat(" ", t.padding)
	writeLine := func(parts []string) {
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteByte('\n')
	}

	parts := make([]string, len(t.headers))
	for i, h := range t.headers {
		parts[i] = padRight(h, widths[i])
	}
	writeLine(parts)
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	writeLine(parts)

	for _, row := range wrapped {
		lines := 1
		for _, cell := range row {
			lines = max(lines, len(cell))
		}
		for l := range lines {
			for c := range t.headers {
				text := ""
				if l < len(row[c]) {
					text = row[c][l]
				}
				parts[c] = padRight(text, widths[c])
			}
			writeLine(parts)
		}
	}
	return b.String()
}

// Write renders the table to w.
func (t *Table) Write(w io.Writer) error {
	_, err := io.WriteString(w, t.Render())
	return err
}

// visibleLen counts the runes of s that occupy a column.
func visibleLen(s string) int {
	return utf8.RuneCountInString(ansiEscape.ReplaceAllString(s, ""))
}

// padRight pads s with spaces to width visible columns.
func padRight(s string, width int) string {
	n := visibleLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// wrapText wraps text to fit within width, breaking at word boundaries.
// Words longer than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 || visibleLen(text) <= width {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range words {
		for len(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
