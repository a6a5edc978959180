package cli

import (
	"io"
	"strings"
)

const columnGap = "  "

// table prints aligned columns for listing commands. Cells in a column with
// a width limit are word-wrapped onto continuation lines.
type table struct {
	headers []string
	rows    [][]string
	limits  map[int]int
}

func newTable(headers ...string) *table {
	return &table{headers: headers, limits: make(map[int]int)}
}

// limit wraps column col at width characters.
func (t *table) limit(col, width int) *table {
	t.limits[col] = width
	return t
}

// add appends a row, padding or truncating it to the header count.
func (t *table) add(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *table) render(w io.Writer) error {
	// lines[r][c] holds the wrapped lines of a cell; row 0 is the header.
	lines := make([][][]string, 0, len(t.rows)+1)
	lines = append(lines, splitRow(t.headers, nil))
	for _, row := range t.rows {
		lines = append(lines, splitRow(row, t.limits))
	}

	widths := make([]int, len(t.headers))
	for _, row := range lines {
		for c, cell := range row {
			for _, l := range cell {
				widths[c] = max(widths[c], len(l))
			}
		}
	}

	var b strings.Builder
	for r, row := range lines {
		height := 1
		for _, cell := range row {
			height = max(height, len(cell))
		}
		for i := range height {
			parts := make([]string, len(row))
			for c, cell := range row {
				if i < len(cell) {
					parts[c] = cell[i]
				}
				if c < len(row)-1 {
					parts[c] += strings.Repeat(" ", widths[c]-len(parts[c]))
				}
			}
			b.WriteString(strings.TrimRight(strings.Join(parts, columnGap), " "))
			b.WriteByte('\n')
		}
		if r == 0 {
			seps := make([]string, len(widths))
			for c, width := range widths {
				seps[c] = strings.Repeat("-", width)
			}
			b.WriteString(strings.Join(seps, columnGap))
			b.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func splitRow(row []string, limits map[int]int) [][]string {
	out := make([][]string, len(row))
	for c, cell := range row {
		out[c] = wrap(cell, limits[c])
	}
	return out
}

// wrap breaks text at spaces so no line exceeds width. Words longer than
// width are split. A width of zero disables wrapping.
func wrap(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}

	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
