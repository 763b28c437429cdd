package statement

import "strings"

// Grid is a rectangular block of resolved cell values. Rows may be ragged;
// missing trailing cells are treated as empty. Numeric cells arrive as their
// string rendering (the decoder resolves formulas and formatting first).
type Grid [][]string

// Sheet pairs a grid with the workbook tab it came from.
type Sheet struct {
	Name string
	Grid Grid
}

// cell returns the trimmed value at (row, col), or "" when out of range.
func (g Grid) cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// rowWidth returns the number of cells in the given row.
func (g Grid) rowWidth(row int) int {
	if row < 0 || row >= len(g) {
		return 0
	}
	return len(g[row])
}
