package domain

import (
	"github.com/shopspring/decimal"
)

// Column represents one reporting column of a parsed statement, typically a
// fiscal year or period (e.g. "2024" with subheader "Jan - Dec 24").
type Column struct {
	Header    string `json:"header"`
	Subheader string `json:"subheader,omitempty"`
}

// Row is a single extracted statement row. Values is aligned positionally
// with the statement's Columns; a nil value means the source cell was blank
// or unparseable, which is deliberately distinct from zero.
type Row struct {
	Label     string             `json:"label"`
	Values    []*decimal.Decimal `json:"values"`
	Depth     int                `json:"depth"`
	IsTotal   bool               `json:"is_total"`
	IsSummary bool               `json:"is_summary"`
	IsBlank   bool               `json:"is_blank"`
	Notes     string             `json:"notes,omitempty"`
}

// Value returns the row's value for the given column index, or nil when the
// column is out of range or the cell was empty.
func (r Row) Value(col int) *decimal.Decimal {
	if col < 0 || col >= len(r.Values) {
		return nil
	}
	return r.Values[col]
}

// GroupRange marks the rows (Open, Close) as members of one account group:
// Open is the index of the row that opened the group and Close the index of
// its "Total X" row. Ranges are derived once per statement by the hierarchy
// heuristic and never mutated afterwards.
type GroupRange struct {
	Open  int    `json:"open"`
	Close int    `json:"close"`
	Label string `json:"label"`
}

// Contains reports whether row index i is strictly interior to the group.
// The opening and closing rows themselves are boundary members.
func (g GroupRange) Contains(i int) bool {
	return g.Open < i && i < g.Close
}

// ParsedStatement is the result of parsing a single sheet: detected metadata,
// column headers, classified depth-annotated rows, and the group ranges the
// depths were derived from.
type ParsedStatement struct {
	CompanyName string       `json:"company_name,omitempty"`
	Title       string       `json:"title,omitempty"`
	Basis       string       `json:"basis,omitempty"`
	SheetName   string       `json:"sheet_name,omitempty"`
	Columns     []Column     `json:"columns"`
	Rows        []Row        `json:"rows"`
	Groups      []GroupRange `json:"groups,omitempty"`
}

// GroupClosedAt returns the group range whose Total row sits at row index i,
// or nil when i does not close a group.
func (p *ParsedStatement) GroupClosedAt(i int) *GroupRange {
	for idx := range p.Groups {
		if p.Groups[idx].Close == i {
			return &p.Groups[idx]
		}
	}
	return nil
}
