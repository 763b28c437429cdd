package statement

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"dealdesk/internal/errors"
	"dealdesk/pkg/contracts/domain"
)

var (
	yearPattern  = regexp.MustCompile(`20\d{2}`)
	fyPattern    = regexp.MustCompile(`(?i)\bfy`)
	basisPattern = regexp.MustCompile(`(?i)^(cash|accrual)\s+basis$`)
	totalPattern = regexp.MustCompile(`(?i)^total\s+`)
)

// summaryLabels is the closed set of document-level summary headlines.
// Summary rows are authoritative human-entered subtotals, not accounts.
var summaryLabels = map[string]bool{
	"gross profit":         true,
	"net operating income": true,
	"net income":           true,
	"net other income":     true,
	"net ordinary income":  true,
}

var monthTokens = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// Config holds grid-parser tuning options.
type Config struct {
	// HeaderScanRows bounds how deep into the grid the column header row is
	// searched for.
	HeaderScanRows int
	// MinSheetRows is the minimum row count for a workbook tab to be parsed.
	MinSheetRows int
}

// DefaultConfig returns the parser defaults for typical P&L exports.
func DefaultConfig() Config {
	return Config{HeaderScanRows: 15, MinSheetRows: 3}
}

// Parser converts raw cell grids into ParsedStatements.
type Parser struct {
	logger *slog.Logger
	cfg    Config
}

// NewParser creates a grid parser with the given configuration.
func NewParser(logger *slog.Logger, cfg Config) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HeaderScanRows <= 0 {
		cfg.HeaderScanRows = 15
	}
	if cfg.MinSheetRows <= 0 {
		cfg.MinSheetRows = 3
	}
	return &Parser{logger: logger, cfg: cfg}
}

// Parse converts a single sheet's grid into a ParsedStatement. It is a pure
// function of the grid; sheetName is only carried through as a tag.
func (p *Parser) Parse(ctx context.Context, sheetName string, grid Grid) (*domain.ParsedStatement, error) {
	if len(grid) == 0 {
		return nil, errors.NewStructuralParseError("empty grid", nil).WithContext("sheet", sheetName)
	}

	headerIdx, synthetic := p.findHeaderRow(grid)
	if headerIdx < 0 {
		return nil, errors.NewStructuralParseError("no usable header row", nil).WithContext("sheet", sheetName)
	}

	st := &domain.ParsedStatement{SheetName: sheetName}
	p.readPreamble(grid, headerIdx, st)

	columns, colIdx := buildColumns(grid, headerIdx, synthetic)
	if len(columns) == 0 {
		return nil, errors.NewStructuralParseError("header row has no data columns", nil).WithContext("sheet", sheetName)
	}

	dataStart := headerIdx
	if !synthetic {
		dataStart = headerIdx + 1
		if subs, ok := detectSubheaders(grid, headerIdx+1, colIdx); ok {
			for i := range columns {
				columns[i].Subheader = subs[i]
			}
			dataStart = headerIdx + 2
		}
	}
	st.Columns = columns

	lastCol := colIdx[len(colIdx)-1]
	for i := dataStart; i < len(grid); i++ {
		st.Rows = append(st.Rows, extractRow(grid, i, colIdx, lastCol))
	}

	st.Groups = buildGroups(st.Rows)
	assignDepths(st.Rows, st.Groups)

	p.logger.DebugContext(ctx, "parsed statement",
		slog.String("sheet", sheetName),
		slog.Int("columns", len(st.Columns)),
		slog.Int("rows", len(st.Rows)),
		slog.Int("groups", len(st.Groups)),
		slog.Bool("synthetic_header", synthetic))

	return st, nil
}

// ParseWorkbook applies the single-sheet parser independently to every tab.
// Tabs with fewer than MinSheetRows rows are skipped, and a tab that fails
// to parse is skipped with a warning rather than aborting the workbook.
func (p *Parser) ParseWorkbook(ctx context.Context, sheets []Sheet) ([]domain.ParsedStatement, error) {
	var out []domain.ParsedStatement
	for _, sh := range sheets {
		if len(sh.Grid) < p.cfg.MinSheetRows {
			p.logger.DebugContext(ctx, "skipping short sheet",
				slog.String("sheet", sh.Name),
				slog.Int("rows", len(sh.Grid)))
			continue
		}
		st, err := p.Parse(ctx, sh.Name, sh.Grid)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping unparseable sheet",
				slog.String("sheet", sh.Name),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, *st)
	}
	if len(out) == 0 {
		return nil, errors.NewStructuralParseError("no parseable sheets in workbook", nil).
			WithContext("sheet_count", len(sheets))
	}
	return out, nil
}

// findHeaderRow locates the column header row: the first row within the scan
// window whose non-first cells contain a year, "YTD" or "FY" marker. When no
// such row exists it falls back to the first row carrying any numeric cell
// beyond column 0; the second return value reports that fallback, which
// makes the caller synthesize generic column names.
func (p *Parser) findHeaderRow(grid Grid) (int, bool) {
	limit := len(grid)
	if limit > p.cfg.HeaderScanRows {
		limit = p.cfg.HeaderScanRows
	}
	for i := 0; i < limit; i++ {
		for j := 1; j < grid.rowWidth(i); j++ {
			cell := grid.cell(i, j)
			if cell == "" {
				continue
			}
			if yearPattern.MatchString(cell) || strings.Contains(strings.ToLower(cell), "ytd") || fyPattern.MatchString(cell) {
				return i, false
			}
		}
	}
	for i := 0; i < len(grid); i++ {
		for j := 1; j < grid.rowWidth(i); j++ {
			if ParseAmount(grid.cell(i, j)) != nil {
				return i, true
			}
		}
	}
	return -1, false
}

// readPreamble assigns companyName, title and basis from the rows above the
// header row. The first two non-empty first-cell values become companyName
// and title in order; a cell matching the basis pattern is captured as the
// accounting basis regardless of position.
func (p *Parser) readPreamble(grid Grid, headerIdx int, st *domain.ParsedStatement) {
	for i := 0; i < headerIdx; i++ {
		for j := 0; j < grid.rowWidth(i); j++ {
			if cell := grid.cell(i, j); basisPattern.MatchString(cell) {
				st.Basis = cell
			}
		}
		first := grid.cell(i, 0)
		if first == "" || basisPattern.MatchString(first) {
			continue
		}
		switch {
		case st.CompanyName == "":
			st.CompanyName = first
		case st.Title == "":
			st.Title = first
		}
	}
}

// buildColumns derives the statement columns and their grid column indices.
func buildColumns(grid Grid, headerIdx int, synthetic bool) ([]domain.Column, []int) {
	var columns []domain.Column
	var colIdx []int
	if synthetic {
		for j := 1; j < grid.rowWidth(headerIdx); j++ {
			columns = append(columns, domain.Column{Header: fmt.Sprintf("Column %d", j)})
			colIdx = append(colIdx, j)
		}
		return columns, colIdx
	}
	for j := 1; j < grid.rowWidth(headerIdx); j++ {
		if header := grid.cell(headerIdx, j); header != "" {
			columns = append(columns, domain.Column{Header: header})
			colIdx = append(colIdx, j)
		}
	}
	return columns, colIdx
}

// detectSubheaders checks whether the row below the header carries month
// tokens in the data columns; those values become column subheaders
// (sub-period date ranges).
func detectSubheaders(grid Grid, row int, colIdx []int) ([]string, bool) {
	if row >= len(grid) {
		return nil, false
	}
	subs := make([]string, len(colIdx))
	found := false
	for i, j := range colIdx {
		cell := grid.cell(row, j)
		if cell == "" {
			continue
		}
		if containsMonthToken(cell) {
			found = true
		}
		subs[i] = cell
	}
	if !found {
		return nil, false
	}
	return subs, true
}

func containsMonthToken(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range monthTokens {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// extractRow builds one Row from a grid row: label from the first cell,
// parsed values from the data columns, and everything beyond the data
// columns concatenated into notes.
func extractRow(grid Grid, i int, colIdx []int, lastCol int) domain.Row {
	r := domain.Row{Label: grid.cell(i, 0)}
	for _, j := range colIdx {
		r.Values = append(r.Values, ParseAmount(grid.cell(i, j)))
	}

	var notes []string
	for j := lastCol + 1; j < grid.rowWidth(i); j++ {
		if cell := grid.cell(i, j); cell != "" {
			notes = append(notes, cell)
		}
	}
	r.Notes = strings.Join(notes, " — ")

	allNil := true
	for _, v := range r.Values {
		if v != nil {
			allNil = false
			break
		}
	}
	r.IsBlank = r.Label == "" && allNil
	r.IsTotal = totalPattern.MatchString(r.Label)
	r.IsSummary = summaryLabels[strings.ToLower(strings.TrimSpace(r.Label))]
	return r
}
