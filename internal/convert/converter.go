package convert

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "dealdesk/internal/errors"
	"dealdesk/internal/period"
	"dealdesk/pkg/contracts/domain"
)

var yearToken = regexp.MustCompile(`20\d{2}`)

// Options controls a conversion run.
type Options struct {
	// OpportunityID stamps every produced period.
	OpportunityID string
	// SheetName selects a statement explicitly. Empty means the heuristic:
	// the statement with the most data columns is assumed to be the total
	// company view.
	SheetName string
}

// UncategorizedRow records a source row that matched no classification rule.
// Such rows are still carried as uncategorized line items so every source
// row stays accounted for; this list surfaces them for review.
type UncategorizedRow struct {
	SheetName string          `json:"sheet_name,omitempty"`
	Label     string          `json:"label"`
	Year      int             `json:"year"`
	Amount    decimal.Decimal `json:"amount"`
}

// Result is the outcome of converting parsed statements into periods.
type Result struct {
	Periods       []domain.ReportingPeriod `json:"periods"`
	Uncategorized []UncategorizedRow       `json:"uncategorized,omitempty"`
}

// Converter turns ParsedStatements into normalized reporting periods, one
// per detected fiscal year, with categorized line items, extracted
// add-backs, and override hints from source-stated summary rows.
type Converter struct {
	logger     *slog.Logger
	rules      *RuleSet
	summarizer *period.Summarizer
}

// NewConverter creates a converter. A nil rules argument selects the
// built-in default rule set. The rule set is compiled here so conversion
// itself never fails on rule syntax.
func NewConverter(logger *slog.Logger, rules *RuleSet) (*Converter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if err := rules.Compile(); err != nil {
		return nil, err
	}
	return &Converter{
		logger:     logger,
		rules:      rules,
		summarizer: period.NewSummarizer(logger),
	}, nil
}

// Convert produces one reporting period draft per fiscal year detected in
// the selected statement. Every returned period has been run through the
// summarizer, so callers never receive stale summaries.
func (c *Converter) Convert(ctx context.Context, statements []domain.ParsedStatement, opts Options) (*Result, error) {
	if len(statements) == 0 {
		return nil, apperrors.NewValidationError("no statements to convert", nil)
	}

	st := c.selectStatement(ctx, statements, opts.SheetName)

	result := &Result{}
	seenYears := make(map[int]bool)
	for col, column := range st.Columns {
		year, ok := detectYear(column.Header)
		if !ok {
			c.logger.WarnContext(ctx, "skipping column without a fiscal year",
				slog.String("sheet", st.SheetName),
				slog.String("header", column.Header))
			continue
		}
		if seenYears[year] {
			c.logger.WarnContext(ctx, "skipping duplicate fiscal year column",
				slog.String("sheet", st.SheetName),
				slog.Int("year", year))
			continue
		}
		seenYears[year] = true

		p := c.buildPeriod(ctx, st, col, year, opts, result)
		result.Periods = append(result.Periods, p)
	}

	if len(result.Periods) == 0 {
		return nil, apperrors.NewStructuralParseError("no fiscal year columns detected", nil).
			WithContext("sheet", st.SheetName)
	}

	c.logger.InfoContext(ctx, "converted statement to periods",
		slog.String("sheet", st.SheetName),
		slog.Int("periods", len(result.Periods)),
		slog.Int("uncategorized_rows", len(result.Uncategorized)))

	return result, nil
}

// selectStatement picks the statement to convert: an explicit sheet name if
// given, otherwise the sheet with the most data columns, which is assumed to
// be the total-company view.
func (c *Converter) selectStatement(ctx context.Context, statements []domain.ParsedStatement, sheetName string) *domain.ParsedStatement {
	if sheetName != "" {
		for i := range statements {
			if strings.EqualFold(statements[i].SheetName, sheetName) {
				return &statements[i]
			}
		}
		c.logger.WarnContext(ctx, "requested sheet not found, falling back to widest sheet",
			slog.String("sheet", sheetName))
	}
	best := 0
	for i := range statements {
		if len(statements[i].Columns) > len(statements[best].Columns) {
			best = i
		}
	}
	return &statements[best]
}

// buildPeriod maps one year column of the statement into a reporting period
// draft: line items, extracted add-backs and override hints, then a full
// summary pass.
func (c *Converter) buildPeriod(ctx context.Context, st *domain.ParsedStatement, col, year int, opts Options, result *Result) domain.ReportingPeriod {
	now := time.Now().UTC()
	p := domain.ReportingPeriod{
		ID:            uuid.NewString(),
		OpportunityID: opts.OpportunityID,
		PeriodType:    domain.PeriodTypeAnnual,
		Year:          year,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	order := 0
	for i := range st.Rows {
		row := &st.Rows[i]
		if row.IsBlank {
			continue
		}
		val := row.Value(col)

		if row.IsSummary {
			if val != nil {
				c.applyOverride(ctx, &p.Overrides, row.Label, *val)
			}
			continue
		}
		if val == nil {
			continue
		}
		if row.IsTotal && c.totalIsRedundant(st, i, col) {
			// The group's interior rows already carry the detail; keeping
			// the subtotal would double count it.
			continue
		}

		if abRule, ok := c.rules.MatchAddBack(row.Label); ok {
			confidence := abRule.Confidence
			p.AddBacks = append(p.AddBacks, domain.AddBack{
				ID:              uuid.NewString(),
				Category:        abRule.Category,
				Description:     row.Label,
				Amount:          *val,
				Confidence:      &confidence,
				IncludeInEbitda: abRule.IncludeInEbitda,
				IncludeInSDE:    abRule.IncludeInSDE,
				SourceLabel:     row.Label,
			})
			continue
		}

		item := domain.LineItem{
			ID:           uuid.NewString(),
			RawLabel:     row.Label,
			DisplayOrder: order,
			Amount:       val.Abs(),
			IsNegative:   val.Sign() < 0,
			Notes:        row.Notes,
		}
		if rule, ok := c.rules.MatchLine(row.Label); ok {
			item.Category = rule.Category
			item.Subcategory = rule.Subcategory
		} else {
			// Never drop a source row: route it to the uncategorized
			// bucket and surface it for review.
			item.Category = domain.CategoryUncategorized
			result.Uncategorized = append(result.Uncategorized, UncategorizedRow{
				SheetName: st.SheetName,
				Label:     row.Label,
				Year:      year,
				Amount:    *val,
			})
			c.logger.WarnContext(ctx, "row matched no category rule",
				slog.String("sheet", st.SheetName),
				slog.String("label", row.Label),
				slog.Int("year", year))
		}
		p.LineItems = append(p.LineItems, item)
		order++
	}

	p.Computed = c.summarizer.Summarize(p.LineItems, p.AddBacks, &p.Overrides)
	return p
}

// totalIsRedundant reports whether the Total row at index i closes a group
// whose interior rows already contributed values for this column. A Total
// row with no matching group, or with an empty group, is the only carrier of
// its number and stays a data row.
func (c *Converter) totalIsRedundant(st *domain.ParsedStatement, i, col int) bool {
	g := st.GroupClosedAt(i)
	if g == nil {
		return false
	}
	for j := g.Open + 1; j < g.Close; j++ {
		row := st.Rows[j]
		if row.IsBlank || row.IsSummary {
			continue
		}
		if row.Value(col) != nil {
			return true
		}
	}
	return false
}

// applyOverride maps a source-stated summary row onto its override field.
// Source-stated totals are authoritative human-entered values; they are
// never silently recomputed past.
func (c *Converter) applyOverride(ctx context.Context, ov *domain.PeriodOverrides, label string, val decimal.Decimal) {
	v := val
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "gross profit":
		ov.GrossProfit = &v
	case "net operating income", "net ordinary income":
		ov.Ebitda = &v
	case "net income":
		ov.NetIncome = &v
	default:
		// "net other income" has no summary field of its own.
		c.logger.DebugContext(ctx, "summary row has no override field",
			slog.String("label", label))
	}
}

// detectYear extracts a fiscal year from a column header.
func detectYear(header string) (int, bool) {
	m := yearToken.FindString(header)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}
