package exporter

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"dealdesk/internal/convert"
	"dealdesk/internal/errors"
	"dealdesk/pkg/contracts/domain"
)

// Exporter writes reporting periods to files.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// WriteSummaryCSV writes one row per period with the full summary cascade.
func (e *Exporter) WriteSummaryCSV(ctx context.Context, path string, periods []domain.ReportingPeriod) error {
	headers := []string{
		"OpportunityID", "Period", "Year", "Quarter",
		"TotalRevenue", "TotalCOGS", "GrossProfit", "GrossMargin",
		"TotalOpex", "EBITDA", "EBITDAMargin",
		"TotalAddBacks", "AdjustedEBITDA", "AdjustedEBITDAMargin",
		"SDE", "NetIncome", "Locked",
	}
	records := make([][]string, 0, len(periods))
	for _, p := range periods {
		s := p.Computed
		records = append(records, []string{
			p.OpportunityID,
			string(p.PeriodType),
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Quarter),
			formatDecimal(s.TotalRevenue),
			formatDecimal(s.TotalCOGS),
			formatDecimal(s.GrossProfit),
			formatDecimalPtr(s.GrossMargin),
			formatDecimal(s.TotalOpex),
			formatDecimal(s.Ebitda),
			formatDecimalPtr(s.EbitdaMargin),
			formatDecimal(s.TotalAddBacks),
			formatDecimal(s.AdjustedEbitda),
			formatDecimalPtr(s.AdjustedEbitdaMargin),
			formatDecimal(s.SDE),
			formatDecimal(s.NetIncome),
			formatBool(p.IsLocked),
		})
	}
	return e.writeCSV(ctx, path, headers, records)
}

// WriteLineItemsCSV writes one row per categorized line item across all
// periods, in display order.
func (e *Exporter) WriteLineItemsCSV(ctx context.Context, path string, periods []domain.ReportingPeriod) error {
	headers := []string{"Period", "Category", "Subcategory", "Label", "Amount", "Negative", "Notes"}
	var records [][]string
	for _, p := range periods {
		key := p.Key().String()
		for _, li := range p.LineItems {
			records = append(records, []string{
				key,
				string(li.Category),
				li.Subcategory,
				li.RawLabel,
				formatDecimal(li.Amount),
				formatBool(li.IsNegative),
				li.Notes,
			})
		}
	}
	return e.writeCSV(ctx, path, headers, records)
}

// WriteAddBacksCSV writes one row per add-back across all periods.
func (e *Exporter) WriteAddBacksCSV(ctx context.Context, path string, periods []domain.ReportingPeriod) error {
	headers := []string{"Period", "Category", "Description", "Amount", "Confidence", "InEBITDA", "InSDE", "SourceLabel"}
	var records [][]string
	for _, p := range periods {
		key := p.Key().String()
		for _, ab := range p.AddBacks {
			records = append(records, []string{
				key,
				string(ab.Category),
				ab.Description,
				formatDecimal(ab.Amount),
				formatConfidence(ab.Confidence),
				formatBool(ab.IncludeInEbitda),
				formatBool(ab.IncludeInSDE),
				ab.SourceLabel,
			})
		}
	}
	return e.writeCSV(ctx, path, headers, records)
}

// WriteUncategorizedCSV writes the rows that matched no classification rule
// so they can be reviewed and fed back into the rule set.
func (e *Exporter) WriteUncategorizedCSV(ctx context.Context, path string, rows []convert.UncategorizedRow) error {
	headers := []string{"Sheet", "Label", "Year", "Amount"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.SheetName,
			r.Label,
			strconv.Itoa(r.Year),
			formatDecimal(r.Amount),
		})
	}
	return e.writeCSV(ctx, path, headers, records)
}

func (e *Exporter) writeCSV(ctx context.Context, path string, headers []string, records [][]string) error {
	e.logger.InfoContext(ctx, "writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewStorageError("failed to create directory for CSV output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV file", err)
	}
	defer file.Close()

	// UTF-8 BOM so Excel recognizes the encoding.
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return errors.NewStorageError("failed to write BOM", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return errors.NewStorageError("failed to write CSV headers", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError("failed to write CSV record", err)
		}
	}
	return writer.Error()
}
