// Command plconvert parses a profit and loss workbook, converts it into
// normalized reporting periods, and writes the results as CSV and JSON
// files under the output directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"dealdesk/internal/config"
	"dealdesk/internal/convert"
	"dealdesk/internal/exporter"
	"dealdesk/internal/infrastructure"
	"dealdesk/internal/statement"
	"dealdesk/internal/workbook"
	"dealdesk/pkg/contracts"
)

func main() {
	inFile := flag.String("in", "", "input .xlsx workbook (required)")
	outDir := flag.String("out", "", "output directory for CSV/JSON files (defaults to configured reports dir)")
	sheetName := flag.String("sheet", "", "sheet to convert (defaults to the widest sheet)")
	rulesFile := flag.String("rules", "", "YAML classification rule set (defaults to the built-in rules)")
	opportunityID := flag.String("opportunity", "", "opportunity identifier stamped on every period (required)")
	flag.Parse()

	if *inFile == "" || *opportunityID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ReportsDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	ctx := context.Background()
	logger.InfoContext(ctx, "starting P&L conversion",
		slog.String("version", contracts.GetVersionString()),
		slog.String("input", *inFile),
		slog.String("output_dir", *outDir),
		slog.String("opportunity", *opportunityID))

	sheets, err := workbook.Load(*inFile)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}

	parser := statement.NewParser(logger, statement.Config{
		HeaderScanRows: cfg.Parser.HeaderScanRows,
		MinSheetRows:   cfg.Parser.MinSheetRows,
	})
	statements, err := parser.ParseWorkbook(ctx, sheets)
	if err != nil {
		logger.ErrorContext(ctx, "failed to parse workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var rules *convert.RuleSet
	if path := rulesPath(*rulesFile, cfg); path != "" {
		rules, err = convert.LoadRuleSet(path)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load rule set", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	converter, err := convert.NewConverter(logger, rules)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build converter", slog.String("error", err.Error()))
		os.Exit(1)
	}
	result, err := converter.Convert(ctx, statements, convert.Options{
		OpportunityID: *opportunityID,
		SheetName:     *sheetName,
	})
	if err != nil {
		logger.ErrorContext(ctx, "conversion failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	exp := exporter.NewExporter(logger)
	outputs := []struct {
		name  string
		write func(path string) error
	}{
		{"summary.csv", func(p string) error { return exp.WriteSummaryCSV(ctx, p, result.Periods) }},
		{"line_items.csv", func(p string) error { return exp.WriteLineItemsCSV(ctx, p, result.Periods) }},
		{"add_backs.csv", func(p string) error { return exp.WriteAddBacksCSV(ctx, p, result.Periods) }},
		{"periods.json", func(p string) error { return exp.WritePeriodsJSON(ctx, p, result.Periods) }},
	}
	for _, out := range outputs {
		if err := out.write(filepath.Join(*outDir, out.name)); err != nil {
			logger.ErrorContext(ctx, "export failed",
				slog.String("file", out.name),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if len(result.Uncategorized) > 0 {
		path := filepath.Join(*outDir, "uncategorized.csv")
		if err := exp.WriteUncategorizedCSV(ctx, path, result.Uncategorized); err != nil {
			logger.ErrorContext(ctx, "export failed",
				slog.String("file", "uncategorized.csv"),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.WarnContext(ctx, "some rows matched no classification rule",
			slog.Int("count", len(result.Uncategorized)),
			slog.String("review_file", path))
	}

	logger.InfoContext(ctx, "conversion complete",
		slog.Int("periods", len(result.Periods)),
		slog.Int("uncategorized", len(result.Uncategorized)),
		slog.String("output_dir", *outDir))
}

// rulesPath resolves the rule set path: the flag wins over the config file
// setting; empty means the built-in default rules.
func rulesPath(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Convert.RulesFile
}
