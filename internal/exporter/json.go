package exporter

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dealdesk/internal/errors"
	"dealdesk/pkg/contracts"
	"dealdesk/pkg/contracts/domain"
)

// WritePeriodsJSON writes the periods to a JSON file wrapped in a metadata
// envelope compatible with web interfaces.
func (e *Exporter) WritePeriodsJSON(ctx context.Context, path string, periods []domain.ReportingPeriod) error {
	e.logger.InfoContext(ctx, "writing periods to JSON",
		slog.String("path", path),
		slog.Int("period_count", len(periods)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewStorageError("failed to create directory for JSON output", err)
	}

	jsonData := map[string]interface{}{
		"periods":      periods,
		"count":        len(periods),
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       contracts.DataFormatVersion,
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON file for periods", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(jsonData); err != nil {
		return errors.NewStorageError("failed to encode periods to JSON", err)
	}

	e.logger.InfoContext(ctx, "successfully wrote periods to JSON",
		slog.String("path", path))
	return nil
}
