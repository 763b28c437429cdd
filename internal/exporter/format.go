package exporter

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// formatDecimal renders a decimal with exactly 2 decimal places so values
// like 13.4 appear as 13.40 in CSV.
func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatDecimalPtr renders an optional decimal; nil becomes the empty cell.
// Margins use 4 places since they are ratios, not currency.
func formatDecimalPtr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(4)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatConfidence(c *float64) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *c)
}
