package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols are stripped from the front of numeric cells.
const currencySymbols = "$€£¥ "

// ParseAmount parses a single cell into a decimal amount. It accepts
// thousands separators, a leading currency symbol, and accounting-style
// parenthesized negatives. Blank or unparseable cells return nil rather
// than zero, so missing data stays distinguishable from a true zero.
func ParseAmount(raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || s == "—" {
		return nil
	}

	neg := false
	s = strings.TrimLeft(s, currencySymbols)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	s = strings.TrimLeft(s, currencySymbols)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if neg {
		d = d.Neg()
	}
	return &d
}
