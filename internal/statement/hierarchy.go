package statement

import (
	"regexp"
	"strings"

	"dealdesk/pkg/contracts/domain"
)

// accountCodePattern matches a leading numeric account code such as
// "4000 Income" or "6100.1 Payroll".
var accountCodePattern = regexp.MustCompile(`^\d{4}(\.\d+)?\s`)

// buildGroups reconstructs account groups from "Total X" rows. A Total row
// implicitly closes the group opened at the nearest preceding non-blank row
// whose label matches the stripped base name. Nearest backward match wins;
// overlapping or repeated section names are not disambiguated further, which
// is an accepted limitation of the heuristic.
func buildGroups(rows []domain.Row) []domain.GroupRange {
	var groups []domain.GroupRange
	for i := range rows {
		if !rows[i].IsTotal {
			continue
		}
		base := strings.TrimSpace(totalPattern.ReplaceAllString(rows[i].Label, ""))
		if base == "" {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if rows[j].IsBlank {
				continue
			}
			if labelMatchesBase(rows[j].Label, base) {
				groups = append(groups, domain.GroupRange{Open: j, Close: i, Label: base})
				break
			}
		}
	}
	return groups
}

// labelMatchesBase reports whether a candidate opening-row label corresponds
// to the base name stripped from a Total row: exact match, prefix/suffix
// containment in either direction, or a shared leading account-code token.
func labelMatchesBase(label, base string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	b := strings.ToLower(strings.TrimSpace(base))
	if l == "" || b == "" {
		return false
	}
	if l == b {
		return true
	}
	if strings.HasPrefix(l, b) || strings.HasSuffix(l, b) {
		return true
	}
	if strings.HasPrefix(b, l) || strings.HasSuffix(b, l) {
		return true
	}
	lc := strings.TrimSpace(accountCodePattern.FindString(l))
	bc := strings.TrimSpace(accountCodePattern.FindString(b))
	return lc != "" && lc == bc
}

// assignDepths computes the depth of every row from the group ranges: the
// count of ranges strictly containing the row. Opening and Total rows are
// boundary members of their own range, so the same count naturally gives
// them the depth of their enclosing ranges. Blank and summary rows are
// document-level separators and headlines, forced to depth 0.
func assignDepths(rows []domain.Row, groups []domain.GroupRange) {
	for i := range rows {
		if rows[i].IsBlank || rows[i].IsSummary {
			rows[i].Depth = 0
			continue
		}
		depth := 0
		for _, g := range groups {
			if g.Contains(i) {
				depth++
			}
		}
		rows[i].Depth = depth
	}
}
