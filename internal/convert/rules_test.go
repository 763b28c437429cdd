package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/errors"
	"dealdesk/pkg/contracts/domain"
)

func TestDefaultRuleSet_Compiles(t *testing.T) {
	rs := DefaultRuleSet()
	require.NoError(t, rs.Compile())
	assert.NotEmpty(t, rs.Version)
	assert.NotEmpty(t, rs.AddBacks)
	assert.NotEmpty(t, rs.Lines)
}

func TestRuleSet_MatchLine(t *testing.T) {
	rs := DefaultRuleSet()
	require.NoError(t, rs.Compile())

	tests := []struct {
		label        string
		wantCategory domain.Category
	}{
		{"Sales", domain.CategoryRevenue},
		{"Cost of Goods Sold", domain.CategoryCOGS},
		{"Subcontractor Costs", domain.CategoryCOGS},
		{"Payroll Taxes", domain.CategoryOpexPayroll},
		{"Rent Expense", domain.CategoryOpexFacilities},
		{"Advertising", domain.CategoryOpexMarketing},
		{"Interest Income", domain.CategoryOtherIncome},
		{"Income Tax", domain.CategoryOtherExpense},
		{"Net Income", domain.CategoryNetIncome},
		{"Insurance", domain.CategoryOpexGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rule, ok := rs.MatchLine(tt.label)
			require.True(t, ok, "no rule matched %q", tt.label)
			assert.Equal(t, tt.wantCategory, rule.Category)
		})
	}
}

func TestRuleSet_FirstMatchWins(t *testing.T) {
	rs := DefaultRuleSet()
	require.NoError(t, rs.Compile())

	// "Salaries Expense" satisfies both the payroll and the general-expense
	// rules; the earlier, more specific rule must win.
	rule, ok := rs.MatchLine("Salaries Expense")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryOpexPayroll, rule.Category)
}

func TestRuleSet_NetIncomePatternIsAnchored(t *testing.T) {
	rs := DefaultRuleSet()
	require.NoError(t, rs.Compile())

	rule, ok := rs.MatchLine("Net Income")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryNetIncome, rule.Category)

	// A qualified label falls through the anchored pattern and resolves by
	// keyword instead.
	rule, ok = rs.MatchLine("Net Income from Operations")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryRevenue, rule.Category)
}

func TestRuleSet_MatchAddBack(t *testing.T) {
	rs := DefaultRuleSet()
	require.NoError(t, rs.Compile())

	tests := []struct {
		label          string
		wantCategory   domain.AddBackCategory
		wantConfidence float64
	}{
		{"Depreciation Expense", domain.AddBackDepreciation, 0.95},
		{"Officer Compensation", domain.AddBackOwnerCompensation, 0.9},
		{"Owner Health Insurance", domain.AddBackOwnerBenefit, 0.75},
		{"Interest Expense", domain.AddBackInterest, 0.85},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rule, ok := rs.MatchAddBack(tt.label)
			require.True(t, ok, "no add-back rule matched %q", tt.label)
			assert.Equal(t, tt.wantCategory, rule.Category)
			assert.InDelta(t, tt.wantConfidence, rule.Confidence, 0.001)
		})
	}

	_, ok := rs.MatchAddBack("Rent Expense")
	assert.False(t, ok)
}

func TestRuleSet_CompileValidation(t *testing.T) {
	tests := []struct {
		name string
		rs   RuleSet
	}{
		{
			name: "missing version",
			rs: RuleSet{
				Lines: []LineRule{{Name: "r", Category: domain.CategoryRevenue}},
			},
		},
		{
			name: "no line rules",
			rs:   RuleSet{Version: "1"},
		},
		{
			name: "unknown category",
			rs: RuleSet{
				Version: "1",
				Lines:   []LineRule{{Name: "r", Category: "bogus"}},
			},
		},
		{
			name: "bad pattern",
			rs: RuleSet{
				Version: "1",
				Lines:   []LineRule{{Name: "r", Category: domain.CategoryRevenue, Pattern: "("}},
			},
		},
		{
			name: "confidence out of range",
			rs: RuleSet{
				Version:  "1",
				Lines:    []LineRule{{Name: "r", Category: domain.CategoryRevenue, Keywords: []string{"sales"}}},
				AddBacks: []AddBackRule{{Name: "a", Category: domain.AddBackOther, Confidence: 1.5}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rs.Compile()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
		})
	}
}

func TestLoadRuleSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `version: "test.1"
add_backs:
  - name: depreciation
    category: depreciation
    keywords: ["depreciation"]
    confidence: 0.95
    include_in_ebitda: true
    include_in_sde: true
lines:
  - name: revenue
    category: revenue
    keywords: ["sales", "revenue"]
  - name: catering
    category: revenue
    subcategory: Catering
    pattern: '^catering'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, "test.1", rs.Version)

	rule, ok := rs.MatchLine("Catering Income")
	require.True(t, ok)
	assert.Equal(t, "Catering", rule.Subcategory)

	ab, ok := rs.MatchAddBack("Depreciation")
	require.True(t, ok)
	assert.Equal(t, domain.AddBackDepreciation, ab.Category)
}

func TestLoadRuleSet_MissingFile(t *testing.T) {
	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestLoadRuleSet_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [unclosed"), 0o644))

	_, err := LoadRuleSet(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}
