package period

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/pkg/contracts/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fixtureLineItems() []domain.LineItem {
	return []domain.LineItem{
		{ID: "li-1", Category: domain.CategoryRevenue, RawLabel: "Sales", Amount: dec("100000")},
		{ID: "li-2", Category: domain.CategoryCOGS, RawLabel: "Cost of Goods Sold", Amount: dec("40000")},
		{ID: "li-3", Category: domain.CategoryOpexPayroll, RawLabel: "Payroll", Amount: dec("20000")},
		{ID: "li-4", Category: domain.CategoryOpexFacilities, RawLabel: "Rent", Amount: dec("10000")},
		{ID: "li-5", Category: domain.CategoryOtherIncome, RawLabel: "Interest Income", Amount: dec("500")},
		{ID: "li-6", Category: domain.CategoryOtherExpense, RawLabel: "Income Tax", Amount: dec("200")},
	}
}

func fixtureAddBacks() []domain.AddBack {
	return []domain.AddBack{
		{ID: "ab-1", Category: domain.AddBackDepreciation, Description: "Depreciation", Amount: dec("5000"), IncludeInEbitda: true, IncludeInSDE: true},
		{ID: "ab-2", Category: domain.AddBackOwnerCompensation, Description: "Owner salary", Amount: dec("30000"), IncludeInEbitda: true, IncludeInSDE: true},
		{ID: "ab-3", Category: domain.AddBackOneTime, Description: "Lawsuit settlement", Amount: dec("1000"), IncludeInEbitda: false, IncludeInSDE: false},
		{ID: "ab-4", Category: domain.AddBackOwnerBenefit, Description: "Owner health insurance", Amount: dec("2000"), IncludeInEbitda: false, IncludeInSDE: true},
	}
}

func TestSummarize_Cascade(t *testing.T) {
	s := NewSummarizer(nil)

	got := s.Summarize(fixtureLineItems(), fixtureAddBacks(), nil)

	assert.True(t, got.TotalRevenue.Equal(dec("100000")), "revenue: %s", got.TotalRevenue)
	assert.True(t, got.TotalCOGS.Equal(dec("40000")), "cogs: %s", got.TotalCOGS)
	assert.True(t, got.GrossProfit.Equal(dec("60000")), "gross profit: %s", got.GrossProfit)
	assert.True(t, got.TotalOpex.Equal(dec("30000")), "opex: %s", got.TotalOpex)
	// 60000 - 30000 + 500 - 200
	assert.True(t, got.Ebitda.Equal(dec("30300")), "ebitda: %s", got.Ebitda)
	// Only the two entries flagged for EBITDA count here.
	assert.True(t, got.TotalAddBacks.Equal(dec("35000")), "add-backs: %s", got.TotalAddBacks)
	assert.True(t, got.AdjustedEbitda.Equal(dec("65300")), "adjusted ebitda: %s", got.AdjustedEbitda)
	// SDE picks up the SDE-only owner benefit without double counting ab-1/ab-2.
	assert.True(t, got.SDE.Equal(dec("67300")), "sde: %s", got.SDE)
	// No explicit net income line item, so EBITDA carries through.
	assert.True(t, got.NetIncome.Equal(dec("30300")), "net income: %s", got.NetIncome)

	require.NotNil(t, got.GrossMargin)
	assert.True(t, got.GrossMargin.Equal(dec("0.6")), "gross margin: %s", got.GrossMargin)
	require.NotNil(t, got.EbitdaMargin)
	assert.True(t, got.EbitdaMargin.Equal(dec("0.303")), "ebitda margin: %s", got.EbitdaMargin)
	require.NotNil(t, got.AdjustedEbitdaMargin)
	assert.True(t, got.AdjustedEbitdaMargin.Equal(dec("0.653")), "adjusted ebitda margin: %s", got.AdjustedEbitdaMargin)
}

func TestSummarize_Idempotent(t *testing.T) {
	s := NewSummarizer(nil)
	items := fixtureLineItems()
	addBacks := fixtureAddBacks()
	overrides := &domain.PeriodOverrides{GrossProfit: decPtr("61000")}

	first := s.Summarize(items, addBacks, overrides)
	second := s.Summarize(items, addBacks, overrides)

	assert.Equal(t, first, second)
}

func TestSummarize_OverridesCascade(t *testing.T) {
	tests := []struct {
		name      string
		overrides domain.PeriodOverrides
		check     func(t *testing.T, got domain.PeriodSummary)
	}{
		{
			name:      "revenue override reshapes gross profit and margins",
			overrides: domain.PeriodOverrides{TotalRevenue: decPtr("120000")},
			check: func(t *testing.T, got domain.PeriodSummary) {
				assert.True(t, got.TotalRevenue.Equal(dec("120000")))
				assert.True(t, got.GrossProfit.Equal(dec("80000")))
				require.NotNil(t, got.GrossMargin)
				assert.True(t, got.GrossMargin.Equal(dec("0.6666666666666667")), "gross margin: %s", got.GrossMargin)
			},
		},
		{
			name:      "cogs override flows into gross profit",
			overrides: domain.PeriodOverrides{TotalCOGS: decPtr("50000")},
			check: func(t *testing.T, got domain.PeriodSummary) {
				assert.True(t, got.GrossProfit.Equal(dec("50000")))
				assert.True(t, got.Ebitda.Equal(dec("20300")))
			},
		},
		{
			name:      "gross profit override supersedes revenue minus cogs",
			overrides: domain.PeriodOverrides{GrossProfit: decPtr("55000")},
			check: func(t *testing.T, got domain.PeriodSummary) {
				assert.True(t, got.GrossProfit.Equal(dec("55000")))
				assert.True(t, got.Ebitda.Equal(dec("25300")))
			},
		},
		{
			name:      "opex override flows into ebitda",
			overrides: domain.PeriodOverrides{TotalOpex: decPtr("25000")},
			check: func(t *testing.T, got domain.PeriodSummary) {
				assert.True(t, got.TotalOpex.Equal(dec("25000")))
				assert.True(t, got.Ebitda.Equal(dec("35300")))
			},
		},
		{
			name:      "ebitda override flows into adjusted ebitda and sde",
			overrides: domain.PeriodOverrides{Ebitda: decPtr("40000")},
			check: func(t *testing.T, got domain.PeriodSummary) {
				assert.True(t, got.Ebitda.Equal(dec("40000")))
				assert.True(t, got.AdjustedEbitda.Equal(dec("75000")))
				assert.True(t, got.SDE.Equal(dec("77000")))
			},
		},
		{
			name:      "adjusted ebitda override flows into sde",
			overrides: domain.PeriodOverrides{AdjustedEbitda: decPtr("70000")},
			check: func(t *testing.T, got domain.PeriodSummary) {
				assert.True(t, got.AdjustedEbitda.Equal(dec("70000")))
				assert.True(t, got.SDE.Equal(dec("72000")))
			},
		},
		{
			name:      "sde override is terminal",
			overrides: domain.PeriodOverrides{SDE: decPtr("99999")},
			check: func(t *testing.T, got domain.PeriodSummary) {
				assert.True(t, got.SDE.Equal(dec("99999")))
				assert.True(t, got.AdjustedEbitda.Equal(dec("65300")))
			},
		},
		{
			name:      "net income override wins",
			overrides: domain.PeriodOverrides{NetIncome: decPtr("12345")},
			check: func(t *testing.T, got domain.PeriodSummary) {
				assert.True(t, got.NetIncome.Equal(dec("12345")))
			},
		},
	}

	s := NewSummarizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Summarize(fixtureLineItems(), fixtureAddBacks(), &tt.overrides)
			tt.check(t, got)
		})
	}
}

func TestSummarize_ZeroRevenueMargins(t *testing.T) {
	s := NewSummarizer(nil)

	items := []domain.LineItem{
		{ID: "li-1", Category: domain.CategoryOpexGeneral, RawLabel: "Insurance", Amount: dec("500")},
	}
	got := s.Summarize(items, nil, nil)

	assert.Nil(t, got.GrossMargin)
	assert.Nil(t, got.EbitdaMargin)
	assert.Nil(t, got.AdjustedEbitdaMargin)
	assert.True(t, got.Ebitda.Equal(dec("-500")))
}

func TestSummarize_ExplicitNetIncome(t *testing.T) {
	s := NewSummarizer(nil)

	items := append(fixtureLineItems(), domain.LineItem{
		ID:       "li-7",
		Category: domain.CategoryNetIncome,
		RawLabel: "Net Income",
		Amount:   dec("28000"),
	})
	got := s.Summarize(items, nil, nil)

	assert.True(t, got.NetIncome.Equal(dec("28000")), "net income: %s", got.NetIncome)
}

func TestSummarize_NegativeLineItems(t *testing.T) {
	s := NewSummarizer(nil)

	items := []domain.LineItem{
		{ID: "li-1", Category: domain.CategoryRevenue, RawLabel: "Sales", Amount: dec("1000")},
		{ID: "li-2", Category: domain.CategoryRevenue, RawLabel: "Sales Returns", Amount: dec("100"), IsNegative: true},
	}
	got := s.Summarize(items, nil, nil)

	assert.True(t, got.TotalRevenue.Equal(dec("900")), "revenue: %s", got.TotalRevenue)
}
