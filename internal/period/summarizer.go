package period

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"dealdesk/pkg/contracts/domain"
)

// Summarizer computes the cascading summary metrics for one reporting
// period. Summarize is a pure function of its inputs: identical inputs
// always yield identical outputs, which is what makes full recomputation
// after every edit idempotent.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// Summarize computes the full summary cascade. Each step consumes the
// override for its field when present, otherwise the computed value, so a
// single override propagates into every downstream metric. Margins resolve
// to nil when the revenue denominator is zero, never to an arithmetic
// error.
func (s *Summarizer) Summarize(items []domain.LineItem, addBacks []domain.AddBack, overrides *domain.PeriodOverrides) domain.PeriodSummary {
	if overrides == nil {
		overrides = &domain.PeriodOverrides{}
	}

	revenue := pick(overrides.TotalRevenue, sumCategory(items, domain.CategoryRevenue))
	cogs := pick(overrides.TotalCOGS, sumCategory(items, domain.CategoryCOGS))
	grossProfit := pick(overrides.GrossProfit, revenue.Sub(cogs))

	opex := pick(overrides.TotalOpex, sumOpex(items))
	otherIncome := sumCategory(items, domain.CategoryOtherIncome)
	otherExpense := sumCategory(items, domain.CategoryOtherExpense)
	ebitda := pick(overrides.Ebitda, grossProfit.Sub(opex).Add(otherIncome).Sub(otherExpense))

	totalAddBacks := sumAddBacks(addBacks, func(ab domain.AddBack) bool { return ab.IncludeInEbitda })
	adjustedEbitda := pick(overrides.AdjustedEbitda, ebitda.Add(totalAddBacks))

	// Add-backs already counted toward adjusted EBITDA must not be counted
	// again on the way to SDE.
	sdeOnly := sumAddBacks(addBacks, func(ab domain.AddBack) bool { return ab.IncludeInSDE && !ab.IncludeInEbitda })
	sde := pick(overrides.SDE, adjustedEbitda.Add(sdeOnly))

	netIncome := pick(overrides.NetIncome, deriveNetIncome(items, ebitda))

	return domain.PeriodSummary{
		TotalRevenue:         revenue,
		TotalCOGS:            cogs,
		GrossProfit:          grossProfit,
		GrossMargin:          marginOf(grossProfit, revenue),
		TotalOpex:            opex,
		Ebitda:               ebitda,
		EbitdaMargin:         marginOf(ebitda, revenue),
		TotalAddBacks:        totalAddBacks,
		AdjustedEbitda:       adjustedEbitda,
		AdjustedEbitdaMargin: marginOf(adjustedEbitda, revenue),
		SDE:                  sde,
		NetIncome:            netIncome,
	}
}

// deriveNetIncome prefers an explicit net-income line item; with none
// present it falls back to EBITDA, which at this point already reflects the
// non-operating other-income/expense items carried as line items.
func deriveNetIncome(items []domain.LineItem, ebitda decimal.Decimal) decimal.Decimal {
	explicit := decimal.Zero
	found := false
	for _, li := range items {
		if li.Category == domain.CategoryNetIncome {
			explicit = explicit.Add(li.SignedAmount())
			found = true
		}
	}
	if found {
		return explicit
	}
	return ebitda
}

// pick returns the override when set, otherwise the computed value.
func pick(override *decimal.Decimal, computed decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return computed
}

// marginOf returns num/den, or nil when the denominator is zero.
func marginOf(num, den decimal.Decimal) *decimal.Decimal {
	if den.IsZero() {
		return nil
	}
	m := num.Div(den)
	return &m
}

func sumCategory(items []domain.LineItem, cat domain.Category) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		if li.Category == cat {
			total = total.Add(li.SignedAmount())
		}
	}
	return total
}

func sumOpex(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		if li.Category.IsOpex() {
			total = total.Add(li.SignedAmount())
		}
	}
	return total
}

func sumAddBacks(addBacks []domain.AddBack, include func(domain.AddBack) bool) decimal.Decimal {
	total := decimal.Zero
	for _, ab := range addBacks {
		if include(ab) {
			total = total.Add(ab.Amount)
		}
	}
	return total
}
