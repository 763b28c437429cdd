package domain

import (
	"github.com/shopspring/decimal"
)

// Category classifies a line item within the fixed taxonomy. The taxonomy is
// versioned alongside the classification rule set; code only relies on the
// broad buckets (revenue, COGS, opex, other, net income).
type Category string

const (
	CategoryRevenue        Category = "revenue"
	CategoryCOGS           Category = "cogs"
	CategoryOpexPayroll    Category = "opex_payroll"
	CategoryOpexFacilities Category = "opex_facilities"
	CategoryOpexMarketing  Category = "opex_marketing"
	CategoryOpexGeneral    Category = "opex_general"
	CategoryOtherIncome    Category = "other_income"
	CategoryOtherExpense   Category = "other_expense"
	CategoryNetIncome      Category = "net_income"
	CategoryUncategorized  Category = "uncategorized"
)

// IsOpex reports whether the category is one of the operating-expense
// subtypes.
func (c Category) IsOpex() bool {
	switch c {
	case CategoryOpexPayroll, CategoryOpexFacilities, CategoryOpexMarketing, CategoryOpexGeneral:
		return true
	}
	return false
}

// IsValid reports whether the category belongs to the taxonomy.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRevenue, CategoryCOGS, CategoryOtherIncome, CategoryOtherExpense,
		CategoryNetIncome, CategoryUncategorized:
		return true
	}
	return c.IsOpex()
}

// LineItem is one categorized statement row for a single reporting period.
// Amount is a non-negative magnitude; direction is carried separately in
// IsNegative so aggregation never flips sign through rounding.
type LineItem struct {
	ID           string          `json:"id"`
	Category     Category        `json:"category" validate:"required"`
	Subcategory  string          `json:"subcategory,omitempty"`
	RawLabel     string          `json:"raw_label"`
	DisplayOrder int             `json:"display_order"`
	Amount       decimal.Decimal `json:"amount"`
	IsNegative   bool            `json:"is_negative"`
	Notes        string          `json:"notes,omitempty"`
}

// SignedAmount returns the amount with its direction applied.
func (li LineItem) SignedAmount() decimal.Decimal {
	if li.IsNegative {
		return li.Amount.Neg()
	}
	return li.Amount
}

// AddBackCategory classifies a normalization adjustment.
type AddBackCategory string

const (
	AddBackOwnerCompensation AddBackCategory = "owner_compensation"
	AddBackOwnerBenefit      AddBackCategory = "owner_benefit"
	AddBackPersonalVehicle   AddBackCategory = "personal_vehicle"
	AddBackOneTime           AddBackCategory = "one_time"
	AddBackDepreciation      AddBackCategory = "depreciation"
	AddBackAmortization      AddBackCategory = "amortization"
	AddBackInterest          AddBackCategory = "interest"
	AddBackOther             AddBackCategory = "other"

	// AddBackReconciliation is the sentinel category for the single synthetic
	// entry that forces the itemized add-backs to a caller-supplied total.
	AddBackReconciliation AddBackCategory = "reconciliation"
)

// IsOwnerRelated reports whether the category represents owner compensation
// or benefits, the adjustments that separate SDE from adjusted EBITDA.
func (c AddBackCategory) IsOwnerRelated() bool {
	return c == AddBackOwnerCompensation || c == AddBackOwnerBenefit
}

// AddBack is a normalization adjustment for a single reporting period.
// Unlike LineItem the amount is signed: reversals are negative.
type AddBack struct {
	ID              string          `json:"id"`
	Category        AddBackCategory `json:"category" validate:"required"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Confidence      *float64        `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
	IncludeInEbitda bool            `json:"include_in_ebitda"`
	IncludeInSDE    bool            `json:"include_in_sde"`
	SourceLabel     string          `json:"source_label,omitempty"`
}
