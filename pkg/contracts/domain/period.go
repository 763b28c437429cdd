package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType identifies the granularity of a reporting period.
type PeriodType string

const (
	PeriodTypeAnnual    PeriodType = "ANNUAL"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
)

// PeriodKey uniquely identifies a reporting period within an opportunity.
// Quarter is zero for annual periods.
type PeriodKey struct {
	OpportunityID string     `json:"opportunity_id"`
	PeriodType    PeriodType `json:"period_type"`
	Year          int        `json:"year"`
	Quarter       int        `json:"quarter,omitempty"`
}

// String renders the key in a stable human-readable form.
func (k PeriodKey) String() string {
	if k.PeriodType == PeriodTypeQuarterly {
		return fmt.Sprintf("%s/%d-Q%d", k.OpportunityID, k.Year, k.Quarter)
	}
	return fmt.Sprintf("%s/%d", k.OpportunityID, k.Year)
}

// PeriodOverrides carries manually supplied values that supersede computed
// summary fields. A non-nil override always wins over the computed value for
// its field, and downstream cascade steps consume the overridden value.
type PeriodOverrides struct {
	TotalRevenue   *decimal.Decimal `json:"total_revenue,omitempty"`
	TotalCOGS      *decimal.Decimal `json:"total_cogs,omitempty"`
	GrossProfit    *decimal.Decimal `json:"gross_profit,omitempty"`
	TotalOpex      *decimal.Decimal `json:"total_opex,omitempty"`
	Ebitda         *decimal.Decimal `json:"ebitda,omitempty"`
	AdjustedEbitda *decimal.Decimal `json:"adjusted_ebitda,omitempty"`
	SDE            *decimal.Decimal `json:"sde,omitempty"`
	NetIncome      *decimal.Decimal `json:"net_income,omitempty"`
}

// IsEmpty reports whether no override field is set.
func (o PeriodOverrides) IsEmpty() bool {
	return o.TotalRevenue == nil && o.TotalCOGS == nil && o.GrossProfit == nil &&
		o.TotalOpex == nil && o.Ebitda == nil && o.AdjustedEbitda == nil &&
		o.SDE == nil && o.NetIncome == nil
}

// PeriodSummary holds the cascading summary metrics for one period. It is
// derived data: recomputed in full whenever a line item, add-back, or
// override changes, never patched field by field. Margin fields are nil when
// the revenue denominator is zero.
type PeriodSummary struct {
	TotalRevenue         decimal.Decimal  `json:"total_revenue"`
	TotalCOGS            decimal.Decimal  `json:"total_cogs"`
	GrossProfit          decimal.Decimal  `json:"gross_profit"`
	GrossMargin          *decimal.Decimal `json:"gross_margin,omitempty"`
	TotalOpex            decimal.Decimal  `json:"total_opex"`
	Ebitda               decimal.Decimal  `json:"ebitda"`
	EbitdaMargin         *decimal.Decimal `json:"ebitda_margin,omitempty"`
	TotalAddBacks        decimal.Decimal  `json:"total_add_backs"`
	AdjustedEbitda       decimal.Decimal  `json:"adjusted_ebitda"`
	AdjustedEbitdaMargin *decimal.Decimal `json:"adjusted_ebitda_margin,omitempty"`
	SDE                  decimal.Decimal  `json:"sde"`
	NetIncome            decimal.Decimal  `json:"net_income"`
}

// ReportingPeriod is one fiscal year or quarter of financial data for an
// acquisition opportunity. The period exclusively owns its line items and
// add-backs. IsLocked periods reject all mutation of line items, add-backs
// and overrides.
type ReportingPeriod struct {
	ID            string          `json:"id"`
	OpportunityID string          `json:"opportunity_id" validate:"required"`
	PeriodType    PeriodType      `json:"period_type" validate:"required,oneof=ANNUAL QUARTERLY"`
	Year          int             `json:"year" validate:"required,min=1900,max=2200"`
	Quarter       int             `json:"quarter,omitempty" validate:"omitempty,min=1,max=4"`
	LineItems     []LineItem      `json:"line_items"`
	AddBacks      []AddBack       `json:"add_backs"`
	Overrides     PeriodOverrides `json:"overrides"`
	Computed      PeriodSummary   `json:"computed"`
	IsLocked      bool            `json:"is_locked"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Key returns the period's uniqueness key.
func (p *ReportingPeriod) Key() PeriodKey {
	return PeriodKey{
		OpportunityID: p.OpportunityID,
		PeriodType:    p.PeriodType,
		Year:          p.Year,
		Quarter:       p.Quarter,
	}
}

// AuditAction describes what a mutation did.
type AuditAction string

const (
	AuditActionCreated AuditAction = "created"
	AuditActionUpdated AuditAction = "updated"
	AuditActionDeleted AuditAction = "deleted"
)

// AuditEntry is the data a caller needs to record a human-readable audit
// trail for a period mutation. The engine emits entries; a collaborator
// persists them.
type AuditEntry struct {
	PeriodKey   PeriodKey       `json:"period_key"`
	Action      AuditAction     `json:"action"`
	Entity      string          `json:"entity"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// Message renders the entry as a single human-readable line.
func (a AuditEntry) Message() string {
	label := a.Description
	if label == "" {
		label = a.Category
	} else if a.Category != "" {
		label = fmt.Sprintf("%s (%s)", a.Description, a.Category)
	}
	return fmt.Sprintf("%s %s %s %s for period %s",
		a.Action, a.Entity, label, a.Amount.StringFixed(2), a.PeriodKey)
}
