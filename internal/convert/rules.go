package convert

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	apperrors "dealdesk/internal/errors"
	"dealdesk/pkg/contracts/domain"
)

// LineRule maps statement labels to a line-item category. A rule matches
// when the lower-cased label contains any keyword, or when the optional
// regular expression matches.
type LineRule struct {
	Name        string          `yaml:"name" validate:"required"`
	Category    domain.Category `yaml:"category" validate:"required"`
	Subcategory string          `yaml:"subcategory,omitempty"`
	Keywords    []string        `yaml:"keywords,omitempty"`
	Pattern     string          `yaml:"pattern,omitempty"`

	compiled *regexp.Regexp
}

// AddBackRule recognizes labels that represent normalization adjustments
// rather than operating line items. Confidence reflects pattern-match
// strength and is stamped on every extracted add-back.
type AddBackRule struct {
	Name            string                 `yaml:"name" validate:"required"`
	Category        domain.AddBackCategory `yaml:"category" validate:"required"`
	Keywords        []string               `yaml:"keywords,omitempty"`
	Pattern         string                 `yaml:"pattern,omitempty"`
	Confidence      float64                `yaml:"confidence" validate:"min=0,max=1"`
	IncludeInEbitda bool                   `yaml:"include_in_ebitda"`
	IncludeInSDE    bool                   `yaml:"include_in_sde"`

	compiled *regexp.Regexp
}

// RuleSet is the declarative classification table handed to the Converter.
// Rules are ordered: the first match wins, and add-back rules are consulted
// before line rules. The taxonomy is data, not code, so trade-specific
// vocabularies can be added without touching the algorithm.
type RuleSet struct {
	Version  string        `yaml:"version" validate:"required"`
	AddBacks []AddBackRule `yaml:"add_backs" validate:"dive"`
	Lines    []LineRule    `yaml:"lines" validate:"required,min=1,dive"`
}

// Compile validates the rule set and compiles its regular expressions.
// Must be called before matching; NewConverter does this for callers.
func (rs *RuleSet) Compile() error {
	if err := validator.New().Struct(rs); err != nil {
		return apperrors.NewValidationError("invalid rule set", err)
	}
	for i := range rs.Lines {
		r := &rs.Lines[i]
		if !r.Category.IsValid() {
			return apperrors.NewValidationError(fmt.Sprintf("rule %s: unknown category %q", r.Name, r.Category), nil)
		}
		if r.Pattern != "" {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return apperrors.NewValidationError(fmt.Sprintf("rule %s: bad pattern", r.Name), err)
			}
			r.compiled = re
		}
	}
	for i := range rs.AddBacks {
		r := &rs.AddBacks[i]
		if r.Pattern != "" {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return apperrors.NewValidationError(fmt.Sprintf("add-back rule %s: bad pattern", r.Name), err)
			}
			r.compiled = re
		}
	}
	return nil
}

// MatchLine returns the first line rule matching the label.
func (rs *RuleSet) MatchLine(label string) (*LineRule, bool) {
	lower := strings.ToLower(label)
	for i := range rs.Lines {
		if rs.Lines[i].matches(lower) {
			return &rs.Lines[i], true
		}
	}
	return nil, false
}

// MatchAddBack returns the first add-back rule matching the label.
func (rs *RuleSet) MatchAddBack(label string) (*AddBackRule, bool) {
	lower := strings.ToLower(label)
	for i := range rs.AddBacks {
		if matchesLabel(lower, rs.AddBacks[i].Keywords, rs.AddBacks[i].compiled) {
			return &rs.AddBacks[i], true
		}
	}
	return nil, false
}

func (r *LineRule) matches(lowerLabel string) bool {
	return matchesLabel(lowerLabel, r.Keywords, r.compiled)
}

func matchesLabel(lowerLabel string, keywords []string, re *regexp.Regexp) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerLabel, strings.ToLower(kw)) {
			return true
		}
	}
	return re != nil && re.MatchString(lowerLabel)
}

// LoadRuleSet reads and compiles a YAML rule set.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read rules file %s", path), err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to parse rules file %s", path), err)
	}
	if err := rs.Compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// DefaultRuleSet returns the built-in classification taxonomy. It covers the
// vocabulary of typical small-business P&L exports; trade-specific rule sets
// can extend or replace it via a YAML file.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Version: "2025.1",
		AddBacks: []AddBackRule{
			{
				Name:            "officer-compensation",
				Category:        domain.AddBackOwnerCompensation,
				Keywords:        []string{"officer compensation", "officers compensation", "officer's compensation", "owner salary", "owner compensation", "owner draw"},
				Confidence:      0.9,
				IncludeInEbitda: true,
				IncludeInSDE:    true,
			},
			{
				Name:            "owner-benefit",
				Category:        domain.AddBackOwnerBenefit,
				Pattern:         `owner.*(insurance|benefit|retirement|401k)`,
				Confidence:      0.75,
				IncludeInEbitda: true,
				IncludeInSDE:    true,
			},
			{
				Name:            "personal-vehicle",
				Category:        domain.AddBackPersonalVehicle,
				Keywords:        []string{"personal vehicle", "personal auto", "owner vehicle"},
				Confidence:      0.8,
				IncludeInEbitda: true,
				IncludeInSDE:    true,
			},
			{
				Name:       "one-time-legal",
				Category:   domain.AddBackOneTime,
				Keywords:   []string{"one-time", "one time", "legal settlement", "lawsuit"},
				Confidence: 0.6,
				// One-time items need review before they count toward
				// adjusted earnings.
				IncludeInEbitda: false,
				IncludeInSDE:    false,
			},
			{
				Name:            "depreciation",
				Category:        domain.AddBackDepreciation,
				Keywords:        []string{"depreciation"},
				Confidence:      0.95,
				IncludeInEbitda: true,
				IncludeInSDE:    true,
			},
			{
				Name:            "amortization",
				Category:        domain.AddBackAmortization,
				Keywords:        []string{"amortization"},
				Confidence:      0.95,
				IncludeInEbitda: true,
				IncludeInSDE:    true,
			},
			{
				Name:            "interest-expense",
				Category:        domain.AddBackInterest,
				Keywords:        []string{"interest expense", "loan interest", "mortgage interest"},
				Confidence:      0.85,
				IncludeInEbitda: true,
				IncludeInSDE:    true,
			},
		},
		Lines: []LineRule{
			{
				Name:     "cogs",
				Category: domain.CategoryCOGS,
				Keywords: []string{"cost of goods", "cost of sales", "cogs", "materials", "purchases", "subcontract", "freight"},
			},
			{
				Name:        "payroll",
				Category:    domain.CategoryOpexPayroll,
				Subcategory: "Payroll",
				Keywords:    []string{"payroll", "wages", "salaries", "staff", "employee benefits", "payroll taxes"},
			},
			{
				Name:        "facilities",
				Category:    domain.CategoryOpexFacilities,
				Subcategory: "Facilities",
				Keywords:    []string{"rent", "lease", "utilities", "property tax", "janitorial", "repairs", "maintenance"},
			},
			{
				Name:        "marketing",
				Category:    domain.CategoryOpexMarketing,
				Subcategory: "Marketing",
				Keywords:    []string{"marketing", "advertis", "promotion", "sponsorship"},
			},
			{
				Name:     "other-income",
				Category: domain.CategoryOtherIncome,
				Keywords: []string{"other income", "interest income", "gain on", "rebate", "refund"},
			},
			{
				Name:     "other-expense",
				Category: domain.CategoryOtherExpense,
				Keywords: []string{"other expense", "loss on", "income tax", "franchise tax"},
			},
			{
				Name:     "net-income",
				Category: domain.CategoryNetIncome,
				Pattern:  `^net\s+(income|profit|earnings)$`,
			},
			{
				Name:     "revenue",
				Category: domain.CategoryRevenue,
				Keywords: []string{"revenue", "sales", "income", "fees", "commissions"},
			},
			{
				Name:        "general-expense",
				Category:    domain.CategoryOpexGeneral,
				Subcategory: "General",
				Keywords: []string{
					"expense", "insurance", "office", "supplies", "telephone", "internet",
					"software", "professional", "accounting", "travel", "meals",
					"bank charges", "dues", "licenses", "postage", "training",
				},
			},
		},
	}
}
