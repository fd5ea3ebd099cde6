package model

import "fmt"

// Category identifies a line item on a trailing income/expense statement.
type Category string

// Income categories.
const (
	CategoryRentalIncome  Category = "rental_income"
	CategoryLateFees      Category = "late_fees"
	CategoryPetRent       Category = "pet_rent"
	CategoryUtilityReimb  Category = "utility_reimbursement"
	CategoryMiscIncome    Category = "misc_income"
	CategoryVacancyLoss   Category = "vacancy_loss"
	CategoryLossToLease   Category = "loss_to_lease"
)

// Expense categories.
const (
	CategoryPropertyTax  Category = "property_taxes"
	CategoryInsurance    Category = "insurance"
	CategoryElectricity  Category = "electricity"
	CategoryWater        Category = "water"
	CategorySewer        Category = "sewer"
	CategoryTrash        Category = "trash"
	CategoryRepairs      Category = "repairs_maintenance"
	CategoryManagement   Category = "management_fee"
	CategoryPayroll      Category = "payroll"
	CategoryAdmin        Category = "admin_fees"
	CategoryReserves     Category = "replacement_reserves"
)

// OtherIncomeCategories are the ancillary income lines taken verbatim from
// the selected trailing statement.
var OtherIncomeCategories = []Category{
	CategoryLateFees,
	CategoryPetRent,
	CategoryUtilityReimb,
	CategoryMiscIncome,
}

// UtilityCategories are the utility sub-categories subject to spike
// suppression before escalation.
var UtilityCategories = []Category{
	CategoryElectricity,
	CategoryWater,
	CategorySewer,
	CategoryTrash,
}

// IsSignedDeduction reports whether a category may legitimately carry a
// negative amount on a trailing statement.
func (c Category) IsSignedDeduction() bool {
	return c == CategoryVacancyLoss || c == CategoryLossToLease
}

// TrailingWindow identifies a trailing statement window.
type TrailingWindow string

// Supported trailing windows.
const (
	WindowT3  TrailingWindow = "T3"
	WindowT6  TrailingWindow = "T6"
	WindowT12 TrailingWindow = "T12"
)

// TrailingPeriodFinancials holds one trailing window of a property's
// income/expense statement. Totals cover the declared number of months;
// Monthly, when populated, carries the month-by-month series for a category
// (needed for utility spike suppression).
type TrailingPeriodFinancials struct {
	Totals         map[Category]float64
	Monthly        map[Category][]float64
	Window         TrailingWindow
	CoverageMonths int
}

// Validate checks the structural invariants of a trailing statement.
func (t *TrailingPeriodFinancials) Validate() error {
	if t.CoverageMonths <= 0 {
		return fmt.Errorf("%s: coverage months must be positive, got %d", t.Window, t.CoverageMonths)
	}
	for cat, amount := range t.Totals {
		if amount < 0 && !cat.IsSignedDeduction() {
			return fmt.Errorf("%s: category %s must not be negative, got %.2f", t.Window, cat, amount)
		}
	}
	for cat, series := range t.Monthly {
		if len(series) > t.CoverageMonths {
			return fmt.Errorf("%s: category %s has %d monthly values for a %d-month window",
				t.Window, cat, len(series), t.CoverageMonths)
		}
	}
	return nil
}

// Amount returns the total for a category, or zero when absent.
func (t *TrailingPeriodFinancials) Amount(cat Category) float64 {
	return t.Totals[cat]
}

// Annualized returns the category total scaled to a full year.
func (t *TrailingPeriodFinancials) Annualized(cat Category) float64 {
	if t.CoverageMonths == 0 {
		return 0
	}
	return t.Totals[cat] / float64(t.CoverageMonths) * 12
}

// AnnualizedAll returns a copy of the statement with every total scaled to
// a full year and the coverage set to 12 months. Monthly series are carried
// over untouched; they remain per-month observations.
func (t *TrailingPeriodFinancials) AnnualizedAll() *TrailingPeriodFinancials {
	out := &TrailingPeriodFinancials{
		Window:         t.Window,
		CoverageMonths: 12,
		Totals:         make(map[Category]float64, len(t.Totals)),
		Monthly:        make(map[Category][]float64, len(t.Monthly)),
	}
	for cat := range t.Totals {
		out.Totals[cat] = t.Annualized(cat)
	}
	for cat, series := range t.Monthly {
		copied := make([]float64, len(series))
		copy(copied, series)
		out.Monthly[cat] = copied
	}
	return out
}
