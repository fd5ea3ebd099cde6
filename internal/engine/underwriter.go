package engine

import (
	"log/slog"

	"github.com/stonemark/underwrite/internal/model"
	"github.com/stonemark/underwrite/internal/policy"
	"github.com/stonemark/underwrite/internal/rentroll"
	"github.com/stonemark/underwrite/internal/trend"
)

// Underwriter runs the full pipeline: normalize the rent roll, select the
// trailing window, derive income, adjust expenses, and assemble the result.
// An Underwriter is safe for concurrent use: the policy table is read-only
// and every run owns its own data.
type Underwriter struct {
	normalizer *rentroll.Normalizer
	selector   *trend.Selector
	income     *IncomeEngine
	expense    *ExpenseEngine
	policy     policy.Table
}

// RunInput is everything a single underwriting run needs.
type RunInput struct {
	T3            *model.TrailingPeriodFinancials
	T6            *model.TrailingPeriodFinancials
	T12           *model.TrailingPeriodFinancials
	PropertyValue *float64
	PropertyName  string
	Rows          []model.RentRollRow
	UnitCount     int // zero means "use the rent roll length"
	AgeYears      int
	IsRefinance   bool
}

// NewUnderwriter creates an underwriter from a validated policy table.
func NewUnderwriter(p policy.Table) *Underwriter {
	return &Underwriter{
		normalizer: rentroll.New(p.UnderpricedThreshold),
		selector:   trend.New(p.TrendTolerance),
		income:     NewIncomeEngine(p),
		expense:    NewExpenseEngine(p),
		policy:     p,
	}
}

// Run executes one underwriting run. Assembly is atomic: either a complete
// result is returned or an error, never a partial statement.
func (u *Underwriter) Run(in RunInput) (*model.UnderwritingResult, error) {
	roll, err := u.normalizer.Normalize(in.Rows)
	if err != nil {
		return nil, err
	}

	unitCount := in.UnitCount
	if unitCount == 0 {
		unitCount = roll.UnitCount()
	}

	selected, err := u.selector.Select(in.T3, in.T6, in.T12)
	if err != nil {
		return nil, err
	}
	slog.Debug("trailing window selected",
		"property", in.PropertyName,
		"window", selected.Window)

	income, err := u.income.Compute(roll, selected)
	if err != nil {
		return nil, err
	}

	expenses, err := u.expense.Compute(ExpenseInput{
		Financials:  selected,
		UnitCount:   unitCount,
		AgeYears:    in.AgeYears,
		IsRefinance: in.IsRefinance,
		GPI:         income.GPI,
		EGI:         income.EGI,
	})
	if err != nil {
		return nil, err
	}

	result, err := Assemble(income, expenses, unitCount, in.PropertyValue)
	if err != nil {
		return nil, err
	}

	slog.Info("underwriting run complete",
		"property", in.PropertyName,
		"units", unitCount,
		"egi", income.EGI,
		"noi", result.NOI,
		"expense_ratio", result.ExpenseRatio)
	return result, nil
}
