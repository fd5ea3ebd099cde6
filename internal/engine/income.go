// Package engine implements the underwriting rules engine: income
// normalization, per-category expense adjustment, and final statement
// assembly. Every function here is a pure transformation of its inputs;
// the only shared state is the read-only policy table.
package engine

import (
	"math"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
	"github.com/stonemark/underwrite/internal/policy"
)

// IncomeEngine derives gross potential income, vacancy loss, and effective
// gross income from a normalized rent roll and the selected trailing
// statement.
type IncomeEngine struct {
	policy policy.Table
}

// NewIncomeEngine creates an income engine bound to a validated policy.
func NewIncomeEngine(p policy.Table) *IncomeEngine {
	return &IncomeEngine{policy: p}
}

// Compute builds the income side of the statement. Unit-level rents take
// precedence over the trailing statement's rental income total; ancillary
// income categories are taken verbatim from the selected trailing period.
// Vacancy loss is floored at the policy fraction of GPI: actual vacancy is
// used only when it is worse, never when it is better.
func (e *IncomeEngine) Compute(roll *model.NormalizedRentRoll, financials *model.TrailingPeriodFinancials) (*model.IncomeStatement, error) {
	gpi := roll.MonthlyEffectiveRent() * 12

	other := make(map[model.Category]float64, len(model.OtherIncomeCategories))
	otherTotal := 0.0
	for _, cat := range model.OtherIncomeCategories {
		amount := financials.Amount(cat)
		if amount == 0 {
			continue
		}
		other[cat] = amount
		otherTotal += amount
	}

	actualVacancy := math.Abs(financials.Amount(model.CategoryVacancyLoss))
	vacancyLoss := math.Max(e.policy.VacancyFloor*gpi, actualVacancy)

	egi := gpi + otherTotal - vacancyLoss
	if egi < 0 {
		return nil, &common.NegativeEGIError{EGI: egi}
	}

	return &model.IncomeStatement{
		GPI:              gpi,
		OtherIncome:      other,
		OtherIncomeTotal: otherTotal,
		VacancyLoss:      vacancyLoss,
		EGI:              egi,
	}, nil
}
