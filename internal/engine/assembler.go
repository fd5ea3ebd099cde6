package engine

import (
	"fmt"

	"github.com/stonemark/underwrite/internal/model"
)

// Assemble composes the income statement and the adjusted expense sequence
// into the final, immutable UnderwritingResult. This is pure aggregation:
// no business rule fires here, and re-running it on the same inputs yields
// an identical result.
func Assemble(income *model.IncomeStatement, expenses []model.LineItemAdjustment, unitCount int, propertyValue *float64) (*model.UnderwritingResult, error) {
	if unitCount <= 0 {
		return nil, fmt.Errorf("unit count must be positive, got %d", unitCount)
	}

	totalExpenses := totalAdjusted(expenses)
	noi := income.EGI - totalExpenses

	result := &model.UnderwritingResult{
		GPI:           income.GPI,
		OtherIncome:   copyIncomeMap(income.OtherIncome),
		OtherTotal:    income.OtherIncomeTotal,
		VacancyLoss:   income.VacancyLoss,
		EGI:           income.EGI,
		Expenses:      copyAdjustments(expenses),
		TotalExpenses: totalExpenses,
		NOI:           noi,
		UnitCount:     unitCount,
	}

	if income.EGI > 0 {
		result.ExpenseRatio = totalExpenses / income.EGI
		result.NOIMargin = noi / income.EGI
	}

	units := float64(unitCount)
	result.PerUnit = model.PerUnitFigures{
		GPI:           income.GPI / units,
		EGI:           income.EGI / units,
		TotalExpenses: totalExpenses / units,
		NOI:           noi / units,
		Expenses:      make(map[model.Category]float64, len(expenses)),
	}
	for _, adj := range expenses {
		result.PerUnit.Expenses[adj.Category] = adj.Adjusted / units
	}

	// Cap rate only when a usable value was supplied; never zero-filled.
	if propertyValue != nil && *propertyValue > 0 {
		capRate := noi / *propertyValue
		result.CapRate = &capRate
	}

	return result, nil
}

func copyIncomeMap(in map[model.Category]float64) map[model.Category]float64 {
	out := make(map[model.Category]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyAdjustments(in []model.LineItemAdjustment) []model.LineItemAdjustment {
	out := make([]model.LineItemAdjustment, len(in))
	copy(out, in)
	return out
}
