package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonemark/underwrite/internal/model"
)

func sampleIncome() *model.IncomeStatement {
	return &model.IncomeStatement{
		GPI: 1_200_000,
		OtherIncome: map[model.Category]float64{
			model.CategoryLateFees: 12_000,
		},
		OtherIncomeTotal: 12_000,
		VacancyLoss:      60_000,
		EGI:              1_152_000,
	}
}

func sampleExpenses() []model.LineItemAdjustment {
	return []model.LineItemAdjustment{
		{Category: model.CategoryPropertyTax, Raw: 300_000, Adjusted: 322_500, Rule: model.RuleTaxEscalation},
		{Category: model.CategoryRepairs, Raw: 30_000, Adjusted: 50_000, Rule: model.RuleAgeMinimum},
		{Category: model.CategoryReserves, Raw: 0, Adjusted: 25_000, Rule: model.RuleReservePerUnit},
	}
}

func TestAssemble(t *testing.T) {
	result, err := Assemble(sampleIncome(), sampleExpenses(), 100, nil)
	require.NoError(t, err)

	assert.InDelta(t, 397_500, result.TotalExpenses, 0.01)
	assert.InDelta(t, 1_152_000-397_500, result.NOI, 0.01)
	assert.InDelta(t, 397_500.0/1_152_000, result.ExpenseRatio, 0.0001)
	assert.InDelta(t, (1_152_000-397_500.0)/1_152_000, result.NOIMargin, 0.0001)

	assert.InDelta(t, 12_000, result.PerUnit.GPI, 0.01)
	assert.InDelta(t, 11_520, result.PerUnit.EGI, 0.01)
	assert.InDelta(t, 3_975, result.PerUnit.TotalExpenses, 0.01)
	assert.InDelta(t, 3_225, result.PerUnit.Expenses[model.CategoryPropertyTax], 0.01)

	assert.Nil(t, result.CapRate, "cap rate is omitted, not zero-filled")
}

func TestAssembleCapRate(t *testing.T) {
	value := 12_000_000.0
	result, err := Assemble(sampleIncome(), sampleExpenses(), 100, &value)
	require.NoError(t, err)

	require.NotNil(t, result.CapRate)
	assert.InDelta(t, result.NOI/value, *result.CapRate, 0.000001)
}

func TestAssembleIgnoresNonPositiveValue(t *testing.T) {
	zero := 0.0
	result, err := Assemble(sampleIncome(), sampleExpenses(), 100, &zero)
	require.NoError(t, err)
	assert.Nil(t, result.CapRate)
}

func TestAssembleIdempotent(t *testing.T) {
	first, err := Assemble(sampleIncome(), sampleExpenses(), 100, nil)
	require.NoError(t, err)
	second, err := Assemble(sampleIncome(), sampleExpenses(), 100, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssembleDoesNotAliasInputs(t *testing.T) {
	income := sampleIncome()
	expenses := sampleExpenses()

	result, err := Assemble(income, expenses, 100, nil)
	require.NoError(t, err)

	// Mutating the caller's slices after assembly must not reach the result.
	expenses[0].Adjusted = 0
	income.OtherIncome[model.CategoryLateFees] = 0

	assert.InDelta(t, 322_500, result.Expenses[0].Adjusted, 0.01)
	assert.InDelta(t, 12_000, result.OtherIncome[model.CategoryLateFees], 0.01)
}

func TestAssembleRejectsZeroUnits(t *testing.T) {
	_, err := Assemble(sampleIncome(), sampleExpenses(), 0, nil)
	require.Error(t, err)
}
