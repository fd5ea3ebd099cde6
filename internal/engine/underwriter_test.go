package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
	"github.com/stonemark/underwrite/internal/policy"
)

func sampleRunInput() RunInput {
	rows := make([]model.RentRollRow, 0, 10)
	for i := 0; i < 8; i++ {
		rows = append(rows, model.RentRollRow{
			UnitID:      string(rune('A' + i)),
			UnitType:    "1BR",
			Status:      model.Occupied,
			CurrentRent: 1000,
		})
	}
	rows = append(rows,
		model.RentRollRow{UnitID: "I", UnitType: "1BR", Status: model.Vacant},
		model.RentRollRow{UnitID: "J", UnitType: "1BR", Status: model.Vacant},
	)

	value := 1_500_000.0
	return RunInput{
		PropertyName: "Maple Court",
		Rows:         rows,
		T12: &model.TrailingPeriodFinancials{
			Window:         model.WindowT12,
			CoverageMonths: 12,
			Totals: map[model.Category]float64{
				model.CategoryRentalIncome: 118_000,
				model.CategoryVacancyLoss:  4_000,
				model.CategoryLateFees:     2_000,
				model.CategoryPropertyTax:  20_000,
				model.CategoryInsurance:    8_000,
				model.CategoryElectricity:  6_000,
				model.CategoryRepairs:      4_000,
				model.CategoryPayroll:      5_000,
				model.CategoryAdmin:        2_000,
			},
		},
		UnitCount:     10,
		AgeYears:      25,
		IsRefinance:   true,
		PropertyValue: &value,
	}
}

func TestUnderwriterRun(t *testing.T) {
	u := NewUnderwriter(policy.Default())

	result, err := u.Run(sampleRunInput())
	require.NoError(t, err)

	// Vacant units imputed at the $1,000 group mean: 10 × $1,000 × 12.
	assert.InDelta(t, 120_000, result.GPI, 0.01)
	// 5% vacancy floor beats the reported $4,000 actual.
	assert.InDelta(t, 6_000, result.VacancyLoss, 0.01)
	assert.InDelta(t, 116_000, result.EGI, 0.01)

	tax, ok := result.ExpenseFor(model.CategoryPropertyTax)
	require.True(t, ok)
	assert.InDelta(t, 21_500, tax.Adjusted, 0.01)

	rm, ok := result.ExpenseFor(model.CategoryRepairs)
	require.True(t, ok)
	assert.InDelta(t, 7_000, rm.Adjusted, 0.01, "age-based minimum applies")

	assert.InDelta(t, 59_520, result.TotalExpenses, 0.01)
	assert.InDelta(t, 56_480, result.NOI, 0.01)
	assert.GreaterOrEqual(t, result.ExpenseRatio, 0.28)

	require.NotNil(t, result.CapRate)
	assert.InDelta(t, 56_480.0/1_500_000, *result.CapRate, 0.000001)

	// Every adjustment carries an explanation for the audit trail.
	for _, adj := range result.Expenses {
		assert.NotEmpty(t, adj.Rule, "category %s", adj.Category)
		assert.NotEmpty(t, adj.Rationale, "category %s", adj.Category)
	}
}

func TestUnderwriterRunDeterministic(t *testing.T) {
	u := NewUnderwriter(policy.Default())

	first, err := u.Run(sampleRunInput())
	require.NoError(t, err)
	second, err := u.Run(sampleRunInput())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestUnderwriterRunMissingT12(t *testing.T) {
	u := NewUnderwriter(policy.Default())

	in := sampleRunInput()
	in.T12 = nil

	_, err := u.Run(in)
	var insufficientErr *common.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
}

func TestUnderwriterUnitCountFromRoll(t *testing.T) {
	u := NewUnderwriter(policy.Default())

	in := sampleRunInput()
	in.UnitCount = 0

	result, err := u.Run(in)
	require.NoError(t, err)
	assert.Equal(t, 10, result.UnitCount)
}
