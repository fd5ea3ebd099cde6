package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
	"github.com/stonemark/underwrite/internal/policy"
	"github.com/stonemark/underwrite/internal/rentroll"
)

func normalize(t *testing.T, rows []model.RentRollRow) *model.NormalizedRentRoll {
	t.Helper()
	roll, err := rentroll.New(0.30).Normalize(rows)
	require.NoError(t, err)
	return roll
}

func annualized(totals map[model.Category]float64) *model.TrailingPeriodFinancials {
	return &model.TrailingPeriodFinancials{
		Window:         model.WindowT12,
		CoverageMonths: 12,
		Totals:         totals,
	}
}

func TestIncomeComputeGPIFromRoll(t *testing.T) {
	e := NewIncomeEngine(policy.Default())

	roll := normalize(t, []model.RentRollRow{
		{UnitID: "101", UnitType: "1BR", Status: model.Occupied, CurrentRent: 1000},
		{UnitID: "102", UnitType: "1BR", Status: model.Occupied, CurrentRent: 1200},
		{UnitID: "103", UnitType: "1BR", Status: model.Vacant},
	})

	// Unit-level rents take precedence: the statement's rental income total
	// is ignored on the income side.
	fin := annualized(map[model.Category]float64{
		model.CategoryRentalIncome: 999_999,
	})

	income, err := e.Compute(roll, fin)
	require.NoError(t, err)

	// (1000 + 1200 + 1100 imputed) × 12
	assert.InDelta(t, 39_600, income.GPI, 0.01)
}

func TestIncomeVacancyFloorWins(t *testing.T) {
	e := NewIncomeEngine(policy.Default())

	roll := normalize(t, []model.RentRollRow{
		{UnitID: "101", UnitType: "1BR", Status: model.Occupied, CurrentRent: 10_000},
	})
	// GPI = 120,000; floor = 6,000. Reported actual vacancy is better than
	// the floor, so the floor wins.
	fin := annualized(map[model.Category]float64{
		model.CategoryVacancyLoss: 2_000,
	})

	income, err := e.Compute(roll, fin)
	require.NoError(t, err)

	assert.InDelta(t, 6_000, income.VacancyLoss, 0.01)
	assert.GreaterOrEqual(t, income.VacancyLoss, 0.05*income.GPI)
}

func TestIncomeActualVacancyWinsWhenWorse(t *testing.T) {
	e := NewIncomeEngine(policy.Default())

	roll := normalize(t, []model.RentRollRow{
		{UnitID: "101", UnitType: "1BR", Status: model.Occupied, CurrentRent: 10_000},
	})
	fin := annualized(map[model.Category]float64{
		model.CategoryVacancyLoss: 15_000,
	})

	income, err := e.Compute(roll, fin)
	require.NoError(t, err)

	assert.InDelta(t, 15_000, income.VacancyLoss, 0.01)
}

func TestIncomeSignedVacancyNormalized(t *testing.T) {
	e := NewIncomeEngine(policy.Default())

	roll := normalize(t, []model.RentRollRow{
		{UnitID: "101", UnitType: "1BR", Status: model.Occupied, CurrentRent: 10_000},
	})
	// Statements often carry vacancy as a negative deduction.
	fin := annualized(map[model.Category]float64{
		model.CategoryVacancyLoss: -15_000,
	})

	income, err := e.Compute(roll, fin)
	require.NoError(t, err)
	assert.InDelta(t, 15_000, income.VacancyLoss, 0.01)
}

func TestIncomeOtherIncomeVerbatim(t *testing.T) {
	e := NewIncomeEngine(policy.Default())

	roll := normalize(t, []model.RentRollRow{
		{UnitID: "101", UnitType: "1BR", Status: model.Occupied, CurrentRent: 10_000},
	})
	fin := annualized(map[model.Category]float64{
		model.CategoryLateFees:     3_000,
		model.CategoryPetRent:      6_000,
		model.CategoryUtilityReimb: 9_000,
		model.CategoryMiscIncome:   1_500,
	})

	income, err := e.Compute(roll, fin)
	require.NoError(t, err)

	assert.InDelta(t, 19_500, income.OtherIncomeTotal, 0.01)
	assert.InDelta(t, 3_000, income.OtherIncome[model.CategoryLateFees], 0.01)
	// EGI = 120,000 + 19,500 - 6,000 vacancy floor
	assert.InDelta(t, 133_500, income.EGI, 0.01)
}

func TestIncomeNegativeEGI(t *testing.T) {
	e := NewIncomeEngine(policy.Default())

	roll := normalize(t, []model.RentRollRow{
		{UnitID: "101", UnitType: "1BR", Status: model.Occupied, CurrentRent: 100},
	})
	// Reported vacancy dwarfs the roll income: malformed extraction.
	fin := annualized(map[model.Category]float64{
		model.CategoryVacancyLoss: 50_000,
	})

	_, err := e.Compute(roll, fin)
	require.Error(t, err)

	var negErr *common.NegativeEGIError
	require.ErrorAs(t, err, &negErr)
	assert.Negative(t, negErr.EGI)
}
