package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosRejectsBadInput(t *testing.T) {
	e := New(DefaultCurve(), Term10Y)

	_, err := e.Scenarios(0, 10_000_000, false)
	require.Error(t, err)

	_, err = e.Scenarios(500_000, -1, false)
	require.Error(t, err)
}

func TestScenariosSortedDescending(t *testing.T) {
	e := New(DefaultCurve(), Term10Y)

	scenarios, err := e.Scenarios(2_000_000, 30_000_000, false)
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for i := 1; i < len(scenarios); i++ {
		assert.GreaterOrEqual(t, scenarios[i-1].LoanAmount, scenarios[i].LoanAmount)
	}
}

func TestScenariosRespectConstraints(t *testing.T) {
	e := New(DefaultCurve(), Term10Y)

	scenarios, err := e.Scenarios(2_000_000, 30_000_000, false)
	require.NoError(t, err)

	for _, s := range scenarios {
		assert.LessOrEqual(t, s.LTV, 0.80+1e-9, "%s %s", s.Program, s.TierName)
		assert.Positive(t, s.DebtYield)
		assert.Positive(t, s.MonthlyPayment)
		assert.NotEmpty(t, s.BindingConstraint)
	}
}

func TestSmallPropertyExcludesLargePrograms(t *testing.T) {
	e := New(DefaultCurve(), Term10Y)

	// $3M property: CMBS ($5M min) and debt fund ($20M min) cannot reach
	// their minimum proceeds.
	scenarios, err := e.Scenarios(200_000, 3_000_000, false)
	require.NoError(t, err)

	for _, s := range scenarios {
		assert.Equal(t, ProgramAgency, s.Program)
	}
}

func TestAgencySpreadSizeBreak(t *testing.T) {
	e := New(DefaultCurve(), Term10Y)

	// Large deal prices at 150 bps over; a small one at 200.
	large, err := e.Scenarios(2_000_000, 30_000_000, false)
	require.NoError(t, err)
	small, err := e.Scenarios(150_000, 2_200_000, false)
	require.NoError(t, err)

	var largeAgency, smallAgency *Scenario
	for i := range large {
		if large[i].Program == ProgramAgency && large[i].TierName == "Tier 2" {
			largeAgency = &large[i]
		}
	}
	for i := range small {
		if small[i].Program == ProgramAgency && small[i].TierName == "Tier 2" {
			smallAgency = &small[i]
		}
	}
	require.NotNil(t, largeAgency)
	require.NotNil(t, smallAgency)

	assert.InDelta(t, 150, largeAgency.SpreadBPS, 0.01)
	assert.InDelta(t, 200, smallAgency.SpreadBPS, 0.01)
	assert.Greater(t, largeAgency.LoanAmount, 6_000_000.0)
	assert.Less(t, smallAgency.LoanAmount, 6_000_000.0)
}

func TestTierPricingLowersSpread(t *testing.T) {
	e := New(DefaultCurve(), Term10Y)

	scenarios, err := e.Scenarios(2_000_000, 30_000_000, false)
	require.NoError(t, err)

	spreads := map[string]float64{}
	for _, s := range scenarios {
		if s.Program == ProgramAgency {
			spreads[s.TierName] = s.SpreadBPS
		}
	}
	require.Len(t, spreads, 3)
	assert.Greater(t, spreads["Tier 2"], spreads["Tier 3"])
	assert.Greater(t, spreads["Tier 3"], spreads["Tier 4"])
}

func TestStepDownPrepayAddsSpread(t *testing.T) {
	e := New(DefaultCurve(), Term10Y)

	flat, err := e.Scenarios(2_000_000, 30_000_000, false)
	require.NoError(t, err)
	stepped, err := e.Scenarios(2_000_000, 30_000_000, true)
	require.NoError(t, err)

	var base, withStep *Scenario
	for i := range flat {
		if flat[i].Program == ProgramAgency && flat[i].TierName == "Tier 2" {
			base = &flat[i]
		}
	}
	for i := range stepped {
		if stepped[i].Program == ProgramAgency && stepped[i].TierName == "Tier 2" {
			withStep = &stepped[i]
		}
	}
	require.NotNil(t, base)
	require.NotNil(t, withStep)

	assert.InDelta(t, base.SpreadBPS+50, withStep.SpreadBPS, 0.01)
	assert.True(t, withStep.StepDownPrepay)
}

func TestCMBSInterestOnly(t *testing.T) {
	e := New(DefaultCurve(), Term10Y)

	scenarios, err := e.Scenarios(2_000_000, 30_000_000, false)
	require.NoError(t, err)

	for _, s := range scenarios {
		if s.Program != ProgramCMBS {
			continue
		}
		assert.Zero(t, s.AmortYears)
		// IO payment is pure interest on the balance.
		assert.InDelta(t, s.LoanAmount*(s.InterestRate/100)/12, s.MonthlyPayment, 0.01)
		return
	}
	t.Fatal("no CMBS scenario produced")
}

func TestFifteenYearTermInterpolated(t *testing.T) {
	curve := DefaultCurve()
	assert.InDelta(t, (curve[Term10Y]+curve[Term20Y])/2, curve.Rate(Term15Y), 0.0001)
}
