// Package sizing computes qualifying loan scenarios from an underwritten
// NOI and property value. Each lending program carries its own LTV, DSCR,
// and debt-yield constraints; the binding constraint determines maximum
// proceeds, and pricing is a spread over a supplied treasury curve.
package sizing

import (
	"fmt"
	"math"
	"sort"
)

// Program identifies a lending program.
type Program string

// Supported lending programs.
const (
	ProgramAgency   Program = "agency" // Fannie/Freddie
	ProgramCMBS     Program = "cmbs"
	ProgramDebtFund Program = "debt_fund"
)

// TreasuryTerm is a treasury index term.
type TreasuryTerm string

// Treasury index terms.
const (
	Term5Y  TreasuryTerm = "5Y"
	Term7Y  TreasuryTerm = "7Y"
	Term10Y TreasuryTerm = "10Y"
	Term15Y TreasuryTerm = "15Y"
	Term20Y TreasuryTerm = "20Y"
	Term30Y TreasuryTerm = "30Y"
)

// TreasuryCurve maps terms to rates in percent.
type TreasuryCurve map[TreasuryTerm]float64

// DefaultCurve returns a static curve for offline analysis; production
// callers supply a live curve.
func DefaultCurve() TreasuryCurve {
	return TreasuryCurve{
		Term5Y:  4.25,
		Term7Y:  4.35,
		Term10Y: 4.45,
		Term20Y: 4.75,
		Term30Y: 4.85,
	}
}

// Rate returns the rate for a term. The 15-year rate is interpolated as the
// average of the 10- and 20-year points.
func (c TreasuryCurve) Rate(term TreasuryTerm) float64 {
	if term == Term15Y {
		return (c[Term10Y] + c[Term20Y]) / 2
	}
	return c[term]
}

// Constraints define a lending program's sizing and pricing parameters.
// AmortYears of zero means interest-only. A MinDebtYield of zero means the
// program has no debt-yield test.
type Constraints struct {
	MaxLTV            float64
	MinDSCR           float64
	MinDebtYield      float64
	AmortYears        int
	BaseSpreadBPS     float64
	MinLoan           float64
	StepDownSpreadBPS float64
	TieredPricing     bool
}

// Tier is an agency pricing tier: tighter leverage buys a lower spread.
type Tier struct {
	Name         string
	MaxLTV       float64
	MinDSCR      float64
	SpreadAdjBPS float64
}

// Scenario is one qualifying loan sizing outcome.
type Scenario struct {
	Program           Program
	TierName          string
	BindingConstraint string
	Notes             []string
	LoanAmount        float64
	LTV               float64
	DSCR              float64
	DebtYield         float64
	InterestRate      float64 // percent
	MonthlyPayment    float64
	TreasuryRate      float64 // percent
	SpreadBPS         float64
	AmortYears        int
	StepDownPrepay    bool
}

// Engine sizes loans against a treasury curve.
type Engine struct {
	curve    TreasuryCurve
	programs map[Program]Constraints
	tiers    []Tier
	term     TreasuryTerm
}

// New creates a sizing engine with the standard program definitions.
func New(curve TreasuryCurve, term TreasuryTerm) *Engine {
	return &Engine{
		curve: curve,
		term:  term,
		programs: map[Program]Constraints{
			ProgramAgency: {
				MaxLTV:            0.75,
				MinDSCR:           1.25,
				MinDebtYield:      0.08,
				AmortYears:        30,
				BaseSpreadBPS:     150,
				MinLoan:           1_000_000,
				TieredPricing:     true,
				StepDownSpreadBPS: 50,
			},
			ProgramCMBS: {
				MaxLTV:        0.75,
				MinDSCR:       1.25,
				MinDebtYield:  0.09,
				AmortYears:    0, // interest-only
				BaseSpreadBPS: 300,
				MinLoan:       5_000_000,
			},
			ProgramDebtFund: {
				MaxLTV:        0.80,
				MinDSCR:       0.95,
				AmortYears:    25,
				BaseSpreadBPS: 150,
				MinLoan:       20_000_000,
			},
		},
		tiers: []Tier{
			{Name: "Tier 2", MaxLTV: 0.75, MinDSCR: 1.25, SpreadAdjBPS: 0},
			{Name: "Tier 3", MaxLTV: 0.65, MinDSCR: 1.35, SpreadAdjBPS: -25},
			{Name: "Tier 4", MaxLTV: 0.55, MinDSCR: 1.45, SpreadAdjBPS: -50},
		},
	}
}

// Scenarios computes every qualifying scenario across all programs, sorted
// by loan amount descending. Programs whose minimum loan exceeds the
// achievable proceeds are silently skipped.
func (e *Engine) Scenarios(noi, propertyValue float64, stepDownPrepay bool) ([]Scenario, error) {
	if noi <= 0 {
		return nil, fmt.Errorf("NOI must be positive, got %.2f", noi)
	}
	if propertyValue <= 0 {
		return nil, fmt.Errorf("property value must be positive, got %.2f", propertyValue)
	}

	var scenarios []Scenario
	for _, program := range []Program{ProgramAgency, ProgramCMBS, ProgramDebtFund} {
		constraints := e.programs[program]
		if constraints.TieredPricing {
			for _, tier := range e.tiers {
				if s, ok := e.size(program, constraints, &tier, noi, propertyValue, stepDownPrepay); ok {
					scenarios = append(scenarios, s)
				}
			}
			continue
		}
		if s, ok := e.size(program, constraints, nil, noi, propertyValue, stepDownPrepay); ok {
			scenarios = append(scenarios, s)
		}
	}

	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].LoanAmount > scenarios[j].LoanAmount
	})
	return scenarios, nil
}

func (e *Engine) size(program Program, constraints Constraints, tier *Tier, noi, value float64, stepDown bool) (Scenario, bool) {
	maxLTV := constraints.MaxLTV
	minDSCR := constraints.MinDSCR
	if tier != nil {
		maxLTV = tier.MaxLTV
		minDSCR = tier.MinDSCR
	}

	// Pricing depends on loan size for agency deals; assume the large-loan
	// spread first and re-price below the break.
	spread := e.spread(program, constraints, tier, value*maxLTV, stepDown)
	rate := e.curve.Rate(e.term) + spread/100

	ltvLoan := value * maxLTV
	dscrLoan := loanFromDebtService(noi/minDSCR, rate, constraints.AmortYears)
	debtYieldLoan := math.Inf(1)
	if constraints.MinDebtYield > 0 {
		debtYieldLoan = noi / constraints.MinDebtYield
	}

	loan := ltvLoan
	binding := "LTV"
	if dscrLoan < loan {
		loan, binding = dscrLoan, "DSCR"
	}
	if debtYieldLoan < loan {
		loan, binding = debtYieldLoan, "Debt Yield"
	}

	if program == ProgramAgency {
		repriced := e.spread(program, constraints, tier, loan, stepDown)
		if repriced != spread {
			spread = repriced
			rate = e.curve.Rate(e.term) + spread/100
			dscrLoan = loanFromDebtService(noi/minDSCR, rate, constraints.AmortYears)
			if binding == "DSCR" {
				loan = dscrLoan
			}
		}
	}

	if loan < constraints.MinLoan {
		return Scenario{}, false
	}

	payment := monthlyPayment(loan, rate, constraints.AmortYears)
	dscr := math.Inf(1)
	if payment > 0 {
		dscr = (noi / 12) / payment
	}

	s := Scenario{
		Program:           program,
		LoanAmount:        loan,
		LTV:               loan / value,
		DSCR:              dscr,
		DebtYield:         noi / loan,
		InterestRate:      rate,
		MonthlyPayment:    payment,
		TreasuryRate:      e.curve.Rate(e.term),
		SpreadBPS:         spread,
		AmortYears:        constraints.AmortYears,
		StepDownPrepay:    stepDown && constraints.StepDownSpreadBPS > 0,
		BindingConstraint: binding,
	}
	if tier != nil {
		s.TierName = tier.Name
	}

	s.Notes = append(s.Notes, fmt.Sprintf("treasury %s: %.2f%%", e.term, s.TreasuryRate))
	s.Notes = append(s.Notes, fmt.Sprintf("spread: %.0f bps", spread))
	if tier != nil {
		s.Notes = append(s.Notes, fmt.Sprintf("tier pricing: %s", tier.Name))
	}
	if s.StepDownPrepay {
		s.Notes = append(s.Notes, fmt.Sprintf("step-down prepay: +%.0f bps", constraints.StepDownSpreadBPS))
	}
	s.Notes = append(s.Notes, fmt.Sprintf("binding constraint: %s", binding))

	return s, true
}

func (e *Engine) spread(program Program, constraints Constraints, tier *Tier, loan float64, stepDown bool) float64 {
	spread := constraints.BaseSpreadBPS
	if program == ProgramAgency {
		if loan >= 6_000_000 {
			spread = 150
		} else {
			spread = 200
		}
	}
	if tier != nil {
		spread += tier.SpreadAdjBPS
	}
	if stepDown && constraints.StepDownSpreadBPS > 0 {
		spread += constraints.StepDownSpreadBPS
	}
	return spread
}

// loanFromDebtService inverts the payment formula: the largest loan whose
// annual debt service stays within the given budget.
func loanFromDebtService(annualBudget, ratePercent float64, amortYears int) float64 {
	monthlyBudget := annualBudget / 12
	monthlyRate := ratePercent / 100 / 12
	if amortYears == 0 {
		// Interest-only.
		if monthlyRate == 0 {
			return math.Inf(1)
		}
		return monthlyBudget / monthlyRate
	}
	n := float64(amortYears * 12)
	if monthlyRate == 0 {
		return monthlyBudget * n
	}
	factor := (monthlyRate * math.Pow(1+monthlyRate, n)) / (math.Pow(1+monthlyRate, n) - 1)
	return monthlyBudget / factor
}

func monthlyPayment(loan, ratePercent float64, amortYears int) float64 {
	monthlyRate := ratePercent / 100 / 12
	if amortYears == 0 {
		return loan * monthlyRate
	}
	n := float64(amortYears * 12)
	if monthlyRate == 0 {
		return loan / n
	}
	return loan * (monthlyRate * math.Pow(1+monthlyRate, n)) / (math.Pow(1+monthlyRate, n) - 1)
}
