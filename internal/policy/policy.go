// Package policy defines the immutable underwriting rule tables: vacancy
// floor, escalations, age-bracket minimums, management fee tiers, and the
// aggregate expense-ratio floor. A Table is validated once at construction
// and shared read-only across concurrent runs; rule changes require swapping
// in a new Table, never mutating one in flight.
package policy

import (
	"fmt"
	"math"

	"github.com/stonemark/underwrite/internal/common"
)

// AgeBracket maps a property-age floor to a per-unit R&M minimum. Brackets
// are half-open: a bracket covers [Floor, nextFloor) and the last bracket is
// unbounded above.
type AgeBracket struct {
	Floor      int // property age in years, inclusive
	PerUnitMin float64
}

// FeeTier maps an annual gross income floor to a management fee rate. Tiers
// are inclusive of their lower bound; the last tier is unbounded above.
type FeeTier struct {
	Floor float64 // annual gross income, inclusive
	Rate  float64
}

// Table is the complete, immutable underwriting policy.
type Table struct {
	RMBrackets           []AgeBracket
	FeeTiers             []FeeTier
	VacancyFloor         float64 // minimum vacancy loss as a fraction of GPI
	TaxEscalation        float64 // applied on refinance transactions
	InsuranceEscalation  float64
	UtilityEscalation    float64
	UtilitySpikeMultiple float64 // monthly figure above this multiple of the median is a spike
	PayrollPerUnitMin    float64
	AdminMin             float64 // minimum total administrative fees
	AdminPerUnitCap      float64
	ReservePerUnit       float64
	MinExpenseRatio      float64 // of EGI
	TrendTolerance       float64 // short-window excess over T12 required to prefer it
	UnderpricedThreshold float64 // fraction under type average that flags a unit
	FloorScaleLimit      float64 // maximum multiple the floor pass may apply
}

// Default returns the standard rulebook policy.
func Default() Table {
	return Table{
		VacancyFloor:         0.05,
		TaxEscalation:        0.075,
		InsuranceEscalation:  0.05,
		UtilityEscalation:    0.02,
		UtilitySpikeMultiple: 1.5,
		RMBrackets: []AgeBracket{
			{Floor: 0, PerUnitMin: 500},
			{Floor: 10, PerUnitMin: 600},
			{Floor: 20, PerUnitMin: 700},
			{Floor: 30, PerUnitMin: 800},
			{Floor: 40, PerUnitMin: 900},
			{Floor: 50, PerUnitMin: 1000},
		},
		FeeTiers: []FeeTier{
			{Floor: 0, Rate: 0.05},
			{Floor: 500_000, Rate: 0.045},
			{Floor: 750_000, Rate: 0.04},
			{Floor: 1_000_000, Rate: 0.035},
			{Floor: 1_500_000, Rate: 0.03},
			{Floor: 2_000_000, Rate: 0.025},
		},
		PayrollPerUnitMin:    600,
		AdminMin:             1000,
		AdminPerUnitCap:      400,
		ReservePerUnit:       250,
		MinExpenseRatio:      0.28,
		TrendTolerance:       0.03,
		UnderpricedThreshold: 0.30,
		FloorScaleLimit:      2.0,
	}
}

// Validate checks every table invariant. It is called once when the table
// is constructed or loaded; engines assume a validated table.
func (t Table) Validate() error {
	if err := validateFraction("vacancy_floor", t.VacancyFloor); err != nil {
		return err
	}
	if err := validateFraction("min_expense_ratio", t.MinExpenseRatio); err != nil {
		return err
	}
	if err := validateFraction("underpriced_threshold", t.UnderpricedThreshold); err != nil {
		return err
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"tax_escalation", t.TaxEscalation},
		{"insurance_escalation", t.InsuranceEscalation},
		{"utility_escalation", t.UtilityEscalation},
		{"payroll_per_unit_min", t.PayrollPerUnitMin},
		{"admin_min", t.AdminMin},
		{"admin_per_unit_cap", t.AdminPerUnitCap},
		{"reserve_per_unit", t.ReservePerUnit},
		{"trend_tolerance", t.TrendTolerance},
	} {
		if f.value < 0 || math.IsNaN(f.value) {
			return &common.InvalidPolicyError{Field: f.name, Reason: fmt.Sprintf("must not be negative, got %v", f.value)}
		}
	}
	if t.UtilitySpikeMultiple < 1 {
		return &common.InvalidPolicyError{Field: "utility_spike_multiple", Reason: fmt.Sprintf("must be at least 1, got %v", t.UtilitySpikeMultiple)}
	}
	if t.FloorScaleLimit < 1 {
		return &common.InvalidPolicyError{Field: "floor_scale_limit", Reason: fmt.Sprintf("must be at least 1, got %v", t.FloorScaleLimit)}
	}

	if len(t.RMBrackets) == 0 {
		return &common.InvalidPolicyError{Field: "rm_brackets", Reason: "at least one bracket is required"}
	}
	if t.RMBrackets[0].Floor != 0 {
		return &common.InvalidPolicyError{Field: "rm_brackets", Reason: "first bracket must start at age 0"}
	}
	for i, b := range t.RMBrackets {
		if b.PerUnitMin < 0 {
			return &common.InvalidPolicyError{Field: "rm_brackets", Reason: fmt.Sprintf("bracket %d: per-unit minimum must not be negative", i)}
		}
		if i > 0 && b.Floor <= t.RMBrackets[i-1].Floor {
			return &common.InvalidPolicyError{Field: "rm_brackets", Reason: fmt.Sprintf("bracket floors must ascend, got %d after %d", b.Floor, t.RMBrackets[i-1].Floor)}
		}
	}

	if len(t.FeeTiers) == 0 {
		return &common.InvalidPolicyError{Field: "fee_tiers", Reason: "at least one tier is required"}
	}
	if t.FeeTiers[0].Floor != 0 {
		return &common.InvalidPolicyError{Field: "fee_tiers", Reason: "first tier must start at zero income"}
	}
	for i, tier := range t.FeeTiers {
		if tier.Rate < 0 || tier.Rate > 1 {
			return &common.InvalidPolicyError{Field: "fee_tiers", Reason: fmt.Sprintf("tier %d: rate must be a fraction, got %v", i, tier.Rate)}
		}
		if i > 0 && tier.Floor <= t.FeeTiers[i-1].Floor {
			return &common.InvalidPolicyError{Field: "fee_tiers", Reason: fmt.Sprintf("tier floors must ascend, got %v after %v", tier.Floor, t.FeeTiers[i-1].Floor)}
		}
	}

	return nil
}

// RMPerUnitMin returns the per-unit repairs & maintenance minimum for a
// property of the given age. Brackets are first-matching, half-open.
func (t Table) RMPerUnitMin(ageYears int) float64 {
	min := t.RMBrackets[0].PerUnitMin
	for _, b := range t.RMBrackets {
		if ageYears >= b.Floor {
			min = b.PerUnitMin
		}
	}
	return min
}

// RMBracketBounds returns the [low, high) age bounds of the bracket matching
// the given age; high is -1 for the unbounded last bracket. Used only to
// build audit rationale strings.
func (t Table) RMBracketBounds(ageYears int) (low, high int) {
	low, high = t.RMBrackets[0].Floor, -1
	for i, b := range t.RMBrackets {
		if ageYears >= b.Floor {
			low = b.Floor
			if i+1 < len(t.RMBrackets) {
				high = t.RMBrackets[i+1].Floor
			} else {
				high = -1
			}
		}
	}
	return low, high
}

// ManagementFeeRate returns the fee rate for the given annual gross income.
// Tiers are inclusive of their lower bound, so income landing exactly on a
// tier boundary takes the higher tier's (lower) rate.
func (t Table) ManagementFeeRate(gross float64) float64 {
	rate := t.FeeTiers[0].Rate
	for _, tier := range t.FeeTiers {
		if gross >= tier.Floor {
			rate = tier.Rate
		}
	}
	return rate
}

func validateFraction(field string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return &common.InvalidPolicyError{Field: field, Reason: fmt.Sprintf("must be a fraction between 0 and 1, got %v", v)}
	}
	return nil
}
