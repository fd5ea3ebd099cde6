package engine

import (
	"fmt"
	"sort"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
	"github.com/stonemark/underwrite/internal/policy"
)

// ExpenseEngine applies the per-category adjustment rules and the aggregate
// expense-ratio floor, producing one LineItemAdjustment per category in a
// fixed statement order.
type ExpenseEngine struct {
	policy policy.Table
}

// NewExpenseEngine creates an expense engine bound to a validated policy.
func NewExpenseEngine(p policy.Table) *ExpenseEngine {
	return &ExpenseEngine{policy: p}
}

// ExpenseInput carries the per-run parameters the expense rules depend on.
type ExpenseInput struct {
	Financials  *model.TrailingPeriodFinancials // annualized, from the trend selector
	UnitCount   int
	AgeYears    int
	IsRefinance bool
	GPI         float64
	EGI         float64
}

// Compute evaluates every category rule independently, then runs the floor
// pass. Categories driven by a minimum or tier (R&M, management, payroll,
// admin, reserves) are never scaled by the floor; only tax, insurance, and
// utilities absorb the shortfall, and never beyond the policy scale limit.
func (e *ExpenseEngine) Compute(in ExpenseInput) ([]model.LineItemAdjustment, error) {
	if in.UnitCount <= 0 {
		return nil, fmt.Errorf("unit count must be positive, got %d", in.UnitCount)
	}

	fin := in.Financials
	adjustments := []model.LineItemAdjustment{
		e.propertyTax(fin, in.IsRefinance),
		e.insurance(fin),
	}
	adjustments = append(adjustments, e.utilities(fin)...)
	adjustments = append(adjustments,
		e.repairsMaintenance(fin, in.UnitCount, in.AgeYears),
		e.managementFee(in.GPI),
		e.payroll(fin, in.UnitCount),
		e.adminFees(fin, in.UnitCount),
		e.reserves(in.UnitCount),
	)

	return e.applyRatioFloor(adjustments, in.EGI)
}

func (e *ExpenseEngine) propertyTax(fin *model.TrailingPeriodFinancials, refinance bool) model.LineItemAdjustment {
	raw := fin.Amount(model.CategoryPropertyTax)
	if !refinance {
		return model.LineItemAdjustment{
			Category:  model.CategoryPropertyTax,
			Raw:       raw,
			Adjusted:  raw,
			Rule:      model.RuleTaxActuals,
			Rationale: "acquisition: actual taxes carried unchanged",
		}
	}
	adjusted := raw * (1 + e.policy.TaxEscalation)
	return model.LineItemAdjustment{
		Category: model.CategoryPropertyTax,
		Raw:      raw,
		Adjusted: adjusted,
		Rule:     model.RuleTaxEscalation,
		Rationale: fmt.Sprintf("refinance: actual taxes %s escalated %s to %s",
			common.FormatMoney(raw), common.FormatPercent(e.policy.TaxEscalation), common.FormatMoney(adjusted)),
	}
}

func (e *ExpenseEngine) insurance(fin *model.TrailingPeriodFinancials) model.LineItemAdjustment {
	raw := fin.Amount(model.CategoryInsurance)
	adjusted := raw * (1 + e.policy.InsuranceEscalation)
	return model.LineItemAdjustment{
		Category: model.CategoryInsurance,
		Raw:      raw,
		Adjusted: adjusted,
		Rule:     model.RuleInsuranceEsc,
		Rationale: fmt.Sprintf("actual insurance %s escalated %s",
			common.FormatMoney(raw), common.FormatPercent(e.policy.InsuranceEscalation)),
	}
}

// utilities suppresses monthly spikes before annualizing, then escalates.
// A month above the policy multiple of the window median is replaced by the
// median; the statement total is used directly when no monthly series came
// through from extraction.
func (e *ExpenseEngine) utilities(fin *model.TrailingPeriodFinancials) []model.LineItemAdjustment {
	var adjustments []model.LineItemAdjustment
	for _, cat := range model.UtilityCategories {
		raw := fin.Amount(cat)
		series := fin.Monthly[cat]
		if raw == 0 && len(series) == 0 {
			continue
		}

		annual := raw
		suppressed := 0
		if len(series) > 0 {
			cleaned, replaced := suppressSpikes(series, e.policy.UtilitySpikeMultiple)
			suppressed = replaced
			sum := 0.0
			for _, v := range cleaned {
				sum += v
			}
			annual = sum / float64(len(cleaned)) * 12
		}

		adjusted := annual * (1 + e.policy.UtilityEscalation)
		rule := model.RuleUtilityEsc
		rationale := fmt.Sprintf("actual %s %s escalated %s",
			cat, common.FormatMoney(annual), common.FormatPercent(e.policy.UtilityEscalation))
		if suppressed > 0 {
			rule = model.RuleUtilitySpike
			rationale = fmt.Sprintf("%d spiking month(s) replaced by the window median, annualized to %s, escalated %s",
				suppressed, common.FormatMoney(annual), common.FormatPercent(e.policy.UtilityEscalation))
		}

		adjustments = append(adjustments, model.LineItemAdjustment{
			Category:  cat,
			Raw:       raw,
			Adjusted:  adjusted,
			Rule:      rule,
			Rationale: rationale,
		})
	}
	return adjustments
}

func (e *ExpenseEngine) repairsMaintenance(fin *model.TrailingPeriodFinancials, unitCount, ageYears int) model.LineItemAdjustment {
	raw := fin.Amount(model.CategoryRepairs)
	perUnit := e.policy.RMPerUnitMin(ageYears)
	minimum := perUnit * float64(unitCount)

	if raw >= minimum {
		return model.LineItemAdjustment{
			Category:  model.CategoryRepairs,
			Raw:       raw,
			Adjusted:  raw,
			Rule:      model.RuleActualsKept,
			Rationale: fmt.Sprintf("actual R&M %s meets the age-based minimum %s", common.FormatMoney(raw), common.FormatMoney(minimum)),
		}
	}

	low, high := e.policy.RMBracketBounds(ageYears)
	bracket := fmt.Sprintf("[%d,%d)", low, high)
	if high < 0 {
		bracket = fmt.Sprintf("[%d,∞)", low)
	}
	return model.LineItemAdjustment{
		Category: model.CategoryRepairs,
		Raw:      raw,
		Adjusted: minimum,
		Rule:     model.RuleAgeMinimum,
		Rationale: fmt.Sprintf("age-based R&M minimum: %s/unit × %d units, %d-year property bracket %s",
			common.FormatMoney(perUnit), unitCount, ageYears, bracket),
	}
}

func (e *ExpenseEngine) managementFee(gpi float64) model.LineItemAdjustment {
	rate := e.policy.ManagementFeeRate(gpi)
	adjusted := gpi * rate
	return model.LineItemAdjustment{
		Category: model.CategoryManagement,
		Raw:      0,
		Adjusted: adjusted,
		Rule:     model.RuleManagementTier,
		Rationale: fmt.Sprintf("%s rate applied to gross income of %s",
			common.FormatPercent(rate), common.FormatMoney(gpi)),
	}
}

func (e *ExpenseEngine) payroll(fin *model.TrailingPeriodFinancials, unitCount int) model.LineItemAdjustment {
	raw := fin.Amount(model.CategoryPayroll)
	minimum := e.policy.PayrollPerUnitMin * float64(unitCount)

	if raw >= minimum {
		return model.LineItemAdjustment{
			Category:  model.CategoryPayroll,
			Raw:       raw,
			Adjusted:  raw,
			Rule:      model.RuleActualsKept,
			Rationale: fmt.Sprintf("actual payroll %s meets the per-unit minimum %s", common.FormatMoney(raw), common.FormatMoney(minimum)),
		}
	}
	return model.LineItemAdjustment{
		Category: model.CategoryPayroll,
		Raw:      raw,
		Adjusted: minimum,
		Rule:     model.RulePayrollMinimum,
		Rationale: fmt.Sprintf("payroll minimum: %s/unit × %d units",
			common.FormatMoney(e.policy.PayrollPerUnitMin), unitCount),
	}
}

func (e *ExpenseEngine) adminFees(fin *model.TrailingPeriodFinancials, unitCount int) model.LineItemAdjustment {
	raw := fin.Amount(model.CategoryAdmin)
	ceiling := e.policy.AdminPerUnitCap * float64(unitCount)

	switch {
	case raw < e.policy.AdminMin:
		return model.LineItemAdjustment{
			Category:  model.CategoryAdmin,
			Raw:       raw,
			Adjusted:  e.policy.AdminMin,
			Rule:      model.RuleAdminRange,
			Rationale: fmt.Sprintf("raised to the %s administrative minimum", common.FormatMoney(e.policy.AdminMin)),
		}
	case raw > ceiling:
		return model.LineItemAdjustment{
			Category: model.CategoryAdmin,
			Raw:      raw,
			Adjusted: ceiling,
			Rule:     model.RuleAdminRange,
			Rationale: fmt.Sprintf("capped at %s/unit × %d units",
				common.FormatMoney(e.policy.AdminPerUnitCap), unitCount),
		}
	default:
		return model.LineItemAdjustment{
			Category:  model.CategoryAdmin,
			Raw:       raw,
			Adjusted:  raw,
			Rule:      model.RuleActualsKept,
			Rationale: "actual administrative fees within the permitted range",
		}
	}
}

func (e *ExpenseEngine) reserves(unitCount int) model.LineItemAdjustment {
	adjusted := e.policy.ReservePerUnit * float64(unitCount)
	return model.LineItemAdjustment{
		Category: model.CategoryReserves,
		Raw:      0,
		Adjusted: adjusted,
		Rule:     model.RuleReservePerUnit,
		Rationale: fmt.Sprintf("replacement reserves: %s/unit × %d units",
			common.FormatMoney(e.policy.ReservePerUnit), unitCount),
	}
}

// floorScalable reports whether a category may be scaled up by the ratio
// floor pass. Minimum- and tier-driven categories are excluded so the floor
// never double-counts a rule that already raised the figure.
func floorScalable(cat model.Category) bool {
	switch cat {
	case model.CategoryPropertyTax, model.CategoryInsurance:
		return true
	}
	for _, u := range model.UtilityCategories {
		if cat == u {
			return true
		}
	}
	return false
}

func (e *ExpenseEngine) applyRatioFloor(adjustments []model.LineItemAdjustment, egi float64) ([]model.LineItemAdjustment, error) {
	if egi <= 0 {
		return adjustments, nil
	}

	scalable, fixed := 0.0, 0.0
	for _, adj := range adjustments {
		if floorScalable(adj.Category) {
			scalable += adj.Adjusted
		} else {
			fixed += adj.Adjusted
		}
	}

	total := scalable + fixed
	required := e.policy.MinExpenseRatio * egi
	if total >= required {
		return adjustments, nil
	}

	achievable := (scalable*e.policy.FloorScaleLimit + fixed) / egi
	if scalable <= 0 || achievable < e.policy.MinExpenseRatio {
		return nil, &common.UnreconcilableRatioError{
			Required:   e.policy.MinExpenseRatio,
			Achievable: achievable,
		}
	}

	scale := (required - fixed) / scalable
	for i := range adjustments {
		if !floorScalable(adjustments[i].Category) {
			continue
		}
		preFloor := adjustments[i].Adjusted
		adjustments[i].Adjusted = preFloor * scale
		adjustments[i].Rule = adjustments[i].Rule + "+" + model.RuleExpenseFloor
		adjustments[i].Rationale = fmt.Sprintf("%s; scaled ×%.3f from %s to meet the %s minimum expense ratio",
			adjustments[i].Rationale, scale, common.FormatMoney(preFloor), common.FormatPercent(e.policy.MinExpenseRatio))
	}

	return adjustments, nil
}

// suppressSpikes replaces any value above multiple×median with the median
// and reports how many values were replaced.
func suppressSpikes(series []float64, multiple float64) ([]float64, int) {
	med := median(series)
	cleaned := make([]float64, len(series))
	replaced := 0
	for i, v := range series {
		if med > 0 && v > med*multiple {
			cleaned[i] = med
			replaced++
		} else {
			cleaned[i] = v
		}
	}
	return cleaned, replaced
}

func median(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// totalAdjusted sums the adjusted side of a set of line items.
func totalAdjusted(adjustments []model.LineItemAdjustment) float64 {
	total := 0.0
	for _, adj := range adjustments {
		total += adj.Adjusted
	}
	return total
}
