package policy

import (
	"fmt"

	"github.com/spf13/viper"
)

// FromViper builds a Table from the "policy" section of the loaded
// configuration, falling back to the default rulebook for any key not set.
// The returned table is fully validated.
func FromViper(v *viper.Viper) (Table, error) {
	t := Default()

	setFloat(v, "policy.vacancy_floor", &t.VacancyFloor)
	setFloat(v, "policy.tax_escalation", &t.TaxEscalation)
	setFloat(v, "policy.insurance_escalation", &t.InsuranceEscalation)
	setFloat(v, "policy.utility_escalation", &t.UtilityEscalation)
	setFloat(v, "policy.utility_spike_multiple", &t.UtilitySpikeMultiple)
	setFloat(v, "policy.payroll_per_unit_min", &t.PayrollPerUnitMin)
	setFloat(v, "policy.admin_min", &t.AdminMin)
	setFloat(v, "policy.admin_per_unit_cap", &t.AdminPerUnitCap)
	setFloat(v, "policy.reserve_per_unit", &t.ReservePerUnit)
	setFloat(v, "policy.min_expense_ratio", &t.MinExpenseRatio)
	setFloat(v, "policy.trend_tolerance", &t.TrendTolerance)
	setFloat(v, "policy.underpriced_threshold", &t.UnderpricedThreshold)
	setFloat(v, "policy.floor_scale_limit", &t.FloorScaleLimit)

	if v.IsSet("policy.rm_brackets") {
		var brackets []AgeBracket
		raw := v.Get("policy.rm_brackets")
		entries, ok := raw.([]any)
		if !ok {
			return Table{}, fmt.Errorf("policy.rm_brackets must be a list, got %T", raw)
		}
		for i, entry := range entries {
			m, ok := entry.(map[string]any)
			if !ok {
				return Table{}, fmt.Errorf("policy.rm_brackets[%d] must be a mapping, got %T", i, entry)
			}
			brackets = append(brackets, AgeBracket{
				Floor:      toInt(m["floor"]),
				PerUnitMin: toFloat(m["per_unit_min"]),
			})
		}
		t.RMBrackets = brackets
	}

	if v.IsSet("policy.fee_tiers") {
		var tiers []FeeTier
		raw := v.Get("policy.fee_tiers")
		entries, ok := raw.([]any)
		if !ok {
			return Table{}, fmt.Errorf("policy.fee_tiers must be a list, got %T", raw)
		}
		for i, entry := range entries {
			m, ok := entry.(map[string]any)
			if !ok {
				return Table{}, fmt.Errorf("policy.fee_tiers[%d] must be a mapping, got %T", i, entry)
			}
			tiers = append(tiers, FeeTier{
				Floor: toFloat(m["floor"]),
				Rate:  toFloat(m["rate"]),
			})
		}
		t.FeeTiers = tiers
	}

	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func setFloat(v *viper.Viper, key string, dst *float64) {
	if v.IsSet(key) {
		*dst = v.GetFloat64(key)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
