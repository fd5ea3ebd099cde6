package model

// LineItemAdjustment records one expense category's journey through the
// rules engine: the raw figure from the trailing statement, the adjusted
// figure, and the rule that produced it. The sequence of adjustments forms
// the audit trail a lender reads to see what changed and why; it is never
// mutated after the run completes.
type LineItemAdjustment struct {
	Category  Category
	Rule      string
	Rationale string
	Raw       float64
	Adjusted  float64
}

// Rule names recorded on adjustments.
const (
	RuleTaxEscalation    = "tax-escalation"
	RuleTaxActuals       = "tax-actuals"
	RuleInsuranceEsc     = "insurance-escalation"
	RuleUtilityEsc       = "utility-escalation"
	RuleUtilitySpike     = "utility-spike-suppression"
	RuleAgeMinimum       = "age-based-minimum"
	RuleManagementTier   = "management-fee-tier"
	RulePayrollMinimum   = "payroll-per-unit-minimum"
	RuleAdminRange       = "admin-fee-range"
	RuleReservePerUnit   = "reserve-per-unit"
	RuleActualsKept      = "actuals-kept"
	RuleExpenseFloor     = "expense-ratio-floor"
)
