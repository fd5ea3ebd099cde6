package cli

import (
	"fmt"
	"strings"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
	"github.com/stonemark/underwrite/internal/sizing"
)

const reportWidth = 58

// RenderResult renders the full underwriting report: income statement,
// expense schedule, bottom line, and per-unit figures.
func RenderResult(propertyName string, result *model.UnderwritingResult) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Underwriting — %s", propertyName)))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d units", result.UnitCount)))
	b.WriteString("\n\n")

	b.WriteString(BoldStyle.Render("Income"))
	b.WriteString("\n")
	writeLine(&b, "Gross Potential Income", result.GPI)
	for _, cat := range model.OtherIncomeCategories {
		if amount, ok := result.OtherIncome[cat]; ok {
			writeLine(&b, "  "+categoryLabel(cat), amount)
		}
	}
	writeLine(&b, "Vacancy Loss", -result.VacancyLoss)
	writeLine(&b, "Effective Gross Income", result.EGI)
	b.WriteString("\n")

	b.WriteString(BoldStyle.Render("Expenses"))
	b.WriteString("\n")
	for _, adj := range result.Expenses {
		writeLine(&b, "  "+categoryLabel(adj.Category), adj.Adjusted)
	}
	writeLine(&b, "Total Expenses", result.TotalExpenses)
	b.WriteString("\n")

	b.WriteString(BoldStyle.Render("Bottom line"))
	b.WriteString("\n")
	writeLine(&b, "Net Operating Income", result.NOI)
	writeRatio(&b, "Expense Ratio", result.ExpenseRatio)
	writeRatio(&b, "NOI Margin", result.NOIMargin)
	if result.CapRate != nil {
		writeRatio(&b, "Cap Rate", *result.CapRate)
	}
	b.WriteString("\n")

	b.WriteString(BoldStyle.Render("Per unit"))
	b.WriteString("\n")
	writeLine(&b, "GPI", result.PerUnit.GPI)
	writeLine(&b, "EGI", result.PerUnit.EGI)
	writeLine(&b, "Expenses", result.PerUnit.TotalExpenses)
	writeLine(&b, "NOI", result.PerUnit.NOI)

	return b.String()
}

// RenderAuditTrail renders the line-by-line adjustment record: what the
// rules engine changed and why.
func RenderAuditTrail(result *model.UnderwritingResult) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Adjustments"))
	b.WriteString("\n")

	for _, adj := range result.Expenses {
		delta := adj.Adjusted - adj.Raw
		line := fmt.Sprintf("%s: %s → %s",
			categoryLabel(adj.Category),
			common.FormatMoney(adj.Raw),
			common.FormatMoney(adj.Adjusted))
		switch {
		case delta > 0.005:
			b.WriteString(WarningStyle.Render(line))
		case delta < -0.005:
			b.WriteString(SuccessStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("  %s — %s", adj.Rule, adj.Rationale)))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSizing renders loan sizing scenarios as a compact table.
func RenderSizing(scenarios []sizing.Scenario) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Loan Scenarios"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-10s %-8s %12s %6s %6s %7s %7s  %s",
		"Program", "Tier", "Loan", "LTV", "DSCR", "DY", "Rate", "Binding")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for _, s := range scenarios {
		tier := s.TierName
		if tier == "" {
			tier = "-"
		}
		dscr := fmt.Sprintf("%.2f", s.DSCR)
		b.WriteString(fmt.Sprintf("%-10s %-8s %12s %5.1f%% %6s %6.1f%% %6.2f%%  %s\n",
			s.Program, tier,
			common.FormatMoney(s.LoanAmount),
			s.LTV*100, dscr, s.DebtYield*100, s.InterestRate,
			s.BindingConstraint))
	}

	return b.String()
}

func writeLine(b *strings.Builder, label string, amount float64) {
	value := common.FormatMoney(amount)
	b.WriteString(fmt.Sprintf("%-*s%s\n", reportWidth-len(value), label, value))
}

func writeRatio(b *strings.Builder, label string, ratio float64) {
	value := common.FormatPercent(ratio)
	b.WriteString(fmt.Sprintf("%-*s%s\n", reportWidth-len(value), label, value))
}

var categoryLabels = map[model.Category]string{
	model.CategoryRentalIncome: "Rental Income",
	model.CategoryLateFees:     "Late Fees",
	model.CategoryPetRent:      "Pet Rent",
	model.CategoryUtilityReimb: "Utility Reimbursement",
	model.CategoryMiscIncome:   "Misc Income",
	model.CategoryVacancyLoss:  "Vacancy Loss",
	model.CategoryLossToLease:  "Loss to Lease",
	model.CategoryPropertyTax:  "Property Taxes",
	model.CategoryInsurance:    "Insurance",
	model.CategoryElectricity:  "Electricity",
	model.CategoryWater:        "Water",
	model.CategorySewer:        "Sewer",
	model.CategoryTrash:        "Trash",
	model.CategoryRepairs:      "Repairs & Maintenance",
	model.CategoryManagement:   "Management Fee",
	model.CategoryPayroll:      "Payroll",
	model.CategoryAdmin:        "Admin Fees",
	model.CategoryReserves:     "Replacement Reserves",
}

func categoryLabel(cat model.Category) string {
	if label, ok := categoryLabels[cat]; ok {
		return label
	}
	return string(cat)
}
