package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stonemark/underwrite/internal/cli"
	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/policy"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the active underwriting policy",
	}

	cmd.AddCommand(policyShowCmd())
	cmd.AddCommand(policyCheckCmd())

	return cmd
}

func policyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective policy table",
		Long:  `Show the policy table after configuration overrides are applied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPolicy()
			if err != nil {
				return err
			}
			cmd.Println(renderPolicy(p))
			return nil
		},
	}
}

func policyCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configured policy",
		Long:  `Validate the policy table built from configuration and report the first violation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadPolicy(); err != nil {
				var policyErr *common.InvalidPolicyError
				if errors.As(err, &policyErr) {
					cmd.Println(cli.ErrorStyle.Render(fmt.Sprintf("✗ %s", policyErr.Error())))
					return err
				}
				return err
			}
			cmd.Println(cli.SuccessStyle.Render("✓ policy is valid"))
			return nil
		},
	}
}

func renderPolicy(p policy.Table) string {
	var b strings.Builder

	b.WriteString(cli.TitleStyle.Render("Policy"))
	b.WriteString("\n")

	line := func(label, value string) {
		b.WriteString(fmt.Sprintf("%-28s%s\n", label, value))
	}

	line("Vacancy floor", common.FormatPercent(p.VacancyFloor))
	line("Tax escalation", common.FormatPercent(p.TaxEscalation))
	line("Insurance escalation", common.FormatPercent(p.InsuranceEscalation))
	line("Utility escalation", common.FormatPercent(p.UtilityEscalation))
	line("Utility spike multiple", fmt.Sprintf("%.1f× median", p.UtilitySpikeMultiple))
	line("Payroll minimum", fmt.Sprintf("%s/unit", common.FormatMoney(p.PayrollPerUnitMin)))
	line("Admin range", fmt.Sprintf("%s min, %s/unit cap",
		common.FormatMoney(p.AdminMin), common.FormatMoney(p.AdminPerUnitCap)))
	line("Reserves", fmt.Sprintf("%s/unit", common.FormatMoney(p.ReservePerUnit)))
	line("Minimum expense ratio", common.FormatPercent(p.MinExpenseRatio))
	line("Trend tolerance", common.FormatPercent(p.TrendTolerance))
	line("Underpriced threshold", common.FormatPercent(p.UnderpricedThreshold))

	b.WriteString("\n")
	b.WriteString(cli.BoldStyle.Render("R&M minimums by age"))
	b.WriteString("\n")
	for i, bracket := range p.RMBrackets {
		upper := "and up"
		if i+1 < len(p.RMBrackets) {
			upper = fmt.Sprintf("to %d", p.RMBrackets[i+1].Floor)
		}
		line(fmt.Sprintf("  %d %s years", bracket.Floor, upper),
			fmt.Sprintf("%s/unit", common.FormatMoney(bracket.PerUnitMin)))
	}

	b.WriteString("\n")
	b.WriteString(cli.BoldStyle.Render("Management fee tiers"))
	b.WriteString("\n")
	for _, tier := range p.FeeTiers {
		line(fmt.Sprintf("  EGI ≥ %s", common.FormatMoney(tier.Floor)),
			common.FormatPercent(tier.Rate))
	}

	return b.String()
}
