package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stonemark/underwrite/internal/cli"
	"github.com/stonemark/underwrite/internal/sizing"
)

func sizeCmd() *cobra.Command {
	var (
		noi      float64
		value    float64
		runID    int64
		term     string
		stepDown bool
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Size loan scenarios against an underwritten NOI",
		Long: `Size qualifying loan scenarios across agency, CMBS, and debt fund
programs. Provide --noi and --value directly, or --run to size a saved
underwriting run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runID > 0 {
				store, err := initStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				noi = run.Result.NOI
				if run.Result.CapRate != nil && *run.Result.CapRate > 0 {
					value = noi / *run.Result.CapRate
				}
			}
			if noi <= 0 {
				return fmt.Errorf("NOI is required: pass --noi or --run")
			}
			if value <= 0 {
				return fmt.Errorf("property value is required: pass --value, or --run with a saved cap rate")
			}

			treasuryTerm, err := parseTerm(term)
			if err != nil {
				return err
			}

			engine := sizing.New(sizing.DefaultCurve(), treasuryTerm)
			scenarios, err := engine.Scenarios(noi, value, stepDown)
			if err != nil {
				return err
			}
			if len(scenarios) == 0 {
				cmd.Println(cli.SubtleStyle.Render("No program can reach its minimum loan at this NOI and value."))
				return nil
			}

			cmd.Println(cli.RenderSizing(scenarios))
			return nil
		},
	}

	cmd.Flags().Float64Var(&noi, "noi", 0, "underwritten annual NOI")
	cmd.Flags().Float64Var(&value, "value", 0, "property value")
	cmd.Flags().Int64Var(&runID, "run", 0, "saved run id to size")
	cmd.Flags().StringVar(&term, "term", "10", "treasury term in years (5, 7, 10, 15, 20, 30)")
	cmd.Flags().BoolVar(&stepDown, "step-down", false, "price with step-down prepayment")

	return cmd
}

func parseTerm(s string) (sizing.TreasuryTerm, error) {
	years, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("invalid term %q", s)
	}
	switch years {
	case 5:
		return sizing.Term5Y, nil
	case 7:
		return sizing.Term7Y, nil
	case 10:
		return sizing.Term10Y, nil
	case 15:
		return sizing.Term15Y, nil
	case 20:
		return sizing.Term20Y, nil
	case 30:
		return sizing.Term30Y, nil
	default:
		return "", fmt.Errorf("unsupported term: %d years", years)
	}
}
