package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stonemark/underwrite/internal/cli"
	"github.com/stonemark/underwrite/internal/engine"
)

func analyzeCmd() *cobra.Command {
	var flags propertyFlags
	var noSave, showAudit bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Underwrite a single property",
		Long: `Underwrite a single property from its rent roll and trailing statements.

The T12 statement is mandatory; T3 and T6 are optional and considered for
trend selection. The run is saved to the local database unless --no-save
is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPolicy()
			if err != nil {
				return err
			}

			in, err := buildRunInput(flags)
			if err != nil {
				return err
			}

			result, err := engine.NewUnderwriter(p).Run(in)
			if err != nil {
				return err
			}

			cmd.Println(cli.RenderResult(flags.name, result))
			if showAudit {
				cmd.Println(cli.RenderAuditTrail(result))
			}

			if noSave {
				return nil
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := store.SaveRun(cmd.Context(), flags.name, flags.age, flags.refinance, result)
			if err != nil {
				return fmt.Errorf("failed to save run: %w", err)
			}
			cmd.Println(cli.SubtleStyle.Render(fmt.Sprintf("Saved as run %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.name, "property", "", "property name")
	cmd.Flags().StringVar(&flags.rentRoll, "rent-roll", "", "rent roll CSV")
	cmd.Flags().StringVar(&flags.t3, "t3", "", "trailing 3-month statement CSV")
	cmd.Flags().StringVar(&flags.t6, "t6", "", "trailing 6-month statement CSV")
	cmd.Flags().StringVar(&flags.t12, "t12", "", "trailing 12-month statement CSV (required)")
	cmd.Flags().Float64Var(&flags.value, "value", 0, "property value for cap rate")
	cmd.Flags().IntVar(&flags.age, "age", 0, "property age in years")
	cmd.Flags().BoolVar(&flags.refinance, "refinance", false, "underwrite as a refinance")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")
	cmd.Flags().BoolVar(&showAudit, "audit", false, "show the adjustment audit trail")
	_ = cmd.MarkFlagRequired("property")
	_ = cmd.MarkFlagRequired("rent-roll")
	_ = cmd.MarkFlagRequired("t12")

	return cmd
}
