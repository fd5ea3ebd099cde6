package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stonemark/underwrite/internal/cli"
	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/tui"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved underwriting runs",
	}

	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsShowCmd())
	cmd.AddCommand(runsBrowseCmd())
	cmd.AddCommand(runsDeleteCmd())

	return cmd
}

func runsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summaries, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				cmd.Println(cli.SubtleStyle.Render("No saved runs."))
				return nil
			}

			cmd.Printf("%-6s %-12s %-28s %6s %14s %14s %7s\n",
				"ID", "Date", "Property", "Units", "EGI", "NOI", "Exp %")
			for _, s := range summaries {
				cmd.Printf("%-6d %-12s %-28s %6d %14s %14s %7s\n",
					s.ID,
					s.CreatedAt.Format("2006-01-02"),
					s.PropertyName,
					s.UnitCount,
					common.FormatMoney(s.EGI),
					common.FormatMoney(s.NOI),
					common.FormatPercent(s.ExpenseRatio))
			}
			return nil
		},
	}
}

func runsShowCmd() *cobra.Command {
	var showAudit bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved run's full report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, err := store.GetRun(cmd.Context(), id)
			if err != nil {
				return err
			}

			cmd.Println(cli.RenderResult(run.PropertyName, run.Result))
			if showAudit {
				cmd.Println(cli.RenderAuditTrail(run.Result))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAudit, "audit", false, "show the adjustment audit trail")
	return cmd
}

func runsBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse saved runs interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summaries, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			selected, err := tui.Browse(summaries)
			if err != nil {
				return err
			}
			if selected == nil {
				return nil
			}

			run, err := store.GetRun(cmd.Context(), *selected)
			if err != nil {
				return err
			}
			cmd.Println(cli.RenderResult(run.PropertyName, run.Result))
			cmd.Println(cli.RenderAuditTrail(run.Result))
			return nil
		},
	}
}

func runsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRun(cmd.Context(), id); err != nil {
				return err
			}
			cmd.Printf("Deleted run %d\n", id)
			return nil
		},
	}
}
