package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/config"
	"github.com/stonemark/underwrite/internal/engine"
	"github.com/stonemark/underwrite/internal/service"
)

func batchCmd() *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "batch <manifest.csv>",
		Short: "Underwrite every property in a manifest",
		Long: `Underwrite every property listed in a manifest CSV.

Manifest columns: property, rent_roll, t12 (required); t3, t6, value, age,
refinance (optional). File paths are resolved relative to the working
directory. Failures are reported per property; the batch continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPolicy()
			if err != nil {
				return err
			}

			entries, err := readManifest(config.ExpandPath(args[0]))
			if err != nil {
				return err
			}

			var store service.Storage
			if !noSave {
				store, err = initStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
			}

			bar := progressbar.NewOptions(len(entries),
				progressbar.OptionSetDescription("Underwriting"),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			u := engine.NewUnderwriter(p)
			failures := 0
			for _, entry := range entries {
				if err := runOne(cmd.Context(), u, store, entry); err != nil {
					failures++
					common.LogError(err, "property failed", common.Fields{
						"property": entry.name,
					})
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			cmd.Printf("%d underwritten, %d failed\n", len(entries)-failures, failures)
			if failures > 0 {
				return fmt.Errorf("%d of %d properties failed", failures, len(entries))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the runs")
	return cmd
}

func runOne(ctx context.Context, u *engine.Underwriter, store service.Storage, entry propertyFlags) error {
	in, err := buildRunInput(entry)
	if err != nil {
		return err
	}

	result, err := u.Run(in)
	if err != nil {
		return err
	}

	common.LogInfo("property underwritten", common.Fields{
		"property":      entry.name,
		"egi":           result.EGI,
		"noi":           result.NOI,
		"expense_ratio": result.ExpenseRatio,
	})

	if store == nil {
		return nil
	}
	_, err = store.SaveRun(ctx, entry.name, entry.age, entry.refinance, result)
	return err
}

func readManifest(path string) ([]propertyFlags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"property", "rent_roll", "t12"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("manifest missing required column %q", required)
		}
	}

	get := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []propertyFlags
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", line, err)
		}

		entry := propertyFlags{
			name:     get(record, "property"),
			rentRoll: get(record, "rent_roll"),
			t3:       get(record, "t3"),
			t6:       get(record, "t6"),
			t12:      get(record, "t12"),
		}
		if raw := get(record, "value"); raw != "" {
			if entry.value, err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("manifest line %d: bad value: %w", line, err)
			}
		}
		if raw := get(record, "age"); raw != "" {
			if entry.age, err = strconv.Atoi(raw); err != nil {
				return nil, fmt.Errorf("manifest line %d: bad age: %w", line, err)
			}
		}
		if raw := get(record, "refinance"); raw != "" {
			if entry.refinance, err = strconv.ParseBool(raw); err != nil {
				return nil, fmt.Errorf("manifest line %d: bad refinance: %w", line, err)
			}
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("manifest contains no properties")
	}
	return entries, nil
}
