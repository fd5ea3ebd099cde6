package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/config"
	"github.com/stonemark/underwrite/internal/engine"
	"github.com/stonemark/underwrite/internal/ingest"
	"github.com/stonemark/underwrite/internal/model"
	"github.com/stonemark/underwrite/internal/policy"
	"github.com/stonemark/underwrite/internal/service"
	"github.com/stonemark/underwrite/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/underwrite/underwrite.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("could not open the runs database", err)
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadPolicy builds the policy table from configuration overlaid on the
// default rulebook.
func loadPolicy() (policy.Table, error) {
	return policy.FromViper(viper.GetViper())
}

// propertyFlags are the per-property inputs shared by analyze and batch.
type propertyFlags struct {
	name      string
	rentRoll  string
	t3        string
	t6        string
	t12       string
	value     float64
	age       int
	refinance bool
}

// buildRunInput reads the property's files and assembles a run input.
func buildRunInput(flags propertyFlags) (engine.RunInput, error) {
	rows, err := ingest.ReadRentRollFile(config.ExpandPath(flags.rentRoll))
	if err != nil {
		return engine.RunInput{}, err
	}

	in := engine.RunInput{
		PropertyName: flags.name,
		Rows:         rows,
		AgeYears:     flags.age,
		IsRefinance:  flags.refinance,
	}
	if flags.value > 0 {
		value := flags.value
		in.PropertyValue = &value
	}

	load := func(path string, want model.TrailingWindow) (*model.TrailingPeriodFinancials, error) {
		if path == "" {
			return nil, nil
		}
		statement, err := ingest.ReadTrailingFile(config.ExpandPath(path))
		if err != nil {
			return nil, err
		}
		if statement.Window != want {
			return nil, fmt.Errorf("%s: expected a %s statement, got %s", path, want, statement.Window)
		}
		return statement, nil
	}

	if in.T3, err = load(flags.t3, model.WindowT3); err != nil {
		return engine.RunInput{}, err
	}
	if in.T6, err = load(flags.t6, model.WindowT6); err != nil {
		return engine.RunInput{}, err
	}
	if in.T12, err = load(flags.t12, model.WindowT12); err != nil {
		return engine.RunInput{}, err
	}

	return in, nil
}
