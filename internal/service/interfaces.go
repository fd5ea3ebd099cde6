// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/stonemark/underwrite/internal/model"
)

// RunSummary is the listing view of a persisted underwriting run.
type RunSummary struct {
	CreatedAt    time.Time
	PropertyName string
	ID           int64
	UnitCount    int
	EGI          float64
	NOI          float64
	ExpenseRatio float64
}

// SavedRun is a fully rehydrated underwriting run, sufficient to re-render
// the line-by-line report without re-deriving any number.
type SavedRun struct {
	CreatedAt    time.Time
	Result       *model.UnderwritingResult
	PropertyName string
	ID           int64
	AgeYears     int
	IsRefinance  bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Run operations
	SaveRun(ctx context.Context, propertyName string, ageYears int, isRefinance bool, result *model.UnderwritingResult) (int64, error)
	GetRun(ctx context.Context, id int64) (*SavedRun, error)
	ListRuns(ctx context.Context) ([]RunSummary, error)
	DeleteRun(ctx context.Context, id int64) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
