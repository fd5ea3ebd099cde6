// Package trend chooses which trailing statement window best represents a
// property's stabilized performance. T12 is the default; a shorter window is
// preferred only when rental income is trending up by more than the policy
// tolerance, so a few strong recent months never inflate the underwriting
// by accident.
package trend

import (
	"log/slog"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
)

// Selector picks a trailing window using a configured tolerance.
type Selector struct {
	tolerance float64
}

// New creates a selector. The tolerance is the fractional excess of the
// shortest window's annualized rental income over T12 required to prefer
// the shorter window (0.03 means "more than 3% above T12").
func New(tolerance float64) *Selector {
	return &Selector{tolerance: tolerance}
}

// Select returns the chosen window with every total annualized. T12 is
// mandatory; T3 and T6 are optional accelerants. The shortest available
// window wins only when the month-over-month slope of annualized rental
// income is positive and the shortest window exceeds T12 by more than the
// tolerance.
func (s *Selector) Select(t3, t6, t12 *model.TrailingPeriodFinancials) (*model.TrailingPeriodFinancials, error) {
	if t12 == nil {
		return nil, &common.InsufficientDataError{Reason: "trailing 12-month statement is required"}
	}
	if err := t12.Validate(); err != nil {
		return nil, err
	}

	// Longest to shortest; index 0 is always T12.
	windows := []*model.TrailingPeriodFinancials{t12}
	for _, w := range []*model.TrailingPeriodFinancials{t6, t3} {
		if w == nil {
			continue
		}
		if err := w.Validate(); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	if len(windows) == 1 {
		return t12.AnnualizedAll(), nil
	}

	t12Income := t12.Annualized(model.CategoryRentalIncome)
	shortest := windows[len(windows)-1]
	shortIncome := shortest.Annualized(model.CategoryRentalIncome)

	if slope(windows) > 0 && t12Income > 0 && shortIncome > t12Income*(1+s.tolerance) {
		slog.Debug("selected short trailing window on upward trend",
			"window", shortest.Window,
			"annualized_income", shortIncome,
			"t12_annualized_income", t12Income)
		return shortest.AnnualizedAll(), nil
	}

	return t12.AnnualizedAll(), nil
}

// slope is the month-over-month change in annualized rental income across
// the available windows, from the longest window to the shortest. Windows
// are ordered longest-first, so a shorter (more recent) window with higher
// annualized income produces a positive slope.
func slope(windows []*model.TrailingPeriodFinancials) float64 {
	first, last := windows[0], windows[len(windows)-1]
	monthSpan := first.CoverageMonths - last.CoverageMonths
	if monthSpan <= 0 {
		return 0
	}
	rise := last.Annualized(model.CategoryRentalIncome) - first.Annualized(model.CategoryRentalIncome)
	return rise / float64(monthSpan)
}
