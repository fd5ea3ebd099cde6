package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/stonemark/underwrite/internal/model"
)

// knownCategories maps the category column's value to a model category.
// Statements often carry extra lines (e.g. depreciation) that underwriting
// ignores; unknown categories are skipped rather than rejected.
var knownCategories = map[string]model.Category{
	"rental_income":         model.CategoryRentalIncome,
	"late_fees":             model.CategoryLateFees,
	"pet_rent":              model.CategoryPetRent,
	"utility_reimbursement": model.CategoryUtilityReimb,
	"misc_income":           model.CategoryMiscIncome,
	"vacancy_loss":          model.CategoryVacancyLoss,
	"loss_to_lease":         model.CategoryLossToLease,
	"property_taxes":        model.CategoryPropertyTax,
	"insurance":             model.CategoryInsurance,
	"electricity":           model.CategoryElectricity,
	"water":                 model.CategoryWater,
	"sewer":                 model.CategorySewer,
	"trash":                 model.CategoryTrash,
	"repairs_maintenance":   model.CategoryRepairs,
	"management_fee":        model.CategoryManagement,
	"payroll":               model.CategoryPayroll,
	"admin_fees":            model.CategoryAdmin,
}

// ReadTrailingFile opens and parses a trailing statement CSV. The window is
// inferred from the number of monthly columns (3, 6, or 12).
func ReadTrailingFile(path string) (*model.TrailingPeriodFinancials, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trailing statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	statement, err := ReadTrailing(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return statement, nil
}

// ReadTrailing parses a trailing statement CSV from a reader. The first
// column is the category; every following column is one month's amount,
// oldest first.
func ReadTrailing(r io.Reader) (*model.TrailingPeriodFinancials, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("statement needs a category column and at least one month column")
	}

	months := len(header) - 1
	window, err := windowForMonths(months)
	if err != nil {
		return nil, err
	}

	statement := &model.TrailingPeriodFinancials{
		Window:         window,
		CoverageMonths: months,
		Totals:         make(map[model.Category]float64),
		Monthly:        make(map[model.Category][]float64),
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) != months+1 {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, months+1, len(record))
		}

		name := strings.ToLower(strings.TrimSpace(record[0]))
		cat, ok := knownCategories[name]
		if !ok {
			continue
		}

		series := make([]float64, 0, months)
		total := 0.0
		for i := 1; i <= months; i++ {
			amount, err := parseAmount(record[i])
			if err != nil {
				return nil, fmt.Errorf("line %d, %s month %d: %w", line, cat, i, err)
			}
			if amount < 0 && !cat.IsSignedDeduction() {
				return nil, fmt.Errorf("line %d, %s month %d: must not be negative, got %.2f", line, cat, i, amount)
			}
			series = append(series, amount)
			total += amount
		}

		statement.Totals[cat] = total
		statement.Monthly[cat] = series
	}

	if len(statement.Totals) == 0 {
		return nil, fmt.Errorf("statement contains no recognized categories")
	}
	if err := statement.Validate(); err != nil {
		return nil, err
	}
	return statement, nil
}

func windowForMonths(months int) (model.TrailingWindow, error) {
	switch months {
	case 3:
		return model.WindowT3, nil
	case 6:
		return model.WindowT6, nil
	case 12:
		return model.WindowT12, nil
	default:
		return "", fmt.Errorf("unsupported window: %d month columns (want 3, 6, or 12)", months)
	}
}
