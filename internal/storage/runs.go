package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
	"github.com/stonemark/underwrite/internal/service"
)

// SaveRun persists an underwriting result and its full audit trail in a
// single transaction. Returns the new run's id.
func (s *SQLiteStorage) SaveRun(ctx context.Context, propertyName string, ageYears int, isRefinance bool, result *model.UnderwritingResult) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(propertyName, "propertyName"); err != nil {
		return 0, err
	}
	if result == nil {
		return 0, fmt.Errorf("%w: result", ErrNilParameter)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var capRate sql.NullFloat64
	if result.CapRate != nil {
		capRate = sql.NullFloat64{Float64: *result.CapRate, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (property_name, unit_count, property_age, refinance,
			gpi, other_income, vacancy_loss, egi, total_expenses, noi,
			expense_ratio, noi_margin, cap_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		propertyName, result.UnitCount, ageYears, isRefinance,
		result.GPI, result.OtherTotal, result.VacancyLoss, result.EGI,
		result.TotalExpenses, result.NOI,
		result.ExpenseRatio, result.NOIMargin, capRate)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for i, adj := range result.Expenses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO adjustments (run_id, position, category, raw, adjusted, rule, rationale)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, i, string(adj.Category), adj.Raw, adj.Adjusted, adj.Rule, adj.Rationale); err != nil {
			return 0, fmt.Errorf("failed to insert adjustment %s: %w", adj.Category, err)
		}
	}

	for _, cat := range model.OtherIncomeCategories {
		amount, ok := result.OtherIncome[cat]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO income_lines (run_id, category, amount)
			VALUES (?, ?, ?)`,
			runID, string(cat), amount); err != nil {
			return 0, fmt.Errorf("failed to insert income line %s: %w", cat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// GetRun rehydrates a saved run, including every expense adjustment and
// income line, so the report can be re-rendered exactly.
func (s *SQLiteStorage) GetRun(ctx context.Context, id int64) (*service.SavedRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	run := &service.SavedRun{ID: id}
	result := &model.UnderwritingResult{
		OtherIncome: make(map[model.Category]float64),
	}

	var capRate sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at, property_name, unit_count, property_age, refinance,
			gpi, other_income, vacancy_loss, egi, total_expenses, noi,
			expense_ratio, noi_margin, cap_rate
		FROM runs WHERE id = ?`, id).Scan(
		&run.CreatedAt, &run.PropertyName, &result.UnitCount, &run.AgeYears, &run.IsRefinance,
		&result.GPI, &result.OtherTotal, &result.VacancyLoss, &result.EGI,
		&result.TotalExpenses, &result.NOI,
		&result.ExpenseRatio, &result.NOIMargin, &capRate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}
	if capRate.Valid {
		result.CapRate = &capRate.Float64
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, raw, adjusted, rule, rationale
		FROM adjustments WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjustments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var adj model.LineItemAdjustment
		var category string
		if err := rows.Scan(&category, &adj.Raw, &adj.Adjusted, &adj.Rule, &adj.Rationale); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adj.Category = model.Category(category)
		result.Expenses = append(result.Expenses, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate adjustments: %w", err)
	}

	incomeRows, err := s.db.QueryContext(ctx, `
		SELECT category, amount FROM income_lines WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load income lines: %w", err)
	}
	defer func() { _ = incomeRows.Close() }()

	for incomeRows.Next() {
		var category string
		var amount float64
		if err := incomeRows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan income line: %w", err)
		}
		result.OtherIncome[model.Category(category)] = amount
	}
	if err := incomeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate income lines: %w", err)
	}

	result.PerUnit = perUnit(result)
	run.Result = result
	return run, nil
}

// ListRuns returns summaries of all saved runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context) ([]service.RunSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, property_name, unit_count, egi, noi, expense_ratio
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []service.RunSummary
	for rows.Next() {
		var summary service.RunSummary
		if err := rows.Scan(&summary.ID, &summary.CreatedAt, &summary.PropertyName,
			&summary.UnitCount, &summary.EGI, &summary.NOI, &summary.ExpenseRatio); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return summaries, nil
}

// DeleteRun removes a run and its dependent rows.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func perUnit(result *model.UnderwritingResult) model.PerUnitFigures {
	figures := model.PerUnitFigures{
		Expenses: make(map[model.Category]float64, len(result.Expenses)),
	}
	if result.UnitCount == 0 {
		return figures
	}
	units := float64(result.UnitCount)
	figures.GPI = result.GPI / units
	figures.EGI = result.EGI / units
	figures.TotalExpenses = result.TotalExpenses / units
	figures.NOI = result.NOI / units
	for _, adj := range result.Expenses {
		figures.Expenses[adj.Category] = adj.Adjusted / units
	}
	return figures
}
