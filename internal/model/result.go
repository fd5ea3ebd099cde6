package model

// IncomeStatement is the income side of an underwriting run.
type IncomeStatement struct {
	OtherIncome      map[Category]float64
	GPI              float64 // gross potential income, annual
	OtherIncomeTotal float64
	VacancyLoss      float64
	EGI              float64 // effective gross income, annual
}

// PerUnitFigures holds every statement line divided by unit count.
type PerUnitFigures struct {
	Expenses      map[Category]float64
	GPI           float64
	EGI           float64
	TotalExpenses float64
	NOI           float64
}

// UnderwritingResult is the final, immutable output of an underwriting run.
// Every number a lender-facing report needs is present; nothing has to be
// re-derived downstream.
type UnderwritingResult struct {
	OtherIncome   map[Category]float64
	PerUnit       PerUnitFigures
	CapRate       *float64 // nil when no property value was supplied
	Expenses      []LineItemAdjustment
	GPI           float64
	OtherTotal    float64
	VacancyLoss   float64
	EGI           float64
	TotalExpenses float64
	NOI           float64
	ExpenseRatio  float64
	NOIMargin     float64
	UnitCount     int
}

// ExpenseFor returns the adjustment for a category, if present.
func (r *UnderwritingResult) ExpenseFor(cat Category) (LineItemAdjustment, bool) {
	for _, adj := range r.Expenses {
		if adj.Category == cat {
			return adj, true
		}
	}
	return LineItemAdjustment{}, false
}
