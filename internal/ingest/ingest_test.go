package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonemark/underwrite/internal/model"
)

func TestReadRentRoll(t *testing.T) {
	input := `unit,type,sqft,rent,status,lease_end
101,1BR,650,"1,250.00",Occupied,2026-10-31
102,1BR,650,,Vacant,
103,2BR,"1,050",$1750,occupied,
`
	rows, err := ReadRentRoll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "101", rows[0].UnitID)
	assert.Equal(t, "1BR", rows[0].UnitType)
	assert.InDelta(t, 650, rows[0].SquareFeet, 0.001)
	assert.InDelta(t, 1250, rows[0].CurrentRent, 0.001)
	assert.Equal(t, model.Occupied, rows[0].Status)
	require.NotNil(t, rows[0].LeaseEnd)
	assert.Equal(t, "2026-10-31", rows[0].LeaseEnd.Format("2006-01-02"))

	assert.Equal(t, model.Vacant, rows[1].Status)
	assert.Zero(t, rows[1].CurrentRent)
	assert.Nil(t, rows[1].LeaseEnd)

	assert.InDelta(t, 1050, rows[2].SquareFeet, 0.001)
	assert.InDelta(t, 1750, rows[2].CurrentRent, 0.001)
	assert.Equal(t, model.Occupied, rows[2].Status, "status match is case-insensitive")
}

func TestReadRentRollColumnOrderIrrelevant(t *testing.T) {
	input := `status,rent,unit,type
Occupied,900,A1,studio
`
	rows, err := ReadRentRoll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0].UnitID)
	assert.InDelta(t, 900, rows[0].CurrentRent, 0.001)
}

func TestReadRentRollErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing required column", "unit,type,rent\n101,1BR,900\n"},
		{"unknown status", "unit,type,rent,status\n101,1BR,900,model\n"},
		{"bad rent", "unit,type,rent,status\n101,1BR,abc,Occupied\n"},
		{"bad lease date", "unit,type,rent,status,lease_end\n101,1BR,900,Occupied,10/31/2026\n"},
		{"empty roll", "unit,type,rent,status\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRentRoll(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestReadTrailingTwelveMonths(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("category,m1,m2,m3,m4,m5,m6,m7,m8,m9,m10,m11,m12\n")
	sb.WriteString("rental_income,100,100,100,100,100,100,100,100,100,100,100,100\n")
	sb.WriteString("vacancy_loss,(5),(5),(5),(5),(5),(5),(5),(5),(5),(5),(5),(5)\n")
	sb.WriteString("electricity,10,10,10,10,10,10,10,10,10,10,10,50\n")
	sb.WriteString("depreciation,1,1,1,1,1,1,1,1,1,1,1,1\n")

	statement, err := ReadTrailing(strings.NewReader(sb.String()))
	require.NoError(t, err)

	assert.Equal(t, model.WindowT12, statement.Window)
	assert.Equal(t, 12, statement.CoverageMonths)
	assert.InDelta(t, 1200, statement.Totals[model.CategoryRentalIncome], 0.001)
	assert.InDelta(t, -60, statement.Totals[model.CategoryVacancyLoss], 0.001)
	assert.InDelta(t, 160, statement.Totals[model.CategoryElectricity], 0.001)
	assert.Len(t, statement.Monthly[model.CategoryElectricity], 12)
	assert.InDelta(t, 50, statement.Monthly[model.CategoryElectricity][11], 0.001)

	_, hasUnknown := statement.Totals[model.Category("depreciation")]
	assert.False(t, hasUnknown, "unrecognized lines are skipped")
}

func TestReadTrailingWindowFromColumnCount(t *testing.T) {
	statement, err := ReadTrailing(strings.NewReader("category,m1,m2,m3\nrental_income,10,10,10\n"))
	require.NoError(t, err)
	assert.Equal(t, model.WindowT3, statement.Window)

	statement, err = ReadTrailing(strings.NewReader("category,m1,m2,m3,m4,m5,m6\nrental_income,10,10,10,10,10,10\n"))
	require.NoError(t, err)
	assert.Equal(t, model.WindowT6, statement.Window)
}

func TestReadTrailingErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unsupported window", "category,m1,m2\nrental_income,10,10\n"},
		{"no recognized categories", "category,m1,m2,m3\ndepreciation,1,1,1\n"},
		{"bad amount", "category,m1,m2,m3\nrental_income,10,x,10\n"},
		{"negative expense", "category,m1,m2,m3\ninsurance,10,-5,10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTrailing(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestParseAmountForms(t *testing.T) {
	for input, want := range map[string]float64{
		"1234":      1234,
		"1,234.50":  1234.5,
		"$99":       99,
		"(500)":     -500,
		"-42":       -42,
		"($1,000)":  -1000,
	} {
		got, err := parseAmount(input)
		require.NoError(t, err, input)
		assert.InDelta(t, want, got, 0.001, input)
	}
}
