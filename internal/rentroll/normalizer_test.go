package rentroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
)

func occupied(id, unitType string, rent float64) model.RentRollRow {
	return model.RentRollRow{UnitID: id, UnitType: unitType, Status: model.Occupied, CurrentRent: rent}
}

func vacant(id, unitType string) model.RentRollRow {
	return model.RentRollRow{UnitID: id, UnitType: unitType, Status: model.Vacant}
}

func TestNormalizeImputesGroupMean(t *testing.T) {
	n := New(0.30)

	roll, err := n.Normalize([]model.RentRollRow{
		occupied("101", "1BR", 1000),
		occupied("102", "1BR", 1200),
		vacant("103", "1BR"),
		occupied("201", "2BR", 1500),
	})
	require.NoError(t, err)
	require.Len(t, roll.Units, 4)

	assert.InDelta(t, 1000, roll.Units[0].EffectiveRent, 0.001)
	assert.InDelta(t, 1200, roll.Units[1].EffectiveRent, 0.001)
	assert.InDelta(t, 1100, roll.Units[2].EffectiveRent, 0.001, "vacant 1BR takes the 1BR occupied mean")
	assert.InDelta(t, 1500, roll.Units[3].EffectiveRent, 0.001)
}

func TestNormalizePropertyWideFallback(t *testing.T) {
	n := New(0.30)

	// No occupied studio exists, so the vacant studio falls back to the
	// property-wide occupied mean.
	roll, err := n.Normalize([]model.RentRollRow{
		occupied("101", "1BR", 900),
		occupied("102", "2BR", 1500),
		vacant("301", "STUDIO"),
	})
	require.NoError(t, err)

	assert.InDelta(t, 1200, roll.Units[2].EffectiveRent, 0.001)
}

func TestNormalizeSingleComparator(t *testing.T) {
	n := New(0.30)

	// All units vacant except one 2BR at $1,500: every vacant 2BR takes it.
	roll, err := n.Normalize([]model.RentRollRow{
		occupied("201", "2BR", 1500),
		vacant("202", "2BR"),
		vacant("203", "2BR"),
		vacant("204", "2BR"),
	})
	require.NoError(t, err)

	for _, u := range roll.Units[1:] {
		assert.InDelta(t, 1500, u.EffectiveRent, 0.001, "unit %s", u.UnitID)
	}
}

func TestNormalizeAllVacant(t *testing.T) {
	n := New(0.30)

	_, err := n.Normalize([]model.RentRollRow{
		vacant("101", "1BR"),
		vacant("102", "1BR"),
	})
	require.Error(t, err)

	var insufficientErr *common.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
}

func TestNormalizeEmptyRoll(t *testing.T) {
	n := New(0.30)

	_, err := n.Normalize(nil)
	var insufficientErr *common.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
}

func TestNormalizeRejectsInvalidRow(t *testing.T) {
	n := New(0.30)

	_, err := n.Normalize([]model.RentRollRow{
		{UnitID: "101", UnitType: "1BR", Status: model.Occupied, CurrentRent: -50},
	})
	require.Error(t, err)
}

func TestUnderpricedFlag(t *testing.T) {
	n := New(0.30)

	// Group mean of occupied 1BRs: (1000+1000+1000+520)/4 = 880.
	// Threshold: 880 * 0.70 = 616. The $520 unit is flagged.
	roll, err := n.Normalize([]model.RentRollRow{
		occupied("101", "1BR", 1000),
		occupied("102", "1BR", 1000),
		occupied("103", "1BR", 1000),
		occupied("104", "1BR", 520),
		vacant("105", "1BR"),
	})
	require.NoError(t, err)

	flagged := roll.UnderpricedUnits()
	require.Len(t, flagged, 1)
	assert.Equal(t, "104", flagged[0].UnitID)

	// Vacant units are never flagged, even though their imputed rent is
	// below nothing in particular.
	assert.False(t, roll.Units[4].Underpriced)
}

func TestUnderpricedBoundaryNotFlagged(t *testing.T) {
	n := New(0.30)

	// Exactly 30% under the mean is not "more than 30% under".
	// Mean of (1000, 1000, 850): 950; threshold 665.
	roll, err := n.Normalize([]model.RentRollRow{
		occupied("101", "1BR", 1000),
		occupied("102", "1BR", 1000),
		occupied("103", "1BR", 850),
	})
	require.NoError(t, err)
	assert.Empty(t, roll.UnderpricedUnits())
}

func TestEffectiveRentNeverBelowStated(t *testing.T) {
	n := New(0.30)

	rows := []model.RentRollRow{
		occupied("101", "1BR", 950),
		occupied("102", "1BR", 1050),
		vacant("103", "1BR"),
		occupied("201", "2BR", 1400),
		vacant("202", "2BR"),
	}

	roll, err := n.Normalize(rows)
	require.NoError(t, err)

	statedOccupied := 0.0
	for _, r := range rows {
		if r.Status == model.Occupied {
			statedOccupied += r.CurrentRent
		}
	}
	assert.GreaterOrEqual(t, roll.MonthlyEffectiveRent(), statedOccupied,
		"vacant-unit imputation must never subtract value")
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New(0.30)

	rows := []model.RentRollRow{
		occupied("101", "1BR", 950),
		vacant("102", "1BR"),
		occupied("201", "2BR", 1400),
		vacant("202", "2BR"),
	}

	first, err := n.Normalize(rows)
	require.NoError(t, err)
	second, err := n.Normalize(rows)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTypeStats(t *testing.T) {
	n := New(0.30)

	roll, err := n.Normalize([]model.RentRollRow{
		{UnitID: "101", UnitType: "1BR", Status: model.Occupied, CurrentRent: 1000, SquareFeet: 700},
		{UnitID: "102", UnitType: "1BR", Status: model.Occupied, CurrentRent: 1100, SquareFeet: 720},
		{UnitID: "103", UnitType: "1BR", Status: model.Vacant, SquareFeet: 710},
	})
	require.NoError(t, err)

	stats, ok := roll.TypeStats["1BR"]
	require.True(t, ok)
	assert.Equal(t, 3, stats.Units)
	assert.Equal(t, 2, stats.OccupiedUnits)
	assert.InDelta(t, 1050, stats.AvgRent, 0.001)
	assert.InDelta(t, 710, stats.AvgSquareFeet, 0.001)
	assert.InDelta(t, 1050.0/710.0, stats.RentPerSquareFt, 0.0001)
	assert.InDelta(t, 1.0/3.0, stats.VacancyRate, 0.0001)

	assert.InDelta(t, 2.0/3.0, roll.OccupancyRate(), 0.0001)
}
