// Package rentroll normalizes raw unit-level rent rosters: vacant units get
// an imputed effective rent from comparable occupied units, and units priced
// materially under their type average are flagged for review.
package rentroll

import (
	"fmt"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
)

// Normalizer cleans rent rolls against a configured underpriced threshold.
type Normalizer struct {
	underpricedThreshold float64
}

// New creates a normalizer. The threshold is the fraction under the type
// average at which an occupied unit is flagged (0.30 flags units at least
// 30% under market for their type).
func New(underpricedThreshold float64) *Normalizer {
	return &Normalizer{underpricedThreshold: underpricedThreshold}
}

// Normalize resolves an effective rent for every unit. Occupied units keep
// their stated rent. Vacant units take the mean occupied rent of their
// unit-type group, falling back to the property-wide occupied mean when the
// group has no occupied comparator. Returns InsufficientDataError when the
// entire roster has no occupied units to impute from.
//
// The result is deterministic: input order is preserved and no I/O occurs.
func (n *Normalizer) Normalize(rows []model.RentRollRow) (*model.NormalizedRentRoll, error) {
	if len(rows) == 0 {
		return nil, &common.InsufficientDataError{Reason: "rent roll is empty"}
	}
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return nil, fmt.Errorf("rent roll row %d: %w", i, err)
		}
	}

	groups := groupByType(rows)

	propertySum, propertyCount := 0.0, 0
	groupMeans := make(map[string]float64, len(groups))
	for unitType, units := range groups {
		sum, count := 0.0, 0
		for _, u := range units {
			if u.Status == model.Occupied {
				sum += u.CurrentRent
				count++
			}
		}
		if count > 0 {
			groupMeans[unitType] = sum / float64(count)
		}
		propertySum += sum
		propertyCount += count
	}

	if propertyCount == 0 {
		return nil, &common.InsufficientDataError{Reason: "rent roll has no occupied units to impute vacant rents from"}
	}
	propertyMean := propertySum / float64(propertyCount)

	roll := &model.NormalizedRentRoll{
		Units:     make([]model.NormalizedUnit, 0, len(rows)),
		TypeStats: make(map[string]model.UnitTypeStats, len(groups)),
	}

	for _, row := range rows {
		unit := model.NormalizedUnit{RentRollRow: row}

		if row.Status == model.Occupied {
			unit.EffectiveRent = row.CurrentRent
			if mean, ok := groupMeans[row.UnitType]; ok && mean > 0 {
				unit.Underpriced = row.CurrentRent < mean*(1-n.underpricedThreshold)
			}
		} else if mean, ok := groupMeans[row.UnitType]; ok {
			unit.EffectiveRent = mean
		} else {
			unit.EffectiveRent = propertyMean
		}

		roll.Units = append(roll.Units, unit)
	}

	for unitType, units := range groups {
		roll.TypeStats[unitType] = typeStats(unitType, units, groupMeans[unitType])
	}

	return roll, nil
}

func groupByType(rows []model.RentRollRow) map[string][]model.RentRollRow {
	groups := make(map[string][]model.RentRollRow)
	for _, row := range rows {
		groups[row.UnitType] = append(groups[row.UnitType], row)
	}
	return groups
}

func typeStats(unitType string, units []model.RentRollRow, avgRent float64) model.UnitTypeStats {
	stats := model.UnitTypeStats{
		UnitType: unitType,
		Units:    len(units),
		AvgRent:  avgRent,
	}

	sqftSum, sqftCount := 0.0, 0
	for _, u := range units {
		if u.Status == model.Occupied {
			stats.OccupiedUnits++
		}
		if u.SquareFeet > 0 {
			sqftSum += u.SquareFeet
			sqftCount++
		}
	}

	if len(units) > 0 {
		stats.VacancyRate = float64(len(units)-stats.OccupiedUnits) / float64(len(units))
	}
	if sqftCount > 0 {
		stats.AvgSquareFeet = sqftSum / float64(sqftCount)
		if stats.AvgSquareFeet > 0 && avgRent > 0 {
			stats.RentPerSquareFt = avgRent / stats.AvgSquareFeet
		}
	}

	return stats
}
