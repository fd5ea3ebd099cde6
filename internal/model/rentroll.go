// Package model defines the core data structures for underwriting runs.
package model

import (
	"fmt"
	"time"
)

// Occupancy is the occupancy status of a unit on the rent roll.
type Occupancy string

// Occupancy statuses.
const (
	Occupied Occupancy = "occupied"
	Vacant   Occupancy = "vacant"
)

// RentRollRow is a single unit as extracted from the property's rent roster.
type RentRollRow struct {
	LeaseEnd    *time.Time
	UnitID      string
	UnitType    string
	Status      Occupancy
	SquareFeet  float64
	CurrentRent float64 // monthly; zero for vacant units with no stated rent
}

// Validate checks structural invariants on a raw rent roll row.
func (r *RentRollRow) Validate() error {
	if r.UnitID == "" {
		return fmt.Errorf("unit id is required")
	}
	if r.UnitType == "" {
		return fmt.Errorf("unit %s: unit type is required", r.UnitID)
	}
	if r.SquareFeet < 0 {
		return fmt.Errorf("unit %s: square footage must not be negative, got %.0f", r.UnitID, r.SquareFeet)
	}
	if r.CurrentRent < 0 {
		return fmt.Errorf("unit %s: rent must not be negative, got %.2f", r.UnitID, r.CurrentRent)
	}
	if r.Status != Occupied && r.Status != Vacant {
		return fmt.Errorf("unit %s: unknown occupancy status %q", r.UnitID, r.Status)
	}
	return nil
}

// NormalizedUnit is a rent roll row with its effective rent resolved. For
// occupied units the effective rent is the stated rent; for vacant units it
// is imputed from comparable occupied units.
type NormalizedUnit struct {
	RentRollRow
	EffectiveRent float64
	Underpriced   bool
}

// UnitTypeStats summarizes one unit-type group of the normalized roll.
type UnitTypeStats struct {
	UnitType        string
	Units           int
	OccupiedUnits   int
	AvgRent         float64 // mean stated rent of occupied units
	AvgSquareFeet   float64
	RentPerSquareFt float64 // zero when square footage is unavailable
	VacancyRate     float64
}

// NormalizedRentRoll is the output of rent roll normalization: every unit
// carries an effective rent, and per-type statistics are precomputed.
type NormalizedRentRoll struct {
	TypeStats map[string]UnitTypeStats
	Units     []NormalizedUnit
}

// UnitCount returns the number of units on the roll.
func (n *NormalizedRentRoll) UnitCount() int {
	return len(n.Units)
}

// OccupiedCount returns the number of occupied units.
func (n *NormalizedRentRoll) OccupiedCount() int {
	count := 0
	for _, u := range n.Units {
		if u.Status == Occupied {
			count++
		}
	}
	return count
}

// OccupancyRate returns occupied units as a fraction of all units.
func (n *NormalizedRentRoll) OccupancyRate() float64 {
	if len(n.Units) == 0 {
		return 0
	}
	return float64(n.OccupiedCount()) / float64(len(n.Units))
}

// MonthlyEffectiveRent returns the sum of effective rents across all units.
func (n *NormalizedRentRoll) MonthlyEffectiveRent() float64 {
	total := 0.0
	for _, u := range n.Units {
		total += u.EffectiveRent
	}
	return total
}

// UnderpricedUnits returns the units flagged as materially under market for
// their unit type.
func (n *NormalizedRentRoll) UnderpricedUnits() []NormalizedUnit {
	var flagged []NormalizedUnit
	for _, u := range n.Units {
		if u.Underpriced {
			flagged = append(flagged, u)
		}
	}
	return flagged
}
