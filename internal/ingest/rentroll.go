// Package ingest reads rent rolls and trailing statements from CSV exports.
// The formats follow the common property-management exports: a rent roll has
// one row per unit, a trailing statement one row per category with one column
// per month.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/model"
)

// Rent roll column headers. Order in the file does not matter; headers do.
const (
	colUnitID   = "unit"
	colUnitType = "type"
	colSqFt     = "sqft"
	colRent     = "rent"
	colStatus   = "status"
	colLeaseEnd = "lease_end"
)

// ReadRentRollFile opens and parses a rent roll CSV.
func ReadRentRollFile(path string) ([]model.RentRollRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rent roll: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadRentRoll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadRentRoll parses a rent roll CSV from a reader.
func ReadRentRoll(r io.Reader) ([]model.RentRollRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx, err := headerIndex(header, colUnitID, colUnitType, colRent, colStatus)
	if err != nil {
		return nil, err
	}

	var rows []model.RentRollRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRentRollRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("rent roll contains no units")
	}
	common.LogDebug("rent roll parsed", common.Fields{"units": len(rows)})
	return rows, nil
}

func parseRentRollRecord(record []string, idx map[string]int) (model.RentRollRow, error) {
	row := model.RentRollRow{
		UnitID:   field(record, idx, colUnitID),
		UnitType: field(record, idx, colUnitType),
	}

	status := strings.ToLower(field(record, idx, colStatus))
	switch status {
	case "occupied":
		row.Status = model.Occupied
	case "vacant":
		row.Status = model.Vacant
	default:
		return row, fmt.Errorf("unit %s: unknown status %q", row.UnitID, status)
	}

	if raw := field(record, idx, colRent); raw != "" {
		rent, err := parseAmount(raw)
		if err != nil {
			return row, fmt.Errorf("unit %s: bad rent: %w", row.UnitID, err)
		}
		row.CurrentRent = rent
	}

	if raw := field(record, idx, colSqFt); raw != "" {
		sqft, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return row, fmt.Errorf("unit %s: bad sqft: %w", row.UnitID, err)
		}
		row.SquareFeet = sqft
	}

	if raw := field(record, idx, colLeaseEnd); raw != "" {
		leaseEnd, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return row, fmt.Errorf("unit %s: bad lease_end: %w", row.UnitID, err)
		}
		row.LeaseEnd = &leaseEnd
	}

	return row, nil
}

// headerIndex maps lowercase header names to column positions, verifying the
// required columns are present. Optional columns map to -1 when absent.
func headerIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return idx, nil
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseAmount accepts "1,234.56", "$1234.56", and "(500)" for negatives.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		v = -v
	}
	return v, nil
}
