// Package export writes ranked store lists as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/storeradar/radar-service/internal/recommend"
)

// SheetName is the worksheet holding the ranking.
const SheetName = "Ranking"

// Header is the first row of the ranking sheet.
var Header = []string{
	"Rank", "Tier", "Store ID", "Store", "Road address", "Area code",
	"Price", "Inspect day", "Distance (km)", "Score",
}

// WriteRanking writes ranked stores for product as an XLSX workbook.
func WriteRanking(w io.Writer, product string, ranked []recommend.ScoredStore) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Store ranking",
		Subject: product,
		Creator: "radar-service",
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range ranked {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			s.Rank + 1,
			s.Tier.String(),
			s.StoreID,
			s.Name,
			s.RoadAddr,
			s.AreaCode,
			s.Price,
			s.InspectDay,
			round(s.DistanceKm, 2),
			round(s.Score, 1),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "D", "E", 28); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadRanking reads back the store ids in rank order from a workbook written
// by WriteRanking.
func ReadRanking(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %q is empty", SheetName)
	}

	ids := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 3 {
			continue
		}
		ids = append(ids, row[2])
	}
	return ids, nil
}

func round(v float64, places int) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return f
}
