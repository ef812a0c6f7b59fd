// Package documents renders reports for download.
package documents

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"wetmill-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	familiesSheet = "Families"
	stationsSheet = "Stations"
)

// YieldWorkbook writes the yield report as a spreadsheet with one sheet per
// lot and one per station.
func YieldWorkbook(r *models.YieldReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", familiesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(stationsSheet); err != nil {
		return nil, err
	}

	grades := gradeColumns(r)
	header := []any{"Batch family", "Station", "Natural", "Batches", "Input kg", "Output kg", "Outturn %"}
	for _, g := range grades {
		header = append(header, g)
	}
	if err := f.SetSheetRow(familiesSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, fam := range r.Families {
		row := []any{
			fam.BatchFamily,
			fam.StationName,
			yesNo(fam.IsNatural),
			strings.Join(fam.BatchNos, ", "),
			fam.InputKgs,
			fam.OutputKgs,
			fam.Outturn,
		}
		for _, g := range grades {
			row = append(row, fam.GradeBreakdown[g])
		}
		if err := f.SetSheetRow(familiesSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	f.SetCellValue(stationsSheet, "A1", "Station")
	f.SetCellValue(stationsSheet, "B1", "Families")
	f.SetCellValue(stationsSheet, "C1", "Input kg")
	f.SetCellValue(stationsSheet, "D1", "Output kg")
	f.SetCellValue(stationsSheet, "E1", "Outturn %")
	row := 2
	for _, st := range r.Stations {
		writeRollup(f, row, st.StationName, st.YieldRollup)
		row++
	}
	row++
	writeRollup(f, row, "Natural", r.Natural)
	writeRollup(f, row+1, "Washed and honey", r.NonNatural)
	writeRollup(f, row+2, "Overall", r.Overall)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRollup(f *excelize.File, row int, label string, r models.YieldRollup) {
	f.SetCellValue(stationsSheet, fmt.Sprintf("A%d", row), label)
	f.SetCellValue(stationsSheet, fmt.Sprintf("B%d", row), r.Families)
	f.SetCellValue(stationsSheet, fmt.Sprintf("C%d", row), r.InputKgs)
	f.SetCellValue(stationsSheet, fmt.Sprintf("D%d", row), r.OutputKgs)
	f.SetCellValue(stationsSheet, fmt.Sprintf("E%d", row), r.Outturn)
}

func gradeColumns(r *models.YieldReport) []string {
	keys := make([]string, 0, len(r.GradeBreakdown))
	for k := range r.GradeBreakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
