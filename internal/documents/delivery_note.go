package documents

import (
	"bytes"
	"fmt"
	"sort"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// DeliveryNote renders the paper that travels with a truck: one line per
// grade key of each transfer in the load.
func DeliveryNote(stationName string, transfers []*models.Transfer) ([]byte, error) {
	if len(transfers) == 0 {
		return nil, fmt.Errorf("delivery note needs at least one transfer")
	}
	first := transfers[0]

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Parchment Delivery Note", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Transport", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Station: %s", stationName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", timeutil.ToStation(first.TransferDate).Format(timeutil.DisplayLayout)), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Truck: %s", first.TruckNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Driver: %s %s", first.DriverName, first.DriverPhone), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(190, 7, fmt.Sprintf("Transport group: %s", first.TransportGroupID), "LRB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(45, 7, "Batch", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Grade", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Group", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Kg", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Bags", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Moisture", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Profile", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	var totalKgs float64
	var totalBags int
	for _, t := range transfers {
		keys := make([]string, 0, len(t.OutputKgs))
		for k := range t.OutputKgs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d := t.GradeDetails[k]
			kg := t.OutputKgs[k]
			pdf.CellFormat(45, 6, t.BatchNo, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, k, "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, t.GradeGroup, "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", kg), "1", 0, "R", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", d.NumberOfBags), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%.1f", d.MoistureContent), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, d.CupProfile, "1", 1, "C", false, 0, "")
			totalKgs += kg
			totalBags += d.NumberOfBags
		}
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", totalKgs), "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 8, fmt.Sprintf("%d", totalBags), "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 8, "", "1", 1, "C", false, 0, "")

	pdf.Ln(15)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, "Sent by: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Received by: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
