package services

import (
	"fmt"
	"sort"

	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/models"
)

func screenAggregate(screen models.Screen, defect float64) models.ScreenAggregate {
	a := models.ScreenAggregate{
		AVG15Plus: grading.Sum(screen["16+"].Float(), screen["15"].Float()),
		AVG1314:   grading.Sum(screen["14"].Float(), screen["13"].Float()),
		AVGLG:     grading.Sum(screen["B/12"].Float(), defect),
	}
	a.OT = grading.Sum(a.AVG15Plus, a.AVG1314, a.AVGLG)
	return a
}

// sampleSide reads one grade key of a sample. A missing sample reads as
// all zero.
func sampleSide(q *models.Quality, key string) models.QualitySide {
	if q == nil {
		return models.QualitySide{Screen: models.Screen{}}
	}
	screen := q.Screen[key]
	if screen == nil {
		screen = models.Screen{}
	}
	defect := q.Defect[key].Float()
	return models.QualitySide{
		CwsMoisture:     q.CwsMoisture1[key].Float(),
		LabMoisture:     q.LabMoisture[key].Float(),
		Defect:          defect,
		PPScore:         q.PPScore[key].Float(),
		Category:        q.Category[key],
		Screen:          screen,
		ScreenAggregate: screenAggregate(screen, defect),
	}
}

func deliverySide(d *models.QualityDelivery) models.QualitySide {
	screen := d.Screen
	if screen == nil {
		screen = models.Screen{}
	}
	return models.QualitySide{
		CwsMoisture:     d.CwsMoisture,
		LabMoisture:     d.LabMoisture,
		Defect:          d.Defect,
		PPScore:         d.PPScore,
		Category:        d.Category,
		Screen:          screen,
		ScreenAggregate: screenAggregate(screen, d.Defect),
	}
}

// variation is delivery minus sample for every compared figure.
func variation(sample, delivery models.QualitySide) models.QualityVariation {
	return models.QualityVariation{
		VMC:      grading.Round2(delivery.LabMoisture - sample.LabMoisture),
		V15Plus:  grading.Round2(delivery.AVG15Plus - sample.AVG15Plus),
		V1314:    grading.Round2(delivery.AVG1314 - sample.AVG1314),
		VLG:      grading.Round2(delivery.AVGLG - sample.AVGLG),
		VOT:      grading.Round2(delivery.OT - sample.OT),
		VPPScore: grading.Round2(delivery.PPScore - sample.PPScore),
	}
}

type stationAcc struct {
	report  *models.DeliveryStationReport
	lines   int
	ppDel   float64
	ppSam   float64
	totals  models.DeliveryStationTotals
	ordinal int
}

// BuildDeliveryReport compares each delivered lot with its station sample
// and reconciles transported against delivered weight. Rows of one batch,
// processing and bagging-off form one report batch. LOW transfers of the
// same cherry lot add to the transported weight of the first batch of that
// lot only.
func BuildDeliveryReport(rows []*models.DeliveryReportRow, lowTransfers []*models.Transfer) *models.DeliveryReport {
	type group struct {
		rows []*models.DeliveryReportRow
	}
	groups := make(map[string]*group)
	order := make([]string, 0)
	for _, r := range rows {
		if r.Delivery == nil || r.BaggingOff == nil {
			continue
		}
		key := fmt.Sprintf("%s|%d|%d", r.Delivery.BatchNo, r.Delivery.ProcessingID, r.Delivery.BaggingOffID)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, r)
	}

	usedLow := make(map[int]bool)
	stations := make(map[int]*stationAcc)

	for _, key := range order {
		g := groups[key]
		first := g.rows[0]
		fam := familyOf(first.BaggingOff.BatchNo, first.BaggingOff.BatchFamily)

		transported := make(map[string]float64)
		for _, t := range lowTransfers {
			if usedLow[t.ID] || familyOf(t.BatchNo, t.BatchFamily) != fam {
				continue
			}
			usedLow[t.ID] = true
			for _, k := range models.DeliveryLowKeys {
				if kg, ok := t.OutputKgs[k]; ok && kg != 0 {
					transported[k] = grading.Sum(transported[k], kg)
				}
			}
		}

		delivered := make(map[string]float64)
		for _, k := range models.DeliveredKgsKeys {
			if kg := first.Delivery.CategoryKgs[k]; kg != 0 {
				delivered[k] = kg
			}
		}

		b := models.DeliveryReportBatch{
			BatchNo:        first.BaggingOff.BatchNo,
			ProcessingID:   first.Delivery.ProcessingID,
			BaggingOffID:   first.Delivery.BaggingOffID,
			TransportedKgs: transported,
			DeliveredKgs:   delivered,
			Lines:          make([]models.DeliveryReportLine, 0, len(g.rows)),
		}

		stationID := first.Delivery.StationID
		acc, ok := stations[stationID]
		if !ok {
			acc = &stationAcc{report: &models.DeliveryStationReport{
				StationID:   stationID,
				StationName: first.StationName,
				Batches:     []models.DeliveryReportBatch{},
			}, ordinal: len(stations)}
			stations[stationID] = acc
		}

		for _, r := range g.rows {
			d := r.Delivery
			if d.GradeKey == "" {
				continue
			}
			if r.Transfer != nil {
				if kg := r.Transfer.OutputKgs[d.GradeKey]; kg != 0 {
					transported[d.GradeKey] = grading.Sum(transported[d.GradeKey], kg)
				}
			}

			s := sampleSide(r.Sample, d.GradeKey)
			del := deliverySide(d)
			v := variation(s, del)
			line := models.DeliveryReportLine{
				DeliveryID:  d.ID,
				TransferID:  d.TransferID,
				GradeKey:    d.GradeKey,
				NewCategory: d.NewCategory,
				Sample:      s,
				Delivery:    del,
				Variation:   v,
			}
			if r.Transfer != nil {
				line.TruckNumber = r.Transfer.TruckNumber
			}
			b.Lines = append(b.Lines, line)

			t := &acc.totals
			t.Avg15PlusDelivery += del.AVG15Plus
			t.Avg15PlusSample += s.AVG15Plus
			t.Avg1314Delivery += del.AVG1314
			t.Avg1314Sample += s.AVG1314
			t.AVLGDelivery += del.AVGLG
			t.AVLGSample += s.AVGLG
			t.OTDelivery += del.OT
			t.OTSample += s.OT
			t.VMC += v.VMC
			t.V15Plus += v.V15Plus
			t.V1314 += v.V1314
			t.VLG += v.VLG
			t.VOT += v.VOT
			t.VPPScore += v.VPPScore
			acc.ppDel += del.PPScore
			acc.ppSam += s.PPScore
			acc.lines++
		}

		for _, kg := range transported {
			b.TotalTransport = grading.Sum(b.TotalTransport, kg)
		}
		for _, kg := range delivered {
			b.TotalDelivery = grading.Sum(b.TotalDelivery, kg)
		}
		b.VariationKgs = grading.Round2(b.TotalTransport - b.TotalDelivery)

		acc.totals.TransportedKgs = grading.Sum(acc.totals.TransportedKgs, b.TotalTransport)
		acc.totals.DeliveredKgs = grading.Sum(acc.totals.DeliveredKgs, b.TotalDelivery)
		acc.totals.VariationKgs = grading.Sum(acc.totals.VariationKgs, b.VariationKgs)
		acc.report.Batches = append(acc.report.Batches, b)
	}

	accs := make([]*stationAcc, 0, len(stations))
	for _, acc := range stations {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].ordinal < accs[j].ordinal })

	report := &models.DeliveryReport{Stations: make([]models.DeliveryStationReport, 0, len(accs))}
	g := &report.GrandTotals
	for _, acc := range accs {
		t := acc.totals
		if acc.lines > 0 {
			t.AvgPPScoreDelivery = grading.Round2(acc.ppDel / float64(acc.lines))
			t.AvgPPScoreSample = grading.Round2(acc.ppSam / float64(acc.lines))
		}
		roundStationTotals(&t)
		acc.report.Totals = t
		report.Stations = append(report.Stations, *acc.report)

		g.TransportedKgs = grading.Sum(g.TransportedKgs, t.TransportedKgs)
		g.DeliveredKgs = grading.Sum(g.DeliveredKgs, t.DeliveredKgs)
		g.VariationKgs = grading.Sum(g.VariationKgs, t.VariationKgs)
		g.Avg15PlusDelivery = grading.Sum(g.Avg15PlusDelivery, t.Avg15PlusDelivery)
		g.Avg1314Delivery = grading.Sum(g.Avg1314Delivery, t.Avg1314Delivery)
		g.AVLGDelivery = grading.Sum(g.AVLGDelivery, t.AVLGDelivery)
		g.OTDelivery = grading.Sum(g.OTDelivery, t.OTDelivery)
	}
	report.Total = len(report.Stations)
	return report
}

func roundStationTotals(t *models.DeliveryStationTotals) {
	for _, f := range []*float64{
		&t.TransportedKgs, &t.DeliveredKgs, &t.VariationKgs,
		&t.Avg15PlusDelivery, &t.Avg15PlusSample,
		&t.Avg1314Delivery, &t.Avg1314Sample,
		&t.AVLGDelivery, &t.AVLGSample,
		&t.OTDelivery, &t.OTSample,
		&t.VMC, &t.V15Plus, &t.V1314, &t.VLG, &t.VOT, &t.VPPScore,
	} {
		*f = grading.Round2(*f)
	}
}
