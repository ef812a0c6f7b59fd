package services

import (
	"sort"

	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/models"

	"github.com/shopspring/decimal"
)

type rollup struct {
	families int
	in       decimal.Decimal
	out      decimal.Decimal
}

func (r *rollup) add(in, out decimal.Decimal) {
	r.families++
	r.in = r.in.Add(in)
	r.out = r.out.Add(out)
}

func (r rollup) result() models.YieldRollup {
	in := r.in.InexactFloat64()
	out := r.out.InexactFloat64()
	return models.YieldRollup{
		Families:  r.families,
		InputKgs:  grading.Round2(in),
		OutputKgs: grading.Round2(out),
		Outturn:   grading.Outturn(out, in),
	}
}

type familyState struct {
	completed bool
	natural   bool
}

func familyOf(batchNo, stored string) string {
	if stored != "" {
		return stored
	}
	return batch.Family(batchNo)
}

// BuildYieldReport reconciles input and output per cherry lot. A lot counts
// only once every processing of it is COMPLETED, and a single NATURAL
// processing makes the whole lot natural. Processings are expected newest
// first.
func BuildYieldReport(processings []*models.Processing, baggingOffs []*models.BaggingOff, stationNames map[int]string) *models.YieldReport {
	states := make(map[string]*familyState)
	for _, p := range processings {
		fam := familyOf(p.BatchNo, p.BatchFamily)
		st, ok := states[fam]
		if !ok {
			st = &familyState{completed: true}
			states[fam] = st
		}
		if p.Status != models.ProcessingCompleted {
			st.completed = false
		}
		if p.ProcessingType == models.ProcessingNatural {
			st.natural = true
		}
	}

	outputs := make(map[int][]*models.BaggingOff)
	for _, b := range baggingOffs {
		outputs[b.ProcessingID] = append(outputs[b.ProcessingID], b)
	}

	grouped := make(map[string][]*models.Processing)
	order := make([]string, 0)
	for _, p := range processings {
		fam := familyOf(p.BatchNo, p.BatchFamily)
		if p.Status != models.ProcessingCompleted || !states[fam].completed {
			continue
		}
		if _, ok := grouped[fam]; !ok {
			order = append(order, fam)
		}
		grouped[fam] = append(grouped[fam], p)
	}

	report := &models.YieldReport{
		OutputByType:   make(map[string]float64),
		GradeBreakdown: make(map[string]float64),
		Stations:       []models.StationYield{},
		Families:       make([]models.YieldFamily, 0, len(order)),
	}
	var overall, natural, other rollup
	stations := make(map[int]*rollup)
	byType := make(map[string]decimal.Decimal)
	byGrade := make(map[string]decimal.Decimal)

	for _, fam := range order {
		members := grouped[fam]
		first := members[0]
		isNatural := states[fam].natural

		in, out := decimal.Zero, decimal.Zero
		grades := make(map[string]decimal.Decimal)
		batchNos := make([]string, 0, len(members))
		for _, p := range members {
			batchNos = append(batchNos, p.BatchNo)
			in = in.Add(decimal.NewFromFloat(p.TotalKgs))
			for _, b := range outputs[p.ID] {
				kg := decimal.NewFromFloat(b.TotalOutputKgs)
				out = out.Add(kg)
				byType[string(b.ProcessingType)] = byType[string(b.ProcessingType)].Add(kg)
				for key, v := range b.OutputKgs {
					grades[key] = grades[key].Add(decimal.NewFromFloat(v))
				}
			}
		}

		breakdown := make(map[string]float64, len(grades))
		for key, v := range grades {
			breakdown[key] = grading.Round2(v.InexactFloat64())
			byGrade[key] = byGrade[key].Add(v)
		}

		inF, outF := in.InexactFloat64(), out.InexactFloat64()
		report.Families = append(report.Families, models.YieldFamily{
			BatchFamily:    fam,
			StationID:      first.StationID,
			StationName:    stationNames[first.StationID],
			IsNatural:      isNatural,
			BatchNos:       batchNos,
			InputKgs:       grading.Round2(inF),
			OutputKgs:      grading.Round2(outF),
			Outturn:        grading.Outturn(outF, inF),
			GradeBreakdown: breakdown,
		})

		overall.add(in, out)
		if isNatural {
			natural.add(in, out)
		} else {
			other.add(in, out)
		}
		st, ok := stations[first.StationID]
		if !ok {
			st = &rollup{}
			stations[first.StationID] = st
		}
		st.add(in, out)
	}

	report.Overall = overall.result()
	report.Natural = natural.result()
	report.NonNatural = other.result()
	for t, v := range byType {
		report.OutputByType[t] = grading.Round2(v.InexactFloat64())
	}
	for key, v := range byGrade {
		report.GradeBreakdown[key] = grading.Round2(v.InexactFloat64())
	}

	ids := make([]int, 0, len(stations))
	for id := range stations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		report.Stations = append(report.Stations, models.StationYield{
			StationID:   id,
			StationName: stationNames[id],
			YieldRollup: stations[id].result(),
		})
	}
	return report
}

// BuildStockReport works out what each station still holds: parchment
// output less what has been transported.
func BuildStockReport(stations []*models.Station, purchased, output map[int]float64, transfers []*models.Transfer) *models.StockReport {
	transported := make(map[int]decimal.Decimal)
	for _, t := range transfers {
		for _, kg := range t.OutputKgs {
			transported[t.StationID] = transported[t.StationID].Add(decimal.NewFromFloat(kg))
		}
	}

	report := &models.StockReport{Stations: make([]models.StationStock, 0, len(stations))}
	var totPurchase, totOutput, totTransported decimal.Decimal
	for _, st := range stations {
		p := decimal.NewFromFloat(purchased[st.ID])
		o := decimal.NewFromFloat(output[st.ID])
		tr := transported[st.ID]
		report.Stations = append(report.Stations, models.StationStock{
			StationID:        st.ID,
			StationName:      st.Name,
			CherryPurchase:   grading.Round2(p.InexactFloat64()),
			ParchmentOutput:  grading.Round2(o.InexactFloat64()),
			TransportedKgs:   grading.Round2(tr.InexactFloat64()),
			ParchmentInstore: grading.Round2(o.Sub(tr).InexactFloat64()),
		})
		totPurchase = totPurchase.Add(p)
		totOutput = totOutput.Add(o)
		totTransported = totTransported.Add(tr)
	}
	report.Totals = models.StationStock{
		StationName:      "Total",
		CherryPurchase:   grading.Round2(totPurchase.InexactFloat64()),
		ParchmentOutput:  grading.Round2(totOutput.InexactFloat64()),
		TransportedKgs:   grading.Round2(totTransported.InexactFloat64()),
		ParchmentInstore: grading.Round2(totOutput.Sub(totTransported).InexactFloat64()),
	}
	return report
}
