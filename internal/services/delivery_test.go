package services

import (
	"context"
	"testing"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// transferredLot moves the A0 of a fresh lot and returns its delivery record.
func transferredLot(t *testing.T, w *world, batchNo, truck, groupID, date string) *models.QualityDelivery {
	b := washedLot(t, w, batchNo)
	req := highTransfer(b, map[string]float64{"A0": 100})
	req.TruckNumber = truck
	req.TransportGroupID = groupID
	req.Date = date
	req.GradeDetails = map[string]models.GradeDetail{"A0": {NumberOfBags: 2, CupProfile: "S87", MoistureContent: 11}}
	res, err := w.transfers.Create(context.Background(), manager(stationMUS), req)
	require.NoError(t, err)
	d := deliveriesOf(w, res.Transfers[0].ID)["A0"]
	require.NotNil(t, d)
	return d
}

func TestDeliveryRecordStartsPending(t *testing.T) {
	w := newWorld()
	d := transferredLot(t, w, "25MUS1303A", "RAD123A", "", "2025-03-25")

	assert.Equal(t, models.SamplePending, d.Status)
	assert.Equal(t, "-", d.NewCategory)
	assert.Equal(t, "S87", d.Category)
	assert.Len(t, d.CategoryKgs, len(models.CategoryKgsKeys))
	require.NotNil(t, d.QualityID)
	assert.Contains(t, w.db.qualities, *d.QualityID)
}

func TestDeliveryResultDropsCachedReports(t *testing.T) {
	w := newWorld()
	d := transferredLot(t, w, "25MUS1303A", "RAD123A", "", "2025-03-25")
	ctx := context.Background()
	w.cache.Set(ctx, "reports:delivery", []byte("{}"))
	before := w.cache.invalidated

	_, err := w.deliveries.SubmitTestResult(ctx, qualityStaff(), &models.DeliveryTestRequest{
		Batches:     []models.DeliveryTestInput{{ID: d.ID, TransferID: d.TransferID, PPScore: "85"}},
		CategoryKgs: map[string]float64{"c1": 95},
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, w.cache.invalidated)
	_, ok := w.cache.Get(ctx, "reports:delivery")
	assert.False(t, ok)
}

func TestDeliveryRecordDropsCachedReportsOnlyWhenCreated(t *testing.T) {
	w := newWorld()
	d := transferredLot(t, w, "25MUS1303A", "RAD123A", "", "2025-03-25")
	ctx := context.Background()
	before := w.cache.invalidated

	again, err := w.deliveries.CreateRecord(ctx, models.DeliveryRequest{
		TransferID:   d.TransferID,
		BatchNo:      d.BatchNo,
		StationID:    d.StationID,
		BaggingOffID: d.BaggingOffID,
		ProcessingID: d.ProcessingID,
		GradeKey:     "A0",
	})
	require.NoError(t, err)
	assert.Equal(t, d.ID, again.ID)
	assert.Equal(t, before, w.cache.invalidated)

	_, err = w.deliveries.CreateRecord(ctx, models.DeliveryRequest{
		TransferID:   d.TransferID,
		BatchNo:      d.BatchNo,
		StationID:    d.StationID,
		BaggingOffID: d.BaggingOffID,
		ProcessingID: d.ProcessingID,
		GradeKey:     "A1",
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, w.cache.invalidated)
}

func TestDeliveryResultMergesAndAdvances(t *testing.T) {
	w := newWorld()
	d := transferredLot(t, w, "25MUS1303A", "RAD123A", "", "2025-03-25")
	ctx := context.Background()

	out, err := w.deliveries.SubmitTestResult(ctx, qualityStaff(), &models.DeliveryTestRequest{
		Batches: []models.DeliveryTestInput{{
			ID:          d.ID,
			TransferID:  d.TransferID,
			LabMoisture: "12",
			Screen:      models.Screen{"16+": "30"},
			PPScore:     "85",
		}},
		CategoryKgs: map[string]float64{"c1": 95},
	})
	require.NoError(t, err)
	got := out[0]
	assert.Equal(t, models.SampleTested, got.Status)
	assert.Equal(t, "C1", got.NewCategory)
	assert.Equal(t, map[string]float64{"c1": 95}, got.CategoryKgs)

	screen := fullScreen("10")
	screen["16+"] = ""
	out, err = w.deliveries.SubmitTestResult(ctx, qualityStaff(), &models.DeliveryTestRequest{
		Batches: []models.DeliveryTestInput{{
			ID:          d.ID,
			TransferID:  d.TransferID,
			LabMoisture: "0",
			Screen:      screen,
			Defect:      "1.5",
		}},
	})
	require.NoError(t, err)
	got = out[0]
	assert.Equal(t, models.SampleCompleted, got.Status)
	assert.Equal(t, 12.0, got.LabMoisture)
	assert.Equal(t, models.Reading("30"), got.Screen["16+"])
	assert.Equal(t, map[string]float64{"c1": 95}, got.CategoryKgs)

	out, err = w.deliveries.SubmitTestResult(ctx, qualityStaff(), &models.DeliveryTestRequest{
		Batches: []models.DeliveryTestInput{{ID: d.ID, TransferID: d.TransferID, Notes: "re-cupped"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SampleCompleted, out[0].Status)
	assert.Equal(t, "re-cupped", out[0].Notes)
}

func TestDeliveryResultGuards(t *testing.T) {
	w := newWorld()
	d := transferredLot(t, w, "25MUS1303A", "RAD123A", "", "2025-03-25")
	ctx := context.Background()
	req := &models.DeliveryTestRequest{Batches: []models.DeliveryTestInput{{ID: d.ID, TransferID: d.TransferID + 1, PPScore: "80"}}}

	_, err := w.deliveries.SubmitTestResult(ctx, manager(stationMUS), req)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = w.deliveries.SubmitTestResult(ctx, qualityStaff(), req)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, 0.0, d.PPScore)
}

func TestDeliverySweepReportsMissingDetails(t *testing.T) {
	w := newWorld()
	w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 1000)
	b := w.bag(t, "25MUS1303A", models.ProcessingFullyWashed, models.BaggingOffCompleted, map[string]models.Reading{"A0": "10", "A1": "20"})
	require.Len(t, w.db.qualities, 1)

	w.db.transfers[500] = &models.Transfer{ID: 500, BatchNo: "25MUS1303A", GradeGroup: models.GradeGroupHigh,
		OutputKgs: map[string]float64{"A0": 10}}
	w.db.transfers[501] = &models.Transfer{ID: 501, BatchNo: "25MUS1303A", BaggingOffID: b.ID, StationID: stationMUS,
		GradeGroup: models.GradeGroupHigh, OutputKgs: map[string]float64{"A1": 20},
		GradeDetails: map[string]models.GradeDetail{"A1": {CupProfile: "S86", MoistureContent: 10.5}}}
	w.db.transfers[502] = &models.Transfer{ID: 502, BatchNo: "25KAR0101A", GradeGroup: models.GradeGroupHigh,
		OutputKgs: map[string]float64{"A0": 5}, GradeDetails: map[string]models.GradeDetail{"A0": {}}}

	res, err := w.deliveries.CreateMissing(context.Background(), admin())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "No gradeDetails found", res.Errors[0].Error)
	assert.Contains(t, res.Errors[1].Error, "A0: ")
	assert.Equal(t, "Created 1 delivery records with 2 errors", res.Message)
	assert.Equal(t, 10.5, deliveriesOf(w, 501)["A1"].CwsMoisture)

	res, err = w.deliveries.CreateForHighGradeTransfers(context.Background(), admin())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)

	_, err = w.deliveries.CreateMissing(context.Background(), qualityStaff())
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestTruckLoadsGroupOpenRecords(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	first := transferredLot(t, w, "25MUS1303A", "RAD123A", "grp-1", "2025-03-25")
	transferredLot(t, w, "25MUS1403A", "RAD123A", "grp-1", "2025-03-25")
	transferredLot(t, w, "25MUS1503A", "RAB999B", "grp-2", "2025-03-26")
	done := transferredLot(t, w, "25MUS1603A", "RAC555C", "grp-3", "2025-03-27")
	done.Status = models.SampleCompleted

	loads, err := w.deliveries.TruckLoads(ctx, qualityStaff())
	require.NoError(t, err)
	require.Len(t, loads, 2)
	assert.Equal(t, "grp-2", loads[0].TransportGroupID)
	assert.Equal(t, "grp-1", loads[1].TransportGroupID)
	assert.Len(t, loads[1].Records, 2)
	assert.Equal(t, first.ID, loads[1].Records[0].ID)

	group, err := w.deliveries.ByTransportGroup(ctx, qualityStaff(), "grp-1")
	require.NoError(t, err)
	assert.Len(t, group, 2)
	assert.Equal(t, "RAD123A", group[0].TruckNumber)

	_, err = w.deliveries.TruckLoads(ctx, manager(stationMUS))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
