package services

import (
	"context"
	"testing"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func wetReq(p *models.Processing, dest int) *models.CreateWetTransferRequest {
	return &models.CreateWetTransferRequest{
		ProcessingID:         p.ID,
		Date:                 "2025-03-15",
		SourceStationID:      p.StationID,
		DestinationStationID: dest,
		TotalKgs:             900,
		OutputKgs:            850,
		Grade:                "A",
		ProcessingType:       "fully washed",
	}
}

func TestWetTransferCreate(t *testing.T) {
	w := newWorld()
	p := w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 900)
	ctx := context.Background()

	wt, err := w.wet.Create(ctx, manager(stationMUS), wetReq(p, stationKAR))
	require.NoError(t, err)
	assert.Equal(t, "25MUS1303A", wt.BatchNo)
	assert.Equal(t, models.WetTransferPending, wt.Status)
	assert.Equal(t, 12.0, wt.MoistureContent)
	assert.Equal(t, models.ProcessingFullyWashed, wt.ProcessingType)
	assert.Equal(t, models.ProcessingTransferred, p.Status)

	_, err = w.wet.Create(ctx, manager(stationMUS), wetReq(p, stationKAR))
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	req := wetReq(p, stationKAR)
	req.Grade = "B"
	req.MoistureContent = floatPtr(14)
	other, err := w.wet.Create(ctx, manager(stationMUS), req)
	require.NoError(t, err)
	assert.Equal(t, 14.0, other.MoistureContent)
}

func TestWetTransferCreateValidation(t *testing.T) {
	w := newWorld()
	p := w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 900)
	ctx := context.Background()

	_, err := w.wet.Create(ctx, manager(stationMUS), wetReq(p, stationMUS))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = w.wet.Create(ctx, manager(stationKAR), wetReq(p, stationKAR))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	req := wetReq(p, stationMUS)
	req.SourceStationID = stationKAR
	_, err = w.wet.Create(ctx, admin(), req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req = wetReq(p, stationKAR)
	req.ProcessingType = "DRY"
	_, err = w.wet.Create(ctx, manager(stationMUS), req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Empty(t, w.db.wet)
	assert.Equal(t, models.ProcessingInProgress, p.Status)
}

func TestWetTransferReceive(t *testing.T) {
	w := newWorld()
	p := w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 900)
	ctx := context.Background()
	wt, err := w.wet.Create(ctx, manager(stationMUS), wetReq(p, stationKAR))
	require.NoError(t, err)

	receipt := &models.ReceiveWetTransferRequest{
		MoistureContent: floatPtr(11.5),
		CupScore:        floatPtr(85),
		Notes:           strPtr("arrived in 18 bags"),
	}
	_, err = w.wet.Receive(ctx, manager(stationMUS), wt.ID, receipt)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err := w.wet.Receive(ctx, manager(stationKAR), wt.ID, receipt)
	require.NoError(t, err)
	assert.Equal(t, models.WetTransferReceived, got.Status)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "arrived in 18 bags\nMoisture: 11.5, Defects: N/A, Cup Score: 85", *got.Notes)

	_, err = w.wet.Receive(ctx, manager(stationKAR), wt.ID, receipt)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = w.wet.Reject(ctx, manager(stationKAR), wt.ID, &models.RejectWetTransferRequest{})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestWetTransferRejectAndSummary(t *testing.T) {
	w := newWorld()
	p := w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 900)
	ctx := context.Background()
	first, err := w.wet.Create(ctx, manager(stationMUS), wetReq(p, stationKAR))
	require.NoError(t, err)
	req := wetReq(p, stationKAR)
	req.Grade = "B"
	_, err = w.wet.Create(ctx, manager(stationMUS), req)
	require.NoError(t, err)

	got, err := w.wet.Reject(ctx, manager(stationKAR), first.ID, &models.RejectWetTransferRequest{Reason: "  "})
	require.NoError(t, err)
	assert.Equal(t, models.WetTransferRejected, got.Status)
	assert.Equal(t, "Rejected by receiver", *got.Notes)

	sent, err := w.wet.Summary(ctx, manager(stationMUS), stationMUS)
	require.NoError(t, err)
	assert.Equal(t, models.WetTransferCounts{Total: 2, Pending: 1, Rejected: 1}, sent.Sent)
	assert.Equal(t, 0, sent.Received.Total)

	received, err := w.wet.Summary(ctx, manager(stationKAR), stationKAR)
	require.NoError(t, err)
	assert.Equal(t, 2, received.Received.Total)

	_, err = w.wet.Summary(ctx, manager(stationKAR), stationMUS)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestWetTransferDeleteReopensProcessing(t *testing.T) {
	w := newWorld()
	p := w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 900)
	ctx := context.Background()
	wt, err := w.wet.Create(ctx, manager(stationMUS), wetReq(p, stationKAR))
	require.NoError(t, err)

	err = w.wet.Delete(ctx, manager(stationKAR), wt.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, w.wet.Delete(ctx, manager(stationMUS), wt.ID))
	assert.Equal(t, models.ProcessingInProgress, p.Status)

	_, err = w.wet.Get(ctx, wt.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestBaggingOffCarriesWetTransferStatus(t *testing.T) {
	w := newWorld()
	p := w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 900)
	ctx := context.Background()
	wt, err := w.wet.Create(ctx, manager(stationMUS), wetReq(p, stationKAR))
	require.NoError(t, err)

	w.bag(t, "25MUS1303A", models.ProcessingFullyWashed, models.BaggingOffCompleted, map[string]models.Reading{"A2": "40"})

	got, err := w.wet.Get(ctx, wt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BaggingOffCompleted, got.Status)
}
