package services

import (
	"context"
	"testing"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchaseReq(grade, deliveryType string) *models.CreatePurchaseRequest {
	return &models.CreatePurchaseRequest{
		StationID:    stationMUS,
		DeliveryType: deliveryType,
		TotalKgs:     1200,
		TotalPrice:   480000,
		CherryPrice:  400,
		Grade:        grade,
		PurchaseDate: "2025-03-13",
	}
}

func TestCreatePurchaseDerivesBatchNumber(t *testing.T) {
	w := newWorld()

	p, err := w.purchases.Create(context.Background(), manager(stationMUS), purchaseReq("A", models.DeliveryDirect))
	require.NoError(t, err)
	assert.Equal(t, "25MUS1303A", p.BatchNo)
	assert.Nil(t, p.SiteCollectionID)
	assert.Equal(t, 1, w.cache.invalidated)
}

func TestCreatePurchaseRefusedOnceBatchStarted(t *testing.T) {
	w := newWorld()
	w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 1000)

	_, err := w.purchases.Create(context.Background(), manager(stationMUS), purchaseReq("A", models.DeliveryDirect))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	p, err := w.purchases.Create(context.Background(), manager(stationMUS), purchaseReq("B", models.DeliveryDirect))
	require.NoError(t, err)
	assert.Equal(t, "25MUS1303B", p.BatchNo)
}

func TestCreatePurchaseOncePerChannelAndDay(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	_, err := w.purchases.Create(ctx, manager(stationMUS), purchaseReq("A", models.DeliveryDirect))
	require.NoError(t, err)

	_, err = w.purchases.Create(ctx, manager(stationMUS), purchaseReq("A", models.DeliveryDirect))
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = w.purchases.Create(ctx, manager(stationMUS), purchaseReq("A", models.DeliverySupplier))
	assert.NoError(t, err)
}

func TestSiteCollectionPurchasesAreUniquePerSite(t *testing.T) {
	w := newWorld()
	w.db.sites[4] = &models.SiteCollection{ID: 4, Name: "Gasharu", StationID: stationMUS}
	ctx := context.Background()

	req := purchaseReq("A", models.DeliverySiteCollection)
	req.SiteCollectionID = intPtr(3)
	_, err := w.purchases.Create(ctx, manager(stationMUS), req)
	require.NoError(t, err)

	other := purchaseReq("A", models.DeliverySiteCollection)
	other.SiteCollectionID = intPtr(4)
	_, err = w.purchases.Create(ctx, manager(stationMUS), other)
	require.NoError(t, err)

	again := purchaseReq("A", models.DeliverySiteCollection)
	again.SiteCollectionID = intPtr(3)
	_, err = w.purchases.Create(ctx, manager(stationMUS), again)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestSiteCollectionPurchaseValidation(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	_, err := w.purchases.Create(ctx, manager(stationMUS), purchaseReq("A", models.DeliverySiteCollection))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	w.db.sites[5] = &models.SiteCollection{ID: 5, Name: "Rubona", StationID: stationKAR}
	req := purchaseReq("A", models.DeliverySiteCollection)
	req.SiteCollectionID = intPtr(5)
	_, err = w.purchases.Create(ctx, manager(stationMUS), req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreatePurchaseForOtherStationForbidden(t *testing.T) {
	w := newWorld()

	_, err := w.purchases.Create(context.Background(), manager(stationKAR), purchaseReq("A", models.DeliveryDirect))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdatePurchaseGradeMovesBatch(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	p, err := w.purchases.Create(ctx, manager(stationMUS), purchaseReq("A", models.DeliveryDirect))
	require.NoError(t, err)

	grade := "B"
	kgs := 1500.0
	updated, err := w.purchases.Update(ctx, manager(stationMUS), p.ID, &models.UpdatePurchaseRequest{Grade: &grade, TotalKgs: &kgs})
	require.NoError(t, err)
	assert.Equal(t, "25MUS1303B", updated.BatchNo)
	assert.Equal(t, 1500.0, updated.TotalKgs)

	w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 1000)
	back := "A"
	_, err = w.purchases.Update(ctx, manager(stationMUS), p.ID, &models.UpdatePurchaseRequest{Grade: &back})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCheckPurchase(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	w.startProcessing("25MUS1303A", stationMUS, models.ProcessingFullyWashed, "A", 1000)

	_, err := w.purchases.CheckPurchase(ctx, stationMUS, "A", "2025-03-13")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	batchNo, err := w.purchases.CheckPurchase(ctx, stationMUS, "A", "2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, "25MUS1403A", batchNo)

	_, err = w.purchases.CheckPurchase(ctx, stationMUS, "A", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
