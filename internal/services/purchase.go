package services

import (
	"context"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/models"
	"wetmill-backend/internal/timeutil"
)

type PurchaseService struct {
	Purchases   PurchaseStore
	Stations    StationStore
	Processings ProcessingStore
	Cache       ReportCache
}

func NewPurchaseService(purchases PurchaseStore, stations StationStore, processings ProcessingStore, cache ReportCache) *PurchaseService {
	return &PurchaseService{
		Purchases:   purchases,
		Stations:    stations,
		Processings: processings,
		Cache:       cache,
	}
}

// CanAcceptPurchase derives the batch number for the purchase and refuses
// it when that batch is already being processed or done.
func (s *PurchaseService) CanAcceptPurchase(ctx context.Context, station *models.Station, grade string, date time.Time) (string, error) {
	batchNo := batch.Number(station.Code, grade, date)
	started, err := s.Processings.ExistsWithStatus(ctx, batchNo, models.ProcessingInProgress, models.ProcessingCompleted)
	if err != nil {
		return "", err
	}
	if started {
		return "", apperr.Conflict("batch %s has already started processing", batchNo)
	}
	return batchNo, nil
}

func (s *PurchaseService) Create(ctx context.Context, caller models.Caller, req *models.CreatePurchaseRequest) (*models.Purchase, error) {
	station, err := s.Stations.Get(ctx, req.StationID)
	if err != nil {
		return nil, err
	}
	if !auth.CanOperateStation(caller, station.ID) {
		return nil, apperr.Forbidden("not allowed to record purchases for station %s", station.Code)
	}

	date, err := requireDate("purchaseDate", req.PurchaseDate)
	if err != nil {
		return nil, err
	}

	siteID, err := s.checkSite(ctx, station.ID, req.DeliveryType, req.SiteCollectionID)
	if err != nil {
		return nil, err
	}

	if err := s.checkSameDay(ctx, 0, station.ID, req.Grade, req.DeliveryType, siteID, date); err != nil {
		return nil, err
	}

	batchNo, err := s.CanAcceptPurchase(ctx, station, req.Grade, date)
	if err != nil {
		return nil, err
	}

	p := &models.Purchase{
		StationID:        station.ID,
		DeliveryType:     req.DeliveryType,
		SiteCollectionID: siteID,
		TotalKgs:         req.TotalKgs,
		TotalPrice:       req.TotalPrice,
		CherryPrice:      req.CherryPrice,
		TransportFee:     req.TransportFee,
		CommissionFee:    req.CommissionFee,
		Grade:            req.Grade,
		BatchNo:          batchNo,
		PurchaseDate:     date,
	}
	if err := s.Purchases.Create(ctx, p); err != nil {
		return nil, err
	}

	invalidateReports(ctx, s.Cache)
	return p, nil
}

// Update applies a partial change. A new grade or station moves the
// purchase to another batch, which is checked like a new purchase.
func (s *PurchaseService) Update(ctx context.Context, caller models.Caller, id int, req *models.UpdatePurchaseRequest) (*models.Purchase, error) {
	p, err := s.Purchases.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanOperateStation(caller, p.StationID) {
		return nil, apperr.Forbidden("not allowed to change purchases of this station")
	}

	stationChanged := req.StationID != nil && *req.StationID != p.StationID
	gradeChanged := req.Grade != nil && *req.Grade != p.Grade
	channelChanged := (req.DeliveryType != nil && *req.DeliveryType != p.DeliveryType) ||
		(req.SiteCollectionID != nil && (p.SiteCollectionID == nil || *req.SiteCollectionID != *p.SiteCollectionID))

	if stationChanged {
		if !auth.CanOperateStation(caller, *req.StationID) {
			return nil, apperr.Forbidden("not allowed to move purchases to that station")
		}
		p.StationID = *req.StationID
	}
	if gradeChanged {
		p.Grade = *req.Grade
	}
	if req.DeliveryType != nil {
		p.DeliveryType = *req.DeliveryType
	}
	if req.SiteCollectionID != nil {
		p.SiteCollectionID = req.SiteCollectionID
	}

	if stationChanged || channelChanged {
		siteID, err := s.checkSite(ctx, p.StationID, p.DeliveryType, p.SiteCollectionID)
		if err != nil {
			return nil, err
		}
		p.SiteCollectionID = siteID
	}

	if stationChanged || gradeChanged {
		station, err := s.Stations.Get(ctx, p.StationID)
		if err != nil {
			return nil, err
		}
		batchNo, err := s.CanAcceptPurchase(ctx, station, p.Grade, p.PurchaseDate)
		if err != nil {
			return nil, err
		}
		p.BatchNo = batchNo
	}

	if stationChanged || gradeChanged || channelChanged {
		if err := s.checkSameDay(ctx, p.ID, p.StationID, p.Grade, p.DeliveryType, p.SiteCollectionID, p.PurchaseDate); err != nil {
			return nil, err
		}
	}

	if req.TotalKgs != nil {
		p.TotalKgs = *req.TotalKgs
	}
	if req.TotalPrice != nil {
		p.TotalPrice = *req.TotalPrice
	}
	if req.CherryPrice != nil {
		p.CherryPrice = *req.CherryPrice
	}
	if req.TransportFee != nil {
		p.TransportFee = *req.TransportFee
	}
	if req.CommissionFee != nil {
		p.CommissionFee = *req.CommissionFee
	}

	if err := s.Purchases.Update(ctx, p); err != nil {
		return nil, err
	}

	invalidateReports(ctx, s.Cache)
	return p, nil
}

func (s *PurchaseService) Get(ctx context.Context, caller models.Caller, id int) (*models.Purchase, error) {
	p, err := s.Purchases.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessStation(caller, p.StationID) {
		return nil, apperr.Forbidden("not allowed to view purchases of this station")
	}
	return p, nil
}

func (s *PurchaseService) Delete(ctx context.Context, caller models.Caller, id int) error {
	p, err := s.Purchases.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanOperateStation(caller, p.StationID) {
		return apperr.Forbidden("not allowed to delete purchases of this station")
	}
	if err := s.Purchases.Delete(ctx, id); err != nil {
		return err
	}
	invalidateReports(ctx, s.Cache)
	return nil
}

func (s *PurchaseService) ListByStation(ctx context.Context, caller models.Caller, stationID int, page models.Page) (models.PageResult[*models.Purchase], error) {
	if !auth.CanAccessStation(caller, stationID) {
		return models.PageResult[*models.Purchase]{}, apperr.Forbidden("not allowed to view purchases of this station")
	}
	rows, total, err := s.Purchases.ListByStation(ctx, stationID, page)
	if err != nil {
		return models.PageResult[*models.Purchase]{}, err
	}
	return models.NewPageResult(rows, total, page), nil
}

// checkSite validates the site of a site-collection purchase and clears it
// for every other channel.
func (s *PurchaseService) checkSite(ctx context.Context, stationID int, deliveryType string, siteID *int) (*int, error) {
	if deliveryType != models.DeliverySiteCollection {
		return nil, nil
	}
	if siteID == nil {
		return nil, apperr.Validation("siteCollectionId is required for site collection purchases")
	}
	site, err := s.Stations.GetSiteCollection(ctx, *siteID)
	if err != nil {
		return nil, err
	}
	if site.StationID != stationID {
		return nil, apperr.Validation("site collection %d does not belong to station %d", site.ID, stationID)
	}
	return siteID, nil
}

func (s *PurchaseService) checkSameDay(ctx context.Context, excludeID, stationID int, grade, deliveryType string, siteID *int, date time.Time) error {
	w := PurchaseWindow{
		StationID:    stationID,
		Grade:        grade,
		DeliveryType: deliveryType,
		From:         timeutil.StartOfDay(date),
		To:           timeutil.EndOfDay(date),
		ExcludeID:    excludeID,
	}
	if deliveryType == models.DeliverySiteCollection {
		w.SiteCollectionID = siteID
	}

	existing, err := s.Purchases.FindSameDay(ctx, w)
	if err != nil {
		return err
	}
	if existing != nil {
		if w.SiteCollectionID != nil {
			return apperr.Conflict("a grade %s purchase from this site collection is already recorded for %s",
				grade, timeutil.ToStation(date).Format(timeutil.DateLayout))
		}
		return apperr.Conflict("a grade %s %s purchase is already recorded for %s",
			grade, deliveryType, timeutil.ToStation(date).Format(timeutil.DateLayout))
	}
	return nil
}

// CheckPurchase answers whether a purchase for the station, grade and day
// would be accepted, returning the batch it would join.
func (s *PurchaseService) CheckPurchase(ctx context.Context, stationID int, grade, date string) (string, error) {
	if grade == "" {
		return "", apperr.Validation("grade is required")
	}
	day, err := requireDate("date", date)
	if err != nil {
		return "", err
	}
	station, err := s.Stations.Get(ctx, stationID)
	if err != nil {
		return "", err
	}
	return s.CanAcceptPurchase(ctx, station, grade, day)
}
