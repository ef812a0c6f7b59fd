package services

import (
	"context"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/models"
	"wetmill-backend/internal/timeutil"
)

type ProcessingService struct {
	Processings ProcessingStore
	Stations    StationStore
}

func NewProcessingService(processings ProcessingStore, stations StationStore) *ProcessingService {
	return &ProcessingService{Processings: processings, Stations: stations}
}

// Start opens processing of a batch at its station.
func (s *ProcessingService) Start(ctx context.Context, caller models.Caller, req *models.StartProcessingRequest) (*models.Processing, error) {
	ptype, ok := models.ParseProcessingType(req.ProcessingType)
	if !ok {
		return nil, apperr.Validation("unsupported processing type %q", req.ProcessingType)
	}
	if _, err := s.Stations.Get(ctx, req.StationID); err != nil {
		return nil, err
	}
	if !auth.CanOperateStation(caller, req.StationID) {
		return nil, apperr.Forbidden("not allowed to start processing at this station")
	}

	started, err := s.Processings.ExistsWithStatus(ctx, req.BatchNo,
		models.ProcessingInProgress, models.ProcessingBaggingStarted, models.ProcessingCompleted, models.ProcessingTransferred)
	if err != nil {
		return nil, err
	}
	if started {
		return nil, apperr.Conflict("batch %s is already being processed", req.BatchNo)
	}

	p := &models.Processing{
		BatchNo:        req.BatchNo,
		BatchFamily:    batch.Family(req.BatchNo),
		ProcessingType: ptype,
		StationID:      req.StationID,
		TotalKgs:       req.TotalKgs,
		Grade:          req.Grade,
		Status:         models.ProcessingInProgress,
		StartDate:      timeutil.Now(),
		Notes:          req.Notes,
	}
	if err := s.Processings.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProcessingService) Get(ctx context.Context, id int) (*models.Processing, error) {
	return s.Processings.Get(ctx, id)
}

func (s *ProcessingService) GetByBatch(ctx context.Context, batchNo string) (*models.Processing, error) {
	return s.Processings.GetByBatch(ctx, batchNo)
}

func (s *ProcessingService) ListByStation(ctx context.Context, caller models.Caller, stationID int, page models.Page) (models.PageResult[*models.Processing], error) {
	if !auth.CanAccessStation(caller, stationID) {
		return models.PageResult[*models.Processing]{}, apperr.Forbidden("not allowed to view this station")
	}
	rows, total, err := s.Processings.ListByStation(ctx, stationID, page)
	if err != nil {
		return models.PageResult[*models.Processing]{}, err
	}
	return models.NewPageResult(rows, total, page), nil
}
