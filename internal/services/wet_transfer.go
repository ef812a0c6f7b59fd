package services

import (
	"context"
	"fmt"
	"strings"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/models"
)

const defaultWetMoisture = 12.0

type WetTransferService struct {
	WetTransfers WetTransferStore
	Processings  ProcessingStore
	Cache        ReportCache
}

func NewWetTransferService(wetTransfers WetTransferStore, processings ProcessingStore, cache ReportCache) *WetTransferService {
	return &WetTransferService{WetTransfers: wetTransfers, Processings: processings, Cache: cache}
}

// Create hands a processing's wet parchment to another station. The
// processing is marked TRANSFERRED in the same write.
func (s *WetTransferService) Create(ctx context.Context, caller models.Caller, req *models.CreateWetTransferRequest) (*models.WetTransfer, error) {
	if req.SourceStationID == req.DestinationStationID {
		return nil, apperr.Validation("source and destination stations must differ")
	}
	ptype, ok := models.ParseProcessingType(req.ProcessingType)
	if !ok {
		return nil, apperr.Validation("unsupported processing type %q", req.ProcessingType)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	if !auth.CanOperateStation(caller, req.SourceStationID) {
		return nil, apperr.Forbidden("not allowed to send wet parchment from this station")
	}

	p, err := s.Processings.Get(ctx, req.ProcessingID)
	if err != nil {
		return nil, err
	}
	if p.StationID != req.SourceStationID {
		return nil, apperr.Validation("processing %d does not belong to station %d", p.ID, req.SourceStationID)
	}
	batchNo := req.BatchNo
	if batchNo == "" {
		batchNo = p.BatchNo
	}

	exists, err := s.WetTransfers.Exists(ctx, p.ID, batchNo, req.Grade)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("grade %s of batch %s has already been transferred", req.Grade, batchNo)
	}

	moisture := defaultWetMoisture
	if req.MoistureContent != nil {
		moisture = *req.MoistureContent
	}
	w := &models.WetTransfer{
		ProcessingID:         p.ID,
		BatchNo:              batchNo,
		Date:                 date,
		SourceStationID:      req.SourceStationID,
		DestinationStationID: req.DestinationStationID,
		TotalKgs:             req.TotalKgs,
		OutputKgs:            req.OutputKgs,
		Grade:                req.Grade,
		ProcessingType:       ptype,
		MoistureContent:      moisture,
		Status:               models.WetTransferPending,
		Notes:                req.Notes,
	}
	if err := s.WetTransfers.Create(ctx, w); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.Cache)
	return w, nil
}

func readingOrNA(v *float64) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}

// Receive accepts a pending transfer at its destination and appends the
// receiving measurements to its notes.
func (s *WetTransferService) Receive(ctx context.Context, caller models.Caller, id int, req *models.ReceiveWetTransferRequest) (*models.WetTransfer, error) {
	w, err := s.pendingAtDestination(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	measured := fmt.Sprintf("Moisture: %s, Defects: %s, Cup Score: %s",
		readingOrNA(req.MoistureContent), readingOrNA(req.Defects), readingOrNA(req.CupScore))
	notes := measured
	if req.Notes != nil && strings.TrimSpace(*req.Notes) != "" {
		notes = *req.Notes + "\n" + measured
	}

	if err := s.WetTransfers.SetStatus(ctx, id, models.WetTransferReceived, &notes); err != nil {
		return nil, err
	}
	w.Status = models.WetTransferReceived
	w.Notes = &notes
	return w, nil
}

func (s *WetTransferService) Reject(ctx context.Context, caller models.Caller, id int, req *models.RejectWetTransferRequest) (*models.WetTransfer, error) {
	w, err := s.pendingAtDestination(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Rejected by receiver"
	}
	if err := s.WetTransfers.SetStatus(ctx, id, models.WetTransferRejected, &reason); err != nil {
		return nil, err
	}
	w.Status = models.WetTransferRejected
	w.Notes = &reason
	return w, nil
}

func (s *WetTransferService) pendingAtDestination(ctx context.Context, caller models.Caller, id int) (*models.WetTransfer, error) {
	w, err := s.WetTransfers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanOperateStation(caller, w.DestinationStationID) {
		return nil, apperr.Forbidden("only the receiving station can answer this transfer")
	}
	if w.Status != models.WetTransferPending {
		return nil, apperr.Conflict("wet transfer %d is already %s", id, w.Status)
	}
	return w, nil
}

// Delete removes the transfer and reopens its processing.
func (s *WetTransferService) Delete(ctx context.Context, caller models.Caller, id int) error {
	w, err := s.WetTransfers.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanOperateStation(caller, w.SourceStationID) {
		return apperr.Forbidden("not allowed to delete this wet transfer")
	}
	if err := s.WetTransfers.Delete(ctx, id); err != nil {
		return err
	}
	invalidateReports(ctx, s.Cache)
	return nil
}

func (s *WetTransferService) Get(ctx context.Context, id int) (*models.WetTransfer, error) {
	return s.WetTransfers.Get(ctx, id)
}

func (s *WetTransferService) ListByBatch(ctx context.Context, batchNo string) ([]*models.WetTransfer, error) {
	return s.WetTransfers.ListByBatch(ctx, batchNo)
}

func (s *WetTransferService) ListBySource(ctx context.Context, caller models.Caller, stationID int) ([]*models.WetTransfer, error) {
	if !auth.CanAccessStation(caller, stationID) {
		return nil, apperr.Forbidden("not allowed to view this station")
	}
	return s.WetTransfers.ListBySource(ctx, stationID)
}

func (s *WetTransferService) ListByDestination(ctx context.Context, caller models.Caller, stationID int) ([]*models.WetTransfer, error) {
	if !auth.CanAccessStation(caller, stationID) {
		return nil, apperr.Forbidden("not allowed to view this station")
	}
	return s.WetTransfers.ListByDestination(ctx, stationID)
}

func countWetTransfers(rows []*models.WetTransfer) models.WetTransferCounts {
	c := models.WetTransferCounts{Total: len(rows)}
	for _, w := range rows {
		switch w.Status {
		case models.WetTransferPending:
			c.Pending++
		case models.WetTransferReceived:
			c.Received++
		case models.WetTransferRejected:
			c.Rejected++
		}
	}
	return c
}

func (s *WetTransferService) Summary(ctx context.Context, caller models.Caller, stationID int) (*models.WetTransferSummary, error) {
	sent, err := s.ListBySource(ctx, caller, stationID)
	if err != nil {
		return nil, err
	}
	received, err := s.WetTransfers.ListByDestination(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return &models.WetTransferSummary{
		Sent:     countWetTransfers(sent),
		Received: countWetTransfers(received),
	}, nil
}
