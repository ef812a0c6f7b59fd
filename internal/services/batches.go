package services

import (
	"context"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/models"
)

// BatchService serves the station worklists.
type BatchService struct {
	BaggingOffs BaggingOffStore
	Transfers   TransferStore
}

func NewBatchService(baggingOffs BaggingOffStore, transfers TransferStore) *BatchService {
	return &BatchService{BaggingOffs: baggingOffs, Transfers: transfers}
}

// PendingGradeA lists the station's completed grade-A batches that still
// wait for a sample.
func (s *BatchService) PendingGradeA(ctx context.Context, caller models.Caller, stationID int) ([]*models.BaggingOff, error) {
	if !auth.CanAccessStation(caller, stationID) {
		return nil, apperr.Forbidden("not allowed to view this station")
	}
	return s.BaggingOffs.ListPendingGradeA(ctx, stationID)
}

// HighGradeTransfers groups the station's completed HIGH transfers by the
// bagging-off they came from, adding up the moved weights.
func (s *BatchService) HighGradeTransfers(ctx context.Context, caller models.Caller, stationID int) ([]*models.TransferredByBaggingOff, error) {
	if !auth.CanAccessStation(caller, stationID) {
		return nil, apperr.Forbidden("not allowed to view this station")
	}
	transfers, err := s.Transfers.ListCompletedHigh(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return groupByBaggingOff(transfers), nil
}

func groupByBaggingOff(transfers []*models.Transfer) []*models.TransferredByBaggingOff {
	groups := make(map[int]*models.TransferredByBaggingOff)
	out := make([]*models.TransferredByBaggingOff, 0)
	for _, t := range transfers {
		g, ok := groups[t.BaggingOffID]
		if !ok {
			g = &models.TransferredByBaggingOff{
				BaggingOffID: t.BaggingOffID,
				BatchNo:      t.BatchNo,
				OutputKgs:    make(map[string]float64),
			}
			groups[t.BaggingOffID] = g
			out = append(out, g)
		}
		for key, kg := range t.OutputKgs {
			g.OutputKgs[key] = grading.Sum(g.OutputKgs[key], kg)
		}
		g.Transfers = append(g.Transfers, t)
	}
	return out
}
