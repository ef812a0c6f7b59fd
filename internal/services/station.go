package services

import (
	"context"

	"wetmill-backend/internal/models"
)

type StationService struct {
	Stations StationStore
}

func NewStationService(stations StationStore) *StationService {
	return &StationService{Stations: stations}
}

func (s *StationService) List(ctx context.Context) ([]*models.Station, error) {
	return s.Stations.List(ctx)
}

func (s *StationService) Get(ctx context.Context, id int) (*models.Station, error) {
	return s.Stations.Get(ctx, id)
}

func (s *StationService) ListSiteCollections(ctx context.Context, stationID int) ([]*models.SiteCollection, error) {
	if _, err := s.Stations.Get(ctx, stationID); err != nil {
		return nil, err
	}
	return s.Stations.ListSiteCollections(ctx, stationID)
}
