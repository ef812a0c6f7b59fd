package services

import (
	"context"
	"strings"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/models"
)

type SampleStorageService struct {
	Storages SampleStorageStore
}

func NewSampleStorageService(storages SampleStorageStore) *SampleStorageService {
	return &SampleStorageService{Storages: storages}
}

func (s *SampleStorageService) List(ctx context.Context) ([]*models.SampleStorage, error) {
	return s.Storages.List(ctx)
}

func (s *SampleStorageService) Get(ctx context.Context, id int) (*models.SampleStorage, error) {
	return s.Storages.Get(ctx, id)
}

func (s *SampleStorageService) Create(ctx context.Context, caller models.Caller, req *models.SampleStorageRequest) (*models.SampleStorage, error) {
	if !auth.CanManageCatalog(caller) {
		return nil, apperr.Forbidden("only admins can manage sample storage")
	}
	st := &models.SampleStorage{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if st.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := s.Storages.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SampleStorageService) Update(ctx context.Context, caller models.Caller, id int, req *models.SampleStorageRequest) (*models.SampleStorage, error) {
	if !auth.CanManageCatalog(caller) {
		return nil, apperr.Forbidden("only admins can manage sample storage")
	}
	st, err := s.Storages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		st.Name = name
	}
	st.Description = req.Description
	if err := s.Storages.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SampleStorageService) Delete(ctx context.Context, caller models.Caller, id int) error {
	if !auth.CanManageCatalog(caller) {
		return apperr.Forbidden("only admins can manage sample storage")
	}
	return s.Storages.Delete(ctx, id)
}
