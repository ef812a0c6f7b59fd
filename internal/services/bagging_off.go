package services

import (
	"context"
	"strings"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/metrics"
	"wetmill-backend/internal/models"
	"wetmill-backend/internal/tasks"
)

type BaggingOffService struct {
	BaggingOffs BaggingOffStore
	Processings ProcessingStore
	Quality     *QualityService
	Tasks       TaskRunner
	Cache       ReportCache
}

func NewBaggingOffService(baggingOffs BaggingOffStore, processings ProcessingStore, quality *QualityService, runner TaskRunner, cache ReportCache) *BaggingOffService {
	return &BaggingOffService{
		BaggingOffs: baggingOffs,
		Processings: processings,
		Quality:     quality,
		Tasks:       runner,
		Cache:       cache,
	}
}

// splitOutputs keeps the weights of the grade keys valid for the type and
// batch. Missing or non-numeric values count as zero and are not stored.
func splitOutputs(ptype models.ProcessingType, batchNo string, raw map[string]models.Reading) (map[string]float64, float64, error) {
	keys := ptype.OutputKeys(batchNo)
	outputs := make(map[string]float64, len(keys))
	values := make([]float64, 0, len(keys))
	for _, key := range keys {
		kg := raw[key].Float()
		if kg < 0 {
			return nil, 0, apperr.Validation("outputKgs.%s cannot be negative", key)
		}
		if kg == 0 {
			continue
		}
		outputs[key] = kg
		values = append(values, kg)
	}

	total := grading.Sum(values...)
	if total == 0 {
		return nil, 0, apperr.Validation("no output weight for grade keys %s", strings.Join(keys, ", "))
	}
	return outputs, total, nil
}

func triggersSample(outputs map[string]float64) bool {
	for _, key := range models.QualityTriggerKeys {
		if outputs[key] > 0 {
			return true
		}
	}
	return false
}

// Record stores one bagging-off. Each call adds a row; weights are never
// added to an earlier bagging-off of the batch.
func (s *BaggingOffService) Record(ctx context.Context, caller models.Caller, req *models.BaggingOffRequest) (*models.BaggingOff, error) {
	ptype, ok := models.ParseProcessingType(req.ProcessingType)
	if !ok {
		return nil, apperr.Validation("unsupported processing type %q", req.ProcessingType)
	}
	if strings.TrimSpace(req.Status) == "" {
		return nil, apperr.Validation("status is required")
	}
	date, err := requireDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	outputs, total, err := splitOutputs(ptype, req.BatchNo, req.OutputKgs)
	if err != nil {
		return nil, err
	}

	p, err := s.Processings.GetByBatch(ctx, req.BatchNo)
	if err != nil {
		return nil, err
	}
	if !auth.CanOperateStation(caller, p.StationID) {
		return nil, apperr.Forbidden("not allowed to bag off batches of this station")
	}

	b := &models.BaggingOff{
		BatchNo:        req.BatchNo,
		BatchFamily:    batch.Family(req.BatchNo),
		ProcessingID:   p.ID,
		StationID:      p.StationID,
		Date:           date,
		OutputKgs:      outputs,
		TotalOutputKgs: total,
		ProcessingType: ptype,
		Status:         req.Status,
		QualityStatus:  models.QualityStatusPending,
		Notes:          req.Notes,
		HGTransported:  []string{},
	}
	if err := s.BaggingOffs.Create(ctx, b); err != nil {
		return nil, err
	}

	metrics.BaggingOffsRecorded.WithLabelValues(string(ptype)).Inc()
	for key, kg := range outputs {
		metrics.BaggedKgs.WithLabelValues(key).Add(kg)
	}
	invalidateReports(ctx, s.Cache)

	if triggersSample(outputs) && s.Quality != nil {
		sr := sampleRequestFor(b)
		s.Tasks.Go(tasks.KindQualitySample, "quality-sample:"+b.BatchNo, func(ctx context.Context) error {
			_, err := s.Quality.EnsureSample(ctx, sr)
			return err
		})
	}
	return b, nil
}

// Update replaces the given fields. New output weights replace the old set
// entirely.
func (s *BaggingOffService) Update(ctx context.Context, caller models.Caller, id int, req *models.UpdateBaggingOffRequest) (*models.BaggingOff, error) {
	b, err := s.BaggingOffs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanOperateStation(caller, b.StationID) {
		return nil, apperr.Forbidden("not allowed to change bagging-offs of this station")
	}

	if req.Date != nil {
		date, err := requireDate("date", *req.Date)
		if err != nil {
			return nil, err
		}
		b.Date = date
	}
	if req.OutputKgs != nil {
		outputs, total, err := splitOutputs(b.ProcessingType, b.BatchNo, req.OutputKgs)
		if err != nil {
			return nil, err
		}
		b.OutputKgs = outputs
		b.TotalOutputKgs = total
	}
	if req.Status != nil {
		if strings.TrimSpace(*req.Status) == "" {
			return nil, apperr.Validation("status cannot be empty")
		}
		b.Status = *req.Status
	}
	if req.Notes != nil {
		b.Notes = req.Notes
	}

	if err := s.BaggingOffs.Update(ctx, b); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.Cache)
	return b, nil
}

// Delete removes the row without touching its transfers or samples.
func (s *BaggingOffService) Delete(ctx context.Context, caller models.Caller, id int) error {
	b, err := s.BaggingOffs.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanOperateStation(caller, b.StationID) {
		return apperr.Forbidden("not allowed to delete bagging-offs of this station")
	}
	if err := s.BaggingOffs.Delete(ctx, id); err != nil {
		return err
	}
	invalidateReports(ctx, s.Cache)
	return nil
}

func (s *BaggingOffService) Get(ctx context.Context, caller models.Caller, id int) (*models.BaggingOff, error) {
	b, err := s.BaggingOffs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessStation(caller, b.StationID) {
		return nil, apperr.Forbidden("not allowed to view this bagging-off")
	}
	return b, nil
}

func (s *BaggingOffService) ListByBatch(ctx context.Context, batchNo string) ([]*models.BaggingOff, error) {
	return s.BaggingOffs.ListByBatch(ctx, batchNo)
}

func (s *BaggingOffService) ListByStation(ctx context.Context, caller models.Caller, stationID int, page models.Page) (models.PageResult[*models.BaggingOff], error) {
	if !auth.CanAccessStation(caller, stationID) {
		return models.PageResult[*models.BaggingOff]{}, apperr.Forbidden("not allowed to view this station")
	}
	rows, total, err := s.BaggingOffs.ListByStation(ctx, stationID, page)
	if err != nil {
		return models.PageResult[*models.BaggingOff]{}, err
	}
	return models.NewPageResult(rows, total, page), nil
}
