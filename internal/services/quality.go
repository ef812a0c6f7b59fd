package services

import (
	"context"
	"fmt"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/logging"
	"wetmill-backend/internal/metrics"
	"wetmill-backend/internal/models"
)

// Sources of a new quality sample, used as the metric label.
const (
	sourceBaggingOff  = "bagging_off"
	sourceInitialTest = "initial_test"
	sourceTransfer    = "transfer"
	sourceBackfill    = "backfill"
)

type QualityService struct {
	Qualities   QualityStore
	BaggingOffs BaggingOffStore
	Locker      SweepLocker
	Cache       ReportCache
}

func NewQualityService(qualities QualityStore, baggingOffs BaggingOffStore, locker SweepLocker, cache ReportCache) *QualityService {
	return &QualityService{Qualities: qualities, BaggingOffs: baggingOffs, Locker: locker, Cache: cache}
}

func newSample(req models.SampleRequest) *models.Quality {
	keys := req.ProcessingType.SampleKeys()
	q := &models.Quality{
		BatchNo:          req.BatchNo,
		BatchFamily:      batch.Family(req.BatchNo),
		StationID:        req.StationID,
		ProcessingID:     req.ProcessingID,
		BaggingOffID:     req.BaggingOffID,
		ProcessingType:   req.ProcessingType,
		Status:           models.SamplePending,
		CwsMoisture1:     make(map[string]models.Reading, len(keys)),
		LabMoisture:      make(map[string]models.Reading, len(keys)),
		Screen:           make(map[string]models.Screen, len(keys)),
		Defect:           make(map[string]models.Reading, len(keys)),
		PPScore:          make(map[string]models.Reading, len(keys)),
		Notes:            make(map[string]string, len(keys)),
		Category:         make(map[string]string, len(keys)),
		SampleStorageID0: req.StorageID0,
		SampleStorageID1: req.StorageID1,
	}
	for _, key := range keys {
		q.CwsMoisture1[key] = ""
		q.LabMoisture[key] = ""
		q.Screen[key] = models.EmptyScreen()
		q.Defect[key] = ""
		q.PPScore[key] = ""
		q.Notes[key] = ""
		q.Category[key] = ""
	}
	q.CwsMoisture1 = grading.MergeValues(q.CwsMoisture1, grading.OnlyKeys(req.CwsMoisture1, keys))
	return q
}

func (s *QualityService) ensure(ctx context.Context, req models.SampleRequest, source string) (*models.Quality, bool, error) {
	q, created, err := s.Qualities.CreateIfAbsent(ctx, newSample(req))
	if err != nil {
		return nil, false, err
	}
	if created {
		metrics.QualitySamplesCreated.WithLabelValues(source).Inc()
	}
	return q, created, nil
}

// EnsureSample returns the sample of the batch at the station for the
// processing, creating a pending one when none exists.
func (s *QualityService) EnsureSample(ctx context.Context, req models.SampleRequest) (*models.Quality, error) {
	q, _, err := s.ensure(ctx, req, sourceBaggingOff)
	return q, err
}

func sampleRequestFor(b *models.BaggingOff) models.SampleRequest {
	return models.SampleRequest{
		BatchNo:        b.BatchNo,
		StationID:      b.StationID,
		BaggingOffID:   b.ID,
		ProcessingID:   b.ProcessingID,
		ProcessingType: b.ProcessingType,
	}
}

func hasMoisture(values map[string]models.Reading) bool {
	for _, v := range values {
		if !v.Empty() {
			return true
		}
	}
	return false
}

// SubmitInitialTest records the station's own moisture readings and opens
// a sample for each completed grade-A batch. Every batch is checked before
// any sample is written.
func (s *QualityService) SubmitInitialTest(ctx context.Context, caller models.Caller, req *models.InitialTestRequest) ([]*models.Quality, error) {
	if !auth.IsAnyStationManager(caller) {
		return nil, apperr.Forbidden("only station managers can submit initial tests")
	}

	pending := make([]models.SampleRequest, 0, len(req.Batches))
	for _, in := range req.Batches {
		if in.BatchNo == "" {
			return nil, apperr.Validation("batchNo is required")
		}
		if !hasMoisture(in.CwsMoisture1) {
			return nil, apperr.Validation("batch %s: at least one moisture value is required", in.BatchNo)
		}

		b, err := s.BaggingOffs.FindGradeA(ctx, in.BatchNo, true)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, apperr.NotFound("no completed grade A bagging-off for batch %s", in.BatchNo)
		}
		if !auth.IsStationManager(caller, b.StationID) {
			return nil, apperr.Forbidden("batch %s belongs to another station", in.BatchNo)
		}

		exists, err := s.Qualities.ExistsForBatch(ctx, in.BatchNo)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Conflict("a quality record already exists for batch %s", in.BatchNo)
		}

		sr := sampleRequestFor(b)
		sr.CwsMoisture1 = in.CwsMoisture1
		sr.StorageID0 = in.SampleStorageID0
		sr.StorageID1 = in.SampleStorageID1
		pending = append(pending, sr)
	}

	out := make([]*models.Quality, 0, len(pending))
	for _, sr := range pending {
		q, _, err := s.ensure(ctx, sr, sourceInitialTest)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// applyResult merges a lab submission into q. Empty values never replace
// recorded ones, keys the sample is not tested on are ignored and the
// status only moves forward.
func applyResult(q *models.Quality, in models.TestResultInput) {
	keys := q.Keys()
	q.CwsMoisture1 = grading.MergeValues(q.CwsMoisture1, grading.OnlyKeys(in.CwsMoisture1, keys))
	q.LabMoisture = grading.MergeValues(q.LabMoisture, grading.OnlyKeys(in.LabMoisture, keys))
	q.Screen = grading.MergeScreens(q.Screen, grading.OnlyKeys(in.Screen, keys))
	q.Defect = grading.MergeValues(q.Defect, grading.OnlyKeys(in.Defect, keys))
	q.PPScore = grading.MergeValues(q.PPScore, grading.OnlyKeys(in.PPScore, keys))
	q.Notes = grading.MergeValues(q.Notes, grading.OnlyKeys(in.Notes, keys))

	if q.Category == nil {
		q.Category = make(map[string]string, len(q.PPScore))
	}
	for key, score := range q.PPScore {
		if cat, ok := grading.CategoryOf(score); ok {
			q.Category[key] = cat
		}
	}

	if in.SampleStorageID0 != nil {
		q.SampleStorageID0 = in.SampleStorageID0
	}
	if in.SampleStorageID1 != nil {
		q.SampleStorageID1 = in.SampleStorageID1
	}
	q.Status = grading.Advance(q.Status, grading.SampleStatus(q))
}

// SubmitTestResult merges lab results into existing samples.
func (s *QualityService) SubmitTestResult(ctx context.Context, caller models.Caller, req *models.TestResultRequest) ([]*models.Quality, error) {
	if !auth.IsQualityStaff(caller) {
		return nil, apperr.Forbidden("only quality staff can submit test results")
	}

	samples := make([]*models.Quality, 0, len(req.Batches))
	for _, in := range req.Batches {
		if in.BatchNo == "" {
			return nil, apperr.Validation("batchNo is required")
		}
		b, err := s.BaggingOffs.FindGradeA(ctx, in.BatchNo, false)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, apperr.NotFound("no grade A bagging-off for batch %s", in.BatchNo)
		}
		q, err := s.Qualities.FindByBatchStation(ctx, in.BatchNo, b.StationID)
		if err != nil {
			return nil, err
		}
		samples = append(samples, q)
	}

	for i, q := range samples {
		applyResult(q, req.Batches[i])
		if err := s.Qualities.SaveResult(ctx, q); err != nil {
			return nil, err
		}
	}
	invalidateReports(ctx, s.Cache)
	return samples, nil
}

func (s *QualityService) Get(ctx context.Context, caller models.Caller, id int) (*models.Quality, error) {
	q, err := s.Qualities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessStation(caller, q.StationID) {
		return nil, apperr.Forbidden("not allowed to view this sample")
	}
	return q, nil
}

// List returns samples in testing across stations, incomplete ones first.
func (s *QualityService) List(ctx context.Context, caller models.Caller, page models.Page) (models.PageResult[*models.Quality], error) {
	if !auth.CanViewQuality(caller) {
		return models.PageResult[*models.Quality]{}, apperr.Forbidden("not allowed to view quality records")
	}
	rows, total, err := s.Qualities.List(ctx, nil, page)
	if err != nil {
		return models.PageResult[*models.Quality]{}, err
	}
	return models.NewPageResult(rows, total, page), nil
}

func (s *QualityService) ListByStation(ctx context.Context, caller models.Caller, stationID int, page models.Page) (models.PageResult[*models.Quality], error) {
	if !auth.IsStationManager(caller, stationID) {
		return models.PageResult[*models.Quality]{}, apperr.Forbidden("only the station's manager can view its samples")
	}
	rows, total, err := s.Qualities.List(ctx, &stationID, page)
	if err != nil {
		return models.PageResult[*models.Quality]{}, err
	}
	return models.NewPageResult(rows, total, page), nil
}

// CreateForAllBaggingOff opens a sample for the latest bagging-off of
// every batch that has none.
func (s *QualityService) CreateForAllBaggingOff(ctx context.Context, caller models.Caller) (*models.SweepResult, error) {
	return s.sweep(ctx, caller, "quality-all", s.BaggingOffs.LatestPerBatch)
}

// CreateMissing opens a sample for every bagging-off whose batch has none.
func (s *QualityService) CreateMissing(ctx context.Context, caller models.Caller) (*models.SweepResult, error) {
	return s.sweep(ctx, caller, "quality-missing", s.BaggingOffs.ListWithoutQuality)
}

func (s *QualityService) sweep(ctx context.Context, caller models.Caller, name string, load func(context.Context) ([]*models.BaggingOff, error)) (*models.SweepResult, error) {
	if !auth.IsAdmin(caller) {
		return nil, apperr.Forbidden("only admins can run backfills")
	}
	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, name)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	res := &models.SweepResult{Records: []models.SweepItem{}, Errors: []models.SweepError{}}
	for _, b := range rows {
		q, created, err := s.ensure(ctx, sampleRequestFor(b), sourceBackfill)
		if err != nil {
			logging.LogError("quality", "sweep", name, b.BatchNo, err)
			res.Errors = append(res.Errors, models.SweepError{BatchNo: b.BatchNo, Error: apperr.PublicMessage(err)})
			continue
		}
		if !created {
			continue
		}
		res.Records = append(res.Records, models.SweepItem{
			ID:           q.ID,
			BatchNo:      q.BatchNo,
			StationID:    q.StationID,
			ProcessingID: q.ProcessingID,
		})
	}
	res.Created = len(res.Records)
	res.Message = fmt.Sprintf("Created %d quality records", res.Created)
	return res, nil
}
