package services

import (
	"context"
	"fmt"
	"sort"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/logging"
	"wetmill-backend/internal/metrics"
	"wetmill-backend/internal/models"
	"wetmill-backend/internal/timeutil"
)

type DeliveryService struct {
	Deliveries DeliveryStore
	Qualities  QualityStore
	Transfers  TransferStore
	Locker     SweepLocker
	Cache      ReportCache
}

func NewDeliveryService(deliveries DeliveryStore, qualities QualityStore, transfers TransferStore, locker SweepLocker, cache ReportCache) *DeliveryService {
	return &DeliveryService{Deliveries: deliveries, Qualities: qualities, Transfers: transfers, Locker: locker, Cache: cache}
}

func newDeliveryRecord(req models.DeliveryRequest, sample *models.Quality) *models.QualityDelivery {
	kgs := make(map[string]float64, len(models.CategoryKgsKeys))
	for _, key := range models.CategoryKgsKeys {
		kgs[key] = 0
	}
	category := req.Category
	if category == "" {
		category = grading.NoCategory
	}
	return &models.QualityDelivery{
		TransferID:   req.TransferID,
		QualityID:    &sample.ID,
		BatchNo:      req.BatchNo,
		BatchFamily:  batch.Family(req.BatchNo),
		StationID:    req.StationID,
		ProcessingID: req.ProcessingID,
		BaggingOffID: req.BaggingOffID,
		GradeKey:     req.GradeKey,
		Status:       models.SamplePending,
		CwsMoisture:  req.CwsMoisture,
		Screen:       models.EmptyScreen(),
		Category:     category,
		NewCategory:  grading.NoCategory,
		CategoryKgs:  kgs,
	}
}

// CreateRecord opens the delivery test of one grade key of a transfer. A
// second call for the same transfer and key returns the first record.
func (s *DeliveryService) CreateRecord(ctx context.Context, req models.DeliveryRequest) (*models.QualityDelivery, error) {
	d, _, err := s.createRecord(ctx, req)
	return d, err
}

func (s *DeliveryService) createRecord(ctx context.Context, req models.DeliveryRequest) (*models.QualityDelivery, bool, error) {
	sample, err := s.Qualities.FindProvenance(ctx, req.BaggingOffID, req.BatchNo)
	if err != nil {
		return nil, false, err
	}
	if sample == nil {
		return nil, false, apperr.NotFound("no quality sample for batch %s", req.BatchNo)
	}

	d, created, err := s.Deliveries.CreateIfAbsent(ctx, newDeliveryRecord(req, sample))
	if err != nil {
		return nil, false, err
	}
	if created {
		metrics.DeliveryRecordsCreated.Inc()
		invalidateReports(ctx, s.Cache)
	}
	return d, created, nil
}

func sortedDetailKeys(details map[string]models.GradeDetail) []string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func applyDeliveryResult(d *models.QualityDelivery, in models.DeliveryTestInput, categoryKgs map[string]float64) {
	if v := in.LabMoisture.Float(); v != 0 {
		d.LabMoisture = v
	}
	if v := in.Defect.Float(); v != 0 {
		d.Defect = v
	}
	if v := in.PPScore.Float(); v != 0 {
		d.PPScore = v
	}
	if in.Notes != "" {
		d.Notes = in.Notes
	}
	d.Screen = grading.MergeScreen(d.Screen, in.Screen)
	d.NewCategory = grading.Category(d.PPScore)
	if in.SampleStorageID != nil {
		d.SampleStorageID = in.SampleStorageID
	}
	if categoryKgs != nil {
		d.CategoryKgs = categoryKgs
	}
	d.Status = grading.Advance(d.Status, grading.DeliveryStatus(d))
}

// SubmitTestResult merges delivery lab results. The category weights of
// the request replace those of every submitted record.
func (s *DeliveryService) SubmitTestResult(ctx context.Context, caller models.Caller, req *models.DeliveryTestRequest) ([]*models.QualityDelivery, error) {
	if !auth.IsQualityStaff(caller) {
		return nil, apperr.Forbidden("only quality staff can submit delivery results")
	}

	records := make([]*models.QualityDelivery, 0, len(req.Batches))
	for _, in := range req.Batches {
		d, err := s.Deliveries.Get(ctx, in.ID, in.TransferID)
		if err != nil {
			return nil, err
		}
		records = append(records, d)
	}

	for i, d := range records {
		kgs := req.CategoryKgs
		if kgs != nil {
			kgs = make(map[string]float64, len(req.CategoryKgs))
			for k, v := range req.CategoryKgs {
				kgs[k] = v
			}
		}
		applyDeliveryResult(d, req.Batches[i], kgs)
		if err := s.Deliveries.Update(ctx, d); err != nil {
			return nil, err
		}
	}
	invalidateReports(ctx, s.Cache)
	return records, nil
}

func (s *DeliveryService) List(ctx context.Context, caller models.Caller, page models.Page) (models.PageResult[*models.QualityDelivery], error) {
	if !auth.CanViewQuality(caller) {
		return models.PageResult[*models.QualityDelivery]{}, apperr.Forbidden("not allowed to view delivery records")
	}
	rows, total, err := s.Deliveries.List(ctx, page)
	if err != nil {
		return models.PageResult[*models.QualityDelivery]{}, err
	}
	return models.NewPageResult(rows, total, page), nil
}

func truckKey(d *models.QualityDelivery) string {
	if d.TransportGroupID != "" {
		return d.TransportGroupID
	}
	day := "unknown"
	if d.TransferDate != nil {
		day = timeutil.ToStation(*d.TransferDate).Format(timeutil.DateLayout)
	}
	return d.TruckNumber + " - " + day
}

// TruckLoads groups the open delivery records by the truck that carried
// them, newest load first.
func (s *DeliveryService) TruckLoads(ctx context.Context, caller models.Caller) ([]*models.TruckLoad, error) {
	if !auth.CanViewQuality(caller) {
		return nil, apperr.Forbidden("not allowed to view delivery records")
	}
	rows, err := s.Deliveries.ListWithTrucks(ctx)
	if err != nil {
		return nil, err
	}

	loads := make(map[string]*models.TruckLoad)
	order := make([]string, 0)
	for _, d := range rows {
		if d.Status == models.SampleCompleted || d.TruckNumber == "" {
			continue
		}
		key := truckKey(d)
		load, ok := loads[key]
		if !ok {
			load = &models.TruckLoad{
				TransportGroupID: d.TransportGroupID,
				TruckNumber:      d.TruckNumber,
			}
			if d.TransferDate != nil {
				load.TransferDate = *d.TransferDate
			}
			loads[key] = load
			order = append(order, key)
		}
		load.Records = append(load.Records, d)
	}

	out := make([]*models.TruckLoad, 0, len(order))
	for _, key := range order {
		out = append(out, loads[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransferDate.After(out[j].TransferDate)
	})
	return out, nil
}

func (s *DeliveryService) ByTransportGroup(ctx context.Context, caller models.Caller, transportGroupID string) ([]*models.QualityDelivery, error) {
	if !auth.CanViewQuality(caller) {
		return nil, apperr.Forbidden("not allowed to view delivery records")
	}
	return s.Deliveries.ListByTransportGroup(ctx, transportGroupID)
}

// CreateForHighGradeTransfers opens a delivery record for every grade key
// of every HIGH transfer.
func (s *DeliveryService) CreateForHighGradeTransfers(ctx context.Context, caller models.Caller) (*models.SweepResult, error) {
	return s.sweep(ctx, caller, "delivery-all", func(ctx context.Context) ([]*models.Transfer, error) {
		return s.Transfers.ListByGradeGroup(ctx, models.GradeGroupHigh)
	})
}

// CreateMissing opens the delivery records of HIGH transfers that have none.
func (s *DeliveryService) CreateMissing(ctx context.Context, caller models.Caller) (*models.SweepResult, error) {
	return s.sweep(ctx, caller, "delivery-missing", s.Transfers.ListHighWithoutDelivery)
}

func (s *DeliveryService) sweep(ctx context.Context, caller models.Caller, name string, load func(context.Context) ([]*models.Transfer, error)) (*models.SweepResult, error) {
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

	transfers, err := load(ctx)
	if err != nil {
		return nil, err
	}

	res := &models.SweepResult{Records: []models.SweepItem{}, Errors: []models.SweepError{}}
	for _, t := range transfers {
		if len(t.GradeDetails) == 0 {
			res.Errors = append(res.Errors, models.SweepError{BatchNo: t.BatchNo, Error: "No gradeDetails found"})
			continue
		}
		for _, key := range sortedDetailKeys(t.GradeDetails) {
			detail := t.GradeDetails[key]
			req := models.DeliveryRequest{
				TransferID:   t.ID,
				BatchNo:      t.BatchNo,
				StationID:    t.StationID,
				BaggingOffID: t.BaggingOffID,
				ProcessingID: t.ProcessingID,
				CwsMoisture:  detail.MoistureContent,
				Category:     detail.CupProfile,
				GradeKey:     key,
			}
			d, created, err := s.createRecord(ctx, req)
			if err != nil {
				logging.LogError("delivery", "sweep", name, req, err)
				res.Errors = append(res.Errors, models.SweepError{
					BatchNo: t.BatchNo,
					Error:   fmt.Sprintf("%s: %s", key, apperr.PublicMessage(err)),
				})
				continue
			}
			if !created {
				continue
			}
			res.Records = append(res.Records, models.SweepItem{
				ID:           d.ID,
				BatchNo:      d.BatchNo,
				StationID:    d.StationID,
				ProcessingID: d.ProcessingID,
				GradeKey:     d.GradeKey,
			})
		}
	}
	res.Created = len(res.Records)
	res.Message = fmt.Sprintf("Created %d delivery records", res.Created)
	if len(res.Errors) > 0 {
		res.Message += fmt.Sprintf(" with %d errors", len(res.Errors))
	}
	return res, nil
}
