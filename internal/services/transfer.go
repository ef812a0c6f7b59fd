package services

import (
	"context"
	"fmt"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/metrics"
	"wetmill-backend/internal/models"
	"wetmill-backend/internal/tasks"
	"wetmill-backend/internal/timeutil"

	"github.com/google/uuid"
)

type TransferService struct {
	Transfers   TransferStore
	BaggingOffs BaggingOffStore
	Quality     *QualityService
	Deliveries  *DeliveryService
	Tasks       TaskRunner
	Cache       ReportCache
}

func NewTransferService(transfers TransferStore, baggingOffs BaggingOffStore, quality *QualityService, deliveries *DeliveryService, runner TaskRunner, cache ReportCache) *TransferService {
	return &TransferService{
		Transfers:   transfers,
		BaggingOffs: baggingOffs,
		Quality:     quality,
		Deliveries:  deliveries,
		Tasks:       runner,
		Cache:       cache,
	}
}

func memberIDs(req *models.TransferRequest) ([]int, error) {
	if !req.IsGroupedTransfer {
		if req.BaggingOffID <= 0 {
			return nil, apperr.Validation("baggingOffId is required")
		}
		return []int{req.BaggingOffID}, nil
	}
	if len(req.BaggingOffIDs) == 0 {
		return nil, apperr.Validation("baggingOffIds is required for a grouped transfer")
	}
	seen := make(map[int]bool, len(req.BaggingOffIDs))
	ids := make([]int, 0, len(req.BaggingOffIDs))
	for _, id := range req.BaggingOffIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func draftTransfer(req *models.TransferRequest, b *models.BaggingOff, date time.Time, groupID string) *models.Transfer {
	outputs := make(map[string]float64, len(req.OutputKgs))
	for key, kg := range req.OutputKgs {
		outputs[key] = kg
	}
	details := make(map[string]models.GradeDetail, len(req.GradeDetails))
	for key, d := range req.GradeDetails {
		if _, ok := outputs[key]; ok {
			details[key] = d
		}
	}

	t := &models.Transfer{
		BatchNo:          req.BatchNo,
		BatchFamily:      batch.Family(req.BatchNo),
		BaggingOffID:     b.ID,
		StationID:        b.StationID,
		ProcessingID:     b.ProcessingID,
		GradeGroup:       req.GradeGroup,
		OutputKgs:        outputs,
		GradeDetails:     details,
		TruckNumber:      req.TruckNumber,
		DriverName:       req.DriverName,
		DriverPhone:      req.DriverPhone,
		TransferMode:     req.TransferMode,
		TransferDate:     date,
		Notes:            req.Notes,
		Status:           models.TransferCompleted,
		TransportGroupID: groupID,
	}
	if req.IsGroupedTransfer {
		group := req.BatchNo
		t.IsGrouped = true
		t.GroupBatchNo = &group
	}
	grading.Summarize(t)
	return t
}

// Create moves graded parchment off one or more bagging-offs. Keys that
// already left a bagging-off are dropped from its transfer; the call fails
// only when nothing is left to move on any member.
func (s *TransferService) Create(ctx context.Context, caller models.Caller, req *models.TransferRequest) (*models.TransferResult, error) {
	if len(req.OutputKgs) == 0 {
		return nil, apperr.Validation("outputKgs is required")
	}
	for key, kg := range req.OutputKgs {
		if kg <= 0 {
			return nil, apperr.Validation("outputKgs.%s must be positive", key)
		}
	}
	if req.GradeGroup != models.GradeGroupHigh && req.GradeGroup != models.GradeGroupLow {
		return nil, apperr.Validation("gradeGroup must be HIGH or LOW")
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	ids, err := memberIDs(req)
	if err != nil {
		return nil, err
	}

	members := make([]*models.BaggingOff, 0, len(ids))
	for _, id := range ids {
		b, err := s.BaggingOffs.Get(ctx, id)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, apperr.NotFound("bagging-off %d not found", id)
			}
			return nil, err
		}
		if !auth.CanOperateStation(caller, b.StationID) {
			return nil, apperr.Forbidden("not allowed to transfer from station %d", b.StationID)
		}
		members = append(members, b)
	}

	groupID := req.TransportGroupID
	if groupID == "" {
		groupID = uuid.NewString()
	}

	for _, b := range members {
		if err := s.ensureProvenance(ctx, b); err != nil {
			return nil, err
		}
	}

	drafts := make([]*models.Transfer, 0, len(members))
	for _, b := range members {
		drafts = append(drafts, draftTransfer(req, b, date, groupID))
	}

	requested := len(req.OutputKgs) * len(drafts)
	created, err := s.Transfers.CreateLocked(ctx, drafts)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			metrics.GradeKeysRejected.Add(float64(requested))
		}
		return nil, err
	}

	kept := 0
	for _, t := range created {
		kept += len(t.OutputKgs)
	}
	metrics.TransfersCreated.WithLabelValues(req.GradeGroup).Add(float64(len(created)))
	if rejected := requested - kept; rejected > 0 {
		metrics.GradeKeysRejected.Add(float64(rejected))
	}
	invalidateReports(ctx, s.Cache)

	for _, t := range created {
		s.scheduleDeliveries(t)
	}

	return &models.TransferResult{
		Message:          fmt.Sprintf("Successfully transferred %d records", len(created)),
		TransportGroupID: groupID,
		Transfers:        created,
	}, nil
}

// ensureProvenance makes sure the lot has a sample its delivery records
// can be compared with.
func (s *TransferService) ensureProvenance(ctx context.Context, b *models.BaggingOff) error {
	if s.Quality == nil {
		return nil
	}
	q, err := s.Quality.Qualities.FindProvenance(ctx, b.ID, b.BatchNo)
	if err != nil {
		return err
	}
	if q != nil {
		return nil
	}
	_, _, err = s.Quality.ensure(ctx, sampleRequestFor(b), sourceTransfer)
	return err
}

// deliveryRequest carries one key's moisture and cup profile to the
// delivery ledger, falling back to the transfer summary.
func deliveryRequest(t *models.Transfer, key string) models.DeliveryRequest {
	req := models.DeliveryRequest{
		TransferID:   t.ID,
		BatchNo:      t.BatchNo,
		StationID:    t.StationID,
		BaggingOffID: t.BaggingOffID,
		ProcessingID: t.ProcessingID,
		GradeKey:     key,
	}
	d, ok := t.GradeDetails[key]
	if ok && d.MoistureContent != 0 {
		req.CwsMoisture = d.MoistureContent
	} else if t.CupProfilePercentage != nil {
		req.CwsMoisture = *t.CupProfilePercentage
	}
	if ok && d.CupProfile != "" {
		req.Category = d.CupProfile
	} else if t.CupProfile != nil {
		req.Category = *t.CupProfile
	}
	return req
}

func (s *TransferService) scheduleDeliveries(t *models.Transfer) {
	if s.Deliveries == nil {
		return
	}
	for _, key := range t.GradeKeys() {
		req := deliveryRequest(t, key)
		s.Tasks.Go(tasks.KindDeliveryRecord, fmt.Sprintf("delivery-record:%d:%s", t.ID, key), func(ctx context.Context) error {
			_, err := s.Deliveries.CreateRecord(ctx, req)
			return err
		})
	}
}

func (s *TransferService) Get(ctx context.Context, id int) (*models.Transfer, error) {
	return s.Transfers.Get(ctx, id)
}

func (s *TransferService) List(ctx context.Context, page models.Page) (models.PageResult[*models.Transfer], error) {
	rows, total, err := s.Transfers.List(ctx, page)
	if err != nil {
		return models.PageResult[*models.Transfer]{}, err
	}
	return models.NewPageResult(rows, total, page), nil
}

func (s *TransferService) ListByBatch(ctx context.Context, batchNo string) ([]*models.Transfer, error) {
	return s.Transfers.ListByBatch(ctx, batchNo)
}

// ListByStation filters on the transfer date when from or to is given.
func (s *TransferService) ListByStation(ctx context.Context, caller models.Caller, stationID int, from, to string) ([]*models.Transfer, error) {
	if !auth.CanAccessStation(caller, stationID) {
		return nil, apperr.Forbidden("not allowed to view transfers of this station")
	}
	var fromT, toT *time.Time
	if from != "" {
		t, err := parseDate("startDate", from)
		if err != nil {
			return nil, err
		}
		t = timeutil.StartOfDay(t)
		fromT = &t
	}
	if to != "" {
		t, err := parseDate("endDate", to)
		if err != nil {
			return nil, err
		}
		t = timeutil.EndOfDay(t)
		toT = &t
	}
	if fromT != nil && toT != nil && toT.Before(*fromT) {
		return nil, apperr.Validation("endDate is before startDate")
	}
	return s.Transfers.ListByStation(ctx, stationID, fromT, toT)
}

func (s *TransferService) ListByBaggingOff(ctx context.Context, baggingOffID int) ([]*models.Transfer, error) {
	return s.Transfers.ListByBaggingOff(ctx, baggingOffID)
}

func (s *TransferService) ListByGradeGroup(ctx context.Context, gradeGroup string) ([]*models.Transfer, error) {
	if gradeGroup != models.GradeGroupHigh && gradeGroup != models.GradeGroupLow {
		return nil, apperr.Validation("gradeGroup must be HIGH or LOW")
	}
	return s.Transfers.ListByGradeGroup(ctx, gradeGroup)
}
