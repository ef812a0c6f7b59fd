package services

import (
	"context"
	"encoding/json"
	"fmt"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/auth"
	"wetmill-backend/internal/cache"
	"wetmill-backend/internal/documents"
	"wetmill-backend/internal/logging"
	"wetmill-backend/internal/metrics"
	"wetmill-backend/internal/models"
	"wetmill-backend/internal/timeutil"

	"golang.org/x/sync/errgroup"
)

// Archiver stores report snapshots.
type Archiver interface {
	Bucket() string
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

type ReportService struct {
	Reports   ReportStore
	Stations  StationStore
	Transfers TransferStore
	Cache     ReportCache
	Archiver  Archiver
}

func NewReportService(reports ReportStore, stations StationStore, transfers TransferStore, reportCache ReportCache, archiver Archiver) *ReportService {
	return &ReportService{
		Reports:   reports,
		Stations:  stations,
		Transfers: transfers,
		Cache:     reportCache,
		Archiver:  archiver,
	}
}

// cached serves a report from the cache or builds and stores it.
func cached[T any](ctx context.Context, c ReportCache, key, name string, build func(context.Context) (*T, error)) (*T, error) {
	if c != nil {
		if data, ok := c.Get(ctx, key); ok {
			var out T
			if err := json.Unmarshal(data, &out); err == nil {
				metrics.ReportCacheLookups.WithLabelValues(name, "hit").Inc()
				return &out, nil
			}
		}
		metrics.ReportCacheLookups.WithLabelValues(name, "miss").Inc()
	}

	out, err := build(ctx)
	if err != nil {
		return nil, err
	}
	if c != nil {
		if data, err := json.Marshal(out); err == nil {
			c.Set(ctx, key, data)
		}
	}
	return out, nil
}

func (s *ReportService) stationNames(ctx context.Context) (map[int]string, []*models.Station, error) {
	stations, err := s.Stations.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[int]string, len(stations))
	for _, st := range stations {
		names[st.ID] = st.Name
	}
	return names, stations, nil
}

func (s *ReportService) Yield(ctx context.Context, caller models.Caller) (*models.YieldReport, error) {
	if !auth.CanViewReports(caller) {
		return nil, apperr.Forbidden("not allowed to view reports")
	}
	return cached(ctx, s.Cache, cache.YieldReportKey, "yield", s.buildYield)
}

func (s *ReportService) buildYield(ctx context.Context) (*models.YieldReport, error) {
	var (
		processings []*models.Processing
		baggingOffs []*models.BaggingOff
		names       map[int]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		processings, err = s.Reports.ListProcessings(gctx)
		return err
	})
	g.Go(func() (err error) {
		baggingOffs, err = s.Reports.ListCountedBaggingOffs(gctx)
		return err
	})
	g.Go(func() (err error) {
		names, _, err = s.stationNames(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildYieldReport(processings, baggingOffs, names), nil
}

func (s *ReportService) Stock(ctx context.Context, caller models.Caller) (*models.StockReport, error) {
	if !auth.CanViewReports(caller) {
		return nil, apperr.Forbidden("not allowed to view reports")
	}
	return cached(ctx, s.Cache, cache.StockReportKey, "stock", s.buildStock)
}

func (s *ReportService) buildStock(ctx context.Context) (*models.StockReport, error) {
	var (
		stations  []*models.Station
		purchased map[int]float64
		output    map[int]float64
		transfers []*models.Transfer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stations, err = s.Stations.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		purchased, err = s.Reports.PurchaseKgsByStation(gctx)
		return err
	})
	g.Go(func() (err error) {
		output, err = s.Reports.OutputKgsByStation(gctx)
		return err
	})
	g.Go(func() (err error) {
		transfers, err = s.Reports.ListCompletedTransfers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildStockReport(stations, purchased, output, transfers), nil
}

func (s *ReportService) Delivery(ctx context.Context, caller models.Caller) (*models.DeliveryReport, error) {
	if !auth.CanViewQuality(caller) {
		return nil, apperr.Forbidden("not allowed to view quality reports")
	}
	return cached(ctx, s.Cache, cache.DeliveryReportKey, "delivery", s.buildDelivery)
}

func (s *ReportService) buildDelivery(ctx context.Context) (*models.DeliveryReport, error) {
	var (
		rows []*models.DeliveryReportRow
		low  []*models.Transfer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.Reports.DeliveryReportRows(gctx)
		return err
	})
	g.Go(func() (err error) {
		low, err = s.Reports.ListLowTransfers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildDeliveryReport(rows, low), nil
}

// YieldWorkbook exports the yield report as a spreadsheet.
func (s *ReportService) YieldWorkbook(ctx context.Context, caller models.Caller) ([]byte, error) {
	r, err := s.Yield(ctx, caller)
	if err != nil {
		return nil, err
	}
	data, err := documents.YieldWorkbook(r)
	if err != nil {
		return nil, apperr.Internal(err, "could not build the yield workbook")
	}
	return data, nil
}

// DeliveryNote renders the note for the truck load a transfer travelled in.
func (s *ReportService) DeliveryNote(ctx context.Context, caller models.Caller, transferID int) ([]byte, error) {
	t, err := s.Transfers.Get(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessStation(caller, t.StationID) {
		return nil, apperr.Forbidden("not allowed to view transfers of this station")
	}

	load := []*models.Transfer{t}
	if t.TransportGroupID != "" {
		var same []*models.Transfer
		all, err := s.Transfers.ListByStation(ctx, t.StationID, nil, nil)
		if err != nil {
			return nil, err
		}
		for _, other := range all {
			if other.TransportGroupID == t.TransportGroupID {
				same = append(same, other)
			}
		}
		if len(same) > 0 {
			load = same
		}
	}

	station, err := s.Stations.Get(ctx, t.StationID)
	if err != nil {
		return nil, err
	}
	data, err := documents.DeliveryNote(station.Name, load)
	if err != nil {
		return nil, apperr.Internal(err, "could not build the delivery note")
	}
	return data, nil
}

// Archive stores a JSON snapshot of a report in the archive bucket.
func (s *ReportService) Archive(ctx context.Context, caller models.Caller, name string) (*models.ArchiveReceipt, error) {
	if !auth.IsAdmin(caller) {
		return nil, apperr.Forbidden("only admins can archive reports")
	}
	if s.Archiver == nil {
		return nil, apperr.Conflict("report archive is not configured")
	}

	var (
		report any
		err    error
	)
	switch name {
	case "yield":
		report, err = s.buildYield(ctx)
	case "stock":
		report, err = s.buildStock(ctx)
	case "delivery":
		report, err = s.buildDelivery(ctx)
	default:
		return nil, apperr.Validation("unknown report %q", name)
	}
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(report)
	if err != nil {
		return nil, apperr.Internal(err, "could not encode report")
	}
	now := timeutil.Now()
	key := fmt.Sprintf("reports/%s/%s_%s.json", name, name, now.Format("20060102_150405"))
	if err := s.Archiver.Put(ctx, key, body, "application/json"); err != nil {
		logging.LogError("reports", "Archive", "upload", key, err)
		return nil, apperr.Internal(err, "could not store the report snapshot")
	}

	return &models.ArchiveReceipt{
		Report:    name,
		Key:       key,
		Bucket:    s.Archiver.Bucket(),
		Bytes:     len(body),
		CreatedAt: now,
	}, nil
}
