package repositories

import (
	"context"

	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository loads the datasets behind the yield, stock and delivery
// reports. Every method is a single read.
type ReportRepository struct {
	DB          *pgxpool.Pool
	processings *ProcessingRepository
	transfers   *TransferRepository
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{
		DB:          db,
		processings: NewProcessingRepository(db),
		transfers:   NewTransferRepository(db),
	}
}

var countedStatuses = []string{models.BaggingOffCompleted, models.WetTransferReceiverCompleted}

func (r *ReportRepository) ListProcessings(ctx context.Context) ([]*models.Processing, error) {
	return r.processings.ListAll(ctx)
}

func (r *ReportRepository) ListCountedBaggingOffs(ctx context.Context) ([]*models.BaggingOff, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+baggingOffColumns+` FROM bagging_offs b WHERE b.status = ANY($1) ORDER BY b.id`,
		countedStatuses)
	if err != nil {
		return nil, wrap(err, "bagging-off")
	}
	return collectBaggingOffs(rows, false)
}

func (r *ReportRepository) sumByStation(ctx context.Context, query string, args ...any) (map[int]float64, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "report")
	}
	defer rows.Close()

	out := make(map[int]float64)
	for rows.Next() {
		var id int
		var kg float64
		if err := rows.Scan(&id, &kg); err != nil {
			return nil, wrap(err, "report")
		}
		out[id] = kg
	}
	return out, wrap(rows.Err(), "report")
}

func (r *ReportRepository) PurchaseKgsByStation(ctx context.Context) (map[int]float64, error) {
	return r.sumByStation(ctx,
		`SELECT station_id, COALESCE(SUM(total_kgs), 0) FROM purchases GROUP BY station_id`)
}

func (r *ReportRepository) OutputKgsByStation(ctx context.Context) (map[int]float64, error) {
	return r.sumByStation(ctx,
		`SELECT station_id, COALESCE(SUM(total_output_kgs), 0) FROM bagging_offs
         WHERE status = ANY($1) GROUP BY station_id`,
		countedStatuses)
}

func (r *ReportRepository) ListCompletedTransfers(ctx context.Context) ([]*models.Transfer, error) {
	return r.transfers.query(ctx, `WHERE t.status=$1 ORDER BY t.id`, models.TransferCompleted)
}

func (r *ReportRepository) ListLowTransfers(ctx context.Context) ([]*models.Transfer, error) {
	return r.transfers.query(ctx, `WHERE t.grade_group=$1 ORDER BY t.id`, models.GradeGroupLow)
}

// DeliveryReportRows joins every delivery record with its transfer, its
// bagging-off and station, then attaches the linked samples in one more
// query.
func (r *ReportRepository) DeliveryReportRows(ctx context.Context) ([]*models.DeliveryReportRow, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+deliveryColumns+`, `+transferColumns+`, `+baggingOffColumns+`, s.name
         FROM quality_deliveries d
         JOIN transfers t ON t.id = d.transfer_id
         JOIN bagging_offs b ON b.id = d.bagging_off_id
         JOIN stations s ON s.id = d.station_id
         ORDER BY d.station_id, d.batch_no, d.id`)
	if err != nil {
		return nil, wrap(err, "delivery report")
	}
	defer rows.Close()

	var (
		out        []*models.DeliveryReportRow
		qualityIDs []int
	)
	for rows.Next() {
		var (
			d  models.QualityDelivery
			t  models.Transfer
			b  models.BaggingOff
			rr = &models.DeliveryReportRow{Delivery: &d, Transfer: &t, BaggingOff: &b}
		)
		dest := deliveryDest(&d)
		dest = append(dest, &t.ID, &t.BatchNo, &t.BatchFamily, &t.BaggingOffID, &t.StationID, &t.ProcessingID,
			&t.GradeGroup, &t.OutputKgs, &t.GradeDetails, &t.TruckNumber, &t.DriverName, &t.DriverPhone,
			&t.TransferMode, &t.TransferDate, &t.Notes, &t.Status, &t.IsGrouped, &t.GroupBatchNo,
			&t.TransportGroupID, &t.NumberOfBags, &t.CupProfile, &t.CupProfilePercentage,
			&t.CreatedAt, &t.UpdatedAt)
		dest = append(dest, &b.ID, &b.BatchNo, &b.BatchFamily, &b.ProcessingID, &b.StationID, &b.Date,
			&b.OutputKgs, &b.TotalOutputKgs, &b.ProcessingType, &b.Status, &b.QualityStatus, &b.Notes,
			&b.HGTransported, &b.CreatedAt, &b.UpdatedAt)
		dest = append(dest, &rr.StationName)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrap(err, "delivery report")
		}
		if d.QualityID != nil {
			qualityIDs = append(qualityIDs, *d.QualityID)
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "delivery report")
	}

	samples, err := r.samplesByID(ctx, qualityIDs)
	if err != nil {
		return nil, err
	}
	for _, rr := range out {
		if rr.Delivery.QualityID != nil {
			rr.Sample = samples[*rr.Delivery.QualityID]
		}
	}
	return out, nil
}

func (r *ReportRepository) samplesByID(ctx context.Context, ids []int) (map[int]*models.Quality, error) {
	out := make(map[int]*models.Quality, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.DB.Query(ctx, `SELECT `+qualityColumns+` FROM quality WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, wrap(err, "quality sample")
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuality(rows)
		if err != nil {
			return nil, wrap(err, "quality sample")
		}
		out[q.ID] = q
	}
	return out, wrap(rows.Err(), "quality sample")
}
