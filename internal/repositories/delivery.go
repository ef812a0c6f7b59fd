package repositories

import (
	"context"
	"errors"
	"time"

	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryRepository struct {
	DB *pgxpool.Pool
}

func NewDeliveryRepository(db *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{DB: db}
}

const deliveryColumns = `d.id, d.transfer_id, d.quality_id, d.batch_no, d.batch_family, d.station_id,
	d.processing_id, d.bagging_off_id, d.grade_key, d.status, d.cws_moisture, d.lab_moisture, d.screen,
	d.defect, d.pp_score, d.notes, d.category, d.new_category, d.category_kgs, d.sample_storage_id,
	d.created_at, d.updated_at`

// deliveryTruckColumns are appended when the transfer is joined as t.
const deliveryTruckColumns = `, t.truck_number, t.transport_group_id, t.transfer_date`

func deliveryDest(d *models.QualityDelivery) []any {
	return []any{&d.ID, &d.TransferID, &d.QualityID, &d.BatchNo, &d.BatchFamily, &d.StationID,
		&d.ProcessingID, &d.BaggingOffID, &d.GradeKey, &d.Status, &d.CwsMoisture, &d.LabMoisture, &d.Screen,
		&d.Defect, &d.PPScore, &d.Notes, &d.Category, &d.NewCategory, &d.CategoryKgs, &d.SampleStorageID,
		&d.CreatedAt, &d.UpdatedAt}
}

func scanDelivery(row pgx.Row) (*models.QualityDelivery, error) {
	var d models.QualityDelivery
	err := row.Scan(deliveryDest(&d)...)
	return &d, err
}

func (r *DeliveryRepository) queryWithTrucks(ctx context.Context, where string, args ...any) ([]*models.QualityDelivery, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+deliveryColumns+deliveryTruckColumns+`
         FROM quality_deliveries d JOIN transfers t ON t.id = d.transfer_id `+where, args...)
	if err != nil {
		return nil, wrap(err, "delivery record")
	}
	defer rows.Close()

	var out []*models.QualityDelivery
	for rows.Next() {
		var d models.QualityDelivery
		var date time.Time
		if err := rows.Scan(append(deliveryDest(&d), &d.TruckNumber, &d.TransportGroupID, &date)...); err != nil {
			return nil, wrap(err, "delivery record")
		}
		d.TransferDate = &date
		out = append(out, &d)
	}
	return out, wrap(rows.Err(), "delivery record")
}

func (r *DeliveryRepository) CreateIfAbsent(ctx context.Context, d *models.QualityDelivery) (*models.QualityDelivery, bool, error) {
	row, err := scanDelivery(r.DB.QueryRow(ctx,
		`INSERT INTO quality_deliveries AS d (transfer_id, quality_id, batch_no, batch_family, station_id,
             processing_id, bagging_off_id, grade_key, status, cws_moisture, lab_moisture, screen, defect,
             pp_score, notes, category, new_category, category_kgs, sample_storage_id)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
         ON CONFLICT (transfer_id, grade_key) DO NOTHING
         RETURNING `+deliveryColumns,
		d.TransferID, d.QualityID, d.BatchNo, d.BatchFamily, d.StationID,
		d.ProcessingID, d.BaggingOffID, d.GradeKey, d.Status, d.CwsMoisture, d.LabMoisture, d.Screen, d.Defect,
		d.PPScore, d.Notes, d.Category, d.NewCategory, d.CategoryKgs, d.SampleStorageID))
	if err == nil {
		return row, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, wrap(err, "delivery record")
	}

	existing, err := scanDelivery(r.DB.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM quality_deliveries d WHERE d.transfer_id=$1 AND d.grade_key=$2`,
		d.TransferID, d.GradeKey))
	if err != nil {
		return nil, false, wrap(err, "delivery record")
	}
	return existing, false, nil
}

func (r *DeliveryRepository) Get(ctx context.Context, id, transferID int) (*models.QualityDelivery, error) {
	d, err := scanDelivery(r.DB.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM quality_deliveries d WHERE d.id=$1 AND d.transfer_id=$2`,
		id, transferID))
	if err != nil {
		return nil, wrap(err, "delivery record")
	}
	return d, nil
}

func (r *DeliveryRepository) Update(ctx context.Context, d *models.QualityDelivery) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE quality_deliveries SET status=$1, lab_moisture=$2, screen=$3, defect=$4, pp_score=$5,
             notes=$6, new_category=$7, category_kgs=$8, sample_storage_id=$9, updated_at=NOW()
         WHERE id=$10
         RETURNING updated_at`,
		d.Status, d.LabMoisture, d.Screen, d.Defect, d.PPScore,
		d.Notes, d.NewCategory, d.CategoryKgs, d.SampleStorageID, d.ID,
	).Scan(&d.UpdatedAt)
	return wrap(err, "delivery record")
}

func (r *DeliveryRepository) List(ctx context.Context, page models.Page) ([]*models.QualityDelivery, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM quality_deliveries`).Scan(&total); err != nil {
		return nil, 0, wrap(err, "delivery record")
	}
	out, err := r.queryWithTrucks(ctx,
		`ORDER BY (d.status=$1), d.created_at DESC LIMIT $2 OFFSET $3`,
		models.SampleCompleted, page.Limit, page.Offset())
	return out, total, err
}

func (r *DeliveryRepository) ListWithTrucks(ctx context.Context) ([]*models.QualityDelivery, error) {
	return r.queryWithTrucks(ctx, `ORDER BY t.transfer_date DESC, d.id`)
}

func (r *DeliveryRepository) ListByTransportGroup(ctx context.Context, transportGroupID string) ([]*models.QualityDelivery, error) {
	return r.queryWithTrucks(ctx, `WHERE t.transport_group_id=$1 ORDER BY d.batch_no, d.grade_key`, transportGroupID)
}
