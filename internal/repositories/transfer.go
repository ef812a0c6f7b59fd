package repositories

import (
	"context"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/grading"
	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransferRepository struct {
	DB *pgxpool.Pool
}

func NewTransferRepository(db *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{DB: db}
}

const transferColumns = `t.id, t.batch_no, t.batch_family, t.bagging_off_id, t.station_id, t.processing_id,
	t.grade_group, t.output_kgs, t.grade_details, t.truck_number, t.driver_name, t.driver_phone,
	t.transfer_mode, t.transfer_date, t.notes, t.status, t.is_grouped, t.group_batch_no,
	t.transport_group_id, t.number_of_bags, t.cup_profile, t.cup_profile_percentage,
	t.created_at, t.updated_at`

func scanTransfer(row pgx.Row) (*models.Transfer, error) {
	var t models.Transfer
	err := row.Scan(&t.ID, &t.BatchNo, &t.BatchFamily, &t.BaggingOffID, &t.StationID, &t.ProcessingID,
		&t.GradeGroup, &t.OutputKgs, &t.GradeDetails, &t.TruckNumber, &t.DriverName, &t.DriverPhone,
		&t.TransferMode, &t.TransferDate, &t.Notes, &t.Status, &t.IsGrouped, &t.GroupBatchNo,
		&t.TransportGroupID, &t.NumberOfBags, &t.CupProfile, &t.CupProfilePercentage,
		&t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func collectTransfers(rows pgx.Rows) ([]*models.Transfer, error) {
	defer rows.Close()
	var out []*models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, wrap(err, "transfer")
		}
		out = append(out, t)
	}
	return out, wrap(rows.Err(), "transfer")
}

func (r *TransferRepository) query(ctx context.Context, where string, args ...any) ([]*models.Transfer, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+transferColumns+` FROM transfers t `+where, args...)
	if err != nil {
		return nil, wrap(err, "transfer")
	}
	return collectTransfers(rows)
}

// cloneDraft copies the maps a filter pass rewrites, so that a retried
// transaction starts from the caller's draft.
func cloneDraft(d *models.Transfer) *models.Transfer {
	c := *d
	c.OutputKgs = make(map[string]float64, len(d.OutputKgs))
	for k, v := range d.OutputKgs {
		c.OutputKgs[k] = v
	}
	c.GradeDetails = make(map[string]models.GradeDetail, len(d.GradeDetails))
	for k, v := range d.GradeDetails {
		c.GradeDetails[k] = v
	}
	return &c
}

func (r *TransferRepository) CreateLocked(ctx context.Context, drafts []*models.Transfer) ([]*models.Transfer, error) {
	var created []*models.Transfer
	err := serializable(ctx, r.DB, func(tx pgx.Tx) error {
		created = created[:0]
		for _, draft := range drafts {
			t := cloneDraft(draft)

			var persisted []string
			if err := tx.QueryRow(ctx,
				`SELECT hgtransported FROM bagging_offs WHERE id=$1 FOR UPDATE`, t.BaggingOffID,
			).Scan(&persisted); err != nil {
				return wrap(err, "bagging-off")
			}

			earlier, err := r.earlierOutputs(ctx, tx, t.BaggingOffID)
			if err != nil {
				return err
			}
			if !grading.FilterTransfer(t, grading.Transferred(persisted, earlier)) {
				continue
			}

			if err := tx.QueryRow(ctx,
				`INSERT INTO transfers(batch_no, batch_family, bagging_off_id, station_id, processing_id,
                     grade_group, output_kgs, grade_details, truck_number, driver_name, driver_phone,
                     transfer_mode, transfer_date, notes, status, is_grouped, group_batch_no,
                     transport_group_id, number_of_bags, cup_profile, cup_profile_percentage)
                 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
                 RETURNING id, created_at, updated_at`,
				t.BatchNo, t.BatchFamily, t.BaggingOffID, t.StationID, t.ProcessingID,
				t.GradeGroup, t.OutputKgs, t.GradeDetails, t.TruckNumber, t.DriverName, t.DriverPhone,
				t.TransferMode, t.TransferDate, t.Notes, t.Status, t.IsGrouped, t.GroupBatchNo,
				t.TransportGroupID, t.NumberOfBags, t.CupProfile, t.CupProfilePercentage,
			).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
				return err
			}

			if _, err := tx.Exec(ctx,
				`UPDATE bagging_offs SET hgtransported=$1, updated_at=NOW() WHERE id=$2`,
				grading.Union(persisted, t.GradeKeys()), t.BaggingOffID); err != nil {
				return err
			}
			created = append(created, t)
		}
		if len(created) == 0 {
			return apperr.Conflict("all requested grade keys were already transferred")
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "transfer")
	}
	return created, nil
}

func (r *TransferRepository) earlierOutputs(ctx context.Context, tx pgx.Tx, baggingOffID int) ([]*models.Transfer, error) {
	rows, err := tx.Query(ctx, `SELECT output_kgs FROM transfers WHERE bagging_off_id=$1`, baggingOffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.OutputKgs); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *TransferRepository) Get(ctx context.Context, id int) (*models.Transfer, error) {
	t, err := scanTransfer(r.DB.QueryRow(ctx,
		`SELECT `+transferColumns+` FROM transfers t WHERE t.id=$1`, id))
	if err != nil {
		return nil, wrap(err, "transfer")
	}
	return t, nil
}

func (r *TransferRepository) List(ctx context.Context, page models.Page) ([]*models.Transfer, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM transfers`).Scan(&total); err != nil {
		return nil, 0, wrap(err, "transfer")
	}
	out, err := r.query(ctx, `ORDER BY t.transfer_date DESC, t.id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	return out, total, err
}

func (r *TransferRepository) ListByBatch(ctx context.Context, batchNo string) ([]*models.Transfer, error) {
	return r.query(ctx, `WHERE t.batch_no=$1 OR t.group_batch_no=$1 ORDER BY t.transfer_date DESC`, batchNo)
}

func (r *TransferRepository) ListByStation(ctx context.Context, stationID int, from, to *time.Time) ([]*models.Transfer, error) {
	return r.query(ctx,
		`WHERE t.station_id=$1
           AND ($2::timestamptz IS NULL OR t.transfer_date >= $2)
           AND ($3::timestamptz IS NULL OR t.transfer_date <= $3)
         ORDER BY t.transfer_date DESC`,
		stationID, from, to)
}

func (r *TransferRepository) ListByBaggingOff(ctx context.Context, baggingOffID int) ([]*models.Transfer, error) {
	return r.query(ctx, `WHERE t.bagging_off_id=$1 ORDER BY t.created_at`, baggingOffID)
}

func (r *TransferRepository) ListByGradeGroup(ctx context.Context, gradeGroup string) ([]*models.Transfer, error) {
	return r.query(ctx, `WHERE t.grade_group=$1 ORDER BY t.transfer_date DESC`, gradeGroup)
}

func (r *TransferRepository) ListHighWithoutDelivery(ctx context.Context) ([]*models.Transfer, error) {
	return r.query(ctx,
		`WHERE t.grade_group=$1
           AND NOT EXISTS (SELECT 1 FROM quality_deliveries d WHERE d.transfer_id = t.id)
         ORDER BY t.transfer_date DESC`,
		models.GradeGroupHigh)
}

func (r *TransferRepository) ListCompletedHigh(ctx context.Context, stationID int) ([]*models.Transfer, error) {
	return r.query(ctx,
		`WHERE t.station_id=$1 AND t.grade_group=$2 AND t.status=$3 ORDER BY t.bagging_off_id, t.created_at`,
		stationID, models.GradeGroupHigh, models.TransferCompleted)
}
