package repositories

import (
	"context"

	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WetTransferRepository struct {
	DB *pgxpool.Pool
}

func NewWetTransferRepository(db *pgxpool.Pool) *WetTransferRepository {
	return &WetTransferRepository{DB: db}
}

const wetTransferColumns = `id, processing_id, batch_no, date, source_station_id, destination_station_id,
	total_kgs, output_kgs, grade, processing_type, moisture_content, status, notes, created_at, updated_at`

func scanWetTransfer(row pgx.Row) (*models.WetTransfer, error) {
	var w models.WetTransfer
	err := row.Scan(&w.ID, &w.ProcessingID, &w.BatchNo, &w.Date, &w.SourceStationID, &w.DestinationStationID,
		&w.TotalKgs, &w.OutputKgs, &w.Grade, &w.ProcessingType, &w.MoistureContent, &w.Status, &w.Notes,
		&w.CreatedAt, &w.UpdatedAt)
	return &w, err
}

func (r *WetTransferRepository) list(ctx context.Context, where string, arg any) ([]*models.WetTransfer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+wetTransferColumns+` FROM wet_transfers `+where+` ORDER BY date DESC, id DESC`, arg)
	if err != nil {
		return nil, wrap(err, "wet transfer")
	}
	defer rows.Close()

	var out []*models.WetTransfer
	for rows.Next() {
		w, err := scanWetTransfer(rows)
		if err != nil {
			return nil, wrap(err, "wet transfer")
		}
		out = append(out, w)
	}
	return out, wrap(rows.Err(), "wet transfer")
}

func (r *WetTransferRepository) Create(ctx context.Context, w *models.WetTransfer) error {
	err := inTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO wet_transfers(processing_id, batch_no, date, source_station_id, destination_station_id,
                 total_kgs, output_kgs, grade, processing_type, moisture_content, status, notes)
             VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
             RETURNING id, created_at, updated_at`,
			w.ProcessingID, w.BatchNo, w.Date, w.SourceStationID, w.DestinationStationID,
			w.TotalKgs, w.OutputKgs, w.Grade, w.ProcessingType, w.MoistureContent, w.Status, w.Notes,
		).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE processings SET status=$1, updated_at=NOW() WHERE id=$2`,
			models.ProcessingTransferred, w.ProcessingID)
		return err
	})
	return wrap(err, "wet transfer")
}

func (r *WetTransferRepository) Get(ctx context.Context, id int) (*models.WetTransfer, error) {
	w, err := scanWetTransfer(r.DB.QueryRow(ctx, `SELECT `+wetTransferColumns+` FROM wet_transfers WHERE id=$1`, id))
	if err != nil {
		return nil, wrap(err, "wet transfer")
	}
	return w, nil
}

func (r *WetTransferRepository) Exists(ctx context.Context, processingID int, batchNo, grade string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM wet_transfers WHERE processing_id=$1 AND batch_no=$2 AND grade=$3)`,
		processingID, batchNo, grade,
	).Scan(&exists)
	return exists, wrap(err, "wet transfer")
}

func (r *WetTransferRepository) SetStatus(ctx context.Context, id int, status string, notes *string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE wet_transfers SET status=$1, notes=COALESCE($2, notes), updated_at=NOW() WHERE id=$3`,
		status, notes, id)
	if err != nil {
		return wrap(err, "wet transfer")
	}
	if tag.RowsAffected() == 0 {
		return wrap(pgx.ErrNoRows, "wet transfer")
	}
	return nil
}

func (r *WetTransferRepository) Delete(ctx context.Context, id int) error {
	err := inTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var processingID int
		if err := tx.QueryRow(ctx,
			`DELETE FROM wet_transfers WHERE id=$1 RETURNING processing_id`, id,
		).Scan(&processingID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`UPDATE processings SET status=$1, updated_at=NOW() WHERE id=$2`,
			models.ProcessingInProgress, processingID)
		return err
	})
	return wrap(err, "wet transfer")
}

func (r *WetTransferRepository) ListByBatch(ctx context.Context, batchNo string) ([]*models.WetTransfer, error) {
	return r.list(ctx, `WHERE batch_no=$1`, batchNo)
}

func (r *WetTransferRepository) ListBySource(ctx context.Context, stationID int) ([]*models.WetTransfer, error) {
	return r.list(ctx, `WHERE source_station_id=$1`, stationID)
}

func (r *WetTransferRepository) ListByDestination(ctx context.Context, stationID int) ([]*models.WetTransfer, error) {
	return r.list(ctx, `WHERE destination_station_id=$1`, stationID)
}
