package repositories

import (
	"context"
	"errors"

	"wetmill-backend/internal/batch"
	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QualityRepository struct {
	DB *pgxpool.Pool
}

func NewQualityRepository(db *pgxpool.Pool) *QualityRepository {
	return &QualityRepository{DB: db}
}

const qualityColumns = `id, batch_no, batch_family, station_id, processing_id, bagging_off_id, processing_type,
	status, cws_moisture1, lab_moisture, screen, defect, pp_score, notes, category,
	sample_storage_id_0, sample_storage_id_1, created_at, updated_at`

func scanQuality(row pgx.Row) (*models.Quality, error) {
	var q models.Quality
	err := row.Scan(&q.ID, &q.BatchNo, &q.BatchFamily, &q.StationID, &q.ProcessingID, &q.BaggingOffID,
		&q.ProcessingType, &q.Status, &q.CwsMoisture1, &q.LabMoisture, &q.Screen, &q.Defect, &q.PPScore,
		&q.Notes, &q.Category, &q.SampleStorageID0, &q.SampleStorageID1, &q.CreatedAt, &q.UpdatedAt)
	return &q, err
}

func (r *QualityRepository) CreateIfAbsent(ctx context.Context, q *models.Quality) (*models.Quality, bool, error) {
	var (
		stored  *models.Quality
		created bool
	)
	err := inTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		row, err := scanQuality(tx.QueryRow(ctx,
			`INSERT INTO quality(batch_no, batch_family, station_id, processing_id, bagging_off_id, processing_type,
                 status, cws_moisture1, lab_moisture, screen, defect, pp_score, notes, category,
                 sample_storage_id_0, sample_storage_id_1)
             VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
             ON CONFLICT (batch_no, station_id, processing_id) DO NOTHING
             RETURNING `+qualityColumns,
			q.BatchNo, q.BatchFamily, q.StationID, q.ProcessingID, q.BaggingOffID, q.ProcessingType,
			q.Status, q.CwsMoisture1, q.LabMoisture, q.Screen, q.Defect, q.PPScore, q.Notes, q.Category,
			q.SampleStorageID0, q.SampleStorageID1))
		if errors.Is(err, pgx.ErrNoRows) {
			stored, err = scanQuality(tx.QueryRow(ctx,
				`SELECT `+qualityColumns+` FROM quality
                 WHERE batch_no=$1 AND station_id=$2 AND processing_id=$3`,
				q.BatchNo, q.StationID, q.ProcessingID))
			return err
		}
		if err != nil {
			return err
		}
		stored, created = row, true
		_, err = tx.Exec(ctx,
			`UPDATE bagging_offs SET quality_status=$1, updated_at=NOW() WHERE batch_no=$2`,
			models.QualityStatusTesting, q.BatchNo)
		return err
	})
	if err != nil {
		return nil, false, wrap(err, "quality sample")
	}
	return stored, created, nil
}

func (r *QualityRepository) Get(ctx context.Context, id int) (*models.Quality, error) {
	q, err := scanQuality(r.DB.QueryRow(ctx, `SELECT `+qualityColumns+` FROM quality WHERE id=$1`, id))
	if err != nil {
		return nil, wrap(err, "quality sample")
	}
	return q, nil
}

func (r *QualityRepository) ExistsForBatch(ctx context.Context, batchNo string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM quality WHERE batch_no=$1)`, batchNo).Scan(&exists)
	return exists, wrap(err, "quality sample")
}

func (r *QualityRepository) FindByBatchStation(ctx context.Context, batchNo string, stationID int) (*models.Quality, error) {
	q, err := scanQuality(r.DB.QueryRow(ctx,
		`SELECT `+qualityColumns+` FROM quality WHERE batch_no=$1 AND station_id=$2
         ORDER BY created_at DESC LIMIT 1`, batchNo, stationID))
	if err != nil {
		return nil, wrap(err, "quality sample for batch "+batchNo)
	}
	return q, nil
}

func (r *QualityRepository) FindProvenance(ctx context.Context, baggingOffID int, batchNo string) (*models.Quality, error) {
	q, err := scanQuality(r.DB.QueryRow(ctx,
		`SELECT `+qualityColumns+` FROM quality
         WHERE bagging_off_id=$1 OR batch_family=$2 OR batch_no=$3
         ORDER BY (bagging_off_id=$1) DESC, (batch_family=$2) DESC, created_at DESC
         LIMIT 1`,
		baggingOffID, batch.Family(batchNo), batchNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "quality sample")
	}
	return q, nil
}

func (r *QualityRepository) SaveResult(ctx context.Context, q *models.Quality) error {
	err := inTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE quality SET status=$1, cws_moisture1=$2, lab_moisture=$3, screen=$4, defect=$5,
                 pp_score=$6, notes=$7, category=$8, sample_storage_id_0=$9, sample_storage_id_1=$10,
                 updated_at=NOW()
             WHERE id=$11
             RETURNING updated_at`,
			q.Status, q.CwsMoisture1, q.LabMoisture, q.Screen, q.Defect,
			q.PPScore, q.Notes, q.Category, q.SampleStorageID0, q.SampleStorageID1, q.ID,
		).Scan(&q.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE bagging_offs SET quality_status=$1, updated_at=NOW() WHERE batch_no=$2`,
			models.QualityStatusTested, q.BatchNo)
		return err
	})
	return wrap(err, "quality sample")
}

func (r *QualityRepository) List(ctx context.Context, stationID *int, page models.Page) ([]*models.Quality, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM quality WHERE $1::int IS NULL OR station_id=$1`, stationID,
	).Scan(&total); err != nil {
		return nil, 0, wrap(err, "quality sample")
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+qualityColumns+` FROM quality
         WHERE $1::int IS NULL OR station_id=$1
         ORDER BY (status=$2), created_at DESC
         LIMIT $3 OFFSET $4`,
		stationID, models.SampleCompleted, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, wrap(err, "quality sample")
	}
	defer rows.Close()

	var out []*models.Quality
	for rows.Next() {
		q, err := scanQuality(rows)
		if err != nil {
			return nil, 0, wrap(err, "quality sample")
		}
		out = append(out, q)
	}
	return out, total, wrap(rows.Err(), "quality sample")
}
