package repositories

import (
	"context"
	"errors"

	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BaggingOffRepository struct {
	DB *pgxpool.Pool
}

func NewBaggingOffRepository(db *pgxpool.Pool) *BaggingOffRepository {
	return &BaggingOffRepository{DB: db}
}

const baggingOffColumns = `b.id, b.batch_no, b.batch_family, b.processing_id, b.station_id, b.date, b.output_kgs,
	b.total_output_kgs, b.processing_type, b.status, b.quality_status, b.notes, b.hgtransported,
	b.created_at, b.updated_at`

func scanBaggingOff(row pgx.Row, extra ...any) (*models.BaggingOff, error) {
	var b models.BaggingOff
	dest := []any{&b.ID, &b.BatchNo, &b.BatchFamily, &b.ProcessingID, &b.StationID, &b.Date, &b.OutputKgs,
		&b.TotalOutputKgs, &b.ProcessingType, &b.Status, &b.QualityStatus, &b.Notes, &b.HGTransported,
		&b.CreatedAt, &b.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	if b.OutputKgs == nil {
		b.OutputKgs = map[string]float64{}
	}
	if b.HGTransported == nil {
		b.HGTransported = []string{}
	}
	return &b, err
}

func collectBaggingOffs(rows pgx.Rows, withGrade bool) ([]*models.BaggingOff, error) {
	defer rows.Close()
	var out []*models.BaggingOff
	for rows.Next() {
		var grade string
		var extra []any
		if withGrade {
			extra = append(extra, &grade)
		}
		b, err := scanBaggingOff(rows, extra...)
		if err != nil {
			return nil, wrap(err, "bagging-off")
		}
		b.ProcessingGrade = grade
		out = append(out, b)
	}
	return out, wrap(rows.Err(), "bagging-off")
}

// syncProcessing moves the owning processing along with a bagging-off:
// COMPLETED completes it, anything else marks bagging as started.
func syncProcessing(ctx context.Context, tx pgx.Tx, b *models.BaggingOff) error {
	if b.Status == models.BaggingOffCompleted {
		_, err := tx.Exec(ctx,
			`UPDATE processings SET status=$1, end_date=NOW(), updated_at=NOW() WHERE id=$2`,
			models.ProcessingCompleted, b.ProcessingID)
		return err
	}
	_, err := tx.Exec(ctx,
		`UPDATE processings SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		models.ProcessingBaggingStarted, b.ProcessingID, models.ProcessingInProgress)
	return err
}

func (r *BaggingOffRepository) Create(ctx context.Context, b *models.BaggingOff) error {
	err := inTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO bagging_offs(batch_no, batch_family, processing_id, station_id, date, output_kgs,
                 total_output_kgs, processing_type, status, quality_status, notes, hgtransported)
             VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
             RETURNING id, created_at, updated_at`,
			b.BatchNo, b.BatchFamily, b.ProcessingID, b.StationID, b.Date, b.OutputKgs,
			b.TotalOutputKgs, b.ProcessingType, b.Status, b.QualityStatus, b.Notes, b.HGTransported,
		).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return err
		}
		if err := syncProcessing(ctx, tx, b); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE wet_transfers SET status=$1, updated_at=NOW()
             WHERE batch_no=$2 AND status <> $3`,
			b.Status, b.BatchNo, models.WetTransferReceiverCompleted)
		return err
	})
	return wrap(err, "bagging-off")
}

func (r *BaggingOffRepository) Update(ctx context.Context, b *models.BaggingOff) error {
	err := inTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE bagging_offs SET date=$1, output_kgs=$2, total_output_kgs=$3, status=$4, notes=$5,
                 updated_at=NOW()
             WHERE id=$6
             RETURNING updated_at`,
			b.Date, b.OutputKgs, b.TotalOutputKgs, b.Status, b.Notes, b.ID,
		).Scan(&b.UpdatedAt)
		if err != nil {
			return err
		}
		if b.Status != models.BaggingOffCompleted {
			return nil
		}
		return syncProcessing(ctx, tx, b)
	})
	return wrap(err, "bagging-off")
}

func (r *BaggingOffRepository) Get(ctx context.Context, id int) (*models.BaggingOff, error) {
	b, err := scanBaggingOff(r.DB.QueryRow(ctx,
		`SELECT `+baggingOffColumns+` FROM bagging_offs b WHERE b.id=$1`, id))
	if err != nil {
		return nil, wrap(err, "bagging-off")
	}
	return b, nil
}

func (r *BaggingOffRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM bagging_offs WHERE id=$1`, id)
	if err != nil {
		return wrap(err, "bagging-off")
	}
	if tag.RowsAffected() == 0 {
		return wrap(pgx.ErrNoRows, "bagging-off")
	}
	return nil
}

func (r *BaggingOffRepository) ListByBatch(ctx context.Context, batchNo string) ([]*models.BaggingOff, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+baggingOffColumns+` FROM bagging_offs b WHERE b.batch_no=$1 ORDER BY b.created_at DESC`,
		batchNo)
	if err != nil {
		return nil, wrap(err, "bagging-off")
	}
	return collectBaggingOffs(rows, false)
}

func (r *BaggingOffRepository) ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.BaggingOff, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM bagging_offs WHERE station_id=$1`, stationID).Scan(&total); err != nil {
		return nil, 0, wrap(err, "bagging-off")
	}
	rows, err := r.DB.Query(ctx,
		`SELECT `+baggingOffColumns+` FROM bagging_offs b WHERE b.station_id=$1
         ORDER BY b.created_at DESC LIMIT $2 OFFSET $3`,
		stationID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, wrap(err, "bagging-off")
	}
	out, err := collectBaggingOffs(rows, false)
	return out, total, err
}

func (r *BaggingOffRepository) LatestPerBatch(ctx context.Context) ([]*models.BaggingOff, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT DISTINCT ON (b.batch_no) `+baggingOffColumns+` FROM bagging_offs b
         ORDER BY b.batch_no, b.created_at DESC`)
	if err != nil {
		return nil, wrap(err, "bagging-off")
	}
	return collectBaggingOffs(rows, false)
}

func (r *BaggingOffRepository) ListWithoutQuality(ctx context.Context) ([]*models.BaggingOff, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT DISTINCT ON (b.batch_no) `+baggingOffColumns+` FROM bagging_offs b
         WHERE NOT EXISTS (SELECT 1 FROM quality q WHERE q.batch_no = b.batch_no)
         ORDER BY b.batch_no, b.created_at DESC`)
	if err != nil {
		return nil, wrap(err, "bagging-off")
	}
	return collectBaggingOffs(rows, false)
}

func (r *BaggingOffRepository) FindGradeA(ctx context.Context, batchNo string, completedOnly bool) (*models.BaggingOff, error) {
	var grade string
	b, err := scanBaggingOff(r.DB.QueryRow(ctx,
		`SELECT `+baggingOffColumns+`, p.grade FROM bagging_offs b
         JOIN processings p ON p.id = b.processing_id
         WHERE b.batch_no=$1 AND p.grade='A' AND (NOT $2 OR b.status=$3)
         ORDER BY b.created_at DESC LIMIT 1`,
		batchNo, completedOnly, models.BaggingOffCompleted), &grade)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "bagging-off")
	}
	b.ProcessingGrade = grade
	return b, nil
}

func (r *BaggingOffRepository) SetQualityStatus(ctx context.Context, batchNo string, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE bagging_offs SET quality_status=$1, updated_at=NOW() WHERE batch_no=$2`,
		status, batchNo)
	return wrap(err, "bagging-off")
}

func (r *BaggingOffRepository) ListPendingGradeA(ctx context.Context, stationID int) ([]*models.BaggingOff, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT DISTINCT ON (b.batch_no) `+baggingOffColumns+`, p.grade FROM bagging_offs b
         JOIN processings p ON p.id = b.processing_id
         WHERE b.station_id=$1 AND p.grade='A' AND b.status=$2 AND b.quality_status=$3
         ORDER BY b.batch_no, b.created_at DESC`,
		stationID, models.BaggingOffCompleted, models.QualityStatusPending)
	if err != nil {
		return nil, wrap(err, "bagging-off")
	}
	return collectBaggingOffs(rows, true)
}
