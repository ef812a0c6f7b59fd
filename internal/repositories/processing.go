package repositories

import (
	"context"

	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProcessingRepository struct {
	DB *pgxpool.Pool
}

func NewProcessingRepository(db *pgxpool.Pool) *ProcessingRepository {
	return &ProcessingRepository{DB: db}
}

const processingColumns = `id, batch_no, batch_family, processing_type, station_id, total_kgs, grade,
	status, start_date, end_date, notes, created_at, updated_at`

func scanProcessing(row pgx.Row) (*models.Processing, error) {
	var p models.Processing
	err := row.Scan(&p.ID, &p.BatchNo, &p.BatchFamily, &p.ProcessingType, &p.StationID, &p.TotalKgs,
		&p.Grade, &p.Status, &p.StartDate, &p.EndDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func collectProcessings(rows pgx.Rows) ([]*models.Processing, error) {
	defer rows.Close()
	var out []*models.Processing
	for rows.Next() {
		p, err := scanProcessing(rows)
		if err != nil {
			return nil, wrap(err, "processing")
		}
		out = append(out, p)
	}
	return out, wrap(rows.Err(), "processing")
}

func (r *ProcessingRepository) Create(ctx context.Context, p *models.Processing) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO processings(batch_no, batch_family, processing_type, station_id, total_kgs, grade,
             status, start_date, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at, updated_at`,
		p.BatchNo, p.BatchFamily, p.ProcessingType, p.StationID, p.TotalKgs, p.Grade,
		p.Status, p.StartDate, p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return wrap(err, "processing")
}

func (r *ProcessingRepository) Get(ctx context.Context, id int) (*models.Processing, error) {
	p, err := scanProcessing(r.DB.QueryRow(ctx, `SELECT `+processingColumns+` FROM processings WHERE id=$1`, id))
	if err != nil {
		return nil, wrap(err, "processing")
	}
	return p, nil
}

// GetByBatch returns the most recent processing of the batch.
func (r *ProcessingRepository) GetByBatch(ctx context.Context, batchNo string) (*models.Processing, error) {
	p, err := scanProcessing(r.DB.QueryRow(ctx,
		`SELECT `+processingColumns+` FROM processings WHERE batch_no=$1
         ORDER BY created_at DESC LIMIT 1`, batchNo))
	if err != nil {
		return nil, wrap(err, "processing for batch "+batchNo)
	}
	return p, nil
}

func (r *ProcessingRepository) ExistsWithStatus(ctx context.Context, batchNo string, statuses ...string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM processings WHERE batch_no=$1 AND status = ANY($2))`,
		batchNo, statuses,
	).Scan(&exists)
	return exists, wrap(err, "processing")
}

func (r *ProcessingRepository) ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.Processing, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM processings WHERE station_id=$1`, stationID).Scan(&total); err != nil {
		return nil, 0, wrap(err, "processing")
	}
	rows, err := r.DB.Query(ctx,
		`SELECT `+processingColumns+` FROM processings WHERE station_id=$1
         ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		stationID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, wrap(err, "processing")
	}
	out, err := collectProcessings(rows)
	return out, total, err
}

// ListAll feeds the yield report, newest first.
func (r *ProcessingRepository) ListAll(ctx context.Context) ([]*models.Processing, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+processingColumns+` FROM processings ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrap(err, "processing")
	}
	return collectProcessings(rows)
}
