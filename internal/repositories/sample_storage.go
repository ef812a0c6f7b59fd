package repositories

import (
	"context"

	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SampleStorageRepository struct {
	DB *pgxpool.Pool
}

func NewSampleStorageRepository(db *pgxpool.Pool) *SampleStorageRepository {
	return &SampleStorageRepository{DB: db}
}

func (r *SampleStorageRepository) List(ctx context.Context) ([]*models.SampleStorage, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, description, created_at, updated_at FROM sample_storages ORDER BY name`)
	if err != nil {
		return nil, wrap(err, "sample storage")
	}
	defer rows.Close()

	out := []*models.SampleStorage{}
	for rows.Next() {
		var s models.SampleStorage
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, wrap(err, "sample storage")
		}
		out = append(out, &s)
	}
	return out, wrap(rows.Err(), "sample storage")
}

func (r *SampleStorageRepository) Get(ctx context.Context, id int) (*models.SampleStorage, error) {
	var s models.SampleStorage
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at FROM sample_storages WHERE id=$1`, id,
	).Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, wrap(err, "sample storage")
	}
	return &s, nil
}

func (r *SampleStorageRepository) Create(ctx context.Context, s *models.SampleStorage) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO sample_storages(name, description) VALUES($1, $2) RETURNING id, created_at, updated_at`,
		s.Name, s.Description,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return wrap(err, "sample storage")
}

func (r *SampleStorageRepository) Update(ctx context.Context, s *models.SampleStorage) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE sample_storages SET name=$1, description=$2, updated_at=NOW() WHERE id=$3 RETURNING updated_at`,
		s.Name, s.Description, s.ID,
	).Scan(&s.UpdatedAt)
	return wrap(err, "sample storage")
}

func (r *SampleStorageRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM sample_storages WHERE id=$1`, id)
	if err != nil {
		return wrap(err, "sample storage")
	}
	if tag.RowsAffected() == 0 {
		return wrap(pgx.ErrNoRows, "sample storage")
	}
	return nil
}
