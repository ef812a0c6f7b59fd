package repositories

import (
	"context"

	"wetmill-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StationRepository struct {
	DB *pgxpool.Pool
}

func NewStationRepository(db *pgxpool.Pool) *StationRepository {
	return &StationRepository{DB: db}
}

func (r *StationRepository) List(ctx context.Context) ([]*models.Station, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, code, location, created_at, updated_at FROM stations ORDER BY id`)
	if err != nil {
		return nil, wrap(err, "station")
	}
	defer rows.Close()

	stations := []*models.Station{}
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Location, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, wrap(err, "station")
		}
		stations = append(stations, &s)
	}
	return stations, wrap(rows.Err(), "station")
}

func (r *StationRepository) Get(ctx context.Context, id int) (*models.Station, error) {
	var s models.Station
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, code, location, created_at, updated_at FROM stations WHERE id=$1`, id,
	).Scan(&s.ID, &s.Name, &s.Code, &s.Location, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, wrap(err, "station")
	}
	return &s, nil
}

func (r *StationRepository) GetSiteCollection(ctx context.Context, id int) (*models.SiteCollection, error) {
	var c models.SiteCollection
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, station_id, created_at FROM site_collections WHERE id=$1`, id,
	).Scan(&c.ID, &c.Name, &c.StationID, &c.CreatedAt)
	if err != nil {
		return nil, wrap(err, "site collection")
	}
	return &c, nil
}

func (r *StationRepository) ListSiteCollections(ctx context.Context, stationID int) ([]*models.SiteCollection, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, station_id, created_at FROM site_collections
         WHERE station_id=$1 ORDER BY name`, stationID)
	if err != nil {
		return nil, wrap(err, "site collection")
	}
	defer rows.Close()

	sites := []*models.SiteCollection{}
	for rows.Next() {
		var c models.SiteCollection
		if err := rows.Scan(&c.ID, &c.Name, &c.StationID, &c.CreatedAt); err != nil {
			return nil, wrap(err, "site collection")
		}
		sites = append(sites, &c)
	}
	return sites, wrap(rows.Err(), "site collection")
}
