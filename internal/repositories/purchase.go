package repositories

import (
	"context"
	"errors"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepository struct {
	DB *pgxpool.Pool
}

func NewPurchaseRepository(db *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

const purchaseColumns = `id, station_id, delivery_type, site_collection_id, total_kgs, total_price,
	cherry_price, transport_fee, commission_fee, grade, batch_no, purchase_date, created_at, updated_at`

func scanPurchase(row pgx.Row) (*models.Purchase, error) {
	var p models.Purchase
	err := row.Scan(&p.ID, &p.StationID, &p.DeliveryType, &p.SiteCollectionID, &p.TotalKgs, &p.TotalPrice,
		&p.CherryPrice, &p.TransportFee, &p.CommissionFee, &p.Grade, &p.BatchNo, &p.PurchaseDate,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *PurchaseRepository) Create(ctx context.Context, p *models.Purchase) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO purchases(station_id, delivery_type, site_collection_id, total_kgs, total_price,
             cherry_price, transport_fee, commission_fee, grade, batch_no, purchase_date)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
         RETURNING id, created_at, updated_at`,
		p.StationID, p.DeliveryType, p.SiteCollectionID, p.TotalKgs, p.TotalPrice,
		p.CherryPrice, p.TransportFee, p.CommissionFee, p.Grade, p.BatchNo, p.PurchaseDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return wrap(err, "purchase")
}

func (r *PurchaseRepository) Get(ctx context.Context, id int) (*models.Purchase, error) {
	p, err := scanPurchase(r.DB.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id=$1`, id))
	if err != nil {
		return nil, wrap(err, "purchase")
	}
	return p, nil
}

func (r *PurchaseRepository) Update(ctx context.Context, p *models.Purchase) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE purchases SET station_id=$1, delivery_type=$2, site_collection_id=$3, total_kgs=$4,
             total_price=$5, cherry_price=$6, transport_fee=$7, commission_fee=$8, grade=$9, batch_no=$10,
             updated_at=NOW()
         WHERE id=$11
         RETURNING updated_at`,
		p.StationID, p.DeliveryType, p.SiteCollectionID, p.TotalKgs,
		p.TotalPrice, p.CherryPrice, p.TransportFee, p.CommissionFee, p.Grade, p.BatchNo,
		p.ID,
	).Scan(&p.UpdatedAt)
	return wrap(err, "purchase")
}

func (r *PurchaseRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM purchases WHERE id=$1`, id)
	if err != nil {
		return wrap(err, "purchase")
	}
	if tag.RowsAffected() == 0 {
		return wrap(pgx.ErrNoRows, "purchase")
	}
	return nil
}

// FindSameDay matches site-collection purchases on the site and every other
// purchase on the delivery channel.
func (r *PurchaseRepository) FindSameDay(ctx context.Context, w services.PurchaseWindow) (*models.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases
         WHERE station_id=$1 AND grade=$2 AND purchase_date >= $3 AND purchase_date <= $4 AND id <> $5`
	args := []any{w.StationID, w.Grade, w.From, w.To, w.ExcludeID}
	if w.SiteCollectionID != nil {
		query += ` AND site_collection_id=$6`
		args = append(args, *w.SiteCollectionID)
	} else {
		query += ` AND delivery_type=$6`
		args = append(args, w.DeliveryType)
	}
	query += ` ORDER BY created_at LIMIT 1`

	p, err := scanPurchase(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "purchase")
	}
	return p, nil
}

func (r *PurchaseRepository) ListByStation(ctx context.Context, stationID int, page models.Page) ([]*models.Purchase, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM purchases WHERE station_id=$1`, stationID).Scan(&total); err != nil {
		return nil, 0, wrap(err, "purchase")
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE station_id=$1
         ORDER BY purchase_date DESC, id DESC LIMIT $2 OFFSET $3`,
		stationID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, wrap(err, "purchase")
	}
	defer rows.Close()

	var out []*models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, wrap(err, "purchase")
		}
		out = append(out, p)
	}
	return out, total, wrap(rows.Err(), "purchase")
}
