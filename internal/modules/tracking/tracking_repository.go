package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"parts-and-service/internal/models"
)

// RepositoryInterface defines the read-only lookups behind the public
// tracking endpoint.
type RepositoryInterface interface {
	FindOrderByCode(ctx context.Context, code string) (*models.TrackingView, error)
	FindDeliveryByTrackingNumber(ctx context.Context, code string) (*models.TrackingView, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new tracking repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// FindOrderByCode resolves a code against orders, matching either the order
// id or its public tracking id. The id column is compared as text because
// tracking codes are not valid uuids.
func (r *Repository) FindOrderByCode(ctx context.Context, code string) (*models.TrackingView, error) {
	view := &models.TrackingView{Code: code, Source: models.TrackingSourceOrder}
	var orderID string
	addr := &models.Address{}
	err := r.db.QueryRow(ctx, `
		SELECT id, status, total, ship_street, ship_city, ship_state, ship_country, ship_zip,
		       created_at, updated_at
		FROM orders
		WHERE id::text = $1 OR tracking_id = $1`,
		code,
	).Scan(&orderID, &view.Status, &view.Total,
		&addr.Street, &addr.City, &addr.State, &addr.Country, &addr.ZipCode,
		&view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindOrderByCode: %w", err)
	}
	view.ShippingAddress = addr

	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, product_id, name, price, quantity FROM order_items WHERE order_id = $1`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("repository.FindOrderByCode.items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("repository.FindOrderByCode.items: %w", err)
		}
		view.Items = append(view.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.FindOrderByCode.items: %w", err)
	}
	return view, nil
}

// FindDeliveryByTrackingNumber resolves a code against logistics bookings.
func (r *Repository) FindDeliveryByTrackingNumber(ctx context.Context, code string) (*models.TrackingView, error) {
	view := &models.TrackingView{Code: code, Source: models.TrackingSourceDelivery}
	err := r.db.QueryRow(ctx, `
		SELECT status, package_type, pickup_address, delivery_address, current_location,
		       created_at, updated_at
		FROM bookings
		WHERE kind = $1 AND tracking_number = $2`,
		models.KindLogistics, code,
	).Scan(&view.Status, &view.PackageType, &view.PickupAddress, &view.DeliveryAddress,
		&view.CurrentLocation, &view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindDeliveryByTrackingNumber: %w", err)
	}
	return view, nil
}
