package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"parts-and-service/internal/models"
	"parts-and-service/internal/status"
)

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	CreateWithItems(ctx context.Context, userID, trackingID string, req models.CheckoutRequest) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error)
	ListAll(ctx context.Context, page, limit int) ([]*models.Order, int, error)
	UpdateStatus(ctx context.Context, orderID, from, to string) (*models.Order, error)
	CancelAndRestock(ctx context.Context, orderID, from string) error
	OwnerEmail(ctx context.Context, orderID string) (string, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, user_id, tracking_id, status, total, payment_method,
	ship_street, ship_city, ship_state, ship_country, ship_zip, created_at, updated_at`

// CreateWithItems runs checkout in one transaction: it locks each product
// row, verifies and decrements stock, snapshots the line items and inserts
// the order. Any failing line rolls the whole checkout back.
func (r *Repository) CreateWithItems(ctx context.Context, userID, trackingID string, req models.CheckoutRequest) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateWithItems.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var total float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		var name string
		var price float64
		var stock int
		err := tx.QueryRow(ctx,
			`SELECT name, price, stock FROM products WHERE id::text = $1 AND status <> 'INACTIVE' FOR UPDATE`,
			line.ProductID,
		).Scan(&name, &price, &stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, models.ErrNotFound
			}
			return nil, fmt.Errorf("repository.CreateWithItems.lock: %w", err)
		}
		if stock < line.Quantity {
			return nil, models.ErrInsufficientStock
		}

		_, err = tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $2,
			    status = CASE WHEN stock - $2 <= 0 THEN 'OUT_OF_STOCK' ELSE status END,
			    updated_at = NOW()
			WHERE id = $1`,
			line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("repository.CreateWithItems.decrement: %w", err)
		}

		total += price * float64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      name,
			Price:     price,
			Quantity:  line.Quantity,
		})
	}

	order := &models.Order{
		UserID:          userID,
		TrackingID:      trackingID,
		Status:          status.OrderPending,
		Total:           total,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, tracking_id, status, total, payment_method,
		                    ship_street, ship_city, ship_state, ship_country, ship_zip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		userID, trackingID, order.Status, total, req.PaymentMethod,
		req.ShippingAddress.Street, req.ShippingAddress.City, req.ShippingAddress.State,
		req.ShippingAddress.Country, req.ShippingAddress.ZipCode,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateWithItems.insertOrder: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID, items[i].ProductID, items[i].Name, items[i].Price, items[i].Quantity,
		).Scan(&items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("repository.CreateWithItems.insertItem: %w", err)
		}
	}
	order.Items = items

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.CreateWithItems.Commit: %w", err)
	}
	return order, nil
}

// FindByID retrieves a single order with its item snapshots. The code may be
// the order id or its public tracking id; the id column is compared as text
// because the caller's input is not necessarily a valid uuid.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id::text = $1 OR tracking_id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID.items: %w", err)
	}
	order.Items = items
	return order, nil
}

func (r *Repository) loadItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, product_id, name, price, quantity FROM order_items WHERE order_id = $1`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByUserID retrieves all orders for a specific user with pagination.
func (r *Repository) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID.Query: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE user_id = $1", userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID.Count: %w", err)
	}
	return orders, total, nil
}

// ListAll retrieves all orders in the system with pagination (for admin use).
func (r *Repository) ListAll(ctx context.Context, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListAll.Query: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListAll: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListAll.Count: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus is a compare-and-swap write: it only applies when the row is
// still in the expected `from` state, so concurrent PATCHes cannot race past
// the lifecycle table.
func (r *Repository) UpdateStatus(ctx context.Context, orderID, from, to string) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrConflict // row moved on, or never existed
		}
		return nil, fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	return order, nil
}

// CancelAndRestock cancels an order and returns its reserved stock in one
// transaction. The status write is guarded the same way as UpdateStatus.
func (r *Repository) CancelAndRestock(ctx context.Context, orderID, from string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.CancelAndRestock.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		orderID, from, status.OrderCancelled)
	if err != nil {
		return fmt.Errorf("repository.CancelAndRestock.status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrConflict
	}

	_, err = tx.Exec(ctx, `
		UPDATE products p
		SET stock = p.stock + oi.quantity,
		    status = CASE WHEN p.status = 'OUT_OF_STOCK' THEN 'ACTIVE' ELSE p.status END,
		    updated_at = NOW()
		FROM order_items oi
		WHERE oi.order_id = $1 AND oi.product_id = p.id`,
		orderID)
	if err != nil {
		return fmt.Errorf("repository.CancelAndRestock.restock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.CancelAndRestock.Commit: %w", err)
	}
	return nil
}

// OwnerEmail returns the email address of the user who placed the order.
func (r *Repository) OwnerEmail(ctx context.Context, orderID string) (string, error) {
	var email string
	err := r.db.QueryRow(ctx, `
		SELECT u.email
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`,
		orderID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.OwnerEmail: %w", err)
	}
	return email, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.TrackingID,
		&order.Status,
		&order.Total,
		&order.PaymentMethod,
		&order.ShippingAddress.Street,
		&order.ShippingAddress.City,
		&order.ShippingAddress.State,
		&order.ShippingAddress.Country,
		&order.ShippingAddress.ZipCode,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
