package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"parts-and-service/internal/models"
)

// RepositoryInterface defines the contract for the product repository.
type RepositoryInterface interface {
	Create(ctx context.Context, supplierID string, req models.CreateProductRequest) (*models.Product, error)
	FindByID(ctx context.Context, productID string) (*models.Product, error)
	ListPublic(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	ListBySupplier(ctx context.Context, supplierID string, page, limit int) ([]*models.Product, int, error)
	Update(ctx context.Context, productID, supplierID string, req models.UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, productID, supplierID string) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new product repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const productColumns = `id, supplier_id, name, description, category, price, stock, image_url, status, created_at, updated_at`

// Create inserts a new product owned by a supplier profile.
func (r *Repository) Create(ctx context.Context, supplierID string, req models.CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (supplier_id, name, description, category, price, stock, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns

	status := models.ProductActive
	if req.Stock == 0 {
		status = models.ProductOutOfStock
	}

	product, err := scanProduct(r.db.QueryRow(ctx, query,
		supplierID, req.Name, req.Description, req.Category, req.Price, req.Stock, req.ImageURL, status))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateProduct: %w", err)
	}
	return product, nil
}

// FindByID retrieves a product. The id is compared as text because it
// arrives as an unvalidated path parameter.
func (r *Repository) FindByID(ctx context.Context, productID string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id::text = $1`
	product, err := scanProduct(r.db.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindProductByID: %w", err)
	}
	return product, nil
}

// ListPublic lists ACTIVE products for the buyer-facing catalog, optionally
// narrowed by category and a name search.
func (r *Repository) ListPublic(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	offset := (filter.Page - 1) * filter.Limit
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE status = 'ACTIVE'
		  AND ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, filter.Category, filter.Search, filter.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListPublic.Query: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListPublic: %w", err)
	}

	var total int
	countQuery := `
		SELECT COUNT(*) FROM products
		WHERE status = 'ACTIVE'
		  AND ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')`
	if err := r.db.QueryRow(ctx, countQuery, filter.Category, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListPublic.Count: %w", err)
	}

	return products, total, nil
}

func (r *Repository) ListBySupplier(ctx context.Context, supplierID string, page, limit int) ([]*models.Product, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE supplier_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, supplierID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListBySupplier.Query: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListBySupplier: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE supplier_id = $1", supplierID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListBySupplier.Count: %w", err)
	}

	return products, total, nil
}

// Update applies a partial update. The supplier id is part of the WHERE
// clause so a supplier can never touch a competitor's listing.
func (r *Repository) Update(ctx context.Context, productID, supplierID string, req models.UpdateProductRequest) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    category = COALESCE($5, category),
		    price = COALESCE($6, price),
		    stock = COALESCE($7, stock),
		    image_url = COALESCE($8, image_url),
		    status = COALESCE($9, status),
		    updated_at = NOW()
		WHERE id::text = $1 AND supplier_id = $2
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRow(ctx, query,
		productID, supplierID, req.Name, req.Description, req.Category, req.Price, req.Stock, req.ImageURL, req.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateProduct: %w", err)
	}
	return product, nil
}

func (r *Repository) Delete(ctx context.Context, productID, supplierID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id::text = $1 AND supplier_id = $2`, productID, supplierID)
	if err != nil {
		return fmt.Errorf("repository.DeleteProduct: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.SupplierID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.Stock,
		&p.ImageURL,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
