package catalog

import (
	"context"
	"testing"

	"parts-and-service/internal/models"
)

type fakeProductRepo struct {
	products map[string]*models.Product
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*models.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, supplierID string, req models.CreateProductRequest) (*models.Product, error) {
	f.nextID++
	status := models.ProductActive
	if req.Stock == 0 {
		status = models.ProductOutOfStock
	}
	p := &models.Product{
		ID: "prod-" + req.Name, SupplierID: supplierID,
		Name: req.Name, Category: req.Category, Price: req.Price, Stock: req.Stock,
		Status: status,
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, productID string) (*models.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) ListPublic(_ context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	var out []*models.Product
	for _, p := range f.products {
		if p.Status != models.ProductActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeProductRepo) ListBySupplier(_ context.Context, supplierID string, _, _ int) ([]*models.Product, int, error) {
	var out []*models.Product
	for _, p := range f.products {
		if p.SupplierID == supplierID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (f *fakeProductRepo) Update(_ context.Context, productID, supplierID string, req models.UpdateProductRequest) (*models.Product, error) {
	p, ok := f.products[productID]
	if !ok || p.SupplierID != supplierID {
		return nil, models.ErrNotFound
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	return p, nil
}

func (f *fakeProductRepo) Delete(_ context.Context, productID, supplierID string) error {
	p, ok := f.products[productID]
	if !ok || p.SupplierID != supplierID {
		return models.ErrNotFound
	}
	delete(f.products, productID)
	return nil
}

type fakeDirectory struct {
	suppliers map[string]string // userID -> profileID
}

func (f *fakeDirectory) FindProviderProfile(_ context.Context, userID, kind string) (*models.ProviderProfile, error) {
	if kind != models.RoleSupplier {
		return nil, models.ErrNotFound
	}
	profileID, ok := f.suppliers[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &models.ProviderProfile{ID: profileID, UserID: userID, Kind: kind}, nil
}

func TestCreateProductRequiresSupplierProfile(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, &fakeDirectory{suppliers: map[string]string{"sup-user": "profile-1"}})

	req := models.CreateProductRequest{Name: "brake pads", Category: "brakes", Price: 4500, Stock: 10}

	if _, err := svc.CreateProduct(context.Background(), "buyer-user", req); err != models.ErrForbidden {
		t.Errorf("buyer create err = %v, want ErrForbidden", err)
	}

	product, err := svc.CreateProduct(context.Background(), "sup-user", req)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.SupplierID != "profile-1" {
		t.Errorf("supplier id = %q, want profile-1", product.SupplierID)
	}
}

func TestUpdateProductZeroStockFlipsStatus(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, &fakeDirectory{suppliers: map[string]string{"sup-user": "profile-1"}})

	product, err := svc.CreateProduct(context.Background(), "sup-user", models.CreateProductRequest{
		Name: "oil filter", Category: "filters", Price: 1200, Stock: 5,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	zero := 0
	updated, err := svc.UpdateProduct(context.Background(), "sup-user", product.ID, models.UpdateProductRequest{Stock: &zero})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Status != models.ProductOutOfStock {
		t.Errorf("status = %q, want OUT_OF_STOCK", updated.Status)
	}
}

func TestUpdateProductScopedToOwner(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, &fakeDirectory{suppliers: map[string]string{
		"sup-a": "profile-a",
		"sup-b": "profile-b",
	}})

	product, _ := svc.CreateProduct(context.Background(), "sup-a", models.CreateProductRequest{
		Name: "spark plug", Category: "ignition", Price: 800, Stock: 50,
	})

	price := 900.0
	if _, err := svc.UpdateProduct(context.Background(), "sup-b", product.ID, models.UpdateProductRequest{Price: &price}); err != models.ErrNotFound {
		t.Errorf("foreign supplier update err = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteProduct(context.Background(), "sup-b", product.ID); err != models.ErrNotFound {
		t.Errorf("foreign supplier delete err = %v, want ErrNotFound", err)
	}
}
