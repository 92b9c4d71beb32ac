package catalog

import (
	"context"
	"fmt"

	"parts-and-service/internal/models"
)

// ProfileDirectory resolves the provider profile acting for a user. The
// users module implements it; catalog only needs the supplier lookup.
type ProfileDirectory interface {
	FindProviderProfile(ctx context.Context, userID, kind string) (*models.ProviderProfile, error)
}

// ServiceInterface defines the contract for the catalog service.
type ServiceInterface interface {
	CreateProduct(ctx context.Context, userID string, req models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error)
	ListMyProducts(ctx context.Context, userID string, page, limit int) ([]*models.Product, int, error)
	UpdateProduct(ctx context.Context, userID, productID string, req models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, userID, productID string) error
}

// Service implements the catalog service logic.
type Service struct {
	repo     RepositoryInterface
	profiles ProfileDirectory
}

// NewService creates a new catalog service.
func NewService(repo RepositoryInterface, profiles ProfileDirectory) *Service {
	return &Service{repo: repo, profiles: profiles}
}

func (s *Service) supplierProfile(ctx context.Context, userID string) (*models.ProviderProfile, error) {
	profile, err := s.profiles.FindProviderProfile(ctx, userID, models.RoleSupplier)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrForbidden
		}
		return nil, err
	}
	return profile, nil
}

func (s *Service) CreateProduct(ctx context.Context, userID string, req models.CreateProductRequest) (*models.Product, error) {
	profile, err := s.supplierProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.Create(ctx, profile.ID, req)
	if err != nil {
		return nil, fmt.Errorf("service.CreateProduct: %w", err)
	}
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return s.repo.FindByID(ctx, productID)
}

func (s *Service) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.ListPublic(ctx, filter)
}

func (s *Service) ListMyProducts(ctx context.Context, userID string, page, limit int) ([]*models.Product, int, error) {
	profile, err := s.supplierProfile(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListBySupplier(ctx, profile.ID, page, limit)
}

func (s *Service) UpdateProduct(ctx context.Context, userID, productID string, req models.UpdateProductRequest) (*models.Product, error) {
	profile, err := s.supplierProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Stock going to zero flips the listing to OUT_OF_STOCK unless the
	// caller set an explicit status in the same request.
	if req.Stock != nil && *req.Stock == 0 && req.Status == nil {
		out := models.ProductOutOfStock
		req.Status = &out
	}

	return s.repo.Update(ctx, productID, profile.ID, req)
}

func (s *Service) DeleteProduct(ctx context.Context, userID, productID string) error {
	profile, err := s.supplierProfile(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, productID, profile.ID)
}
