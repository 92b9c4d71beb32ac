package tracking

import (
	"context"
	"errors"
	"log"

	"parts-and-service/internal/models"
	"parts-and-service/internal/status"
)

// CacheInterface is the read-through cache in front of the tracking lookups.
type CacheInterface interface {
	Get(ctx context.Context, code string) (*models.TrackingView, error)
	Set(ctx context.Context, code string, view *models.TrackingView) error
}

// ServiceInterface defines the contract for the tracking service.
type ServiceInterface interface {
	Track(ctx context.Context, code string) (*models.TrackingView, error)
}

// Service resolves public tracking codes. A code is tried against orders
// first (by order id or tracking id), then against logistics deliveries, so
// a lookup always resolves to at most one source.
type Service struct {
	repo  RepositoryInterface
	cache CacheInterface
}

// NewService creates a new tracking service.
func NewService(repo RepositoryInterface, cache CacheInterface) *Service {
	return &Service{repo: repo, cache: cache}
}

// Track returns the public view for a tracking code.
func (s *Service) Track(ctx context.Context, code string) (*models.TrackingView, error) {
	if code == "" {
		return nil, models.ErrNotFound
	}

	if cached, err := s.cache.Get(ctx, code); err != nil {
		log.Printf("tracking: cache read failed for %s: %v", code, err)
	} else if cached != nil {
		return cached, nil
	}

	view, err := s.repo.FindOrderByCode(ctx, code)
	if errors.Is(err, models.ErrNotFound) {
		view, err = s.repo.FindDeliveryByTrackingNumber(ctx, code)
	}
	if err != nil {
		return nil, err
	}
	view.Message = statusMessage(view.Source, view.Status)

	if err := s.cache.Set(ctx, code, view); err != nil {
		log.Printf("tracking: cache write failed for %s: %v", code, err)
	}
	return view, nil
}

func statusMessage(source, st string) string {
	if source == models.TrackingSourceOrder {
		switch st {
		case status.OrderPending:
			return "Order received, awaiting confirmation"
		case status.OrderProcessing:
			return "Order confirmed and being prepared"
		case status.OrderShipped:
			return "Order shipped and in transit"
		case status.OrderDelivered:
			return "Order delivered"
		case status.OrderCancelled:
			return "Order cancelled"
		}
		return "Order status unknown"
	}
	switch st {
	case status.BookingPending:
		return "Delivery requested, waiting for a provider"
	case status.BookingConfirmed:
		return "Provider assigned, pickup scheduled"
	case status.BookingInProgress:
		return "Package in transit"
	case status.BookingCompleted:
		return "Package delivered"
	case status.BookingCancelled:
		return "Delivery cancelled"
	}
	return "Delivery status unknown"
}
