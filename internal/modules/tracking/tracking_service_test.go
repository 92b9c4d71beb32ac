package tracking

import (
	"context"
	"testing"

	"parts-and-service/internal/models"
	"parts-and-service/internal/status"
)

type fakeTrackingRepo struct {
	orders     map[string]*models.TrackingView
	deliveries map[string]*models.TrackingView
	orderCalls int
}

func (f *fakeTrackingRepo) FindOrderByCode(_ context.Context, code string) (*models.TrackingView, error) {
	f.orderCalls++
	if v, ok := f.orders[code]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeTrackingRepo) FindDeliveryByTrackingNumber(_ context.Context, code string) (*models.TrackingView, error) {
	if v, ok := f.deliveries[code]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

type fakeCache struct {
	store map[string]*models.TrackingView
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]*models.TrackingView)}
}

func (f *fakeCache) Get(_ context.Context, code string) (*models.TrackingView, error) {
	return f.store[code], nil
}

func (f *fakeCache) Set(_ context.Context, code string, view *models.TrackingView) error {
	f.store[code] = view
	return nil
}

func TestTrackResolvesOrderFirst(t *testing.T) {
	repo := &fakeTrackingRepo{
		orders: map[string]*models.TrackingView{
			"abc-123": {Code: "abc-123", Source: models.TrackingSourceOrder, Status: status.OrderShipped},
		},
		deliveries: map[string]*models.TrackingView{
			"abc-123": {Code: "abc-123", Source: models.TrackingSourceDelivery, Status: status.BookingPending},
		},
	}
	svc := NewService(repo, newFakeCache())

	view, err := svc.Track(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if view.Source != models.TrackingSourceOrder {
		t.Errorf("source = %q, want ORDER (orders win over deliveries)", view.Source)
	}
	if view.Message != "Order shipped and in transit" {
		t.Errorf("message = %q", view.Message)
	}
}

func TestTrackFallsBackToDelivery(t *testing.T) {
	repo := &fakeTrackingRepo{
		orders: map[string]*models.TrackingView{},
		deliveries: map[string]*models.TrackingView{
			"TRK-AB12CD34EF": {Code: "TRK-AB12CD34EF", Source: models.TrackingSourceDelivery, Status: status.BookingInProgress},
		},
	}
	svc := NewService(repo, newFakeCache())

	view, err := svc.Track(context.Background(), "TRK-AB12CD34EF")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if view.Source != models.TrackingSourceDelivery {
		t.Errorf("source = %q, want DELIVERY", view.Source)
	}
	if view.Message != "Package in transit" {
		t.Errorf("message = %q", view.Message)
	}
}

func TestTrackUnknownCode(t *testing.T) {
	repo := &fakeTrackingRepo{orders: map[string]*models.TrackingView{}, deliveries: map[string]*models.TrackingView{}}
	svc := NewService(repo, newFakeCache())

	if _, err := svc.Track(context.Background(), "nope"); err != models.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Track(context.Background(), ""); err != models.ErrNotFound {
		t.Errorf("empty code err = %v, want ErrNotFound", err)
	}
}

func TestTrackUsesCache(t *testing.T) {
	repo := &fakeTrackingRepo{
		orders: map[string]*models.TrackingView{
			"abc-123": {Code: "abc-123", Source: models.TrackingSourceOrder, Status: status.OrderPending},
		},
		deliveries: map[string]*models.TrackingView{},
	}
	cache := newFakeCache()
	svc := NewService(repo, cache)

	if _, err := svc.Track(context.Background(), "abc-123"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if _, err := svc.Track(context.Background(), "abc-123"); err != nil {
		t.Fatalf("Track (cached): %v", err)
	}
	if repo.orderCalls != 1 {
		t.Errorf("repo hit %d times, want 1 (second read served from cache)", repo.orderCalls)
	}
	if cached := cache.store["abc-123"]; cached == nil || cached.Message == "" {
		t.Errorf("cache should hold the rendered view, got %+v", cached)
	}
}
