package bookings

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"parts-and-service/internal/events"
	"parts-and-service/internal/models"
	"parts-and-service/internal/pricing"
	"parts-and-service/internal/status"
)

// ProfileDirectory resolves the provider profile acting for a user.
type ProfileDirectory interface {
	FindProviderProfile(ctx context.Context, userID, kind string) (*models.ProviderProfile, error)
}

// TrackingInvalidator drops cached public tracking views after a write.
type TrackingInvalidator interface {
	Invalidate(ctx context.Context, codes ...string) error
}

// EmailSender delivers transactional mail.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ServiceInterface defines the contract for the booking service.
type ServiceInterface interface {
	CreateMechanicBooking(ctx context.Context, userID string, req models.CreateMechanicBookingRequest) (*models.Booking, error)
	CreateLogisticsBooking(ctx context.Context, userID string, req models.CreateLogisticsBookingRequest) (*models.Booking, error)
	Quote(req models.QuoteRequest) (*models.QuoteResponse, error)
	GetBooking(ctx context.Context, bookingID, userID, role string) (*models.Booking, error)
	ListMyBookings(ctx context.Context, kind, userID string, page, limit int) ([]*models.Booking, int, error)
	ListProviderBookings(ctx context.Context, kind, userID, role string) ([]*models.Booking, error)
	AcceptBooking(ctx context.Context, kind, bookingID, userID, role string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, kind, bookingID, userID, role, newStatus string) (*models.Booking, error)
	UpdateLocation(ctx context.Context, bookingID, userID string, req models.UpdateLocationRequest) error
	SubmitFeedback(ctx context.Context, bookingID, userID string, req models.FeedbackRequest) error
	ListAllBookings(ctx context.Context, kind string, page, limit int) ([]*models.Booking, int, error)
	AdminUpdateBooking(ctx context.Context, adminID, bookingID, newStatus string) (*models.Booking, error)
}

// Service implements the booking service logic for both kinds.
type Service struct {
	repo          RepositoryInterface
	profiles      ProfileDirectory
	publisher     events.Publisher
	trackingCache TrackingInvalidator
	email         EmailSender
}

// NewService creates a new booking service.
func NewService(repo RepositoryInterface, profiles ProfileDirectory, publisher events.Publisher, trackingCache TrackingInvalidator, email EmailSender) *Service {
	return &Service{
		repo:          repo,
		profiles:      profiles,
		publisher:     publisher,
		trackingCache: trackingCache,
		email:         email,
	}
}

// roleForKind maps a booking kind to the provider role allowed to work it.
func roleForKind(kind string) string {
	if kind == models.KindMechanic {
		return models.RoleMechanic
	}
	return models.RoleLogistics
}

func newTrackingNumber() string {
	return "TRK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// CreateMechanicBooking creates a service booking for a buyer's vehicle.
func (s *Service) CreateMechanicBooking(ctx context.Context, userID string, req models.CreateMechanicBookingRequest) (*models.Booking, error) {
	scheduled := req.ScheduledAt
	booking := &models.Booking{
		Kind:         models.KindMechanic,
		UserID:       userID,
		Status:       status.BookingPending,
		VehicleMake:  req.VehicleMake,
		VehicleModel: req.VehicleModel,
		VehicleYear:  req.VehicleYear,
		PlateNumber:  req.PlateNumber,
		ServiceType:  req.ServiceType,
		ScheduledAt:  &scheduled,
	}

	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		return nil, err
	}
	s.publishChange(created, "", created.Status, userID)
	return created, nil
}

// CreateLogisticsBooking creates a delivery booking. The price is always
// recomputed here; whatever estimate the client showed the buyer is ignored.
func (s *Service) CreateLogisticsBooking(ctx context.Context, userID string, req models.CreateLogisticsBookingRequest) (*models.Booking, error) {
	price, err := pricing.Estimate(req.PackageType, req.WeightKg, req.DeliverySpeed)
	if err != nil {
		return nil, fmt.Errorf("service.CreateLogisticsBooking: %w", err)
	}

	booking := &models.Booking{
		Kind:               models.KindLogistics,
		UserID:             userID,
		Status:             status.BookingPending,
		PackageType:        req.PackageType,
		WeightKg:           req.WeightKg,
		PackageDescription: req.PackageDescription,
		PickupAddress:      req.PickupAddress,
		DeliveryAddress:    req.DeliveryAddress,
		DeliverySpeed:      req.DeliverySpeed,
		TrackingNumber:     newTrackingNumber(),
		EstimatedPrice:     price,
	}

	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		return nil, err
	}
	s.publishChange(created, "", created.Status, userID)
	return created, nil
}

// Quote prices a delivery without creating anything.
func (s *Service) Quote(req models.QuoteRequest) (*models.QuoteResponse, error) {
	price, err := pricing.Estimate(req.PackageType, req.WeightKg, req.DeliverySpeed)
	if err != nil {
		return nil, err
	}
	return &models.QuoteResponse{EstimatedPrice: price, Currency: "NGN"}, nil
}

// GetBooking retrieves one booking, visible to its owner, its assigned
// provider and admins.
func (s *Service) GetBooking(ctx context.Context, bookingID, userID, role string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID == userID || role == models.RoleAdmin {
		return booking, nil
	}
	if role == roleForKind(booking.Kind) {
		profile, err := s.profiles.FindProviderProfile(ctx, userID, role)
		if err == nil && booking.ProviderID != nil && *booking.ProviderID == profile.ID {
			return booking, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Service) ListMyBookings(ctx context.Context, kind, userID string, page, limit int) ([]*models.Booking, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, kind, userID, page, limit)
}

// ListProviderBookings returns the work queue for the calling provider.
func (s *Service) ListProviderBookings(ctx context.Context, kind, userID, role string) ([]*models.Booking, error) {
	if role != roleForKind(kind) {
		return nil, models.ErrForbidden
	}
	profile, err := s.profiles.FindProviderProfile(ctx, userID, role)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrForbidden
		}
		return nil, err
	}
	return s.repo.ListForProvider(ctx, kind, profile.ID)
}

// AcceptBooking lets a provider claim an unassigned PENDING booking, which
// confirms it and notifies the buyer.
func (s *Service) AcceptBooking(ctx context.Context, kind, bookingID, userID, role string) (*models.Booking, error) {
	if role != roleForKind(kind) {
		return nil, models.ErrForbidden
	}
	profile, err := s.profiles.FindProviderProfile(ctx, userID, role)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrForbidden
		}
		return nil, err
	}

	booking, err := s.repo.Claim(ctx, bookingID, profile.ID)
	if err != nil {
		return nil, err
	}

	s.publishChange(booking, status.BookingPending, booking.Status, userID)
	s.invalidateTracking(ctx, booking)
	s.notifyConfirmed(ctx, booking)
	return booking, nil
}

// UpdateStatus applies a provider status change after checking the lifecycle
// table. Illegal jumps (PENDING straight to COMPLETED, touching a CANCELLED
// booking) are rejected, not written.
func (s *Service) UpdateStatus(ctx context.Context, kind, bookingID, userID, role, newStatus string) (*models.Booking, error) {
	if !status.ValidBookingStatus(newStatus) {
		return nil, models.ErrInvalidTransition
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Kind != kind {
		return nil, models.ErrNotFound
	}

	if err := s.authorizeProviderWrite(ctx, booking, userID, role); err != nil {
		return nil, err
	}

	if !status.CanTransitionBooking(booking.Status, newStatus) {
		return nil, models.ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, booking.ID, booking.Status, newStatus)
	if err != nil {
		return nil, err
	}

	s.publishChange(updated, booking.Status, updated.Status, userID)
	s.invalidateTracking(ctx, updated)
	if updated.Status == status.BookingConfirmed {
		s.notifyConfirmed(ctx, updated)
	}
	return updated, nil
}

func (s *Service) authorizeProviderWrite(ctx context.Context, booking *models.Booking, userID, role string) error {
	if role == models.RoleAdmin {
		return nil
	}
	if role != roleForKind(booking.Kind) {
		return models.ErrForbidden
	}
	profile, err := s.profiles.FindProviderProfile(ctx, userID, role)
	if err != nil {
		if err == models.ErrNotFound {
			return models.ErrForbidden
		}
		return err
	}
	if booking.ProviderID == nil || *booking.ProviderID != profile.ID {
		return models.ErrForbidden
	}
	return nil
}

// UpdateLocation records a new package location on a logistics booking.
func (s *Service) UpdateLocation(ctx context.Context, bookingID, userID string, req models.UpdateLocationRequest) error {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Kind != models.KindLogistics {
		return models.ErrNotFound
	}
	profile, err := s.profiles.FindProviderProfile(ctx, userID, models.RoleLogistics)
	if err != nil {
		if err == models.ErrNotFound {
			return models.ErrForbidden
		}
		return err
	}
	if booking.ProviderID == nil || *booking.ProviderID != profile.ID {
		return models.ErrForbidden
	}

	if err := s.repo.UpdateLocation(ctx, booking.ID, profile.ID, req.CurrentLocation); err != nil {
		return err
	}
	s.invalidateTracking(ctx, booking)
	return nil
}

// SubmitFeedback records the buyer's rating for a completed booking and
// refreshes the provider's aggregate rating.
func (s *Service) SubmitFeedback(ctx context.Context, bookingID, userID string, req models.FeedbackRequest) error {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return models.ErrNotFound
	}
	if booking.Status != status.BookingCompleted || booking.ProviderID == nil {
		return models.ErrCannotSubmitFeedback
	}
	if booking.Feedback != nil {
		return models.ErrFeedbackAlreadySubmitted
	}
	return s.repo.InsertFeedback(ctx, booking.ID, *booking.ProviderID, req)
}

func (s *Service) ListAllBookings(ctx context.Context, kind string, page, limit int) ([]*models.Booking, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.repo.ListAll(ctx, kind, page, limit)
}

// AdminUpdateBooking is the admin override; the lifecycle table still applies.
func (s *Service) AdminUpdateBooking(ctx context.Context, adminID, bookingID, newStatus string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, booking.Kind, bookingID, adminID, models.RoleAdmin, newStatus)
}

func (s *Service) publishChange(b *models.Booking, from, to, actor string) {
	s.publisher.PublishStatusChange(events.TopicBookingStatusChanged, events.StatusChanged{
		EntityID:  b.ID,
		Kind:      b.Kind,
		From:      from,
		To:        to,
		ChangedBy: actor,
	})
}

func (s *Service) invalidateTracking(ctx context.Context, b *models.Booking) {
	if b.TrackingNumber == "" {
		return
	}
	if err := s.trackingCache.Invalidate(ctx, b.TrackingNumber); err != nil {
		log.Printf("bookings: tracking cache invalidate failed for %s: %v", b.ID, err)
	}
}

func (s *Service) notifyConfirmed(ctx context.Context, b *models.Booking) {
	email, err := s.repo.OwnerEmail(ctx, b.ID)
	if err != nil {
		log.Printf("bookings: owner email lookup failed for %s: %v", b.ID, err)
		return
	}
	subject := "Your booking is confirmed"
	body := "A provider has accepted your booking."
	if b.Kind == models.KindLogistics {
		body = fmt.Sprintf("A provider has accepted your delivery. Track it with code %s.", b.TrackingNumber)
	}
	if err := s.email.Send(ctx, email, subject, body); err != nil {
		log.Printf("bookings: confirmation mail failed for %s: %v", b.ID, err)
	}
}
