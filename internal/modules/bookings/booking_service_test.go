package bookings

import (
	"context"
	"strings"
	"testing"
	"time"

	"parts-and-service/internal/events"
	"parts-and-service/internal/models"
	"parts-and-service/internal/status"
)

type fakeBookingRepo struct {
	bookings       map[string]*models.Booking
	claimed        map[string]string
	feedback       map[string]models.FeedbackRequest
	ratedProviders map[string]string // bookingID -> provider whose rating was refreshed
	emails         map[string]string
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:       make(map[string]*models.Booking),
		claimed:        make(map[string]string),
		feedback:       make(map[string]models.FeedbackRequest),
		ratedProviders: make(map[string]string),
		emails:         make(map[string]string),
	}
}

func (f *fakeBookingRepo) Create(_ context.Context, b *models.Booking) (*models.Booking, error) {
	b.ID = "booking-" + b.Kind
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ListByUser(_ context.Context, kind, userID string, _, _ int) ([]*models.Booking, int, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.Kind == kind && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) ListForProvider(_ context.Context, kind, providerID string) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.Kind != kind {
			continue
		}
		if b.ProviderID == nil && b.Status == status.BookingPending {
			out = append(out, b)
		} else if b.ProviderID != nil && *b.ProviderID == providerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListAll(_ context.Context, kind string, _, _ int) ([]*models.Booking, int, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if kind == "" || b.Kind == kind {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) Claim(_ context.Context, bookingID, providerID string) (*models.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if b.ProviderID != nil {
		return nil, models.ErrBookingAlreadyClaimed
	}
	if b.Status != status.BookingPending {
		return nil, models.ErrInvalidTransition
	}
	b.ProviderID = &providerID
	b.Status = status.BookingConfirmed
	f.claimed[bookingID] = providerID
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, bookingID, from, to string) (*models.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok || b.Status != from {
		return nil, models.ErrConflict
	}
	b.Status = to
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) UpdateLocation(_ context.Context, bookingID, providerID, location string) error {
	b, ok := f.bookings[bookingID]
	if !ok || b.ProviderID == nil || *b.ProviderID != providerID {
		return models.ErrNotFound
	}
	b.CurrentLocation = location
	return nil
}

func (f *fakeBookingRepo) InsertFeedback(_ context.Context, bookingID, providerID string, req models.FeedbackRequest) error {
	if _, exists := f.feedback[bookingID]; exists {
		return models.ErrFeedbackAlreadySubmitted
	}
	f.feedback[bookingID] = req
	f.ratedProviders[bookingID] = providerID
	return nil
}

func (f *fakeBookingRepo) OwnerEmail(_ context.Context, bookingID string) (string, error) {
	email, ok := f.emails[bookingID]
	if !ok {
		return "", models.ErrNotFound
	}
	return email, nil
}

type fakeProfiles struct {
	profiles map[string]*models.ProviderProfile // userID -> profile
}

func (f *fakeProfiles) FindProviderProfile(_ context.Context, userID, kind string) (*models.ProviderProfile, error) {
	p, ok := f.profiles[userID]
	if !ok || p.Kind != kind {
		return nil, models.ErrNotFound
	}
	return p, nil
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, ...string) error { return nil }

type recordingSender struct {
	sent []string
}

func (r *recordingSender) Send(_ context.Context, to, _, _ string) error {
	r.sent = append(r.sent, to)
	return nil
}

func newTestService(repo *fakeBookingRepo, profiles *fakeProfiles) (*Service, *recordingSender) {
	sender := &recordingSender{}
	svc := NewService(repo, profiles, events.NopPublisher{}, nopInvalidator{}, sender)
	return svc, sender
}

func TestCreateLogisticsBookingComputesPrice(t *testing.T) {
	repo := newFakeBookingRepo()
	svc, _ := newTestService(repo, &fakeProfiles{})

	booking, err := svc.CreateLogisticsBooking(context.Background(), "buyer-1", models.CreateLogisticsBookingRequest{
		PackageType:     "MEDIUM",
		WeightKg:        10,
		PickupAddress:   "12 Broad St, Lagos",
		DeliveryAddress: "4 Marina Rd, Abuja",
		DeliverySpeed:   "SAME_DAY",
	})
	if err != nil {
		t.Fatalf("CreateLogisticsBooking: %v", err)
	}

	// (5000 base + 100*10kg) * 2.0 same-day multiplier
	if booking.EstimatedPrice != 12000 {
		t.Errorf("estimated price = %v, want 12000", booking.EstimatedPrice)
	}
	if booking.Status != status.BookingPending {
		t.Errorf("status = %q, want PENDING", booking.Status)
	}
	if !strings.HasPrefix(booking.TrackingNumber, "TRK-") || len(booking.TrackingNumber) != 14 {
		t.Errorf("tracking number %q not in TRK-XXXXXXXXXX form", booking.TrackingNumber)
	}
}

func TestCreateLogisticsBookingRejectsUnknownTier(t *testing.T) {
	repo := newFakeBookingRepo()
	svc, _ := newTestService(repo, &fakeProfiles{})

	_, err := svc.CreateLogisticsBooking(context.Background(), "buyer-1", models.CreateLogisticsBookingRequest{
		PackageType:     "GIGANTIC",
		WeightKg:        10,
		PickupAddress:   "a",
		DeliveryAddress: "b",
		DeliverySpeed:   "STANDARD",
	})
	if err == nil {
		t.Fatal("expected error for unknown package type")
	}
}

func TestAcceptBookingClaimsOnce(t *testing.T) {
	repo := newFakeBookingRepo()
	profiles := &fakeProfiles{profiles: map[string]*models.ProviderProfile{
		"mech-user": {ID: "profile-1", UserID: "mech-user", Kind: models.RoleMechanic},
	}}
	svc, sender := newTestService(repo, profiles)

	booking, err := svc.CreateMechanicBooking(context.Background(), "buyer-1", models.CreateMechanicBookingRequest{
		VehicleMake: "Toyota", VehicleModel: "Corolla", VehicleYear: 2019,
		ServiceType: "brake inspection", ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateMechanicBooking: %v", err)
	}
	repo.emails[booking.ID] = "buyer@example.com"

	accepted, err := svc.AcceptBooking(context.Background(), models.KindMechanic, booking.ID, "mech-user", models.RoleMechanic)
	if err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}
	if accepted.Status != status.BookingConfirmed {
		t.Errorf("status = %q, want CONFIRMED", accepted.Status)
	}
	if accepted.ProviderID == nil || *accepted.ProviderID != "profile-1" {
		t.Errorf("provider not assigned: %v", accepted.ProviderID)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "buyer@example.com" {
		t.Errorf("confirmation mail not sent to buyer: %v", sender.sent)
	}

	if _, err := svc.AcceptBooking(context.Background(), models.KindMechanic, booking.ID, "mech-user", models.RoleMechanic); err != models.ErrBookingAlreadyClaimed {
		t.Errorf("second accept err = %v, want ErrBookingAlreadyClaimed", err)
	}
}

func TestAcceptCancelledBookingRejected(t *testing.T) {
	repo := newFakeBookingRepo()
	profiles := &fakeProfiles{profiles: map[string]*models.ProviderProfile{
		"mech-user": {ID: "profile-1", UserID: "mech-user", Kind: models.RoleMechanic},
	}}
	svc, _ := newTestService(repo, profiles)

	booking, _ := svc.CreateMechanicBooking(context.Background(), "buyer-1", models.CreateMechanicBookingRequest{
		VehicleMake: "Nissan", VehicleModel: "Altima", VehicleYear: 2016,
		ServiceType: "suspension", ScheduledAt: time.Now().Add(time.Hour),
	})
	if _, err := svc.AdminUpdateBooking(context.Background(), "admin-1", booking.ID, status.BookingCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Cancelled before anyone claimed it: that is a dead booking, not a
	// lost claim race.
	if _, err := svc.AcceptBooking(context.Background(), models.KindMechanic, booking.ID, "mech-user", models.RoleMechanic); err != models.ErrInvalidTransition {
		t.Errorf("accept cancelled err = %v, want ErrInvalidTransition", err)
	}
}

func TestAcceptBookingRequiresMatchingRole(t *testing.T) {
	repo := newFakeBookingRepo()
	svc, _ := newTestService(repo, &fakeProfiles{})

	if _, err := svc.AcceptBooking(context.Background(), models.KindMechanic, "x", "buyer-1", models.RoleBuyer); err != models.ErrForbidden {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateStatusRejectsIllegalJump(t *testing.T) {
	repo := newFakeBookingRepo()
	profiles := &fakeProfiles{profiles: map[string]*models.ProviderProfile{
		"mech-user": {ID: "profile-1", UserID: "mech-user", Kind: models.RoleMechanic},
	}}
	svc, _ := newTestService(repo, profiles)

	booking, _ := svc.CreateMechanicBooking(context.Background(), "buyer-1", models.CreateMechanicBookingRequest{
		VehicleMake: "Honda", VehicleModel: "Civic", VehicleYear: 2021,
		ServiceType: "oil change", ScheduledAt: time.Now().Add(time.Hour),
	})

	// PENDING cannot jump straight to COMPLETED, not even for an admin.
	if _, err := svc.UpdateStatus(context.Background(), models.KindMechanic, booking.ID, "admin-1", models.RoleAdmin, status.BookingCompleted); err != models.ErrInvalidTransition {
		t.Errorf("PENDING->COMPLETED err = %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), models.KindMechanic, booking.ID, "admin-1", models.RoleAdmin, "SHIPPED"); err != models.ErrInvalidTransition {
		t.Errorf("unknown label err = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateStatusRequiresAssignedProvider(t *testing.T) {
	repo := newFakeBookingRepo()
	profiles := &fakeProfiles{profiles: map[string]*models.ProviderProfile{
		"mech-a": {ID: "profile-a", UserID: "mech-a", Kind: models.RoleMechanic},
		"mech-b": {ID: "profile-b", UserID: "mech-b", Kind: models.RoleMechanic},
	}}
	svc, _ := newTestService(repo, profiles)

	booking, _ := svc.CreateMechanicBooking(context.Background(), "buyer-1", models.CreateMechanicBookingRequest{
		VehicleMake: "Ford", VehicleModel: "Focus", VehicleYear: 2018,
		ServiceType: "diagnostics", ScheduledAt: time.Now().Add(time.Hour),
	})
	repo.emails[booking.ID] = "buyer@example.com"
	if _, err := svc.AcceptBooking(context.Background(), models.KindMechanic, booking.ID, "mech-a", models.RoleMechanic); err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}

	// The other mechanic cannot move a booking they do not own.
	if _, err := svc.UpdateStatus(context.Background(), models.KindMechanic, booking.ID, "mech-b", models.RoleMechanic, status.BookingInProgress); err != models.ErrForbidden {
		t.Errorf("foreign provider err = %v, want ErrForbidden", err)
	}

	// The assigned one can.
	updated, err := svc.UpdateStatus(context.Background(), models.KindMechanic, booking.ID, "mech-a", models.RoleMechanic, status.BookingInProgress)
	if err != nil {
		t.Fatalf("assigned provider UpdateStatus: %v", err)
	}
	if updated.Status != status.BookingInProgress {
		t.Errorf("status = %q, want IN_PROGRESS", updated.Status)
	}
}

func TestAdminCannotResurrectCancelledBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	svc, _ := newTestService(repo, &fakeProfiles{})

	booking, _ := svc.CreateMechanicBooking(context.Background(), "buyer-1", models.CreateMechanicBookingRequest{
		VehicleMake: "Kia", VehicleModel: "Rio", VehicleYear: 2020,
		ServiceType: "inspection", ScheduledAt: time.Now().Add(time.Hour),
	})
	if _, err := svc.AdminUpdateBooking(context.Background(), "admin-1", booking.ID, status.BookingCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.AdminUpdateBooking(context.Background(), "admin-1", booking.ID, status.BookingConfirmed); err != models.ErrInvalidTransition {
		t.Errorf("CANCELLED->CONFIRMED err = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateLocationRequiresAssignedProvider(t *testing.T) {
	repo := newFakeBookingRepo()
	profiles := &fakeProfiles{profiles: map[string]*models.ProviderProfile{
		"log-a": {ID: "profile-a", UserID: "log-a", Kind: models.RoleLogistics},
		"log-b": {ID: "profile-b", UserID: "log-b", Kind: models.RoleLogistics},
	}}
	svc, _ := newTestService(repo, profiles)

	booking, err := svc.CreateLogisticsBooking(context.Background(), "buyer-1", models.CreateLogisticsBookingRequest{
		PackageType: "SMALL", WeightKg: 1,
		PickupAddress: "a", DeliveryAddress: "b", DeliverySpeed: "STANDARD",
	})
	if err != nil {
		t.Fatalf("CreateLogisticsBooking: %v", err)
	}
	repo.emails[booking.ID] = "buyer@example.com"
	if _, err := svc.AcceptBooking(context.Background(), models.KindLogistics, booking.ID, "log-a", models.RoleLogistics); err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}

	req := models.UpdateLocationRequest{CurrentLocation: "Ibadan depot"}
	if err := svc.UpdateLocation(context.Background(), booking.ID, "log-b", req); err != models.ErrForbidden {
		t.Errorf("foreign provider err = %v, want ErrForbidden", err)
	}
	if err := svc.UpdateLocation(context.Background(), booking.ID, "log-a", req); err != nil {
		t.Errorf("assigned provider: %v", err)
	}
}

func TestSubmitFeedbackRules(t *testing.T) {
	repo := newFakeBookingRepo()
	profiles := &fakeProfiles{profiles: map[string]*models.ProviderProfile{
		"mech-user": {ID: "profile-1", UserID: "mech-user", Kind: models.RoleMechanic},
	}}
	svc, _ := newTestService(repo, profiles)

	booking, _ := svc.CreateMechanicBooking(context.Background(), "buyer-1", models.CreateMechanicBookingRequest{
		VehicleMake: "Mazda", VehicleModel: "3", VehicleYear: 2022,
		ServiceType: "tires", ScheduledAt: time.Now().Add(time.Hour),
	})
	repo.emails[booking.ID] = "buyer@example.com"
	req := models.FeedbackRequest{Rating: 5, Comment: "great"}

	// Not completed yet.
	if err := svc.SubmitFeedback(context.Background(), booking.ID, "buyer-1", req); err != models.ErrCannotSubmitFeedback {
		t.Errorf("pending feedback err = %v, want ErrCannotSubmitFeedback", err)
	}

	svc.AcceptBooking(context.Background(), models.KindMechanic, booking.ID, "mech-user", models.RoleMechanic)
	svc.UpdateStatus(context.Background(), models.KindMechanic, booking.ID, "mech-user", models.RoleMechanic, status.BookingInProgress)
	svc.UpdateStatus(context.Background(), models.KindMechanic, booking.ID, "mech-user", models.RoleMechanic, status.BookingCompleted)

	// Someone else's booking looks like it does not exist.
	if err := svc.SubmitFeedback(context.Background(), booking.ID, "stranger", req); err != models.ErrNotFound {
		t.Errorf("stranger feedback err = %v, want ErrNotFound", err)
	}

	if err := svc.SubmitFeedback(context.Background(), booking.ID, "buyer-1", req); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	// The rating refresh targets the assigned provider's profile.
	if got := repo.ratedProviders[booking.ID]; got != "profile-1" {
		t.Errorf("rating refreshed for provider %q, want profile-1", got)
	}
	if err := svc.SubmitFeedback(context.Background(), booking.ID, "buyer-1", req); err != models.ErrFeedbackAlreadySubmitted {
		t.Errorf("duplicate feedback err = %v, want ErrFeedbackAlreadySubmitted", err)
	}
}

func TestQuoteDoesNotPersist(t *testing.T) {
	repo := newFakeBookingRepo()
	svc, _ := newTestService(repo, &fakeProfiles{})

	quote, err := svc.Quote(models.QuoteRequest{PackageType: "SMALL", WeightKg: 2, DeliverySpeed: "EXPRESS"})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	// (2500 + 200) * 1.5
	if quote.EstimatedPrice != 4050 {
		t.Errorf("quote = %v, want 4050", quote.EstimatedPrice)
	}
	if len(repo.bookings) != 0 {
		t.Errorf("quote created %d bookings, want 0", len(repo.bookings))
	}
}

func TestGetBookingVisibility(t *testing.T) {
	repo := newFakeBookingRepo()
	profiles := &fakeProfiles{profiles: map[string]*models.ProviderProfile{
		"mech-user": {ID: "profile-1", UserID: "mech-user", Kind: models.RoleMechanic},
	}}
	svc, _ := newTestService(repo, profiles)

	booking, _ := svc.CreateMechanicBooking(context.Background(), "buyer-1", models.CreateMechanicBookingRequest{
		VehicleMake: "VW", VehicleModel: "Golf", VehicleYear: 2017,
		ServiceType: "battery", ScheduledAt: time.Now().Add(time.Hour),
	})

	if _, err := svc.GetBooking(context.Background(), booking.ID, "buyer-1", models.RoleBuyer); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := svc.GetBooking(context.Background(), booking.ID, "admin-1", models.RoleAdmin); err != nil {
		t.Errorf("admin read: %v", err)
	}
	if _, err := svc.GetBooking(context.Background(), booking.ID, "stranger", models.RoleBuyer); err != models.ErrNotFound {
		t.Errorf("stranger read err = %v, want ErrNotFound", err)
	}
	// A provider only sees it once assigned.
	if _, err := svc.GetBooking(context.Background(), booking.ID, "mech-user", models.RoleMechanic); err != models.ErrNotFound {
		t.Errorf("unassigned provider read err = %v, want ErrNotFound", err)
	}
}
