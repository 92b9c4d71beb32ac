package models

import "time"

// Booking kinds. Mechanic and logistics bookings share one lifecycle and
// one table; the kind decides which field group is populated.
const (
	KindMechanic  = "MECHANIC"
	KindLogistics = "LOGISTICS"
)

// Booking is a request for provider service, tracked independently from
// product orders.
type Booking struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	UserID     string  `json:"user_id"`
	ProviderID *string `json:"provider_id,omitempty"`
	Status     string  `json:"status"`

	// Mechanic service fields.
	VehicleMake  string     `json:"vehicle_make,omitempty"`
	VehicleModel string     `json:"vehicle_model,omitempty"`
	VehicleYear  int        `json:"vehicle_year,omitempty"`
	PlateNumber  string     `json:"plate_number,omitempty"`
	ServiceType  string     `json:"service_type,omitempty"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`

	// Logistics delivery fields.
	PackageType        string  `json:"package_type,omitempty"`
	WeightKg           float64 `json:"weight_kg,omitempty"`
	PackageDescription string  `json:"package_description,omitempty"`
	PickupAddress      string  `json:"pickup_address,omitempty"`
	DeliveryAddress    string  `json:"delivery_address,omitempty"`
	DeliverySpeed      string  `json:"delivery_speed,omitempty"`
	TrackingNumber     string  `json:"tracking_number,omitempty"`
	CurrentLocation    string  `json:"current_location,omitempty"`
	EstimatedPrice     float64 `json:"estimated_price,omitempty"`

	Feedback  *Feedback `json:"feedback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feedback is a buyer rating attached to a completed booking.
type Feedback struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateMechanicBookingRequest struct {
	VehicleMake  string    `json:"vehicle_make" validate:"required"`
	VehicleModel string    `json:"vehicle_model" validate:"required"`
	VehicleYear  int       `json:"vehicle_year" validate:"required,gte=1950"`
	PlateNumber  string    `json:"plate_number"`
	ServiceType  string    `json:"service_type" validate:"required"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
}

// CreateLogisticsBookingRequest deliberately has no price field: the server
// recomputes the estimate and ignores anything the client thinks it costs.
type CreateLogisticsBookingRequest struct {
	PackageType        string  `json:"package_type" validate:"required,oneof=SMALL MEDIUM LARGE OVERSIZED FRAGILE"`
	WeightKg           float64 `json:"weight_kg" validate:"required,gt=0"`
	PackageDescription string  `json:"package_description"`
	PickupAddress      string  `json:"pickup_address" validate:"required"`
	DeliveryAddress    string  `json:"delivery_address" validate:"required"`
	DeliverySpeed      string  `json:"delivery_speed" validate:"required,oneof=STANDARD EXPRESS SAME_DAY"`
}

type QuoteRequest struct {
	PackageType   string  `json:"package_type" validate:"required,oneof=SMALL MEDIUM LARGE OVERSIZED FRAGILE"`
	WeightKg      float64 `json:"weight_kg" validate:"required,gt=0"`
	DeliverySpeed string  `json:"delivery_speed" validate:"required,oneof=STANDARD EXPRESS SAME_DAY"`
}

type QuoteResponse struct {
	EstimatedPrice float64 `json:"estimated_price"`
	Currency       string  `json:"currency"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
}

type UpdateLocationRequest struct {
	CurrentLocation string `json:"current_location" validate:"required"`
}

// FeedbackRequest represents the data needed to submit feedback for a booking.
type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}
