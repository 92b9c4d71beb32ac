package models

import "time"

// Tracking sources.
const (
	TrackingSourceOrder    = "ORDER"
	TrackingSourceDelivery = "DELIVERY"
)

// TrackingView is the flattened public read model returned by the tracking
// lookup. Exactly one of the order or delivery field groups is populated,
// depending on Source.
type TrackingView struct {
	Code    string `json:"code"`
	Source  string `json:"source"`
	Status  string `json:"status"`
	Message string `json:"message"`

	// Order fields.
	Items           []OrderItem `json:"items,omitempty"`
	Total           float64     `json:"total,omitempty"`
	ShippingAddress *Address    `json:"shipping_address,omitempty"`

	// Logistics delivery fields.
	PackageType     string `json:"package_type,omitempty"`
	PickupAddress   string `json:"pickup_address,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	CurrentLocation string `json:"current_location,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
