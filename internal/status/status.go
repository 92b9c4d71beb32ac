// Package status owns the order and booking lifecycles. Every status write
// in the system goes through one of the transition tables below; there is
// no code path that overwrites a status unconditionally.
package status

// Order statuses.
const (
	OrderPending    = "PENDING"
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
)

// Booking statuses, shared by mechanic and logistics bookings.
const (
	BookingPending    = "PENDING"
	BookingConfirmed  = "CONFIRMED"
	BookingInProgress = "IN_PROGRESS"
	BookingCompleted  = "COMPLETED"
	BookingCancelled  = "CANCELLED"
)

// CANCELLED is reachable only from the early states; DELIVERED, COMPLETED
// and CANCELLED are absorbing.
var orderNext = map[string]map[string]bool{
	OrderPending:    {OrderProcessing: true, OrderCancelled: true},
	OrderProcessing: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:    {OrderDelivered: true},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

var bookingNext = map[string]map[string]bool{
	BookingPending:    {BookingConfirmed: true, BookingCancelled: true},
	BookingConfirmed:  {BookingInProgress: true, BookingCancelled: true},
	BookingInProgress: {BookingCompleted: true},
	BookingCompleted:  {},
	BookingCancelled:  {},
}

func CanTransitionOrder(from, to string) bool {
	return orderNext[from][to]
}

func CanTransitionBooking(from, to string) bool {
	return bookingNext[from][to]
}

// ValidOrderStatus reports whether s is a known order status label.
func ValidOrderStatus(s string) bool {
	_, ok := orderNext[s]
	return ok
}

// ValidBookingStatus reports whether s is a known booking status label.
func ValidBookingStatus(s string) bool {
	_, ok := bookingNext[s]
	return ok
}
