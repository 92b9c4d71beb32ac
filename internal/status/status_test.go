package status

import "testing"

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderShipped, OrderDelivered, true},
		// The old web app let any of these through; they must fail now.
		{OrderPending, OrderDelivered, false},
		{OrderPending, OrderShipped, false},
		{OrderShipped, OrderCancelled, false},
		{OrderCancelled, OrderProcessing, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderDelivered, false},
	}
	for _, tt := range cases {
		if got := CanTransitionOrder(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionOrder(%s, %s) = %v; want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBookingTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingConfirmed, BookingInProgress, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingInProgress, BookingCompleted, true},
		{BookingPending, BookingCompleted, false},
		{BookingPending, BookingInProgress, false},
		{BookingInProgress, BookingCancelled, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingConfirmed, false},
	}
	for _, tt := range cases {
		if got := CanTransitionBooking(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionBooking(%s, %s) = %v; want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalStatesAbsorbing(t *testing.T) {
	all := []string{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}
	for _, to := range all {
		if CanTransitionOrder(OrderDelivered, to) || CanTransitionOrder(OrderCancelled, to) {
			t.Errorf("terminal order state allows transition to %s", to)
		}
	}
	allB := []string{BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled}
	for _, to := range allB {
		if CanTransitionBooking(BookingCompleted, to) || CanTransitionBooking(BookingCancelled, to) {
			t.Errorf("terminal booking state allows transition to %s", to)
		}
	}
}

func TestValidStatusLabels(t *testing.T) {
	if !ValidOrderStatus(OrderShipped) || ValidOrderStatus("IN_PROGRESS") {
		t.Error("order status label set is wrong")
	}
	if !ValidBookingStatus(BookingInProgress) || ValidBookingStatus("SHIPPED") {
		t.Error("booking status label set is wrong")
	}
}
