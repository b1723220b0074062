package core

import "context"

// BookingRequest carries the accepted negotiation's outcome into booking.
type BookingRequest struct {
	NegotiationID string
	LoadID        string
	DriverID      string
	FinalRate     float64
}

// BookingInitiator turns an accepted negotiation into a booking record and
// triggers document generation. The engine invokes it at most once per
// negotiation; failures wrap ErrBookingFailed.
type BookingInitiator interface {
	CreateBooking(ctx context.Context, req BookingRequest) (bookingID string, err error)
}
