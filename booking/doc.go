// Package booking provides a reference BookingInitiator that turns an
// accepted negotiation into a booking record and renders a rate
// confirmation document through a pluggable hook.
package booking
