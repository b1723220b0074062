package core

import "context"

// Notifier delivers an outbound message (a drafted offer or a status
// update) to the broker's channel. Send returns a delivery identifier for
// the attempt; failures wrap ErrDeliveryFailed. The transport behind the
// contract (email, webhook, queue) is an implementation concern.
type Notifier interface {
	Send(ctx context.Context, negotiationID, message string, amount float64) (deliveryID string, err error)
}
