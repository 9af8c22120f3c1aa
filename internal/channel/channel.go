// Package channel delivers outbound messages to contacts over the
// conversational messaging channel.
package channel

import "context"

// Sender performs best-effort delivery of one message to one recipient.
// Delivery is accept/reject at the transport level only; there is no
// synchronous read confirmation.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}
