package notify

import "context"

// Notifier delivers a composed reminder message to the user.
// This decouples the reminder service from the delivery channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
