package notifications

import (
	"context"
	"time"
)

type ContactReceivedInput struct {
	IP         string
	ReceivedAt time.Time
	// Fields is a flat preview of the submitted body, not the full payload.
	Fields map[string]string
}

type Notifier interface {
	ContactReceived(ctx context.Context, input ContactReceivedInput) error
}
