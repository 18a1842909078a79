package notifications

import (
	"context"
	"log/slog"
	"sort"
)

// LogNotifier reports new contact messages to the server log. It is the
// default notifier when no outbound channel is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) ContactReceived(ctx context.Context, in ContactReceivedInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	keys := make([]string, 0, len(in.Fields))
	for k := range in.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	n.log.InfoContext(ctx, "notification.contact_received",
		"ip", in.IP,
		"received_at", in.ReceivedAt,
		"fields", keys,
	)
	return nil
}
