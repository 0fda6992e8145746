package service

import (
	"context"

	"github.com/Skotchmaster/library/internal/events"
	"github.com/Skotchmaster/library/internal/logging"
)

// publish hands ev to p and only logs failures; callers have already
// committed their change.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			"topic", topic,
			"type", ev.Type,
			"error", err,
		)
	}
}
