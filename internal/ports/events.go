package ports

import (
	"context"

	"jacks/internal/app"
)

// EventPublisher mirrors table events to an external bus.
type EventPublisher interface {
	Publish(ctx context.Context, channelID string, ev app.Event) error
}
