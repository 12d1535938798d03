package channel

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stratushq/stratus/internal/bus"
)

// Channel is a chat surface the gateway receives activities from and sends
// replies to.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(msg bus.OutboundActivity) error
}

// BaseChannel carries the pieces every channel shares: the bus, the sender
// allow-list, and a named logger.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom map[string]struct{}
	log       zerolog.Logger
}

func NewBaseChannel(name string, b *bus.MessageBus, allowFrom []string, logger zerolog.Logger) BaseChannel {
	allowed := make(map[string]struct{}, len(allowFrom))
	for _, id := range allowFrom {
		allowed[id] = struct{}{}
	}
	return BaseChannel{
		name:      name,
		bus:       b,
		allowFrom: allowed,
		log:       logger.With().Str("channel", name).Logger(),
	}
}

func (c *BaseChannel) Name() string {
	return c.name
}

// IsAllowed reports whether a sender passes the allow-list. An empty list
// allows everyone.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowFrom) == 0 {
		return true
	}
	_, ok := c.allowFrom[senderID]
	return ok
}
