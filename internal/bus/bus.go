package bus

import (
	"context"
	"sync"
)

// MessageBus decouples channels from the turn loop: channels push inbound
// activities, the gateway consumes them one at a time, and replies fan back
// out to per-channel subscribers.
type MessageBus struct {
	Inbound  chan InboundActivity
	Outbound chan OutboundActivity

	mu          sync.RWMutex
	subscribers map[string]func(OutboundActivity)
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		Inbound:     make(chan InboundActivity, bufSize),
		Outbound:    make(chan OutboundActivity, bufSize),
		subscribers: make(map[string]func(OutboundActivity)),
	}
}

// SubscribeOutbound registers the delivery callback for one channel,
// replacing any previous subscription under that name.
func (b *MessageBus) SubscribeOutbound(channel string, fn func(OutboundActivity)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[channel] = fn
}

// DispatchOutbound delivers outbound activities to their channel's
// subscriber until the context ends. Activities for unknown channels are
// dropped.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg := <-b.Outbound:
			b.mu.RLock()
			fn := b.subscribers[msg.Channel]
			b.mu.RUnlock()
			if fn != nil {
				fn(msg)
			}
		case <-ctx.Done():
			return
		}
	}
}
