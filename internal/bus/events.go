package bus

import (
	"github.com/stratushq/stratus/internal/activity"
)

// InboundActivity is an activity received by a channel, tagged with the
// channel that produced it so replies can find their way back.
type InboundActivity struct {
	Channel  string
	Activity *activity.Activity
}

// SessionKey identifies the conversation an activity belongs to.
func (m *InboundActivity) SessionKey() string {
	return m.Channel + ":" + m.Activity.Conversation.ID
}

// OutboundActivity is a reply routed back to the channel it came from.
type OutboundActivity struct {
	Channel  string
	Activity *activity.Activity
}
