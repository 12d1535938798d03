package activity

// TurnContext carries one inbound activity through the bot and collects the
// replies queued while handling it. Replies are flushed by the caller after
// the turn completes.
type TurnContext struct {
	Activity *Activity

	responses []*Activity
}

func NewTurnContext(a *Activity) *TurnContext {
	return &TurnContext{Activity: a}
}

// SendText queues a plain text reply to the inbound activity.
func (tc *TurnContext) SendText(text string) *Activity {
	reply := tc.Activity.Reply(text)
	tc.responses = append(tc.responses, reply)
	return reply
}

// SendActivity queues a prepared reply activity.
func (tc *TurnContext) SendActivity(a *Activity) {
	tc.responses = append(tc.responses, a)
}

// Responded reports whether any reply has been queued this turn.
func (tc *TurnContext) Responded() bool {
	return len(tc.responses) > 0
}

// Responses returns the queued replies in send order.
func (tc *TurnContext) Responses() []*Activity {
	return tc.responses
}
