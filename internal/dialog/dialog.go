package dialog

import "context"

// Status describes where the dialog stack stands after a turn.
type Status string

const (
	// StatusEmpty means no dialog is active.
	StatusEmpty Status = "empty"
	// StatusWaiting means the active dialog expects the next user message.
	StatusWaiting Status = "waiting"
	// StatusComplete means the active dialog just finished.
	StatusComplete Status = "complete"
	// StatusCancelled means the stack was cleared mid-flow.
	StatusCancelled Status = "cancelled"
)

// Frame is one persisted level of the dialog stack.
type Frame struct {
	Dialog string            `json:"dialog"`
	Step   int               `json:"step"`
	Values map[string]string `json:"values,omitempty"`
}

// State is a conversation's persisted dialog stack. It round-trips through
// the state store between turns.
type State struct {
	Stack []Frame `json:"stack,omitempty"`
}

// Dialog is a multi-turn conversation flow.
type Dialog interface {
	ID() string
	// Begin starts the flow on a freshly pushed frame.
	Begin(ctx context.Context, dc *Context) (Status, error)
	// Continue feeds the current user message into the flow.
	Continue(ctx context.Context, dc *Context) (Status, error)
	// Reprompt re-asks the pending question after an interruption.
	Reprompt(ctx context.Context, dc *Context) error
}

// Set registers the dialogs a bot can run.
type Set struct {
	dialogs map[string]Dialog
}

func NewSet(dialogs ...Dialog) *Set {
	s := &Set{dialogs: make(map[string]Dialog, len(dialogs))}
	for _, d := range dialogs {
		s.dialogs[d.ID()] = d
	}
	return s
}

func (s *Set) Find(id string) (Dialog, bool) {
	d, ok := s.dialogs[id]
	return d, ok
}
