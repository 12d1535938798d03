package dialog

import (
	"context"
	"fmt"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/profile"
)

// Context drives one conversation's dialog stack for one turn.
type Context struct {
	set   *Set
	state *State

	// Turn is the current turn's activity and reply collector.
	Turn *activity.TurnContext
	// Profile is the user profile accessor dialogs share.
	Profile *profile.Accessor
}

func NewContext(set *Set, state *State, turn *activity.TurnContext, prof *profile.Accessor) *Context {
	return &Context{set: set, state: state, Turn: turn, Profile: prof}
}

// Active returns the top stack frame, or nil when no dialog is running.
func (dc *Context) Active() *Frame {
	if len(dc.state.Stack) == 0 {
		return nil
	}
	return &dc.state.Stack[len(dc.state.Stack)-1]
}

// Begin pushes the named dialog onto the stack and starts it. Dialogs that
// finish in one turn are popped before returning.
func (dc *Context) Begin(ctx context.Context, id string) (Status, error) {
	d, ok := dc.set.Find(id)
	if !ok {
		return StatusEmpty, fmt.Errorf("dialog %q not registered", id)
	}

	dc.state.Stack = append(dc.state.Stack, Frame{Dialog: id, Values: make(map[string]string)})
	status, err := d.Begin(ctx, dc)
	if err != nil {
		return status, err
	}
	if status == StatusComplete || status == StatusCancelled {
		dc.pop()
	}
	return status, nil
}

// Continue advances the active dialog with the current turn's input. With an
// empty stack it reports StatusEmpty without side effects.
func (dc *Context) Continue(ctx context.Context) (Status, error) {
	frame := dc.Active()
	if frame == nil {
		return StatusEmpty, nil
	}

	d, ok := dc.set.Find(frame.Dialog)
	if !ok {
		// A dialog persisted under an id this build no longer knows.
		dc.pop()
		return StatusEmpty, fmt.Errorf("dialog %q not registered", frame.Dialog)
	}

	status, err := d.Continue(ctx, dc)
	if err != nil {
		return status, err
	}
	if status == StatusComplete || status == StatusCancelled {
		dc.pop()
	}
	return status, nil
}

// Reprompt re-asks the active dialog's pending question. It is a no-op when
// nothing is active.
func (dc *Context) Reprompt(ctx context.Context) error {
	frame := dc.Active()
	if frame == nil {
		return nil
	}
	d, ok := dc.set.Find(frame.Dialog)
	if !ok {
		return fmt.Errorf("dialog %q not registered", frame.Dialog)
	}
	return d.Reprompt(ctx, dc)
}

// CancelAll clears the stack. It reports StatusCancelled when a dialog was
// active and StatusEmpty otherwise, so callers can word their reply.
func (dc *Context) CancelAll() Status {
	if len(dc.state.Stack) == 0 {
		return StatusEmpty
	}
	dc.state.Stack = nil
	return StatusCancelled
}

func (dc *Context) pop() {
	if len(dc.state.Stack) > 0 {
		dc.state.Stack = dc.state.Stack[:len(dc.state.Stack)-1]
	}
}
