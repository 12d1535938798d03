package dialog

import (
	"context"
	"testing"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/profile"
	"github.com/stratushq/stratus/internal/state"
)

type scriptedDialog struct {
	id             string
	beginStatus    Status
	continueStatus Status
	begun          int
	continued      int
	reprompted     int
}

func (d *scriptedDialog) ID() string { return d.id }

func (d *scriptedDialog) Begin(ctx context.Context, dc *Context) (Status, error) {
	d.begun++
	return d.beginStatus, nil
}

func (d *scriptedDialog) Continue(ctx context.Context, dc *Context) (Status, error) {
	d.continued++
	return d.continueStatus, nil
}

func (d *scriptedDialog) Reprompt(ctx context.Context, dc *Context) error {
	d.reprompted++
	return nil
}

func messageActivity(text string) *activity.Activity {
	return &activity.Activity{
		Type:         activity.TypeMessage,
		ID:           "msg-1",
		ChannelID:    "test",
		Conversation: activity.Account{ID: "conv-1"},
		From:         activity.Account{ID: "user-1"},
		Recipient:    activity.Account{ID: "bot-1"},
		Text:         text,
	}
}

func testContext(set *Set, ds *State, text string) *Context {
	mgr := state.NewManager(state.NewMemoryStore())
	turn := activity.NewTurnContext(messageActivity(text))
	prof := profile.NewAccessor(mgr, state.UserKey("test", "user-1"))
	return NewContext(set, ds, turn, prof)
}

func TestContinueOnEmptyStack(t *testing.T) {
	dc := testContext(NewSet(), &State{}, "anything")

	status, err := dc.Continue(context.Background())
	if err != nil {
		t.Fatalf("Continue() error: %v", err)
	}
	if status != StatusEmpty {
		t.Errorf("status = %q, want empty", status)
	}
	if dc.Turn.Responded() {
		t.Error("Continue() on empty stack queued a reply")
	}
}

func TestBeginUnknownDialog(t *testing.T) {
	dc := testContext(NewSet(), &State{}, "hi")
	if _, err := dc.Begin(context.Background(), "nope"); err == nil {
		t.Error("Begin() with unknown id should fail")
	}
}

func TestBeginWaitingKeepsFrame(t *testing.T) {
	d := &scriptedDialog{id: "quiz", beginStatus: StatusWaiting}
	ds := &State{}
	dc := testContext(NewSet(d), ds, "hi")

	status, err := dc.Begin(context.Background(), "quiz")
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if status != StatusWaiting {
		t.Errorf("status = %q, want waiting", status)
	}
	if len(ds.Stack) != 1 || ds.Stack[0].Dialog != "quiz" {
		t.Errorf("stack = %+v, want one quiz frame", ds.Stack)
	}
	if d.begun != 1 {
		t.Errorf("begun = %d, want 1", d.begun)
	}
}

func TestBeginCompletePopsFrame(t *testing.T) {
	d := &scriptedDialog{id: "quiz", beginStatus: StatusComplete}
	ds := &State{}
	dc := testContext(NewSet(d), ds, "hi")

	status, err := dc.Begin(context.Background(), "quiz")
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if status != StatusComplete {
		t.Errorf("status = %q, want complete", status)
	}
	if len(ds.Stack) != 0 {
		t.Errorf("stack not popped after completion: %+v", ds.Stack)
	}
}

func TestContinueCompletePopsFrame(t *testing.T) {
	d := &scriptedDialog{id: "quiz", beginStatus: StatusWaiting, continueStatus: StatusComplete}
	ds := &State{}
	set := NewSet(d)

	dc := testContext(set, ds, "hi")
	if _, err := dc.Begin(context.Background(), "quiz"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}

	dc2 := testContext(set, ds, "answer")
	status, err := dc2.Continue(context.Background())
	if err != nil {
		t.Fatalf("Continue() error: %v", err)
	}
	if status != StatusComplete {
		t.Errorf("status = %q, want complete", status)
	}
	if len(ds.Stack) != 0 {
		t.Errorf("stack not popped: %+v", ds.Stack)
	}
	if d.continued != 1 {
		t.Errorf("continued = %d, want 1", d.continued)
	}
}

func TestCancelAll(t *testing.T) {
	d := &scriptedDialog{id: "quiz", beginStatus: StatusWaiting}
	ds := &State{}
	dc := testContext(NewSet(d), ds, "hi")

	if got := dc.CancelAll(); got != StatusEmpty {
		t.Errorf("CancelAll() on empty stack = %q, want empty", got)
	}

	if _, err := dc.Begin(context.Background(), "quiz"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if got := dc.CancelAll(); got != StatusCancelled {
		t.Errorf("CancelAll() with active dialog = %q, want cancelled", got)
	}
	if len(ds.Stack) != 0 {
		t.Errorf("stack not cleared: %+v", ds.Stack)
	}
}

func TestRepromptDelegatesToActiveDialog(t *testing.T) {
	d := &scriptedDialog{id: "quiz", beginStatus: StatusWaiting}
	ds := &State{}
	set := NewSet(d)

	dc := testContext(set, ds, "hi")
	if err := dc.Reprompt(context.Background()); err != nil {
		t.Fatalf("Reprompt() on empty stack error: %v", err)
	}
	if d.reprompted != 0 {
		t.Error("Reprompt() reached a dialog with an empty stack")
	}

	if _, err := dc.Begin(context.Background(), "quiz"); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := dc.Reprompt(context.Background()); err != nil {
		t.Fatalf("Reprompt() error: %v", err)
	}
	if d.reprompted != 1 {
		t.Errorf("reprompted = %d, want 1", d.reprompted)
	}
}
