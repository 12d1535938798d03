package dialog

import (
	"context"
	"strings"
	"testing"

	"github.com/stratushq/stratus/internal/activity"
	"github.com/stratushq/stratus/internal/profile"
	"github.com/stratushq/stratus/internal/state"
)

// greetingHarness runs greeting turns against one store, like consecutive
// turns in one conversation.
type greetingHarness struct {
	set   *Set
	store *state.MemoryStore
	state *State
}

func newGreetingHarness() *greetingHarness {
	return &greetingHarness{
		set:   NewSet(NewGreeting()),
		store: state.NewMemoryStore(),
		state: &State{},
	}
}

func (h *greetingHarness) turn(t *testing.T, text string, begin bool) []string {
	t.Helper()

	mgr := state.NewManager(h.store)
	turn := activity.NewTurnContext(messageActivity(text))
	prof := profile.NewAccessor(mgr, state.UserKey("test", "user-1"))
	dc := NewContext(h.set, h.state, turn, prof)

	var err error
	if begin {
		_, err = dc.Begin(context.Background(), GreetingID)
	} else {
		_, err = dc.Continue(context.Background())
	}
	if err != nil {
		t.Fatalf("turn(%q) error: %v", text, err)
	}
	if err := mgr.SaveChanges(context.Background()); err != nil {
		t.Fatalf("SaveChanges() error: %v", err)
	}

	texts := make([]string, 0, len(turn.Responses()))
	for _, reply := range turn.Responses() {
		texts = append(texts, reply.Text)
	}
	return texts
}

func (h *greetingHarness) profile(t *testing.T) profile.Profile {
	t.Helper()
	acc := profile.NewAccessor(state.NewManager(h.store), state.UserKey("test", "user-1"))
	p, err := acc.Get(context.Background())
	if err != nil {
		t.Fatalf("profile Get() error: %v", err)
	}
	return p
}

func TestGreetingCollectsNameAndCity(t *testing.T) {
	h := newGreetingHarness()

	got := h.turn(t, "hello", true)
	if len(got) != 1 || got[0] != "Hello! What's your name?" {
		t.Fatalf("begin replies = %v", got)
	}

	got = h.turn(t, "sofia", false)
	if len(got) != 1 || !strings.Contains(got[0], "Nice to meet you, Sofia!") {
		t.Fatalf("name turn replies = %v", got)
	}
	if !strings.Contains(got[0], "What city do you live in?") {
		t.Errorf("name turn should ask for the city: %v", got)
	}

	got = h.turn(t, "seattle", false)
	if len(got) != 1 || got[0] != "Thanks Sofia, I'll remember you live in Seattle." {
		t.Fatalf("city turn replies = %v", got)
	}

	if len(h.state.Stack) != 0 {
		t.Errorf("stack not empty after completion: %+v", h.state.Stack)
	}

	p := h.profile(t)
	if p.Name != "Sofia" || p.City != "Seattle" {
		t.Errorf("profile = %+v, want Sofia/Seattle", p)
	}
}

func TestGreetingSkipsKnownName(t *testing.T) {
	h := newGreetingHarness()

	// Seed a profile that already has a name.
	mgr := state.NewManager(h.store)
	acc := profile.NewAccessor(mgr, state.UserKey("test", "user-1"))
	if err := acc.Set(profile.Profile{Name: "Sofia"}); err != nil {
		t.Fatal(err)
	}
	if err := mgr.SaveChanges(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := h.turn(t, "hello", true)
	if len(got) != 1 || got[0] != "Hi Sofia! What city do you live in?" {
		t.Fatalf("begin replies = %v", got)
	}

	got = h.turn(t, "seattle", false)
	if len(got) != 1 || got[0] != "Thanks Sofia, I'll remember you live in Seattle." {
		t.Fatalf("city turn replies = %v", got)
	}
}

func TestGreetingRecognizesReturningUser(t *testing.T) {
	h := newGreetingHarness()

	mgr := state.NewManager(h.store)
	acc := profile.NewAccessor(mgr, state.UserKey("test", "user-1"))
	if err := acc.Set(profile.Profile{Name: "Sofia", City: "Seattle"}); err != nil {
		t.Fatal(err)
	}
	if err := mgr.SaveChanges(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := h.turn(t, "hello", true)
	if len(got) != 1 || got[0] != "Hello Sofia, nice to see you again!" {
		t.Fatalf("begin replies = %v", got)
	}
	if len(h.state.Stack) != 0 {
		t.Errorf("returning-user greeting left a frame: %+v", h.state.Stack)
	}
}

func TestGreetingRepromptsOnBlankInput(t *testing.T) {
	h := newGreetingHarness()

	h.turn(t, "hello", true)
	got := h.turn(t, "   ", false)
	if len(got) != 1 || got[0] != "Hello! What's your name?" {
		t.Fatalf("blank input replies = %v, want the name prompt again", got)
	}
	if len(h.state.Stack) != 1 {
		t.Errorf("stack = %+v, want the dialog still waiting", h.state.Stack)
	}
}
