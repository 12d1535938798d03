package profile

import (
	"context"
	"unicode"

	"github.com/stratushq/stratus/internal/state"
)

// Profile holds what the bot knows about one user across conversations.
type Profile struct {
	Name string `json:"name,omitempty"`
	City string `json:"city,omitempty"`
}

// Accessor reads and writes one user's profile through a turn's state
// manager, so profile changes ride the same save as the rest of the turn.
type Accessor struct {
	mgr *state.Manager
	key string
}

func NewAccessor(mgr *state.Manager, key string) *Accessor {
	return &Accessor{mgr: mgr, key: key}
}

// Get returns the stored profile, or a zero profile when none exists yet.
func (a *Accessor) Get(ctx context.Context) (Profile, error) {
	var p Profile
	if _, err := a.mgr.Get(ctx, a.key, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Set buffers the profile for the turn-end state save.
func (a *Accessor) Set(p Profile) error {
	return a.mgr.Set(a.key, p)
}

// Capitalize upper-cases the first letter and leaves the rest unchanged, so
// the recognizer's lower-cased "maria" is stored as "Maria".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
