package state

import (
	"context"
	"encoding/json"
	"fmt"
)

// ConversationKey scopes state to one conversation on one channel.
func ConversationKey(channelID, conversationID string) string {
	return "conversation/" + channelID + "/" + conversationID
}

// UserKey scopes state to one user on one channel.
func UserKey(channelID, userID string) string {
	return "user/" + channelID + "/" + userID
}

// Manager caches reads and buffers writes for a single turn. Nothing reaches
// the store until SaveChanges, so a failed turn leaves persisted state
// untouched.
type Manager struct {
	store   Store
	cached  map[string]json.RawMessage
	dirty   map[string]json.RawMessage
	removed map[string]struct{}
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:   store,
		cached:  make(map[string]json.RawMessage),
		dirty:   make(map[string]json.RawMessage),
		removed: make(map[string]struct{}),
	}
}

// Get loads the value under key into v. It returns false when no value
// exists yet, leaving v untouched.
func (m *Manager) Get(ctx context.Context, key string, v any) (bool, error) {
	if _, gone := m.removed[key]; gone {
		return false, nil
	}

	raw, ok := m.cached[key]
	if !ok {
		found, err := m.store.Read(ctx, []string{key})
		if err != nil {
			return false, fmt.Errorf("read state %s: %w", key, err)
		}
		raw, ok = found[key]
		if !ok {
			return false, nil
		}
		m.cached[key] = raw
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode state %s: %w", key, err)
	}
	return true, nil
}

// Set buffers v as the new value under key until SaveChanges.
func (m *Manager) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", key, err)
	}
	delete(m.removed, key)
	m.cached[key] = raw
	m.dirty[key] = raw
	return nil
}

// Remove marks key for deletion at SaveChanges.
func (m *Manager) Remove(key string) {
	delete(m.cached, key)
	delete(m.dirty, key)
	m.removed[key] = struct{}{}
}

// SaveChanges flushes buffered writes and removals to the store.
func (m *Manager) SaveChanges(ctx context.Context) error {
	if len(m.dirty) > 0 {
		if err := m.store.Write(ctx, m.dirty); err != nil {
			return fmt.Errorf("write state: %w", err)
		}
		m.dirty = make(map[string]json.RawMessage)
	}

	if len(m.removed) > 0 {
		keys := make([]string, 0, len(m.removed))
		for key := range m.removed {
			keys = append(keys, key)
		}
		if err := m.store.Delete(ctx, keys); err != nil {
			return fmt.Errorf("delete state: %w", err)
		}
		m.removed = make(map[string]struct{})
	}
	return nil
}
