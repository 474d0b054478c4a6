package preference

import (
	"context"
	"sync"

	"github.com/storeradar/radar-service/internal/recommend"
)

// Store persists selections, counters and learned weights.
type Store interface {
	// Preference returns the user's weights and false when none are stored.
	Preference(ctx context.Context, userID string) (recommend.Preference, bool, error)
	SavePreference(ctx context.Context, userID string, pref recommend.Preference) error
	// LogSelection stores a selection and returns the user's new selection count.
	LogSelection(ctx context.Context, sel Selection) (int, error)
	// RecentTypes returns the types of the n most recent selections, newest first.
	RecentTypes(ctx context.Context, userID string, n int) ([]Type, error)
	// Selections returns the user's selection history, newest first.
	Selections(ctx context.Context, userID string) ([]Selection, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu          sync.RWMutex
	preferences map[string]recommend.Preference
	logs        map[string][]Selection
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		preferences: make(map[string]recommend.Preference),
		logs:        make(map[string][]Selection),
	}
}

func (m *MemoryStore) Preference(_ context.Context, userID string) (recommend.Preference, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.preferences[userID]
	return p, ok, nil
}

func (m *MemoryStore) SavePreference(_ context.Context, userID string, pref recommend.Preference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferences[userID] = pref
	return nil
}

func (m *MemoryStore) LogSelection(_ context.Context, sel Selection) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[sel.UserID] = append(m.logs[sel.UserID], sel)
	return len(m.logs[sel.UserID]), nil
}

func (m *MemoryStore) RecentTypes(_ context.Context, userID string, n int) ([]Type, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := m.logs[userID]
	out := make([]Type, 0, n)
	for i := len(logs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, logs[i].Type)
	}
	return out, nil
}

func (m *MemoryStore) Selections(_ context.Context, userID string) ([]Selection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Selection, len(m.logs[userID]))
	copy(out, m.logs[userID])
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
