package profiles

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/playmatatu/aimguide/internal/models"
	"github.com/playmatatu/aimguide/internal/overlay"
)

// MemoryStore keeps profiles in process memory. It backs single-instance
// deployments without PostgreSQL and the handler tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]memoryProfile
}

type memoryProfile struct {
	settings  overlay.Settings
	updatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]memoryProfile)}
}

func (m *MemoryStore) List(ctx context.Context) ([]models.ProfileSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ProfileSummary, 0, len(m.profiles))
	for name, p := range m.profiles {
		out = append(out, models.ProfileSummary{Name: name, UpdatedAt: p.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, name string) (overlay.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[name]
	if !ok {
		return overlay.DefaultSettings(), ErrNotFound
	}
	return p.settings, nil
}

func (m *MemoryStore) Save(ctx context.Context, name string, s overlay.Settings) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[name] = memoryProfile{settings: s.Validate(), updatedAt: time.Now()}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[name]; !ok {
		return ErrNotFound
	}
	delete(m.profiles, name)
	return nil
}
