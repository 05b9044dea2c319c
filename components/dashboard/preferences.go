package dashboard

import (
	"context"
	"maps"
	"sync"
)

// InMemoryPreferenceStore keeps layout overrides per viewer in memory.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]LayoutOverrides
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]LayoutOverrides),
	}
}

// LayoutOverrides returns stored overrides or empty defaults.
func (s *InMemoryPreferenceStore) LayoutOverrides(_ context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	if viewer.UserID == "" {
		return emptyOverrides(), nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	overrides, ok := s.data[viewer.UserID]
	if !ok {
		return emptyOverrides(), nil
	}
	return cloneOverrides(overrides), nil
}

// SaveLayoutOverrides replaces the overrides of a viewer.
func (s *InMemoryPreferenceStore) SaveLayoutOverrides(_ context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return ErrViewerRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = cloneOverrides(overrides)
	return nil
}

func emptyOverrides() LayoutOverrides {
	return LayoutOverrides{
		AreaOrder:     map[string][]string{},
		HiddenWidgets: map[string]bool{},
	}
}

func cloneOverrides(in LayoutOverrides) LayoutOverrides {
	out := emptyOverrides()
	for area, order := range in.AreaOrder {
		out.AreaOrder[area] = append([]string(nil), order...)
	}
	maps.Copy(out.HiddenWidgets, in.HiddenWidgets)
	return out
}
