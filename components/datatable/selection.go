package datatable

import "sort"

// Selection tracks selected row ids. It is independent of filtering, sorting and paging.
// A Selection is not safe for concurrent use; Table serializes access to its own.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns a selection holding ids.
func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle flips id and returns its new state.
func (s *Selection) Toggle(id string) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// ToggleAll selects or deselects exactly ids, leaving every other id untouched.
func (s *Selection) ToggleAll(selected bool, ids []string) {
	for _, id := range ids {
		if selected {
			s.ids[id] = struct{}{}
		} else {
			delete(s.ids, id)
		}
	}
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of selected ids.
func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs returns the selected ids sorted.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clear deselects everything.
func (s *Selection) Clear() {
	clear(s.ids)
}

// Retain drops selected ids missing from present and returns how many were dropped.
func (s *Selection) Retain(present map[string]struct{}) int {
	dropped := 0
	for id := range s.ids {
		if _, ok := present[id]; !ok {
			delete(s.ids, id)
			dropped++
		}
	}
	return dropped
}

// Coverage reports whether none, some or all of ids are selected.
func (s *Selection) Coverage(ids []string) Coverage {
	if len(ids) == 0 {
		return CoverageNone
	}
	hits := 0
	for _, id := range ids {
		if s.IsSelected(id) {
			hits++
		}
	}
	switch hits {
	case 0:
		return CoverageNone
	case len(ids):
		return CoverageAll
	default:
		return CoverageSome
	}
}

// SelectedRows resolves the selection against rows, keeping row order.
func SelectedRows[R any](s *Selection, rows []R, rowID func(R) string) []R {
	out := make([]R, 0, s.Count())
	for _, row := range rows {
		if s.IsSelected(rowID(row)) {
			out = append(out, row)
		}
	}
	return out
}
