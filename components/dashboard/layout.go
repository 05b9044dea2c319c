package dashboard

func applyOrderOverride(widgets []Widget, order []string) []Widget {
	if len(order) == 0 {
		return widgets
	}
	index := make(map[string]Widget, len(widgets))
	for _, w := range widgets {
		index[w.ID] = w
	}
	result := make([]Widget, 0, len(widgets))
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if w, ok := index[id]; ok {
			if _, dup := seen[id]; dup {
				continue
			}
			result = append(result, w)
			seen[id] = struct{}{}
		}
	}
	for _, w := range widgets {
		if _, ok := seen[w.ID]; !ok {
			result = append(result, w)
		}
	}
	return result
}

func applyHiddenFilter(widgets []Widget, hidden map[string]bool) []Widget {
	if len(hidden) == 0 {
		return widgets
	}
	out := make([]Widget, 0, len(widgets))
	for _, w := range widgets {
		if !hidden[w.ID] {
			out = append(out, w)
		}
	}
	return out
}

// ArrayMove returns a copy of ids with the element at from moved to index to.
// Out of range indexes return an unchanged copy.
func ArrayMove(ids []string, from, to int) []string {
	out := append([]string(nil), ids...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]string{item}, out[to:]...)...)
	return out
}

func widgetIDs(widgets []Widget) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.ID
	}
	return ids
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}
