package datatable

import (
	"testing"
)

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection()
	if !sel.Toggle("a") {
		t.Fatalf("expected first toggle to select")
	}
	if sel.Toggle("a") {
		t.Fatalf("expected second toggle to deselect")
	}
	if sel.Count() != 0 {
		t.Fatalf("expected empty selection, got %d", sel.Count())
	}
}

func TestSelectionToggleAllAccumulatesAndIsIdempotent(t *testing.T) {
	sel := NewSelection("x")
	sel.ToggleAll(true, []string{"a", "b"})
	sel.ToggleAll(true, []string{"a", "b"})
	if got := sel.Count(); got != 3 {
		t.Fatalf("expected 3 selected after repeated select-all, got %d", got)
	}
	sel.ToggleAll(true, []string{"c"})
	if !sel.IsSelected("a") || !sel.IsSelected("c") || !sel.IsSelected("x") {
		t.Fatalf("expected ids to accumulate, got %v", sel.IDs())
	}
	sel.ToggleAll(false, []string{"a", "c"})
	if got := sel.IDs(); len(got) != 2 || got[0] != "b" || got[1] != "x" {
		t.Fatalf("expected deselect to touch only listed ids, got %v", got)
	}
}

func TestSelectionCoverage(t *testing.T) {
	sel := NewSelection("a")
	if got := sel.Coverage(nil); got != CoverageNone {
		t.Fatalf("expected none for empty set, got %s", got)
	}
	if got := sel.Coverage([]string{"a", "b"}); got != CoverageSome {
		t.Fatalf("expected some, got %s", got)
	}
	if got := sel.Coverage([]string{"a"}); got != CoverageAll {
		t.Fatalf("expected all, got %s", got)
	}
	if got := sel.Coverage([]string{"z"}); got != CoverageNone {
		t.Fatalf("expected none, got %s", got)
	}
}

func TestSelectionRetain(t *testing.T) {
	sel := NewSelection("a", "b", "c")
	dropped := sel.Retain(map[string]struct{}{"a": {}, "c": {}})
	if dropped != 1 {
		t.Fatalf("expected one dropped id, got %d", dropped)
	}
	if sel.IsSelected("b") {
		t.Fatalf("expected b to be released")
	}
}

func TestSelectedRowsResolvesAgainstFullRowSet(t *testing.T) {
	rows := generatedMembers(25)
	sel := NewSelection("user-25", "user-1", "missing")
	got := SelectedRows(sel, rows, func(m member) string { return m.ID })
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ID != "user-1" || got[1].ID != "user-25" {
		t.Fatalf("expected source order, got %v", ids(got))
	}
}
