package datatable

import (
	"fmt"
	"slices"
	"strings"
)

// View is the derived, render-ready projection of a row set.
type View[R any] struct {
	VisibleRows        []R
	TotalFilteredCount int
	SourceCount        int
	Page               Pagination
	PageCount          int
	Filter             string
	Sort               SortSpec
	Columns            []Column[R]
}

// From is the 1-based position of the first visible row, or 0 when nothing matched.
func (v View[R]) From() int {
	if v.TotalFilteredCount == 0 {
		return 0
	}
	return v.Page.PageIndex*v.Page.PageSize + 1
}

// To is the 1-based position of the last visible row.
func (v View[R]) To() int {
	if v.TotalFilteredCount == 0 {
		return 0
	}
	return v.From() + len(v.VisibleRows) - 1
}

// CanPrevious reports whether an earlier page exists.
func (v View[R]) CanPrevious() bool {
	return v.Page.PageIndex > 0
}

// CanNext reports whether a later page exists.
func (v View[R]) CanNext() bool {
	return v.Page.PageIndex+1 < v.PageCount
}

// Caption renders the footer summary of the current window.
func (v View[R]) Caption() string {
	return fmt.Sprintf("Showing %d to %d of %d results", v.From(), v.To(), v.TotalFilteredCount)
}

// DeriveView filters, sorts, then paginates rows. It never mutates rows.
func DeriveView[R any](rows []R, schema *Schema[R], state ViewState) View[R] {
	filtered := FilterRows(rows, schema, state.Filter, state.Hidden)
	sorted := SortRows(filtered, schema, state.Sort)
	page := ClampPage(state.Page, len(sorted))

	start := page.PageIndex * page.PageSize
	end := min(start+page.PageSize, len(sorted))
	visible := make([]R, 0, end-start)
	visible = append(visible, sorted[start:end]...)

	sortSpec := state.Sort
	if !sortSpec.Active() {
		sortSpec = SortSpec{}
	}
	return View[R]{
		VisibleRows:        visible,
		TotalFilteredCount: len(sorted),
		SourceCount:        len(rows),
		Page:               page,
		PageCount:          pageCount(len(sorted), page.PageSize),
		Filter:             state.Filter,
		Sort:               sortSpec,
		Columns:            schema.VisibleColumns(state.Hidden),
	}
}

// FilterRows keeps rows where any visible, filterable data column contains filter,
// case-insensitively. An empty filter keeps every row.
func FilterRows[R any](rows []R, schema *Schema[R], filter string, hidden map[string]bool) []R {
	if filter == "" {
		return slices.Clone(rows)
	}
	needle := strings.ToLower(filter)
	columns := schema.filterColumns(hidden)
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col.Render(row)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

type sortEntry[R any] struct {
	row R
	key any
}

// SortRows stably orders rows by the sort column. Inactive or unsortable sorts keep input order.
func SortRows[R any](rows []R, schema *Schema[R], by SortSpec) []R {
	out := slices.Clone(rows)
	if !by.Active() {
		return out
	}
	col, ok := schema.Column(by.ColumnID)
	if !ok || !col.Sortable {
		return out
	}
	entries := make([]sortEntry[R], len(out))
	for i, row := range out {
		key, _ := col.Value(row)
		entries[i] = sortEntry[R]{row: row, key: key}
	}
	desc := by.Direction == SortDesc
	slices.SortStableFunc(entries, func(a, b sortEntry[R]) int {
		c := compareValues(a.key, b.key)
		if desc {
			return -c
		}
		return c
	})
	for i, entry := range entries {
		out[i] = entry.row
	}
	return out
}

// ClampPage normalizes the page size and bounds the index to the available pages.
func ClampPage(page Pagination, total int) Pagination {
	if !ValidPageSize(page.PageSize) {
		page.PageSize = DefaultPageSize
	}
	last := 0
	if total > 0 {
		last = (total - 1) / page.PageSize
	}
	page.PageIndex = max(0, min(page.PageIndex, last))
	return page
}

func pageCount(total, size int) int {
	if total == 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// NextSort advances the three-state sort cycle for columnID.
// The same column cycles asc, desc, none. A different column starts at asc.
func NextSort(current SortSpec, columnID string) SortSpec {
	if !current.Active() || current.ColumnID != columnID {
		return SortSpec{ColumnID: columnID, Direction: SortAsc}
	}
	if current.Direction == SortAsc {
		return SortSpec{ColumnID: columnID, Direction: SortDesc}
	}
	return SortSpec{}
}

// Aggregate groups the filtered rows by the rendered groupBy column and sums the numeric metric column.
// An empty metric only counts rows. Buckets keep first-seen order.
func Aggregate[R any](rows []R, schema *Schema[R], state ViewState, groupBy, metric string) ([]Bucket, error) {
	group, ok := schema.Column(groupBy)
	if !ok || group.Special() {
		return nil, columnError(groupBy, ErrUnknownColumn)
	}
	var measure Column[R]
	if metric != "" {
		measure, ok = schema.Column(metric)
		if !ok || measure.Special() {
			return nil, columnError(metric, ErrUnknownColumn)
		}
	}
	filtered := FilterRows(rows, schema, state.Filter, state.Hidden)
	index := map[string]int{}
	buckets := []Bucket{}
	for _, row := range filtered {
		label := group.Render(row)
		idx, seen := index[label]
		if !seen {
			idx = len(buckets)
			index[label] = idx
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[idx].Count++
		if metric == "" {
			continue
		}
		if value, ok := measure.Value(row); ok {
			if n, ok := numeric(value); ok {
				buckets[idx].Sum += n
			}
		}
	}
	return buckets, nil
}
