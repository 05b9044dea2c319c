package datatable

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// TableOptions configures a mounted table.
type TableOptions struct {
	Name      string
	Title     string
	Session   string
	PageSize  int
	Sort      SortSpec
	Hidden    []string
	Telemetry Telemetry
	Refresh   RefreshHook
}

// Table holds the state of one mounted table and re-derives its view on every intent.
type Table[R any] struct {
	mu        sync.RWMutex
	name      string
	title     string
	session   string
	schema    *Schema[R]
	rows      []R
	ids       map[string]struct{}
	state     ViewState
	selection *Selection
	loading   bool
	loadErr   error
	telemetry Telemetry
	refresh   RefreshHook
}

// NewTable builds an empty table over schema.
func NewTable[R any](schema *Schema[R], opts TableOptions) (*Table[R], error) {
	if schema == nil {
		return nil, ErrSchemaRequired
	}
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if !ValidPageSize(pageSize) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	hidden := make(map[string]bool, len(opts.Hidden))
	for _, id := range opts.Hidden {
		col, ok := schema.Column(id)
		if !ok {
			return nil, columnError(id, ErrUnknownColumn)
		}
		if col.Special() {
			return nil, columnError(id, ErrColumnNotHideable)
		}
		hidden[id] = true
	}
	if opts.Sort.Active() {
		col, ok := schema.Column(opts.Sort.ColumnID)
		if !ok {
			return nil, columnError(opts.Sort.ColumnID, ErrUnknownColumn)
		}
		if !col.Sortable {
			return nil, columnError(opts.Sort.ColumnID, ErrColumnNotSortable)
		}
	}
	name := opts.Name
	if name == "" {
		name = "table"
	}
	title := opts.Title
	if title == "" {
		title = name + " export"
	}
	return &Table[R]{
		name:    name,
		title:   title,
		session: opts.Session,
		schema:  schema,
		ids:     map[string]struct{}{},
		state: ViewState{
			Sort:   opts.Sort,
			Page:   Pagination{PageSize: pageSize},
			Hidden: hidden,
		},
		selection: NewSelection(),
		telemetry: normalizeTelemetry(opts.Telemetry),
		refresh:   normalizeRefreshHook(opts.Refresh),
	}, nil
}

// Name returns the table name.
func (t *Table[R]) Name() string { return t.name }

// Schema returns the table schema.
func (t *Table[R]) Schema() *Schema[R] { return t.schema }

// ToggleSort advances the sort cycle for columnID and returns to the first page.
func (t *Table[R]) ToggleSort(ctx context.Context, columnID string) error {
	t.mu.Lock()
	col, ok := t.schema.Column(columnID)
	if !ok {
		t.mu.Unlock()
		return columnError(columnID, ErrUnknownColumn)
	}
	if !col.Sortable {
		t.mu.Unlock()
		return columnError(columnID, ErrColumnNotSortable)
	}
	t.state.Sort = NextSort(t.state.Sort, columnID)
	t.state.Page.PageIndex = 0
	next := t.state.Sort
	t.mu.Unlock()

	t.record(ctx, "datatable.sort.toggle", map[string]any{
		"column_id": columnID,
		"direction": string(next.Direction),
	})
	return nil
}

// SetFilter replaces the global filter text and returns to the first page.
func (t *Table[R]) SetFilter(ctx context.Context, text string) {
	t.mu.Lock()
	if t.state.Filter == text {
		t.mu.Unlock()
		return
	}
	t.state.Filter = text
	t.state.Page.PageIndex = 0
	t.mu.Unlock()

	t.record(ctx, "datatable.filter.change", map[string]any{"length": len(text)})
}

// SetPage moves to index, clamped to the available pages.
func (t *Table[R]) SetPage(ctx context.Context, index int) {
	t.mu.Lock()
	t.state.Page.PageIndex = index
	t.normalizeLocked()
	page := t.state.Page
	t.mu.Unlock()

	t.record(ctx, "datatable.page.change", map[string]any{"page_index": page.PageIndex})
}

// SetPageSize changes the page size keeping the first visible row on screen.
func (t *Table[R]) SetPageSize(ctx context.Context, size int) error {
	if !ValidPageSize(size) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	t.mu.Lock()
	t.normalizeLocked()
	first := t.state.Page.PageIndex * t.state.Page.PageSize
	t.state.Page = Pagination{PageIndex: first / size, PageSize: size}
	t.normalizeLocked()
	t.mu.Unlock()

	t.record(ctx, "datatable.page_size.change", map[string]any{"page_size": size})
	return nil
}

// ToggleRow flips the selection state of rowID.
func (t *Table[R]) ToggleRow(ctx context.Context, rowID string) error {
	t.mu.Lock()
	if _, ok := t.ids[rowID]; !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownRow, rowID)
	}
	selected := t.selection.Toggle(rowID)
	count := t.selection.Count()
	t.mu.Unlock()

	t.record(ctx, "datatable.row.toggle", map[string]any{
		"row_id":   rowID,
		"selected": selected,
		"count":    count,
	})
	return nil
}

// ToggleAll selects or deselects every row of the current filtered set.
func (t *Table[R]) ToggleAll(ctx context.Context, selected bool) {
	t.mu.Lock()
	filtered := FilterRows(t.rows, t.schema, t.state.Filter, t.state.Hidden)
	ids := make([]string, len(filtered))
	for i, row := range filtered {
		ids[i] = t.schema.RowID(row)
	}
	t.selection.ToggleAll(selected, ids)
	count := t.selection.Count()
	t.mu.Unlock()

	t.record(ctx, "datatable.rows.toggle_all", map[string]any{
		"selected": selected,
		"affected": len(ids),
		"count":    count,
	})
}

// ToggleColumn flips the visibility of a data column.
func (t *Table[R]) ToggleColumn(ctx context.Context, columnID string) error {
	t.mu.Lock()
	col, ok := t.schema.Column(columnID)
	if !ok {
		t.mu.Unlock()
		return columnError(columnID, ErrUnknownColumn)
	}
	if col.Special() {
		t.mu.Unlock()
		return columnError(columnID, ErrColumnNotHideable)
	}
	visible := t.schema.Visible(col, t.state.Hidden)
	t.state.Hidden[columnID] = visible
	t.normalizeLocked()
	t.mu.Unlock()

	t.record(ctx, "datatable.column.toggle", map[string]any{
		"column_id": columnID,
		"visible":   !visible,
	})
	return nil
}

// Apply validates and applies a batch of view changes. Filter and sort changes return to
// the first page and a page size change keeps the first visible row, unless PageIndex is
// given.
func (t *Table[R]) Apply(ctx context.Context, req ViewRequest) error {
	if req.PageSize != nil && !ValidPageSize(*req.PageSize) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, *req.PageSize)
	}
	if req.Sort != nil && req.Sort.Active() {
		col, ok := t.schema.Column(req.Sort.ColumnID)
		if !ok {
			return columnError(req.Sort.ColumnID, ErrUnknownColumn)
		}
		if !col.Sortable {
			return columnError(req.Sort.ColumnID, ErrColumnNotSortable)
		}
	}

	t.mu.Lock()
	if req.Filter != nil && *req.Filter != t.state.Filter {
		t.state.Filter = *req.Filter
		t.state.Page.PageIndex = 0
	}
	if req.Sort != nil {
		next := SortSpec{}
		if req.Sort.Active() {
			next = *req.Sort
		}
		if next != t.state.Sort {
			t.state.Sort = next
			t.state.Page.PageIndex = 0
		}
	}
	if req.PageSize != nil && *req.PageSize != t.state.Page.PageSize {
		first := t.state.Page.PageIndex * t.state.Page.PageSize
		t.state.Page = Pagination{PageIndex: first / *req.PageSize, PageSize: *req.PageSize}
	}
	if req.PageIndex != nil {
		t.state.Page.PageIndex = *req.PageIndex
	}
	t.normalizeLocked()
	state := t.state
	t.mu.Unlock()

	t.record(ctx, "datatable.view.apply", map[string]any{
		"filter_length": len(state.Filter),
		"sort_column":   state.Sort.ColumnID,
		"page_index":    state.Page.PageIndex,
		"page_size":     state.Page.PageSize,
	})
	return nil
}

// SetRows replaces the input rows. Selected ids that no longer exist are dropped.
func (t *Table[R]) SetRows(ctx context.Context, rows []R) {
	t.mu.Lock()
	t.rows = slices.Clone(rows)
	t.ids = make(map[string]struct{}, len(rows))
	for _, row := range t.rows {
		t.ids[t.schema.RowID(row)] = struct{}{}
	}
	dropped := t.selection.Retain(t.ids)
	t.loadErr = nil
	t.normalizeLocked()
	count := len(t.rows)
	t.mu.Unlock()

	t.record(ctx, "datatable.rows.replace", map[string]any{
		"rows":               count,
		"selection_released": dropped,
	})
	t.notify(ctx, "rows.replaced", count, nil)
}

// SetLoading sets the explicit loading flag.
func (t *Table[R]) SetLoading(loading bool) {
	t.mu.Lock()
	t.loading = loading
	if loading {
		t.loadErr = nil
	}
	t.mu.Unlock()
}

// SetLoadError records a failed load and clears the loading flag.
func (t *Table[R]) SetLoadError(err error) {
	t.mu.Lock()
	t.loading = false
	t.loadErr = err
	t.mu.Unlock()
}

// Loading reports the loading flag.
func (t *Table[R]) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading
}

// State returns a copy of the current view state.
func (t *Table[R]) State() ViewState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state := t.state
	state.Hidden = maps.Clone(t.state.Hidden)
	return state
}

// View derives the current view.
func (t *Table[R]) View() View[R] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return DeriveView(t.rows, t.schema, t.state)
}

// Rows returns a copy of the input rows.
func (t *Table[R]) Rows() []R {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.rows)
}

// SelectedRows resolves the selection against every input row, filtered or not.
func (t *Table[R]) SelectedRows() []R {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return SelectedRows(t.selection, t.rows, t.schema.RowID)
}

// SelectedIDs returns the selected row ids sorted.
func (t *Table[R]) SelectedIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selection.IDs()
}

// IsSelected reports whether rowID is selected.
func (t *Table[R]) IsSelected(rowID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selection.IsSelected(rowID)
}

// SelectedCount returns the number of selected rows.
func (t *Table[R]) SelectedCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selection.Count()
}

// ClearSelection deselects every row.
func (t *Table[R]) ClearSelection(ctx context.Context) {
	t.mu.Lock()
	t.selection.Clear()
	t.mu.Unlock()
	t.record(ctx, "datatable.selection.clear", nil)
}

// Export renders the filtered rows in view order, or the selected rows in source order.
func (t *Table[R]) Export(ctx context.Context, req ExportRequest) (ExportFile, error) {
	if req.Scope == "" {
		req.Scope = ScopeFiltered
	}
	if req.Format == "" {
		req.Format = FormatCSV
	}
	if req.Format != FormatCSV && req.Format != FormatParquet {
		return ExportFile{}, fmt.Errorf("%w: %q", ErrInvalidFormat, req.Format)
	}

	t.mu.RLock()
	var rows []R
	switch req.Scope {
	case ScopeFiltered:
		rows = SortRows(FilterRows(t.rows, t.schema, t.state.Filter, t.state.Hidden), t.schema, t.state.Sort)
	case ScopeSelected:
		rows = SelectedRows(t.selection, t.rows, t.schema.RowID)
	default:
		t.mu.RUnlock()
		return ExportFile{}, fmt.Errorf("%w: %q", ErrInvalidScope, req.Scope)
	}
	headers, records := t.schema.ExportRecords(rows, t.state.Hidden)
	title := req.Title
	if title == "" {
		title = t.title
	}
	t.mu.RUnlock()

	if req.Scope == ScopeSelected && len(rows) == 0 {
		return ExportFile{}, ErrEmptySelection
	}

	file := ExportFile{
		Name:        ExportFileName(title, req.Format),
		ContentType: contentType(req.Format),
		Rows:        len(records),
	}
	switch req.Format {
	case FormatParquet:
		var buf bytes.Buffer
		if err := WriteParquet(&buf, headers, records); err != nil {
			return ExportFile{}, err
		}
		file.Data = buf.Bytes()
	default:
		file.Data = []byte(RecordsToCSV(headers, records))
	}

	t.record(ctx, "datatable.export", map[string]any{
		"scope":  string(req.Scope),
		"format": string(req.Format),
		"rows":   file.Rows,
	})
	t.notify(ctx, "export", file.Rows, map[string]any{"file": file.Name})
	return file, nil
}

// Aggregate buckets the filtered rows by groupBy, summing metric.
func (t *Table[R]) Aggregate(groupBy, metric string) ([]Bucket, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Aggregate(t.rows, t.schema, t.state, groupBy, metric)
}

func (t *Table[R]) normalizeLocked() {
	total := len(FilterRows(t.rows, t.schema, t.state.Filter, t.state.Hidden))
	t.state.Page = ClampPage(t.state.Page, total)
}

func (t *Table[R]) record(ctx context.Context, event string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["table"] = t.name
	if t.session != "" {
		payload["session"] = t.session
	}
	t.telemetry.Record(ctx, event, payload)
}

func (t *Table[R]) notify(ctx context.Context, reason string, rows int, payload map[string]any) {
	_ = t.refresh.TableUpdated(ctx, TableEvent{
		Table:      t.name,
		Session:    t.session,
		Reason:     reason,
		Rows:       rows,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
}
