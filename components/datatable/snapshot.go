package datatable

// ColumnState is the render state of one column header.
type ColumnState struct {
	ID         string        `json:"id"`
	Header     string        `json:"header"`
	Special    bool          `json:"special,omitempty"`
	Sortable   bool          `json:"sortable"`
	Filterable bool          `json:"filterable"`
	Hidden     bool          `json:"hidden"`
	Sort       SortDirection `json:"sort,omitempty"`
}

// RowState is one rendered row of the visible page.
type RowState struct {
	ID       string            `json:"id"`
	Selected bool              `json:"selected"`
	Cells    map[string]string `json:"cells"`
}

// Snapshot is a serializable render of the table for presentation shells.
type Snapshot struct {
	Table              string        `json:"table"`
	Status             Status        `json:"status"`
	Error              string        `json:"error,omitempty"`
	Columns            []ColumnState `json:"columns"`
	Rows               []RowState    `json:"rows"`
	Filter             string        `json:"filter"`
	Sort               SortSpec      `json:"sort"`
	Page               Pagination    `json:"page"`
	PageCount          int           `json:"page_count"`
	PageSizes          []int         `json:"page_sizes"`
	CanPrevious        bool          `json:"can_previous"`
	CanNext            bool          `json:"can_next"`
	TotalRows          int           `json:"total_rows"`
	TotalFilteredCount int           `json:"total_filtered_count"`
	SelectedCount      int           `json:"selected_count"`
	Coverage           Coverage      `json:"coverage"`
	Caption            string        `json:"caption"`
}

// Snapshot renders the current view with selection flags and status.
func (t *Table[R]) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	view := DeriveView(t.rows, t.schema, t.state)
	dataColumns := t.schema.DataColumns(t.state.Hidden)

	columns := make([]ColumnState, 0, len(t.schema.columns))
	for _, col := range t.schema.columns {
		state := ColumnState{
			ID:         col.ID,
			Header:     col.Header,
			Special:    col.Special(),
			Sortable:   col.Sortable,
			Filterable: col.Filterable,
			Hidden:     !t.schema.Visible(col, t.state.Hidden),
		}
		if view.Sort.ColumnID == col.ID {
			state.Sort = view.Sort.Direction
		}
		columns = append(columns, state)
	}

	rows := make([]RowState, len(view.VisibleRows))
	for i, row := range view.VisibleRows {
		id := t.schema.RowID(row)
		cells := make(map[string]string, len(dataColumns))
		for _, col := range dataColumns {
			cells[col.ID] = col.Render(row)
		}
		rows[i] = RowState{ID: id, Selected: t.selection.IsSelected(id), Cells: cells}
	}

	filtered := FilterRows(t.rows, t.schema, t.state.Filter, t.state.Hidden)
	filteredIDs := make([]string, len(filtered))
	for i, row := range filtered {
		filteredIDs[i] = t.schema.RowID(row)
	}

	snap := Snapshot{
		Table:              t.name,
		Status:             t.statusLocked(view),
		Columns:            columns,
		Rows:               rows,
		Filter:             view.Filter,
		Sort:               view.Sort,
		Page:               view.Page,
		PageCount:          view.PageCount,
		PageSizes:          append([]int(nil), PageSizes...),
		CanPrevious:        view.CanPrevious(),
		CanNext:            view.CanNext(),
		TotalRows:          view.SourceCount,
		TotalFilteredCount: view.TotalFilteredCount,
		SelectedCount:      t.selection.Count(),
		Coverage:           t.selection.Coverage(filteredIDs),
		Caption:            view.Caption(),
	}
	if t.loadErr != nil {
		snap.Error = t.loadErr.Error()
	}
	return snap
}

func (t *Table[R]) statusLocked(view View[R]) Status {
	switch {
	case t.loading:
		return StatusLoading
	case t.loadErr != nil && len(t.rows) == 0:
		return StatusError
	case view.TotalFilteredCount == 0:
		return StatusEmpty
	default:
		return StatusReady
	}
}
