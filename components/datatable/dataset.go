package datatable

import (
	"context"
	"slices"
	"sync"

	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

// Dataset owns the source rows of a table. Mutations happen here and are pushed
// into the table, which only ever derives views.
type Dataset[R any] struct {
	mu    sync.Mutex
	rows  []R
	table *Table[R]
}

// NewDataset binds an empty dataset to table.
func NewDataset[R any](table *Table[R]) *Dataset[R] {
	return &Dataset[R]{table: table}
}

// Rows returns a copy of the source rows.
func (d *Dataset[R]) Rows() []R {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.rows)
}

// Replace swaps the source rows.
func (d *Dataset[R]) Replace(ctx context.Context, rows []R) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows = slices.Clone(rows)
	d.table.SetRows(ctx, d.rows)
}

// Remove deletes rows whose id is in ids and returns the removed rows.
func (d *Dataset[R]) Remove(ctx context.Context, ids []string) []R {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := make([]R, 0, len(d.rows))
	var removed []R
	for _, row := range d.rows {
		if _, ok := drop[d.table.schema.RowID(row)]; ok {
			removed = append(removed, row)
			continue
		}
		kept = append(kept, row)
	}
	if len(removed) == 0 {
		return nil
	}
	d.rows = kept
	d.table.SetRows(ctx, d.rows)
	return removed
}

// LoadStarted implements LoadTarget.
func (d *Dataset[R]) LoadStarted(context.Context) {
	d.table.SetLoading(true)
}

// LoadFinished implements LoadTarget.
func (d *Dataset[R]) LoadFinished(ctx context.Context, rows []R, err error) {
	if err != nil {
		logging.WithFields(ctx, "table", d.table.Name()).Error("table load failed", "error", err)
		d.table.SetLoadError(err)
		return
	}
	d.Replace(ctx, rows)
	d.table.SetLoading(false)
}
