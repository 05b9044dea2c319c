package datatable

import (
	"context"
	"time"

	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/activity"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

// ActivityEmitter publishes audit events for bulk actions.
type ActivityEmitter interface {
	Emit(ctx context.Context, evt activity.Event) error
}

type noopActivity struct{}

func (noopActivity) Emit(context.Context, activity.Event) error { return nil }

// MountOptions configures a mounted table.
type MountOptions[R any] struct {
	Table    TableOptions
	Fetch    FetchFunc[R]
	Rows     []R
	Delay    time.Duration
	Activity ActivityEmitter
	Actor    string
}

// Mount is a table plus the dataset that owns its rows and the loader filling it.
type Mount[R any] struct {
	*Table[R]
	dataset  *Dataset[R]
	loader   *Loader[R]
	activity ActivityEmitter
	actor    string
}

var _ Handle = (*Mount[MapRow])(nil)

// NewMount builds a table and starts loading it. Static Rows are used when Fetch is nil.
func NewMount[R any](ctx context.Context, schema *Schema[R], opts MountOptions[R]) (*Mount[R], error) {
	table, err := NewTable(schema, opts.Table)
	if err != nil {
		return nil, err
	}
	m := &Mount[R]{
		Table:    table,
		dataset:  NewDataset(table),
		activity: opts.Activity,
		actor:    opts.Actor,
	}
	if m.activity == nil {
		m.activity = noopActivity{}
	}
	if opts.Fetch != nil {
		m.loader = StartLoader(context.WithoutCancel(ctx), opts.Fetch, opts.Delay, m.dataset)
	} else {
		m.dataset.Replace(ctx, opts.Rows)
	}
	return m, nil
}

// Dataset returns the row owner.
func (m *Mount[R]) Dataset() *Dataset[R] {
	return m.dataset
}

// Wait blocks until the initial load settles.
func (m *Mount[R]) Wait(ctx context.Context) error {
	if m.loader == nil {
		return nil
	}
	return m.loader.Wait(ctx)
}

// DeleteSelected removes the selected rows from the dataset.
func (m *Mount[R]) DeleteSelected(ctx context.Context) (int, error) {
	ids := m.SelectedIDs()
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}
	removed := m.dataset.Remove(ctx, ids)

	m.record(ctx, "datatable.rows.delete", map[string]any{"rows": len(removed)})
	m.notify(ctx, "rows.deleted", len(removed), map[string]any{"ids": ids})
	m.emit(ctx, "rows.delete", map[string]any{"rows": len(removed), "ids": ids})
	logging.WithFields(ctx, "table", m.Name(), "session", m.session).Info("deleted selected rows", "rows", len(removed))
	return len(removed), nil
}

// Export renders a download and records an audit event.
func (m *Mount[R]) Export(ctx context.Context, req ExportRequest) (ExportFile, error) {
	file, err := m.Table.Export(ctx, req)
	if err != nil {
		return ExportFile{}, err
	}
	m.emit(ctx, "export", map[string]any{"rows": file.Rows, "file": file.Name})
	return file, nil
}

// Close cancels a pending load. The table receives no updates afterwards.
func (m *Mount[R]) Close() {
	if m.loader != nil {
		m.loader.Close()
	}
}

func (m *Mount[R]) emit(ctx context.Context, verb string, meta map[string]any) {
	err := m.activity.Emit(ctx, activity.Event{
		Verb:           verb,
		ActorID:        m.actor,
		ObjectType:     "table",
		ObjectID:       m.Name(),
		DefinitionCode: "datatable:" + verb,
		Metadata:       meta,
	})
	if err != nil {
		logging.WithFields(ctx, "table", m.Name()).Warn("activity emit failed", "verb", verb, "error", err)
	}
}

// MountFactory returns a Factory creating a fresh mount per session.
func MountFactory[R any](schema *Schema[R], opts MountOptions[R]) Factory {
	return func(ctx context.Context, session string) (Handle, error) {
		o := opts
		o.Table.Session = session
		if o.Actor == "" {
			o.Actor = session
		}
		return NewMount(ctx, schema, o)
	}
}
