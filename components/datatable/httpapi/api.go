package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable/commands"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable/queries"
)

// API runs table interactions through the shared commands and queries. Every mutation
// answers with the fresh snapshot, so transports never diff state themselves.
type API struct {
	Sort       gocommand.Commander[commands.ToggleSortInput]
	Filter     gocommand.Commander[commands.SetFilterInput]
	Page       gocommand.Commander[commands.SetPageInput]
	PageSize   gocommand.Commander[commands.SetPageSizeInput]
	Column     gocommand.Commander[commands.ToggleColumnInput]
	View       gocommand.Commander[commands.ApplyViewInput]
	Row        gocommand.Commander[commands.ToggleRowInput]
	All        gocommand.Commander[commands.ToggleAllInput]
	Clear      gocommand.Commander[commands.ClearSelectionInput]
	Delete     gocommand.Commander[commands.DeleteSelectedInput]
	Unmount    gocommand.Commander[commands.UnmountInput]
	Snapshots  gocommand.Querier[datatable.TableRef, datatable.Snapshot]
	Exports    gocommand.Querier[queries.ExportInput, datatable.ExportFile]
	Aggregates gocommand.Querier[queries.AggregateInput, []datatable.Bucket]
	Validator  *datatable.RequestValidator
}

// NewAPI wires every command and query to tables.
func NewAPI(tables *datatable.Service, telemetry commands.Telemetry) *API {
	return &API{
		Sort:       commands.NewToggleSortCommand(tables, telemetry),
		Filter:     commands.NewSetFilterCommand(tables, telemetry),
		Page:       commands.NewSetPageCommand(tables, telemetry),
		PageSize:   commands.NewSetPageSizeCommand(tables, telemetry),
		Column:     commands.NewToggleColumnCommand(tables, telemetry),
		View:       commands.NewApplyViewCommand(tables, telemetry),
		Row:        commands.NewToggleRowCommand(tables, telemetry),
		All:        commands.NewToggleAllCommand(tables, telemetry),
		Clear:      commands.NewClearSelectionCommand(tables, telemetry),
		Delete:     commands.NewDeleteSelectedCommand(tables, telemetry),
		Unmount:    commands.NewUnmountCommand(tables, telemetry),
		Snapshots:  queries.NewSnapshotQuery(tables),
		Exports:    queries.NewExportQuery(tables),
		Aggregates: queries.NewAggregateQuery(tables),
		Validator:  datatable.NewRequestValidator(),
	}
}

// FilterPayload is the body of a filter update.
type FilterPayload struct {
	Filter string `json:"filter"`
}

// PagePayload is the body of a page change.
type PagePayload struct {
	PageIndex int `json:"page_index"`
}

// PageSizePayload is the body of a page size change.
type PageSizePayload struct {
	PageSize int `json:"page_size"`
}

// ToggleAllPayload is the body of the header checkbox.
type ToggleAllPayload struct {
	Selected bool `json:"selected"`
}

// DeleteResult reports a bulk delete.
type DeleteResult struct {
	Deleted  int                `json:"deleted"`
	Snapshot datatable.Snapshot `json:"snapshot"`
}

// Snapshot returns the current render of a table.
func (a *API) Snapshot(ctx context.Context, ref datatable.TableRef) (datatable.Snapshot, error) {
	if a.Snapshots == nil {
		return datatable.Snapshot{}, errors.New("httpapi: snapshot query is not configured")
	}
	return a.Snapshots.Query(ctx, ref)
}

// ToggleSort advances the sort cycle of columnID.
func (a *API) ToggleSort(ctx context.Context, ref datatable.TableRef, columnID string) (datatable.Snapshot, error) {
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.Sort, commands.ToggleSortInput{TableRef: ref, ColumnID: columnID})
	})
}

// SetFilter decodes a FilterPayload and applies it.
func (a *API) SetFilter(ctx context.Context, ref datatable.TableRef, body []byte) (datatable.Snapshot, error) {
	var payload FilterPayload
	if err := decode(body, &payload); err != nil {
		return datatable.Snapshot{}, err
	}
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.Filter, commands.SetFilterInput{TableRef: ref, Filter: payload.Filter})
	})
}

// SetPage decodes a PagePayload and moves to that page.
func (a *API) SetPage(ctx context.Context, ref datatable.TableRef, body []byte) (datatable.Snapshot, error) {
	var payload PagePayload
	if err := decode(body, &payload); err != nil {
		return datatable.Snapshot{}, err
	}
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.Page, commands.SetPageInput{TableRef: ref, PageIndex: payload.PageIndex})
	})
}

// SetPageSize decodes a PageSizePayload and resizes pages.
func (a *API) SetPageSize(ctx context.Context, ref datatable.TableRef, body []byte) (datatable.Snapshot, error) {
	var payload PageSizePayload
	if err := decode(body, &payload); err != nil {
		return datatable.Snapshot{}, err
	}
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.PageSize, commands.SetPageSizeInput{TableRef: ref, PageSize: payload.PageSize})
	})
}

// ToggleColumn shows or hides a column.
func (a *API) ToggleColumn(ctx context.Context, ref datatable.TableRef, columnID string) (datatable.Snapshot, error) {
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.Column, commands.ToggleColumnInput{TableRef: ref, ColumnID: columnID})
	})
}

// ApplyView validates a ViewRequest body against its schema and applies it.
func (a *API) ApplyView(ctx context.Context, ref datatable.TableRef, body []byte) (datatable.Snapshot, error) {
	req, err := a.validator().DecodeViewRequest(body)
	if err != nil {
		return datatable.Snapshot{}, err
	}
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.View, commands.ApplyViewInput{TableRef: ref, Request: req})
	})
}

// ToggleRow flips the selection of rowID.
func (a *API) ToggleRow(ctx context.Context, ref datatable.TableRef, rowID string) (datatable.Snapshot, error) {
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.Row, commands.ToggleRowInput{TableRef: ref, RowID: rowID})
	})
}

// ToggleAll decodes a ToggleAllPayload and applies it to the filtered rows.
func (a *API) ToggleAll(ctx context.Context, ref datatable.TableRef, body []byte) (datatable.Snapshot, error) {
	var payload ToggleAllPayload
	if err := decode(body, &payload); err != nil {
		return datatable.Snapshot{}, err
	}
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.All, commands.ToggleAllInput{TableRef: ref, Selected: payload.Selected})
	})
}

// ClearSelection deselects every row of the table.
func (a *API) ClearSelection(ctx context.Context, ref datatable.TableRef) (datatable.Snapshot, error) {
	return a.run(ctx, ref, func() error {
		return execute(ctx, a.Clear, commands.ClearSelectionInput{TableRef: ref})
	})
}

// DeleteSelected removes the selected rows.
func (a *API) DeleteSelected(ctx context.Context, ref datatable.TableRef) (DeleteResult, error) {
	var deleted int
	snap, err := a.run(ctx, ref, func() error {
		return execute(ctx, a.Delete, commands.DeleteSelectedInput{TableRef: ref, Deleted: &deleted})
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Deleted: deleted, Snapshot: snap}, nil
}

// Export validates an ExportRequest body and renders the download. An empty body exports
// the filtered rows as CSV.
func (a *API) Export(ctx context.Context, ref datatable.TableRef, body []byte) (datatable.ExportFile, error) {
	var req datatable.ExportRequest
	if len(body) > 0 {
		var err error
		if req, err = a.validator().DecodeExportRequest(body); err != nil {
			return datatable.ExportFile{}, err
		}
	}
	return a.ExportRequest(ctx, ref, req)
}

// ExportRequest renders an already decoded export.
func (a *API) ExportRequest(ctx context.Context, ref datatable.TableRef, req datatable.ExportRequest) (datatable.ExportFile, error) {
	if a.Exports == nil {
		return datatable.ExportFile{}, errors.New("httpapi: export query is not configured")
	}
	return a.Exports.Query(ctx, queries.ExportInput{TableRef: ref, Request: req})
}

// Aggregate buckets the filtered rows of a table.
func (a *API) Aggregate(ctx context.Context, ref datatable.TableRef, groupBy, metric string) ([]datatable.Bucket, error) {
	if a.Aggregates == nil {
		return nil, errors.New("httpapi: aggregate query is not configured")
	}
	return a.Aggregates.Query(ctx, queries.AggregateInput{TableRef: ref, GroupBy: groupBy, Metric: metric})
}

// EndSession unmounts every table of session, cancelling pending loads.
func (a *API) EndSession(ctx context.Context, session string) error {
	return execute(ctx, a.Unmount, commands.UnmountInput{Session: session})
}

func (a *API) run(ctx context.Context, ref datatable.TableRef, apply func() error) (datatable.Snapshot, error) {
	if err := apply(); err != nil {
		return datatable.Snapshot{}, err
	}
	return a.Snapshot(ctx, ref)
}

func (a *API) validator() *datatable.RequestValidator {
	if a.Validator == nil {
		a.Validator = datatable.NewRequestValidator()
	}
	return a.Validator
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return fmt.Errorf("httpapi: %T command is not configured", msg)
	}
	return cmd.Execute(ctx, msg)
}

func decode(body []byte, target any) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", datatable.ErrInvalidRequest)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", datatable.ErrInvalidRequest, err)
	}
	return nil
}
