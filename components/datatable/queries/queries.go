package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

type tableResolver interface {
	Handle(ctx context.Context, session, table string) (datatable.Handle, error)
}

// SnapshotQuery renders the current view of a mounted table.
type SnapshotQuery struct {
	service tableResolver
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(service tableResolver) *SnapshotQuery {
	return &SnapshotQuery{service: service}
}

var _ gocommand.Querier[datatable.TableRef, datatable.Snapshot] = (*SnapshotQuery)(nil)

// Query returns the snapshot, mounting the table on first use.
func (q *SnapshotQuery) Query(ctx context.Context, ref datatable.TableRef) (datatable.Snapshot, error) {
	if q.service == nil {
		return datatable.Snapshot{}, errors.New("snapshot query requires service")
	}
	handle, err := q.service.Handle(ctx, ref.Session, ref.Table)
	if err != nil {
		return datatable.Snapshot{}, err
	}
	return handle.Snapshot(), nil
}

// ExportInput asks for a download of a mounted table.
type ExportInput struct {
	datatable.TableRef
	Request datatable.ExportRequest `json:"request"`
}

// ExportQuery renders CSV or Parquet downloads.
type ExportQuery struct {
	service tableResolver
}

// NewExportQuery builds the query.
func NewExportQuery(service tableResolver) *ExportQuery {
	return &ExportQuery{service: service}
}

var _ gocommand.Querier[ExportInput, datatable.ExportFile] = (*ExportQuery)(nil)

// Query renders the export.
func (q *ExportQuery) Query(ctx context.Context, input ExportInput) (datatable.ExportFile, error) {
	if q.service == nil {
		return datatable.ExportFile{}, errors.New("export query requires service")
	}
	handle, err := q.service.Handle(ctx, input.Session, input.Table)
	if err != nil {
		return datatable.ExportFile{}, err
	}
	return handle.Export(ctx, input.Request)
}

// AggregateInput groups the filtered rows of a table.
type AggregateInput struct {
	datatable.TableRef
	GroupBy string `json:"group_by"`
	Metric  string `json:"metric,omitempty"`
}

// AggregateQuery buckets the filtered rows for chart widgets.
type AggregateQuery struct {
	service tableResolver
}

// NewAggregateQuery builds the query.
func NewAggregateQuery(service tableResolver) *AggregateQuery {
	return &AggregateQuery{service: service}
}

var _ gocommand.Querier[AggregateInput, []datatable.Bucket] = (*AggregateQuery)(nil)

// Query returns the buckets.
func (q *AggregateQuery) Query(ctx context.Context, input AggregateInput) ([]datatable.Bucket, error) {
	if q.service == nil {
		return nil, errors.New("aggregate query requires service")
	}
	handle, err := q.service.Handle(ctx, input.Session, input.Table)
	if err != nil {
		return nil, err
	}
	return handle.Aggregate(input.GroupBy, input.Metric)
}
