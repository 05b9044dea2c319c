package datatable

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Reserved column ids rendered by the presentation shell and never filtered or exported.
const (
	SelectColumnID  = "select"
	ActionsColumnID = "actions"
)

// DefaultPageSize is used when a table is mounted without an explicit page size.
const DefaultPageSize = 10

// PageSizes lists the page sizes a table accepts.
var PageSizes = []int{10, 20, 30, 40, 50}

var (
	ErrSchemaRequired    = errors.New("datatable: schema is required")
	ErrRowIDRequired     = errors.New("datatable: row id function is required")
	ErrColumnIDRequired  = errors.New("datatable: column id is required")
	ErrDuplicateColumn   = errors.New("datatable: duplicate column id")
	ErrAccessorRequired  = errors.New("datatable: data column requires an accessor")
	ErrUnknownColumn     = errors.New("datatable: unknown column")
	ErrColumnNotSortable = errors.New("datatable: column is not sortable")
	ErrColumnNotHideable = errors.New("datatable: column cannot be hidden")
	ErrInvalidPageSize   = errors.New("datatable: invalid page size")
	ErrUnknownRow        = errors.New("datatable: unknown row")
	ErrUnknownTable      = errors.New("datatable: unknown table")
	ErrTableExists       = errors.New("datatable: table already registered")
	ErrSessionRequired   = errors.New("datatable: session is required")
	ErrInvalidScope      = errors.New("datatable: invalid export scope")
	ErrInvalidFormat     = errors.New("datatable: invalid export format")
	ErrEmptySelection    = errors.New("datatable: selection is empty")
)

// SortDirection is the direction of the active sort. The zero value means unsorted.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec names the sorted column. A SortSpec with SortNone direction is inactive.
type SortSpec struct {
	ColumnID  string        `json:"column_id,omitempty"`
	Direction SortDirection `json:"direction,omitempty"`
}

// Active reports whether s orders rows.
func (s SortSpec) Active() bool {
	return s.ColumnID != "" && (s.Direction == SortAsc || s.Direction == SortDesc)
}

// Pagination selects a window of the filtered and sorted rows.
type Pagination struct {
	PageIndex int `json:"page_index"`
	PageSize  int `json:"page_size"`
}

// ViewState bundles every input of DeriveView besides rows and schema.
type ViewState struct {
	Filter string          `json:"filter"`
	Sort   SortSpec        `json:"sort"`
	Page   Pagination      `json:"page"`
	Hidden map[string]bool `json:"hidden,omitempty"`
}

// Status describes what the presentation shell should draw in the body area.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusReady   Status = "ready"
)

// Coverage summarizes how much of a row set is selected.
type Coverage string

const (
	CoverageNone Coverage = "none"
	CoverageSome Coverage = "some"
	CoverageAll  Coverage = "all"
)

// ExportScope picks which rows an export contains.
type ExportScope string

const (
	ScopeFiltered ExportScope = "filtered"
	ScopeSelected ExportScope = "selected"
)

// ExportFormat is the file format of an export.
type ExportFormat string

const (
	FormatCSV     ExportFormat = "csv"
	FormatParquet ExportFormat = "parquet"
)

// ExportRequest describes a download.
type ExportRequest struct {
	Scope  ExportScope  `json:"scope"`
	Format ExportFormat `json:"format"`
	Title  string       `json:"title,omitempty"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
	Data        []byte `json:"-"`
}

// ViewRequest updates several pieces of view state at once. Nil fields are left untouched.
type ViewRequest struct {
	Filter    *string   `json:"filter,omitempty"`
	Sort      *SortSpec `json:"sort,omitempty"`
	PageIndex *int      `json:"page_index,omitempty"`
	PageSize  *int      `json:"page_size,omitempty"`
}

// Bucket is one group of an aggregation over the filtered rows.
type Bucket struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
}

// TableEvent describes a change that subscribers may want to redraw for.
type TableEvent struct {
	Table      string         `json:"table"`
	Session    string         `json:"session,omitempty"`
	Reason     string         `json:"reason"`
	Rows       int            `json:"rows"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// RefreshHook is notified when table data changes.
type RefreshHook interface {
	TableUpdated(ctx context.Context, event TableEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) TableUpdated(context.Context, TableEvent) error { return nil }

func normalizeRefreshHook(h RefreshHook) RefreshHook {
	if h == nil {
		return noopRefreshHook{}
	}
	return h
}

// TableRef addresses one mounted table of a session.
type TableRef struct {
	Session string `json:"session"`
	Table   string `json:"table"`
}

// Handle is the type-erased surface transports and commands drive.
type Handle interface {
	Name() string
	ToggleSort(ctx context.Context, columnID string) error
	SetFilter(ctx context.Context, text string)
	SetPage(ctx context.Context, index int)
	SetPageSize(ctx context.Context, size int) error
	ToggleRow(ctx context.Context, rowID string) error
	ToggleAll(ctx context.Context, selected bool)
	ClearSelection(ctx context.Context)
	ToggleColumn(ctx context.Context, columnID string) error
	Apply(ctx context.Context, req ViewRequest) error
	Snapshot() Snapshot
	Export(ctx context.Context, req ExportRequest) (ExportFile, error)
	Aggregate(groupBy, metric string) ([]Bucket, error)
	DeleteSelected(ctx context.Context) (int, error)
	// Wait blocks until the initial load settles or ctx is done.
	Wait(ctx context.Context) error
	Close()
}

// ValidPageSize reports whether size is one of PageSizes.
func ValidPageSize(size int) bool {
	for _, candidate := range PageSizes {
		if candidate == size {
			return true
		}
	}
	return false
}

func columnError(id string, err error) error {
	return fmt.Errorf("datatable: column %q: %w", id, err)
}

// IsSpecialColumn reports whether id is one of the reserved presentation columns.
func IsSpecialColumn(id string) bool {
	return id == SelectColumnID || id == ActionsColumnID
}
