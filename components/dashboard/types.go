package dashboard

import (
	"context"
	"errors"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

var (
	ErrAreaRequired   = errors.New("dashboard: area code is required")
	ErrUnknownArea    = errors.New("dashboard: unknown area")
	ErrUnknownWidget  = errors.New("dashboard: unknown widget")
	ErrViewerRequired = errors.New("dashboard: viewer user id is required")
	ErrChartKind      = errors.New("dashboard: unsupported chart type")
	ErrNoChartData    = errors.New("dashboard: chart has no data")
)

// ChartKind is the chart a widget draws.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"
)

// Widget is a chart card placed in an area. It aggregates the filtered rows of Table.
type Widget struct {
	ID      string    `json:"id" yaml:"id"`
	Title   string    `json:"title" yaml:"title"`
	Kind    ChartKind `json:"kind" yaml:"kind"`
	Table   string    `json:"table" yaml:"table"`
	GroupBy string    `json:"group_by" yaml:"group_by"`
	Metric  string    `json:"metric,omitempty" yaml:"metric,omitempty"`
}

// Area is an ordered list of widgets, such as the main overview grid.
type Area struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Widgets []Widget `json:"widgets"`
}

// ViewerContext identifies whose layout preferences apply.
type ViewerContext struct {
	UserID string `json:"user_id"`
	Locale string `json:"locale,omitempty"`
}

// LayoutOverrides captures per-viewer adjustments.
type LayoutOverrides struct {
	AreaOrder     map[string][]string `json:"area_order"`
	HiddenWidgets map[string]bool     `json:"hidden_widgets"`
}

// Layout is the resolved set of areas for a viewer.
type Layout struct {
	Areas []Area `json:"areas"`
}

// Area returns the resolved area with code.
func (l Layout) Area(code string) (Area, bool) {
	for _, area := range l.Areas {
		if area.Code == code {
			return area, true
		}
	}
	return Area{}, false
}

// PreferenceStore persists layout overrides per viewer.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// BucketSource aggregates the filtered rows of a table for a chart.
type BucketSource func(ctx context.Context, table, groupBy, metric string) ([]datatable.Bucket, error)

// WidgetEvent describes a layout change transports may redraw for.
type WidgetEvent struct {
	AreaCode  string   `json:"area_code"`
	WidgetIDs []string `json:"widget_ids"`
	Reason    string   `json:"reason"`
	UserID    string   `json:"user_id,omitempty"`
}

// RefreshHook is notified when a viewer's layout changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error { return nil }
