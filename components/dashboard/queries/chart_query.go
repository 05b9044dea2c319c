package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

// WidgetChartInput names a widget and the table session whose filter it follows.
type WidgetChartInput struct {
	Session  string `json:"session"`
	WidgetID string `json:"widget_id"`
}

type chartService interface {
	RenderWidget(ctx context.Context, widgetID string, source dashboard.BucketSource) (dashboard.WidgetView, error)
}

// WidgetChartQuery renders a widget chart from the session's mounted tables.
type WidgetChartQuery struct {
	service chartService
	tables  *datatable.Service
}

// NewWidgetChartQuery builds the query.
func NewWidgetChartQuery(service chartService, tables *datatable.Service) *WidgetChartQuery {
	return &WidgetChartQuery{service: service, tables: tables}
}

var _ gocommand.Querier[WidgetChartInput, dashboard.WidgetView] = (*WidgetChartQuery)(nil)

// Query aggregates and renders the widget.
func (q *WidgetChartQuery) Query(ctx context.Context, input WidgetChartInput) (dashboard.WidgetView, error) {
	if q.service == nil || q.tables == nil {
		return dashboard.WidgetView{}, errors.New("chart query requires service")
	}
	if input.Session == "" {
		return dashboard.WidgetView{}, datatable.ErrSessionRequired
	}
	return q.service.RenderWidget(ctx, input.WidgetID, dashboard.TableBuckets(q.tables, input.Session))
}
