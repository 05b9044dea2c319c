package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

type captureTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (c *captureTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

type captureHook struct {
	events []WidgetEvent
	err    error
}

func (c *captureHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	c.events = append(c.events, event)
	return c.err
}

var alice = ViewerContext{UserID: "alice"}

func testAreas() []Area {
	return []Area{{
		Code: MainArea,
		Name: "Overview",
		Widgets: []Widget{
			{ID: "w1", Title: "One", Kind: ChartBar, Table: "users", GroupBy: "status"},
			{ID: "w2", Title: "Two", Kind: ChartPie, Table: "users", GroupBy: "status"},
			{ID: "w3", Title: "Three", Kind: ChartLine, Table: "users", GroupBy: "status", Metric: "score"},
		},
	}}
}

func mainOrder(t *testing.T, svc *Service, viewer ViewerContext) []string {
	t.Helper()
	layout, err := svc.ConfigureLayout(context.Background(), viewer)
	require.NoError(t, err)
	area, ok := layout.Area(MainArea)
	require.True(t, ok)
	return widgetIDs(area.Widgets)
}

func TestServiceDefaultsToStockAreas(t *testing.T) {
	svc := NewService(Options{})
	order := mainOrder(t, svc, ViewerContext{})
	assert.Len(t, order, len(DefaultAreas()[0].Widgets))
}

func TestMoveWidget(t *testing.T) {
	ctx := context.Background()
	hook := &captureHook{}
	telemetry := &captureTelemetry{}
	svc := NewService(Options{Areas: testAreas(), Refresh: hook, Telemetry: telemetry})

	order, err := svc.MoveWidget(ctx, alice, MainArea, "w1", "w3")
	require.NoError(t, err)
	assert.Equal(t, []string{"w2", "w3", "w1"}, order)
	assert.Equal(t, order, mainOrder(t, svc, alice))
	assert.Equal(t, []string{"w1", "w2", "w3"}, mainOrder(t, svc, ViewerContext{UserID: "bob"}))

	require.Len(t, hook.events, 1)
	assert.Equal(t, "move", hook.events[0].Reason)
	assert.Equal(t, "alice", hook.events[0].UserID)
	assert.Contains(t, telemetry.events, "dashboard.widget.move")
}

func TestMoveWidgetNoops(t *testing.T) {
	ctx := context.Background()
	hook := &captureHook{}
	svc := NewService(Options{Areas: testAreas(), Refresh: hook})

	order, err := svc.MoveWidget(ctx, alice, MainArea, "w2", "w2")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2", "w3"}, order)

	order, err = svc.MoveWidget(ctx, alice, MainArea, "w2", "outside")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2", "w3"}, order)
	assert.Empty(t, hook.events)

	_, err = svc.MoveWidget(ctx, alice, MainArea, "ghost", "w1")
	assert.ErrorIs(t, err, ErrUnknownWidget)
	_, err = svc.MoveWidget(ctx, alice, "nowhere", "w1", "w2")
	assert.ErrorIs(t, err, ErrUnknownArea)
	_, err = svc.MoveWidget(ctx, alice, " ", "w1", "w2")
	assert.ErrorIs(t, err, ErrAreaRequired)
	_, err = svc.MoveWidget(ctx, ViewerContext{}, MainArea, "w1", "w2")
	assert.ErrorIs(t, err, ErrViewerRequired)
}

func TestReorderWidgets(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Options{Areas: testAreas(), Refresh: &captureHook{err: errors.New("offline")}})

	order, err := svc.ReorderWidgets(ctx, alice, MainArea, []string{"w3", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, []string{"w3", "w1", "w2"}, order)
	assert.Equal(t, order, mainOrder(t, svc, alice))
}

func TestSetWidgetHidden(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Options{Areas: testAreas()})

	require.NoError(t, svc.SetWidgetHidden(ctx, alice, "w2", true))
	assert.Equal(t, []string{"w1", "w3"}, mainOrder(t, svc, alice))

	require.NoError(t, svc.SetWidgetHidden(ctx, alice, "w2", false))
	assert.Equal(t, []string{"w1", "w2", "w3"}, mainOrder(t, svc, alice))

	assert.ErrorIs(t, svc.SetWidgetHidden(ctx, alice, "ghost", true), ErrUnknownWidget)
	assert.ErrorIs(t, svc.SetWidgetHidden(ctx, ViewerContext{}, "w1", true), ErrViewerRequired)
}

func TestRenderWidget(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Options{Areas: testAreas()})
	var gotTable, gotGroup, gotMetric string
	source := func(_ context.Context, table, groupBy, metric string) ([]datatable.Bucket, error) {
		gotTable, gotGroup, gotMetric = table, groupBy, metric
		return []datatable.Bucket{{Label: "active", Count: 2, Sum: 7}}, nil
	}

	view, err := svc.RenderWidget(ctx, "w3", source)
	require.NoError(t, err)
	assert.Equal(t, "users", gotTable)
	assert.Equal(t, "status", gotGroup)
	assert.Equal(t, "score", gotMetric)
	assert.Equal(t, "w3", view.Widget.ID)
	assert.Contains(t, view.HTML, "Three")

	_, err = svc.RenderWidget(ctx, "ghost", source)
	assert.ErrorIs(t, err, ErrUnknownWidget)
	_, err = svc.RenderWidget(ctx, "w1", nil)
	assert.Error(t, err)

	empty := func(context.Context, string, string, string) ([]datatable.Bucket, error) { return nil, nil }
	_, err = svc.RenderWidget(ctx, "w1", empty)
	assert.ErrorIs(t, err, ErrNoChartData)
}

func TestTableBucketsFollowsSessionFilter(t *testing.T) {
	ctx := context.Background()
	tables := datatable.NewService(datatable.Options{})
	schema := datatable.MustSchema(
		func(r datatable.MapRow) string { return r["id"].(string) },
		datatable.Field("name", "Name", datatable.MapField("name")),
		datatable.Field("status", "Status", datatable.MapField("status")),
	)
	rows := []datatable.MapRow{
		{"id": "1", "name": "Alice", "status": "active"},
		{"id": "2", "name": "Bob", "status": "inactive"},
		{"id": "3", "name": "Alina", "status": "active"},
	}
	require.NoError(t, tables.Register("users", func(ctx context.Context, session string) (datatable.Handle, error) {
		return datatable.NewMount(ctx, schema, datatable.MountOptions[datatable.MapRow]{
			Table: datatable.TableOptions{Name: "users", Session: session},
			Rows:  rows,
		})
	}))
	handle, err := tables.Handle(ctx, "s1", "users")
	require.NoError(t, err)
	handle.SetFilter(ctx, "bob")

	buckets, err := TableBuckets(tables, "s1")(ctx, "users", "status", "")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "inactive", buckets[0].Label)

	buckets, err = TableBuckets(tables, "s2")(ctx, "users", "status", "")
	require.NoError(t, err)
	assert.Len(t, buckets, 2)

	_, err = TableBuckets(tables, "s1")(ctx, "ghost", "status", "")
	assert.ErrorIs(t, err, datatable.ErrUnknownTable)
}
