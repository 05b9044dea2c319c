package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

type stubLayoutService struct {
	calls int
}

func (s *stubLayoutService) ConfigureLayout(context.Context, dashboard.ViewerContext) (dashboard.Layout, error) {
	s.calls++
	return dashboard.Layout{}, nil
}

type stubChartService struct {
	calls   int
	buckets []datatable.Bucket
}

func (s *stubChartService) RenderWidget(ctx context.Context, widgetID string, source dashboard.BucketSource) (dashboard.WidgetView, error) {
	s.calls++
	buckets, err := source(ctx, "users", "status", "")
	if err != nil {
		return dashboard.WidgetView{}, err
	}
	s.buckets = buckets
	return dashboard.WidgetView{Widget: dashboard.Widget{ID: widgetID}, Buckets: buckets}, nil
}

func TestLayoutQuery(t *testing.T) {
	service := &stubLayoutService{}
	query := NewLayoutQuery(service)
	if _, err := query.Query(context.Background(), dashboard.ViewerContext{}); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 {
		t.Fatalf("expected 1 call, got %d", service.calls)
	}
	if _, err := NewLayoutQuery(nil).Query(context.Background(), dashboard.ViewerContext{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestWidgetChartQuery(t *testing.T) {
	tables := datatable.NewService(datatable.Options{})
	schema := datatable.MustSchema(
		func(r datatable.MapRow) string { return r["id"].(string) },
		datatable.Field("status", "Status", datatable.MapField("status")),
	)
	err := tables.Register("users", func(ctx context.Context, session string) (datatable.Handle, error) {
		return datatable.NewMount(ctx, schema, datatable.MountOptions[datatable.MapRow]{
			Table: datatable.TableOptions{Name: "users", Session: session},
			Rows: []datatable.MapRow{
				{"id": "1", "status": "active"},
				{"id": "2", "status": "active"},
			},
		})
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	service := &stubChartService{}
	query := NewWidgetChartQuery(service, tables)

	view, err := query.Query(context.Background(), WidgetChartInput{Session: "s1", WidgetID: "users-by-status"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if view.Widget.ID != "users-by-status" || len(service.buckets) != 1 || service.buckets[0].Count != 2 {
		t.Fatalf("unexpected view %#v", view)
	}
	if _, err := query.Query(context.Background(), WidgetChartInput{WidgetID: "x"}); !errors.Is(err, datatable.ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
}

func TestWidgetChartQueryWaitsForInitialLoad(t *testing.T) {
	tables := datatable.NewService(datatable.Options{})
	schema := datatable.MustSchema(
		func(r datatable.MapRow) string { return r["id"].(string) },
		datatable.Field("status", "Status", datatable.MapField("status")),
	)
	err := tables.Register("users", datatable.MountFactory(schema, datatable.MountOptions[datatable.MapRow]{
		Table: datatable.TableOptions{Name: "users"},
		Fetch: func(context.Context) ([]datatable.MapRow, error) {
			return []datatable.MapRow{
				{"id": "1", "status": "active"},
				{"id": "2", "status": "paused"},
			}, nil
		},
		Delay: 30 * time.Millisecond,
	}))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	defer tables.Close()
	service := &stubChartService{}
	query := NewWidgetChartQuery(service, tables)

	if _, err := query.Query(context.Background(), WidgetChartInput{Session: "fresh", WidgetID: "users-by-status"}); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(service.buckets) != 2 {
		t.Fatalf("expected buckets from the loaded rows, got %#v", service.buckets)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := query.Query(ctx, WidgetChartInput{Session: "cancelled", WidgetID: "users-by-status"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
