// Package dashboard assembles the table engine, the stock tables and the widget
// overview into one application the binaries serve.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	core "github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
	dashcommands "github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/commands"
	dashhttp "github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/httpapi"
	dashqueries "github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/queries"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	tablehttp "github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable/httpapi"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/activity"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/analytics"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

// Config wires the application.
type Config struct {
	Users     analytics.UserSource
	Campaigns analytics.CampaignSource
	LoadDelay time.Duration
	// Manifest declares extra tables over untyped rows.
	Manifest        *datatable.ManifestDocument
	ActivityHooks   activity.Hooks
	ActivityEnabled bool
	ChartAssetsHost string
	Telemetry       Telemetry
	// SessionIdle and MaxSessions bound the per-session table mounts.
	SessionIdle time.Duration
	MaxSessions int
}

// Telemetry receives engine and dashboard events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// LogTelemetry writes telemetry events to the request logger at debug level.
type LogTelemetry struct{}

// Record implements Telemetry.
func (LogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	args := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		args = append(args, k, v)
	}
	logging.FromContext(ctx).Debug(event, args...)
}

// App holds the assembled services.
type App struct {
	Tables    *datatable.Service
	Broadcast *datatable.BroadcastHook
	TableAPI  *tablehttp.API
	Dashboard *core.Service
	Feed      *core.LayoutFeed
	Activity  *activity.Emitter
	telemetry Telemetry
}

// New registers the stock tables plus any manifest tables and builds the overview.
func New(cfg Config) (*App, error) {
	if cfg.Users == nil && cfg.Campaigns == nil && cfg.Manifest == nil {
		return nil, errors.New("dashboard: no table sources configured")
	}
	telemetry := cfg.Telemetry
	if telemetry == nil {
		telemetry = LogTelemetry{}
	}
	app := &App{
		Tables: datatable.NewService(datatable.Options{
			Telemetry:   telemetry,
			SessionIdle: cfg.SessionIdle,
			MaxSessions: cfg.MaxSessions,
		}),
		Broadcast: datatable.NewBroadcastHook(),
		Feed:      core.NewLayoutFeed(),
		Activity:  activity.NewEmitter(cfg.ActivityHooks, activity.Config{Enabled: cfg.ActivityEnabled}),
		telemetry: telemetry,
	}
	app.TableAPI = tablehttp.NewAPI(app.Tables, telemetry)

	if err := analytics.RegisterTables(app.Tables, analytics.TablesConfig{
		Users:     cfg.Users,
		Campaigns: cfg.Campaigns,
		Delay:     cfg.LoadDelay,
		Activity:  app.Activity,
		Refresh:   app.Broadcast,
	}); err != nil {
		return nil, err
	}
	if cfg.Manifest != nil {
		if err := app.registerManifest(cfg.Manifest, cfg.LoadDelay); err != nil {
			return nil, err
		}
	}

	var chartOpts []core.ChartOption
	if cfg.ChartAssetsHost != "" {
		chartOpts = append(chartOpts, core.WithChartAssetsHost(cfg.ChartAssetsHost))
	}
	app.Dashboard = core.NewService(core.Options{
		Charts:    core.NewChartRenderer(chartOpts...),
		Telemetry: telemetry,
		Refresh:   app.Feed,
	})
	return app, nil
}

func (a *App) registerManifest(doc *datatable.ManifestDocument, delay time.Duration) error {
	for _, tm := range doc.Tables {
		schema, err := tm.Schema()
		if err != nil {
			return fmt.Errorf("dashboard: manifest table %s: %w", tm.Name, err)
		}
		table := tm
		opts := table.Options()
		opts.Refresh = a.Broadcast
		factory := datatable.MountFactory(schema, datatable.MountOptions[datatable.MapRow]{
			Table: opts,
			Fetch: func(context.Context) ([]datatable.MapRow, error) {
				return doc.ReadRows(table)
			},
			Delay:    delay,
			Activity: a.Activity,
		})
		if err := a.Tables.Register(tm.Name, factory); err != nil {
			return err
		}
	}
	return nil
}

// DashboardHandlers returns the overview endpoints. Charts aggregate over the caller's
// table session so they follow the filters applied to the tables.
func (a *App) DashboardHandlers() *dashhttp.Handlers {
	return &dashhttp.Handlers{
		Move:    dashcommands.NewMoveWidgetCommand(a.Dashboard, a.telemetry),
		Reorder: dashcommands.NewReorderWidgetsCommand(a.Dashboard, a.telemetry),
		Hide:    dashcommands.NewSetWidgetHiddenCommand(a.Dashboard, a.telemetry),
		Layout:  dashqueries.NewLayoutQuery(a.Dashboard),
		Chart:   dashqueries.NewWidgetChartQuery(a.Dashboard, a.Tables),
		Session: func(r *http.Request) string {
			return tablehttp.SessionFrom(r.Context())
		},
	}
}

// TableHandlers returns the table endpoints, rendering pages with renderer when set.
func (a *App) TableHandlers(renderer datatable.Renderer, basePath string) *tablehttp.Handlers {
	return &tablehttp.Handlers{
		API:       a.TableAPI,
		Renderer:  renderer,
		Broadcast: a.Broadcast,
		BasePath:  basePath,
	}
}

// Close unmounts every table session and cancels pending loads.
func (a *App) Close() {
	a.Tables.Close()
}
