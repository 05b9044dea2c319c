package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/activity"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/activity/usersink"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/analytics"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/config"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/dashboard"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/goadmin"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

const (
	tablesPath    = "/tables"
	dashboardPath = "/dashboard"
	menuCode      = "admin.main"
	sweepInterval = time.Minute
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var cfg config.Server
	kctx := kong.Parse(&cfg,
		kong.Name("dashboard-server"),
		kong.Description("Serves the marketing dashboard tables and overview charts."),
		kong.UsageOnError(),
	)
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.FatalIfErrorf(run(ctx, cfg))
}

func run(ctx context.Context, cfg config.Server) error {
	app, menu, err := build(cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	go app.Tables.RunSweeper(ctx, sweepInterval)

	slog.Info("dashboard starting",
		"addr", cfg.Addr,
		"transport", cfg.Transport,
		"tables", app.Tables.Tables(),
	)
	switch cfg.Transport {
	case "fiber":
		return serveFiber(ctx, cfg.Addr, app)
	default:
		return serveChi(ctx, cfg.Addr, app, menu)
	}
}

func build(cfg config.Server) (*dashboard.App, *goadmin.MemoryMenu, error) {
	appCfg := dashboard.Config{
		LoadDelay:       cfg.Feed.LoadDelay,
		ActivityEnabled: cfg.Activity,
		ActivityHooks:   activity.Hooks{usersink.Hook{Sink: usersink.LogSink{}}},
		ChartAssetsHost: cfg.ChartAssets,
		SessionIdle:     cfg.SessionIdle,
		MaxSessions:     cfg.MaxSessions,
	}
	if cfg.Feed.URL != "" {
		client, err := analytics.NewHTTPClient(analytics.HTTPConfig{BaseURL: cfg.Feed.URL, APIKey: cfg.Feed.APIKey})
		if err != nil {
			return nil, nil, err
		}
		appCfg.Users, appCfg.Campaigns = client, client
	} else {
		client := analytics.NewMockClient(analytics.DefaultMockData(cfg.Feed.Seed))
		appCfg.Users, appCfg.Campaigns = client, client
	}
	if cfg.Manifest != "" {
		doc, err := datatable.ReadManifest(cfg.Manifest)
		if err != nil {
			return nil, nil, err
		}
		appCfg.Manifest = doc
	}
	app, err := dashboard.New(appCfg)
	if err != nil {
		return nil, nil, err
	}

	menu := goadmin.NewMemoryMenu()
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		MenuCode:        menuCode,
		MenuBuilder:     menu,
		Tables:          app.Tables,
		TablesPath:      tablesPath,
		OverviewItem:    goadmin.MenuItem{Route: dashboardPath + "/layout"},
		Icons: map[string]string{
			analytics.UsersTable:     "users",
			analytics.CampaignsTable: "megaphone",
		},
	})
	if err != nil {
		app.Close()
		return nil, nil, err
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		app.Close()
		return nil, nil, err
	}
	return app, menu, nil
}
