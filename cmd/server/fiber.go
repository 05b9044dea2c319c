package main

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
	dashrouter "github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/gorouter"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	tablerouter "github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable/gorouter"
	app "github.com/abdurrahmanshkh/admybrand-dashboard/pkg/dashboard"
)

func serveFiber(ctx context.Context, addr string, a *app.App) error {
	renderer, err := datatable.NewTemplateRenderer()
	if err != nil {
		return err
	}
	var server router.Server[*fiber.App] = router.NewFiberAdapter()
	routes := server.Router()

	if err := tablerouter.Register(tablerouter.Config{
		Router:    routes,
		API:       a.TableAPI,
		Renderer:  renderer,
		Broadcast: a.Broadcast,
		BasePath:  tablesPath,
	}); err != nil {
		return err
	}
	if err := dashrouter.Register(dashrouter.Config{
		Router:  routes,
		Service: a.Dashboard,
		Tables:  a.Tables,
		Feed:    a.Feed,
		ViewerResolver: func(ctx router.Context) dashboard.ViewerContext {
			return dashboard.ViewerContext{UserID: ctx.Header("X-User-ID"), Locale: "en"}
		},
		BasePath: dashboardPath,
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("dashboard shutting down")
		return server.Shutdown(context.Background())
	}
}
