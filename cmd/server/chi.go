package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	tablehttp "github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable/httpapi"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/dashboard"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/goadmin"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

func newChiRouter(app *dashboard.App, menu *goadmin.MemoryMenu, renderer datatable.Renderer) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/menu", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(menu.Items(menuCode))
	})
	r.Mount(tablesPath, app.TableHandlers(renderer, tablesPath).Routes())
	r.Route(dashboardPath, func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(logging.Middleware)
		r.Use(middleware.Recoverer)
		r.Use(tablehttp.SessionMiddleware)
		app.DashboardHandlers().Register(r)
		r.Get("/events", app.Feed.ServeSSE)
	})
	return r
}

func serveChi(ctx context.Context, addr string, app *dashboard.App, menu *goadmin.MemoryMenu) error {
	renderer, err := datatable.NewTemplateRenderer()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           newChiRouter(app, menu, renderer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("dashboard shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
