package gorouter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/commands"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/httpapi"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/queries"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

// Registrar is the part of router.Router the dashboard routes need.
type Registrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dashboard service, its commands and the layout feed.
type Config struct {
	Router         Registrar
	Service        *dashboard.Service
	Tables         *datatable.Service
	Feed           *dashboard.LayoutFeed
	Telemetry      commands.Telemetry
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Layout     string
	Move       string
	Reorder    string
	Visibility string
	Chart      string
	WebSocket  string
}

// Register mounts dashboard routes (JSON, chart HTML, WebSocket) on a go-router router.
func Register(cfg Config) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Service == nil {
		return errors.New("gorouter: dashboard service is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = "/dashboard"
	}
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = defaultViewerResolver
	}

	layout := queries.NewLayoutQuery(cfg.Service)
	move := commands.NewMoveWidgetCommand(cfg.Service, cfg.Telemetry)
	reorder := commands.NewReorderWidgetsCommand(cfg.Service, cfg.Telemetry)
	hide := commands.NewSetWidgetHiddenCommand(cfg.Service, cfg.Telemetry)

	cfg.Router.Get(base+routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		out, err := layout.Query(ctx.Context(), resolver(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, out)
	}))

	cfg.Router.Post(base+routes.Move, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.MovePayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		var order []string
		err := move.Execute(ctx.Context(), commands.MoveWidgetInput{
			Viewer:   resolver(ctx),
			AreaCode: payload.AreaCode,
			ActiveID: payload.ActiveID,
			OverID:   payload.OverID,
			Result:   &order,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, httpapi.OrderResponse{AreaCode: payload.AreaCode, WidgetIDs: order})
	}))

	cfg.Router.Post(base+routes.Reorder, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.ReorderPayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		var order []string
		err := reorder.Execute(ctx.Context(), commands.ReorderWidgetsInput{
			Viewer:    resolver(ctx),
			AreaCode:  payload.AreaCode,
			WidgetIDs: payload.WidgetIDs,
			Result:    &order,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, httpapi.OrderResponse{AreaCode: payload.AreaCode, WidgetIDs: order})
	}))

	cfg.Router.Post(base+routes.Visibility, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.VisibilityPayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		err := hide.Execute(ctx.Context(), commands.SetWidgetHiddenInput{
			Viewer:   resolver(ctx),
			WidgetID: payload.WidgetID,
			Hidden:   payload.Hidden,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	if cfg.Tables != nil {
		chart := queries.NewWidgetChartQuery(cfg.Service, cfg.Tables)
		cfg.Router.Get(base+routes.Chart, router.WrapHandler(func(ctx router.Context) error {
			view, err := chart.Query(ctx.Context(), queries.WidgetChartInput{
				Session:  sessionOf(ctx),
				WidgetID: ctx.Param("id"),
			})
			if err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send([]byte(view.HTML))
		}))
	}

	if cfg.Feed != nil {
		registerWebSocket(cfg.Router, cfg.Feed, base+routes.WebSocket)
	}
	return nil
}

func registerWebSocket(r Registrar, feed *dashboard.LayoutFeed, path string) {
	r.WebSocket(path, router.DefaultWebSocketConfig(), func(ws router.WebSocketContext) error {
		user := ""
		if q, ok := ws.(interface {
			Query(string, ...string) string
		}); ok {
			user = q.Query("user")
		}
		if user == "" {
			return ws.Close()
		}
		events, cancel := feed.Subscribe(user)
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if viewer.UserID == "" {
		viewer.UserID = strings.TrimSpace(ctx.Header("X-User-ID"))
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func sessionOf(ctx router.Context) string {
	if session := strings.TrimSpace(ctx.Header("X-Table-Session")); session != "" {
		return session
	}
	return strings.TrimSpace(ctx.Query("session"))
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(ctx.Header("Accept-Language"))
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token = strings.TrimSpace(token); token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Layout == "" {
		routes.Layout = "/layout"
	}
	if routes.Move == "" {
		routes.Move = "/widgets/move"
	}
	if routes.Reorder == "" {
		routes.Reorder = "/widgets/reorder"
	}
	if routes.Visibility == "" {
		routes.Visibility = "/widgets/visibility"
	}
	if routes.Chart == "" {
		routes.Chart = "/widgets/:id/chart"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
