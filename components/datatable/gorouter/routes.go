package gorouter

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable/httpapi"
)

// Registrar is the part of router.Router the table routes need.
type Registrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// SessionResolver extracts the table session from a request.
type SessionResolver func(router.Context) string

// Config wires go-router with the table API.
type Config struct {
	Router          Registrar
	API             *httpapi.API
	Renderer        datatable.Renderer
	Broadcast       *datatable.BroadcastHook
	SessionResolver SessionResolver
	BasePath        string
}

// Register mounts the table routes (JSON, HTML, exports, WebSocket) on a go-router router.
func Register(cfg Config) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api is required")
	}
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = "/tables"
	}
	resolve := cfg.SessionResolver
	if resolve == nil {
		resolve = defaultSessionResolver
	}
	api := cfg.API
	table := base + "/:table"
	ref := func(ctx router.Context) datatable.TableRef {
		return datatable.TableRef{Session: resolve(ctx), Table: ctx.Param("table")}
	}

	cfg.Router.Get(table, router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.Snapshot(ctx.Context(), ref(ctx))
		return respond(ctx, snap, err)
	}))

	if cfg.Renderer != nil {
		cfg.Router.Get(table+"/page", router.WrapHandler(func(ctx router.Context) error {
			r := ref(ctx)
			snap, err := api.Snapshot(ctx.Context(), r)
			if err != nil {
				return respondError(ctx, err)
			}
			var buf bytes.Buffer
			if err := datatable.RenderPage(cfg.Renderer, snap, base+"/"+r.Table, &buf); err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}

	cfg.Router.Post(table+"/sort/:column", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.ToggleSort(ctx.Context(), ref(ctx), ctx.Param("column"))
		return respond(ctx, snap, err)
	}))
	cfg.Router.Post(table+"/filter", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.SetFilter(ctx.Context(), ref(ctx), ctx.Body())
		return respond(ctx, snap, err)
	}))
	cfg.Router.Post(table+"/page", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.SetPage(ctx.Context(), ref(ctx), ctx.Body())
		return respond(ctx, snap, err)
	}))
	cfg.Router.Post(table+"/page-size", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.SetPageSize(ctx.Context(), ref(ctx), ctx.Body())
		return respond(ctx, snap, err)
	}))
	cfg.Router.Post(table+"/view", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.ApplyView(ctx.Context(), ref(ctx), ctx.Body())
		return respond(ctx, snap, err)
	}))
	cfg.Router.Post(table+"/columns/:column/toggle", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.ToggleColumn(ctx.Context(), ref(ctx), ctx.Param("column"))
		return respond(ctx, snap, err)
	}))
	cfg.Router.Post(table+"/rows/toggle-all", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.ToggleAll(ctx.Context(), ref(ctx), ctx.Body())
		return respond(ctx, snap, err)
	}))
	cfg.Router.Post(table+"/rows/:row/toggle", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.ToggleRow(ctx.Context(), ref(ctx), ctx.Param("row"))
		return respond(ctx, snap, err)
	}))
	cfg.Router.Delete(table+"/rows/selection", router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.ClearSelection(ctx.Context(), ref(ctx))
		return respond(ctx, snap, err)
	}))
	cfg.Router.Delete(table+"/rows/selected", router.WrapHandler(func(ctx router.Context) error {
		result, err := api.DeleteSelected(ctx.Context(), ref(ctx))
		return respond(ctx, result, err)
	}))
	cfg.Router.Get(table+"/export", router.WrapHandler(func(ctx router.Context) error {
		file, err := api.ExportRequest(ctx.Context(), ref(ctx), exportRequestFrom(func(key string) string {
			return ctx.Query(key)
		}))
		return sendFile(ctx, file, err)
	}))
	cfg.Router.Post(table+"/export", router.WrapHandler(func(ctx router.Context) error {
		file, err := api.Export(ctx.Context(), ref(ctx), ctx.Body())
		return sendFile(ctx, file, err)
	}))
	cfg.Router.Get(table+"/aggregate", router.WrapHandler(func(ctx router.Context) error {
		buckets, err := api.Aggregate(ctx.Context(), ref(ctx), ctx.Query("group_by"), ctx.Query("metric"))
		return respond(ctx, buckets, err)
	}))
	cfg.Router.Delete(base+"/session", router.WrapHandler(func(ctx router.Context) error {
		if err := api.EndSession(ctx.Context(), resolve(ctx)); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "unmounted"})
	}))

	if cfg.Broadcast != nil {
		registerWebSocket(cfg.Router, cfg.Broadcast, base+"/ws")
	}
	return nil
}

func registerWebSocket(r Registrar, hook *datatable.BroadcastHook, path string) {
	r.WebSocket(path, router.DefaultWebSocketConfig(), func(ws router.WebSocketContext) error {
		session := ""
		if q, ok := ws.(interface {
			Query(string, ...string) string
		}); ok {
			session = q.Query("session")
		}
		err := hook.Stream(ws.Context(), session, func(event datatable.TableEvent) error {
			return ws.WriteJSON(event)
		})
		if err != nil {
			return err
		}
		return ws.Close()
	})
}

func exportRequestFrom(get func(string) string) datatable.ExportRequest {
	return datatable.ExportRequest{
		Scope:  datatable.ExportScope(get("scope")),
		Format: datatable.ExportFormat(get("format")),
		Title:  get("title"),
	}
}

func defaultSessionResolver(ctx router.Context) string {
	if session := strings.TrimSpace(ctx.Header(httpapi.SessionHeader)); session != "" {
		return session
	}
	if session, ok := ctx.Locals("session").(string); ok && session != "" {
		return session
	}
	return strings.TrimSpace(ctx.Query("session"))
}

func sendFile(ctx router.Context, file datatable.ExportFile, err error) error {
	if err != nil {
		return respondError(ctx, err)
	}
	ctx.SetHeader("Content-Type", file.ContentType)
	ctx.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	return ctx.Send(file.Data)
}

func respond(ctx router.Context, payload any, err error) error {
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, payload)
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), map[string]string{"error": err.Error()})
}
