package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

const maxBody = 1 << 16

// Handlers exposes the table API over chi.
type Handlers struct {
	API       *API
	Renderer  datatable.Renderer
	Broadcast *datatable.BroadcastHook
	// BasePath is where the routes are mounted; links in rendered pages use it.
	BasePath string
}

// Routes returns a router with request ids, request logging and table sessions applied.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(SessionMiddleware)

	if h.Broadcast != nil {
		r.Get("/events", h.HandleEvents)
		r.Get("/ws", h.HandleWebSocket)
	}
	r.Delete("/session", h.HandleEndSession)

	r.Route("/{table}", func(r chi.Router) {
		r.Get("/", h.HandleSnapshot)
		r.Get("/page", h.HandlePage)
		r.Post("/sort/{column}", h.HandleSort)
		r.Post("/filter", h.HandleFilter)
		r.Post("/page", h.HandleSetPage)
		r.Post("/page-size", h.HandlePageSize)
		r.Post("/view", h.HandleApplyView)
		r.Post("/columns/{column}/toggle", h.HandleToggleColumn)
		r.Post("/rows/toggle-all", h.HandleToggleAll)
		r.Delete("/rows/selection", h.HandleClearSelection)
		r.Post("/rows/{row}/toggle", h.HandleToggleRow)
		r.Delete("/rows/selected", h.HandleDeleteSelected)
		r.Get("/export", h.HandleExport)
		r.Post("/export", h.HandleExport)
		r.Get("/aggregate", h.HandleAggregate)
	})
	return r
}

func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.API.Snapshot(r.Context(), tableRef(r))
	respond(w, r, snap, err)
}

// HandlePage renders the HTML table. A "filter" query parameter is applied first.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	ref := tableRef(r)
	if filter, ok := r.URL.Query()["filter"]; ok {
		body, _ := json.Marshal(FilterPayload{Filter: strings.Join(filter, " ")})
		if _, err := h.API.SetFilter(r.Context(), ref, body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	snap, err := h.API.Snapshot(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	base := strings.TrimRight(h.BasePath, "/") + "/" + ref.Table
	if err := datatable.RenderPage(h.Renderer, snap, base, w); err != nil {
		writeError(w, r, err)
	}
}

func (h *Handlers) HandleSort(w http.ResponseWriter, r *http.Request) {
	snap, err := h.API.ToggleSort(r.Context(), tableRef(r), chi.URLParam(r, "column"))
	respond(w, r, snap, err)
}

func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	h.withBody(w, r, func(body []byte) (any, error) {
		return h.API.SetFilter(r.Context(), tableRef(r), body)
	})
}

func (h *Handlers) HandleSetPage(w http.ResponseWriter, r *http.Request) {
	h.withBody(w, r, func(body []byte) (any, error) {
		return h.API.SetPage(r.Context(), tableRef(r), body)
	})
}

func (h *Handlers) HandlePageSize(w http.ResponseWriter, r *http.Request) {
	h.withBody(w, r, func(body []byte) (any, error) {
		return h.API.SetPageSize(r.Context(), tableRef(r), body)
	})
}

func (h *Handlers) HandleApplyView(w http.ResponseWriter, r *http.Request) {
	h.withBody(w, r, func(body []byte) (any, error) {
		return h.API.ApplyView(r.Context(), tableRef(r), body)
	})
}

func (h *Handlers) HandleToggleColumn(w http.ResponseWriter, r *http.Request) {
	snap, err := h.API.ToggleColumn(r.Context(), tableRef(r), chi.URLParam(r, "column"))
	respond(w, r, snap, err)
}

func (h *Handlers) HandleToggleRow(w http.ResponseWriter, r *http.Request) {
	snap, err := h.API.ToggleRow(r.Context(), tableRef(r), chi.URLParam(r, "row"))
	respond(w, r, snap, err)
}

func (h *Handlers) HandleToggleAll(w http.ResponseWriter, r *http.Request) {
	h.withBody(w, r, func(body []byte) (any, error) {
		return h.API.ToggleAll(r.Context(), tableRef(r), body)
	})
}

func (h *Handlers) HandleClearSelection(w http.ResponseWriter, r *http.Request) {
	snap, err := h.API.ClearSelection(r.Context(), tableRef(r))
	respond(w, r, snap, err)
}

func (h *Handlers) HandleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	result, err := h.API.DeleteSelected(r.Context(), tableRef(r))
	respond(w, r, result, err)
}

// HandleExport serves a download. GET reads scope, format and title from the query,
// POST reads an ExportRequest body.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var (
		file datatable.ExportFile
		err  error
	)
	ref := tableRef(r)
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		file, err = h.API.ExportRequest(r.Context(), ref, datatable.ExportRequest{
			Scope:  datatable.ExportScope(q.Get("scope")),
			Format: datatable.ExportFormat(q.Get("format")),
			Title:  q.Get("title"),
		})
	} else {
		var body []byte
		if body, err = readBody(r); err == nil {
			file, err = h.API.Export(r.Context(), ref, body)
		}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("X-Export-Rows", fmt.Sprint(file.Rows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func (h *Handlers) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	buckets, err := h.API.Aggregate(r.Context(), tableRef(r), q.Get("group_by"), q.Get("metric"))
	respond(w, r, buckets, err)
}

// HandleEndSession unmounts the caller's tables.
func (h *Handlers) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.API.EndSession(r.Context(), SessionFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvents streams the caller's table events as Server-Sent Events.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	h.Broadcast.ServeSSE(w, scopedToSession(r))
}

// HandleWebSocket streams the caller's table events over a WebSocket.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.Broadcast.ServeWebSocket(w, scopedToSession(r))
}

func (h *Handlers) withBody(w http.ResponseWriter, r *http.Request, apply func([]byte) (any, error)) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := apply(body)
	respond(w, r, out, err)
}

func scopedToSession(r *http.Request) *http.Request {
	q := r.URL.Query()
	if q.Get("session") != "" {
		return r
	}
	q.Set("session", SessionFrom(r.Context()))
	clone := r.Clone(r.Context())
	clone.URL.RawQuery = q.Encode()
	return clone
}

func tableRef(r *http.Request) datatable.TableRef {
	return datatable.TableRef{Session: SessionFrom(r.Context()), Table: chi.URLParam(r, "table")}
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", datatable.ErrInvalidRequest, err)
	}
	return body, nil
}

func respond(w http.ResponseWriter, r *http.Request, payload any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	log := logging.WithFields(r.Context(), "path", r.URL.Path, "status", status)
	if status >= http.StatusInternalServerError {
		log.Error("table request failed", "error", err)
	} else {
		log.Debug("table request rejected", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
