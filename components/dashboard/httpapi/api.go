package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	gocommand "github.com/goliatone/go-command"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/commands"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard/queries"
)

// ViewerResolver identifies the viewer of a request.
type ViewerResolver func(*http.Request) dashboard.ViewerContext

// Handlers exposes widget layout endpoints backed by shared commands and queries.
type Handlers struct {
	Move    gocommand.Commander[commands.MoveWidgetInput]
	Reorder gocommand.Commander[commands.ReorderWidgetsInput]
	Hide    gocommand.Commander[commands.SetWidgetHiddenInput]
	Layout  gocommand.Querier[dashboard.ViewerContext, dashboard.Layout]
	Chart   gocommand.Querier[queries.WidgetChartInput, dashboard.WidgetView]
	Viewer  ViewerResolver
	// Session resolves the table session charts aggregate over.
	Session func(*http.Request) string
}

// MovePayload is a drag end: ActiveID was dropped on OverID.
type MovePayload struct {
	AreaCode string `json:"area_code"`
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

// ReorderPayload replaces the order of an area.
type ReorderPayload struct {
	AreaCode  string   `json:"area_code"`
	WidgetIDs []string `json:"widget_ids"`
}

// VisibilityPayload hides or restores a widget.
type VisibilityPayload struct {
	WidgetID string `json:"widget_id"`
	Hidden   bool   `json:"hidden"`
}

// OrderResponse is the stored order after a move or reorder.
type OrderResponse struct {
	AreaCode  string   `json:"area_code"`
	WidgetIDs []string `json:"widget_ids"`
}

// Register mounts the handlers on r.
func (h *Handlers) Register(r chi.Router) {
	r.Get("/layout", h.HandleLayout)
	r.Post("/widgets/move", h.HandleMoveWidget)
	r.Post("/widgets/reorder", h.HandleReorderWidgets)
	r.Post("/widgets/visibility", h.HandleWidgetVisibility)
	r.Get("/widgets/{id}/chart", func(w http.ResponseWriter, r *http.Request) {
		h.HandleWidgetChart(w, r, chi.URLParam(r, "id"))
	})
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.Layout.Query(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *Handlers) HandleMoveWidget(w http.ResponseWriter, r *http.Request) {
	var payload MovePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var order []string
	err := h.Move.Execute(r.Context(), commands.MoveWidgetInput{
		Viewer:   h.viewer(r),
		AreaCode: payload.AreaCode,
		ActiveID: payload.ActiveID,
		OverID:   payload.OverID,
		Result:   &order,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderResponse{AreaCode: payload.AreaCode, WidgetIDs: order})
}

func (h *Handlers) HandleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var payload ReorderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var order []string
	err := h.Reorder.Execute(r.Context(), commands.ReorderWidgetsInput{
		Viewer:    h.viewer(r),
		AreaCode:  payload.AreaCode,
		WidgetIDs: payload.WidgetIDs,
		Result:    &order,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderResponse{AreaCode: payload.AreaCode, WidgetIDs: order})
}

func (h *Handlers) HandleWidgetVisibility(w http.ResponseWriter, r *http.Request) {
	var payload VisibilityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err := h.Hide.Execute(r.Context(), commands.SetWidgetHiddenInput{
		Viewer:   h.viewer(r),
		WidgetID: payload.WidgetID,
		Hidden:   payload.Hidden,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleWidgetChart renders one widget. The "format" query parameter "html" returns the
// chart page, anything else the JSON view.
func (h *Handlers) HandleWidgetChart(w http.ResponseWriter, r *http.Request, widgetID string) {
	session := ""
	if h.Session != nil {
		session = h.Session(r)
	}
	view, err := h.Chart.Query(r.Context(), queries.WidgetChartInput{Session: session, WidgetID: widgetID})
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(view.HTML))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return dashboard.ViewerContext{UserID: r.Header.Get("X-User-ID"), Locale: r.Header.Get("Accept-Language")}
}

// StatusFor maps dashboard errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrUnknownArea), errors.Is(err, dashboard.ErrUnknownWidget):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrViewerRequired):
		return http.StatusUnauthorized
	case errors.Is(err, dashboard.ErrAreaRequired), errors.Is(err, dashboard.ErrNoChartData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
