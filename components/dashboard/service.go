package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

// Options configures the dashboard service.
type Options struct {
	Areas       []Area
	Preferences PreferenceStore
	Charts      *ChartRenderer
	Telemetry   Telemetry
	Refresh     RefreshHook
}

// Service resolves widget areas per viewer and applies drag-and-drop reorders.
type Service struct {
	areas     []Area
	prefs     PreferenceStore
	charts    *ChartRenderer
	telemetry Telemetry
	refresh   RefreshHook
}

// NewService builds a service. Areas default to DefaultAreas.
func NewService(opts Options) *Service {
	areas := opts.Areas
	if len(areas) == 0 {
		areas = DefaultAreas()
	}
	s := &Service{
		areas:     make([]Area, len(areas)),
		prefs:     opts.Preferences,
		charts:    opts.Charts,
		telemetry: normalizeTelemetry(opts.Telemetry),
		refresh:   opts.Refresh,
	}
	for i, area := range areas {
		area.Widgets = append([]Widget(nil), area.Widgets...)
		s.areas[i] = area
	}
	if s.prefs == nil {
		s.prefs = NewInMemoryPreferenceStore()
	}
	if s.charts == nil {
		s.charts = NewChartRenderer()
	}
	if s.refresh == nil {
		s.refresh = noopRefreshHook{}
	}
	return s
}

// ConfigureLayout resolves every area with the viewer's order and hidden widgets applied.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	overrides, err := s.prefs.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, fmt.Errorf("dashboard: load preferences: %w", err)
	}
	layout := Layout{Areas: make([]Area, 0, len(s.areas))}
	for _, area := range s.areas {
		ordered := applyOrderOverride(area.Widgets, overrides.AreaOrder[area.Code])
		area.Widgets = applyHiddenFilter(ordered, overrides.HiddenWidgets)
		layout.Areas = append(layout.Areas, area)
	}
	s.telemetry.Record(ctx, "dashboard.layout.resolve", map[string]any{"viewer": viewer.UserID})
	return layout, nil
}

// MoveWidget drops activeID onto the position of overID and persists the new order.
// Dropping a widget onto itself or onto an unknown widget leaves the order unchanged.
func (s *Service) MoveWidget(ctx context.Context, viewer ViewerContext, areaCode, activeID, overID string) ([]string, error) {
	order, overrides, err := s.currentOrder(ctx, viewer, areaCode)
	if err != nil {
		return nil, err
	}
	from := indexOf(order, activeID)
	if from < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidget, activeID)
	}
	to := indexOf(order, overID)
	if to < 0 || from == to {
		return order, nil
	}
	next := ArrayMove(order, from, to)
	if err := s.saveOrder(ctx, viewer, areaCode, next, overrides); err != nil {
		return nil, err
	}
	s.telemetry.Record(ctx, "dashboard.widget.move", map[string]any{
		"area_code": areaCode,
		"active_id": activeID,
		"over_id":   overID,
	})
	s.notify(ctx, viewer, areaCode, next, "move")
	return next, nil
}

// ReorderWidgets stores an explicit order. Unknown ids are ignored and missing ids keep
// their relative order after the listed ones.
func (s *Service) ReorderWidgets(ctx context.Context, viewer ViewerContext, areaCode string, ids []string) ([]string, error) {
	area, err := s.area(areaCode)
	if err != nil {
		return nil, err
	}
	overrides, err := s.prefs.LayoutOverrides(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("dashboard: load preferences: %w", err)
	}
	next := widgetIDs(applyOrderOverride(area.Widgets, ids))
	if err := s.saveOrder(ctx, viewer, areaCode, next, overrides); err != nil {
		return nil, err
	}
	s.telemetry.Record(ctx, "dashboard.widget.reorder", map[string]any{
		"area_code": areaCode,
		"count":     len(ids),
	})
	s.notify(ctx, viewer, areaCode, next, "reorder")
	return next, nil
}

// SetWidgetHidden hides or restores a widget for the viewer.
func (s *Service) SetWidgetHidden(ctx context.Context, viewer ViewerContext, widgetID string, hidden bool) error {
	if viewer.UserID == "" {
		return ErrViewerRequired
	}
	if _, _, ok := s.widget(widgetID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, widgetID)
	}
	overrides, err := s.prefs.LayoutOverrides(ctx, viewer)
	if err != nil {
		return fmt.Errorf("dashboard: load preferences: %w", err)
	}
	if overrides.HiddenWidgets == nil {
		overrides.HiddenWidgets = map[string]bool{}
	}
	if hidden {
		overrides.HiddenWidgets[widgetID] = true
	} else {
		delete(overrides.HiddenWidgets, widgetID)
	}
	if err := s.prefs.SaveLayoutOverrides(ctx, viewer, overrides); err != nil {
		return fmt.Errorf("dashboard: save preferences: %w", err)
	}
	s.telemetry.Record(ctx, "dashboard.widget.visibility", map[string]any{
		"widget_id": widgetID,
		"hidden":    hidden,
	})
	return nil
}

// RenderWidget aggregates the widget's table through source and renders its chart.
func (s *Service) RenderWidget(ctx context.Context, widgetID string, source BucketSource) (WidgetView, error) {
	_, widget, ok := s.widget(widgetID)
	if !ok {
		return WidgetView{}, fmt.Errorf("%w: %s", ErrUnknownWidget, widgetID)
	}
	if source == nil {
		return WidgetView{}, fmt.Errorf("dashboard: widget %s requires a data source", widgetID)
	}
	buckets, err := source(ctx, widget.Table, widget.GroupBy, widget.Metric)
	if err != nil {
		return WidgetView{}, err
	}
	html, err := s.charts.Render(ChartRequest{
		Key:    widget.ID,
		Kind:   widget.Kind,
		Title:  widget.Title,
		Metric: widget.Metric,
	}, buckets)
	if err != nil {
		logging.WithFields(ctx, "widget", widget.ID).Warn("chart render failed", "error", err)
		return WidgetView{}, err
	}
	return WidgetView{Widget: widget, Buckets: buckets, HTML: html}, nil
}

// WidgetView is a rendered chart widget.
type WidgetView struct {
	Widget  Widget             `json:"widget"`
	Buckets []datatable.Bucket `json:"buckets"`
	HTML    string             `json:"chart_html"`
}

func (s *Service) currentOrder(ctx context.Context, viewer ViewerContext, areaCode string) ([]string, LayoutOverrides, error) {
	area, err := s.area(areaCode)
	if err != nil {
		return nil, LayoutOverrides{}, err
	}
	overrides, err := s.prefs.LayoutOverrides(ctx, viewer)
	if err != nil {
		return nil, LayoutOverrides{}, fmt.Errorf("dashboard: load preferences: %w", err)
	}
	return widgetIDs(applyOrderOverride(area.Widgets, overrides.AreaOrder[areaCode])), overrides, nil
}

func (s *Service) saveOrder(ctx context.Context, viewer ViewerContext, areaCode string, order []string, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return ErrViewerRequired
	}
	if overrides.AreaOrder == nil {
		overrides.AreaOrder = map[string][]string{}
	}
	overrides.AreaOrder[areaCode] = order
	if err := s.prefs.SaveLayoutOverrides(ctx, viewer, overrides); err != nil {
		return fmt.Errorf("dashboard: save preferences: %w", err)
	}
	return nil
}

func (s *Service) area(code string) (Area, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Area{}, ErrAreaRequired
	}
	for _, area := range s.areas {
		if area.Code == code {
			return area, nil
		}
	}
	return Area{}, fmt.Errorf("%w: %s", ErrUnknownArea, code)
}

func (s *Service) widget(id string) (Area, Widget, bool) {
	for _, area := range s.areas {
		for _, w := range area.Widgets {
			if w.ID == id {
				return area, w, true
			}
		}
	}
	return Area{}, Widget{}, false
}

func (s *Service) notify(ctx context.Context, viewer ViewerContext, areaCode string, order []string, reason string) {
	err := s.refresh.WidgetUpdated(ctx, WidgetEvent{
		AreaCode:  areaCode,
		WidgetIDs: order,
		Reason:    reason,
		UserID:    viewer.UserID,
	})
	if err != nil {
		logging.WithFields(ctx, "area", areaCode).Warn("widget refresh hook failed", "error", err)
	}
}
