package gorouter

import (
	"testing"

	router "github.com/goliatone/go-router"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/dashboard"
	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config{}); err == nil {
		t.Fatalf("expected error when router is missing")
	}
	if err := Register(Config{Router: newMockRouter()}); err == nil {
		t.Fatalf("expected error when service is missing")
	}
}

func TestRegisterRoutes(t *testing.T) {
	mock := newMockRouter()
	err := Register(Config{
		Router:   mock,
		Service:  dashboard.NewService(dashboard.Options{}),
		Tables:   datatable.NewService(datatable.Options{}),
		Feed:     dashboard.NewLayoutFeed(),
		BasePath: "/admin/dashboard/",
		Routes:   RouteConfig{Layout: "/_layout"},
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	for _, key := range []string{
		"GET:/admin/dashboard/_layout",
		"POST:/admin/dashboard/widgets/move",
		"POST:/admin/dashboard/widgets/reorder",
		"POST:/admin/dashboard/widgets/visibility",
		"GET:/admin/dashboard/widgets/:id/chart",
	} {
		if _, ok := mock.routes[key]; !ok {
			t.Fatalf("expected route %s to be registered", key)
		}
	}
	if _, ok := mock.ws["/admin/dashboard/ws"]; !ok {
		t.Fatalf("expected websocket route")
	}
}

func TestRegisterSkipsChartsWithoutTables(t *testing.T) {
	mock := newMockRouter()
	if err := Register(Config{Router: mock, Service: dashboard.NewService(dashboard.Options{})}); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if _, ok := mock.routes["GET:/dashboard/widgets/:id/chart"]; ok {
		t.Fatalf("chart route requires tables")
	}
	if _, ok := mock.routes["GET:/dashboard/layout"]; !ok {
		t.Fatalf("expected default layout route")
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"es-MX,es;q=0.9,en;q=0.8": "es-mx",
		" ; q=1, FR":              "fr",
	}
	for header, want := range cases {
		if got := parseAcceptLanguage(header); got != want {
			t.Fatalf("parseAcceptLanguage(%q) = %q, want %q", header, got, want)
		}
	}
}

// --- Test helpers ---

type mockRouter struct {
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	m.routes[string(router.GET)+":"+path] = handler
	return nil
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, _ ...router.MiddlewareFunc) router.RouteInfo {
	m.routes[string(router.POST)+":"+path] = handler
	return nil
}

func (m *mockRouter) WebSocket(path string, _ router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	m.ws[path] = handler
	return nil
}
