package goadmin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/goadmin"
)

type stubMenuBuilder struct {
	calls int
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(context.Context, string, goadmin.MenuItem) error {
	s.calls++
	return s.err
}

type tableList []string

func (l tableList) Tables() []string { return l }

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	menu := goadmin.NewMemoryMenu()
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Tables:          tableList{"users", "campaign_reports"},
		MenuBuilder:     menu,
		Icons:           map[string]string{"users": "users"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	items := menu.Items(admin.MenuCode())
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %#v", items)
	}
	if items[0].Route != "/dashboard" || items[0].Position != 0 {
		t.Fatalf("expected overview first, got %#v", items[0])
	}
	if items[1].Route != "/tables/users/page" || items[1].Icon != "users" || items[1].Label != "Users" {
		t.Fatalf("unexpected users item %#v", items[1])
	}
	if items[2].Label != "Campaign Reports" || items[2].Icon != "table" {
		t.Fatalf("unexpected report item %#v", items[2])
	}

	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second Bootstrap returned error: %v", err)
	}
	if got := len(menu.Items(admin.MenuCode())); got != 3 {
		t.Fatalf("expected bootstrap to be idempotent, got %d items", got)
	}
}

func TestAdminBootstrapStopsOnError(t *testing.T) {
	builder := &stubMenuBuilder{err: errors.New("menu down")}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Tables:          tableList{"users"},
		MenuBuilder:     builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err == nil {
		t.Fatal("expected builder error")
	}
	if builder.calls != 1 {
		t.Fatalf("expected 1 call, got %d", builder.calls)
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: false,
		MenuBuilder:     builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.calls != 0 {
		t.Fatalf("expected 0 calls, got %d", builder.calls)
	}
	if admin.MenuItems() != nil {
		t.Fatalf("expected no items when disabled")
	}
}

func TestAdminRequiresTablesWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableDashboard: true}); err == nil {
		t.Fatal("expected error without tables")
	}
}
