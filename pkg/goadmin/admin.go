// Package goadmin seeds admin-shell navigation for the overview and every mounted table.
package goadmin

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// MenuBuilder ensures navigation entries exist within the admin shell.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures navigation link metadata.
type MenuItem struct {
	Label    string `json:"label"`
	Route    string `json:"route"`
	Icon     string `json:"icon"`
	Position int    `json:"position"`
}

// TableLister reports the registered table names in registration order.
type TableLister interface {
	Tables() []string
}

// Config wires table navigation into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Tables          TableLister
	// OverviewItem links the widget overview and comes first.
	OverviewItem MenuItem
	// TablesPath prefixes table routes, "/tables" by default.
	TablesPath string
	// Icons maps table names to menu icons.
	Icons map[string]string
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Tables == nil {
		return nil, errors.New("goadmin: table service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.OverviewItem.Label == "" {
		cfg.OverviewItem.Label = "Dashboard"
	}
	if cfg.OverviewItem.Route == "" {
		cfg.OverviewItem.Route = "/dashboard"
	}
	if cfg.OverviewItem.Icon == "" {
		cfg.OverviewItem.Icon = "home"
	}
	cfg.TablesPath = "/" + strings.Trim(cfg.TablesPath, "/")
	if cfg.TablesPath == "/" {
		cfg.TablesPath = "/tables"
	}
	return &Admin{cfg: cfg}, nil
}

// MenuCode is the menu the items are seeded into.
func (a *Admin) MenuCode() string {
	return a.cfg.MenuCode
}

// MenuItems lists the overview followed by one page link per table.
func (a *Admin) MenuItems() []MenuItem {
	if !a.cfg.EnableDashboard {
		return nil
	}
	names := a.cfg.Tables.Tables()
	items := make([]MenuItem, 0, len(names)+1)
	items = append(items, a.cfg.OverviewItem)
	for i, name := range names {
		icon := a.cfg.Icons[name]
		if icon == "" {
			icon = "table"
		}
		items = append(items, MenuItem{
			Label:    strcase.ToCase(name, strcase.TitleCase, ' '),
			Route:    a.cfg.TablesPath + "/" + name + "/page",
			Icon:     icon,
			Position: i + 1,
		})
	}
	return items
}

// Bootstrap seeds menu entries when dashboard support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard || a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return err
		}
	}
	return nil
}

// MemoryMenu is a MenuBuilder keeping menus in memory. Items are keyed by route.
type MemoryMenu struct {
	mu    sync.RWMutex
	menus map[string][]MenuItem
}

// NewMemoryMenu creates an empty menu store.
func NewMemoryMenu() *MemoryMenu {
	return &MemoryMenu{menus: make(map[string][]MenuItem)}
}

// EnsureMenuItem implements MenuBuilder. An item with a known route replaces the old one.
func (m *MemoryMenu) EnsureMenuItem(_ context.Context, menuCode string, item MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.menus[menuCode]
	if idx := slices.IndexFunc(items, func(existing MenuItem) bool { return existing.Route == item.Route }); idx >= 0 {
		items[idx] = item
	} else {
		items = append(items, item)
	}
	slices.SortStableFunc(items, func(a, b MenuItem) int { return a.Position - b.Position })
	m.menus[menuCode] = items
	return nil
}

// Items returns a copy of the menu.
func (m *MemoryMenu) Items(menuCode string) []MenuItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.menus[menuCode])
}
