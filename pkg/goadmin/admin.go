package goadmin

import (
	"context"
	"errors"

	activitypkg "github.com/goliatone/go-canvas/pkg/activity"
	canvaspkg "github.com/goliatone/go-canvas/pkg/canvas"
)

// MenuBuilder ensures canvas entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures canvas link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires canvas service + feature flags into an admin shell.
type Config struct {
	EnableCanvas    bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *canvaspkg.Service
	DefaultMenuItem MenuItem
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed canvas menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableCanvas && cfg.Service == nil {
		return nil, errors.New("goadmin: canvas service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Canvas"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.canvas"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "layout"
	}
	return &Admin{cfg: cfg}, nil
}

// Canvas exposes the configured canvas service when enabled.
func (a *Admin) Canvas() *canvaspkg.Service {
	if !a.cfg.EnableCanvas {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds menu entries when canvas support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableCanvas || a.cfg.MenuBuilder == nil {
		return nil
	}
	return a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem)
}
