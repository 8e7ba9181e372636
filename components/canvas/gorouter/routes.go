package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	canvas "github.com/goliatone/go-canvas/components/canvas"
	"github.com/goliatone/go-canvas/components/canvas/commands"
	"github.com/goliatone/go-canvas/components/canvas/httpapi"
)

// Config wires go-router with the canvas service, command executor, and
// broadcast hook.
type Config[T any] struct {
	Router    router.Router[T]
	Service   *canvas.Service
	Renderer  canvas.TemplateRenderer
	API       httpapi.Executor
	Broadcast *canvas.BroadcastHook
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths used for canvas endpoints.
type RouteConfig struct {
	Fullscreen string
	Layout     string
	Move       string
	EntryID    string
	AddText    string
	SaveText   string
	CancelText string
	WebSocket  string
}

// Register mounts canvas routes (fullscreen HTML, layout JSON, entry
// operations, WebSocket/SSE) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Service == nil {
		return errors.New("gorouter: canvas service is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/canvas"
	}

	group := cfg.Router.Group(base)

	if cfg.Renderer != nil {
		group.Get(routes.Fullscreen, router.WrapHandler(func(ctx router.Context) error {
			var buf bytes.Buffer
			if err := cfg.Service.RenderFullscreen(ctx.Context(), cfg.Renderer, &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]any{
			"entries": cfg.Service.Snapshot(),
			"theme":   cfg.Service.Tokens(),
		})
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Move, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("entry id is required"))
		}
		var payload commands.MoveEntryRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.EntryID = id
		if err := api.Move(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "moved"})
	}))

	r.Delete(routes.EntryID, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("entry id is required"))
		}
		if err := api.Remove(ctx.Context(), commands.RemoveEntryRequest{EntryID: id}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
	}))

	r.Post(routes.AddText, router.WrapHandler(func(ctx router.Context) error {
		if err := api.AddText(ctx.Context(), commands.AddTextRequest{}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusCreated, map[string]string{"status": "created"})
	}))

	r.Post(routes.SaveText, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("entry id is required"))
		}
		var payload commands.SaveTextRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.EntryID = id
		if err := api.SaveText(ctx.Context(), payload); err != nil {
			if errors.Is(err, canvas.ErrEmptyContent) {
				return respondError(ctx, http.StatusUnprocessableEntity, err)
			}
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	r.Post(routes.CancelText, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("entry id is required"))
		}
		if err := api.CancelText(ctx.Context(), commands.CancelTextRequest{EntryID: id}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *canvas.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
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

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Fullscreen == "" {
		routes.Fullscreen = "/fullscreen"
	}
	if routes.Layout == "" {
		routes.Layout = "/_layout"
	}
	if routes.Move == "" {
		routes.Move = "/entries/:id/move"
	}
	if routes.EntryID == "" {
		routes.EntryID = "/entries/:id"
	}
	if routes.AddText == "" {
		routes.AddText = "/text_widgets"
	}
	if routes.SaveText == "" {
		routes.SaveText = "/text_widgets/:id/save"
	}
	if routes.CancelText == "" {
		routes.CancelText = "/text_widgets/:id/cancel"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
