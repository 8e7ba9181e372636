package gorouter

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	router "github.com/goliatone/go-router"

	canvas "github.com/goliatone/go-canvas/components/canvas"
	"github.com/goliatone/go-canvas/components/canvas/commands"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router/service missing")
	}
}

func TestRegisterLayoutRoute(t *testing.T) {
	mock := newMockRouter()
	svc := newRouteService(t)

	cfg := Config[struct{}]{
		Router:  mock,
		Service: svc,
		API:     noopExecutor{},
	}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	h, ok := mock.routes["GET:/canvas/_layout"]
	if !ok {
		t.Fatalf("expected layout route to be registered")
	}
	ctx := newMockContext()
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var payload struct {
		Entries []canvas.Entry     `json:"entries"`
		Theme   canvas.ThemeTokens `json:"theme"`
	}
	if err := json.Unmarshal(ctx.body, &payload); err != nil {
		t.Fatalf("decode layout payload: %v", err)
	}
	if len(payload.Entries) != 1 || payload.Theme.Background == "" {
		t.Fatalf("unexpected payload %#v", payload)
	}
}

func TestRegisterFullscreenRoute(t *testing.T) {
	mock := newMockRouter()
	svc := newRouteService(t)
	renderer, err := canvas.NewTemplateRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	cfg := Config[struct{}]{
		Router:   mock,
		Service:  svc,
		Renderer: renderer,
	}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	t.Cleanup(svc.CloseFullscreen)

	h, ok := mock.routes["GET:/canvas/fullscreen"]
	if !ok {
		t.Fatalf("expected fullscreen route to be registered")
	}
	ctx := newMockContext()
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !strings.Contains(string(ctx.body), `data-entry-id="w-1"`) {
		t.Fatalf("fullscreen page missing widget card")
	}
	if ctx.headers["Content-Type"] != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ctx.headers["Content-Type"])
	}
}

func TestRegisterMoveRoute(t *testing.T) {
	mock := newMockRouter()
	svc := newRouteService(t)
	exec := &recordingExecutor{}

	cfg := Config[struct{}]{Router: mock, Service: svc, API: exec}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	h, ok := mock.routes["POST:/canvas/entries/:id/move"]
	if !ok {
		t.Fatalf("expected move route to be registered")
	}
	ctx := newMockContext()
	ctx.params["id"] = "w-1"
	body, _ := json.Marshal(commands.MoveEntryRequest{Geometry: canvas.Geometry{X: 2, Y: 1, Width: 6, Height: 4}})
	ctx.body = body
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if exec.moved != 1 || exec.lastMove.EntryID != "w-1" {
		t.Fatalf("move not executed: %+v", exec)
	}
}

func TestRegisterWebSocketRoute(t *testing.T) {
	mock := newMockRouter()
	svc := newRouteService(t)
	hook := canvas.NewBroadcastHook()

	cfg := Config[struct{}]{Router: mock, Service: svc, Broadcast: hook}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if _, ok := mock.ws["/canvas/ws"]; !ok {
		t.Fatalf("expected websocket route to be registered")
	}
}

// --- Test helpers ---

func newRouteService(t *testing.T) *canvas.Service {
	t.Helper()
	svc := canvas.NewService(canvas.Options{
		Backend:    routeBackend{},
		Editable:   true,
		Dispatcher: func(fn func()) { fn() },
	})
	widgets := []canvas.Widget{{
		ID:       "w-1",
		Geometry: canvas.Geometry{X: 0, Y: 0, Width: 6, Height: 4},
		Title:    "Revenue",
		LastStep: canvas.LastStep{
			Type:      "result",
			Data:      []any{map[string]any{"label": "Q1", "value": 10}},
			DataModel: canvas.DataModel{Type: "table"},
		},
	}}
	if err := svc.Hydrate(context.Background(), widgets); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return svc
}

type routeBackend struct{}

func (routeBackend) UpdateWidget(context.Context, canvas.WidgetUpdate) error { return nil }

func (routeBackend) CreateTextWidget(_ context.Context, create canvas.TextWidgetCreate) (canvas.TextWidgetRecord, error) {
	return canvas.TextWidgetRecord{ID: "txt-1", Content: create.Content, Geometry: create.Geometry}, nil
}

func (routeBackend) UpdateTextWidget(context.Context, canvas.TextWidgetUpdate) error { return nil }
func (routeBackend) DeleteWidget(context.Context, string) error                      { return nil }
func (routeBackend) DeleteTextWidget(context.Context, string) error                  { return nil }

func (routeBackend) ListTextWidgets(context.Context) ([]canvas.TextWidgetRecord, error) {
	return nil, nil
}

// mockRouter embeds the interface so only the methods the routes exercise
// need real implementations.
type mockRouter struct {
	router.Router[struct{}]
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) Group(prefix string) router.Router[struct{}] {
	return &mockRouter{
		prefix: m.prefix + prefix,
		routes: m.routes,
		ws:     m.ws,
	}
}

func (m *mockRouter) record(method, path string, handler router.HandlerFunc) {
	full := m.prefix + path
	m.routes[method+":"+full] = handler
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.GET), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.POST), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.DELETE), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	full := m.prefix + path
	m.ws[full] = handler
	return mockRouteInfo{}
}

type mockRouteInfo struct {
	router.RouteInfo
}

func (mockRouteInfo) SetName(string) router.RouteInfo { return mockRouteInfo{} }

// routerContext aliases router.Context so it can be embedded without the
// implicit field name colliding with the Context() method below.
type routerContext = router.Context

type mockContext struct {
	routerContext
	ctx     context.Context
	headers map[string]string
	body    []byte
	locals  map[any]any
	params  map[string]string
	status  int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:     context.Background(),
		headers: map[string]string{},
		locals:  map[any]any{},
		params:  map[string]string{},
	}
}

func (m *mockContext) Context() context.Context {
	return m.ctx
}

func (m *mockContext) SetHeader(k, v string) router.Context {
	m.headers[k] = v
	return m
}

func (m *mockContext) Send(b []byte) error {
	m.body = append([]byte{}, b...)
	return nil
}

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Body() []byte { return m.body }

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}

type noopExecutor struct{}

func (noopExecutor) Move(context.Context, commands.MoveEntryRequest) error       { return nil }
func (noopExecutor) Remove(context.Context, commands.RemoveEntryRequest) error   { return nil }
func (noopExecutor) AddText(context.Context, commands.AddTextRequest) error      { return nil }
func (noopExecutor) EditText(context.Context, commands.EditTextRequest) error    { return nil }
func (noopExecutor) SaveText(context.Context, commands.SaveTextRequest) error    { return nil }
func (noopExecutor) CancelText(context.Context, commands.CancelTextRequest) error { return nil }

type recordingExecutor struct {
	noopExecutor
	moved    int
	lastMove commands.MoveEntryRequest
}

func (r *recordingExecutor) Move(_ context.Context, msg commands.MoveEntryRequest) error {
	r.moved++
	r.lastMove = msg
	return nil
}
