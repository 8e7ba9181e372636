package canvas

import "context"

// StepInit marks a data widget whose result is still computing. Widgets in
// this state render a loading placeholder instead of content.
const StepInit = "init"

// Kind discriminates entries of the combined widget list.
type Kind string

const (
	// KindRegular tags data widgets backed by a computed result.
	KindRegular Kind = "regular"
	// KindText tags free-text widgets backed by rich content.
	KindText Kind = "text"
)

// Geometry locates a widget on the canvas. Units are grid cells under a
// fixed column count, never pixels.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Placed reports whether the geometry carries a usable size. Unplaced
// entries are auto-positioned by the engine.
func (g Geometry) Placed() bool {
	return g.Width > 0 && g.Height > 0
}

// DataModel selects the renderer for a data widget result.
type DataModel struct {
	Type    string         `json:"type"`
	Options map[string]any `json:"options,omitempty"`
}

// LastStep holds the computed result backing a data widget.
type LastStep struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	DataModel DataModel `json:"data_model"`
}

// Computing reports whether the backing result is still being produced.
func (s LastStep) Computing() bool {
	return s.Type == StepInit
}

// Widget is a data widget. Instances are created server-side by report
// actions; this engine only ever updates or deletes them.
type Widget struct {
	ID       string   `json:"id"`
	Geometry Geometry `json:"geometry"`
	Title    string   `json:"title"`
	LastStep LastStep `json:"last_step"`
}

// TextWidget is a free-text block with pre-rendered rich markup.
type TextWidget struct {
	ID       string   `json:"id"`
	Geometry Geometry `json:"geometry"`
	Content  string   `json:"content"`
}

// Entry is one element of the combined widget list, the single source of
// truth both grid views render from.
type Entry struct {
	Kind   Kind       `json:"type"`
	Widget Widget     `json:"widget,omitempty"`
	Text   TextWidget `json:"text,omitempty"`
}

// ID returns the entry id regardless of kind.
func (e Entry) ID() string {
	if e.Kind == KindText {
		return e.Text.ID
	}
	return e.Widget.ID
}

// Geom returns the entry geometry regardless of kind.
func (e Entry) Geom() Geometry {
	if e.Kind == KindText {
		return e.Text.Geometry
	}
	return e.Widget.Geometry
}

// Flags holds transient per-entry UI state. Flags are never persisted and
// live apart from the entity structs so those stay trivially serializable.
type Flags struct {
	ShowControls  bool
	ShowData      bool
	ShowDataModel bool
}

// WidgetUpdate is the geometry payload for PUT /widgets/{id}.
type WidgetUpdate struct {
	ID       string
	Geometry Geometry
}

// TextWidgetCreate is the payload for POST /text_widgets.
type TextWidgetCreate struct {
	Content  string
	Geometry Geometry
}

// TextWidgetUpdate is the payload for PUT /text_widgets/{id}. Content is
// only sent when HasContent is set.
type TextWidgetUpdate struct {
	ID         string
	Content    string
	HasContent bool
	Geometry   Geometry
}

// TextWidgetRecord is a persisted text widget as returned by the backend.
type TextWidgetRecord struct {
	ID       string
	Content  string
	Geometry Geometry
}

// Backend is the persistence boundary. Implementations talk to the REST
// backend; pkg/backend ships the HTTP client.
type Backend interface {
	UpdateWidget(ctx context.Context, update WidgetUpdate) error
	CreateTextWidget(ctx context.Context, create TextWidgetCreate) (TextWidgetRecord, error)
	UpdateTextWidget(ctx context.Context, update TextWidgetUpdate) error
	DeleteWidget(ctx context.Context, id string) error
	DeleteTextWidget(ctx context.Context, id string) error
	ListTextWidgets(ctx context.Context) ([]TextWidgetRecord, error)
}

// Notifier surfaces non-blocking warnings to the user (the toast analog).
type Notifier interface {
	Warn(ctx context.Context, message string, payload map[string]any)
}

type noopNotifier struct{}

func (noopNotifier) Warn(context.Context, string, map[string]any) {}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, message string, payload map[string]any)

// Warn calls the wrapped function.
func (f NotifierFunc) Warn(ctx context.Context, message string, payload map[string]any) {
	f(ctx, message, payload)
}

// Event describes a canvas change that transports might care about.
type Event struct {
	EntryID string `json:"entry_id"`
	Kind    Kind   `json:"kind"`
	Reason  string `json:"reason"`
}

// ChangeHook notifies transports (WebSocket/SSE, open mirrors) about canvas
// changes.
type ChangeHook interface {
	CanvasChanged(ctx context.Context, event Event) error
}

type noopChangeHook struct{}

func (noopChangeHook) CanvasChanged(context.Context, Event) error { return nil }
