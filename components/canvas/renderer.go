package canvas

import (
	"context"
	"fmt"
	"html"
	"sync"
)

// RenderRequest carries everything a renderer needs to produce markup for
// one data widget.
type RenderRequest struct {
	Widget Widget
	Tokens ThemeTokens
}

// Renderer turns a widget's computed result into presentation markup.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, req RenderRequest) (string, error)

// Render calls the wrapped function.
func (f RendererFunc) Render(ctx context.Context, req RenderRequest) (string, error) {
	return f(ctx, req)
}

// RendererFactory lazily builds a renderer the first time its type resolves.
type RendererFactory func() (Renderer, error)

// RendererDefinition binds a data_model type to its renderer and prop
// builder.
type RendererDefinition struct {
	Type       string
	Name       string
	Load       RendererFactory
	BuildProps func(Widget) map[string]any
}

// RendererHook lets packages register renderers during init().
type RendererHook func(reg *Registry) error

var (
	rendererHookMu sync.Mutex
	rendererHooks  []RendererHook
)

// RegisterRendererHook registers a hook executed against new registries.
func RegisterRendererHook(h RendererHook) {
	rendererHookMu.Lock()
	defer rendererHookMu.Unlock()
	rendererHooks = append(rendererHooks, h)
}

// Registry maps data_model types to renderers. Lookup is pure: resolving an
// unknown type reports a miss and the caller renders the generic empty
// state instead.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]RendererDefinition
	built       map[string]Renderer
	meta        map[string]ManifestRenderer
}

// NewRegistry builds a registry with the default renderers and applies
// global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		definitions: map[string]RendererDefinition{},
		built:       map[string]Renderer{},
		meta:        map[string]ManifestRenderer{},
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultRendererDefinitions() {
		_ = r.Register(def)
	}
}

// ApplyHooks executes registered renderer hooks.
func (r *Registry) ApplyHooks() error {
	rendererHookMu.Lock()
	defer rendererHookMu.Unlock()
	for _, hook := range rendererHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register stores a renderer definition.
func (r *Registry) Register(def RendererDefinition) error {
	if def.Type == "" {
		return fmt.Errorf("renderer definition type is required")
	}
	if def.Load == nil {
		return fmt.Errorf("renderer definition %s requires a factory", def.Type)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Type] = def
	delete(r.built, def.Type)
	return nil
}

// Resolve returns the renderer for a data_model type, building it on first
// use. Unknown types report a miss.
func (r *Registry) Resolve(vizType string) (Renderer, bool) {
	r.mu.RLock()
	if built, ok := r.built[vizType]; ok {
		r.mu.RUnlock()
		return built, true
	}
	def, ok := r.definitions[vizType]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	renderer, err := def.Load()
	if err != nil || renderer == nil {
		return nil, false
	}
	r.mu.Lock()
	r.built[vizType] = renderer
	r.mu.Unlock()
	return renderer, true
}

// BuildProps returns the renderer props for a widget, or nil when the type
// has no prop builder.
func (r *Registry) BuildProps(widget Widget) map[string]any {
	r.mu.RLock()
	def, ok := r.definitions[widget.LastStep.DataModel.Type]
	r.mu.RUnlock()
	if !ok || def.BuildProps == nil {
		return nil
	}
	return def.BuildProps(widget)
}

// Definition fetches a renderer definition by type.
func (r *Registry) Definition(vizType string) (RendererDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[vizType]
	return def, ok
}

// Definitions returns all registered definitions.
func (r *Registry) Definitions() []RendererDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]RendererDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	return defs
}

// RendererMetadata returns manifest metadata registered for a type.
func (r *Registry) RendererMetadata(vizType string) (ManifestRenderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.meta[vizType]
	return meta, ok
}

func (r *Registry) recordRendererMetadata(vizType string, meta ManifestRenderer) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta[vizType] = meta
}

// RenderWidget resolves and runs the renderer for a data widget. Widgets
// still computing get the loading state; unknown types get the generic
// placeholder.
func (r *Registry) RenderWidget(ctx context.Context, req RenderRequest) (string, error) {
	if req.Widget.LastStep.Computing() {
		return loadingMarkup(req.Widget), nil
	}
	renderer, ok := r.Resolve(req.Widget.LastStep.DataModel.Type)
	if !ok {
		return placeholderMarkup(req.Widget), nil
	}
	return renderer.Render(ctx, req)
}

func loadingMarkup(w Widget) string {
	return fmt.Sprintf(`<div class="canvas-widget-loading" data-widget-id=%q>Computing…</div>`, w.ID)
}

func placeholderMarkup(w Widget) string {
	title := w.Title
	if title == "" {
		title = w.ID
	}
	return fmt.Sprintf(`<div class="canvas-widget-empty" data-widget-id=%q>%s</div>`, w.ID, html.EscapeString(title))
}
