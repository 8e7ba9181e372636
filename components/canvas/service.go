package canvas

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-canvas/pkg/activity"
	"github.com/google/uuid"
)

var (
	// ErrEmptyContent rejects text-widget submissions with no real content.
	ErrEmptyContent = errors.New("canvas: text widget content is empty")
	errEditorClosed = errors.New("canvas: text widget editor is not open")
)

// Options configures the canvas Service. Every collaborator is provided via
// interface so applications can swap implementations without importing
// internal go-canvas packages.
type Options struct {
	Store          *Store
	Backend        Backend
	Notifier       Notifier
	Telemetry      Telemetry
	Renderers      *Registry
	Themes         ThemeResolver
	Hook           ChangeHook
	Columns        int
	CellHeight     int
	Editable       bool
	Theme          string
	ThemeOverrides map[string]string
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
	// Dispatcher replaces the sync adapter's goroutine dispatcher. Tests
	// pass an inline dispatcher to make persistence synchronous.
	Dispatcher func(func())
}

// Service orchestrates the widget store, grid engine, sync adapter, and
// fullscreen mirror behind one API.
type Service struct {
	opts     Options
	store    *Store
	sync     *SyncAdapter
	engine   *Engine
	activity *activity.Emitter

	mirrorMu sync.Mutex
	mirror   *Mirror
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewStore()
	}
	opts.Notifier = normalizeNotifier(opts.Notifier)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Renderers == nil {
		opts.Renderers = NewRegistry()
	}
	if opts.Themes == nil {
		opts.Themes = DefaultThemeResolver{}
	}
	if opts.Hook == nil {
		opts.Hook = noopChangeHook{}
	}
	syncOpts := []SyncOption{
		WithNotifier(opts.Notifier),
		WithSyncTelemetry(opts.Telemetry),
	}
	if opts.Dispatcher != nil {
		syncOpts = append(syncOpts, WithDispatcher(opts.Dispatcher))
	}
	adapter := NewSyncAdapter(opts.Backend, syncOpts...)
	s := &Service{
		opts:     opts,
		store:    opts.Store,
		sync:     adapter,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
	s.engine = NewEngine(s.store, EngineOptions{
		Columns:    opts.Columns,
		CellHeight: opts.CellHeight,
		Editable:   opts.Editable,
		Sync:       adapter,
		Telemetry:  opts.Telemetry,
	})
	return s
}

// Store returns the canonical widget store.
func (s *Service) Store() *Store { return s.store }

// Engine returns the primary grid engine.
func (s *Service) Engine() *Engine { return s.engine }

// Renderers returns the renderer registry.
func (s *Service) Renderers() *Registry { return s.opts.Renderers }

// Tokens resolves the presentation tokens for the configured theme.
func (s *Service) Tokens() ThemeTokens {
	return s.opts.Themes.Tokens(s.opts.Theme, s.opts.ThemeOverrides)
}

// Snapshot returns the current combined widget list.
func (s *Service) Snapshot() []Entry {
	return s.store.Entries()
}

// Hydrate loads the canvas: data widgets from report metadata plus the
// report's text widgets from the backend.
func (s *Service) Hydrate(ctx context.Context, widgets []Widget) error {
	if s.opts.Backend == nil {
		return errMissingBackend
	}
	texts, err := s.opts.Backend.ListTextWidgets(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Hydrate(widgets, texts); err != nil {
		return err
	}
	if err := s.engine.Reconcile(); err != nil {
		return err
	}
	s.notifyChange(ctx, Event{Reason: "hydrate"})
	s.opts.Telemetry.Record(ctx, "canvas.hydrate", map[string]any{
		"widgets":      len(widgets),
		"text_widgets": len(texts),
	})
	return nil
}

// AddTextWidget places a new local placeholder with the editor open. The
// backend learns nothing until the first successful save.
func (s *Service) AddTextWidget(ctx context.Context) (TextWidget, error) {
	text := TextWidget{ID: "tmp-" + uuid.NewString()}
	if err := s.store.InsertText(text, TextState{Phase: TextNew}); err != nil {
		return TextWidget{}, err
	}
	if err := s.engine.Reconcile(); err != nil {
		return TextWidget{}, err
	}
	entry, _ := s.store.Entry(text.ID)
	s.notifyChange(ctx, Event{EntryID: text.ID, Kind: KindText, Reason: "text.add"})
	s.opts.Telemetry.Record(ctx, "canvas.text.add", map[string]any{"entry_id": text.ID})
	return entry.Text, nil
}

// OpenEditor transitions a saved text widget into the editing state,
// remembering the content as it stood so cancel can restore it.
func (s *Service) OpenEditor(ctx context.Context, id string) error {
	state, ok := s.store.TextState(id)
	if !ok {
		return ErrUnknownEntry
	}
	if state.EditorOpen() {
		return nil
	}
	entry, _ := s.store.Entry(id)
	if err := s.store.SetTextState(id, TextState{Phase: TextEditing, Original: entry.Text.Content}); err != nil {
		return err
	}
	s.opts.Telemetry.Record(ctx, "canvas.text.edit", map[string]any{"entry_id": id})
	return nil
}

// SaveText submits editor content. Empty or placeholder-equivalent content
// is rejected locally with a warning and no backend call. A New widget is
// created (blocking) and its temporary id swapped for the backend's; an
// Editing widget is updated fire-and-forget.
func (s *Service) SaveText(ctx context.Context, id, content string) error {
	state, ok := s.store.TextState(id)
	if !ok {
		return ErrUnknownEntry
	}
	if !state.EditorOpen() {
		return errEditorClosed
	}
	if emptyContent(content) {
		s.opts.Notifier.Warn(ctx, "text widget content cannot be empty", map[string]any{"entry_id": id})
		return ErrEmptyContent
	}

	if state.Phase == TextNew {
		if err := s.store.SetContent(id, content); err != nil {
			return err
		}
		entry, _ := s.store.Entry(id)
		record, err := s.sync.PersistCreate(ctx, entry.Text)
		if err != nil {
			s.opts.Notifier.Warn(ctx, "failed to create text widget", map[string]any{
				"entry_id": id,
				"error":    err.Error(),
			})
			return err
		}
		if err := s.store.ReplaceTextID(id, record.ID); err != nil {
			return err
		}
		if err := s.store.SetTextState(record.ID, TextState{Phase: TextSaved}); err != nil {
			return err
		}
		if err := s.engine.Reconcile(); err != nil {
			return err
		}
		s.notifyChange(ctx, Event{EntryID: record.ID, Kind: KindText, Reason: "text.create"})
		s.emitActivity(ctx, "canvas.text.create", KindText, record.ID, nil)
		return nil
	}

	if err := s.store.SetContent(id, content); err != nil {
		return err
	}
	if err := s.store.SetTextState(id, TextState{Phase: TextSaved}); err != nil {
		return err
	}
	entry, _ := s.store.Entry(id)
	s.sync.PersistContent(ctx, entry.Text)
	s.notifyChange(ctx, Event{EntryID: id, Kind: KindText, Reason: "text.save"})
	s.emitActivity(ctx, "canvas.text.save", KindText, id, nil)
	return nil
}

// CancelText closes the editor without saving. A still-New placeholder is
// discarded locally with no backend call; an Editing widget keeps its
// previously persisted content.
func (s *Service) CancelText(ctx context.Context, id string) error {
	state, ok := s.store.TextState(id)
	if !ok {
		return ErrUnknownEntry
	}
	switch state.Phase {
	case TextNew:
		s.engine.RemoveNode(id)
		s.notifyChange(ctx, Event{EntryID: id, Kind: KindText, Reason: "text.discard"})
	case TextEditing:
		if err := s.store.SetContent(id, state.Original); err != nil {
			return err
		}
		if err := s.store.SetTextState(id, TextState{Phase: TextSaved}); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an entry. Persisted entries get exactly one backend delete
// call before the local removal; unsaved placeholders get none. Removal is
// routed through the grid so grid and store stay consistent.
func (s *Service) Delete(ctx context.Context, id string) error {
	entry, ok := s.store.Entry(id)
	if !ok {
		return ErrUnknownEntry
	}
	placeholder := false
	if state, ok := s.store.TextState(id); ok {
		placeholder = state.Placeholder()
	}
	if !placeholder {
		s.sync.PersistDelete(ctx, entry)
	}
	s.engine.RemoveNode(id)
	s.notifyChange(ctx, Event{EntryID: id, Kind: entry.Kind, Reason: "delete"})
	s.opts.Telemetry.Record(ctx, "canvas.delete", map[string]any{"entry_id": id})
	s.emitActivity(ctx, "canvas.entry.remove", entry.Kind, id, map[string]any{
		"persisted": !placeholder,
	})
	return nil
}

// Move applies a user-driven drag/resize through the grid, which reports it
// back to the store and sync adapter on gesture end.
func (s *Service) Move(ctx context.Context, id string, geom Geometry) error {
	if err := s.engine.Grid().MoveNode(id, geom.X, geom.Y, geom.Width, geom.Height); err != nil {
		return err
	}
	entry, _ := s.store.Entry(id)
	s.notifyChange(ctx, Event{EntryID: id, Kind: entry.Kind, Reason: "move"})
	s.emitActivity(ctx, "canvas.entry.move", entry.Kind, id, map[string]any{
		"x": geom.X,
		"y": geom.Y,
	})
	return nil
}

// SetEditable flips drag/resize on the primary canvas.
func (s *Service) SetEditable(editable bool) {
	s.engine.SetEditable(editable)
}

// SetZoom adjusts the canvas presentation scale. Purely cosmetic: it never
// touches geometry and never triggers reconciliation.
func (s *Service) SetZoom(scale float64) {
	s.engine.SetZoom(scale)
}

// OpenFullscreen builds the read-only mirror from the current snapshot. An
// already-open mirror is disposed first so every open starts clean.
func (s *Service) OpenFullscreen() (*Mirror, error) {
	s.mirrorMu.Lock()
	defer s.mirrorMu.Unlock()
	if s.mirror != nil && !s.mirror.Closed() {
		s.mirror.Close()
	}
	mirror, err := OpenMirror(s.store, MirrorOptions{
		Columns:    s.opts.Columns,
		CellHeight: s.opts.CellHeight,
	})
	if err != nil {
		return nil, err
	}
	s.mirror = mirror
	return mirror, nil
}

// CloseFullscreen disposes the mirror, if open.
func (s *Service) CloseFullscreen() {
	s.mirrorMu.Lock()
	defer s.mirrorMu.Unlock()
	if s.mirror != nil {
		s.mirror.Close()
		s.mirror = nil
	}
}

// Fullscreen returns the open mirror, or nil.
func (s *Service) Fullscreen() *Mirror {
	s.mirrorMu.Lock()
	defer s.mirrorMu.Unlock()
	if s.mirror == nil || s.mirror.Closed() {
		return nil
	}
	return s.mirror
}

// notifyChange refreshes the mirror and fans the event out to transports.
func (s *Service) notifyChange(ctx context.Context, event Event) {
	s.mirrorMu.Lock()
	mirror := s.mirror
	s.mirrorMu.Unlock()
	if mirror != nil && !mirror.Closed() {
		if err := mirror.Refresh(); err != nil {
			s.opts.Telemetry.Record(ctx, "canvas.mirror.refresh_error", map[string]any{
				"error": err.Error(),
			})
		}
	}
	if err := s.opts.Hook.CanvasChanged(ctx, event); err != nil {
		s.opts.Telemetry.Record(ctx, "canvas.hook.error", map[string]any{
			"error": err.Error(),
		})
	}
}

// emitActivity records an audit event for a canvas mutation when activity
// hooks are configured.
func (s *Service) emitActivity(ctx context.Context, verb string, kind Kind, id string, metadata map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	meta := activityContextFrom(ctx)
	objectType := "widget"
	if kind == KindText {
		objectType = "text_widget"
	}
	if err := s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    meta.ActorID,
		UserID:     meta.UserID,
		TenantID:   meta.TenantID,
		ObjectType: objectType,
		ObjectID:   id,
		Metadata:   metadata,
	}); err != nil {
		s.opts.Telemetry.Record(ctx, "canvas.activity.error", map[string]any{
			"error": err.Error(),
		})
	}
}

// emptyContent reports whether rich markup carries no real text: empty
// strings, whitespace, or editor placeholder output like "<p><br></p>".
func emptyContent(content string) bool {
	var builder strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			builder.WriteRune(r)
		}
	}
	text := builder.String()
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	return strings.TrimSpace(text) == ""
}
