package canvas

import (
	"context"
	"errors"
)

var errMissingBackend = errors.New("canvas: backend not configured")

// SyncAdapter translates store-level changes into backend calls, one call
// per affected widget. Geometry and delete calls are fire-and-forget:
// failures surface as a non-blocking warning and local state is left as-is,
// so the canvas may run visually ahead of the server until the next reload.
type SyncAdapter struct {
	backend   Backend
	notifier  Notifier
	telemetry Telemetry
	dispatch  func(func())
}

// SyncOption customizes a SyncAdapter.
type SyncOption func(*SyncAdapter)

// WithNotifier routes persistence warnings to the given notifier.
func WithNotifier(n Notifier) SyncOption {
	return func(a *SyncAdapter) {
		a.notifier = normalizeNotifier(n)
	}
}

// WithSyncTelemetry records persistence events.
func WithSyncTelemetry(t Telemetry) SyncOption {
	return func(a *SyncAdapter) {
		a.telemetry = normalizeTelemetry(t)
	}
}

// WithDispatcher replaces the goroutine dispatcher. Tests pass an inline
// dispatcher to make persistence synchronous.
func WithDispatcher(dispatch func(func())) SyncOption {
	return func(a *SyncAdapter) {
		if dispatch != nil {
			a.dispatch = dispatch
		}
	}
}

// NewSyncAdapter builds an adapter over the backend client.
func NewSyncAdapter(backend Backend, opts ...SyncOption) *SyncAdapter {
	a := &SyncAdapter{
		backend:   backend,
		notifier:  noopNotifier{},
		telemetry: noopTelemetry{},
		dispatch:  func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PersistGeometry issues an update for the entry's current geometry,
// choosing the widget or text-widget endpoint by kind. Text widgets carry
// their content along when available.
func (a *SyncAdapter) PersistGeometry(ctx context.Context, entry Entry) {
	if a.backend == nil {
		return
	}
	id := entry.ID()
	geom := entry.Geom()
	ctx = context.WithoutCancel(ctx)
	a.dispatch(func() {
		var err error
		switch entry.Kind {
		case KindText:
			err = a.backend.UpdateTextWidget(ctx, TextWidgetUpdate{
				ID:         id,
				Content:    entry.Text.Content,
				HasContent: entry.Text.Content != "",
				Geometry:   geom,
			})
		default:
			err = a.backend.UpdateWidget(ctx, WidgetUpdate{ID: id, Geometry: geom})
		}
		if err != nil {
			a.warn(ctx, "failed to save widget position", id, err)
			return
		}
		a.telemetry.Record(ctx, "canvas.sync.geometry", map[string]any{"entry_id": id})
	})
}

// PersistContent issues a content update for a persisted text widget.
func (a *SyncAdapter) PersistContent(ctx context.Context, text TextWidget) {
	if a.backend == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	a.dispatch(func() {
		err := a.backend.UpdateTextWidget(ctx, TextWidgetUpdate{
			ID:         text.ID,
			Content:    text.Content,
			HasContent: true,
			Geometry:   text.Geometry,
		})
		if err != nil {
			a.warn(ctx, "failed to save text widget", text.ID, err)
			return
		}
		a.telemetry.Record(ctx, "canvas.sync.content", map[string]any{"entry_id": text.ID})
	})
}

// PersistCreate creates a text widget and returns the authoritative record.
// Creation blocks: the caller needs the returned id to retire the
// placeholder before anything else may reference it.
func (a *SyncAdapter) PersistCreate(ctx context.Context, text TextWidget) (TextWidgetRecord, error) {
	if a.backend == nil {
		return TextWidgetRecord{}, errMissingBackend
	}
	record, err := a.backend.CreateTextWidget(ctx, TextWidgetCreate{
		Content:  text.Content,
		Geometry: text.Geometry,
	})
	if err != nil {
		return TextWidgetRecord{}, err
	}
	a.telemetry.Record(ctx, "canvas.sync.create", map[string]any{"entry_id": record.ID})
	return record, nil
}

// PersistDelete issues the delete call for a persisted entry.
func (a *SyncAdapter) PersistDelete(ctx context.Context, entry Entry) {
	if a.backend == nil {
		return
	}
	id := entry.ID()
	kind := entry.Kind
	ctx = context.WithoutCancel(ctx)
	a.dispatch(func() {
		var err error
		if kind == KindText {
			err = a.backend.DeleteTextWidget(ctx, id)
		} else {
			err = a.backend.DeleteWidget(ctx, id)
		}
		if err != nil {
			a.warn(ctx, "failed to delete widget", id, err)
			return
		}
		a.telemetry.Record(ctx, "canvas.sync.delete", map[string]any{"entry_id": id})
	})
}

func (a *SyncAdapter) warn(ctx context.Context, message, id string, err error) {
	a.notifier.Warn(ctx, message, map[string]any{
		"entry_id": id,
		"error":    err.Error(),
	})
	a.telemetry.Record(ctx, "canvas.sync.error", map[string]any{
		"entry_id": id,
		"error":    err.Error(),
	})
}
