package canvas

import (
	"context"
	"sync"
)

// fakeBackend records every persistence call so tests can assert exact call
// counts and payloads.
type fakeBackend struct {
	mu sync.Mutex

	widgetUpdates []WidgetUpdate
	textUpdates   []TextWidgetUpdate
	creates       []TextWidgetCreate
	widgetDeletes []string
	textDeletes   []string
	listed        []TextWidgetRecord

	createID  string
	createErr error
	updateErr error
	deleteErr error
}

func (b *fakeBackend) UpdateWidget(_ context.Context, update WidgetUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.updateErr != nil {
		return b.updateErr
	}
	b.widgetUpdates = append(b.widgetUpdates, update)
	return nil
}

func (b *fakeBackend) CreateTextWidget(_ context.Context, create TextWidgetCreate) (TextWidgetRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return TextWidgetRecord{}, b.createErr
	}
	b.creates = append(b.creates, create)
	id := b.createID
	if id == "" {
		id = "txt-created"
	}
	return TextWidgetRecord{ID: id, Content: create.Content, Geometry: create.Geometry}, nil
}

func (b *fakeBackend) UpdateTextWidget(_ context.Context, update TextWidgetUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.updateErr != nil {
		return b.updateErr
	}
	b.textUpdates = append(b.textUpdates, update)
	return nil
}

func (b *fakeBackend) DeleteWidget(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.widgetDeletes = append(b.widgetDeletes, id)
	return nil
}

func (b *fakeBackend) DeleteTextWidget(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.textDeletes = append(b.textDeletes, id)
	return nil
}

func (b *fakeBackend) ListTextWidgets(context.Context) ([]TextWidgetRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]TextWidgetRecord(nil), b.listed...), nil
}

func (b *fakeBackend) calls() (widgets, texts, creates, deletes int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.widgetUpdates), len(b.textUpdates), len(b.creates), len(b.widgetDeletes) + len(b.textDeletes)
}

// recordingNotifier captures warnings.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Warn(_ context.Context, message string, _ map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// inline runs dispatched work synchronously so assertions see every
// persistence call the moment the operation returns.
func inline(fn func()) { fn() }

func newTestService(backend Backend) *Service {
	return NewService(Options{
		Backend:    backend,
		Editable:   true,
		Dispatcher: inline,
	})
}

func sampleWidget(id string, x, y, w, h int) Widget {
	return Widget{
		ID:       id,
		Geometry: Geometry{X: x, Y: y, Width: w, Height: h},
		Title:    "Widget " + id,
		LastStep: LastStep{
			Type:      "result",
			Data:      []any{map[string]any{"label": "a", "value": 1}},
			DataModel: DataModel{Type: "table"},
		},
	}
}
