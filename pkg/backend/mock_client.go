package backend

import (
	"context"
	"fmt"
	"sync"

	canvas "github.com/goliatone/go-canvas/components/canvas"

	"github.com/google/uuid"
)

// MockClient implements the persistence boundary in memory. Demos and tests
// use it in place of the HTTP client.
type MockClient struct {
	mu      sync.Mutex
	nextID  func() string
	widgets map[string]canvas.WidgetUpdate
	texts   map[string]canvas.TextWidgetRecord
	order   []string
}

var _ canvas.Backend = (*MockClient)(nil)

// NewMockClient builds an empty in-memory backend.
func NewMockClient() *MockClient {
	return &MockClient{
		nextID:  uuid.NewString,
		widgets: map[string]canvas.WidgetUpdate{},
		texts:   map[string]canvas.TextWidgetRecord{},
	}
}

// SeedTextWidget preloads a persisted text widget for hydration.
func (c *MockClient) SeedTextWidget(record canvas.TextWidgetRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.texts[record.ID]; !exists {
		c.order = append(c.order, record.ID)
	}
	c.texts[record.ID] = record
}

// UpdateWidget records the latest geometry for a data widget.
func (c *MockClient) UpdateWidget(_ context.Context, update canvas.WidgetUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.widgets[update.ID] = update
	return nil
}

// CreateTextWidget assigns an authoritative id and stores the record.
func (c *MockClient) CreateTextWidget(_ context.Context, create canvas.TextWidgetCreate) (canvas.TextWidgetRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record := canvas.TextWidgetRecord{
		ID:       c.nextID(),
		Content:  create.Content,
		Geometry: create.Geometry,
	}
	c.texts[record.ID] = record
	c.order = append(c.order, record.ID)
	return record, nil
}

// UpdateTextWidget stores geometry and, when carried, content.
func (c *MockClient) UpdateTextWidget(_ context.Context, update canvas.TextWidgetUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.texts[update.ID]
	if !ok {
		return fmt.Errorf("backend: unknown text widget %s", update.ID)
	}
	record.Geometry = update.Geometry
	if update.HasContent {
		record.Content = update.Content
	}
	c.texts[update.ID] = record
	return nil
}

// DeleteWidget drops a data widget.
func (c *MockClient) DeleteWidget(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.widgets, id)
	return nil
}

// DeleteTextWidget drops a text widget.
func (c *MockClient) DeleteTextWidget(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.texts, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListTextWidgets returns stored text widgets in insertion order.
func (c *MockClient) ListTextWidgets(context.Context) ([]canvas.TextWidgetRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]canvas.TextWidgetRecord, 0, len(c.order))
	for _, id := range c.order {
		if record, ok := c.texts[id]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}
