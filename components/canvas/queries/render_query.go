package queries

import (
	"context"
	"fmt"

	canvas "github.com/goliatone/go-canvas/components/canvas"
	gocommand "github.com/goliatone/go-command"
)

// RenderEntryRequest asks for the presentation markup of one entry.
type RenderEntryRequest struct {
	EntryID string `json:"entry_id"`
}

// RenderedEntry is the markup produced for one entry.
type RenderedEntry struct {
	EntryID string      `json:"entry_id"`
	Kind    canvas.Kind `json:"kind"`
	HTML    string      `json:"html"`
}

type renderService interface {
	Store() *canvas.Store
	Renderers() *canvas.Registry
	Tokens() canvas.ThemeTokens
}

// RenderEntryQuery renders one entry: text widgets return their stored
// markup, data widgets run through the renderer registry.
type RenderEntryQuery struct {
	service renderService
}

// NewRenderEntryQuery builds the query.
func NewRenderEntryQuery(service renderService) *RenderEntryQuery {
	return &RenderEntryQuery{service: service}
}

var _ gocommand.Querier[RenderEntryRequest, RenderedEntry] = (*RenderEntryQuery)(nil)

// Query renders the entry's markup.
func (q *RenderEntryQuery) Query(ctx context.Context, msg RenderEntryRequest) (RenderedEntry, error) {
	if msg.EntryID == "" {
		return RenderedEntry{}, fmt.Errorf("render query requires entry id")
	}
	entry, ok := q.service.Store().Entry(msg.EntryID)
	if !ok {
		return RenderedEntry{}, fmt.Errorf("render query: %w: %s", canvas.ErrUnknownEntry, msg.EntryID)
	}
	if entry.Kind == canvas.KindText {
		return RenderedEntry{EntryID: msg.EntryID, Kind: canvas.KindText, HTML: entry.Text.Content}, nil
	}
	html, err := q.service.Renderers().RenderWidget(ctx, canvas.RenderRequest{
		Widget: entry.Widget,
		Tokens: q.service.Tokens(),
	})
	if err != nil {
		return RenderedEntry{}, err
	}
	return RenderedEntry{EntryID: msg.EntryID, Kind: canvas.KindRegular, HTML: html}, nil
}
