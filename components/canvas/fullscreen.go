package canvas

import (
	"context"
	"fmt"
	"io"
	"strconv"
)

// FullscreenCard is one placed card in the fullscreen page view model.
// Column/Row are 1-based CSS grid lines derived from mirror node geometry.
type FullscreenCard struct {
	ID     string
	Kind   Kind
	Title  string
	HTML   string
	Column int
	Span   int
	Row    int
	Rows   int
}

// RenderFullscreen renders the fullscreen page for the current snapshot
// through an open mirror. The mirror is opened (and left open) on demand.
func (s *Service) RenderFullscreen(ctx context.Context, renderer TemplateRenderer, out io.Writer) error {
	if renderer == nil {
		return fmt.Errorf("canvas: template renderer is required")
	}
	mirror := s.Fullscreen()
	if mirror == nil {
		opened, err := s.OpenFullscreen()
		if err != nil {
			return err
		}
		mirror = opened
	} else if err := mirror.Refresh(); err != nil {
		return err
	}

	entries := s.store.Entries()
	byID := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		byID[entry.ID()] = entry
	}

	tokens := s.Tokens()
	cards := make([]map[string]any, 0, len(entries))
	for _, node := range mirror.Nodes() {
		entry, ok := byID[node.ID]
		if !ok {
			continue
		}
		card := FullscreenCard{
			ID:     node.ID,
			Kind:   entry.Kind,
			Column: node.X + 1,
			Span:   node.W,
			Row:    node.Y + 1,
			Rows:   node.H,
		}
		if entry.Kind == KindText {
			card.HTML = entry.Text.Content
		} else {
			card.Title = entry.Widget.Title
			html, err := s.opts.Renderers.RenderWidget(ctx, RenderRequest{
				Widget: entry.Widget,
				Tokens: tokens,
			})
			if err != nil {
				s.opts.Telemetry.Record(ctx, "canvas.render.error", map[string]any{
					"entry_id": node.ID,
					"error":    err.Error(),
				})
				html = placeholderMarkup(entry.Widget)
			}
			card.HTML = html
		}
		// Grid-line values are pre-formatted: the template engine renders
		// numeric values as floats, which CSS grid placement rejects.
		cards = append(cards, map[string]any{
			"id":     card.ID,
			"kind":   string(card.Kind),
			"title":  card.Title,
			"html":   card.HTML,
			"column": strconv.Itoa(card.Column),
			"span":   strconv.Itoa(card.Span),
			"row":    strconv.Itoa(card.Row),
			"rows":   strconv.Itoa(card.Rows),
		})
	}

	grid := s.engine.Grid()
	_, err := renderer.Render("fullscreen", map[string]any{
		"title":       "Dashboard",
		"style_vars":  tokens.CSSVariablesInline(),
		"columns":     strconv.Itoa(grid.Columns()),
		"cell_height": strconv.Itoa(grid.CellHeight()),
		"zoom":        strconv.FormatFloat(grid.Zoom(), 'g', -1, 64),
		"cards":       cards,
	}, out)
	return err
}
