package canvas

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRegistryDefaultsRegistered(t *testing.T) {
	reg := NewRegistry()
	for _, vizType := range []string{"table", "count", "bar_chart", "line_chart", "pie_chart"} {
		if _, ok := reg.Resolve(vizType); !ok {
			t.Fatalf("default renderer %s missing", vizType)
		}
	}
}

func TestRegistryUnknownTypeRendersPlaceholder(t *testing.T) {
	reg := NewRegistry()
	widget := sampleWidget("w-1", 0, 0, 4, 4)
	widget.LastStep.DataModel.Type = "hologram"

	html, err := reg.RenderWidget(context.Background(), RenderRequest{Widget: widget})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "canvas-widget-empty") {
		t.Fatalf("expected placeholder markup, got %q", html)
	}
}

func TestRegistryComputingWidgetRendersLoading(t *testing.T) {
	reg := NewRegistry()
	widget := sampleWidget("w-1", 0, 0, 4, 4)
	widget.LastStep.Type = StepInit

	html, err := reg.RenderWidget(context.Background(), RenderRequest{Widget: widget})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "canvas-widget-loading") {
		t.Fatalf("expected loading markup, got %q", html)
	}
}

func TestRegistryCustomRenderer(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(RendererDefinition{
		Type: "custom",
		Name: "Custom",
		Load: func() (Renderer, error) {
			return RendererFunc(func(context.Context, RenderRequest) (string, error) {
				return "<section>custom</section>", nil
			}), nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	widget := sampleWidget("w-1", 0, 0, 4, 4)
	widget.LastStep.DataModel.Type = "custom"
	html, err := reg.RenderWidget(context.Background(), RenderRequest{Widget: widget})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != "<section>custom</section>" {
		t.Fatalf("unexpected markup %q", html)
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(RendererDefinition{Name: "no type"}); err == nil {
		t.Fatal("expected type validation error")
	}
	if err := reg.Register(RendererDefinition{Type: "x"}); err == nil {
		t.Fatal("expected factory validation error")
	}
}

func TestRegistryFailedFactoryReportsMiss(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(RendererDefinition{
		Type: "broken",
		Load: func() (Renderer, error) { return nil, errors.New("no backend") },
	})
	if _, ok := reg.Resolve("broken"); ok {
		t.Fatal("broken factory should report a miss")
	}
}

func TestRenderTable(t *testing.T) {
	widget := Widget{
		ID:    "w-1",
		Title: "Signups",
		LastStep: LastStep{
			Type: "result",
			Data: []any{
				map[string]any{"plan": "pro", "count": 12},
				map[string]any{"plan": "free", "count": 40},
			},
			DataModel: DataModel{Type: "table"},
		},
	}
	html, err := renderTable(context.Background(), RenderRequest{Widget: widget})
	if err != nil {
		t.Fatalf("render table: %v", err)
	}
	for _, fragment := range []string{"<th>count</th>", "<th>plan</th>", "<td>pro</td>", "<td>40</td>"} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("missing %q in %q", fragment, html)
		}
	}
}

func TestRenderTableHonorsConfiguredColumns(t *testing.T) {
	widget := Widget{
		ID: "w-1",
		LastStep: LastStep{
			Type: "result",
			Data: []any{map[string]any{"plan": "pro", "count": 12, "internal": "x"}},
			DataModel: DataModel{
				Type:    "table",
				Options: map[string]any{"columns": []any{"plan", "count"}},
			},
		},
	}
	html, err := renderTable(context.Background(), RenderRequest{Widget: widget})
	if err != nil {
		t.Fatalf("render table: %v", err)
	}
	if strings.Contains(html, "internal") {
		t.Fatalf("unlisted column leaked: %q", html)
	}
	if strings.Index(html, "<th>plan</th>") > strings.Index(html, "<th>count</th>") {
		t.Fatalf("configured column order not honored: %q", html)
	}
}

func TestRenderCount(t *testing.T) {
	widget := Widget{
		ID:    "w-1",
		Title: "Active Users",
		LastStep: LastStep{
			Type:      "result",
			Data:      1234.0,
			DataModel: DataModel{Type: "count"},
		},
	}
	html, err := renderCount(context.Background(), RenderRequest{Widget: widget})
	if err != nil {
		t.Fatalf("render count: %v", err)
	}
	if !strings.Contains(html, "<span>1234</span>") {
		t.Fatalf("unexpected markup %q", html)
	}
}

func TestParseChartPoints(t *testing.T) {
	points := parseChartPoints([]any{
		map[string]any{"label": "Mon", "value": 3},
		map[string]any{"name": "Tue", "value": "4.5"},
		[]any{"Wed", 5.0},
		map[string]any{"label": "skip me"},
	})
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %#v", points)
	}
	if points[1].Label != "Tue" || points[1].Value != 4.5 {
		t.Fatalf("unexpected point %#v", points[1])
	}

	flat := parseChartPoints(map[string]any{"b": 2, "a": 1})
	if len(flat) != 2 || flat[0].Label != "a" {
		t.Fatalf("flat map should sort by label: %#v", flat)
	}
}

func TestEChartsRendererProducesMarkup(t *testing.T) {
	renderer := NewEChartsRenderer("bar", WithRenderCache(nil))
	widget := Widget{
		ID:    "w-1",
		Title: "Revenue",
		LastStep: LastStep{
			Type: "result",
			Data: []any{
				map[string]any{"label": "Q1", "value": 100},
				map[string]any{"label": "Q2", "value": 140},
			},
			DataModel: DataModel{Type: "bar_chart"},
		},
	}
	html, err := renderer.Render(context.Background(), RenderRequest{Widget: widget})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "echarts") {
		t.Fatalf("expected echarts markup, got %d bytes", len(html))
	}
}

func TestEChartsRendererRejectsEmptyData(t *testing.T) {
	renderer := NewEChartsRenderer("line")
	widget := Widget{ID: "w-1", LastStep: LastStep{Type: "result"}}
	if _, err := renderer.Render(context.Background(), RenderRequest{Widget: widget}); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestTTLRenderCache(t *testing.T) {
	cache := NewTTLRenderCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "<div>once</div>", nil
	}
	for i := 0; i < 3; i++ {
		html, err := cache.GetOrRender("key", render)
		if err != nil {
			t.Fatalf("get or render: %v", err)
		}
		if html != "<div>once</div>" {
			t.Fatalf("unexpected html %q", html)
		}
	}
	if calls != 1 {
		t.Fatalf("expected single render, got %d", calls)
	}
}

func TestTTLRenderCacheErrorsNotCached(t *testing.T) {
	cache := NewTTLRenderCache(time.Minute)
	failures := 0
	_, err := cache.GetOrRender("key", func() (string, error) {
		failures++
		return "", errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected render error")
	}
	html, err := cache.GetOrRender("key", func() (string, error) { return "<div>ok</div>", nil })
	if err != nil || html != "<div>ok</div>" {
		t.Fatalf("retry after failure: %q %v", html, err)
	}
}

func TestStepHashDeterministic(t *testing.T) {
	step := LastStep{Type: "result", Data: []any{map[string]any{"label": "a", "value": 1}}}
	if stepHash(step) != stepHash(step) {
		t.Fatal("hash not deterministic")
	}
	other := LastStep{Type: "result", Data: []any{map[string]any{"label": "a", "value": 2}}}
	if stepHash(step) == stepHash(other) {
		t.Fatal("distinct results should hash differently")
	}
}
