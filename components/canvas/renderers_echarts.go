package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "100%"

var sharedRenderCache = NewTTLRenderCache(5 * time.Minute)

// ChartPoint is one labeled value extracted from a widget result.
type ChartPoint struct {
	Label string
	Value float64
}

// EChartsRenderer renders server-side chart HTML for a chart type.
type EChartsRenderer struct {
	chartType  string
	cache      RenderCache
	theme      string
	assetsHost string
}

// EChartsRendererOption customizes renderer behavior.
type EChartsRendererOption func(*EChartsRenderer)

// WithRenderCache injects a render cache.
func WithRenderCache(cache RenderCache) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host so the ECharts JS loads from
// a CDN.
func WithChartAssetsHost(host string) EChartsRendererOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// NewEChartsRenderer builds a renderer for a specific chart type.
func NewEChartsRenderer(chartType string, options ...EChartsRendererOption) *EChartsRenderer {
	r := &EChartsRenderer{
		chartType: strings.ToLower(chartType),
		cache:     sharedRenderCache,
		theme:     types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render converts the widget's computed result into go-echarts markup.
func (r *EChartsRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	points := parseChartPoints(req.Widget.LastStep.Data)
	if len(points) == 0 {
		return "", fmt.Errorf("canvas: widget %s has no chartable data", req.Widget.ID)
	}
	renderFn := func() (string, error) {
		return r.render(req.Widget.Title, points)
	}
	if r.cache != nil {
		key := fmt.Sprintf("%s:%s:%s", req.Widget.ID, r.chartType, stepHash(req.Widget.LastStep))
		return r.cache.GetOrRender(key, renderFn)
	}
	return renderFn()
}

func (r *EChartsRenderer) render(title string, points []ChartPoint) (string, error) {
	switch r.chartType {
	case "bar":
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalChartOptions(title)...)
		bar.SetXAxis(axisLabels(points))
		bar.AddSeries(title, toBarData(points))
		return renderChart(bar)
	case "line":
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalChartOptions(title)...)
		line.SetXAxis(axisLabels(points))
		line.AddSeries(title, toLineData(points))
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case "pie":
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalChartOptions(title)...)
		pie.AddSeries(title, toPieData(points))
		return renderChart(pie)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", r.chartType)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func axisLabels(points []ChartPoint) []string {
	labels := make([]string, len(points))
	for i, point := range points {
		labels[i] = point.Label
	}
	return labels
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: point.Value}
	}
	return data
}

// parseChartPoints accepts the row shapes the backend produces: a list of
// {label|name, value} maps, a list of [label, value] pairs, or a flat
// label→value map.
func parseChartPoints(data any) []ChartPoint {
	switch rows := data.(type) {
	case []ChartPoint:
		return rows
	case []any:
		points := make([]ChartPoint, 0, len(rows))
		for _, raw := range rows {
			switch row := raw.(type) {
			case map[string]any:
				label := stringValue(row["label"], stringValue(row["name"], ""))
				value, ok := floatValue(row["value"])
				if !ok {
					continue
				}
				points = append(points, ChartPoint{Label: label, Value: value})
			case []any:
				if len(row) < 2 {
					continue
				}
				value, ok := floatValue(row[1])
				if !ok {
					continue
				}
				points = append(points, ChartPoint{Label: stringValue(row[0], ""), Value: value})
			}
		}
		return points
	case map[string]any:
		labels := make([]string, 0, len(rows))
		for label := range rows {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		points := make([]ChartPoint, 0, len(labels))
		for _, label := range labels {
			if value, ok := floatValue(rows[label]); ok {
				points = append(points, ChartPoint{Label: label, Value: value})
			}
		}
		return points
	default:
		return nil
	}
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func floatValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(value, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// DefaultRendererDefinitions returns the renderers every registry starts
// with: the echarts chart types plus the table and count renderers.
func DefaultRendererDefinitions() []RendererDefinition {
	defs := []RendererDefinition{
		{
			Type: "table",
			Name: "Table",
			Load: func() (Renderer, error) { return RendererFunc(renderTable), nil },
			BuildProps: func(w Widget) map[string]any {
				return map[string]any{"columns": tableColumns(w)}
			},
		},
		{
			Type: "count",
			Name: "Count",
			Load: func() (Renderer, error) { return RendererFunc(renderCount), nil },
		},
	}
	chartDefs := []struct {
		vizType string
		name    string
		chart   string
	}{
		{"bar_chart", "Bar Chart", "bar"},
		{"line_chart", "Line Chart", "line"},
		{"pie_chart", "Pie Chart", "pie"},
	}
	for _, entry := range chartDefs {
		chart := entry.chart
		defs = append(defs, RendererDefinition{
			Type: entry.vizType,
			Name: entry.name,
			Load: func() (Renderer, error) { return NewEChartsRenderer(chart), nil },
			BuildProps: func(w Widget) map[string]any {
				return map[string]any{"points": parseChartPoints(w.LastStep.Data)}
			},
		})
	}
	return defs
}

func renderTable(_ context.Context, req RenderRequest) (string, error) {
	rows, _ := req.Widget.LastStep.Data.([]any)
	columns := tableColumns(req.Widget)
	var builder strings.Builder
	builder.WriteString(`<table class="canvas-widget-table"><thead><tr>`)
	for _, column := range columns {
		builder.WriteString("<th>")
		builder.WriteString(html.EscapeString(column))
		builder.WriteString("</th>")
	}
	builder.WriteString("</tr></thead><tbody>")
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		builder.WriteString("<tr>")
		for _, column := range columns {
			builder.WriteString("<td>")
			builder.WriteString(html.EscapeString(fmt.Sprint(row[column])))
			builder.WriteString("</td>")
		}
		builder.WriteString("</tr>")
	}
	builder.WriteString("</tbody></table>")
	return builder.String(), nil
}

func tableColumns(w Widget) []string {
	if raw, ok := w.LastStep.DataModel.Options["columns"].([]any); ok {
		columns := make([]string, 0, len(raw))
		for _, c := range raw {
			if s, ok := c.(string); ok {
				columns = append(columns, s)
			}
		}
		if len(columns) > 0 {
			return columns
		}
	}
	rows, _ := w.LastStep.Data.([]any)
	if len(rows) == 0 {
		return nil
	}
	first, ok := rows[0].(map[string]any)
	if !ok {
		return nil
	}
	columns := make([]string, 0, len(first))
	for column := range first {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func renderCount(_ context.Context, req RenderRequest) (string, error) {
	value, ok := floatValue(req.Widget.LastStep.Data)
	if !ok {
		if points := parseChartPoints(req.Widget.LastStep.Data); len(points) > 0 {
			value = points[0].Value
			ok = true
		}
	}
	if !ok {
		return "", fmt.Errorf("canvas: widget %s has no countable data", req.Widget.ID)
	}
	return fmt.Sprintf(`<div class="canvas-widget-count"><span>%s</span><label>%s</label></div>`,
		strconv.FormatFloat(value, 'f', -1, 64), html.EscapeString(req.Widget.Title)), nil
}
