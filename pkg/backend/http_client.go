package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	canvas "github.com/goliatone/go-canvas/components/canvas"
)

// HTTPConfig configures the HTTP persistence client.
type HTTPConfig struct {
	BaseURL  string
	APIKey   string
	ReportID string
	// ReadOnly selects the public text-widget listing used for viewers
	// without write permission.
	ReadOnly   bool
	HTTPClient *http.Client
}

// HTTPClient persists widgets and text widgets through the REST backend.
type HTTPClient struct {
	baseURL  string
	apiKey   string
	reportID string
	readOnly bool
	client   *http.Client
}

var _ canvas.Backend = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the widget persistence API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		reportID: cfg.ReportID,
		readOnly: cfg.ReadOnly,
		client:   httpClient,
	}, nil
}

// UpdateWidget persists data-widget geometry via PUT /widgets/{id}.
func (c *HTTPClient) UpdateWidget(ctx context.Context, update canvas.WidgetUpdate) error {
	payload := widgetPayload{
		ID:     update.ID,
		X:      update.Geometry.X,
		Y:      update.Geometry.Y,
		Width:  update.Geometry.Width,
		Height: update.Geometry.Height,
	}
	return c.do(ctx, http.MethodPut, "/widgets/"+url.PathEscape(update.ID), payload, nil)
}

// CreateTextWidget persists a new text widget via POST /text_widgets and
// returns the authoritative record.
func (c *HTTPClient) CreateTextWidget(ctx context.Context, create canvas.TextWidgetCreate) (canvas.TextWidgetRecord, error) {
	payload := textWidgetPayload{
		Content: &create.Content,
		X:       create.Geometry.X,
		Y:       create.Geometry.Y,
		Width:   create.Geometry.Width,
		Height:  create.Geometry.Height,
	}
	var resp textWidgetResponse
	if err := c.do(ctx, http.MethodPost, "/text_widgets", payload, &resp); err != nil {
		return canvas.TextWidgetRecord{}, err
	}
	return resp.toRecord(), nil
}

// UpdateTextWidget persists text-widget geometry (and content when carried)
// via PUT /text_widgets/{id}.
func (c *HTTPClient) UpdateTextWidget(ctx context.Context, update canvas.TextWidgetUpdate) error {
	payload := textWidgetPayload{
		ID:     update.ID,
		X:      update.Geometry.X,
		Y:      update.Geometry.Y,
		Width:  update.Geometry.Width,
		Height: update.Geometry.Height,
	}
	if update.HasContent {
		payload.Content = &update.Content
	}
	return c.do(ctx, http.MethodPut, "/text_widgets/"+url.PathEscape(update.ID), payload, nil)
}

// DeleteWidget removes a data widget via DELETE /widgets/{id}.
func (c *HTTPClient) DeleteWidget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/widgets/"+url.PathEscape(id), nil, nil)
}

// DeleteTextWidget removes a text widget via DELETE /text_widgets/{id}.
func (c *HTTPClient) DeleteTextWidget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/text_widgets/"+url.PathEscape(id), nil, nil)
}

// ListTextWidgets hydrates the report's text widgets. Read-only viewers hit
// the public listing variant.
func (c *HTTPClient) ListTextWidgets(ctx context.Context) ([]canvas.TextWidgetRecord, error) {
	path := "/text_widgets"
	if c.readOnly {
		path = "/public/text_widgets"
	}
	if c.reportID != "" {
		path += "?report_id=" + url.QueryEscape(c.reportID)
	}
	var resp []textWidgetResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	records := make([]canvas.TextWidgetRecord, len(resp))
	for i, item := range resp {
		records[i] = item.toRecord()
	}
	return records, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("backend: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("backend: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}

type widgetPayload struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type textWidgetPayload struct {
	ID      string  `json:"id,omitempty"`
	Content *string `json:"content,omitempty"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
}

type textWidgetResponse struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func (r textWidgetResponse) toRecord() canvas.TextWidgetRecord {
	return canvas.TextWidgetRecord{
		ID:      r.ID,
		Content: r.Content,
		Geometry: canvas.Geometry{
			X:      r.X,
			Y:      r.Y,
			Width:  r.Width,
			Height: r.Height,
		},
	}
}
