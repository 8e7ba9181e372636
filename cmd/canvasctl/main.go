package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-canvas/components/canvas"
	"github.com/goliatone/go-canvas/pkg/backend"
)

type cli struct {
	Validate validateCmd `cmd:"" help:"Validate a renderer manifest file."`
	Scaffold scaffoldCmd `cmd:"" help:"Scaffold a renderer stub and manifest entry."`
	Export   exportCmd   `cmd:"" help:"Export the text widgets of a report as JSON."`
}

type validateCmd struct {
	ManifestPath string `arg:"" type:"path" help:"Path to the renderer manifest YAML file."`
}

type scaffoldCmd struct {
	Type          string `required:"" help:"Visualization type identifier (e.g. scatter_chart)."`
	Name          string `required:"" help:"Display name for the renderer."`
	Summary       string `help:"One-line summary used in manifests."`
	ManifestPath  string `required:"" type:"path" help:"Path to the renderer manifest YAML file to update."`
	SchemaPath    string `type:"path" help:"Optional path to a JSON schema file for the renderer options."`
	RendererPkg   string `default:"github.com/goliatone/go-canvas/components/canvas" help:"Go package where the renderer factory lives."`
	RendererEntry string `help:"Factory identifier recorded in the manifest (defaults to New<Type>Renderer)."`
	RendererOut   string `help:"File path for the generated renderer stub (defaults to components/canvas/renderers/<type>_renderer.go)."`
	Overwrite     bool   `help:"Overwrite existing renderer stub / manifest entry if present."`
	SkipRenderer  bool   `name:"skip-renderer" help:"Skip renderer stub generation."`
}

type exportCmd struct {
	BaseURL  string `required:"" help:"Backend base URL (e.g. https://api.example.com/v1)."`
	APIKey   string `env:"CANVAS_API_KEY" help:"Bearer token for the backend."`
	ReportID string `help:"Scope the export to a single report."`
	ReadOnly bool   `help:"Use the public read-only endpoints."`
	JSON     bool   `help:"Emit JSON instead of YAML."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Renderer manifest utility for go-canvas deployments."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *validateCmd) Run(_ context.Context) error {
	doc, err := canvas.ReadManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s is valid (%d renderer(s))\n", cmd.ManifestPath, len(doc.Renderers))
	return nil
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("canvasctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if !cmd.Overwrite {
		for _, renderer := range doc.Renderers {
			if renderer.Type == cmd.Type {
				return fmt.Errorf("canvasctl: manifest already defines renderer %s (use --overwrite to replace)", cmd.Type)
			}
		}
	}

	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}

	baseName := strcase.ToCamel(cmd.Type)
	rendererType := baseName + "Renderer"
	entry := cmd.RendererEntry
	if entry == "" {
		entry = fmt.Sprintf("%s.New%s", cmd.RendererPkg, rendererType)
	}

	renderer := canvas.ManifestRenderer{
		Type:          cmd.Type,
		Name:          cmd.Name,
		Summary:       cmd.Summary,
		Entry:         entry,
		Package:       cmd.RendererPkg,
		OptionsSchema: schema,
	}

	replaced := false
	for idx := range doc.Renderers {
		if doc.Renderers[idx].Type == cmd.Type {
			doc.Renderers[idx] = renderer
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Renderers = append(doc.Renderers, renderer)
	}

	sort.Slice(doc.Renderers, func(i, j int) bool {
		return doc.Renderers[i].Type < doc.Renderers[j].Type
	})

	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}

	if cmd.SkipRenderer {
		fmt.Fprintf(os.Stdout, "✓ Added %s to %s (factory recorded as %s)\n", cmd.Type, manifestPath, entry)
		return nil
	}

	rendererPath := cmd.RendererOut
	if rendererPath == "" {
		rendererPath = filepath.Join("components", "canvas", "renderers", fmt.Sprintf("%s_renderer.go", sanitizeFileName(cmd.Type)))
	}
	if err := writeRendererStub(rendererPath, rendererType, cmd.Type, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s and generated %s\n", cmd.Type, manifestPath, rendererPath)
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("canvasctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("canvasctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func (cmd *exportCmd) Run(ctx context.Context) error {
	client, err := backend.NewHTTPClient(backend.HTTPConfig{
		BaseURL:  cmd.BaseURL,
		APIKey:   cmd.APIKey,
		ReportID: cmd.ReportID,
		ReadOnly: cmd.ReadOnly,
	})
	if err != nil {
		return err
	}
	records, err := client.ListTextWidgets(ctx)
	if err != nil {
		return err
	}
	if cmd.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(records)
}

func loadOrInitManifest(path string) (*canvas.RendererManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc := &canvas.RendererManifestDocument{
				Version:   canvas.ManifestVersion,
				Renderers: []canvas.ManifestRenderer{},
				Source:    path,
			}
			return doc, nil
		}
		return nil, fmt.Errorf("canvasctl: stat manifest: %w", err)
	}
	doc, err := canvas.ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func writeManifest(path string, doc *canvas.RendererManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("canvasctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("canvasctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("canvasctl: write manifest: %w", err)
	}
	return nil
}

func writeRendererStub(path, rendererType, vizType string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("canvasctl: renderer stub %s already exists (use --overwrite or --renderer-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("canvasctl: mkdir renderer dir: %w", err)
	}
	content := fmt.Sprintf(`package canvas

import (
	"context"
)

// %s renders %s widgets.
type %s struct{}

// New%s wires the renderer into the canvas registry.
func New%s() (Renderer, error) {
	return &%s{}, nil
}

// Render produces the widget markup. Replace with your implementation.
func (r *%s) Render(ctx context.Context, req RenderRequest) (string, error) {
	return "<div class=\"canvas-widget\">replace with real markup</div>", nil
}
`, rendererType, vizType, rendererType, rendererType, rendererType, rendererType, rendererType)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("canvasctl: write renderer stub: %w", err)
	}
	return nil
}

func sanitizeFileName(code string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")
	return strings.ToLower(replacer.Replace(code))
}
