package canvas

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// RendererManifestDocument models a YAML/JSON manifest describing the
// renderers a deployment registers for its visualization types.
type RendererManifestDocument struct {
	Version   string             `json:"version" yaml:"version"`
	Name      string             `json:"name,omitempty" yaml:"name,omitempty"`
	Package   string             `json:"package,omitempty" yaml:"package,omitempty"`
	Renderers []ManifestRenderer `json:"renderers" yaml:"renderers"`
	Source    string             `json:"-" yaml:"-"`
}

// ManifestRenderer captures discovery metadata about one renderer entry.
type ManifestRenderer struct {
	Type          string         `json:"type" yaml:"type"`
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Summary       string         `json:"summary,omitempty" yaml:"summary,omitempty"`
	Entry         string         `json:"entry,omitempty" yaml:"entry,omitempty"`
	Package       string         `json:"package,omitempty" yaml:"package,omitempty"`
	OptionsSchema map[string]any `json:"options_schema,omitempty" yaml:"options_schema,omitempty"`
}

// LoadManifestFile reads a manifest from disk, registers its metadata
// against the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*RendererManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers renderer metadata from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *RendererManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("canvas: manifest document is nil")
	}
	for _, renderer := range doc.Renderers {
		r.recordRendererMetadata(renderer.Type, renderer)
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*RendererManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("canvas: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("canvas: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*RendererManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc RendererManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("canvas: manifest is empty")
		}
		return nil, fmt.Errorf("canvas: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *RendererManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("canvas: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Renderers))
	for idx, renderer := range doc.Renderers {
		if renderer.Type == "" {
			return fmt.Errorf("canvas: manifest renderer at index %d is missing type", idx)
		}
		if _, exists := seen[renderer.Type]; exists {
			return fmt.Errorf("canvas: manifest duplicates renderer type %s", renderer.Type)
		}
		seen[renderer.Type] = struct{}{}
	}
	return nil
}

func (doc *RendererManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}

func (p ManifestRenderer) isZero() bool {
	return p.Name == "" &&
		p.Summary == "" &&
		p.Entry == "" &&
		p.Package == "" &&
		len(p.OptionsSchema) == 0
}
