package canvas

import (
	"embed"
	"io"

	template "github.com/goliatone/go-template"
)

// TemplateRenderer describes the template renderer contract used for the
// fullscreen page.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer backed by the embedded
// templates.
func NewTemplateRenderer() (TemplateRenderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}
