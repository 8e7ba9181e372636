package canvas

import "strings"

// ThemeTokens carries the presentation tokens both grid views consume.
// Tokens are cosmetic only and never affect layout.
type ThemeTokens struct {
	Background     string `json:"background"`
	TextColor      string `json:"text_color"`
	CardBackground string `json:"card_background"`
	CardBorder     string `json:"card_border"`
}

// ThemeResolver derives tokens from a theme name plus per-report overrides.
type ThemeResolver interface {
	Tokens(name string, overrides map[string]string) ThemeTokens
}

// ThemeResolverFunc adapts a function to the ThemeResolver interface.
type ThemeResolverFunc func(name string, overrides map[string]string) ThemeTokens

// Tokens calls the wrapped function.
func (f ThemeResolverFunc) Tokens(name string, overrides map[string]string) ThemeTokens {
	return f(name, overrides)
}

var builtinThemes = map[string]ThemeTokens{
	"light": {
		Background:     "#f4f5f7",
		TextColor:      "#1f2937",
		CardBackground: "#ffffff",
		CardBorder:     "#e5e7eb",
	},
	"dark": {
		Background:     "#111827",
		TextColor:      "#f9fafb",
		CardBackground: "#1f2937",
		CardBorder:     "#374151",
	},
}

// DefaultThemeResolver resolves the built-in palettes, falling back to the
// light palette for unknown names.
type DefaultThemeResolver struct{}

// Tokens resolves the named palette and applies overrides on top.
func (DefaultThemeResolver) Tokens(name string, overrides map[string]string) ThemeTokens {
	tokens, ok := builtinThemes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		tokens = builtinThemes["light"]
	}
	if v := overrides["background"]; v != "" {
		tokens.Background = v
	}
	if v := overrides["text_color"]; v != "" {
		tokens.TextColor = v
	}
	if v := overrides["card_background"]; v != "" {
		tokens.CardBackground = v
	}
	if v := overrides["card_border"]; v != "" {
		tokens.CardBorder = v
	}
	return tokens
}

// CSSVariablesInline renders the tokens as an inline CSS variable style
// string for the canvas container.
func (t ThemeTokens) CSSVariablesInline() string {
	var builder strings.Builder
	for _, pair := range [][2]string{
		{"--canvas-background", t.Background},
		{"--canvas-text-color", t.TextColor},
		{"--canvas-card-background", t.CardBackground},
		{"--canvas-card-border", t.CardBorder},
	} {
		if pair[1] == "" {
			continue
		}
		builder.WriteString(pair[0])
		builder.WriteString(": ")
		builder.WriteString(pair[1])
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}
