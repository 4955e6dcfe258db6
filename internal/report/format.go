package report

import (
	"errors"
	"fmt"
	"strings"
)

// Format selects a renderer.
type Format string

const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for formats without a renderer.
var ErrUnknownFormat = errors.New("unknown report format")

// Renderer turns a Document into bytes of a single format.
type Renderer interface {
	Format() Format
	ContentType() string
	Render(doc Document) ([]byte, error)
}

// ParseFormat accepts html, json, yaml or yml, case-insensitively. An empty
// value selects JSON.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
	}
}

// New returns the renderer for f.
func New(f Format) (Renderer, error) {
	switch f {
	case FormatHTML:
		return htmlRenderer{}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatYAML:
		return yamlRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Render is a shortcut for New(f) followed by Render.
func Render(f Format, doc Document) ([]byte, error) {
	r, err := New(f)
	if err != nil {
		return nil, err
	}
	return r.Render(doc)
}
