// Package exports turns a document.Document into a downloadable file. Each
// backend maps the shared blocks onto its own page model; they agree on block
// order, cell text, column proportions and logo footprint.
package exports

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/clients"
	"github.com/pwnholic/observador/internal/document"
	"github.com/pwnholic/observador/internal/layout"
)

type Renderer interface {
	Name() string
	Extension() string
	ContentType() string
	// ImageEncoding is the form the backend embeds logos in.
	ImageEncoding() clients.Encoding
	// Render serializes doc. It never returns a partial artifact.
	Render(doc *document.Document, logos Logos) (*Artifact, error)
}

type Logos struct {
	Left  *clients.Image
	Right *clients.Image
}

func (l Logos) For(slot document.LogoSlot) *clients.Image {
	if slot == document.LogoRight {
		return l.Right
	}
	return l.Left
}

func (l Logos) validate(op string) error {
	if l.Left == nil || l.Right == nil {
		return internal.Errorf(internal.KindAssetLoad, op, "both logos must be loaded before rendering")
	}
	return nil
}

// Artifact is a finished file. The engine keeps no reference to it once
// returned.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

type factory func(cfg layout.Config) Renderer

var renderers = map[string]factory{
	"docx": func(cfg layout.Config) Renderer { return NewDOCXRenderer(cfg) },
	"pdf":  func(cfg layout.Config) Renderer { return NewPDFRenderer(cfg) },
	"html": func(cfg layout.Config) Renderer { return NewHTMLRenderer(cfg) },
}

// New returns the backend registered under name.
func New(name string, cfg layout.Config) (Renderer, error) {
	f, ok := renderers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown renderer %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f(cfg), nil
}

func Names() []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes a to dir under its own filename and returns the full path.
func Save(a *Artifact, dir string) (string, error) {
	if a == nil || a.Filename == "" {
		return "", fmt.Errorf("artifact has no filename")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := filepath.Join(dir, filepath.Base(a.Filename))
	tmp, err := os.CreateTemp(dir, ".observador-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return name, nil
}
