// Package report runs one export end to end: logos, document model, one
// renderer, filename.
package report

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/clients"
	"github.com/pwnholic/observador/internal/document"
	"github.com/pwnholic/observador/internal/exports"
	"github.com/pwnholic/observador/internal/layout"
)

// AssetLoader fetches the two header logos in the renderer's encoding.
type AssetLoader interface {
	LoadPair(ctx context.Context, leftURL, rightURL string, enc clients.Encoding) (*clients.Image, *clients.Image, error)
}

type Options struct {
	Config     layout.Config
	Letterhead document.Letterhead
	LeftLogo   string
	RightLogo  string
	Logger     *internal.Logger
	// Now is the clock used for the default filename year and the document
	// creation time.
	Now func() time.Time
}

func DefaultOptions() *Options {
	return &Options{
		Config:     layout.Default(),
		Letterhead: document.DefaultLetterhead(),
		Now:        time.Now,
	}
}

// Coordinator holds no per-export state; Generate may be called from many
// goroutines at once.
type Coordinator struct {
	assets     AssetLoader
	renderer   exports.Renderer
	cfg        layout.Config
	letterhead document.Letterhead
	leftLogo   string
	rightLogo  string
	logger     *internal.Logger
	now        func() time.Time
}

func NewCoordinator(assets AssetLoader, renderer exports.Renderer, opts *Options) *Coordinator {
	if opts == nil {
		opts = DefaultOptions()
	}
	c := &Coordinator{
		assets:     assets,
		renderer:   renderer,
		cfg:        opts.Config,
		letterhead: opts.Letterhead,
		leftLogo:   opts.LeftLogo,
		rightLogo:  opts.RightLogo,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if c.logger == nil {
		c.logger = internal.GetDefaultLogger()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Coordinator) Renderer() exports.Renderer {
	return c.renderer
}

// Generate exports one record. A logo failure aborts before anything is
// built or rendered. filename may be empty, in which case DefaultFilename is
// used. No step is retried.
func (c *Coordinator) Generate(ctx context.Context, s document.Student, obs document.ObservationSet, filename string) (*exports.Artifact, error) {
	id := uuid.NewString()
	log := c.logger.WithPrefix(id[:8])
	start := c.now()
	log.Info("exporting %s as %s", s.Name.Or("Estudiante"), c.renderer.Name())

	left, right, err := c.assets.LoadPair(ctx, c.leftLogo, c.rightLogo, c.renderer.ImageEncoding())
	if err != nil {
		log.Error("logo fetch failed: %s", err)
		return nil, fmt.Errorf("failed to load logos: %w", err)
	}

	doc := document.Build(c.cfg, c.letterhead, s, obs)
	doc.ID = id
	doc.Created = start
	log.Debug("document built: %d blocks", len(doc.Blocks))

	artifact, err := c.renderer.Render(doc, exports.Logos{Left: left, Right: right})
	if err != nil {
		log.Error("%s render failed: %s", c.renderer.Name(), err)
		return nil, fmt.Errorf("failed to render %s: %w", c.renderer.Name(), err)
	}

	if filename == "" {
		filename = DefaultFilename(s, c.renderer.Extension(), start)
	}
	artifact.Filename = filename
	log.Success("%s ready (%d bytes)", artifact.Filename, len(artifact.Data))
	return artifact, nil
}

var whitespace = regexp.MustCompile(`[\s\p{Zs}]+`)

// DefaultFilename is Observador_<name>_<year>.<ext>. Each run of whitespace
// in the name becomes one underscore; an empty name becomes "Estudiante" and
// an empty year becomes now's calendar year.
func DefaultFilename(s document.Student, ext string, now time.Time) string {
	name := whitespace.ReplaceAllString(s.Name.String(), "_")
	if name == "" {
		name = "Estudiante"
	}
	year := s.Year.String()
	if year == "" {
		year = strconv.Itoa(now.Year())
	}
	return fmt.Sprintf("Observador_%s_%s.%s", name, year, ext)
}
