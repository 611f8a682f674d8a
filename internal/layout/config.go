// Package layout holds the geometry and typography shared by every renderer
// backend. Widths are expressed in twips (1/1440 inch); each backend converts
// them into its own unit.
package layout

import (
	"fmt"
	"sync"

	"github.com/pwnholic/observador/internal"
)

const (
	TwipsPerInch  = 1440
	TwipsPerPoint = 20
	PointsPerInch = 72

	// EMUPerPixel converts 96 dpi pixels to English Metric Units.
	EMUPerPixel = 9525
	// PointsPerPixel converts 96 dpi pixels to points.
	PointsPerPixel = 0.75

	// MinScale is the smallest proportional shrink a backend may apply to fit
	// a table into its page before reporting a layout overflow.
	MinScale = 0.5
)

type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// Page sizes are in points.
type Page struct {
	Width       float64
	Height      float64
	Margin      float64
	Orientation Orientation
}

func (p Page) ContentWidth() float64 {
	return p.Width - 2*p.Margin
}

func (p Page) ContentHeight() float64 {
	return p.Height - 2*p.Margin
}

type Border struct {
	Style string
	Width float64 // points
	Color string  // RRGGBB
}

// Margins are in twips.
type Margins struct {
	Top, Bottom, Left, Right int
}

// ObservationColumns are the observation table column widths in twips.
type ObservationColumns struct {
	Period       int
	Strengths    int
	Difficulties int
	Commitments  int
	Signature    int
}

func (c ObservationColumns) Slice() []int {
	return []int{c.Period, c.Strengths, c.Difficulties, c.Commitments, c.Signature}
}

func (c ObservationColumns) Sum() int {
	return c.Period + c.Strengths + c.Difficulties + c.Commitments + c.Signature
}

const StudentGridColumns = 10

type Config struct {
	FontFamily string
	Border     Border

	// DocumentPage is the editable word-processing page, PDFPage the fixed
	// page of the paginated backend.
	DocumentPage Page
	PDFPage      Page

	// TotalWidth is the table content width in twips.
	TotalWidth int

	Observation   ObservationColumns
	StudentGrid   [StudentGridColumns]int
	HeaderPercent [3]int

	CellMargin   Margins
	MinCellLines int
	LineSpacing  float64

	// LogoSize is the square logo footprint in 96 dpi pixels.
	LogoSize int
}

var (
	defaultConfig Config
	defaultOnce   sync.Once
)

// Default returns the process-wide layout. It is validated on first use and
// panics if the width invariant does not hold: a broken table geometry is a
// programming error, not something an export can recover from.
func Default() Config {
	defaultOnce.Do(func() {
		cfg := newDefault()
		if err := cfg.Validate(); err != nil {
			panic(err)
		}
		defaultConfig = cfg
	})
	return defaultConfig
}

func newDefault() Config {
	return Config{
		FontFamily: "Arial",
		Border:     Border{Style: "single", Width: 0.5, Color: "000000"},
		DocumentPage: Page{
			Width:       792,
			Height:      612,
			Margin:      36,
			Orientation: Landscape,
		},
		PDFPage: Page{
			Width:       792,
			Height:      612,
			Margin:      40,
			Orientation: Landscape,
		},
		TotalWidth: 14400,
		Observation: ObservationColumns{
			Period:       993,
			Strengths:    3500,
			Difficulties: 3500,
			Commitments:  3500,
			Signature:    2907,
		},
		StudentGrid:   [StudentGridColumns]int{1762, 1762, 1762, 1762, 1762, 1762, 992, 993, 921, 922},
		HeaderPercent: [3]int{15, 70, 15},
		CellMargin:    Margins{Top: 50, Bottom: 50, Left: 80, Right: 80},
		MinCellLines:  4,
		LineSpacing:   1.15,
		LogoSize:      80,
	}
}

// Validate checks the structural invariants every backend relies on.
func (c Config) Validate() error {
	const op = "layout.Validate"

	if c.FontFamily == "" {
		return internal.Errorf(internal.KindConfigInvariant, op, "font family is empty")
	}
	for _, p := range []Page{c.DocumentPage, c.PDFPage} {
		if p.Orientation != Landscape || p.Width < p.Height {
			return internal.Errorf(internal.KindConfigInvariant, op, "page %.0fx%.0f must be landscape", p.Width, p.Height)
		}
		if p.ContentWidth() <= 0 || p.ContentHeight() <= 0 {
			return internal.Errorf(internal.KindConfigInvariant, op, "margin %.0f leaves no content area", p.Margin)
		}
	}

	contentTwips := int(c.DocumentPage.ContentWidth() * TwipsPerPoint)
	if c.TotalWidth != contentTwips {
		return internal.Errorf(internal.KindConfigInvariant, op,
			"total width %d twips does not match page content width %d twips", c.TotalWidth, contentTwips)
	}
	if sum := c.Observation.Sum(); sum != c.TotalWidth {
		return internal.Errorf(internal.KindConfigInvariant, op,
			"observation columns sum to %d twips, want %d", sum, c.TotalWidth)
	}
	for i, w := range c.Observation.Slice() {
		if w <= 0 {
			return internal.Errorf(internal.KindConfigInvariant, op, "observation column %d has width %d", i, w)
		}
	}
	if sum := sumInts(c.StudentGrid[:]); sum != c.TotalWidth {
		return internal.Errorf(internal.KindConfigInvariant, op,
			"student grid sums to %d twips, want %d", sum, c.TotalWidth)
	}
	if sum := sumInts(c.HeaderPercent[:]); sum != 100 {
		return internal.Errorf(internal.KindConfigInvariant, op, "header columns sum to %d%%, want 100%%", sum)
	}
	if c.MinCellLines < 1 {
		return internal.Errorf(internal.KindConfigInvariant, op, "minimum cell lines must be positive, got %d", c.MinCellLines)
	}
	if c.LogoSize <= 0 {
		return internal.Errorf(internal.KindConfigInvariant, op, "logo size must be positive, got %d", c.LogoSize)
	}
	if c.LineSpacing <= 0 {
		return internal.Errorf(internal.KindConfigInvariant, op, "line spacing must be positive, got %g", c.LineSpacing)
	}
	return nil
}

// HeaderWidths splits TotalWidth by HeaderPercent; rounding leftovers go to
// the center column so the sum stays exact.
func (c Config) HeaderWidths() []int {
	widths := make([]int, len(c.HeaderPercent))
	used := 0
	for i, pct := range c.HeaderPercent {
		widths[i] = c.TotalWidth * pct / 100
		used += widths[i]
	}
	widths[1] += c.TotalWidth - used
	return widths
}

// SpanWidth returns the width of a cell spanning span grid columns starting
// at column start.
func SpanWidth(grid []int, start, span int) (int, error) {
	if start < 0 || span < 1 || start+span > len(grid) {
		return 0, fmt.Errorf("span %d+%d outside %d-column grid", start, span, len(grid))
	}
	return sumInts(grid[start : start+span]), nil
}

func LogoPoints(px int) float64 {
	return float64(px) * PointsPerPixel
}

func sumInts(v []int) int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}
