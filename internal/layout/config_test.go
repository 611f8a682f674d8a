package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwnholic/observador/internal"
)

func TestDefaultObservationWidthsSumToTotal(t *testing.T) {
	cfg := Default()

	assert.Equal(t, cfg.TotalWidth, cfg.Observation.Sum())
	assert.Equal(t, 14400, cfg.TotalWidth)
	assert.Equal(t, int(cfg.DocumentPage.ContentWidth()*TwipsPerPoint), cfg.TotalWidth)
	assert.Equal(t, cfg.TotalWidth, sumInts(cfg.StudentGrid[:]))
	assert.Equal(t, 4, cfg.MinCellLines)
	assert.Equal(t, Landscape, cfg.PDFPage.Orientation)
	require.NoError(t, cfg.Validate())
}

func TestDefaultIsACopy(t *testing.T) {
	cfg := Default()
	cfg.Observation.Period = 1
	cfg.StudentGrid[0] = 1

	again := Default()
	assert.Equal(t, 993, again.Observation.Period)
	assert.Equal(t, 1762, again.StudentGrid[0])
}

func TestValidateRejectsBrokenInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"observation sum", func(c *Config) { c.Observation.Signature += 60 }},
		{"student grid sum", func(c *Config) { c.StudentGrid[9]-- }},
		{"total vs page", func(c *Config) { c.TotalWidth = 14460; c.Observation.Signature += 60 }},
		{"header percent", func(c *Config) { c.HeaderPercent = [3]int{20, 70, 15} }},
		{"portrait page", func(c *Config) { c.PDFPage = Page{Width: 612, Height: 792, Margin: 40, Orientation: Portrait} }},
		{"min lines", func(c *Config) { c.MinCellLines = 0 }},
		{"empty font", func(c *Config) { c.FontFamily = "" }},
		{"zero column", func(c *Config) { c.Observation.Period = 0; c.Observation.Signature += 993 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, internal.ErrConfigInvariant))
		})
	}
}

func TestHeaderWidths(t *testing.T) {
	cfg := Default()
	widths := cfg.HeaderWidths()

	assert.Equal(t, []int{2160, 10080, 2160}, widths)
	assert.Equal(t, cfg.TotalWidth, sumInts(widths))
}

func TestSpanWidth(t *testing.T) {
	cfg := Default()
	grid := cfg.StudentGrid[:]

	w, err := SpanWidth(grid, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, 10572, w)

	w, err = SpanWidth(grid, 6, 2)
	require.NoError(t, err)
	assert.Equal(t, 1985, w)

	_, err = SpanWidth(grid, 8, 3)
	assert.Error(t, err)
}

func TestFitWidths(t *testing.T) {
	cols := Default().Observation.Slice()

	natural, err := FitWidths(cols, 1.0/TwipsPerPoint, 800)
	require.NoError(t, err)
	assert.InDelta(t, 49.65, natural[0], 0.001)

	fitted, err := FitWidths(cols, 1.0/TwipsPerPoint, 712)
	require.NoError(t, err)
	total := 0.0
	for _, w := range fitted {
		total += w
	}
	assert.InDelta(t, 712, total, 1e-9)
	assert.InDelta(t, fitted[1]/fitted[0], 3500.0/993.0, 1e-9)

	_, err = FitWidths(cols, 1.0/TwipsPerPoint, 300)
	assert.True(t, errors.Is(err, internal.ErrLayoutOverflow))
}

func TestFitTwips(t *testing.T) {
	cols := Default().Observation.Slice()

	same, err := FitTwips(cols, 14400)
	require.NoError(t, err)
	assert.Equal(t, cols, same)

	shrunk, err := FitTwips(cols, 12000)
	require.NoError(t, err)
	assert.Equal(t, 12000, sumInts(shrunk))
}

func TestFitBox(t *testing.T) {
	w, h := FitBox(200, 100, 60)
	assert.Equal(t, 60.0, w)
	assert.Equal(t, 30.0, h)

	w, h = FitBox(50, 100, 60)
	assert.Equal(t, 30.0, w)
	assert.Equal(t, 60.0, h)

	w, h = FitBox(0, 0, 60)
	assert.Equal(t, 60.0, w)
	assert.Equal(t, 60.0, h)
}
