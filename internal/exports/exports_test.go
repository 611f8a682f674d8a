package exports

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/clients"
	"github.com/pwnholic/observador/internal/document"
	"github.com/pwnholic/observador/internal/layout"
)

func sampleDocument(t *testing.T) *document.Document {
	t.Helper()
	student := document.Student{
		Name:           "Ana María Pérez",
		Grade:          "5°",
		Year:           "2024",
		Age:            "10",
		DocumentNumber: "1002003004",
		Status:         "Antiguo",
		Guardian:       "Luz Pérez & Hijos <acudiente>",
	}
	obs := document.ObservationSet{
		document.PeriodI:   {Strengths: "Participa en clase\nAyuda a sus compañeros", Difficulties: "Ortografía"},
		document.PeriodIII: {Commitments: "Leer 20 minutos diarios"},
	}
	doc := document.Build(layout.Default(), document.DefaultLetterhead(), student, obs)
	doc.ID = "3f1b0d9e-0000-4000-8000-000000000001"
	doc.Created = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return doc
}

func testLogo(t *testing.T, enc clients.Encoding, w, h int) *clients.Image {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: 80, B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if enc == clients.EncodingJPEG {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	} else {
		require.NoError(t, png.Encode(&buf, img))
	}
	return &clients.Image{URL: "test://logo", Data: buf.Bytes(), Encoding: enc, Width: w, Height: h}
}

func testLogos(t *testing.T, r Renderer) Logos {
	t.Helper()
	return Logos{
		Left:  testLogo(t, r.ImageEncoding(), 64, 32),
		Right: testLogo(t, r.ImageEncoding(), 40, 40),
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"docx", "html", "pdf"}, Names())

	for _, name := range Names() {
		r, err := New(name, layout.Default())
		require.NoError(t, err)
		assert.Equal(t, name, r.Name())
	}

	r, err := New(" PDF ", layout.Default())
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Extension())

	_, err = New("odt", layout.Default())
	assert.ErrorContains(t, err, "unknown renderer")
}

func TestRenderRequiresBothLogos(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			r, err := New(name, layout.Default())
			require.NoError(t, err)

			logos := testLogos(t, r)
			logos.Right = nil
			a, err := r.Render(sampleDocument(t), logos)
			assert.Nil(t, a)
			assert.True(t, errors.Is(err, internal.ErrAssetLoad))
		})
	}
}

func TestLogosFor(t *testing.T) {
	left := &clients.Image{URL: "l"}
	right := &clients.Image{URL: "r"}
	logos := Logos{Left: left, Right: right}

	assert.Same(t, left, logos.For(document.LogoLeft))
	assert.Same(t, right, logos.For(document.LogoRight))
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := Save(&Artifact{Filename: "Observador_Ana_2024.pdf", Data: []byte("%PDF-1.4")}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Observador_Ana_2024.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = Save(&Artifact{}, dir)
	assert.Error(t, err)
}
