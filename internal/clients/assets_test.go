package clients

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwnholic/observador/internal"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testOptions(cache bool) *AssetOptions {
	return &AssetOptions{
		HTTP: &HTTPClientOptions{
			RetryCount:       0,
			RetryWaitTime:    10 * time.Millisecond,
			RetryMaxWaitTime: 10 * time.Millisecond,
			Timeout:          2 * time.Second,
			UserAgent:        "test",
		},
		Cache: cache,
	}
}

type logoServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newLogoServer(t *testing.T, body []byte, delay time.Duration) *logoServer {
	t.Helper()
	s := &logoServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if delay > 0 {
			time.Sleep(delay)
		}
		switch r.URL.Path {
		case "/missing.png":
			http.NotFound(w, r)
		case "/broken.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("definitely not a png"))
		default:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func TestLoadEncodesForRenderer(t *testing.T) {
	srv := newLogoServer(t, pngBytes(t, 40, 30), 0)
	loader := NewAssetLoader(testOptions(false))
	defer loader.Close()

	img, err := loader.Load(context.Background(), srv.URL+"/left.png", EncodingJPEG)
	require.NoError(t, err)
	assert.Equal(t, EncodingJPEG, img.Encoding)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 30, img.Height)

	_, err = jpeg.DecodeConfig(bytes.NewReader(img.Data))
	assert.NoError(t, err)

	img, err = loader.Load(context.Background(), srv.URL+"/left.png", EncodingPNG)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 40, cfg.Width)
}

func TestLoadFailuresAreAssetLoadErrors(t *testing.T) {
	srv := newLogoServer(t, pngBytes(t, 4, 4), 0)
	loader := NewAssetLoader(testOptions(false))
	defer loader.Close()

	for _, u := range []string{
		srv.URL + "/missing.png",
		srv.URL + "/broken.png",
		"ftp://example.com/logo.png",
		filepath.Join(t.TempDir(), "nope.png"),
		"",
	} {
		_, err := loader.Load(context.Background(), u, EncodingPNG)
		require.Error(t, err, u)
		assert.True(t, errors.Is(err, internal.ErrAssetLoad), u)
	}
}

func TestLoadTimesOut(t *testing.T) {
	srv := newLogoServer(t, pngBytes(t, 4, 4), 500*time.Millisecond)
	opts := testOptions(false)
	opts.HTTP.Timeout = 50 * time.Millisecond
	loader := NewAssetLoader(opts)
	defer loader.Close()

	_, err := loader.Load(context.Background(), srv.URL+"/slow.png", EncodingPNG)
	assert.True(t, errors.Is(err, internal.ErrAssetLoad))
}

func TestLoadLocalFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "escudo.png")
	require.NoError(t, os.WriteFile(name, pngBytes(t, 16, 16), 0o644))

	loader := NewAssetLoader(testOptions(false))
	defer loader.Close()

	for _, u := range []string{name, "file://" + name} {
		img, err := loader.Load(context.Background(), u, EncodingPNG)
		require.NoError(t, err, u)
		assert.Equal(t, 16, img.Width)
	}
}

func TestLoadDownscalesLargeLogos(t *testing.T) {
	srv := newLogoServer(t, pngBytes(t, 1200, 600), 0)
	opts := testOptions(false)
	opts.MaxPixels = 300
	loader := NewAssetLoader(opts)
	defer loader.Close()

	img, err := loader.Load(context.Background(), srv.URL+"/big.png", EncodingPNG)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Width)
	assert.Equal(t, 150, img.Height)
}

func TestLoadPair(t *testing.T) {
	srv := newLogoServer(t, pngBytes(t, 8, 8), 0)
	loader := NewAssetLoader(testOptions(false))
	defer loader.Close()

	left, right, err := loader.LoadPair(context.Background(), srv.URL+"/a.png", srv.URL+"/b.png", EncodingPNG)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/a.png", left.URL)
	assert.Equal(t, srv.URL+"/b.png", right.URL)

	left, right, err = loader.LoadPair(context.Background(), srv.URL+"/a.png", srv.URL+"/missing.png", EncodingPNG)
	assert.Error(t, err)
	assert.Nil(t, left)
	assert.Nil(t, right)
}

func TestCacheCoalescesConcurrentFetches(t *testing.T) {
	srv := newLogoServer(t, pngBytes(t, 8, 8), 100*time.Millisecond)
	loader := NewAssetLoader(testOptions(true))
	defer loader.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := loader.Load(context.Background(), srv.URL+"/shared.png", EncodingPNG)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := loader.Load(context.Background(), srv.URL+"/shared.png", EncodingJPEG)
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	srv := newLogoServer(t, pngBytes(t, 8, 8), 0)
	loader := NewAssetLoader(testOptions(true))
	defer loader.Close()

	_, err := loader.Load(context.Background(), srv.URL+"/missing.png", EncodingPNG)
	require.Error(t, err)
	_, err = loader.Load(context.Background(), srv.URL+"/missing.png", EncodingPNG)
	require.Error(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())
}
