package clients

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"resty.dev/v3"

	"github.com/pwnholic/observador/internal"
)

const defaultMaxPixels = 512

type AssetOptions struct {
	HTTP *HTTPClientOptions
	// MaxPixels bounds the longest side of a decoded logo; 0 keeps the
	// default, a negative value disables downscaling.
	MaxPixels int
	// Cache keeps decoded logos per URL for the life of the loader.
	Cache bool
}

// AssetLoader fetches logos over HTTP(S) or from the local filesystem and
// re-encodes them for a renderer. It is safe for concurrent use; with Cache
// enabled, concurrent loads of one URL share a single fetch.
type AssetLoader struct {
	client    *resty.Client
	timeout   time.Duration
	maxPixels int
	cache     bool

	group   singleflight.Group
	decoded sync.Map
}

func NewAssetLoader(opts *AssetOptions) *AssetLoader {
	if opts == nil {
		opts = &AssetOptions{}
	}
	httpOpts := opts.HTTP
	if httpOpts == nil {
		httpOpts = DefaultHTTPClientOptions()
	}
	maxPixels := opts.MaxPixels
	if maxPixels == 0 {
		maxPixels = defaultMaxPixels
	}

	return &AssetLoader{
		client:    newHTTPClient(httpOpts),
		maxPixels: maxPixels,
		cache:     opts.Cache,
		timeout:   httpOpts.Timeout,
	}
}

func (l *AssetLoader) Close() {
	l.client.Close()
}

// Load fetches rawURL and returns it encoded as enc. Every failure is an
// asset load error.
func (l *AssetLoader) Load(ctx context.Context, rawURL string, enc Encoding) (*Image, error) {
	const op = "clients.Load"

	img, err := l.decode(ctx, rawURL)
	if err != nil {
		return nil, internal.Errorf(internal.KindAssetLoad, op, "%s: %w", rawURL, err)
	}

	data, err := encodeImage(img, enc)
	if err != nil {
		return nil, internal.Errorf(internal.KindAssetLoad, op, "%s: %w", rawURL, err)
	}
	b := img.Bounds()
	return &Image{
		URL:      rawURL,
		Data:     data,
		Encoding: enc,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// LoadPair loads both logos concurrently. It returns only when both are
// ready or one has failed; a partial pair is never returned.
func (l *AssetLoader) LoadPair(ctx context.Context, leftURL, rightURL string, enc Encoding) (*Image, *Image, error) {
	var left, right *Image
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := l.Load(ctx, leftURL, enc)
		left = img
		return err
	})
	g.Go(func() error {
		img, err := l.Load(ctx, rightURL, enc)
		right = img
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (l *AssetLoader) decode(ctx context.Context, rawURL string) (image.Image, error) {
	if !l.cache {
		ctx, cancel := context.WithTimeout(ctx, l.timeout)
		defer cancel()
		return l.fetchAndDecode(ctx, rawURL)
	}

	if img, ok := l.decoded.Load(rawURL); ok {
		internal.Debug("asset cache hit: %s", rawURL)
		return img.(image.Image), nil
	}

	// Detached from ctx: one fetch serves every waiter on this URL.
	ch := l.group.DoChan(rawURL, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		img, err := l.fetchAndDecode(fetchCtx, rawURL)
		if err != nil {
			return nil, err
		}
		l.decoded.Store(rawURL, img)
		return img, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

func (l *AssetLoader) fetchAndDecode(ctx context.Context, rawURL string) (image.Image, error) {
	data, contentType, err := l.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	img, format, err := decodeImage(data, contentType, rawURL)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	internal.Debug("asset decoded: %s format=%s size=%dx%d", rawURL, format, b.Dx(), b.Dy())
	return fitWithin(img, l.maxPixels), nil
}

func (l *AssetLoader) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if rawURL == "" {
		return nil, "", errors.New("asset URL is empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l.fetchHTTP(ctx, rawURL)
	case "file":
		return readLocal(ctx, u.Path)
	case "":
		return readLocal(ctx, rawURL)
	}
	return nil, "", fmt.Errorf("unsupported asset scheme %q", u.Scheme)
}

func (l *AssetLoader) fetchHTTP(ctx context.Context, rawURL string) ([]byte, string, error) {
	internal.Debug("fetching asset %s", rawURL)

	resp, err := l.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch asset: %w", err)
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}

	if err := statusError(resp); err != nil {
		return nil, "", err
	}

	data := resp.Bytes()
	if len(data) == 0 && resp.Body != nil {
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read asset body: %w", err)
		}
	}

	contentType := resp.Header().Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return data, strings.TrimSpace(contentType), nil
}

func readLocal(ctx context.Context, name string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read asset file: %w", err)
	}
	return data, "", nil
}
