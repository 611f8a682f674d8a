package clients

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/url"
	"path"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Encoding is the byte representation a renderer wants its images in.
type Encoding int

const (
	EncodingPNG Encoding = iota
	EncodingJPEG
)

func (e Encoding) Extension() string {
	if e == EncodingJPEG {
		return "jpeg"
	}
	return "png"
}

func (e Encoding) ContentType() string {
	return "image/" + e.Extension()
}

// Image is an encoded logo ready to embed. Width and Height are the pixel
// dimensions of Data; renderers place it at their own fixed footprint.
type Image struct {
	URL      string
	Data     []byte
	Encoding Encoding
	Width    int
	Height   int
}

func decodeImage(data []byte, contentType, rawURL string) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}

	if contentType == "image/webp" || imageExtension(rawURL) == "webp" {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode webp image: %w", err)
		}
		return img, "webp", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return nil, "", fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}
	return img, format, nil
}

func imageExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
}

// fitWithin downscales img so neither side exceeds maxSide pixels.
func fitWithin(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}

	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeImage(img image.Image, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	switch enc {
	case EncodingJPEG:
		// JPEG has no alpha; transparent pixels are flattened onto white.
		b := img.Bounds()
		flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
		draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 90}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	case EncodingPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported encoding %d", enc)
	}
	return buf.Bytes(), nil
}
