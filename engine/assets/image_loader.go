package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ErrUnsupported is returned for data that is not a decodable image.
var ErrUnsupported = errors.New("assets: unsupported image format")

// ImageExts are the file extensions tried, in order, when a key has none.
var ImageExts = []string{".png", ".webp", ".jpg", ".jpeg", ".gif", ".bmp"}

// DecodeImage sniffs data and decodes it. It returns the detected extension
// without the dot.
func DecodeImage(data []byte) (image.Image, string, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, "", ErrUnsupported
	}
	r := bytes.NewReader(data)
	var img image.Image
	switch kind.Extension {
	case "png":
		img, err = png.Decode(r)
	case "jpg":
		img, err = jpeg.Decode(r)
	case "gif":
		img, err = gif.Decode(r)
	case "webp":
		img, err = webp.Decode(r)
	case "bmp":
		img, err = bmp.Decode(r)
	default:
		return nil, kind.Extension, fmt.Errorf("%w: %s", ErrUnsupported, kind.MIME.Value)
	}
	if err != nil {
		return nil, kind.Extension, fmt.Errorf("decode %s: %w", kind.Extension, err)
	}
	return img, kind.Extension, nil
}

// LoadImage reads and decodes the image at path.
func LoadImage(path string) (image.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	img, _, err := DecodeImage(b)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	return img, nil
}

// LoadRGBA returns width, height, and tightly packed RGBA8 pixels (row-major,
// top-left origin) of the image at path.
func LoadRGBA(path string) (w, h int, rgba []byte, err error) {
	img, err := LoadImage(path)
	if err != nil {
		return 0, 0, nil, err
	}
	m := ToRGBA(img)
	return m.Rect.Dx(), m.Rect.Dy(), m.Pix, nil
}

// ToRGBA returns img as an *image.RGBA with tight rows and a zero origin.
func ToRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Stride == m.Rect.Dx()*4 && m.Rect.Min == (image.Point{}) {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
