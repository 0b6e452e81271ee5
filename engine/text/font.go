package text

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	gtfont "github.com/go-text/typesetting/font"
	"github.com/hubastard/quadtext/engine/core"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont is returned when shaping or drawing without a font.
var ErrNoFont = errors.New("text: no font")

type Glyph struct {
	Rune     rune
	Advance  float32 // pixels
	BearingX float32 // left bearing in pixels
	BearingY float32 // top bearing in pixels (distance from baseline to glyph top)
	W, H     int     // glyph bitmap size
	U0, V0   float32 // UVs in atlas
	U1, V1   float32
}

// Font is a glyph atlas rasterized at SizePx plus the parsed font used for
// shaping. The atlas lives on the CPU until Upload.
type Font struct {
	SizePx                   float32
	Ascent, Descent, LineGap float32
	Glyphs                   map[rune]Glyph
	Texture                  core.Texture
	AtlasW, AtlasH           int
	Atlas                    *image.RGBA
	Face                     font.Face

	shapeFont *gtfont.Font
	closeFace func()
}

func (f *Font) Close() {
	if f != nil && f.closeFace != nil {
		f.closeFace()
		f.closeFace = nil
	}
}

// advance is the atlas advance of r, falling back to a space for runes the
// atlas lacks.
func (f *Font) advance(r rune) float32 {
	if g, ok := f.Glyphs[r]; ok {
		return g.Advance
	}
	return f.Glyphs[' '].Advance
}

// LineHeight is the distance between two baselines at SizePx.
func (f *Font) LineHeight() float32 { return f.Ascent - f.Descent + f.LineGap }

// Glyph returns the atlas entry for r.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	g, ok := f.Glyphs[r]
	return g, ok
}

// LoadTTF reads a TrueType/OpenType file and builds its atlas.
func LoadTTF(path string, sizePx float32) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return NewFont(data, sizePx)
}

// NewFont builds a monochrome (white) glyph atlas with alpha coverage for
// Latin-1 from raw font data.
func NewFont(ttfData []byte, sizePx float32) (*Font, error) {
	if len(ttfData) == 0 {
		return nil, ErrNoFont
	}
	ft, err := opentype.Parse(ttfData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	shapeFace, err := gtfont.ParseTTF(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("parse font for shaping: %w", err)
	}

	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(sizePx), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}

	// Metrics in pixels
	m := face.Metrics()
	ascent := float32(m.Ascent.Round())
	descent := float32(-m.Descent.Round())
	lineGap := float32(m.Height.Round()) - ascent + descent

	var runes []rune
	for r := rune(32); r <= rune(255); r++ {
		runes = append(runes, r)
	}

	type meas struct {
		r      rune
		w, h   int
		adv    float32
		bx, by float32
	}
	measure := make([]meas, 0, len(runes))
	for _, rr := range runes {
		br, adv, ok := face.GlyphBounds(rr)
		if !ok {
			continue
		}
		measure = append(measure, meas{
			r: rr,
			w: (br.Max.X - br.Min.X).Round(), h: (br.Max.Y - br.Min.Y).Round(),
			adv: float32(adv.Round()),
			bx:  float32(br.Min.X.Round()),
			by:  float32(-br.Min.Y.Round()), // distance from baseline to top
		})
	}

	sizes := make([]image.Point, len(measure))
	for i, g := range measure {
		sizes[i] = image.Pt(g.w, g.h)
	}
	atlasSize, pos, err := packShelves(sizes, 512, 4096)
	if err != nil {
		_ = face.Close()
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{color.RGBA{0, 0, 0, 0}}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
	}

	glyphs := make(map[rune]Glyph, len(measure))
	for i, g := range measure {
		gl := Glyph{
			Rune: g.r, Advance: g.adv,
			BearingX: g.bx, BearingY: g.by,
			W: g.w, H: g.h,
		}
		if g.w > 0 && g.h > 0 {
			p := pos[i]
			// Drawer expects a dot at the baseline.
			drawer.Dot = fixed.P(p.X-int(g.bx), p.Y+int(g.by))
			drawer.DrawString(string(g.r))

			gl.U0 = float32(p.X) / float32(atlasSize)
			gl.V0 = float32(p.Y) / float32(atlasSize)
			gl.U1 = float32(p.X+g.w) / float32(atlasSize)
			gl.V1 = float32(p.Y+g.h) / float32(atlasSize)
		}
		glyphs[g.r] = gl
	}

	return &Font{
		SizePx: sizePx,
		Ascent: ascent, Descent: descent, LineGap: lineGap,
		Glyphs: glyphs,
		AtlasW: atlasSize, AtlasH: atlasSize,
		Atlas:     dst,
		Face:      face,
		shapeFont: shapeFace.Font,
		closeFace: func() { _ = face.Close() },
	}, nil
}

// Upload creates the atlas texture on r. It is a no-op once uploaded.
func (f *Font) Upload(r core.Renderer) error {
	if f.Texture != nil {
		return nil
	}
	tex, err := r.CreateTexture(core.TextureDesc{
		Width: f.AtlasW, Height: f.AtlasH,
		Format:    core.TextureRGBA8,
		Pixels:    f.Atlas.Pix,
		MinFilter: "nearest",
		MagFilter: "nearest",
		WrapU:     "clamp",
		WrapV:     "clamp",
	})
	if err != nil {
		return fmt.Errorf("upload font atlas: %w", err)
	}
	f.Texture = tex
	return nil
}

const atlasPadding = 20

// packShelves places boxes on rows of a square atlas, doubling the atlas
// from start up to limit until everything fits. Empty boxes get no slot.
func packShelves(sizes []image.Point, start, limit int) (int, []image.Point, error) {
	pos := make([]image.Point, len(sizes))
	for atlasSize := start; atlasSize <= limit; atlasSize *= 2 {
		if shelfFit(sizes, atlasSize, pos) {
			return atlasSize, pos, nil
		}
	}
	return 0, nil, fmt.Errorf("font atlas too large (>%d)", limit)
}

func shelfFit(sizes []image.Point, atlasSize int, pos []image.Point) bool {
	x, y, rowH := atlasPadding, atlasPadding, 0
	for i, s := range sizes {
		if s.X == 0 || s.Y == 0 {
			continue
		}
		if s.X+atlasPadding*2 > atlasSize || s.Y+atlasPadding*2 > atlasSize {
			return false
		}
		if x+s.X+atlasPadding > atlasSize {
			x = atlasPadding
			y += rowH + atlasPadding
			rowH = 0
		}
		if y+s.Y+atlasPadding > atlasSize {
			return false
		}
		pos[i] = image.Pt(x, y)
		x += s.X + atlasPadding
		rowH = max(rowH, s.Y)
	}
	return true
}
