package text

import (
	"strconv"
	"strings"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/hubastard/quadtext/engine/colors"
	"github.com/hubastard/quadtext/engine/richtext"
	"golang.org/x/image/math/fixed"
)

// Shaper lays out rich text with HarfBuzz advances and the glyph bitmaps of
// a Font. Output is in layout space: origin at the top-left corner of the
// rect, y up. It implements richtext.Shaper.
//
// A Shaper is not safe for concurrent use.
type Shaper struct {
	Font  *Font
	Color colors.Color
	// ItalicShear is the horizontal shift per pixel above the baseline
	// applied to <i> glyphs.
	ItalicShear float32

	hb shaping.HarfbuzzShaper
}

func NewShaper(f *Font) *Shaper {
	return &Shaper{Font: f, Color: colors.White, ItalicShear: 0.2}
}

var _ richtext.Shaper = (*Shaper)(nil)

// Shape implements richtext.Shaper. With best fit on, the largest integral
// size in [MinSize, MaxSize] whose layout fits the rect is used, falling back
// to MinSize.
func (s *Shaper) Shape(tokens []richtext.Token, gs richtext.GenerationSettings) (richtext.Shaped, error) {
	if s.Font == nil || s.Font.shapeFont == nil {
		return richtext.Shaped{}, ErrNoFont
	}
	if gs.FontSize <= 0 {
		gs.FontSize = s.Font.SizePx
	}
	if gs.LineSpacing <= 0 {
		gs.LineSpacing = 1
	}
	items := s.styleItems(tokens, gs.FontSize)
	face := gtfont.NewFace(s.Font.shapeFont)

	if !gs.BestFit {
		l := s.layoutAt(face, items, gs, gs.FontSize)
		return richtext.Shaped{Verts: l.emit(s, items)}, nil
	}

	lo, hi := max(gs.MinSize, 1), max(gs.MaxSize, gs.MinSize, 1)
	size := lo
	var fit layout
	for sz := hi; sz >= lo; sz-- {
		l := s.layoutAt(face, items, gs, float32(sz))
		if l.fits(gs.Extents) || sz == lo {
			size, fit = sz, l
			break
		}
	}
	return richtext.Shaped{Verts: fit.emit(s, items), FontSizeUsedForBestFit: float32(size)}, nil
}

// styleItems flattens tokens into styled runes and placeholders.
func (s *Shaper) styleItems(tokens []richtext.Token, fontSize float32) []item {
	sizes := []float32{fontSize}
	tints := []colors.Color{s.Color}
	italic := 0
	var out []item
	for _, tok := range tokens {
		switch tok.Kind {
		case richtext.TokenText:
			for _, r := range tok.Text {
				out = append(out, item{r: r, size: sizes[len(sizes)-1], color: tints[len(tints)-1], italic: italic > 0})
			}
		case richtext.TokenQuad:
			tag := richtext.ParseInlineTag(tok.Text, fontSize)
			out = append(out, item{quad: true, w: tag.RenderWidth(), h: tag.RenderHeight(), size: sizes[len(sizes)-1], color: colors.White})
		case richtext.TokenSize:
			sizes = append(sizes, parseSize(tok.Value, sizes[len(sizes)-1]))
		case richtext.TokenSizeEnd:
			if len(sizes) > 1 {
				sizes = sizes[:len(sizes)-1]
			}
		case richtext.TokenColor:
			c, err := colors.Parse(tok.Value)
			if err != nil {
				c = tints[len(tints)-1]
			}
			tints = append(tints, c)
		case richtext.TokenColorEnd:
			if len(tints) > 1 {
				tints = tints[:len(tints)-1]
			}
		case richtext.TokenItalic:
			italic++
		case richtext.TokenItalicEnd:
			italic = max(italic-1, 0)
		}
	}
	return out
}

// parseSize reads a <size> value: pixels, or a percentage of the current size.
func parseSize(v string, current float32) float32 {
	v = strings.TrimSpace(v)
	pct := strings.HasSuffix(v, "%")
	v = strings.TrimSuffix(v, "%")
	f, err := strconv.ParseFloat(v, 32)
	if err != nil || f <= 0 {
		return current
	}
	if pct {
		return current * float32(f) / 100
	}
	return float32(f)
}

// layout is the line breaking of items at one font size.
type layout struct {
	scale     float32 // layout size / nominal size
	lines     []line
	baselines []float32
	width     float32
	height    float32
	extents   richtext.Vec2
	align     richtext.Alignment
}

func (s *Shaper) layoutAt(face *gtfont.Face, items []item, gs richtext.GenerationSettings, size float32) layout {
	l := layout{scale: size / gs.FontSize, extents: gs.Extents, align: gs.Alignment}
	s.measure(face, items, l.scale)
	l.lines = breakLines(items, gs.Extents.X, gs.Wrap)

	f := s.Font
	top := float32(0)
	l.baselines = make([]float32, len(l.lines))
	for i, ln := range l.lines {
		lineSize := size
		if ln.end > ln.start {
			lineSize = 0
			for _, it := range items[ln.start:ln.end] {
				lineSize = max(lineSize, it.size*l.scale)
			}
		}
		k := lineSize / f.SizePx
		l.baselines[i] = top - f.Ascent*k
		top -= f.LineHeight() * k * gs.LineSpacing
		l.width = max(l.width, ln.width)
	}
	l.height = -top
	return l
}

func (l *layout) fits(extents richtext.Vec2) bool {
	if extents.Y > 0 && l.height > extents.Y {
		return false
	}
	if extents.X > 0 && l.width > extents.X {
		return false
	}
	return true
}

// measure fills in the advance of every item at the given scale. Runs of
// text sharing a size are shaped together so kerning applies; the advance
// of a multi-rune cluster is split evenly over its runes so every rune
// keeps its own quad.
func (s *Shaper) measure(face *gtfont.Face, items []item, scale float32) {
	for i := 0; i < len(items); {
		if items[i].quad {
			items[i].adv = items[i].w * scale
			i++
			continue
		}
		j := i + 1
		for j < len(items) && !items[j].quad && items[j].size == items[i].size {
			j++
		}
		s.shapeRun(face, items[i:j], items[i].size*scale)
		i = j
	}
}

func (s *Shaper) shapeRun(face *gtfont.Face, run []item, px float32) {
	runes := make([]rune, len(run))
	for i := range run {
		runes[i] = run[i].r
		run[i].adv = 0
	}
	out := s.hb.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(px * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	})

	clusterAdv := make([]float32, len(runes))
	isStart := make([]bool, len(runes))
	for _, g := range out.Glyphs {
		c := g.ClusterIndex
		if c < 0 || c >= len(runes) {
			continue
		}
		isStart[c] = true
		clusterAdv[c] += float32(g.Advance) / 64
	}
	for c := 0; c < len(runes); {
		if !isStart[c] {
			c++
			continue
		}
		n := 1
		for c+n < len(runes) && !isStart[c+n] {
			n++
		}
		for k := c; k < c+n; k++ {
			run[k].adv = clusterAdv[c] / float32(n)
		}
		c += n
	}
	for i := range run {
		if run[i].newline() {
			run[i].adv = 0
		}
	}
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// emit builds the vertex stream: four vertices per visible rune and per
// placeholder, plus one zero-area quad for each whitespace a line wrapped at.
func (l *layout) emit(s *Shaper, items []item) []richtext.Vertex {
	verts := make([]richtext.Vertex, 0, len(items)*4)
	f := s.Font
	for i, ln := range l.lines {
		baseline := l.baselines[i]
		pen := l.alignOffset(ln.width)
		for k := ln.start; k < ln.end; k++ {
			it := &items[k]
			switch {
			case it.space():
			case it.quad:
				verts = appendQuad(verts, pen, baseline, pen+it.w*l.scale, baseline+it.h*l.scale, 0, baseline, richtext.Vertex{Color: it.color}, Glyph{})
			default:
				sc := it.size * l.scale / f.SizePx
				shear := float32(0)
				if it.italic {
					shear = s.ItalicShear
				}
				g, ok := f.Glyph(it.r)
				if !ok || g.W == 0 || g.H == 0 {
					// Keep one quad per visible rune even without a bitmap.
					verts = appendQuad(verts, pen, baseline, pen+max(it.adv, 1), baseline+f.Ascent*sc, shear, baseline, richtext.Vertex{Color: it.color}, Glyph{})
					break
				}
				x0 := pen + g.BearingX*sc
				y1 := baseline + g.BearingY*sc
				verts = appendQuad(verts, x0, y1-float32(g.H)*sc, x0+float32(g.W)*sc, y1, shear, baseline, richtext.Vertex{Color: it.color}, g)
			}
			pen += it.adv
		}
		if ln.wrapSpace >= 0 {
			p := richtext.V2(pen, baseline)
			for j := 0; j < 4; j++ {
				verts = append(verts, richtext.Vertex{Pos: p, Color: items[ln.wrapSpace].color})
			}
		}
	}
	return verts
}

func (l *layout) alignOffset(width float32) float32 {
	if l.extents.X <= 0 {
		return 0
	}
	switch l.align {
	case richtext.AlignCenter:
		return (l.extents.X - width) / 2
	case richtext.AlignRight:
		return l.extents.X - width
	}
	return 0
}

// appendQuad appends TL, TR, BR, BL of the box [x0,x1]×[y0,y1], shearing x
// by the height above baseline.
func appendQuad(verts []richtext.Vertex, x0, y0, x1, y1, shear, baseline float32, proto richtext.Vertex, g Glyph) []richtext.Vertex {
	sh := func(x, y float32) richtext.Vec2 { return richtext.V2(x+(y-baseline)*shear, y) }
	v := [4]richtext.Vertex{proto, proto, proto, proto}
	v[0].Pos, v[0].UV = sh(x0, y1), richtext.V2(g.U0, g.V0)
	v[1].Pos, v[1].UV = sh(x1, y1), richtext.V2(g.U1, g.V0)
	v[2].Pos, v[2].UV = sh(x1, y0), richtext.V2(g.U1, g.V1)
	v[3].Pos, v[3].UV = sh(x0, y0), richtext.V2(g.U0, g.V1)
	return append(verts, v[:]...)
}
