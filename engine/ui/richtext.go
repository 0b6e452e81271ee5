package ui

import (
	"errors"
	"math"

	"github.com/hubastard/quadtext/engine/colors"
	"github.com/hubastard/quadtext/engine/core"
	"github.com/hubastard/quadtext/engine/richtext"
	"github.com/hubastard/quadtext/engine/text"
)

// UIRichText draws a richtext.Text in its node rect. The Text keeps its
// state across frames; the element itself may be rebuilt every frame.
type UIRichText struct {
	Common[*UIRichText]
	text    *richtext.Text
	font    *text.Font
	onHover func(url string)
	extents richtext.Vec2
	verts   []richtext.Vertex
	snap    [2]float32
	err     error
}

func RichText(t *richtext.Text) *UIRichText {
	l := &UIRichText{text: t}
	l.Common = NewCommon(l)
	l.base.color = colors.White
	return l
}

func (l *UIRichText) Font(font *text.Font) *UIRichText { l.font = font; return l }

// OnHover is called on pointer moves over the element with the link under
// the pointer, or "" when there is none.
func (l *UIRichText) OnHover(fn func(url string)) *UIRichText { l.onHover = fn; return l }

// Err returns the error of the last layout pass.
func (l *UIRichText) Err() error { return l.err }

func (l *UIRichText) Layout(ctx *Context, constraints Constraints) LayoutResult {
	if l.font == nil {
		l.font = ctx.DefaultFont
	}
	padding := l.base.Padding()

	availW := constraints.Max[0]
	if availW == float32(math.MaxFloat32) {
		availW = 0
	}
	if l.base.widthMod == SizeModeFixed && l.base.widthVal > 0 {
		availW = l.base.widthVal
	}
	var availH float32
	if l.base.heightMod == SizeModeFixed && l.base.heightVal > 0 {
		availH = l.base.heightVal
	}
	upp := l.text.Settings.UnitsPerPixel
	l.extents = richtext.V2(
		maxf(0, availW-padding[0]-padding[2])/upp,
		maxf(0, availH-padding[1]-padding[3])/upp,
	)
	l.populate()

	contentW, contentH := l.contentSize()
	width := l.base.resolveAxis(l.base.widthMod, l.base.widthVal, contentW+padding[0]+padding[2], constraints.Min[0], constraints.Max[0])
	height := l.base.resolveAxis(l.base.heightMod, l.base.heightVal, contentH+padding[1]+padding[3], constraints.Min[1], constraints.Max[1])
	l.base.SetSize(width, height)
	return LayoutResult{Size: [2]float32{width, height}}
}

func (l *UIRichText) populate() {
	l.verts, l.err = l.text.Populate(l.extents)
	if l.err != nil {
		core.Logger().Debug("ui: rich text layout failed", "err", l.err)
	}
}

// contentSize is the extent of the glyphs and inline objects below and to
// the right of the layout origin.
func (l *UIRichText) contentSize() (w, h float32) {
	for _, v := range l.verts {
		w = maxf(w, v.Pos.X)
		h = maxf(h, -v.Pos.Y)
	}
	for _, p := range l.text.Placements() {
		b := p.Bounds()
		w = maxf(w, b.Max().X)
		h = maxf(h, -b.Min.Y)
	}
	return w, h
}

// origin is the world position of the layout origin, nudged so the first
// glyph vertex lands on the pixel grid.
func (l *UIRichText) origin() (float32, float32) {
	x, y := l.base.innerPosition()
	return x + l.snap[0], y + l.snap[1]
}

// snapOrigin recomputes the pixel-grid nudge for the current position.
func (l *UIRichText) snapOrigin(ctx *Context) {
	l.snap = [2]float32{}
	if ctx.Snap == nil || len(l.verts) == 0 {
		return
	}
	ox, oy := l.base.innerPosition()
	x, y := ox+l.verts[0].Pos.X, oy-l.verts[0].Pos.Y
	sx, sy := ctx.Snap(x, y)
	l.snap = [2]float32{sx - x, sy - y}
}

// toLocal converts a y-down world point to the text's y-up layout space.
func (l *UIRichText) toLocal(x, y float32) richtext.Vec2 {
	ox, oy := l.origin()
	return richtext.V2(x-ox, oy-y)
}

func (l *UIRichText) Draw(ctx *Context) {
	if l.base.parent == nil {
		layoutRoot(ctx, l)
	}
	l.snapOrigin(ctx)
	ox, oy := l.origin()
	if l.err != nil {
		return
	}

	if err := text.DrawMesh(ctx.Renderer, l.font, ox, oy, l.verts, l.base.color); err != nil && !errors.Is(err, text.ErrNoFont) {
		core.Logger().Debug("ui: draw rich text", "err", err)
	}

	if ctx.Images == nil {
		return
	}
	for _, p := range l.text.Placements() {
		if p.Frame == nil {
			continue
		}
		tex, err := ctx.Images.Texture(ctx.Renderer, p.Frame)
		if err != nil {
			core.Logger().Debug("ui: upload inline image", "key", p.Key, "err", err)
			continue
		}
		ctx.Renderer.DrawTexturedQuad(ox+p.Center.X, oy-p.Center.Y, p.Size.X, p.Size.Y, tex, colors.White, 0)
	}
}

// HandlePointer activates links on a left press and reports hovered links on
// moves.
func (l *UIRichText) HandlePointer(_ *Context, ev PointerEvent) bool {
	local := l.toLocal(ev.X, ev.Y)
	switch ev.Kind {
	case PointerDown:
		if ev.Button != core.MouseLeft {
			return false
		}
		_, ok := l.text.Click(local)
		return ok
	case PointerMove:
		if l.onHover != nil {
			url, _ := l.text.LinkAt(local)
			l.onHover(url)
		}
	}
	return false
}
