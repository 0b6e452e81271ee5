package ui

import (
	"math"

	"github.com/hubastard/quadtext/engine/colors"
	"github.com/hubastard/quadtext/engine/text"
)

// UILabel draws plain, unstyled text. Markup is not interpreted; use
// RichText for that.
type UILabel struct {
	Common[*UILabel]
	text     string
	fontSize float32
	font     *text.Font
	wrap     bool
	maxWidth float32
	lines    []string
}

func Label(str string) *UILabel {
	l := &UILabel{text: str, fontSize: 16}
	l.Common = NewCommon(l)
	l.base.color = colors.White
	return l
}
func (l *UILabel) FontSize(size float32) *UILabel { l.fontSize = size; return l }
func (l *UILabel) Font(font *text.Font) *UILabel  { l.font = font; return l }
func (l *UILabel) Color(c colors.Color) *UILabel  { l.base.color = c; return l }
func (l *UILabel) Wrap(enabled bool) *UILabel     { l.wrap = enabled; return l }
func (l *UILabel) MaxWidth(width float32) *UILabel {
	l.maxWidth = width
	if width > 0 {
		l.wrap = true
	}
	return l
}

func (l *UILabel) Layout(ctx *Context, constraints Constraints) LayoutResult {
	if l.font == nil {
		l.font = ctx.DefaultFont
	}
	padding := l.base.Padding()

	var contentW, contentH float32
	l.lines = l.lines[:0]
	if l.font != nil {
		l.lines, contentW = text.WrapText(l.font, l.text, l.fontSize, l.wrapLimit(constraints, padding))
		contentH = l.lineHeight() * float32(len(l.lines))
	}

	width := l.base.resolveAxis(l.base.widthMod, l.base.widthVal, contentW+padding[0]+padding[2], constraints.Min[0], constraints.Max[0])
	height := l.base.resolveAxis(l.base.heightMod, l.base.heightVal, contentH+padding[1]+padding[3], constraints.Min[1], constraints.Max[1])
	l.base.SetSize(width, height)
	return LayoutResult{Size: [2]float32{width, height}}
}

// wrapLimit is the line width to wrap at, 0 for no wrapping.
func (l *UILabel) wrapLimit(constraints Constraints, padding [4]float32) float32 {
	if !l.wrap {
		return 0
	}
	limit := constraints.Max[0]
	if limit == float32(math.MaxFloat32) {
		limit = 0
	}
	if l.maxWidth > 0 && (limit == 0 || l.maxWidth < limit) {
		limit = l.maxWidth
	}
	if limit > 0 {
		limit = maxf(1, limit-padding[0]-padding[2])
	}
	return limit
}

func (l *UILabel) Draw(ctx *Context) {
	if l.font == nil || l.base.color[3] <= 0 {
		return
	}
	x, y := l.base.innerPosition()
	lh := l.lineHeight()
	for i, s := range l.lines {
		text.DrawText(ctx.Renderer, l.font, x, y+lh*float32(i), s, l.fontSize, l.base.color)
	}
}

// lineHeight is the baseline distance at the label's font size.
func (l *UILabel) lineHeight() float32 {
	return l.font.LineHeight() * l.fontSize / l.font.SizePx
}
