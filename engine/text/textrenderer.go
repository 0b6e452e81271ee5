package text

import (
	"github.com/hubastard/quadtext/engine/colors"
	"github.com/hubastard/quadtext/engine/gfx/renderer2d"
	"github.com/hubastard/quadtext/engine/richtext"
)

// DrawMesh draws a finalized layout buffer. The buffer is y-up with its
// origin at the top-left corner of the layout rect; (x, y) is that corner on
// the y-down screen.
func DrawMesh(r2d *renderer2d.Renderer2D, font *Font, x, y float32, verts []richtext.Vertex, tint colors.Color) error {
	if font == nil || font.Texture == nil {
		return ErrNoFont
	}
	var q [4]renderer2d.Vertex
	for i := 0; i+4 <= len(verts); i += 4 {
		for k := range q {
			v := verts[i+k]
			q[k] = renderer2d.Vertex{
				X: x + v.Pos.X, Y: y - v.Pos.Y,
				U: v.UV.X, V: v.UV.Y,
				Color: v.Color.Mul(tint),
			}
		}
		r2d.DrawVertexQuad(q, font.Texture)
	}
	return nil
}

// DrawText draws plain s at size with its top-left corner at (x,y). Positive
// Y goes downward (matching the 2D projection).
func DrawText(r2d *renderer2d.Renderer2D, font *Font, x, y float32, s string, size float32, color colors.Color) {
	scale := size / font.SizePx
	penX := x
	baseY := y + font.Ascent*scale // move origin to top left
	var prev rune = -1

	for _, r := range s {
		if r == '\n' {
			penX = x
			baseY += font.LineHeight() * scale
			prev = -1
			continue
		}

		g, ok := font.Glyphs[r]
		if !ok {
			if sp, ok2 := font.Glyphs[' ']; ok2 {
				penX += sp.Advance * scale
			}
			prev = r
			continue
		}

		if prev >= 0 && font.Face != nil {
			penX += float32(font.Face.Kern(prev, r)) / 64.0 * scale
		}

		// Baseline-aligned quad center (Y-down system)
		left := penX + g.BearingX*scale
		top := baseY - g.BearingY*scale
		w, h := float32(g.W)*scale, float32(g.H)*scale

		if g.W > 0 && g.H > 0 {
			r2d.DrawTexturedQuadUV(
				left+w*0.5, top+h*0.5,
				w, h,
				font.Texture, color, 0,
				g.U0, g.V0, g.U1, g.V1,
			)
		}

		penX += g.Advance * scale
		prev = r
	}
}

func MeasureText(font *Font, s string, size float32) (width, height float32) {
	var lineW float32
	var prev rune = -1
	lineH := font.LineHeight()
	height = lineH

	scale := size / font.SizePx

	for _, r := range s {
		if r == '\n' {
			if lineW > width {
				width = lineW
			}
			lineW = 0
			height += lineH
			prev = -1
			continue
		}

		g, ok := font.Glyphs[r]
		if !ok {
			if sp, ok2 := font.Glyphs[' ']; ok2 {
				lineW += sp.Advance
			}
			prev = r
			continue
		}

		if prev >= 0 && font.Face != nil {
			lineW += float32(font.Face.Kern(prev, r)) / 64.0
		}

		lineW += g.Advance
		prev = r
	}

	if lineW > width {
		width = lineW
	}
	return width * scale, height * scale
}
