package richtext

import "github.com/chewxy/math32"

// ReconcileInput is everything the reconciler reads from one layout pass.
type ReconcileInput struct {
	// Verts is the shaped stream, four vertices per character or placeholder.
	Verts []Vertex
	// Placeholders maps placeholder ordinals to indexes into Objects.
	Placeholders map[int]int
	Objects      []InlineTag

	FontSize float32
	// BestFitSize is the size the shaper settled on after auto-shrink,
	// zero when best fit is off.
	BestFitSize   float32
	LineSpacing   float32
	UnitsPerPixel float32
	// Snap moves a point onto the output pixel grid; nil leaves it alone.
	Snap   func(Vec2) Vec2
	Params Params
}

// Reconciled is the output of a pass: the vertex buffer without placeholder
// quads and one RectInfo per object.
type Reconciled struct {
	Verts []Vertex
	Rects []RectInfo
}

func (in *ReconcileInput) bestFit() (scale, realFontSize float32) {
	if in.BestFitSize > 0 && in.FontSize > 0 {
		return in.BestFitSize / in.FontSize, in.BestFitSize
	}
	return 1, in.FontSize
}

func (in *ReconcileInput) unitsPerPixel() float32 {
	if in.UnitsPerPixel <= 0 {
		return 1
	}
	return in.UnitsPerPixel
}

func (in *ReconcileInput) lineSpacing() float32 {
	if in.LineSpacing <= 0 {
		return 1
	}
	return in.LineSpacing
}

// Reconcile places every inline object on its placeholder quad, merges
// baseline corrections of objects sharing a line and shifts the ordinary
// glyphs of those lines by the same correction. It does not modify its input.
func Reconcile(in ReconcileInput) Reconciled {
	out := Reconciled{Rects: make([]RectInfo, len(in.Objects))}
	quads := len(in.Verts) / 4
	if quads == 0 {
		return out
	}

	upp := in.unitsPerPixel()
	scale, realFontSize := in.bestFit()
	rounding := roundingOffset(in.Verts[0].Pos, upp, in.Snap)
	eps := in.Params.DegenerateEpsilon

	skipped := 0
	for q := 0; q < quads; q++ {
		quad := in.Verts[q*4 : q*4+4]
		if isDegenerate(quad, eps) {
			skipped++
			continue
		}
		idx, ok := in.Placeholders[q-skipped]
		if !ok || idx < 0 || idx >= len(in.Objects) {
			continue
		}
		out.Rects[idx] = placeObject(in.Objects[idx], quad[3].Pos, rounding, scale, realFontSize, upp, in.lineSpacing(), in.Params)
	}

	out.Rects = MergeSameLine(out.Rects, realFontSize*in.Params.SameLineTolerance)

	lineTol := in.FontSize * in.Params.SameLineTolerance
	out.Verts = make([]Vertex, 0, len(in.Verts))
	skipped = 0
	var tmp [4]Vertex
	for q := 0; q < quads; q++ {
		quad := in.Verts[q*4 : q*4+4]
		if isDegenerate(quad, eps) {
			skipped++
			continue
		}
		if _, ok := in.Placeholders[q-skipped]; ok {
			continue
		}
		for k := range tmp {
			tmp[k] = quad[k]
			tmp[k].Pos = quad[k].Pos.Scale(upp).Add(rounding)
		}
		dy := LineOffset(out.Rects, tmp[3].Pos.Y, lineTol)
		for k := range tmp {
			tmp[k].Pos.Y -= dy
		}
		out.Verts = append(out.Verts, tmp[:]...)
	}
	return out
}

func roundingOffset(first Vec2, upp float32, snap func(Vec2) Vec2) Vec2 {
	if snap == nil {
		return Vec2{}
	}
	p := first.Scale(upp)
	return snap(p).Sub(p)
}

func isDegenerate(quad []Vertex, eps float32) bool {
	b := quadBounds(quad)
	return b.max.X-b.min.X < eps || b.max.Y-b.min.Y < eps
}

func placeObject(tag InlineTag, anchor, rounding Vec2, scale, realFontSize, upp, lineSpacing float32, p Params) RectInfo {
	w, h := tag.RenderWidth(), tag.RenderHeight()
	pos := anchor.Add(rounding)
	center := Vec2{pos.X + w/2*scale, pos.Y + h/2*scale}.Scale(upp)
	center = center.Add(Vec2{tag.OffsetX, tag.OffsetY}.Scale(scale * upp))
	return RectInfo{
		OffsetY:  p.baselineOffset(h*scale, realFontSize, upp, lineSpacing),
		VertPosY: anchor.Y,
		Size:     Vec2{w * scale, h * scale}.Scale(upp),
		Position: center,
		Placed:   true,
	}
}

// MergeSameLine returns a copy of rects where every pair of placed objects
// closer than tolerance vertically shares the larger OffsetY. Pairs are
// visited in (i, j>i) order and each merge sees the results of the previous
// ones; there is no transitive closure beyond that.
func MergeSameLine(rects []RectInfo, tolerance float32) []RectInfo {
	out := make([]RectInfo, len(rects))
	copy(out, rects)
	for i := range out {
		if !out[i].Placed {
			continue
		}
		for j := i + 1; j < len(out); j++ {
			if !out[j].Placed || math32.Abs(out[j].VertPosY-out[i].VertPosY) >= tolerance {
				continue
			}
			m := math32.Max(out[i].OffsetY, out[j].OffsetY)
			out[i].OffsetY, out[j].OffsetY = m, m
		}
	}
	return out
}

// LineOffset returns the OffsetY of the first placed object within
// tolerance of y, or 0.
func LineOffset(rects []RectInfo, y, tolerance float32) float32 {
	for _, r := range rects {
		if r.Placed && math32.Abs(r.VertPosY-y) < tolerance {
			return r.OffsetY
		}
	}
	return 0
}
