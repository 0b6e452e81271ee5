package richtext

import (
	"github.com/chewxy/math32"
	"github.com/hubastard/quadtext/engine/colors"
)

// Vec2 is a point or extent in layout-local space (pixels, y up).
type Vec2 struct{ X, Y float32 }

func V2(x, y float32) Vec2 { return Vec2{x, y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Mul(o Vec2) Vec2      { return Vec2{v.X * o.X, v.Y * o.Y} }

// Rect is an axis-aligned rectangle given by its minimum corner and size.
type Rect struct {
	Min  Vec2
	Size Vec2
}

func (r Rect) Max() Vec2 { return r.Min.Add(r.Size) }

// Contains reports whether p lies inside r. The minimum edges are
// inclusive and the maximum edges exclusive.
func (r Rect) Contains(p Vec2) bool {
	mx := r.Max()
	return p.X >= r.Min.X && p.X < mx.X && p.Y >= r.Min.Y && p.Y < mx.Y
}

// Vertex is one corner of a glyph quad.
type Vertex struct {
	Pos   Vec2
	UV    Vec2
	Color colors.Color
}

// bounds grows to enclose points, starting from a single point.
type bounds struct{ min, max Vec2 }

func boundsAt(p Vec2) bounds { return bounds{p, p} }

func (b *bounds) encapsulate(p Vec2) {
	b.min = Vec2{math32.Min(b.min.X, p.X), math32.Min(b.min.Y, p.Y)}
	b.max = Vec2{math32.Max(b.max.X, p.X), math32.Max(b.max.Y, p.Y)}
}

func (b bounds) rect() Rect { return Rect{Min: b.min, Size: b.max.Sub(b.min)} }

func quadBounds(q []Vertex) bounds {
	b := boundsAt(q[0].Pos)
	for _, v := range q[1:] {
		b.encapsulate(v.Pos)
	}
	return b
}
