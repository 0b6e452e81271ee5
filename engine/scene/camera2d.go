package scene

import "github.com/chewxy/math32"

// OrthoCamera2D provides an orthographic camera with position, rotation, zoom.
// The viewport is in framebuffer pixels, so at Zoom 1 one world unit is one
// pixel. With YDown the visible world has y growing downward, which is what
// screen-space layers use.
type OrthoCamera2D struct {
	Left, Right, Bottom, Top float32
	Near, Far                float32
	X, Y                     float32
	RotationRad              float32
	Zoom                     float32 // 1 = no zoom
	YDown                    bool
	vp                       [16]float32
	dirty                    bool
}

func NewOrtho2D(width, height int) *OrthoCamera2D {
	c := &OrthoCamera2D{Near: -1, Far: 1, Zoom: 1}
	c.SetViewportPixels(width, height)
	c.Recalculate()
	return c
}

// NewScreen2D returns a y-down camera whose world origin is the top-left
// corner of a width×height framebuffer.
func NewScreen2D(width, height int) *OrthoCamera2D {
	c := NewOrtho2D(width, height)
	c.YDown = true
	c.SetPosition(float32(width)/2, float32(height)/2)
	c.Recalculate()
	return c
}

func (c *OrthoCamera2D) SetViewportPixels(w, h int) {
	halfW := float32(w) * 0.5
	halfH := float32(h) * 0.5
	c.Left, c.Right = -halfW, halfW
	c.Bottom, c.Top = -halfH, halfH
	c.dirty = true
}

func (c *OrthoCamera2D) Move(dx, dy float32)      { c.X += dx; c.Y += dy; c.dirty = true }
func (c *OrthoCamera2D) SetPosition(x, y float32) { c.X, c.Y = x, y; c.dirty = true }
func (c *OrthoCamera2D) Rotate(dRad float32)      { c.RotationRad += dRad; c.dirty = true }
func (c *OrthoCamera2D) Width() float32           { return (c.Right - c.Left) / c.Zoom }
func (c *OrthoCamera2D) Height() float32          { return (c.Top - c.Bottom) / c.Zoom }
func (c *OrthoCamera2D) PixelsPerUnit() float32   { return c.Zoom }
func (c *OrthoCamera2D) UnitsPerPixel() float32   { return 1 / c.Zoom }
func (c *OrthoCamera2D) SetZoom(z float32) {
	if z < 0.05 {
		z = 0.05
	}
	c.Zoom = z
	c.dirty = true
}

// SnapPoint moves a world point onto the nearest framebuffer pixel corner.
// Rotation is ignored.
func (c *OrthoCamera2D) SnapPoint(x, y float32) (float32, float32) {
	ppu := c.PixelsPerUnit()
	ox := c.X + c.Left/c.Zoom
	oy := c.Y + c.Bottom/c.Zoom
	return ox + roundf((x-ox)*ppu)/ppu, oy + roundf((y-oy)*ppu)/ppu
}

// ScreenToWorld converts a framebuffer pixel (origin top-left, y down) to
// world coordinates.
func (c *OrthoCamera2D) ScreenToWorld(sx, sy float32) (float32, float32) {
	dx := (sx - (c.Right-c.Left)*0.5) / c.Zoom
	dy := (sy - (c.Top-c.Bottom)*0.5) / c.Zoom
	if !c.YDown {
		dy = -dy
	}
	cos, sin := math32.Cos(c.RotationRad), math32.Sin(c.RotationRad)
	return c.X + dx*cos - dy*sin, c.Y + dx*sin + dy*cos
}

func (c *OrthoCamera2D) VP() [16]float32 {
	if c.dirty {
		c.Recalculate()
	}
	return c.vp
}

func (c *OrthoCamera2D) Recalculate() {
	// Ortho scaled by Zoom
	z := c.Zoom
	b, t := c.Bottom, c.Top
	if c.YDown {
		b, t = t, b
	}
	proj := ortho(c.Left/z, c.Right/z, b/z, t/z, c.Near, c.Far)

	// view = R(-rot) · T(-pos), column-vector math
	view := mul(
		rotateZ(-c.RotationRad),
		translate(-c.X, -c.Y, 0),
	)

	c.vp = mul(proj, view)
	c.dirty = false
}

func roundf(v float32) float32 { return math32.Floor(v + 0.5) }

// ---- tiny mat helpers (column-major, GLSL-style) ----

func translate(x, y, z float32) [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

func rotateZ(a float32) [16]float32 {
	c := math32.Cos(a)
	s := math32.Sin(a)
	return [16]float32{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func ortho(l, r, b, t, n, f float32) [16]float32 {
	rl := 1 / (r - l)
	tb := 1 / (t - b)
	fn := 1 / (f - n)
	return [16]float32{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(r + l) * rl, -(t + b) * tb, -(f + n) * fn, 1,
	}
}

// mul returns a·b.
func mul(a, b [16]float32) [16]float32 {
	var out [16]float32
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i+4*j] = a[i+0]*b[0+4*j] + a[i+4]*b[1+4*j] + a[i+8]*b[2+4*j] + a[i+12]*b[3+4*j]
		}
	}
	return out
}
