package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/hubastard/quadtext/engine/core"
	"github.com/stretchr/testify/assert"
)

// project applies m to (x, y, 0, 1).
func project(m [16]float32, x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

func TestOrthoCornersMapToNDC(t *testing.T) {
	c := NewOrtho2D(200, 100)
	x, y := project(c.VP(), 100, 50)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)

	c.SetZoom(2)
	x, y = project(c.VP(), 50, -25)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)
}

func TestScreenCameraTopLeftOrigin(t *testing.T) {
	c := NewScreen2D(200, 100)
	x, y := project(c.VP(), 0, 0)
	assert.InDelta(t, -1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6, "world origin is the top-left corner")

	x, y = project(c.VP(), 200, 100)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)

	assert.Equal(t, float32(200), c.Width())
	assert.Equal(t, float32(100), c.Height())
}

func TestViewFollowsPosition(t *testing.T) {
	c := NewScreen2D(200, 100)
	c.Move(10, 0)
	x, y := project(c.VP(), 10, 0)
	assert.InDelta(t, -1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)

	// Translate first, then rotate about the camera.
	r := NewOrtho2D(200, 100)
	r.SetPosition(10, 0)
	r.Rotate(math32.Pi / 2)
	x, y = project(r.VP(), 10, 50)
	assert.InDelta(t, 0.5, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
}

func TestMulOrder(t *testing.T) {
	m := mul(translate(5, 0, 0), ortho(-10, 10, -10, 10, -1, 1))
	x, _ := project(m, 10, 0)
	assert.InDelta(t, 6, x, 1e-6, "scale applies before the translation")
}

func TestScreenToWorld(t *testing.T) {
	c := NewScreen2D(200, 100)
	x, y := c.ScreenToWorld(30, 40)
	assert.InDelta(t, 30, x, 1e-4)
	assert.InDelta(t, 40, y, 1e-4)

	up := NewOrtho2D(200, 100)
	x, y = up.ScreenToWorld(0, 0)
	assert.InDelta(t, -100, x, 1e-4)
	assert.InDelta(t, 50, y, 1e-4)

	up.SetZoom(2)
	x, y = up.ScreenToWorld(200, 100)
	assert.InDelta(t, 50, x, 1e-4)
	assert.InDelta(t, -25, y, 1e-4)
}

func TestSnapPoint(t *testing.T) {
	c := NewScreen2D(200, 100)
	assert.Equal(t, float32(1), c.PixelsPerUnit())
	x, y := c.SnapPoint(10.4, 7.6)
	assert.Equal(t, float32(10), x)
	assert.Equal(t, float32(8), y)

	c.SetZoom(4)
	assert.Equal(t, float32(0.25), c.UnitsPerPixel())
	// A pixel is a quarter unit; the grid starts at the visible edge.
	x, y = c.SnapPoint(100.1, 50.2)
	assert.InDelta(t, 100, x, 1e-4)
	assert.InDelta(t, 50.25, y, 1e-4)
}

func TestSetZoomClamps(t *testing.T) {
	c := NewOrtho2D(10, 10)
	c.SetZoom(0)
	assert.Equal(t, float32(0.05), c.Zoom)
}

func TestControllerScrollZoom(t *testing.T) {
	c := NewScreen2D(200, 100)
	cc := NewOrthoController2D(c)
	cc.ZoomSpeed = 2
	var got float32
	cc.OnZoom = func(z float32) { got = z }

	assert.True(t, cc.HandleEvent(nil, core.EventScroll{Yoff: 1}))
	assert.InDelta(t, 2, c.Zoom, 1e-5)
	assert.InDelta(t, 2, got, 1e-5)

	assert.True(t, cc.HandleEvent(nil, core.EventScroll{Yoff: 10}))
	assert.Equal(t, cc.MaxZoom, c.Zoom)

	assert.True(t, cc.HandleEvent(nil, core.EventScroll{Yoff: -20}))
	assert.Equal(t, cc.MinZoom, c.Zoom)

	assert.False(t, cc.HandleEvent(nil, core.EventScroll{}))
	assert.False(t, cc.HandleEvent(nil, core.EventKey{Key: core.KeyW}))
}

func TestControllerMove(t *testing.T) {
	c := NewScreen2D(200, 100)
	cc := NewOrthoController2D(c)
	in := core.NewInput()
	in.Handle(core.EventKey{Key: core.KeyW, Down: true})
	in.Handle(core.EventKey{Key: core.KeyD, Down: true})
	cc.Update(&core.Engine{Input: in}, 0.5)
	assert.InDelta(t, 100+200, c.X, 1e-4)
	assert.InDelta(t, 50-200, c.Y, 1e-4, "W moves up the screen")
}
