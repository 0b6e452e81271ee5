package scene

import (
	"github.com/chewxy/math32"
	"github.com/hubastard/quadtext/engine/core"
)

// OrthoController2D: WASD move, scroll wheel zoom.
type OrthoController2D struct {
	MoveSpeed float32 // pixels per second at zoom 1
	ZoomSpeed float32 // zoom factor per scroll step
	MinZoom   float32
	MaxZoom   float32
	Camera    *OrthoCamera2D
	// OnZoom is called after the scroll wheel changed the zoom.
	OnZoom func(zoom float32)
}

func NewOrthoController2D(cam *OrthoCamera2D) *OrthoController2D {
	return &OrthoController2D{
		MoveSpeed: 400,
		ZoomSpeed: 1.1,
		MinZoom:   0.25,
		MaxZoom:   8,
		Camera:    cam,
	}
}

func (cc *OrthoController2D) Update(e *core.Engine, dt float32) {
	in := e.Input
	speed := cc.MoveSpeed * dt / cc.Camera.Zoom
	up := speed
	if cc.Camera.YDown {
		up = -speed
	}

	if in.IsKeyDown(core.KeyW) {
		cc.Camera.Move(0, up)
	}
	if in.IsKeyDown(core.KeyS) {
		cc.Camera.Move(0, -up)
	}
	if in.IsKeyDown(core.KeyA) {
		cc.Camera.Move(-speed, 0)
	}
	if in.IsKeyDown(core.KeyD) {
		cc.Camera.Move(speed, 0)
	}
}

// HandleEvent zooms on scroll. It reports whether the event was consumed.
func (cc *OrthoController2D) HandleEvent(_ *core.Engine, ev core.Event) bool {
	s, ok := ev.(core.EventScroll)
	if !ok || s.Yoff == 0 {
		return false
	}
	z := cc.Camera.Zoom * math32.Pow(cc.ZoomSpeed, float32(s.Yoff))
	if cc.MinZoom > 0 {
		z = max(z, cc.MinZoom)
	}
	if cc.MaxZoom > 0 {
		z = min(z, cc.MaxZoom)
	}
	cc.Camera.SetZoom(z)
	if cc.OnZoom != nil {
		cc.OnZoom(cc.Camera.Zoom)
	}
	return true
}
