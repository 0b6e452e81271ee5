package main

import (
	"sync/atomic"
	"time"

	"github.com/hubastard/quadtext/engine/assets"
	"github.com/hubastard/quadtext/engine/colors"
	"github.com/hubastard/quadtext/engine/core"
	"github.com/hubastard/quadtext/engine/gfx/renderer2d"
	"github.com/hubastard/quadtext/engine/profiler"
	"github.com/hubastard/quadtext/engine/richtext"
	"github.com/hubastard/quadtext/engine/scene"
	"github.com/hubastard/quadtext/engine/text"
	"github.com/hubastard/quadtext/engine/ui"
)

// LayerText shows one rich text block in a pannable, zoomable screen-space
// scene.
type LayerText struct {
	cam     *scene.OrthoCamera2D
	ctrl    *scene.OrthoController2D
	r2d     *renderer2d.Renderer2D
	font    *text.Font
	text    *richtext.Text
	sprites *assets.SpriteLoader
	images  *ui.ImageCache

	width     float32
	openLinks bool
	viewport  [4]float32
	root      ui.UIElement
	hovered   string
	clicks    int
	reload    atomic.Bool
}

func newLayerText(r2d *renderer2d.Renderer2D, font *text.Font, txt *richtext.Text, sprites *assets.SpriteLoader, cfg Config) *LayerText {
	l := &LayerText{
		r2d:       r2d,
		font:      font,
		text:      txt,
		sprites:   sprites,
		images:    ui.NewImageCache(),
		width:     cfg.Width,
		openLinks: cfg.OpenLinks,
	}
	txt.OnLink = l.activate
	return l
}

func (l *LayerText) OnAttach(e *core.Engine) {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewScreen2D(w, h)
	l.ctrl = scene.NewOrthoController2D(l.cam)
	l.ctrl.OnZoom = func(z float32) { core.Logger().Debug("sandbox: zoom", "zoom", z) }
	l.viewport = [4]float32{0, 0, float32(w), float32(h)}
}

func (l *LayerText) OnDetach(e *core.Engine) {
	l.images.Release(l.r2d)
}

func (l *LayerText) OnUpdate(e *core.Engine, dt float64) {
	l.ctrl.Update(e, float32(dt))
	if l.reload.Swap(false) {
		l.text.Reload()
	}
	l.text.Update(time.Duration(dt * float64(time.Second)))
}

func (l *LayerText) OnRender(e *core.Engine, alpha float64) {
	end := profiler.Start("LayerText.OnRender")
	defer end()

	body := ui.RichText(l.text).Font(l.font).OnHover(l.hover).Color(colors.White)
	if l.width > 0 {
		body.WidthFixed(l.width)
	} else {
		body.WidthExpand()
	}
	root := ui.View(body).
		Padding(32).
		FlowDirection(ui.LayoutVertical)

	l.r2d.BeginScene(l.cam.VP())
	root.Draw(l.uiContext())
	l.r2d.EndScene()
	l.images.Sweep(l.r2d)

	if err := body.Err(); err != nil {
		core.Logger().Debug("sandbox: text layout", "err", err)
	}
	l.root = root
}

func (l *LayerText) OnEvent(e *core.Engine, ev core.Event) bool {
	if l.ctrl.HandleEvent(e, ev) {
		return true
	}
	switch v := ev.(type) {
	case core.EventMouseMove:
		x, y := l.cam.ScreenToWorld(float32(v.X), float32(v.Y))
		return ui.Dispatch(l.uiContext(), l.root, ui.PointerEvent{Kind: ui.PointerMove, X: x, Y: y})
	case core.EventMouseButton:
		kind := ui.PointerUp
		if v.Down {
			kind = ui.PointerDown
		}
		x, y := l.cam.ScreenToWorld(float32(v.X), float32(v.Y))
		return ui.Dispatch(l.uiContext(), l.root, ui.PointerEvent{Kind: kind, X: x, Y: y, Button: v.Button})
	case core.EventKey:
		if !v.Down {
			return false
		}
		switch v.Key {
		case core.KeyEscape:
			e.Window.RequestClose()
			return true
		case core.KeyTab:
			l.cycleAlignment()
			return true
		case core.KeyR:
			l.reloadSprites()
			return true
		}
	case core.EventResize:
		l.cam.SetViewportPixels(v.W, v.H)
		l.cam.SetPosition(float32(v.W)/2, float32(v.H)/2)
		l.viewport = [4]float32{0, 0, float32(v.W), float32(v.H)}
	}
	return false
}

func (l *LayerText) cycleAlignment() {
	a := (l.text.Settings.Alignment + 1) % (richtext.AlignRight + 1)
	l.text.Settings.Alignment = a
	core.Logger().Info("sandbox: alignment", "align", a)
}

func (l *LayerText) reloadSprites() {
	l.sprites.Purge()
	l.text.Reload()
	core.Logger().Info("sandbox: sprites reloaded")
}

// spritesChanged is called from the sprite watcher goroutine.
func (l *LayerText) spritesChanged(key string) {
	core.Logger().Info("sandbox: sprite changed", "key", key)
	l.reload.Store(true)
}

func (l *LayerText) activate(url string) {
	l.clicks++
	if !l.openLinks {
		return
	}
	if err := openURL(url); err != nil {
		core.Logger().Warn("sandbox: open link", "url", url, "err", err)
	}
}

func (l *LayerText) hover(url string) { l.hovered = url }

func (l *LayerText) uiContext() *ui.Context {
	return &ui.Context{
		Viewport:    l.viewport,
		DefaultFont: l.font,
		Renderer:    l.r2d,
		Images:      l.images,
		Snap:        l.cam.SnapPoint,
	}
}
