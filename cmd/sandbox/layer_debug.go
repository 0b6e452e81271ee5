package main

import (
	"fmt"

	"github.com/hubastard/quadtext/engine/colors"
	"github.com/hubastard/quadtext/engine/core"
	"github.com/hubastard/quadtext/engine/gfx/renderer2d"
	"github.com/hubastard/quadtext/engine/profiler"
	"github.com/hubastard/quadtext/engine/scene"
	"github.com/hubastard/quadtext/engine/text"
	"github.com/hubastard/quadtext/engine/ui"
)

// LayerDebug draws frame, renderer and rich text statistics on top of the
// scene.
type LayerDebug struct {
	cam           *scene.OrthoCamera2D
	r2d           *renderer2d.Renderer2D
	font          *text.Font
	stats         *renderer2d.Statistics
	text          *LayerText
	frameDuration float32
	tick          int
	hidden        bool
	root          ui.UIElement
}

func (l *LayerDebug) OnAttach(e *core.Engine) {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewScreen2D(w, h)
}

func (l *LayerDebug) OnDetach(e *core.Engine) {}

func (l *LayerDebug) OnUpdate(e *core.Engine, dt float64) {}

func (l *LayerDebug) OnRender(e *core.Engine, alpha float64) {
	if l.hidden {
		return
	}
	scopeRender := profiler.Start("LayerDebug.OnRender")
	defer scopeRender()

	st := l.text.text.Stats()
	hovered := l.text.hovered
	if hovered == "" {
		hovered = "-"
	}

	l.r2d.BeginScene(l.cam.VP())
	{
		l.root = ui.View(
			ui.View(
				ui.Label(fmt.Sprintf("Frame: %d", l.tick)).Padding4(0, 24, 0, 0).Color(colors.Yellow),
				ui.Label(fmt.Sprintf("\t%2.3f ms (%.2f FPS)", l.frameDuration, 1000.0/l.frameDuration)),
				ui.Label("2D Renderer").Padding4(0, 24, 0, 0).Color(colors.Yellow),
				ui.Label(fmt.Sprintf("\tDraw Calls: %d", l.stats.DrawCalls)),
				ui.Label(fmt.Sprintf("\tQuads: %d", l.stats.QuadCount)),
				ui.Label(fmt.Sprintf("\tVertices: %d", l.stats.TotalVertexCount())),
				ui.Label(fmt.Sprintf("\tTextures: %d", l.stats.TextureCount)),
				ui.Label("Rich Text").Padding4(0, 24, 0, 0).Color(colors.Yellow),
				ui.Label(fmt.Sprintf("\tQuads: %d", st.Quads)),
				ui.Label(fmt.Sprintf("\tObjects: %d (%d animated, %d idle)", st.Objects, st.Animated, st.IdleSlots)),
				ui.Label(fmt.Sprintf("\tLinks: %d in %d boxes", st.Links, st.LinkBoxes)),
				ui.Label(fmt.Sprintf("\tHover: %s", hovered)),
				ui.Label(fmt.Sprintf("\tClicks: %d", l.text.clicks)),
				ui.Label(fmt.Sprintf("\tSprites cached: %d", l.text.sprites.Len())),
				ui.Label(fmt.Sprintf("\tImages uploaded: %d", l.text.images.Len())),
				ui.Label(fmt.Sprintf("\tAlign: %s  Zoom: %.2f", l.text.text.Settings.Alignment, l.text.cam.Zoom)),
				ui.View(
					ui.Button("Align").BgColor(colors.Gray).OnClick(l.text.cycleAlignment),
					ui.Button("Reload sprites").BgColor(colors.Gray).OnClick(l.text.reloadSprites),
				).Gap(8).Padding4(0, 8, 0, 0),
				ui.View(scopeRows(3)...).FlowDirection(ui.LayoutVertical),
				ui.Label("Memory").Padding4(0, 24, 0, 0).Color(colors.Yellow),
				ui.Label(fmt.Sprintf("\tUsage: %.3f MB", float32(profiler.MemoryUsage())/(1<<20))),
				ui.Label(fmt.Sprintf("\tAllocs: %d", profiler.MemoryAllocs())),
				ui.Label(fmt.Sprintf("\tGoroutines: %d", profiler.NumGoroutine())),
				ui.Label("CPU").Padding4(0, 24, 0, 0).Color(colors.Yellow),
				ui.Label(fmt.Sprintf("\tCount: %d", profiler.NumCPU())),
				ui.Label("GPU").Padding4(0, 24, 0, 0).Color(colors.Yellow),
				ui.Label(fmt.Sprintf("\tVendor: %s", e.Renderer.GPUVendor())),
				ui.Label(fmt.Sprintf("\tRenderer: %s", e.Renderer.GPURenderer())),
				ui.Label(fmt.Sprintf("\tVersion: %s", e.Renderer.GPUVersion())),
			).
				FlowDirection(ui.LayoutVertical).
				Padding(24).
				BgColor(colors.Black.WithAlpha(0.5)),
		).
			Padding(16).
			Gap(12).
			FlowDirection(ui.LayoutVertical).
			AlignCross(ui.AlignEnd)
		l.root.Draw(l.uiContext())
	}
	l.r2d.EndScene()
}

func (l *LayerDebug) OnEvent(e *core.Engine, ev core.Event) bool {
	switch v := ev.(type) {
	case core.EventKey:
		if !v.Down || v.Key != core.KeyP {
			return false
		}
		if v.Mods&core.ModCtrl == 0 {
			l.hidden = !l.hidden
			return true
		}
		if path, err := profiler.OpenProfilerGraph(); err == nil {
			core.Logger().Info("speedscope dump", "path", path)
		} else {
			core.Logger().Warn("profiler dump", "err", err)
		}
		return true
	case core.EventMouseButton:
		if l.hidden || !v.Down {
			return false
		}
		x, y := l.cam.ScreenToWorld(float32(v.X), float32(v.Y))
		return ui.Dispatch(l.uiContext(), l.root, ui.PointerEvent{Kind: ui.PointerDown, X: x, Y: y, Button: v.Button})
	case core.EventResize:
		l.cam.SetViewportPixels(v.W, v.H)
		l.cam.SetPosition(float32(v.W)/2, float32(v.H)/2)
	}
	return false
}

func (l *LayerDebug) uiContext() *ui.Context {
	return &ui.Context{
		Viewport:    [4]float32{0, 0, l.cam.Width(), l.cam.Height()},
		DefaultFont: l.font,
		Renderer:    l.r2d,
	}
}

// scopeRows lists the n most expensive profiler scopes.
func scopeRows(n int) []ui.UIElement {
	if !profiler.Enabled {
		return nil
	}
	rows := []ui.UIElement{ui.Label("Scopes").Padding4(0, 24, 0, 0).Color(colors.Yellow)}
	sum := profiler.Summary()
	for _, st := range sum[:min(n, len(sum))] {
		rows = append(rows, ui.Label(fmt.Sprintf("\t%s: %d x %.3f ms", st.Name, st.Count, float64(st.Mean().Microseconds())/1000)))
	}
	return rows
}
