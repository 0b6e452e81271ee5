package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hubastard/quadtext/engine/assets"
	"github.com/hubastard/quadtext/engine/core"
	glbackend "github.com/hubastard/quadtext/engine/gfx/gl"
	"github.com/hubastard/quadtext/engine/gfx/renderer2d"
	"github.com/hubastard/quadtext/engine/platform"
	"github.com/hubastard/quadtext/engine/profiler"
	"github.com/hubastard/quadtext/engine/richtext"
	"github.com/hubastard/quadtext/engine/text"
	"github.com/spf13/pflag"
	"golang.org/x/image/font/gofont/goregular"
)

type App struct {
	cfg        Config
	lastFrame  time.Time
	tick       int
	r2d        *renderer2d.Renderer2D
	stats      renderer2d.Statistics
	font       *text.Font
	sprites    *assets.SpriteLoader
	stopWatch  context.CancelFunc
	textLayer  *LayerText
	debugLayer *LayerDebug
}

func (a *App) OnStart(e *core.Engine) {
	profiler.Init(1 << 10) // ~1K scope samples

	vs, fs, err := assets.LoadShaderPair("renderer2d")
	if err != nil {
		panic(err)
	}
	a.r2d, err = renderer2d.New(e.Renderer, vs, fs, 10000)
	if err != nil {
		panic(err)
	}

	a.font, err = loadFont(a.cfg.Font, a.cfg.FontPx)
	if err != nil {
		panic(err)
	}
	if err := a.font.Upload(e.Renderer); err != nil {
		panic(err)
	}

	a.sprites = assets.NewSpriteLoader(a.cfg.Sprites)
	a.sprites.MaxEdge = a.cfg.SpriteMaxEdge

	txt := richtext.New(text.NewShaper(a.font), a.sprites, a.cfg.Text)
	txt.SetText(a.cfg.Markup)

	a.textLayer = newLayerText(a.r2d, a.font, txt, a.sprites, a.cfg)
	e.Layers.Push(a.textLayer)

	a.debugLayer = &LayerDebug{r2d: a.r2d, font: a.font, stats: &a.stats, text: a.textLayer}
	e.Layers.Push(a.debugLayer)

	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatch = cancel
	if a.cfg.Watch {
		go func() {
			if err := a.sprites.Watch(ctx, a.textLayer.spritesChanged); err != nil {
				core.Logger().Warn("sandbox: sprite watcher stopped", "err", err)
			}
		}()
	}
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {
	a.tick++

	now := time.Now()
	if a.debugLayer != nil && !a.lastFrame.IsZero() {
		a.debugLayer.frameDuration = float32(now.Sub(a.lastFrame).Seconds() * 1000.0)
		a.debugLayer.tick = a.tick
	}
	a.lastFrame = now
}

func (a *App) OnRender(e *core.Engine, alpha float64) {
	a.stats = a.r2d.Stats()
}

func (a *App) OnEvent(e *core.Engine, ev core.Event) {}

func (a *App) OnShutdown(e *core.Engine) {
	a.stopWatch()
	a.font.Close()
}

func loadFont(path string, sizePx float32) (*text.Font, error) {
	if path == "" {
		return text.NewFont(goregular.TTF, sizePx)
	}
	return text.LoadTTF(path, sizePx)
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level})))

	app := &App{cfg: cfg}
	newWindow := func(cfg core.Config) (core.Window, error) {
		return platform.NewGLFWWindow(cfg, nil)
	}
	newRenderer := func(win core.Window, cfg core.Config) (core.Renderer, error) {
		return glbackend.NewRendererGL(win, cfg)
	}

	if err := core.Run(app, cfg.Window, newWindow, newRenderer); err != nil {
		log.Fatal(err)
	}
}
